// Package api exposes the journal, its statistics and backups over a local
// JSON HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pbaille/writehub/internal/archive"
	"github.com/pbaille/writehub/internal/domain"
	"github.com/pbaille/writehub/internal/journal"
)

const (
	maxBody    = 1 << 20
	maxRestore = 64 << 20
)

// Server handles HTTP requests for the journal API
type Server struct {
	journal *journal.Journal
	archive *archive.Archive
	log     *zap.Logger
	addr    string
}

// New creates a new API server
func New(j *journal.Journal, a *archive.Archive, log *zap.Logger, addr string) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{journal: j, archive: a, log: log, addr: addr}
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(withCORS)

	r.Get("/health", s.health)

	r.Route("/viewpoints", func(r chi.Router) {
		r.Get("/", s.listViewpoints)
		r.Post("/", s.createViewpoint)
		r.Get("/{id}", s.getViewpoint)
		r.Patch("/{id}", s.updateViewpoint)
		r.Put("/{id}", s.updateViewpoint)
		r.Delete("/{id}", s.deleteViewpoint)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", s.listCategories)
		r.Post("/", s.createCategory)
		r.Get("/{id}", s.getCategory)
		r.Patch("/{id}", s.updateCategory)
		r.Put("/{id}", s.updateCategory)
		r.Delete("/{id}", s.deleteCategory)
	})

	r.Route("/stats", func(r chi.Router) {
		r.Get("/summary", s.statsSummary)
		r.Get("/streaks", s.statsStreaks)
		r.Get("/day", s.statsDay)
		r.Get("/range", s.statsRange)
		r.Get("/contributions", s.statsContributions)
		r.Get("/categories", s.statsCategories)
	})

	r.Get("/backup", s.backup)
	r.Post("/restore", s.restore)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("starting server", zap.String("addr", s.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.journal.Store().Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// fail writes err with the status its code maps to
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	body := map[string]string{"error": err.Error()}
	if code := domain.CodeOf(err); code != "" {
		body["code"] = string(code)
	}
	writeJSON(w, status, body)
}

func statusFor(err error) int {
	switch domain.CodeOf(err) {
	case domain.CodeValidation, domain.CodeDecode:
		return http.StatusBadRequest
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeConflict, domain.CodeInUse:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// queryInt reads a non-negative integer parameter, falling back to def
func queryInt(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

// queryDay reads a YYYY-MM-DD parameter; missing means the engine's today
func (s *Server) queryDay(r *http.Request, name string) (domain.Day, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return s.journal.Stats().Today(), nil
	}
	d, err := domain.ParseDay(v)
	if err != nil {
		return domain.Day{}, domain.NewValidationError(name + " must be YYYY-MM-DD")
	}
	return d, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
