package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pbaille/writehub/internal/domain"
	"github.com/pbaille/writehub/internal/journal"
	"github.com/pbaille/writehub/internal/stats"
	"github.com/pbaille/writehub/internal/store"
)

func (s *Server) listViewpoints(w http.ResponseWriter, r *http.Request) {
	q := store.ViewpointQuery{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("q"),
		Limit:    queryInt(r, "limit", 50),
		Offset:   queryInt(r, "offset", 0),
	}
	loc := s.journal.Stats().Location()
	if r.URL.Query().Get("from") != "" {
		from, err := s.queryDay(r, "from")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		q.From = from.Start(loc)
	}
	if r.URL.Query().Get("to") != "" {
		to, err := s.queryDay(r, "to")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		q.To = to.AddDays(1).Start(loc)
	}

	viewpoints, err := s.journal.List(r.Context(), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if viewpoints == nil {
		viewpoints = []domain.Viewpoint{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"viewpoints": viewpoints,
		"limit":      q.Limit,
		"offset":     q.Offset,
	})
}

func (s *Server) createViewpoint(w http.ResponseWriter, r *http.Request) {
	var req journal.NewViewpoint
	if !decodeBody(w, r, &req) {
		return
	}
	v, err := s.journal.Create(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) getViewpoint(w http.ResponseWriter, r *http.Request) {
	v, err := s.journal.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) updateViewpoint(w http.ResponseWriter, r *http.Request) {
	var req journal.ViewpointUpdate
	if !decodeBody(w, r, &req) {
		return
	}
	v, err := s.journal.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) deleteViewpoint(w http.ResponseWriter, r *http.Request) {
	if _, err := s.journal.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.journal.ListCategories(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var req journal.NewCategory
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := s.journal.CreateCategory(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// CategoryResponse is a category with the ids of its viewpoints
type CategoryResponse struct {
	*domain.Category
	ViewpointIDs []string `json:"viewpoint_ids"`
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	c, err := s.journal.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ids, err := s.journal.CategoryViewpointIDs(r.Context(), c.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, CategoryResponse{Category: c, ViewpointIDs: ids})
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req journal.CategoryUpdate
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := s.journal.UpdateCategory(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if _, err := s.journal.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SummaryResponse combines totals and streaks
type SummaryResponse struct {
	Totals  stats.Totals  `json:"totals"`
	Streaks stats.Streaks `json:"streaks"`
}

func (s *Server) statsSummary(w http.ResponseWriter, r *http.Request) {
	engine, st := s.journal.Stats(), s.journal.Store()
	totals, err := engine.Totals(r.Context(), st)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	streaks, err := engine.Streaks(r.Context(), st)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SummaryResponse{Totals: totals, Streaks: streaks})
}

func (s *Server) statsStreaks(w http.ResponseWriter, r *http.Request) {
	streaks, err := s.journal.Stats().Streaks(r.Context(), s.journal.Store())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, streaks)
}

// DayResponse is one day's aggregate and entries
type DayResponse struct {
	Day        domain.Day         `json:"day"`
	Stat       *domain.DailyStat  `json:"stat"`
	Intensity  int                `json:"intensity"`
	Viewpoints []domain.Viewpoint `json:"viewpoints"`
}

func (s *Server) statsDay(w http.ResponseWriter, r *http.Request) {
	day, err := s.queryDay(r, "date")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	at := day.Start(s.journal.Stats().Location())

	rows, err := s.journal.Stats().Day(r.Context(), s.journal.Store(), at)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	viewpoints, err := s.journal.ForDay(r.Context(), at)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := DayResponse{Day: day, Viewpoints: viewpoints}
	if resp.Viewpoints == nil {
		resp.Viewpoints = []domain.Viewpoint{}
	}
	if len(rows) > 0 {
		resp.Stat = &rows[0]
		resp.Intensity = rows[0].Intensity()
	}
	writeJSON(w, http.StatusOK, resp)
}

// RangeResponse is the result of a range query
type RangeResponse struct {
	Period  stats.Period       `json:"period"`
	From    domain.Day         `json:"from"`
	To      domain.Day         `json:"to"`
	Days    []domain.DailyStat `json:"days"`
	Summary stats.Summary      `json:"summary"`
}

func (s *Server) statsRange(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("period")
	if name == "" {
		name = string(stats.PeriodWeek)
	}
	period, err := stats.ParsePeriod(name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	day, err := s.queryDay(r, "date")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	engine := s.journal.Stats()
	at := day.Start(engine.Location())
	rows, err := engine.Range(r.Context(), s.journal.Store(), period, at)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if rows == nil {
		rows = []domain.DailyStat{}
	}
	from, to := engine.Bounds(period, at)
	writeJSON(w, http.StatusOK, RangeResponse{
		Period:  period,
		From:    from,
		To:      to,
		Days:    rows,
		Summary: stats.RangeSummary(rows),
	})
}

func (s *Server) statsContributions(w http.ResponseWriter, r *http.Request) {
	year := s.journal.Stats().Today().Year
	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 9999 {
			s.fail(w, r, domain.NewValidationError("year must be a number between 1 and 9999"))
			return
		}
		year = n
	}
	grid, err := s.journal.Stats().ContributionGrid(r.Context(), s.journal.Store(), year)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

func (s *Server) statsCategories(w http.ResponseWriter, r *http.Request) {
	breakdown, err := s.journal.Stats().CategoryBreakdown(r.Context(), s.journal.Store())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": breakdown})
}

func (s *Server) backup(w http.ResponseWriter, r *http.Request) {
	b, err := s.archive.Snapshot(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	engine := s.journal.Stats()
	name := fmt.Sprintf("WriteHub_Backup_%s.json", engine.Now().In(engine.Location()).Format("2006-01-02_15-04-05"))
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) restore(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		writeError(w, http.StatusUnsupportedMediaType, "backup must be application/json")
		return
	}
	body := http.MaxBytesReader(w, r.Body, maxRestore)
	res, err := s.archive.Restore(r.Context(), body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
