package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!doctype html>
<html>
<head><title>  A   Quiet Morning </title><style>body{}</style></head>
<body>
<nav>Home | About</nav>
<h1>Morning pages</h1>
<p>First   paragraph with <b>bold</b> text.</p>
<script>var x = 1;</script>
<div>Second paragraph.</div>
<footer>copyright</footer>
</body>
</html>`

func TestExtractText(t *testing.T) {
	title, text := extractText(samplePage)
	assert.Equal(t, "A Quiet Morning", title)
	assert.Equal(t, "Morning pages\nFirst paragraph with bold text.\nSecond paragraph.", text)
}

func TestTruncateKeepsRunes(t *testing.T) {
	s := strings.Repeat("é", maxText)
	out := truncate(s)
	assert.True(t, strings.HasSuffix(out, "..."))
	assert.True(t, len(out) <= maxText+3)
	assert.Equal(t, "short", truncate("short"))
}

func TestNormalizeURL(t *testing.T) {
	u, err := NormalizeURL("example.com/post")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/post", u)

	_, err = NormalizeURL("ftp://example.com")
	assert.Error(t, err)

	assert.True(t, IsURL("www.example.com"))
	assert.False(t, IsURL("just words"))
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, samplePage)
		case "/plain":
			w.Header().Set("Content-Type", "text/plain")
			fmt.Fprint(w, "  raw notes  ")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := New(srv.Client())
	ctx := context.Background()

	page, err := f.Fetch(ctx, srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, "A Quiet Morning", page.Title)
	assert.Contains(t, page.Text, "Second paragraph.")
	assert.True(t, strings.HasSuffix(page.Viewpoint(), "Source: "+srv.URL+"/page"))

	plain, err := f.Fetch(ctx, srv.URL+"/plain")
	require.NoError(t, err)
	assert.Equal(t, "raw notes", plain.Text)

	_, err = f.Fetch(ctx, srv.URL+"/missing")
	assert.ErrorContains(t, err, "HTTP 404")
}
