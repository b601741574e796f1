package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/futurelink/internal/config"
	"git.home.luguber.info/inful/futurelink/internal/metrics"
	"git.home.luguber.info/inful/futurelink/internal/publish"
)

func newTestServer(t *testing.T, now time.Time) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	source := filepath.Join(dir, "content")
	files := map[string]string{
		"index.html":     "<p>[[example.org/launch|2025-03-01]]Launch[[end]]</p>",
		"blog/post.md":   "# Post\n\n[[example.org|2020-01-01]]home[[end]]\n",
		"img/logo.txt":   "logo [[end]]",
		".secret.html":   "secret",
		"docs/index.md":  "Docs",
		"docs/guide.htm": "<p>guide</p>",
	}
	for name, body := range files {
		p := filepath.Join(source, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "outside.html"), []byte("outside"), 0o600))

	cfg := config.Default()
	cfg.Content.Source = source
	cfg.Content.Output = filepath.Join(dir, "public")
	filter, err := cfg.NewFilter()
	require.NoError(t, err)

	reg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	pub := publish.New(cfg, filter, rec)
	return New(":0", source, pub, WithRegistry(reg), WithClock(func() time.Time { return now })), dir
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, time.Now())
	rec := get(t, s, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestPage_RendersPerRequestTime(t *testing.T) {
	before := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	after := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	s, _ := newTestServer(t, before)
	rec := get(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<p>Launch</p>", rec.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	s, _ = newTestServer(t, after)
	rec = get(t, s, "/index.html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `<p><a href="http://example.org/launch">Launch</a></p>`, rec.Body.String())
}

func TestPage_Markdown(t *testing.T) {
	s, _ := newTestServer(t, time.Now())

	rec := get(t, s, "/blog/post.md")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>Post</h1>")
	assert.Contains(t, rec.Body.String(), `<a href="http://example.org">home</a>`)

	rec = get(t, s, "/blog/post.html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>Post</h1>")

	rec = get(t, s, "/docs/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Docs")
}

func TestPage_NonPageFilesAreServedRaw(t *testing.T) {
	s, _ := newTestServer(t, time.Now())
	rec := get(t, s, "/img/logo.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "logo [[end]]", rec.Body.String())
}

func TestPage_NotFound(t *testing.T) {
	s, _ := newTestServer(t, time.Now())
	for _, target := range []string{
		"/missing.html",
		"/../outside.html",
		"/blog/../../outside.html",
		"/.secret.html",
		"/img/",
	} {
		t.Run(target, func(t *testing.T) {
			rec := get(t, s, target)
			require.Equal(t, http.StatusNotFound, rec.Code)
			assert.Contains(t, rec.Body.String(), "page not found")
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, time.Now())
	require.Equal(t, http.StatusOK, get(t, s, "/blog/post.md").Code)

	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `futurelink_markers_total{decision="linked"} 1`)
	assert.Contains(t, rec.Body.String(), "futurelink_transform_duration_seconds")
}

func TestCheckEndpoint(t *testing.T) {
	s, _ := newTestServer(t, time.Now())
	rec := get(t, s, "/check")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totals"`)
	assert.Contains(t, rec.Body.String(), "blog/post.md")
}
