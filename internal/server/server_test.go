package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bi0dread/qfilter"
	"github.com/bi0dread/qfilter/internal/movies"
)

func newTestServer() *Server {
	gin.SetMode(gin.TestMode)
	defaults := qfilter.PageDefaults{DefaultPageSize: 20, MaxPageSize: 100, DefaultOrderField: "Title"}
	svc := qfilter.NewService[movies.Movie](movies.Schema, defaults, qfilter.NewMemoryStore(movies.Sample()), nil)
	return New(svc, nil)
}

func do(t *testing.T, s *Server, req *http.Request) (*httptest.ResponseRecorder, ListResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	var body ListResponse
	if w.Code == http.StatusOK && strings.HasPrefix(req.URL.Path, "/api/") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func movieTitles(ms []movies.Movie) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Title)
	}
	return out
}

func TestListMoviesGet(t *testing.T) {
	s := newTestServer()
	q := url.Values{"filter": {"voteAverage>7&order=desc&orderBy=voteAverage"}, "search": {"action"}}
	w, body := do(t, s, httptest.NewRequest(http.MethodGet, "/api/movies?"+q.Encode(), nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)
	assert.Empty(t, body.Error)
	assert.Equal(t, []string{"Spider-Man: No Way Home", "Venom: Let There Be Carnage"}, movieTitles(body.Movies))
}

func TestListMoviesPost(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/movies",
		strings.NewReader(`{"filter":"originalLanguage=fr","searchTerm":""}`))
	req.Header.Set("Content-Type", "application/json")
	w, body := do(t, s, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)
	assert.Equal(t, []string{"Untitled Project"}, movieTitles(body.Movies))
	assert.Contains(t, w.Body.String(), `"releaseDate":null`)
}

func TestListMoviesFailedQuery(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/movies", strings.NewReader(`{"filter":"rating>1"}`))
	req.Header.Set("Content-Type", "application/json")
	w, body := do(t, s, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, body.Success)
	assert.Equal(t, qfilter.GenericErrorMessage, body.Error)
	assert.Empty(t, body.Movies)
	assert.Contains(t, w.Body.String(), `"movies":[]`)
}

func TestListMoviesBadBody(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/movies", strings.NewReader(`{"filter":`))
	req.Header.Set("Content-Type", "application/json")
	w, _ := do(t, s, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request body"}`, w.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer()

	w, _ := do(t, s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	do(t, s, httptest.NewRequest(http.MethodGet, "/api/movies?filter=voteCount%3E100", nil))
	do(t, s, httptest.NewRequest(http.MethodGet, "/api/movies?filter=nope%3D1", nil))

	w, _ = do(t, s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	b, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	text := string(b)
	assert.Contains(t, text, `qfilter_queries_total{method="GET",outcome="ok"} 1`)
	assert.Contains(t, text, `qfilter_queries_total{method="GET",outcome="failed"} 1`)
	assert.Contains(t, text, "qfilter_query_duration_seconds_bucket")
	assert.Contains(t, text, "qfilter_query_records_count 1")
}
