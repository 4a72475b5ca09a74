package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agenthands/geoparse/internal/config"
	"github.com/agenthands/geoparse/internal/core"
	"github.com/agenthands/geoparse/internal/core/gazetteer"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, scfg config.ServerConfig) (*Server, *gin.Engine) {
	t.Helper()
	ix, err := gazetteer.LoadFile("../core/testdata/places.csv")
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Extraction.NER = "off"
	cfg.Extraction.Chunker = false
	p, err := core.NewFromConfig(cfg, ix, nil, nil)
	require.NoError(t, err)

	s := NewServer(p, scfg, nil)
	return s, s.SetupRouter()
}

func postQuery(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestQuery(t *testing.T) {
	_, r := newTestServer(t, config.ServerConfig{})

	w := postQuery(r, `{"query": "Which saw higher rainfall, Maharashtra, Ahmedabad or entire New-Zealand?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Query   string `json:"query"`
		Matches []struct {
			CanonicalName string  `json:"canonical_name"`
			EntityType    string  `json:"entity_type"`
			Confidence    float64 `json:"confidence"`
		} `json:"matches"`
		Formatted string `json:"formatted"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Matches, 3)
	assert.Equal(t, "Maharashtra", resp.Matches[0].CanonicalName)
	assert.Equal(t, "State", resp.Matches[0].EntityType)
	assert.Equal(t,
		"Token: Maharashtra, Canonical name: Maharashtra, Table: State\n"+
			"Token: Ahmedabad, Canonical name: Ahmedabad, Table: City\n"+
			"Token: New-Zealand, Canonical name: New Zealand, Table: Country",
		resp.Formatted)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestQueryThresholdOverride(t *testing.T) {
	_, r := newTestServer(t, config.ServerConfig{})

	w := postQuery(r, `{"query": "Tell me about Deli", "threshold": 75, "format": "confidence"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Token: Deli, Canonical name: Delhi, Table: City, Confidence: 79.0")

	w = postQuery(r, `{"query": "Tell me about Deli"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No geographical entities found in the query.")
}

func TestQueryBadRequests(t *testing.T) {
	_, r := newTestServer(t, config.ServerConfig{})

	w := postQuery(r, `{"query": "Paris", "threshold": 120}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "fuzzy_threshold")

	w = postQuery(r, `{"query": "Paris", "format": "yaml"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postQuery(r, `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestIDPropagates(t *testing.T) {
	_, r := newTestServer(t, config.ServerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestSuggest(t *testing.T) {
	_, r := newTestServer(t, config.ServerConfig{})

	get := func(url string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
		return w
	}

	w := get("/suggest?q=new&type=city")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Suggestions []string `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Suggestions, "New York")

	assert.Equal(t, http.StatusBadRequest, get("/suggest").Code)
	assert.Equal(t, http.StatusBadRequest, get("/suggest?q=new&type=continent").Code)
	assert.Equal(t, http.StatusBadRequest, get("/suggest?q=new&limit=-2").Code)
}

func TestStats(t *testing.T) {
	_, r := newTestServer(t, config.ServerConfig{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Gazetteer struct {
			Cities    int `json:"cities"`
			Countries int `json:"countries"`
		} `json:"gazetteer"`
		Threshold float64 `json:"fuzzy_threshold"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 17, resp.Gazetteer.Cities)
	assert.Equal(t, 6, resp.Gazetteer.Countries)
	assert.Equal(t, 80.0, resp.Threshold)
}

func TestRateLimit(t *testing.T) {
	_, r := newTestServer(t, config.ServerConfig{RateLimit: 0.001, Burst: 1})

	assert.Equal(t, http.StatusOK, postQuery(r, `{"query": "Paris"}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, postQuery(r, `{"query": "Paris"}`).Code)

	// health checks are not limited
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetrics(t *testing.T) {
	_, r := newTestServer(t, config.ServerConfig{})
	require.Equal(t, http.StatusOK, postQuery(r, `{"query": "Weather in Paris and Gujarat state"}`).Code)
	require.Equal(t, http.StatusBadRequest, postQuery(r, `{"query": "Paris", "threshold": -1}`).Code)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `geoparse_queries_total{status="ok"} 1`)
	assert.Contains(t, body, `geoparse_queries_total{status="bad_request"} 1`)
	assert.Contains(t, body, `geoparse_matches_total{entity_type="City"} 1`)
	assert.Contains(t, body, `geoparse_matches_total{entity_type="State"} 1`)
	assert.Contains(t, body, "geoparse_query_duration_seconds_count 1")
}

func TestMetricsTruncation(t *testing.T) {
	ix, err := gazetteer.LoadFile("../core/testdata/places.csv")
	require.NoError(t, err)
	cfg := config.Default()
	cfg.Extraction.NER = "off"
	cfg.Extraction.Chunker = false
	cfg.Resolver.MaxCandidates = 1
	p, err := core.NewFromConfig(cfg, ix, nil, nil)
	require.NoError(t, err)

	s := NewServer(p, config.ServerConfig{}, nil)
	r := s.SetupRouter()
	w := postQuery(r, `{"query": "Paris, London, Delhi"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"truncated":true`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), "geoparse_candidates_truncated_total 1")
}
