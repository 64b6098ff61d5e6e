package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/geoknoesis/rdf-canon/internal/cache"
	"github.com/geoknoesis/rdf-canon/rdf"
)

const simpleInput = `_:b1 <http://example.org/vocab#name> "Bob" .
_:b0 <http://example.org/vocab#p> _:b1 .
`

const simpleCanonical = `_:c14n0 <http://example.org/vocab#p> _:c14n1 .
_:c14n1 <http://example.org/vocab#name> "Bob" .
`

func completeGraph(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				fmt.Fprintf(&b, "_:n%d <http://example.org/p> _:n%d .\n", i, j)
			}
		}
	}
	return b.String()
}

func post(t *testing.T, h http.Handler, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealthz(t *testing.T) {
	h := New(Options{}).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestCanonicalizeNQuads(t *testing.T) {
	h := New(Options{}).Handler()
	rec := post(t, h, "/v1/canonicalize", "application/n-quads", simpleInput)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, simpleCanonical, rec.Body.String())
	assert.Equal(t, "application/n-quads", rec.Header().Get("Content-Type"))

	sum := sha256.Sum256([]byte(simpleCanonical))
	assert.Equal(t, hex.EncodeToString(sum[:]), rec.Header().Get(hashHeader))
}

func TestCanonicalizeKeepsCallerRequestID(t *testing.T) {
	h := New(Options{}).Handler()
	req := httptest.NewRequest(http.MethodPost, "/v1/canonicalize?algorithm=nope", strings.NewReader(simpleInput))
	req.Header.Set(requestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get(requestIDHeader))
	assert.Equal(t, "req-42", decodeError(t, rec).RequestID)
}

func TestCanonicalizeWithLabels(t *testing.T) {
	h := New(Options{}).Handler()
	rec := post(t, h, "/v1/canonicalize?labels=true&algorithm=URGNA2012", "application/n-quads", simpleInput)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result cachedResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, simpleCanonical, result.NQuads)
	assert.Equal(t, map[string]string{"b0": "c14n0", "b1": "c14n1"}, result.Labels)
	assert.Equal(t, rec.Header().Get(hashHeader), result.Hash)
}

func TestCanonicalizeJSONLD(t *testing.T) {
	h := New(Options{}).Handler()
	doc := `{"@context": {"name": "http://schema.org/name"}, "@id": "http://example.org/alice", "name": "Alice"}`
	rec := post(t, h, "/v1/canonicalize", "application/ld+json", doc)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "<http://example.org/alice> <http://schema.org/name> \"Alice\" .\n", rec.Body.String())
}

func TestCanonicalizeErrors(t *testing.T) {
	h := New(Options{
		Canon:        []rdf.CanonOption{rdf.OptMaxPermutations(10)},
		MaxBodyBytes: 1024,
	}).Handler()

	tests := []struct {
		name        string
		target      string
		contentType string
		body        string
		status      int
		code        string
	}{
		{"unknown algorithm", "/v1/canonicalize?algorithm=URDNA2020", "application/n-quads", simpleInput, http.StatusBadRequest, "UNSUPPORTED_ALGORITHM"},
		{"parse error", "/v1/canonicalize", "application/n-quads", "_:a <http://example.org/p> .\n", http.StatusBadRequest, "PARSE_ERROR"},
		{"unsupported media type", "/v1/canonicalize", "text/turtle", simpleInput, http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT"},
		{"body too large", "/v1/canonicalize", "application/n-quads", strings.Repeat(simpleInput, 50), http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE"},
		{"budget exceeded", "/v1/canonicalize", "application/n-quads", completeGraph(5), http.StatusUnprocessableEntity, "BUDGET_EXCEEDED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, tt.target, tt.contentType, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestCanonicalizeUsesRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := cache.NewRedisCache(cache.RedisOptions{URL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	h := New(Options{Cache: c, CacheTTL: time.Minute}).Handler()

	first := post(t, h, "/v1/canonicalize", "application/n-quads", simpleInput)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "miss", first.Header().Get(cacheHeader))
	assert.Len(t, mr.Keys(), 1)

	second := post(t, h, "/v1/canonicalize", "application/n-quads", simpleInput)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "hit", second.Header().Get(cacheHeader))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, first.Header().Get(hashHeader), second.Header().Get(hashHeader))

	other := post(t, h, "/v1/canonicalize?algorithm=URGNA2012", "application/n-quads", simpleInput)
	assert.Equal(t, "miss", other.Header().Get(cacheHeader))

	mr.FastForward(2 * time.Minute)
	third := post(t, h, "/v1/canonicalize", "application/n-quads", simpleInput)
	assert.Equal(t, "miss", third.Header().Get(cacheHeader))
}

func TestCanonicalizeSurvivesCacheOutage(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := cache.NewRedisCache(cache.RedisOptions{URL: "redis://" + mr.Addr(), ReadTimeout: 100 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	mr.Close()

	h := New(Options{Cache: c}).Handler()
	rec := post(t, h, "/v1/canonicalize", "application/n-quads", simpleInput)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, simpleCanonical, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	h := New(Options{}).Handler()
	post(t, h, "/v1/canonicalize", "application/n-quads", simpleInput)
	post(t, h, "/v1/canonicalize", "application/n-quads", "garbage\n")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `rdfc_http_requests_total{route="/v1/canonicalize",status="200"} 1`)
	assert.Contains(t, string(body), `rdfc_canonicalize_failures_total{code="PARSE_ERROR"} 1`)
	assert.Contains(t, string(body), "rdfc_canonicalize_duration_seconds")
}

func TestCanonicalizeTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	h := New(Options{TracerProvider: tp, Canon: []rdf.CanonOption{rdf.OptMaxPermutations(10)}}).Handler()
	post(t, h, "/v1/canonicalize", "application/n-quads", simpleInput)
	post(t, h, "/v1/canonicalize", "application/n-quads", completeGraph(5))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "rdfc.canonicalize", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, string(rdf.ErrCodeBudgetExceeded), spans[1].Status().Description)
	assert.NotEmpty(t, spans[1].Events())
}
