// Package server exposes canonicalization over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/geoknoesis/rdf-canon/internal/cache"
	"github.com/geoknoesis/rdf-canon/rdf"
)

const (
	tracerName      = "github.com/geoknoesis/rdf-canon/internal/server"
	requestIDHeader = "X-Request-ID"
	hashHeader      = "X-Canonical-Hash"
	cacheHeader     = "X-Cache"
)

// Options configures a Server.
type Options struct {
	Logger *log.Logger
	// Cache stores results; nil disables caching.
	Cache    cache.Cache
	CacheTTL time.Duration
	// Canon holds the default canonicalization options; the algorithm query
	// parameter is appended after them.
	Canon []rdf.CanonOption
	// Parse holds decoder options applied to request bodies.
	Parse        []rdf.Option
	MaxBodyBytes int64
	// Timeout bounds a single canonicalization (0 = request context only).
	Timeout time.Duration
	// Registry receives the service metrics; nil creates a private registry.
	Registry *prometheus.Registry
	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
}

// Server is the canonicalization HTTP service.
type Server struct {
	opts     Options
	defaults rdf.CanonOptions
	logger   *log.Logger
	cache    cache.Cache
	metrics  *metrics
	registry *prometheus.Registry
	tracer   trace.Tracer
	router   chi.Router
}

// New builds a Server and its routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 4 << 20
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}

	var defaults rdf.CanonOptions
	for _, opt := range opts.Canon {
		opt(&defaults)
	}
	if defaults.Algorithm == "" {
		defaults.Algorithm = rdf.AlgorithmURDNA2015
	}

	s := &Server{
		opts:     opts,
		defaults: defaults,
		logger:   opts.Logger,
		cache:    opts.Cache,
		metrics:  newMetrics(opts.Registry),
		registry: opts.Registry,
		tracer:   opts.TracerProvider.Tracer(tracerName),
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	r.Post("/v1/canonicalize", s.handleCanonicalize)
	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// cachedResult is the cached form of a canonicalization.
type cachedResult struct {
	NQuads string            `json:"nquads"`
	Hash   string            `json:"hash"`
	Labels map[string]string `json:"labels"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id"`
}

func (s *Server) handleCanonicalize(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := s.logger.With("request_id", requestIDFrom(r.Context()))

	opts := append([]rdf.CanonOption{}, s.opts.Canon...)
	algorithm := s.defaults.Algorithm
	if name := r.URL.Query().Get("algorithm"); name != "" {
		parsed, err := rdf.ParseAlgorithm(name)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, err)
			return
		}
		algorithm = parsed
		opts = append(opts, rdf.OptAlgorithm(parsed))
	}
	withLabels, _ := strconv.ParseBool(r.URL.Query().Get("labels"))

	format, ok := rdf.FormatFromContentType(r.Header.Get("Content-Type"))
	if !ok {
		s.writeError(w, r, http.StatusUnsupportedMediaType, rdf.ErrUnsupportedFormat)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, http.StatusRequestEntityTooLarge, err)
			return
		}
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	ctx, span := s.tracer.Start(r.Context(), "rdfc.canonicalize",
		trace.WithAttributes(
			attribute.String("rdfc.algorithm", string(algorithm)),
			attribute.String("rdfc.format", string(format)),
			attribute.Int("rdfc.input_bytes", len(body)),
		),
	)
	defer span.End()

	var hashName string
	if s.defaults.Hash != 0 {
		hashName = s.defaults.Hash.String()
	}
	key := cache.Key(string(algorithm), hashName, string(format), body)
	result, hit := s.lookup(ctx, logger, key)
	span.SetAttributes(attribute.Bool("rdfc.cache_hit", hit))
	if !hit {
		canonCtx := ctx
		if s.opts.Timeout > 0 {
			var cancel context.CancelFunc
			canonCtx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
			defer cancel()
		}
		opts = append(opts, rdf.OptCanonLogger(logger), rdf.OptParseOptions(s.opts.Parse...))
		dataset, err := rdf.CanonicalizeReader(canonCtx, bytes.NewReader(body), format, opts...)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(rdf.Code(err)))
			s.metrics.failures.WithLabelValues(string(rdf.Code(err))).Inc()
			s.writeError(w, r, statusFor(err), err)
			return
		}
		s.metrics.permutations.Observe(float64(dataset.Stats.Permutations))
		result = cachedResult{NQuads: dataset.NQuads, Hash: dataset.Hash(), Labels: dataset.IssuedIdentifiers}
		s.store(ctx, logger, key, result)
	}
	s.metrics.duration.WithLabelValues(string(algorithm)).Observe(time.Since(start).Seconds())

	w.Header().Set(hashHeader, result.Hash)
	if hit {
		w.Header().Set(cacheHeader, "hit")
	} else {
		w.Header().Set(cacheHeader, "miss")
	}
	if withLabels {
		writeJSON(w, http.StatusOK, result)
		return
	}
	w.Header().Set("Content-Type", "application/n-quads")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, result.NQuads)
}

func (s *Server) lookup(ctx context.Context, logger *log.Logger, key string) (cachedResult, bool) {
	data, found, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "err", err)
		return cachedResult{}, false
	}
	if !found {
		s.metrics.cache.WithLabelValues("miss").Inc()
		return cachedResult{}, false
	}
	var result cachedResult
	if err := json.Unmarshal(data, &result); err != nil {
		logger.Warn("discarding corrupt cache entry", "err", err)
		return cachedResult{}, false
	}
	s.metrics.cache.WithLabelValues("hit").Inc()
	return result, true
}

func (s *Server) store(ctx context.Context, logger *log.Logger, key string, result cachedResult) {
	data, err := json.Marshal(result)
	if err != nil {
		logger.Warn("cache encode failed", "err", err)
		return
	}
	if err := s.cache.Set(ctx, key, data, s.opts.CacheTTL); err != nil {
		logger.Warn("cache write failed", "err", err)
	}
}

// statusFor maps library errors onto HTTP status codes.
func statusFor(err error) int {
	switch rdf.Code(err) {
	case rdf.ErrCodeBudgetExceeded:
		return http.StatusUnprocessableEntity
	case rdf.ErrCodeDigestUnavailable:
		return http.StatusInternalServerError
	case rdf.ErrCodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case rdf.ErrCodeContextCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	code := string(rdf.Code(err))
	if status == http.StatusRequestEntityTooLarge {
		code = "BODY_TOO_LARGE"
	}
	writeJSON(w, status, errorResponse{
		Error:     err.Error(),
		Code:      code,
		RequestID: requestIDFrom(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
