// Package server wires the live config cell, the route matcher, and the
// fan-out engine into the inbound HTTP pipeline.
package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/julienandreu/switchboard/internal/config/cell"
	"github.com/julienandreu/switchboard/internal/correlation"
	"github.com/julienandreu/switchboard/internal/proxy"
	"github.com/julienandreu/switchboard/internal/routing"
	"github.com/julienandreu/switchboard/pkg/metrics"
)

// Version is stamped into the /health response. It is a var so it can
// be overridden at build time via -ldflags; it defaults to "dev".
var Version = "dev"

// DefaultMaxBodyBytes is the default request body ceiling applied when
// no explicit limit is configured.
const DefaultMaxBodyBytes = 1 << 20

// Server holds everything the HTTP handler needs to serve one request:
// the live config, the cached matcher, the fan-out engine, and metrics.
type Server struct {
	Cell         *cell.Cell
	MatchCache   *routing.Cache
	Engine       *proxy.Engine
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	MaxBodyBytes int64
	startedAt    time.Time
	stats        stats
}

// New builds a Server. maxBodyBytes <= 0 uses DefaultMaxBodyBytes.
func New(c *cell.Cell, matchCache *routing.Cache, engine *proxy.Engine, logger *slog.Logger, m *metrics.Metrics, maxBodyBytes int64) *Server {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &Server{
		Cell:         c,
		MatchCache:   matchCache,
		Engine:       engine,
		Logger:       logger,
		Metrics:      m,
		MaxBodyBytes: maxBodyBytes,
		startedAt:    time.Now(),
	}
}

// Handler returns the fully wired http.Handler: health endpoint,
// recovery, request logging, and the proxy path.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/", s.handleProxy)

	var h http.Handler = mux
	h = loggingMiddleware(s.Logger)(h)
	h = recoveryMiddleware(s.Logger)(h)
	return h
}

// ServeHealth is the exported form of handleHealth, used to wire the
// same payload into the actuator's /actuator/health endpoint.
func (s *Server) ServeHealth(w http.ResponseWriter, r *http.Request) {
	s.handleHealth(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	loaded := s.Cell.Snapshot()
	forwarded, failed := s.stats.snapshot()

	resp := healthResponse{
		Status:        "healthy",
		Version:       Version,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		Stats: healthStats{
			RequestsForwarded: forwarded,
			RequestsFailed:    failed,
		},
	}
	if loaded != nil {
		resp.Config = healthConfig{
			Source:           loaded.SourceName,
			Version:          loaded.Version.Short(),
			LoadedAgoSeconds: int64(time.Since(loaded.LoadedAt).Seconds()),
			Namespace:        loaded.Namespace,
			Routes:           loaded.RouteCount(),
			Targets:          loaded.TargetCount(),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// handleProxy implements the request pipeline: read and bound the
// body, match the route, fan out, and relay the primary response — in
// that order, with /health intercepted above before this handler ever
// sees a request.
func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	correlationID := correlation.FromRequest(r)
	ctx := correlation.WithContext(r.Context(), correlationID)
	log := s.Logger.With("correlation_id", correlationID, "method", r.Method, "path", r.URL.Path)

	s.Metrics.ActiveRequests.Inc()
	defer s.Metrics.ActiveRequests.Dec()

	r.Body = http.MaxBytesReader(w, r.Body, s.MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		log.Warn("request body exceeded max size", "max_bytes", s.MaxBodyBytes)
		return
	}

	loaded := s.Cell.Snapshot()
	if loaded == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		log.Error("no config loaded")
		return
	}

	specs := make([]routing.RouteSpec, len(loaded.Config.Routes))
	for i, route := range loaded.Config.Routes {
		specs[i] = routing.RouteSpec{Path: route.Path, Methods: route.Methods}
	}

	result, matched := s.MatchCache.MatchCached(specs, loaded.Version.String(), r.Method, r.URL.Path)
	if !matched {
		w.WriteHeader(http.StatusNotFound)
		log.Info("no route matched")
		return
	}

	route := loaded.Config.Routes[result.RouteIndex]
	clientIP := clientIPFrom(r)

	resp, ok := s.Engine.Dispatch(ctx, route, loaded.Config.Defaults, result.Params, r.Method, r.Header, r.Host, body, clientIP, correlationID)
	if !ok {
		w.Header().Set(correlation.Header, correlationID)
		w.WriteHeader(http.StatusBadGateway)
		s.stats.recordFailed()
		s.Metrics.RequestsFailedTotal.WithLabelValues(route.Path, "primary_dispatch_failed").Inc()
		log.Warn("primary dispatch failed, returning 502")
		return
	}

	proxy.StripResponseHeaders(resp.Headers)
	for name, values := range resp.Headers {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.Header().Set(correlation.Header, correlationID)
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)

	s.stats.recordForwarded()
	s.Metrics.RequestsForwardedTotal.WithLabelValues(route.Path).Inc()
}

func clientIPFrom(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
