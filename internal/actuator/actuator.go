// Package actuator implements the operator-facing surface: health, a
// redacted config dump, and runtime log-level control. None of it sits
// on the request dispatch path.
package actuator

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/julienandreu/switchboard/internal/config"
	"github.com/julienandreu/switchboard/internal/config/cell"
)

// Actuator serves /actuator/* endpoints against a live config cell and a
// mutable log level.
type Actuator struct {
	Cell     *cell.Cell
	LevelVar *slog.LevelVar
	Health   http.HandlerFunc
}

// New builds an Actuator. healthHandler is the server's existing
// /health handler — /actuator/health delegates to it rather than
// reimplementing the payload.
func New(c *cell.Cell, level *slog.LevelVar, healthHandler http.HandlerFunc) *Actuator {
	if level == nil {
		level = new(slog.LevelVar)
	}
	return &Actuator{Cell: c, LevelVar: level, Health: healthHandler}
}

// Handler returns the /actuator/* mux.
func (a *Actuator) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/actuator/health", a.handleHealth)
	mux.HandleFunc("/actuator/env", a.handleEnv)
	mux.HandleFunc("/actuator/loggers", a.handleLoggers)
	return mux
}

func (a *Actuator) handleHealth(w http.ResponseWriter, r *http.Request) {
	if a.Health != nil {
		a.Health(w, r)
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
}

// handleEnv dumps the currently loaded config with target-URL
// credentials redacted, per config.Sanitize.
func (a *Actuator) handleEnv(w http.ResponseWriter, r *http.Request) {
	loaded := a.Cell.Snapshot()
	if loaded == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	sanitized := config.Sanitize(&loaded.Config)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(sanitized)
}

type loggerLevelPayload struct {
	Level string `json:"level"`
}

// handleLoggers reports the current log level on GET and accepts a new
// one on POST.
func (a *Actuator) handleLoggers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(loggerLevelPayload{Level: a.LevelVar.Level().String()})

	case http.MethodPost:
		var payload loggerLevelPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(payload.Level)); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		a.LevelVar.Set(lvl)
		w.WriteHeader(http.StatusOK)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
