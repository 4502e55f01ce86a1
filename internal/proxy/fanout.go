package proxy

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/julienandreu/switchboard/internal/config"
)

// PrimaryResponse is what the Engine returns to the caller.
type PrimaryResponse struct {
	Status  int
	Headers http.Header
	Body    []byte
}

// SecondaryObserver receives the outcome of every non-primary dispatch.
// Implementations should never block long — the engine does not wait on
// this call before moving on.
type SecondaryObserver func(outcome Outcome)

// Engine runs the concurrent fan-out: it dispatches every target
// concurrently, awaits only the primary, and lets secondaries run to
// completion independently.
type Engine struct {
	Client   *http.Client
	Logger   *slog.Logger
	Observer SecondaryObserver
}

// NewEngine builds an Engine. client must not be nil; a nil logger
// falls back to slog.Default(); observer may be nil (secondary outcomes
// are then only logged).
func NewEngine(client *http.Client, logger *slog.Logger, observer SecondaryObserver) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{Client: client, Logger: logger, Observer: observer}
}

// Dispatch fans the request out to every target in route.Targets and
// returns the primary's response. It returns (nil, false) iff the
// primary dispatch ended in a failure terminal state — the caller maps
// that to 502 Bad Gateway.
func (e *Engine) Dispatch(
	ctx context.Context,
	route config.Route,
	defaults config.Defaults,
	params map[string]string,
	method string,
	originalHeaders http.Header,
	originalHost string,
	body []byte,
	clientIP string,
	correlationID string,
) (*PrimaryResponse, bool) {
	primaryIdx := primaryTargetIndex(route.Targets)

	results := make(chan struct {
		idx     int
		outcome Outcome
	}, len(route.Targets))

	// Secondary dispatches must survive the request's own cancellation —
	// a caller disconnect should not retroactively abort best-effort
	// delivery to the targets that only influence telemetry. The
	// detached context carries neither ctx's cancellation nor its
	// deadline, so each secondary is bounded only by its own per-target
	// timeout.
	detachedCtx := context.WithoutCancel(ctx)

	for i, target := range route.Targets {
		i, target := i, target
		dispatchCtx := ctx
		if i != primaryIdx {
			dispatchCtx = detachedCtx
		}

		go func() {
			outcome := e.runOne(dispatchCtx, route, defaults, target, params, method, originalHeaders, originalHost, body, clientIP, correlationID)
			if i != primaryIdx {
				e.observeSecondary(outcome)
			}
			results <- struct {
				idx     int
				outcome Outcome
			}{idx: i, outcome: outcome}
		}()
	}

	for n := 0; n < len(route.Targets); n++ {
		r := <-results
		if r.idx == primaryIdx {
			if r.outcome.Failed() {
				return nil, false
			}
			return &PrimaryResponse{
				Status:  r.outcome.Status,
				Headers: r.outcome.Headers,
				Body:    r.outcome.Body,
			}, true
		}
	}

	// Unreachable in practice: every route has >=1 target and exactly
	// one primary index within range, per config.Validate.
	return nil, false
}

func (e *Engine) runOne(
	ctx context.Context,
	route config.Route,
	defaults config.Defaults,
	target config.Target,
	params map[string]string,
	method string,
	originalHeaders http.Header,
	originalHost string,
	body []byte,
	clientIP string,
	correlationID string,
) Outcome {
	resolvedURL, err := ResolveURL(target.URL, params)
	if err != nil {
		return Outcome{TargetURL: target.URL, State: StateTransportErr, Err: err}
	}

	u, err := url.Parse(resolvedURL)
	if err != nil {
		return Outcome{TargetURL: resolvedURL, State: StateTransportErr, Err: fmt.Errorf("parse target url: %w", err)}
	}

	headers := BuildHeaders(originalHeaders, originalHost, clientIP, u, defaults, route.Headers, correlationID)
	timeout := time.Duration(config.EffectiveTimeoutMS(defaults, route, target)) * time.Millisecond

	return dispatch(ctx, e.Client, method, resolvedURL, headers, body, timeout)
}

func (e *Engine) observeSecondary(outcome Outcome) {
	if outcome.Failed() {
		e.Logger.Warn("secondary dispatch failed",
			"target", outcome.TargetURL, "state", outcome.State.String(),
			"error", outcome.Err, "latency", outcome.Latency)
	} else {
		e.Logger.Info("secondary dispatch completed",
			"target", outcome.TargetURL, "status", outcome.Status, "latency", outcome.Latency)
	}
	if e.Observer != nil {
		e.Observer(outcome)
	}
}

// primaryTargetIndex returns the first target marked primary, or 0 if
// none is.
func primaryTargetIndex(targets []config.Target) int {
	for i, t := range targets {
		if t.Primary {
			return i
		}
	}
	return 0
}

