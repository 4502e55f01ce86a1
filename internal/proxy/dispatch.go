package proxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/julienandreu/switchboard/internal/config"
)

// State is the per-dispatch state machine: PENDING -> IN_FLIGHT -> one
// terminal state.
type State int

const (
	StatePending State = iota
	StateInFlight
	StateRespondedOK
	StateRespondedBodyErr
	StateTransportErr
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateInFlight:
		return "IN_FLIGHT"
	case StateRespondedOK:
		return "RESPONDED_OK"
	case StateRespondedBodyErr:
		return "RESPONDED_BODY_ERR"
	case StateTransportErr:
		return "TRANSPORT_ERR"
	case StateTimedOut:
		return "TIMED_OUT"
	default:
		return "UNKNOWN"
	}
}

// Outcome is the terminal result of one target dispatch.
type Outcome struct {
	TargetURL string
	State     State
	Status    int
	Headers   http.Header
	Body      []byte
	Err       error
	Latency   time.Duration
}

// Failed reports whether the outcome should be treated as a failure on
// the primary-response path.
func (o Outcome) Failed() bool {
	return o.State != StateRespondedOK
}

// ResolveURL substitutes every :name placeholder in rawURL with its
// captured value, longest names first so ":id" never partially matches
// inside ":idType".
func ResolveURL(rawURL string, params map[string]string) (string, error) {
	resolved := rawURL
	for _, name := range config.SortedParamNamesByLength(params) {
		resolved = strings.ReplaceAll(resolved, ":"+name, params[name])
	}
	if _, err := url.Parse(resolved); err != nil {
		return "", fmt.Errorf("resolved target url %q: %w", resolved, err)
	}
	return resolved, nil
}

// dispatch performs one target's full request/response cycle: connect,
// send, read headers, read body — all bounded by a single timeout
// covering the entire dispatch.
func dispatch(ctx context.Context, client *http.Client, method, targetURL string, headers http.Header, body []byte, timeout time.Duration) Outcome {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, targetURL, bytes.NewReader(body))
	if err != nil {
		return Outcome{TargetURL: targetURL, State: StateTransportErr, Err: err, Latency: time.Since(start)}
	}
	req.Header = headers.Clone()
	req.ContentLength = int64(len(body))

	resp, err := client.Do(req)
	if err != nil {
		state := StateTransportErr
		if ctx.Err() == context.DeadlineExceeded {
			state = StateTimedOut
		}
		return Outcome{TargetURL: targetURL, State: state, Err: err, Latency: time.Since(start)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		state := StateRespondedBodyErr
		if ctx.Err() == context.DeadlineExceeded {
			state = StateTimedOut
		}
		return Outcome{
			TargetURL: targetURL, State: state, Status: resp.StatusCode, Err: err,
			Latency: time.Since(start),
		}
	}

	return Outcome{
		TargetURL: targetURL,
		State:     StateRespondedOK,
		Status:    resp.StatusCode,
		Headers:   resp.Header.Clone(),
		Body:      respBody,
		Latency:   time.Since(start),
	}
}
