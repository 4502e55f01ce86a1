// Package correlation extracts or mints the per-request correlation ID
// that ties a caller's request, every downstream dispatch, and every log
// record together.
package correlation

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Header is the name both read from the inbound request and set on
// every outgoing dispatch and the caller's response.
const Header = "X-Correlation-Id"

type contextKey struct{}

// WithContext attaches id to ctx so downstream loggers and handlers can
// recover it without re-reading the request headers.
func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the correlation ID attached by WithContext, or ""
// if none was attached.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// FromRequest returns the caller-supplied correlation ID if present and
// syntactically usable, otherwise a freshly minted lowercase
// hyphenated UUID.
func FromRequest(r *http.Request) string {
	if id := r.Header.Get(Header); id != "" && usable(id) {
		return id
	}
	return New()
}

// New mints a fresh correlation ID.
func New() string {
	return uuid.New().String()
}

// usable rejects header-injection-hostile values; a correlation ID is
// echoed verbatim into logs and response headers, so it must not carry
// control characters or excessive length.
func usable(id string) bool {
	if len(id) == 0 || len(id) > 128 {
		return false
	}
	for _, r := range id {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}
