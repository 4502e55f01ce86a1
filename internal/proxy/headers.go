// Package proxy implements the header transformer and concurrent
// fan-out engine.
package proxy

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/julienandreu/switchboard/internal/config"
)

// viaToken is the fixed Via header value switchboard stamps on every
// outgoing request.
const viaToken = "1.1 switchboard"

// BuildHeaders constructs the outgoing header set for one target
// dispatch: clone-or-drop the inbound headers, strip hop-by-hop, set
// Host, add proxy headers, then apply default and route-level header
// rules in that order. originalHost is the inbound request's Host —
// net/http strips the Host header out of original before the handler
// ever sees it, so it must be passed separately.
func BuildHeaders(
	original http.Header,
	originalHost string,
	clientIP string,
	target *url.URL,
	defaults config.Defaults,
	route config.HeaderRules,
	correlationID string,
) http.Header {
	defaults = defaults.Defaulted()

	out := http.Header{}
	if boolValue(defaults.ForwardHeaders) {
		out = original.Clone()
	}

	if boolValue(defaults.StripHopByHop) {
		stripHeaders(out, config.HopByHopHeaders())
	}

	out.Set("Host", hostWithPort(target))

	if boolValue(defaults.ProxyHeaders) {
		applyProxyHeaders(out, original, originalHost, clientIP, target, correlationID)
	}

	applyHeaderRules(out, defaults.Headers)
	applyHeaderRules(out, route)

	return out
}

func boolValue(b *bool) bool { return b != nil && *b }

func hostWithPort(u *url.URL) string {
	if u.Port() != "" && !isDefaultPort(u.Scheme, u.Port()) {
		return u.Host
	}
	return u.Hostname()
}

func isDefaultPort(scheme, port string) bool {
	switch scheme {
	case "http":
		return port == "80"
	case "https":
		return port == "443"
	}
	return false
}

func applyProxyHeaders(out http.Header, original http.Header, originalHost string, clientIP string, target *url.URL, correlationID string) {
	existingXFF := original.Get("X-Forwarded-For")
	xff := clientIP
	if existingXFF != "" {
		xff = existingXFF + ", " + clientIP
	}
	out.Set("X-Forwarded-For", xff)

	firstIP := xff
	if idx := strings.Index(xff, ","); idx != -1 {
		firstIP = xff[:idx]
	}
	out.Set("X-Real-IP", strings.TrimSpace(firstIP))

	proto := "http"
	if target.Scheme == "https" {
		proto = "https"
	}
	out.Set("X-Forwarded-Proto", proto)

	if originalHost != "" {
		out.Set("X-Forwarded-Host", originalHost)
	}

	out.Set("Via", viaToken)
	out.Set("X-Correlation-Id", correlationID)
}

func applyHeaderRules(out http.Header, rules config.HeaderRules) {
	for name, value := range rules.Add {
		if !validHeaderName(name) || !validHeaderValue(value) {
			slog.Warn("skipping invalid header rule", "header", name)
			continue
		}
		out.Set(name, value)
	}
	stripHeaders(out, rules.Strip)
}

func stripHeaders(h http.Header, names []string) {
	for _, n := range names {
		h.Del(n)
	}
}

func validHeaderName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r <= 0x20 || r == 0x7f || strings.ContainsRune(":()<>@,;\\\"/[]?={} \t", r) {
			return false
		}
	}
	return true
}

func validHeaderValue(value string) bool {
	for _, r := range value {
		if r == '\r' || r == '\n' {
			return false
		}
	}
	return true
}

// StripResponseHeaders removes hop-by-hop headers and Content-Length
// from an upstream response before it is returned to the caller — the
// body has been buffered in full, so the server layer computes a
// correct length.
func StripResponseHeaders(h http.Header) {
	stripHeaders(h, config.HopByHopHeaders())
	h.Del("Content-Length")
}
