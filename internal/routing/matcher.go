// Package routing implements specificity-ordered HTTP path matching
// against a declared route table.
//
// Thread Safety:
//
//	Match is stateless and safe for concurrent use; the cache wrapping
//	it in cache.go owns its own synchronization.
package routing

import "strings"

// Result is the outcome of a successful match: which route was chosen
// and the parameters its path pattern captured.
type Result struct {
	RouteIndex int
	Params     map[string]string
}

// candidate tracks one route's evaluation outcome during scoring.
type candidate struct {
	index       int
	specificity int
	params      map[string]string
	matched     bool
}

// Match evaluates every route against method and path and returns the
// highest-scoring match, breaking ties by declaration order (first
// route wins).
func Match(routes []RouteSpec, method, path string) (Result, bool) {
	requestSegments := splitSegments(path)

	var best candidate
	found := false

	for i, r := range routes {
		if !methodMatches(r.Methods, method) {
			continue
		}

		c := evaluateRoute(r.Path, requestSegments)
		if !c.matched {
			continue
		}
		c.index = i

		if !found || c.specificity > best.specificity {
			best = c
			found = true
		}
	}

	if !found {
		return Result{}, false
	}
	return Result{RouteIndex: best.index, Params: best.params}, true
}

// RouteSpec is the minimal shape the matcher needs from a config.Route —
// kept separate from config.Route so this package has no dependency on
// the config package and can be unit-tested in isolation.
type RouteSpec struct {
	Path    string
	Methods []string
}

func methodMatches(methods []string, method string) bool {
	if len(methods) == 0 {
		return true // an empty list defaults to "*"
	}
	for _, m := range methods {
		if m == "*" || strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

func evaluateRoute(routePath string, requestSegments []string) candidate {
	switch {
	case routePath == "*" || routePath == "/*":
		return candidate{specificity: 0, params: map[string]string{}, matched: true}

	case strings.HasSuffix(routePath, "/*"):
		prefix := splitSegments(strings.TrimSuffix(routePath, "/*"))
		if len(requestSegments) < len(prefix) {
			return candidate{}
		}
		for i, seg := range prefix {
			if requestSegments[i] != seg {
				return candidate{}
			}
		}
		return candidate{specificity: len(prefix) * 10, params: map[string]string{}, matched: true}

	default:
		routeSegments := splitSegments(routePath)
		if len(routeSegments) != len(requestSegments) {
			return candidate{}
		}
		params := make(map[string]string)
		specificity := 0
		for i, seg := range routeSegments {
			switch {
			case strings.HasPrefix(seg, ":") && len(seg) > 1:
				params[seg[1:]] = requestSegments[i]
				specificity += 5
			case seg == requestSegments[i]:
				specificity += 10
			default:
				return candidate{}
			}
		}
		return candidate{specificity: specificity, params: params, matched: true}
	}
}

// splitSegments splits path on '/' discarding empty segments, so a
// leading slash, trailing slash, or repeated slash never changes the
// resulting segment list.
func splitSegments(path string) []string {
	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
