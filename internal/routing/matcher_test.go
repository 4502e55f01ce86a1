package routing

import (
	"reflect"
	"testing"
)

func TestMatch_ExactWins(t *testing.T) {
	routes := []RouteSpec{
		{Path: "/*"},
		{Path: "/orders"},
	}
	result, ok := Match(routes, "GET", "/orders")
	if !ok {
		t.Fatal("expected match")
	}
	if result.RouteIndex != 1 {
		t.Fatalf("expected exact route to win, got index %d", result.RouteIndex)
	}
	if len(result.Params) != 0 {
		t.Fatalf("expected no params, got %v", result.Params)
	}
}

func TestMatch_ParameterCapture(t *testing.T) {
	routes := []RouteSpec{{Path: "/users/:uid/orders/:oid"}}
	result, ok := Match(routes, "GET", "/users/7/orders/42")
	if !ok {
		t.Fatal("expected match")
	}
	want := map[string]string{"uid": "7", "oid": "42"}
	if !reflect.DeepEqual(result.Params, want) {
		t.Fatalf("got params %v, want %v", result.Params, want)
	}
}

func TestMatch_MethodFilter(t *testing.T) {
	routes := []RouteSpec{{Path: "/a", Methods: []string{"POST"}}}
	if _, ok := Match(routes, "GET", "/a"); ok {
		t.Fatal("expected no match for disallowed method")
	}
	if _, ok := Match(routes, "post", "/a"); !ok {
		t.Fatal("expected case-insensitive method match")
	}
}

func TestMatch_PrefixWildcard(t *testing.T) {
	routes := []RouteSpec{{Path: "/api/*"}}
	if _, ok := Match(routes, "GET", "/"); ok {
		t.Fatal("request must have at least as many segments as the prefix")
	}
	result, ok := Match(routes, "GET", "/api/v1/users")
	if !ok {
		t.Fatal("expected prefix match")
	}
	if result.Params == nil || len(result.Params) != 0 {
		t.Fatalf("expected no params, got %v", result.Params)
	}
}

func TestMatch_Specificity(t *testing.T) {
	routes := []RouteSpec{
		{Path: "/*"},
		{Path: "/a/*"},
		{Path: "/a/:id"},
		{Path: "/a/b"},
	}
	result, ok := Match(routes, "GET", "/a/b")
	if !ok || result.RouteIndex != 3 {
		t.Fatalf("expected fully literal route to win, got %+v", result)
	}
}

func TestMatch_TieBreakFirstDeclared(t *testing.T) {
	routes := []RouteSpec{
		{Path: "/a/:id"},
		{Path: "/a/:other"},
	}
	result, ok := Match(routes, "GET", "/a/5")
	if !ok || result.RouteIndex != 0 {
		t.Fatalf("expected first-declared route to win tie, got %+v", result)
	}
}

func TestMatch_RootPath(t *testing.T) {
	routes := []RouteSpec{{Path: "/"}}
	if _, ok := Match(routes, "GET", "/"); !ok {
		t.Fatal("expected root path to match")
	}
}

func TestMatch_TrailingSlashNormalized(t *testing.T) {
	routes := []RouteSpec{{Path: "/orders"}}
	if _, ok := Match(routes, "GET", "/orders/"); !ok {
		t.Fatal("expected trailing slash to be normalized away")
	}
}

func TestMatch_NoMatch(t *testing.T) {
	routes := []RouteSpec{{Path: "/a"}}
	if _, ok := Match(routes, "GET", "/b"); ok {
		t.Fatal("expected no match")
	}
}

func TestCache_MemoizesAndRespectsVersion(t *testing.T) {
	routes := []RouteSpec{{Path: "/orders"}}
	c := NewCache(10)

	r1, ok := c.MatchCached(routes, "v1", "GET", "/orders")
	if !ok {
		t.Fatal("expected match")
	}

	// A different version must not reuse the v1 cache entry even if the
	// underlying routes table happens to be unchanged.
	r2, ok := c.MatchCached(routes, "v2", "GET", "/orders")
	if !ok {
		t.Fatal("expected match")
	}
	if !reflect.DeepEqual(r1, r2) {
		t.Fatalf("expected identical results across versions here, got %+v vs %+v", r1, r2)
	}
}
