// Package config holds the validated, immutable description of routes,
// targets, and defaults that drives the dispatch pipeline.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// structValidator runs the field-level struct tags below before the
// business-rule checks in Validate; it catches shape problems (empty
// required fields, malformed per-field constraints) with one pass
// instead of hand-writing every leaf check.
var structValidator = validator.New(validator.WithRequiredStructEnabled())

// allowedMethods is the closed set of HTTP methods a Route may declare,
// besides the wildcard "*".
var allowedMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true,
	"PATCH": true, "HEAD": true, "OPTIONS": true,
}

// hopByHopHeaders are stripped from the outbound request when
// Defaults.StripHopByHop is set, and always from the relayed response.
var hopByHopHeaders = []string{
	"Connection", "Keep-Alive", "Transfer-Encoding", "TE",
	"Trailer", "Upgrade", "Proxy-Authorization", "Proxy-Authenticate",
}

// Config is the root, immutable-after-validation description of the
// routing table. It is produced by a Source, validated, hashed into a
// Version, and installed into the live config cell.
type Config struct {
	Defaults Defaults        `mapstructure:"defaults" yaml:"defaults" json:"defaults" toml:"defaults"`
	Routes   []Route         `mapstructure:"routes" yaml:"routes" json:"routes" toml:"routes" validate:"dive"`
	Actuator *ActuatorConfig `mapstructure:"actuator,omitempty" yaml:"actuator,omitempty" json:"actuator,omitempty" toml:"actuator,omitempty"`

	// Reloads counts how many times this Config (or a predecessor sharing
	// its lineage) has been replaced by the Refresher. Bumped by the
	// refresher on every successful swap, never by a Source.
	Reloads uint64 `mapstructure:"-" yaml:"-" json:"-" toml:"-"`
}

// Defaults carries process-wide values applied unless a Route or Target
// overrides them.
type Defaults struct {
	TimeoutMS      int         `mapstructure:"timeout_ms" yaml:"timeout_ms" json:"timeout_ms" toml:"timeout_ms"`
	ForwardHeaders *bool       `mapstructure:"forward_headers" yaml:"forward_headers" json:"forward_headers" toml:"forward_headers"`
	ProxyHeaders   *bool       `mapstructure:"proxy_headers" yaml:"proxy_headers" json:"proxy_headers" toml:"proxy_headers"`
	StripHopByHop  *bool       `mapstructure:"strip_hop_by_hop" yaml:"strip_hop_by_hop" json:"strip_hop_by_hop" toml:"strip_hop_by_hop"`
	Headers        HeaderRules `mapstructure:"headers" yaml:"headers" json:"headers" toml:"headers"`
}

// ActuatorConfig is the out-of-core operational surface. Switchboard's
// core never reads these fields beyond parsing them; internal/actuator
// does.
type ActuatorConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled" toml:"enabled"`
	Host    string `mapstructure:"host" yaml:"host" json:"host" toml:"host"`
	Port    int    `mapstructure:"port" yaml:"port" json:"port" toml:"port"`
}

// Route declares a path pattern, the methods it accepts, and the targets
// it fans out to.
type Route struct {
	Path      string      `mapstructure:"path" yaml:"path" json:"path" toml:"path" validate:"required"`
	Methods   []string    `mapstructure:"methods" yaml:"methods" json:"methods" toml:"methods"`
	TimeoutMS *int        `mapstructure:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty" json:"timeout_ms,omitempty" toml:"timeout_ms,omitempty" validate:"omitempty,gt=0"`
	Headers   HeaderRules `mapstructure:"headers" yaml:"headers" json:"headers" toml:"headers"`
	Targets   []Target    `mapstructure:"targets" yaml:"targets" json:"targets" toml:"targets" validate:"dive"`
}

// Target is one downstream dispatch destination.
type Target struct {
	URL       string `mapstructure:"url" yaml:"url" json:"url" toml:"url" validate:"required"`
	Primary   bool   `mapstructure:"primary" yaml:"primary" json:"primary" toml:"primary"`
	TimeoutMS *int   `mapstructure:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty" json:"timeout_ms,omitempty" toml:"timeout_ms,omitempty" validate:"omitempty,gt=0"`
}

// HeaderRules describes additive and subtractive header overrides. Add
// keys are matched case-insensitively against the canonical header name.
type HeaderRules struct {
	Add   map[string]string `mapstructure:"add" yaml:"add" json:"add" toml:"add"`
	Strip []string          `mapstructure:"strip" yaml:"strip" json:"strip" toml:"strip"`
}

// Defaulted returns a copy of the Config with every omitted Defaults
// field filled with its documented default. It never mutates c.
func (c Config) Defaulted() Config {
	c.Defaults = c.Defaults.Defaulted()
	return c
}

func boolPtr(b bool) *bool { return &b }

// Defaulted returns a copy of d with every omitted field filled with its
// documented default.
func (d Defaults) Defaulted() Defaults {
	if d.TimeoutMS <= 0 {
		d.TimeoutMS = 5000
	}
	if d.ForwardHeaders == nil {
		d.ForwardHeaders = boolPtr(true)
	}
	if d.ProxyHeaders == nil {
		d.ProxyHeaders = boolPtr(true)
	}
	if d.StripHopByHop == nil {
		d.StripHopByHop = boolPtr(true)
	}
	return d
}

// EffectiveTimeoutMS returns Target.TimeoutMS, falling back to
// Route.TimeoutMS, falling back to Defaults.TimeoutMS.
func EffectiveTimeoutMS(d Defaults, r Route, t Target) int {
	if t.TimeoutMS != nil {
		return *t.TimeoutMS
	}
	if r.TimeoutMS != nil {
		return *r.TimeoutMS
	}
	return d.Defaulted().TimeoutMS
}

// Validate checks every structural and cross-referential invariant a
// Config must satisfy. It returns a ValidationErrors aggregating every
// violation found, so operators see the whole problem in one pass
// rather than fixing issues one at a time.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if verr := structValidator.Struct(c); verr != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(verr, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = append(errs, FieldError{
					Field:   fe.Namespace(),
					Message: fmt.Sprintf("failed %q constraint", fe.Tag()),
				})
			}
		}
	}

	if len(c.Routes) == 0 {
		errs = append(errs, FieldError{Route: "", Field: "routes", Message: "at least one route is required"})
	}

	seenPaths := make(map[string]int, len(c.Routes))
	for i, r := range c.Routes {
		routeLabel := fmt.Sprintf("routes[%d]", i)
		if dup, ok := seenPaths[r.Path]; ok {
			errs = append(errs, FieldError{
				Route: routeLabel, Field: "path",
				Message: fmt.Sprintf("duplicate path %q (also declared at routes[%d])", r.Path, dup),
			})
		} else {
			seenPaths[r.Path] = i
		}
		errs = append(errs, validateRoute(routeLabel, r)...)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateRoute(label string, r Route) ValidationErrors {
	var errs ValidationErrors

	switch {
	case r.Path == "":
		errs = append(errs, FieldError{Route: label, Field: "path", Message: "path must not be empty"})
	case r.Path == "*":
		// catch-all, always valid
	case strings.HasSuffix(r.Path, "/*"):
		// prefix wildcard, valid as long as there's something before it or it is "/*"
	case !strings.HasPrefix(r.Path, "/"):
		errs = append(errs, FieldError{
			Route: label, Field: "path",
			Message:    fmt.Sprintf("path %q must start with '/'", r.Path),
			Suggestion: "paths must start with '/', be the literal '*', or end in '/*'",
		})
	}

	methods := r.Methods
	if len(methods) == 0 {
		methods = []string{"*"}
	}
	seenMethods := make(map[string]bool, len(methods))
	for _, m := range methods {
		upper := strings.ToUpper(m)
		if upper != "*" && !allowedMethods[upper] {
			errs = append(errs, FieldError{
				Route: label, Field: "methods",
				Message: fmt.Sprintf("unknown method %q", m),
			})
		}
		if seenMethods[upper] {
			errs = append(errs, FieldError{
				Route: label, Field: "methods",
				Message:    fmt.Sprintf("duplicate method %q", m),
				Suggestion: "methods should be unique (case-insensitive)",
			})
		}
		seenMethods[upper] = true
	}

	if len(r.Targets) == 0 {
		errs = append(errs, FieldError{Route: label, Field: "targets", Message: "at least one target is required"})
	}

	primaryCount := 0
	params := routeParamNames(r.Path)
	for i, t := range r.Targets {
		targetLabel := fmt.Sprintf("%s.targets[%d]", label, i)
		if t.Primary {
			primaryCount++
		}
		errs = append(errs, validateTarget(targetLabel, t, params)...)
	}
	if primaryCount > 1 {
		errs = append(errs, FieldError{
			Route: label, Field: "targets",
			Message:    fmt.Sprintf("%d targets marked primary, at most one is allowed", primaryCount),
			Suggestion: "mark exactly one target primary, or leave all false to default to targets[0]",
		})
	}

	return errs
}

func validateTarget(label string, t Target, routeParams map[string]bool) ValidationErrors {
	var errs ValidationErrors

	if t.URL == "" {
		errs = append(errs, FieldError{Route: label, Field: "url", Message: "url must not be empty"})
		return errs
	}

	// Substitute every placeholder with a representative value so the
	// canonical string parses; this checks that every placeholder in the
	// target URL references a real route parameter.
	resolved := t.URL
	for name := range targetParamNames(t.URL) {
		if !routeParams[name] {
			errs = append(errs, FieldError{
				Route: label, Field: "url",
				Message:    fmt.Sprintf("placeholder :%s has no matching route parameter", name),
				Suggestion: "target placeholders must reference a :name segment declared in the route path",
			})
		}
		resolved = strings.ReplaceAll(resolved, ":"+name, "x")
	}

	u, err := url.Parse(resolved)
	if err != nil {
		errs = append(errs, FieldError{Route: label, Field: "url", Message: fmt.Sprintf("invalid url: %v", err)})
		return errs
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, FieldError{
			Route: label, Field: "url",
			Message: fmt.Sprintf("scheme must be http or https, got %q", u.Scheme),
		})
	}
	if u.Host == "" {
		errs = append(errs, FieldError{Route: label, Field: "url", Message: "url must have a host"})
	}

	return errs
}

// routeParamNames returns the set of :name segments a route path
// captures.
func routeParamNames(path string) map[string]bool {
	names := make(map[string]bool)
	for _, seg := range splitSegments(path) {
		if strings.HasPrefix(seg, ":") && len(seg) > 1 {
			names[seg[1:]] = true
		}
	}
	return names
}

// targetParamNames returns the set of :name placeholders in a target
// URL, longest-name-first callers handle substitution order separately
// (see internal/proxy for the descending-length substitution rule).
// A colon followed by a digit is a port (":9000"), not a placeholder.
func targetParamNames(raw string) map[string]bool {
	names := make(map[string]bool)
	i := 0
	for i < len(raw) {
		if raw[i] != ':' {
			i++
			continue
		}
		j := i + 1
		for j < len(raw) && isNameByte(raw[j]) {
			j++
		}
		if j > i+1 && !(raw[i+1] >= '0' && raw[i+1] <= '9') {
			names[raw[i+1:j]] = true
		}
		i = j
	}
	return names
}

func isNameByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

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

// SortedParamNamesByLength returns names ordered longest-first, so a
// caller substituting placeholders in a URL never has a shorter name
// collide with a prefix of a longer one (e.g. ":id" inside ":idType").
func SortedParamNamesByLength(params map[string]string) []string {
	names := make([]string, 0, len(params))
	for n := range params {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return names
}

// HopByHopHeaders returns the fixed set of hop-by-hop header names
// stripped from both the outbound request and the relayed response.
func HopByHopHeaders() []string {
	out := make([]string, len(hopByHopHeaders))
	copy(out, hopByHopHeaders)
	return out
}
