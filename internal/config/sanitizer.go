package config

import (
	"encoding/json"
	"net/url"
)

// redactionValue replaces anything sensitive a target URL might carry
// (basic-auth userinfo) before the config is ever logged or surfaced on
// the actuator /env endpoint.
const redactionValue = "***REDACTED***"

// Sanitize returns a deep copy of cfg with every target URL's userinfo
// redacted. Switchboard's Config has no dedicated password/API-key
// fields — the only place a secret can hide is in a target URL's
// user:pass@host component.
func Sanitize(cfg *Config) *Config {
	out := deepCopy(cfg)
	for i := range out.Routes {
		for j := range out.Routes[i].Targets {
			out.Routes[i].Targets[j].URL = sanitizeURL(out.Routes[i].Targets[j].URL)
		}
	}
	return out
}

func deepCopy(cfg *Config) *Config {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return cfg
	}
	var copyOf Config
	if err := json.Unmarshal(raw, &copyOf); err != nil {
		return cfg
	}
	return &copyOf
}

func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	u.User = url.UserPassword(u.User.Username(), redactionValue)
	return u.String()
}
