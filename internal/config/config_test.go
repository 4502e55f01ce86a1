package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Routes: []Route{
			{
				Path:    "/users/:uid",
				Methods: []string{"GET"},
				Targets: []Target{
					{URL: "http://svc-a/users/:uid", Primary: true},
					{URL: "http://svc-b/users/:uid"},
				},
			},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	c := validConfig()
	require.NoError(t, c.Validate())
}

func TestValidate_NoRoutes(t *testing.T) {
	c := Config{}
	assert.Error(t, c.Validate())
}

func TestValidate_DuplicatePaths(t *testing.T) {
	c := validConfig()
	c.Routes = append(c.Routes, c.Routes[0])
	err := c.Validate()
	errs, ok := AsValidationErrors(err)
	require.True(t, ok)
	assert.NotEmpty(t, errs)
}

func TestValidate_MultiplePrimaries(t *testing.T) {
	c := validConfig()
	c.Routes[0].Targets[1].Primary = true
	assert.Error(t, c.Validate())
}

func TestValidate_BadScheme(t *testing.T) {
	c := validConfig()
	c.Routes[0].Targets[0].URL = "ftp://svc-a/users/:uid"
	assert.Error(t, c.Validate())
}

func TestValidate_UnknownPlaceholder(t *testing.T) {
	c := validConfig()
	c.Routes[0].Targets[0].URL = "http://svc-a/users/:uid/orders/:oid"
	assert.Error(t, c.Validate())
}

func TestValidate_UnknownMethod(t *testing.T) {
	c := validConfig()
	c.Routes[0].Methods = []string{"FETCH"}
	assert.Error(t, c.Validate())
}

func TestDefaulted(t *testing.T) {
	c := Config{}.Defaulted()
	assert.Equal(t, 5000, c.Defaults.TimeoutMS)
	require.NotNil(t, c.Defaults.ForwardHeaders)
	require.NotNil(t, c.Defaults.ProxyHeaders)
	require.NotNil(t, c.Defaults.StripHopByHop)
	assert.True(t, *c.Defaults.ForwardHeaders)
	assert.True(t, *c.Defaults.ProxyHeaders)
	assert.True(t, *c.Defaults.StripHopByHop)
}

func TestEffectiveTimeoutMS(t *testing.T) {
	d := Defaults{}
	r := Route{}
	tg := Target{}
	assert.Equal(t, 5000, EffectiveTimeoutMS(d, r, tg))

	routeTimeout := 2000
	r.TimeoutMS = &routeTimeout
	assert.Equal(t, 2000, EffectiveTimeoutMS(d, r, tg))

	targetTimeout := 1000
	tg.TimeoutMS = &targetTimeout
	assert.Equal(t, 1000, EffectiveTimeoutMS(d, r, tg))
}

func TestSortedParamNamesByLength(t *testing.T) {
	names := SortedParamNamesByLength(map[string]string{"id": "1", "idType": "2", "a": "3"})
	require.NotEmpty(t, names)
	assert.Equal(t, "idType", names[0])
}
