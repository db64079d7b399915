package controller

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBanner(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "1.0.0", body["version"])
	assert.NotEmpty(t, body["message"])
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "OK", body["message"])
	assert.Equal(t, "Connected", body["database"])
	assert.Equal(t, "Not configured", body["payment_gateway"])
	assert.Contains(t, body, "memory")
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Contains(t, body, "goroutines")
	assert.Contains(t, body, "memory")
	assert.Contains(t, body, "go_version")
}
