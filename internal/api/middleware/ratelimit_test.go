// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

func hit(h http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/items/", nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimit_EnforcesLimit(t *testing.T) {
	h := RateLimit(RateLimitConfig{RequestLimit: 3, WindowSize: time.Minute})(okHandler())

	for i := 0; i < 3; i++ {
		w := hit(h, "192.168.1.1:12345")
		assert.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}

	w := hit(h, "192.168.1.1:12345")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, rateLimitBody, w.Body.String())
}

func TestRateLimit_DifferentIPsIndependent(t *testing.T) {
	h := RateLimit(RateLimitConfig{RequestLimit: 2, WindowSize: time.Minute})(okHandler())

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, hit(h, "192.168.1.1:12345").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "192.168.1.1:12345").Code)
	assert.Equal(t, http.StatusOK, hit(h, "192.168.1.2:12345").Code, "a second IP has its own window")
}

func TestRateLimit_Whitelist(t *testing.T) {
	h := RateLimit(RateLimitConfig{
		RequestLimit: 1,
		WindowSize:   time.Minute,
		Whitelist:    []string{"10.0.0.0/8", "127.0.0.1", "garbage"},
	})(okHandler())

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(h, "10.1.2.3:1000").Code)
		assert.Equal(t, http.StatusOK, hit(h, "127.0.0.1:1000").Code)
	}
	assert.Equal(t, http.StatusOK, hit(h, "192.0.2.1:1000").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "192.0.2.1:1000").Code)
}

func TestRateLimit_CustomKey(t *testing.T) {
	h := RateLimit(RateLimitConfig{
		RequestLimit: 1,
		WindowSize:   time.Minute,
		KeyFunc:      func(r *http.Request) (string, error) { return r.Header.Get("X-Token"), nil },
	})(okHandler())

	req := func(token string) int {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Token", token)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, req("a"))
	assert.Equal(t, http.StatusOK, req("b"))
	assert.Equal(t, http.StatusTooManyRequests, req("a"))
}
