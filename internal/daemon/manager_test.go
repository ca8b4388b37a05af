// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/ManuGH/paramlab/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     30 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		MaxHeaderBytes:  1 << 20,
	}
}

func reserveListenAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "reserve listen addr")
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}

func waitForListen(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return errors.New("listen timeout")
}

func getBody(t *testing.T, url string) (int, string) {
	t.Helper()
	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: 2 * time.Second}
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func okHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, body)
	})
}

func TestNewManager_Validation(t *testing.T) {
	_, err := NewManager(testServerConfig(), Deps{Logger: zerolog.Nop(), APIHandler: http.NotFoundHandler()})
	assert.ErrorIs(t, err, ErrMissingLogger)

	_, err = NewManager(testServerConfig(), Deps{Logger: testLogger()})
	assert.ErrorIs(t, err, ErrMissingAPIHandler)

	mgr, err := NewManager(testServerConfig(), Deps{Logger: testLogger(), APIHandler: http.NotFoundHandler()})
	require.NoError(t, err)
	assert.NotNil(t, mgr)
}

func TestManager_ServesAndShutsDown(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	apiAddr := reserveListenAddr(t)
	metricsAddr := reserveListenAddr(t)
	mgr, err := NewManager(testServerConfig(), Deps{
		Logger:         testLogger(),
		APIAddr:        apiAddr,
		APIHandler:     okHandler("api"),
		MetricsAddr:    metricsAddr,
		MetricsHandler: okHandler("metrics"),
	})
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		order []string
	)
	for _, name := range []string{"tracer", "store", "cache"} {
		mgr.RegisterShutdownHook(name, func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mgr.Start(ctx) }()

	require.NoError(t, waitForListen(apiAddr, 2*time.Second))
	require.NoError(t, waitForListen(metricsAddr, 2*time.Second))

	status, body := getBody(t, "http://"+apiAddr+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "api", body)
	_, body = getBody(t, "http://"+metricsAddr+"/metrics")
	assert.Equal(t, "metrics", body)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("manager did not stop")
	}

	assert.Equal(t, []string{"cache", "store", "tracer"}, order)

	// A second Shutdown is a no-op.
	assert.NoError(t, mgr.Shutdown(context.Background()))
}

func TestManager_StartTwice(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	addr := reserveListenAddr(t)
	mgr, err := NewManager(testServerConfig(), Deps{Logger: testLogger(), APIAddr: addr, APIHandler: okHandler("x")})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mgr.Start(ctx) }()
	require.NoError(t, waitForListen(addr, 2*time.Second))

	assert.ErrorIs(t, mgr.Start(ctx), ErrManagerStarted)

	cancel()
	require.NoError(t, <-done)
}

func TestManager_ShutdownBeforeStart(t *testing.T) {
	mgr, err := NewManager(testServerConfig(), Deps{Logger: testLogger(), APIHandler: okHandler("x")})
	require.NoError(t, err)
	assert.ErrorIs(t, mgr.Shutdown(context.Background()), ErrManagerNotStarted)
}

func TestManager_BindFailureRunsHooks(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = busy.Close() }()

	mgr, err := NewManager(testServerConfig(), Deps{
		Logger:     testLogger(),
		APIAddr:    busy.Addr().String(),
		APIHandler: okHandler("x"),
	})
	require.NoError(t, err)

	closed := false
	mgr.RegisterShutdownHook("store", func(context.Context) error {
		closed = true
		return nil
	})

	err = mgr.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start API server")
	assert.True(t, closed, "hooks run when start fails")
}

func TestManager_HookErrorsAreJoined(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	addr := reserveListenAddr(t)
	mgr, err := NewManager(testServerConfig(), Deps{Logger: testLogger(), APIAddr: addr, APIHandler: okHandler("x")})
	require.NoError(t, err)

	errStore := errors.New("store close failed")
	ran := false
	mgr.RegisterShutdownHook("tracer", func(context.Context) error {
		ran = true
		return nil
	})
	mgr.RegisterShutdownHook("store", func(context.Context) error { return errStore })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mgr.Start(ctx) }()
	require.NoError(t, waitForListen(addr, 2*time.Second))
	cancel()

	err = <-done
	assert.ErrorIs(t, err, errStore)
	assert.True(t, ran, "later hooks still run after a failure")
}

func TestManager_ConnectionLimit(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	cfg := testServerConfig()
	cfg.MaxConnections = 1
	addr := reserveListenAddr(t)

	release := make(chan struct{})
	entered := make(chan struct{}, 2)
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		entered <- struct{}{}
		<-release
		_, _ = io.WriteString(w, "done")
	})
	mgr, err := NewManager(cfg, Deps{Logger: testLogger(), APIAddr: addr, APIHandler: handler})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mgr.Start(ctx) }()
	require.NoError(t, waitForListen(addr, 2*time.Second))

	results := make(chan int, 2)
	for range 2 {
		go func() {
			client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: 5 * time.Second}
			resp, err := client.Get("http://" + addr + "/")
			if err != nil {
				results <- -1
				return
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			results <- resp.StatusCode
		}()
	}

	<-entered
	select {
	case <-entered:
		t.Fatal("second request served while the first held the only connection")
	case <-time.After(200 * time.Millisecond):
	}

	close(release)
	assert.Equal(t, http.StatusOK, <-results)
	assert.Equal(t, http.StatusOK, <-results)

	cancel()
	require.NoError(t, <-done)
}
