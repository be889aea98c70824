package main

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"webfront/configs"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()
	return port
}

// smoke test: server starts and stops on context cancel
func TestRunStartsAndStops(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()
	handler, err := bootstrap(&configs.Config{HeaderText: "hi", Port: 0}, logger)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := run(ctx, handler, logger, ":0"); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
}

func TestRunShutdownGraceful(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()
	srv := http.NewServeMux()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := run(ctx, srv, logger, ":0"); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
}

func TestRunListenError(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()
	srv := http.NewServeMux()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := run(ctx, srv, logger, "://bad"); err == nil {
		t.Fatal("expected listen error")
	}
}

func TestRunPortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	logger := zaptest.NewLogger(t).Sugar()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := run(ctx, http.NewServeMux(), logger, ln.Addr().String()); err == nil {
		t.Fatal("expected address in use error")
	}
}

func TestRunServesConfiguredPort(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()
	port := freePort(t)
	t.Setenv("PORT", strconv.Itoa(port))
	cfg, err := configs.Load()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.Port != port || cfg.HTTPAddr() != fmt.Sprintf("0.0.0.0:%d", port) {
		t.Fatalf("PORT not applied: %+v", cfg)
	}
	other := freePort(t)
	for other == cfg.Port {
		other = freePort(t)
	}
	handler, err := bootstrap(cfg, logger)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, handler, logger, cfg.HTTPAddr()) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("run returned error: %v", err)
		}
	}()

	url := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Port)
	var resp *http.Response
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never came up on %d: %v", cfg.Port, err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "healthy") {
		t.Fatalf("unexpected response: %d %s", resp.StatusCode, body)
	}

	conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", other), 200*time.Millisecond)
	if err == nil {
		_ = conn.Close()
		t.Fatalf("expected nothing listening on %d", other)
	}
}

func TestBootstrapSuccess(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()
	cfg := &configs.Config{HeaderText: "Hello", ImageURL: "https://example.com/x.png", Port: 0, Debug: true}
	handler, err := bootstrap(cfg, logger)
	if err != nil {
		t.Fatalf("bootstrap error: %v", err)
	}
	if handler == nil {
		t.Fatal("handler nil")
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Hello") || !strings.Contains(body, "https://example.com/x.png") {
		t.Fatalf("config not injected: %s", body)
	}
}

func TestBootstrapTemplateError(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()

	orig := parseTemplates
	defer func() { parseTemplates = orig }()
	parseTemplates = func() (*template.Template, error) { return nil, errors.New("parse") }

	if _, err := bootstrap(&configs.Config{}, logger); err == nil {
		t.Fatal("expected template error")
	}
}

func TestBuildLogger(t *testing.T) {
	cases := []struct {
		debug bool
		want  bool
	}{
		{debug: true, want: true},
		{debug: false, want: false},
	}
	for _, tc := range cases {
		logger, err := newLogger(tc.debug)
		if err != nil {
			t.Fatalf("newLogger(%v): %v", tc.debug, err)
		}
		if got := logger.Core().Enabled(zapcore.DebugLevel); got != tc.want {
			t.Fatalf("debug=%v: debug level enabled = %v", tc.debug, got)
		}
	}
}
