package server

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/programmernewbie/multimodule-template/internal/config"
	"github.com/programmernewbie/multimodule-template/internal/metrics"
	"github.com/programmernewbie/multimodule-template/pkg/greeting"
)

func init() {
	// Set Gin to test mode
	gin.SetMode(gin.TestMode)
}

func newTestConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Port: "8080", ServiceName: "test"},
		Log:       config.LogConfig{Level: "info", Format: config.LogFormatJSON},
		RateLimit: config.RateLimitConfig{RequestsPerMinute: 100},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
		Metrics:   config.MetricsConfig{Enabled: true},
	}
}

func newTestDeps() *Dependencies {
	return &Dependencies{
		Config:  newTestConfig(),
		Greeter: greeting.NewService(),
		Logger:  zerolog.Nop(),
		Metrics: metrics.New(),
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "body: %s", w.Body.String())
	return body
}

func TestWelcomeEndpoint(t *testing.T) {
	router := New(newTestDeps())

	req := httptest.NewRequest(http.MethodGet, "/api/example/welcome?name=Alice", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Len(t, body, 2)
	assert.Equal(t, "Hello, Alice! This is your Kotlin Multimodule Template.", body["message"])

	_, err := time.Parse(time.RFC3339Nano, body["timestamp"].(string))
	assert.NoError(t, err)
}

func TestWelcomeAsyncEndpoint(t *testing.T) {
	router := New(newTestDeps())

	req := httptest.NewRequest(http.MethodGet, "/api/example/welcome-async", nil)
	w := httptest.NewRecorder()

	start := time.Now()
	router.ServeHTTP(w, req)
	elapsed := time.Since(start)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Len(t, body, 3)
	assert.Equal(t, "Hello async, World! This is your Kotlin Multimodule Template.", body["message"])
	assert.Equal(t, "async", body["type"])
	assert.GreaterOrEqual(t, elapsed, greeting.AsyncDelay)
}

func TestWelcomeAsyncEndpoint_ConcurrentRequestsOverlap(t *testing.T) {
	router := New(newTestDeps())

	const numRequests = 20
	results := make(chan int, numRequests)

	start := time.Now()
	for i := 0; i < numRequests; i++ {
		go func() {
			req := httptest.NewRequest(http.MethodGet, "/api/example/welcome-async?name=Concurrent", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			results <- w.Code
		}()
	}

	for i := 0; i < numRequests; i++ {
		assert.Equal(t, http.StatusOK, <-results)
	}
	assert.Less(t, time.Since(start), 10*greeting.AsyncDelay)
}

func TestHealthEndpoint(t *testing.T) {
	mock := greeting.NewMockGreeter()
	deps := newTestDeps()
	deps.Greeter = mock
	router := New(deps)

	t.Run("returns fixed status", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/example/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, map[string]interface{}{
			"status":  "UP",
			"service": "kotlin-multimodule-template",
		}, decodeBody(t, w))
	})

	t.Run("includes request ID in response headers", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/example/health", nil))

		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("accepts custom request ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/example/health", nil)
		req.Header.Set("X-Request-ID", "test-request-id-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "test-request-id-123", w.Header().Get("X-Request-ID"))
	})

	t.Run("never calls the greeter", func(t *testing.T) {
		assert.Equal(t, int64(0), mock.GreetCalls())
		assert.Equal(t, int64(0), mock.GreetAsyncCalls())
	})
}

func TestUnsupportedMethodsAndRoutes(t *testing.T) {
	router := New(newTestDeps())

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"POST health", http.MethodPost, "/api/example/health"},
		{"PUT welcome", http.MethodPut, "/api/example/welcome"},
		{"DELETE welcome-async", http.MethodDelete, "/api/example/welcome-async"},
		{"unknown route", http.MethodGet, "/nonexistent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}
}

func TestGzipResponse(t *testing.T) {
	router := New(newTestDeps())

	req := httptest.NewRequest(http.MethodGet, "/api/example/welcome?name=Zip", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	raw, err := io.ReadAll(zr)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "Hello, Zip! This is your Kotlin Multimodule Template.", body["message"])
}

func TestCORSPreflight(t *testing.T) {
	router := New(newTestDeps())

	req := httptest.NewRequest(http.MethodOptions, "/api/example/welcome", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "GET")
}

func rateLimitCodes(router *gin.Engine, path, remoteAddr string, forwardedFor []string) []int {
	codes := make([]int, 0, len(forwardedFor))
	for _, xff := range forwardedFor {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = remoteAddr
		if xff != "" {
			req.Header.Set("X-Forwarded-For", xff)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	return codes
}

func TestRateLimit(t *testing.T) {
	deps := newTestDeps()
	deps.Config.RateLimit.RequestsPerMinute = 2

	t.Run("welcome is limited per client", func(t *testing.T) {
		router := New(deps)
		codes := rateLimitCodes(router, "/api/example/welcome", "192.0.3.1:12345", []string{"", "", ""})
		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})

	t.Run("welcome and welcome-async share a budget", func(t *testing.T) {
		router := New(deps)
		first := rateLimitCodes(router, "/api/example/welcome", "192.0.3.2:12345", []string{"", ""})
		second := rateLimitCodes(router, "/api/example/welcome-async", "192.0.3.2:12345", []string{""})
		assert.Equal(t, []int{http.StatusOK, http.StatusOK}, first)
		assert.Equal(t, []int{http.StatusTooManyRequests}, second)
	})

	t.Run("health stays 200 past the limit", func(t *testing.T) {
		router := New(deps)
		codes := rateLimitCodes(router, "/api/example/health", "192.0.3.3:12345", make([]string, 10))
		for i, code := range codes {
			assert.Equal(t, http.StatusOK, code, "health request %d", i+1)
		}

		// Health traffic does not consume the greeting budget either
		codes = rateLimitCodes(router, "/api/example/welcome", "192.0.3.3:12345", []string{""})
		assert.Equal(t, []int{http.StatusOK}, codes)
	})
}

func TestRateLimit_ForwardedFor(t *testing.T) {
	forwarded := []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"}

	t.Run("untrusted peer cannot pick its bucket", func(t *testing.T) {
		deps := newTestDeps()
		deps.Config.RateLimit.RequestsPerMinute = 2
		router := New(deps)

		codes := rateLimitCodes(router, "/api/example/welcome", "192.0.4.1:12345", forwarded)
		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})

	t.Run("trusted proxy forwards client addresses", func(t *testing.T) {
		deps := newTestDeps()
		deps.Config.RateLimit.RequestsPerMinute = 2
		deps.Config.Server.TrustedProxies = []string{"192.0.4.0/24"}
		router := New(deps)

		codes := rateLimitCodes(router, "/api/example/welcome", "192.0.4.2:12345", forwarded)
		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusOK}, codes)
	})

	t.Run("invalid proxy list trusts none", func(t *testing.T) {
		deps := newTestDeps()
		deps.Config.RateLimit.RequestsPerMinute = 2
		deps.Config.Server.TrustedProxies = []string{"not-a-proxy"}
		router := New(deps)

		codes := rateLimitCodes(router, "/api/example/welcome", "192.0.4.3:12345", forwarded)
		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	t.Run("exposes request and greeting counters", func(t *testing.T) {
		router := New(newTestDeps())

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/example/welcome", nil))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		require.Equal(t, http.StatusOK, w.Code)
		out := w.Body.String()
		assert.True(t, strings.Contains(out, `greetings_total{variant="sync"} 1`), out)
		assert.True(t, strings.Contains(out, `http_requests_total{method="GET",route="/api/example/welcome",status="200"} 1`), out)
	})

	t.Run("disabled by config", func(t *testing.T) {
		deps := newTestDeps()
		deps.Config.Metrics.Enabled = false
		router := New(deps)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("absent without collectors", func(t *testing.T) {
		deps := newTestDeps()
		deps.Metrics = nil
		router := New(deps)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/example/welcome", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestWelcomeAsyncEndpoint_ClientGoneLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	deps := newTestDeps()
	deps.Logger = zerolog.New(&buf)
	router := New(deps)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/example/welcome-async", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "log: %s", buf.String())
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "/api/example/welcome-async", entry["route"])
}
