package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/rid", func(c *gin.Context) {
		if v, ok := c.Get(requestIDKey); !ok || v == "" {
			t.Error("request id missing from context")
		}
		c.Status(http.StatusNoContent)
	})

	t.Run("generates when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rid", nil))
		if w.Header().Get(requestIDHeader) == "" {
			t.Fatalf("expected a generated %s header", requestIDHeader)
		}
	})

	t.Run("propagates inbound id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/rid", nil)
		req.Header.Set(requestIDHeader, "station-7-req-42")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if got := w.Header().Get(requestIDHeader); got != "station-7-req-42" {
			t.Fatalf("response id = %q, want station-7-req-42", got)
		}
	})

	t.Run("header lookup is case-insensitive", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/rid", nil)
		req.Header.Set(strings.ToLower(requestIDHeader), "abc-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if got := w.Header().Get(requestIDHeader); got != "abc-123" {
			t.Fatalf("response id = %q, want abc-123", got)
		}
	})
}

func TestLogger_LevelSelectionAndPath(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := withCapturedLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(Logger())
	r.GET("/registros/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/fails", func(c *gin.Context) {
		_ = c.Error(errInsertFailed{})
		c.Status(http.StatusBadRequest)
	})

	for _, path := range []string{"/registros/77", "/no-such-route", "/fails"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	logs := buf.String()
	// 200 logs at info with the route pattern, not the concrete URL.
	if !strings.Contains(logs, `"level":"info"`) || !strings.Contains(logs, `"path":"/registros/:id"`) {
		t.Fatalf("missing info line with route pattern:\n%s", logs)
	}
	// 404 logs at warn and falls back to the raw path.
	if !strings.Contains(logs, `"level":"warn"`) || !strings.Contains(logs, `"path":"/no-such-route"`) {
		t.Fatalf("missing warn line with raw path:\n%s", logs)
	}
	// A context error forces error level even for a 4xx status.
	if !strings.Contains(logs, `"level":"error"`) || !strings.Contains(logs, "insert failed") {
		t.Fatalf("missing error line for context error:\n%s", logs)
	}
}

type errInsertFailed struct{}

func (errInsertFailed) Error() string { return "insert failed" }

func TestRecovery_PanicBecomesJSON500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := withCapturedLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["success"] != false || body["error"] != "Error interno del servidor" {
		t.Fatalf("unexpected body: %v", body)
	}
	if rid, _ := body["request_id"].(string); rid == "" {
		t.Fatal("expected request_id in panic response")
	}
	if logs := buf.String(); !strings.Contains(logs, "panic recovered") {
		t.Fatalf("expected panic log:\n%s", logs)
	}
}

func TestRecovery_PanicAfterWriteSkipsJSONBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := withCapturedLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(Recovery())
	r.GET("/late", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		panic("late kaboom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/late", nil))

	// The partial body must not be followed by the JSON error envelope.
	if strings.Contains(w.Body.String(), "Error interno del servidor") {
		t.Fatalf("JSON error body written after partial response: %q", w.Body.String())
	}
	if logs := buf.String(); !strings.Contains(logs, "panic recovered") {
		t.Fatalf("expected panic log:\n%s", logs)
	}
}

func TestLoggerFrom(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("fallback without logging middleware", func(t *testing.T) {
		buf := withCapturedLogger(t)
		r := gin.New()
		r.GET("/use", func(c *gin.Context) {
			LoggerFrom(c).Info().Msg("bare")
			c.Status(http.StatusOK)
		})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/use", nil))

		logs := buf.String()
		if !strings.Contains(logs, `"message":"bare"`) {
			t.Fatalf("fallback logger did not emit:\n%s", logs)
		}
		if strings.Contains(logs, `"request_id"`) {
			t.Fatalf("fallback logger must not carry request fields:\n%s", logs)
		}
	})

	t.Run("request-scoped via Logger", func(t *testing.T) {
		buf := withCapturedLogger(t)
		r := gin.New()
		r.Use(RequestID())
		r.Use(Logger())
		r.GET("/use", func(c *gin.Context) {
			LoggerFrom(c).Info().Msg("scoped")
			c.Status(http.StatusOK)
		})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/use", nil))

		logs := buf.String()
		if !strings.Contains(logs, `"message":"scoped"`) || !strings.Contains(logs, `"request_id"`) {
			t.Fatalf("expected scoped log with request_id:\n%s", logs)
		}
	})

	t.Run("request-scoped via RedactingLogger", func(t *testing.T) {
		buf := withCapturedLogger(t)
		r := gin.New()
		r.Use(RequestID())
		r.Use(RedactingLogger(RedactOptions{}))
		r.GET("/use", func(c *gin.Context) {
			LoggerFrom(c).Warn().Msg("scoped-redacted")
			c.Status(http.StatusOK)
		})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/use", nil))

		logs := buf.String()
		if !strings.Contains(logs, `"message":"scoped-redacted"`) || !strings.Contains(logs, `"request_id"`) {
			t.Fatalf("expected scoped log with request_id:\n%s", logs)
		}
	})
}

func TestTruncateAndAsString(t *testing.T) {
	if asString("x") != "x" || asString(123) != "" || asString(nil) != "" {
		t.Fatal("asString")
	}
	if truncate("hello", 10) != "hello" {
		t.Fatal("truncate must not touch short strings")
	}
	if got := truncate("abcdefgh", 5); got != "abcde…" {
		t.Fatalf("truncate = %q, want abcde…", got)
	}
	if truncate("abc", 0) != "abc" {
		t.Fatal("max <= 0 must disable the cap")
	}
}
