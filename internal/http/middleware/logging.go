// Package middleware – request correlation, access logging, and recovery.
//
// Order matters: RequestID first so every later log line carries the
// correlation ID, then Logger (or RedactingLogger, which scrubs CURPs and
// contact data from what it logs), then Recovery so panics are reported
// with the request context attached.
//
// Handlers retrieve the request-scoped logger with LoggerFrom, e.g.
// lg.Error().Str("folio", f).Msg("insert failed").
package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"

	// maxQueryLogLength caps logged query strings; lookup terms are short,
	// anything longer is garbage not worth storing.
	maxQueryLogLength = 2048
)

// RequestID reuses an incoming X-Request-ID or generates a UUIDv4, storing
// it in the Gin context and echoing it on the response so capture stations
// can quote it when reporting a failed submission.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// Logger emits one structured access-log line per request and attaches a
// request-scoped zerolog.Logger to the context (key "logger").
//
// The path field is the registered route when one matched, the raw URL
// otherwise. Level selection: error for 5xx or when the context collected
// errors, warn for 4xx, info otherwise.
//
// Logged values are NOT scrubbed; production deployments use
// RedactingLogger instead, which shares this field set.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rid, _ := c.Get(requestIDKey)
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		l := log.With().
			Str("request_id", asString(rid)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("remote_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Str("referer", c.Request.Referer()).
			Str("query", truncate(c.Request.URL.RawQuery, maxQueryLogLength)).
			Int64("bytes_in", c.Request.ContentLength).
			Logger()
		c.Set("logger", &l)

		c.Next()

		status := c.Writer.Status()
		outcome := l.With().
			Int("status", status).
			Dur("latency", time.Since(start)).
			Int("bytes_out", c.Writer.Size()).
			Logger()

		switch {
		case len(c.Errors) > 0:
			outcome.Error().Str("errors", c.Errors.String()).Msg("request")
		case status >= 500:
			outcome.Error().Msg("request")
		case status >= 400:
			outcome.Warn().Msg("request")
		default:
			outcome.Info().Msg("request")
		}
	}
}

// Recovery converts panics into the API's Spanish 500 envelope carrying the
// correlation ID, logging the panic value and stack first. If a handler
// already wrote part of a response the body is left alone and only the
// status is forced.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			rid, _ := c.Get(requestIDKey)
			log.Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("request_id", asString(rid)).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Header("Content-Type", "application/json")
			c.Header(requestIDHeader, asString(rid))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success":    false,
				"error":      "Error interno del servidor",
				"request_id": asString(rid),
			})
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger attached by Logger or
// RedactingLogger, or a field-less fallback so callers never nil-check.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get("logger"); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// asString unwraps a context value expected to hold a string.
func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// truncate caps s at max bytes, marking the cut with an ellipsis.
// A max <= 0 disables the cap.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
