package middleware

// RedactingLogger is the PII-aware access logger. Every request the backend
// sees can carry a CURP: lookups put it in the path, the directory search
// puts fragments of it in the query, and the capture client has historically
// leaked it into custom headers. The registry's privacy rules say CURPs must
// never reach log storage, so this logger scrubs request metadata before a
// single byte is emitted. Bodies are never logged at all.

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Scrub patterns, compiled once at package init. The CURP pattern follows
// the official 18-character layout (4 letters, birth date, sex marker,
// 5 consonants, homoclave). The phone pattern is the loosest and must run
// last so it cannot eat the digit groups of a UUID or a CURP.
var (
	scrubUUID  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	scrubCURP  = regexp.MustCompile(`\b[A-Z]{4}\d{6}[HM][A-Z]{5}[A-Z0-9]{2}\b`)
	scrubEmail = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	scrubPhone = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// scrubPII replaces recognizable identifiers with typed placeholders so a
// log line stays debuggable ("a CURP was here") without carrying the value.
func scrubPII(s string) string {
	if s == "" {
		return s
	}
	s = scrubUUID.ReplaceAllString(s, "[REDACTED:id]")
	s = scrubCURP.ReplaceAllString(s, "[REDACTED:curp]")
	s = scrubEmail.ReplaceAllString(s, "[REDACTED:email]")
	s = scrubPhone.ReplaceAllString(s, "[REDACTED:phone]")
	return s
}

// RedactOptions extends the built-in header mask list. Names in MaskHeaders
// are matched case-insensitively and their values replaced wholesale with
// "[REDACTED]", on top of Authorization, Cookie and Set-Cookie which are
// always masked.
type RedactOptions struct {
	MaskHeaders []string
}

// RedactingLogger returns Gin middleware that emits one structured access
// log line per request after scrubbing PII from the path, query string and
// header values. Matched routes log their pattern (e.g.
// "/api/buscar-registro/:termino"); unmatched requests fall back to the raw
// URL path, scrubbed, since lookup terms travel as path segments.
//
// Log level tracks the response: 5xx at error, 4xx at warn, otherwise info.
// The request id is taken from the X-Request-ID response header when the
// RequestID middleware ran, else from the request header.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	masked := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			masked[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = scrubPII(c.Request.URL.Path)
		}
		query := scrubPII(c.Request.URL.RawQuery)

		headers := make(map[string]string, len(c.Request.Header))
		for name, values := range c.Request.Header {
			if _, hide := masked[strings.ToLower(name)]; hide {
				headers[name] = "[REDACTED]"
			} else {
				headers[name] = scrubPII(strings.Join(values, ", "))
			}
		}

		// Attach the request-scoped logger LoggerFrom hands to handlers,
		// carrying only already-scrubbed fields.
		rid, _ := c.Get(requestIDKey)
		scoped := log.With().
			Str("request_id", asString(rid)).
			Str("method", c.Request.Method).
			Str("path", path).
			Logger()
		c.Set("logger", &scoped)

		c.Next()

		status := c.Writer.Status()
		reqID := c.Writer.Header().Get(requestIDHeader)
		if reqID == "" {
			reqID = c.GetHeader(requestIDHeader)
		}

		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}
		ev.
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", headers).
			Msg("http_request")
	}
}
