// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the access logger for the intake service. SOS reports
// carry whatever a person in distress typed: phone numbers, email addresses,
// street addresses, names. None of that may reach the logs, so the logger
// never records request or response bodies, fully masks credential-bearing
// headers and the search query parameter (whose value repeats report text),
// and pattern-scrubs phone numbers, emails, and UUID-shaped ids from
// everything else it logs.
//
// The logger also attaches a request-scoped zerolog.Logger to the Gin context
// so handlers and services can emit enriched log lines tied to the request;
// retrieve it with LoggerFrom.
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// maxQueryLogLength caps the logged query string so an oversized request
// cannot bloat the log stream.
const maxQueryLogLength = 2048

// Headers whose values are always replaced with "[REDACTED]". Idempotency
// keys are client-chosen retry tokens; treating them as secrets keeps a log
// leak from enabling replay probing.
var maskedHeaders = map[string]struct{}{
	"authorization":   {},
	"cookie":          {},
	"set-cookie":      {},
	"x-api-key":       {},
	"idempotency-key": {},
}

// Query parameters whose values are masked wholesale rather than
// pattern-scrubbed. The search parameter echoes free-text report content, so
// scrubbing patterns out of it is not enough.
var maskedQueryParams = map[string]struct{}{
	"q": {},
}

// Contact-detail patterns scrubbed from logged values. uuidRE must run before
// phoneRE: the loose phone pattern would otherwise eat the digit runs inside
// a UUID.
var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// scrub substitutes contact-detail patterns in s with typed placeholders.
func scrub(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	s = phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
	return s
}

// RedactOptions adds service-specific masking on top of the built-ins.
// MaskHeaders and MaskQueryParams are matched case-insensitively and merged
// with maskedHeaders and maskedQueryParams respectively.
type RedactOptions struct {
	MaskHeaders     []string
	MaskQueryParams []string
}

// RedactingLogger returns the access-log middleware.
//
// Behavior:
//   - Attaches a request-scoped logger (request_id, method, path, remote_ip)
//     to the context for LoggerFrom.
//   - After the handler runs, emits one structured line with status, latency,
//     byte counts, the scrubbed query string, and the scrubbed header map.
//   - Level follows the outcome: error for 5xx or when the Gin context
//     collected errors, warn for 4xx, info otherwise.
//
// Place it after RequestID so lines carry the correlation id.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	maskH := mergeLowered(maskedHeaders, opts.MaskHeaders)
	maskQ := mergeLowered(maskedQueryParams, opts.MaskQueryParams)

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		var rid string
		if v, ok := c.Get(requestIDKey); ok {
			rid = asString(v)
		}
		if rid == "" {
			rid = c.Writer.Header().Get(requestIDHeader)
		}
		if rid == "" {
			rid = c.GetHeader(requestIDHeader)
		}

		l := log.With().
			Str("request_id", rid).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("remote_ip", c.ClientIP()).
			Logger()
		c.Set(loggerKey, &l)

		// Scrub before the handler runs so a panic cannot skip it.
		query := truncate(scrubQuery(c.Request.URL.RawQuery, maskQ), maxQueryLogLength)
		headers := scrubHeaders(c.Request.Header, maskH)

		c.Next()

		status := c.Writer.Status()
		ev := l.Info()
		switch {
		case len(c.Errors) > 0:
			ev = l.Error().Str("errors", c.Errors.String())
		case status >= 500:
			ev = l.Error()
		case status >= 400:
			ev = l.Warn()
		}

		ev.
			Int("status", status).
			Dur("latency", time.Since(start)).
			Int64("bytes_in", c.Request.ContentLength).
			Int("bytes_out", c.Writer.Size()).
			Str("query", query).
			Interface("headers", headers).
			Msg("request")
	}
}

// scrubQuery rewrites a raw query string with masked parameters replaced
// wholesale and every other value pattern-scrubbed. The raw string is edited
// pair-by-pair instead of re-encoded so the logged form stays readable.
func scrubQuery(raw string, masked map[string]struct{}) string {
	if raw == "" {
		return ""
	}
	pairs := strings.Split(raw, "&")
	for i, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			pairs[i] = scrub(p)
			continue
		}
		if _, m := masked[strings.ToLower(k)]; m {
			pairs[i] = k + "=[REDACTED]"
			continue
		}
		pairs[i] = k + "=" + scrub(v)
	}
	return strings.Join(pairs, "&")
}

// scrubHeaders returns a loggable copy of the request headers with masked
// names fully replaced and the rest pattern-scrubbed.
func scrubHeaders(h map[string][]string, masked map[string]struct{}) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if _, m := masked[strings.ToLower(k)]; m {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = scrub(strings.Join(vv, ", "))
	}
	return out
}

// mergeLowered copies base and adds extras lower-cased, skipping blanks.
func mergeLowered(base map[string]struct{}, extras []string) map[string]struct{} {
	out := make(map[string]struct{}, len(base)+len(extras))
	for k := range base {
		out[k] = struct{}{}
	}
	for _, e := range extras {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			out[e] = struct{}{}
		}
	}
	return out
}

// truncate caps s at max bytes, appending an ellipsis. max <= 0 disables the
// cap. Byte (not rune) truncation is acceptable for log output.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
