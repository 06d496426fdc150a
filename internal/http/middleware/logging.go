// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides request correlation and panic containment:
//
//   - RequestID gives every request a stable correlation id, propagated via
//     the X-Request-ID header and the Gin context. Responders echo it in
//     error envelopes so a caller reporting a failed SOS submission can be
//     matched to the exact log lines.
//   - Recovery converts handler panics into the standard JSON 500 envelope.
//     A panic must never take down intake: dropping one request is bad,
//     dropping the listener during an incident is much worse.
//   - LoggerFrom hands back the request-scoped logger that RedactingLogger
//     attached, so services can log with the request's fields already bound.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// requestIDKey is the Gin context key holding the correlation id.
	requestIDKey = "requestID"
	// requestIDHeader carries the correlation id on requests and responses.
	requestIDHeader = "X-Request-ID"
	// loggerKey is the Gin context key holding the request-scoped logger.
	loggerKey = "logger"
)

// RequestID reuses an incoming X-Request-ID or generates a UUIDv4, then
// stores it in the context and echoes it on the response. Install it first so
// every later middleware and handler sees the id.
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

// Recovery logs the panic value with a stack trace and, when nothing has been
// written yet, responds with the standard error envelope:
//
//	{ "request_id": "...", "code": "internal_error", "error": "internal server error" }
//
// If the handler already wrote part of a response, only the status is forced
// to 500; appending JSON to a half-written body would corrupt it.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				rid, _ := c.Get(requestIDKey)
				log.Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Str("request_id", asString(rid)).
					Msg("panic recovered")

				if !c.Writer.Written() {
					c.Header("Content-Type", "application/json")
					c.Header(requestIDHeader, asString(rid))
					c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
						"request_id": asString(rid),
						"code":       "internal_error",
						"error":      "internal server error",
					})
					return
				}
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped zerolog.Logger attached by
// RedactingLogger, or the global logger when none was attached. The result is
// never nil.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// asString unwraps a context value as a string, with "" for anything else.
func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
