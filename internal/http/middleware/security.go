// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file sets the hardening headers for the SOS API and the embedded
// dashboard pages. The surface is deliberately small: the service serves JSON
// plus two same-origin HTML pages, so a fixed baseline covers both, and HSTS
// is the only knob (it must stay off unless traffic is HTTPS end-to-end,
// including the proxy-to-app hop).
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// defaultHSTSMaxAge is used when HSTS is enabled without an explicit lifetime.
const defaultHSTSMaxAge = 180 * 24 * time.Hour

// SecurityOptions configures SecurityHeaders. EnableHSTS emits
// Strict-Transport-Security on HTTPS requests only; HSTSMaxAge <= 0 falls
// back to defaultHSTSMaxAge.
type SecurityOptions struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// SecurityHeaders attaches hardening headers to every response.
//
// Always set:
//   - X-Content-Type-Options: nosniff
//   - X-Frame-Options: DENY (the dashboard must not be framed by other sites)
//   - Referrer-Policy: no-referrer (report ids stay out of third-party logs)
//   - Permissions-Policy denying geolocation/microphone/camera: incident
//     location arrives as report text, the pages never ask the browser for it
//
// When the response already carries X-Request-ID (set by RequestID), it is
// added to Access-Control-Expose-Headers so browser clients can quote the id
// when reporting a failed submission.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := opt.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = defaultHSTSMaxAge
	}
	hstsValue := "max-age=" + strconv.Itoa(int(maxAge/time.Second)) + "; includeSubDomains; preload"

	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

		if opt.EnableHSTS && requestIsHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hstsValue)
		}

		exposeRequestID(h)

		c.Next()
	}
}

// requestIsHTTPS reports whether the request arrived over TLS, either
// terminated here or at a proxy that set X-Forwarded-Proto.
func requestIsHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// exposeRequestID appends X-Request-ID to Access-Control-Expose-Headers
// without clobbering values another middleware already exposed.
func exposeRequestID(h http.Header) {
	if h.Get("X-Request-ID") == "" {
		return
	}
	const expose = "Access-Control-Expose-Headers"
	switch cur := h.Get(expose); {
	case cur == "":
		h.Set(expose, "X-Request-ID")
	case !strings.Contains(cur, "X-Request-ID"):
		h.Set(expose, cur+", X-Request-ID")
	}
}
