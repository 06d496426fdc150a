// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the per-client token-bucket limiter guarding intake.
// Every accepted SOS submission triggers paid classifier calls, so the
// limiter is first a cost control: it slows a misbehaving client without
// locking out the burst of distinct reporters a real incident produces
// (each reporter gets their own bucket). Replays of already-accepted
// submissions bypass the limiter entirely because they cost nothing.
//
// The limiter is process-local, matching the single-process deployment of
// the rest of the service. A horizontally scaled deployment would need a
// shared limiter to enforce a global rate.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	// bucketIdleTTL is how long an untouched bucket survives before the
	// sweep may drop it.
	bucketIdleTTL = 10 * time.Minute
	// sweepEvery is the number of bucket lookups between idle sweeps.
	sweepEvery = 5000
)

// keyFunc maps a request to the identity owning its token bucket. The
// returned key must be stable across a client's requests and should be
// namespace-prefixed ("ip:...") so other identity schemes can be added
// without colliding.
type keyFunc func(*gin.Context) string

// KeyByIP buckets requests by client IP. Intake is anonymous (people in
// distress do not authenticate), so the remote address is the only identity
// available.
func KeyByIP() keyFunc {
	return func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	}
}

// bucket pairs a client's limiter with its last activity, which drives the
// idle sweep.
type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter holds one token bucket per client key. Buckets are created on
// first sight and swept after bucketIdleTTL of inactivity so the map stays
// bounded. Safe for concurrent use.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	keyFn keyFunc

	mu      sync.Mutex
	buckets map[string]*bucket
	ttl     time.Duration
	sweepN  uint64
}

// NewRateLimiter builds a limiter replenishing rps tokens per second with
// the given burst capacity per client. A burst below 1 is coerced to 1 so a
// fresh bucket can always admit one request.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		keyFn:   keyFn,
		buckets: make(map[string]*bucket),
		ttl:     bucketIdleTTL,
	}
}

// bucketFor returns the limiter for key, creating it on first sight. Every
// sweepEvery lookups it drops idle buckets first, before the requested key is
// touched, so a stale bucket is evicted even when it is the one being asked
// for.
func (rl *RateLimiter) bucketFor(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	rl.sweepN++
	if rl.sweepN >= sweepEvery {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= rl.ttl {
				delete(rl.buckets, k)
			}
		}
		rl.sweepN = 0
	}

	if b, ok := rl.buckets[key]; ok {
		b.lastSeen = now
		lim := b.limiter
		rl.mu.Unlock()
		return lim
	}

	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.buckets[key] = &bucket{limiter: lim, lastSeen: now}
	rl.mu.Unlock()
	return lim
}

// IsRateBypass reports whether IdempotencyValidator flagged this request as
// a replay of an already-recorded submission. Replays are served from the
// store without classifier calls, so they do not consume tokens.
func IsRateBypass(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyRateBypass)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Handler enforces the per-client limit. Over-limit requests get a 429 with
// the standard error envelope and a minimal Retry-After.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		if rl.bucketFor(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}

		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get("X-Request-ID"),
			"code":       "too_many_requests",
			"error":      "rate limit exceeded",
		})
	}
}
