// Package ratelimit guards the dashboard's review-triggering endpoint. A
// review run spawns test runners and browsers, so the limiter is strict:
// per-client token buckets with a small burst.
package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Limiter hands out one token bucket per client IP.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	rate    rate.Limit
	burst   int
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New creates a limiter allowing r events per second with the given burst.
func New(r rate.Limit, burst int) *Limiter {
	l := &Limiter{
		clients: make(map[string]*clientBucket),
		rate:    r,
		burst:   burst,
	}
	go l.sweep()
	return l
}

// sweep drops buckets idle for over an hour so one-off clients don't
// accumulate forever.
func (l *Limiter) sweep() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		for ip, bucket := range l.clients {
			if time.Since(bucket.lastSeen) > time.Hour {
				delete(l.clients, ip)
			}
		}
		l.mu.Unlock()
	}
}

// Allow reports whether the client may proceed.
func (l *Limiter) Allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, ok := l.clients[clientIP]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[clientIP] = bucket
	}
	bucket.lastSeen = time.Now()
	return bucket.limiter.Allow()
}

// Middleware rejects over-limit requests with 429.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded, try again shortly",
			})
			return
		}
		c.Next()
	}
}
