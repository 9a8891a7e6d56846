package middlewares

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/utils"
	"golang.org/x/time/rate"
)

const limiterIdle = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	message string

	mu       sync.Mutex
	visitors map[string]*visitor
}

// NewRateLimiter allows n requests per interval from each IP.
func NewRateLimiter(n int, interval time.Duration) *RateLimiter {
	if n < 1 {
		n = 1
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &RateLimiter{
		limit:    rate.Every(interval / time.Duration(n)),
		burst:    n,
		message:  "Too many requests, please slow down",
		visitors: make(map[string]*visitor),
	}
}

// NewStrictRateLimiter is meant for login: 5 attempts per minute per IP.
func NewStrictRateLimiter() gin.HandlerFunc {
	rl := NewRateLimiter(5, time.Minute)
	rl.message = "Too many attempts, please wait a moment"
	return rl.RateLimit()
}

func (rl *RateLimiter) get(ip string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for k, v := range rl.visitors {
		if now.Sub(v.lastSeen) > limiterIdle {
			delete(rl.visitors, k)
		}
	}

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.get(ip, time.Now()).Allow() {
			utils.InfoLogger.Printf("Rate limit hit for %s on %s", ip, c.Request.URL.Path)
			utils.RespondError(c, http.StatusTooManyRequests, errors.New(rl.message))
			c.Abort()
			return
		}
		c.Next()
	}
}
