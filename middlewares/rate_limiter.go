package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	r        rate.Limit
	burst    int
}

func NewIPRateLimiter(r rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        r,
		burst:    burst,
	}
}

func (l *IPRateLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(l.r, l.burst)
		l.limiters[ip] = lim
	}
	return lim
}

// Allow reports whether ip may proceed right now.
func (l *IPRateLimiter) Allow(ip string) bool {
	return l.get(ip).Allow()
}

func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "too many requests, please wait",
			})
			return
		}
		c.Next()
	}
}

// NewLookupRateLimiter throttles the password-guessing surfaces
// (findCompanyByPassword, adminLogin).
func NewLookupRateLimiter() *IPRateLimiter {
	return NewIPRateLimiter(rate.Every(time.Second), 10)
}

// NewFeedRateLimiter throttles websocket dials on the admin event feed.
func NewFeedRateLimiter() *IPRateLimiter {
	return NewIPRateLimiter(rate.Every(5*time.Second), 5)
}
