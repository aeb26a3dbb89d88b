package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/OussamaHaimour/chatbot-HCP/internal/config"
	"github.com/OussamaHaimour/chatbot-HCP/utils"
)

// RateLimitMiddleware limits requests per client IP using an in-process token
// bucket. Health checks are exempt.
func RateLimitMiddleware(cfg *config.Config) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)

	limit := rate.Limit(float64(cfg.RateLimitReqs) / float64(cfg.RateLimitWindow))
	burst := cfg.RateLimitReqs

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		limiter, ok := limiters[ip]
		if !ok {
			limiter = rate.NewLimiter(limit, burst)
			limiters[ip] = limiter
		}
		return limiter
	}

	return func(c *gin.Context) {
		if c.FullPath() == "/health" {
			c.Next()
			return
		}

		if !limiterFor(c.ClientIP()).Allow() {
			utils.RespondWithError(c, http.StatusTooManyRequests,
				"rate_limit_exceeded",
				"Too many requests. Please try again later.",
				gin.H{
					"retry_after": cfg.RateLimitWindow,
					"limit":       cfg.RateLimitReqs,
				})
			c.Abort()
			return
		}

		c.Next()
	}
}
