package mock

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/viant/authsession/schema"
	"golang.org/x/time/rate"
)

// rateLimit enforces a token bucket per client IP
func (s *Service) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limit == rate.Inf || s.limit <= 0 {
			c.Next()
			return
		}
		key := c.ClientIP()
		if key == "" {
			key = "unknown"
		}
		limiter, _ := s.limiters.GetOrPut(key, func() *rate.Limiter {
			return rate.NewLimiter(s.limit, s.burst)
		})
		if !limiter.Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, &schema.Response[any]{Message: "Too many attempts"})
			return
		}
		c.Next()
	}
}
