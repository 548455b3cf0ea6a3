package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tazhibayda/user-service/internal/metrics"
	"github.com/tazhibayda/user-service/internal/repo"
	"github.com/tazhibayda/user-service/internal/security"
)

const (
	requestIDKey = "X-Request-ID"
	authUserKey  = "authUser"
)

type AuthUser struct {
	ID       string
	Username string
}

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDKey)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDKey, id)
		c.Next()
	}
}

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.InFlight.Inc()
		start := time.Now()

		c.Next()

		metrics.InFlight.Dec()
		metrics.ReqDuration.WithLabelValues(route, c.Request.Method).
			Observe(time.Since(start).Seconds())
		metrics.RequestsTotal.WithLabelValues(route, c.Request.Method,
			fmt.Sprintf("%d", c.Writer.Status())).Inc()
	}
}

// RateLimit counts requests per client IP per route in Redis with a
// one-minute window. Disabled when Redis is absent or the limit is 0.
func RateLimit(rds *repo.Redis, perMin int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rds == nil || perMin <= 0 {
			c.Next()
			return
		}
		key := fmt.Sprintf("rl:%s:%s", c.FullPath(), c.ClientIP())
		n, err := rds.C.Incr(c.Request.Context(), key).Result()
		if err != nil {
			// limiter unavailable must not block signin
			c.Next()
			return
		}
		if n == 1 {
			rds.C.Expire(c.Request.Context(), key, time.Minute)
		}
		if n > int64(perMin) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "too many requests"})
			return
		}
		c.Next()
	}
}

func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(strings.ToLower(h), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing bearer"})
			return
		}
		tok := strings.TrimSpace(h[len("Bearer "):])
		claims, err := security.ParseAccess(secret, tok)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
			return
		}
		c.Set(authUserKey, AuthUser{ID: claims.ID, Username: claims.Username})
		c.Next()
	}
}
