package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Metrics())

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	users := r.Group("/api/users")
	{
		users.POST("/signup", RateLimit(h.Redis, h.RateLimitPerMin), h.Signup)
		users.POST("/signin", RateLimit(h.Redis, h.RateLimitPerMin), h.Signin)
		users.POST("/external", h.CreateExternal)
		users.POST("/specific", h.GetSpecificUser)
		users.POST("/follow", h.AddFollower)
		users.POST("/unfollow", h.RemoveFollower)
		users.GET("/:id", h.GetUser)
	}

	auth := r.Group("/api/auth")
	{
		auth.GET("/me", AuthJWT(h.JWTSecret), h.Me)
		auth.PUT("/me", AuthJWT(h.JWTSecret), h.UpdateMe)
	}

	return r
}
