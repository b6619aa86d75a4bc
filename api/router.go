// Package api exposes the analysis service over HTTP with gin.
package api

import (
	"github.com/gin-gonic/gin"
)

// RouterConfig holds the HTTP layer settings.
type RouterConfig struct {
	GinMode string
	// Limiter throttles the endpoints that call remote services. Nil disables it.
	Limiter *RateLimiter
}

// NewRouter registers every route on a new gin engine.
func NewRouter(svc Service, cfg RouterConfig) *gin.Engine {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	r := gin.New()
	r.Use(RequestLogger(), Recovery())
	r.Use(CORS())

	h := NewHandler(svc)

	r.GET("/", h.Home)
	r.GET("/health", h.Health)

	repos := r.Group("/api/repos")
	{
		repos.GET("", h.ListRepos)
		repos.GET("/:id", h.GetRepo)
	}

	remote := repos.Group("")
	if cfg.Limiter != nil {
		remote.Use(cfg.Limiter.Middleware())
	}
	{
		remote.POST("", h.AnalyzeRepo)
		remote.POST("/:id/ask", h.AskQuestion)
	}

	return r
}
