package server

import (
	"github.com/gin-gonic/gin"

	"github.com/yel-hadr/resume-parser/internal/resumes"
	"github.com/yel-hadr/resume-parser/internal/shared/config"
	"github.com/yel-hadr/resume-parser/internal/shared/metrics"
	"github.com/yel-hadr/resume-parser/internal/shared/server/middleware"
	"github.com/yel-hadr/resume-parser/internal/shared/server/respond"
)

// RouterDeps carries everything the router needs to register routes.
type RouterDeps struct {
	Config        config.Config
	ResumeHandler *resumes.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	health := func(c *gin.Context) {
		respond.OK(c, gin.H{"ok": true})
	}
	r.GET("/health", health)
	r.GET("/api/v1/health", health)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.Use(middleware.Auth(deps.Config.RequireLogin))
	if deps.ResumeHandler != nil {
		deps.ResumeHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
