package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/yel-hadr/resume-parser/internal/shared/server/respond"
	"github.com/yel-hadr/resume-parser/internal/shared/telemetry"
)

// Recovery recovers from panics and returns the uniform failure envelope.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				reqID := RequestIDFromContext(c)
				telemetry.Error("panic", map[string]any{
					"request_id": reqID,
					"error":      rec,
					"stack":      string(debug.Stack()),
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
				})
				respond.Error(c, http.StatusInternalServerError, "internal", "Processing failed.")
				c.Abort()
			}
		}()
		c.Next()
	}
}
