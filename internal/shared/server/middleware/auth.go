package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yel-hadr/resume-parser/internal/shared/auth"
	"github.com/yel-hadr/resume-parser/internal/shared/server/respond"
)

const (
	ownerIDKey = "ownerId"
	isAdminKey = "isAdmin"
	isGuestKey = "isGuest"
)

// Auth validates bearer tokens and stores identity in context. When
// requireLogin is false, an X-Guest-Id header is accepted as an anonymous
// identity instead of a token.
func Auth(requireLogin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))

		if authHeader != "" {
			if !strings.HasPrefix(authHeader, "Bearer ") {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "You must be logged in to perform this action.")
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
			if token == "" {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "You must be logged in to perform this action.")
				return
			}

			claims, err := auth.VerifyJWT(token)
			if err != nil {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "You must be logged in to perform this action.")
				return
			}

			c.Set(ownerIDKey, claims.Sub)
			c.Set(isAdminKey, claims.Admin)
			c.Set(isGuestKey, false)
			c.Next()
			return
		}

		if requireLogin {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "You must be logged in to perform this action.")
			return
		}

		guestID := strings.TrimSpace(c.GetHeader("X-Guest-Id"))
		if guestID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity.")
			return
		}

		c.Set(ownerIDKey, "guest:"+guestID)
		c.Set(isAdminKey, false)
		c.Set(isGuestKey, true)
		c.Next()
	}
}

// OwnerIDFromContext fetches the owner ID set by the auth middleware.
func OwnerIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(ownerIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// IsAdminFromContext reports whether the authenticated principal is elevated.
func IsAdminFromContext(c *gin.Context) bool {
	if c == nil {
		return false
	}
	val, _ := c.Get(isAdminKey)
	if admin, ok := val.(bool); ok {
		return admin
	}
	return false
}
