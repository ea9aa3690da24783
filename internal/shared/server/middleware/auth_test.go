package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yel-hadr/resume-parser/internal/shared/auth"
)

func newAuthRouter(requireLogin bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(requireLogin))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ownerId": OwnerIDFromContext(c),
			"isAdmin": IsAdminFromContext(c),
		})
	})
	return r
}

func TestAuthRequiresIdentity(t *testing.T) {
	r := newAuthRouter(true)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthRejectsGuestWhenLoginRequired(t *testing.T) {
	r := newAuthRouter(true)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Guest-Id", "abc")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for guest when login required, got %d", resp.Code)
	}
}

func TestAuthAcceptsGuestWhenLoginOptional(t *testing.T) {
	r := newAuthRouter(false)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Guest-Id", "abc")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for guest, got %d", resp.Code)
	}
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	token, err := auth.SignJWT(auth.Claims{Sub: "user-1", Admin: true})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}

	r := newAuthRouter(true)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", resp.Code, resp.Body.String())
	}
}
