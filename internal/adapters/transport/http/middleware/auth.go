package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/khattakbelt/community-api/internal/app/auth"
	"github.com/khattakbelt/community-api/internal/domain/model"
)

const identityKey = "identity"

// RequireAuth is the access guard: it extracts the bearer token, verifies
// it, resolves the identity and attaches it to the request context. Every
// failure aborts with the same 401 body so the response does not reveal
// which check failed.
func RequireAuth(svc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractToken(c)
		if raw == "" {
			unauthorized(c)
			return
		}

		identity, err := svc.Authenticate(c.Request.Context(), raw)
		if err != nil {
			unauthorized(c)
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// IdentityFrom returns the identity the guard attached, if any.
func IdentityFrom(c *gin.Context) (model.User, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return model.User{}, false
	}
	identity, ok := v.(model.User)
	return identity, ok
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	// The web client stores the token in a cookie as well.
	if cookie, err := c.Cookie("token"); err == nil {
		return cookie
	}
	return ""
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": "unauthorized",
	})
}
