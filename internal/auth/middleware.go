package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/biamino/biamino-backend/internal/domain"
	"github.com/biamino/biamino-backend/internal/session"
)

// WithSession restores the session named by the request token, if any.
// It never rejects a request.
func WithSession(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := ExtractToken(c); token != "" {
			if s, ok := m.Restore(c.Request.Context(), token); ok {
				c.Set(CtxSession, s)
				ctx := zerolog.Ctx(c.Request.Context()).With().
					Str("user_id", s.User.ID).
					Logger().WithContext(c.Request.Context())
				c.Request = c.Request.WithContext(ctx)
			}
		}
		c.Next()
	}
}

// RequireSession rejects anonymous requests.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentSession(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "not signed in"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole rejects requests whose user holds none of roles. Anonymous
// requests get 401.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := CurrentSession(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "not signed in"})
			c.Abort()
			return
		}
		for _, r := range roles {
			if s.User.Role == r {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "forbidden"})
		c.Abort()
	}
}

// ExtractToken reads the session token from a Bearer Authorization header
// or, failing that, X-Session-Token.
func ExtractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return strings.TrimSpace(c.GetHeader("X-Session-Token"))
}
