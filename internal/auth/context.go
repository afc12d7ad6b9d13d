package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/biamino/biamino-backend/internal/domain"
	"github.com/biamino/biamino-backend/internal/session"
)

const CtxSession = "session"

// CurrentSession returns the session restored by WithSession.
func CurrentSession(c *gin.Context) (session.Session, bool) {
	v, ok := c.Get(CtxSession)
	if !ok {
		return session.Session{}, false
	}
	s, ok := v.(session.Session)
	return s, ok
}

// CurrentUser returns the signed-in user, or the zero User when anonymous.
func CurrentUser(c *gin.Context) domain.User {
	s, _ := CurrentSession(c)
	return s.User
}
