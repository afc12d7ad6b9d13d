package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/biamino/biamino-backend/internal/api/http"
	"github.com/biamino/biamino-backend/internal/session"
)

type Handler struct {
	manager *session.Manager
}

func Register(rg *gin.RouterGroup, m *session.Manager) {
	h := &Handler{manager: m}

	rg.POST("/login", h.login)
	rg.POST("/logout", h.logout)
	rg.GET("/me", RequireSession(), h.me)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.BadBody(c)
		return
	}

	s, ok := h.manager.Login(c.Request.Context(), req.Email, req.Password)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid email or password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "token": s.Token, "user": s.User})
}

// logout is idempotent: an anonymous call succeeds and changes nothing.
func (h *Handler) logout(c *gin.Context) {
	if s, ok := CurrentSession(c); ok {
		if err := h.manager.Logout(c.Request.Context(), s.Token); err != nil {
			httpapi.WriteError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) me(c *gin.Context) {
	s, _ := CurrentSession(c)
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": s.User, "state": s.State().String()})
}
