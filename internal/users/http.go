package users

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/biamino/biamino-backend/internal/api/http"
	"github.com/biamino/biamino-backend/internal/auth"
	"github.com/biamino/biamino-backend/internal/domain"
	"github.com/biamino/biamino-backend/internal/store"
)

type Handler struct {
	store store.UserStore
}

// Register mounts the admin-only account routes on rg.
func Register(rg *gin.RouterGroup, s store.UserStore) {
	h := &Handler{store: s}

	g := rg.Group("/users", auth.RequireRole(domain.RoleAdmin))
	g.GET("", h.list)
	g.POST("", h.create)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.store.ListUsers(c.Request.Context(), store.UserFilter{Email: c.Query("email")})
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "users": items})
}

func (h *Handler) create(c *gin.Context) {
	var req domain.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.BadBody(c)
		return
	}

	u, err := h.store.CreateUser(c.Request.Context(), req)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "user": u})
}

// delete removes the account and the comments it authored. Sessions
// already issued for it stay valid until logout.
func (h *Handler) delete(c *gin.Context) {
	if err := h.store.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
