// Package comments serves a project's comment panel over HTTP.
package comments

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/biamino/biamino-backend/internal/api/http"
	"github.com/biamino/biamino-backend/internal/auth"
	"github.com/biamino/biamino-backend/internal/domain"
	"github.com/biamino/biamino-backend/internal/store"
	"github.com/biamino/biamino-backend/internal/views"
)

type Handler struct {
	store store.CommentStore
}

// Register mounts the comment routes on rg. Any signed-in user may read
// and post; only admins delete.
func Register(rg *gin.RouterGroup, s store.CommentStore) {
	h := &Handler{store: s}

	g := rg.Group("/projects/:id/comments", auth.RequireSession())
	g.GET("", h.list)
	g.POST("", h.create)
	g.DELETE("/:commentId", auth.RequireRole(domain.RoleAdmin), h.delete)
}

func (h *Handler) panel(c *gin.Context) *views.CommentPanel {
	return views.NewCommentPanel(h.store, auth.CurrentUser(c), c.Param("id"))
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.panel(c).Load(c.Request.Context())
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "comments": items})
}

type createReq struct {
	Content string `json:"content"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.BadBody(c)
		return
	}

	items, err := h.panel(c).Add(c.Request.Context(), req.Content)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "comments": items})
}

func (h *Handler) delete(c *gin.Context) {
	items, err := h.panel(c).Delete(c.Request.Context(), c.Param("commentId"))
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "comments": items})
}
