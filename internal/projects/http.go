// Package projects serves the department, project list and project detail
// screens over HTTP.
package projects

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
	store store.Store
}

// Register mounts the project routes on rg, which must already carry
// auth.WithSession. Reads need a session; writes need the admin role.
func Register(rg *gin.RouterGroup, s store.Store) {
	h := &Handler{store: s}
	signedIn := auth.RequireSession()
	admin := auth.RequireRole(domain.RoleAdmin)

	rg.GET("/departments", h.departments)

	dept := rg.Group("/departments/:department", h.department)
	dept.GET("/projects", signedIn, h.list)
	dept.POST("/projects", admin, h.create)
	dept.PATCH("/projects/:id", admin, h.updateInList)

	p := rg.Group("/projects/:id")
	p.GET("", signedIn, h.detail)
	p.PATCH("", admin, h.update)
	p.DELETE("", admin, h.delete)

	p.POST("/custom-fields", admin, h.createCustomField)
	p.PATCH("/custom-fields/:fieldId", admin, h.updateCustomField)
	p.DELETE("/custom-fields/:fieldId", admin, h.deleteCustomField)

	p.POST("/links", admin, h.createLink)
	p.PATCH("/links/:linkId", admin, h.updateLink)
	p.DELETE("/links/:linkId", admin, h.deleteLink)
}

func (h *Handler) departments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "departments": views.Departments(), "statuses": views.StatusOptions})
}

// department rejects unknown department path segments.
func (h *Handler) department(c *gin.Context) {
	if _, ok := views.Department(domain.Department(c.Param("department"))); !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "department not found"})
		c.Abort()
		return
	}
	c.Next()
}

func (h *Handler) listView(c *gin.Context) *views.ProjectList {
	return views.NewProjectList(h.store, auth.CurrentUser(c), domain.Department(c.Param("department")))
}

func (h *Handler) detailView(c *gin.Context) *views.ProjectDetail {
	return views.NewProjectDetail(h.store, auth.CurrentUser(c), c.Param("id"))
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.listView(c).Load(c.Request.Context())
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	info, _ := views.Department(domain.Department(c.Param("department")))
	c.JSON(http.StatusOK, gin.H{"ok": true, "department": info, "projects": items})
}

func (h *Handler) create(c *gin.Context) {
	var req domain.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.BadBody(c)
		return
	}

	p, items, err := h.listView(c).Create(c.Request.Context(), req)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p, "projects": items})
}

func (h *Handler) detail(c *gin.Context) {
	d, err := h.detailView(c).Load(c.Request.Context())
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": d.Project, "comments": d.Comments})
}

func (h *Handler) update(c *gin.Context) {
	var req domain.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.BadBody(c)
		return
	}
	h.respondDetail(c)(h.detailView(c).Update(c.Request.Context(), req))
}

// updateInList edits a project from its department list and answers with
// the reloaded list rather than the detail record.
func (h *Handler) updateInList(c *gin.Context) {
	var req domain.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.BadBody(c)
		return
	}

	items, err := h.listView(c).Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

// delete removes the project and returns its department's reloaded list.
func (h *Handler) delete(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.store.GetProject(ctx, c.Param("id"))
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}

	list := views.NewProjectList(h.store, auth.CurrentUser(c), p.Department)
	items, err := list.Delete(ctx, p.ID)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) createCustomField(c *gin.Context) {
	var in domain.CustomFieldInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httpapi.BadBody(c)
		return
	}
	h.respondDetail(c)(h.detailView(c).AddCustomField(c.Request.Context(), in))
}

func (h *Handler) updateCustomField(c *gin.Context) {
	var req domain.UpdateCustomFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.BadBody(c)
		return
	}
	h.respondDetail(c)(h.detailView(c).UpdateCustomField(c.Request.Context(), c.Param("fieldId"), req))
}

func (h *Handler) deleteCustomField(c *gin.Context) {
	h.respondDetail(c)(h.detailView(c).DeleteCustomField(c.Request.Context(), c.Param("fieldId")))
}

func (h *Handler) createLink(c *gin.Context) {
	var in domain.ProjectLinkInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httpapi.BadBody(c)
		return
	}
	h.respondDetail(c)(h.detailView(c).AddLink(c.Request.Context(), in))
}

func (h *Handler) updateLink(c *gin.Context) {
	var req domain.UpdateProjectLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.BadBody(c)
		return
	}
	h.respondDetail(c)(h.detailView(c).UpdateLink(c.Request.Context(), c.Param("linkId"), req))
}

func (h *Handler) deleteLink(c *gin.Context) {
	h.respondDetail(c)(h.detailView(c).DeleteLink(c.Request.Context(), c.Param("linkId")))
}

func (h *Handler) respondDetail(c *gin.Context) func(views.Detail, error) {
	return func(d views.Detail, err error) {
		if err != nil {
			httpapi.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "project": d.Project, "comments": d.Comments})
	}
}
