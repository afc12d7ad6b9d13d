package transfer

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	httpapi "github.com/biamino/biamino-backend/internal/api/http"
	"github.com/biamino/biamino-backend/internal/auth"
	"github.com/biamino/biamino-backend/internal/domain"
)

const maxImportBytes = 32 << 20

type Handler struct {
	svc *Service
}

// Register mounts the admin-only export and import routes on rg.
func Register(rg *gin.RouterGroup, svc *Service) {
	h := &Handler{svc: svc}
	admin := auth.RequireRole(domain.RoleAdmin)

	rg.GET("/export", admin, h.export)
	rg.POST("/import", admin, h.importDocument)
}

// export answers with the document as a file download.
func (h *Handler) export(c *gin.Context) {
	var buf bytes.Buffer
	doc, err := h.svc.WriteExport(c.Request.Context(), &buf)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+FileName(doc.ExportDate)+`"`)
	c.Data(http.StatusOK, "application/json", buf.Bytes())
}

// importDocument accepts the document either as the raw request body or as
// a multipart upload in the "file" field.
func (h *Handler) importDocument(c *gin.Context) {
	var body io.Reader = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "missing file"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unreadable file"})
			return
		}
		defer f.Close()
		body = f
	}

	res, err := h.svc.Import(c.Request.Context(), body)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "result": res})
}
