package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/biamino/biamino-backend/internal/domain"
)

// WriteError maps err onto a status code and writes the error envelope.
func WriteError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body", "fields": verr.Fields})
	case errors.Is(err, domain.ErrInvalidDocument):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "not found"})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "already exists"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	}
}

// BadBody rejects a request body that does not decode.
func BadBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
}
