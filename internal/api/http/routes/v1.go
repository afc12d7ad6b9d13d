package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/biamino/biamino-backend/internal/auth"
	"github.com/biamino/biamino-backend/internal/comments"
	"github.com/biamino/biamino-backend/internal/projects"
	"github.com/biamino/biamino-backend/internal/session"
	"github.com/biamino/biamino-backend/internal/store"
	"github.com/biamino/biamino-backend/internal/transfer"
	"github.com/biamino/biamino-backend/internal/users"
)

type V1Deps struct {
	Store    store.Store
	Sessions *session.Manager
	Transfer *transfer.Service
}

func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1")
	api.Use(auth.WithSession(dep.Sessions))

	auth.Register(api.Group("/auth"), dep.Sessions)
	projects.Register(api, dep.Store)
	comments.Register(api, dep.Store)
	users.Register(api, dep.Store)
	transfer.Register(api, dep.Transfer)
}
