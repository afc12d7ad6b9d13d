package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	httpapi "github.com/biamino/biamino-backend/internal/api/http"
	"github.com/biamino/biamino-backend/internal/api/http/middleware"
	"github.com/biamino/biamino-backend/internal/api/http/routes"
	"github.com/biamino/biamino-backend/internal/session"
	"github.com/biamino/biamino-backend/internal/store"
	"github.com/biamino/biamino-backend/internal/transfer"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Backend     string
	Store       store.Store
	Sessions    *session.Manager
	Transfer    *transfer.Service
	Logger      zerolog.Logger
	CORSOrigins []string
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(dep.Logger))

	if len(dep.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     dep.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Session-Token", "X-Request-Id"},
			ExposeHeaders:    []string{"Content-Disposition", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Backend, dep.Store)
	healthHandler.RegisterRoutes(r)

	routes.RegisterV1(r, routes.V1Deps{
		Store:    dep.Store,
		Sessions: dep.Sessions,
		Transfer: dep.Transfer,
	})

	return r
}
