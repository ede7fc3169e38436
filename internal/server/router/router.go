package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/turnos/internal/server/handlers"
	"github.com/mamadbah2/turnos/internal/server/middleware"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the handlers and policies the router wires together.
type Deps struct {
	Auth          *handlers.AuthHandler
	Stations      *handlers.StationHandler
	Verifier      middleware.TokenVerifier
	ElevatedRoles []string
	// Health is checked by /healthz. Nil means always healthy.
	Health Pinger
}

const healthTimeout = 2 * time.Second

// New wires the Gin engine with required routes and middlewares.
func New(deps Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.AccessLog(logger))

	r.GET("/healthz", func(c *gin.Context) {
		if deps.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			defer cancel()
			if err := deps.Health.Ping(ctx); err != nil {
				logger.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/login", deps.Auth.Login)

	st := api.Group("/stations", middleware.RequireAuth(deps.Verifier))
	st.GET("", deps.Stations.List)
	st.GET("/:id", deps.Stations.Get)
	st.POST("/:id/start", deps.Stations.Start)
	st.POST("/:id/end", deps.Stations.End)
	st.PUT("/:id/assignment", middleware.RequireRole(deps.ElevatedRoles...), deps.Stations.SetAssignment)

	logger.Info("router initialized")

	return r
}
