package router

import (
	"fmt"
	"log/slog"
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/handler"
	"yamdb/internal/microservices/http-api/middleware"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the HTTP surface is built from.
type Deps struct {
	Logger         *slog.Logger
	TokenValidator middleware.TokenValidator
	AuthLimiter    middleware.Limiter
	Metrics        bool

	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Categories *handler.TaxonomyHandler
	Genres     *handler.TaxonomyHandler
	Titles     *handler.TitleHandler
	Reviews    *handler.ReviewHandler
	Comments   *handler.CommentHandler
}

// New wires middleware and every route under /api/v1.
func New(deps Deps) (*gin.Engine, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidators(v); err != nil {
			return nil, fmt.Errorf("failed to register validators: %w", err)
		}
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found", "code": "not_found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed", "code": "method_not_allowed"})
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Metrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	public := r.Group("/api/v1")
	authed := r.Group("/api/v1", middleware.AuthMiddleware(deps.TokenValidator))

	var limit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if deps.AuthLimiter != nil {
		limit = middleware.RateLimitMiddleware(deps.AuthLimiter, "auth", deps.Logger)
	}
	deps.Auth.RegisterRoutes(public, limit)
	deps.Users.RegisterRoutes(authed)

	deps.Categories.RegisterRoutes(public, authed)
	deps.Genres.RegisterRoutes(public, authed)
	deps.Titles.RegisterRoutes(public, authed)
	deps.Reviews.RegisterRoutes(public, authed)
	deps.Comments.RegisterRoutes(public, authed)

	return r, nil
}
