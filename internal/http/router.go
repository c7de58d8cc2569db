package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshare/internal/auth"
	apperrors "github.com/mrlokans/bookshare/internal/errors"
	"github.com/mrlokans/bookshare/internal/logging"
	"github.com/mrlokans/bookshare/internal/metrics"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(logging.GinMiddleware())
	router.Use(metrics.GinMiddleware())

	// Renders errors attached by handlers and middleware, recovers panics
	router.Use(ErrorHandler())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	router.Use(auth.StrictTransportSecurityMiddleware())

	router.NoRoute(func(c *gin.Context) {
		fail(c, apperrors.NotFound("Route not found"))
	})

	requireUser := cfg.AuthMiddleware.RequireUser()
	optionalUser := cfg.AuthMiddleware.OptionalUser()

	health := NewHealthController(cfg.Database, cfg.Version)
	accounts := NewAccountsController(cfg.Accounts)
	books := NewBooksController(cfg.Books, cfg.MaxUploadBytes)
	comments := NewCommentsController(cfg.Comments)
	categories := NewCategoriesController(cfg.Categories)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")

	// Accounts and tokens
	api.POST("/login", accounts.Login)
	api.POST("/token/refresh-token", accounts.Refresh)
	api.POST("/users", accounts.Register)
	api.POST("/user", accounts.Register)
	api.GET("/users/confirm/email", accounts.ConfirmEmail)
	api.GET("/users/me", requireUser, accounts.Me)

	api.GET("/categories", categories.List)

	// Books
	api.GET("/books", books.List)
	api.POST("/books", requireUser, books.Create)
	api.GET("/books/:id", optionalUser, books.Get)
	api.PUT("/books/:id", requireUser, books.Update)
	api.DELETE("/books/:id", requireUser, books.Delete)
	api.POST("/books/:id/likes", requireUser, books.Like)
	api.DELETE("/books/:id/likes", requireUser, books.Unlike)
	api.GET("/books/:id/download", requireUser, books.Download)

	// Comments
	api.GET("/books/:id/comments", comments.List)
	api.POST("/books/:id/comments", requireUser, comments.Create)
	api.DELETE("/comments/:commentId", requireUser, comments.Delete)

	if cfg.Files != nil {
		files := NewFilesController(cfg.Files)
		router.GET("/files/*path", files.Get)
	}

	return router
}
