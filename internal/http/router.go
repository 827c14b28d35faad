package http

import (
	"html/template"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/locallibrary/internal/admin"
	"github.com/openshelf/locallibrary/internal/auth"
	"github.com/openshelf/locallibrary/internal/database"
	"github.com/openshelf/locallibrary/internal/database/authors"
	"github.com/openshelf/locallibrary/internal/database/books"
	"github.com/openshelf/locallibrary/internal/database/instances"
	"github.com/openshelf/locallibrary/internal/entities"
)

// RouterConfig carries every dependency the router needs.
type RouterConfig struct {
	Database       *database.Database
	TemplatesPath  string
	StaticPath     string
	Version        string
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	CSRFSecret     []byte
	SecureCookies  bool
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Security headers on every response
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's
	// request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	// Resolve caller identity; per-route gates decide access
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Identity())
	}

	router.SetHTMLTemplate(loadTemplates(cfg.TemplatesPath))

	router.Static("/static", cfg.StaticPath)

	// Auth routes
	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		authController := auth.NewController(cfg.AuthService, cfg.SessionManager)
		authController.RegisterRoutes(router)
	}

	booksRepo := books.NewRepository(cfg.Database.DB)
	authorsRepo := authors.NewRepository(cfg.Database.DB)
	instancesRepo := instances.NewRepository(cfg.Database.DB)

	health := NewHealthController(cfg.Database, cfg.Version)
	catalog := NewCatalogController(booksRepo, authorsRepo, instancesRepo, cfg.SessionManager)
	renew := NewRenewController(instancesRepo)
	authorViews := NewAuthorsController(authorsRepo)

	requireAuth := passthrough()
	requireRenewPermission := passthrough()
	requireAdmin := passthrough()
	if cfg.AuthMiddleware != nil {
		requireAuth = cfg.AuthMiddleware.RequireAuth()
		requireRenewPermission = cfg.AuthMiddleware.RequirePermission(entities.PermCanMarkReturned)
		requireAdmin = cfg.AuthMiddleware.RequireRole(entities.UserRoleAdmin)
	}

	// Health endpoints
	router.GET("/health", health.Status)

	// Catalog pages
	router.GET("/", catalog.HomePage)
	router.GET("/catalog/books", catalog.BookList)
	router.GET("/catalog/book/:id", requireAuth, catalog.BookDetail)
	router.GET("/catalog/authors", catalog.AuthorList)
	router.GET("/catalog/author/:id", catalog.AuthorDetail)
	router.GET("/catalog/mybooks", requireAuth, catalog.MyBorrowed)

	// Loan renewal, gated by the can-mark-returned permission
	router.GET("/catalog/book/:id/renew", requireRenewPermission, renew.RenewForm)
	router.POST("/catalog/book/:id/renew", requireRenewPermission, renew.Renew)

	// Author management
	router.GET("/catalog/author/create", requireAuth, authorViews.CreateForm)
	router.POST("/catalog/author/create", requireAuth, authorViews.Create)
	router.GET("/catalog/author/:id/update", requireAuth, authorViews.UpdateForm)
	router.POST("/catalog/author/:id/update", requireAuth, authorViews.Update)
	router.GET("/catalog/author/:id/delete", requireAuth, authorViews.DeleteForm)
	router.POST("/catalog/author/:id/delete", requireAuth, authorViews.Delete)

	// Admin surface
	adminController := admin.NewController(cfg.Database.DB, admin.DefaultRegistry())
	adminController.RegisterRoutes(router, requireAdmin)

	return router
}

// passthrough is the no-op gate used when authentication is disabled.
func passthrough() gin.HandlerFunc {
	return func(c *gin.Context) { c.Next() }
}

// loadTemplates parses the HTML templates with the catalog helper functions.
func loadTemplates(path string) *template.Template {
	funcMap := template.FuncMap{
		"statusLabel": func(s entities.LoanStatus) string { return s.DisplayName() },
		"hasPerm": func(r entities.UserRole, perm string) bool {
			return r.HasPermission(entities.Permission(perm))
		},
	}
	return template.Must(template.New("").Funcs(funcMap).ParseGlob(path + "/*.html"))
}
