package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/locallibrary/internal/config"
	"github.com/openshelf/locallibrary/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
	ContextKeyRole     = "auth_role"
)

// DefaultUserID is used when authentication is disabled.
const DefaultUserID = uint(0)

// Middleware handles authentication for HTTP requests. Catalog browsing is
// public; the identity middleware only resolves who the caller is, and the
// Require* gates applied per-route decide what they may reach.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	config         config.Auth
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service, sessionManager *SessionManager, cfg config.Auth) *Middleware {
	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		config:         cfg,
	}
}

// Identity returns a middleware that resolves the caller from the session
// cookie, if any, and stores their identity in the Gin context. It never
// rejects a request.
func (m *Middleware) Identity() gin.HandlerFunc {
	if m.config.Mode == config.AuthModeNone {
		return func(c *gin.Context) {
			c.Set(ContextKeyUserID, DefaultUserID)
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if user := m.sessionUser(c); user != nil {
			c.Set(ContextKeyUserID, user.ID)
			c.Set(ContextKeyUsername, user.Username)
			c.Set(ContextKeyRole, user.Role)
		}
		c.Next()
	}
}

// sessionUser loads the user referenced by the session, if valid.
func (m *Middleware) sessionUser(c *gin.Context) *entities.User {
	if m.sessionManager == nil {
		return nil
	}

	userID := m.sessionManager.GetUserID(c.Request)
	if userID == 0 {
		return nil
	}

	user, err := m.service.GetUserByID(userID)
	if err != nil {
		return nil
	}
	return user
}

// RequireAuth returns a middleware that rejects unauthenticated callers.
// Web callers are redirected to the login page with a return path.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.config.Mode == config.AuthModeNone {
			c.Next()
			return
		}

		if GetUserID(c) == 0 {
			c.Redirect(http.StatusFound, "/login?next="+c.Request.URL.Path)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePermission returns a middleware that rejects callers lacking the
// named permission. Runs before the handler body, so unauthorized callers
// never reach storage. Unauthenticated callers are sent to login first;
// authenticated callers without the permission get 403.
func (m *Middleware) RequirePermission(perm entities.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.config.Mode == config.AuthModeNone {
			c.Next()
			return
		}

		if GetUserID(c) == 0 {
			c.Redirect(http.StatusFound, "/login?next="+c.Request.URL.Path)
			c.Abort()
			return
		}

		if !GetUserRole(c).HasPermission(perm) {
			c.String(http.StatusForbidden, "403 Forbidden: missing permission %s", perm)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole returns a middleware that requires one of the given roles.
func (m *Middleware) RequireRole(roles ...entities.UserRole) gin.HandlerFunc {
	roleSet := make(map[entities.UserRole]bool)
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		if m.config.Mode == config.AuthModeNone {
			c.Next()
			return
		}

		if GetUserID(c) == 0 {
			c.Redirect(http.StatusFound, "/login?next="+c.Request.URL.Path)
			c.Abort()
			return
		}

		if !roleSet[GetUserRole(c)] {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

// Helper functions to extract auth data from Gin context

// GetUserID retrieves the authenticated user's ID from the context.
// Returns DefaultUserID (0) if not authenticated or auth is disabled.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return DefaultUserID
}

// GetUsername retrieves the authenticated user's username from the context.
func GetUsername(c *gin.Context) string {
	if name, exists := c.Get(ContextKeyUsername); exists {
		if username, ok := name.(string); ok {
			return username
		}
	}
	return ""
}

// GetUserRole retrieves the authenticated user's role from the context.
func GetUserRole(c *gin.Context) entities.UserRole {
	if r, exists := c.Get(ContextKeyRole); exists {
		if role, ok := r.(entities.UserRole); ok {
			return role
		}
	}
	return ""
}

// IsAuthenticated returns true if the request carries a signed-in user.
func IsAuthenticated(c *gin.Context) bool {
	return GetUserID(c) != 0
}
