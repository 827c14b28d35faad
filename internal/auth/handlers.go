package auth

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/locallibrary/internal/entities"
)

// setupMutex serializes setup requests to prevent race conditions.
var setupMutex sync.Mutex

// isLocalPath validates that a redirect path is local to prevent open redirect attacks.
func isLocalPath(path string) bool {
	if path == "" {
		return false
	}
	if !strings.HasPrefix(path, "/") {
		return false
	}
	// Reject protocol-relative URLs (//evil.com)
	if strings.HasPrefix(path, "//") {
		return false
	}
	if strings.Contains(path, "://") {
		return false
	}
	if strings.Contains(path, "\\") {
		return false
	}
	return true
}

// sanitizeRedirectPath returns a safe redirect path, defaulting to "/" if invalid.
func sanitizeRedirectPath(path string) string {
	if isLocalPath(path) {
		return path
	}
	return "/"
}

// Controller handles the login, logout and first-run setup endpoints.
type Controller struct {
	service        *Service
	sessionManager *SessionManager
}

// NewController creates a new authentication controller.
func NewController(service *Service, sessionManager *SessionManager) *Controller {
	return &Controller{
		service:        service,
		sessionManager: sessionManager,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *Controller) RegisterRoutes(router *gin.Engine) {
	router.GET("/login", ac.LoginPage)
	router.POST("/login", ac.Login)
	router.POST("/logout", ac.Logout)
	router.GET("/logout", ac.Logout) // Support GET for simple logout links
	router.GET("/setup", ac.SetupPage)
	router.POST("/setup", ac.Setup)
}

// LoginPage renders the login form.
func (ac *Controller) LoginPage(c *gin.Context) {
	if ac.sessionManager != nil && ac.sessionManager.IsAuthenticated(c.Request) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	next := sanitizeRedirectPath(c.Query("next"))

	// First run: no accounts yet, send to setup
	hasUsers, _ := ac.service.HasUsers()
	if !hasUsers {
		c.Redirect(http.StatusFound, "/setup")
		return
	}

	c.HTML(http.StatusOK, "login", gin.H{
		"Title":     "Sign in",
		"Next":      next,
		"Username":  "",
		"Error":     "",
		"CSRFToken": GetCSRFToken(c),
	})
}

// Login handles the login form submission.
func (ac *Controller) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	next := sanitizeRedirectPath(c.PostForm("next"))

	user, err := ac.service.Authenticate(username, password)
	if err != nil {
		message := "Invalid username or password"
		if errors.Is(err, ErrAccountLocked) {
			message = "Account is locked. Try again later."
		}
		c.HTML(http.StatusUnauthorized, "login", gin.H{
			"Title":     "Sign in",
			"Next":      next,
			"Username":  username,
			"CSRFToken": GetCSRFToken(c),
			"Error":     message,
		})
		return
	}

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		c.String(http.StatusInternalServerError, "Failed to create session")
		return
	}

	c.Redirect(http.StatusFound, next)
}

// Logout destroys the session and returns to the home page.
func (ac *Controller) Logout(c *gin.Context) {
	if ac.sessionManager != nil {
		_ = ac.sessionManager.DestroySession(c.Request)
	}
	c.Redirect(http.StatusFound, "/")
}

// SetupPage renders the first-run administrator setup form.
func (ac *Controller) SetupPage(c *gin.Context) {
	hasUsers, _ := ac.service.HasUsers()
	if hasUsers {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	c.HTML(http.StatusOK, "setup", gin.H{
		"Title":     "Create administrator account",
		"Username":  "",
		"Email":     "",
		"Error":     "",
		"CSRFToken": GetCSRFToken(c),
	})
}

// Setup creates the first administrator account.
func (ac *Controller) Setup(c *gin.Context) {
	setupMutex.Lock()
	defer setupMutex.Unlock()

	hasUsers, _ := ac.service.HasUsers()
	if hasUsers {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	username := c.PostForm("username")
	email := c.PostForm("email")
	password := c.PostForm("password")

	user, err := ac.service.CreateUser(username, email, password, entities.UserRoleAdmin)
	if err != nil {
		c.HTML(http.StatusBadRequest, "setup", gin.H{
			"Title":     "Create administrator account",
			"Username":  username,
			"Email":     email,
			"CSRFToken": GetCSRFToken(c),
			"Error":     err.Error(),
		})
		return
	}

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	c.Redirect(http.StatusFound, "/")
}
