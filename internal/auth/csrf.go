package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// ContextKeyCSRFToken is the Gin context key holding the per-request CSRF token.
const ContextKeyCSRFToken = "csrf_token"

// CSRFMiddleware creates a Gin middleware for CSRF protection of form posts.
// Safe methods (GET, HEAD, OPTIONS, TRACE) pass through unchecked.
func CSRFMiddleware(secret []byte, secure bool) gin.HandlerFunc {
	csrfProtect := csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		handler := csrfProtect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Store the CSRF token in the context for templates.
			// Session middleware runs after this, so session context is
			// layered on top of the CSRF request replacement.
			c.Set(ContextKeyCSRFToken, csrf.Token(r))
			c.Request = r
			c.Next()
		}))

		handler.ServeHTTP(c.Writer, c.Request)
	}
}

// csrfErrorHandler handles CSRF validation failures.
func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte("403 Forbidden: CSRF token invalid or missing"))
}

// GetCSRFToken returns the CSRF token for the current request, for embedding
// in form templates.
func GetCSRFToken(c *gin.Context) string {
	if token, exists := c.Get(ContextKeyCSRFToken); exists {
		if s, ok := token.(string); ok {
			return s
		}
	}
	return ""
}
