package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/locallibrary/internal/auth"
)

// GetUserID extracts the authenticated user's ID from the Gin context.
// Returns 0 when no user is authenticated.
func GetUserID(c *gin.Context) uint {
	return auth.GetUserID(c)
}

// Pagination describes one page of a list view for the templates.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int64
	TotalPages int
}

// HasPrev reports whether there is a previous page.
func (p Pagination) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether there is a following page.
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// PrevPage returns the previous page number.
func (p Pagination) PrevPage() int { return p.Page - 1 }

// NextPage returns the following page number.
func (p Pagination) NextPage() int { return p.Page + 1 }

// IsPaginated reports whether the list spans more than one page.
func (p Pagination) IsPaginated() bool { return p.TotalPages > 1 }

// pageParam reads the 1-based "page" query parameter, defaulting to 1.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// newPagination builds template pagination state from a repository result.
func newPagination(page, perPage int, total int64) Pagination {
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	return Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// baseContext returns the template values every page needs: who is signed in
// and the CSRF token for any forms.
func baseContext(c *gin.Context) gin.H {
	return gin.H{
		"IsAuthenticated": auth.IsAuthenticated(c),
		"Username":        auth.GetUsername(c),
		"UserRole":        auth.GetUserRole(c),
		"CSRFToken":       auth.GetCSRFToken(c),
	}
}

// mergeContext overlays page-specific values on the base context.
func mergeContext(c *gin.Context, values gin.H) gin.H {
	ctx := baseContext(c)
	for k, v := range values {
		ctx[k] = v
	}
	return ctx
}
