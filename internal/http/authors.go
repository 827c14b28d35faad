package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/locallibrary/internal/database/authors"
	"github.com/openshelf/locallibrary/internal/entities"
	"github.com/openshelf/locallibrary/internal/forms"
)

// AuthorsController provides the create/update/delete views for Author
// records. Every operation requires authentication; the route middleware
// enforces it before the handlers run.
type AuthorsController struct {
	authors *authors.Repository
}

// NewAuthorsController creates a new authors controller.
func NewAuthorsController(authorsRepo *authors.Repository) *AuthorsController {
	return &AuthorsController{authors: authorsRepo}
}

// authorFormValues carries submitted form state back into the template.
type authorFormValues struct {
	FirstName   string
	LastName    string
	DateOfBirth string
	DateOfDeath string
}

func formValuesFromAuthor(a *entities.Author) authorFormValues {
	values := authorFormValues{
		FirstName: a.FirstName,
		LastName:  a.LastName,
	}
	if a.DateOfBirth != nil {
		values.DateOfBirth = a.DateOfBirth.Format(forms.RenewalDateLayout)
	}
	if a.DateOfDeath != nil {
		values.DateOfDeath = a.DateOfDeath.Format(forms.RenewalDateLayout)
	}
	return values
}

// parseAuthorForm reads the submitted fields into an Author, collecting
// user-facing messages for anything invalid.
func parseAuthorForm(c *gin.Context) (values authorFormValues, author entities.Author, errs []string) {
	values = authorFormValues{
		FirstName:   c.PostForm("first_name"),
		LastName:    c.PostForm("last_name"),
		DateOfBirth: c.PostForm("date_of_birth"),
		DateOfDeath: c.PostForm("date_of_death"),
	}

	if values.FirstName == "" {
		errs = append(errs, "First name is required")
	}
	if values.LastName == "" {
		errs = append(errs, "Last name is required")
	}

	author.FirstName = values.FirstName
	author.LastName = values.LastName

	if values.DateOfBirth != "" {
		parsed, err := time.Parse(forms.RenewalDateLayout, values.DateOfBirth)
		if err != nil {
			errs = append(errs, "Date of birth must be a valid date (YYYY-MM-DD)")
		} else {
			author.DateOfBirth = &parsed
		}
	}
	if values.DateOfDeath != "" {
		parsed, err := time.Parse(forms.RenewalDateLayout, values.DateOfDeath)
		if err != nil {
			errs = append(errs, "Date of death must be a valid date (YYYY-MM-DD)")
		} else {
			author.DateOfDeath = &parsed
		}
	}

	if author.DateOfBirth != nil && author.DateOfDeath != nil && author.DateOfDeath.Before(*author.DateOfBirth) {
		errs = append(errs, "Date of death cannot be before date of birth")
	}

	return values, author, errs
}

// CreateForm renders an empty author form.
func (controller *AuthorsController) CreateForm(c *gin.Context) {
	c.HTML(http.StatusOK, "author_form", mergeContext(c, gin.H{
		"Title":  "New author",
		"Action": "/catalog/author/create",
		"Values": authorFormValues{},
	}))
}

// Create stores a new author and redirects to their detail page.
func (controller *AuthorsController) Create(c *gin.Context) {
	values, author, errs := parseAuthorForm(c)
	if len(errs) > 0 {
		c.HTML(http.StatusOK, "author_form", mergeContext(c, gin.H{
			"Title":  "New author",
			"Action": "/catalog/author/create",
			"Values": values,
			"Errors": errs,
		}))
		return
	}

	if err := controller.authors.Create(&author); err != nil {
		c.String(http.StatusInternalServerError, "Error saving author: %s", err.Error())
		return
	}

	c.Redirect(http.StatusSeeOther, "/catalog/author/"+strconv.FormatUint(uint64(author.ID), 10))
}

// UpdateForm renders the author form pre-filled with the existing record.
func (controller *AuthorsController) UpdateForm(c *gin.Context) {
	author, ok := controller.fetch(c)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "author_form", mergeContext(c, gin.H{
		"Title":  "Edit author: " + author.FullName(),
		"Action": "/catalog/author/" + strconv.FormatUint(uint64(author.ID), 10) + "/update",
		"Values": formValuesFromAuthor(author),
	}))
}

// Update applies the submitted fields to an existing author.
func (controller *AuthorsController) Update(c *gin.Context) {
	existing, ok := controller.fetch(c)
	if !ok {
		return
	}

	values, parsed, errs := parseAuthorForm(c)
	if len(errs) > 0 {
		c.HTML(http.StatusOK, "author_form", mergeContext(c, gin.H{
			"Title":  "Edit author: " + existing.FullName(),
			"Action": "/catalog/author/" + strconv.FormatUint(uint64(existing.ID), 10) + "/update",
			"Values": values,
			"Errors": errs,
		}))
		return
	}

	existing.FirstName = parsed.FirstName
	existing.LastName = parsed.LastName
	existing.DateOfBirth = parsed.DateOfBirth
	existing.DateOfDeath = parsed.DateOfDeath

	if err := controller.authors.Update(existing); err != nil {
		c.String(http.StatusInternalServerError, "Error saving author: %s", err.Error())
		return
	}

	c.Redirect(http.StatusSeeOther, "/catalog/author/"+strconv.FormatUint(uint64(existing.ID), 10))
}

// DeleteForm renders the delete confirmation page.
func (controller *AuthorsController) DeleteForm(c *gin.Context) {
	author, ok := controller.fetch(c)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "author_confirm_delete", mergeContext(c, gin.H{
		"Title":  "Delete author: " + author.FullName(),
		"Author": author,
	}))
}

// Delete removes the author and redirects to the author listing.
func (controller *AuthorsController) Delete(c *gin.Context) {
	author, ok := controller.fetch(c)
	if !ok {
		return
	}

	if err := controller.authors.Delete(author.ID); err != nil {
		c.String(http.StatusInternalServerError, "Error deleting author: %s", err.Error())
		return
	}

	c.Redirect(http.StatusSeeOther, "/catalog/authors")
}

// fetch loads the author addressed by the :id parameter, writing the error
// response itself when the record is missing.
func (controller *AuthorsController) fetch(c *gin.Context) (*entities.Author, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid author ID")
		return nil, false
	}

	author, err := controller.authors.GetByID(uint(id))
	if err != nil {
		c.String(http.StatusNotFound, "Author not found")
		return nil, false
	}
	return author, true
}
