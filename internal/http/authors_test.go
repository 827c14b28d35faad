package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/locallibrary/internal/database"
	"github.com/openshelf/locallibrary/internal/database/authors"
	"github.com/openshelf/locallibrary/internal/entities"
)

func setupAuthorsRouter(t *testing.T, db *database.Database) *gin.Engine {
	t.Helper()

	controller := NewAuthorsController(authors.NewRepository(db.DB))

	router := newTestRouter(t)
	router.GET("/catalog/author/create", controller.CreateForm)
	router.POST("/catalog/author/create", controller.Create)
	router.GET("/catalog/author/:id/update", controller.UpdateForm)
	router.POST("/catalog/author/:id/update", controller.Update)
	router.GET("/catalog/author/:id/delete", controller.DeleteForm)
	router.POST("/catalog/author/:id/delete", controller.Delete)
	return router
}

func TestAuthorCreate(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	router := setupAuthorsRouter(t, db)

	w := postForm(router, "/catalog/author/create", url.Values{
		"first_name":    {"Ursula"},
		"last_name":     {"Le Guin"},
		"date_of_birth": {"1929-10-21"},
		"date_of_death": {"2018-01-22"},
	})

	assert.Equal(t, http.StatusSeeOther, w.Code)

	var saved entities.Author
	require.NoError(t, db.DB.Where("last_name = ?", "Le Guin").First(&saved).Error)
	assert.Equal(t, "Ursula", saved.FirstName)
	require.NotNil(t, saved.DateOfBirth)
	assert.Equal(t, "1929-10-21", saved.DateOfBirth.Format("2006-01-02"))
	// Redirects to the new author's detail page
	assert.Equal(t, "/catalog/author/"+itoa(saved.ID), w.Header().Get("Location"))
}

func TestAuthorCreate_MissingNames(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	router := setupAuthorsRouter(t, db)

	w := postForm(router, "/catalog/author/create", url.Values{
		"first_name": {""},
		"last_name":  {""},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "First name is required")
	assert.Contains(t, w.Body.String(), "Last name is required")

	var count int64
	db.DB.Model(&entities.Author{}).Count(&count)
	assert.Zero(t, count)
}

func TestAuthorCreate_InvalidDates(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	router := setupAuthorsRouter(t, db)

	w := postForm(router, "/catalog/author/create", url.Values{
		"first_name":    {"Test"},
		"last_name":     {"Author"},
		"date_of_birth": {"not-a-date"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Date of birth must be a valid date")

	w = postForm(router, "/catalog/author/create", url.Values{
		"first_name":    {"Test"},
		"last_name":     {"Author"},
		"date_of_birth": {"2000-01-01"},
		"date_of_death": {"1990-01-01"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Date of death cannot be before date of birth")
}

func TestAuthorUpdate(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	author := entities.Author{FirstName: "Ursula", LastName: "LeGuin"}
	require.NoError(t, db.DB.Create(&author).Error)

	router := setupAuthorsRouter(t, db)

	// The form comes pre-filled
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/catalog/author/"+itoa(author.ID)+"/update", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="Ursula"`)

	w2 := postForm(router, "/catalog/author/"+itoa(author.ID)+"/update", url.Values{
		"first_name": {"Ursula"},
		"last_name":  {"Le Guin"},
	})
	assert.Equal(t, http.StatusSeeOther, w2.Code)

	var saved entities.Author
	require.NoError(t, db.DB.First(&saved, author.ID).Error)
	assert.Equal(t, "Le Guin", saved.LastName)
}

func TestAuthorUpdate_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	router := setupAuthorsRouter(t, db)

	w := postForm(router, "/catalog/author/9999/update", url.Values{
		"first_name": {"Ghost"},
		"last_name":  {"Writer"},
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthorDelete(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	var language entities.Language
	require.NoError(t, db.DB.Where("name = ?", "English").First(&language).Error)

	author := entities.Author{FirstName: "Iain", LastName: "Banks"}
	require.NoError(t, db.DB.Create(&author).Error)
	book := entities.Book{Title: "The Player of Games", AuthorID: &author.ID, LanguageID: language.ID}
	require.NoError(t, db.DB.Create(&book).Error)

	router := setupAuthorsRouter(t, db)

	// Confirmation page warns about the affected books
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/catalog/author/"+itoa(author.ID)+"/delete", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "The Player of Games")

	w2 := postForm(router, "/catalog/author/"+itoa(author.ID)+"/delete", url.Values{})
	assert.Equal(t, http.StatusSeeOther, w2.Code)
	assert.Equal(t, "/catalog/authors", w2.Header().Get("Location"))

	var count int64
	db.DB.Model(&entities.Author{}).Count(&count)
	assert.Zero(t, count)

	// The book survives without an author
	var kept entities.Book
	require.NoError(t, db.DB.First(&kept, book.ID).Error)
	assert.Nil(t, kept.AuthorID)
}
