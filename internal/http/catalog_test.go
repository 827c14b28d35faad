package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/locallibrary/internal/database"
	"github.com/openshelf/locallibrary/internal/database/authors"
	"github.com/openshelf/locallibrary/internal/database/books"
	"github.com/openshelf/locallibrary/internal/database/instances"
	"github.com/openshelf/locallibrary/internal/entities"
)

func newCatalogController(db *database.Database) *CatalogController {
	return NewCatalogController(
		books.NewRepository(db.DB),
		authors.NewRepository(db.DB),
		instances.NewRepository(db.DB),
		nil,
	)
}

func seedCatalog(t *testing.T, db *database.Database) (*entities.Author, []entities.Book) {
	t.Helper()

	var language entities.Language
	require.NoError(t, db.DB.Where("name = ?", "English").First(&language).Error)

	author := entities.Author{FirstName: "Ursula", LastName: "Le Guin"}
	require.NoError(t, db.DB.Create(&author).Error)

	titles := []string{"The Dispossessed", "A Wizard of Earthsea", "The Left Hand of Darkness"}
	bookList := make([]entities.Book, 0, len(titles))
	for _, title := range titles {
		book := entities.Book{Title: title, AuthorID: &author.ID, LanguageID: language.ID}
		require.NoError(t, db.DB.Create(&book).Error)
		bookList = append(bookList, book)
	}
	return &author, bookList
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHomePage(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, bookList := seedCatalog(t, db)
	inst := entities.BookInstance{BookID: bookList[0].ID, Status: entities.LoanStatusAvailable}
	require.NoError(t, db.DB.Create(&inst).Error)

	router := newTestRouter(t)
	router.GET("/", newCatalogController(db).HomePage)

	w := get(router, "/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Local Library")
	// Book, copy and availability counts all render
	assert.Contains(t, w.Body.String(), "Books:</strong> 3")
	assert.Contains(t, w.Body.String(), "Copies:</strong> 1")
	assert.Contains(t, w.Body.String(), "Copies available:</strong> 1")
	assert.Contains(t, w.Body.String(), "Authors:</strong> 1")
}

func TestBookList(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	seedCatalog(t, db)

	router := newTestRouter(t)
	router.GET("/catalog/books", newCatalogController(db).BookList)

	w := get(router, "/catalog/books")

	assert.Equal(t, http.StatusOK, w.Code)
	// Two books per page, alphabetically
	assert.Contains(t, w.Body.String(), "A Wizard of Earthsea")
	assert.Contains(t, w.Body.String(), "The Dispossessed")
	assert.NotContains(t, w.Body.String(), "The Left Hand of Darkness")
	assert.Contains(t, w.Body.String(), "Page 1 of 2")

	w = get(router, "/catalog/books?page=2")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "The Left Hand of Darkness")
}

func TestBookList_Empty(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	router := newTestRouter(t)
	router.GET("/catalog/books", newCatalogController(db).BookList)

	w := get(router, "/catalog/books")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "no books in the catalog")
}

func TestBookDetail(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, bookList := seedCatalog(t, db)
	due := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
	inst := entities.BookInstance{
		BookID:  bookList[0].ID,
		Status:  entities.LoanStatusOnLoan,
		Imprint: "First edition",
		DueBack: &due,
	}
	require.NoError(t, db.DB.Create(&inst).Error)

	router := newTestRouter(t)
	router.GET("/catalog/book/:id", newCatalogController(db).BookDetail)

	w := get(router, "/catalog/book/"+itoa(bookList[0].ID))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "The Dispossessed")
	assert.Contains(t, w.Body.String(), "Le Guin, Ursula")
	assert.Contains(t, w.Body.String(), "On loan")
	assert.Contains(t, w.Body.String(), "2030-05-01")
}

func TestBookDetail_RenewLinkForLibrarians(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, bookList := seedCatalog(t, db)
	inst := entities.BookInstance{BookID: bookList[0].ID, Status: entities.LoanStatusOnLoan}
	require.NoError(t, db.DB.Create(&inst).Error)

	controller := newCatalogController(db)

	asLibrarian := newTestRouter(t)
	asLibrarian.GET("/catalog/book/:id", fakeIdentity(1, "librarian", entities.UserRoleLibrarian), controller.BookDetail)

	w := get(asLibrarian, "/catalog/book/"+itoa(bookList[0].ID))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/renew")

	asMember := newTestRouter(t)
	asMember.GET("/catalog/book/:id", fakeIdentity(2, "reader", entities.UserRoleMember), controller.BookDetail)

	w = get(asMember, "/catalog/book/"+itoa(bookList[0].ID))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "/renew")
}

func TestBookDetail_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	router := newTestRouter(t)
	router.GET("/catalog/book/:id", newCatalogController(db).BookDetail)

	w := get(router, "/catalog/book/9999")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Book not found")
}

func TestAuthorList(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	seedCatalog(t, db)

	router := newTestRouter(t)
	router.GET("/catalog/authors", newCatalogController(db).AuthorList)

	w := get(router, "/catalog/authors")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Le Guin, Ursula")
}

func TestAuthorDetail(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	author, _ := seedCatalog(t, db)

	router := newTestRouter(t)
	router.GET("/catalog/author/:id", newCatalogController(db).AuthorDetail)

	w := get(router, "/catalog/author/"+itoa(author.ID))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Le Guin, Ursula")
	assert.Contains(t, w.Body.String(), "The Dispossessed")
}

func TestAuthorDetail_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	router := newTestRouter(t)
	router.GET("/catalog/author/:id", newCatalogController(db).AuthorDetail)

	w := get(router, "/catalog/author/9999")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Author not found")
}

func TestMyBorrowed(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, bookList := seedCatalog(t, db)

	borrower := entities.User{Username: "reader", Email: "reader@example.com", Role: entities.UserRoleMember}
	require.NoError(t, db.DB.Create(&borrower).Error)

	due := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
	mine := entities.BookInstance{
		BookID: bookList[0].ID, Status: entities.LoanStatusOnLoan,
		BorrowerID: &borrower.ID, DueBack: &due,
	}
	require.NoError(t, db.DB.Create(&mine).Error)
	theirs := entities.BookInstance{BookID: bookList[1].ID, Status: entities.LoanStatusOnLoan}
	require.NoError(t, db.DB.Create(&theirs).Error)

	router := newTestRouter(t)
	router.GET("/catalog/mybooks",
		fakeIdentity(borrower.ID, borrower.Username, borrower.Role),
		newCatalogController(db).MyBorrowed)

	w := get(router, "/catalog/mybooks")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "The Dispossessed")
	assert.NotContains(t, w.Body.String(), "A Wizard of Earthsea")
}

func TestMyBorrowed_Empty(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	router := newTestRouter(t)
	router.GET("/catalog/mybooks",
		fakeIdentity(42, "reader", entities.UserRoleMember),
		newCatalogController(db).MyBorrowed)

	w := get(router, "/catalog/mybooks")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "no borrowed books")
}
