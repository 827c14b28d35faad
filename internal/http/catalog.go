package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/locallibrary/internal/auth"
	"github.com/openshelf/locallibrary/internal/database/authors"
	"github.com/openshelf/locallibrary/internal/database/books"
	"github.com/openshelf/locallibrary/internal/database/instances"
	"github.com/openshelf/locallibrary/internal/entities"
)

// Page sizes for the catalog list views.
const (
	BooksPerPage    = 2
	AuthorsPerPage  = 2
	BorrowedPerPage = 10
)

// CatalogController serves the read-only catalog pages: home, book and author
// lists and details, and the signed-in user's borrowed copies.
type CatalogController struct {
	books          *books.Repository
	authors        *authors.Repository
	instances      *instances.Repository
	sessionManager *auth.SessionManager
}

// NewCatalogController creates a new catalog controller.
func NewCatalogController(
	booksRepo *books.Repository,
	authorsRepo *authors.Repository,
	instancesRepo *instances.Repository,
	sessionManager *auth.SessionManager,
) *CatalogController {
	return &CatalogController{
		books:          booksRepo,
		authors:        authorsRepo,
		instances:      instancesRepo,
		sessionManager: sessionManager,
	}
}

// HomePage renders the catalog home page with collection counts and the
// per-session visit tally.
func (controller *CatalogController) HomePage(c *gin.Context) {
	numBooks, err := controller.books.Count()
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading catalog: %s", err.Error())
		return
	}
	numInstances, _ := controller.instances.Count()
	numAvailable, _ := controller.instances.CountByStatus(entities.LoanStatusAvailable)
	numAuthors, _ := controller.authors.Count()

	numVisits := 0
	if controller.sessionManager != nil {
		numVisits = controller.sessionManager.IncrementVisitCount(c.Request)
	}

	c.HTML(http.StatusOK, "index", mergeContext(c, gin.H{
		"Title":         "Local Library Home",
		"NumBooks":      numBooks,
		"NumInstances":  numInstances,
		"NumAvailable":  numAvailable,
		"NumAuthors":    numAuthors,
		"NumVisits":     numVisits,
	}))
}

// BookList renders one page of the book listing.
func (controller *CatalogController) BookList(c *gin.Context) {
	page := pageParam(c)
	bookList, total, err := controller.books.List(page, BooksPerPage)
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading books: %s", err.Error())
		return
	}

	c.HTML(http.StatusOK, "book_list", mergeContext(c, gin.H{
		"Title":      "Books",
		"Books":      bookList,
		"Pagination": newPagination(page, BooksPerPage, total),
	}))
}

// BookDetail renders a single book with its copies. Requires authentication
// (applied as route middleware).
func (controller *CatalogController) BookDetail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid book ID")
		return
	}

	book, err := controller.books.GetByID(uint(id))
	if err != nil {
		c.String(http.StatusNotFound, "Book not found")
		return
	}

	c.HTML(http.StatusOK, "book_detail", mergeContext(c, gin.H{
		"Title": book.Title,
		"Book":  book,
		"Now":   time.Now(),
	}))
}

// AuthorList renders one page of the author listing.
func (controller *CatalogController) AuthorList(c *gin.Context) {
	page := pageParam(c)
	authorList, total, err := controller.authors.List(page, AuthorsPerPage)
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading authors: %s", err.Error())
		return
	}

	c.HTML(http.StatusOK, "author_list", mergeContext(c, gin.H{
		"Title":      "Authors",
		"Authors":    authorList,
		"Pagination": newPagination(page, AuthorsPerPage, total),
	}))
}

// AuthorDetail renders a single author and their books.
func (controller *CatalogController) AuthorDetail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid author ID")
		return
	}

	author, err := controller.authors.GetByID(uint(id))
	if err != nil {
		c.String(http.StatusNotFound, "Author not found")
		return
	}

	c.HTML(http.StatusOK, "author_detail", mergeContext(c, gin.H{
		"Title":  author.FullName(),
		"Author": author,
	}))
}

// MyBorrowed renders the signed-in user's on-loan copies, soonest due first.
// Requires authentication (applied as route middleware).
func (controller *CatalogController) MyBorrowed(c *gin.Context) {
	page := pageParam(c)
	userID := GetUserID(c)

	borrowed, total, err := controller.instances.ListBorrowedByUser(userID, page, BorrowedPerPage)
	if err != nil {
		c.String(http.StatusInternalServerError, "Error loading loans: %s", err.Error())
		return
	}

	c.HTML(http.StatusOK, "borrowed_list", mergeContext(c, gin.H{
		"Title":      "My borrowed books",
		"Instances":  borrowed,
		"Pagination": newPagination(page, BorrowedPerPage, total),
		"Now":        time.Now(),
	}))
}
