package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/locallibrary/internal/database"
	"github.com/openshelf/locallibrary/internal/database/instances"
	"github.com/openshelf/locallibrary/internal/entities"
)

func fixedClock(year int, month time.Month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, day, 10, 30, 0, 0, time.UTC)
	}
}

func createLoanedCopy(t *testing.T, db *database.Database) *entities.BookInstance {
	t.Helper()

	var language entities.Language
	require.NoError(t, db.DB.Where("name = ?", "English").First(&language).Error)

	book := entities.Book{Title: "The Dispossessed", LanguageID: language.ID}
	require.NoError(t, db.DB.Create(&book).Error)

	due := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	inst := entities.BookInstance{
		BookID:  book.ID,
		Status:  entities.LoanStatusOnLoan,
		Imprint: "First edition",
		DueBack: &due,
	}
	require.NoError(t, db.DB.Create(&inst).Error)
	return &inst
}

func setupRenewRouter(t *testing.T, db *database.Database) (*gin.Engine, *RenewController) {
	t.Helper()

	controller := NewRenewController(instances.NewRepository(db.DB))
	controller.now = fixedClock(2024, time.January, 1)

	router := newTestRouter(t)
	router.GET("/catalog/book/:id/renew", controller.RenewForm)
	router.POST("/catalog/book/:id/renew", controller.Renew)
	return router, controller
}

func postForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(w, req)
	return w
}

func TestRenewForm_ProposesThreeWeeks(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	inst := createLoanedCopy(t, db)
	router, _ := setupRenewRouter(t, db)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/catalog/book/"+inst.ID+"/renew", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	// Today is 2024-01-01, so the proposal is three weeks out
	assert.Contains(t, w.Body.String(), `value="2024-01-22"`)
	assert.Contains(t, w.Body.String(), "The Dispossessed")
}

func TestRenewForm_UnknownCopy(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	router, _ := setupRenewRouter(t, db)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/catalog/book/not-a-copy/renew", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Book copy not found")
}

func TestRenew_ValidDate(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	inst := createLoanedCopy(t, db)
	router, _ := setupRenewRouter(t, db)

	w := postForm(router, "/catalog/book/"+inst.ID+"/renew", url.Values{
		"renewal_date": {"2024-01-25"},
	})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	var saved entities.BookInstance
	require.NoError(t, db.DB.First(&saved, "id = ?", inst.ID).Error)
	require.NotNil(t, saved.DueBack)
	assert.Equal(t, "2024-01-25", saved.DueBack.Format("2006-01-02"))
}

func TestRenew_BoundaryDates(t *testing.T) {
	tests := []struct {
		name       string
		date       string
		wantStatus int
	}{
		{"today is allowed", "2024-01-01", http.StatusSeeOther},
		{"exactly four weeks is allowed", "2024-01-29", http.StatusSeeOther},
		{"yesterday is rejected", "2023-12-31", http.StatusOK},
		{"four weeks and a day is rejected", "2024-01-30", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, cleanup := setupTestDB(t)
			defer cleanup()

			inst := createLoanedCopy(t, db)
			router, _ := setupRenewRouter(t, db)

			w := postForm(router, "/catalog/book/"+inst.ID+"/renew", url.Values{
				"renewal_date": {tt.date},
			})

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRenew_PastDate_RerendersWithMessage(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	inst := createLoanedCopy(t, db)
	router, _ := setupRenewRouter(t, db)

	w := postForm(router, "/catalog/book/"+inst.ID+"/renew", url.Values{
		"renewal_date": {"2023-12-25"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "renewal cannot be in the past")
	// The rejected value is preserved in the form
	assert.Contains(t, w.Body.String(), `value="2023-12-25"`)

	// Nothing was persisted
	var saved entities.BookInstance
	require.NoError(t, db.DB.First(&saved, "id = ?", inst.ID).Error)
	assert.Equal(t, "2024-01-08", saved.DueBack.Format("2006-01-02"))
}

func TestRenew_TooFarAhead_RerendersWithMessage(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	inst := createLoanedCopy(t, db)
	router, _ := setupRenewRouter(t, db)

	w := postForm(router, "/catalog/book/"+inst.ID+"/renew", url.Values{
		"renewal_date": {"2024-03-01"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "renewal cannot be more than 4 weeks ahead")
}

func TestRenew_UnparseableDate(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	inst := createLoanedCopy(t, db)
	router, _ := setupRenewRouter(t, db)

	w := postForm(router, "/catalog/book/"+inst.ID+"/renew", url.Values{
		"renewal_date": {"not-a-date"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "enter a valid date")
}

func TestRenew_UnknownCopy(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	router, _ := setupRenewRouter(t, db)

	w := postForm(router, "/catalog/book/missing/renew", url.Values{
		"renewal_date": {"2024-01-25"},
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}
