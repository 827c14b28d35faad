package books

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openshelf/locallibrary/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB, func()) {
	dbPath := "./test_books_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Author{},
		&entities.Genre{},
		&entities.Language{},
		&entities.Book{},
		&entities.BookInstance{},
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, db, cleanup
}

func seedCatalog(t *testing.T, db *gorm.DB) (entities.Author, entities.Language, entities.Genre) {
	t.Helper()
	author := entities.Author{FirstName: "Ursula", LastName: "Le Guin"}
	require.NoError(t, db.Create(&author).Error)
	language := entities.Language{Name: "English"}
	require.NoError(t, db.Create(&language).Error)
	genre := entities.Genre{Name: "Science Fiction"}
	require.NoError(t, db.Create(&genre).Error)
	return author, language, genre
}

func TestRepository_List_OrderedByTitle(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	_, language, _ := seedCatalog(t, db)
	for _, title := range []string{"Zebra", "Apple", "Mango"} {
		require.NoError(t, db.Create(&entities.Book{Title: title, LanguageID: language.ID}).Error)
	}

	books, total, err := repo.List(1, 10)

	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, books, 3)
	assert.Equal(t, "Apple", books[0].Title)
	assert.Equal(t, "Mango", books[1].Title)
	assert.Equal(t, "Zebra", books[2].Title)
}

func TestRepository_List_Pagination(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	_, language, _ := seedCatalog(t, db)
	for _, title := range []string{"A", "B", "C", "D", "E"} {
		require.NoError(t, db.Create(&entities.Book{Title: title, LanguageID: language.ID}).Error)
	}

	page1, total, err := repo.List(1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page1, 2)
	assert.Equal(t, "A", page1[0].Title)

	page3, total, err := repo.List(3, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page3, 1)
	assert.Equal(t, "E", page3[0].Title)
}

func TestRepository_GetByID(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	author, language, genre := seedCatalog(t, db)
	book := entities.Book{
		Title:      "The Dispossessed",
		AuthorID:   &author.ID,
		LanguageID: language.ID,
		Genres:     []entities.Genre{genre},
	}
	require.NoError(t, repo.Create(&book))

	inst := entities.BookInstance{BookID: book.ID, Status: entities.LoanStatusAvailable}
	require.NoError(t, db.Create(&inst).Error)

	got, err := repo.GetByID(book.ID)

	require.NoError(t, err)
	assert.Equal(t, "The Dispossessed", got.Title)
	require.NotNil(t, got.Author)
	assert.Equal(t, "Le Guin, Ursula", got.Author.FullName())
	assert.Equal(t, "English", got.Language.Name)
	assert.Equal(t, "Science Fiction", got.DisplayGenres())
	require.Len(t, got.Instances, 1)
	assert.Equal(t, inst.ID, got.Instances[0].ID)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetByID(9999)

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_Update_ReplacesGenres(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	_, language, genre := seedCatalog(t, db)
	fantasy := entities.Genre{Name: "Fantasy"}
	require.NoError(t, db.Create(&fantasy).Error)

	book := entities.Book{Title: "Shifting", LanguageID: language.ID, Genres: []entities.Genre{genre}}
	require.NoError(t, repo.Create(&book))

	book.Genres = []entities.Genre{fantasy}
	require.NoError(t, repo.Update(&book))

	got, err := repo.GetByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fantasy", got.DisplayGenres())
}

func TestRepository_Delete_RemovesCopies(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	_, language, _ := seedCatalog(t, db)
	book := entities.Book{Title: "Doomed", LanguageID: language.ID}
	require.NoError(t, repo.Create(&book))
	inst := entities.BookInstance{BookID: book.ID, Status: entities.LoanStatusAvailable}
	require.NoError(t, db.Create(&inst).Error)

	require.NoError(t, repo.Delete(book.ID))

	_, err := repo.GetByID(book.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var copies int64
	db.Model(&entities.BookInstance{}).Where("book_id = ?", book.ID).Count(&copies)
	assert.Zero(t, copies)
}
