// Package books provides database operations for Book records.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetByID(123)
package books

import (
	"gorm.io/gorm"

	"github.com/openshelf/locallibrary/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns one page of books ordered by title, plus the total count.
// Pages are 1-based.
func (r *Repository) List(page, perPage int) ([]entities.Book, int64, error) {
	if page < 1 {
		page = 1
	}

	var total int64
	if err := r.db.Model(&entities.Book{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var books []entities.Book
	err := r.db.Preload("Author").Preload("Genres").Preload("Language").
		Order("title ASC").
		Limit(perPage).Offset((page - 1) * perPage).
		Find(&books).Error
	return books, total, err
}

// GetByID retrieves a book with its author, genres, language and copies.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Author").Preload("Genres").Preload("Language").
		Preload("Instances", func(db *gorm.DB) *gorm.DB {
			return db.Order("status ASC, due_back ASC")
		}).
		First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// Count returns the total number of books in the catalog.
func (r *Repository) Count() (int64, error) {
	var total int64
	err := r.db.Model(&entities.Book{}).Count(&total).Error
	return total, err
}

// Create stores a new book together with its genre associations.
func (r *Repository) Create(book *entities.Book) error {
	return r.db.Create(book).Error
}

// Update saves changes to a book and replaces its genre associations.
func (r *Repository) Update(book *entities.Book) error {
	if err := r.db.Model(book).Association("Genres").Replace(book.Genres); err != nil {
		return err
	}
	return r.db.Save(book).Error
}

// Delete removes a book. Its copies are deleted with it.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", id).Delete(&entities.BookInstance{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Book{}, id).Error
	})
}
