// Package authors provides database operations for Author records, including
// the generic create/update/delete flows used by the author management views.
package authors

import (
	"gorm.io/gorm"

	"github.com/openshelf/locallibrary/internal/entities"
)

// Repository handles all author database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new authors repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns one page of authors ordered by last name, plus the total count.
// Pages are 1-based.
func (r *Repository) List(page, perPage int) ([]entities.Author, int64, error) {
	if page < 1 {
		page = 1
	}

	var total int64
	if err := r.db.Model(&entities.Author{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var authors []entities.Author
	err := r.db.Order("last_name ASC, first_name ASC").
		Limit(perPage).Offset((page - 1) * perPage).
		Find(&authors).Error
	return authors, total, err
}

// GetByID retrieves an author with their books.
func (r *Repository) GetByID(id uint) (*entities.Author, error) {
	var author entities.Author
	err := r.db.Preload("Books", func(db *gorm.DB) *gorm.DB {
		return db.Order("title ASC")
	}).First(&author, id).Error
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// Count returns the total number of authors.
func (r *Repository) Count() (int64, error) {
	var total int64
	err := r.db.Model(&entities.Author{}).Count(&total).Error
	return total, err
}

// Create stores a new author.
func (r *Repository) Create(author *entities.Author) error {
	return r.db.Create(author).Error
}

// Update saves changes to an existing author.
func (r *Repository) Update(author *entities.Author) error {
	return r.db.Save(author).Error
}

// Delete removes an author. Books keep their rows with the author reference
// cleared, matching the nullable author relation.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.Book{}).
			Where("author_id = ?", id).
			Update("author_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Author{}, id).Error
	})
}
