// Package instances provides database operations for BookInstance records:
// the per-copy loan state the renewal workflow mutates and the borrower
// listings read from.
package instances

import (
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/locallibrary/internal/entities"
)

// Repository handles all book-copy database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new instances repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a single copy with its book and borrower preloaded.
func (r *Repository) GetByID(id string) (*entities.BookInstance, error) {
	var inst entities.BookInstance
	err := r.db.Preload("Book").Preload("Book.Author").Preload("Borrower").
		Where("id = ?", id).First(&inst).Error
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

// ListBorrowedByUser returns one page of the user's on-loan copies ordered by
// ascending due-back date, plus the total count. Pages are 1-based.
func (r *Repository) ListBorrowedByUser(userID uint, page, perPage int) ([]entities.BookInstance, int64, error) {
	if page < 1 {
		page = 1
	}

	query := r.db.Model(&entities.BookInstance{}).
		Where("borrower_id = ? AND status = ?", userID, entities.LoanStatusOnLoan)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var instances []entities.BookInstance
	err := query.Preload("Book").
		Order("due_back ASC").
		Limit(perPage).Offset((page - 1) * perPage).
		Find(&instances).Error
	return instances, total, err
}

// UpdateDueBack sets a copy's due-back date. Only that column is touched.
func (r *Repository) UpdateDueBack(id string, dueBack time.Time) error {
	result := r.db.Model(&entities.BookInstance{}).
		Where("id = ?", id).
		Update("due_back", dueBack)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Count returns the total number of copies.
func (r *Repository) Count() (int64, error) {
	var total int64
	err := r.db.Model(&entities.BookInstance{}).Count(&total).Error
	return total, err
}

// CountByStatus returns the number of copies in the given status.
func (r *Repository) CountByStatus(status entities.LoanStatus) (int64, error) {
	var total int64
	err := r.db.Model(&entities.BookInstance{}).
		Where("status = ?", status).Count(&total).Error
	return total, err
}

// CountOverdue returns the number of on-loan copies whose due-back date is
// before the start of the given day.
func (r *Repository) CountOverdue(now time.Time) (int64, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var total int64
	err := r.db.Model(&entities.BookInstance{}).
		Where("status = ? AND due_back IS NOT NULL AND due_back < ?", entities.LoanStatusOnLoan, today).
		Count(&total).Error
	return total, err
}

// Create stores a new copy.
func (r *Repository) Create(inst *entities.BookInstance) error {
	return r.db.Create(inst).Error
}

// Update saves changes to an existing copy.
func (r *Repository) Update(inst *entities.BookInstance) error {
	return r.db.Save(inst).Error
}

// Delete removes a copy.
func (r *Repository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&entities.BookInstance{}).Error
}
