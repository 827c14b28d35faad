package entities

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// LoanStatus is the availability state of a single book copy.
type LoanStatus string

const (
	LoanStatusMaintenance LoanStatus = "maintenance"
	LoanStatusOnLoan      LoanStatus = "on_loan"
	LoanStatusAvailable   LoanStatus = "available"
	LoanStatusReserved    LoanStatus = "reserved"
)

// LoanStatuses lists every valid status, in display order.
var LoanStatuses = []LoanStatus{
	LoanStatusMaintenance,
	LoanStatusOnLoan,
	LoanStatusAvailable,
	LoanStatusReserved,
}

// DisplayName returns the human-readable label for a status.
func (s LoanStatus) DisplayName() string {
	switch s {
	case LoanStatusMaintenance:
		return "Maintenance"
	case LoanStatusOnLoan:
		return "On loan"
	case LoanStatusAvailable:
		return "Available"
	case LoanStatusReserved:
		return "Reserved"
	}
	return string(s)
}

// Valid reports whether the status is one of the known values.
func (s LoanStatus) Valid() bool {
	switch s {
	case LoanStatusMaintenance, LoanStatusOnLoan, LoanStatusAvailable, LoanStatusReserved:
		return true
	}
	return false
}

type Author struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	FirstName   string     `gorm:"size:100;index" json:"first_name"`
	LastName    string     `gorm:"size:100;index" json:"last_name"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	DateOfDeath *time.Time `json:"date_of_death,omitempty"`
	Books       []Book     `gorm:"foreignKey:AuthorID" json:"books,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// FullName renders "Last, First" the way the catalog lists authors.
func (a Author) FullName() string {
	return fmt.Sprintf("%s, %s", a.LastName, a.FirstName)
}

type Genre struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:200" json:"name"`
	Books     []Book    `gorm:"many2many:book_genres;" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type Language struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100" json:"name"`
	Books     []Book    `gorm:"foreignKey:LanguageID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type Book struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Title      string         `gorm:"index;size:512" json:"title"`
	Summary    string         `gorm:"type:text" json:"summary,omitempty"`
	ISBN       string         `gorm:"index;size:20" json:"isbn,omitempty"`
	AuthorID   *uint          `gorm:"index" json:"author_id,omitempty"`
	Author     *Author        `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	LanguageID uint           `gorm:"index" json:"language_id"`
	Language   Language       `gorm:"foreignKey:LanguageID" json:"language,omitempty"`
	Genres     []Genre        `gorm:"many2many:book_genres;" json:"genres,omitempty"`
	Instances  []BookInstance `gorm:"foreignKey:BookID" json:"instances,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// DisplayGenres joins genre names for list pages.
func (b Book) DisplayGenres() string {
	names := make([]string, 0, len(b.Genres))
	for _, g := range b.Genres {
		names = append(names, g.Name)
	}
	return strings.Join(names, ", ")
}

// BookInstance is a single loanable copy of a Book. The due-back date is only
// meaningful while the copy is on loan; nothing outside the renewal form
// enforces that beyond the form's own range check.
type BookInstance struct {
	ID         string     `gorm:"type:uuid;primaryKey" json:"id"`
	BookID     uint       `gorm:"index" json:"book_id"`
	Book       Book       `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Imprint    string     `gorm:"size:256" json:"imprint,omitempty"`
	DueBack    *time.Time `gorm:"index" json:"due_back,omitempty"`
	Status     LoanStatus `gorm:"size:20;default:'maintenance';index" json:"status"`
	BorrowerID *uint      `gorm:"index" json:"borrower_id,omitempty"`
	Borrower   *User      `gorm:"foreignKey:BorrowerID" json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// IsOverdue reports whether an on-loan copy is past its due-back date.
func (bi BookInstance) IsOverdue(now time.Time) bool {
	if bi.Status != LoanStatusOnLoan || bi.DueBack == nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return bi.DueBack.Before(today)
}

func (bi *BookInstance) BeforeCreate(tx *gorm.DB) error {
	if bi.ID == "" {
		bi.ID = NewInstanceID()
	}
	return nil
}

func (Author) TableName() string       { return "authors" }
func (Genre) TableName() string        { return "genres" }
func (Language) TableName() string     { return "languages" }
func (Book) TableName() string         { return "books" }
func (BookInstance) TableName() string { return "book_instances" }
