package admin

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/locallibrary/internal/entities"
)

const dateLayout = "2006-01-02"

var errBadReference = errors.New("referenced record does not exist")

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return &parsed, nil
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func parseID(value string) (uint, error) {
	id, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", value)
	}
	return uint(id), nil
}

// DefaultRegistry registers the five catalog entities with their list
// columns, filters, form fields and inline children.
func DefaultRegistry() *Registry {
	registry := NewRegistry()
	registry.Register(genreAdmin())
	registry.Register(languageAdmin())
	registry.Register(authorAdmin())
	registry.Register(bookAdmin())
	registry.Register(instanceAdmin())
	return registry
}

func genreAdmin() *ModelAdmin {
	return &ModelAdmin{
		Name:   "Genre",
		Plural: "Genres",
		Slug:   "genres",
		ListDisplay: []Column{
			{Title: "Name", Value: func(obj any) string { return obj.(*entities.Genre).Name }},
		},
		Fields: []Field{
			{
				Name: "name", Label: "Name", Type: "text", Required: true,
				Get: func(obj any) string { return obj.(*entities.Genre).Name },
				Set: func(db *gorm.DB, obj any, value string) error {
					obj.(*entities.Genre).Name = value
					return nil
				},
			},
		},
		List: func(db *gorm.DB, _ map[string]string) ([]any, error) {
			var genres []entities.Genre
			if err := db.Order("name ASC").Find(&genres).Error; err != nil {
				return nil, err
			}
			out := make([]any, len(genres))
			for i := range genres {
				out[i] = &genres[i]
			}
			return out, nil
		},
		Get: func(db *gorm.DB, id string) (any, error) {
			pk, err := parseID(id)
			if err != nil {
				return nil, err
			}
			var genre entities.Genre
			if err := db.First(&genre, pk).Error; err != nil {
				return nil, err
			}
			return &genre, nil
		},
		New:  func() any { return &entities.Genre{} },
		Save: func(db *gorm.DB, obj any) error { return db.Save(obj).Error },
		Delete: func(db *gorm.DB, id string) error {
			pk, err := parseID(id)
			if err != nil {
				return err
			}
			return db.Delete(&entities.Genre{}, pk).Error
		},
		ID: func(obj any) string { return formatID(obj.(*entities.Genre).ID) },
	}
}

func languageAdmin() *ModelAdmin {
	return &ModelAdmin{
		Name:   "Language",
		Plural: "Languages",
		Slug:   "languages",
		ListDisplay: []Column{
			{Title: "Name", Value: func(obj any) string { return obj.(*entities.Language).Name }},
		},
		Fields: []Field{
			{
				Name: "name", Label: "Name", Type: "text", Required: true,
				Get: func(obj any) string { return obj.(*entities.Language).Name },
				Set: func(db *gorm.DB, obj any, value string) error {
					obj.(*entities.Language).Name = value
					return nil
				},
			},
		},
		List: func(db *gorm.DB, _ map[string]string) ([]any, error) {
			var languages []entities.Language
			if err := db.Order("name ASC").Find(&languages).Error; err != nil {
				return nil, err
			}
			out := make([]any, len(languages))
			for i := range languages {
				out[i] = &languages[i]
			}
			return out, nil
		},
		Get: func(db *gorm.DB, id string) (any, error) {
			pk, err := parseID(id)
			if err != nil {
				return nil, err
			}
			var language entities.Language
			if err := db.First(&language, pk).Error; err != nil {
				return nil, err
			}
			return &language, nil
		},
		New:  func() any { return &entities.Language{} },
		Save: func(db *gorm.DB, obj any) error { return db.Save(obj).Error },
		Delete: func(db *gorm.DB, id string) error {
			pk, err := parseID(id)
			if err != nil {
				return err
			}
			return db.Delete(&entities.Language{}, pk).Error
		},
		ID: func(obj any) string { return formatID(obj.(*entities.Language).ID) },
	}
}

func authorAdmin() *ModelAdmin {
	return &ModelAdmin{
		Name:   "Author",
		Plural: "Authors",
		Slug:   "authors",
		ListDisplay: []Column{
			{Title: "First name", Value: func(obj any) string { return obj.(*entities.Author).FirstName }},
			{Title: "Last name", Value: func(obj any) string { return obj.(*entities.Author).LastName }},
			{Title: "Date of birth", Value: func(obj any) string { return formatDate(obj.(*entities.Author).DateOfBirth) }},
			{Title: "Date of death", Value: func(obj any) string { return formatDate(obj.(*entities.Author).DateOfDeath) }},
		},
		Fields: []Field{
			{
				Name: "first_name", Label: "First name", Type: "text", Required: true,
				Get: func(obj any) string { return obj.(*entities.Author).FirstName },
				Set: func(db *gorm.DB, obj any, value string) error {
					obj.(*entities.Author).FirstName = value
					return nil
				},
			},
			{
				Name: "last_name", Label: "Last name", Type: "text", Required: true,
				Get: func(obj any) string { return obj.(*entities.Author).LastName },
				Set: func(db *gorm.DB, obj any, value string) error {
					obj.(*entities.Author).LastName = value
					return nil
				},
			},
			{
				Name: "date_of_birth", Label: "Date of birth", Type: "date",
				Get: func(obj any) string { return formatDate(obj.(*entities.Author).DateOfBirth) },
				Set: func(db *gorm.DB, obj any, value string) error {
					parsed, err := parseOptionalDate(value)
					if err != nil {
						return err
					}
					obj.(*entities.Author).DateOfBirth = parsed
					return nil
				},
			},
			{
				Name: "date_of_death", Label: "Date of death", Type: "date",
				Get: func(obj any) string { return formatDate(obj.(*entities.Author).DateOfDeath) },
				Set: func(db *gorm.DB, obj any, value string) error {
					parsed, err := parseOptionalDate(value)
					if err != nil {
						return err
					}
					obj.(*entities.Author).DateOfDeath = parsed
					return nil
				},
			},
		},
		Inlines: []Inline{
			{
				Title: "Books",
				Rows: func(obj any) []InlineRow {
					author := obj.(*entities.Author)
					rows := make([]InlineRow, 0, len(author.Books))
					for _, book := range author.Books {
						rows = append(rows, InlineRow{
							Text: book.Title,
							URL:  "/admin/books/" + formatID(book.ID),
						})
					}
					return rows
				},
			},
		},
		List: func(db *gorm.DB, _ map[string]string) ([]any, error) {
			var authors []entities.Author
			if err := db.Order("last_name ASC, first_name ASC").Find(&authors).Error; err != nil {
				return nil, err
			}
			out := make([]any, len(authors))
			for i := range authors {
				out[i] = &authors[i]
			}
			return out, nil
		},
		Get: func(db *gorm.DB, id string) (any, error) {
			pk, err := parseID(id)
			if err != nil {
				return nil, err
			}
			var author entities.Author
			if err := db.Preload("Books").First(&author, pk).Error; err != nil {
				return nil, err
			}
			return &author, nil
		},
		New:  func() any { return &entities.Author{} },
		Save: func(db *gorm.DB, obj any) error { return db.Omit("Books").Save(obj).Error },
		Delete: func(db *gorm.DB, id string) error {
			pk, err := parseID(id)
			if err != nil {
				return err
			}
			return db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Model(&entities.Book{}).
					Where("author_id = ?", pk).
					Update("author_id", nil).Error; err != nil {
					return err
				}
				return tx.Delete(&entities.Author{}, pk).Error
			})
		},
		ID: func(obj any) string { return formatID(obj.(*entities.Author).ID) },
	}
}

func bookAdmin() *ModelAdmin {
	authorOptions := func(db *gorm.DB) []Option {
		var authors []entities.Author
		db.Order("last_name ASC").Find(&authors)
		options := []Option{{Value: "", Label: "(none)"}}
		for _, a := range authors {
			options = append(options, Option{Value: formatID(a.ID), Label: a.FullName()})
		}
		return options
	}
	languageOptions := func(db *gorm.DB) []Option {
		var languages []entities.Language
		db.Order("name ASC").Find(&languages)
		options := make([]Option, 0, len(languages))
		for _, l := range languages {
			options = append(options, Option{Value: formatID(l.ID), Label: l.Name})
		}
		return options
	}

	return &ModelAdmin{
		Name:   "Book",
		Plural: "Books",
		Slug:   "books",
		ListDisplay: []Column{
			{Title: "Title", Value: func(obj any) string { return obj.(*entities.Book).Title }},
			{Title: "Author", Value: func(obj any) string {
				book := obj.(*entities.Book)
				if book.Author == nil {
					return ""
				}
				return book.Author.FullName()
			}},
			{Title: "Genres", Value: func(obj any) string { return obj.(*entities.Book).DisplayGenres() }},
		},
		Fields: []Field{
			{
				Name: "title", Label: "Title", Type: "text", Required: true,
				Get: func(obj any) string { return obj.(*entities.Book).Title },
				Set: func(db *gorm.DB, obj any, value string) error {
					obj.(*entities.Book).Title = value
					return nil
				},
			},
			{
				Name: "summary", Label: "Summary", Type: "textarea",
				Get: func(obj any) string { return obj.(*entities.Book).Summary },
				Set: func(db *gorm.DB, obj any, value string) error {
					obj.(*entities.Book).Summary = value
					return nil
				},
			},
			{
				Name: "isbn", Label: "ISBN", Type: "text",
				Get: func(obj any) string { return obj.(*entities.Book).ISBN },
				Set: func(db *gorm.DB, obj any, value string) error {
					obj.(*entities.Book).ISBN = value
					return nil
				},
			},
			{
				Name: "author_id", Label: "Author", Type: "select", Options: authorOptions,
				Get: func(obj any) string {
					book := obj.(*entities.Book)
					if book.AuthorID == nil {
						return ""
					}
					return formatID(*book.AuthorID)
				},
				Set: func(db *gorm.DB, obj any, value string) error {
					book := obj.(*entities.Book)
					if value == "" {
						book.AuthorID = nil
						return nil
					}
					pk, err := parseID(value)
					if err != nil {
						return err
					}
					var count int64
					db.Model(&entities.Author{}).Where("id = ?", pk).Count(&count)
					if count == 0 {
						return errBadReference
					}
					book.AuthorID = &pk
					return nil
				},
			},
			{
				Name: "language_id", Label: "Language", Type: "select", Required: true, Options: languageOptions,
				Get: func(obj any) string {
					book := obj.(*entities.Book)
					if book.LanguageID == 0 {
						return ""
					}
					return formatID(book.LanguageID)
				},
				Set: func(db *gorm.DB, obj any, value string) error {
					pk, err := parseID(value)
					if err != nil {
						return err
					}
					var count int64
					db.Model(&entities.Language{}).Where("id = ?", pk).Count(&count)
					if count == 0 {
						return errBadReference
					}
					obj.(*entities.Book).LanguageID = pk
					return nil
				},
			},
			{
				Name: "genres", Label: "Genres (comma-separated)", Type: "text",
				Get: func(obj any) string { return obj.(*entities.Book).DisplayGenres() },
				Set: func(db *gorm.DB, obj any, value string) error {
					book := obj.(*entities.Book)
					book.Genres = nil
					for _, name := range strings.Split(value, ",") {
						name = strings.TrimSpace(name)
						if name == "" {
							continue
						}
						var genre entities.Genre
						err := db.Where("name = ?", name).First(&genre).Error
						if err != nil {
							return fmt.Errorf("unknown genre %q", name)
						}
						book.Genres = append(book.Genres, genre)
					}
					return nil
				},
			},
		},
		Inlines: []Inline{
			{
				Title: "Copies",
				Rows: func(obj any) []InlineRow {
					book := obj.(*entities.Book)
					rows := make([]InlineRow, 0, len(book.Instances))
					for _, inst := range book.Instances {
						text := inst.ID + " - " + inst.Status.DisplayName()
						if inst.DueBack != nil {
							text += " (due " + inst.DueBack.Format(dateLayout) + ")"
						}
						rows = append(rows, InlineRow{Text: text, URL: "/admin/copies/" + inst.ID})
					}
					return rows
				},
			},
		},
		List: func(db *gorm.DB, _ map[string]string) ([]any, error) {
			var books []entities.Book
			err := db.Preload("Author").Preload("Genres").Order("title ASC").Find(&books).Error
			if err != nil {
				return nil, err
			}
			out := make([]any, len(books))
			for i := range books {
				out[i] = &books[i]
			}
			return out, nil
		},
		Get: func(db *gorm.DB, id string) (any, error) {
			pk, err := parseID(id)
			if err != nil {
				return nil, err
			}
			var book entities.Book
			err = db.Preload("Author").Preload("Genres").Preload("Language").
				Preload("Instances").First(&book, pk).Error
			if err != nil {
				return nil, err
			}
			return &book, nil
		},
		New: func() any { return &entities.Book{} },
		Save: func(db *gorm.DB, obj any) error {
			book := obj.(*entities.Book)
			if book.ID != 0 {
				if err := db.Model(book).Association("Genres").Replace(book.Genres); err != nil {
					return err
				}
			}
			return db.Omit("Instances", "Author", "Language").Save(book).Error
		},
		Delete: func(db *gorm.DB, id string) error {
			pk, err := parseID(id)
			if err != nil {
				return err
			}
			return db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Where("book_id = ?", pk).Delete(&entities.BookInstance{}).Error; err != nil {
					return err
				}
				return tx.Delete(&entities.Book{}, pk).Error
			})
		},
		ID: func(obj any) string { return formatID(obj.(*entities.Book).ID) },
	}
}

// instanceListFilters is shared between the registration's ListFilters and
// its List closure so the filter definitions stay in one place.
var instanceListFilters = []Filter{
	{
		Name: "status", Label: "Status",
		Options: func(_ *gorm.DB) []Option {
			options := make([]Option, 0, len(entities.LoanStatuses))
			for _, s := range entities.LoanStatuses {
				options = append(options, Option{Value: string(s), Label: s.DisplayName()})
			}
			return options
		},
		Apply: func(query *gorm.DB, value string) *gorm.DB {
			return query.Where("status = ?", value)
		},
	},
	{
		Name: "due", Label: "Due back",
		Options: func(_ *gorm.DB) []Option {
			return []Option{
				{Value: "overdue", Label: "Overdue"},
				{Value: "week", Label: "Due within a week"},
			}
		},
		Apply: func(query *gorm.DB, value string) *gorm.DB {
			now := time.Now()
			today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			switch value {
			case "overdue":
				return query.Where("due_back IS NOT NULL AND due_back < ?", today)
			case "week":
				return query.Where("due_back IS NOT NULL AND due_back >= ? AND due_back < ?", today, today.AddDate(0, 0, 7))
			}
			return query
		},
	},
}

func instanceAdmin() *ModelAdmin {
	bookOptions := func(db *gorm.DB) []Option {
		var books []entities.Book
		db.Order("title ASC").Find(&books)
		options := make([]Option, 0, len(books))
		for _, b := range books {
			options = append(options, Option{Value: formatID(b.ID), Label: b.Title})
		}
		return options
	}
	borrowerOptions := func(db *gorm.DB) []Option {
		var users []entities.User
		db.Order("username ASC").Find(&users)
		options := []Option{{Value: "", Label: "(none)"}}
		for _, u := range users {
			options = append(options, Option{Value: formatID(u.ID), Label: u.Username})
		}
		return options
	}
	statusOptions := func(_ *gorm.DB) []Option {
		options := make([]Option, 0, len(entities.LoanStatuses))
		for _, s := range entities.LoanStatuses {
			options = append(options, Option{Value: string(s), Label: s.DisplayName()})
		}
		return options
	}

	return &ModelAdmin{
		Name:   "Book copy",
		Plural: "Book copies",
		Slug:   "copies",
		ListDisplay: []Column{
			{Title: "ID", Value: func(obj any) string { return obj.(*entities.BookInstance).ID }},
			{Title: "Book", Value: func(obj any) string { return obj.(*entities.BookInstance).Book.Title }},
			{Title: "Status", Value: func(obj any) string { return obj.(*entities.BookInstance).Status.DisplayName() }},
			{Title: "Due back", Value: func(obj any) string { return formatDate(obj.(*entities.BookInstance).DueBack) }},
			{Title: "Borrower", Value: func(obj any) string {
				inst := obj.(*entities.BookInstance)
				if inst.Borrower == nil {
					return ""
				}
				return inst.Borrower.Username
			}},
		},
		ListFilters: instanceListFilters,
		Fields: []Field{
			{
				Name: "book_id", Label: "Book", Type: "select", Required: true, Options: bookOptions,
				Get: func(obj any) string {
					inst := obj.(*entities.BookInstance)
					if inst.BookID == 0 {
						return ""
					}
					return formatID(inst.BookID)
				},
				Set: func(db *gorm.DB, obj any, value string) error {
					pk, err := parseID(value)
					if err != nil {
						return err
					}
					var count int64
					db.Model(&entities.Book{}).Where("id = ?", pk).Count(&count)
					if count == 0 {
						return errBadReference
					}
					obj.(*entities.BookInstance).BookID = pk
					return nil
				},
			},
			{
				Name: "imprint", Label: "Imprint", Type: "text",
				Get: func(obj any) string { return obj.(*entities.BookInstance).Imprint },
				Set: func(db *gorm.DB, obj any, value string) error {
					obj.(*entities.BookInstance).Imprint = value
					return nil
				},
			},
			{
				Name: "status", Label: "Status", Type: "select", Required: true, Options: statusOptions,
				Get: func(obj any) string { return string(obj.(*entities.BookInstance).Status) },
				Set: func(db *gorm.DB, obj any, value string) error {
					status := entities.LoanStatus(value)
					if !status.Valid() {
						return fmt.Errorf("invalid status %q", value)
					}
					obj.(*entities.BookInstance).Status = status
					return nil
				},
			},
			{
				Name: "due_back", Label: "Due back", Type: "date",
				Get: func(obj any) string { return formatDate(obj.(*entities.BookInstance).DueBack) },
				Set: func(db *gorm.DB, obj any, value string) error {
					parsed, err := parseOptionalDate(value)
					if err != nil {
						return err
					}
					obj.(*entities.BookInstance).DueBack = parsed
					return nil
				},
			},
			{
				Name: "borrower_id", Label: "Borrower", Type: "select", Options: borrowerOptions,
				Get: func(obj any) string {
					inst := obj.(*entities.BookInstance)
					if inst.BorrowerID == nil {
						return ""
					}
					return formatID(*inst.BorrowerID)
				},
				Set: func(db *gorm.DB, obj any, value string) error {
					inst := obj.(*entities.BookInstance)
					if value == "" {
						inst.BorrowerID = nil
						return nil
					}
					pk, err := parseID(value)
					if err != nil {
						return err
					}
					var count int64
					db.Model(&entities.User{}).Where("id = ?", pk).Count(&count)
					if count == 0 {
						return errBadReference
					}
					inst.BorrowerID = &pk
					return nil
				},
			},
		},
		List: func(db *gorm.DB, filters map[string]string) ([]any, error) {
			query := db.Preload("Book").Preload("Borrower").Order("due_back ASC")
			for _, filter := range instanceListFilters {
				if value := filters[filter.Name]; value != "" {
					query = filter.Apply(query, value)
				}
			}
			var instances []entities.BookInstance
			if err := query.Find(&instances).Error; err != nil {
				return nil, err
			}
			out := make([]any, len(instances))
			for i := range instances {
				out[i] = &instances[i]
			}
			return out, nil
		},
		Get: func(db *gorm.DB, id string) (any, error) {
			var inst entities.BookInstance
			err := db.Preload("Book").Preload("Borrower").Where("id = ?", id).First(&inst).Error
			if err != nil {
				return nil, err
			}
			return &inst, nil
		},
		New:  func() any { return &entities.BookInstance{} },
		Save: func(db *gorm.DB, obj any) error { return db.Omit("Book", "Borrower").Save(obj).Error },
		Delete: func(db *gorm.DB, id string) error {
			return db.Where("id = ?", id).Delete(&entities.BookInstance{}).Error
		},
		ID: func(obj any) string { return obj.(*entities.BookInstance).ID },
	}
}
