package cli

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/openshelf/locallibrary/internal/config"
	"github.com/openshelf/locallibrary/internal/database"
	"github.com/openshelf/locallibrary/internal/entities"
)

// SeedCommand populates the catalog with a small sample data set for local
// development.
type SeedCommand struct {
	DatabasePath string
}

// NewSeedCommand creates a new SeedCommand.
func NewSeedCommand() *SeedCommand {
	return &SeedCommand{}
}

// ParseFlags parses command line flags.
func (cmd *SeedCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the catalog database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Populate the catalog with sample authors, books and copies.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

// Run inserts the sample records. Existing books with the same titles are not
// duplicated.
func (cmd *SeedCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var english entities.Language
	if err := db.DB.Where("name = ?", "English").First(&english).Error; err != nil {
		return fmt.Errorf("default languages missing: %w", err)
	}
	var fiction, scifi entities.Genre
	db.DB.Where("name = ?", "Fiction").First(&fiction)
	db.DB.Where("name = ?", "Science Fiction").First(&scifi)

	authors := []entities.Author{
		{FirstName: "Ursula", LastName: "Le Guin", DateOfBirth: datePtr(1929, time.October, 21), DateOfDeath: datePtr(2018, time.January, 22)},
		{FirstName: "Iain", LastName: "Banks", DateOfBirth: datePtr(1954, time.February, 16), DateOfDeath: datePtr(2013, time.June, 9)},
		{FirstName: "Becky", LastName: "Chambers", DateOfBirth: datePtr(1985, time.May, 1)},
	}
	for i := range authors {
		var existing entities.Author
		err := db.DB.Where("first_name = ? AND last_name = ?", authors[i].FirstName, authors[i].LastName).
			First(&existing).Error
		if err == nil {
			authors[i] = existing
			continue
		}
		if err := db.DB.Create(&authors[i]).Error; err != nil {
			return fmt.Errorf("failed to seed author: %w", err)
		}
	}

	books := []entities.Book{
		{
			Title:      "The Dispossessed",
			Summary:    "A physicist from an anarchist moon travels to the capitalist planet it orbits.",
			ISBN:       "9780060512750",
			AuthorID:   &authors[0].ID,
			LanguageID: english.ID,
			Genres:     []entities.Genre{fiction, scifi},
		},
		{
			Title:      "The Player of Games",
			Summary:    "A master game player is drawn into a brutal empire's defining contest.",
			ISBN:       "9780316005401",
			AuthorID:   &authors[1].ID,
			LanguageID: english.ID,
			Genres:     []entities.Genre{scifi},
		},
		{
			Title:      "A Psalm for the Wild-Built",
			Summary:    "A tea monk meets a robot in the wilderness.",
			ISBN:       "9781250236210",
			AuthorID:   &authors[2].ID,
			LanguageID: english.ID,
			Genres:     []entities.Genre{scifi},
		},
	}

	seeded := 0
	for i := range books {
		var existing entities.Book
		err := db.DB.Where("title = ?", books[i].Title).First(&existing).Error
		if err == nil {
			continue
		}
		if err := db.DB.Create(&books[i]).Error; err != nil {
			return fmt.Errorf("failed to seed book: %w", err)
		}
		// Two copies per book: one available, one on the shelf for repair
		copies := []entities.BookInstance{
			{BookID: books[i].ID, Imprint: "First edition", Status: entities.LoanStatusAvailable},
			{BookID: books[i].ID, Imprint: "Library binding", Status: entities.LoanStatusMaintenance},
		}
		for j := range copies {
			if err := db.DB.Create(&copies[j]).Error; err != nil {
				return fmt.Errorf("failed to seed book copy: %w", err)
			}
		}
		seeded++
	}

	fmt.Printf("Seeded %d books\n", seeded)
	return nil
}
