package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openshelf/locallibrary/internal/entities"
)

var defaultLanguages = []entities.Language{
	{Name: "English"},
	{Name: "French"},
	{Name: "German"},
	{Name: "Japanese"},
	{Name: "Spanish"},
}

var defaultGenres = []entities.Genre{
	{Name: "Fiction"},
	{Name: "Non-fiction"},
	{Name: "Science Fiction"},
	{Name: "Fantasy"},
	{Name: "Biography"},
	{Name: "Poetry"},
}

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.User{},
		&entities.Author{},
		&entities.Genre{},
		&entities.Language{},
		&entities.Book{},
		&entities.BookInstance{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	// Seed default lookup data
	if err := database.seedLanguages(); err != nil {
		return nil, fmt.Errorf("failed to seed languages: %w", err)
	}
	if err := database.seedGenres(); err != nil {
		return nil, fmt.Errorf("failed to seed genres: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) seedLanguages() error {
	for _, lang := range defaultLanguages {
		var existing entities.Language
		result := d.DB.Where("name = ?", lang.Name).First(&existing)
		if result.Error == gorm.ErrRecordNotFound {
			if err := d.DB.Create(&lang).Error; err != nil {
				return fmt.Errorf("failed to create language %s: %w", lang.Name, err)
			}
		}
	}
	return nil
}

func (d *Database) seedGenres() error {
	for _, genre := range defaultGenres {
		var existing entities.Genre
		result := d.DB.Where("name = ?", genre.Name).First(&existing)
		if result.Error == gorm.ErrRecordNotFound {
			if err := d.DB.Create(&genre).Error; err != nil {
				return fmt.Errorf("failed to create genre %s: %w", genre.Name, err)
			}
		}
	}
	return nil
}
