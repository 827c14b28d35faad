// Package database owns the GORM connection, schema migration and seed data
// for the catalog. Entity-specific queries live in the subpackages
// (books, authors, instances), each exposing a small Repository over *gorm.DB.
package database
