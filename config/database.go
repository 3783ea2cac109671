package config

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// ConnectDatabase establishes a connection to the database at databaseURL,
// which the caller takes from the loaded Config. Two interchangeable
// backends are supported behind the same *gorm.DB handle: PostgreSQL
// (postgres:// or postgresql:// URLs) for deployments, and SQLite (a file
// path or :memory:) for local use and tests. Nothing above this package
// depends on which backend is active.
func ConnectDatabase(databaseURL string) error {
	var err error
	DB, err = gorm.Open(openDialector(databaseURL), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established successfully")
	return nil
}

// openDialector picks the gorm driver from the URL shape.
func openDialector(databaseURL string) gorm.Dialector {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return postgres.Open(databaseURL)
	}
	return sqlite.Open(databaseURL)
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (primarily for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
