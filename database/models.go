// Package database provides database connection management for the
// invest-retro trade retrospective service.
//
// This package includes:
//   - GORM/PostgreSQL connection management for the entity repositories
//   - A separate raw database/sql connection used by the reporting queries
//   - Shared error types and validation helpers
//
// Data Models:
//
//	All data models (User, Trade, ReviewNote) are defined in the models_pkg
//	package to avoid circular import dependencies.
package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	models "invest-retro/database/models_pkg"
)

// Database holds the GORM database connection and provides access to the
// underlying DB instance.
type Database struct {
	db *gorm.DB
}

// DB returns the underlying GORM database instance for direct access when needed.
func (d *Database) DB() *gorm.DB {
	return d.db
}

// Connect establishes database connection using GORM
func Connect(host, port, dbname, user, password string) (*Database, error) {
	dsn := fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s sslmode=disable",
		host, port, dbname, user, password)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Silent logging for production
		// Map driver errors to gorm sentinels (gorm.ErrDuplicatedKey etc.)
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Database{db: db}, nil
}

// Migrate creates or updates the schema for all entity tables, including
// the unique index that enforces the 1:1 Trade-ReviewNote relationship.
func (d *Database) Migrate() error {
	if err := d.db.AutoMigrate(&models.User{}, &models.Trade{}, &models.ReviewNote{}); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ============================================================================
// Type Aliases
// ============================================================================

// Core data models - type aliases so callers can use database.User etc.
// without importing models_pkg directly.
type User = models.User
type Trade = models.Trade
type ReviewNote = models.ReviewNote
