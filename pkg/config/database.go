package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/audora-app/backend/pkg/logger"
)

// LoadDotenv loads a .env file when present; environment variables win
func LoadDotenv() {
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, assuming environment variables are set.")
	}
}

// InitDB opens the PostgreSQL connection through GORM. TranslateError is
// enabled so unique-constraint violations surface as gorm.ErrDuplicatedKey,
// which the handlers treat as the authoritative "already exists" signal.
func InitDB(connStr string) (*gorm.DB, error) {
	if connStr == "" {
		return nil, fmt.Errorf("POSTGRES_CONN_STR environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}

	logger.Info("Successfully connected to PostgreSQL!")
	return db, nil
}

// CloseDB closes the underlying database connection
func CloseDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Error getting SQL DB from GORM: " + err.Error())
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("Error closing PostgreSQL connection: " + err.Error())
		return
	}
	logger.Info("PostgreSQL connection closed.")
}
