package database

import (
	"fmt"

	"github.com/bugpredictor/config"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OpenInMemory opens a private in-memory sqlite database with the schema applied.
// Used by tests.
func OpenInMemory() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := Open(config.DatabaseConfig{
		Driver:       "sqlite",
		URL:          dsn,
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
