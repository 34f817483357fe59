package database

import (
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"path/filepath"
	"testing"
)

// NewTestDB opens a fresh file-backed SQLite database inside the test's temp directory.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := connect("sqlite", filepath.Join(t.TempDir(), "test.db"), gormConfig)

	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}
