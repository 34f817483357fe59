//go:build !alternative_driver

package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"strings"
)

// GetDriver requires CGO for this implementation
func GetDriver(dsn string, gormConfig *gorm.Config) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(withPragmas(dsn)), gormConfig)
}

func withPragmas(dsn string) string {
	separator := "?"

	if strings.Contains(dsn, "?") {
		separator = "&"
	}

	return dsn + separator + "_foreign_keys=on&_busy_timeout=5000"
}
