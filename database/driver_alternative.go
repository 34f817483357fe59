//go:build alternative_driver

package database

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"strings"
)

func GetDriver(dsn string, gormConfig *gorm.Config) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(withPragmas(dsn)), gormConfig)
}

func withPragmas(dsn string) string {
	separator := "?"

	if strings.Contains(dsn, "?") {
		separator = "&"
	}

	return dsn + separator + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
