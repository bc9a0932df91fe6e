package db

import (
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Dialect resolves a store location to a gorm dialector. Postgres URLs and
// keyword DSNs open postgres; anything else is treated as a sqlite file path,
// matching how the service is deployed self-hosted.
func Dialect(url string) gorm.Dialector {
	if IsPostgres(url) {
		return postgres.Open(url)
	}
	return sqlite.Open(url)
}

// IsPostgres reports whether the location addresses a postgres server.
func IsPostgres(url string) bool {
	trimmed := strings.TrimSpace(url)
	return strings.HasPrefix(trimmed, "postgres://") ||
		strings.HasPrefix(trimmed, "postgresql://") ||
		strings.Contains(trimmed, "host=")
}

// Driver names as reported by DriverName.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DriverName returns the database driver name for the location.
func DriverName(url string) string {
	if IsPostgres(url) {
		return DriverPostgres
	}
	return DriverSQLite
}
