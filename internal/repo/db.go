// Package repo implements the persistence layer on GORM over SQLite. This
// file bootstraps the database: open, PRAGMAs, pool sizing, migrations, and
// optional query tracing.
package repo

import (
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/registro-tarjetas/go-registro-backend/internal/domain"
)

// Connection PRAGMAs. WAL keeps directory searches readable while a
// registration insert is in flight; the busy timeout covers the brief
// writer lock hand-off between concurrent capture stations.
var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL;",
	"PRAGMA synchronous=NORMAL;",
	"PRAGMA foreign_keys=ON;",
	"PRAGMA busy_timeout=5000;",
}

// OpenSQLite opens or creates the database file at path and applies the
// connection PRAGMAs and pool limits. A missing parent directory fails
// immediately rather than surfacing later as the driver's opaque
// "out of memory (14)".
func OpenSQLite(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	for _, pragma := range sqlitePragmas {
		db.Exec(pragma)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, nil
}

// EnableTracing attaches the GORM OpenTelemetry plugin so queries appear as
// spans under the request trace. Metrics are left to the HTTP middleware.
func EnableTracing(db *gorm.DB) error {
	return db.Use(tracing.NewPlugin(tracing.WithoutMetrics()))
}

// AutoMigrate creates or updates the three collections. The usuarios table
// is migrated too even though the service never writes it, so a fresh
// deployment runs before the external bulk import has happened.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.AuthorizedUser{},
		&domain.PriorityPerson{},
		&domain.CredentialRegistration{},
	)
}
