package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/registro-tarjetas/go-registro-backend/internal/domain"
)

func TestOpenSQLite_CreatesAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registro.db")

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	// All three tables must exist after migration.
	if _, err := CountAuthorizedUsers(context.Background(), db); err != nil {
		t.Fatalf("usuarios table missing: %v", err)
	}
	if _, err := CountRegistrations(context.Background(), db); err != nil {
		t.Fatalf("registros_credenciales table missing: %v", err)
	}
	p, err := CreatePerson(context.Background(), db, "JUAN PEREZ", "", 3)
	if err != nil {
		t.Fatalf("personas_prioritarias table missing: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("person not persisted: %+v", p)
	}

	var mode string
	if err := db.Raw("PRAGMA journal_mode;").Scan(&mode).Error; err != nil {
		t.Fatalf("read journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("journal_mode = %q, want wal", mode)
	}
}

func TestOpenSQLite_MissingParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist", "registro.db")
	if _, err := OpenSQLite(path); err == nil {
		t.Fatalf("expected error for missing parent directory")
	}
}

func TestAutoMigrate_Idempotent(t *testing.T) {
	db := newUserRepoDB(t) // already migrated usuarios
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("first full migrate: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("second migrate must be a no-op: %v", err)
	}
	// Schema still usable afterwards.
	if err := db.Create(&domain.AuthorizedUser{ID: "au-x", CURP: "PEGJ850101HDFRRN09"}).Error; err != nil {
		t.Fatalf("insert after re-migrate: %v", err)
	}
}
