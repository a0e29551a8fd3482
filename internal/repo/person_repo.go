// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// priority-person directory.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a person is not found, functions return ErrNotFound
//     (gorm.ErrRecordNotFound).
//   - CreatePerson translates unique-constraint violations on the CURP
//     column to ErrDuplicate; callers treat that as the authoritative
//     conflict signal.
//   - On other DB errors, the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/registro-tarjetas/go-registro-backend/internal/domain"
)

// ErrDuplicate indicates that an insert hit a unique index.
var ErrDuplicate = errors.New("duplicate")

// FindPersonByCURP fetches a directory entry by upper-cased CURP, or
// ErrNotFound when no entry carries that CURP.
func FindPersonByCURP(ctx context.Context, db *gorm.DB, curp string) (*domain.PriorityPerson, error) {
	var p domain.PriorityPerson
	err := db.WithContext(ctx).
		Where("curp = ?", curp).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SearchPersons returns at most limit directory entries in the given
// sub-program whose full name contains query as a substring. The match is
// case-insensitive through LIKE plus upper-cased storage; callers normalize
// the query first. Ordering is the store's natural scan order, which is all
// the endpoint contract promises.
func SearchPersons(ctx context.Context, db *gorm.DB, subprogram int, query string, limit int) ([]domain.PriorityPerson, error) {
	var out []domain.PriorityPerson
	err := db.WithContext(ctx).
		Where("subprogram = ? AND full_name LIKE ?", subprogram, "%"+query+"%").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CreatePerson inserts a new directory entry with a generated UUID and UTC
// timestamp. An empty curp is stored as NULL so the sparse unique index
// ignores it. Returns ErrDuplicate when the CURP already exists.
func CreatePerson(ctx context.Context, db *gorm.DB, fullName, curp string, subprogram int) (*domain.PriorityPerson, error) {
	p := &domain.PriorityPerson{
		ID:         uuid.NewString(),
		FullName:   fullName,
		Role:       "",
		Section:    0,
		Subprogram: subprogram,
		CreatedAt:  time.Now().UTC(),
	}
	if curp != "" {
		p.CURP = &curp
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return p, nil
}

// isUniqueViolation detects unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// glebarez/sqlite: "UNIQUE constraint failed: table.column"
	// Postgres: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
