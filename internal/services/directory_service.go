// Package services – DirectoryService
//
// This file implements the DirectoryService, which manages the
// priority-person directory and the authorization lookups against the
// pre-loaded usuarios table. It validates and normalizes input (names and
// CURPs are stored upper-cased), enforces the one-person-per-CURP rule, and
// coordinates repository operations for searching and self-registration.
//
// Service-level errors (e.g. ErrDuplicateCURP, ErrQueryTooShort) are
// returned for predictable cases so handlers can map them to HTTP results
// consistently.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/registro-tarjetas/go-registro-backend/internal/curp"
	"github.com/registro-tarjetas/go-registro-backend/internal/domain"
	"github.com/registro-tarjetas/go-registro-backend/internal/names"
)

// DirectoryRepo defines the repository contract required by DirectoryService.
// Implementations are responsible for persistence of directory records.
type DirectoryRepo interface {
	// FindPersonByCURP fetches a directory entry by normalized CURP.
	FindPersonByCURP(ctx context.Context, db *gorm.DB, curp string) (*domain.PriorityPerson, error)

	// SearchPersons returns up to limit entries in a sub-program whose
	// name contains the normalized query.
	SearchPersons(ctx context.Context, db *gorm.DB, subprogram int, query string, limit int) ([]domain.PriorityPerson, error)

	// CreatePerson inserts a new directory entry.
	CreatePerson(ctx context.Context, db *gorm.DB, fullName, curp string, subprogram int) (*domain.PriorityPerson, error)

	// FindAuthorizedUser fetches an authorization row by normalized CURP.
	FindAuthorizedUser(ctx context.Context, db *gorm.DB, curp string) (*domain.AuthorizedUser, error)
}

// DirectoryService provides directory-level operations: substring search
// scoped to a sub-program, self-registration of persons missing from the
// directory, and authorization checks against the usuarios table.
type DirectoryService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the directory repository used by this service.
	Repo DirectoryRepo

	// MaxResults caps how many search matches are returned.
	MaxResults int
	// MinQueryLen is the minimum trimmed search-term length.
	MinQueryLen int
}

// NewDirectoryService constructs a DirectoryService with the endpoint's
// contractual limits: at most 10 matches, at least 2 query characters.
func NewDirectoryService(db *gorm.DB, r DirectoryRepo) *DirectoryService {
	return &DirectoryService{
		DB:          db,
		Repo:        r,
		MaxResults:  10,
		MinQueryLen: 2,
	}
}

// Search returns directory entries in the given sub-program whose full name
// contains query as a case- and accent-insensitive substring.
//
// Validation:
//   - fewer than MinQueryLen characters after trimming: ErrQueryTooShort.
//   - subprogram <= 0 (none selected): ErrMissingSubprogram.
//
// Ordering of results is the store's natural scan order; only the first
// MaxResults matches are returned. Search performs no mutation.
func (s *DirectoryService) Search(ctx context.Context, query string, subprogram int) ([]domain.PriorityPerson, error) {
	if len([]rune(strings.TrimSpace(query))) < s.MinQueryLen {
		return nil, ErrQueryTooShort
	}
	if subprogram <= 0 {
		return nil, ErrMissingSubprogram
	}
	return s.Repo.SearchPersons(ctx, s.DB, subprogram, names.Normalize(query), s.MaxResults)
}

// RegisterPerson adds a person to the directory from the "person not in
// list" escape hatch. Name and CURP are upper-cased before storage; role
// and section default to empty values.
//
// Validation order mirrors the form: name, CURP presence, CURP format,
// sub-program. A CURP already present in the directory yields
// ErrDuplicateCURP, whether detected by the pre-insert lookup or by the
// unique index during the insert itself.
func (s *DirectoryService) RegisterPerson(ctx context.Context, fullName, rawCURP string, subprogram int) (*domain.PriorityPerson, error) {
	if !curp.NonEmptyTrimmed(fullName) {
		return nil, ErrMissingName
	}
	if !curp.NonEmptyTrimmed(rawCURP) {
		return nil, ErrMissingCURP
	}
	id := curp.Normalize(rawCURP)
	if !curp.IsValid(id) {
		return nil, ErrInvalidCURP
	}
	if subprogram <= 0 {
		return nil, ErrMissingSubprogram
	}

	// Fast-path duplicate check; the unique index backs it up under races.
	if _, err := s.Repo.FindPersonByCURP(ctx, s.DB, id); err == nil {
		return nil, ErrDuplicateCURP
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	p, err := s.Repo.CreatePerson(ctx, s.DB, names.Normalize(fullName), id, subprogram)
	if err != nil {
		if isUnique(err) {
			return nil, ErrDuplicateCURP
		}
		return nil, err
	}
	return p, nil
}

// Authorize reports whether the CURP belongs to the pre-loaded
// authorization directory. Returns nil when authorized, ErrNotAuthorized
// when the CURP is unknown, and the validation sentinels for bad input.
func (s *DirectoryService) Authorize(ctx context.Context, rawCURP string) error {
	if !curp.NonEmptyTrimmed(rawCURP) {
		return ErrMissingCURP
	}
	id := curp.Normalize(rawCURP)
	if !curp.IsValid(id) {
		return ErrInvalidCURP
	}
	if _, err := s.Repo.FindAuthorizedUser(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotAuthorized
		}
		return err
	}
	return nil
}

// isUnique treats repo-level duplicate sentinels and driver unique-violation
// errors uniformly.
func isUnique(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint")
}
