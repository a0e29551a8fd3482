// Package services – RegistrationService
//
// This file implements the RegistrationService, which owns the creation of
// credential registrations and the administrative read paths (statistics,
// recent registrations, lookup by CURP or folio). It enforces the business
// rules of the submission flow: required fields, silent discarding of
// malformed optional CURPs, and the two uniqueness rules (one registration
// per folio, one registration per identified person).
//
// Concurrency & atomicity:
//   - The duplicate pre-checks and the insert run inside one transaction,
//     and both rules are additionally backed by unique indexes (folio and
//     dedup key), so concurrent submissions for the same person cannot
//     both land. The index violation maps to the same conflict errors as
//     the pre-checks.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"
	"gorm.io/gorm"

	"github.com/registro-tarjetas/go-registro-backend/internal/curp"
	"github.com/registro-tarjetas/go-registro-backend/internal/domain"
	"github.com/registro-tarjetas/go-registro-backend/internal/names"
	"github.com/registro-tarjetas/go-registro-backend/internal/repo"
	"github.com/registro-tarjetas/go-registro-backend/internal/utils"
)

// RegistrationInput carries one credential submission as received from the
// capture client, plus the request origin captured by the transport layer.
type RegistrationInput struct {
	Folio      string
	CURP       string
	FullName   string
	Role       string
	Section    int
	Subprogram int
	CardImage  string // data-URI JPEG, required
	ProofImage string // data-URI JPEG, optional

	ClientIP  string
	UserAgent string
}

// RegistrationStats bundles the figures served by the statistics endpoint.
type RegistrationStats struct {
	AuthorizedUsers int64
	Total           int64
	Today           int64
	Week            int64
}

// RegistrationService implements the use-cases around credential
// registrations. It is context-aware and opens its own transaction per
// Register call.
type RegistrationService struct {
	// DB is the database handle used for all registration operations.
	DB *gorm.DB

	// Now returns the current time; overridable in tests. Nil means
	// time.Now.
	Now func() time.Time
}

// Register validates and persists one credential registration, returning
// the stored row.
//
// Semantics and validation:
//   - folio, full name, and card image must all be present; otherwise
//     ErrIncompleteRegistration.
//   - the CURP is optional: a present but structurally invalid CURP is
//     silently discarded and the submission proceeds without it.
//   - an existing registration with the same folio yields ErrFolioExists.
//   - an existing registration with the same exact trimmed full name
//     yields ErrPersonAlreadyRegistered.
//
// The stored row carries a server-assigned registration timestamp and the
// request metadata (caller address, user-agent, and a parsed browser
// label derived from the user-agent).
func (s *RegistrationService) Register(ctx context.Context, in RegistrationInput) (*domain.CredentialRegistration, error) {
	if !curp.NonEmptyTrimmed(in.Folio) || !curp.NonEmptyTrimmed(in.FullName) || in.CardImage == "" {
		return nil, ErrIncompleteRegistration
	}

	id := curp.Normalize(in.CURP)
	if !curp.IsValid(id) {
		id = ""
	}

	fullName := strings.TrimSpace(in.FullName)
	dedup := id
	if dedup == "" {
		dedup = names.Normalize(fullName)
	}

	now := s.now()
	rec := &domain.CredentialRegistration{
		ID:           uuid.NewString(),
		Folio:        strings.TrimSpace(in.Folio),
		CURP:         id,
		FullName:     fullName,
		Role:         in.Role,
		Section:      in.Section,
		Subprogram:   in.Subprogram,
		CardImage:    in.CardImage,
		ProofImage:   in.ProofImage,
		DedupKey:     dedup,
		RegisteredAt: now,
		Metadata: domain.RequestMetadata{
			IPAddress:   in.ClientIP,
			UserAgent:   in.UserAgent,
			Timestamp:   now,
			BrowserInfo: browserLabel(in.UserAgent),
		},
		CreatedAt: now,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) Fast-path conflict checks before paying for the insert.
		if _, err := repo.FindRegistrationByFolio(ctx, tx, rec.Folio); err == nil {
			return ErrFolioExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if _, err := repo.FindRegistrationByName(ctx, tx, fullName); err == nil {
			return ErrPersonAlreadyRegistered
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// 2) Insert; the unique indexes are the source of truth under races.
		if err := repo.CreateRegistration(ctx, tx, rec); err != nil {
			switch {
			case errors.Is(err, repo.ErrFolioTaken):
				return ErrFolioExists
			case errors.Is(err, repo.ErrPersonRegistered):
				return ErrPersonAlreadyRegistered
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Stats aggregates the counters for the statistics endpoint.
func (s *RegistrationService) Stats(ctx context.Context) (RegistrationStats, error) {
	authorized, err := repo.CountAuthorizedUsers(ctx, s.DB)
	if err != nil {
		return RegistrationStats{}, err
	}
	// The "today" window runs from midnight in the server's zone, so the
	// clock must keep its zone here; stored timestamps stay UTC.
	counts, err := repo.RegistrationStats(ctx, s.DB, s.localNow())
	if err != nil {
		return RegistrationStats{}, err
	}
	return RegistrationStats{
		AuthorizedUsers: authorized,
		Total:           counts.Total,
		Today:           counts.Today,
		Week:            counts.Week,
	}, nil
}

// Recent returns a page of registrations (image payloads excluded) ordered
// by registration time descending, plus the total row count. Invalid page
// or limit values fall back to page 1 and 10 rows.
func (s *RegistrationService) Recent(ctx context.Context, page, limit int) ([]repo.RecentRegistration, int64, error) {
	page = utils.ClampPage(page)
	limit = utils.ClampLimit(limit)
	total, err := repo.CountRegistrations(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	items, err := repo.ListRegistrationsPage(ctx, s.DB, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Lookup finds one registration whose CURP or folio equals term, with both
// image payloads excluded. Returns ErrRegistrationNotFound when nothing
// matches.
func (s *RegistrationService) Lookup(ctx context.Context, term string) (*domain.CredentialRegistration, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrRegistrationNotFound
	}
	rec, err := repo.FindRegistrationByTerm(ctx, s.DB, term)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (s *RegistrationService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// localNow is now without the UTC coercion, for the calendar-day window.
func (s *RegistrationService) localNow() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// browserLabel condenses a raw User-Agent string into a short
// human-readable "Browser on OS" label for the registration metadata.
func browserLabel(ua string) string {
	if ua == "" {
		return "Unknown"
	}
	parsed := useragent.New(ua)
	browser, _ := parsed.Browser()
	os := parsed.OS()
	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	return strings.TrimSpace(browser + " on " + os)
}
