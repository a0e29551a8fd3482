// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for credential
// registrations.
//
// Two unique indexes guard inserts: the folio and the person dedup key.
// CreateRegistration inspects which index a violation came from and returns
// the matching sentinel (ErrFolioTaken or ErrPersonRegistered) so the
// service maps each to its own conflict message. The pre-insert lookups
// (FindRegistrationByFolio / FindRegistrationByName) remain as a fast path;
// the indexes are the source of truth under concurrent submissions.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/registro-tarjetas/go-registro-backend/internal/domain"
)

var (
	// ErrFolioTaken indicates an insert collided on the folio unique index.
	ErrFolioTaken = errors.New("folio already exists")

	// ErrPersonRegistered indicates an insert collided on the dedup-key
	// unique index: the person already has a registration.
	ErrPersonRegistered = errors.New("person already registered")
)

// RecentRegistration is the projection returned by ListRegistrationsPage:
// administrative listings never carry the image payloads.
type RecentRegistration struct {
	Folio        string    `json:"folio"`
	CURP         string    `json:"curp"`
	RegisteredAt time.Time `json:"fechaRegistro"`
	IPAddress    string    `json:"ipAddress"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FindRegistrationByFolio fetches a registration by its folio, or
// ErrNotFound. Image payloads are included; callers that list or expose
// registrations use the dedicated projections instead.
func FindRegistrationByFolio(ctx context.Context, db *gorm.DB, folio string) (*domain.CredentialRegistration, error) {
	var r domain.CredentialRegistration
	err := db.WithContext(ctx).
		Where("folio = ?", folio).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// FindRegistrationByName fetches a registration by exact (trimmed) full
// name, or ErrNotFound.
func FindRegistrationByName(ctx context.Context, db *gorm.DB, fullName string) (*domain.CredentialRegistration, error) {
	var r domain.CredentialRegistration
	err := db.WithContext(ctx).
		Where("full_name = ?", fullName).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRegistration inserts a fully populated registration row. On a
// unique violation it returns ErrFolioTaken or ErrPersonRegistered
// depending on which index rejected the row.
func CreateRegistration(ctx context.Context, db *gorm.DB, r *domain.CredentialRegistration) error {
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(strings.ToLower(err.Error()), "folio") {
				return ErrFolioTaken
			}
			return ErrPersonRegistered
		}
		return err
	}
	return nil
}

// CountRegistrations returns the total number of registrations.
func CountRegistrations(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.CredentialRegistration{}).
		Count(&total).Error
	return total, err
}

// ListRegistrationsPage returns a page of recent registrations ordered by
// registration time descending, projected without image payloads.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*limit).
func ListRegistrationsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]RecentRegistration, error) {
	var out []RecentRegistration
	err := db.WithContext(ctx).
		Model(&domain.CredentialRegistration{}).
		Select("folio", "curp", "registered_at", "meta_ip_address AS ip_address", "created_at").
		Order("registered_at desc").
		Offset(offset).
		Limit(limit).
		Scan(&out).Error
	return out, err
}

// FindRegistrationByTerm fetches one registration whose CURP or folio
// equals term, excluding both image payload columns. The CURP comparison
// uses the upper-cased term since CURPs are stored normalized; the folio
// comparison is exact.
func FindRegistrationByTerm(ctx context.Context, db *gorm.DB, term string) (*domain.CredentialRegistration, error) {
	var r domain.CredentialRegistration
	err := db.WithContext(ctx).
		Omit("card_image", "proof_image").
		Where("curp = ? OR folio = ?", strings.ToUpper(term), term).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}
