// Package domain defines the persistence models for the credential
// registration service: the read-only directory of authorized users, the
// searchable priority-person directory, and the credential registrations
// themselves. These types are mapped with GORM and form the core data layer
// of the application.
package domain

import (
	"time"
)

// AuthorizedUser is one row of the pre-loaded authorization directory.
// Records are bulk-imported by external tooling and never mutated by the
// service; the API only checks existence by CURP.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - CURP: 18-character national identifier, stored upper-cased, unique.
//   - Section: administrative section label as found in the import source.
//   - Phone: optional contact number carried over from the import source.
type AuthorizedUser struct {
	ID        string    `json:"id"       gorm:"type:char(36);primaryKey"`
	CURP      string    `json:"curp"     gorm:"type:char(18);not null;uniqueIndex:ux_usuarios_curp"`
	Section   string    `json:"seccion"  gorm:"type:varchar(32)"`
	Phone     string    `json:"telefono" gorm:"type:varchar(32)"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName returns the database table name for AuthorizedUser.
func (AuthorizedUser) TableName() string { return "usuarios" }

// PriorityPerson is one entry of the searchable directory used to pre-fill
// registration data. Entries come from directory imports or from the
// "register new person" endpoint; the normal flow never deletes them.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - FullName: upper-cased full name, indexed for substring search.
//   - Role: job title; empty for self-registered persons.
//   - Section: section number; zero for self-registered persons.
//   - Subprogram: small integer identifying the administrative group.
//   - CURP: optional national identifier; unique when present (NULL rows
//     are exempt, which preserves import rows without a CURP).
type PriorityPerson struct {
	ID         string    `json:"-"              gorm:"type:char(36);primaryKey"`
	FullName   string    `json:"nombreCompleto" gorm:"type:varchar(255);not null;index:idx_personas_nombre"`
	Role       string    `json:"cargo"          gorm:"type:varchar(128)"`
	Section    int       `json:"seccion"`
	Subprogram int       `json:"sp"             gorm:"index:idx_personas_sp"`
	CURP       *string   `json:"curp,omitempty" gorm:"type:char(18);uniqueIndex:ux_personas_curp"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

// TableName returns the database table name for PriorityPerson.
func (PriorityPerson) TableName() string { return "personas_prioritarias" }

// RequestMetadata captures where a registration came from. It is embedded in
// CredentialRegistration and never updated afterwards.
//
// BrowserInfo is a parsed, human-readable label ("Chrome on Windows")
// derived from UserAgent at insert time.
type RequestMetadata struct {
	IPAddress   string    `json:"ipAddress"   gorm:"type:varchar(64)"`
	UserAgent   string    `json:"userAgent"   gorm:"type:varchar(512)"`
	Timestamp   time.Time `json:"timestamp"`
	BrowserInfo string    `json:"browserInfo" gorm:"type:varchar(128)"`
}

// CredentialRegistration records one successful credential hand-out. Rows
// are created exactly once per submission and never updated or deleted by
// the service.
//
// Uniqueness:
//   - Folio carries a genuine unique index; a duplicate insert is the
//     authoritative conflict signal for retried submissions.
//   - DedupKey enforces "at most one registration per identified person":
//     it is the CURP when one is present, otherwise the normalized full
//     name. The service pre-checks are a fast-path UX hint; the index is
//     the source of truth under concurrency.
//
// Image payloads are data-URI-encoded JPEG strings as transmitted by the
// capture client; they are excluded from list and lookup responses.
type CredentialRegistration struct {
	ID           string          `json:"id"                           gorm:"type:char(36);primaryKey"`
	Folio        string          `json:"folio"                        gorm:"type:varchar(32);not null;uniqueIndex:ux_registros_folio"`
	CURP         string          `json:"curp"                         gorm:"type:char(18)"`
	FullName     string          `json:"nombreCompleto"               gorm:"type:varchar(255)"`
	Role         string          `json:"cargo"                        gorm:"type:varchar(128)"`
	Section      int             `json:"seccion"`
	Subprogram   int             `json:"sp"`
	CardImage    string          `json:"imagenCredencial,omitempty"   gorm:"type:text;not null"`
	ProofImage   string          `json:"imagenComprobacion,omitempty" gorm:"type:text"`
	DedupKey     string          `json:"-"                            gorm:"type:varchar(255);not null;uniqueIndex:ux_registros_dedup"`
	RegisteredAt time.Time       `json:"fechaRegistro"                gorm:"index:idx_registros_fecha"`
	Metadata     RequestMetadata `json:"metadata"                     gorm:"embedded;embeddedPrefix:meta_"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"-"`
}

// TableName returns the database table name for CredentialRegistration.
func (CredentialRegistration) TableName() string { return "registros_credenciales" }
