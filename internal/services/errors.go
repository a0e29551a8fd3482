// Package services defines the business logic for the person directory and
// credential registrations. This file centralizes common service-level error
// values so that they can be consistently returned by service methods and
// checked by callers.
//
// These errors are intended for internal use by the service layer;
// translation into the user-facing Spanish messages and HTTP status codes
// is performed at the handler layer.
package services

import "errors"

// Directory-related errors.
var (
	// ErrMissingName is returned when a person registration has no full name.
	ErrMissingName = errors.New("full name is required")

	// ErrMissingCURP is returned when the CURP field is absent.
	ErrMissingCURP = errors.New("curp is required")

	// ErrInvalidCURP is returned when a CURP fails the structural pattern.
	ErrInvalidCURP = errors.New("curp format is invalid")

	// ErrMissingSubprogram is returned when no sub-program was selected.
	ErrMissingSubprogram = errors.New("subprogram is required")

	// ErrDuplicateCURP is returned when the directory already holds a
	// person with the given CURP.
	ErrDuplicateCURP = errors.New("curp already registered")

	// ErrQueryTooShort is returned when a search term has fewer than two
	// characters after trimming.
	ErrQueryTooShort = errors.New("query too short")

	// ErrNotAuthorized is returned when a CURP is not present in the
	// authorization directory.
	ErrNotAuthorized = errors.New("curp not authorized")
)

// Registration-related errors.
var (
	// ErrIncompleteRegistration is returned when a submission lacks the
	// folio, the full name, or the card photo payload.
	ErrIncompleteRegistration = errors.New("folio, full name and card image are required")

	// ErrFolioExists is returned when the confirmation code is already
	// taken; the client generates a fresh folio and retries.
	ErrFolioExists = errors.New("folio already exists")

	// ErrPersonAlreadyRegistered is returned when a registration already
	// exists for the submitted person.
	ErrPersonAlreadyRegistered = errors.New("registration already exists for this person")

	// ErrRegistrationNotFound is returned by lookups when no registration
	// matches the given CURP or folio.
	ErrRegistrationNotFound = errors.New("registration not found")
)
