// Directory HTTP handlers.
//
// This file exposes the endpoints that back the person-selection step of
// the capture workflow:
//   - POST /api/persona-nueva    (register a person missing from the directory)
//   - POST /api/buscar-persona   (substring search scoped to a sub-program)
//   - POST /api/validate-curp    (authorization check against the usuarios table)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into the Spanish response envelopes the
// capture client renders.
package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/registro-tarjetas/go-registro-backend/internal/domain"
	"github.com/registro-tarjetas/go-registro-backend/internal/repo"
	"github.com/registro-tarjetas/go-registro-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// DirectoryService defines directory operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type DirectoryService interface {
	// Search returns up to ten directory entries matching query within a
	// sub-program.
	Search(ctx context.Context, query string, subprogram int) ([]domain.PriorityPerson, error)
	// RegisterPerson adds a person to the directory.
	RegisterPerson(ctx context.Context, fullName, curp string, subprogram int) (*domain.PriorityPerson, error)
	// Authorize checks a CURP against the authorization directory.
	Authorize(ctx context.Context, curp string) error
}

// RegistrationService defines credential registration operations consumed
// by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type RegistrationService interface {
	// Register persists a credential registration atomically.
	Register(ctx context.Context, in services.RegistrationInput) (*domain.CredentialRegistration, error)
	// Stats returns aggregate registration counters.
	Stats(ctx context.Context) (services.RegistrationStats, error)
	// Recent returns a page of recent registrations and the total count.
	Recent(ctx context.Context, page, limit int) ([]repo.RecentRegistration, int64, error)
	// Lookup finds a registration by exact CURP or folio.
	Lookup(ctx context.Context, term string) (*domain.CredentialRegistration, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for the directory and credential
// registrations. It depends on abstract service interfaces to keep
// transport concerns separate from business logic.
type Handlers struct {
	dirSvc DirectoryService
	regSvc RegistrationService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(dirSvc DirectoryService, regSvc RegistrationService) *Handlers {
	return &Handlers{dirSvc: dirSvc, regSvc: regSvc}
}

//
// DTOs
//

// NewPersonRequest is the JSON payload for registering a directory person.
type NewPersonRequest struct {
	FullName   string `json:"nombreCompleto" example:"JUAN PEREZ GARCIA"`
	CURP       string `json:"curp"           example:"PEGJ850101HDFRRN09"`
	Subprogram int    `json:"sp"             example:"3"`
}

// PersonPayload is the directory entry shape returned to the client, with
// absent fields defaulted to empty/zero values.
type PersonPayload struct {
	FullName   string `json:"nombreCompleto"`
	Role       string `json:"cargo"`
	Section    int    `json:"seccion"`
	Subprogram int    `json:"sp"`
	CURP       string `json:"curp"`
}

// NewPersonResponse wraps a successfully registered person.
type NewPersonResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Person  PersonPayload `json:"persona"`
}

// SearchRequest is the JSON payload for the person search.
type SearchRequest struct {
	Name       string `json:"nombre" example:"GARCIA"`
	Subprogram int    `json:"sp"     example:"3"`
}

// SearchResponse wraps search results. Success is false for the two
// guidance cases (short query, missing sub-program), still with HTTP 200.
type SearchResponse struct {
	Success bool            `json:"success"`
	Results []PersonPayload `json:"resultados"`
	Total   int             `json:"total"`
	Message string          `json:"mensaje"`
}

// ValidateCURPRequest is the JSON payload for the authorization check.
type ValidateCURPRequest struct {
	CURP string `json:"curp" example:"PEGJ850101HDFRRN09"`
}

// ValidateCURPResponse confirms that the CURP may register.
type ValidateCURPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// payloadFromPerson flattens a directory row into the wire shape,
// defaulting an absent CURP to the empty string.
func payloadFromPerson(p domain.PriorityPerson) PersonPayload {
	out := PersonPayload{
		FullName:   p.FullName,
		Role:       p.Role,
		Section:    p.Section,
		Subprogram: p.Subprogram,
	}
	if p.CURP != nil {
		out.CURP = *p.CURP
	}
	return out
}

//
// Handlers
//

// NewPerson godoc
// @ID          newPerson
// @Summary     Register a directory person
// @Description Adds a person missing from the priority directory so they can be selected for registration.
// @Tags        Directory
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.NewPersonRequest  true  "Person payload"
//
// @Success     201  {object}  handlers.NewPersonResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing or malformed field"
// @Failure     409  {object}  handlers.ErrorResponse  "CURP already registered"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/persona-nueva [post]
func (h *Handlers) NewPerson(c *gin.Context) {
	var req NewPersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, MsgNameRequired)
		return
	}

	p, err := h.dirSvc.RegisterPerson(c.Request.Context(), req.FullName, req.CURP, req.Subprogram)
	if err != nil {
		switch err {
		case services.ErrMissingName:
			fail(c, http.StatusBadRequest, MsgNameRequired)
		case services.ErrMissingCURP:
			fail(c, http.StatusBadRequest, MsgCURPRequired)
		case services.ErrInvalidCURP:
			fail(c, http.StatusBadRequest, MsgCURPInvalidFormat)
		case services.ErrMissingSubprogram:
			fail(c, http.StatusBadRequest, MsgSPRequired)
		case services.ErrDuplicateCURP:
			fail(c, http.StatusConflict, MsgPersonCURPConflict)
		default:
			fail(c, http.StatusInternalServerError, MsgPersonInsertFailed)
		}
		return
	}

	ok(c, http.StatusCreated, NewPersonResponse{
		Success: true,
		Message: MsgPersonRegistered,
		Person:  payloadFromPerson(*p),
	})
}

// SearchPersons godoc
// @ID          searchPersons
// @Summary     Search the priority directory
// @Description Case-insensitive substring search on full name, scoped to a sub-program, at most ten matches.
// @Tags        Directory
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.SearchRequest  true  "Search payload"
//
// @Success     200  {object}  handlers.SearchResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/buscar-persona [post]
func (h *Handlers) SearchPersons(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ok(c, http.StatusOK, SearchResponse{Success: false, Results: []PersonPayload{}, Message: MsgSearchTypeMore})
		return
	}

	matches, err := h.dirSvc.Search(c.Request.Context(), req.Name, req.Subprogram)
	if err != nil {
		// The two guidance cases are not HTTP errors: the client shows
		// the hint inline under the search box.
		switch err {
		case services.ErrQueryTooShort:
			ok(c, http.StatusOK, SearchResponse{Success: false, Results: []PersonPayload{}, Message: MsgSearchTypeMore})
		case services.ErrMissingSubprogram:
			ok(c, http.StatusOK, SearchResponse{Success: false, Results: []PersonPayload{}, Message: MsgSearchSelectSP})
		default:
			c.JSON(http.StatusInternalServerError, SearchResponse{
				Success: false,
				Results: []PersonPayload{},
				Message: MsgSearchFailed,
			})
		}
		return
	}

	results := make([]PersonPayload, 0, len(matches))
	for _, m := range matches {
		results = append(results, payloadFromPerson(m))
	}
	msg := fmt.Sprintf("%d resultado(s) encontrado(s)", len(results))
	if len(results) == 0 {
		msg = MsgSearchNoResults
	}
	ok(c, http.StatusOK, SearchResponse{
		Success: true,
		Results: results,
		Total:   len(results),
		Message: msg,
	})
}

// ValidateCURP godoc
// @ID          validateCURP
// @Summary     Check CURP authorization
// @Description Verifies that a CURP belongs to the pre-loaded authorization directory.
// @Tags        Directory
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.ValidateCURPRequest  true  "CURP payload"
//
// @Success     200  {object}  handlers.ValidateCURPResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing or malformed CURP"
// @Failure     404  {object}  handlers.ErrorResponse  "CURP not authorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/validate-curp [post]
func (h *Handlers) ValidateCURP(c *gin.Context) {
	var req ValidateCURPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, MsgCURPRequired)
		return
	}

	if err := h.dirSvc.Authorize(c.Request.Context(), req.CURP); err != nil {
		switch err {
		case services.ErrMissingCURP:
			fail(c, http.StatusBadRequest, MsgCURPRequired)
		case services.ErrInvalidCURP:
			fail(c, http.StatusBadRequest, MsgCURPInvalid)
		case services.ErrNotAuthorized:
			fail(c, http.StatusNotFound, MsgCURPNotFound)
		default:
			fail(c, http.StatusInternalServerError, MsgCURPValidateFailed)
		}
		return
	}

	ok(c, http.StatusOK, ValidateCURPResponse{Success: true, Message: MsgCURPAuthorized})
}
