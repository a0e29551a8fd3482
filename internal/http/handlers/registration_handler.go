// Credential registration HTTP handlers.
//
// This file exposes the endpoints that persist and report on credential
// registrations:
//   - POST /api/registro-credencial          (create, with captured images)
//   - GET  /api/estadisticas                 (aggregate counters)
//   - GET  /api/registros-recientes          (paginated listing)
//   - GET  /api/buscar-registro/{termino}    (lookup by CURP or folio)
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/registro-tarjetas/go-registro-backend/internal/http/middleware"
	"github.com/registro-tarjetas/go-registro-backend/internal/repo"
	"github.com/registro-tarjetas/go-registro-backend/internal/services"
	"github.com/registro-tarjetas/go-registro-backend/internal/utils"
)

//
// DTOs
//

// RegisterCredentialRequest is the JSON payload submitted at the end of the
// capture workflow. Images travel as data-URI JPEG strings.
type RegisterCredentialRequest struct {
	Folio      string `json:"folio"            example:"REG-20250115-48291"`
	CURP       string `json:"curp"             example:"PEGJ850101HDFRRN09"`
	FullName   string `json:"nombreCompleto"   example:"JUAN PEREZ GARCIA"`
	Role       string `json:"cargo"            example:"PROMOTOR"`
	Section    int    `json:"seccion"          example:"412"`
	Subprogram int    `json:"sp"               example:"3"`
	CardImage  string `json:"credencial"       example:"data:image/jpeg;base64,..."`
	ProofImage string `json:"comprobacion,omitempty"`
}

// RegisterCredentialResponse confirms a stored registration.
type RegisterCredentialResponse struct {
	Success      bool      `json:"success"`
	Message      string    `json:"message"`
	Folio        string    `json:"folio"`
	RegisteredAt time.Time `json:"fechaRegistro"`
	ID           string    `json:"id"`
}

// StatsPayload carries the aggregate counters shown on the dashboard.
type StatsPayload struct {
	AuthorizedUsers int64     `json:"usuariosAutorizados"`
	Total           int64     `json:"totalRegistros"`
	Today           int64     `json:"registrosHoy"`
	Week            int64     `json:"registrosSemana"`
	UpdatedAt       time.Time `json:"ultimaActualizacion"`
}

// StatsResponse wraps the counters.
type StatsResponse struct {
	Success bool         `json:"success"`
	Stats   StatsPayload `json:"estadisticas"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// RecentRegistrationsResponse wraps a page of recent registrations.
type RecentRegistrationsResponse struct {
	Success       bool                      `json:"success"`
	Registrations []repo.RecentRegistration `json:"registros"`
	Pagination    Pagination                `json:"pagination"`
}

//
// Handlers
//

// RegisterCredential godoc
// @ID          registerCredential
// @Summary     Store a credential registration
// @Description Persists the captured card and proof images together with the person data and request metadata.
// @Tags        Registrations
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterCredentialRequest  true  "Registration payload"
//
// @Success     201  {object}  handlers.RegisterCredentialResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing required fields"
// @Failure     409  {object}  handlers.ErrorResponse  "Folio or person already registered"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/registro-credencial [post]
func (h *Handlers) RegisterCredential(c *gin.Context) {
	var req RegisterCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, MsgRegistrationFields)
		return
	}

	reg, err := h.regSvc.Register(c.Request.Context(), services.RegistrationInput{
		Folio:      req.Folio,
		CURP:       req.CURP,
		FullName:   req.FullName,
		Role:       req.Role,
		Section:    req.Section,
		Subprogram: req.Subprogram,
		CardImage:  req.CardImage,
		ProofImage: req.ProofImage,
		ClientIP:   c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	if err != nil {
		switch err {
		case services.ErrIncompleteRegistration:
			middleware.CountRegistrationOutcome(middleware.OutcomeInvalid)
			fail(c, http.StatusBadRequest, MsgRegistrationFields)
		case services.ErrFolioExists:
			middleware.CountRegistrationOutcome(middleware.OutcomeFolioConflict)
			fail(c, http.StatusConflict, MsgFolioExists)
		case services.ErrPersonAlreadyRegistered:
			middleware.CountRegistrationOutcome(middleware.OutcomePersonConflict)
			fail(c, http.StatusConflict, fmt.Sprintf(MsgPersonHasRegistrationFmt, req.FullName))
		default:
			middleware.CountRegistrationOutcome(middleware.OutcomeError)
			fail(c, http.StatusInternalServerError, MsgRegistrationFailed)
		}
		return
	}

	middleware.CountRegistrationOutcome(middleware.OutcomeCreated)
	ok(c, http.StatusCreated, RegisterCredentialResponse{
		Success:      true,
		Message:      MsgRegistrationCreated,
		Folio:        reg.Folio,
		RegisteredAt: reg.RegisteredAt,
		ID:           reg.ID,
	})
}

// Stats godoc
// @ID          registrationStats
// @Summary     Registration statistics
// @Description Returns authorized-user and registration counters (total, today, trailing week).
// @Tags        Registrations
// @Produce     json
//
// @Success     200  {object}  handlers.StatsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/estadisticas [get]
func (h *Handlers) Stats(c *gin.Context) {
	stats, err := h.regSvc.Stats(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, MsgInternalError)
		return
	}
	ok(c, http.StatusOK, StatsResponse{
		Success: true,
		Stats: StatsPayload{
			AuthorizedUsers: stats.AuthorizedUsers,
			Total:           stats.Total,
			Today:           stats.Today,
			Week:            stats.Week,
			UpdatedAt:       time.Now(),
		},
	})
}

// RecentRegistrations godoc
// @ID          recentRegistrations
// @Summary     List recent registrations
// @Description Returns registrations newest first, without image payloads, with pagination metadata.
// @Tags        Registrations
// @Produce     json
//
// @Param       page   query  int  false  "Page number (1-based)"         default(1)
// @Param       limit  query  int  false  "Page size (max 100)"           default(10)
//
// @Success     200  {object}  handlers.RecentRegistrationsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/registros-recientes [get]
func (h *Handlers) RecentRegistrations(c *gin.Context) {
	page := utils.ClampPage(utils.AtoiDefault(c.Query("page"), 1))
	limit := utils.ClampLimit(utils.AtoiDefault(c.Query("limit"), utils.DefaultPageSize))

	rows, total, err := h.regSvc.Recent(c.Request.Context(), page, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, MsgInternalError)
		return
	}
	ok(c, http.StatusOK, RecentRegistrationsResponse{
		Success:       true,
		Registrations: rows,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: utils.TotalPages(total, limit),
		},
	})
}

// LookupRegistration godoc
// @ID          lookupRegistration
// @Summary     Find a registration by CURP or folio
// @Description Exact-match lookup; the returned registration excludes image payloads.
// @Tags        Registrations
// @Produce     json
//
// @Param       termino  path  string  true  "CURP or folio"
//
// @Success     200  {object}  map[string]any
// @Failure     404  {object}  handlers.ErrorResponse  "No registration found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/buscar-registro/{termino} [get]
func (h *Handlers) LookupRegistration(c *gin.Context) {
	term := c.Param("termino")

	reg, err := h.regSvc.Lookup(c.Request.Context(), term)
	if err != nil {
		if err == services.ErrRegistrationNotFound {
			fail(c, http.StatusNotFound, MsgRegistrationNotFound)
			return
		}
		fail(c, http.StatusInternalServerError, MsgInternalError)
		return
	}
	ok(c, http.StatusOK, gin.H{"success": true, "registro": reg})
}
