// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities used across all
// endpoints. Every response, success or failure, carries a `success` flag;
// failures add a human-readable `error` string that the capture client
// renders directly to the end user. The Spanish message strings are part of
// the user-facing contract, not just logs, so they live as constants in
// messages.go and must not be reworded casually.
//
// Example failure response:
//
//	HTTP/1.1 409 Conflict
//	{ "success": false, "error": "El folio ya existe. Intenta de nuevo." }
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/registro-tarjetas/go-registro-backend/internal/http/middleware"
)

// ErrorResponse is the uniform failure envelope returned by all endpoints.
type ErrorResponse struct {
	Success bool `json:"success" example:"false"`
	// Error is a human-readable Spanish message, safe to show to users.
	Error string `json:"error" example:"Ruta no encontrada"`
}

// fail aborts the request with the uniform failure envelope and logs
// server-side errors with the request-scoped logger.
func fail(c *gin.Context, status int, msg string) {
	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Success: false, Error: msg})
}

// Fail is the exported variant of fail().
//
// External packages (e.g., router setup) should call Fail to return
// consistent error envelopes without directly depending on unexported helpers.
func Fail(c *gin.Context, status int, msg string) { fail(c, status, msg) }

// ok writes a success JSON response with the given status.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
