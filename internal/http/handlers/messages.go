// Package handlers defines the user-facing message strings returned by the
// API. The capture client renders these verbatim, which makes them part of
// the endpoint contract: tests and the front end both match on them.
//
// All strings are Spanish because the registration desk operates in
// Spanish; error taxonomy and status codes stay language-neutral.
package handlers

const (
	// Generic failures.
	MsgRouteNotFound    = "Ruta no encontrada"
	MsgMethodNotAllowed = "Método no permitido"
	MsgInternalError    = "Error interno del servidor"

	// Person registration.
	MsgNameRequired       = "El nombre completo es requerido"
	MsgCURPRequired       = "El CURP es requerido"
	MsgCURPInvalidFormat  = "El formato del CURP no es válido"
	MsgSPRequired         = "El SP es requerido"
	MsgPersonCURPConflict = "Ya existe una persona registrada con este CURP"
	MsgPersonRegistered   = "Persona registrada exitosamente"
	MsgPersonInsertFailed = "Error interno del servidor al registrar persona"

	// Person search.
	MsgSearchTypeMore  = "Escribe al menos 2 caracteres para buscar"
	MsgSearchSelectSP  = "Debes seleccionar un SP"
	MsgSearchNoResults = "Usuario no encontrado"
	MsgSearchFailed    = "Error al buscar en la base de datos"

	// CURP authorization.
	MsgCURPInvalid        = "Formato de CURP inválido"
	MsgCURPNotFound       = "Usuario no encontrado en la base de datos"
	MsgCURPAuthorized     = "Usuario autorizado para registro"
	MsgCURPValidateFailed = "Error interno del servidor al validar CURP"

	// Credential registration.
	MsgRegistrationFields = "Campos requeridos: folio, nombreCompleto, credencial"
	MsgFolioExists        = "El folio ya existe. Intenta de nuevo."
	// MsgPersonHasRegistrationFmt takes the person's full name.
	MsgPersonHasRegistrationFmt = "Ya existe un registro de credencial para %s"
	MsgRegistrationCreated      = "Credencial registrada exitosamente"
	MsgRegistrationFailed       = "Error interno del servidor al registrar credencial"
	MsgRegistrationNotFound     = "No se encontró registro con ese CURP o folio"
)
