package errors

import (
	"encoding/json"
	"net/http"
)

// Fixed client-facing messages
const (
	MsgSlugTaken = "slug já em uso"
	MsgNotFound  = "não encontrado"
	MsgInternal  = "erro interno"
)

// AppError represents an application error with HTTP context.
// Only Message reaches the client; Code and Details are for logs.
type AppError struct {
	Code       string
	Message    string
	Details    string
	StatusCode int
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// ErrorResponse is the JSON response format for errors
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes the error as JSON response
func (e *AppError) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: e.Message})
}

// ============================================================
// ERROR CONSTRUCTORS
// ============================================================

// Validation Errors (400)
func BadRequest(message string) *AppError {
	return &AppError{
		Code:       "BAD_REQUEST",
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func InvalidJSON(details string) *AppError {
	return &AppError{
		Code:       "INVALID_JSON",
		Message:    "corpo da requisição inválido",
		Details:    details,
		StatusCode: http.StatusBadRequest,
	}
}

func Validation(message string) *AppError {
	return &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// Not Found Errors (404)
func NotFound() *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    MsgNotFound,
		StatusCode: http.StatusNotFound,
	}
}

// Conflict Errors (409)
func SlugTaken() *AppError {
	return &AppError{
		Code:       "SLUG_TAKEN",
		Message:    MsgSlugTaken,
		StatusCode: http.StatusConflict,
	}
}

// Server Errors (500)
func Internal(details string) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    MsgInternal,
		Details:    details,
		StatusCode: http.StatusInternalServerError,
	}
}

// Unavailable (503)
func Unavailable(details string) *AppError {
	return &AppError{
		Code:       "UNAVAILABLE",
		Message:    "serviço indisponível",
		Details:    details,
		StatusCode: http.StatusServiceUnavailable,
	}
}
