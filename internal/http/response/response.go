// Package response provides JSON response formatting for the raw,
// non-huma HTTP handlers, keeping their error shape aligned with the
// JSON API.
package response

import (
	"encoding/json/v2"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/pantryapp/pantry-server/internal/errors"
)

// errorBody mirrors the error shape the JSON API produces.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes a JSON response with the given status code using json/v2.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.MarshalWrite(w, data); err != nil {
		if logger != nil {
			logger.Error("Failed to encode JSON response", "error", err)
		}
	}
}

// Created writes a created response (201 Created).
func Created(w http.ResponseWriter, data any, logger *slog.Logger) {
	JSON(w, http.StatusCreated, data, logger)
}

// NoContent writes a no content response (204 No Content).
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes an error response derived from a domain error. Unknown
// errors become an opaque 500.
func Error(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		JSON(w, domainErr.HTTPStatus(), errorBody{
			Code:    string(domainErr.Code),
			Message: domainErr.Message,
			Details: domainErr.Details,
		}, logger)
		return
	}

	if logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
	JSON(w, http.StatusInternalServerError, errorBody{
		Code:    string(apperrors.CodeInternal),
		Message: "internal error",
	}, logger)
}

// Unauthorized writes a 401 response with the unauthorized error code.
func Unauthorized(w http.ResponseWriter, message string, logger *slog.Logger) {
	JSON(w, http.StatusUnauthorized, errorBody{
		Code:    string(apperrors.CodeUnauthorized),
		Message: message,
	}, logger)
}
