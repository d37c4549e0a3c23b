// Package handler translates HTTP requests into service calls and service
// outcomes into JSON responses.
package handler

// RESPONSE HELPERS:
// Every response from the API uses one of two envelopes.
//
// Success:
//   {"success": true, "message": "Collection created", "collection": {...}}
//
// Error:
//   {"success": false, "code": "NOT_FOUND", "message": "...", "error": "..."}
//
// "code" is the taxonomy tag from apperror.Code, "message" is the
// human-readable text and "error" is the error string the service returned.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/codigoteca/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`    // Machine-readable kind (e.g. "NOT_FOUND")
	Message string `json:"message"` // Human-readable description
	Error   string `json:"error"`
}

// writeJSON sends a JSON response with the given status code.
//
// Headers and status must be set BEFORE writing the body; once Encode
// writes, header changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeSuccess sends the success envelope. When key is empty only success and
// message are written.
func writeSuccess(w http.ResponseWriter, status int, message, key string, payload any) {
	body := map[string]any{
		"success": true,
		"message": message,
	}
	if key != "" {
		body[key] = payload
	}
	writeJSON(w, status, body)
}

// statusFor maps an apperror code to its HTTP status.
var statusFor = map[string]int{
	apperror.CodeValidation:   http.StatusBadRequest,
	apperror.CodeUnauthorized: http.StatusUnauthorized,
	apperror.CodeForbidden:    http.StatusForbidden,
	apperror.CodeNotFound:     http.StatusNotFound,
	apperror.CodeDuplicate:    http.StatusConflict,
	apperror.CodeDeleteError:  http.StatusInternalServerError,
	apperror.CodeInternal:     http.StatusInternalServerError,
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// errors.As walks the wrap chain the service built
// ("service: loading codigo 3: codigo not found with id 3") down to the
// *apperror.AppError, whose Message is what the client sees.
//
// Errors without a kind are internal: they are logged with the request and
// the client gets a generic message. Raw driver errors can contain SQL or
// file paths.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	code := apperror.Code(err)
	status := statusFor[code]

	if code != apperror.CodeInternal {
		message := err.Error()
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
		writeJSON(w, status, ErrorResponse{
			Code:    code,
			Message: message,
			Error:   err.Error(),
		})
		return
	}

	logger.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Code:    apperror.CodeInternal,
		Message: "An internal error occurred",
		Error:   "internal error",
	})
}
