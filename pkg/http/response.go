package http

import (
	"encoding/json"
	"net/http"
)

// SuccessResponse is the envelope of every successful API response
type SuccessResponse struct {
	Success bool `json:"success"`
	Result  any  `json:"result,omitempty"`
}

// ErrorResponse represents a standard API error response
type ErrorResponse struct {
	Message string `json:"message,omitempty"`
}

// WriteJSON writes v as a JSON body with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// Encoding errors are not reported to the client once the header is out
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes a 200 success envelope; a nil result is omitted
func WriteSuccess(w http.ResponseWriter, result any) {
	WriteJSON(w, http.StatusOK, SuccessResponse{Success: true, Result: result})
}

// WriteError writes a JSON error response with the given status code
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Message: message})
}

// WriteEmpty writes an empty JSON object, used where the body must not carry detail
func WriteEmpty(w http.ResponseWriter, statusCode int) {
	WriteJSON(w, statusCode, struct{}{})
}

// Common error writers for consistency
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message)
}

func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, message)
}

func WriteServiceUnavailable(w http.ResponseWriter) {
	WriteError(w, http.StatusServiceUnavailable, "Service temporarily unavailable")
}

func WriteInternalError(w http.ResponseWriter, message string) {
	if message == "" {
		WriteEmpty(w, http.StatusInternalServerError)
		return
	}
	WriteError(w, http.StatusInternalServerError, message)
}
