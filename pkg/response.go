package pkg

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

var ContentType = struct {
	JSON string
	Text string
}{
	JSON: "application/json",
	Text: "text/plain",
}

// Error kinds returned to clients. Every handler failure maps to one of
// these; unexpected failures collapse to ErrKindServer with no detail.
const (
	ErrKindValidation         = "validation_error"
	ErrKindDuplicateResource  = "duplicate_resource"
	ErrKindNotFound           = "not_found"
	ErrKindUnauthorized       = "unauthorized"
	ErrKindInvalidCredentials = "invalid_credentials"
	ErrKindRequiresGoogleAuth = "requires_google_auth"
	ErrKindDeactivated        = "account_deactivated"
	ErrKindReferenceNotFound  = "reference_not_found"
	ErrKindInvalidPagination  = "invalid_pagination"
	ErrKindServer             = "server_error"
)

type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Details []FieldIssue `json:"details,omitempty"`
}

func WriteResponse(w http.ResponseWriter, contentType, message string, statusCode int) {
	WriteResponseBytes(w, contentType, []byte(message), statusCode)
}

func WriteResponseBytes(w http.ResponseWriter, contentType string, message []byte, statusCode int) {
	if contentType != "" {
		w.Header().Add("Content-Type", contentType)
	}
	w.WriteHeader(statusCode)

	if _, err := w.Write(message); err != nil {
		log.Errorf("failed to write response [%s]: %s", message, err)
	}
}

func WriteResponseBytesOK(w http.ResponseWriter, contentType string, message []byte) {
	WriteResponseBytes(w, contentType, message, http.StatusOK)
}

func WriteTextResponseOK(w http.ResponseWriter, message string) {
	WriteResponse(w, ContentType.Text, message, http.StatusOK)
}

func WriteJSONResponseOK(w http.ResponseWriter, message string) {
	WriteResponse(w, ContentType.JSON, message, http.StatusOK)
}

// WriteJSON marshals payload and writes it with the given status code.
func WriteJSON(w http.ResponseWriter, payload any, statusCode int) {
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("failed to marshal response payload: %s", err)
		WriteError(w, ErrKindServer, "internal server error", http.StatusInternalServerError)
		return
	}
	WriteResponseBytes(w, ContentType.JSON, payloadJson, statusCode)
}

func WriteError(w http.ResponseWriter, kind, message string, statusCode int) {
	WriteErrorWithDetails(w, kind, message, nil, statusCode)
}

func WriteErrorWithDetails(w http.ResponseWriter, kind, message string, details []FieldIssue, statusCode int) {
	errJson, err := json.Marshal(ErrorResponse{
		Error:   kind,
		Message: message,
		Details: details,
	})
	if err != nil {
		log.Errorf("failed to marshal error response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	WriteResponseBytes(w, ContentType.JSON, errJson, statusCode)
}
