package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/feinhq/fein/internal/errors"
)

// ErrorBody is the JSON envelope for every error response.
type ErrorBody struct {
	Error struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details,omitempty"`
	} `json:"error"`
}

// WriteJSON writes data as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteErrorResponse writes a structured error response.
func WriteErrorResponse(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	var body ErrorBody
	body.Error.Code = code
	body.Error.Message = message
	body.Error.Details = details
	WriteJSON(w, status, body)
}

// WriteServiceError maps err onto the error envelope. Unknown errors are
// reported as internal without leaking their message.
func WriteServiceError(w http.ResponseWriter, err error) {
	svcErr := errors.GetServiceError(err)
	if svcErr == nil {
		svcErr = errors.Internal("Internal server error", err)
	}
	WriteErrorResponse(w, svcErr.HTTPStatus, string(svcErr.Code), svcErr.Message, svcErr.Details)
}

// Unauthorized writes a 401 with a Bearer WWW-Authenticate challenge.
func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Invalid authentication credentials"
	}
	w.Header().Set("WWW-Authenticate", "Bearer")
	WriteErrorResponse(w, http.StatusUnauthorized, string(errors.CodeUnauthorized), message, nil)
}
