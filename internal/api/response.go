package api

import (
	"encoding/json"
	"net/http"

	"github.com/strefethen/yamaha-hub-go/internal/apperrors"
)

// ListResponse is the envelope for collection endpoints.
type ListResponse struct {
	Object  string `json:"object"`
	Data    any    `json:"data"`
	HasMore bool   `json:"has_more"`
	URL     string `json:"url"`
}

// ErrorResponse wraps the serialized error payload.
type ErrorResponse struct {
	Error apperrors.ErrorBody `json:"error"`
}

// WriteJSON sends a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}

// WriteError serializes an AppError into the error response envelope.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.EnsureAppError(err)
	_ = WriteJSON(w, appErr.StatusCode, ErrorResponse{Error: appErr.ErrorBody()})
}

// WriteList writes a list response.
func WriteList(w http.ResponseWriter, url string, data any, hasMore bool) error {
	return WriteJSON(w, http.StatusOK, ListResponse{
		Object:  "list",
		Data:    data,
		HasMore: hasMore,
		URL:     url,
	})
}

// WriteResource writes a single resource.
func WriteResource(w http.ResponseWriter, status int, resource any) error {
	return WriteJSON(w, status, resource)
}

// WriteNoContent responds with 204.
func WriteNoContent(w http.ResponseWriter) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// DecodeJSONBody decodes a request body into dst, rejecting malformed JSON.
func DecodeJSONBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return apperrors.NewValidationError("Invalid JSON body", map[string]any{
			"error": err.Error(),
		})
	}
	return nil
}
