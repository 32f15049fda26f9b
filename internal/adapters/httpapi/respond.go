package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"cortexmap/internal/application"
)

// ErrorBody is the payload of every failed request
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail names the failure category and describes it
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(logger *zap.Logger, w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

// respondError maps err onto its category and status code
func respondError(logger *zap.Logger, w http.ResponseWriter, err error) {
	code := application.Category(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("code", code), zap.Error(err))
	} else {
		logger.Debug("request rejected", zap.String("code", code), zap.Error(err))
	}
	respondJSON(logger, w, status, ErrorBody{Error: ErrorDetail{Code: code, Message: err.Error()}})
}

func statusFor(code string) int {
	switch code {
	case "not_found":
		return http.StatusNotFound
	case "corrupt":
		return http.StatusUnprocessableEntity
	case "validation":
		return http.StatusBadRequest
	default:
		return http.StatusServiceUnavailable
	}
}

func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &application.ValidationError{Field: "body", Message: "invalid request body: " + err.Error()}
	}
	return nil
}
