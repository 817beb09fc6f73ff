package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/amlaw/client-portal/internal/domain"
	"github.com/rs/zerolog/log"
)

// Response represents a standard API response
type Response struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Error   any  `json:"error,omitempty"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := Response{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	json.NewEncoder(w).Encode(resp)
}

// Error sends an error response
func Error(w http.ResponseWriter, status int, message any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := Response{
		Success: false,
		Error:   message,
	}

	json.NewEncoder(w).Encode(resp)
}

// OK sends a 200 OK response with data
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// BadRequest sends a 400 Bad Request response
func BadRequest(w http.ResponseWriter, message any) {
	Error(w, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 Unauthorized response
func Unauthorized(w http.ResponseWriter, message any) {
	Error(w, http.StatusUnauthorized, message)
}

// InternalError sends a 500 Internal Server Error response
func InternalError(w http.ResponseWriter, message any) {
	Error(w, http.StatusInternalServerError, message)
}

// FromError maps a service error to its HTTP status and body
func FromError(w http.ResponseWriter, err error) {
	var (
		verr       *domain.ValidationError
		incomplete *domain.OnboardingIncompleteError
		failed     *domain.AnalysisFailedError
		collab     *domain.CollaboratorError
	)

	switch {
	case errors.As(err, &verr):
		if verr.Field != "" {
			BadRequest(w, map[string]string{verr.Field: verr.Message})
			return
		}
		BadRequest(w, verr.Message)

	case errors.Is(err, domain.ErrAuth), errors.Is(err, domain.ErrSessionNotFound):
		Unauthorized(w, err.Error())

	case errors.As(err, &incomplete):
		Error(w, http.StatusConflict, map[string]any{
			"message":  err.Error(),
			"progress": incomplete.Progress,
		})

	case errors.As(err, &failed):
		log.Error().Err(failed.Err).Str("section", failed.Section).Msg("analysis failed")
		Error(w, http.StatusBadGateway, map[string]any{
			"message": "failed to generate legal analysis for " + failed.Section,
			"section": failed.Section,
		})

	case errors.As(err, &collab):
		log.Error().Err(collab.Err).Str("collaborator", collab.Collaborator).Str("op", collab.Op).Msg("collaborator failed")
		Error(w, http.StatusBadGateway, collab.Collaborator+" unavailable")

	default:
		log.Error().Err(err).Msg("unhandled error")
		InternalError(w, "internal server error")
	}
}
