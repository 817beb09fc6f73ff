package handler

import (
	"encoding/json"
	"net/http"

	"github.com/amlaw/client-portal/internal/api/middleware"
	"github.com/amlaw/client-portal/internal/api/response"
	"github.com/amlaw/client-portal/internal/domain"
	"github.com/amlaw/client-portal/internal/service"
)

// AnalysisHandler handles the legal analysis endpoints
type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

// Options returns the case types, jurisdictions and section titles
func (h *AnalysisHandler) Options(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.analysisService.Options())
}

// Get returns the current form and the last generated report
func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	response.OK(w, h.analysisService.Current(session))
}

// Analyze runs a legal analysis
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var input domain.AnalyzeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	state, err := h.analysisService.Analyze(r.Context(), session, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, state)
}

// Clear resets the form and drops the report
func (h *AnalysisHandler) Clear(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	state, err := h.analysisService.Clear(r.Context(), session)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, state)
}
