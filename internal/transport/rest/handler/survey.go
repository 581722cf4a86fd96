package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"surveyservice/internal/model"
	"surveyservice/internal/service"
)

// SurveyHandler handles survey and cycle endpoints
type SurveyHandler struct {
	surveySvc *service.SurveyService
	cycleSvc  *service.CycleService
	logger    *zap.Logger
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(surveySvc *service.SurveyService, cycleSvc *service.CycleService, logger *zap.Logger) *SurveyHandler {
	return &SurveyHandler{
		surveySvc: surveySvc,
		cycleSvc:  cycleSvc,
		logger:    orNop(logger),
	}
}

// CreateSurveyRequest is the request body for creating a survey
type CreateSurveyRequest struct {
	Name      string            `json:"name"`
	Questions []*model.Question `json:"questions"`
}

// CreateCycleRequest is the request body for creating a survey cycle
type CreateCycleRequest struct {
	IsActivated bool   `json:"isActivated"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

// Create handles POST /v1/surveys
func (h *SurveyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSurveyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	survey := &model.Survey{Name: req.Name, Questions: req.Questions}
	if err := h.surveySvc.Create(r.Context(), survey); err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, survey)
}

// Get handles GET /v1/surveys/{surveyId}
func (h *SurveyHandler) Get(w http.ResponseWriter, r *http.Request) {
	survey, err := h.surveySvc.GetByID(r.Context(), mux.Vars(r)["surveyId"])
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, survey)
}

// CreateCycle handles POST /v1/surveys/{surveyId}/cycles
func (h *SurveyHandler) CreateCycle(w http.ResponseWriter, r *http.Request) {
	var req CreateCycleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cycle := &model.SurveyCycle{
		SurveyID:    mux.Vars(r)["surveyId"],
		IsActivated: req.IsActivated,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if err := h.cycleSvc.Create(r.Context(), cycle); err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, cycle)
}

// ListCycles handles GET /v1/surveys/{surveyId}/cycles
func (h *SurveyHandler) ListCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := h.cycleSvc.ListBySurvey(r.Context(), mux.Vars(r)["surveyId"])
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}
	if cycles == nil {
		cycles = []*model.SurveyCycle{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"cycles": cycles})
}

// ActiveCycle handles GET /v1/surveys/{surveyId}/cycles/active
func (h *SurveyHandler) ActiveCycle(w http.ResponseWriter, r *http.Request) {
	cycle, err := h.cycleSvc.Active(r.Context(), mux.Vars(r)["surveyId"])
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, cycle)
}
