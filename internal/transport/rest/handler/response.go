package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"surveyservice/internal/apperr"
	"surveyservice/internal/metrics"
	"surveyservice/internal/model"
	"surveyservice/internal/service"
	"surveyservice/internal/transport/rest/middleware"
)

// ResponseHandler handles survey response endpoints
type ResponseHandler struct {
	responseSvc *service.SurveyResponseService
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewResponseHandler creates a new response handler. m may be nil.
func NewResponseHandler(responseSvc *service.SurveyResponseService, m *metrics.Metrics, logger *zap.Logger) *ResponseHandler {
	return &ResponseHandler{
		responseSvc: responseSvc,
		metrics:     m,
		logger:      orNop(logger),
	}
}

// Submit handles POST /v1/surveys/{surveyId}/responses
func (h *ResponseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var dto model.SurveyResponseDto
	if !decodeBody(w, r, &dto) {
		return
	}

	// A responder token may only submit for its own responder.
	if responderID := middleware.GetResponderID(r.Context()); responderID != "" {
		if dto.SurveyResponderID == "" {
			dto.SurveyResponderID = responderID
		}
		if dto.SurveyResponderID != responderID {
			h.observe(apperr.EUnauthorized)
			writeAppError(w, h.logger, apperr.Authorization("ResponseHandler.Submit", apperr.KeyNotAllowedAccess))
			return
		}
	}

	response, err := h.responseSvc.Submit(r.Context(), mux.Vars(r)["surveyId"], &dto)
	if err != nil {
		h.observe(apperr.ErrorCode(err))
		writeAppError(w, h.logger, err)
		return
	}

	h.observe("created")
	writeJSON(w, http.StatusCreated, response)
}

// Get handles GET /v1/responses/{responseId}
func (h *ResponseHandler) Get(w http.ResponseWriter, r *http.Request) {
	response, err := h.responseSvc.Get(r.Context(), mux.Vars(r)["responseId"])
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *ResponseHandler) observe(outcome string) {
	if h.metrics != nil {
		h.metrics.Submissions.WithLabelValues(outcome).Inc()
	}
}
