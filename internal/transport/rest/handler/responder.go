package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"surveyservice/internal/model"
	"surveyservice/internal/service"
)

// ResponderHandler handles responder registration
type ResponderHandler struct {
	responderSvc *service.ResponderService
	authSvc      *service.AuthService
	logger       *zap.Logger
}

// NewResponderHandler creates a new responder handler
func NewResponderHandler(responderSvc *service.ResponderService, authSvc *service.AuthService, logger *zap.Logger) *ResponderHandler {
	return &ResponderHandler{
		responderSvc: responderSvc,
		authSvc:      authSvc,
		logger:       orNop(logger),
	}
}

// RegisterResponderRequest is the request body for registering a responder
type RegisterResponderRequest struct {
	SurveyCycleID string `json:"surveyCycleId"`
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
}

// RegisterResponderResponse carries the responder and the token it submits with
type RegisterResponderResponse struct {
	Responder *model.SurveyResponder `json:"responder"`
	Token     string                 `json:"token"`
}

// Register handles POST /v1/surveys/{surveyId}/responders
func (h *ResponderHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterResponderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	responder := &model.SurveyResponder{
		SurveyID:      mux.Vars(r)["surveyId"],
		SurveyCycleID: req.SurveyCycleID,
		FullName:      req.FullName,
		Email:         req.Email,
	}
	if err := h.responderSvc.Register(r.Context(), responder); err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	token, err := h.authSvc.GenerateResponderToken(responder.SurveyID, responder.ID)
	if err != nil {
		writeAppError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponderResponse{Responder: responder, Token: token})
}
