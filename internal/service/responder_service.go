package service

import (
	"context"
	"net/mail"
	"strings"

	"github.com/benbjohnson/clock"

	"surveyservice/internal/apperr"
	"surveyservice/internal/model"
	"surveyservice/internal/repository"
)

// ResponderService registers the participants of survey cycles
type ResponderService struct {
	cycleRepo     repository.CycleRepo
	responderRepo repository.ResponderRepo
	clock         clock.Clock
}

// NewResponderService creates a new responder service
func NewResponderService(cycleRepo repository.CycleRepo, responderRepo repository.ResponderRepo, clk clock.Clock) *ResponderService {
	return &ResponderService{
		cycleRepo:     cycleRepo,
		responderRepo: responderRepo,
		clock:         clk,
	}
}

// Register adds a responder to a cycle of the survey
func (s *ResponderService) Register(ctx context.Context, responder *model.SurveyResponder) error {
	const op = "ResponderService.Register"

	responder.FullName = strings.TrimSpace(responder.FullName)
	responder.Email = strings.ToLower(strings.TrimSpace(responder.Email))
	if _, err := mail.ParseAddress(responder.Email); err != nil {
		return apperr.Validation(op, apperr.KeyInvalidResponder)
	}

	cycle, err := s.cycleRepo.GetByID(ctx, responder.SurveyCycleID)
	if err != nil {
		return err
	}
	if cycle == nil || cycle.SurveyID != responder.SurveyID {
		return apperr.NotFound(op, "cycle %s not found for survey %s", responder.SurveyCycleID, responder.SurveyID)
	}

	responder.CreatedOn = s.clock.Now().UTC()
	return s.responderRepo.Create(ctx, responder)
}
