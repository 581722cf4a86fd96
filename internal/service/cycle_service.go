package service

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"surveyservice/internal/apperr"
	"surveyservice/internal/model"
	"surveyservice/internal/repository"
)

// CycleService handles the response windows of surveys
type CycleService struct {
	surveyRepo repository.SurveyRepo
	cycleRepo  repository.CycleRepo
	clock      clock.Clock
	loc        *time.Location
}

// NewCycleService creates a new cycle service
func NewCycleService(surveyRepo repository.SurveyRepo, cycleRepo repository.CycleRepo, clk clock.Clock) *CycleService {
	return &CycleService{
		surveyRepo: surveyRepo,
		cycleRepo:  cycleRepo,
		clock:      clk,
		loc:        time.UTC,
	}
}

// SetLocation sets the time zone that decides the current calendar date
func (s *CycleService) SetLocation(loc *time.Location) {
	s.loc = loc
}

// Create adds a cycle to an existing survey
func (s *CycleService) Create(ctx context.Context, cycle *model.SurveyCycle) error {
	const op = "CycleService.Create"

	start, err := time.Parse(model.DateLayout, cycle.StartDate)
	if err != nil {
		return apperr.Validation(op, apperr.KeyInvalidCycleDates)
	}
	end, err := time.Parse(model.DateLayout, cycle.EndDate)
	if err != nil {
		return apperr.Validation(op, apperr.KeyInvalidCycleDates)
	}
	if end.Before(start) {
		return apperr.Validation(op, apperr.KeyInvalidCycleDates)
	}

	if err := s.requireSurvey(ctx, op, cycle.SurveyID); err != nil {
		return err
	}

	cycle.CreatedOn = s.clock.Now().UTC()
	return s.cycleRepo.Create(ctx, cycle)
}

// ListBySurvey returns the cycles of a survey, newest first
func (s *CycleService) ListBySurvey(ctx context.Context, surveyID string) ([]*model.SurveyCycle, error) {
	if err := s.requireSurvey(ctx, "CycleService.ListBySurvey", surveyID); err != nil {
		return nil, err
	}
	return s.cycleRepo.ListBySurvey(ctx, surveyID)
}

// Active returns the cycle currently accepting responses for the survey
func (s *CycleService) Active(ctx context.Context, surveyID string) (*model.SurveyCycle, error) {
	today := s.clock.Now().In(s.loc).Format(model.DateLayout)
	survey, err := s.surveyRepo.FindWithActiveCycles(ctx, surveyID, today)
	if err != nil {
		return nil, err
	}
	id, err := selectActiveCycle(survey.SurveyCycles, today)
	if err != nil {
		return nil, err
	}
	for _, c := range survey.SurveyCycles {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, apperr.NotFound("CycleService.Active", "")
}

func (s *CycleService) requireSurvey(ctx context.Context, op, surveyID string) error {
	survey, err := s.surveyRepo.GetByID(ctx, surveyID)
	if err != nil {
		return err
	}
	if survey == nil {
		return apperr.NotFound(op, "survey %s not found", surveyID)
	}
	return nil
}
