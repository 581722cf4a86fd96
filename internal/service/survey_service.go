package service

import (
	"context"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"surveyservice/internal/apperr"
	"surveyservice/internal/model"
	"surveyservice/internal/repository"
)

// SurveyService handles survey definitions
type SurveyService struct {
	surveyRepo repository.SurveyRepo
	clock      clock.Clock
}

// NewSurveyService creates a new survey service
func NewSurveyService(surveyRepo repository.SurveyRepo, clk clock.Clock) *SurveyService {
	return &SurveyService{
		surveyRepo: surveyRepo,
		clock:      clk,
	}
}

// Create validates the question tree, assigns missing question and option
// ids and stores the survey
func (s *SurveyService) Create(ctx context.Context, survey *model.Survey) error {
	const op = "SurveyService.Create"

	survey.Name = strings.TrimSpace(survey.Name)
	if survey.Name == "" {
		return apperr.Validation(op, apperr.KeyInvalidSurvey)
	}
	if err := prepareQuestions(survey.Questions); err != nil {
		return err
	}

	survey.CreatedOn = s.clock.Now().UTC()
	return s.surveyRepo.Create(ctx, survey)
}

// prepareQuestions walks the whole tree. Ids must be unique across all
// nesting levels because answers address questions by id alone.
func prepareQuestions(questions []*model.Question) error {
	const op = "SurveyService.prepareQuestions"

	seen := make(map[string]bool)
	stack := append([]*model.Question(nil), questions...)
	for len(stack) > 0 {
		q := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if q == nil || !q.QuestionType.IsValid() {
			return apperr.Validation(op, apperr.KeyInvalidQuestion)
		}
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if seen[q.ID] {
			return apperr.Validation(op, apperr.KeyInvalidQuestion)
		}
		seen[q.ID] = true

		if q.QuestionType == model.QuestionTypeText && len(q.Options) > 0 {
			return apperr.Validation(op, apperr.KeyInvalidQuestion)
		}
		for i := range q.Options {
			if q.Options[i].ID == "" {
				q.Options[i].ID = uuid.NewString()
			}
		}
		stack = append(stack, q.FollowUpQuestions...)
	}
	return nil
}

// GetByID retrieves a survey by ID
func (s *SurveyService) GetByID(ctx context.Context, id string) (*model.Survey, error) {
	survey, err := s.surveyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if survey == nil {
		return nil, apperr.NotFound("SurveyService.GetByID", "survey %s not found", id)
	}
	return survey, nil
}
