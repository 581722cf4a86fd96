package service

import (
	"context"
	"sort"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"surveyservice/internal/apperr"
	"surveyservice/internal/cache"
	"surveyservice/internal/model"
	"surveyservice/internal/repository"
)

// SurveyResponseService accepts survey submissions and normalizes their
// answers into detail rows
type SurveyResponseService struct {
	surveys     repository.SurveyRepo
	responders  repository.ResponderRepo
	responses   repository.ResponseRepo
	details     repository.ResponseDetailRepo
	clock       clock.Clock
	loc         *time.Location
	logger      *zap.Logger
	stats       cache.StatsCache
	broadcaster Broadcaster
}

// NewSurveyResponseService creates a new survey response service
func NewSurveyResponseService(stores *repository.Stores, clk clock.Clock, logger *zap.Logger) *SurveyResponseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SurveyResponseService{
		surveys:    stores.Surveys,
		responders: stores.Responders,
		responses:  stores.Responses,
		details:    stores.ResponseDetails,
		clock:      clk,
		loc:        time.UTC,
		logger:     logger,
	}
}

// SetLocation sets the time zone that decides the current calendar date
func (s *SurveyResponseService) SetLocation(loc *time.Location) {
	s.loc = loc
}

// SetStatsCache sets the cache that counts submissions
func (s *SurveyResponseService) SetStatsCache(stats cache.StatsCache) {
	s.stats = stats
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *SurveyResponseService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

func (s *SurveyResponseService) today() string {
	return s.clock.Now().In(s.loc).Format(model.DateLayout)
}

// Submit records a response of dto's responder to the active cycle of the
// survey and stores one detail row per answer, or per selected option of
// a multi-selection question.
func (s *SurveyResponseService) Submit(ctx context.Context, surveyID string, dto *model.SurveyResponseDto) (*model.SurveyResponse, error) {
	const op = "SurveyResponseService.Submit"

	if dto == nil || dto.SurveyResponseDetailArray == nil {
		return nil, apperr.Validation(op, apperr.KeySurveyResponseDetailNotFound)
	}

	today := s.today()
	survey, err := s.surveys.FindWithActiveCycles(ctx, surveyID, today)
	if err != nil {
		return nil, err
	}

	cycleID, err := selectActiveCycle(survey.SurveyCycles, today)
	if err != nil {
		return nil, err
	}

	if _, err := s.authorizeResponder(ctx, dto.SurveyResponderID, surveyID, cycleID); err != nil {
		return nil, err
	}

	inserted := &model.SurveyResponse{
		SurveyResponderID: dto.SurveyResponderID,
		SurveyCycleID:     cycleID,
		ExtID:             dto.ExtID,
		ExtMetadata:       dto.ExtMetadata,
		CreatedOn:         s.clock.Now().UTC(),
	}
	if err := s.responses.Create(ctx, inserted); err != nil {
		return nil, err
	}

	created, err := s.responses.FindMostRecent(ctx, cycleID, dto.SurveyResponderID)
	if err != nil {
		return nil, err
	}
	if created == nil || created.ID == "" {
		err := apperr.NotFound(op, "")
		if inserted.ID != "" {
			s.discard(ctx, inserted.ID, err)
		}
		return nil, err
	}
	// A concurrent submission of the same responder may be newer than ours.
	// Details and cleanup must only ever touch the row this call inserted.
	if inserted.ID != "" && created.ID != inserted.ID {
		created = inserted
	}

	questions := flattenQuestions(survey.Questions)
	details, err := normalizeAnswers(dto.SurveyResponseDetailArray, questions, created, s.clock.Now().UTC())
	if err != nil {
		s.discard(ctx, created.ID, err)
		return nil, err
	}

	if err := s.details.CreateAll(ctx, details); err != nil {
		s.discard(ctx, created.ID, err)
		return nil, err
	}

	s.logger.Info("survey response submitted",
		zap.String("surveyId", surveyID),
		zap.String("surveyCycleId", cycleID),
		zap.String("surveyResponseId", created.ID),
		zap.Int("details", len(details)),
	)
	s.publish(ctx, surveyID, created, details)
	return created, nil
}

// selectActiveCycle returns the id of the newest cycle active on today.
// No active cycle is an authorization failure, not a missing resource.
func selectActiveCycle(cycles []*model.SurveyCycle, today string) (string, error) {
	active := make([]*model.SurveyCycle, 0, len(cycles))
	for _, c := range cycles {
		if c != nil && c.IsActiveOn(today) {
			active = append(active, c)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if !active[i].CreatedOn.Equal(active[j].CreatedOn) {
			return active[i].CreatedOn.After(active[j].CreatedOn)
		}
		return active[i].ID > active[j].ID
	})

	if len(active) == 0 || active[0].ID == "" {
		return "", apperr.Authorization("SurveyResponseService.selectActiveCycle", apperr.KeyNotAuthorised)
	}
	return active[0].ID, nil
}

func (s *SurveyResponseService) authorizeResponder(ctx context.Context, responderID, surveyID, cycleID string) (*model.SurveyResponder, error) {
	responder, err := s.responders.FindForCycle(ctx, responderID, surveyID, cycleID)
	if err != nil {
		return nil, err
	}
	if responder == nil {
		return nil, apperr.Authorization("SurveyResponseService.authorizeResponder", apperr.KeyNotAllowedAccess)
	}
	return responder, nil
}

// discard removes a response whose details could not be stored, so a
// failed submission leaves no orphan row behind.
func (s *SurveyResponseService) discard(ctx context.Context, responseID string, cause error) {
	ctx = context.WithoutCancel(ctx)
	log := s.logger.With(zap.String("surveyResponseId", responseID), zap.NamedError("cause", cause))

	if err := s.details.DeleteByResponse(ctx, responseID); err != nil {
		log.Error("failed to discard details of rejected survey response", zap.Error(err))
	}
	if err := s.responses.Delete(ctx, responseID); err != nil {
		log.Error("failed to discard rejected survey response", zap.Error(err))
		return
	}
	log.Debug("discarded rejected survey response")
}

// publish updates counters and notifies watchers. Failures are logged only.
func (s *SurveyResponseService) publish(ctx context.Context, surveyID string, response *model.SurveyResponse, details []*model.SurveyResponseDetail) {
	if s.stats != nil {
		if err := s.stats.RecordResponse(ctx, response.SurveyCycleID, details); err != nil {
			s.logger.Warn("failed to record survey response stats",
				zap.String("surveyResponseId", response.ID), zap.Error(err))
		}
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSurvey(surveyID, EventResponseSubmitted, map[string]interface{}{
			"surveyResponseId":  response.ID,
			"surveyCycleId":     response.SurveyCycleID,
			"surveyResponderId": response.SurveyResponderID,
			"details":           len(details),
		})
	}
}

// Get returns a response with its detail rows
func (s *SurveyResponseService) Get(ctx context.Context, id string) (*model.SurveyResponseWithDetails, error) {
	response, err := s.responses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if response == nil {
		return nil, apperr.NotFound("SurveyResponseService.Get", "survey response %s not found", id)
	}

	details, err := s.details.ListByResponse(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.SurveyResponseWithDetails{SurveyResponse: response, Details: details}, nil
}
