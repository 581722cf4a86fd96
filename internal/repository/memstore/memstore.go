// Package memstore is an in-memory backend for the repository interfaces.
// It serves tests and the "memory" store setting.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"surveyservice/internal/apperr"
	"surveyservice/internal/model"
	"surveyservice/internal/repository"
)

type db struct {
	mu sync.RWMutex

	surveys    map[string]*model.Survey
	cycles     map[string]model.SurveyCycle
	responders map[string]*model.SurveyResponder
	responses  map[string]model.SurveyResponse
	details    []model.SurveyResponseDetail
}

// NewStores returns repositories sharing one in-memory database
func NewStores() *repository.Stores {
	d := &db{
		surveys:    make(map[string]*model.Survey),
		cycles:     make(map[string]model.SurveyCycle),
		responders: make(map[string]*model.SurveyResponder),
		responses:  make(map[string]model.SurveyResponse),
	}
	return &repository.Stores{
		Surveys:         &surveyRepo{d},
		Cycles:          &cycleRepo{d},
		Responders:      &responderRepo{d},
		Responses:       &responseRepo{d},
		ResponseDetails: &detailRepo{d},
	}
}

// newID returns a time-ordered id, so later ids sort higher like the
// ObjectIDs of the mongo backend.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now().UTC()
	}
}

// newestFirst orders by createdOn descending, then id descending
func newestFirst[T any](vals []T, key func(T) (time.Time, string)) {
	sort.Slice(vals, func(i, j int) bool {
		ci, idi := key(vals[i])
		cj, idj := key(vals[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return idi > idj
	})
}

func cycleKey(c model.SurveyCycle) (time.Time, string) { return c.CreatedOn, c.ID }
func responseKey(r model.SurveyResponse) (time.Time, string) { return r.CreatedOn, r.ID }

func cloneSurvey(s *model.Survey) *model.Survey {
	c := *s
	c.Questions = cloneQuestions(s.Questions)
	c.SurveyCycles = nil
	return &c
}

func cloneQuestions(qs []*model.Question) []*model.Question {
	if qs == nil {
		return nil
	}
	out := make([]*model.Question, len(qs))
	for i, q := range qs {
		if q == nil {
			continue
		}
		c := *q
		c.Options = append([]model.Option(nil), q.Options...)
		c.FollowUpQuestions = cloneQuestions(q.FollowUpQuestions)
		out[i] = &c
	}
	return out
}

type surveyRepo struct{ d *db }

func (r *surveyRepo) Create(_ context.Context, survey *model.Survey) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if survey.ID == "" {
		survey.ID = newID()
	}
	if _, ok := r.d.surveys[survey.ID]; ok {
		return &apperr.Error{Code: apperr.EConflict, Op: "memstore.CreateSurvey", Msg: "survey already exists"}
	}
	stamp(&survey.CreatedOn)
	survey.ModifiedOn = survey.CreatedOn
	r.d.surveys[survey.ID] = cloneSurvey(survey)
	return nil
}

func (r *surveyRepo) GetByID(_ context.Context, id string) (*model.Survey, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	s, ok := r.d.surveys[id]
	if !ok {
		return nil, nil
	}
	return cloneSurvey(s), nil
}

func (r *surveyRepo) FindWithActiveCycles(_ context.Context, id, today string) (*model.Survey, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	s, ok := r.d.surveys[id]
	if !ok {
		return nil, apperr.NotFound("memstore.FindWithActiveCycles", "survey %s not found", id)
	}
	survey := cloneSurvey(s)

	var active []model.SurveyCycle
	for _, c := range r.d.cycles {
		if c.SurveyID == id && c.IsActiveOn(today) {
			active = append(active, c)
		}
	}
	newestFirst(active, cycleKey)
	for i := range active {
		survey.SurveyCycles = append(survey.SurveyCycles, &active[i])
	}
	return survey, nil
}

type cycleRepo struct{ d *db }

func (r *cycleRepo) Create(_ context.Context, cycle *model.SurveyCycle) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if cycle.ID == "" {
		cycle.ID = newID()
	}
	stamp(&cycle.CreatedOn)
	r.d.cycles[cycle.ID] = *cycle
	return nil
}

func (r *cycleRepo) GetByID(_ context.Context, id string) (*model.SurveyCycle, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	c, ok := r.d.cycles[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *cycleRepo) ListBySurvey(_ context.Context, surveyID string) ([]*model.SurveyCycle, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	var matched []model.SurveyCycle
	for _, c := range r.d.cycles {
		if c.SurveyID == surveyID {
			matched = append(matched, c)
		}
	}
	newestFirst(matched, cycleKey)

	cycles := make([]*model.SurveyCycle, 0, len(matched))
	for i := range matched {
		cycles = append(cycles, &matched[i])
	}
	return cycles, nil
}

type responderRepo struct{ d *db }

func (r *responderRepo) Create(_ context.Context, responder *model.SurveyResponder) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	for _, existing := range r.d.responders {
		if existing.SurveyCycleID == responder.SurveyCycleID && existing.Email == responder.Email {
			return &apperr.Error{Code: apperr.EConflict, Op: "memstore.CreateResponder", Msg: "responder already registered for cycle"}
		}
	}
	if responder.ID == "" {
		responder.ID = newID()
	}
	stamp(&responder.CreatedOn)
	c := *responder
	r.d.responders[responder.ID] = &c
	return nil
}

func (r *responderRepo) FindForCycle(_ context.Context, id, surveyID, surveyCycleID string) (*model.SurveyResponder, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	rs, ok := r.d.responders[id]
	if !ok || rs.SurveyID != surveyID || rs.SurveyCycleID != surveyCycleID {
		return nil, nil
	}
	return &model.SurveyResponder{ID: rs.ID, FullName: rs.FullName, Email: rs.Email}, nil
}

type responseRepo struct{ d *db }

func (r *responseRepo) Create(_ context.Context, response *model.SurveyResponse) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	stamp(&response.CreatedOn)
	c := *response
	if c.ID == "" {
		c.ID = newID()
	}
	r.d.responses[c.ID] = c
	response.ID = c.ID
	return nil
}

func (r *responseRepo) FindMostRecent(_ context.Context, surveyCycleID, surveyResponderID string) (*model.SurveyResponse, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	var matched []model.SurveyResponse
	for _, resp := range r.d.responses {
		if resp.SurveyCycleID == surveyCycleID && resp.SurveyResponderID == surveyResponderID {
			matched = append(matched, resp)
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}
	newestFirst(matched, responseKey)
	return &matched[0], nil
}

func (r *responseRepo) GetByID(_ context.Context, id string) (*model.SurveyResponse, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	resp, ok := r.d.responses[id]
	if !ok {
		return nil, nil
	}
	return &resp, nil
}

func (r *responseRepo) Delete(_ context.Context, id string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	delete(r.d.responses, id)
	return nil
}

type detailRepo struct{ d *db }

func (r *detailRepo) CreateAll(_ context.Context, details []*model.SurveyResponseDetail) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	for _, d := range details {
		if d.ID == "" {
			d.ID = newID()
		}
		stamp(&d.CreatedOn)
		r.d.details = append(r.d.details, *d)
	}
	return nil
}

func (r *detailRepo) ListByResponse(_ context.Context, surveyResponseID string) ([]*model.SurveyResponseDetail, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	details := []*model.SurveyResponseDetail{}
	for _, d := range r.d.details {
		if d.SurveyResponseID == surveyResponseID {
			d := d
			details = append(details, &d)
		}
	}
	return details, nil
}

func (r *detailRepo) DeleteByResponse(_ context.Context, surveyResponseID string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	kept := r.d.details[:0]
	for _, d := range r.d.details {
		if d.SurveyResponseID != surveyResponseID {
			kept = append(kept, d)
		}
	}
	r.d.details = kept
	return nil
}
