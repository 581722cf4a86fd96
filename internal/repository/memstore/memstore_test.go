package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyservice/internal/apperr"
	"surveyservice/internal/model"
)

func TestFindWithActiveCycles(t *testing.T) {
	ctx := context.Background()
	stores := NewStores()

	survey := &model.Survey{
		Name: "Onboarding",
		Questions: []*model.Question{
			{ID: "q1", QuestionType: model.QuestionTypeText, FollowUpQuestions: []*model.Question{
				{ID: "q1.1", QuestionType: model.QuestionTypeScale},
			}},
		},
	}
	require.NoError(t, stores.Surveys.Create(ctx, survey))
	require.NotEmpty(t, survey.ID)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cycles := []*model.SurveyCycle{
		{ID: "old", SurveyID: survey.ID, IsActivated: true, StartDate: "2026-01-01", EndDate: "2026-12-31", CreatedOn: base},
		{ID: "new", SurveyID: survey.ID, IsActivated: true, StartDate: "2026-03-01", EndDate: "2026-03-31", CreatedOn: base.Add(time.Hour)},
		{ID: "off", SurveyID: survey.ID, IsActivated: false, StartDate: "2026-01-01", EndDate: "2026-12-31", CreatedOn: base.Add(2 * time.Hour)},
		{ID: "past", SurveyID: survey.ID, IsActivated: true, StartDate: "2025-01-01", EndDate: "2025-12-31", CreatedOn: base.Add(3 * time.Hour)},
		{ID: "other", SurveyID: "another", IsActivated: true, StartDate: "2026-01-01", EndDate: "2026-12-31", CreatedOn: base.Add(4 * time.Hour)},
	}
	for _, c := range cycles {
		require.NoError(t, stores.Cycles.Create(ctx, c))
	}

	got, err := stores.Surveys.FindWithActiveCycles(ctx, survey.ID, "2026-03-15")
	require.NoError(t, err)
	require.Len(t, got.SurveyCycles, 2)
	assert.Equal(t, "new", got.SurveyCycles[0].ID)
	assert.Equal(t, "old", got.SurveyCycles[1].ID)
	require.Len(t, got.Questions, 1)
	assert.Equal(t, "q1.1", got.Questions[0].FollowUpQuestions[0].ID)

	got, err = stores.Surveys.FindWithActiveCycles(ctx, survey.ID, "2026-12-31")
	require.NoError(t, err)
	require.Len(t, got.SurveyCycles, 1)
	assert.Equal(t, "old", got.SurveyCycles[0].ID)

	_, err = stores.Surveys.FindWithActiveCycles(ctx, "missing", "2026-03-15")
	assert.Equal(t, apperr.ENotFound, apperr.ErrorCode(err))
}

func TestSurveyIsolatedFromCaller(t *testing.T) {
	ctx := context.Background()
	stores := NewStores()

	survey := &model.Survey{ID: "s1", Questions: []*model.Question{{ID: "q1", QuestionType: model.QuestionTypeText}}}
	require.NoError(t, stores.Surveys.Create(ctx, survey))
	survey.Questions[0].ID = "mutated"

	got, err := stores.Surveys.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "q1", got.Questions[0].ID)

	err = stores.Surveys.Create(ctx, &model.Survey{ID: "s1"})
	assert.Equal(t, apperr.EConflict, apperr.ErrorCode(err))
}

func TestResponderFindForCycle(t *testing.T) {
	ctx := context.Background()
	stores := NewStores()

	responder := &model.SurveyResponder{ID: "r1", SurveyID: "s1", SurveyCycleID: "c1", FullName: "Ada Park", Email: "ada@example.com"}
	require.NoError(t, stores.Responders.Create(ctx, responder))

	got, err := stores.Responders.FindForCycle(ctx, "r1", "s1", "c1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ada Park", got.FullName)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Empty(t, got.SurveyCycleID, "lookup is projected to name and email")

	for _, tc := range [][3]string{{"r1", "s2", "c1"}, {"r1", "s1", "c2"}, {"r2", "s1", "c1"}} {
		got, err := stores.Responders.FindForCycle(ctx, tc[0], tc[1], tc[2])
		require.NoError(t, err)
		assert.Nil(t, got, "%v", tc)
	}

	err = stores.Responders.Create(ctx, &model.SurveyResponder{SurveyID: "s1", SurveyCycleID: "c1", Email: "ada@example.com"})
	assert.Equal(t, apperr.EConflict, apperr.ErrorCode(err))
}

func TestResponseFindMostRecent(t *testing.T) {
	ctx := context.Background()
	stores := NewStores()
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	first := &model.SurveyResponse{SurveyCycleID: "c1", SurveyResponderID: "r1", ExtID: "first", CreatedOn: at}
	require.NoError(t, stores.Responses.Create(ctx, first))
	assert.NotEmpty(t, first.ID)

	// Same timestamp: ids are time ordered, so the later insert wins.
	second := &model.SurveyResponse{SurveyCycleID: "c1", SurveyResponderID: "r1", ExtID: "second", CreatedOn: at}
	require.NoError(t, stores.Responses.Create(ctx, second))

	got, err := stores.Responses.FindMostRecent(ctx, "c1", "r1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "second", got.ExtID)
	assert.Equal(t, second.ID, got.ID)

	require.NoError(t, stores.Responses.Delete(ctx, got.ID))
	gone, err := stores.Responses.GetByID(ctx, got.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	none, err := stores.Responses.FindMostRecent(ctx, "c1", "nobody")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestResponseDetails(t *testing.T) {
	ctx := context.Background()
	stores := NewStores()

	opt := "a"
	details := []*model.SurveyResponseDetail{
		{SurveyResponseID: "resp1", QuestionID: "q1", OptionID: &opt, ResponseType: model.QuestionTypeMultiSelection},
		{SurveyResponseID: "resp1", QuestionID: "q2", ResponseType: model.QuestionTypeText},
		{SurveyResponseID: "resp2", QuestionID: "q1", ResponseType: model.QuestionTypeText},
	}
	require.NoError(t, stores.ResponseDetails.CreateAll(ctx, details))
	require.NoError(t, stores.ResponseDetails.CreateAll(ctx, nil))

	got, err := stores.ResponseDetails.ListByResponse(ctx, "resp1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "q1", got[0].QuestionID)
	assert.Equal(t, "q2", got[1].QuestionID)
	assert.NotEmpty(t, got[0].ID)

	require.NoError(t, stores.ResponseDetails.DeleteByResponse(ctx, "resp1"))
	got, err = stores.ResponseDetails.ListByResponse(ctx, "resp1")
	require.NoError(t, err)
	assert.Empty(t, got)
	other, err := stores.ResponseDetails.ListByResponse(ctx, "resp2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestCycleTieBreaksOnID(t *testing.T) {
	ctx := context.Background()
	stores := NewStores()
	require.NoError(t, stores.Surveys.Create(ctx, &model.Survey{ID: "s1", Name: "tie"}))

	at := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"c-b", "c-c", "c-a"} {
		require.NoError(t, stores.Cycles.Create(ctx, &model.SurveyCycle{
			ID: id, SurveyID: "s1", IsActivated: true, StartDate: "2026-10-01", EndDate: "2026-10-31", CreatedOn: at,
		}))
	}

	got, err := stores.Surveys.FindWithActiveCycles(ctx, "s1", "2026-10-14")
	require.NoError(t, err)
	require.Len(t, got.SurveyCycles, 3)
	assert.Equal(t, []string{"c-c", "c-b", "c-a"}, []string{got.SurveyCycles[0].ID, got.SurveyCycles[1].ID, got.SurveyCycles[2].ID})

	listed, err := stores.Cycles.ListBySurvey(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "c-c", listed[0].ID)
}
