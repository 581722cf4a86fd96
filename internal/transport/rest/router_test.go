package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyservice/internal/cache"
	"surveyservice/internal/metrics"
	"surveyservice/internal/model"
	"surveyservice/internal/repository/memstore"
	"surveyservice/internal/service"
	"surveyservice/internal/transport/rest/handler"
	"surveyservice/internal/transport/ws"
)

type testAPI struct {
	t       *testing.T
	handler http.Handler
	metrics *metrics.Metrics
	hub     *ws.Hub
	admin   string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	clk := clock.NewMock()
	clk.Set(time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	stats := cache.NewStatsCache(rdb)

	stores := memstore.NewStores()
	hub := ws.NewHub(nil)
	t.Cleanup(hub.Close)

	auth := service.NewAuthService("admin", "secret-pass", "jwt-secret", clk)
	responses := service.NewSurveyResponseService(stores, clk, nil)
	responses.SetStatsCache(stats)
	responses.SetBroadcaster(hub)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	api := &testAPI{
		t: t,
		handler: NewRouter(&Container{
			AuthService:      auth,
			SurveyService:    service.NewSurveyService(stores.Surveys, clk),
			CycleService:     service.NewCycleService(stores.Surveys, stores.Cycles, clk),
			ResponderService: service.NewResponderService(stores.Cycles, stores.Responders, clk),
			ResponseService:  responses,
			Stats:            stats,
			WSHub:            hub,
			Metrics:          m,
			Gatherer:         reg,
		}),
		metrics: m,
		hub:     hub,
	}

	var login model.LoginResponse
	rec := api.do(http.MethodPost, "/v1/auth/login", "", model.LoginRequest{Username: "admin", Password: "secret-pass"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	api.admin = login.Token
	return api
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf).WithContext(context.Background())
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type fixture struct {
	survey    *model.Survey
	cycle     *model.SurveyCycle
	responder *handler.RegisterResponderResponse
}

func (a *testAPI) setup() *fixture {
	a.t.Helper()

	rec := a.do(http.MethodPost, "/v1/surveys", a.admin, handler.CreateSurveyRequest{
		Name: "Onboarding",
		Questions: []*model.Question{
			{
				ID:           "q-mood",
				Name:         "Mood",
				QuestionType: model.QuestionTypeScale,
				Options:      []model.Option{{ID: "o-1", Name: "1"}, {ID: "o-5", Name: "5"}},
				FollowUpQuestions: []*model.Question{
					{ID: "q-why", Name: "Why?", QuestionType: model.QuestionTypeText},
				},
			},
			{
				ID:           "q-tools",
				Name:         "Tools",
				QuestionType: model.QuestionTypeMultiSelection,
				Options:      []model.Option{{ID: "o-git", Name: "git"}, {ID: "o-ci", Name: "CI"}},
			},
		},
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	survey := decode[*model.Survey](a.t, rec)

	rec = a.do(http.MethodPost, "/v1/surveys/"+survey.ID+"/cycles", a.admin, handler.CreateCycleRequest{
		IsActivated: true, StartDate: "2026-10-01", EndDate: "2026-10-31",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	cycle := decode[*model.SurveyCycle](a.t, rec)

	rec = a.do(http.MethodPost, "/v1/surveys/"+survey.ID+"/responders", a.admin, handler.RegisterResponderRequest{
		SurveyCycleID: cycle.ID, FullName: "Ada Lovelace", Email: "ada@example.com",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	responder := decode[*handler.RegisterResponderResponse](a.t, rec)

	return &fixture{survey: survey, cycle: cycle, responder: responder}
}

func submission(responderID string) model.SurveyResponseDto {
	return model.SurveyResponseDto{
		SurveyResponderID: responderID,
		SurveyResponseDetailArray: []model.SurveyResponseDetailDto{
			{QuestionID: "q-mood", Answer: &model.Answer{OptionID: "o-5"}},
			{QuestionID: "q-why", Answer: &model.Answer{Text: "good team"}},
			{QuestionID: "q-tools", Answer: &model.Answer{OptionIDs: []string{"o-git", "o-ci"}}},
		},
	}
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodPost, "/v1/auth/login", "", model.LoginRequest{Username: "admin", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decode[handler.ErrorResponse](t, rec).Code)
}

func TestAdminRoutesRequireAdminToken(t *testing.T) {
	api := newTestAPI(t)
	fx := api.setup()

	rec := api.do(http.MethodGet, "/v1/surveys/"+fx.survey.ID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodGet, "/v1/surveys/"+fx.survey.ID, fx.responder.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(http.MethodGet, "/v1/surveys/"+fx.survey.ID, api.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Onboarding", decode[*model.Survey](t, rec).Name)
}

func TestSubmitAndReadBack(t *testing.T) {
	api := newTestAPI(t)
	fx := api.setup()

	watcher := &ws.Connection{SurveyID: fx.survey.ID, Send: make(chan []byte, 4)}
	api.hub.Register(watcher)

	// The responder id is taken from the token when omitted.
	rec := api.do(http.MethodPost, "/v1/surveys/"+fx.survey.ID+"/responses", fx.responder.Token, submission(""))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[*model.SurveyResponse](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, fx.cycle.ID, created.SurveyCycleID)
	assert.Equal(t, fx.responder.Responder.ID, created.SurveyResponderID)

	rec = api.do(http.MethodGet, "/v1/responses/"+created.ID, api.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[*model.SurveyResponseWithDetails](t, rec)
	assert.Len(t, got.Details, 4)

	rec = api.do(http.MethodGet, "/v1/cycles/"+fx.cycle.ID+"/stats", api.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[*model.CycleStats](t, rec)
	assert.Equal(t, int64(1), stats.TotalResponses)
	assert.Equal(t, int64(1), stats.OptionSelection["q-tools:o-ci"])
	assert.Equal(t, int64(1), stats.OptionSelection["q-mood:o-5"])

	select {
	case data := <-watcher.Send:
		assert.Contains(t, string(data), service.EventResponseSubmitted)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not receive the submission event")
	}

	assert.Equal(t, float64(1), testutil.ToFloat64(api.metrics.Submissions.WithLabelValues("created")))
}

func TestSubmitErrors(t *testing.T) {
	api := newTestAPI(t)
	fx := api.setup()
	path := "/v1/surveys/" + fx.survey.ID + "/responses"

	t.Run("missing answer array", func(t *testing.T) {
		rec := api.do(http.MethodPost, path, fx.responder.Token, map[string]string{"surveyResponderId": fx.responder.Responder.ID})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "SurveyResponseDetailNotFound", decode[handler.ErrorResponse](t, rec).Message)
	})

	t.Run("token of another responder", func(t *testing.T) {
		rec := api.do(http.MethodPost, path, fx.responder.Token, submission("someone-else"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "NotAllowedAccess", decode[handler.ErrorResponse](t, rec).Message)
	})

	t.Run("responder token for another survey", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/v1/surveys/other/responses", fx.responder.Token, submission(""))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("admin submitting for unknown responder", func(t *testing.T) {
		rec := api.do(http.MethodPost, path, api.admin, submission("ghost"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "NotAllowedAccess", decode[handler.ErrorResponse](t, rec).Message)
	})

	t.Run("type mismatch", func(t *testing.T) {
		dto := submission("")
		dto.SurveyResponseDetailArray = []model.SurveyResponseDetailDto{
			{QuestionID: "q-tools", Answer: &model.Answer{Text: "free text"}},
		}
		rec := api.do(http.MethodPost, path, fx.responder.Token, dto)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "NotAuthorised", decode[handler.ErrorResponse](t, rec).Message)
	})

	t.Run("unknown survey", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/v1/surveys/nope/responses", api.admin, submission(fx.responder.Responder.ID))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	assert.Equal(t, float64(2), testutil.ToFloat64(api.metrics.Submissions.WithLabelValues("unauthorized")))
	assert.Equal(t, float64(2), testutil.ToFloat64(api.metrics.Submissions.WithLabelValues("invalid")))
}

func TestCycleEndpoints(t *testing.T) {
	api := newTestAPI(t)
	fx := api.setup()
	base := "/v1/surveys/" + fx.survey.ID + "/cycles"

	rec := api.do(http.MethodPost, base, api.admin, handler.CreateCycleRequest{StartDate: "2026-12-01", EndDate: "2026-11-01"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "InvalidCycleDates", decode[handler.ErrorResponse](t, rec).Message)

	rec = api.do(http.MethodPost, base, api.admin, handler.CreateCycleRequest{StartDate: "2026-11-01", EndDate: "2026-11-30"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(http.MethodGet, base, api.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[map[string][]*model.SurveyCycle](t, rec)
	assert.Len(t, list["cycles"], 2)

	rec = api.do(http.MethodGet, base+"/active", api.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fx.cycle.ID, decode[*model.SurveyCycle](t, rec).ID)

	rec = api.do(http.MethodPost, "/v1/surveys/missing/cycles", api.admin, handler.CreateCycleRequest{StartDate: "2026-11-01", EndDate: "2026-11-30"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisterResponderErrors(t *testing.T) {
	api := newTestAPI(t)
	fx := api.setup()
	path := "/v1/surveys/" + fx.survey.ID + "/responders"

	rec := api.do(http.MethodPost, path, api.admin, handler.RegisterResponderRequest{SurveyCycleID: fx.cycle.ID, Email: "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, path, api.admin, handler.RegisterResponderRequest{SurveyCycleID: fx.cycle.ID, FullName: "Ada", Email: "ADA@example.com"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `survey_http_requests_total{method="GET",route="/health",status="200"} 1`)
}
