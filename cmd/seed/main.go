package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/benbjohnson/clock"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"surveyservice/internal/config"
	"surveyservice/internal/logging"
	"surveyservice/internal/model"
	"surveyservice/internal/repository"
	"surveyservice/internal/service"
)

// seeded is what the seed run created
type seeded struct {
	Survey    *model.Survey
	Cycle     *model.SurveyCycle
	Responder *model.SurveyResponder
	Token     string
}

func main() {
	cfg, err := config.Load(config.NewViper())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel, "console")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDB)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		logger.Fatal("failed to create indexes", zap.Error(err))
	}

	loc, _ := cfg.Location()
	auth := service.NewAuthService(cfg.AdminUsername, cfg.AdminPassword, cfg.JWTSecret, clock.New())
	out, err := seed(ctx, repository.NewMongoStores(db), clock.New(), loc, auth)
	if err != nil {
		logger.Fatal("failed to seed", zap.Error(err))
	}

	logger.Info("seeded survey",
		zap.String("surveyId", out.Survey.ID),
		zap.String("surveyCycleId", out.Cycle.ID),
		zap.String("surveyResponderId", out.Responder.ID),
	)
	fmt.Println(out.Token)
}

func score(v float64) *float64 { return &v }

// seed creates a demo survey with a cycle covering the next 30 days and
// one responder registered to it
func seed(ctx context.Context, stores *repository.Stores, clk clock.Clock, loc *time.Location, auth *service.AuthService) (*seeded, error) {
	survey := &model.Survey{
		Name: "Smartphone Launch Feedback",
		Questions: []*model.Question{
			{
				Name:         "How satisfied are you with this smartphone overall?",
				QuestionType: model.QuestionTypeScale,
				Options: []model.Option{
					{Name: "1", Score: score(1)},
					{Name: "2", Score: score(2)},
					{Name: "3", Score: score(3)},
					{Name: "4", Score: score(4)},
					{Name: "5", Score: score(5)},
				},
				FollowUpQuestions: []*model.Question{
					{
						Name:         "What would make you more satisfied?",
						QuestionType: model.QuestionTypeText,
					},
				},
			},
			{
				Name:         "Which model did you purchase?",
				QuestionType: model.QuestionTypeDropdown,
				Options: []model.Option{
					{Name: "Standard"},
					{Name: "Pro"},
					{Name: "Pro Max"},
				},
			},
			{
				Name:         "Which features do you use daily?",
				QuestionType: model.QuestionTypeMultiSelection,
				Options: []model.Option{
					{Name: "Camera"},
					{Name: "Battery saver"},
					{Name: "Face unlock"},
					{Name: "Wireless charging"},
				},
			},
			{
				Name:         "Would you recommend it to a friend?",
				QuestionType: model.QuestionTypeSingleSelection,
				Options: []model.Option{
					{Name: "Yes", Score: score(1)},
					{Name: "No", Score: score(0)},
				},
			},
		},
	}
	if err := service.NewSurveyService(stores.Surveys, clk).Create(ctx, survey); err != nil {
		return nil, fmt.Errorf("create survey: %w", err)
	}

	today := clk.Now().In(loc)
	cycleSvc := service.NewCycleService(stores.Surveys, stores.Cycles, clk)
	cycleSvc.SetLocation(loc)
	cycle := &model.SurveyCycle{
		SurveyID:    survey.ID,
		IsActivated: true,
		StartDate:   today.Format(model.DateLayout),
		EndDate:     today.AddDate(0, 0, 30).Format(model.DateLayout),
	}
	if err := cycleSvc.Create(ctx, cycle); err != nil {
		return nil, fmt.Errorf("create cycle: %w", err)
	}

	responder := &model.SurveyResponder{
		SurveyID:      survey.ID,
		SurveyCycleID: cycle.ID,
		FullName:      "Demo Responder",
		Email:         "demo.responder@example.com",
	}
	if err := service.NewResponderService(stores.Cycles, stores.Responders, clk).Register(ctx, responder); err != nil {
		return nil, fmt.Errorf("register responder: %w", err)
	}

	token, err := auth.GenerateResponderToken(survey.ID, responder.ID)
	if err != nil {
		return nil, err
	}
	return &seeded{Survey: survey, Cycle: cycle, Responder: responder, Token: token}, nil
}
