package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"surveyservice/internal/apperr"
	"surveyservice/internal/model"
)

// SurveyRepo handles persistence of surveys and their question trees
type SurveyRepo interface {
	Create(ctx context.Context, survey *model.Survey) error
	GetByID(ctx context.Context, id string) (*model.Survey, error)
	// FindWithActiveCycles loads the survey with its full question tree and
	// the cycles active on today (YYYY-MM-DD), newest first. It fails with
	// a not found error when the survey does not exist.
	FindWithActiveCycles(ctx context.Context, id, today string) (*model.Survey, error)
}

type surveyRepo struct {
	surveys *mongo.Collection
	cycles  *mongo.Collection
}

// NewSurveyRepo creates a new survey repository
func NewSurveyRepo(db *mongo.Database) SurveyRepo {
	return &surveyRepo{
		surveys: db.Collection(SurveysCollection),
		cycles:  db.Collection(CyclesCollection),
	}
}

func (r *surveyRepo) Create(ctx context.Context, survey *model.Survey) error {
	if survey.ID == "" {
		survey.ID = primitive.NewObjectID().Hex()
	}
	if survey.CreatedOn.IsZero() {
		survey.CreatedOn = time.Now().UTC()
	}
	survey.ModifiedOn = survey.CreatedOn

	if _, err := r.surveys.InsertOne(ctx, survey); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &apperr.Error{Code: apperr.EConflict, Op: "surveyRepo.Create", Msg: "survey already exists", Err: err}
		}
		return fmt.Errorf("insert survey: %w", err)
	}
	return nil
}

func (r *surveyRepo) GetByID(ctx context.Context, id string) (*model.Survey, error) {
	var survey model.Survey
	err := r.surveys.FindOne(ctx, bson.M{"_id": id}).Decode(&survey)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find survey %s: %w", id, err)
	}
	return &survey, nil
}

func (r *surveyRepo) FindWithActiveCycles(ctx context.Context, id, today string) (*model.Survey, error) {
	survey, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if survey == nil {
		return nil, apperr.NotFound("surveyRepo.FindWithActiveCycles", "survey %s not found", id)
	}

	filter := bson.M{
		"surveyId":    id,
		"isActivated": true,
		"endDate":     bson.M{"$gte": today},
		"startDate":   bson.M{"$lte": today},
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdOn", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.cycles.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find active cycles of survey %s: %w", id, err)
	}
	defer cursor.Close(ctx)

	var cycles []*model.SurveyCycle
	if err := cursor.All(ctx, &cycles); err != nil {
		return nil, fmt.Errorf("decode active cycles of survey %s: %w", id, err)
	}
	survey.SurveyCycles = cycles
	return survey, nil
}
