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

	"surveyservice/internal/model"
)

// CycleRepo handles persistence of survey cycles
type CycleRepo interface {
	Create(ctx context.Context, cycle *model.SurveyCycle) error
	GetByID(ctx context.Context, id string) (*model.SurveyCycle, error)
	ListBySurvey(ctx context.Context, surveyID string) ([]*model.SurveyCycle, error)
}

type cycleRepo struct {
	collection *mongo.Collection
}

// NewCycleRepo creates a new survey cycle repository
func NewCycleRepo(db *mongo.Database) CycleRepo {
	return &cycleRepo{
		collection: db.Collection(CyclesCollection),
	}
}

func (r *cycleRepo) Create(ctx context.Context, cycle *model.SurveyCycle) error {
	if cycle.ID == "" {
		cycle.ID = primitive.NewObjectID().Hex()
	}
	if cycle.CreatedOn.IsZero() {
		cycle.CreatedOn = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, cycle); err != nil {
		return fmt.Errorf("insert survey cycle: %w", err)
	}
	return nil
}

func (r *cycleRepo) GetByID(ctx context.Context, id string) (*model.SurveyCycle, error) {
	var cycle model.SurveyCycle
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&cycle)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find survey cycle %s: %w", id, err)
	}
	return &cycle, nil
}

func (r *cycleRepo) ListBySurvey(ctx context.Context, surveyID string) ([]*model.SurveyCycle, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdOn", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"surveyId": surveyID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list cycles of survey %s: %w", surveyID, err)
	}
	defer cursor.Close(ctx)

	cycles := []*model.SurveyCycle{}
	if err := cursor.All(ctx, &cycles); err != nil {
		return nil, err
	}
	return cycles, nil
}
