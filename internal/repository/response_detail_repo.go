package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"surveyservice/internal/model"
)

// ResponseDetailRepo handles persistence of normalized answer rows
type ResponseDetailRepo interface {
	CreateAll(ctx context.Context, details []*model.SurveyResponseDetail) error
	ListByResponse(ctx context.Context, surveyResponseID string) ([]*model.SurveyResponseDetail, error)
	DeleteByResponse(ctx context.Context, surveyResponseID string) error
}

type responseDetailRepo struct {
	collection *mongo.Collection
}

// NewResponseDetailRepo creates a new survey response detail repository
func NewResponseDetailRepo(db *mongo.Database) ResponseDetailRepo {
	return &responseDetailRepo{
		collection: db.Collection(ResponseDetailsCollection),
	}
}

func (r *responseDetailRepo) CreateAll(ctx context.Context, details []*model.SurveyResponseDetail) error {
	if len(details) == 0 {
		return nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, len(details))
	for i, d := range details {
		if d.ID == "" {
			d.ID = primitive.NewObjectID().Hex()
		}
		if d.CreatedOn.IsZero() {
			d.CreatedOn = now
		}
		docs[i] = d
	}

	// Ordered so a failure leaves a prefix of the batch, never a gap.
	if _, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return fmt.Errorf("insert %d survey response details: %w", len(docs), err)
	}
	return nil
}

func (r *responseDetailRepo) ListByResponse(ctx context.Context, surveyResponseID string) ([]*model.SurveyResponseDetail, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"surveyResponseId": surveyResponseID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list details of response %s: %w", surveyResponseID, err)
	}
	defer cursor.Close(ctx)

	details := []*model.SurveyResponseDetail{}
	if err := cursor.All(ctx, &details); err != nil {
		return nil, err
	}
	return details, nil
}

func (r *responseDetailRepo) DeleteByResponse(ctx context.Context, surveyResponseID string) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"surveyResponseId": surveyResponseID}); err != nil {
		return fmt.Errorf("delete details of response %s: %w", surveyResponseID, err)
	}
	return nil
}
