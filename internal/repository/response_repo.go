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

// ResponseRepo handles persistence of survey responses
type ResponseRepo interface {
	// Create stores the response and sets the generated id on response.
	// Callers that did not get an id fall back to FindMostRecent.
	Create(ctx context.Context, response *model.SurveyResponse) error
	// FindMostRecent returns the newest response of the responder for the
	// cycle. nil when there is none.
	FindMostRecent(ctx context.Context, surveyCycleID, surveyResponderID string) (*model.SurveyResponse, error)
	GetByID(ctx context.Context, id string) (*model.SurveyResponse, error)
	Delete(ctx context.Context, id string) error
}

type responseRepo struct {
	collection *mongo.Collection
}

// NewResponseRepo creates a new survey response repository
func NewResponseRepo(db *mongo.Database) ResponseRepo {
	return &responseRepo{
		collection: db.Collection(ResponsesCollection),
	}
}

func (r *responseRepo) Create(ctx context.Context, response *model.SurveyResponse) error {
	if response.CreatedOn.IsZero() {
		response.CreatedOn = time.Now().UTC()
	}
	doc := *response
	if doc.ID == "" {
		doc.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.collection.InsertOne(ctx, &doc); err != nil {
		return fmt.Errorf("insert survey response: %w", err)
	}
	response.ID = doc.ID
	return nil
}

func (r *responseRepo) FindMostRecent(ctx context.Context, surveyCycleID, surveyResponderID string) (*model.SurveyResponse, error) {
	filter := bson.M{
		"surveyCycleId":     surveyCycleID,
		"surveyResponderId": surveyResponderID,
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdOn", Value: -1}, {Key: "_id", Value: -1}})

	var response model.SurveyResponse
	err := r.collection.FindOne(ctx, filter, opts).Decode(&response)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find latest survey response: %w", err)
	}
	return &response, nil
}

func (r *responseRepo) GetByID(ctx context.Context, id string) (*model.SurveyResponse, error) {
	var response model.SurveyResponse
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&response)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find survey response %s: %w", id, err)
	}
	return &response, nil
}

func (r *responseRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete survey response %s: %w", id, err)
	}
	return nil
}
