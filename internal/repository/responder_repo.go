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

// ResponderRepo handles persistence of survey responders
type ResponderRepo interface {
	Create(ctx context.Context, responder *model.SurveyResponder) error
	// FindForCycle returns the responder registered with exactly this id,
	// survey and cycle, projected to its name and email. nil when absent.
	FindForCycle(ctx context.Context, id, surveyID, surveyCycleID string) (*model.SurveyResponder, error)
}

type responderRepo struct {
	collection *mongo.Collection
}

// NewResponderRepo creates a new survey responder repository
func NewResponderRepo(db *mongo.Database) ResponderRepo {
	return &responderRepo{
		collection: db.Collection(RespondersCollection),
	}
}

func (r *responderRepo) Create(ctx context.Context, responder *model.SurveyResponder) error {
	if responder.ID == "" {
		responder.ID = primitive.NewObjectID().Hex()
	}
	if responder.CreatedOn.IsZero() {
		responder.CreatedOn = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, responder); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &apperr.Error{Code: apperr.EConflict, Op: "responderRepo.Create", Msg: "responder already registered for cycle", Err: err}
		}
		return fmt.Errorf("insert survey responder: %w", err)
	}
	return nil
}

func (r *responderRepo) FindForCycle(ctx context.Context, id, surveyID, surveyCycleID string) (*model.SurveyResponder, error) {
	filter := bson.M{
		"_id":           id,
		"surveyId":      surveyID,
		"surveyCycleId": surveyCycleID,
	}
	opts := options.FindOne().SetProjection(bson.M{"fullName": 1, "email": 1})

	var responder model.SurveyResponder
	err := r.collection.FindOne(ctx, filter, opts).Decode(&responder)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find survey responder %s: %w", id, err)
	}
	return &responder, nil
}
