package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	SurveysCollection         = "surveys"
	CyclesCollection          = "survey_cycles"
	RespondersCollection      = "survey_responders"
	ResponsesCollection       = "survey_responses"
	ResponseDetailsCollection = "survey_response_details"
)

// Stores bundles one implementation of every repository. The backend is
// chosen when the stores are built.
type Stores struct {
	Surveys         SurveyRepo
	Cycles          CycleRepo
	Responders      ResponderRepo
	Responses       ResponseRepo
	ResponseDetails ResponseDetailRepo
}

// NewMongoStores builds MongoDB backed repositories on db
func NewMongoStores(db *mongo.Database) *Stores {
	return &Stores{
		Surveys:         NewSurveyRepo(db),
		Cycles:          NewCycleRepo(db),
		Responders:      NewResponderRepo(db),
		Responses:       NewResponseRepo(db),
		ResponseDetails: NewResponseDetailRepo(db),
	}
}

// EnsureIndexes creates the indexes the lookups rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		CyclesCollection: {
			{Keys: bson.D{{Key: "surveyId", Value: 1}, {Key: "isActivated", Value: 1}, {Key: "createdOn", Value: -1}}},
		},
		RespondersCollection: {
			{Keys: bson.D{{Key: "surveyId", Value: 1}, {Key: "surveyCycleId", Value: 1}}},
			{
				Keys:    bson.D{{Key: "surveyCycleId", Value: 1}, {Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		ResponsesCollection: {
			{Keys: bson.D{{Key: "surveyCycleId", Value: 1}, {Key: "surveyResponderId", Value: 1}, {Key: "createdOn", Value: -1}}},
		},
		ResponseDetailsCollection: {
			{Keys: bson.D{{Key: "surveyResponseId", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
