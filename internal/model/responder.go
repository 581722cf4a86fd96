package model

import "time"

// SurveyResponder is a participant registered for one cycle of a survey
type SurveyResponder struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	SurveyID      string    `json:"surveyId,omitempty" bson:"surveyId"`
	SurveyCycleID string    `json:"surveyCycleId,omitempty" bson:"surveyCycleId"`
	FullName      string    `json:"fullName" bson:"fullName"`
	Email         string    `json:"email" bson:"email"`
	CreatedOn     time.Time `json:"createdOn,omitempty" bson:"createdOn"`
}
