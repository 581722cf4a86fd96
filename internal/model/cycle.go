package model

import "time"

// DateLayout is the calendar date format used for cycle windows
const DateLayout = "2006-01-02"

// SurveyCycle is a time window during which a survey accepts responses
type SurveyCycle struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	SurveyID    string    `json:"surveyId" bson:"surveyId"`
	IsActivated bool      `json:"isActivated" bson:"isActivated"`
	StartDate   string    `json:"startDate" bson:"startDate"` // YYYY-MM-DD
	EndDate     string    `json:"endDate" bson:"endDate"`     // YYYY-MM-DD
	CreatedOn   time.Time `json:"createdOn" bson:"createdOn"`
}

// IsActiveOn reports whether the cycle accepts responses on the given
// YYYY-MM-DD date. The layout makes lexical order equal calendar order.
func (c *SurveyCycle) IsActiveOn(today string) bool {
	return c.IsActivated && c.StartDate <= today && today <= c.EndDate
}
