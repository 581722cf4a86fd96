package model

import "time"

// SurveyResponse is one submission by a responder for a cycle
type SurveyResponse struct {
	ID                string                 `json:"id" bson:"_id,omitempty"`
	SurveyResponderID string                 `json:"surveyResponderId" bson:"surveyResponderId"`
	SurveyCycleID     string                 `json:"surveyCycleId" bson:"surveyCycleId"`
	ExtID             string                 `json:"extId,omitempty" bson:"extId,omitempty"`
	ExtMetadata       map[string]interface{} `json:"extMetadata,omitempty" bson:"extMetadata,omitempty"`
	CreatedOn         time.Time              `json:"createdOn" bson:"createdOn"`
}

// HasExt reports whether the response carries external reference data
func (r *SurveyResponse) HasExt() bool {
	return r.ExtID != "" || len(r.ExtMetadata) > 0
}

// SurveyResponseDetail is one normalized answer unit of a response
type SurveyResponseDetail struct {
	ID               string                 `json:"id" bson:"_id,omitempty"`
	SurveyResponseID string                 `json:"surveyResponseId" bson:"surveyResponseId"`
	QuestionID       string                 `json:"questionId" bson:"questionId"`
	Score            *float64               `json:"score,omitempty" bson:"score,omitempty"`
	ResponseType     QuestionType           `json:"responseType" bson:"responseType"`
	TextAnswer       *string                `json:"textAnswer,omitempty" bson:"textAnswer,omitempty"`
	OptionID         *string                `json:"optionId,omitempty" bson:"optionId,omitempty"`
	ExtID            string                 `json:"extId,omitempty" bson:"extId,omitempty"`
	ExtMetadata      map[string]interface{} `json:"extMetadata,omitempty" bson:"extMetadata,omitempty"`
	CreatedOn        time.Time              `json:"createdOn" bson:"createdOn"`
}

// Answer is the union payload of a single answer entry
type Answer struct {
	OptionID  string   `json:"optionId,omitempty"`
	OptionIDs []string `json:"optionIds,omitempty"`
	Text      string   `json:"text,omitempty"`
}

// SurveyResponseDetailDto is one inbound answer entry
type SurveyResponseDetailDto struct {
	QuestionID string   `json:"questionId"`
	Score      *float64 `json:"score,omitempty"`
	Answer     *Answer  `json:"answer,omitempty"`
}

// SurveyResponseDto is the inbound submission body.
// A nil SurveyResponseDetailArray means the field was absent.
type SurveyResponseDto struct {
	SurveyResponderID         string                    `json:"surveyResponderId"`
	ExtID                     string                    `json:"extId,omitempty"`
	ExtMetadata               map[string]interface{}    `json:"extMetadata,omitempty"`
	SurveyResponseDetailArray []SurveyResponseDetailDto `json:"surveyResponseDetailArray"`
}

// SurveyResponseWithDetails is a response together with its detail rows
type SurveyResponseWithDetails struct {
	*SurveyResponse
	Details []*SurveyResponseDetail `json:"details"`
}

// AnswerKind tags which member of the answer union is populated
type AnswerKind int

const (
	AnswerEmpty AnswerKind = iota
	AnswerOption
	AnswerOptions
	AnswerText
	// AnswerAmbiguous means more than one member is populated
	AnswerAmbiguous
)

// Kind classifies the populated member of the union. A nil answer is empty.
func (a *Answer) Kind() AnswerKind {
	if a == nil {
		return AnswerEmpty
	}
	kind, n := AnswerEmpty, 0
	if a.OptionID != "" {
		kind, n = AnswerOption, n+1
	}
	if len(a.OptionIDs) > 0 {
		kind, n = AnswerOptions, n+1
	}
	if a.Text != "" {
		kind, n = AnswerText, n+1
	}
	if n > 1 {
		return AnswerAmbiguous
	}
	return kind
}
