package model

import "time"

// QuestionType defines how a question is answered
type QuestionType string

const (
	QuestionTypeScale           QuestionType = "SCALE"
	QuestionTypeDropdown        QuestionType = "DROPDOWN"
	QuestionTypeSingleSelection QuestionType = "SINGLE_SELECTION"
	QuestionTypeMultiSelection  QuestionType = "MULTI_SELECTION"
	QuestionTypeText            QuestionType = "TEXT"
)

// IsValid reports whether t is one of the known question types
func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionTypeScale, QuestionTypeDropdown, QuestionTypeSingleSelection,
		QuestionTypeMultiSelection, QuestionTypeText:
		return true
	}
	return false
}

// IsSingleOption reports whether the type is answered with exactly one option id
func (t QuestionType) IsSingleOption() bool {
	return t == QuestionTypeScale || t == QuestionTypeDropdown || t == QuestionTypeSingleSelection
}

// Survey is a named set of questions administered over cycles
type Survey struct {
	ID         string      `json:"id" bson:"_id,omitempty"`
	Name       string      `json:"name" bson:"name"`
	Questions  []*Question `json:"questions" bson:"questions"`
	CreatedOn  time.Time   `json:"createdOn" bson:"createdOn"`
	ModifiedOn time.Time   `json:"modifiedOn" bson:"modifiedOn"`

	// SurveyCycles is populated by lookups, never stored on the survey document
	SurveyCycles []*SurveyCycle `json:"surveyCycles,omitempty" bson:"-"`
}

// Option is a selectable choice of a question
type Option struct {
	ID    string   `json:"id" bson:"id"`
	Name  string   `json:"name" bson:"name"`
	Score *float64 `json:"score,omitempty" bson:"score,omitempty"`
}

// Question is a survey question. Follow-ups nest to any depth.
type Question struct {
	ID                string       `json:"id" bson:"id"`
	Name              string       `json:"name" bson:"name"`
	QuestionType      QuestionType `json:"questionType" bson:"questionType"`
	Options           []Option     `json:"options,omitempty" bson:"options,omitempty"`
	FollowUpQuestions []*Question  `json:"followUpQuestions,omitempty" bson:"followUpQuestions,omitempty"`
}
