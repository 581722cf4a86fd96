package service

import (
	"time"

	"surveyservice/internal/apperr"
	"surveyservice/internal/model"
)

// flattenQuestions maps every question id in the tree, follow-ups at any
// depth included. Traversal is depth-first pre-order on an explicit stack,
// so a later duplicate id replaces an earlier one. Questions without an id
// are skipped together with their follow-ups.
func flattenQuestions(questions []*model.Question) map[string]*model.Question {
	byID := make(map[string]*model.Question)

	stack := make([]*model.Question, 0, len(questions))
	pushReversed := func(qs []*model.Question) {
		for i := len(qs) - 1; i >= 0; i-- {
			stack = append(stack, qs[i])
		}
	}
	pushReversed(questions)

	for len(stack) > 0 {
		q := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if q == nil || q.ID == "" {
			continue
		}
		byID[q.ID] = q
		pushReversed(q.FollowUpQuestions)
	}
	return byID
}

// normalizeAnswers turns the inbound answer entries into detail rows of
// response. The first entry that does not match its question's type fails
// the whole batch.
func normalizeAnswers(
	entries []model.SurveyResponseDetailDto,
	questions map[string]*model.Question,
	response *model.SurveyResponse,
	now time.Time,
) ([]*model.SurveyResponseDetail, error) {
	const op = "SurveyResponseService.normalizeAnswers"

	details := make([]*model.SurveyResponseDetail, 0, len(entries))
	for _, entry := range entries {
		q := questions[entry.QuestionID]
		if q == nil {
			return nil, apperr.Validation(op, apperr.KeyNotAuthorised)
		}

		newDetail := func(optionID, text *string) *model.SurveyResponseDetail {
			return &model.SurveyResponseDetail{
				SurveyResponseID: response.ID,
				QuestionID:       entry.QuestionID,
				Score:            entry.Score,
				ResponseType:     q.QuestionType,
				OptionID:         optionID,
				TextAnswer:       text,
				CreatedOn:        now,
			}
		}

		a := entry.Answer
		switch {
		case a.Kind() == model.AnswerOption && q.QuestionType.IsSingleOption():
			optionID := a.OptionID
			details = append(details, newDetail(&optionID, nil))
		case a.Kind() == model.AnswerOptions && q.QuestionType == model.QuestionTypeMultiSelection:
			for _, id := range a.OptionIDs {
				optionID := id
				details = append(details, newDetail(&optionID, nil))
			}
		case a.Kind() == model.AnswerText && q.QuestionType == model.QuestionTypeText:
			text := a.Text
			details = append(details, newDetail(nil, &text))
		default:
			return nil, apperr.Validation(op, apperr.KeyNotAuthorised)
		}
	}

	if response.HasExt() {
		for _, d := range details {
			d.ExtID = response.ExtID
			d.ExtMetadata = response.ExtMetadata
		}
	}
	return details, nil
}
