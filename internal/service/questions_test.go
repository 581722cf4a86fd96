package service

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyservice/internal/model"
)

func TestFlattenQuestions(t *testing.T) {
	tree := []*model.Question{
		{ID: "a", QuestionType: model.QuestionTypeText, FollowUpQuestions: []*model.Question{
			{ID: "a.1", QuestionType: model.QuestionTypeScale, FollowUpQuestions: []*model.Question{
				{ID: "a.1.1", QuestionType: model.QuestionTypeDropdown, FollowUpQuestions: []*model.Question{
					{ID: "a.1.1.1", QuestionType: model.QuestionTypeMultiSelection},
				}},
			}},
			{ID: "a.2", QuestionType: model.QuestionTypeText},
		}},
		{ID: "b", QuestionType: model.QuestionTypeSingleSelection},
		nil,
		{ID: "", QuestionType: model.QuestionTypeText, FollowUpQuestions: []*model.Question{
			{ID: "orphan", QuestionType: model.QuestionTypeText},
		}},
	}

	got := flattenQuestions(tree)
	assert.Len(t, got, 6)
	for _, id := range []string{"a", "a.1", "a.1.1", "a.1.1.1", "a.2", "b"} {
		require.Contains(t, got, id)
		assert.Equal(t, id, got[id].ID)
	}
	assert.Equal(t, model.QuestionTypeMultiSelection, got["a.1.1.1"].QuestionType)
	assert.NotContains(t, got, "orphan")

	assert.Empty(t, flattenQuestions(nil))
}

func TestFlattenQuestionsLastWriteWins(t *testing.T) {
	tree := []*model.Question{
		{ID: "dup", QuestionType: model.QuestionTypeText, FollowUpQuestions: []*model.Question{
			{ID: "dup", QuestionType: model.QuestionTypeScale},
		}},
	}
	got := flattenQuestions(tree)
	assert.Equal(t, model.QuestionTypeScale, got["dup"].QuestionType)
}

func TestFlattenQuestionsDeepChain(t *testing.T) {
	root := &model.Question{ID: "q0", QuestionType: model.QuestionTypeText}
	cur := root
	for i := 1; i <= 5000; i++ {
		next := &model.Question{ID: "q" + strconv.Itoa(i), QuestionType: model.QuestionTypeText}
		cur.FollowUpQuestions = []*model.Question{next}
		cur = next
	}
	got := flattenQuestions([]*model.Question{root})
	assert.Len(t, got, 5001)
}

func TestNormalizeAnswers(t *testing.T) {
	questions := map[string]*model.Question{
		"s": {ID: "s", QuestionType: model.QuestionTypeSingleSelection},
		"m": {ID: "m", QuestionType: model.QuestionTypeMultiSelection},
		"t": {ID: "t", QuestionType: model.QuestionTypeText},
	}
	response := &model.SurveyResponse{ID: "resp1"}
	at := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

	details, err := normalizeAnswers([]model.SurveyResponseDetailDto{
		{QuestionID: "s", Answer: &model.Answer{OptionID: "yes"}},
		{QuestionID: "m", Answer: &model.Answer{OptionIDs: []string{"x", "y"}}},
		{QuestionID: "t", Answer: &model.Answer{Text: "ok"}},
	}, questions, response, at)
	require.NoError(t, err)
	require.Len(t, details, 4)

	counts := map[string]int{}
	for _, d := range details {
		counts[d.QuestionID]++
		assert.Equal(t, "resp1", d.SurveyResponseID)
		assert.Equal(t, at, d.CreatedOn)
	}
	assert.Equal(t, map[string]int{"s": 1, "m": 2, "t": 1}, counts)

	// Separate option id values per row.
	assert.NotSame(t, details[1].OptionID, details[2].OptionID)
	assert.Equal(t, "x", *details[1].OptionID)
	assert.Equal(t, "y", *details[2].OptionID)
}
