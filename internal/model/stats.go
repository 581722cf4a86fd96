package model

// CycleStats summarizes submissions for one survey cycle
type CycleStats struct {
	SurveyCycleID   string           `json:"surveyCycleId"`
	TotalResponses  int64            `json:"totalResponses"`
	OptionSelection map[string]int64 `json:"optionSelection"` // "questionId:optionId" -> count
}
