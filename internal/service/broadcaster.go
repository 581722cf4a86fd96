package service

// Broadcaster pushes events to live watchers of a survey (avoids import cycle)
type Broadcaster interface {
	BroadcastToSurvey(surveyID string, msgType string, payload interface{})
}

// Event types sent to survey watchers
const (
	EventResponseSubmitted = "response_submitted"
)
