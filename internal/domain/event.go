package domain

// Broadcast event types pushed to every connected viewer.
const (
	EventNewQuestion     = "new_question"
	EventQuestionUpdated = "question_updated"
)

// Event is the envelope written to viewer connections as JSON. Data carries
// the full post-mutation question with timestamps rendered as RFC-3339
// strings (see broadcast.QuestionPayload).
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}
