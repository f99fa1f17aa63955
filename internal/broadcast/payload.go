package broadcast

import (
	"time"

	"github.com/Mugdhazope/hemut-qna/internal/domain"
)

// QuestionPayload is the wire rendering of a question: timestamps as RFC-3339
// strings, identity as a plain string, answers always present as an array.
type QuestionPayload struct {
	ID        string          `json:"id"`
	Author    string          `json:"author"`
	Message   string          `json:"message"`
	Status    string          `json:"status"`
	CreatedAt string          `json:"created_at"`
	Answers   []AnswerPayload `json:"answers"`
}

type AnswerPayload struct {
	Author    string `json:"author"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func NewQuestionPayload(q *domain.Question) QuestionPayload {
	answers := make([]AnswerPayload, 0, len(q.Answers))
	for _, a := range q.Answers {
		answers = append(answers, AnswerPayload{
			Author:    a.Author,
			Content:   a.Content,
			CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return QuestionPayload{
		ID:        q.ID,
		Author:    q.Author,
		Message:   q.Message,
		Status:    string(q.Status),
		CreatedAt: q.CreatedAt.UTC().Format(time.RFC3339Nano),
		Answers:   answers,
	}
}
