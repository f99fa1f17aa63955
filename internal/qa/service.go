package qa

import (
	"context"
	"errors"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/Mugdhazope/hemut-qna/internal/domain"
	apperrors "github.com/Mugdhazope/hemut-qna/internal/errors"
	"github.com/Mugdhazope/hemut-qna/internal/metrics"
)

// Broadcaster fans a mutated question out to all connected viewers.
// Implemented by broadcast.Coordinator.
type Broadcaster interface {
	QuestionCreated(ctx context.Context, q *domain.Question)
	QuestionUpdated(ctx context.Context, q *domain.Question)
}

// Service orchestrates the question lifecycle. Mutations follow a fixed
// shape: validate, write to the store, re-read the full question, broadcast.
// Broadcast failures never fail the request.
type Service struct {
	questions   domain.QuestionRepository
	authorizer  domain.Authorizer
	broadcaster Broadcaster
	clock       clockwork.Clock
}

func NewService(questions domain.QuestionRepository, authorizer domain.Authorizer, broadcaster Broadcaster, clock clockwork.Clock) *Service {
	return &Service{
		questions:   questions,
		authorizer:  authorizer,
		broadcaster: broadcaster,
		clock:       clock,
	}
}

// Submit stores a new question and broadcasts it. A blank author becomes
// Anonymous; a blank message is rejected.
func (s *Service) Submit(ctx context.Context, author, message string) (*domain.Question, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.ValidationError("question text must not be empty")
	}

	author = strings.TrimSpace(author)
	if author == "" {
		author = domain.AnonymousAuthor
	}

	question := &domain.Question{
		Author:    author,
		Message:   message,
		Status:    domain.StatusPending,
		CreatedAt: s.clock.Now().UTC(),
		Answers:   make([]domain.Answer, 0),
	}

	id, err := s.questions.Insert(ctx, question)
	if err != nil {
		return nil, apperrors.PersistenceError("failed to store question", err)
	}

	stored, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.PersistenceError("failed to read back question", err)
	}

	metrics.QuestionsSubmitted.Inc()
	s.broadcaster.QuestionCreated(ctx, stored)
	return stored, nil
}

// AddAnswer appends an answer to a question and broadcasts the updated
// question. Answers accumulate; they never replace each other.
func (s *Service) AddAnswer(ctx context.Context, id, author, content string) (*domain.Question, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.ValidationError("answer text must not be empty")
	}

	author = strings.TrimSpace(author)
	if author == "" {
		author = domain.AnonymousAuthor
	}

	answer := domain.Answer{
		Author:    author,
		Content:   content,
		CreatedAt: s.clock.Now().UTC(),
	}

	if err := s.questions.AppendAnswer(ctx, id, answer); err != nil {
		if errors.Is(err, domain.ErrQuestionNotFound) {
			return nil, apperrors.NotFoundError("question not found").WithField("question_id", id)
		}
		return nil, apperrors.PersistenceError("failed to store answer", err)
	}

	stored, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.PersistenceError("failed to read back question", err)
	}

	metrics.AnswersAdded.Inc()
	s.broadcaster.QuestionUpdated(ctx, stored)
	return stored, nil
}

// SetStatus moves a question to a new triage status. Requires an admin
// credential; the broadcast carries the full re-read question.
func (s *Service) SetStatus(ctx context.Context, credential, id, rawStatus string) (*domain.Question, error) {
	if _, err := s.authorizer.RequireCapability(ctx, credential, domain.RoleAdmin); err != nil {
		return nil, err
	}

	status, ok := domain.ParseStatus(rawStatus)
	if !ok {
		return nil, apperrors.ValidationError("unknown status").WithField("status", rawStatus)
	}

	current, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrQuestionNotFound) {
			return nil, apperrors.NotFoundError("question not found").WithField("question_id", id)
		}
		return nil, apperrors.PersistenceError("failed to read question", err)
	}

	if !domain.IsValidTransition(current.Status, status) {
		return nil, apperrors.ValidationError("invalid status transition").
			WithField("from", string(current.Status)).
			WithField("to", string(status))
	}

	if err := s.questions.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, domain.ErrQuestionNotFound) {
			return nil, apperrors.NotFoundError("question not found").WithField("question_id", id)
		}
		return nil, apperrors.PersistenceError("failed to store status", err)
	}

	stored, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.PersistenceError("failed to read back question", err)
	}

	metrics.StatusChanges.WithLabelValues(string(status)).Inc()
	s.broadcaster.QuestionUpdated(ctx, stored)
	return stored, nil
}

// List returns all questions in display order: escalated first, then pending,
// then answered, newest first within each bucket.
func (s *Service) List(ctx context.Context) ([]domain.Question, error) {
	questions, err := s.questions.List(ctx)
	if err != nil {
		return nil, apperrors.PersistenceError("failed to list questions", err)
	}

	domain.SortQuestions(questions)
	return questions, nil
}
