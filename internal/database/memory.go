package database

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Mugdhazope/hemut-qna/internal/domain"
)

// MemoryQuestionRepository is an in-memory QuestionRepository for tests and
// local development without PostgreSQL.
type MemoryQuestionRepository struct {
	mu        sync.RWMutex
	questions map[string]*domain.Question
}

func NewMemoryQuestionRepository() *MemoryQuestionRepository {
	return &MemoryQuestionRepository{questions: make(map[string]*domain.Question)}
}

func (r *MemoryQuestionRepository) Insert(_ context.Context, question *domain.Question) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	stored := copyQuestion(question)
	stored.ID = id
	r.questions[id] = stored
	return id, nil
}

func (r *MemoryQuestionRepository) GetByID(_ context.Context, id string) (*domain.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	question, ok := r.questions[id]
	if !ok {
		return nil, domain.ErrQuestionNotFound
	}
	return copyQuestion(question), nil
}

func (r *MemoryQuestionRepository) List(_ context.Context) ([]domain.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	questions := make([]domain.Question, 0, len(r.questions))
	for _, question := range r.questions {
		questions = append(questions, *copyQuestion(question))
	}
	return questions, nil
}

func (r *MemoryQuestionRepository) AppendAnswer(_ context.Context, id string, answer domain.Answer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	question, ok := r.questions[id]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	question.Answers = append(question.Answers, answer)
	return nil
}

func (r *MemoryQuestionRepository) SetStatus(_ context.Context, id string, status domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	question, ok := r.questions[id]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	question.Status = status
	return nil
}

func copyQuestion(question *domain.Question) *domain.Question {
	copied := *question
	copied.Answers = make([]domain.Answer, len(question.Answers))
	copy(copied.Answers, question.Answers)
	return &copied
}

// MemoryUserRepository is an in-memory UserRepository for tests.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]*domain.User)}
}

func (r *MemoryUserRepository) Insert(_ context.Context, user *domain.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return "", domain.ErrEmailTaken
		}
	}

	id := uuid.NewString()
	stored := *user
	stored.ID = id
	r.users[id] = &stored
	return id, nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}
