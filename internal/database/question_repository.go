package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Mugdhazope/hemut-qna/internal/domain"
)

// QuestionRepository persists questions in PostgreSQL. Answers are stored as
// a JSONB array and appended in a single UPDATE statement, so concurrent
// appends to the same question never lose writes.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

func (r *QuestionRepository) Insert(ctx context.Context, question *domain.Question) (string, error) {
	query := `
		INSERT INTO questions (author, message, status, created_at, answers)
		VALUES ($1, $2, $3, $4, '[]'::jsonb)
		RETURNING id
	`

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query, question.Author, question.Message, question.Status, question.CreatedAt).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to insert question: %w", err)
	}

	return id.String(), nil
}

func (r *QuestionRepository) GetByID(ctx context.Context, id string) (*domain.Question, error) {
	questionID, err := uuid.Parse(id)
	if err != nil {
		// Malformed IDs cannot refer to any stored question.
		return nil, domain.ErrQuestionNotFound
	}

	query := `
		SELECT id, author, message, status, created_at, answers
		FROM questions
		WHERE id = $1
	`

	question, err := scanQuestion(r.pool.QueryRow(ctx, query, questionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	return question, nil
}

func (r *QuestionRepository) List(ctx context.Context) ([]domain.Question, error) {
	query := `
		SELECT id, author, message, status, created_at, answers
		FROM questions
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	questions := make([]domain.Question, 0)
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, *question)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read questions: %w", err)
	}

	return questions, nil
}

func (r *QuestionRepository) AppendAnswer(ctx context.Context, id string, answer domain.Answer) error {
	questionID, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrQuestionNotFound
	}

	payload, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("failed to encode answer: %w", err)
	}

	query := `
		UPDATE questions
		SET answers = answers || $2::jsonb
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, questionID, payload)
	if err != nil {
		return fmt.Errorf("failed to append answer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}

	return nil
}

func (r *QuestionRepository) SetStatus(ctx context.Context, id string, status domain.Status) error {
	questionID, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrQuestionNotFound
	}

	query := `UPDATE questions SET status = $2 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, questionID, status)
	if err != nil {
		return fmt.Errorf("failed to set question status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}

	return nil
}

func scanQuestion(row pgx.Row) (*domain.Question, error) {
	var (
		question domain.Question
		id       uuid.UUID
		answers  []byte
	)

	if err := row.Scan(&id, &question.Author, &question.Message, &question.Status, &question.CreatedAt, &answers); err != nil {
		return nil, err
	}

	question.ID = id.String()
	if err := json.Unmarshal(answers, &question.Answers); err != nil {
		return nil, fmt.Errorf("failed to decode answers: %w", err)
	}

	return &question, nil
}
