package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Mugdhazope/hemut-qna/internal/domain"
)

const uniqueViolationCode = "23505"

// UserRepository persists answerer accounts in PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Insert(ctx context.Context, user *domain.User) (string, error) {
	query := `
		INSERT INTO users (username, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query, user.Username, user.Email, user.PasswordHash, user.Role, user.CreatedAt).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return "", domain.ErrEmailTaken
		}
		return "", fmt.Errorf("failed to insert user: %w", err)
	}

	return id.String(), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	query := `
		SELECT id, username, email, password_hash, role, created_at
		FROM users
		WHERE id = $1
	`

	return r.scanUser(r.pool.QueryRow(ctx, query, userID))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, username, email, password_hash, role, created_at
		FROM users
		WHERE email = $1
	`

	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user domain.User
		id   uuid.UUID
	)

	err := row.Scan(&id, &user.Username, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.ID = id.String()
	return &user, nil
}
