package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"

	"github.com/Mugdhazope/hemut-qna/internal/domain"
	apperrors "github.com/Mugdhazope/hemut-qna/internal/errors"
)

const tokenIssuer = "hemut-qna"

// Claims is the payload stored inside issued JWTs.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Service issues and verifies credentials for answerers.
type Service struct {
	users  domain.UserRepository
	secret []byte
	ttl    time.Duration
	clock  clockwork.Clock
}

func NewService(users domain.UserRepository, secret string, ttl time.Duration, clock clockwork.Clock) *Service {
	return &Service{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		clock:  clock,
	}
}

// Register creates an answerer account and returns a signed token. Every
// registered account carries the admin role.
func (s *Service) Register(ctx context.Context, username, email, password string) (string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return "", apperrors.ValidationError("username must not be empty")
	}
	if email == "" {
		return "", apperrors.ValidationError("email must not be empty")
	}
	if password == "" {
		return "", apperrors.ValidationError("password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperrors.InternalError("failed to hash password", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		CreatedAt:    s.clock.Now().UTC(),
	}

	id, err := s.users.Insert(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return "", apperrors.ConflictError("email already registered").WithField("email", email)
		}
		return "", apperrors.PersistenceError("failed to create user", err)
	}

	return s.issueToken(id, user.Role)
}

// Login verifies credentials and returns a signed token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", apperrors.AuthorizationError("invalid email or password")
		}
		return "", apperrors.PersistenceError("failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperrors.AuthorizationError("invalid email or password")
	}

	return s.issueToken(user.ID, user.Role)
}

// RequireCapability validates a bearer credential and checks that the account
// behind it carries the given capability. Returns the account ID on success.
func (s *Service) RequireCapability(ctx context.Context, credential, capability string) (string, error) {
	if credential == "" {
		return "", apperrors.AuthorizationError("missing credential")
	}

	claims, err := s.parseToken(credential)
	if err != nil {
		return "", apperrors.AuthorizationError("invalid or expired credential")
	}

	// Re-read the account so revoked users lose access even with a live token.
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", apperrors.AuthorizationError("invalid or expired credential")
		}
		return "", apperrors.PersistenceError("failed to look up user", err)
	}

	if user.Role != capability {
		return "", apperrors.AuthorizationError("insufficient capability").WithField("capability", capability)
	}

	return user.ID, nil
}

func (s *Service) issueToken(userID, role string) (string, error) {
	now := s.clock.Now()

	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", apperrors.InternalError("failed to sign token", err)
	}
	return signed, nil
}

func (s *Service) parseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	return claims, nil
}
