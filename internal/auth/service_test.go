package auth

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mugdhazope/hemut-qna/internal/database"
	"github.com/Mugdhazope/hemut-qna/internal/domain"
	apperrors "github.com/Mugdhazope/hemut-qna/internal/errors"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestService(clock clockwork.Clock) (*Service, *database.MemoryUserRepository) {
	users := database.NewMemoryUserRepository()
	return NewService(users, testSecret, time.Hour, clock), users
}

func TestRegister_IssuesAdminCredential(t *testing.T) {
	clock := clockwork.NewFakeClock()
	service, users := newTestService(clock)
	ctx := context.Background()

	token, err := service.Register(ctx, "moderator", "mod@example.com", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	user, err := users.GetByEmail(ctx, "mod@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)
	assert.NotEqual(t, "hunter22", user.PasswordHash)

	userID, err := service.RequireCapability(ctx, token, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestRegister_EmptyFields(t *testing.T) {
	service, _ := newTestService(clockwork.NewFakeClock())
	ctx := context.Background()

	cases := []struct {
		name                      string
		username, email, password string
	}{
		{"empty username", "  ", "mod@example.com", "hunter22"},
		{"empty email", "moderator", "", "hunter22"},
		{"empty password", "moderator", "mod@example.com", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Register(ctx, tc.username, tc.email, tc.password)
			structured := apperrors.AsStructuredError(err)
			require.NotNil(t, structured)
			assert.Equal(t, apperrors.TypeValidation, structured.Type)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	service, _ := newTestService(clockwork.NewFakeClock())
	ctx := context.Background()

	_, err := service.Register(ctx, "moderator", "mod@example.com", "hunter22")
	require.NoError(t, err)

	_, err = service.Register(ctx, "other", "mod@example.com", "different")
	structured := apperrors.AsStructuredError(err)
	require.NotNil(t, structured)
	assert.Equal(t, apperrors.TypeConflict, structured.Type)
}

func TestLogin_Success(t *testing.T) {
	service, _ := newTestService(clockwork.NewFakeClock())
	ctx := context.Background()

	_, err := service.Register(ctx, "moderator", "mod@example.com", "hunter22")
	require.NoError(t, err)

	token, err := service.Login(ctx, "mod@example.com", "hunter22")
	require.NoError(t, err)

	_, err = service.RequireCapability(ctx, token, domain.RoleAdmin)
	assert.NoError(t, err)
}

func TestLogin_WrongPassword(t *testing.T) {
	service, _ := newTestService(clockwork.NewFakeClock())
	ctx := context.Background()

	_, err := service.Register(ctx, "moderator", "mod@example.com", "hunter22")
	require.NoError(t, err)

	_, err = service.Login(ctx, "mod@example.com", "wrong")
	structured := apperrors.AsStructuredError(err)
	require.NotNil(t, structured)
	assert.Equal(t, apperrors.TypeUnauthorized, structured.Type)
}

func TestLogin_UnknownEmail(t *testing.T) {
	service, _ := newTestService(clockwork.NewFakeClock())

	_, err := service.Login(context.Background(), "nobody@example.com", "hunter22")
	structured := apperrors.AsStructuredError(err)
	require.NotNil(t, structured)
	assert.Equal(t, apperrors.TypeUnauthorized, structured.Type)
}

func TestRequireCapability_MissingCredential(t *testing.T) {
	service, _ := newTestService(clockwork.NewFakeClock())

	_, err := service.RequireCapability(context.Background(), "", domain.RoleAdmin)
	structured := apperrors.AsStructuredError(err)
	require.NotNil(t, structured)
	assert.Equal(t, apperrors.TypeUnauthorized, structured.Type)
}

func TestRequireCapability_GarbageCredential(t *testing.T) {
	service, _ := newTestService(clockwork.NewFakeClock())

	_, err := service.RequireCapability(context.Background(), "not.a.token", domain.RoleAdmin)
	structured := apperrors.AsStructuredError(err)
	require.NotNil(t, structured)
	assert.Equal(t, apperrors.TypeUnauthorized, structured.Type)
}

func TestRequireCapability_ExpiredCredential(t *testing.T) {
	clock := clockwork.NewFakeClock()
	service, _ := newTestService(clock)
	ctx := context.Background()

	token, err := service.Register(ctx, "moderator", "mod@example.com", "hunter22")
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)

	_, err = service.RequireCapability(ctx, token, domain.RoleAdmin)
	structured := apperrors.AsStructuredError(err)
	require.NotNil(t, structured)
	assert.Equal(t, apperrors.TypeUnauthorized, structured.Type)
}

func TestRequireCapability_WrongSecret(t *testing.T) {
	clock := clockwork.NewFakeClock()
	users := database.NewMemoryUserRepository()
	issuer := NewService(users, testSecret, time.Hour, clock)
	verifier := NewService(users, "another-secret-entirely-32-bytes", time.Hour, clock)
	ctx := context.Background()

	token, err := issuer.Register(ctx, "moderator", "mod@example.com", "hunter22")
	require.NoError(t, err)

	_, err = verifier.RequireCapability(ctx, token, domain.RoleAdmin)
	structured := apperrors.AsStructuredError(err)
	require.NotNil(t, structured)
	assert.Equal(t, apperrors.TypeUnauthorized, structured.Type)
}
