package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/recon2root/eventsite/internal/database"
	apperrors "github.com/recon2root/eventsite/internal/errors"
	"github.com/recon2root/eventsite/internal/repository"
)

const testSecret = "test-session-secret-with-enough-entropy"

func newTestCredentials(t *testing.T) (*CredentialService, repository.AdminRepository) {
	t.Helper()

	db := database.OpenTest(t)
	repo := repository.NewAdminRepository(db.DB)
	creds := NewCredentialService(repo, bcrypt.MinCost)

	created, err := creds.Set(context.Background(), "admin", "correct horse")
	require.NoError(t, err)
	require.True(t, created)
	return creds, repo
}

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()

	_, repo := newTestCredentials(t)
	return NewAuthService(repo, testSecret, 8*time.Hour, bcrypt.MinCost)
}

func TestAuthService_Login(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	t.Run("valid credentials issue a token", func(t *testing.T) {
		token, identity, err := svc.Login(ctx, "admin", "correct horse")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "admin", identity.Username)
		assert.Equal(t, 8*time.Hour, identity.ExpiresAt.Sub(identity.IssuedAt))
		assert.True(t, svc.CheckSession(token))
	})

	t.Run("username is trimmed", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "  admin\t", "correct horse")
		assert.NoError(t, err)
	})

	t.Run("username is case-sensitive", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "Admin", "correct horse")
		assert.Equal(t, apperrors.ErrCodeInvalidCredentials, apperrors.GetCode(err))
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "admin", "wrong")
		assert.Equal(t, apperrors.ErrCodeInvalidCredentials, apperrors.GetCode(err))
	})

	t.Run("unknown username", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "root", "correct horse")
		assert.Equal(t, apperrors.ErrCodeInvalidCredentials, apperrors.GetCode(err))
	})

	t.Run("empty fields", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "", "")
		assert.Equal(t, apperrors.ErrCodeInvalidCredentials, apperrors.GetCode(err))
	})
}

func TestAuthService_Authorize(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	token, _, err := svc.Login(ctx, "admin", "correct horse")
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		identity, err := svc.Authorize(token)
		require.NoError(t, err)
		assert.Equal(t, "admin", identity.Username)
		assert.NotEmpty(t, identity.ID)
	})

	t.Run("missing token is unauthorized", func(t *testing.T) {
		_, err := svc.Authorize("")
		assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.GetCode(err))
	})

	t.Run("garbage token is an invalid session", func(t *testing.T) {
		_, err := svc.Authorize("not-a-token")
		assert.Equal(t, apperrors.ErrCodeInvalidSession, apperrors.GetCode(err))
		assert.False(t, svc.CheckSession("not-a-token"))
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := NewAuthService(svc.adminRepo, "a-completely-different-secret-value", time.Hour, bcrypt.MinCost)
		forged, _, err := other.Login(ctx, "admin", "correct horse")
		require.NoError(t, err)

		_, err = svc.Authorize(forged)
		assert.Equal(t, apperrors.ErrCodeInvalidSession, apperrors.GetCode(err))
	})

	t.Run("expired token", func(t *testing.T) {
		svc.now = func() time.Time { return time.Now().Add(9 * time.Hour) }
		defer func() { svc.now = time.Now }()

		_, err := svc.Authorize(token)
		assert.Equal(t, apperrors.ErrCodeInvalidSession, apperrors.GetCode(err))
		assert.False(t, svc.CheckSession(token))
	})
}

func TestCredentialService_Set(t *testing.T) {
	creds, repo := newTestCredentials(t)
	svc := NewAuthService(repo, testSecret, time.Hour, bcrypt.MinCost)
	ctx := context.Background()

	created, err := creds.Set(ctx, " admin ", "new password ")
	require.NoError(t, err)
	assert.False(t, created)

	_, _, err = svc.Login(ctx, "admin", "correct horse")
	assert.Error(t, err)
	_, _, err = svc.Login(ctx, "admin", "new password ")
	assert.NoError(t, err, "password is kept as typed")
	_, _, err = svc.Login(ctx, "admin", "new password")
	assert.Error(t, err)

	_, err = creds.Set(ctx, "admin", "   ")
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))
}

func TestAuthService_LoginTiming(t *testing.T) {
	const cost = 10

	db := database.OpenTest(t)
	repo := repository.NewAdminRepository(db.DB)
	_, err := NewCredentialService(repo, cost).Set(context.Background(), "admin", "correct horse")
	require.NoError(t, err)
	svc := NewAuthService(repo, testSecret, time.Hour, cost)
	ctx := context.Background()

	fastest := func(username string) time.Duration {
		best := time.Duration(1<<63 - 1)
		for i := 0; i < 3; i++ {
			start := time.Now()
			_, _, err := svc.Login(ctx, username, "wrong password")
			elapsed := time.Since(start)
			require.Equal(t, apperrors.ErrCodeInvalidCredentials, apperrors.GetCode(err))
			if elapsed < best {
				best = elapsed
			}
		}
		return best
	}

	// Builds the dummy hash outside the measured runs.
	fastest("nobody")

	wrongPassword := fastest("admin")
	unknownUser := fastest("nobody")

	assert.Greater(t, unknownUser, wrongPassword/2,
		"unknown user %v vs wrong password %v", unknownUser, wrongPassword)
	assert.Less(t, unknownUser, wrongPassword*2,
		"unknown user %v vs wrong password %v", unknownUser, wrongPassword)
}
