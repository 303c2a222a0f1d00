package service

import (
	"context"
	"strings"

	"github.com/recon2root/eventsite/internal/config"
	apperrors "github.com/recon2root/eventsite/internal/errors"
	"github.com/recon2root/eventsite/internal/model"
	"github.com/recon2root/eventsite/internal/repository"
	"github.com/recon2root/eventsite/internal/util"
)

// CredentialService manages the stored admin credential.
type CredentialService struct {
	adminRepo repository.AdminRepository
	hashCost  int
}

// NewCredentialService hashes with hashCost, or config.PasswordHashCost when
// hashCost is zero.
func NewCredentialService(adminRepo repository.AdminRepository, hashCost int) *CredentialService {
	if hashCost == 0 {
		hashCost = config.PasswordHashCost
	}
	return &CredentialService{adminRepo: adminRepo, hashCost: hashCost}
}

// Set creates the credential for username or replaces its password. The
// username is trimmed; the password is stored exactly as given, the way
// Login compares it. It reports whether a new credential was created.
func (s *CredentialService) Set(ctx context.Context, username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return false, apperrors.ValidationError("Username and password cannot be empty")
	}

	hash, err := util.HashPassword(password, s.hashCost)
	if err != nil {
		return false, apperrors.Internal("Failed to hash password").WithCause(err)
	}

	existing, err := s.adminRepo.FindByUsername(ctx, username)
	if err != nil {
		return false, apperrors.Database(err)
	}

	if existing != nil {
		if err := s.adminRepo.UpdatePasswordHash(ctx, username, hash); err != nil {
			return false, apperrors.Database(err)
		}
		return false, nil
	}

	_, err = s.adminRepo.Create(ctx, model.UpsertAdminParams{
		ID:           model.NewID(),
		Username:     username,
		PasswordHash: hash,
	})
	if err != nil {
		return false, apperrors.Database(err)
	}
	return true, nil
}
