package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/recon2root/eventsite/internal/config"
	apperrors "github.com/recon2root/eventsite/internal/errors"
	"github.com/recon2root/eventsite/internal/model"
	"github.com/recon2root/eventsite/internal/repository"
	"github.com/recon2root/eventsite/internal/util"
)

type sessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AuthService checks the admin credential and issues self-expiring session
// tokens. Tokens are HS256 JWTs; there is no server-side session state.
type AuthService struct {
	adminRepo repository.AdminRepository
	secret    []byte
	ttl       time.Duration
	hashCost  int
	now       func() time.Time
}

// NewAuthService verifies credentials hashed at hashCost, or at
// config.PasswordHashCost when hashCost is zero. Logins for unknown users
// spend the same bcrypt work at that cost.
func NewAuthService(adminRepo repository.AdminRepository, secret string, ttl time.Duration, hashCost int) *AuthService {
	if hashCost == 0 {
		hashCost = config.PasswordHashCost
	}
	return &AuthService{
		adminRepo: adminRepo,
		secret:    []byte(secret),
		ttl:       ttl,
		hashCost:  hashCost,
		now:       time.Now,
	}
}

func (s *AuthService) TTL() time.Duration {
	return s.ttl
}

// Login returns a signed session token for a matching username and password.
// Unknown usernames and wrong passwords both yield InvalidCredentials after
// a bcrypt comparison at the configured cost.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *model.AdminIdentity, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", nil, apperrors.InvalidCredentials()
	}

	admin, err := s.adminRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, apperrors.Database(err)
	}

	if admin == nil {
		util.BurnPasswordCheck(password, s.hashCost)
		return "", nil, apperrors.InvalidCredentials()
	}

	if !util.CheckPasswordHash(password, admin.PasswordHash) {
		return "", nil, apperrors.InvalidCredentials()
	}

	return s.issue(admin)
}

func (s *AuthService) issue(admin *model.Admin) (string, *model.AdminIdentity, error) {
	issuedAt := s.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.ttl)

	claims := sessionClaims{
		Username: admin.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, apperrors.Internal("Failed to issue session").WithCause(err)
	}

	return token, &model.AdminIdentity{
		ID:        admin.ID,
		Username:  admin.Username,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Authorize verifies a session token. An empty token is Unauthorized; any
// other failure (malformed, bad signature, expired) is InvalidSession.
func (s *AuthService) Authorize(token string) (*model.AdminIdentity, error) {
	if token == "" {
		return nil, apperrors.Unauthorized("Unauthorized")
	}

	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, apperrors.InvalidSession()
	}

	identity := &model.AdminIdentity{
		ID:        claims.Subject,
		Username:  claims.Username,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		identity.IssuedAt = claims.IssuedAt.Time
	}
	return identity, nil
}

// CheckSession reports whether token is a live session. It never errors.
func (s *AuthService) CheckSession(token string) bool {
	_, err := s.Authorize(token)
	return err == nil
}
