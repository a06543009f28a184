// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, bearer-token verification
// with revocation, and the password-reset flow.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/stream254/backend/internal/common"
	"github.com/stream254/backend/internal/server/auth"
	"github.com/stream254/backend/internal/server/config"
	"github.com/stream254/backend/internal/server/models"
	"github.com/stream254/backend/internal/server/repositories/repomanager"
)

// AuthResult bundles a freshly issued bearer token with the user it
// authenticates.
type AuthResult struct {
	Token string
	User  *models.User
}

// UserService provides account operations:
//   - Register / Login: create accounts and mint tokens
//   - VerifyToken: resolve the acting identity on protected routes
//   - Logout: revoke all outstanding tokens for a user
//   - SendResetLink / ResetPassword: the password-reset token lifecycle
//   - GetProfile / UpdateProfile: profile reads and partial updates
type UserService struct {
	db                  *sql.DB
	repomanager         repomanager.RepositoryManager
	mail                MailSender
	jwtSecret           []byte
	accessTokenValidity time.Duration
	resetTokenValidity  time.Duration
	resetURLBase        string
}

// NewUserService constructs a UserService using repositories, the mail
// sender, and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, mail MailSender, cfg *config.Config) *UserService {
	return &UserService{
		db:                  db,
		repomanager:         m,
		mail:                mail,
		jwtSecret:           []byte(cfg.SecretKey),
		accessTokenValidity: cfg.AccessTokenValidityDuration,
		resetTokenValidity:  cfg.ResetTokenValidityDuration,
		resetURLBase:        cfg.ResetURLBase,
	}
}

// Register creates a new account after enforcing the password complexity
// rule, and returns a token bound to the new user. A taken email yields
// common.ErrConflict.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	if username == "" || email == "" {
		return nil, fmt.Errorf("%w: username and email are required", common.ErrValidation)
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrInternal
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.Create(ctx, &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Terms:        true,
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	token, err := auth.GenerateToken(user.ID, user.TokenVersion, s.jwtSecret, s.accessTokenValidity)
	if err != nil {
		return nil, common.ErrInternal
	}

	return &AuthResult{Token: token, User: user}, nil
}

// Login verifies the credentials and mints a fresh token. Unknown email and
// wrong password both yield common.ErrUnauthorized so callers cannot tell
// which check failed.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, user.TokenVersion, s.jwtSecret, s.accessTokenValidity)
	if err != nil {
		return nil, common.ErrInternal
	}

	return &AuthResult{Token: token, User: user}, nil
}

// VerifyToken validates a bearer token and returns the user ID it belongs
// to. A token issued before the user's last logout carries a stale version
// and is rejected, which is what makes Logout actually revoke.
func (s *UserService) VerifyToken(ctx context.Context, token string) (string, error) {
	userID, version, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return "", common.ErrUnauthorized
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return "", common.ErrUnauthorized
	}

	if version < user.TokenVersion {
		return "", common.ErrUnauthorized
	}

	return userID, nil
}

// Logout invalidates every token previously issued to the user.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	if _, err := s.repomanager.Users(s.db).IncrementTokenVersion(ctx, userID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return common.ErrInternal
	}
	return nil
}

// SendResetLink issues a password-reset token for the account behind email
// and hands the reset link to the mail sender. Unknown email yields
// common.ErrNotFound, a failed send common.ErrDelivery.
func (s *UserService) SendResetLink(ctx context.Context, email string) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return common.ErrInternal
	}

	token, err := common.MakeRandHexString(20)
	if err != nil {
		return common.ErrInternal
	}

	expires := time.Now().Add(s.resetTokenValidity)
	if err := repo.SetResetToken(ctx, user.ID, token, expires); err != nil {
		return common.ErrInternal
	}

	link := fmt.Sprintf("%s/%s", s.resetURLBase, token)
	body := fmt.Sprintf("Click the link to reset your password: %s .......Stream254", link)

	if err := s.mail.Send(ctx, user.Email, "Password Reset", body); err != nil {
		return fmt.Errorf("%w: %v", common.ErrDelivery, err)
	}

	return nil
}

// ResetPassword consumes a reset token and stores the new password hash.
// The repository applies the hash update and token clearing as one guarded
// statement, so a token can never authorize more than one change.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return common.ErrInvalidToken
	}
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return common.ErrInternal
	}

	if err := s.repomanager.Users(s.db).ConsumeResetToken(ctx, token, hash); err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			return common.ErrInvalidToken
		}
		return common.ErrInternal
	}

	return nil
}

// GetProfile returns the user record for userID.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	return user, nil
}

// UpdateProfile applies a partial profile patch after validating any
// sports/interests values against the fixed vocabularies.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, patch *models.UserPatch) (*models.User, error) {
	if patch.Sports != nil && !models.ValidSports(patch.Sports) {
		return nil, fmt.Errorf("%w: unknown sport", common.ErrValidation)
	}
	if patch.Interests != nil && !models.ValidInterests(patch.Interests) {
		return nil, fmt.Errorf("%w: unknown interest", common.ErrValidation)
	}

	user, err := s.repomanager.Users(s.db).UpdateProfile(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	return user, nil
}
