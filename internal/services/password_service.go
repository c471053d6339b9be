package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mertakdeniz/lunamarket-backend/internal/crypto"
	"github.com/mertakdeniz/lunamarket-backend/internal/repository"
	"github.com/mertakdeniz/lunamarket-backend/internal/token"
)

// PasswordService covers the change / forgot / reset flows.
type PasswordService struct {
	users    UserStore
	codec    *token.Codec
	mailer   Mailer
	resetTTL time.Duration
}

func NewPasswordService(users UserStore, codec *token.Codec, mailer Mailer, resetTTL time.Duration) *PasswordService {
	return &PasswordService{users: users, codec: codec, mailer: mailer, resetTTL: resetTTL}
}

// ChangePassword verifies the old password and stores a fresh hash for
// the new one. Existing sessions are not revoked here.
func (s *PasswordService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if user.PasswordHash == nil {
		return ErrWrongProvider
	}
	ok, err := crypto.Verify(oldPassword, *user.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return ErrBadOldPassword
	}
	hash, err := crypto.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = &hash
	return s.users.Save(ctx, user)
}

// ForgotPassword stores a time-boxed reset token on the account and mails
// it. The token is stored as-is so the reset lookup is an exact match.
func (s *PasswordService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	resetToken, err := crypto.RandomHex(32)
	if err != nil {
		return err
	}
	expiry := time.Now().Add(s.resetTTL)
	user.PasswordResetToken = &resetToken
	user.PasswordResetExpiresAt = &expiry
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}

	if user.Email == nil {
		return fmt.Errorf("account has no email address")
	}
	if err := s.mailer.SendPasswordResetEmail(ctx, *user.Email, resetToken); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}

// ResetPassword consumes a reset token: on a valid, unexpired match the
// password is replaced, the token fields are cleared, and a fresh access
// token is returned for convenience. An expired or unknown token mutates
// nothing.
func (s *PasswordService) ResetPassword(ctx context.Context, resetToken, newPassword string) (string, error) {
	user, err := s.users.FindByResetToken(ctx, resetToken)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrResetTokenInvalid
	}
	if err != nil {
		return "", err
	}
	if user.PasswordResetExpiresAt == nil || time.Now().After(*user.PasswordResetExpiresAt) {
		return "", ErrResetTokenInvalid
	}

	hash, err := crypto.Hash(newPassword)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = &hash
	user.PasswordResetToken = nil
	user.PasswordResetExpiresAt = nil
	if err := s.users.Save(ctx, user); err != nil {
		return "", err
	}

	access, err := s.codec.SignAccess(user)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return access, nil
}
