package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mertakdeniz/lunamarket-backend/internal/crypto"
	"github.com/mertakdeniz/lunamarket-backend/internal/models"
)

type passwordFixture struct {
	svc    *PasswordService
	users  *fakeUserStore
	mailer *fakeMailer
}

func newPasswordFixture() *passwordFixture {
	users := newFakeUserStore()
	mailer := &fakeMailer{}
	svc := NewPasswordService(users, newTestCodec(), mailer, time.Hour)
	return &passwordFixture{svc: svc, users: users, mailer: mailer}
}

func (fx *passwordFixture) seedUser(t *testing.T, email, password string) *models.User {
	t.Helper()
	hash, err := crypto.Hash(password)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	user := &models.User{ID: uuid.New(), Email: &email, PasswordHash: &hash, Status: models.StatusActive}
	if err := fx.users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return user
}

func TestChangePassword(t *testing.T) {
	fx := newPasswordFixture()
	ctx := context.Background()
	user := fx.seedUser(t, "a@test.com", "OldSecret1!")
	oldHash := *fx.users.stored(user.ID).PasswordHash

	if err := fx.svc.ChangePassword(ctx, user.ID, "OldSecret1!", "NewSecret1!"); err != nil {
		t.Fatalf("change failed: %v", err)
	}

	newHash := *fx.users.stored(user.ID).PasswordHash
	if newHash == oldHash {
		t.Fatal("hash unchanged after password change")
	}
	if ok, _ := crypto.Verify("NewSecret1!", newHash); !ok {
		t.Fatal("new password does not verify")
	}
}

func TestChangePasswordFreshSaltEvenForSamePassword(t *testing.T) {
	fx := newPasswordFixture()
	user := fx.seedUser(t, "a@test.com", "Same1234!")
	oldHash := *fx.users.stored(user.ID).PasswordHash

	if err := fx.svc.ChangePassword(context.Background(), user.ID, "Same1234!", "Same1234!"); err != nil {
		t.Fatalf("change failed: %v", err)
	}
	if *fx.users.stored(user.ID).PasswordHash == oldHash {
		t.Fatal("expected a fresh salt to produce a different hash")
	}
}

func TestChangePasswordWrongOldPassword(t *testing.T) {
	fx := newPasswordFixture()
	user := fx.seedUser(t, "a@test.com", "OldSecret1!")
	oldHash := *fx.users.stored(user.ID).PasswordHash

	err := fx.svc.ChangePassword(context.Background(), user.ID, "wrong", "NewSecret1!")
	if !errors.Is(err, ErrBadOldPassword) {
		t.Fatalf("expected ErrBadOldPassword, got %v", err)
	}
	if *fx.users.stored(user.ID).PasswordHash != oldHash {
		t.Fatal("stored hash mutated on failed change")
	}
}

func TestChangePasswordUnknownUser(t *testing.T) {
	fx := newPasswordFixture()
	err := fx.svc.ChangePassword(context.Background(), uuid.New(), "a", "b")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestForgotPassword(t *testing.T) {
	fx := newPasswordFixture()
	ctx := context.Background()
	user := fx.seedUser(t, "a@test.com", "Secret123!")

	if err := fx.svc.ForgotPassword(ctx, "a@test.com"); err != nil {
		t.Fatalf("forgot failed: %v", err)
	}

	stored := fx.users.stored(user.ID)
	if stored.PasswordResetToken == nil || stored.PasswordResetExpiresAt == nil {
		t.Fatal("reset token not persisted")
	}
	if len(fx.mailer.resetEmails) != 1 {
		t.Fatalf("expected one reset email, got %d", len(fx.mailer.resetEmails))
	}
	if fx.mailer.resetEmails[0].body != *stored.PasswordResetToken {
		t.Fatal("mailed token differs from stored token")
	}
	if remaining := time.Until(*stored.PasswordResetExpiresAt); remaining < 55*time.Minute || remaining > time.Hour {
		t.Fatalf("unexpected reset expiry window: %v", remaining)
	}
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	fx := newPasswordFixture()
	err := fx.svc.ForgotPassword(context.Background(), "nobody@test.com")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestResetPassword(t *testing.T) {
	fx := newPasswordFixture()
	ctx := context.Background()
	user := fx.seedUser(t, "a@test.com", "OldSecret1!")

	if err := fx.svc.ForgotPassword(ctx, "a@test.com"); err != nil {
		t.Fatalf("forgot failed: %v", err)
	}
	resetToken := *fx.users.stored(user.ID).PasswordResetToken

	access, err := fx.svc.ResetPassword(ctx, resetToken, "NewSecret1!")
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if access == "" {
		t.Fatal("expected an access token after reset")
	}

	stored := fx.users.stored(user.ID)
	if stored.PasswordResetToken != nil || stored.PasswordResetExpiresAt != nil {
		t.Fatal("reset fields not cleared")
	}
	if ok, _ := crypto.Verify("NewSecret1!", *stored.PasswordHash); !ok {
		t.Fatal("new password does not verify")
	}
}

func TestResetPasswordExpiredToken(t *testing.T) {
	fx := newPasswordFixture()
	ctx := context.Background()
	user := fx.seedUser(t, "a@test.com", "OldSecret1!")
	oldHash := *fx.users.stored(user.ID).PasswordHash

	resetToken := "stale-token"
	expired := time.Now().Add(-time.Minute)
	stored := fx.users.stored(user.ID)
	stored.PasswordResetToken = &resetToken
	stored.PasswordResetExpiresAt = &expired

	_, err := fx.svc.ResetPassword(ctx, resetToken, "NewSecret1!")
	if !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid, got %v", err)
	}
	if *fx.users.stored(user.ID).PasswordHash != oldHash {
		t.Fatal("password mutated by expired reset")
	}
}

func TestResetPasswordUnknownToken(t *testing.T) {
	fx := newPasswordFixture()
	_, err := fx.svc.ResetPassword(context.Background(), "never-issued", "NewSecret1!")
	if !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("expected ErrResetTokenInvalid, got %v", err)
	}
}
