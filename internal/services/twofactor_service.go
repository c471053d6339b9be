package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mertakdeniz/lunamarket-backend/internal/crypto"
	"github.com/mertakdeniz/lunamarket-backend/internal/models"
	"github.com/mertakdeniz/lunamarket-backend/internal/repository"
	"github.com/mertakdeniz/lunamarket-backend/internal/token"
)

// TwoFactorService handles 2FA enrollment and the OTP leg of a 2FA login.
// Codes are stored hashed with the same scheme as passwords; the
// plaintext only ever travels by mail.
type TwoFactorService struct {
	users       UserStore
	codec       *token.Codec
	mailer      Mailer
	setupOTPTTL time.Duration
	loginOTPTTL time.Duration
}

func NewTwoFactorService(users UserStore, codec *token.Codec, mailer Mailer, setupOTPTTL, loginOTPTTL time.Duration) *TwoFactorService {
	return &TwoFactorService{
		users:       users,
		codec:       codec,
		mailer:      mailer,
		setupOTPTTL: setupOTPTTL,
		loginOTPTTL: loginOTPTTL,
	}
}

// Setup generates an enrollment code, stores its hash with an expiry, and
// mails the plaintext.
func (s *TwoFactorService) Setup(ctx context.Context, userID uuid.UUID) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.sendOTP(ctx, user, s.setupOTPTTL)
}

// Verify consumes a pending enrollment code. On success the 2FA flag is
// set to enable (the same endpoint turns 2FA off) and the OTP fields are
// cleared; every failure leaves them untouched.
func (s *TwoFactorService) Verify(ctx context.Context, userID uuid.UUID, code string, enable bool) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.checkOTP(user, code); err != nil {
		return err
	}
	user.TwoFactorEnabled = enable
	user.TwoFactorOTP = nil
	user.TwoFactorExpiresAt = nil
	return s.users.Save(ctx, user)
}

// BeginLogin starts the OTP leg of a 2FA login: it stores a short-lived
// code, mails it, and returns the temporary token the client must present
// alongside the code. The account status gate applies here the same way
// it does on a plain login; a blocked account must not receive a code.
func (s *TwoFactorService) BeginLogin(ctx context.Context, user *models.User) (string, error) {
	if !user.Active() {
		return "", ErrAccountInactive
	}
	if err := s.sendOTP(ctx, user, s.loginOTPTTL); err != nil {
		return "", err
	}
	tempToken, err := s.codec.SignTwoFactor(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to sign two-factor token: %w", err)
	}
	return tempToken, nil
}

// CompleteLogin validates the temporary token and the submitted code and
// returns the account for session issuance. The OTP fields are cleared
// only on success.
func (s *TwoFactorService) CompleteLogin(ctx context.Context, tempToken, code string) (*models.User, error) {
	userID, err := s.codec.ParseTwoFactor(tempToken)
	if err != nil {
		return nil, ErrTempTokenInvalid
	}
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOTP(user, code); err != nil {
		return nil, err
	}
	user.TwoFactorOTP = nil
	user.TwoFactorExpiresAt = nil
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ResendOTP reissues the login code for the holder of a still-valid
// temporary token.
func (s *TwoFactorService) ResendOTP(ctx context.Context, tempToken string) error {
	userID, err := s.codec.ParseTwoFactor(tempToken)
	if err != nil {
		return ErrTempTokenInvalid
	}
	return s.resend(ctx, userID)
}

// ResendForLogin reissues the login code by account id. Only meaningful
// while an OTP session is active.
func (s *TwoFactorService) ResendForLogin(ctx context.Context, userID uuid.UUID) error {
	return s.resend(ctx, userID)
}

func (s *TwoFactorService) resend(ctx context.Context, userID uuid.UUID) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.TwoFactorOTP == nil {
		return ErrNoActiveOTPSession
	}
	return s.sendOTP(ctx, user, s.loginOTPTTL)
}

func (s *TwoFactorService) sendOTP(ctx context.Context, user *models.User, ttl time.Duration) error {
	if user.Email == nil {
		return fmt.Errorf("account has no email address")
	}
	plain, hashed, err := crypto.GenerateHashedOTP()
	if err != nil {
		return err
	}
	expiry := time.Now().Add(ttl)
	user.TwoFactorOTP = &hashed
	user.TwoFactorExpiresAt = &expiry
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}
	if err := s.mailer.SendOTPEmail(ctx, *user.Email, plain); err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}
	return nil
}

func (s *TwoFactorService) checkOTP(user *models.User, code string) error {
	if user.TwoFactorOTP == nil {
		return ErrNoPendingOTP
	}
	if user.TwoFactorExpiresAt == nil || time.Now().After(*user.TwoFactorExpiresAt) {
		return ErrOTPExpired
	}
	ok, err := crypto.Verify(code, *user.TwoFactorOTP)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOTPMismatch
	}
	return nil
}

func (s *TwoFactorService) findUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
