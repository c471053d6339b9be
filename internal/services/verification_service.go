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
)

// Channel selects which contact detail a verification flow targets. Each
// channel keeps its own pending code and expiry on the account.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

// VerificationService runs the email- and phone-verification OTP flows.
type VerificationService struct {
	users  UserStore
	mailer Mailer
	otpTTL time.Duration
}

func NewVerificationService(users UserStore, mailer Mailer, otpTTL time.Duration) *VerificationService {
	return &VerificationService{users: users, mailer: mailer, otpTTL: otpTTL}
}

// Setup issues a verification code for the channel. Already-verified
// channels are rejected.
func (s *VerificationService) Setup(ctx context.Context, userID uuid.UUID, channel Channel) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}

	switch channel {
	case ChannelEmail:
		if user.EmailVerified {
			return ErrAlreadyVerified
		}
		if user.Email == nil {
			return fmt.Errorf("account has no email address")
		}
	case ChannelPhone:
		if user.PhoneVerified {
			return ErrAlreadyVerified
		}
		if user.Phone == nil {
			return fmt.Errorf("account has no phone number")
		}
	default:
		return fmt.Errorf("unknown verification channel %q", channel)
	}

	plain, hashed, err := crypto.GenerateHashedOTP()
	if err != nil {
		return err
	}
	expiry := time.Now().Add(s.otpTTL)

	if channel == ChannelEmail {
		user.EmailOTP = &hashed
		user.EmailExpiresAt = &expiry
	} else {
		user.PhoneOTP = &hashed
		user.PhoneExpiresAt = &expiry
	}
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}

	if channel == ChannelEmail {
		if err := s.mailer.SendOTPEmail(ctx, *user.Email, plain); err != nil {
			return fmt.Errorf("failed to send otp email: %w", err)
		}
		return nil
	}
	if err := s.mailer.SendSMS(ctx, *user.Phone, plain); err != nil {
		return fmt.Errorf("failed to send otp sms: %w", err)
	}
	return nil
}

// Verify consumes a pending code for the channel and marks it verified.
// Failures leave the stored code untouched.
func (s *VerificationService) Verify(ctx context.Context, userID uuid.UUID, channel Channel, code string) error {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}

	var pending *string
	var expiresAt *time.Time
	switch channel {
	case ChannelEmail:
		pending, expiresAt = user.EmailOTP, user.EmailExpiresAt
	case ChannelPhone:
		pending, expiresAt = user.PhoneOTP, user.PhoneExpiresAt
	default:
		return fmt.Errorf("unknown verification channel %q", channel)
	}

	if pending == nil {
		return ErrNoPendingOTP
	}
	if expiresAt == nil || time.Now().After(*expiresAt) {
		return ErrOTPExpired
	}
	ok, err := crypto.Verify(code, *pending)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOTPMismatch
	}

	if channel == ChannelEmail {
		user.EmailVerified = true
		user.EmailOTP = nil
		user.EmailExpiresAt = nil
	} else {
		user.PhoneVerified = true
		user.PhoneOTP = nil
		user.PhoneExpiresAt = nil
	}
	return s.users.Save(ctx, user)
}

func (s *VerificationService) findUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
