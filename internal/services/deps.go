package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/mertakdeniz/lunamarket-backend/internal/events"
	"github.com/mertakdeniz/lunamarket-backend/internal/google"
	"github.com/mertakdeniz/lunamarket-backend/internal/models"
)

// Store interfaces are declared here on the consumer side; the GORM
// implementations live in internal/repository and are wired up in main.
// Lookups return repository.ErrNotFound when nothing matches.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	FindByResetToken(ctx context.Context, resetToken string) (*models.User, error)
}

type RefreshTokenStore interface {
	Replace(ctx context.Context, userID uuid.UUID, record *models.RefreshToken) error
	FindByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	DeleteForUser(ctx context.Context, userID uuid.UUID) error
}

type ProfileStore interface {
	Create(ctx context.Context, profile *models.Profile) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

type Mailer interface {
	SendOTPEmail(ctx context.Context, email, code string) error
	SendPasswordResetEmail(ctx context.Context, email, resetToken string) error
	SendSMS(ctx context.Context, phone, code string) error
}

type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*google.Profile, error)
}

type EventPublisher interface {
	PublishAccountCreated(ctx context.Context, ev events.AccountCreated) error
}
