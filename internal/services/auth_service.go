package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mertakdeniz/lunamarket-backend/internal/crypto"
	"github.com/mertakdeniz/lunamarket-backend/internal/events"
	"github.com/mertakdeniz/lunamarket-backend/internal/models"
	"github.com/mertakdeniz/lunamarket-backend/internal/repository"
	"github.com/mertakdeniz/lunamarket-backend/internal/token"
)

// TokenPair is what every successful authentication hands back to the
// client. The refresh token is the composite 4-segment form and must be
// resent verbatim.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService owns the session lifecycle: registration, password and
// Google login, refresh-token rotation, and logout.
type AuthService struct {
	users      UserStore
	tokens     RefreshTokenStore
	codec      *token.Codec
	google     GoogleVerifier
	publisher  EventPublisher
	refreshTTL time.Duration
}

func NewAuthService(users UserStore, tokens RefreshTokenStore, codec *token.Codec, google GoogleVerifier, publisher EventPublisher, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		codec:      codec,
		google:     google,
		publisher:  publisher,
		refreshTTL: refreshTTL,
	}
}

// Register creates a password account and signs it in. Email comparison
// and storage are lowercase.
func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 8 {
		return nil, nil, fmt.Errorf("%w: email required and password must be at least 8 characters", ErrInvalidInput)
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		if existing.GoogleID != nil {
			return nil, nil, ErrEmailTakenGoogle
		}
		return nil, nil, ErrEmailTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, err
	}

	hash, err := crypto.Hash(password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        &email,
		PasswordHash: &hash,
		Role:         models.RoleUser,
		Status:       models.StatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	s.announceAccount(ctx, user)

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// VerifyPassword is the credential gate called before Login. It does not
// issue tokens.
func (s *AuthService) VerifyPassword(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if user.PasswordHash == nil {
		if user.GoogleID != nil {
			return nil, ErrWrongProvider
		}
		return nil, ErrInvalidCredentials
	}
	ok, err := crypto.Verify(password, *user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login issues a fresh token pair for an already-verified account. The
// old refresh row is superseded inside issuance.
func (s *AuthService) Login(ctx context.Context, user *models.User) (*TokenPair, error) {
	if !user.Active() {
		return nil, ErrAccountInactive
	}
	return s.issuePair(ctx, user)
}

// GoogleSignIn verifies the Google ID token, then finds the account by
// Google subject id or creates one.
func (s *AuthService) GoogleSignIn(ctx context.Context, idToken string) (*models.User, *TokenPair, error) {
	profile, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidGoogleToken, err)
	}

	user, err := s.users.FindByGoogleID(ctx, profile.Sub)
	if errors.Is(err, repository.ErrNotFound) {
		user = &models.User{
			ID:        uuid.New(),
			GoogleID:  &profile.Sub,
			Name:      profile.Name,
			AvatarURL: profile.Picture,
			Role:      models.RoleUser,
			Status:    models.StatusActive,
		}
		if profile.Email != "" {
			email := strings.ToLower(profile.Email)
			user.Email = &email
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, nil, err
		}
		s.announceAccount(ctx, user)
	} else if err != nil {
		return nil, nil, err
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh rotates a composite refresh token: the presented token is
// validated in stages, then a brand-new pair is issued, which supersedes
// the old row. A second concurrent refresh with the same stale token
// fails with ErrNoValidRefreshToken.
func (s *AuthService) Refresh(ctx context.Context, composite string) (*models.User, *TokenPair, error) {
	record, err := s.validateRefresh(ctx, composite)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.FindByID(ctx, record.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrUserNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Logout drops the account's refresh slot. Outstanding access tokens stay
// valid until they expire.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.tokens.DeleteForUser(ctx, userID)
}

// LogoutAll bumps the token version, invalidating every outstanding
// access token, and drops the refresh slot.
func (s *AuthService) LogoutAll(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	user.TokenVersion++
	if err := s.users.Save(ctx, user); err != nil {
		return err
	}
	return s.tokens.DeleteForUser(ctx, userID)
}

// validateRefresh runs the staged checks on a composite token: shape,
// JWT signature and expiry, then the opaque-id hash lookup. The JWT
// subject must match the row's owner, and the stored absolute expiry is
// cross-checked as well, since it is set independently of the JWT expiry.
func (s *AuthService) validateRefresh(ctx context.Context, composite string) (*models.RefreshToken, error) {
	jwtPart, opaqueID, err := token.SplitComposite(composite)
	if err != nil {
		return nil, ErrMalformedRefreshToken
	}
	sub, err := s.codec.VerifyRefreshJWT(jwtPart)
	if err != nil {
		return nil, ErrRefreshTokenInvalid
	}
	hash, err := s.codec.HashOpaqueID(opaqueID)
	if err != nil {
		return nil, err
	}
	record, err := s.tokens.FindByHash(ctx, hash)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoValidRefreshToken
	}
	if err != nil {
		return nil, err
	}
	if record.UserID != sub {
		return nil, ErrNoValidRefreshToken
	}
	if time.Now().After(record.ExpiresAt) {
		return nil, ErrNoValidRefreshToken
	}
	return record, nil
}

func (s *AuthService) issuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	access, err := s.codec.SignAccess(user)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	composite, opaqueID, err := s.codec.NewComposite(user.ID)
	if err != nil {
		return nil, err
	}
	hash, err := s.codec.HashOpaqueID(opaqueID)
	if err != nil {
		return nil, err
	}
	record := &models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(s.refreshTTL),
	}
	if err := s.tokens.Replace(ctx, user.ID, record); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: composite}, nil
}

// announceAccount publishes AccountCreated. Subscriber failures are
// logged, never surfaced: the account exists either way.
func (s *AuthService) announceAccount(ctx context.Context, user *models.User) {
	if s.publisher == nil {
		return
	}
	email := ""
	if user.Email != nil {
		email = *user.Email
	}
	ev := events.AccountCreated{
		UserID:    user.ID,
		Email:     email,
		Name:      user.Name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishAccountCreated(ctx, ev); err != nil {
		slog.Error("account created event failed", "user_id", user.ID, "error", err)
	}
}
