package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/mertakdeniz/lunamarket-backend/internal/events"
	"github.com/mertakdeniz/lunamarket-backend/internal/models"
	"github.com/mertakdeniz/lunamarket-backend/internal/repository"
)

// ProfileService creates and serves marketplace profiles. Its
// HandleAccountCreated method is subscribed to the event dispatcher in
// main, which replaces the hidden post-registration hook with an explicit
// wiring step.
type ProfileService struct {
	profiles ProfileStore
}

func NewProfileService(profiles ProfileStore) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// HandleAccountCreated provisions an empty profile for a new account.
func (s *ProfileService) HandleAccountCreated(ctx context.Context, ev events.AccountCreated) error {
	displayName := ev.Name
	if displayName == "" && ev.Email != "" {
		displayName = strings.Split(ev.Email, "@")[0]
	}
	return s.profiles.Create(ctx, &models.Profile{
		ID:          uuid.New(),
		UserID:      ev.UserID,
		DisplayName: displayName,
	})
}

func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}
