package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mertakdeniz/lunamarket-backend/internal/events"
	"github.com/mertakdeniz/lunamarket-backend/internal/google"
	"github.com/mertakdeniz/lunamarket-backend/internal/models"
	"github.com/mertakdeniz/lunamarket-backend/internal/repository"
)

// fakeUserStore keeps users in memory and hands out copies, so a service
// mutation only becomes visible after Save, same as with a real row store.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User

	createCalls int
	saveCalls   int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserStore) Save(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.findWhere(func(u *models.User) bool {
		return u.Email != nil && *u.Email == email
	})
}

func (f *fakeUserStore) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return f.findWhere(func(u *models.User) bool {
		return u.GoogleID != nil && *u.GoogleID == googleID
	})
}

func (f *fakeUserStore) FindByResetToken(ctx context.Context, resetToken string) (*models.User, error) {
	return f.findWhere(func(u *models.User) bool {
		return u.PasswordResetToken != nil && *u.PasswordResetToken == resetToken
	})
}

func (f *fakeUserStore) findWhere(match func(*models.User) bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

// stored returns the persisted state of a user, bypassing copies.
func (f *fakeUserStore) stored(id uuid.UUID) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id]
}

func (f *fakeUserStore) delete(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
}

// fakeTokenStore implements the single-slot refresh semantics: Replace
// drops every prior row for the user before inserting.
type fakeTokenStore struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*models.RefreshToken

	replaceCalls int
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{slots: make(map[uuid.UUID]*models.RefreshToken)}
}

func (f *fakeTokenStore) Replace(ctx context.Context, userID uuid.UUID, record *models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaceCalls++
	cp := *record
	f.slots[userID] = &cp
	return nil
}

func (f *fakeTokenStore) FindByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.slots {
		if rec.TokenHash == tokenHash {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeTokenStore) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.slots, userID)
	return nil
}

type fakeProfileStore struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*models.Profile
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{profiles: make(map[uuid.UUID]*models.Profile)}
}

func (f *fakeProfileStore) Create(ctx context.Context, profile *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *profile
	f.profiles[profile.UserID] = &cp
	return nil
}

func (f *fakeProfileStore) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// fakeMailer records deliveries instead of sending them.
type fakeMailer struct {
	mu          sync.Mutex
	otpEmails   []sentMessage
	resetEmails []sentMessage
	smsMessages []sentMessage
	sendErr     error
}

type sentMessage struct {
	to   string
	body string
}

func (f *fakeMailer) SendOTPEmail(ctx context.Context, email, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.otpEmails = append(f.otpEmails, sentMessage{to: email, body: code})
	return nil
}

func (f *fakeMailer) SendPasswordResetEmail(ctx context.Context, email, resetToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.resetEmails = append(f.resetEmails, sentMessage{to: email, body: resetToken})
	return nil
}

func (f *fakeMailer) SendSMS(ctx context.Context, phone, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.smsMessages = append(f.smsMessages, sentMessage{to: phone, body: code})
	return nil
}

func (f *fakeMailer) lastOTP() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.otpEmails) == 0 {
		return ""
	}
	return f.otpEmails[len(f.otpEmails)-1].body
}

func (f *fakeMailer) lastSMS() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.smsMessages) == 0 {
		return ""
	}
	return f.smsMessages[len(f.smsMessages)-1].body
}

// stubGoogleVerifier returns a canned profile or error.
type stubGoogleVerifier struct {
	profile *google.Profile
	err     error
}

func (s *stubGoogleVerifier) Verify(ctx context.Context, idToken string) (*google.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.profile, nil
}

// recordingPublisher collects published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.AccountCreated
}

func (r *recordingPublisher) PublishAccountCreated(ctx context.Context, ev events.AccountCreated) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}
