package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser    = "user"
	RoleManager = "manager"
	RoleAdmin   = "admin"

	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusBlocked  = "blocked"
	StatusDeleted  = "deleted"
)

// User is the account record. Email and PasswordHash are nullable because
// Google-only accounts may carry neither; at least one of
// PasswordHash/GoogleID is always set.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        *string   `gorm:"size:255;uniqueIndex" json:"email"`
	PasswordHash *string   `gorm:"size:255" json:"-"`
	GoogleID     *string   `gorm:"size:255;uniqueIndex" json:"-"`
	Name         string    `gorm:"size:255" json:"name"`
	AvatarURL    string    `gorm:"size:512" json:"avatar_url"`
	Phone        *string   `gorm:"size:32" json:"phone"`
	Role         string    `gorm:"size:20;default:'user'" json:"role"`
	Status       string    `gorm:"size:20;default:'active'" json:"-"`

	// TokenVersion is embedded in every access token; bumping it
	// invalidates all outstanding access tokens without a blacklist.
	TokenVersion int `gorm:"not null;default:0" json:"-"`

	EmailVerified bool `gorm:"not null;default:false" json:"email_verified"`
	PhoneVerified bool `gorm:"not null;default:false" json:"phone_verified"`

	TwoFactorEnabled   bool       `gorm:"not null;default:false" json:"two_factor_enabled"`
	TwoFactorOTP       *string    `gorm:"size:255" json:"-"`
	TwoFactorExpiresAt *time.Time `json:"-"`

	EmailOTP       *string    `gorm:"size:255" json:"-"`
	EmailExpiresAt *time.Time `json:"-"`
	PhoneOTP       *string    `gorm:"size:255" json:"-"`
	PhoneExpiresAt *time.Time `json:"-"`

	PasswordResetToken     *string    `gorm:"size:255;index" json:"-"`
	PasswordResetExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Active reports whether the account may start a session.
func (u *User) Active() bool {
	return u.Status == StatusActive
}
