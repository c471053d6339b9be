package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is the single active refresh slot for a user. Only the
// scrypt hash of the opaque tail of the composite token is stored, so a
// database read leak cannot be turned into a usable token. Issuing a new
// token deletes every prior row for the user.
type RefreshToken struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	TokenHash string     `gorm:"uniqueIndex;not null;size:64" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	PurgeAt   *time.Time `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}
