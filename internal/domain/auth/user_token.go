package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserToken is one login session: the last issued access token and the
// refresh token that can rotate it.
type UserToken struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;index;not null;column:user_id" json:"user_id"`
	AccessToken  string         `gorm:"uniqueIndex;not null;column:access_token" json:"access_token"`
	RefreshToken string         `gorm:"uniqueIndex;not null;column:refresh_token" json:"refresh_token"`
	ExpiresAt    time.Time      `gorm:"not null;column:expires_at" json:"expires_at"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (UserToken) TableName() string { return "user_token" }

func (t *UserToken) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
