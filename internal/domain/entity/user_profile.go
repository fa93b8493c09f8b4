package entity

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile holds the role and display name of an identity.
type UserProfile struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Role        Role      `gorm:"type:varchar(10);not null;default:'user';index" json:"role"`
	DisplayName string    `gorm:"type:varchar(150)" json:"display_name"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
