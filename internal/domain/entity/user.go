package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the authentication identity. Its profile, and for ordinary users the
// patient record, are provisioned right after creation.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"type:text;not null" json:"-"`
	FirstName string    `gorm:"type:varchar(150)" json:"first_name"`
	LastName  string    `gorm:"type:varchar(150)" json:"last_name"`
	IsStaff   bool      `gorm:"not null" json:"is_staff"`
	IsActive  bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Profile *UserProfile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	Patient *Patient     `gorm:"foreignKey:UserID" json:"patient,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// FullName joins first and last name, trimmed.
func (u *User) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

// DefaultDisplayName is the profile name given at provisioning: the full name,
// or the email when no name was entered.
func (u *User) DefaultDisplayName() string {
	if name := u.FullName(); name != "" {
		return name
	}
	return u.Email
}
