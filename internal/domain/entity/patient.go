package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Patient is created for every profile with the user role.
type Patient struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Name      string    `gorm:"type:varchar(150);not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Account *Account `gorm:"foreignKey:PatientID" json:"account,omitempty"`
}

func (Patient) TableName() string {
	return "patients"
}

// Account is the patient balance, one per patient.
type Account struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	PatientID int64           `gorm:"uniqueIndex;not null" json:"patient_id"`
	Balance   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"balance"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}
