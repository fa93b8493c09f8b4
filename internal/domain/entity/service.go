package entity

import "time"

// DefaultServiceDuration is used when a service is created without a duration.
const DefaultServiceDuration = 30

// Service is a medical service offered by the clinic (consultation, radiology...).
type Service struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string    `gorm:"type:varchar(150);not null" json:"name"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	Description     string    `gorm:"type:text" json:"description,omitempty"`
	ImageURL        string    `gorm:"type:text" json:"image_url,omitempty"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Service) TableName() string {
	return "services"
}
