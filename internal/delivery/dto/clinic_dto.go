package dto

import "time"

// Request DTOs

type ClinicHoursRequest struct {
	Weekday  *int   `json:"weekday" validate:"required,gte=0,lte=6"`
	OpensAt  string `json:"opens_at" validate:"required,datetime=15:04"`
	ClosesAt string `json:"closes_at" validate:"required,datetime=15:04"`
	Active   *bool  `json:"active"`
}

type ClosureDayRequest struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Reason string `json:"reason" validate:"omitempty,max=200"`
}

type ServiceRequest struct {
	Name            string `json:"name" validate:"required,max=150"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,gte=1,lte=480"`
	Description     string `json:"description" validate:"omitempty,max=5000"`
	ImageURL        string `json:"image_url" validate:"omitempty,url"`
}

// Response DTOs

type ClinicHoursResponse struct {
	ID          int64  `json:"id"`
	Weekday     int    `json:"weekday"`
	WeekdayName string `json:"weekday_name"`
	OpensAt     string `json:"opens_at"`
	ClosesAt    string `json:"closes_at"`
	Active      bool   `json:"active"`
}

type ClosureDayResponse struct {
	ID     int64  `json:"id"`
	Date   string `json:"date"`
	Reason string `json:"reason,omitempty"`
}

type ServiceResponse struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	DurationMinutes int       `json:"duration_minutes"`
	Description     string    `json:"description,omitempty"`
	ImageURL        string    `json:"image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type ServiceListResponse struct {
	Services []ServiceResponse `json:"services"`
	Page     int               `json:"-"`
	Limit    int               `json:"-"`
	Total    int64             `json:"-"`
}
