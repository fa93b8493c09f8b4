package dto

import (
	"time"

	"github.com/google/uuid"
)

type UpdateProfileRequest struct {
	Role        string `json:"role" validate:"required,oneof=admin agent user"`
	DisplayName string `json:"display_name" validate:"omitempty,max=150"`
}

type ProfileResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	Role        string    `json:"role"`
	DisplayName string    `json:"display_name"`
	HasPatient  bool      `json:"has_patient"`
}

type PatientResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}
