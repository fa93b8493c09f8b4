package dto

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Response DTOs

type AuditLogResponse struct {
	ID        int64          `json:"id"`
	UserID    *uuid.UUID     `json:"user_id,omitempty"`
	UserEmail string         `json:"user_email,omitempty"`
	Action    string         `json:"action"`
	Metadata  datatypes.JSON `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Page  int                `json:"-"`
	Limit int                `json:"-"`
	Total int64              `json:"-"`
}
