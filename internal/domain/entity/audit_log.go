package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog represents a system audit trail entry
type AuditLog struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uuid.UUID     `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action    string         `gorm:"type:varchar(100);not null;index" json:"action"`
	Metadata  datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Common audit actions
const (
	AuditActionUserLogin           = "user.login"
	AuditActionUserLogout          = "user.logout"
	AuditActionUserRegister        = "user.register"
	AuditActionAppointmentCreate   = "appointment.create"
	AuditActionAppointmentConfirm  = "appointment.confirm"
	AuditActionAppointmentDone     = "appointment.done"
	AuditActionAppointmentCancel   = "appointment.cancel"
	AuditActionAppointmentPriority = "appointment.priority"
	AuditActionClinicHoursCreate   = "clinic_hours.create"
	AuditActionClinicHoursUpdate   = "clinic_hours.update"
	AuditActionClinicHoursDelete   = "clinic_hours.delete"
	AuditActionClosureCreate       = "closure_day.create"
	AuditActionClosureDelete       = "closure_day.delete"
	AuditActionServiceCreate       = "service.create"
	AuditActionServiceUpdate       = "service.update"
	AuditActionServiceDelete       = "service.delete"
	AuditActionProfileUpdate       = "profile.update"
)
