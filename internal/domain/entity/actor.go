package entity

import "github.com/google/uuid"

// Actor is the authenticated identity performing an operation.
type Actor struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}
