// Package queue ranks pending appointments into the waiting queue.
package queue

import (
	"sort"

	"clinic-booking/internal/domain/entity"

	"github.com/google/uuid"
)

// Entry is an appointment with its 1-based queue position.
type Entry struct {
	Appointment entity.Appointment
	Position    int
}

// Less orders urgent before normal, then by scheduled date, then by creation.
// The id breaks remaining ties so the order is total.
func Less(a, b *entity.Appointment) bool {
	if a.IsUrgent() != b.IsUrgent() {
		return a.IsUrgent()
	}
	if !a.ScheduledAt.Equal(b.ScheduledAt) {
		return a.ScheduledAt.Before(b.ScheduledAt)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// Pending keeps only the appointments that are still waiting.
func Pending(items []entity.Appointment) []entity.Appointment {
	out := make([]entity.Appointment, 0, len(items))
	for _, a := range items {
		if a.IsPending() {
			out = append(out, a)
		}
	}
	return out
}

// Ordered returns the pending appointments in queue order with their positions.
// The input slice is not modified.
func Ordered(items []entity.Appointment) []Entry {
	pending := Pending(items)
	sort.SliceStable(pending, func(i, j int) bool {
		return Less(&pending[i], &pending[j])
	})

	entries := make([]Entry, len(pending))
	for i := range pending {
		entries[i] = Entry{Appointment: pending[i], Position: i + 1}
	}
	return entries
}

// Ranks maps appointment id to queue position, computed with a single sort.
func Ranks(items []entity.Appointment) map[int64]int {
	entries := Ordered(items)
	ranks := make(map[int64]int, len(entries))
	for _, e := range entries {
		ranks[e.Appointment.ID] = e.Position
	}
	return ranks
}

// Next returns the first appointment in the queue. When owner is set only that
// user's appointments are considered. Nil means the queue is empty.
func Next(items []entity.Appointment, owner *uuid.UUID) *entity.Appointment {
	var best *entity.Appointment
	for i := range items {
		a := &items[i]
		if !a.IsPending() {
			continue
		}
		if owner != nil && a.UserID != *owner {
			continue
		}
		if best == nil || Less(a, best) {
			best = a
		}
	}
	if best == nil {
		return nil
	}
	next := *best
	return &next
}

// OwnerScope is the owner filter applied to self-service queue views:
// admins see the global queue, everybody else only their own entries.
func OwnerScope(actor entity.Actor) *uuid.UUID {
	if actor.Role == entity.RoleAdmin {
		return nil
	}
	id := actor.UserID
	return &id
}
