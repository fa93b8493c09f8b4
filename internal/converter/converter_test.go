package converter

import (
	"testing"
	"time"

	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/queue"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestPatientLabel(t *testing.T) {
	tests := []struct {
		name string
		user *entity.User
		want string
	}{
		{"nil user", nil, "Patient"},
		{"patient name", &entity.User{Email: "a@x.io", Patient: &entity.Patient{Name: "Ana Lopez"}}, "Ana Lopez"},
		{"patient name is email", &entity.User{
			Email:   "a@x.io",
			Patient: &entity.Patient{Name: "a@x.io"},
			Profile: &entity.UserProfile{DisplayName: "Ana"},
		}, "Ana"},
		{"full name fallback", &entity.User{
			Email:     "a@x.io",
			FirstName: "Ana",
			LastName:  "Lopez",
			Profile:   &entity.UserProfile{DisplayName: "a@x.io"},
		}, "Ana Lopez"},
		{"only email", &entity.User{Email: "a@x.io", Profile: &entity.UserProfile{DisplayName: "a@x.io"}}, "Patient"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PatientLabel(tt.user); got != tt.want {
				t.Errorf("PatientLabel = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQueueToResponses_MarksViewer(t *testing.T) {
	me := uuid.New()
	other := uuid.New()
	at := time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)

	entries := []queue.Entry{
		{Position: 1, Appointment: entity.Appointment{ID: 1, UserID: other, ScheduledAt: at, User: &entity.User{FirstName: "Bob"}}},
		{Position: 2, Appointment: entity.Appointment{ID: 2, UserID: me, ScheduledAt: at.Add(time.Hour), Ticket: &entity.QueueTicket{TicketNumber: 4}}},
	}

	got := QueueToResponses(entries, &me, time.UTC)
	if got[0].Label != "Bob" || got[0].IsMine {
		t.Errorf("first entry = %+v", got[0])
	}
	if got[1].Label != "You" || !got[1].IsMine || got[1].TicketNumber != 4 || got[1].Position != 2 {
		t.Errorf("second entry = %+v", got[1])
	}

	agentView := QueueToResponses(entries, nil, time.UTC)
	if agentView[1].Label != "Patient" {
		t.Errorf("agent view label = %q", agentView[1].Label)
	}
}

func TestAppointmentToResponse_LabelInLocation(t *testing.T) {
	paris := time.FixedZone("CEST", 2*60*60)
	a := &entity.Appointment{
		ID:          3,
		ScheduledAt: time.Date(2026, time.October, 19, 7, 0, 0, 0, time.UTC),
		Status:      entity.AppointmentStatusPending,
		Priority:    entity.PriorityNormal,
	}
	got := AppointmentToResponse(a, paris)
	if got.Label != "Monday 19/10/2026 at 09:00" {
		t.Errorf("label = %q", got.Label)
	}
}

func TestPatientToResponse_Balance(t *testing.T) {
	p := &entity.Patient{ID: 1, Name: "Ana", Account: &entity.Account{Balance: decimal.Zero}}
	if got := PatientToResponse(p).Balance; got != "0.00" {
		t.Errorf("balance = %q", got)
	}
	p.Account.Balance = decimal.RequireFromString("12.5")
	if got := PatientToResponse(p).Balance; got != "12.50" {
		t.Errorf("balance = %q", got)
	}
}
