package usecase

import (
	"context"
	"errors"
	"testing"

	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/policy"
)

func TestAuditLogUsecase(t *testing.T) {
	s := newMemStore()
	admin := s.addUser("admin@example.com", entity.RoleAdmin)
	audit := newAudit(s)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := audit.LogCreate(ctx, nil, &admin.ID, entity.AuditActionServiceCreate, "service", idString(int64(i)), nil); err != nil {
			t.Fatal(err)
		}
	}

	uc := NewAuditLogUsecase(fakeTx{}, quietLogger(), mockAuditRepo{s})
	list, err := uc.GetAllAuditLogs(ctx, actorOf(admin, entity.RoleAdmin), 1, 2)
	if err != nil {
		t.Fatalf("GetAllAuditLogs: %v", err)
	}
	if len(list.Logs) != 2 || list.Total != 3 {
		t.Errorf("page = %d logs of %d", len(list.Logs), list.Total)
	}

	one, err := uc.GetAuditLog(ctx, actorOf(admin, entity.RoleAdmin), list.Logs[0].ID)
	if err != nil || one.Action != entity.AuditActionServiceCreate {
		t.Errorf("GetAuditLog = %+v, %v", one, err)
	}
	if _, err := uc.GetAuditLog(ctx, actorOf(admin, entity.RoleAdmin), 9999); !errors.Is(err, ErrAuditLogNotFound) {
		t.Errorf("expected ErrAuditLogNotFound, got %v", err)
	}
	if _, err := uc.GetAllAuditLogs(ctx, actorOf(admin, entity.RoleAgent), 1, 10); !errors.Is(err, policy.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestPatientUsecase_GetMyPatient(t *testing.T) {
	s := newMemStore()
	alice := s.addUser("alice@example.com", entity.RoleUser)
	agent := s.addUser("agent@example.com", entity.RoleAgent)
	uc := NewPatientUsecase(fakeTx{}, quietLogger(), mockPatientRepo{s})

	resp, err := uc.GetMyPatient(context.Background(), actorOf(alice, entity.RoleUser))
	if err != nil {
		t.Fatalf("GetMyPatient: %v", err)
	}
	if resp.Name != "alice" || resp.Balance != "0.00" {
		t.Errorf("patient = %+v", resp)
	}

	if _, err := uc.GetMyPatient(context.Background(), actorOf(agent, entity.RoleAgent)); !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("expected ErrPatientNotFound, got %v", err)
	}
}
