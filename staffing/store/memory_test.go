package store

import (
	"context"
	"testing"
	"time"

	"github.com/warp/staffing-engine/staffing"
)

func TestSoftDeleteSlot_TouchesAudit(t *testing.T) {
	// GIVEN: A slot created in the past
	m := NewMemory()
	ctx := context.Background()
	created := time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC)

	slot := &staffing.PlannedTeamSlot{
		ID:           "slot-1",
		ProjectID:    "proj-1",
		RoleID:       "role-dev",
		PeriodMonths: 6,
		VersionToken: "v1",
	}
	slot.Touch("creator", created)
	if err := m.InsertSlot(ctx, slot); err != nil {
		t.Fatalf("inserting slot: %v", err)
	}

	// WHEN: Soft-deleting it
	if err := m.SoftDeleteSlot(ctx, slot.ID, "admin"); err != nil {
		t.Fatalf("deleting slot: %v", err)
	}

	// THEN: Reads filter it out, and the retained row records who deleted
	// it and when
	loaded, err := m.GetSlot(ctx, slot.ID)
	if err != nil {
		t.Fatalf("getting slot: %v", err)
	}
	if loaded != nil {
		t.Error("expected deleted slot to be filtered from reads")
	}

	stored := m.slots[slot.ID]
	if !stored.Deleted {
		t.Error("expected the stored row flagged deleted")
	}
	if stored.ModifiedBy != "admin" {
		t.Errorf("expected modifier admin, got %q", stored.ModifiedBy)
	}
	if !stored.ModifiedAt.After(created) {
		t.Errorf("expected modified-at advanced past %s, got %s", created, stored.ModifiedAt)
	}
	if stored.CreatedBy != "creator" || !stored.CreatedAt.Equal(created) {
		t.Errorf("expected creation audit untouched, got %q / %s", stored.CreatedBy, stored.CreatedAt)
	}
}

func TestSoftDeleteAssignment_TouchesAudit(t *testing.T) {
	// GIVEN: An assignment created in the past
	m := NewMemory()
	ctx := context.Background()
	created := time.Date(2026, time.February, 1, 9, 0, 0, 0, time.UTC)

	a := &staffing.ActualAssignment{
		ID:                "a-1",
		ProjectID:         "proj-1",
		EmployeeID:        "emp-1",
		StartDate:         staffing.NewDate(2026, time.February, 1),
		AllocationPercent: staffing.Dec(50),
		Status:            staffing.StatusActive,
		VersionToken:      "v1",
	}
	a.Touch("creator", created)
	if err := m.InsertAssignment(ctx, a); err != nil {
		t.Fatalf("inserting assignment: %v", err)
	}

	// WHEN: Soft-deleting it
	if err := m.SoftDeleteAssignment(ctx, a.ID, "admin"); err != nil {
		t.Fatalf("deleting assignment: %v", err)
	}

	// THEN: The retained row carries the deletion audit
	stored := m.assignments[a.ID]
	if !stored.Deleted {
		t.Error("expected the stored row flagged deleted")
	}
	if stored.ModifiedBy != "admin" {
		t.Errorf("expected modifier admin, got %q", stored.ModifiedBy)
	}
	if !stored.ModifiedAt.After(created) {
		t.Errorf("expected modified-at advanced past %s, got %s", created, stored.ModifiedAt)
	}
}
