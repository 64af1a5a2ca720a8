/*
planner.go - Slot Planner service

PURPOSE:
  Owns PlannedTeamSlot entities: creates and updates planned capacity for a
  project role, validates slot duration against the project's expected
  working period, derives the budget cost, and answers availability and
  remaining-allocation queries for the Assignment Engine.

VALIDATION STYLE:
  The planner raises the first-detected failure (the straightforward path).
  Missing entities surface as typed not-found errors before any business
  rule is evaluated. Contrast with the Assignment Engine, which accumulates
  findings.

CONCURRENCY:
  Updates are guarded by the slot's version token. A mismatch fails the
  whole operation with ErrConcurrencyConflict and no partial write; the
  caller must re-read and retry. There is no merge.

SEE ALSO:
  - costing.go: BudgetCost formula
  - engine.go: Consumes RemainingAllocationSegments for the budget check
*/
package staffing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SlotPlanner plans labor capacity per project role.
type SlotPlanner struct {
	Store Stores
	Clock func() Date
}

// NewSlotPlanner wires a planner over the given stores.
func NewSlotPlanner(store Stores) *SlotPlanner {
	return &SlotPlanner{Store: store, Clock: Today}
}

// =============================================================================
// COMMANDS
// =============================================================================

// SlotInput carries the plannable fields shared by create and update.
type SlotInput struct {
	PeriodMonths             int
	AllocationPercent        decimal.Decimal
	PlannedSalary            decimal.Decimal
	PlannedIncentive         decimal.Decimal
	PlannedCommissionPercent decimal.Decimal
	PlannedTickets           decimal.Decimal
	PlannedHoteling          decimal.Decimal
	PlannedOthers            decimal.Decimal
}

// CreateSlotCommand plans new capacity against a project role.
type CreateSlotCommand struct {
	ProjectID ProjectID
	RoleID    RoleID
	SlotInput
	Actor string
}

// UpdateSlotCommand re-plans an existing slot. ExpectedVersion is the token
// read at load time.
type UpdateSlotCommand struct {
	SlotID SlotID
	RoleID RoleID
	SlotInput
	ExpectedVersion string
	Actor           string
}

// =============================================================================
// CREATE / UPDATE
// =============================================================================

// CreateSlot validates the project and role, checks the duration cap,
// derives the budget cost, and persists the slot.
func (sp *SlotPlanner) CreateSlot(ctx context.Context, cmd CreateSlotCommand) (*PlannedTeamSlot, error) {
	if cmd.Actor == "" {
		return nil, ErrActorRequired
	}

	project, err := sp.Store.GetProject(ctx, cmd.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	role, err := sp.Store.GetRole(ctx, cmd.RoleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, ErrRoleNotFound
	}

	if cmd.PeriodMonths <= 0 || cmd.PeriodMonths > project.ExpectedWorkingPeriodMonths {
		return nil, ErrInvalidPeriod
	}
	if !cmd.AllocationPercent.IsPositive() || cmd.AllocationPercent.GreaterThan(hundred) {
		return nil, ErrInvalidAllocation
	}

	now := sp.Clock().Time
	slot := &PlannedTeamSlot{
		ID:                       SlotID(uuid.NewString()),
		ProjectID:                cmd.ProjectID,
		RoleID:                   cmd.RoleID,
		PeriodMonths:             cmd.PeriodMonths,
		AllocationPercent:        cmd.AllocationPercent,
		PlannedSalary:            cmd.PlannedSalary,
		PlannedIncentive:         cmd.PlannedIncentive,
		PlannedCommissionPercent: cmd.PlannedCommissionPercent,
		PlannedTickets:           cmd.PlannedTickets,
		PlannedHoteling:          cmd.PlannedHoteling,
		PlannedOthers:            cmd.PlannedOthers,
		VersionToken:             uuid.NewString(),
	}
	slot.ComputedBudgetCost = BudgetCost(slot, project.ProjectPrice)
	slot.Touch(cmd.Actor, now)

	if err := sp.Store.InsertSlot(ctx, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

// UpdateSlot re-plans the slot and re-derives its budget cost and
// IsAssigned flag. Fails with ErrConcurrencyConflict on a stale token.
func (sp *SlotPlanner) UpdateSlot(ctx context.Context, cmd UpdateSlotCommand) (*PlannedTeamSlot, error) {
	if cmd.Actor == "" {
		return nil, ErrActorRequired
	}

	slot, err := sp.Store.GetSlot(ctx, cmd.SlotID)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}

	project, err := sp.Store.GetProject(ctx, slot.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	if cmd.RoleID != "" {
		role, err := sp.Store.GetRole(ctx, cmd.RoleID)
		if err != nil {
			return nil, err
		}
		if role == nil {
			return nil, ErrRoleNotFound
		}
		slot.RoleID = cmd.RoleID
	}

	if cmd.PeriodMonths <= 0 || cmd.PeriodMonths > project.ExpectedWorkingPeriodMonths {
		return nil, ErrInvalidPeriod
	}
	if !cmd.AllocationPercent.IsPositive() || cmd.AllocationPercent.GreaterThan(hundred) {
		return nil, ErrInvalidAllocation
	}

	slot.PeriodMonths = cmd.PeriodMonths
	slot.AllocationPercent = cmd.AllocationPercent
	slot.PlannedSalary = cmd.PlannedSalary
	slot.PlannedIncentive = cmd.PlannedIncentive
	slot.PlannedCommissionPercent = cmd.PlannedCommissionPercent
	slot.PlannedTickets = cmd.PlannedTickets
	slot.PlannedHoteling = cmd.PlannedHoteling
	slot.PlannedOthers = cmd.PlannedOthers
	slot.ComputedBudgetCost = BudgetCost(slot, project.ProjectPrice)

	assigned, err := sp.slotHasCountingAssignments(ctx, slot.ID)
	if err != nil {
		return nil, err
	}
	slot.IsAssigned = assigned
	slot.Touch(cmd.Actor, sp.Clock().Time)

	if err := sp.Store.UpdateSlot(ctx, slot, cmd.ExpectedVersion); err != nil {
		return nil, err
	}
	return slot, nil
}

// =============================================================================
// QUERIES
// =============================================================================

// GetSlotByID returns a slot or ErrSlotNotFound.
func (sp *SlotPlanner) GetSlotByID(ctx context.Context, id SlotID) (*PlannedTeamSlot, error) {
	slot, err := sp.Store.GetSlot(ctx, id)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, ErrSlotNotFound
	}
	return slot, nil
}

// GetSlotsByProject lists a project's slots.
func (sp *SlotPlanner) GetSlotsByProject(ctx context.Context, projectID ProjectID) ([]PlannedTeamSlot, error) {
	if err := sp.requireProject(ctx, projectID); err != nil {
		return nil, err
	}
	return sp.Store.ListSlotsByProject(ctx, projectID)
}

// GetAvailableSlots returns slots with ZERO counting assignments. Binary
// availability: a partially-filled slot is not "available" here even if
// allocation remains.
func (sp *SlotPlanner) GetAvailableSlots(ctx context.Context, projectID ProjectID) ([]PlannedTeamSlot, error) {
	slots, err := sp.GetSlotsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	assignments, err := sp.Store.ListAssignments(ctx, AssignmentFilter{ProjectID: &projectID})
	if err != nil {
		return nil, err
	}

	taken := make(map[SlotID]bool)
	for i := range assignments {
		a := &assignments[i]
		if a.SlotID != nil && a.Status.CountsTowardAllocation() {
			taken[*a.SlotID] = true
		}
	}

	available := make([]PlannedTeamSlot, 0, len(slots))
	for _, s := range slots {
		if !taken[s.ID] {
			available = append(available, s)
		}
	}
	return available, nil
}

// GetRemainingAllocationSegments returns, per slot, the allocation percent
// still open under the ceiling: max(0, ceiling - sum of counting
// assignments). The Assignment Engine's budget check is built on this.
func (sp *SlotPlanner) GetRemainingAllocationSegments(ctx context.Context, projectID ProjectID) (map[SlotID]decimal.Decimal, error) {
	slots, err := sp.GetSlotsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	assignments, err := sp.Store.ListAssignments(ctx, AssignmentFilter{ProjectID: &projectID})
	if err != nil {
		return nil, err
	}

	segments := make(map[SlotID]decimal.Decimal, len(slots))
	for i := range slots {
		segments[slots[i].ID] = remainingAllocation(&slots[i], assignments)
	}
	return segments, nil
}

// remainingAllocation computes a single slot's open allocation from an
// already-loaded assignment set.
func remainingAllocation(slot *PlannedTeamSlot, assignments []ActualAssignment) decimal.Decimal {
	used := decimal.Zero
	for i := range assignments {
		a := &assignments[i]
		if a.SlotID != nil && *a.SlotID == slot.ID && a.Status.CountsTowardAllocation() {
			used = used.Add(a.AllocationPercent)
		}
	}
	remaining := slot.AllocationPercent.Sub(used)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// =============================================================================
// DELETE / RECALCULATE
// =============================================================================

// DeleteSlot soft-deletes a slot with no assignments referencing it.
func (sp *SlotPlanner) DeleteSlot(ctx context.Context, id SlotID, actor string) error {
	if actor == "" {
		return ErrActorRequired
	}

	slot, err := sp.Store.GetSlot(ctx, id)
	if err != nil {
		return err
	}
	if slot == nil {
		return ErrSlotNotFound
	}

	refs, err := sp.Store.ListAssignments(ctx, AssignmentFilter{SlotID: &id})
	if err != nil {
		return err
	}
	if len(refs) > 0 {
		return ErrHasAssignments
	}

	return sp.Store.SoftDeleteSlot(ctx, id, actor)
}

// RecalculateBudgetCosts re-derives ComputedBudgetCost for every slot of a
// project. Used after a contract price change.
func (sp *SlotPlanner) RecalculateBudgetCosts(ctx context.Context, projectID ProjectID, actor string) (int, error) {
	if actor == "" {
		return 0, ErrActorRequired
	}

	project, err := sp.Store.GetProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	if project == nil {
		return 0, ErrProjectNotFound
	}

	slots, err := sp.Store.ListSlotsByProject(ctx, projectID)
	if err != nil {
		return 0, err
	}

	updated := 0
	for i := range slots {
		slot := slots[i]
		fresh := BudgetCost(&slot, project.ProjectPrice)
		if fresh.Equal(slot.ComputedBudgetCost) {
			continue
		}
		slot.ComputedBudgetCost = fresh
		slot.Touch(actor, sp.Clock().Time)
		if err := sp.Store.UpdateSlot(ctx, &slot, slot.VersionToken); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// =============================================================================
// KPI ROLLUP
// =============================================================================

// GetProjectKPIs aggregates planned vs actual cost and allocation metrics.
func (sp *SlotPlanner) GetProjectKPIs(ctx context.Context, projectID ProjectID) (*ProjectKPIs, error) {
	project, err := sp.Store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	slots, err := sp.Store.ListSlotsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	assignments, err := sp.Store.ListAssignments(ctx, AssignmentFilter{ProjectID: &projectID})
	if err != nil {
		return nil, err
	}

	employees := make(map[EmployeeID]*Employee)
	for i := range assignments {
		id := assignments[i].EmployeeID
		if id == "" {
			continue
		}
		if _, ok := employees[id]; ok {
			continue
		}
		emp, err := sp.Store.GetEmployee(ctx, id)
		if err != nil {
			return nil, err
		}
		employees[id] = emp
	}

	kpi := ComputeProjectKPIs(project, slots, assignments, employees, sp.Clock())
	return &kpi, nil
}

func (sp *SlotPlanner) requireProject(ctx context.Context, projectID ProjectID) error {
	project, err := sp.Store.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return ErrProjectNotFound
	}
	return nil
}

func (sp *SlotPlanner) slotHasCountingAssignments(ctx context.Context, id SlotID) (bool, error) {
	refs, err := sp.Store.ListAssignments(ctx, AssignmentFilter{SlotID: &id})
	if err != nil {
		return false, err
	}
	for i := range refs {
		if refs[i].Status.CountsTowardAllocation() {
			return true, nil
		}
	}
	return false, nil
}
