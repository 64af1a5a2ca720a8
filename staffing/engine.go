/*
engine.go - Assignment Engine service

PURPOSE:
  Owns ActualAssignment entities: places employees into planned slots (or
  directly onto projects), enforces date-range, allocation-budget,
  role-match and employee-capacity invariants, captures cost snapshots, and
  drives the approval workflow for risky assignments.

VALIDATION IS TWO-TIER:
  Blocking findings prevent the write; warnings are carried on the result
  and the operation proceeds. Missing entities are a distinct, always-fatal
  error return checked BEFORE any business rule. One call surfaces every
  blocking violation at once.

RISK ROUTING:
  A projected cost deviating from the slot's plan beyond the approval
  threshold creates the assignment in Planned status with RequiresApproval
  set; an approver must separately Approve or Reject. Low-risk assignments
  go straight to Active. Either way the allocation counts immediately —
  Planned assignments participate in capacity sums before approval, which
  matches the source system.

CONFLICT RETARGETING:
  When a slot's remaining allocation can't fit the request, the result
  carries the conflicting assignment plus employees with the matching role
  who are not yet staffed on the project, so the caller can retarget.

CONCURRENCY:
  Every mutation (update/approve/reject/unassign/hold/resume) is guarded by
  the assignment's version token — the same discipline as slots. Two
  concurrent approvers cannot both win.

SEE ALSO:
  - costing.go: Projected-cost and snapshot-precedence math
  - utilization.go: The over-100% capacity primitive
*/
package staffing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// RISK POLICY - Thresholds that route assignments to approval
// =============================================================================

// RiskPolicy configures the engine's warning and approval thresholds. All
// values are percentages.
type RiskPolicy struct {
	// CostVarianceWarnPct: projected cost deviating from plan beyond this
	// emits a cost-variance warning.
	CostVarianceWarnPct decimal.Decimal

	// CostVarianceApprovalPct: deviation beyond this requires approval
	// before the assignment becomes workable.
	CostVarianceApprovalPct decimal.Decimal

	// HighUtilizationPct: resulting employee allocation above this (but at
	// most 100) emits a high-utilization warning.
	HighUtilizationPct decimal.Decimal
}

// DefaultRiskPolicy returns the standard thresholds.
func DefaultRiskPolicy() RiskPolicy {
	return RiskPolicy{
		CostVarianceWarnPct:     Dec(20),
		CostVarianceApprovalPct: Dec(35),
		HighUtilizationPct:      Dec(80),
	}
}

// =============================================================================
// ENGINE
// =============================================================================

// AssignmentEngine tracks real staffing against plan.
type AssignmentEngine struct {
	Store       Stores
	Utilization *UtilizationService
	Risk        RiskPolicy
	Clock       func() Date
	Now         func() time.Time
}

// NewAssignmentEngine wires an engine over the given stores with the
// default risk policy.
func NewAssignmentEngine(store Stores) *AssignmentEngine {
	return &AssignmentEngine{
		Store:       store,
		Utilization: NewUtilizationService(store),
		Risk:        DefaultRiskPolicy(),
		Clock:       Today,
		Now:         func() time.Time { return time.Now().UTC() },
	}
}

// =============================================================================
// COMMANDS & RESULTS
// =============================================================================

// CreateAssignmentCommand places staffing on a project, optionally against
// a planned slot.
type CreateAssignmentCommand struct {
	ProjectID  ProjectID
	SlotID     *SlotID
	EmployeeID EmployeeID
	VendorName string

	StartDate         Date
	EndDate           *Date
	AllocationPercent decimal.Decimal
	Notes             string
	Actor             string
}

// UpdateAssignmentCommand adjusts an existing assignment's range,
// allocation or notes. ExpectedVersion is the token read at load time.
type UpdateAssignmentCommand struct {
	AssignmentID      AssignmentID
	StartDate         Date
	EndDate           *Date
	AllocationPercent decimal.Decimal
	Notes             string
	ExpectedVersion   string
	Actor             string
}

// ConflictDetail describes why a slot could not fit the request.
type ConflictDetail struct {
	SlotID                SlotID
	RemainingPercent      decimal.Decimal
	ConflictingAssignment *ActualAssignment
}

// AssignmentResult is the single tagged outcome of create/update: either
// Assignment is set (possibly with warnings), or Errors holds every
// blocking violation found. Fatal not-found conditions never reach this
// type; they surface as error returns.
type AssignmentResult struct {
	Assignment *ActualAssignment
	Errors     []Issue
	Warnings   []Issue

	Conflict           *ConflictDetail
	SuggestedEmployees []Employee
}

// OK reports whether the operation produced an assignment.
func (r *AssignmentResult) OK() bool { return r.Assignment != nil }

// AutoCompleteResult reports a batch run. Per-item failures are collected,
// never fatal to the batch.
type AutoCompleteResult struct {
	CompletedCount int
	CompletedIDs   []AssignmentID
	Errors         []string
}

// =============================================================================
// CREATE
// =============================================================================

// CreateAssignment validates and persists a new assignment. Not-found
// conditions return an error; business-rule findings come back on the
// result, blocking ones preventing the write.
func (ae *AssignmentEngine) CreateAssignment(ctx context.Context, cmd CreateAssignmentCommand) (*AssignmentResult, error) {
	if cmd.Actor == "" {
		return nil, ErrActorRequired
	}

	project, err := ae.Store.GetProject(ctx, cmd.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	var employee *Employee
	if cmd.EmployeeID != "" {
		employee, err = ae.Store.GetEmployee(ctx, cmd.EmployeeID)
		if err != nil {
			return nil, err
		}
		if employee == nil {
			return nil, ErrEmployeeNotFound
		}
	}

	var slot *PlannedTeamSlot
	if cmd.SlotID != nil {
		slot, err = ae.Store.GetSlot(ctx, *cmd.SlotID)
		if err != nil {
			return nil, err
		}
		if slot == nil {
			return nil, ErrSlotNotFound
		}
	}

	result := &AssignmentResult{}
	ae.validateDates(project, cmd.StartDate, cmd.EndDate, result)
	ae.validateAllocation(ctx, cmd, project, slot, employee, result)

	requiresApproval := false
	if slot != nil && employee != nil {
		requiresApproval = ae.assessCostVariance(project, slot, employee, cmd.StartDate, cmd.EndDate, result)
	}

	if len(result.Errors) > 0 {
		return result, nil
	}

	now := ae.Now()
	assignment := &ActualAssignment{
		ID:                AssignmentID(uuid.NewString()),
		ProjectID:         cmd.ProjectID,
		SlotID:            cmd.SlotID,
		EmployeeID:        cmd.EmployeeID,
		VendorName:        cmd.VendorName,
		StartDate:         cmd.StartDate,
		EndDate:           cmd.EndDate,
		AllocationPercent: cmd.AllocationPercent,
		Notes:             cmd.Notes,
		Status:            StatusActive,
		VersionToken:      uuid.NewString(),
	}

	if requiresApproval {
		assignment.Status = StatusPlanned
		assignment.RequiresApproval = true
		assignment.RequestedByUserID = cmd.Actor
	}

	// Freeze the employee's live pay at creation time so later changes do
	// not retroactively alter this assignment's cost.
	if employee != nil {
		salary, incentive, commission := employee.Salary, employee.MonthlyIncentive, employee.CommissionPercent
		assignment.Snapshot = CostSnapshot{
			Salary:            &salary,
			MonthlyIncentive:  &incentive,
			CommissionPercent: &commission,
		}
	}

	assignment.Touch(cmd.Actor, now)
	if err := ae.Store.InsertAssignment(ctx, assignment); err != nil {
		return nil, err
	}

	result.Assignment = assignment
	return result, nil
}

// validateDates accumulates date-containment findings.
func (ae *AssignmentEngine) validateDates(project *Project, start Date, end *Date, result *AssignmentResult) {
	if start.Before(project.StartDate) {
		result.Errors = append(result.Errors, blocking("start_before_project",
			"start date %s precedes project start %s", start, project.StartDate))
	}
	if end != nil {
		if end.After(project.EndDate) {
			result.Errors = append(result.Errors, blocking("end_after_project",
				"end date %s exceeds project end %s", *end, project.EndDate))
		}
		if end.Before(start) {
			result.Errors = append(result.Errors, blocking("end_before_start",
				"end date %s precedes start date %s", *end, start))
		}
	}
}

// validateAllocation accumulates ceiling, remaining-budget, role-match and
// employee-capacity findings, and fills conflict details for retargeting.
func (ae *AssignmentEngine) validateAllocation(ctx context.Context, cmd CreateAssignmentCommand, project *Project, slot *PlannedTeamSlot, employee *Employee, result *AssignmentResult) {
	alloc := cmd.AllocationPercent
	if !alloc.IsPositive() {
		result.Errors = append(result.Errors, blocking("allocation_not_positive",
			"allocation percent must be greater than zero"))
		return
	}
	if alloc.GreaterThan(hundred) {
		result.Errors = append(result.Errors, blocking("allocation_over_hundred",
			"allocation percent %s exceeds 100", alloc))
	}

	projectAssignments, err := ae.Store.ListAssignments(ctx, AssignmentFilter{ProjectID: &cmd.ProjectID})
	if err != nil {
		result.Errors = append(result.Errors, blocking("store_error", "listing assignments: %v", err))
		return
	}

	if slot != nil {
		if alloc.GreaterThan(slot.AllocationPercent) {
			result.Errors = append(result.Errors, blocking("allocation_exceeds_slot",
				"allocation %s%% exceeds slot ceiling %s%%", alloc, slot.AllocationPercent))
		} else if remaining := remainingAllocation(slot, projectAssignments); alloc.GreaterThan(remaining) {
			result.Errors = append(result.Errors, blocking("slot_fully_allocated",
				"allocation %s%% exceeds slot's remaining %s%%", alloc, remaining))
			result.Conflict = &ConflictDetail{
				SlotID:                slot.ID,
				RemainingPercent:      remaining,
				ConflictingAssignment: firstCountingOnSlot(slot.ID, projectAssignments),
			}
			result.SuggestedEmployees = ae.suggestAlternates(ctx, slot.RoleID, projectAssignments)
		}

		if employee != nil && employee.RoleID != slot.RoleID {
			result.Errors = append(result.Errors, blocking("role_mismatch",
				"employee role %s does not match slot role %s", employee.RoleID, slot.RoleID))
		}
	}

	if employee != nil {
		window := EffectiveRange(cmd.StartDate, cmd.EndDate, project.EndDate)
		existing, err := ae.Utilization.EmployeeAllocation(ctx, employee.ID, window)
		if err != nil {
			result.Errors = append(result.Errors, blocking("store_error", "computing allocation: %v", err))
			return
		}
		total := existing.Add(alloc)
		if total.GreaterThan(hundred) {
			result.Errors = append(result.Errors, blocking("capacity_exceeded",
				"employee %s would be at %s%% allocation (existing %s%%)", employee.ID, total, existing))
		} else if total.GreaterThan(ae.Risk.HighUtilizationPct) {
			result.Warnings = append(result.Warnings, warning("high_utilization",
				"employee %s would be at %s%% allocation", employee.ID, total))
		}
	}
}

// assessCostVariance compares the projected cost against the slot's plan
// over the same duration. Returns true when the deviation crosses the
// approval threshold.
func (ae *AssignmentEngine) assessCostVariance(project *Project, slot *PlannedTeamSlot, employee *Employee, start Date, end *Date, result *AssignmentResult) bool {
	span := EffectiveRange(start, end, project.EndDate)
	days := span.DurationDays()
	net := NetContractPrice(project.ProjectPrice)

	projected := ProjectedAssignmentCost(employee, days, net)
	planned := PlannedComparableCost(slot, days, net)
	deviation := DeviationPercent(projected, planned)

	if deviation.GreaterThan(ae.Risk.CostVarianceWarnPct) {
		result.Warnings = append(result.Warnings, warning("cost_variance",
			"projected cost %s deviates %s%% from planned %s", projected.StringFixed(2), deviation.StringFixed(1), planned.StringFixed(2)))
	}
	return deviation.GreaterThan(ae.Risk.CostVarianceApprovalPct)
}

// firstCountingOnSlot returns a conflicting assignment for the conflict
// detail, or nil if the slot's budget is consumed by nothing visible.
func firstCountingOnSlot(slotID SlotID, assignments []ActualAssignment) *ActualAssignment {
	for i := range assignments {
		a := assignments[i]
		if a.SlotID != nil && *a.SlotID == slotID && a.Status.CountsTowardAllocation() {
			return &a
		}
	}
	return nil
}

// suggestAlternates lists employees with the matching role who are not
// currently staffed on any slot of the project.
func (ae *AssignmentEngine) suggestAlternates(ctx context.Context, roleID RoleID, projectAssignments []ActualAssignment) []Employee {
	candidates, err := ae.Store.ListEmployeesByRole(ctx, roleID)
	if err != nil {
		return nil
	}

	staffed := make(map[EmployeeID]bool)
	for i := range projectAssignments {
		a := &projectAssignments[i]
		if a.SlotID != nil && a.Status.CountsTowardAllocation() {
			staffed[a.EmployeeID] = true
		}
	}

	var free []Employee
	for _, c := range candidates {
		if !staffed[c.ID] {
			free = append(free, c)
		}
	}
	return free
}

// =============================================================================
// UPDATE
// =============================================================================

// UpdateAssignment adjusts range, allocation and notes, re-running all
// blocking validation with the assignment itself excluded from the sums.
func (ae *AssignmentEngine) UpdateAssignment(ctx context.Context, cmd UpdateAssignmentCommand) (*AssignmentResult, error) {
	if cmd.Actor == "" {
		return nil, ErrActorRequired
	}

	assignment, err := ae.Store.GetAssignment(ctx, cmd.AssignmentID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}
	if assignment.Status.IsTerminal() {
		return nil, &TransitionError{AssignmentID: assignment.ID, From: assignment.Status, To: assignment.Status}
	}

	project, err := ae.Store.GetProject(ctx, assignment.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	result := &AssignmentResult{}
	ae.validateDates(project, cmd.StartDate, cmd.EndDate, result)

	if !cmd.AllocationPercent.IsPositive() || cmd.AllocationPercent.GreaterThan(hundred) {
		result.Errors = append(result.Errors, blocking("allocation_out_of_bounds",
			"allocation percent %s must be in (0, 100]", cmd.AllocationPercent))
	}

	if assignment.SlotID != nil {
		slot, err := ae.Store.GetSlot(ctx, *assignment.SlotID)
		if err != nil {
			return nil, err
		}
		if slot != nil {
			projectAssignments, err := ae.Store.ListAssignments(ctx, AssignmentFilter{ProjectID: &assignment.ProjectID})
			if err != nil {
				return nil, err
			}
			remaining := remainingAllocation(slot, withoutAssignment(projectAssignments, assignment.ID))
			if cmd.AllocationPercent.GreaterThan(remaining) {
				result.Errors = append(result.Errors, blocking("slot_fully_allocated",
					"allocation %s%% exceeds slot's remaining %s%%", cmd.AllocationPercent, remaining))
			}
		}
	}

	if assignment.EmployeeID != "" {
		window := EffectiveRange(cmd.StartDate, cmd.EndDate, project.EndDate)
		existing, err := ae.employeeAllocationExcluding(ctx, assignment.EmployeeID, window, assignment.ID)
		if err != nil {
			return nil, err
		}
		if existing.Add(cmd.AllocationPercent).GreaterThan(hundred) {
			result.Errors = append(result.Errors, blocking("capacity_exceeded",
				"employee %s would be at %s%% allocation", assignment.EmployeeID, existing.Add(cmd.AllocationPercent)))
		}
	}

	if len(result.Errors) > 0 {
		return result, nil
	}

	assignment.StartDate = cmd.StartDate
	assignment.EndDate = cmd.EndDate
	assignment.AllocationPercent = cmd.AllocationPercent
	if cmd.Notes != "" {
		assignment.Notes = cmd.Notes
	}
	assignment.Touch(cmd.Actor, ae.Now())

	if err := ae.Store.UpdateAssignment(ctx, assignment, cmd.ExpectedVersion); err != nil {
		return nil, err
	}
	result.Assignment = assignment
	return result, nil
}

func withoutAssignment(assignments []ActualAssignment, exclude AssignmentID) []ActualAssignment {
	out := make([]ActualAssignment, 0, len(assignments))
	for _, a := range assignments {
		if a.ID != exclude {
			out = append(out, a)
		}
	}
	return out
}

func (ae *AssignmentEngine) employeeAllocationExcluding(ctx context.Context, employeeID EmployeeID, window DateRange, exclude AssignmentID) (decimal.Decimal, error) {
	assignments, err := ae.Store.ListAssignments(ctx, AssignmentFilter{EmployeeID: &employeeID})
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for i := range assignments {
		a := &assignments[i]
		if a.ID == exclude || !a.Status.CountsTowardAllocation() {
			continue
		}
		if a.Range(window.End).Overlaps(window) {
			total = total.Add(a.AllocationPercent)
		}
	}
	return total, nil
}

// =============================================================================
// APPROVAL WORKFLOW
// =============================================================================

// ApproveAssignment activates a Planned assignment, recording the approver.
// Only Planned assignments can be approved.
func (ae *AssignmentEngine) ApproveAssignment(ctx context.Context, id AssignmentID, approver string) (*ActualAssignment, error) {
	if approver == "" {
		return nil, ErrActorRequired
	}

	assignment, err := ae.Store.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}
	if assignment.Status != StatusPlanned {
		return nil, &TransitionError{AssignmentID: id, From: assignment.Status, To: StatusActive}
	}

	now := ae.Now()
	assignment.Status = StatusActive
	assignment.ApprovedByUserID = approver
	assignment.ApprovedAt = &now
	assignment.Touch(approver, now)

	if err := ae.Store.UpdateAssignment(ctx, assignment, assignment.VersionToken); err != nil {
		return nil, err
	}
	return assignment, nil
}

// RejectAssignment cancels a Planned assignment irreversibly, appending the
// reason to the notes. There is no re-open.
func (ae *AssignmentEngine) RejectAssignment(ctx context.Context, id AssignmentID, approver, reason string) (*ActualAssignment, error) {
	if approver == "" {
		return nil, ErrActorRequired
	}

	assignment, err := ae.Store.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}
	if assignment.Status != StatusPlanned {
		return nil, &TransitionError{AssignmentID: id, From: assignment.Status, To: StatusCancelled}
	}

	now := ae.Now()
	assignment.Status = StatusCancelled
	assignment.ApprovedByUserID = approver
	assignment.ApprovedAt = &now
	if reason != "" {
		if assignment.Notes != "" {
			assignment.Notes += "\n"
		}
		assignment.Notes += "rejected: " + reason
	}
	assignment.Touch(approver, now)

	if err := ae.Store.UpdateAssignment(ctx, assignment, assignment.VersionToken); err != nil {
		return nil, err
	}
	return assignment, nil
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// UnassignAssignment ends the assignment at the given date and marks it
// Completed.
func (ae *AssignmentEngine) UnassignAssignment(ctx context.Context, id AssignmentID, endDate Date, actor string) (*ActualAssignment, error) {
	return ae.transition(ctx, id, StatusCompleted, actor, func(a *ActualAssignment) {
		a.EndDate = &endDate
	})
}

// HoldAssignment suspends the assignment; it stops counting toward new
// conflict checks but is retained.
func (ae *AssignmentEngine) HoldAssignment(ctx context.Context, id AssignmentID, actor string) (*ActualAssignment, error) {
	return ae.transition(ctx, id, StatusOnHold, actor, nil)
}

// ResumeAssignment reactivates an OnHold assignment.
func (ae *AssignmentEngine) ResumeAssignment(ctx context.Context, id AssignmentID, actor string) (*ActualAssignment, error) {
	assignment, err := ae.Store.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}
	if assignment.Status != StatusOnHold {
		return nil, &TransitionError{AssignmentID: id, From: assignment.Status, To: StatusActive}
	}
	return ae.transition(ctx, id, StatusActive, actor, nil)
}

func (ae *AssignmentEngine) transition(ctx context.Context, id AssignmentID, to AssignmentStatus, actor string, mutate func(*ActualAssignment)) (*ActualAssignment, error) {
	if actor == "" {
		return nil, ErrActorRequired
	}

	assignment, err := ae.Store.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}
	if !assignment.Status.CanTransition(to) {
		return nil, &TransitionError{AssignmentID: id, From: assignment.Status, To: to}
	}

	if mutate != nil {
		mutate(assignment)
	}
	assignment.Status = to
	assignment.Touch(actor, ae.Now())

	if err := ae.Store.UpdateAssignment(ctx, assignment, assignment.VersionToken); err != nil {
		return nil, err
	}
	return assignment, nil
}

// DeleteAssignment soft-deletes; the row survives for historical
// reporting.
func (ae *AssignmentEngine) DeleteAssignment(ctx context.Context, id AssignmentID, actor string) error {
	if actor == "" {
		return ErrActorRequired
	}
	assignment, err := ae.Store.GetAssignment(ctx, id)
	if err != nil {
		return err
	}
	if assignment == nil {
		return ErrAssignmentNotFound
	}
	return ae.Store.SoftDeleteAssignment(ctx, id, actor)
}

// =============================================================================
// BATCH AUTO-COMPLETE
// =============================================================================

// AutoCompleteAssignments transitions every Active assignment whose end
// date has passed to Completed. Each failure is collected; the batch
// continues.
func (ae *AssignmentEngine) AutoCompleteAssignments(ctx context.Context, actor string) (*AutoCompleteResult, error) {
	if actor == "" {
		return nil, ErrActorRequired
	}

	due, err := ae.Store.ListAssignmentsPastEnd(ctx, ae.Clock())
	if err != nil {
		return nil, err
	}

	result := &AutoCompleteResult{}
	for i := range due {
		a := due[i]
		a.Status = StatusCompleted
		a.Touch(actor, ae.Now())
		if err := ae.Store.UpdateAssignment(ctx, &a, a.VersionToken); err != nil {
			result.Errors = append(result.Errors, string(a.ID)+": "+err.Error())
			continue
		}
		result.CompletedCount++
		result.CompletedIDs = append(result.CompletedIDs, a.ID)
	}
	return result, nil
}

// =============================================================================
// QUERIES
// =============================================================================

// GetAssignmentByID returns an assignment or ErrAssignmentNotFound.
func (ae *AssignmentEngine) GetAssignmentByID(ctx context.Context, id AssignmentID) (*ActualAssignment, error) {
	assignment, err := ae.Store.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, ErrAssignmentNotFound
	}
	return assignment, nil
}

// GetAssignments lists assignments, optionally filtered by project and/or
// employee.
func (ae *AssignmentEngine) GetAssignments(ctx context.Context, filter AssignmentFilter) ([]ActualAssignment, error) {
	return ae.Store.ListAssignments(ctx, filter)
}

// GetEmployeeAllocation sums the employee's counting allocation over a
// window. Delegates to the Utilization Query Service.
func (ae *AssignmentEngine) GetEmployeeAllocation(ctx context.Context, employeeID EmployeeID, window DateRange) (decimal.Decimal, error) {
	employee, err := ae.Store.GetEmployee(ctx, employeeID)
	if err != nil {
		return decimal.Zero, err
	}
	if employee == nil {
		return decimal.Zero, ErrEmployeeNotFound
	}
	return ae.Utilization.EmployeeAllocation(ctx, employeeID, window)
}
