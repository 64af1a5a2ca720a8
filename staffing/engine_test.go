package staffing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/warp/staffing-engine/staffing"
	"github.com/warp/staffing-engine/staffing/store"
)

// =============================================================================
// TEST FIXTURE
// =============================================================================

type engineFixture struct {
	store   *store.Memory
	engine  *staffing.AssignmentEngine
	planner *staffing.SlotPlanner

	project  *staffing.Project
	role     *staffing.Role
	employee *staffing.Employee
}

// newEngineFixture seeds a year-long project priced at 115000 with one role
// and one employee whose pay matches a 5000/300/2 plan.
func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemory()

	f := &engineFixture{
		store:   mem,
		engine:  staffing.NewAssignmentEngine(mem),
		planner: staffing.NewSlotPlanner(mem),
		project: &staffing.Project{
			ID:                          "proj-1",
			Name:                        "Test Project",
			StartDate:                   staffing.NewDate(2026, time.January, 1),
			EndDate:                     staffing.NewDate(2026, time.December, 31),
			ExpectedWorkingPeriodMonths: 12,
			ProjectPrice:                dec(115000),
			Status:                      staffing.ProjectActive,
		},
		role: &staffing.Role{ID: "role-dev", Name: "Developer"},
		employee: &staffing.Employee{
			ID:                "emp-1",
			Name:              "Test Employee",
			RoleID:            "role-dev",
			Salary:            dec(5000),
			MonthlyIncentive:  dec(300),
			CommissionPercent: dec(2),
		},
	}
	// Pin the clock inside the project span so auto-complete and as-of
	// resolution are deterministic.
	f.engine.Clock = func() staffing.Date { return staffing.NewDate(2026, time.June, 15) }
	f.engine.Now = func() time.Time { return time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC) }
	f.planner.Clock = f.engine.Clock

	if err := mem.SaveProject(ctx, f.project); err != nil {
		t.Fatalf("seeding project: %v", err)
	}
	if err := mem.SaveRole(ctx, f.role); err != nil {
		t.Fatalf("seeding role: %v", err)
	}
	if err := mem.SaveEmployee(ctx, f.employee); err != nil {
		t.Fatalf("seeding employee: %v", err)
	}
	return f
}

func (f *engineFixture) planSlot(t *testing.T, alloc float64) *staffing.PlannedTeamSlot {
	t.Helper()
	slot, err := f.planner.CreateSlot(context.Background(), staffing.CreateSlotCommand{
		ProjectID: f.project.ID,
		RoleID:    f.role.ID,
		SlotInput: staffing.SlotInput{
			PeriodMonths:             12,
			AllocationPercent:        dec(alloc),
			PlannedSalary:            dec(5000),
			PlannedIncentive:         dec(300),
			PlannedCommissionPercent: dec(2),
		},
		Actor: "planner",
	})
	if err != nil {
		t.Fatalf("planning slot: %v", err)
	}
	return slot
}

func (f *engineFixture) createCmd(alloc float64) staffing.CreateAssignmentCommand {
	end := f.project.EndDate
	return staffing.CreateAssignmentCommand{
		ProjectID:         f.project.ID,
		EmployeeID:        f.employee.ID,
		StartDate:         f.project.StartDate,
		EndDate:           &end,
		AllocationPercent: dec(alloc),
		Actor:             "test-user",
	}
}

func hasIssue(issues []staffing.Issue, code string) bool {
	for _, issue := range issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

// =============================================================================
// CREATE - Date containment and allocation bounds
// =============================================================================

func TestCreateAssignment_HappyPath_ActivatesImmediately(t *testing.T) {
	// GIVEN: A matching employee within project dates and capacity
	f := newEngineFixture(t)

	// WHEN: Creating at 80% with no slot
	result, err := f.engine.CreateAssignment(context.Background(), f.createCmd(80))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// THEN: The assignment is written as Active with a pay snapshot
	if !result.OK() {
		t.Fatalf("expected success, got errors: %+v", result.Errors)
	}
	a := result.Assignment
	if a.Status != staffing.StatusActive {
		t.Errorf("expected active, got %s", a.Status)
	}
	if a.Snapshot.Salary == nil || !a.Snapshot.Salary.Equal(dec(5000)) {
		t.Error("expected the employee's salary frozen in the snapshot")
	}
	if a.VersionToken == "" {
		t.Error("expected a version token")
	}
}

func TestCreateAssignment_RequiresActor(t *testing.T) {
	f := newEngineFixture(t)
	cmd := f.createCmd(50)
	cmd.Actor = ""

	_, err := f.engine.CreateAssignment(context.Background(), cmd)
	if !errors.Is(err, staffing.ErrActorRequired) {
		t.Fatalf("expected ErrActorRequired, got %v", err)
	}
}

func TestCreateAssignment_DatesOutsideProject_Blocked(t *testing.T) {
	// GIVEN: Start before the project and end after it
	f := newEngineFixture(t)
	cmd := f.createCmd(50)
	cmd.StartDate = staffing.NewDate(2025, time.December, 1)
	end := staffing.NewDate(2027, time.March, 1)
	cmd.EndDate = &end

	// WHEN: Creating
	result, err := f.engine.CreateAssignment(context.Background(), cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// THEN: Both containment violations are reported together
	if result.OK() {
		t.Fatal("expected a blocked result")
	}
	if !hasIssue(result.Errors, "start_before_project") || !hasIssue(result.Errors, "end_after_project") {
		t.Errorf("expected both containment findings, got %+v", result.Errors)
	}
}

func TestCreateAssignment_AllocationOverHundred_Blocked(t *testing.T) {
	f := newEngineFixture(t)

	result, err := f.engine.CreateAssignment(context.Background(), f.createCmd(120))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OK() || !hasIssue(result.Errors, "allocation_over_hundred") {
		t.Errorf("expected allocation_over_hundred, got %+v", result.Errors)
	}
}

// =============================================================================
// CREATE - Slot ceiling and retargeting detail
// =============================================================================

func TestCreateAssignment_ExceedsSlotCeiling_Blocked(t *testing.T) {
	// GIVEN: A 60% slot
	f := newEngineFixture(t)
	slot := f.planSlot(t, 60)

	// WHEN: Requesting 80% against it
	cmd := f.createCmd(80)
	cmd.SlotID = &slot.ID
	result, err := f.engine.CreateAssignment(context.Background(), cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// THEN: Blocked on the ceiling itself
	if result.OK() || !hasIssue(result.Errors, "allocation_exceeds_slot") {
		t.Errorf("expected allocation_exceeds_slot, got %+v", result.Errors)
	}
}

func TestCreateAssignment_SlotFullyAllocated_ConflictDetail(t *testing.T) {
	// GIVEN: A 100% slot already holding a 70% assignment, and an idle
	// same-role alternate
	f := newEngineFixture(t)
	ctx := context.Background()
	slot := f.planSlot(t, 100)

	alternate := &staffing.Employee{ID: "emp-2", Name: "Alternate", RoleID: f.role.ID}
	if err := f.store.SaveEmployee(ctx, alternate); err != nil {
		t.Fatalf("seeding alternate: %v", err)
	}

	first := f.createCmd(70)
	first.SlotID = &slot.ID
	if result, err := f.engine.CreateAssignment(ctx, first); err != nil || !result.OK() {
		t.Fatalf("seeding first assignment: %v / %+v", err, result)
	}

	// WHEN: A second employee requests 50% on the same slot
	second := staffing.CreateAssignmentCommand{
		ProjectID:         f.project.ID,
		SlotID:            &slot.ID,
		EmployeeID:        alternate.ID,
		StartDate:         f.project.StartDate,
		AllocationPercent: dec(50),
		Actor:             "test-user",
	}
	result, err := f.engine.CreateAssignment(ctx, second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// THEN: Blocked with the remaining 30% and the conflicting assignment
	if result.OK() || !hasIssue(result.Errors, "slot_fully_allocated") {
		t.Fatalf("expected slot_fully_allocated, got %+v", result.Errors)
	}
	if result.Conflict == nil {
		t.Fatal("expected conflict detail")
	}
	if !result.Conflict.RemainingPercent.Equal(dec(30)) {
		t.Errorf("expected remaining 30, got %s", result.Conflict.RemainingPercent)
	}
	if result.Conflict.ConflictingAssignment == nil {
		t.Error("expected the conflicting assignment attached")
	}
}

func TestCreateAssignment_RoleMismatch_Blocked(t *testing.T) {
	// GIVEN: A slot for a different role
	f := newEngineFixture(t)
	ctx := context.Background()
	other := &staffing.Role{ID: "role-qa", Name: "QA"}
	if err := f.store.SaveRole(ctx, other); err != nil {
		t.Fatalf("seeding role: %v", err)
	}
	slot, err := f.planner.CreateSlot(ctx, staffing.CreateSlotCommand{
		ProjectID: f.project.ID,
		RoleID:    other.ID,
		SlotInput: staffing.SlotInput{PeriodMonths: 6, AllocationPercent: dec(100)},
		Actor:     "planner",
	})
	if err != nil {
		t.Fatalf("planning slot: %v", err)
	}

	// WHEN: Staffing the developer on it
	cmd := f.createCmd(50)
	cmd.SlotID = &slot.ID
	result, err := f.engine.CreateAssignment(ctx, cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// THEN: Blocked on the role mismatch
	if result.OK() || !hasIssue(result.Errors, "role_mismatch") {
		t.Errorf("expected role_mismatch, got %+v", result.Errors)
	}
}

// =============================================================================
// CREATE - Employee capacity across projects
// =============================================================================

func TestCreateAssignment_CapacityAcrossProjects_Blocked(t *testing.T) {
	// GIVEN: The employee already active at 60% on another project over the
	// same window
	f := newEngineFixture(t)
	ctx := context.Background()
	second := &staffing.Project{
		ID:                          "proj-2",
		Name:                        "Second Project",
		StartDate:                   f.project.StartDate,
		EndDate:                     f.project.EndDate,
		ExpectedWorkingPeriodMonths: 12,
		ProjectPrice:                dec(50000),
		Status:                      staffing.ProjectActive,
	}
	if err := f.store.SaveProject(ctx, second); err != nil {
		t.Fatalf("seeding project: %v", err)
	}
	if result, err := f.engine.CreateAssignment(ctx, f.createCmd(60)); err != nil || !result.OK() {
		t.Fatalf("seeding first assignment: %v / %+v", err, result)
	}

	// WHEN: Requesting 50% on the second project
	cmd := f.createCmd(50)
	cmd.ProjectID = second.ID
	result, err := f.engine.CreateAssignment(ctx, cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// THEN: 60 + 50 > 100 blocks
	if result.OK() || !hasIssue(result.Errors, "capacity_exceeded") {
		t.Errorf("expected capacity_exceeded, got %+v", result.Errors)
	}
}

func TestCreateAssignment_HighUtilization_WarnsButSucceeds(t *testing.T) {
	// GIVEN: Default risk policy warning above 80%
	f := newEngineFixture(t)

	// WHEN: Creating at 90%
	result, err := f.engine.CreateAssignment(context.Background(), f.createCmd(90))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// THEN: The assignment is written, with a high_utilization warning
	if !result.OK() {
		t.Fatalf("expected success, got %+v", result.Errors)
	}
	if !hasIssue(result.Warnings, "high_utilization") {
		t.Errorf("expected high_utilization warning, got %+v", result.Warnings)
	}
}

func TestCreateAssignment_DisjointWindows_DoNotSum(t *testing.T) {
	// GIVEN: A 100% assignment for the first half of the year
	f := newEngineFixture(t)
	ctx := context.Background()
	firstEnd := staffing.NewDate(2026, time.June, 30)
	first := f.createCmd(100)
	first.EndDate = &firstEnd
	if result, err := f.engine.CreateAssignment(ctx, first); err != nil || !result.OK() {
		t.Fatalf("seeding first assignment: %v / %+v", err, result)
	}

	// WHEN: Creating another 100% assignment starting in July
	second := f.createCmd(100)
	second.StartDate = staffing.NewDate(2026, time.July, 1)
	result, err := f.engine.CreateAssignment(ctx, second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// THEN: Non-overlapping windows never sum
	if !result.OK() {
		t.Errorf("expected success for disjoint windows, got %+v", result.Errors)
	}
}

// =============================================================================
// CREATE - Cost variance routing to approval
// =============================================================================

func TestCreateAssignment_CostVariance_RoutesToApproval(t *testing.T) {
	// GIVEN: A slot planned at 2000/month while the employee really costs 5300
	f := newEngineFixture(t)
	ctx := context.Background()
	slot, err := f.planner.CreateSlot(ctx, staffing.CreateSlotCommand{
		ProjectID: f.project.ID,
		RoleID:    f.role.ID,
		SlotInput: staffing.SlotInput{
			PeriodMonths:             12,
			AllocationPercent:        dec(100),
			PlannedSalary:            dec(2000),
			PlannedCommissionPercent: dec(2),
		},
		Actor: "planner",
	})
	if err != nil {
		t.Fatalf("planning slot: %v", err)
	}

	// WHEN: Staffing the expensive employee against it
	cmd := f.createCmd(100)
	cmd.SlotID = &slot.ID
	result, err := f.engine.CreateAssignment(ctx, cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// THEN: The assignment lands as Planned awaiting approval, with the
	// cost-variance warning attached
	if !result.OK() {
		t.Fatalf("expected success, got %+v", result.Errors)
	}
	a := result.Assignment
	if a.Status != staffing.StatusPlanned || !a.RequiresApproval {
		t.Errorf("expected planned/requires-approval, got %s / %v", a.Status, a.RequiresApproval)
	}
	if a.RequestedByUserID != "test-user" {
		t.Errorf("expected requester recorded, got %q", a.RequestedByUserID)
	}
	if !hasIssue(result.Warnings, "cost_variance") {
		t.Errorf("expected cost_variance warning, got %+v", result.Warnings)
	}
}

func TestCreateAssignment_NoSlot_SkipsVarianceRouting(t *testing.T) {
	// GIVEN: An expensive employee but no slot bound to the assignment, so
	// there is no plan to measure deviation against
	f := newEngineFixture(t)
	f.employee.Salary = dec(50000)
	if err := f.store.SaveEmployee(context.Background(), f.employee); err != nil {
		t.Fatalf("updating employee: %v", err)
	}

	// WHEN: Creating the assignment slotless
	result, err := f.engine.CreateAssignment(context.Background(), f.createCmd(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// THEN: It goes straight to Active with no variance warning
	if !result.OK() {
		t.Fatalf("expected success, got %+v", result.Errors)
	}
	a := result.Assignment
	if a.Status != staffing.StatusActive || a.RequiresApproval {
		t.Errorf("expected immediately active, got %s / %v", a.Status, a.RequiresApproval)
	}
	if hasIssue(result.Warnings, "cost_variance") {
		t.Errorf("expected no cost_variance warning, got %+v", result.Warnings)
	}
}

// =============================================================================
// APPROVAL WORKFLOW
// =============================================================================

func TestApproveAssignment_OnlyFromPlanned(t *testing.T) {
	// GIVEN: An immediately-active assignment
	f := newEngineFixture(t)
	ctx := context.Background()
	result, err := f.engine.CreateAssignment(ctx, f.createCmd(50))
	if err != nil || !result.OK() {
		t.Fatalf("seeding: %v / %+v", err, result)
	}

	// WHEN: Approving it anyway
	_, err = f.engine.ApproveAssignment(ctx, result.Assignment.ID, "approver")

	// THEN: Rejected as an invalid transition
	if !errors.Is(err, staffing.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestRejectAssignment_AppendsReasonAndTerminates(t *testing.T) {
	// GIVEN: A planned assignment awaiting approval
	f := newEngineFixture(t)
	ctx := context.Background()
	slot, _ := f.planner.CreateSlot(ctx, staffing.CreateSlotCommand{
		ProjectID: f.project.ID,
		RoleID:    f.role.ID,
		SlotInput: staffing.SlotInput{PeriodMonths: 12, AllocationPercent: dec(100), PlannedSalary: dec(2000)},
		Actor:     "planner",
	})
	cmd := f.createCmd(100)
	cmd.SlotID = &slot.ID
	cmd.Notes = "initial"
	result, err := f.engine.CreateAssignment(ctx, cmd)
	if err != nil || !result.OK() || result.Assignment.Status != staffing.StatusPlanned {
		t.Fatalf("expected a planned assignment, got %v / %+v", err, result)
	}

	// WHEN: Rejecting with a reason
	rejected, err := f.engine.RejectAssignment(ctx, result.Assignment.ID, "approver", "over budget")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// THEN: Cancelled, reason appended, and terminally so
	if rejected.Status != staffing.StatusCancelled {
		t.Errorf("expected cancelled, got %s", rejected.Status)
	}
	if rejected.Notes != "initial\nrejected: over budget" {
		t.Errorf("unexpected notes: %q", rejected.Notes)
	}
	if _, err := f.engine.ApproveAssignment(ctx, rejected.ID, "approver"); !errors.Is(err, staffing.ErrInvalidTransition) {
		t.Errorf("expected terminal state, got %v", err)
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestHoldReleasesCapacity(t *testing.T) {
	// GIVEN: The employee active at 100%
	f := newEngineFixture(t)
	ctx := context.Background()
	result, err := f.engine.CreateAssignment(ctx, f.createCmd(100))
	if err != nil || !result.OK() {
		t.Fatalf("seeding: %v / %+v", err, result)
	}

	// New staffing is blocked
	blocked, err := f.engine.CreateAssignment(ctx, f.createCmd(50))
	if err != nil || blocked.OK() {
		t.Fatalf("expected capacity block, got %v / %+v", err, blocked)
	}

	// WHEN: Holding the existing assignment
	if _, err := f.engine.HoldAssignment(ctx, result.Assignment.ID, "manager"); err != nil {
		t.Fatalf("hold: %v", err)
	}

	// THEN: Capacity is released for new checks
	allowed, err := f.engine.CreateAssignment(ctx, f.createCmd(50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed.OK() {
		t.Errorf("expected success after hold, got %+v", allowed.Errors)
	}
}

func TestResumeAssignment_OnlyFromOnHold(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	result, err := f.engine.CreateAssignment(ctx, f.createCmd(50))
	if err != nil || !result.OK() {
		t.Fatalf("seeding: %v / %+v", err, result)
	}

	if _, err := f.engine.ResumeAssignment(ctx, result.Assignment.ID, "manager"); !errors.Is(err, staffing.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition resuming an active assignment, got %v", err)
	}
}

func TestUnassign_SetsEndDateAndCompletes(t *testing.T) {
	// GIVEN: An open-ended active assignment
	f := newEngineFixture(t)
	ctx := context.Background()
	cmd := f.createCmd(50)
	cmd.EndDate = nil
	result, err := f.engine.CreateAssignment(ctx, cmd)
	if err != nil || !result.OK() {
		t.Fatalf("seeding: %v / %+v", err, result)
	}

	// WHEN: Unassigning at a date
	endDate := staffing.NewDate(2026, time.June, 1)
	done, err := f.engine.UnassignAssignment(ctx, result.Assignment.ID, endDate, "manager")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// THEN: Completed with the end date recorded
	if done.Status != staffing.StatusCompleted {
		t.Errorf("expected completed, got %s", done.Status)
	}
	if done.EndDate == nil || !done.EndDate.Equal(endDate) {
		t.Errorf("expected end date %s, got %v", endDate, done.EndDate)
	}
}

// =============================================================================
// BATCH AUTO-COMPLETE
// =============================================================================

func TestAutoComplete_SweepsOnlyPastEndActives(t *testing.T) {
	// GIVEN: One active assignment ended in May, one running through December
	// (clock pinned to June 15)
	f := newEngineFixture(t)
	ctx := context.Background()

	pastEnd := staffing.NewDate(2026, time.May, 31)
	past := f.createCmd(40)
	past.EndDate = &pastEnd
	pastResult, err := f.engine.CreateAssignment(ctx, past)
	if err != nil || !pastResult.OK() {
		t.Fatalf("seeding past assignment: %v / %+v", err, pastResult)
	}

	current := f.createCmd(40)
	currentResult, err := f.engine.CreateAssignment(ctx, current)
	if err != nil || !currentResult.OK() {
		t.Fatalf("seeding current assignment: %v / %+v", err, currentResult)
	}

	// WHEN: Sweeping
	sweep, err := f.engine.AutoCompleteAssignments(ctx, "scheduler")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// THEN: Only the past-end assignment completes
	if sweep.CompletedCount != 1 {
		t.Fatalf("expected 1 completion, got %d (errors: %v)", sweep.CompletedCount, sweep.Errors)
	}
	if sweep.CompletedIDs[0] != pastResult.Assignment.ID {
		t.Errorf("swept the wrong assignment: %s", sweep.CompletedIDs[0])
	}

	still, err := f.engine.GetAssignmentByID(ctx, currentResult.Assignment.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if still.Status != staffing.StatusActive {
		t.Errorf("expected the current assignment untouched, got %s", still.Status)
	}
}

// =============================================================================
// CONCURRENCY
// =============================================================================

func TestUpdateAssignment_StaleTokenConflicts(t *testing.T) {
	// GIVEN: An assignment and its original version token
	f := newEngineFixture(t)
	ctx := context.Background()
	result, err := f.engine.CreateAssignment(ctx, f.createCmd(50))
	if err != nil || !result.OK() {
		t.Fatalf("seeding: %v / %+v", err, result)
	}
	original := result.Assignment.VersionToken

	update := staffing.UpdateAssignmentCommand{
		AssignmentID:      result.Assignment.ID,
		StartDate:         result.Assignment.StartDate,
		EndDate:           result.Assignment.EndDate,
		AllocationPercent: dec(60),
		ExpectedVersion:   original,
		Actor:             "test-user",
	}

	// First update with the fresh token succeeds
	if _, err := f.engine.UpdateAssignment(ctx, update); err != nil {
		t.Fatalf("first update: %v", err)
	}

	// WHEN: Replaying with the now-stale token
	_, err = f.engine.UpdateAssignment(ctx, update)

	// THEN: ErrConcurrencyConflict, and the caller must re-read
	if !errors.Is(err, staffing.ErrConcurrencyConflict) {
		t.Fatalf("expected ErrConcurrencyConflict, got %v", err)
	}
}
