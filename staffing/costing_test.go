package staffing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/staffing-engine/staffing"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(v float64) decimal.Decimal { return staffing.Dec(v) }

func decPtr(v float64) *decimal.Decimal {
	d := staffing.Dec(v)
	return &d
}

func jan(day int) staffing.Date { return staffing.NewDate(2026, time.January, day) }

// standardSlot plans 2500/month for 12 months with 2% commission.
func standardSlot() *staffing.PlannedTeamSlot {
	return &staffing.PlannedTeamSlot{
		ID:                       "slot-1",
		ProjectID:                "proj-1",
		RoleID:                   "role-1",
		PeriodMonths:             12,
		AllocationPercent:        dec(100),
		PlannedSalary:            dec(2000),
		PlannedIncentive:         dec(300),
		PlannedCommissionPercent: dec(2),
		PlannedTickets:           dec(120),
		PlannedHoteling:          dec(50),
		PlannedOthers:            dec(30),
	}
}

func assertDecimal(t *testing.T, want, got decimal.Decimal, label string) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s: expected %s, got %s", label, want, got)
	}
}

// =============================================================================
// NET CONTRACT PRICE - The two constants are not interchangeable
// =============================================================================

func TestNetContractPrice_BacksOutTax(t *testing.T) {
	// GIVEN: A gross contract price of 115000
	// WHEN: Backing out the 15% tax component
	// THEN: The net price is exactly 100000
	assertDecimal(t, dec(100000), staffing.NetContractPrice(dec(115000)), "net price")
}

func TestLegacyNetContractPrice_IsAFlatHaircut(t *testing.T) {
	// GIVEN: The same gross price of 115000
	// WHEN: Applying the legacy 0.85 factor
	// THEN: The result is 97750 - NOT the 100000 the division gives
	legacy := staffing.LegacyNetContractPrice(dec(115000))
	assertDecimal(t, dec(97750), legacy, "legacy net price")

	if legacy.Equal(staffing.NetContractPrice(dec(115000))) {
		t.Fatal("legacy and modern net prices must differ; they are distinct formulas")
	}
}

// =============================================================================
// BUDGET COST
// =============================================================================

func TestBudgetCost_MonthlyTimesPeriodPlusCommission(t *testing.T) {
	// GIVEN: A slot at 2500/month for 12 months, 2% commission on a 115000 project
	// WHEN: Deriving the budget cost
	// THEN: 2500*12 + 2% of 100000 = 30000 + 2000 = 32000
	slot := standardSlot()
	assertDecimal(t, dec(32000), staffing.BudgetCost(slot, dec(115000)), "budget cost")
}

func TestBudgetCost_CommissionIsOneTime(t *testing.T) {
	// GIVEN: The same slot planned for 1 month instead of 12
	// WHEN: Deriving the budget cost
	// THEN: The commission is unchanged - it never scales with duration
	slot := standardSlot()
	slot.PeriodMonths = 1
	assertDecimal(t, dec(4500), staffing.BudgetCost(slot, dec(115000)), "budget cost")
}

func TestBudgetCost_ZeroPriceProject(t *testing.T) {
	// GIVEN: A project with no contract price yet
	// WHEN: Deriving the budget cost
	// THEN: Only the monthly components contribute
	slot := standardSlot()
	assertDecimal(t, dec(30000), staffing.BudgetCost(slot, decimal.Zero), "budget cost")
}

// =============================================================================
// SNAPSHOT PRECEDENCE
// =============================================================================

func TestResolveCost_SnapshotWinsFieldByField(t *testing.T) {
	// GIVEN: A snapshot that pins salary but not incentive or commission
	emp := &staffing.Employee{
		Salary:            dec(6000),
		MonthlyIncentive:  dec(400),
		CommissionPercent: dec(3),
	}
	snapshot := staffing.CostSnapshot{
		Salary:  decPtr(5000),
		Tickets: decPtr(150),
	}

	// WHEN: Resolving the effective cost
	cost := staffing.ResolveCost(snapshot, emp)

	// THEN: The pinned fields come from the snapshot, the rest from the employee
	assertDecimal(t, dec(5000), cost.Salary, "salary")
	assertDecimal(t, dec(400), cost.MonthlyIncentive, "incentive")
	assertDecimal(t, dec(3), cost.CommissionPercent, "commission percent")
	assertDecimal(t, dec(150), cost.Tickets, "tickets")
	assertDecimal(t, decimal.Zero, cost.Hoteling, "hoteling")
}

func TestResolveCost_LaterRaiseDoesNotAlterSnapshottedCost(t *testing.T) {
	// GIVEN: A full snapshot taken at assignment creation
	snapshot := staffing.CostSnapshot{
		Salary:            decPtr(5000),
		MonthlyIncentive:  decPtr(300),
		CommissionPercent: decPtr(2),
		Tickets:           decPtr(0),
		Hoteling:          decPtr(0),
		Others:            decPtr(0),
	}
	emp := &staffing.Employee{Salary: dec(5000), MonthlyIncentive: dec(300), CommissionPercent: dec(2)}
	before := staffing.ResolveCost(snapshot, emp)

	// WHEN: The employee later gets a raise
	emp.Salary = dec(9000)
	after := staffing.ResolveCost(snapshot, emp)

	// THEN: The resolved cost is unchanged
	assertDecimal(t, before.MonthlyCost(), after.MonthlyCost(), "monthly cost")
}

func TestResolveCost_NilEmployee_VendorAssignment(t *testing.T) {
	// GIVEN: No employee (vendor assignment) and a partial snapshot
	snapshot := staffing.CostSnapshot{Salary: decPtr(4000)}

	// WHEN: Resolving
	cost := staffing.ResolveCost(snapshot, nil)

	// THEN: Unsnapshotted fields resolve to zero, not a panic
	assertDecimal(t, dec(4000), cost.Salary, "salary")
	assertDecimal(t, decimal.Zero, cost.CommissionPercent, "commission percent")
}

// =============================================================================
// ACTUAL COST
// =============================================================================

func TestMonthsWorked_FixedThirtyDayMonth(t *testing.T) {
	// GIVEN/WHEN: 45 elapsed days
	// THEN: Exactly 1.5 months, regardless of calendar months crossed
	assertDecimal(t, dec(1.5), staffing.MonthsWorked(45), "months worked")
	assertDecimal(t, dec(1), staffing.MonthsWorked(30), "months worked")
	assertDecimal(t, decimal.Zero, staffing.MonthsWorked(0), "months worked")
}

func TestActualAssignmentCost_ClosedRange(t *testing.T) {
	// GIVEN: A 30-day assignment with a full snapshot at 5300/month, 2% commission
	end := jan(31)
	a := &staffing.ActualAssignment{
		StartDate: jan(1),
		EndDate:   &end,
		Status:    staffing.StatusActive,
		Snapshot: staffing.CostSnapshot{
			Salary:            decPtr(5000),
			MonthlyIncentive:  decPtr(300),
			CommissionPercent: decPtr(2),
			Tickets:           decPtr(0),
			Hoteling:          decPtr(0),
			Others:            decPtr(0),
		},
	}

	// WHEN: Costing against a net price of 100000
	cost := staffing.ActualAssignmentCost(a, nil, dec(100000), jan(31))

	// THEN: 5300 * 1 month + 2000 commission
	assertDecimal(t, dec(7300), cost, "actual cost")
}

func TestActualAssignmentCost_OpenEndRunsThroughAsOf(t *testing.T) {
	// GIVEN: An open-ended assignment started Jan 1
	a := &staffing.ActualAssignment{
		StartDate: jan(1),
		Status:    staffing.StatusActive,
		Snapshot: staffing.CostSnapshot{
			Salary:            decPtr(3000),
			MonthlyIncentive:  decPtr(0),
			CommissionPercent: decPtr(0),
			Tickets:           decPtr(0),
			Hoteling:          decPtr(0),
			Others:            decPtr(0),
		},
	}

	// WHEN: Costing as of Jan 16 (15 elapsed days)
	cost := staffing.ActualAssignmentCost(a, nil, dec(100000), jan(16))

	// THEN: Half a month of 3000
	assertDecimal(t, dec(1500), cost, "actual cost")
}

// =============================================================================
// VARIANCE
// =============================================================================

func TestVarianceOfPlannedPercent(t *testing.T) {
	// GIVEN: Actual 12000 against planned 10000
	// THEN: +20% of plan
	assertDecimal(t, dec(20), staffing.VarianceOfPlannedPercent(dec(12000), dec(10000)), "variance pct")

	// Underspend is negative
	assertDecimal(t, dec(-25), staffing.VarianceOfPlannedPercent(dec(7500), dec(10000)), "variance pct")

	// Zero plan yields zero, not a division error
	assertDecimal(t, decimal.Zero, staffing.VarianceOfPlannedPercent(dec(500), decimal.Zero), "variance pct")
}

// =============================================================================
// UTILIZATION - Duration ratio, independent of allocation percent
// =============================================================================

func TestSlotUtilizationPercent_DurationRatio(t *testing.T) {
	// GIVEN: A 2-month slot (60 planned days) staffed for 30 days at 50% allocation
	slot := standardSlot()
	slot.PeriodMonths = 2
	slotID := slot.ID
	end := jan(31)
	assignments := []staffing.ActualAssignment{{
		ID:                "a-1",
		SlotID:            &slotID,
		StartDate:         jan(1),
		EndDate:           &end,
		AllocationPercent: dec(50),
		Status:            staffing.StatusActive,
	}}

	// WHEN: Computing slot utilization
	got := staffing.SlotUtilizationPercent(slot, assignments, jan(31))

	// THEN: 30/60 = 50%, ignoring the allocation percent entirely
	assertDecimal(t, dec(50), got, "slot utilization")
}

func TestSlotUtilizationPercent_CancelledExcluded(t *testing.T) {
	// GIVEN: The only assignment on the slot is cancelled
	slot := standardSlot()
	slot.PeriodMonths = 2
	slotID := slot.ID
	end := jan(31)
	assignments := []staffing.ActualAssignment{{
		ID:        "a-1",
		SlotID:    &slotID,
		StartDate: jan(1),
		EndDate:   &end,
		Status:    staffing.StatusCancelled,
	}}

	// THEN: Utilization is zero; cancellation removes it from the books
	assertDecimal(t, decimal.Zero, staffing.SlotUtilizationPercent(slot, assignments, jan(31)), "slot utilization")
}

// =============================================================================
// PROJECT KPI ROLLUP
// =============================================================================

func TestComputeProjectKPIs_UsesLegacyNetOnActualSide(t *testing.T) {
	// GIVEN: A project with one slot and one completed 30-day assignment whose
	// snapshot matches the plan exactly
	project := &staffing.Project{
		ID:           "proj-1",
		StartDate:    jan(1),
		EndDate:      jan(31),
		ProjectPrice: dec(115000),
	}
	slot := standardSlot()
	slot.PeriodMonths = 1
	slotID := slot.ID
	end := jan(31)
	assignments := []staffing.ActualAssignment{{
		ID:                "a-1",
		ProjectID:         project.ID,
		SlotID:            &slotID,
		StartDate:         jan(1),
		EndDate:           &end,
		AllocationPercent: dec(100),
		Status:            staffing.StatusCompleted,
		Snapshot: staffing.CostSnapshot{
			Salary:            decPtr(2000),
			MonthlyIncentive:  decPtr(300),
			CommissionPercent: decPtr(2),
			Tickets:           decPtr(120),
			Hoteling:          decPtr(50),
			Others:            decPtr(30),
		},
	}}

	// WHEN: Rolling up KPIs
	kpi := staffing.ComputeProjectKPIs(project, []staffing.PlannedTeamSlot{*slot}, assignments, nil, jan(31))

	// THEN: Planned uses price/1.15 (commission 2000), actual uses price*0.85
	// (commission 1955); identical staffing still shows a variance.
	assertDecimal(t, dec(4500), kpi.PlannedCost, "planned cost")
	assertDecimal(t, dec(4455), kpi.ActualCost, "actual cost")
	assertDecimal(t, dec(-45), kpi.Variance, "variance")
	assertDecimal(t, dec(-1), kpi.VarianceOfPlannedPct, "variance pct")
	if kpi.CompletedAssignments != 1 || kpi.ActiveAssignments != 0 {
		t.Errorf("expected 1 completed / 0 active, got %d / %d",
			kpi.CompletedAssignments, kpi.ActiveAssignments)
	}
}

func TestComputeProjectKPIs_AllocationBookkeeping(t *testing.T) {
	// GIVEN: A 100% slot with a 60% active assignment and a 40% cancelled one
	project := &staffing.Project{
		ID:           "proj-1",
		StartDate:    jan(1),
		EndDate:      jan(31),
		ProjectPrice: dec(115000),
	}
	slot := standardSlot()
	slotID := slot.ID
	end := jan(31)
	assignments := []staffing.ActualAssignment{
		{
			ID: "a-active", ProjectID: project.ID, SlotID: &slotID,
			StartDate: jan(1), EndDate: &end,
			AllocationPercent: dec(60), Status: staffing.StatusActive,
		},
		{
			ID: "a-cancelled", ProjectID: project.ID, SlotID: &slotID,
			StartDate: jan(1), EndDate: &end,
			AllocationPercent: dec(40), Status: staffing.StatusCancelled,
		},
	}

	// WHEN: Rolling up
	kpi := staffing.ComputeProjectKPIs(project, []staffing.PlannedTeamSlot{*slot}, assignments, nil, jan(31))

	// THEN: Only the active assignment counts toward utilized allocation
	assertDecimal(t, dec(100), kpi.PlannedAllocationPct, "planned allocation")
	assertDecimal(t, dec(60), kpi.UtilizedAllocationPct, "utilized allocation")
	assertDecimal(t, dec(40), kpi.RemainingAllocationPct, "remaining allocation")
}

func TestComputeProjectKPIs_WeightedUtilizationDiffersFromDurationRatio(t *testing.T) {
	// GIVEN: A 30-day project, one slot staffed the whole span at 50% allocation
	project := &staffing.Project{
		ID:           "proj-1",
		StartDate:    jan(1),
		EndDate:      jan(31),
		ProjectPrice: dec(115000),
	}
	slot := standardSlot()
	slot.PeriodMonths = 1
	slotID := slot.ID
	end := jan(31)
	assignments := []staffing.ActualAssignment{{
		ID: "a-1", ProjectID: project.ID, SlotID: &slotID,
		StartDate: jan(1), EndDate: &end,
		AllocationPercent: dec(50), Status: staffing.StatusActive,
	}}

	// WHEN: Computing both formulas
	kpi := staffing.ComputeProjectKPIs(project, []staffing.PlannedTeamSlot{*slot}, assignments, nil, jan(31))
	durationRatio := staffing.SlotUtilizationPercent(slot, assignments, jan(31))

	// THEN: The KPI average weights by allocation (50% * 30/30 = 50) while the
	// duration ratio ignores allocation (30/30 = 100). Both are intentional.
	assertDecimal(t, dec(50), kpi.AverageUtilizationPct, "weighted utilization")
	assertDecimal(t, dec(100), durationRatio, "duration-ratio utilization")
}
