/*
costing.go - Budget/actual cost formulas, variance, and utilization math

PURPOSE:
  Pure computation layer consumed by the Slot Planner (budget cost), the
  Assignment Engine (variance warnings), and reporting (KPI rollups). No
  store access; callers load entities and pass them in.

FORMULAS:
  Budget cost (planned, per slot):
    netPrice   = projectPrice / 1.15
    commission = plannedCommissionPercent/100 * netPrice   (one-time)
    budget     = plannedMonthlyCost * periodMonths + commission

  Actual cost (per assignment):
    monthsWorked = durationDays / 30                        (fixed 30-day month)
    commission   = snapshotOrLiveCommissionPercent/100 * netPrice  (one-time)
    actual       = snapshotOrLiveMonthlyCost * monthsWorked + commission

  Snapshot values take precedence over live employee values field-by-field;
  fields with no live equivalent (tickets, hoteling, others) fall back to
  zero.

TWO NET-PRICE CONSTANTS:
  The planned and per-assignment paths divide by 1.15; the project KPI
  actual-cost path multiplies by 0.85. These are NOT equivalent and are
  kept distinct deliberately — see NetContractPrice vs
  LegacyNetContractPrice. Tests pin both.

TWO UTILIZATION FORMULAS:
  Per-slot utilization is a duration ratio (staffed days over planned days),
  independent of allocation percent. Per-project KPI utilization weights by
  allocation percent and project duration. Both exist in the system and are
  reproduced distinctly, not unified.

SEE ALSO:
  - planner.go: Derives ComputedBudgetCost via BudgetCost
  - engine.go: Uses ProjectedAssignmentCost for the variance warning
*/
package staffing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// NET CONTRACT PRICE - Two deliberately distinct tax adjustments
// =============================================================================

// NetContractPrice backs the fixed 15% tax component out of the gross
// contract price: price / 1.15. Used by the budget formula and the
// per-assignment actual-cost path.
func NetContractPrice(projectPrice decimal.Decimal) decimal.Decimal {
	return projectPrice.Div(taxFactor)
}

// LegacyNetContractPrice is the older adjustment still used by the project
// KPI actual-cost rollup: price * 0.85. Not equivalent to NetContractPrice;
// kept until a domain owner confirms which is canonical.
func LegacyNetContractPrice(projectPrice decimal.Decimal) decimal.Decimal {
	return projectPrice.Mul(legacyNetFactor)
}

// CommissionAmount computes the one-time commission charge on a net price.
// Never scaled by duration.
func CommissionAmount(commissionPercent, netPrice decimal.Decimal) decimal.Decimal {
	return commissionPercent.Div(hundred).Mul(netPrice)
}

// =============================================================================
// BUDGET COST - Planned cost per slot
// =============================================================================

// BudgetCost derives a slot's ComputedBudgetCost from its planned monthly
// components, its duration, and the owning project's gross price.
func BudgetCost(slot *PlannedTeamSlot, projectPrice decimal.Decimal) decimal.Decimal {
	monthly := slot.PlannedMonthlyCost()
	commission := CommissionAmount(slot.PlannedCommissionPercent, NetContractPrice(projectPrice))
	return monthly.Mul(DecInt(slot.PeriodMonths)).Add(commission)
}

// =============================================================================
// SNAPSHOT PRECEDENCE - Resolve effective cost fields
// =============================================================================

// EffectiveCost is the resolved per-month cost components and commission
// percent for an assignment after applying snapshot precedence.
type EffectiveCost struct {
	Salary            decimal.Decimal
	MonthlyIncentive  decimal.Decimal
	CommissionPercent decimal.Decimal
	Tickets           decimal.Decimal
	Hoteling          decimal.Decimal
	Others            decimal.Decimal
}

// MonthlyCost sums the recurring components.
func (c EffectiveCost) MonthlyCost() decimal.Decimal {
	return c.Salary.Add(c.MonthlyIncentive).Add(c.Tickets).Add(c.Hoteling).Add(c.Others)
}

// ResolveCost applies field-by-field snapshot precedence. employee may be
// nil (vendor assignments); missing snapshot fields then resolve to zero.
func ResolveCost(snapshot CostSnapshot, employee *Employee) EffectiveCost {
	pick := func(snap *decimal.Decimal, live decimal.Decimal) decimal.Decimal {
		if snap != nil {
			return *snap
		}
		return live
	}
	var liveSalary, liveIncentive, liveCommission decimal.Decimal
	if employee != nil {
		liveSalary = employee.Salary
		liveIncentive = employee.MonthlyIncentive
		liveCommission = employee.CommissionPercent
	}
	return EffectiveCost{
		Salary:            pick(snapshot.Salary, liveSalary),
		MonthlyIncentive:  pick(snapshot.MonthlyIncentive, liveIncentive),
		CommissionPercent: pick(snapshot.CommissionPercent, liveCommission),
		// No live equivalent for the remaining fields; zero when unset.
		Tickets:  pick(snapshot.Tickets, decimal.Zero),
		Hoteling: pick(snapshot.Hoteling, decimal.Zero),
		Others:   pick(snapshot.Others, decimal.Zero),
	}
}

// =============================================================================
// ACTUAL COST - Per assignment
// =============================================================================

// MonthsWorked converts elapsed calendar days to months with a fixed 30-day
// month. Not calendar-month-aware.
func MonthsWorked(durationDays int) decimal.Decimal {
	return DecInt(durationDays).Div(daysPerMonth)
}

// ActualAssignmentCost computes an assignment's actual cost against the
// given net price basis. Duration runs from StartDate to EndDate, or to
// asOf while the assignment is still open.
func ActualAssignmentCost(a *ActualAssignment, employee *Employee, netPrice decimal.Decimal, asOf Date) decimal.Decimal {
	cost := ResolveCost(a.Snapshot, employee)
	months := MonthsWorked(a.Range(asOf).DurationDays())
	commission := CommissionAmount(cost.CommissionPercent, netPrice)
	return cost.MonthlyCost().Mul(months).Add(commission)
}

// ProjectedAssignmentCost estimates what an assignment would cost over a
// duration, from the employee's live values. Used for the pre-creation
// variance warning before a snapshot exists.
func ProjectedAssignmentCost(employee *Employee, durationDays int, netPrice decimal.Decimal) decimal.Decimal {
	monthly := employee.Salary.Add(employee.MonthlyIncentive)
	months := MonthsWorked(durationDays)
	commission := CommissionAmount(employee.CommissionPercent, netPrice)
	return monthly.Mul(months).Add(commission)
}

// PlannedComparableCost is the slot's planned cost over the same duration,
// for comparison against a projected assignment cost.
func PlannedComparableCost(slot *PlannedTeamSlot, durationDays int, netPrice decimal.Decimal) decimal.Decimal {
	months := MonthsWorked(durationDays)
	commission := CommissionAmount(slot.PlannedCommissionPercent, netPrice)
	return slot.PlannedMonthlyCost().Mul(months).Add(commission)
}

// =============================================================================
// VARIANCE
// =============================================================================

// Variance is actual minus planned.
func Variance(actual, planned decimal.Decimal) decimal.Decimal {
	return actual.Sub(planned)
}

// VarianceOfPlannedPercent is variance over planned, as a percent. Zero when
// planned is zero rather than undefined.
func VarianceOfPlannedPercent(actual, planned decimal.Decimal) decimal.Decimal {
	if planned.IsZero() {
		return decimal.Zero
	}
	return Variance(actual, planned).Div(planned).Mul(hundred)
}

// DeviationPercent is the absolute relative deviation of actual from
// planned, as a percent. Zero when planned is zero.
func DeviationPercent(actual, planned decimal.Decimal) decimal.Decimal {
	if planned.IsZero() {
		return decimal.Zero
	}
	return actual.Sub(planned).Abs().Div(planned).Mul(hundred)
}

// =============================================================================
// UTILIZATION - Two distinct formulas
// =============================================================================

// SlotUtilizationPercent measures how much of the slot's planned duration
// has actually been covered by staffing, independent of allocation percent:
// staffed days across non-cancelled assignments over planned days.
func SlotUtilizationPercent(slot *PlannedTeamSlot, assignments []ActualAssignment, asOf Date) decimal.Decimal {
	plannedDays := slot.PeriodMonths * 30
	if plannedDays == 0 {
		return decimal.Zero
	}
	staffedDays := 0
	for i := range assignments {
		a := &assignments[i]
		if a.SlotID == nil || *a.SlotID != slot.ID || !a.Status.CountsTowardCost() {
			continue
		}
		staffedDays += a.Range(asOf).DurationDays()
	}
	return DecInt(staffedDays).Div(DecInt(plannedDays)).Mul(hundred)
}

// slotWeightedUtilization is the KPI-side formula for a single slot:
// sum of allocationPercent * durationDays over the project's total duration.
// A distinct definition from SlotUtilizationPercent by design.
func slotWeightedUtilization(slotID SlotID, assignments []ActualAssignment, projectDays int, asOf Date) decimal.Decimal {
	if projectDays == 0 {
		return decimal.Zero
	}
	weighted := decimal.Zero
	for i := range assignments {
		a := &assignments[i]
		if a.SlotID == nil || *a.SlotID != slotID || !a.Status.CountsTowardCost() {
			continue
		}
		days := DecInt(a.Range(asOf).DurationDays())
		weighted = weighted.Add(a.AllocationPercent.Mul(days))
	}
	return weighted.Div(DecInt(projectDays))
}

// =============================================================================
// PROJECT KPI ROLLUP
// =============================================================================

// ProjectKPIs aggregates planned vs actual cost and allocation metrics for
// one project.
type ProjectKPIs struct {
	ProjectID ProjectID

	PlannedCost            decimal.Decimal
	ActualCost             decimal.Decimal
	Variance               decimal.Decimal
	VarianceOfPlannedPct   decimal.Decimal
	PlannedAllocationPct   decimal.Decimal
	UtilizedAllocationPct  decimal.Decimal
	RemainingAllocationPct decimal.Decimal
	ActiveAssignments      int
	CompletedAssignments   int
	AverageUtilizationPct  decimal.Decimal
}

// ComputeProjectKPIs rolls up a project's slots and assignments. The actual
// cost side uses the legacy net-price basis (price * 0.85), which differs
// from the planned side's 1/1.15 basis; see LegacyNetContractPrice.
func ComputeProjectKPIs(project *Project, slots []PlannedTeamSlot, assignments []ActualAssignment, employees map[EmployeeID]*Employee, asOf Date) ProjectKPIs {
	kpi := ProjectKPIs{ProjectID: project.ID}

	for i := range slots {
		slot := &slots[i]
		kpi.PlannedCost = kpi.PlannedCost.Add(BudgetCost(slot, project.ProjectPrice))
		kpi.PlannedAllocationPct = kpi.PlannedAllocationPct.Add(slot.AllocationPercent)
	}

	legacyNet := LegacyNetContractPrice(project.ProjectPrice)
	for i := range assignments {
		a := &assignments[i]
		if !a.Status.CountsTowardCost() {
			continue
		}
		kpi.ActualCost = kpi.ActualCost.Add(ActualAssignmentCost(a, employees[a.EmployeeID], legacyNet, asOf))
		if a.Status.CountsTowardAllocation() {
			kpi.UtilizedAllocationPct = kpi.UtilizedAllocationPct.Add(a.AllocationPercent)
		}
		switch a.Status {
		case StatusActive:
			kpi.ActiveAssignments++
		case StatusCompleted:
			kpi.CompletedAssignments++
		}
	}

	kpi.Variance = Variance(kpi.ActualCost, kpi.PlannedCost)
	kpi.VarianceOfPlannedPct = VarianceOfPlannedPercent(kpi.ActualCost, kpi.PlannedCost)

	kpi.RemainingAllocationPct = kpi.PlannedAllocationPct.Sub(kpi.UtilizedAllocationPct)
	if kpi.RemainingAllocationPct.IsNegative() {
		kpi.RemainingAllocationPct = decimal.Zero
	}

	if len(slots) > 0 {
		projectDays := project.Range().DurationDays()
		total := decimal.Zero
		for i := range slots {
			total = total.Add(slotWeightedUtilization(slots[i].ID, assignments, projectDays, asOf))
		}
		kpi.AverageUtilizationPct = total.Div(DecInt(len(slots)))
	}

	return kpi
}
