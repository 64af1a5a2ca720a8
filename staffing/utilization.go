/*
utilization.go - Utilization Query Service

PURPOSE:
  Read-only aggregation across assignments for a date window. Serves two
  consumers: dashboards (dense daily allocation series for chart rendering
  and capacity-conflict visualization) and the Assignment Engine's own
  capacity check (employee allocation over a window).

COUNTING RULES:
  Planned and Active assignments count. Planned counts BEFORE approval —
  that is the source system's behavior and is reproduced exactly. OnHold,
  Completed and Cancelled never count here.

SEE ALSO:
  - engine.go: Builds the over-100% check on EmployeeAllocation
*/
package staffing

import (
	"context"

	"github.com/shopspring/decimal"
)

// UtilizationService aggregates allocation over time windows.
type UtilizationService struct {
	Store AssignmentStore
}

func NewUtilizationService(store AssignmentStore) *UtilizationService {
	return &UtilizationService{Store: store}
}

// =============================================================================
// EMPLOYEE ALLOCATION - The over-100% primitive
// =============================================================================

// EmployeeAllocation sums AllocationPercent across the employee's Planned
// and Active assignments that overlap the window. Open-ended assignments
// are treated as running through the window's end.
func (us *UtilizationService) EmployeeAllocation(ctx context.Context, employeeID EmployeeID, window DateRange) (decimal.Decimal, error) {
	assignments, err := us.Store.ListAssignments(ctx, AssignmentFilter{EmployeeID: &employeeID})
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for i := range assignments {
		a := &assignments[i]
		if !a.Status.CountsTowardAllocation() {
			continue
		}
		if a.Range(window.End).Overlaps(window) {
			total = total.Add(a.AllocationPercent)
		}
	}
	return total, nil
}

// =============================================================================
// DAILY SERIES - For chart rendering
// =============================================================================

// DailyUtilization is one point of the dense daily series.
type DailyUtilization struct {
	Date              Date
	AllocationPercent decimal.Decimal
}

// EmployeeUtilization produces one point per calendar day in [from, to],
// with no gaps: for each day, the sum of AllocationPercent of all Planned
// and Active assignments covering that day.
func (us *UtilizationService) EmployeeUtilization(ctx context.Context, employeeID EmployeeID, from, to Date) ([]DailyUtilization, error) {
	if to.Before(from) {
		return nil, ErrInvalidDateRange
	}

	assignments, err := us.Store.ListAssignments(ctx, AssignmentFilter{EmployeeID: &employeeID})
	if err != nil {
		return nil, err
	}

	window := DateRange{Start: from, End: to}
	var counting []ActualAssignment
	for i := range assignments {
		a := assignments[i]
		if a.Status.CountsTowardAllocation() && a.Range(to).Overlaps(window) {
			counting = append(counting, a)
		}
	}

	series := make([]DailyUtilization, 0, window.DurationDays()+1)
	for _, day := range window.Days() {
		total := decimal.Zero
		for i := range counting {
			if counting[i].Range(to).Contains(day) {
				total = total.Add(counting[i].AllocationPercent)
			}
		}
		series = append(series, DailyUtilization{Date: day, AllocationPercent: total})
	}
	return series, nil
}
