/*
Package staffing provides the core staffing allocation engine.

PURPOSE:
  This package contains the types and services for planning labor capacity
  on consultancy projects and reconciling it against real assignments.
  Capacity is planned per project role as a PlannedTeamSlot with a derived
  budget cost; real staffing is recorded as ActualAssignments with date-range
  and allocation-percentage constraints, an approval workflow for risky
  placements, and cost reconciliation against the plan.

KEY CONCEPTS IN THIS FILE (types.go):
  - Date/DateRange: Day-granularity time points and closed ranges
  - Identifiers: Type-safe ids for projects, slots, assignments, employees
  - Decimal helpers: Shared constructors for money and percentage math

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for all money and percent arithmetic
  2. Type Safety: Strong typing for ids prevents mixing entity kinds
  3. Explicit references: Entities link by id, never by object navigation
  4. Auditability: Every mutation records an actor and a timestamp

SEE ALSO:
  - entities.go: Domain entities and the assignment state machine
  - costing.go: Budget/actual cost formulas and utilization math
  - planner.go: Slot Planner service
  - engine.go: Assignment Engine service
*/
package staffing

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ProjectID string
type SlotID string
type AssignmentID string
type EmployeeID string
type RoleID string

// =============================================================================
// DECIMAL HELPERS - Money and percent share the same representation
// =============================================================================

// Dec builds a decimal from a float for literals in construction paths.
func Dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// DecInt builds a decimal from an int.
func DecInt(v int) decimal.Decimal { return decimal.NewFromInt(int64(v)) }

// MustParseDecimal parses a decimal string, returning zero on failure.
// Used when scanning persisted values that were written by this engine.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

var (
	hundred = decimal.NewFromInt(100)

	// taxFactor backs a fixed 15% tax component out of the gross contract
	// price: net = price / 1.15.
	taxFactor = decimal.NewFromFloat(1.15)

	// legacyNetFactor is the older net-price constant (net = price * 0.85)
	// still used by the project KPI actual-cost path. NOT equivalent to
	// dividing by 1.15; both formulas are kept distinct on purpose until a
	// domain owner confirms which is canonical.
	legacyNetFactor = decimal.NewFromFloat(0.85)

	// daysPerMonth is the fixed 30-day month used for duration-to-months
	// conversion. Not calendar-month-aware.
	daysPerMonth = decimal.NewFromInt(30)
)

// =============================================================================
// DATE - Day-granularity time point
// =============================================================================

// Date is a calendar day in UTC. All staffing ranges are day-granular.
type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return DateOf(time.Now().UTC())
}

// ParseDate parses an ISO date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }
func (d Date) IsZero() bool                  { return d.Time.IsZero() }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{Time: d.Time.AddDate(0, n, 0)} }

func (d Date) String() string { return d.Time.Format("2006-01-02") }

// DaysBetween returns elapsed calendar days from one date to another.
func DaysBetween(from, to Date) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

// =============================================================================
// DATE RANGE - Closed interval [Start, End]
// =============================================================================

// DateRange is a closed day-granular interval. An open-ended assignment is
// represented with a nil *Date end at the entity level and clamped to a
// query-time "as of" date before range math is applied.
type DateRange struct {
	Start Date
	End   Date
}

// Contains returns true if the date falls within [Start, End].
func (r DateRange) Contains(d Date) bool {
	return d.AfterOrEqual(r.Start) && d.BeforeOrEqual(r.End)
}

// Overlaps returns true if two closed ranges share at least one day.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.Start.BeforeOrEqual(other.End) && other.Start.BeforeOrEqual(r.End)
}

// Days returns every day in the range in order.
func (r DateRange) Days() []Date {
	var days []Date
	current := r.Start
	for current.BeforeOrEqual(r.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

// DurationDays returns the elapsed days between Start and End.
func (r DateRange) DurationDays() int {
	return DaysBetween(r.Start, r.End)
}

func (r DateRange) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + "]"
}

// EffectiveRange resolves an assignment's possibly open-ended span against
// an as-of date: an open end is treated as running through asOf.
func EffectiveRange(start Date, end *Date, asOf Date) DateRange {
	if end != nil {
		return DateRange{Start: start, End: *end}
	}
	return DateRange{Start: start, End: asOf}
}
