/*
entities.go - Domain entities and the assignment status machine

PURPOSE:
  Defines the persisted shapes the engine operates on. Entities reference
  each other by id only; stores load related records with id lookups, so
  there are no navigable object graphs to accidentally serialize or
  lazy-load.

ENTITIES:
  Project:         Aggregate root for staffing; read-only here except for
                   status and date checks
  Role:            Catalog entry matched between employees and slots
  Employee:        Identity + live cost fields (default cost source)
  PlannedTeamSlot: Budgeted capacity for one role on one project
  ActualAssignment: A real staffing fact against a project/slot

STATUS MACHINE (ActualAssignment):

      ┌─────────┐  approve   ┌────────┐  unassign/past-end  ┌───────────┐
      │ Planned │──────────▶ │ Active │───────────────────▶ │ Completed │
      └─────────┘            └────────┘                     └───────────┘
        │    │ ▲              │     │
 reject │    │ └──resume──┐   │hold │ unassign (end date)
        ▼    └───hold──┐  │   ▼     ▼
   ┌───────────┐      ┌┴──┴────────┐
   │ Cancelled │      │   OnHold   │
   └───────────┘      └────────────┘

  Cancelled and Completed are terminal. Approve and Reject only succeed
  from Planned. OnHold assignments are excluded from new-conflict checks
  but retained for reporting.

AUDIT:
  Every entity carries CreatedBy/CreatedAt/ModifiedBy/ModifiedAt. The actor
  is always an explicit argument on mutating operations.

SEE ALSO:
  - store.go: Persistence interfaces over these entities
  - engine.go: Drives the status machine
*/
package staffing

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AUDIT FIELDS - Embedded in every entity
// =============================================================================

type Audit struct {
	CreatedBy  string
	CreatedAt  time.Time
	ModifiedBy string
	ModifiedAt time.Time
}

// Touch records a mutation by the actor.
func (a *Audit) Touch(actor string, at time.Time) {
	if a.CreatedAt.IsZero() {
		a.CreatedBy = actor
		a.CreatedAt = at
	}
	a.ModifiedBy = actor
	a.ModifiedAt = at
}

// =============================================================================
// PROJECT - Aggregate root (read-only from this engine's perspective)
// =============================================================================

type ProjectStatus string

const (
	ProjectActive ProjectStatus = "active"
	ProjectClosed ProjectStatus = "closed"
)

type Project struct {
	ID         ProjectID
	Name       string
	ClientName string
	StartDate  Date
	EndDate    Date

	// ExpectedWorkingPeriodMonths caps the duration of any slot planned
	// against this project.
	ExpectedWorkingPeriodMonths int

	// ProjectPrice is the gross contract price, used as the commission base
	// after backing out the tax component. Currency is a label only; the
	// engine never converts.
	ProjectPrice decimal.Decimal
	Currency     string

	Status ProjectStatus
	Audit
}

// Range returns the project's date range.
func (p *Project) Range() DateRange {
	return DateRange{Start: p.StartDate, End: p.EndDate}
}

// =============================================================================
// ROLE & EMPLOYEE
// =============================================================================

type Role struct {
	ID   RoleID
	Name string
	Audit
}

// Employee carries the live cost fields used as the default source for
// assignment cost when no snapshot is present.
type Employee struct {
	ID     EmployeeID
	Name   string
	Email  string
	RoleID RoleID

	Salary            decimal.Decimal
	MonthlyIncentive  decimal.Decimal
	CommissionPercent decimal.Decimal

	Audit
}

// =============================================================================
// PLANNED TEAM SLOT - Budgeted capacity unit
// =============================================================================

type PlannedTeamSlot struct {
	ID        SlotID
	ProjectID ProjectID
	RoleID    RoleID

	// PeriodMonths must not exceed the project's expected working period.
	PeriodMonths int

	// AllocationPercent is the ceiling that the sum of allocation across all
	// counting assignments referencing this slot must never exceed.
	AllocationPercent decimal.Decimal

	// Planned monthly cost components.
	PlannedSalary            decimal.Decimal
	PlannedIncentive         decimal.Decimal
	PlannedCommissionPercent decimal.Decimal
	PlannedTickets           decimal.Decimal
	PlannedHoteling          decimal.Decimal
	PlannedOthers            decimal.Decimal

	// ComputedBudgetCost is always re-derived from the budget formula,
	// never hand-entered.
	ComputedBudgetCost decimal.Decimal

	// IsAssigned is true when any counting assignment references the slot.
	IsAssigned bool

	// VersionToken guards updates with optimistic concurrency.
	VersionToken string

	Deleted bool
	Audit
}

// PlannedMonthlyCost sums the slot's recurring monthly components.
func (s *PlannedTeamSlot) PlannedMonthlyCost() decimal.Decimal {
	return s.PlannedSalary.
		Add(s.PlannedIncentive).
		Add(s.PlannedTickets).
		Add(s.PlannedHoteling).
		Add(s.PlannedOthers)
}

// =============================================================================
// ACTUAL ASSIGNMENT - A real staffing fact
// =============================================================================

type AssignmentStatus string

const (
	StatusPlanned   AssignmentStatus = "planned"
	StatusActive    AssignmentStatus = "active"
	StatusOnHold    AssignmentStatus = "on_hold"
	StatusCompleted AssignmentStatus = "completed"
	StatusCancelled AssignmentStatus = "cancelled"
)

// transitions is the full status machine. Absence means forbidden.
var transitions = map[AssignmentStatus][]AssignmentStatus{
	StatusPlanned: {StatusActive, StatusCancelled, StatusCompleted, StatusOnHold},
	StatusActive:  {StatusCompleted, StatusCancelled, StatusOnHold},
	StatusOnHold:  {StatusActive, StatusCancelled, StatusCompleted},
	// Completed and Cancelled are terminal.
}

// CanTransition reports whether the status change is allowed.
func (s AssignmentStatus) CanTransition(to AssignmentStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no operation may leave this status.
func (s AssignmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CountsTowardAllocation reports whether the assignment participates in
// slot-ceiling and employee-capacity sums. Planned assignments count before
// approval; OnHold is excluded from new-conflict checks.
func (s AssignmentStatus) CountsTowardAllocation() bool {
	return s == StatusPlanned || s == StatusActive
}

// CountsTowardCost reports whether the assignment participates in actual
// cost and historical utilization reporting. Only cancellation removes an
// assignment from the books.
func (s AssignmentStatus) CountsTowardCost() bool {
	return s != StatusCancelled
}

// CostSnapshot captures the employee's cost fields at assignment-creation
// time. Snapshot values take precedence over live values field-by-field, so
// later pay changes never retroactively alter historical cost.
type CostSnapshot struct {
	Salary            *decimal.Decimal
	MonthlyIncentive  *decimal.Decimal
	CommissionPercent *decimal.Decimal
	Tickets           *decimal.Decimal
	Hoteling          *decimal.Decimal
	Others            *decimal.Decimal
}

type ActualAssignment struct {
	ID        AssignmentID
	ProjectID ProjectID

	// SlotID is optional: assignments may be placed directly on a project.
	SlotID *SlotID

	// Exactly one of EmployeeID or VendorName is set. The vendor path is
	// carried on the entity but not exercised by the validation logic.
	EmployeeID EmployeeID
	VendorName string

	StartDate Date
	EndDate   *Date

	AllocationPercent decimal.Decimal
	Status            AssignmentStatus
	Notes             string

	// Approval workflow.
	RequiresApproval  bool
	RequestedByUserID string
	ApprovedByUserID  string
	ApprovedAt        *time.Time

	Snapshot CostSnapshot

	// VersionToken guards approve/reject/unassign/update with the same
	// optimistic-concurrency discipline as slots.
	VersionToken string

	Deleted bool
	Audit
}

// Range resolves the assignment's span against an as-of date; an open end
// runs through asOf.
func (a *ActualAssignment) Range(asOf Date) DateRange {
	return EffectiveRange(a.StartDate, a.EndDate, asOf)
}
