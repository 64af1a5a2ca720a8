/*
errors.go - Centralized error types for the staffing engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers (HTTP layer, CLI) classify errors with the helpers at the bottom
  instead of matching on message strings.

ERROR CATEGORIES:
  1. Not-found errors   - Referenced entity does not exist (always fatal)
  2. Validation errors  - Domain rule violations on create/update
  3. Concurrency errors - Optimistic version-token mismatches
  4. Business rules     - Operations forbidden by current state

USAGE:
  if staffing.IsNotFound(err) {
      // 404
  }
  if errors.Is(err, staffing.ErrConcurrencyConflict) {
      // reload and retry
  }

SEE ALSO:
  - engine.go: Accumulates validation issues instead of raising the first one
  - planner.go: Raises the first-detected failure (straightforward path)
*/
package staffing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrProjectNotFound is returned when a referenced project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrRoleNotFound is returned when a referenced role doesn't exist.
	ErrRoleNotFound = errors.New("role not found")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrSlotNotFound is returned when a referenced planned slot doesn't exist.
	ErrSlotNotFound = errors.New("planned team slot not found")

	// ErrAssignmentNotFound is returned when a referenced assignment doesn't exist.
	ErrAssignmentNotFound = errors.New("assignment not found")

	// ErrInvalidPeriod is returned when a slot's period exceeds the project's
	// expected working period.
	ErrInvalidPeriod = errors.New("slot period exceeds project working period")

	// ErrInvalidDateRange is returned when a date range is malformed or falls
	// outside the owning project's dates.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidAllocation is returned when an allocation percent is out of
	// bounds or exceeds the slot ceiling.
	ErrInvalidAllocation = errors.New("invalid allocation percent")

	// ErrRoleMismatch is returned when an employee's role doesn't match the
	// slot's role.
	ErrRoleMismatch = errors.New("employee role does not match slot role")

	// ErrCapacityExceeded is returned when an employee's total overlapping
	// allocation would exceed 100%.
	ErrCapacityExceeded = errors.New("employee capacity exceeded")

	// ErrConcurrencyConflict is returned when an optimistic version token
	// doesn't match the stored one. The caller must reload and retry.
	ErrConcurrencyConflict = errors.New("concurrent modification detected")

	// ErrHasAssignments is returned when deleting a slot that assignments
	// still reference.
	ErrHasAssignments = errors.New("slot has assignments")

	// ErrInvalidTransition is returned when an assignment status change is
	// not allowed from the current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrActorRequired is returned when a mutating operation is invoked
	// without an actor identity. There is no ambient "current user".
	ErrActorRequired = errors.New("actor is required")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// TransitionError reports a forbidden assignment status change.
type TransitionError struct {
	AssignmentID AssignmentID
	From         AssignmentStatus
	To           AssignmentStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("assignment %s: cannot transition %s -> %s", e.AssignmentID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// =============================================================================
// VALIDATION ISSUES - Accumulated, not raised
// =============================================================================

// IssueSeverity distinguishes blocking failures from advisory warnings.
type IssueSeverity string

const (
	SeverityBlocking IssueSeverity = "blocking"
	SeverityWarning  IssueSeverity = "warning"
)

// Issue is a single validation finding on an assignment operation. Blocking
// issues prevent the write; warnings are carried on the result for the
// caller to display and possibly route to approval.
type Issue struct {
	Code     string
	Severity IssueSeverity
	Message  string
}

func blocking(code, format string, args ...any) Issue {
	return Issue{Code: code, Severity: SeverityBlocking, Message: fmt.Sprintf(format, args...)}
}

func warning(code, format string, args ...any) Issue {
	return Issue{Code: code, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrRoleNotFound) ||
		errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrSlotNotFound) ||
		errors.Is(err, ErrAssignmentNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrInvalidAllocation) ||
		errors.Is(err, ErrRoleMismatch) ||
		errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrActorRequired)
}

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}

// IsBusinessRule returns true for operations forbidden by current state.
func IsBusinessRule(err error) bool {
	return errors.Is(err, ErrHasAssignments) ||
		errors.Is(err, ErrInvalidTransition)
}
