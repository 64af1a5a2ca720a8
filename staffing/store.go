/*
store.go - Persistence interfaces for the staffing engine

PURPOSE:
  Defines the interface between the domain services and the database.
  Different implementations can use SQLite, PostgreSQL, or in-memory
  storage.

SOFT-DELETE CONTRACT:
  Every read method excludes soft-deleted rows. The filter lives in the
  store implementation, not in callers, so a new query path cannot forget
  it. Delete methods flip the flag; nothing is hard-deleted.

OPTIMISTIC CONCURRENCY:
  UpdateSlot and UpdateAssignment compare the supplied expected version
  token against the stored one inside the write. On mismatch they return
  ErrConcurrencyConflict and write nothing; the caller must reload and
  retry. Both slots and assignments are guarded uniformly.

MISSING ROWS:
  Get methods return (nil, nil) when the id does not exist (or is
  soft-deleted). Services translate that into the typed not-found errors;
  stores never invent domain errors beyond the concurrency conflict.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - staffing/store/memory.go: In-memory for testing

SEE ALSO:
  - planner.go, engine.go: Service-side consumers
*/
package staffing

import "context"

// =============================================================================
// REFERENCE DATA STORES - Read-mostly from this engine's perspective
// =============================================================================

type ProjectStore interface {
	GetProject(ctx context.Context, id ProjectID) (*Project, error)
	SaveProject(ctx context.Context, p *Project) error
	ListProjects(ctx context.Context) ([]Project, error)
}

type RoleStore interface {
	GetRole(ctx context.Context, id RoleID) (*Role, error)
	SaveRole(ctx context.Context, r *Role) error
	ListRoles(ctx context.Context) ([]Role, error)
}

type EmployeeStore interface {
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)
	SaveEmployee(ctx context.Context, e *Employee) error
	ListEmployees(ctx context.Context) ([]Employee, error)

	// ListEmployeesByRole supports alternate-employee suggestions when a
	// slot is fully allocated.
	ListEmployeesByRole(ctx context.Context, roleID RoleID) ([]Employee, error)
}

// =============================================================================
// SLOT STORE
// =============================================================================

type SlotStore interface {
	GetSlot(ctx context.Context, id SlotID) (*PlannedTeamSlot, error)

	// InsertSlot persists a new slot. The slot arrives with its version
	// token already minted.
	InsertSlot(ctx context.Context, s *PlannedTeamSlot) error

	// UpdateSlot writes the slot only if expectedVersion matches the stored
	// token, rotating the token on success. ErrConcurrencyConflict on
	// mismatch; (no error, no write) is never an outcome.
	UpdateSlot(ctx context.Context, s *PlannedTeamSlot, expectedVersion string) error

	ListSlotsByProject(ctx context.Context, projectID ProjectID) ([]PlannedTeamSlot, error)

	// SoftDeleteSlot flips the deleted flag.
	SoftDeleteSlot(ctx context.Context, id SlotID, actor string) error
}

// =============================================================================
// ASSIGNMENT STORE
// =============================================================================

// AssignmentFilter narrows assignment listings. Nil fields mean "any".
type AssignmentFilter struct {
	ProjectID  *ProjectID
	EmployeeID *EmployeeID
	SlotID     *SlotID
}

type AssignmentStore interface {
	GetAssignment(ctx context.Context, id AssignmentID) (*ActualAssignment, error)

	InsertAssignment(ctx context.Context, a *ActualAssignment) error

	// UpdateAssignment is version-guarded exactly like UpdateSlot.
	UpdateAssignment(ctx context.Context, a *ActualAssignment, expectedVersion string) error

	ListAssignments(ctx context.Context, filter AssignmentFilter) ([]ActualAssignment, error)

	// ListAssignmentsPastEnd returns Active assignments whose end date is
	// strictly before the given day. Feeds the auto-complete batch.
	ListAssignmentsPastEnd(ctx context.Context, before Date) ([]ActualAssignment, error)

	// SoftDeleteAssignment flips the deleted flag.
	SoftDeleteAssignment(ctx context.Context, id AssignmentID, actor string) error
}

// =============================================================================
// STORE BUNDLE - What the services are wired with
// =============================================================================

// Stores bundles the engine's persistence dependencies.
type Stores interface {
	ProjectStore
	RoleStore
	EmployeeStore
	SlotStore
	AssignmentStore
}
