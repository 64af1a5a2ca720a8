/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements staffing.Stores using SQLite. In production, the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  staffing.ProjectStore:    Project reference data
  staffing.RoleStore:       Role catalog
  staffing.EmployeeStore:   Employee records with live cost fields
  staffing.SlotStore:       Planned team slots
  staffing.AssignmentStore: Actual assignments with cost snapshots

SOFT DELETES:
  Slots and assignments are never hard-deleted. Delete methods flip the
  deleted flag, and every read query carries "deleted = 0" so a new query
  path cannot forget the filter.

OPTIMISTIC CONCURRENCY:
  UpdateSlot and UpdateAssignment run a conditional UPDATE:

      UPDATE ... SET version_token = <new> WHERE id = ? AND version_token = ?

  Zero rows affected means the caller's token is stale (or the row is gone);
  a follow-up existence check distinguishes the two. The token is rotated on
  every successful write.

KEY TABLES:
  projects:     Contract price, working period, date range
  roles:        Role catalog
  employees:    Live cost fields (salary, incentive, commission)
  slots:        Planned capacity with derived budget cost
  assignments:  Staffing facts with embedded cost snapshot columns

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/staffing.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  planner := staffing.NewSlotPlanner(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - staffing/store.go: Interface definitions and contracts
  - staffing/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/staffing-engine/staffing"
)

// Store implements staffing.Stores using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Projects (reference data; staffing reads price/period/date bounds)
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		client_name TEXT,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		expected_period_months INTEGER NOT NULL,
		project_price TEXT NOT NULL,
		currency TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		created_by TEXT,
		created_at TEXT NOT NULL,
		modified_by TEXT,
		modified_at TEXT NOT NULL
	);

	-- Roles
	CREATE TABLE IF NOT EXISTS roles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_by TEXT,
		created_at TEXT NOT NULL,
		modified_by TEXT,
		modified_at TEXT NOT NULL
	);

	-- Employees (live cost fields; the default cost source)
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		role_id TEXT NOT NULL,
		salary TEXT NOT NULL,
		monthly_incentive TEXT NOT NULL,
		commission_percent TEXT NOT NULL,
		created_by TEXT,
		created_at TEXT NOT NULL,
		modified_by TEXT,
		modified_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_role
		ON employees(role_id);

	-- Planned team slots
	CREATE TABLE IF NOT EXISTS slots (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		role_id TEXT NOT NULL,
		period_months INTEGER NOT NULL,
		allocation_percent TEXT NOT NULL,
		planned_salary TEXT NOT NULL,
		planned_incentive TEXT NOT NULL,
		planned_commission_percent TEXT NOT NULL,
		planned_tickets TEXT NOT NULL,
		planned_hoteling TEXT NOT NULL,
		planned_others TEXT NOT NULL,
		computed_budget_cost TEXT NOT NULL,
		is_assigned BOOLEAN NOT NULL DEFAULT FALSE,
		version_token TEXT NOT NULL,
		deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_by TEXT,
		created_at TEXT NOT NULL,
		modified_by TEXT,
		modified_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_slots_project
		ON slots(project_id) WHERE deleted = FALSE;
	CREATE INDEX IF NOT EXISTS idx_slots_role
		ON slots(role_id);

	-- Actual assignments (cost snapshot embedded as nullable columns:
	-- NULL means "fall back to the employee's live value")
	CREATE TABLE IF NOT EXISTS assignments (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		slot_id TEXT,
		employee_id TEXT,
		vendor_name TEXT,
		start_date TEXT NOT NULL,
		end_date TEXT,
		allocation_percent TEXT NOT NULL,
		status TEXT NOT NULL,
		notes TEXT,
		requires_approval BOOLEAN NOT NULL DEFAULT FALSE,
		requested_by TEXT,
		approved_by TEXT,
		approved_at TEXT,
		snap_salary TEXT,
		snap_incentive TEXT,
		snap_commission_percent TEXT,
		snap_tickets TEXT,
		snap_hoteling TEXT,
		snap_others TEXT,
		version_token TEXT NOT NULL,
		deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_by TEXT,
		created_at TEXT NOT NULL,
		modified_by TEXT,
		modified_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assignments_project
		ON assignments(project_id) WHERE deleted = FALSE;
	CREATE INDEX IF NOT EXISTS idx_assignments_employee
		ON assignments(employee_id) WHERE deleted = FALSE;
	CREATE INDEX IF NOT EXISTS idx_assignments_slot
		ON assignments(slot_id) WHERE slot_id IS NOT NULL;

	-- Composite index for the auto-complete sweep (hot path for the scheduler)
	CREATE INDEX IF NOT EXISTS idx_assignments_status_end
		ON assignments(status, end_date) WHERE deleted = FALSE;
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PROJECT STORE
// =============================================================================

const projectColumns = `id, name, client_name, start_date, end_date, expected_period_months,
	project_price, currency, status, created_by, created_at, modified_by, modified_at`

func (s *Store) GetProject(ctx context.Context, id staffing.ProjectID) (*staffing.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE id = ?", string(id))

	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) SaveProject(ctx context.Context, p *staffing.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			client_name = excluded.client_name,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			expected_period_months = excluded.expected_period_months,
			project_price = excluded.project_price,
			currency = excluded.currency,
			status = excluded.status,
			modified_by = excluded.modified_by,
			modified_at = excluded.modified_at
	`

	_, err := s.db.ExecContext(ctx, query,
		string(p.ID), p.Name, p.ClientName,
		p.StartDate.String(), p.EndDate.String(),
		p.ExpectedWorkingPeriodMonths,
		p.ProjectPrice.String(), p.Currency, string(p.Status),
		p.CreatedBy, timestamp(p.CreatedAt),
		p.ModifiedBy, timestamp(p.ModifiedAt),
	)
	return err
}

func (s *Store) ListProjects(ctx context.Context) ([]staffing.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+projectColumns+" FROM projects ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []staffing.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func scanProject(row scanner) (*staffing.Project, error) {
	var (
		p                    staffing.Project
		id, status           string
		clientName, currency sql.NullString
		startDate, endDate   string
		price                string
		audit                auditCols
	)

	err := row.Scan(&id, &p.Name, &clientName, &startDate, &endDate,
		&p.ExpectedWorkingPeriodMonths, &price, &currency, &status,
		&audit.createdBy, &audit.createdAt, &audit.modifiedBy, &audit.modifiedAt)
	if err != nil {
		return nil, err
	}

	p.ID = staffing.ProjectID(id)
	p.ClientName = clientName.String
	p.StartDate = parseDate(startDate)
	p.EndDate = parseDate(endDate)
	p.ProjectPrice = staffing.MustParseDecimal(price)
	p.Currency = currency.String
	p.Status = staffing.ProjectStatus(status)
	p.Audit = audit.toAudit()
	return &p, nil
}

// =============================================================================
// ROLE STORE
// =============================================================================

func (s *Store) GetRole(ctx context.Context, id staffing.RoleID) (*staffing.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		r     staffing.Role
		rid   string
		audit auditCols
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_by, created_at, modified_by, modified_at FROM roles WHERE id = ?",
		string(id),
	).Scan(&rid, &r.Name, &audit.createdBy, &audit.createdAt, &audit.modifiedBy, &audit.modifiedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	r.ID = staffing.RoleID(rid)
	r.Audit = audit.toAudit()
	return &r, nil
}

func (s *Store) SaveRole(ctx context.Context, r *staffing.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO roles (id, name, created_by, created_at, modified_by, modified_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			modified_by = excluded.modified_by,
			modified_at = excluded.modified_at
	`

	_, err := s.db.ExecContext(ctx, query,
		string(r.ID), r.Name,
		r.CreatedBy, timestamp(r.CreatedAt),
		r.ModifiedBy, timestamp(r.ModifiedAt),
	)
	return err
}

func (s *Store) ListRoles(ctx context.Context) ([]staffing.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, created_by, created_at, modified_by, modified_at FROM roles ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []staffing.Role
	for rows.Next() {
		var (
			r     staffing.Role
			rid   string
			audit auditCols
		)
		if err := rows.Scan(&rid, &r.Name,
			&audit.createdBy, &audit.createdAt, &audit.modifiedBy, &audit.modifiedAt); err != nil {
			return nil, err
		}
		r.ID = staffing.RoleID(rid)
		r.Audit = audit.toAudit()
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

const employeeColumns = `id, name, email, role_id, salary, monthly_incentive, commission_percent,
	created_by, created_at, modified_by, modified_at`

func (s *Store) GetEmployee(ctx context.Context, id staffing.EmployeeID) (*staffing.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE id = ?", string(id))

	e, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Store) SaveEmployee(ctx context.Context, e *staffing.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (` + employeeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			role_id = excluded.role_id,
			salary = excluded.salary,
			monthly_incentive = excluded.monthly_incentive,
			commission_percent = excluded.commission_percent,
			modified_by = excluded.modified_by,
			modified_at = excluded.modified_at
	`

	_, err := s.db.ExecContext(ctx, query,
		string(e.ID), e.Name, e.Email, string(e.RoleID),
		e.Salary.String(), e.MonthlyIncentive.String(), e.CommissionPercent.String(),
		e.CreatedBy, timestamp(e.CreatedAt),
		e.ModifiedBy, timestamp(e.ModifiedAt),
	)
	return err
}

func (s *Store) ListEmployees(ctx context.Context) ([]staffing.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEmployees(ctx,
		"SELECT "+employeeColumns+" FROM employees ORDER BY name")
}

func (s *Store) ListEmployeesByRole(ctx context.Context, roleID staffing.RoleID) ([]staffing.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEmployees(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE role_id = ? ORDER BY name",
		string(roleID))
}

func (s *Store) queryEmployees(ctx context.Context, query string, args ...any) ([]staffing.Employee, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []staffing.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *e)
	}
	return employees, rows.Err()
}

func scanEmployee(row scanner) (*staffing.Employee, error) {
	var (
		e                          staffing.Employee
		id, roleID                 string
		email                      sql.NullString
		salary, incentive, commPct string
		audit                      auditCols
	)

	err := row.Scan(&id, &e.Name, &email, &roleID, &salary, &incentive, &commPct,
		&audit.createdBy, &audit.createdAt, &audit.modifiedBy, &audit.modifiedAt)
	if err != nil {
		return nil, err
	}

	e.ID = staffing.EmployeeID(id)
	e.Email = email.String
	e.RoleID = staffing.RoleID(roleID)
	e.Salary = staffing.MustParseDecimal(salary)
	e.MonthlyIncentive = staffing.MustParseDecimal(incentive)
	e.CommissionPercent = staffing.MustParseDecimal(commPct)
	e.Audit = audit.toAudit()
	return &e, nil
}

// =============================================================================
// SLOT STORE
// =============================================================================

const slotColumns = `id, project_id, role_id, period_months, allocation_percent,
	planned_salary, planned_incentive, planned_commission_percent,
	planned_tickets, planned_hoteling, planned_others,
	computed_budget_cost, is_assigned, version_token, deleted,
	created_by, created_at, modified_by, modified_at`

func (s *Store) GetSlot(ctx context.Context, id staffing.SlotID) (*staffing.PlannedTeamSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+slotColumns+" FROM slots WHERE id = ? AND deleted = FALSE", string(id))

	slot, err := scanSlot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *Store) InsertSlot(ctx context.Context, slot *staffing.PlannedTeamSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO slots (` + slotColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query, slotArgs(slot)...)
	if err != nil {
		return fmt.Errorf("failed to insert slot: %w", err)
	}
	return nil
}

func (s *Store) UpdateSlot(ctx context.Context, slot *staffing.PlannedTeamSlot, expectedVersion string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot.VersionToken = uuid.NewString()

	query := `
		UPDATE slots SET
			role_id = ?, period_months = ?, allocation_percent = ?,
			planned_salary = ?, planned_incentive = ?, planned_commission_percent = ?,
			planned_tickets = ?, planned_hoteling = ?, planned_others = ?,
			computed_budget_cost = ?, is_assigned = ?, version_token = ?,
			modified_by = ?, modified_at = ?
		WHERE id = ? AND version_token = ? AND deleted = FALSE
	`

	res, err := s.db.ExecContext(ctx, query,
		string(slot.RoleID), slot.PeriodMonths, slot.AllocationPercent.String(),
		slot.PlannedSalary.String(), slot.PlannedIncentive.String(), slot.PlannedCommissionPercent.String(),
		slot.PlannedTickets.String(), slot.PlannedHoteling.String(), slot.PlannedOthers.String(),
		slot.ComputedBudgetCost.String(), slot.IsAssigned, slot.VersionToken,
		slot.ModifiedBy, timestamp(slot.ModifiedAt),
		string(slot.ID), expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update slot: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return staffing.ErrConcurrencyConflict
	}
	return nil
}

func (s *Store) ListSlotsByProject(ctx context.Context, projectID staffing.ProjectID) ([]staffing.PlannedTeamSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+slotColumns+" FROM slots WHERE project_id = ? AND deleted = FALSE ORDER BY id",
		string(projectID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []staffing.PlannedTeamSlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, *slot)
	}
	return slots, rows.Err()
}

func (s *Store) SoftDeleteSlot(ctx context.Context, id staffing.SlotID, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"UPDATE slots SET deleted = TRUE, modified_by = ?, modified_at = ? WHERE id = ?",
		actor, timestamp(time.Now().UTC()), string(id))
	return err
}

func slotArgs(slot *staffing.PlannedTeamSlot) []any {
	return []any{
		string(slot.ID), string(slot.ProjectID), string(slot.RoleID),
		slot.PeriodMonths, slot.AllocationPercent.String(),
		slot.PlannedSalary.String(), slot.PlannedIncentive.String(), slot.PlannedCommissionPercent.String(),
		slot.PlannedTickets.String(), slot.PlannedHoteling.String(), slot.PlannedOthers.String(),
		slot.ComputedBudgetCost.String(), slot.IsAssigned, slot.VersionToken, slot.Deleted,
		slot.CreatedBy, timestamp(slot.CreatedAt),
		slot.ModifiedBy, timestamp(slot.ModifiedAt),
	}
}

func scanSlot(row scanner) (*staffing.PlannedTeamSlot, error) {
	var (
		slot                       staffing.PlannedTeamSlot
		id, projectID, roleID      string
		allocPct                   string
		salary, incentive, commPct string
		tickets, hoteling, others  string
		budgetCost                 string
		audit                      auditCols
	)

	err := row.Scan(&id, &projectID, &roleID, &slot.PeriodMonths, &allocPct,
		&salary, &incentive, &commPct, &tickets, &hoteling, &others,
		&budgetCost, &slot.IsAssigned, &slot.VersionToken, &slot.Deleted,
		&audit.createdBy, &audit.createdAt, &audit.modifiedBy, &audit.modifiedAt)
	if err != nil {
		return nil, err
	}

	slot.ID = staffing.SlotID(id)
	slot.ProjectID = staffing.ProjectID(projectID)
	slot.RoleID = staffing.RoleID(roleID)
	slot.AllocationPercent = staffing.MustParseDecimal(allocPct)
	slot.PlannedSalary = staffing.MustParseDecimal(salary)
	slot.PlannedIncentive = staffing.MustParseDecimal(incentive)
	slot.PlannedCommissionPercent = staffing.MustParseDecimal(commPct)
	slot.PlannedTickets = staffing.MustParseDecimal(tickets)
	slot.PlannedHoteling = staffing.MustParseDecimal(hoteling)
	slot.PlannedOthers = staffing.MustParseDecimal(others)
	slot.ComputedBudgetCost = staffing.MustParseDecimal(budgetCost)
	slot.Audit = audit.toAudit()
	return &slot, nil
}

// =============================================================================
// ASSIGNMENT STORE
// =============================================================================

const assignmentColumns = `id, project_id, slot_id, employee_id, vendor_name,
	start_date, end_date, allocation_percent, status, notes,
	requires_approval, requested_by, approved_by, approved_at,
	snap_salary, snap_incentive, snap_commission_percent,
	snap_tickets, snap_hoteling, snap_others,
	version_token, deleted, created_by, created_at, modified_by, modified_at`

func (s *Store) GetAssignment(ctx context.Context, id staffing.AssignmentID) (*staffing.ActualAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+assignmentColumns+" FROM assignments WHERE id = ? AND deleted = FALSE", string(id))

	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) InsertAssignment(ctx context.Context, a *staffing.ActualAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO assignments (` + assignmentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query, assignmentArgs(a)...)
	if err != nil {
		return fmt.Errorf("failed to insert assignment: %w", err)
	}
	return nil
}

func (s *Store) UpdateAssignment(ctx context.Context, a *staffing.ActualAssignment, expectedVersion string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.VersionToken = uuid.NewString()

	query := `
		UPDATE assignments SET
			slot_id = ?, employee_id = ?, vendor_name = ?,
			start_date = ?, end_date = ?, allocation_percent = ?, status = ?, notes = ?,
			requires_approval = ?, requested_by = ?, approved_by = ?, approved_at = ?,
			snap_salary = ?, snap_incentive = ?, snap_commission_percent = ?,
			snap_tickets = ?, snap_hoteling = ?, snap_others = ?,
			version_token = ?, modified_by = ?, modified_at = ?
		WHERE id = ? AND version_token = ? AND deleted = FALSE
	`

	res, err := s.db.ExecContext(ctx, query,
		nullSlotID(a.SlotID), nullString(string(a.EmployeeID)), nullString(a.VendorName),
		a.StartDate.String(), nullDate(a.EndDate), a.AllocationPercent.String(), string(a.Status), a.Notes,
		a.RequiresApproval, a.RequestedByUserID, a.ApprovedByUserID, nullTime(a.ApprovedAt),
		nullDecimal(a.Snapshot.Salary), nullDecimal(a.Snapshot.MonthlyIncentive), nullDecimal(a.Snapshot.CommissionPercent),
		nullDecimal(a.Snapshot.Tickets), nullDecimal(a.Snapshot.Hoteling), nullDecimal(a.Snapshot.Others),
		a.VersionToken, a.ModifiedBy, timestamp(a.ModifiedAt),
		string(a.ID), expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return staffing.ErrConcurrencyConflict
	}
	return nil
}

func (s *Store) ListAssignments(ctx context.Context, filter staffing.AssignmentFilter) ([]staffing.ActualAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + assignmentColumns + " FROM assignments WHERE deleted = FALSE"
	var args []any

	if filter.ProjectID != nil {
		query += " AND project_id = ?"
		args = append(args, string(*filter.ProjectID))
	}
	if filter.EmployeeID != nil {
		query += " AND employee_id = ?"
		args = append(args, string(*filter.EmployeeID))
	}
	if filter.SlotID != nil {
		query += " AND slot_id = ?"
		args = append(args, string(*filter.SlotID))
	}
	query += " ORDER BY id"

	return s.queryAssignments(ctx, query, args...)
}

func (s *Store) ListAssignmentsPastEnd(ctx context.Context, before staffing.Date) ([]staffing.ActualAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + assignmentColumns + ` FROM assignments
		WHERE deleted = FALSE AND status = ? AND end_date IS NOT NULL AND end_date < ?
		ORDER BY end_date ASC`

	return s.queryAssignments(ctx, query, string(staffing.StatusActive), before.String())
}

func (s *Store) SoftDeleteAssignment(ctx context.Context, id staffing.AssignmentID, actor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"UPDATE assignments SET deleted = TRUE, modified_by = ?, modified_at = ? WHERE id = ?",
		actor, timestamp(time.Now().UTC()), string(id))
	return err
}

func (s *Store) queryAssignments(ctx context.Context, query string, args ...any) ([]staffing.ActualAssignment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []staffing.ActualAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

func assignmentArgs(a *staffing.ActualAssignment) []any {
	return []any{
		string(a.ID), string(a.ProjectID), nullSlotID(a.SlotID),
		nullString(string(a.EmployeeID)), nullString(a.VendorName),
		a.StartDate.String(), nullDate(a.EndDate),
		a.AllocationPercent.String(), string(a.Status), a.Notes,
		a.RequiresApproval, a.RequestedByUserID, a.ApprovedByUserID, nullTime(a.ApprovedAt),
		nullDecimal(a.Snapshot.Salary), nullDecimal(a.Snapshot.MonthlyIncentive), nullDecimal(a.Snapshot.CommissionPercent),
		nullDecimal(a.Snapshot.Tickets), nullDecimal(a.Snapshot.Hoteling), nullDecimal(a.Snapshot.Others),
		a.VersionToken, a.Deleted,
		a.CreatedBy, timestamp(a.CreatedAt),
		a.ModifiedBy, timestamp(a.ModifiedAt),
	}
}

func scanAssignment(row scanner) (*staffing.ActualAssignment, error) {
	var (
		a                                     staffing.ActualAssignment
		id, projectID                         string
		slotID, employeeID, vendorName        sql.NullString
		startDate                             string
		endDate, approvedAt                   sql.NullString
		allocPct, status                      string
		notes, requestedBy, approvedBy        sql.NullString
		snapSalary, snapIncentive, snapComm   sql.NullString
		snapTickets, snapHoteling, snapOthers sql.NullString
		audit                                 auditCols
	)

	err := row.Scan(&id, &projectID, &slotID, &employeeID, &vendorName,
		&startDate, &endDate, &allocPct, &status, &notes,
		&a.RequiresApproval, &requestedBy, &approvedBy, &approvedAt,
		&snapSalary, &snapIncentive, &snapComm,
		&snapTickets, &snapHoteling, &snapOthers,
		&a.VersionToken, &a.Deleted,
		&audit.createdBy, &audit.createdAt, &audit.modifiedBy, &audit.modifiedAt)
	if err != nil {
		return nil, err
	}

	a.ID = staffing.AssignmentID(id)
	a.ProjectID = staffing.ProjectID(projectID)
	if slotID.Valid {
		sid := staffing.SlotID(slotID.String)
		a.SlotID = &sid
	}
	a.EmployeeID = staffing.EmployeeID(employeeID.String)
	a.VendorName = vendorName.String
	a.StartDate = parseDate(startDate)
	if endDate.Valid {
		d := parseDate(endDate.String)
		a.EndDate = &d
	}
	a.AllocationPercent = staffing.MustParseDecimal(allocPct)
	a.Status = staffing.AssignmentStatus(status)
	a.Notes = notes.String
	a.RequestedByUserID = requestedBy.String
	a.ApprovedByUserID = approvedBy.String
	if approvedAt.Valid {
		t, _ := time.Parse(time.RFC3339, approvedAt.String)
		a.ApprovedAt = &t
	}
	a.Snapshot = staffing.CostSnapshot{
		Salary:            snapDecimal(snapSalary),
		MonthlyIncentive:  snapDecimal(snapIncentive),
		CommissionPercent: snapDecimal(snapComm),
		Tickets:           snapDecimal(snapTickets),
		Hoteling:          snapDecimal(snapHoteling),
		Others:            snapDecimal(snapOthers),
	}
	a.Audit = audit.toAudit()
	return &a, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"assignments", "slots", "employees", "roles", "projects"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// auditCols carries the audit columns through a scan.
type auditCols struct {
	createdBy  sql.NullString
	createdAt  string
	modifiedBy sql.NullString
	modifiedAt string
}

func (c auditCols) toAudit() staffing.Audit {
	createdAt, _ := time.Parse(time.RFC3339, c.createdAt)
	modifiedAt, _ := time.Parse(time.RFC3339, c.modifiedAt)
	return staffing.Audit{
		CreatedBy:  c.createdBy.String,
		CreatedAt:  createdAt,
		ModifiedBy: c.modifiedBy.String,
		ModifiedAt: modifiedAt,
	}
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseDate(s string) staffing.Date {
	d, _ := staffing.ParseDate(s)
	return d
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullSlotID(id *staffing.SlotID) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*id), Valid: true}
}

func nullDate(d *staffing.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func snapDecimal(v sql.NullString) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	d := staffing.MustParseDecimal(v.String)
	return &d
}
