// Package store provides in-memory implementations of the staffing stores.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warp/staffing-engine/staffing"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements staffing.Stores. Reads always exclude soft-deleted
// rows; version-guarded updates behave exactly like the SQLite store.
type Memory struct {
	mu          sync.RWMutex
	projects    map[staffing.ProjectID]staffing.Project
	roles       map[staffing.RoleID]staffing.Role
	employees   map[staffing.EmployeeID]staffing.Employee
	slots       map[staffing.SlotID]staffing.PlannedTeamSlot
	assignments map[staffing.AssignmentID]staffing.ActualAssignment
}

func NewMemory() *Memory {
	return &Memory{
		projects:    make(map[staffing.ProjectID]staffing.Project),
		roles:       make(map[staffing.RoleID]staffing.Role),
		employees:   make(map[staffing.EmployeeID]staffing.Employee),
		slots:       make(map[staffing.SlotID]staffing.PlannedTeamSlot),
		assignments: make(map[staffing.AssignmentID]staffing.ActualAssignment),
	}
}

// =============================================================================
// PROJECTS / ROLES / EMPLOYEES
// =============================================================================

func (m *Memory) GetProject(_ context.Context, id staffing.ProjectID) (*staffing.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.projects[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (m *Memory) SaveProject(_ context.Context, p *staffing.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = *p
	return nil
}

func (m *Memory) ListProjects(_ context.Context) ([]staffing.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]staffing.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetRole(_ context.Context, id staffing.RoleID) (*staffing.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.roles[id]; ok {
		return &r, nil
	}
	return nil, nil
}

func (m *Memory) SaveRole(_ context.Context, r *staffing.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[r.ID] = *r
	return nil
}

func (m *Memory) ListRoles(_ context.Context) ([]staffing.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]staffing.Role, 0, len(m.roles))
	for _, r := range m.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetEmployee(_ context.Context, id staffing.EmployeeID) (*staffing.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.employees[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (m *Memory) SaveEmployee(_ context.Context, e *staffing.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = *e
	return nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]staffing.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]staffing.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ListEmployeesByRole(_ context.Context, roleID staffing.RoleID) ([]staffing.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []staffing.Employee
	for _, e := range m.employees {
		if e.RoleID == roleID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// SLOTS
// =============================================================================

func (m *Memory) GetSlot(_ context.Context, id staffing.SlotID) (*staffing.PlannedTeamSlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.slots[id]; ok && !s.Deleted {
		return &s, nil
	}
	return nil, nil
}

func (m *Memory) InsertSlot(_ context.Context, s *staffing.PlannedTeamSlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[s.ID] = *s
	return nil
}

func (m *Memory) UpdateSlot(_ context.Context, s *staffing.PlannedTeamSlot, expectedVersion string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.slots[s.ID]
	if !ok || stored.Deleted || stored.VersionToken != expectedVersion {
		return staffing.ErrConcurrencyConflict
	}

	s.VersionToken = uuid.NewString()
	m.slots[s.ID] = *s
	return nil
}

func (m *Memory) ListSlotsByProject(_ context.Context, projectID staffing.ProjectID) ([]staffing.PlannedTeamSlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []staffing.PlannedTeamSlot
	for _, s := range m.slots {
		if s.ProjectID == projectID && !s.Deleted {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SoftDeleteSlot(_ context.Context, id staffing.SlotID, actor string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slots[id]
	if !ok {
		return nil
	}
	s.Deleted = true
	s.Touch(actor, time.Now().UTC())
	m.slots[id] = s
	return nil
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

func (m *Memory) GetAssignment(_ context.Context, id staffing.AssignmentID) (*staffing.ActualAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.assignments[id]; ok && !a.Deleted {
		return &a, nil
	}
	return nil, nil
}

func (m *Memory) InsertAssignment(_ context.Context, a *staffing.ActualAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments[a.ID] = *a
	return nil
}

func (m *Memory) UpdateAssignment(_ context.Context, a *staffing.ActualAssignment, expectedVersion string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.assignments[a.ID]
	if !ok || stored.Deleted || stored.VersionToken != expectedVersion {
		return staffing.ErrConcurrencyConflict
	}

	a.VersionToken = uuid.NewString()
	m.assignments[a.ID] = *a
	return nil
}

func (m *Memory) ListAssignments(_ context.Context, filter staffing.AssignmentFilter) ([]staffing.ActualAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []staffing.ActualAssignment
	for _, a := range m.assignments {
		if a.Deleted {
			continue
		}
		if filter.ProjectID != nil && a.ProjectID != *filter.ProjectID {
			continue
		}
		if filter.EmployeeID != nil && a.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.SlotID != nil && (a.SlotID == nil || *a.SlotID != *filter.SlotID) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) ListAssignmentsPastEnd(_ context.Context, before staffing.Date) ([]staffing.ActualAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []staffing.ActualAssignment
	for _, a := range m.assignments {
		if a.Deleted || a.Status != staffing.StatusActive || a.EndDate == nil {
			continue
		}
		if a.EndDate.Before(before) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SoftDeleteAssignment(_ context.Context, id staffing.AssignmentID, actor string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[id]
	if !ok {
		return nil
	}
	a.Deleted = true
	a.Touch(actor, time.Now().UTC())
	m.assignments[id] = a
	return nil
}
