/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	staffing data for testing and demos. Each scenario creates projects,
	roles, employees, slots, and assignments that demonstrate specific
	features of the engine.

AVAILABLE SCENARIOS:

	greenfield-project:   Slots planned, nothing staffed yet
	staffed-project:      Slots filled with approved assignments
	overbooked-consultant: Employee near the 100% capacity ceiling
	cost-overrun:         Actual salaries above plan, conservative risk policy
	wind-down:            Active assignments past their end date (autocomplete)

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create roles and employees
 3. Create a project and plan slots
 4. Create assignments (approving those that should be active)

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "staffed-project"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler context and error helpers
  - factory/policy.go: Risk policy JSON definitions
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/staffing-engine/factory"
	"github.com/warp/staffing-engine/staffing"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "greenfield-project",
		Name:        "Greenfield Project",
		Description: "Fresh project with planned slots and no staffing yet",
		Category:    "planning",
	},
	{
		ID:          "staffed-project",
		Name:        "Staffed Project",
		Description: "Slots filled with approved assignments; KPIs show plan vs actual",
		Category:    "staffing",
	},
	{
		ID:          "overbooked-consultant",
		Name:        "Overbooked Consultant",
		Description: "Employee at 90% allocation across two projects, near the capacity ceiling",
		Category:    "staffing",
	},
	{
		ID:          "cost-overrun",
		Name:        "Cost Overrun",
		Description: "Actual salaries above plan under a conservative risk policy",
		Category:    "reconciliation",
	},
	{
		ID:          "wind-down",
		Name:        "Wind-Down",
		Description: "Active assignments past their end date, ready for auto-completion",
		Category:    "reconciliation",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	// Find the scenario details
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	// Scenario ID exists but not in list (shouldn't happen)
	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          h.currentScenario,
		Name:        h.currentScenario,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()

	if err := h.reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "greenfield-project":
		err = h.loadGreenfieldScenario(ctx)
	case "staffed-project":
		err = h.loadStaffedProjectScenario(ctx)
	case "overbooked-consultant":
		err = h.loadOverbookedScenario(ctx)
	case "cost-overrun":
		err = h.loadCostOverrunScenario(ctx)
	case "wind-down":
		err = h.loadWindDownScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	// Track the loaded scenario
	h.currentScenario = req.ScenarioID

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data (dev only).
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) reset(ctx context.Context) error {
	resetter, ok := h.Store.(Resetter)
	if !ok {
		return fmt.Errorf("store does not support reset")
	}
	if err := resetter.Reset(ctx); err != nil {
		return err
	}
	h.Engine.Risk = staffing.DefaultRiskPolicy()
	h.currentScenario = ""
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

const scenarioActor = "scenario-loader"

// fixture bundles the shared role/employee/project setup the loaders reuse.
type fixture struct {
	project   *staffing.Project
	developer *staffing.Role
	architect *staffing.Role
	alice     *staffing.Employee
	bruno     *staffing.Employee
}

// seedBase creates two roles, two employees and one project spanning the
// current year.
func (h *Handler) seedBase(ctx context.Context) (*fixture, error) {
	now := time.Now().UTC()
	year := now.Year()

	f := &fixture{
		developer: &staffing.Role{ID: "role-dev", Name: "Senior Developer"},
		architect: &staffing.Role{ID: "role-arch", Name: "Solution Architect"},
	}
	f.developer.Touch(scenarioActor, now)
	f.architect.Touch(scenarioActor, now)
	if err := h.Store.SaveRole(ctx, f.developer); err != nil {
		return nil, err
	}
	if err := h.Store.SaveRole(ctx, f.architect); err != nil {
		return nil, err
	}

	f.alice = &staffing.Employee{
		ID:                "emp-alice",
		Name:              "Alice Moreau",
		Email:             "alice@example.com",
		RoleID:            f.developer.ID,
		Salary:            staffing.Dec(5200),
		MonthlyIncentive:  staffing.Dec(300),
		CommissionPercent: staffing.Dec(1.5),
	}
	f.bruno = &staffing.Employee{
		ID:                "emp-bruno",
		Name:              "Bruno Keller",
		Email:             "bruno@example.com",
		RoleID:            f.architect.ID,
		Salary:            staffing.Dec(7400),
		MonthlyIncentive:  staffing.Dec(500),
		CommissionPercent: staffing.Dec(2),
	}
	f.alice.Touch(scenarioActor, now)
	f.bruno.Touch(scenarioActor, now)
	if err := h.Store.SaveEmployee(ctx, f.alice); err != nil {
		return nil, err
	}
	if err := h.Store.SaveEmployee(ctx, f.bruno); err != nil {
		return nil, err
	}

	f.project = &staffing.Project{
		ID:                          "proj-atlas",
		Name:                        "Atlas Platform Rebuild",
		ClientName:                  "Vertex Logistics",
		StartDate:                   staffing.NewDate(year, time.January, 1),
		EndDate:                     staffing.NewDate(year, time.December, 31),
		ExpectedWorkingPeriodMonths: 12,
		ProjectPrice:                staffing.Dec(240000),
		Currency:                    "EUR",
		Status:                      staffing.ProjectActive,
	}
	f.project.Touch(scenarioActor, now)
	if err := h.Store.SaveProject(ctx, f.project); err != nil {
		return nil, err
	}
	return f, nil
}

func (h *Handler) planSlot(ctx context.Context, f *fixture, roleID staffing.RoleID, months int, alloc, salary float64) (*staffing.PlannedTeamSlot, error) {
	return h.Planner.CreateSlot(ctx, staffing.CreateSlotCommand{
		ProjectID: f.project.ID,
		RoleID:    roleID,
		SlotInput: staffing.SlotInput{
			PeriodMonths:             months,
			AllocationPercent:        staffing.Dec(alloc),
			PlannedSalary:            staffing.Dec(salary),
			PlannedIncentive:         staffing.Dec(300),
			PlannedCommissionPercent: staffing.Dec(1.5),
			PlannedTickets:           staffing.Dec(120),
			PlannedHoteling:          staffing.Dec(80),
			PlannedOthers:            staffing.Dec(50),
		},
		Actor: scenarioActor,
	})
}

// assign creates an assignment and, when approve is set, activates it.
// Low-risk assignments come back already Active and need no approval.
func (h *Handler) assign(ctx context.Context, cmd staffing.CreateAssignmentCommand, approve bool) (*staffing.ActualAssignment, error) {
	result, err := h.Engine.CreateAssignment(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if !result.OK() {
		return nil, fmt.Errorf("assignment rejected: %+v", result.Errors)
	}
	if !approve || result.Assignment.Status != staffing.StatusPlanned {
		return result.Assignment, nil
	}
	return h.Engine.ApproveAssignment(ctx, result.Assignment.ID, scenarioActor)
}

// loadGreenfieldScenario plans capacity with no staffing.
func (h *Handler) loadGreenfieldScenario(ctx context.Context) error {
	f, err := h.seedBase(ctx)
	if err != nil {
		return err
	}
	if _, err := h.planSlot(ctx, f, f.developer.ID, 12, 100, 5000); err != nil {
		return err
	}
	if _, err := h.planSlot(ctx, f, f.developer.ID, 6, 50, 5000); err != nil {
		return err
	}
	_, err = h.planSlot(ctx, f, f.architect.ID, 12, 40, 7000)
	return err
}

// loadStaffedProjectScenario fills both slots with approved assignments.
func (h *Handler) loadStaffedProjectScenario(ctx context.Context) error {
	f, err := h.seedBase(ctx)
	if err != nil {
		return err
	}
	devSlot, err := h.planSlot(ctx, f, f.developer.ID, 12, 100, 5000)
	if err != nil {
		return err
	}
	archSlot, err := h.planSlot(ctx, f, f.architect.ID, 12, 40, 7000)
	if err != nil {
		return err
	}

	if _, err := h.assign(ctx, staffing.CreateAssignmentCommand{
		ProjectID:         f.project.ID,
		SlotID:            &devSlot.ID,
		EmployeeID:        f.alice.ID,
		StartDate:         f.project.StartDate,
		EndDate:           &f.project.EndDate,
		AllocationPercent: staffing.Dec(100),
		Actor:             scenarioActor,
	}, true); err != nil {
		return err
	}
	_, err = h.assign(ctx, staffing.CreateAssignmentCommand{
		ProjectID:         f.project.ID,
		SlotID:            &archSlot.ID,
		EmployeeID:        f.bruno.ID,
		StartDate:         f.project.StartDate,
		EndDate:           &f.project.EndDate,
		AllocationPercent: staffing.Dec(40),
		Actor:             scenarioActor,
	}, true)
	return err
}

// loadOverbookedScenario puts Bruno at 90% across two projects so the next
// sizeable assignment attempt trips the capacity check.
func (h *Handler) loadOverbookedScenario(ctx context.Context) error {
	f, err := h.seedBase(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	second := &staffing.Project{
		ID:                          "proj-beacon",
		Name:                        "Beacon Data Migration",
		ClientName:                  "Nordwind Retail",
		StartDate:                   f.project.StartDate,
		EndDate:                     f.project.EndDate,
		ExpectedWorkingPeriodMonths: 12,
		ProjectPrice:                staffing.Dec(96000),
		Currency:                    "EUR",
		Status:                      staffing.ProjectActive,
	}
	second.Touch(scenarioActor, now)
	if err := h.Store.SaveProject(ctx, second); err != nil {
		return err
	}

	if _, err := h.assign(ctx, staffing.CreateAssignmentCommand{
		ProjectID:         f.project.ID,
		EmployeeID:        f.bruno.ID,
		StartDate:         f.project.StartDate,
		EndDate:           &f.project.EndDate,
		AllocationPercent: staffing.Dec(60),
		Actor:             scenarioActor,
	}, true); err != nil {
		return err
	}
	_, err = h.assign(ctx, staffing.CreateAssignmentCommand{
		ProjectID:         second.ID,
		EmployeeID:        f.bruno.ID,
		StartDate:         second.StartDate,
		EndDate:           &second.EndDate,
		AllocationPercent: staffing.Dec(30),
		Actor:             scenarioActor,
	}, true)
	return err
}

// loadCostOverrunScenario staffs a slot at a salary well above plan and
// swaps in the conservative risk thresholds so the KPI variance trips the
// approval band.
func (h *Handler) loadCostOverrunScenario(ctx context.Context) error {
	f, err := h.seedBase(ctx)
	if err != nil {
		return err
	}

	risk, err := factory.NewRiskPolicyFactory().ParseRiskPolicy(factory.ConservativeRiskJSON())
	if err != nil {
		return err
	}
	h.Engine.Risk = risk

	slot, err := h.planSlot(ctx, f, f.developer.ID, 12, 100, 4000)
	if err != nil {
		return err
	}

	// Alice's real salary (5200) is 30% over the planned 4000.
	_, err = h.assign(ctx, staffing.CreateAssignmentCommand{
		ProjectID:         f.project.ID,
		SlotID:            &slot.ID,
		EmployeeID:        f.alice.ID,
		StartDate:         f.project.StartDate,
		EndDate:           &f.project.EndDate,
		AllocationPercent: staffing.Dec(100),
		Actor:             scenarioActor,
	}, true)
	return err
}

// loadWindDownScenario creates active assignments whose end dates have
// already passed, so a scheduler pass (or POST /api/assignments/autocomplete)
// completes them.
func (h *Handler) loadWindDownScenario(ctx context.Context) error {
	f, err := h.seedBase(ctx)
	if err != nil {
		return err
	}

	yesterday := staffing.DateOf(time.Now().UTC().AddDate(0, 0, -1))
	lastWeek := staffing.DateOf(time.Now().UTC().AddDate(0, 0, -7))

	if _, err := h.assign(ctx, staffing.CreateAssignmentCommand{
		ProjectID:         f.project.ID,
		EmployeeID:        f.alice.ID,
		StartDate:         f.project.StartDate,
		EndDate:           &yesterday,
		AllocationPercent: staffing.Dec(80),
		Actor:             scenarioActor,
	}, true); err != nil {
		return err
	}
	_, err = h.assign(ctx, staffing.CreateAssignmentCommand{
		ProjectID:         f.project.ID,
		EmployeeID:        f.bruno.ID,
		StartDate:         f.project.StartDate,
		EndDate:           &lastWeek,
		AllocationPercent: staffing.Dec(50),
		Actor:             scenarioActor,
	}, true)
	return err
}
