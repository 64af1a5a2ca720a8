/*
handlers.go - HTTP API handlers for the staffing engine

PURPOSE:
  Exposes the staffing engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Projects:
    GET    /api/projects                 List all projects
    POST   /api/projects                 Create project
    GET    /api/projects/{id}            Get project details
    GET    /api/projects/{id}/slots      List the project's slots
    GET    /api/projects/{id}/slots/available  Slots with no counting assignment
    GET    /api/projects/{id}/segments   Remaining allocation per slot
    GET    /api/projects/{id}/kpis       Planned-vs-actual rollup
    POST   /api/projects/{id}/recalculate Re-derive budget costs

  Slots:
    POST   /api/slots                    Plan a slot
    GET    /api/slots/{id}               Get slot
    PUT    /api/slots/{id}               Re-plan slot (version-guarded)
    DELETE /api/slots/{id}               Soft-delete (if unreferenced)

  Assignments:
    POST   /api/assignments              Create (two-tier validation result)
    GET    /api/assignments              List with project/employee filters
    GET    /api/assignments/{id}         Get assignment
    PUT    /api/assignments/{id}         Update (version-guarded)
    DELETE /api/assignments/{id}         Soft-delete
    POST   /api/assignments/{id}/approve Approve a Planned assignment
    POST   /api/assignments/{id}/reject  Reject a Planned assignment
    POST   /api/assignments/{id}/unassign End and complete
    POST   /api/assignments/{id}/hold    Suspend
    POST   /api/assignments/{id}/resume  Reactivate from OnHold
    POST   /api/assignments/autocomplete Batch-complete past-end assignments

  Employees:
    GET    /api/employees/{id}/allocation   Summed allocation over a window
    GET    /api/employees/{id}/utilization  Dense daily series

ACTOR HEADER:
  Every mutating endpoint requires an X-Actor header naming who performs
  the change. There is no ambient identity; a missing header is a 400.

ERROR HANDLING:
  Domain errors are classified with the staffing helpers:
  - 400: Validation errors, invalid input, missing actor
  - 404: Entity not found
  - 409: Version-token conflict (reload and retry)
  - 422: Business rule (terminal status, slot has assignments)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. The X-Actor header is
  trusted as given. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/warp/staffing-engine/staffing"
)

// Resetter is implemented by stores that can wipe all data (demo/dev).
type Resetter interface {
	Reset(ctx context.Context) error
}

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store       staffing.Stores
	Planner     *staffing.SlotPlanner
	Engine      *staffing.AssignmentEngine
	Utilization *staffing.UtilizationService

	validate *validator.Validate

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler wires the services over the given store.
func NewHandler(store staffing.Stores) *Handler {
	return &Handler{
		Store:       store,
		Planner:     staffing.NewSlotPlanner(store),
		Engine:      staffing.NewAssignmentEngine(store),
		Utilization: staffing.NewUtilizationService(store),
		validate:    validator.New(),
	}
}

// actor extracts the X-Actor header; empty means the mutation is rejected
// downstream with ErrActorRequired.
func actor(r *http.Request) string {
	return r.Header.Get("X-Actor")
}

// =============================================================================
// PROJECT HANDLERS
// =============================================================================

// ListProjects returns all projects.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Store.ListProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list projects", err)
		return
	}

	dtos := make([]ProjectDTO, len(projects))
	for i := range projects {
		dtos[i] = toProjectDTO(&projects[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetProject returns a single project.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id := staffing.ProjectID(chi.URLParam(r, "id"))

	project, err := h.Store.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get project", err)
		return
	}
	if project == nil {
		writeDomainError(w, staffing.ErrProjectNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(project))
}

// CreateProject creates a new project.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if !h.decode(w, r, &req) {
		return
	}
	if actor(r) == "" {
		writeDomainError(w, staffing.ErrActorRequired)
		return
	}

	start, _ := staffing.ParseDate(req.StartDate)
	end, _ := staffing.ParseDate(req.EndDate)
	if end.Before(start) {
		writeDomainError(w, staffing.ErrInvalidDateRange)
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	project := &staffing.Project{
		ID:                          staffing.ProjectID(id),
		Name:                        req.Name,
		ClientName:                  req.ClientName,
		StartDate:                   start,
		EndDate:                     end,
		ExpectedWorkingPeriodMonths: req.ExpectedPeriodMonths,
		ProjectPrice:                staffing.Dec(req.ProjectPrice),
		Currency:                    req.Currency,
		Status:                      staffing.ProjectActive,
	}
	project.Touch(actor(r), h.Engine.Now())

	if err := h.Store.SaveProject(r.Context(), project); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create project", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProjectDTO(project))
}

// RecalculateBudgets re-derives every slot's budget cost after a contract
// price change.
func (h *Handler) RecalculateBudgets(w http.ResponseWriter, r *http.Request) {
	projectID := staffing.ProjectID(chi.URLParam(r, "id"))

	updated, err := h.Planner.RecalculateBudgetCosts(r.Context(), projectID, actor(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RecalculateDTO{ProjectID: string(projectID), UpdatedSlots: updated})
}

// GetProjectKPIs returns the planned-vs-actual rollup.
func (h *Handler) GetProjectKPIs(w http.ResponseWriter, r *http.Request) {
	projectID := staffing.ProjectID(chi.URLParam(r, "id"))

	kpis, err := h.Planner.GetProjectKPIs(r.Context(), projectID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toKPIDTO(kpis))
}

// =============================================================================
// ROLE HANDLERS
// =============================================================================

// ListRoles returns all roles.
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Store.ListRoles(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list roles", err)
		return
	}

	dtos := make([]RoleDTO, len(roles))
	for i := range roles {
		dtos[i] = toRoleDTO(&roles[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateRole creates a new role.
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if !h.decode(w, r, &req) {
		return
	}
	if actor(r) == "" {
		writeDomainError(w, staffing.ErrActorRequired)
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	role := &staffing.Role{ID: staffing.RoleID(id), Name: req.Name}
	role.Touch(actor(r), h.Engine.Now())

	if err := h.Store.SaveRole(r.Context(), role); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create role", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRoleDTO(role))
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i := range employees {
		dtos[i] = toEmployeeDTO(&employees[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := staffing.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeDomainError(w, staffing.ErrEmployeeNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// CreateEmployee creates a new employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if actor(r) == "" {
		writeDomainError(w, staffing.ErrActorRequired)
		return
	}

	role, err := h.Store.GetRole(r.Context(), staffing.RoleID(req.RoleID))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get role", err)
		return
	}
	if role == nil {
		writeDomainError(w, staffing.ErrRoleNotFound)
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	emp := &staffing.Employee{
		ID:                staffing.EmployeeID(id),
		Name:              req.Name,
		Email:             req.Email,
		RoleID:            staffing.RoleID(req.RoleID),
		Salary:            staffing.Dec(req.Salary),
		MonthlyIncentive:  staffing.Dec(req.MonthlyIncentive),
		CommissionPercent: staffing.Dec(req.CommissionPercent),
	}
	emp.Touch(actor(r), h.Engine.Now())

	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// GetEmployeeAllocation sums the employee's counting allocation over a
// ?from=...&to=... window.
func (h *Handler) GetEmployeeAllocation(w http.ResponseWriter, r *http.Request) {
	id := staffing.EmployeeID(chi.URLParam(r, "id"))
	from, to, ok := parseWindow(w, r)
	if !ok {
		return
	}

	total, err := h.Engine.GetEmployeeAllocation(r.Context(), id, staffing.DateRange{Start: from, End: to})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AllocationDTO{
		EmployeeID:        string(id),
		From:              from.String(),
		To:                to.String(),
		AllocationPercent: total.String(),
	})
}

// GetEmployeeUtilization returns the dense daily allocation series.
func (h *Handler) GetEmployeeUtilization(w http.ResponseWriter, r *http.Request) {
	id := staffing.EmployeeID(chi.URLParam(r, "id"))
	from, to, ok := parseWindow(w, r)
	if !ok {
		return
	}

	series, err := h.Utilization.EmployeeUtilization(r.Context(), id, from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]DailyUtilizationDTO, len(series))
	for i, point := range series {
		dtos[i] = DailyUtilizationDTO{
			Date:              point.Date.String(),
			AllocationPercent: point.AllocationPercent.String(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// SLOT HANDLERS
// =============================================================================

// CreateSlot plans new capacity against a project role.
func (h *Handler) CreateSlot(w http.ResponseWriter, r *http.Request) {
	var req CreateSlotRequest
	if !h.decode(w, r, &req) {
		return
	}

	slot, err := h.Planner.CreateSlot(r.Context(), staffing.CreateSlotCommand{
		ProjectID: staffing.ProjectID(req.ProjectID),
		RoleID:    staffing.RoleID(req.RoleID),
		SlotInput: toSlotInput(req.SlotInputRequest),
		Actor:     actor(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSlotDTO(slot))
}

// GetSlot returns a single slot.
func (h *Handler) GetSlot(w http.ResponseWriter, r *http.Request) {
	slot, err := h.Planner.GetSlotByID(r.Context(), staffing.SlotID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSlotDTO(slot))
}

// UpdateSlot re-plans a slot; version-guarded.
func (h *Handler) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	var req UpdateSlotRequest
	if !h.decode(w, r, &req) {
		return
	}

	slot, err := h.Planner.UpdateSlot(r.Context(), staffing.UpdateSlotCommand{
		SlotID:          staffing.SlotID(chi.URLParam(r, "id")),
		RoleID:          staffing.RoleID(req.RoleID),
		SlotInput:       toSlotInput(req.SlotInputRequest),
		ExpectedVersion: req.ExpectedVersion,
		Actor:           actor(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSlotDTO(slot))
}

// DeleteSlot soft-deletes a slot with no assignments referencing it.
func (h *Handler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	err := h.Planner.DeleteSlot(r.Context(), staffing.SlotID(chi.URLParam(r, "id")), actor(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListProjectSlots lists a project's slots.
func (h *Handler) ListProjectSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.Planner.GetSlotsByProject(r.Context(), staffing.ProjectID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSlotDTOs(slots))
}

// ListAvailableSlots lists slots with zero counting assignments.
func (h *Handler) ListAvailableSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.Planner.GetAvailableSlots(r.Context(), staffing.ProjectID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSlotDTOs(slots))
}

// ListAllocationSegments returns remaining allocation per slot.
func (h *Handler) ListAllocationSegments(w http.ResponseWriter, r *http.Request) {
	segments, err := h.Planner.GetRemainingAllocationSegments(r.Context(), staffing.ProjectID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]SegmentDTO, 0, len(segments))
	for slotID, remaining := range segments {
		dtos = append(dtos, SegmentDTO{SlotID: string(slotID), RemainingPercent: remaining.String()})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ASSIGNMENT HANDLERS
// =============================================================================

// CreateAssignment places staffing on a project. The response carries the
// two-tier validation result: 201 with the assignment (and any warnings),
// or 422 with every blocking violation plus conflict/retargeting detail.
func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req CreateAssignmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	start, _ := staffing.ParseDate(req.StartDate)
	cmd := staffing.CreateAssignmentCommand{
		ProjectID:         staffing.ProjectID(req.ProjectID),
		EmployeeID:        staffing.EmployeeID(req.EmployeeID),
		VendorName:        req.VendorName,
		StartDate:         start,
		EndDate:           parseOptionalDate(req.EndDate),
		AllocationPercent: staffing.Dec(req.AllocationPercent),
		Notes:             req.Notes,
		Actor:             actor(r),
	}
	if req.SlotID != nil {
		slotID := staffing.SlotID(*req.SlotID)
		cmd.SlotID = &slotID
	}

	result, err := h.Engine.CreateAssignment(r.Context(), cmd)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	status := http.StatusCreated
	if !result.OK() {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, toResultDTO(result))
}

// ListAssignments lists assignments with optional project/employee/slot
// query filters.
func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	filter := staffing.AssignmentFilter{}
	if v := r.URL.Query().Get("project_id"); v != "" {
		id := staffing.ProjectID(v)
		filter.ProjectID = &id
	}
	if v := r.URL.Query().Get("employee_id"); v != "" {
		id := staffing.EmployeeID(v)
		filter.EmployeeID = &id
	}
	if v := r.URL.Query().Get("slot_id"); v != "" {
		id := staffing.SlotID(v)
		filter.SlotID = &id
	}

	assignments, err := h.Engine.GetAssignments(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list assignments", err)
		return
	}

	dtos := make([]AssignmentDTO, len(assignments))
	for i := range assignments {
		dtos[i] = toAssignmentDTO(&assignments[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAssignment returns a single assignment.
func (h *Handler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	assignment, err := h.Engine.GetAssignmentByID(r.Context(), staffing.AssignmentID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssignmentDTO(assignment))
}

// UpdateAssignment adjusts range, allocation or notes; version-guarded.
func (h *Handler) UpdateAssignment(w http.ResponseWriter, r *http.Request) {
	var req UpdateAssignmentRequest
	if !h.decode(w, r, &req) {
		return
	}

	start, _ := staffing.ParseDate(req.StartDate)
	result, err := h.Engine.UpdateAssignment(r.Context(), staffing.UpdateAssignmentCommand{
		AssignmentID:      staffing.AssignmentID(chi.URLParam(r, "id")),
		StartDate:         start,
		EndDate:           parseOptionalDate(req.EndDate),
		AllocationPercent: staffing.Dec(req.AllocationPercent),
		Notes:             req.Notes,
		ExpectedVersion:   req.ExpectedVersion,
		Actor:             actor(r),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	status := http.StatusOK
	if !result.OK() {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, toResultDTO(result))
}

// DeleteAssignment soft-deletes an assignment.
func (h *Handler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	err := h.Engine.DeleteAssignment(r.Context(), staffing.AssignmentID(chi.URLParam(r, "id")), actor(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ApproveAssignment activates a Planned assignment.
func (h *Handler) ApproveAssignment(w http.ResponseWriter, r *http.Request) {
	assignment, err := h.Engine.ApproveAssignment(r.Context(), staffing.AssignmentID(chi.URLParam(r, "id")), actor(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssignmentDTO(assignment))
}

// RejectAssignment cancels a Planned assignment with a reason.
func (h *Handler) RejectAssignment(w http.ResponseWriter, r *http.Request) {
	var req RejectAssignmentRequest
	json.NewDecoder(r.Body).Decode(&req)

	assignment, err := h.Engine.RejectAssignment(r.Context(), staffing.AssignmentID(chi.URLParam(r, "id")), actor(r), req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssignmentDTO(assignment))
}

// UnassignAssignment ends the assignment at the given date and completes it.
func (h *Handler) UnassignAssignment(w http.ResponseWriter, r *http.Request) {
	var req UnassignRequest
	if !h.decode(w, r, &req) {
		return
	}

	endDate, _ := staffing.ParseDate(req.EndDate)
	assignment, err := h.Engine.UnassignAssignment(r.Context(), staffing.AssignmentID(chi.URLParam(r, "id")), endDate, actor(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssignmentDTO(assignment))
}

// HoldAssignment suspends an assignment.
func (h *Handler) HoldAssignment(w http.ResponseWriter, r *http.Request) {
	assignment, err := h.Engine.HoldAssignment(r.Context(), staffing.AssignmentID(chi.URLParam(r, "id")), actor(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssignmentDTO(assignment))
}

// ResumeAssignment reactivates an OnHold assignment.
func (h *Handler) ResumeAssignment(w http.ResponseWriter, r *http.Request) {
	assignment, err := h.Engine.ResumeAssignment(r.Context(), staffing.AssignmentID(chi.URLParam(r, "id")), actor(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssignmentDTO(assignment))
}

// AutoCompleteAssignments batch-completes every Active assignment whose end
// date has passed.
func (h *Handler) AutoCompleteAssignments(w http.ResponseWriter, r *http.Request) {
	result, err := h.Engine.AutoCompleteAssignments(r.Context(), actor(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dto := AutoCompleteDTO{CompletedCount: result.CompletedCount, Errors: result.Errors}
	for _, id := range result.CompletedIDs {
		dto.CompletedIDs = append(dto.CompletedIDs, string(id))
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// HELPERS
// =============================================================================

// decode parses and validates a request body, writing a 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

func toSlotInput(req SlotInputRequest) staffing.SlotInput {
	return staffing.SlotInput{
		PeriodMonths:             req.PeriodMonths,
		AllocationPercent:        staffing.Dec(req.AllocationPercent),
		PlannedSalary:            staffing.Dec(req.PlannedSalary),
		PlannedIncentive:         staffing.Dec(req.PlannedIncentive),
		PlannedCommissionPercent: staffing.Dec(req.PlannedCommissionPercent),
		PlannedTickets:           staffing.Dec(req.PlannedTickets),
		PlannedHoteling:          staffing.Dec(req.PlannedHoteling),
		PlannedOthers:            staffing.Dec(req.PlannedOthers),
	}
}

func toSlotDTOs(slots []staffing.PlannedTeamSlot) []SlotDTO {
	dtos := make([]SlotDTO, len(slots))
	for i := range slots {
		dtos[i] = toSlotDTO(&slots[i])
	}
	return dtos
}

func parseOptionalDate(s *string) *staffing.Date {
	if s == nil || *s == "" {
		return nil
	}
	d, err := staffing.ParseDate(*s)
	if err != nil {
		return nil
	}
	return &d
}

// parseWindow reads ?from and ?to query dates, writing a 400 on failure.
func parseWindow(w http.ResponseWriter, r *http.Request) (staffing.Date, staffing.Date, bool) {
	from, err := staffing.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing 'from' date (use YYYY-MM-DD)", err)
		return staffing.Date{}, staffing.Date{}, false
	}
	to, err := staffing.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or missing 'to' date (use YYYY-MM-DD)", err)
		return staffing.Date{}, staffing.Date{}, false
	}
	return from, to, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError classifies a domain error into an HTTP status.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case staffing.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case staffing.IsRetryable(err):
		writeError(w, http.StatusConflict, err.Error(), nil)
	case staffing.IsBusinessRule(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error(), nil)
	case staffing.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
