/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry validator/v10 struct tags; handlers run them through
  the shared validator before touching the domain. Domain rules (allocation
  ceilings, date containment) stay in the staffing package - the tags only
  cover shape.

MONEY REPRESENTATION:
  Money and percent fields arrive as JSON numbers and are converted to
  decimals at the boundary. Responses render decimals as strings to avoid
  float drift in clients.

SEE ALSO:
  - handlers.go: Uses these types
  - staffing/entities.go: The domain shapes behind them
*/
package api

import (
	"time"

	"github.com/warp/staffing-engine/staffing"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreateProjectRequest is the request to create a project.
type CreateProjectRequest struct {
	ID                   string  `json:"id"`
	Name                 string  `json:"name" validate:"required"`
	ClientName           string  `json:"client_name"`
	StartDate            string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate              string  `json:"end_date" validate:"required,datetime=2006-01-02"`
	ExpectedPeriodMonths int     `json:"expected_period_months" validate:"required,gt=0"`
	ProjectPrice         float64 `json:"project_price" validate:"gte=0"`
	Currency             string  `json:"currency"`
}

// CreateRoleRequest is the request to create a role.
type CreateRoleRequest struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"required"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	ID                string  `json:"id"`
	Name              string  `json:"name" validate:"required"`
	Email             string  `json:"email" validate:"omitempty,email"`
	RoleID            string  `json:"role_id" validate:"required"`
	Salary            float64 `json:"salary" validate:"gte=0"`
	MonthlyIncentive  float64 `json:"monthly_incentive" validate:"gte=0"`
	CommissionPercent float64 `json:"commission_percent" validate:"gte=0,lte=100"`
}

// SlotInputRequest carries the plannable fields shared by slot create and
// update.
type SlotInputRequest struct {
	PeriodMonths             int     `json:"period_months" validate:"required,gt=0"`
	AllocationPercent        float64 `json:"allocation_percent" validate:"required,gt=0,lte=100"`
	PlannedSalary            float64 `json:"planned_salary" validate:"gte=0"`
	PlannedIncentive         float64 `json:"planned_incentive" validate:"gte=0"`
	PlannedCommissionPercent float64 `json:"planned_commission_percent" validate:"gte=0,lte=100"`
	PlannedTickets           float64 `json:"planned_tickets" validate:"gte=0"`
	PlannedHoteling          float64 `json:"planned_hoteling" validate:"gte=0"`
	PlannedOthers            float64 `json:"planned_others" validate:"gte=0"`
}

// CreateSlotRequest is the request to plan a new slot.
type CreateSlotRequest struct {
	ProjectID string `json:"project_id" validate:"required"`
	RoleID    string `json:"role_id" validate:"required"`
	SlotInputRequest
}

// UpdateSlotRequest is the request to re-plan a slot.
type UpdateSlotRequest struct {
	RoleID string `json:"role_id"`
	SlotInputRequest
	ExpectedVersion string `json:"expected_version" validate:"required"`
}

// CreateAssignmentRequest is the request to place staffing on a project.
type CreateAssignmentRequest struct {
	ProjectID         string  `json:"project_id" validate:"required"`
	SlotID            *string `json:"slot_id,omitempty"`
	EmployeeID        string  `json:"employee_id"`
	VendorName        string  `json:"vendor_name"`
	StartDate         string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate           *string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	AllocationPercent float64 `json:"allocation_percent" validate:"required,gt=0"`
	Notes             string  `json:"notes"`
}

// UpdateAssignmentRequest adjusts an assignment's range, allocation or notes.
type UpdateAssignmentRequest struct {
	StartDate         string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate           *string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	AllocationPercent float64 `json:"allocation_percent" validate:"required,gt=0"`
	Notes             string  `json:"notes"`
	ExpectedVersion   string  `json:"expected_version" validate:"required"`
}

// RejectAssignmentRequest carries the rejection reason.
type RejectAssignmentRequest struct {
	Reason string `json:"reason"`
}

// UnassignRequest ends an assignment at a date.
type UnassignRequest struct {
	EndDate string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// LoadScenarioRequest selects a demo scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ProjectDTO represents a project in API responses.
type ProjectDTO struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	ClientName           string `json:"client_name,omitempty"`
	StartDate            string `json:"start_date"`
	EndDate              string `json:"end_date"`
	ExpectedPeriodMonths int    `json:"expected_period_months"`
	ProjectPrice         string `json:"project_price"`
	Currency             string `json:"currency,omitempty"`
	Status               string `json:"status"`
}

// RoleDTO represents a role.
type RoleDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EmployeeDTO represents an employee.
type EmployeeDTO struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email,omitempty"`
	RoleID            string `json:"role_id"`
	Salary            string `json:"salary"`
	MonthlyIncentive  string `json:"monthly_incentive"`
	CommissionPercent string `json:"commission_percent"`
}

// SlotDTO represents a planned team slot.
type SlotDTO struct {
	ID                       string `json:"id"`
	ProjectID                string `json:"project_id"`
	RoleID                   string `json:"role_id"`
	PeriodMonths             int    `json:"period_months"`
	AllocationPercent        string `json:"allocation_percent"`
	PlannedSalary            string `json:"planned_salary"`
	PlannedIncentive         string `json:"planned_incentive"`
	PlannedCommissionPercent string `json:"planned_commission_percent"`
	PlannedTickets           string `json:"planned_tickets"`
	PlannedHoteling          string `json:"planned_hoteling"`
	PlannedOthers            string `json:"planned_others"`
	ComputedBudgetCost       string `json:"computed_budget_cost"`
	IsAssigned               bool   `json:"is_assigned"`
	VersionToken             string `json:"version_token"`
}

// AssignmentDTO represents an actual assignment.
type AssignmentDTO struct {
	ID                string  `json:"id"`
	ProjectID         string  `json:"project_id"`
	SlotID            *string `json:"slot_id,omitempty"`
	EmployeeID        string  `json:"employee_id,omitempty"`
	VendorName        string  `json:"vendor_name,omitempty"`
	StartDate         string  `json:"start_date"`
	EndDate           *string `json:"end_date,omitempty"`
	AllocationPercent string  `json:"allocation_percent"`
	Status            string  `json:"status"`
	Notes             string  `json:"notes,omitempty"`
	RequiresApproval  bool    `json:"requires_approval"`
	RequestedBy       string  `json:"requested_by,omitempty"`
	ApprovedBy        string  `json:"approved_by,omitempty"`
	ApprovedAt        string  `json:"approved_at,omitempty"`
	VersionToken      string  `json:"version_token"`
}

// IssueDTO is a single validation finding.
type IssueDTO struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// ConflictDTO describes why a slot could not fit a request.
type ConflictDTO struct {
	SlotID                string         `json:"slot_id"`
	RemainingPercent      string         `json:"remaining_percent"`
	ConflictingAssignment *AssignmentDTO `json:"conflicting_assignment,omitempty"`
}

// AssignmentResultDTO is the tagged outcome of an assignment create/update:
// either the assignment (possibly with warnings) or the blocking errors.
type AssignmentResultDTO struct {
	Assignment         *AssignmentDTO `json:"assignment,omitempty"`
	Errors             []IssueDTO     `json:"errors,omitempty"`
	Warnings           []IssueDTO     `json:"warnings,omitempty"`
	Conflict           *ConflictDTO   `json:"conflict,omitempty"`
	SuggestedEmployees []EmployeeDTO  `json:"suggested_employees,omitempty"`
}

// SegmentDTO is one slot's remaining open allocation.
type SegmentDTO struct {
	SlotID           string `json:"slot_id"`
	RemainingPercent string `json:"remaining_percent"`
}

// KPIDTO represents a project's KPI rollup.
type KPIDTO struct {
	ProjectID              string `json:"project_id"`
	PlannedCost            string `json:"planned_cost"`
	ActualCost             string `json:"actual_cost"`
	Variance               string `json:"variance"`
	VarianceOfPlannedPct   string `json:"variance_of_planned_pct"`
	PlannedAllocationPct   string `json:"planned_allocation_pct"`
	UtilizedAllocationPct  string `json:"utilized_allocation_pct"`
	RemainingAllocationPct string `json:"remaining_allocation_pct"`
	ActiveAssignments      int    `json:"active_assignments"`
	CompletedAssignments   int    `json:"completed_assignments"`
	AverageUtilizationPct  string `json:"average_utilization_pct"`
}

// AllocationDTO is an employee's summed allocation over a window.
type AllocationDTO struct {
	EmployeeID        string `json:"employee_id"`
	From              string `json:"from"`
	To                string `json:"to"`
	AllocationPercent string `json:"allocation_percent"`
}

// DailyUtilizationDTO is one point of the dense daily series.
type DailyUtilizationDTO struct {
	Date              string `json:"date"`
	AllocationPercent string `json:"allocation_percent"`
}

// AutoCompleteDTO reports a batch auto-complete run.
type AutoCompleteDTO struct {
	CompletedCount int      `json:"completed_count"`
	CompletedIDs   []string `json:"completed_ids,omitempty"`
	Errors         []string `json:"errors,omitempty"`
}

// RecalculateDTO reports a budget-cost recalculation.
type RecalculateDTO struct {
	ProjectID    string `json:"project_id"`
	UpdatedSlots int    `json:"updated_slots"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toProjectDTO(p *staffing.Project) ProjectDTO {
	return ProjectDTO{
		ID:                   string(p.ID),
		Name:                 p.Name,
		ClientName:           p.ClientName,
		StartDate:            p.StartDate.String(),
		EndDate:              p.EndDate.String(),
		ExpectedPeriodMonths: p.ExpectedWorkingPeriodMonths,
		ProjectPrice:         p.ProjectPrice.String(),
		Currency:             p.Currency,
		Status:               string(p.Status),
	}
}

func toRoleDTO(r *staffing.Role) RoleDTO {
	return RoleDTO{ID: string(r.ID), Name: r.Name}
}

func toEmployeeDTO(e *staffing.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:                string(e.ID),
		Name:              e.Name,
		Email:             e.Email,
		RoleID:            string(e.RoleID),
		Salary:            e.Salary.String(),
		MonthlyIncentive:  e.MonthlyIncentive.String(),
		CommissionPercent: e.CommissionPercent.String(),
	}
}

func toSlotDTO(s *staffing.PlannedTeamSlot) SlotDTO {
	return SlotDTO{
		ID:                       string(s.ID),
		ProjectID:                string(s.ProjectID),
		RoleID:                   string(s.RoleID),
		PeriodMonths:             s.PeriodMonths,
		AllocationPercent:        s.AllocationPercent.String(),
		PlannedSalary:            s.PlannedSalary.String(),
		PlannedIncentive:         s.PlannedIncentive.String(),
		PlannedCommissionPercent: s.PlannedCommissionPercent.String(),
		PlannedTickets:           s.PlannedTickets.String(),
		PlannedHoteling:          s.PlannedHoteling.String(),
		PlannedOthers:            s.PlannedOthers.String(),
		ComputedBudgetCost:       s.ComputedBudgetCost.String(),
		IsAssigned:               s.IsAssigned,
		VersionToken:             s.VersionToken,
	}
}

func toAssignmentDTO(a *staffing.ActualAssignment) AssignmentDTO {
	dto := AssignmentDTO{
		ID:                string(a.ID),
		ProjectID:         string(a.ProjectID),
		EmployeeID:        string(a.EmployeeID),
		VendorName:        a.VendorName,
		StartDate:         a.StartDate.String(),
		AllocationPercent: a.AllocationPercent.String(),
		Status:            string(a.Status),
		Notes:             a.Notes,
		RequiresApproval:  a.RequiresApproval,
		RequestedBy:       a.RequestedByUserID,
		ApprovedBy:        a.ApprovedByUserID,
		VersionToken:      a.VersionToken,
	}
	if a.SlotID != nil {
		s := string(*a.SlotID)
		dto.SlotID = &s
	}
	if a.EndDate != nil {
		s := a.EndDate.String()
		dto.EndDate = &s
	}
	if a.ApprovedAt != nil {
		dto.ApprovedAt = a.ApprovedAt.Format(time.RFC3339)
	}
	return dto
}

func toIssueDTOs(issues []staffing.Issue) []IssueDTO {
	if len(issues) == 0 {
		return nil
	}
	dtos := make([]IssueDTO, len(issues))
	for i, issue := range issues {
		dtos[i] = IssueDTO{
			Code:     issue.Code,
			Severity: string(issue.Severity),
			Message:  issue.Message,
		}
	}
	return dtos
}

func toResultDTO(result *staffing.AssignmentResult) AssignmentResultDTO {
	dto := AssignmentResultDTO{
		Errors:   toIssueDTOs(result.Errors),
		Warnings: toIssueDTOs(result.Warnings),
	}
	if result.Assignment != nil {
		a := toAssignmentDTO(result.Assignment)
		dto.Assignment = &a
	}
	if result.Conflict != nil {
		c := ConflictDTO{
			SlotID:           string(result.Conflict.SlotID),
			RemainingPercent: result.Conflict.RemainingPercent.String(),
		}
		if result.Conflict.ConflictingAssignment != nil {
			conflicting := toAssignmentDTO(result.Conflict.ConflictingAssignment)
			c.ConflictingAssignment = &conflicting
		}
		dto.Conflict = &c
	}
	for i := range result.SuggestedEmployees {
		dto.SuggestedEmployees = append(dto.SuggestedEmployees, toEmployeeDTO(&result.SuggestedEmployees[i]))
	}
	return dto
}

func toKPIDTO(kpi *staffing.ProjectKPIs) KPIDTO {
	return KPIDTO{
		ProjectID:              string(kpi.ProjectID),
		PlannedCost:            kpi.PlannedCost.StringFixed(2),
		ActualCost:             kpi.ActualCost.StringFixed(2),
		Variance:               kpi.Variance.StringFixed(2),
		VarianceOfPlannedPct:   kpi.VarianceOfPlannedPct.StringFixed(2),
		PlannedAllocationPct:   kpi.PlannedAllocationPct.String(),
		UtilizedAllocationPct:  kpi.UtilizedAllocationPct.String(),
		RemainingAllocationPct: kpi.RemainingAllocationPct.String(),
		ActiveAssignments:      kpi.ActiveAssignments,
		CompletedAssignments:   kpi.CompletedAssignments,
		AverageUtilizationPct:  kpi.AverageUtilizationPct.StringFixed(2),
	}
}
