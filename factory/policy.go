/*
Package factory provides JSON to Go risk-policy conversion.

PURPOSE:
  Converts JSON risk-policy definitions into staffing.RiskPolicy values.
  This enables threshold configuration without code changes - delivery
  managers can tune approval routing in JSON, and the factory creates the
  proper Go structs.

WHY JSON?
  - Non-developers can modify thresholds
  - Easy integration with admin UI
  - Version control for policy definitions
  - Database/config-file storage of policy configs

JSON SCHEMA:
  {
    "id": "risk-standard",
    "name": "Standard Risk Policy",
    "cost_variance_warn_pct": 20,
    "cost_variance_approval_pct": 35,
    "high_utilization_pct": 80
  }

USAGE:
  factory := NewRiskPolicyFactory()
  policy, err := factory.ParseRiskPolicy(jsonStr)
  engine.Risk = policy

  // Or a preset:
  engine.Risk, _ = factory.ParseRiskPolicy(factory.StandardRiskJSON())

SEE ALSO:
  - staffing/engine.go: RiskPolicy consumer
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/warp/staffing-engine/staffing"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RiskPolicyJSON is the JSON representation of a risk policy. Omitted
// thresholds fall back to the engine defaults.
type RiskPolicyJSON struct {
	ID                      string   `json:"id"`
	Name                    string   `json:"name"`
	CostVarianceWarnPct     *float64 `json:"cost_variance_warn_pct,omitempty"`
	CostVarianceApprovalPct *float64 `json:"cost_variance_approval_pct,omitempty"`
	HighUtilizationPct      *float64 `json:"high_utilization_pct,omitempty"`
}

// =============================================================================
// RISK POLICY FACTORY
// =============================================================================

// RiskPolicyFactory converts JSON risk policies to engine config.
type RiskPolicyFactory struct{}

func NewRiskPolicyFactory() *RiskPolicyFactory {
	return &RiskPolicyFactory{}
}

// ParseRiskPolicy parses a JSON string into a RiskPolicy.
func (f *RiskPolicyFactory) ParseRiskPolicy(jsonStr string) (staffing.RiskPolicy, error) {
	var rj RiskPolicyJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return staffing.RiskPolicy{}, fmt.Errorf("failed to parse risk policy JSON: %w", err)
	}
	return f.FromJSON(rj)
}

// FromJSON converts a parsed RiskPolicyJSON into a RiskPolicy, validating
// threshold ordering.
func (f *RiskPolicyFactory) FromJSON(rj RiskPolicyJSON) (staffing.RiskPolicy, error) {
	policy := staffing.DefaultRiskPolicy()

	if rj.CostVarianceWarnPct != nil {
		policy.CostVarianceWarnPct = staffing.Dec(*rj.CostVarianceWarnPct)
	}
	if rj.CostVarianceApprovalPct != nil {
		policy.CostVarianceApprovalPct = staffing.Dec(*rj.CostVarianceApprovalPct)
	}
	if rj.HighUtilizationPct != nil {
		policy.HighUtilizationPct = staffing.Dec(*rj.HighUtilizationPct)
	}

	if policy.CostVarianceWarnPct.IsNegative() ||
		policy.CostVarianceApprovalPct.IsNegative() ||
		policy.HighUtilizationPct.IsNegative() {
		return staffing.RiskPolicy{}, fmt.Errorf("risk policy %q: thresholds must be non-negative", rj.ID)
	}
	if policy.CostVarianceApprovalPct.LessThan(policy.CostVarianceWarnPct) {
		return staffing.RiskPolicy{}, fmt.Errorf("risk policy %q: approval threshold below warn threshold", rj.ID)
	}

	return policy, nil
}

// =============================================================================
// PRESETS
// =============================================================================

// StandardRiskJSON matches the engine defaults.
func StandardRiskJSON() string {
	return `{
		"id": "risk-standard",
		"name": "Standard Risk Policy",
		"cost_variance_warn_pct": 20,
		"cost_variance_approval_pct": 35,
		"high_utilization_pct": 80
	}`
}

// ConservativeRiskJSON routes more assignments through approval.
func ConservativeRiskJSON() string {
	return `{
		"id": "risk-conservative",
		"name": "Conservative Risk Policy",
		"cost_variance_warn_pct": 10,
		"cost_variance_approval_pct": 20,
		"high_utilization_pct": 70
	}`
}
