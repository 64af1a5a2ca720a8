package factory_test

import (
	"strings"
	"testing"

	"github.com/warp/staffing-engine/factory"
	"github.com/warp/staffing-engine/staffing"
)

func TestParseRiskPolicy_FullDefinition(t *testing.T) {
	// GIVEN: A JSON policy with every threshold set
	f := factory.NewRiskPolicyFactory()
	jsonStr := `{
		"id": "risk-custom",
		"name": "Custom",
		"cost_variance_warn_pct": 15,
		"cost_variance_approval_pct": 25,
		"high_utilization_pct": 90
	}`

	// WHEN: Parsing it
	policy, err := f.ParseRiskPolicy(jsonStr)
	if err != nil {
		t.Fatalf("ParseRiskPolicy failed: %v", err)
	}

	// THEN: All three thresholds come from the JSON
	if !policy.CostVarianceWarnPct.Equal(staffing.Dec(15)) {
		t.Errorf("warn pct = %s, want 15", policy.CostVarianceWarnPct)
	}
	if !policy.CostVarianceApprovalPct.Equal(staffing.Dec(25)) {
		t.Errorf("approval pct = %s, want 25", policy.CostVarianceApprovalPct)
	}
	if !policy.HighUtilizationPct.Equal(staffing.Dec(90)) {
		t.Errorf("high utilization pct = %s, want 90", policy.HighUtilizationPct)
	}
}

func TestParseRiskPolicy_OmittedFieldsFallBackToDefaults(t *testing.T) {
	// GIVEN: A policy that only overrides the warn threshold
	f := factory.NewRiskPolicyFactory()
	jsonStr := `{"id": "risk-partial", "cost_variance_warn_pct": 5}`

	// WHEN: Parsing it
	policy, err := f.ParseRiskPolicy(jsonStr)
	if err != nil {
		t.Fatalf("ParseRiskPolicy failed: %v", err)
	}

	// THEN: The override applies and the rest stay at engine defaults
	defaults := staffing.DefaultRiskPolicy()
	if !policy.CostVarianceWarnPct.Equal(staffing.Dec(5)) {
		t.Errorf("warn pct = %s, want 5", policy.CostVarianceWarnPct)
	}
	if !policy.CostVarianceApprovalPct.Equal(defaults.CostVarianceApprovalPct) {
		t.Errorf("approval pct = %s, want default %s",
			policy.CostVarianceApprovalPct, defaults.CostVarianceApprovalPct)
	}
	if !policy.HighUtilizationPct.Equal(defaults.HighUtilizationPct) {
		t.Errorf("high utilization pct = %s, want default %s",
			policy.HighUtilizationPct, defaults.HighUtilizationPct)
	}
}

func TestParseRiskPolicy_ZeroThresholdIsValid(t *testing.T) {
	// GIVEN: A zero warn threshold (warn on any deviation)
	f := factory.NewRiskPolicyFactory()

	// WHEN: Parsing it
	policy, err := f.ParseRiskPolicy(`{"id": "risk-zero", "cost_variance_warn_pct": 0}`)

	// THEN: Zero parses fine, it is not treated as omitted
	if err != nil {
		t.Fatalf("ParseRiskPolicy failed: %v", err)
	}
	if !policy.CostVarianceWarnPct.IsZero() {
		t.Errorf("warn pct = %s, want 0", policy.CostVarianceWarnPct)
	}
}

func TestParseRiskPolicy_NegativeThresholdRejected(t *testing.T) {
	f := factory.NewRiskPolicyFactory()

	_, err := f.ParseRiskPolicy(`{"id": "risk-bad", "high_utilization_pct": -10}`)

	if err == nil {
		t.Fatal("expected error for negative threshold, got nil")
	}
	if !strings.Contains(err.Error(), "non-negative") {
		t.Errorf("error = %v, want mention of non-negative thresholds", err)
	}
}

func TestParseRiskPolicy_ApprovalBelowWarnRejected(t *testing.T) {
	// GIVEN: An approval threshold lower than the warn threshold
	f := factory.NewRiskPolicyFactory()
	jsonStr := `{
		"id": "risk-inverted",
		"cost_variance_warn_pct": 30,
		"cost_variance_approval_pct": 10
	}`

	// WHEN/THEN: Parsing fails, the ordering is part of the schema
	if _, err := f.ParseRiskPolicy(jsonStr); err == nil {
		t.Fatal("expected error for approval < warn, got nil")
	}
}

func TestParseRiskPolicy_MalformedJSON(t *testing.T) {
	f := factory.NewRiskPolicyFactory()

	if _, err := f.ParseRiskPolicy(`{"id": `); err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

func TestStandardPreset_MatchesEngineDefaults(t *testing.T) {
	// GIVEN: The standard preset
	f := factory.NewRiskPolicyFactory()

	// WHEN: Parsing it
	policy, err := f.ParseRiskPolicy(factory.StandardRiskJSON())
	if err != nil {
		t.Fatalf("ParseRiskPolicy failed: %v", err)
	}

	// THEN: It is identical to what the engine ships with
	defaults := staffing.DefaultRiskPolicy()
	if !policy.CostVarianceWarnPct.Equal(defaults.CostVarianceWarnPct) ||
		!policy.CostVarianceApprovalPct.Equal(defaults.CostVarianceApprovalPct) ||
		!policy.HighUtilizationPct.Equal(defaults.HighUtilizationPct) {
		t.Errorf("standard preset %+v does not match defaults %+v", policy, defaults)
	}
}

func TestConservativePreset_TightensEveryThreshold(t *testing.T) {
	f := factory.NewRiskPolicyFactory()

	policy, err := f.ParseRiskPolicy(factory.ConservativeRiskJSON())
	if err != nil {
		t.Fatalf("ParseRiskPolicy failed: %v", err)
	}

	if !policy.CostVarianceWarnPct.Equal(staffing.Dec(10)) {
		t.Errorf("warn pct = %s, want 10", policy.CostVarianceWarnPct)
	}
	if !policy.CostVarianceApprovalPct.Equal(staffing.Dec(20)) {
		t.Errorf("approval pct = %s, want 20", policy.CostVarianceApprovalPct)
	}
	if !policy.HighUtilizationPct.Equal(staffing.Dec(70)) {
		t.Errorf("high utilization pct = %s, want 70", policy.HighUtilizationPct)
	}
}
