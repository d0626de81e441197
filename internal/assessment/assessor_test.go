package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ursalaan/Change-Impact-Forecaster/internal/types"
)

const assessorGraphSource = `
svc-a:
  - down-a1
  - down-a2
svc-b:
  - down-b1
  - down-b2
svc-c:
  - down-c1
  - down-c2
svc-d: []
svc-e: []
`

func TestAssess_HighRiskScenario(t *testing.T) {
	g := mustLoadGraph(t, assessorGraphSource)
	assessor := NewAssessor(g)

	req := types.ChangeRequest{
		ChangeID:        "chg-high",
		Environment:     types.EnvProduction,
		ChangeType:      types.ChangeSchema,
		ServicesTouched: []string{"svc-a", "svc-b", "svc-c", "svc-d", "svc-e"},
		RollbackPlan:    types.RollbackNone,
		Monitoring:      types.MonitoringNone,
		WindowStart:     timePtr(weekdayMorning),
	}

	result, err := assessor.Assess(req)
	require.NoError(t, err)

	assert.Equal(t, "chg-high", result.ChangeID)
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, types.LevelHigh, result.Level)
	assert.Equal(t, 11, result.BlastRadius.Count)
	assert.Equal(t, types.RadiusWide, result.BlastRadius.Classification)
	assert.Empty(t, result.MissingInfo)

	assert.Contains(t, result.Mitigations, "Add at least a basic rollback plan and validate it.")
	assert.Contains(t, result.Mitigations, "Add monitoring (dashboards and alerts) for the change window.")
	assert.Contains(t, result.Mitigations, "Stage the rollout and notify owners of downstream services.")
}

func TestAssess_LowRiskScenario(t *testing.T) {
	g := mustLoadGraph(t, assessorGraphSource)
	assessor := NewAssessor(g)

	req := types.ChangeRequest{
		ChangeID:        "chg-low",
		Environment:     types.EnvStaging,
		ChangeType:      types.ChangeConfig,
		ServicesTouched: []string{"svc-d"},
		RollbackPlan:    types.RollbackTested,
		Monitoring:      types.MonitoringBasic,
		WindowStart:     timePtr(weekdayMorning),
	}

	result, err := assessor.Assess(req)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Score)
	assert.Equal(t, types.LevelLow, result.Level)
	assert.Equal(t, 1, result.BlastRadius.Count)
	assert.Equal(t, types.RadiusIsolated, result.BlastRadius.Classification)
	assert.Empty(t, result.MissingInfo)
	assert.Empty(t, result.Mitigations)
}

func TestAssess_Deterministic(t *testing.T) {
	g := mustLoadGraph(t, assessorGraphSource)
	assessor := NewAssessor(g)

	req := types.ChangeRequest{
		ChangeID:        "chg-repeat",
		Environment:     types.EnvProduction,
		ChangeType:      types.ChangeDeploy,
		ServicesTouched: []string{"svc-a", "svc-b"},
		RollbackPlan:    types.RollbackPartial,
		Monitoring:      types.MonitoringStrong,
		WindowStart:     timePtr(weekdayMorning),
	}

	first, err := assessor.Assess(req)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := assessor.Assess(req)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestAssess_MissingOptionalFields(t *testing.T) {
	g := mustLoadGraph(t, assessorGraphSource)
	assessor := NewAssessor(g)

	result, err := assessor.Assess(types.ChangeRequest{ChangeID: "chg-sparse"})
	require.NoError(t, err)

	// one note per absent input, no duplicates
	assert.ElementsMatch(t, []string{
		"environment not provided",
		"change_type not provided",
		"rollback_plan not provided",
		"monitoring not provided",
		"window_start not provided",
		"services_touched not provided",
	}, result.MissingInfo)

	assert.Equal(t, 0, result.Score)
	assert.Equal(t, types.LevelLow, result.Level)
	assert.Empty(t, result.Factors)
	assert.Equal(t, 0, result.BlastRadius.Count)
}

func TestAssess_SingleMissingField(t *testing.T) {
	g := mustLoadGraph(t, assessorGraphSource)
	assessor := NewAssessor(g)

	req := types.ChangeRequest{
		ChangeID:        "chg-no-rollback-info",
		Environment:     types.EnvStaging,
		ChangeType:      types.ChangeConfig,
		ServicesTouched: []string{"svc-d"},
		Monitoring:      types.MonitoringBasic,
		WindowStart:     timePtr(weekdayMorning),
	}

	result, err := assessor.Assess(req)
	require.NoError(t, err)

	assert.Equal(t, []string{"rollback_plan not provided"}, result.MissingInfo)
}

func TestAssess_UnknownTouchedService(t *testing.T) {
	g := mustLoadGraph(t, assessorGraphSource)
	assessor := NewAssessor(g)

	req := types.ChangeRequest{
		ChangeID:        "chg-unknown",
		Environment:     types.EnvStaging,
		ChangeType:      types.ChangeConfig,
		ServicesTouched: []string{"svc-d", "not-in-graph"},
		RollbackPlan:    types.RollbackTested,
		Monitoring:      types.MonitoringBasic,
		WindowStart:     timePtr(weekdayMorning),
	}

	result, err := assessor.Assess(req)
	require.NoError(t, err)

	// the unknown service still counts toward the radius
	assert.Contains(t, result.BlastRadius.Services, "not-in-graph")
	assert.Equal(t, 2, result.BlastRadius.Count)
	assert.Contains(t, result.MissingInfo, `service "not-in-graph" is not in the dependency graph`)
	assert.Contains(t, result.Assumptions, "services absent from the dependency graph are assumed to have no dependents")
}

func TestAssess_NilGraph(t *testing.T) {
	assessor := NewAssessor(nil)

	result, err := assessor.Assess(types.ChangeRequest{ChangeID: "chg-1"})
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestAssess_ScoreMatchesFactorSum(t *testing.T) {
	g := mustLoadGraph(t, assessorGraphSource)
	assessor := NewAssessor(g)

	req := types.ChangeRequest{
		ChangeID:        "chg-sum",
		Environment:     types.EnvProduction,
		ChangeType:      types.ChangeAccess,
		ServicesTouched: []string{"svc-a"},
		RollbackPlan:    types.RollbackPartial,
		Monitoring:      types.MonitoringBasic,
		WindowStart:     timePtr(weekdayMorning),
	}

	result, err := assessor.Assess(req)
	require.NoError(t, err)

	total := 0.0
	for _, f := range result.Factors {
		total += f.Contribution * f.Weight
	}
	assert.InDelta(t, float64(result.Score), total, 0.5)
}

func TestAssess_BaselineAssumptionsAlwaysPresent(t *testing.T) {
	g := mustLoadGraph(t, assessorGraphSource)
	assessor := NewAssessor(g)

	result, err := assessor.Assess(types.ChangeRequest{ChangeID: "chg-1"})
	require.NoError(t, err)

	assert.Contains(t, result.Assumptions, "service dependencies come from the static dependency source loaded at startup")
	assert.Contains(t, result.Assumptions, "blast radius is estimated from direct and transitive dependents")
}
