// Package assessment implements the deterministic risk-scoring engine: a
// fixed catalog of explainable factor rules, a dependency-aware blast-radius
// expansion, and the composer that turns both into an auditable assessment.
package assessment

import (
	"github.com/ursalaan/Change-Impact-Forecaster/internal/errors"
	"github.com/ursalaan/Change-Impact-Forecaster/internal/graph"
	"github.com/ursalaan/Change-Impact-Forecaster/internal/types"
)

// Assessor runs assessments against a dependency graph loaded at startup.
// It holds no mutable state, so a single instance serves concurrent requests.
type Assessor struct {
	graph *graph.Graph
}

// NewAssessor creates an assessor backed by the given dependency graph
func NewAssessor(g *graph.Graph) *Assessor {
	return &Assessor{graph: g}
}

// Assess produces a complete assessment for one change request. It fails only
// when no dependency graph is attached; missing or sparse input degrades the
// result with assumptions and missing-info notes instead of erroring.
func (a *Assessor) Assess(req types.ChangeRequest) (*types.Assessment, error) {
	if a == nil || a.graph == nil {
		return nil, errors.NewAssessmentError("dependency graph is not loaded", nil)
	}

	radius, radiusMissing := ExpandBlastRadius(a.graph, req.ServicesTouched)

	factors, mitigations, ruleAssumptions, ruleMissing := evaluateFactors(req, radius)

	score, level := AggregateScore(factors)

	assumptions := []string{
		"service dependencies come from the static dependency source loaded at startup",
		"blast radius is estimated from direct and transitive dependents",
	}
	if len(radiusMissing) > 0 {
		assumptions = append(assumptions, "services absent from the dependency graph are assumed to have no dependents")
	}
	assumptions = append(assumptions, ruleAssumptions...)

	missing := append([]string{}, ruleMissing...)
	missing = append(missing, radiusMissing...)

	return &types.Assessment{
		ChangeID:    req.ChangeID,
		Score:       score,
		Level:       level,
		Factors:     factors,
		BlastRadius: radius,
		Mitigations: dedupe(mitigations),
		Assumptions: assumptions,
		MissingInfo: missing,
	}, nil
}

// dedupe removes duplicates while preserving first-seen order
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
