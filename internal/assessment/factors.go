package assessment

import (
	"fmt"

	"github.com/ursalaan/Change-Impact-Forecaster/internal/types"
)

// ruleResult is one rule's verdict. A nil factor means the rule abstained;
// missing names the input field the rule needed but did not get.
type ruleResult struct {
	factor     *types.FactorContribution
	mitigation string
	assumption string
	missing    string
}

// rule is a single, independent risk heuristic. Rules are pure functions of
// the change request and the precomputed blast radius; they never observe
// each other's output.
type rule struct {
	name string
	eval func(req types.ChangeRequest, radius types.BlastRadius) ruleResult
}

// changeTypePoints maps a change type to its risk points. Schema and infra
// changes are the hardest to reverse cleanly, so they carry the most.
var changeTypePoints = map[types.ChangeType]float64{
	types.ChangeConfig: 10,
	types.ChangeDeploy: 15,
	types.ChangeAccess: 20,
	types.ChangeInfra:  25,
	types.ChangeSchema: 30,
}

const changeTypeMaxPoints = 30

// catalog is the fixed rule set, evaluated and reported in declaration order.
// The order only affects the audit trail; the score is a commutative sum.
var catalog = []rule{
	{
		name: "production-environment",
		eval: func(req types.ChangeRequest, _ types.BlastRadius) ruleResult {
			if req.Environment == "" {
				return ruleResult{missing: "environment not provided"}
			}
			if req.Environment != types.EnvProduction {
				return ruleResult{}
			}
			return ruleResult{
				factor: &types.FactorContribution{
					Name:         "production-environment",
					Contribution: 1.0,
					Weight:       30,
					Confidence:   1.0,
					Reason:       "production changes carry higher impact and recovery complexity",
				},
				mitigation: "Make sure rollback steps are written and tested before starting.",
			}
		},
	},
	{
		name: "change-type",
		eval: func(req types.ChangeRequest, _ types.BlastRadius) ruleResult {
			if req.ChangeType == "" {
				return ruleResult{missing: "change_type not provided"}
			}
			points, ok := changeTypePoints[req.ChangeType]
			if !ok {
				return ruleResult{missing: fmt.Sprintf("change_type %q is not recognized", req.ChangeType)}
			}
			return ruleResult{
				factor: &types.FactorContribution{
					Name:         "change-type",
					Contribution: points / changeTypeMaxPoints,
					Weight:       changeTypeMaxPoints,
					Confidence:   1.0,
					Reason:       fmt.Sprintf("change type: %s", req.ChangeType),
				},
			}
		},
	},
	{
		name: "no-rollback-plan",
		eval: func(req types.ChangeRequest, _ types.BlastRadius) ruleResult {
			switch req.RollbackPlan {
			case "":
				return ruleResult{missing: "rollback_plan not provided"}
			case types.RollbackNone:
				return ruleResult{
					factor: &types.FactorContribution{
						Name:         "no-rollback-plan",
						Contribution: 1.0,
						Weight:       15,
						Confidence:   1.0,
						Reason:       "no rollback plan",
					},
					mitigation: "Add at least a basic rollback plan and validate it.",
				}
			case types.RollbackTested:
				return ruleResult{
					factor: &types.FactorContribution{
						Name:         "no-rollback-plan",
						Contribution: -1.0,
						Weight:       15,
						Confidence:   1.0,
						Reason:       "rollback is tested",
					},
				}
			default:
				// partial: present, neither a risk nor a reducer
				return ruleResult{}
			}
		},
	},
	{
		name: "monitoring-coverage",
		eval: func(req types.ChangeRequest, _ types.BlastRadius) ruleResult {
			switch req.Monitoring {
			case "":
				return ruleResult{missing: "monitoring not provided"}
			case types.MonitoringNone:
				return ruleResult{
					factor: &types.FactorContribution{
						Name:         "monitoring-coverage",
						Contribution: 1.0,
						Weight:       10,
						Confidence:   1.0,
						Reason:       "no monitoring coverage for the change",
					},
					mitigation: "Add monitoring (dashboards and alerts) for the change window.",
				}
			case types.MonitoringStrong:
				return ruleResult{
					factor: &types.FactorContribution{
						Name:         "monitoring-coverage",
						Contribution: -1.0,
						Weight:       10,
						Confidence:   1.0,
						Reason:       "strong monitoring in place",
					},
				}
			default:
				return ruleResult{}
			}
		},
	},
	{
		name: "risky-change-window",
		eval: func(req types.ChangeRequest, _ types.BlastRadius) ruleResult {
			if req.WindowStart == nil {
				return ruleResult{missing: "window_start not provided"}
			}
			if req.Environment != types.EnvProduction {
				return ruleResult{}
			}
			start := *req.WindowStart
			weekend := start.Weekday() == 0 || start.Weekday() == 6
			outOfHours := start.Hour() < 8 || start.Hour() >= 18
			if !weekend && !outOfHours {
				return ruleResult{}
			}
			return ruleResult{
				factor: &types.FactorContribution{
					Name:         "risky-change-window",
					Contribution: 1.0,
					Weight:       10,
					Confidence:   1.0,
					Reason:       "scheduled out of hours or on a weekend",
				},
				mitigation: "Schedule during staffed hours or arrange extra on-call cover.",
			}
		},
	},
	{
		name: "touches-many-services",
		eval: func(req types.ChangeRequest, _ types.BlastRadius) ruleResult {
			if len(req.ServicesTouched) == 0 {
				return ruleResult{missing: "services_touched not provided"}
			}
			if len(req.ServicesTouched) < 3 {
				return ruleResult{}
			}
			return ruleResult{
				factor: &types.FactorContribution{
					Name:         "touches-many-services",
					Contribution: 1.0,
					Weight:       15,
					Confidence:   1.0,
					Reason:       fmt.Sprintf("touches %d services directly", len(req.ServicesTouched)),
				},
				mitigation: "Consider splitting the change into smaller steps.",
			}
		},
	},
	{
		name: "blast-radius",
		eval: func(_ types.ChangeRequest, radius types.BlastRadius) ruleResult {
			switch radius.Classification {
			case types.RadiusModerate:
				return ruleResult{
					factor: &types.FactorContribution{
						Name:         "blast-radius",
						Contribution: 0.5,
						Weight:       20,
						Confidence:   0.9,
						Reason:       fmt.Sprintf("%d services affected directly or transitively", radius.Count),
					},
				}
			case types.RadiusWide:
				return ruleResult{
					factor: &types.FactorContribution{
						Name:         "blast-radius",
						Contribution: 1.0,
						Weight:       20,
						Confidence:   0.9,
						Reason:       fmt.Sprintf("%d services affected directly or transitively", radius.Count),
					},
					mitigation: "Stage the rollout and notify owners of downstream services.",
				}
			default:
				return ruleResult{}
			}
		},
	},
}

// evaluateFactors runs the catalog in declared order and collects the
// contributions, mitigations, assumptions and missing-information notes.
func evaluateFactors(req types.ChangeRequest, radius types.BlastRadius) (factors []types.FactorContribution, mitigations, assumptions, missing []string) {
	factors = make([]types.FactorContribution, 0, len(catalog))
	mitigations = []string{}
	assumptions = []string{}
	missing = []string{}

	for _, r := range catalog {
		res := r.eval(req, radius)

		if res.factor != nil {
			factors = append(factors, *res.factor)
		}
		if res.mitigation != "" {
			mitigations = append(mitigations, res.mitigation)
		}
		if res.assumption != "" {
			assumptions = append(assumptions, res.assumption)
		}
		if res.missing != "" {
			missing = append(missing, res.missing)
		}
	}

	return factors, mitigations, assumptions, missing
}
