package assessment

import (
	"math"

	"github.com/ursalaan/Change-Impact-Forecaster/internal/types"
)

// Level thresholds. Boundary scores belong to the higher band: 40 is medium,
// 70 is high.
const (
	maxScore        = 100
	mediumThreshold = 40
	highThreshold   = 70
)

// AggregateScore combines factor contributions into a single bounded score
// and its risk level. The score is the rounded sum of contribution*weight,
// clamped to [0, 100]. Summation is commutative, so contribution order never
// changes the result.
func AggregateScore(factors []types.FactorContribution) (int, types.RiskLevel) {
	total := 0.0
	for _, f := range factors {
		total += f.Contribution * f.Weight
	}

	score := int(math.Round(total))
	if score < 0 {
		score = 0
	}
	if score > maxScore {
		score = maxScore
	}

	return score, classifyScore(score)
}

// classifyScore maps a clamped score to its risk level
func classifyScore(score int) types.RiskLevel {
	switch {
	case score >= highThreshold:
		return types.LevelHigh
	case score >= mediumThreshold:
		return types.LevelMedium
	default:
		return types.LevelLow
	}
}
