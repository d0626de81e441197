package types

import "time"

// Environment identifies where a change will be applied
type Environment string

const (
	EnvDev        Environment = "dev"
	EnvStaging    Environment = "staging"
	EnvProduction Environment = "production"
)

// ChangeType classifies the kind of change being proposed
type ChangeType string

const (
	ChangeConfig ChangeType = "config"
	ChangeDeploy ChangeType = "deploy"
	ChangeAccess ChangeType = "access"
	ChangeInfra  ChangeType = "infra"
	ChangeSchema ChangeType = "schema"
)

// RollbackPlan describes how well prepared the rollback path is
type RollbackPlan string

const (
	RollbackNone    RollbackPlan = "none"
	RollbackPartial RollbackPlan = "partial"
	RollbackTested  RollbackPlan = "tested"
)

// MonitoringCoverage describes the monitoring in place for the change window
type MonitoringCoverage string

const (
	MonitoringNone   MonitoringCoverage = "none"
	MonitoringBasic  MonitoringCoverage = "basic"
	MonitoringStrong MonitoringCoverage = "strong"
)

// ChangeRequest is the structured description of a proposed change.
// Optional fields left empty/nil mean "unknown" and are never silently
// defaulted; the engine records an assumption or missing-info note instead.
type ChangeRequest struct {
	ChangeID        string             `json:"change_id" binding:"required"`
	Title           string             `json:"title,omitempty"`
	Environment     Environment        `json:"environment,omitempty" binding:"omitempty,oneof=dev staging production"`
	ChangeType      ChangeType         `json:"change_type,omitempty" binding:"omitempty,oneof=config deploy access infra schema"`
	ServicesTouched []string           `json:"services_touched"`
	RollbackPlan    RollbackPlan       `json:"rollback_plan,omitempty" binding:"omitempty,oneof=none partial tested"`
	Monitoring      MonitoringCoverage `json:"monitoring,omitempty" binding:"omitempty,oneof=none basic strong"`
	WindowStart     *time.Time         `json:"window_start,omitempty"`
	WindowEnd       *time.Time         `json:"window_end,omitempty"`
	Notes           string             `json:"notes,omitempty"`
}

// RiskLevel is the discrete band a score maps to
type RiskLevel string

const (
	LevelLow    RiskLevel = "low"
	LevelMedium RiskLevel = "medium"
	LevelHigh   RiskLevel = "high"
)

// RadiusClass is the qualitative size of a blast radius
type RadiusClass string

const (
	RadiusIsolated RadiusClass = "isolated"
	RadiusModerate RadiusClass = "moderate"
	RadiusWide     RadiusClass = "wide"
)

// FactorContribution is a single rule's weighted contribution to the score.
// Contribution is a signed severity in [-1, 1]; Weight carries the points, so
// the score delta for the factor is Contribution*Weight.
type FactorContribution struct {
	Name         string  `json:"name"`
	Contribution float64 `json:"contribution"`
	Weight       float64 `json:"weight"`
	Confidence   float64 `json:"confidence"`
	Reason       string  `json:"reason"`
}

// BlastRadius is the set of services affected by a change, directly or
// transitively, with a size classification.
type BlastRadius struct {
	Services       []string    `json:"services"`
	Count          int         `json:"count"`
	Classification RadiusClass `json:"classification"`
}

// Assessment is the full auditable result for one change request. It is
// constructed once per request and never mutated afterwards.
type Assessment struct {
	ChangeID    string               `json:"change_id"`
	Score       int                  `json:"score"`
	Level       RiskLevel            `json:"level"`
	Factors     []FactorContribution `json:"factors"`
	BlastRadius BlastRadius          `json:"blast_radius"`
	Mitigations []string             `json:"mitigations"`
	Assumptions []string             `json:"assumptions"`
	MissingInfo []string             `json:"missing_info"`
}
