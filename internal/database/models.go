package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/ursalaan/Change-Impact-Forecaster/internal/types"
)

// AssessmentRecord is one stored assessment, with the full request and result
// kept as JSON for audit purposes.
type AssessmentRecord struct {
	ID               string          `json:"id" db:"id"`
	ChangeID         string          `json:"change_id" db:"change_id"`
	Environment      string          `json:"environment,omitempty" db:"environment"`
	ChangeType       string          `json:"change_type,omitempty" db:"change_type"`
	Score            int             `json:"score" db:"score"`
	Level            types.RiskLevel `json:"level" db:"level"`
	BlastRadiusCount int             `json:"blast_radius_count" db:"blast_radius_count"`
	BlastRadiusClass string          `json:"blast_radius_class" db:"blast_radius_class"`
	RequestJSON      string          `json:"-" db:"request_json"`
	ResultJSON       string          `json:"-" db:"result_json"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

// NewAssessmentRecord builds a record from a request and its assessment
func NewAssessmentRecord(req types.ChangeRequest, result *types.Assessment, requestJSON, resultJSON string) *AssessmentRecord {
	return &AssessmentRecord{
		ID:               uuid.New().String(),
		ChangeID:         result.ChangeID,
		Environment:      string(req.Environment),
		ChangeType:       string(req.ChangeType),
		Score:            result.Score,
		Level:            result.Level,
		BlastRadiusCount: result.BlastRadius.Count,
		BlastRadiusClass: string(result.BlastRadius.Classification),
		RequestJSON:      requestJSON,
		ResultJSON:       resultJSON,
		CreatedAt:        time.Now(),
	}
}
