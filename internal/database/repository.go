package database

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ursalaan/Change-Impact-Forecaster/internal/types"
)

// Repository handles assessment history operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// SaveAssessment stores one completed assessment
func (r *Repository) SaveAssessment(req types.ChangeRequest, result *types.Assessment) (*AssessmentRecord, error) {
	requestJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize request: %w", err)
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize assessment: %w", err)
	}

	record := NewAssessmentRecord(req, result, string(requestJSON), string(resultJSON))

	_, err = r.db.Exec(`
		INSERT INTO assessments (id, change_id, environment, change_type, score, level,
			blast_radius_count, blast_radius_class, request_json, result_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.ChangeID, record.Environment, record.ChangeType, record.Score,
		record.Level, record.BlastRadiusCount, record.BlastRadiusClass,
		record.RequestJSON, record.ResultJSON, record.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to save assessment: %w", err)
	}

	return record, nil
}

// ListRecent returns the most recent assessments, newest first
func (r *Repository) ListRecent(limit int) ([]AssessmentRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := r.db.Query(`
		SELECT id, change_id, environment, change_type, score, level,
			blast_radius_count, blast_radius_class, request_json, result_json, created_at
		FROM assessments
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	records := []AssessmentRecord{}
	for rows.Next() {
		var rec AssessmentRecord
		if err := rows.Scan(&rec.ID, &rec.ChangeID, &rec.Environment, &rec.ChangeType,
			&rec.Score, &rec.Level, &rec.BlastRadiusCount, &rec.BlastRadiusClass,
			&rec.RequestJSON, &rec.ResultJSON, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assessments: %w", err)
	}

	return records, nil
}

// GetByID returns one stored assessment together with its full result
func (r *Repository) GetByID(id string) (*AssessmentRecord, *types.Assessment, error) {
	var rec AssessmentRecord
	err := r.db.QueryRow(`
		SELECT id, change_id, environment, change_type, score, level,
			blast_radius_count, blast_radius_class, request_json, result_json, created_at
		FROM assessments
		WHERE id = ?
	`, id).Scan(&rec.ID, &rec.ChangeID, &rec.Environment, &rec.ChangeType,
		&rec.Score, &rec.Level, &rec.BlastRadiusCount, &rec.BlastRadiusClass,
		&rec.RequestJSON, &rec.ResultJSON, &rec.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query assessment: %w", err)
	}

	var result types.Assessment
	if err := json.Unmarshal([]byte(rec.ResultJSON), &result); err != nil {
		return nil, nil, fmt.Errorf("failed to deserialize assessment: %w", err)
	}

	return &rec, &result, nil
}

// CountByLevel returns how many stored assessments landed in each risk level
func (r *Repository) CountByLevel() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT level, COUNT(*) FROM assessments GROUP BY level`)
	if err != nil {
		return nil, fmt.Errorf("failed to count assessments: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var level string
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[level] = count
	}

	return counts, rows.Err()
}
