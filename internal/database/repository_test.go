package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ursalaan/Change-Impact-Forecaster/internal/types"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(db)
}

func sampleAssessment(changeID string, score int, level types.RiskLevel) (types.ChangeRequest, *types.Assessment) {
	req := types.ChangeRequest{
		ChangeID:        changeID,
		Environment:     types.EnvProduction,
		ChangeType:      types.ChangeSchema,
		ServicesTouched: []string{"payments"},
	}
	result := &types.Assessment{
		ChangeID: changeID,
		Score:    score,
		Level:    level,
		Factors: []types.FactorContribution{
			{Name: "production-environment", Contribution: 1.0, Weight: 30, Confidence: 1.0, Reason: "production"},
		},
		BlastRadius: types.BlastRadius{
			Services:       []string{"billing", "checkout", "payments"},
			Count:          3,
			Classification: types.RadiusModerate,
		},
		Mitigations: []string{"Make sure rollback steps are written and tested before starting."},
		Assumptions: []string{"blast radius is estimated from direct and transitive dependents"},
		MissingInfo: []string{},
	}
	return req, result
}

func TestSaveAndGetAssessment(t *testing.T) {
	repo := newTestRepository(t)

	req, result := sampleAssessment("chg-1", 75, types.LevelHigh)
	record, err := repo.SaveAssessment(req, result)
	require.NoError(t, err)
	require.NotEmpty(t, record.ID)
	assert.Equal(t, "chg-1", record.ChangeID)
	assert.Equal(t, 75, record.Score)
	assert.Equal(t, types.LevelHigh, record.Level)
	assert.Equal(t, 3, record.BlastRadiusCount)
	assert.Equal(t, "moderate", record.BlastRadiusClass)

	stored, storedResult, err := repo.GetByID(record.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.NotNil(t, storedResult)
	assert.Equal(t, record.ID, stored.ID)
	assert.Equal(t, result.Score, storedResult.Score)
	assert.Equal(t, result.Factors, storedResult.Factors)
	assert.Equal(t, result.BlastRadius, storedResult.BlastRadius)
}

func TestGetByID_NotFound(t *testing.T) {
	repo := newTestRepository(t)

	record, result, err := repo.GetByID("does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.Nil(t, result)
}

func TestListRecent(t *testing.T) {
	repo := newTestRepository(t)

	for i, id := range []string{"chg-a", "chg-b", "chg-c"} {
		req, result := sampleAssessment(id, 10*i, types.LevelLow)
		_, err := repo.SaveAssessment(req, result)
		require.NoError(t, err)
	}

	records, err := repo.ListRecent(10)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	limited, err := repo.ListRecent(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	// out-of-range limits fall back to the default
	defaulted, err := repo.ListRecent(0)
	require.NoError(t, err)
	assert.Len(t, defaulted, 3)
}

func TestCountByLevel(t *testing.T) {
	repo := newTestRepository(t)

	saves := []struct {
		id    string
		score int
		level types.RiskLevel
	}{
		{"chg-1", 80, types.LevelHigh},
		{"chg-2", 85, types.LevelHigh},
		{"chg-3", 20, types.LevelLow},
	}
	for _, s := range saves {
		req, result := sampleAssessment(s.id, s.score, s.level)
		_, err := repo.SaveAssessment(req, result)
		require.NoError(t, err)
	}

	counts, err := repo.CountByLevel()
	require.NoError(t, err)
	assert.Equal(t, 2, counts["high"])
	assert.Equal(t, 1, counts["low"])
}
