package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ursalaan/Change-Impact-Forecaster/internal/errors"
)

const sampleSource = `
payments:
  - checkout
  - billing
auth:
  - payments
  - api
api: []
`

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantErr bool
	}{
		{
			name:   "loads a valid dependency source",
			source: sampleSource,
		},
		{
			name:   "loads an empty document",
			source: "",
		},
		{
			name:    "rejects malformed YAML",
			source:  "payments: [checkout",
			wantErr: true,
		},
		{
			name:    "rejects a document that is not a mapping",
			source:  "- payments\n- auth\n",
			wantErr: true,
		},
		{
			name:    "rejects a self-loop",
			source:  "auth:\n  - auth\n",
			wantErr: true,
		},
		{
			name:    "rejects an empty dependent",
			source:  "auth:\n  - \"\"\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Load([]byte(tt.source))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsGraphLoadError(err))
				assert.Nil(t, g)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, g)
		})
	}
}

func TestLoad_AutoRegistersUndeclaredDependents(t *testing.T) {
	g, err := Load([]byte(sampleSource))
	require.NoError(t, err)

	// checkout and billing only appear as edge endpoints
	assert.True(t, g.Has("checkout"))
	assert.True(t, g.Has("billing"))
	assert.Empty(t, g.Dependents("checkout"))
	assert.Empty(t, g.Dependents("billing"))

	assert.Equal(t, 5, g.Len())
	assert.Equal(t, 4, g.EdgeCount())
}

func TestDependents(t *testing.T) {
	g, err := Load([]byte(sampleSource))
	require.NoError(t, err)

	tests := []struct {
		name     string
		service  string
		expected []string
	}{
		{
			name:     "returns sorted dependents",
			service:  "payments",
			expected: []string{"billing", "checkout"},
		},
		{
			name:     "returns dependents for a service with an explicit empty list",
			service:  "api",
			expected: []string{},
		},
		{
			name:     "returns empty slice for an unknown service",
			service:  "ghost",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, g.Dependents(tt.service))
		})
	}
}

func TestDependents_ReturnsCopy(t *testing.T) {
	g, err := Load([]byte(sampleSource))
	require.NoError(t, err)

	deps := g.Dependents("payments")
	deps[0] = "mutated"

	assert.Equal(t, []string{"billing", "checkout"}, g.Dependents("payments"))
}

func TestLoad_DeduplicatesEdges(t *testing.T) {
	g, err := Load([]byte("payments:\n  - checkout\n  - checkout\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"checkout"}, g.Dependents("payments"))
	assert.Equal(t, 1, g.EdgeCount())
}

func TestServices(t *testing.T) {
	g, err := Load([]byte(sampleSource))
	require.NoError(t, err)

	assert.Equal(t, []string{"api", "auth", "billing", "checkout", "payments"}, g.Services())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dependencies.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleSource), 0644))

	g, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5, g.Len())

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.True(t, apperrors.IsGraphLoadError(err))
}

func TestLoad_RoundTrip(t *testing.T) {
	first, err := Load([]byte(sampleSource))
	require.NoError(t, err)

	second, err := Load([]byte(sampleSource))
	require.NoError(t, err)

	assert.Equal(t, first.Services(), second.Services())
	for _, service := range first.Services() {
		assert.Equal(t, first.Dependents(service), second.Dependents(service), "dependents of %s", service)
	}
}
