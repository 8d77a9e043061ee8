// pkg/registry/registry_test.go
package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRegistry = `{
  "version": "1.0.0",
  "activities": [
    {"taskType": "rank-annotated-products", "description": "ranks", "errorCodes": ["INVALID_MATCH_RATING"]},
    {"taskType": "load-style-profile"}
  ]
}`

func TestParse(t *testing.T) {
	reg, err := Parse([]byte(sampleRegistry))
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", reg.Version)
	require.Len(t, reg.Activities, 2)

	a, ok := reg.Find("rank-annotated-products")
	require.True(t, ok)
	assert.Equal(t, []string{"INVALID_MATCH_RATING"}, a.ErrorCodes)

	_, ok = reg.Find("send-notification")
	assert.False(t, ok)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not json", doc: `{`},
		{name: "missing task type", doc: `{"activities": [{"description": "a"}]}`},
		{name: "duplicate task type", doc: `{"activities": [{"taskType": "x"}, {"taskType": "x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestCheck(t *testing.T) {
	reg, err := Parse([]byte(sampleRegistry))
	require.NoError(t, err)

	assert.NoError(t, reg.Check("rank-annotated-products", "load-style-profile"))
	assert.ErrorIs(t, reg.Check("load-style-profile", "save-style-profile"), ErrUnknownTaskType)
}

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleRegistry), 0o644))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Len(t, reg.Activities, 2)

	_, err = LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestShippedRegistry(t *testing.T) {
	reg, err := LoadRegistry("../../configs/activity-registry.json")
	require.NoError(t, err)
	assert.NoError(t, reg.Check(
		"rank-annotated-products",
		"personalize-catalog",
		"load-style-profile",
		"save-style-profile",
	))

	for _, taskType := range []string{"load-style-profile", "save-style-profile"} {
		a, ok := reg.Find(taskType)
		require.True(t, ok)
		assert.Contains(t, a.ErrorCodes, "DATABASE_CONNECTION_FAILED", taskType)
	}
}
