package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes a scenario file next to a copy of the bracket input.
func writeScenario(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	data, err := os.ReadFile("testdata/inputs/bracket.yaml")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bracket.yaml"), data, 0o644))

	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/bracket.yaml")
	require.NoError(t, err)

	assert.Equal(t, "bracket", s.Name)
	assert.Equal(t, filepath.Join("testdata", "inputs", "bracket.yaml"), s.Input)
	assert.Equal(t, []uint64{1, 2, 3, 42, 1337}, s.ShuffleSeeds)
	require.NotEmpty(t, s.Assertions)
	assert.Equal(t, AssertIsValid, s.Assertions[0].Type)
	require.NotNil(t, s.Assertions[0].Valid)
	assert.True(t, *s.Assertions[0].Valid)
}

func TestLoadScenarios(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)

	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"bracket", "dangling"}, names)
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing name",
			body:    "description: d\ninput: bracket.yaml\nassertions: [{type: is_valid, valid: true}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			body:    "name: n\ninput: bracket.yaml\nassertions: [{type: is_valid, valid: true}]\n",
			wantErr: "description is required",
		},
		{
			name:    "missing input",
			body:    "name: n\ndescription: d\nassertions: [{type: is_valid, valid: true}]\n",
			wantErr: "input is required",
		},
		{
			name:    "input not found",
			body:    "name: n\ndescription: d\ninput: nope.yaml\nassertions: [{type: is_valid, valid: true}]\n",
			wantErr: "input file not found",
		},
		{
			name:    "no assertions",
			body:    "name: n\ndescription: d\ninput: bracket.yaml\n",
			wantErr: "assertions list is required",
		},
		{
			name:    "unknown field",
			body:    "name: n\ndescription: d\ninput: bracket.yaml\nassertion: []\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "unknown assertion type",
			body:    "name: n\ndescription: d\ninput: bracket.yaml\nassertions: [{type: magic}]\n",
			wantErr: `unknown assertion type "magic"`,
		},
		{
			name:    "is_valid without valid",
			body:    "name: n\ndescription: d\ninput: bracket.yaml\nassertions: [{type: is_valid}]\n",
			wantErr: "valid is required",
		},
		{
			name:    "issue without code",
			body:    "name: n\ndescription: d\ninput: bracket.yaml\nassertions: [{type: issue}]\n",
			wantErr: "code is required",
		},
		{
			name:    "bad severity",
			body:    "name: n\ndescription: d\ninput: bracket.yaml\nassertions: [{type: issue_count, severity: fatal}]\n",
			wantErr: "severity must be error or warning",
		},
		{
			name:    "attr without value",
			body:    "name: n\ndescription: d\ninput: bracket.yaml\nassertions: [{type: attr, node: a, key: k}]\n",
			wantErr: "value is required",
		},
		{
			name:    "node_order without ids",
			body:    "name: n\ndescription: d\ninput: bracket.yaml\nassertions: [{type: node_order}]\n",
			wantErr: "ids list is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/does-not-exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}
