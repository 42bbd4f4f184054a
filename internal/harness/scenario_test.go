package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.cue"), []byte("// placeholder"), 0644))

	path := writeScenario(t, dir, `
name: moon_in_rohini
description: "Balance from the Moon"
system: VIMSOTTARI
systems:
  - custom.cue
reference: "45:20"
epoch: "1990-03-14T06:30:00Z"
balance:
  ruler: Moon
  consumed: "2/5"
steps:
  - name: birth
    offset: "0"
    depth: 1
    rulers: [Moon, Jupiter]
  - name: star
    longitude: "100.5"
    depth: 0
    rulers: [Saturn]
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "moon_in_rohini", scenario.Name)
	assert.Equal(t, "VIMSOTTARI", scenario.System)
	assert.Equal(t, []string{filepath.Join(dir, "custom.cue")}, scenario.Systems)
	require.NotNil(t, scenario.Balance)
	assert.Equal(t, "2/5", scenario.Balance.Consumed)
	require.Len(t, scenario.Steps, 2)
	assert.Equal(t, []string{"Moon", "Jupiter"}, scenario.Steps[0].Rulers)
	assert.Equal(t, "100.5", scenario.Steps[1].Longitude)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, t.TempDir(), `
name: typo
description: "misspelled steps"
system: VIMSOTTARI
step:
  - name: birth
    offset: "0"
    rulers: [Moon]
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "description: d\nsystem: VIMSOTTARI\nexpect_error: UNKNOWN_SYSTEM\n",
			wantErr: "name is required",
		},
		{
			name:    "missing system",
			content: "name: n\ndescription: d\nexpect_error: UNKNOWN_SYSTEM\n",
			wantErr: "system is required",
		},
		{
			name:    "nothing to check",
			content: "name: n\ndescription: d\nsystem: VIMSOTTARI\n",
			wantErr: "at least one step",
		},
		{
			name:    "bad reference",
			content: "name: n\ndescription: d\nsystem: VIMSOTTARI\nreference: \"10:75\"\nexpect_error: X\n",
			wantErr: "reference",
		},
		{
			name:    "bad epoch",
			content: "name: n\ndescription: d\nsystem: VIMSOTTARI\nepoch: tomorrow\nexpect_error: X\n",
			wantErr: "epoch",
		},
		{
			name:    "missing system file",
			content: "name: n\ndescription: d\nsystem: X\nsystems: [nope.cue]\nexpect_error: X\n",
			wantErr: "system file not found",
		},
		{
			name:    "bad balance fraction",
			content: "name: n\ndescription: d\nsystem: X\nbalance: {ruler: Moon, consumed: \"1/0\"}\nexpect_error: X\n",
			wantErr: "balance: consumed",
		},
		{
			name:    "step with both points",
			content: "name: n\ndescription: d\nsystem: X\nsteps:\n  - {name: s, offset: \"1\", longitude: \"1\", rulers: [A]}\n",
			wantErr: "exactly one of offset or longitude",
		},
		{
			name:    "step without expectation",
			content: "name: n\ndescription: d\nsystem: X\nsteps:\n  - {name: s, offset: \"1\"}\n",
			wantErr: "rulers or error is required",
		},
		{
			name:    "negative timeline depth",
			content: "name: n\ndescription: d\nsystem: X\ntimeline: {depth: -1}\n",
			wantErr: "timeline: depth",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, t.TempDir(), tt.content)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
