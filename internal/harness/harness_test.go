package harness

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	scenario, err := LoadScenario("testdata/counter.yaml")
	require.NoError(t, err)

	assert.Equal(t, "counter-codec", scenario.Name)
	assert.Equal(t, filepath.Join("testdata", "counter_schema.cue"), scenario.Schema)
	assert.Len(t, scenario.Cases, 6)
}

func TestLoadScenarioValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing name", "schema: s.cue\ncases: [{name: c, decode: \"00\", record: R}]", "name is required"},
		{"missing schema", "name: x\ncases: [{name: c, decode: \"00\", record: R}]", "schema is required"},
		{"no cases", "name: x\nschema: s.cue\ncases: []", "at least one case"},
		{"no operation", "name: x\nschema: s.cue\ncases: [{name: c}]", "exactly one of"},
		{"two operations", "name: x\nschema: s.cue\ncases: [{name: c, decode: \"00\", identify: \"00\", record: R}]", "exactly one of"},
		{"decode without record", "name: x\nschema: s.cue\ncases: [{name: c, decode: \"00\"}]", "require a record"},
		{"unknown category", "name: x\nschema: s.cue\ncases: [{name: c, record: R, decode: \"00\", error: explosion}]", "unknown error category"},
		{"unknown field", "name: x\nschema: s.cue\nbogus: 1\ncases: [{name: c, decode: \"00\", record: R}]", "bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "scenario.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRunCounterScenario(t *testing.T) {
	scenario, err := LoadScenario("testdata/counter.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	require.Len(t, result.Cases, 6)

	encode := result.Cases[0]
	assert.Equal(t, "0102030407000000", encode.Encoded)
	assert.JSONEq(t, `{"count":7}`, string(encode.Decoded))

	identify := result.Cases[2]
	assert.Equal(t, "Counter", identify.Record)
	assert.JSONEq(t, `{"count":7}`, string(identify.Decoded))

	assert.Equal(t, CategoryDiscriminatorMismatch, result.Cases[3].Error)
	assert.Equal(t, CategoryRecordNotFound, result.Cases[4].Error)
	assert.Equal(t, CategoryDecode, result.Cases[5].Error)
}

func TestRunDetectsEncodingMismatch(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.cue")
	data, err := os.ReadFile("testdata/counter_schema.cue")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(schemaPath, data, 0o644))

	scenarioPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(scenarioPath, []byte(`
name: bad
schema: schema.cue
cases:
  - name: wrong-bytes
    record: Counter
    value: {count: 7}
    bytes: "ffffffffffffffff"
`), 0o644))

	scenario, err := LoadScenario(scenarioPath)
	require.NoError(t, err)

	_, err = Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encoding mismatch")
}

func TestRunDetectsUnexpectedSuccess(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile("testdata/counter_schema.cue")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.cue"), data, 0o644))

	scenarioPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(scenarioPath, []byte(`
name: bad
schema: schema.cue
cases:
  - name: should-fail
    record: Counter
    decode: "0102030407000000"
    error: decode
`), 0o644))

	scenario, err := LoadScenario(scenarioPath)
	require.NoError(t, err)

	_, err = Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected decode error")
}

func TestResultMarshalIndentStable(t *testing.T) {
	scenario, err := LoadScenario("testdata/counter.yaml")
	require.NoError(t, err)
	result, err := Run(scenario)
	require.NoError(t, err)

	first, err := result.MarshalIndent()
	require.NoError(t, err)
	second, err := result.MarshalIndent()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.True(t, json.Valid(first))
}

func TestGoldenScenarios(t *testing.T) {
	for _, name := range []string{"counter", "player"} {
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(filepath.Join("testdata", name+".yaml"))
			require.NoError(t, err)
			require.NoError(t, RunWithGolden(t, scenario))
		})
	}
}
