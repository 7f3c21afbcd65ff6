package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/topoconst/internal/result"
)

const fixtureDefinitions = `
constant "c_3" {
  symbol             = "c3"
  name               = "Topological fixed point"
  formula            = "1 / (8 * pi)"
  experimental_value = 0.0397887
  accuracy_target    = 0.001
}

constant "phi_0" {
  symbol  = "φ0"
  name    = "Fundamental VEV"
  formula = "0.053171"
}

constant "eta_b" {
  symbol             = "η_B"
  name               = "Baryon asymmetry"
  formula            = "4 * c_3^7"
  dependencies       = ["c_3"]
  experimental_value = 6.12e-10
  accuracy_target    = 0.01
}

constant "broken" {
  symbol       = "x"
  name         = "Unresolvable"
  formula      = "phi_0 * mystery"
  dependencies = ["phi_0"]
}
`

func fixture(t *testing.T) (defsPath, resultsPath string) {
	t.Helper()
	defsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(defsDir, "core.hcl"), []byte(fixtureDefinitions), 0o644))
	return defsDir, t.TempDir()
}

func runPass(t *testing.T, cfg Config) (*bytes.Buffer, []result.Record) {
	t.Helper()
	cfg.LogFormat = "text"
	cfg.LogLevel = "error"
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	conf, err := NewConfig(cfg)
	require.NoError(t, err)

	var out bytes.Buffer
	a, err := NewApp(&out, conf)
	require.NoError(t, err)
	require.NoError(t, a.Run(context.Background()))

	store, err := result.NewFileStore(conf.ResultsPath)
	require.NoError(t, err)
	records, err := store.List()
	require.NoError(t, err)
	return &out, records
}

func TestRun_FullPass(t *testing.T) {
	defs, results := fixture(t)
	out, records := runPass(t, Config{DefinitionsPath: defs, ResultsPath: results})

	require.Len(t, records, 4)
	byID := map[string]result.Record{}
	for _, rec := range records {
		byID[rec.ConstantID] = rec
	}

	c3 := byID["c_3"]
	assert.Equal(t, result.StatusCompleted, c3.Status)
	require.NotNil(t, c3.CalculatedValue)
	assert.InDelta(t, 0.0397887, *c3.CalculatedValue, 1e-6)
	assert.True(t, c3.AccuracyMet)

	// 4*c_3^7 lands about 3% off the measured asymmetry; with a 1% target
	// that is a warning, not an error.
	etaB := byID["eta_b"]
	assert.Equal(t, result.StatusWarning, etaB.Status)
	require.NotNil(t, etaB.RelativeError)
	assert.Greater(t, *etaB.RelativeError, 0.01)
	assert.Less(t, *etaB.RelativeError, 0.05)

	broken := byID["broken"]
	assert.Equal(t, result.StatusError, broken.Status)
	assert.Nil(t, broken.CalculatedValue)
	assert.Contains(t, broken.Diagnostic, "mystery")

	// A failing definition must not poison unrelated ones.
	assert.Equal(t, result.StatusWarning, byID["phi_0"].Status)

	assert.Contains(t, out.String(), "failed (1):")
	assert.Contains(t, out.String(), "accuracy summary (4 constants)")
}

func TestRun_RecordsShareOnePassID(t *testing.T) {
	defs, results := fixture(t)
	_, records := runPass(t, Config{DefinitionsPath: defs, ResultsPath: results})

	require.NotEmpty(t, records)
	passID := records[0].PassID
	require.NotEmpty(t, passID)
	for _, rec := range records {
		assert.Equal(t, passID, rec.PassID)
	}
}

func TestRun_TargetRestrictsPass(t *testing.T) {
	defs, results := fixture(t)
	_, records := runPass(t, Config{DefinitionsPath: defs, ResultsPath: results, Target: "c_3"})

	require.Len(t, records, 1)
	assert.Equal(t, "c_3", records[0].ConstantID)
	assert.Equal(t, result.StatusCompleted, records[0].Status)
}

func TestRun_Idempotent(t *testing.T) {
	defs, resultsA := fixture(t)
	resultsB := t.TempDir()

	_, first := runPass(t, Config{DefinitionsPath: defs, ResultsPath: resultsA})
	_, second := runPass(t, Config{DefinitionsPath: defs, ResultsPath: resultsB})

	diff := cmp.Diff(first, second, cmpopts.IgnoreFields(result.Record{}, "Timestamp", "PassID"))
	assert.Empty(t, diff)
}

func TestRun_RerunReplacesRecords(t *testing.T) {
	defs, results := fixture(t)
	runPass(t, Config{DefinitionsPath: defs, ResultsPath: results})
	_, records := runPass(t, Config{DefinitionsPath: defs, ResultsPath: results})

	// Still one record per constant, all from the second pass.
	require.Len(t, records, 4)
	passID := records[0].PassID
	for _, rec := range records {
		assert.Equal(t, passID, rec.PassID)
	}
}

func TestRun_UnknownDependencyDoesNotAbortPass(t *testing.T) {
	defsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(defsDir, "core.hcl"), []byte(`
constant "c_3" {
  symbol             = "c3"
  name               = "Topological fixed point"
  formula            = "1 / (8 * pi)"
  experimental_value = 0.0397887
  accuracy_target    = 0.001
}

constant "orphan" {
  symbol       = "x"
  name         = "Depends on a ghost"
  formula      = "ghost * 2"
  dependencies = ["ghost"]
}

constant "child" {
  symbol       = "y"
  name         = "Downstream of the orphan"
  formula      = "orphan + 1"
  dependencies = ["orphan"]
}
`), 0o644))

	_, records := runPass(t, Config{DefinitionsPath: defsDir, ResultsPath: t.TempDir()})

	// The missing dependency poisons its subtree only; the pass still
	// completes and every definition gets a record.
	require.Len(t, records, 3)
	byID := map[string]result.Record{}
	for _, rec := range records {
		byID[rec.ConstantID] = rec
	}

	assert.Equal(t, result.StatusCompleted, byID["c_3"].Status)
	require.NotNil(t, byID["c_3"].CalculatedValue)

	assert.Equal(t, result.StatusError, byID["orphan"].Status)
	assert.Contains(t, byID["orphan"].Diagnostic, "ghost")

	assert.Equal(t, result.StatusError, byID["child"].Status)
	assert.Contains(t, byID["child"].Diagnostic, "orphan")
}

func TestNewApp_BadDefinitionsPath(t *testing.T) {
	conf, err := NewConfig(Config{
		DefinitionsPath: filepath.Join(t.TempDir(), "does-not-exist"),
		LogFormat:       "text",
		LogLevel:        "error",
	})
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = NewApp(&out, conf)
	assert.Error(t, err)
}

func TestNewConfig(t *testing.T) {
	_, err := NewConfig(Config{})
	assert.Error(t, err)

	cfg, err := NewConfig(Config{DefinitionsPath: "defs"})
	require.NoError(t, err)
	assert.Equal(t, "results", cfg.ResultsPath)
}
