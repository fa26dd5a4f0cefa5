// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/smu-check/internal/report"
	"github.com/pdiddy/smu-check/pkg/types"
)

// resetConfig gives each test a clean viper with defaults and env mapping.
func resetConfig(t *testing.T) {
	t.Helper()
	logger = zap.NewNop()
	viper.Reset()
	setDefaults()
	configureEnv()
	t.Cleanup(viper.Reset)
}

// execute runs fn against cmd with the given flags and returns stdout.
func execute(t *testing.T, cmd *cobra.Command, fn func(*cobra.Command, []string) error, flags map[string]string, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	t.Cleanup(func() {
		cmd.SetOut(nil)
		for name := range flags {
			f := cmd.Flags().Lookup(name)
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
	for name, value := range flags {
		require.NoError(t, cmd.Flags().Set(name, value))
	}
	err := fn(cmd, args)
	return buf.String(), err
}

func TestSweepTableDefaults(t *testing.T) {
	resetConfig(t)
	out, err := execute(t, sweepCmd, runSweep, nil)
	require.NoError(t, err)

	assert.Equal(t, 49, strings.Count(out, "PASS"))
	assert.Equal(t, 1, strings.Count(out, "contact_resistance_dominates: "))
	assert.Contains(t, out, "49/50 passed")
	assert.NotContains(t, out, "\x1b[", "buffers are never colored")
}

func TestSweepJSON(t *testing.T) {
	resetConfig(t)
	out, err := execute(t, sweepCmd, runSweep, map[string]string{
		"format": "json",
		"points": "5",
		"gain":   "100",
	})
	require.NoError(t, err)

	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.Len(t, rep.Points, 5)
	assert.Equal(t, 100.0, rep.Hardware.Gain)
	assert.Equal(t, types.DefaultLimits(), rep.Limits)
	require.NotNil(t, rep.Range)
	assert.Equal(t, 5, rep.Range.Points)
	for i := 1; i < len(rep.Points); i++ {
		assert.Greater(t, rep.Points[i].OuterResistance, rep.Points[i-1].OuterResistance)
	}
}

func TestSweepYAMLWithTrace(t *testing.T) {
	resetConfig(t)
	out, err := execute(t, sweepCmd, runSweep, map[string]string{
		"format": "yaml",
		"points": "2",
		"trace":  "true",
	})
	require.NoError(t, err)

	var rep report.Report
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	require.Len(t, rep.Points, 2)
	for _, p := range rep.Points {
		assert.Len(t, p.Trace, p.Verdict.Iterations)
	}
}

func TestSweepEnvOverride(t *testing.T) {
	resetConfig(t)
	t.Setenv("SMU_CHECK_SWEEP_HARDWARE_VOUT_MAX", "0.05")
	out, err := execute(t, sweepCmd, runSweep, map[string]string{"format": "json", "points": "3"})
	require.NoError(t, err)

	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 0.05, rep.Hardware.VOutMax)
	assert.Equal(t, 3, rep.Summary.Counts[types.ReasonOverallResistanceTooHigh])
}

func TestSweepConfigFile(t *testing.T) {
	resetConfig(t)
	path := filepath.Join(t.TempDir(), "smu-check.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`sweep:
  hardware:
    contact_resistance: 100
    gain: 10
  range:
    sample_min: 10
    sample_max: 300
    points: 4
output:
  format: json
`), 0o644))
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	out, err := execute(t, sweepCmd, runSweep, nil)
	require.NoError(t, err)

	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 100.0, rep.Hardware.ContactResistance)
	require.Len(t, rep.Points, 4)
	assert.InDelta(t, 230.0, rep.Points[0].OuterResistance, 1e-9)
	assert.InDelta(t, 1100.0, rep.Points[3].OuterResistance, 1e-9)
}

func TestSweepFlagBeatsConfigFile(t *testing.T) {
	resetConfig(t)
	path := filepath.Join(t.TempDir(), "smu-check.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sweep:\n  hardware:\n    gain: 10\n"), 0o644))
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	out, err := execute(t, sweepCmd, runSweep, map[string]string{"gain": "200", "format": "json", "points": "2"})
	require.NoError(t, err)

	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 200.0, rep.Hardware.Gain)
}

func TestSweepErrors(t *testing.T) {
	tests := []struct {
		name   string
		flags  map[string]string
		errMsg string
	}{
		{"bad format", map[string]string{"format": "csv"}, `unsupported format "csv"`},
		{"zero gain", map[string]string{"gain": "0"}, "gain must be a positive number"},
		{"inverted range", map[string]string{"sample-min": "30", "sample-max": "1"}, "must exceed sample min"},
		{"one point", map[string]string{"points": "1"}, "points must be at least 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetConfig(t)
			_, err := execute(t, sweepCmd, runSweep, tt.flags)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSweepBadLimitsFromConfig(t *testing.T) {
	resetConfig(t)
	viper.Set(keyStepFactor, 1.0)
	_, err := execute(t, sweepCmd, runSweep, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidParameter)
}

func TestSearchGolden(t *testing.T) {
	resetConfig(t)
	out, err := execute(t, searchCmd, runSearch, map[string]string{"format": "json"}, "100003")
	require.NoError(t, err)

	var rep report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.Len(t, rep.Points, 1)
	v := rep.Points[0].Verdict
	assert.Equal(t, types.ReasonContactResistanceDominates, v.Reason)
	assert.Equal(t, 17, v.Iterations)
	assert.Nil(t, rep.Range)
}

func TestSearchTraceTable(t *testing.T) {
	resetConfig(t)
	out, err := execute(t, searchCmd, runSearch, map[string]string{"trace": "true"}, "100090")
	require.NoError(t, err)
	assert.Contains(t, out, "Solving for R_outer = 100090")
	assert.Contains(t, out, "step 12")
	assert.NotContains(t, out, "step 13")
	assert.Contains(t, out, "PASS")
}

func TestSearchInvalidConfiguration(t *testing.T) {
	resetConfig(t)
	out, err := execute(t, searchCmd, runSearch, nil, "1000")
	require.NoError(t, err)
	assert.Contains(t, out, "invalid_configuration")
}

func TestSearchBadArgument(t *testing.T) {
	resetConfig(t)
	_, err := execute(t, searchCmd, runSearch, nil, "ten-ohms")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing outer resistance")
}

func TestTiersAndVersion(t *testing.T) {
	var buf bytes.Buffer
	tiersCmd.SetOut(&buf)
	defer tiersCmd.SetOut(nil)
	require.NoError(t, tiersCmd.RunE(tiersCmd, nil))
	assert.Contains(t, buf.String(), "100 nA")
	assert.Contains(t, buf.String(), "1 kohm")

	buf.Reset()
	versionCmd.SetOut(&buf)
	defer versionCmd.SetOut(nil)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "smu-check dev\n", buf.String())
}
