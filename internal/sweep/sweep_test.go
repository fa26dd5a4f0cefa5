// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sweep

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/smu-check/internal/feasibility"
	"github.com/pdiddy/smu-check/pkg/types"
)

// --- mock searcher ---

type recordingSearcher struct {
	calls []float64
}

func (r *recordingSearcher) Search(rOuter float64, _ types.HardwareParams) feasibility.Result {
	r.calls = append(r.calls, rOuter)
	if len(r.calls)%2 == 0 {
		return feasibility.Result{Verdict: types.Failure(types.ReasonContactResistanceDominates, 3, 4e-8)}
	}
	return feasibility.Result{Verdict: types.Success(2, 2e-8)}
}

func testEngine(t *testing.T, cfg types.SweepConfig) *feasibility.Engine {
	t.Helper()
	e, err := NewEngine(cfg)
	require.NoError(t, err)
	return e
}

// --- LogSpace ---

func TestLogSpace(t *testing.T) {
	got, err := LogSpace(1, 1000, 4)
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i, want := range []float64{1, 10, 100, 1000} {
		assert.InEpsilon(t, want, got[i], 1e-12)
	}
}

func TestLogSpaceConstantRatio(t *testing.T) {
	got, err := LogSpace(100003, 100090, 50)
	require.NoError(t, err)
	ratio := got[1] / got[0]
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i], got[i-1])
		assert.InEpsilon(t, ratio, got[i]/got[i-1], 1e-9)
	}
	assert.InEpsilon(t, 100003.0, got[0], 1e-12)
	assert.InEpsilon(t, 100090.0, got[49], 1e-12)
}

func TestLogSpaceErrors(t *testing.T) {
	tests := []struct {
		name        string
		start, stop float64
		n           int
	}{
		{"zero start", 0, 10, 5},
		{"negative stop", 1, -10, 5},
		{"NaN", math.NaN(), 10, 5},
		{"infinite", 1, math.Inf(1), 5},
		{"one point", 1, 10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LogSpace(tt.start, tt.stop, tt.n)
			assert.ErrorIs(t, err, ErrInvalidRange)
		})
	}
}

func TestOuterRange(t *testing.T) {
	rMin, rMax := OuterRange(50000, 1, 30)
	assert.Equal(t, 100003.0, rMin)
	assert.Equal(t, 100090.0, rMax)
	assert.Equal(t, 30.0, SampleResistance(rMax, 50000))
}

// --- Run ---

func TestRunReferenceSweep(t *testing.T) {
	cfg := types.DefaultSweepConfig()
	points, err := Run(context.Background(), cfg, testEngine(t, cfg))
	require.NoError(t, err)
	require.Len(t, points, types.DefaultSweepPoints)

	for i := 1; i < len(points); i++ {
		assert.Greater(t, points[i].OuterResistance, points[i-1].OuterResistance)
	}
	assert.InEpsilon(t, 100003.0, points[0].OuterResistance, 1e-12)
	assert.InEpsilon(t, 100090.0, points[len(points)-1].OuterResistance, 1e-12)
	assert.InDelta(t, 1.0, points[0].SampleResistance, 1e-6)

	// Only the 1 Ω end is swamped by the contacts.
	assert.Equal(t, types.ReasonContactResistanceDominates, points[0].Verdict.Reason)
	for _, p := range points[1:] {
		assert.True(t, p.Verdict.OK, "R_outer=%v: %s", p.OuterResistance, p.Verdict)
		assert.Empty(t, p.Trace)
	}

	s := Summarize(points)
	assert.Equal(t, 50, s.Total)
	assert.Equal(t, 49, s.Passed)
	assert.Equal(t, 1, s.Counts[types.ReasonContactResistanceDominates])
	assert.Equal(t, points[1].OuterResistance, s.MinPassing)
	assert.Equal(t, points[49].OuterResistance, s.MaxPassing)
}

func TestRunWithTrace(t *testing.T) {
	cfg := types.DefaultSweepConfig()
	cfg.Trace = true
	cfg.Range.Points = 3
	points, err := Run(context.Background(), cfg, testEngine(t, cfg))
	require.NoError(t, err)
	for _, p := range points {
		assert.Len(t, p.Trace, p.Verdict.Iterations)
	}
}

func TestRunOrderAndFailuresContinue(t *testing.T) {
	cfg := types.DefaultSweepConfig()
	cfg.Range.Points = 7
	rec := &recordingSearcher{}
	points, err := Run(context.Background(), cfg, rec)
	require.NoError(t, err)

	require.Len(t, points, 7)
	require.Len(t, rec.calls, 7)
	for i, p := range points {
		assert.Equal(t, rec.calls[i], p.OuterResistance)
	}
	s := Summarize(points)
	assert.Equal(t, 4, s.Passed)
	assert.Equal(t, 3, s.Counts[types.ReasonContactResistanceDominates])
}

func TestRunRepeatable(t *testing.T) {
	cfg := types.DefaultSweepConfig()
	e := testEngine(t, cfg)
	a, err := Run(context.Background(), cfg, e)
	require.NoError(t, err)
	b, err := Run(context.Background(), cfg, e)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRunInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *types.SweepConfig)
	}{
		{"zero contact", func(c *types.SweepConfig) { c.Hardware.ContactResistance = 0 }},
		{"negative gain", func(c *types.SweepConfig) { c.Hardware.Gain = -1 }},
		{"inverted range", func(c *types.SweepConfig) { c.Range.SampleMin, c.Range.SampleMax = 30, 1 }},
		{"single point", func(c *types.SweepConfig) { c.Range.Points = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := types.DefaultSweepConfig()
			tt.mutate(&cfg)
			_, err := Run(context.Background(), cfg, &recordingSearcher{})
			assert.ErrorIs(t, err, types.ErrInvalidParameter)
		})
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := &recordingSearcher{}
	points, err := Run(ctx, types.DefaultSweepConfig(), rec)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, points)
	assert.Empty(t, rec.calls)
}

func TestNewEngineRejectsBadLimits(t *testing.T) {
	cfg := types.DefaultSweepConfig()
	cfg.Limits.StepFactor = 0.5
	_, err := NewEngine(cfg)
	assert.ErrorIs(t, err, types.ErrInvalidParameter)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.Passed)
	assert.Zero(t, s.MinPassing)
	assert.Empty(t, s.Counts)
}
