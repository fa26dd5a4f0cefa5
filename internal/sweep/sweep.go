// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sweep runs the feasibility search across a logarithmic range of
// outer resistances and collects one verdict per resistance.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/pdiddy/smu-check/internal/feasibility"
	"github.com/pdiddy/smu-check/pkg/types"
)

// ErrInvalidRange is returned (wrapped) when a range cannot be log-spaced.
var ErrInvalidRange = errors.New("invalid sweep range")

// Searcher decides a single outer resistance. *feasibility.Engine
// implements it.
type Searcher interface {
	Search(rOuter float64, hw types.HardwareParams) feasibility.Result
}

// NewEngine builds a search engine from the limits and trace setting of cfg.
func NewEngine(cfg types.SweepConfig) (*feasibility.Engine, error) {
	return feasibility.New(
		feasibility.WithLimits(cfg.EffectiveLimits()),
		feasibility.WithTrace(cfg.Trace),
	)
}

// OuterRange converts per-segment sample resistances into the outer
// resistances seen by the source: two contacts plus three sample segments.
func OuterRange(rContact, sampleMin, sampleMax float64) (rMin, rMax float64) {
	return 2*rContact + 3*sampleMin, 2*rContact + 3*sampleMax
}

// SampleResistance inverts OuterRange for one outer resistance.
func SampleResistance(rOuter, rContact float64) float64 {
	return (rOuter - 2*rContact) / 3
}

// LogSpace returns n values from start to stop inclusive with a constant
// ratio between neighbours. The last value is exactly 10^log10(stop).
func LogSpace(start, stop float64, n int) ([]float64, error) {
	if !(start > 0) || !(stop > 0) || math.IsInf(start, 0) || math.IsInf(stop, 0) {
		return nil, fmt.Errorf("%w: bounds must be positive and finite, got [%g, %g]", ErrInvalidRange, start, stop)
	}
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, got %d", ErrInvalidRange, n)
	}

	lo, hi := math.Log10(start), math.Log10(stop)
	step := (hi - lo) / float64(n-1)
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Pow(10, lo+float64(i)*step)
	}
	out[n-1] = math.Pow(10, hi)
	return out, nil
}

// Run validates cfg, generates cfg.Range.Points outer resistances in
// increasing order and searches each one with s. A failed verdict never
// stops the sweep; only configuration errors and ctx cancellation do.
func Run(ctx context.Context, cfg types.SweepConfig, s Searcher) ([]types.SweepPoint, error) {
	if err := cfg.Hardware.Validate(); err != nil {
		return nil, fmt.Errorf("hardware: %w", err)
	}
	if err := cfg.Range.Validate(); err != nil {
		return nil, fmt.Errorf("range: %w", err)
	}

	rc := cfg.Hardware.ContactResistance
	rMin, rMax := OuterRange(rc, cfg.Range.SampleMin, cfg.Range.SampleMax)
	outers, err := LogSpace(rMin, rMax, cfg.Range.Points)
	if err != nil {
		return nil, err
	}

	points := make([]types.SweepPoint, 0, len(outers))
	for _, r := range outers {
		if err := ctx.Err(); err != nil {
			return points, err
		}
		res := s.Search(r, cfg.Hardware)
		points = append(points, types.SweepPoint{
			OuterResistance:  r,
			SampleResistance: SampleResistance(r, rc),
			Verdict:          res.Verdict,
			Trace:            res.Trace,
		})
	}
	return points, nil
}

// Summary aggregates the verdicts of a sweep.
type Summary struct {
	Total  int                  `json:"total" yaml:"total"`
	Passed int                  `json:"passed" yaml:"passed"`
	Counts map[types.Reason]int `json:"counts" yaml:"counts"`

	// MinPassing and MaxPassing bound the outer resistances that passed.
	// Both are zero when nothing passed.
	MinPassing float64 `json:"min_passing,omitempty" yaml:"min_passing,omitempty"`
	MaxPassing float64 `json:"max_passing,omitempty" yaml:"max_passing,omitempty"`
}

// Summarize counts verdicts by reason and finds the passing range.
func Summarize(points []types.SweepPoint) Summary {
	s := Summary{Total: len(points), Counts: make(map[types.Reason]int)}
	for _, p := range points {
		s.Counts[p.Verdict.Reason]++
		if !p.Verdict.OK {
			continue
		}
		if s.Passed == 0 || p.OuterResistance < s.MinPassing {
			s.MinPassing = p.OuterResistance
		}
		if p.OuterResistance > s.MaxPassing {
			s.MaxPassing = p.OuterResistance
		}
		s.Passed++
	}
	return s
}
