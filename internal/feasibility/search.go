// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feasibility decides whether a Kelvin measurement of one outer
// resistance is possible with a given hardware configuration.
//
// Search walks an exponentially increasing excitation-current ladder. At each
// step it re-selects a series resistor, derives the control, outer and
// amplified inner voltages, and stops on the first step that is measurable,
// saturates the op amp, or leaves the resistor or DAC range.
package feasibility

import (
	"math"

	"github.com/pdiddy/smu-check/internal/tier"
	"github.com/pdiddy/smu-check/pkg/types"
)

// maxIterations caps the ladder for tables with unreasonable thresholds.
// The default table terminates after at most 18 steps.
const maxIterations = 64

// Engine holds the ladder constants and tier table shared by every search in
// a sweep. An Engine is immutable after construction and safe to reuse.
type Engine struct {
	limits types.Limits
	table  tier.Table
	trace  bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLimits overrides the ladder and DAC constants.
func WithLimits(l types.Limits) Option {
	return func(e *Engine) { e.limits = l }
}

// WithTable overrides the series resistor tiers.
func WithTable(t tier.Table) Option {
	return func(e *Engine) { e.table = t }
}

// WithTrace records the derived values of every ladder step in the result.
func WithTrace(on bool) Option {
	return func(e *Engine) { e.trace = on }
}

// New returns an Engine using the default limits and tier table unless
// overridden. It validates the resulting configuration.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		limits: types.DefaultLimits(),
		table:  tier.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.limits.Validate(); err != nil {
		return nil, err
	}
	if err := e.table.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Limits returns the engine's ladder constants.
func (e *Engine) Limits() types.Limits { return e.limits }

// Table returns a copy of the engine's tier table.
func (e *Engine) Table() tier.Table {
	return append(tier.Table(nil), e.table...)
}

// Result is the outcome of one search.
type Result struct {
	Verdict types.Verdict `json:"verdict" yaml:"verdict"`
	Trace   []types.Step  `json:"trace,omitempty" yaml:"trace,omitempty"`
}

// Search runs the ladder for a single outer resistance using the default
// limits and tier table.
func Search(rOuter float64, hw types.HardwareParams, opts ...Option) (Result, error) {
	e, err := New(opts...)
	if err != nil {
		return Result{}, err
	}
	return e.Search(rOuter, hw), nil
}

// Search runs the ladder for a single outer resistance. It never returns an
// error: every outcome, including inputs that violate the physical model, is
// reported as a verdict.
func (e *Engine) Search(rOuter float64, hw types.HardwareParams) Result {
	var res Result
	if !validInputs(rOuter, hw) {
		res.Verdict = types.Failure(types.ReasonInvalidConfiguration, 0, 0)
		return res
	}

	l := e.limits
	rInner := (rOuter - 2.0*hw.ContactResistance) / 3.0
	current := l.CurrentFloor / l.StepFactor

	for i := 1; i <= maxIterations; i++ {
		current *= l.StepFactor

		t, err := e.table.Select(current)
		if err != nil {
			res.Verdict = types.Failure(types.ReasonResistorRangeExhausted, i, current)
			return res
		}

		step := types.Step{
			Iteration:        i,
			Current:          current,
			SeriesResistance: t.SeriesResistance,
		}
		step.ControlVoltage = current * t.SeriesResistance
		step.DACCode = l.DACCode(step.ControlVoltage)

		if step.ControlVoltage > l.ControlVoltageMax {
			e.record(&res, step)
			res.Verdict = types.Failure(types.ReasonControlVoltageExceeded, i, current)
			return res
		}

		// The DAC output doubles as the voltage measured across the series
		// resistor, so the realized current is derived from it rather than
		// assumed.
		step.RealizedCurrent = step.ControlVoltage / t.SeriesResistance
		step.VOuter = step.RealizedCurrent * rOuter
		step.RInner = rInner
		step.VInner = rInner * step.RealizedCurrent * hw.Gain
		step.VOut = step.VOuter + step.ControlVoltage
		e.record(&res, step)

		if step.VOut > hw.VOutMax {
			reason := types.ReasonContactResistanceDominates
			if i == 1 {
				reason = types.ReasonOverallResistanceTooHigh
			}
			res.Verdict = types.Failure(reason, i, current)
			return res
		}

		if step.VInner >= hw.VMeasureMin {
			res.Verdict = types.Success(i, current)
			return res
		}
	}
	res.Verdict = types.Failure(types.ReasonResistorRangeExhausted, maxIterations, current)
	return res
}

func (e *Engine) record(res *Result, step types.Step) {
	if e.trace {
		res.Trace = append(res.Trace, step)
	}
}

// validInputs rejects configurations outside the physical model, including
// an outer resistance smaller than the two contacts it contains.
func validInputs(rOuter float64, hw types.HardwareParams) bool {
	if hw.Validate() != nil {
		return false
	}
	if math.IsNaN(rOuter) || math.IsInf(rOuter, 0) || rOuter <= 0 {
		return false
	}
	return rOuter >= 2.0*hw.ContactResistance
}
