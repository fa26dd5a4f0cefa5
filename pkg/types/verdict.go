// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Reason tags the terminal outcome of one search.
type Reason string

const (
	ReasonSuccess                    Reason = "success"
	ReasonResistorRangeExhausted     Reason = "resistor_range_exhausted"
	ReasonControlVoltageExceeded     Reason = "control_voltage_exceeded"
	ReasonOverallResistanceTooHigh   Reason = "overall_resistance_too_high"
	ReasonContactResistanceDominates Reason = "contact_resistance_dominates"
	ReasonInvalidConfiguration       Reason = "invalid_configuration"
)

// Reasons lists every reason in report order.
var Reasons = []Reason{
	ReasonSuccess,
	ReasonResistorRangeExhausted,
	ReasonControlVoltageExceeded,
	ReasonOverallResistanceTooHigh,
	ReasonContactResistanceDominates,
	ReasonInvalidConfiguration,
}

var reasonMessages = map[Reason]string{
	ReasonSuccess:                    "search ended successfully",
	ReasonResistorRangeExhausted:     "reached smallest series resistor",
	ReasonControlVoltageExceeded:     "reached control voltage limit",
	ReasonOverallResistanceTooHigh:   "V_out exceeded, overall R too high",
	ReasonContactResistanceDominates: "V_out exceeded, Rc >> Rfilm",
	ReasonInvalidConfiguration:       "outer resistance below twice the contact resistance",
}

// Message returns the human-readable description of r.
func (r Reason) Message() string {
	if m, ok := reasonMessages[r]; ok {
		return m
	}
	return string(r)
}

// Verdict is the terminal outcome of one search. It is produced exactly once
// per search and never modified afterwards.
type Verdict struct {
	// OK is true only for ReasonSuccess.
	OK bool `json:"ok" yaml:"ok"`

	Reason Reason `json:"reason" yaml:"reason"`

	// Iterations is the number of ladder steps taken before terminating.
	// Zero when the search rejected its inputs before the first step.
	Iterations int `json:"iterations" yaml:"iterations"`

	// Current is the last excitation current attempted, in amps.
	Current float64 `json:"current" yaml:"current"`
}

// Success builds a passing verdict.
func Success(iterations int, current float64) Verdict {
	return Verdict{OK: true, Reason: ReasonSuccess, Iterations: iterations, Current: current}
}

// Failure builds a failing verdict with the given reason.
func Failure(reason Reason, iterations int, current float64) Verdict {
	return Verdict{Reason: reason, Iterations: iterations, Current: current}
}

func (v Verdict) String() string {
	return v.Reason.Message()
}

// Step records the derived values of one ladder iteration.
type Step struct {
	Iteration        int     `json:"iteration" yaml:"iteration"`
	Current          float64 `json:"current" yaml:"current"`
	SeriesResistance float64 `json:"series_resistance" yaml:"series_resistance"`
	ControlVoltage   float64 `json:"control_voltage" yaml:"control_voltage"`
	DACCode          float64 `json:"dac_code" yaml:"dac_code"`

	// The fields below are zero when the step terminated on the control
	// voltage ceiling before the sample was driven.
	RealizedCurrent float64 `json:"realized_current" yaml:"realized_current"`
	VOuter          float64 `json:"v_outer" yaml:"v_outer"`
	RInner          float64 `json:"r_inner" yaml:"r_inner"`
	VInner          float64 `json:"v_inner" yaml:"v_inner"`
	VOut            float64 `json:"v_out" yaml:"v_out"`
}

// SweepPoint pairs one swept outer resistance with its verdict.
type SweepPoint struct {
	// OuterResistance is the contact + sample + contact path, in ohms.
	OuterResistance float64 `json:"outer_resistance" yaml:"outer_resistance"`

	// SampleResistance is the per-segment sample resistance implied by
	// OuterResistance and the contact resistance.
	SampleResistance float64 `json:"sample_resistance" yaml:"sample_resistance"`

	Verdict Verdict `json:"verdict" yaml:"verdict"`

	// Trace holds the per-iteration values when tracing was requested.
	Trace []Step `json:"trace,omitempty" yaml:"trace,omitempty"`
}
