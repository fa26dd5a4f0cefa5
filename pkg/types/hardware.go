// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameter is returned (wrapped) by Validate methods when a
// physical parameter is non-positive or not finite.
var ErrInvalidParameter = errors.New("invalid parameter")

// HardwareParams describes the candidate measurement circuit. The values are
// fixed for an entire sweep and passed by value into every search.
type HardwareParams struct {
	// ContactResistance is the resistance of one probe contact junction, in ohms.
	ContactResistance float64 `json:"contact_resistance" yaml:"contact_resistance"`

	// Gain is the amplifier gain applied to the inner-probe voltage.
	Gain float64 `json:"gain" yaml:"gain"`

	// VOutMax is the maximum voltage the op amp can output, in volts.
	VOutMax float64 `json:"vout_max" yaml:"vout_max"`

	// VMeasureMin is the smallest amplified inner voltage that is still
	// measurable above the noise floor, in volts.
	VMeasureMin float64 `json:"vmeasure_min" yaml:"vmeasure_min"`
}

// Validate reports the first parameter that is not a positive finite number.
func (h HardwareParams) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"contact resistance", h.ContactResistance},
		{"gain", h.Gain},
		{"vout max", h.VOutMax},
		{"vmeasure min", h.VMeasureMin},
	}
	for _, f := range fields {
		if err := positive(f.name, f.v); err != nil {
			return err
		}
	}
	return nil
}

// Limits holds the fixed constants of the current ladder and the DAC stage.
type Limits struct {
	// StepFactor multiplies the excitation current on every iteration.
	StepFactor float64 `json:"step_factor" yaml:"step_factor"`

	// CurrentFloor is the first excitation current tried, in amps.
	CurrentFloor float64 `json:"current_floor" yaml:"current_floor"`

	// ControlVoltageMax is the ceiling of the DAC output, in volts.
	ControlVoltageMax float64 `json:"control_voltage_max" yaml:"control_voltage_max"`

	// DACFullScale is the DAC code at DACReference volts.
	DACFullScale float64 `json:"dac_full_scale" yaml:"dac_full_scale"`

	// DACReference is the DAC reference voltage, in volts.
	DACReference float64 `json:"dac_reference" yaml:"dac_reference"`
}

// Default ladder and DAC constants.
const (
	DefaultStepFactor        = 2.0
	DefaultCurrentFloor      = 10e-9
	DefaultControlVoltageMax = 5.0
	DefaultDACFullScale      = 4095
	DefaultDACReference      = 5.0
)

// DefaultLimits returns the limits of the reference instrument.
func DefaultLimits() Limits {
	return Limits{
		StepFactor:        DefaultStepFactor,
		CurrentFloor:      DefaultCurrentFloor,
		ControlVoltageMax: DefaultControlVoltageMax,
		DACFullScale:      DefaultDACFullScale,
		DACReference:      DefaultDACReference,
	}
}

// Validate checks that the ladder grows and every limit is positive.
func (l Limits) Validate() error {
	if math.IsNaN(l.StepFactor) || l.StepFactor <= 1 {
		return fmt.Errorf("%w: step factor must be greater than 1, got %v", ErrInvalidParameter, l.StepFactor)
	}
	if err := positive("current floor", l.CurrentFloor); err != nil {
		return err
	}
	if err := positive("control voltage max", l.ControlVoltageMax); err != nil {
		return err
	}
	if err := positive("dac full scale", l.DACFullScale); err != nil {
		return err
	}
	return positive("dac reference", l.DACReference)
}

// DACCode converts a control voltage into the DAC code that produces it.
func (l Limits) DACCode(v float64) float64 {
	return v / l.DACReference * l.DACFullScale
}

// SweepRange selects the per-segment sample resistances to sweep.
type SweepRange struct {
	// SampleMin is the smallest sample resistance between two probes, in ohms.
	SampleMin float64 `json:"sample_min" yaml:"sample_min"`

	// SampleMax is the largest sample resistance between two probes, in ohms.
	SampleMax float64 `json:"sample_max" yaml:"sample_max"`

	// Points is the number of logarithmically spaced samples (default 50).
	Points int `json:"points" yaml:"points"`
}

// DefaultSweepPoints is the number of outer resistances in a sweep.
const DefaultSweepPoints = 50

// Validate checks that the range is non-empty and increasing.
func (r SweepRange) Validate() error {
	if err := positive("sample min", r.SampleMin); err != nil {
		return err
	}
	if err := positive("sample max", r.SampleMax); err != nil {
		return err
	}
	if r.SampleMax <= r.SampleMin {
		return fmt.Errorf("%w: sample max %v must exceed sample min %v", ErrInvalidParameter, r.SampleMax, r.SampleMin)
	}
	if r.Points < 2 {
		return fmt.Errorf("%w: points must be at least 2, got %d", ErrInvalidParameter, r.Points)
	}
	return nil
}

func positive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %s must be a positive number, got %v", ErrInvalidParameter, name, v)
	}
	return nil
}
