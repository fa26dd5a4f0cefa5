// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tier maps an excitation current onto the series resistor that
// converts it into a control voltage.
package tier

import (
	"errors"
	"fmt"
	"math"
)

// ErrRangeExhausted is returned by Select when the current is at or above
// the threshold of the smallest series resistor.
var ErrRangeExhausted = errors.New("resistor range exhausted")

// ErrInvalidTable is returned (wrapped) by Validate.
var ErrInvalidTable = errors.New("invalid tier table")

// Tier is one series resistor and the exclusive upper bound of the currents
// it serves.
type Tier struct {
	// MaxCurrent is the exclusive upper bound, in amps.
	MaxCurrent float64 `json:"max_current" yaml:"max_current"`

	// SeriesResistance is the resistor value, in ohms.
	SeriesResistance float64 `json:"series_resistance" yaml:"series_resistance"`
}

// Table is ordered by strictly increasing MaxCurrent.
type Table []Tier

// Default returns the five-decade table of the reference instrument:
// 10 MΩ below 100 nA down to 1 kΩ below 1 mA.
func Default() Table {
	return Table{
		{MaxCurrent: 1e-7, SeriesResistance: 1e7},
		{MaxCurrent: 1e-6, SeriesResistance: 1e6},
		{MaxCurrent: 1e-5, SeriesResistance: 1e5},
		{MaxCurrent: 1e-4, SeriesResistance: 1e4},
		{MaxCurrent: 1e-3, SeriesResistance: 1e3},
	}
}

// Select returns the first tier whose MaxCurrent is strictly greater than
// current. Boundary currents belong to the next tier.
func (t Table) Select(current float64) (Tier, error) {
	for _, tr := range t {
		if current < tr.MaxCurrent {
			return tr, nil
		}
	}
	return Tier{}, fmt.Errorf("%w: current %g A", ErrRangeExhausted, current)
}

// MaxCurrent returns the threshold of the last tier, or zero for an empty table.
func (t Table) MaxCurrent() float64 {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1].MaxCurrent
}

// Validate checks that the table is non-empty, thresholds strictly increase,
// and every value is a positive finite number.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no tiers", ErrInvalidTable)
	}
	prev := 0.0
	for i, tr := range t {
		if !finitePositive(tr.MaxCurrent) || !finitePositive(tr.SeriesResistance) {
			return fmt.Errorf("%w: tier %d has non-positive values (%g A, %g ohm)", ErrInvalidTable, i, tr.MaxCurrent, tr.SeriesResistance)
		}
		if tr.MaxCurrent <= prev {
			return fmt.Errorf("%w: tier %d threshold %g A does not exceed %g A", ErrInvalidTable, i, tr.MaxCurrent, prev)
		}
		prev = tr.MaxCurrent
	}
	return nil
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
