package types

// OutputFormat selects how sweep results are rendered.
type OutputFormat string

const (
	OutputTable OutputFormat = "table"
	OutputJSON  OutputFormat = "json"
	OutputYAML  OutputFormat = "yaml"
)

// OutputConfig holds settings for the reporting layer.
type OutputConfig struct {
	// Format selects the output format: table, json, or yaml.
	Format OutputFormat `json:"format" yaml:"format"`

	// Trace includes the per-iteration values of every search.
	Trace bool `json:"trace" yaml:"trace"`

	// Color enables verdict styling in the table format.
	Color bool `json:"color" yaml:"color"`
}

// SweepConfig holds settings for a full sweep.
type SweepConfig struct {
	Hardware HardwareParams `json:"hardware" yaml:"hardware"`

	Range SweepRange `json:"range" yaml:"range"`

	// Limits overrides the ladder and DAC constants. Zero fields fall back
	// to DefaultLimits.
	Limits Limits `json:"limits" yaml:"limits"`

	// Trace records the per-iteration values of every search.
	Trace bool `json:"trace" yaml:"trace"`
}

// CheckConfig groups all configuration for one smu-check run.
type CheckConfig struct {
	Sweep  SweepConfig  `json:"sweep" yaml:"sweep"`
	Output OutputConfig `json:"output" yaml:"output"`
}

// DefaultSweepConfig returns the configuration of the reference instrument:
// 50 kΩ contacts, a 1–30 Ω film, gain 400, a 36 V op amp and a 0.2 V floor.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Hardware: HardwareParams{
			ContactResistance: 50000,
			Gain:              400,
			VOutMax:           36,
			VMeasureMin:       0.2,
		},
		Range: SweepRange{
			SampleMin: 1.0,
			SampleMax: 30.0,
			Points:    DefaultSweepPoints,
		},
		Limits: DefaultLimits(),
	}
}

// EffectiveLimits returns c.Limits with zero fields replaced by defaults.
func (c SweepConfig) EffectiveLimits() Limits {
	l := c.Limits
	d := DefaultLimits()
	if l.StepFactor == 0 {
		l.StepFactor = d.StepFactor
	}
	if l.CurrentFloor == 0 {
		l.CurrentFloor = d.CurrentFloor
	}
	if l.ControlVoltageMax == 0 {
		l.ControlVoltageMax = d.ControlVoltageMax
	}
	if l.DACFullScale == 0 {
		l.DACFullScale = d.DACFullScale
	}
	if l.DACReference == 0 {
		l.DACReference = d.DACReference
	}
	return l
}
