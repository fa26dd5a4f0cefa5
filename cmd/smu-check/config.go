// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/smu-check/pkg/types"
)

// Viper keys mirror the yaml layout of types.CheckConfig, so a config file
// looks like:
//
//	sweep:
//	  hardware:
//	    contact_resistance: 50000
//	    gain: 400
//	output:
//	  format: yaml
const (
	keyContact      = "sweep.hardware.contact_resistance"
	keyGain         = "sweep.hardware.gain"
	keyVOutMax      = "sweep.hardware.vout_max"
	keyVMeasureMin  = "sweep.hardware.vmeasure_min"
	keySampleMin    = "sweep.range.sample_min"
	keySampleMax    = "sweep.range.sample_max"
	keyPoints       = "sweep.range.points"
	keyStepFactor   = "sweep.limits.step_factor"
	keyCurrentFloor = "sweep.limits.current_floor"
	keyVCtrlMax     = "sweep.limits.control_voltage_max"
	keyDACFullScale = "sweep.limits.dac_full_scale"
	keyDACReference = "sweep.limits.dac_reference"
	keyFormat       = "output.format"
	keyTrace        = "output.trace"
	keyColor        = "output.color"
)

// flagKeys maps command flags to the viper keys they override.
var flagKeys = map[string]string{
	"contact":      keyContact,
	"gain":         keyGain,
	"vout-max":     keyVOutMax,
	"vmeasure-min": keyVMeasureMin,
	"sample-min":   keySampleMin,
	"sample-max":   keySampleMax,
	"points":       keyPoints,
	"format":       keyFormat,
	"trace":        keyTrace,
}

func setDefaults() {
	d := types.DefaultSweepConfig()
	viper.SetDefault(keyContact, d.Hardware.ContactResistance)
	viper.SetDefault(keyGain, d.Hardware.Gain)
	viper.SetDefault(keyVOutMax, d.Hardware.VOutMax)
	viper.SetDefault(keyVMeasureMin, d.Hardware.VMeasureMin)
	viper.SetDefault(keySampleMin, d.Range.SampleMin)
	viper.SetDefault(keySampleMax, d.Range.SampleMax)
	viper.SetDefault(keyPoints, d.Range.Points)
	viper.SetDefault(keyStepFactor, d.Limits.StepFactor)
	viper.SetDefault(keyCurrentFloor, d.Limits.CurrentFloor)
	viper.SetDefault(keyVCtrlMax, d.Limits.ControlVoltageMax)
	viper.SetDefault(keyDACFullScale, d.Limits.DACFullScale)
	viper.SetDefault(keyDACReference, d.Limits.DACReference)
	viper.SetDefault(keyFormat, string(types.OutputTable))
	viper.SetDefault(keyTrace, false)
	viper.SetDefault(keyColor, true)
}

// addHardwareFlags registers the circuit parameters shared by sweep and search.
func addHardwareFlags(cmd *cobra.Command) {
	d := types.DefaultSweepConfig().Hardware
	cmd.Flags().Float64("contact", d.ContactResistance, "contact resistance of one probe junction (ohm)")
	cmd.Flags().Float64("gain", d.Gain, "amplifier gain applied to the inner-probe voltage")
	cmd.Flags().Float64("vout-max", d.VOutMax, "maximum op amp output voltage (V)")
	cmd.Flags().Float64("vmeasure-min", d.VMeasureMin, "minimum measurable amplified inner voltage (V)")
}

// addOutputFlags registers the reporting flags shared by sweep and search.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", string(types.OutputTable), "output format: table, json, or yaml")
	cmd.Flags().Bool("trace", false, "include per-iteration values of every search")
	cmd.Flags().Bool("no-color", false, "disable colored verdicts in table output")
}

// bindFlags points the viper keys at the flags of the command being run.
// Binding happens per invocation because sweep and search share flag names.
func bindFlags(cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag --%s: %w", name, err)
		}
	}
	return nil
}

// loadConfig resolves the run configuration from flags, environment, config
// file and defaults.
func loadConfig(cmd *cobra.Command) (types.CheckConfig, error) {
	if err := bindFlags(cmd); err != nil {
		return types.CheckConfig{}, err
	}

	cfg := types.CheckConfig{
		Sweep: types.SweepConfig{
			Hardware: types.HardwareParams{
				ContactResistance: viper.GetFloat64(keyContact),
				Gain:              viper.GetFloat64(keyGain),
				VOutMax:           viper.GetFloat64(keyVOutMax),
				VMeasureMin:       viper.GetFloat64(keyVMeasureMin),
			},
			Range: types.SweepRange{
				SampleMin: viper.GetFloat64(keySampleMin),
				SampleMax: viper.GetFloat64(keySampleMax),
				Points:    viper.GetInt(keyPoints),
			},
			Limits: types.Limits{
				StepFactor:        viper.GetFloat64(keyStepFactor),
				CurrentFloor:      viper.GetFloat64(keyCurrentFloor),
				ControlVoltageMax: viper.GetFloat64(keyVCtrlMax),
				DACFullScale:      viper.GetFloat64(keyDACFullScale),
				DACReference:      viper.GetFloat64(keyDACReference),
			},
		},
		Output: types.OutputConfig{
			Format: types.OutputFormat(viper.GetString(keyFormat)),
			Trace:  viper.GetBool(keyTrace),
			Color:  viper.GetBool(keyColor),
		},
	}
	cfg.Sweep.Trace = cfg.Output.Trace

	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		cfg.Output.Color = false
	}
	if !isTerminal(cmd.OutOrStdout()) {
		cfg.Output.Color = false
	}

	if err := cfg.Sweep.Hardware.Validate(); err != nil {
		return types.CheckConfig{}, err
	}
	switch cfg.Output.Format {
	case types.OutputTable, types.OutputJSON, types.OutputYAML:
	default:
		return types.CheckConfig{}, fmt.Errorf("unsupported format %q: use table, json, or yaml", cfg.Output.Format)
	}
	return cfg, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
