// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/smu-check/internal/report"
	"github.com/pdiddy/smu-check/internal/sweep"
	"github.com/pdiddy/smu-check/pkg/types"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Check a logarithmic range of sample resistances",
	Long: `Sweep converts the sample resistance range into outer resistances
(2·R_contact + 3·R_sample), spaces them logarithmically, and runs the current
ladder search once per value. Failed searches are reported, never fatal.`,
	RunE: runSweep,
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	engine, err := sweep.NewEngine(cfg.Sweep)
	if err != nil {
		return fmt.Errorf("search limits: %w", err)
	}

	logger.Debug("Starting sweep",
		zap.Float64("contact_resistance", cfg.Sweep.Hardware.ContactResistance),
		zap.Float64("sample_min", cfg.Sweep.Range.SampleMin),
		zap.Float64("sample_max", cfg.Sweep.Range.SampleMax),
		zap.Int("points", cfg.Sweep.Range.Points))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	points, err := sweep.Run(ctx, cfg.Sweep, engine)
	if err != nil {
		return err
	}

	rep := report.New(cfg.Sweep.Hardware, &cfg.Sweep.Range, engine.Limits(), engine.Table(), points)
	logger.Debug("Sweep finished",
		zap.String("run_id", rep.RunID),
		zap.Int("passed", rep.Summary.Passed),
		zap.Int("total", rep.Summary.Total),
		zap.Duration("elapsed", time.Since(start)))
	if rep.Summary.Passed == 0 {
		logger.Warn("No sample resistance in the range is measurable",
			zap.Float64("contact_resistance", cfg.Sweep.Hardware.ContactResistance),
			zap.Float64("gain", cfg.Sweep.Hardware.Gain))
	}

	return report.Write(cmd.OutOrStdout(), rep, cfg.Output)
}

func init() {
	d := types.DefaultSweepConfig().Range
	addHardwareFlags(sweepCmd)
	sweepCmd.Flags().Float64("sample-min", d.SampleMin, "smallest sample resistance between two probes (ohm)")
	sweepCmd.Flags().Float64("sample-max", d.SampleMax, "largest sample resistance between two probes (ohm)")
	sweepCmd.Flags().Int("points", d.Points, "number of logarithmically spaced outer resistances")
	addOutputFlags(sweepCmd)

	rootCmd.AddCommand(sweepCmd)
}
