// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/smu-check/internal/report"
	"github.com/pdiddy/smu-check/internal/sweep"
	"github.com/pdiddy/smu-check/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search <r-outer>",
	Short: "Run the current ladder for a single outer resistance",
	Long: `Search decides one outer resistance (contact + sample + contact, in ohms)
and prints the verdict. Use --trace to see every ladder step.

An outer resistance below twice the contact resistance is reported as
invalid_configuration.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	rOuter, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("parsing outer resistance %q: %w", args[0], err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	engine, err := sweep.NewEngine(cfg.Sweep)
	if err != nil {
		return fmt.Errorf("search limits: %w", err)
	}

	hw := cfg.Sweep.Hardware
	res := engine.Search(rOuter, hw)
	logger.Debug("Search finished",
		zap.Float64("r_outer", rOuter),
		zap.String("reason", string(res.Verdict.Reason)),
		zap.Int("iterations", res.Verdict.Iterations))

	point := types.SweepPoint{
		OuterResistance:  rOuter,
		SampleResistance: sweep.SampleResistance(rOuter, hw.ContactResistance),
		Verdict:          res.Verdict,
		Trace:            res.Trace,
	}
	rep := report.New(hw, nil, engine.Limits(), engine.Table(), []types.SweepPoint{point})
	return report.Write(cmd.OutOrStdout(), rep, cfg.Output)
}

func init() {
	addHardwareFlags(searchCmd)
	addOutputFlags(searchCmd)

	rootCmd.AddCommand(searchCmd)
}
