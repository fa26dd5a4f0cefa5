// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the smu-check CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	logger  *zap.Logger
	verbose bool
)

// rootCmd is the base command for the smu-check CLI.
var rootCmd = &cobra.Command{
	Use:   "smu-check",
	Short: "Feasibility calculator for four-terminal resistance measurements",
	Long: `smu-check validates component choices for a Kelvin (four-terminal)
resistance measurement circuit before it is built.

For every sample resistance in a range it walks an exponential excitation
current ladder, selects a series resistor for each step, and reports whether
some current produces a measurable inner-probe voltage while keeping the op
amp output within its limit.

Configuration is read from flags, SMU_CHECK_* environment variables, and
./smu-check.yaml or ~/.config/smu-check/config.yaml, in that order.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logger != nil {
			return nil
		}
		config := zap.NewProductionConfig()
		config.Encoding = "console"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug("Using config file", zap.String("path", f))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./smu-check.yaml or ~/.config/smu-check/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging on stderr")

	setDefaults()
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("smu-check")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "smu-check"))
		}
	}

	configureEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "warning: reading config:", err)
		}
	}
}

// configureEnv maps keys such as sweep.hardware.gain onto
// SMU_CHECK_SWEEP_HARDWARE_GAIN.
func configureEnv() {
	viper.SetEnvPrefix("SMU_CHECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
