package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pitwall-sim/pitwall/sim"
	"github.com/pitwall-sim/pitwall/sim/catalog"
	"github.com/pitwall-sim/pitwall/sim/trace"
)

var (
	// Flags shared by every subcommand
	logLevel    string // Log verbosity level
	catalogPath string // Catalog YAML file; empty means the embedded defaults

	// CLI flags for a single race
	driver       string // Driver key
	track        string // Track key
	compound     string // Starting compound
	weather      string // Race weather
	laps         int    // Race distance in laps
	seed         int64  // Seed for tyre wear, lap noise and the competitor field
	outputFormat string // text | json
	traceLevel   string // Decision trace verbosity
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "pitwall",
	Short: "Lap-by-lap race strategy simulator",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
		return nil
	},
	SilenceUsage: true,
}

// runCmd simulates one race using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate a single race",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSimulation(cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// runSimulation runs the race described by the flags and writes the result to w.
func runSimulation(w io.Writer) error {
	if !trace.IsValidTraceLevel(traceLevel) {
		return fmt.Errorf("unknown trace level %q; valid levels: none, decisions", traceLevel)
	}
	if outputFormat != "text" && outputFormat != "json" {
		return fmt.Errorf("unknown output format %q; valid formats: text, json", outputFormat)
	}

	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return err
	}

	req := sim.SimulationRequest{
		Driver:   driver,
		Track:    track,
		Compound: compound,
		Weather:  weather,
		Laps:     laps,
	}
	logrus.Infof("Starting simulation: driver=%s track=%s compound=%s weather=%s laps=%d seed=%d",
		driver, track, compound, weather, laps, seed)

	s := sim.NewSimulator(cat, sim.WithTraceLevel(trace.TraceLevel(traceLevel)))
	result, err := s.Simulate(req, sim.NewSimulationKey(seed))
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Response())
	}
	result.Print(w)
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Catalog YAML file (default: embedded catalog)")

	runCmd.Flags().StringVar(&driver, "driver", "verstappen", "Driver key")
	runCmd.Flags().StringVar(&track, "track", "monza", "Track key")
	runCmd.Flags().StringVar(&compound, "compound", "medium", "Starting compound (soft, medium, hard, intermediate, wet)")
	runCmd.Flags().StringVar(&weather, "weather", "dry", "Race weather (dry, mixed, wet)")
	runCmd.Flags().IntVar(&laps, "laps", 50, "Race distance in laps")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for tyre wear, lap noise and the competitor field")
	runCmd.Flags().StringVar(&outputFormat, "output", "text", "Output format (text, json)")
	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Decision trace level (none, decisions)")

	rootCmd.AddCommand(runCmd)
}
