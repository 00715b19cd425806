package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/scdt-sim/scdt/sim"
	"github.com/scdt-sim/scdt/sim/network"
	"github.com/scdt-sim/scdt/sim/scenario"
	"github.com/scdt-sim/scdt/sim/trace"
)

var (
	// CLI flags for the run
	scenarioPath string  // Path to the scenario YAML
	until        int64   // Last tick to simulate (inclusive)
	seed         int64   // Master seed of the partitioned RNG
	startDate    string  // Date of tick 0; overrides the scenario
	echo         bool    // Print "<date>:\t<message>" per traced action
	logLevel     string  // Log verbosity level
	processor    string  // Order processor: recording or stock
	maxBacklog   int64   // Ticks a backordered order may wait (stock processor)
	kmPerTick    float64 // Shipment speed for delivery lead times
	traceLevel   string  // Trace verbosity: none or events
	traceOut     string  // File to write the event trace to
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "scdt",
	Short: "Discrete-event simulator for supply-chain networks",
}

// runOptions collects everything a run needs, detached from the flag globals.
type runOptions struct {
	Scenario   string
	Until      int64
	Seed       int64
	Start      string
	Echo       bool
	EchoOut    io.Writer
	Processor  string
	MaxBacklog int64
	KmPerTick  float64
	TraceLevel string
}

var validProcessors = map[string]bool{"recording": true, "stock": true}

// newOrderProcessor maps a processor name to an implementation.
func newOrderProcessor(name string, maxBacklog int64) (sim.OrderProcessor, error) {
	switch name {
	case "", "recording":
		return sim.NewRecordingProcessor(), nil
	case "stock":
		return sim.NewStockFulfillment(maxBacklog), nil
	default:
		return nil, fmt.Errorf("unknown processor %q; valid: recording, stock", name)
	}
}

// loadNetwork reads and builds a scenario file.
func loadNetwork(path string) (*scenario.Scenario, *network.Network, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("--scenario is required")
	}
	sc, err := scenario.Load(path)
	if err != nil {
		return nil, nil, err
	}
	net, err := sc.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("building scenario %s: %w", path, err)
	}
	return sc, net, nil
}

// runScenario builds the network, runs a session until opts.Until and
// returns it for reporting. A failed session is returned with its error.
func runScenario(opts runOptions) (*sim.Session, error) {
	sc, net, err := loadNetwork(opts.Scenario)
	if err != nil {
		return nil, err
	}

	start, err := sc.Start()
	if err != nil {
		return nil, err
	}
	if opts.Start != "" {
		if start, err = time.Parse(sim.DateLayout, opts.Start); err != nil {
			return nil, fmt.Errorf("invalid --start %q, want YYYY-MM-DD", opts.Start)
		}
	}
	if start.IsZero() {
		start = time.Now().UTC()
	}

	proc, err := newOrderProcessor(opts.Processor, opts.MaxBacklog)
	if err != nil {
		return nil, err
	}
	s, err := sim.NewSession(net, sim.Config{
		StartDate:          start,
		Seed:               opts.Seed,
		Echo:               opts.Echo,
		EchoOutput:         opts.EchoOut,
		TraceLevel:         trace.TraceLevel(opts.TraceLevel),
		TransportKmPerTick: opts.KmPerTick,
		Processor:          proc,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return s, err
	}
	logrus.Infof("Running %q until tick %d (%s)", net.Name, opts.Until, s.Clock().Format(opts.Until))
	return s, s.Run(opts.Until)
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if !validProcessors[processor] {
			logrus.Fatalf("Unknown processor %q; valid: recording, stock", processor)
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Unknown trace level %q; valid: none, events", traceLevel)
		}

		startTime := time.Now()
		s, err := runScenario(runOptions{
			Scenario:   scenarioPath,
			Until:      until,
			Seed:       seed,
			Start:      startDate,
			Echo:       echo,
			EchoOut:    os.Stdout,
			Processor:  processor,
			MaxBacklog: maxBacklog,
			KmPerTick:  kmPerTick,
			TraceLevel: traceLevel,
		})
		if s == nil {
			logrus.Fatalf("%v", err)
		}
		if err != nil {
			logrus.Errorf("Simulation failed: %v", err)
		}

		if traceOut != "" {
			if werr := writeTrace(traceOut, s.Trace()); werr != nil {
				logrus.Fatalf("Writing trace: %v", werr)
			}
		}
		if rerr := printReport(os.Stdout, s, time.Since(startTime)); rerr != nil {
			logrus.Fatalf("Writing report: %v", rerr)
		}
		if err != nil {
			os.Exit(1)
		}
		logrus.Info("Simulation complete.")
	},
}

// validateCmd checks a scenario without running it
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a scenario file for errors",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, net, err := loadNetwork(scenarioPath)
		if err != nil {
			return err
		}
		if err := net.Validate(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d skus, %d nodes, %d demands\n",
			net.Name, len(net.SKUs()), len(net.Nodes()), len(net.Demands()))
		return nil
	},
}

func writeTrace(path string, et *trace.EventTrace) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := et.WriteTo(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&scenarioPath, "scenario", "", "Path to the scenario YAML")

	runCmd.Flags().Int64Var(&until, "until", 365, "Last tick to simulate (inclusive)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for stochastic demand")
	runCmd.Flags().StringVar(&startDate, "start", "", "Date of tick 0 (YYYY-MM-DD); defaults to the scenario start_date, then today")
	runCmd.Flags().BoolVar(&echo, "echo", false, "Print every traced action as \"<date>:\\t<message>\"")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&processor, "processor", "recording", "Order processor (recording, stock)")
	runCmd.Flags().Int64Var(&maxBacklog, "max-backlog", 0, "Ticks a backordered order may wait before it expires (stock processor; 0 = forever)")
	runCmd.Flags().Float64Var(&kmPerTick, "km-per-tick", sim.DefaultTransportKmPerTick, "Shipment speed used for delivery lead times")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", "events", "Trace verbosity (none, events)")
	runCmd.Flags().StringVar(&traceOut, "trace-out", "", "Write the event trace to this file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}
