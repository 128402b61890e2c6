package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/inference-sim/procsim/sim"
	"github.com/inference-sim/procsim/sim/report"
	"github.com/inference-sim/procsim/sim/trace"
	"github.com/inference-sim/procsim/sim/workload"
)

var (
	// Workload selection
	workloadSource  string // Path or http(s) URL of the workload file
	limit           int    // Keep only the first N processes (0 = all)
	heavy           string // Heavy filter: cpu, io, mixed
	arrivalStrategy string // Arrival strategy: staggered, random, burst, original
	seed            int64  // Seed for arrival assignment

	// Scheduler configuration
	policyName     string // Dispatch policy
	numCPUs        int    // Number of CPUs
	numIODevices   int    // Number of I/O devices
	quantum        int    // RR slice or adaptive base slice
	preemptive     bool   // Preemptive priority
	adaptiveWindow int    // Adaptive load-history window
	maxTicks       int64  // Tick cap (0 = run to completion)
	configPath     string // Optional YAML run configuration

	// Output
	outputFormat    string // table, json or csv
	timelinePath    string // Optional trace timeline output (.csv or .json)
	logLevel        string // Log verbosity level
	checkInvariants bool   // Verify engine invariants after every tick
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "procsim",
	Short: "Tick-based CPU and I/O scheduling simulator",
}

// runCmd simulates one workload under one policy
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduling simulation",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel(logLevel)

		cfg, ticks, err := resolveConfig(cmd.Flags())
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		descs, err := loadWorkload(cmd.Context())
		if err != nil {
			logrus.Fatalf("Failed to load workload: %v", err)
		}
		if timelinePath != "" {
			cfg.TraceLevel = trace.TraceLevelEvents
		}

		logrus.Infof("Starting simulation: policy=%s cpus=%d io=%d processes=%d",
			cfg.Policy.Name, cfg.NumCPUs, cfg.NumIODevices, len(descs))
		startTime := time.Now()

		s, err := simulate(cfg, descs, ticks, checkInvariants)
		if errors.Is(err, sim.ErrTickLimit) {
			logrus.Warnf("%v; reporting finished processes only", err)
		} else if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		if err := writeRunOutput(os.Stdout, s, outputFormat); err != nil {
			logrus.Fatalf("Failed to write results: %v", err)
		}
		if timelinePath != "" {
			if err := writeTimelineFile(timelinePath, s.Trace); err != nil {
				logrus.Fatalf("Failed to write timeline: %v", err)
			}
			logrus.Infof("Timeline written to %s", timelinePath)
		}
		logrus.Infof("Simulation complete in %s", time.Since(startTime))
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setLogLevel(name string) {
	level, err := logrus.ParseLevel(name)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", name)
	}
	logrus.SetLevel(level)
}

// resolveConfig layers the scheduler configuration: flag defaults, then the
// --config bundle, then any flag set explicitly on the command line.
// Returns the config and the tick cap.
func resolveConfig(flags *pflag.FlagSet) (sim.SchedulerConfig, int64, error) {
	cfg := sim.NewSchedulerConfig()
	cfg.NumCPUs = numCPUs
	cfg.NumIODevices = numIODevices
	cfg.Policy = sim.PolicyConfig{
		Name:           policyName,
		Quantum:        quantum,
		Preemptive:     preemptive,
		AdaptiveWindow: adaptiveWindow,
	}
	ticks := maxTicks

	if configPath != "" {
		bundle, err := sim.LoadRunBundle(configPath)
		if err != nil {
			return cfg, 0, err
		}
		if err := bundle.Validate(); err != nil {
			return cfg, 0, fmt.Errorf("run config %s: %w", configPath, err)
		}
		bundle.Apply(&cfg)
		if bundle.MaxTicks != nil {
			ticks = *bundle.MaxTicks
		}
		logrus.Infof("Loaded run config from %s", configPath)

		// Explicit flags win over the file
		if flags.Changed("policy") {
			cfg.Policy.Name = policyName
		}
		if flags.Changed("quantum") {
			cfg.Policy.Quantum = quantum
		}
		if flags.Changed("preemptive") {
			cfg.Policy.Preemptive = preemptive
		}
		if flags.Changed("window") {
			cfg.Policy.AdaptiveWindow = adaptiveWindow
		}
		if flags.Changed("cpus") {
			cfg.NumCPUs = numCPUs
		}
		if flags.Changed("ios") {
			cfg.NumIODevices = numIODevices
		}
		if flags.Changed("max-ticks") {
			ticks = maxTicks
		}
	}

	if ticks < 0 {
		return cfg, 0, fmt.Errorf("max-ticks must be non-negative, got %d", ticks)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, 0, err
	}
	return cfg, ticks, nil
}

// loadWorkload reads --workload and applies --limit, --arrival, --heavy and --seed.
func loadWorkload(ctx context.Context) ([]sim.ProcessDescriptor, error) {
	if workloadSource == "" {
		return nil, fmt.Errorf("--workload is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	descs, err := workload.Load(ctx, workloadSource)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Loaded %d processes from %s", len(descs), workloadSource)
	return workload.Prepare(descs, workload.Options{
		Limit:   limit,
		Heavy:   workload.HeavyFilter(heavy),
		Arrival: workload.ArrivalStrategy(arrivalStrategy),
		Seed:    seed,
	})
}

// simulate builds a scheduler, adds every process and runs it. With check set,
// invariants are verified after each tick. On ErrTickLimit the partially
// finished scheduler is still returned.
func simulate(cfg sim.SchedulerConfig, descs []sim.ProcessDescriptor, ticks int64, check bool) (*sim.Scheduler, error) {
	s, err := sim.NewScheduler(cfg)
	if err != nil {
		return nil, err
	}
	for _, d := range descs {
		if err := s.AddProcess(d); err != nil {
			return nil, err
		}
	}
	if !check {
		_, err = s.Run(ticks)
		return s, err
	}
	for s.HasJobs() {
		if ticks > 0 && s.Clock() >= ticks {
			return s, fmt.Errorf("%w: stopped at tick %d", sim.ErrTickLimit, s.Clock())
		}
		s.Step()
		if err := s.CheckInvariants(); err != nil {
			return s, err
		}
	}
	return s, nil
}

func writeRunOutput(w io.Writer, s *sim.Scheduler, format string) error {
	r := report.New(s)
	switch format {
	case "", "table":
		report.WriteTable(w, fmt.Sprintf("%s scheduling", r.Metrics.Policy), r.Processes, r.Metrics)
		return nil
	case "json":
		return report.WriteJSON(w, r)
	case "csv":
		return report.WriteCSV(w, r.Processes)
	default:
		return fmt.Errorf("unknown output format %q; valid: table, json, csv", format)
	}
}

func writeTimelineFile(path string, st *trace.SimulationTrace) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return report.WriteTimelineJSON(f, st)
	}
	return report.WriteTimelineCSV(f, st)
}

// registerWorkloadFlags attaches the workload and scheduler flags shared by run and compare.
func registerWorkloadFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&workloadSource, "workload", "", "Workload file path or http(s) URL (JSON or YAML)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Keep only the first N processes (0 = all)")
	cmd.Flags().StringVar(&heavy, "heavy", "", "Keep only cpu-, io- or mixed-heavy processes")
	cmd.Flags().StringVar(&arrivalStrategy, "arrival", string(workload.ArrivalStaggered), "Arrival strategy: staggered, random, burst, original")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Seed for arrival assignment")

	cmd.Flags().IntVar(&numCPUs, "cpus", 1, "Number of CPUs")
	cmd.Flags().IntVar(&numIODevices, "ios", 1, "Number of I/O devices")
	cmd.Flags().IntVar(&quantum, "quantum", sim.DefaultQuantum, "RR time slice, or adaptive base slice")
	cmd.Flags().BoolVar(&preemptive, "preemptive", false, "Preemptive priority scheduling")
	cmd.Flags().IntVar(&adaptiveWindow, "window", 0, "Adaptive policy load-history window (0 = default)")
	cmd.Flags().Int64Var(&maxTicks, "max-ticks", 0, "Stop after this many ticks (0 = run to completion)")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML run configuration; explicit flags override it")
	cmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
}

// init sets up CLI flags and subcommands
func init() {
	registerWorkloadFlags(runCmd)
	runCmd.Flags().StringVar(&policyName, "policy", "fcfs", "Dispatch policy: fcfs, rr, sjf, srtf, priority, adaptive")
	runCmd.Flags().StringVar(&outputFormat, "format", "table", "Output format: table, json, csv")
	runCmd.Flags().StringVar(&timelinePath, "timeline", "", "Write the event timeline to this file (.csv or .json)")
	runCmd.Flags().BoolVar(&checkInvariants, "check", false, "Verify scheduler invariants after every tick")

	rootCmd.AddCommand(runCmd)
}
