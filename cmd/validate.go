package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/procsim/sim"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load a workload and check it without simulating",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel(logLevel)
		descs, err := loadWorkload(cmd.Context())
		if err != nil {
			logrus.Fatalf("Failed to load workload: %v", err)
		}
		if err := validateWorkload(os.Stdout, descs, numIODevices); err != nil {
			logrus.Fatalf("Invalid workload: %v", err)
		}
	},
}

// validateWorkload reports every malformed descriptor, duplicate pid and, when
// ioDevices is zero, every process that needs an I/O device. It prints a
// one-line summary on success.
func validateWorkload(w io.Writer, descs []sim.ProcessDescriptor, ioDevices int) error {
	var errs []error
	seen := make(map[string]bool, len(descs))
	var cpuBursts, ioBursts int
	var cpuTotal, ioTotal int64
	for _, d := range descs {
		if err := d.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[d.ID] {
			errs = append(errs, fmt.Errorf("process %s: %w", d.ID, sim.ErrDuplicateID))
		}
		seen[d.ID] = true
		c, i := sim.CountByKind(d.Bursts)
		if i > 0 && ioDevices == 0 {
			errs = append(errs, fmt.Errorf("process %s: %w", d.ID, sim.ErrNoIODevice))
		}
		cpuBursts += c
		ioBursts += i
		cpuTotal += sim.TotalDuration(d.Bursts, sim.BurstCPU)
		ioTotal += sim.TotalDuration(d.Bursts, sim.BurstIO)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	_, _ = fmt.Fprintf(w, "%d processes OK: %d cpu bursts (%d ticks), %d io bursts (%d ticks)\n",
		len(descs), cpuBursts, cpuTotal, ioBursts, ioTotal)
	return nil
}

func init() {
	registerWorkloadFlags(validateCmd)

	rootCmd.AddCommand(validateCmd)
}
