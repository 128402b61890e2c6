package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/procsim/sim"
	"github.com/inference-sim/procsim/sim/report"
)

var comparePolicies []string

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run several policies over the same workload and compare them",
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
		if err := comparePoliciesOn(os.Stdout, cfg, descs, ticks, comparePolicies); err != nil {
			logrus.Fatalf("Compare failed: %v", err)
		}
	},
}

// comparePoliciesOn runs descs once per policy name, keeping every other
// setting of base, and prints one comparison row per policy.
func comparePoliciesOn(w io.Writer, base sim.SchedulerConfig, descs []sim.ProcessDescriptor, ticks int64, policies []string) error {
	rows := make([]sim.Metrics, 0, len(policies))
	for _, name := range policies {
		cfg := base
		cfg.Policy.Name = name
		if err := cfg.Validate(); err != nil {
			return err
		}
		s, err := simulate(cfg, descs, ticks, false)
		if errors.Is(err, sim.ErrTickLimit) {
			logrus.Warnf("%s: %v", name, err)
		} else if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		rows = append(rows, sim.CollectMetrics(s))
	}
	report.WriteComparison(w, rows)
	return nil
}

func init() {
	registerWorkloadFlags(compareCmd)
	compareCmd.Flags().StringSliceVar(&comparePolicies, "policies", sim.PolicyNames, "Policies to compare")

	rootCmd.AddCommand(compareCmd)
}
