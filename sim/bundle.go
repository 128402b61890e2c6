package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/procsim/sim/trace"
)

// RunBundle holds a run configuration loadable from a YAML file.
// Nil pointer fields mean "not set in YAML": they do not override the
// SchedulerConfig they are applied to. String fields use "" for "not set".
type RunBundle struct {
	Policy   PolicySection    `yaml:"policy"`
	CPUs     *int             `yaml:"cpus"`
	IODevs   *int             `yaml:"io_devices"`
	MaxTicks *int64           `yaml:"max_ticks"`
	Trace    trace.TraceLevel `yaml:"trace"`
}

// PolicySection holds dispatch policy configuration.
type PolicySection struct {
	Name           string `yaml:"name"`
	Quantum        *int   `yaml:"quantum"`
	Preemptive     *bool  `yaml:"preemptive"`
	AdaptiveWindow *int   `yaml:"adaptive_window"`
}

// LoadRunBundle reads and parses a YAML run configuration file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadRunBundle(path string) (*RunBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run config: %w", err)
	}
	var bundle RunBundle
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("parsing run config: %w", err)
	}
	return &bundle, nil
}

// Validate checks names and parameter ranges in the bundle.
func (b *RunBundle) Validate() error {
	if !IsValidPolicy(b.Policy.Name) {
		return fmt.Errorf("unknown policy %q; valid: %v", b.Policy.Name, PolicyNames)
	}
	if !trace.IsValidTraceLevel(string(b.Trace)) {
		return fmt.Errorf("unknown trace level %q", b.Trace)
	}
	if b.Policy.Quantum != nil && *b.Policy.Quantum < 0 {
		return fmt.Errorf("quantum must be non-negative, got %d", *b.Policy.Quantum)
	}
	if b.Policy.AdaptiveWindow != nil && *b.Policy.AdaptiveWindow < 0 {
		return fmt.Errorf("adaptive_window must be non-negative, got %d", *b.Policy.AdaptiveWindow)
	}
	if b.CPUs != nil && *b.CPUs < 1 {
		return fmt.Errorf("cpus must be >= 1, got %d", *b.CPUs)
	}
	if b.IODevs != nil && *b.IODevs < 0 {
		return fmt.Errorf("io_devices must be non-negative, got %d", *b.IODevs)
	}
	if b.MaxTicks != nil && *b.MaxTicks < 0 {
		return fmt.Errorf("max_ticks must be non-negative, got %d", *b.MaxTicks)
	}
	return nil
}

// Apply overlays every field set in the bundle onto cfg.
func (b *RunBundle) Apply(cfg *SchedulerConfig) {
	if b.Policy.Name != "" {
		cfg.Policy.Name = b.Policy.Name
	}
	if b.Policy.Quantum != nil {
		cfg.Policy.Quantum = *b.Policy.Quantum
	}
	if b.Policy.Preemptive != nil {
		cfg.Policy.Preemptive = *b.Policy.Preemptive
	}
	if b.Policy.AdaptiveWindow != nil {
		cfg.Policy.AdaptiveWindow = *b.Policy.AdaptiveWindow
	}
	if b.CPUs != nil {
		cfg.NumCPUs = *b.CPUs
	}
	if b.IODevs != nil {
		cfg.NumIODevices = *b.IODevs
	}
	if b.Trace != "" {
		cfg.TraceLevel = b.Trace
	}
}
