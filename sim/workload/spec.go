package workload

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// GeneratorSpec is the top-level synthetic workload description.
// Loaded from YAML via LoadGeneratorSpec.
type GeneratorSpec struct {
	Seed     int64       `yaml:"seed"`
	Count    int         `yaml:"count"`
	Bursts   BurstsSpec  `yaml:"bursts"`
	CPU      DistSpec    `yaml:"cpu"`
	IO       DistSpec    `yaml:"io"`
	Devices  []string    `yaml:"devices,omitempty"`
	Priority RangeSpec   `yaml:"priority"`
	Quantum  int         `yaml:"quantum,omitempty"`
	Arrival  ArrivalSpec `yaml:"arrival"`
	IDPrefix string      `yaml:"id_prefix,omitempty"`
}

// BurstsSpec bounds the number of CPU bursts per process. Each pair of
// consecutive CPU bursts is separated by one I/O burst.
type BurstsSpec struct {
	MinCPU int `yaml:"min_cpu"`
	MaxCPU int `yaml:"max_cpu"`
}

// RangeSpec is an inclusive integer range.
type RangeSpec struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// ArrivalSpec configures inter-arrival gaps.
type ArrivalSpec struct {
	Process string   `yaml:"process"` // "constant" (default), "poisson", "gamma"
	MeanGap float64  `yaml:"mean_gap"`
	CV      *float64 `yaml:"cv,omitempty"`
}

// DistSpec parameterizes a duration distribution.
type DistSpec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params"`
}

var validDistTypes = map[string]bool{
	"gaussian": true, "exponential": true, "uniform": true, "constant": true, "empirical": true,
}

// LoadGeneratorSpec reads and parses a YAML generator spec.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadGeneratorSpec(path string) (*GeneratorSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading generator spec: %w", err)
	}
	var spec GeneratorSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing generator spec: %w", err)
	}
	return &spec, nil
}

// Validate checks that all fields in the spec are valid.
func (s *GeneratorSpec) Validate() error {
	if s.Count <= 0 {
		return fmt.Errorf("count must be positive, got %d", s.Count)
	}
	if s.Bursts.MinCPU < 1 || s.Bursts.MaxCPU < s.Bursts.MinCPU {
		return fmt.Errorf("bursts: need 1 <= min_cpu <= max_cpu, got [%d, %d]", s.Bursts.MinCPU, s.Bursts.MaxCPU)
	}
	if s.Priority.Max < s.Priority.Min {
		return fmt.Errorf("priority: max %d is below min %d", s.Priority.Max, s.Priority.Min)
	}
	if s.Quantum < 0 {
		return fmt.Errorf("quantum must be non-negative, got %d", s.Quantum)
	}
	if err := validateDistSpec("cpu", &s.CPU); err != nil {
		return err
	}
	if s.Bursts.MaxCPU > 1 {
		if err := validateDistSpec("io", &s.IO); err != nil {
			return err
		}
	}
	if _, err := NewArrivalSampler(s.Arrival); err != nil {
		return err
	}
	return nil
}

func validateDistSpec(prefix string, d *DistSpec) error {
	if !validDistTypes[d.Type] {
		return fmt.Errorf("%s: unknown distribution type %q; valid: gaussian, exponential, uniform, constant, empirical", prefix, d.Type)
	}
	for name, val := range d.Params {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("%s.params.%s must be a finite number, got %f", prefix, name, val)
		}
	}
	if _, err := NewDurationSampler(*d); err != nil {
		return fmt.Errorf("%s: %w", prefix, err)
	}
	return nil
}
