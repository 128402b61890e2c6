package workload

import (
	"fmt"
	"math/rand"

	"github.com/inference-sim/procsim/sim"
)

const defaultDevice = "disk"

// Generate synthesizes a process list from a GeneratorSpec.
// Deterministic given the same spec and seed. Processes come out in arrival
// order with IDs <prefix>1..<prefix>N.
func Generate(spec *GeneratorSpec) ([]sim.ProcessDescriptor, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generator spec: %w", err)
	}

	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(spec.Seed))
	genRNG := rng.ForSubsystem(sim.SubsystemGenerator)
	arrivalRNG := rng.ForSubsystem(sim.SubsystemArrival)

	cpuSampler, err := NewDurationSampler(spec.CPU)
	if err != nil {
		return nil, fmt.Errorf("cpu distribution: %w", err)
	}
	var ioSampler DurationSampler
	if spec.Bursts.MaxCPU > 1 {
		if ioSampler, err = NewDurationSampler(spec.IO); err != nil {
			return nil, fmt.Errorf("io distribution: %w", err)
		}
	}
	arrivals, err := NewArrivalSampler(spec.Arrival)
	if err != nil {
		return nil, err
	}

	devices := spec.Devices
	if len(devices) == 0 {
		devices = []string{defaultDevice}
	}
	prefix := spec.IDPrefix
	if prefix == "" {
		prefix = "P"
	}

	out := make([]sim.ProcessDescriptor, 0, spec.Count)
	var clock int64
	for i := 0; i < spec.Count; i++ {
		if i > 0 {
			clock += arrivals.SampleGap(arrivalRNG)
		}
		cpuBursts := int(randInt(genRNG, int64(spec.Bursts.MinCPU), int64(spec.Bursts.MaxCPU)))
		out = append(out, sim.ProcessDescriptor{
			ID:          fmt.Sprintf("%s%d", prefix, i+1),
			Priority:    int(randInt(genRNG, int64(spec.Priority.Min), int64(spec.Priority.Max))),
			ArrivalTime: clock,
			Quantum:     spec.Quantum,
			Bursts:      generateBursts(genRNG, cpuBursts, cpuSampler, ioSampler, devices),
		})
	}
	return out, nil
}

// generateBursts alternates CPU and I/O, starting and ending with CPU.
func generateBursts(rng *rand.Rand, cpuBursts int, cpu, io DurationSampler, devices []string) []sim.Burst {
	bursts := make([]sim.Burst, 0, 2*cpuBursts-1)
	for j := 0; j < cpuBursts; j++ {
		if j > 0 {
			dev := devices[rng.Intn(len(devices))]
			bursts = append(bursts, sim.IOBurst(dev, io.Sample(rng)))
		}
		bursts = append(bursts, sim.CPUBurst(cpu.Sample(rng)))
	}
	return bursts
}
