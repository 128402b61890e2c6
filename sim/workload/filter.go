package workload

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/procsim/sim"
)

// HeavyFilter selects processes by the balance of their CPU and I/O burst counts.
type HeavyFilter string

const (
	HeavyNone  HeavyFilter = ""
	HeavyCPU   HeavyFilter = "cpu"   // more CPU bursts than I/O bursts
	HeavyIO    HeavyFilter = "io"    // more I/O bursts than CPU bursts
	HeavyMixed HeavyFilter = "mixed" // counts equal or differing by one
)

// IsValidHeavyFilter returns true for "", "cpu", "io" and "mixed".
func IsValidHeavyFilter(name string) bool {
	switch HeavyFilter(name) {
	case HeavyNone, HeavyCPU, HeavyIO, HeavyMixed:
		return true
	}
	return false
}

// Matches reports whether d passes the filter.
func (h HeavyFilter) Matches(d sim.ProcessDescriptor) bool {
	cpu, io := sim.CountByKind(d.Bursts)
	switch h {
	case HeavyCPU:
		return cpu > io
	case HeavyIO:
		return io > cpu
	case HeavyMixed:
		diff := cpu - io
		return diff >= -1 && diff <= 1
	default:
		return true
	}
}

// ErrFilteredEmpty is returned by Prepare when the heavy filter keeps no process.
var ErrFilteredEmpty = errors.New("heavy filter removed every process")

// Options controls how a loaded workload is shaped before simulation.
type Options struct {
	Limit   int             // keep the first Limit records; 0 keeps all
	Heavy   HeavyFilter     // optional burst-balance filter
	Arrival ArrivalStrategy // how arrival times are assigned
	Seed    int64           // seeds the arrival RNG
}

// Prepare applies, in order: limit, arrival assignment, heavy filter, and a
// stable sort by arrival time. The input slice is not modified.
// Unknown options are rejected before any work is done.
func Prepare(descs []sim.ProcessDescriptor, opts Options) ([]sim.ProcessDescriptor, error) {
	if opts.Limit < 0 {
		return nil, fmt.Errorf("limit must be non-negative, got %d", opts.Limit)
	}
	if !IsValidHeavyFilter(string(opts.Heavy)) {
		return nil, fmt.Errorf("unknown heavy filter %q; valid: cpu, io, mixed", opts.Heavy)
	}
	if !IsValidArrivalStrategy(string(opts.Arrival)) {
		return nil, fmt.Errorf("unknown arrival strategy %q; valid: staggered, random, burst, original", opts.Arrival)
	}

	n := len(descs)
	if opts.Limit > 0 && opts.Limit < n {
		n = opts.Limit
	}
	out := make([]sim.ProcessDescriptor, n)
	copy(out, descs[:n])

	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(opts.Seed))
	AssignArrivals(out, opts.Arrival, rng.ForSubsystem(sim.SubsystemArrival))

	if opts.Heavy != HeavyNone {
		kept := out[:0]
		for _, d := range out {
			if opts.Heavy.Matches(d) {
				kept = append(kept, d)
			}
		}
		if len(kept) == 0 && len(out) > 0 {
			return nil, fmt.Errorf("%w: %q matched none of %d", ErrFilteredEmpty, opts.Heavy, len(out))
		}
		logrus.Infof("heavy filter %q kept %d of %d processes", opts.Heavy, len(kept), len(out))
		out = kept
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ArrivalTime < out[j].ArrivalTime
	})
	return out, nil
}
