// Defines the Burst type: one contiguous span of CPU or I/O work owned by a process.

package sim

import "fmt"

// BurstKind tags a burst as CPU work or I/O work.
type BurstKind string

const (
	BurstCPU BurstKind = "cpu"
	BurstIO  BurstKind = "io"
)

// Burst is a unit of work. DeviceClass is only meaningful for I/O bursts
// (e.g. "disk", "network") and is carried through for reporting.
type Burst struct {
	Kind        BurstKind `json:"kind" yaml:"kind"`
	DeviceClass string    `json:"device_class,omitempty" yaml:"device_class,omitempty"`
	Duration    int64     `json:"duration" yaml:"duration"`
}

// CPUBurst returns a CPU burst of the given duration.
func CPUBurst(duration int64) Burst {
	return Burst{Kind: BurstCPU, Duration: duration}
}

// IOBurst returns an I/O burst on the given device class.
func IOBurst(deviceClass string, duration int64) Burst {
	return Burst{Kind: BurstIO, DeviceClass: deviceClass, Duration: duration}
}

// Validate checks that the burst is well-formed.
func (b Burst) Validate() error {
	switch b.Kind {
	case BurstCPU:
		if b.DeviceClass != "" {
			return fmt.Errorf("%w: cpu burst must not name a device class, got %q", ErrInvalidBurst, b.DeviceClass)
		}
	case BurstIO:
	default:
		return fmt.Errorf("%w: unknown burst kind %q", ErrInvalidBurst, b.Kind)
	}
	if b.Duration <= 0 {
		return fmt.Errorf("%w: %s burst duration must be positive, got %d", ErrInvalidBurst, b.Kind, b.Duration)
	}
	return nil
}

func (b Burst) String() string {
	if b.Kind == BurstIO {
		return fmt.Sprintf("io(%s:%d)", b.DeviceClass, b.Duration)
	}
	return fmt.Sprintf("cpu(%d)", b.Duration)
}

// TotalDuration sums the durations of all bursts of the given kind.
func TotalDuration(bursts []Burst, kind BurstKind) int64 {
	var total int64
	for _, b := range bursts {
		if b.Kind == kind {
			total += b.Duration
		}
	}
	return total
}

// CountByKind returns the number of CPU and I/O bursts.
func CountByKind(bursts []Burst) (cpu, io int) {
	for _, b := range bursts {
		if b.Kind == BurstCPU {
			cpu++
		} else {
			io++
		}
	}
	return cpu, io
}
