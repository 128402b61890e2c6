package workload

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/procsim/sim"
)

// ArrivalStrategy names how arrival times are assigned to loaded processes.
type ArrivalStrategy string

const (
	// ArrivalStaggered spaces processes 2 to 5 ticks apart in input order.
	ArrivalStaggered ArrivalStrategy = "staggered"
	// ArrivalRandom draws each arrival uniformly from [0, 50].
	ArrivalRandom ArrivalStrategy = "random"
	// ArrivalBurst groups processes in fives separated by 10 to 20 ticks, with 0 to 2 ticks of jitter.
	ArrivalBurst ArrivalStrategy = "burst"
	// ArrivalOriginal keeps the arrival_time from the file (default 0).
	ArrivalOriginal ArrivalStrategy = "original"
)

var validArrivalStrategies = map[ArrivalStrategy]bool{
	"": true, ArrivalStaggered: true, ArrivalRandom: true, ArrivalBurst: true, ArrivalOriginal: true,
}

// IsValidArrivalStrategy returns true if name is a known strategy (empty means staggered).
func IsValidArrivalStrategy(name string) bool {
	return validArrivalStrategies[ArrivalStrategy(name)]
}

// randInt returns a uniform integer in [lo, hi].
func randInt(rng *rand.Rand, lo, hi int64) int64 {
	return lo + rng.Int63n(hi-lo+1)
}

// AssignArrivals overwrites ArrivalTime on descs in place according to strategy.
// Unknown strategies fall back to staggered with a warning.
func AssignArrivals(descs []sim.ProcessDescriptor, strategy ArrivalStrategy, rng *rand.Rand) {
	if !validArrivalStrategies[strategy] {
		logrus.Warnf("unknown arrival strategy %q; using %s", strategy, ArrivalStaggered)
		strategy = ArrivalStaggered
	}
	var cur int64
	for i := range descs {
		switch strategy {
		case ArrivalOriginal:
			// keep file value
		case ArrivalRandom:
			descs[i].ArrivalTime = randInt(rng, 0, 50)
		case ArrivalBurst:
			if i%5 == 0 {
				cur += randInt(rng, 10, 20)
			}
			descs[i].ArrivalTime = cur + randInt(rng, 0, 2)
		default:
			descs[i].ArrivalTime = cur
			cur += randInt(rng, 2, 5)
		}
	}
}

// ArrivalSampler generates inter-arrival gaps for the synthetic generator.
type ArrivalSampler interface {
	// SampleGap returns the ticks until the next arrival. Always >= 0.
	SampleGap(rng *rand.Rand) int64
}

// PoissonSampler draws exponential gaps with the given mean (CV = 1).
type PoissonSampler struct {
	mean float64
}

func (s *PoissonSampler) SampleGap(rng *rand.Rand) int64 {
	return int64(math.Round(rng.ExpFloat64() * s.mean))
}

// GammaSampler draws Gamma-distributed gaps; CV > 1 produces bursty arrivals.
type GammaSampler struct {
	shape float64 // 1/CV²
	scale float64 // mean * CV²
}

func (s *GammaSampler) SampleGap(rng *rand.Rand) int64 {
	return int64(math.Round(gammaRand(rng, s.shape, s.scale)))
}

// gammaRand samples Gamma(shape, scale) with Marsaglia-Tsang; shape < 1 is
// boosted via Gamma(a) = Gamma(a+1) * U^(1/a).
func gammaRand(rng *rand.Rand, shape, scale float64) float64 {
	if shape < 1.0 {
		u := rng.Float64()
		return gammaRand(rng, shape+1.0, scale) * math.Pow(u, 1.0/shape)
	}
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)
	for {
		var x, v float64
		for {
			x = rng.NormFloat64()
			v = 1.0 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1.0-0.0331*(x*x)*(x*x) {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// ConstantGapSampler spaces arrivals exactly Gap ticks apart.
type ConstantGapSampler struct {
	Gap int64
}

func (s *ConstantGapSampler) SampleGap(_ *rand.Rand) int64 {
	if s.Gap < 0 {
		return 0
	}
	return s.Gap
}

// NewArrivalSampler builds a sampler for a generator ArrivalSpec.
func NewArrivalSampler(spec ArrivalSpec) (ArrivalSampler, error) {
	if spec.MeanGap < 0 || math.IsNaN(spec.MeanGap) || math.IsInf(spec.MeanGap, 0) {
		return nil, fmt.Errorf("arrival mean_gap must be a finite non-negative number, got %f", spec.MeanGap)
	}
	switch spec.Process {
	case "", "constant":
		return &ConstantGapSampler{Gap: int64(math.Round(spec.MeanGap))}, nil
	case "poisson":
		return &PoissonSampler{mean: spec.MeanGap}, nil
	case "gamma":
		cv := 1.0
		if spec.CV != nil {
			cv = *spec.CV
		}
		if cv <= 0 || math.IsNaN(cv) || math.IsInf(cv, 0) {
			return nil, fmt.Errorf("gamma cv must be a finite positive number, got %f", cv)
		}
		shape := 1.0 / (cv * cv)
		if shape < 0.01 {
			logrus.Warnf("Gamma shape %.4f (CV=%.1f) is very small; falling back to Poisson", shape, cv)
			return &PoissonSampler{mean: spec.MeanGap}, nil
		}
		return &GammaSampler{shape: shape, scale: spec.MeanGap * cv * cv}, nil
	default:
		return nil, fmt.Errorf("unknown arrival process %q; valid: constant, poisson, gamma", spec.Process)
	}
}
