package fitness

import (
	"fmt"
	"math"
)

// Range is an arithmetic progression of sample points. Stop is exclusive.
type Range struct {
	Start float64 `yaml:"start" json:"start"`
	Stop  float64 `yaml:"stop" json:"stop"`
	Step  float64 `yaml:"step" json:"step" validate:"gt=0"`
}

// DefaultRange samples [-2, 2.25) in steps of 0.25, 17 points.
func DefaultRange() Range {
	return Range{Start: -2, Stop: 2.25, Step: 0.25}
}

// Points materializes the progression. Each point is computed as
// Start + i*Step so rounding error does not accumulate.
func (r Range) Points() ([]float64, error) {
	if !(r.Step > 0) {
		return nil, fmt.Errorf("step must be positive, got %v", r.Step)
	}
	if !(r.Stop > r.Start) {
		return nil, fmt.Errorf("empty range [%v, %v)", r.Start, r.Stop)
	}
	n := int(math.Ceil((r.Stop - r.Start) / r.Step))
	pts := make([]float64, n)
	for i := range pts {
		pts[i] = r.Start + float64(i)*r.Step
	}
	return pts, nil
}

// Interval is a closed interval [Start, Stop].
type Interval struct {
	Start float64 `yaml:"start" json:"start"`
	Stop  float64 `yaml:"stop" json:"stop" validate:"gtefield=Start"`
}

// DefaultInterval is the insertion interval [-1, 1].
func DefaultInterval() Interval {
	return Interval{Start: -1, Stop: 1}
}

// Contains reports whether x lies in the closed interval.
func (iv Interval) Contains(x float64) bool {
	return iv.Start <= x && x <= iv.Stop
}

// PiecewiseTarget returns the function that follows malware inside the
// interval and benign everywhere else.
func PiecewiseTarget(benign, malware func(float64) float64, iv Interval) func(float64) float64 {
	return func(x float64) float64 {
		if iv.Contains(x) {
			return malware(x)
		}
		return benign(x)
	}
}
