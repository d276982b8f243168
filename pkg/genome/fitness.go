package genome

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Fitness is a tuple of objective values with per-objective weights. Weighted
// values are compared lexicographically and the larger one wins, so negative
// weights minimize.
type Fitness struct {
	Values  []float64
	Weights []float64
	Valid   bool
}

// Set stores freshly computed objective values and marks the fitness valid.
func (f *Fitness) Set(values []float64) {
	f.Values = append(f.Values[:0], values...)
	f.Valid = true
}

// Invalidate marks the fitness stale; the engine re-evaluates it lazily.
func (f *Fitness) Invalidate() {
	f.Values = f.Values[:0]
	f.Valid = false
}

// Weighted returns value * weight for each objective.
func (f *Fitness) Weighted() []float64 {
	w := make([]float64, len(f.Values))
	for i, v := range f.Values {
		w[i] = v * f.Weights[i]
	}
	return w
}

// Compare returns +1 if f is better than g, -1 if worse and 0 if equal.
// An invalid fitness is worse than any valid one.
func (f *Fitness) Compare(g *Fitness) int {
	switch {
	case !f.Valid && !g.Valid:
		return 0
	case !f.Valid:
		return -1
	case !g.Valid:
		return 1
	}
	fw, gw := f.Weighted(), g.Weighted()
	for i := range fw {
		if i >= len(gw) {
			return 1
		}
		a, b := fw[i], gw[i]
		if a == b || (math.IsNaN(a) && math.IsNaN(b)) {
			continue
		}
		if a > b || math.IsNaN(b) {
			return 1
		}
		return -1
	}
	if len(fw) < len(gw) {
		return -1
	}
	return 0
}

// Better reports whether f is strictly better than g.
func (f *Fitness) Better(g *Fitness) bool {
	return f.Compare(g) > 0
}

// Clone copies the fitness so the copy can be set independently.
func (f Fitness) Clone() Fitness {
	return Fitness{
		Values:  append([]float64(nil), f.Values...),
		Weights: f.Weights,
		Valid:   f.Valid,
	}
}

// Within reports whether every objective value is at or below target.
func (f *Fitness) Within(target float64) bool {
	if !f.Valid || len(f.Values) == 0 {
		return false
	}
	for _, v := range f.Values {
		if !(v <= target) {
			return false
		}
	}
	return true
}

func (f Fitness) String() string {
	if !f.Valid {
		return "(invalid)"
	}
	parts := make([]string, len(f.Values))
	for i, v := range f.Values {
		parts[i] = strconv.FormatFloat(v, 'g', 6, 64)
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}
