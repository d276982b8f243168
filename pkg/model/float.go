package model

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
)

// Float is a float64 that survives JSON encoding when it is NaN or infinite.
// Non-finite values are written as the strings "NaN", "+Inf" and "-Inf".
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func (f *Float) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("decode float %q: %w", data, err)
	}
	*f = Float(v)
	return nil
}

// Floats converts a slice for encoding.
func Floats(xs []float64) []Float {
	if xs == nil {
		return nil
	}
	out := make([]Float, len(xs))
	for i, x := range xs {
		out[i] = Float(x)
	}
	return out
}

// Float64s converts a decoded slice back.
func Float64s(xs []Float) []float64 {
	if xs == nil {
		return nil
	}
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}
