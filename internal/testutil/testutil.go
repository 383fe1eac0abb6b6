// Package testutil holds small helpers shared by the package tests.
package testutil

import (
	"math"
	"math/rand"
	"testing"
)

// RequireSliceNearlyEqual fails t when got and want differ in length or any
// element pair differs by more than eps.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if d := math.Abs(got[i] - want[i]); d > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > %v)", i, got[i], want[i], d, eps)
		}
	}
}

// RequireFinite fails t when any element is NaN or infinite.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// DC returns a constant signal.
func DC(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

// Ones returns n samples of 1.0.
func Ones(n int) []float64 {
	return DC(1, n)
}

// DeterministicNoise returns seeded uniform noise in [-amplitude, amplitude].
// The same seed always yields the same samples.
func DeterministicNoise(seed int64, amplitude float64, n int) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}
