// Package conv provides linear convolution for FIR filtering.
//
// Two strategies are offered: direct O(N*M) time-domain convolution for
// short kernels, and FFT-based overlap-add for longer ones. Convolve picks
// between them automatically based on kernel length.
package conv

import "errors"

// Errors returned by convolution functions.
var (
	ErrEmptyInput  = errors.New("conv: empty input")
	ErrEmptyKernel = errors.New("conv: empty kernel")
)

// directThreshold is the kernel length above which FFT convolution wins.
const directThreshold = 64

// Direct performs time-domain linear convolution of a and b.
// The result has length len(a) + len(b) - 1.
func Direct(a, b []float64) ([]float64, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}
	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	result := make([]float64, len(a)+len(b)-1)
	for i, av := range a {
		for j, bv := range b {
			result[i+j] += av * bv
		}
	}
	return result, nil
}

// Convolve performs linear convolution with automatic algorithm selection:
// direct for kernels up to directThreshold taps, overlap-add beyond that.
func Convolve(a, b []float64) ([]float64, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}
	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	// Keep the longer signal first so the kernel drives strategy selection.
	if len(b) > len(a) {
		a, b = b, a
	}

	if len(b) <= directThreshold {
		return Direct(a, b)
	}

	return OverlapAddConvolve(a, b)
}

// nextPowerOf2 returns the smallest power of 2 >= n.
func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
