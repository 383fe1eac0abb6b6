// Package biquad implements second-order filter sections and cascades.
//
// High-order IIR filters are represented as a chain of biquads rather than a
// single direct-form polynomial: direct-form coefficients lose precision
// rapidly above order ~6 and can produce unstable poles, while a cascade of
// quadratic stages stays well-conditioned.
package biquad

import "math"

// Coefficients holds the transfer function coefficients for a single
// second-order section (biquad). a0 is normalized to 1 and not stored.
//
// The sign convention follows Direct Form II Transposed:
//
//	y  = B0*x + d0
//	d0 = B1*x - A1*y + d1
//	d1 = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64 // feedforward (numerator)
	A1, A2     float64 // feedback (denominator)
}

// IsStable reports whether both poles of the section lie strictly inside the
// unit circle (the stability triangle |A2| < 1, |A1| < 1 + A2).
func (c Coefficients) IsStable() bool {
	return math.Abs(c.A2) < 1 && math.Abs(c.A1) < 1+c.A2
}

// IsFinite reports whether all coefficients are finite numbers.
func (c Coefficients) IsFinite() bool {
	for _, v := range [5]float64{c.B0, c.B1, c.B2, c.A1, c.A2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Section is a single biquad filter with coefficients and internal state.
// It implements Direct Form II Transposed processing.
type Section struct {
	Coefficients

	d0, d1 float64
}

// NewSection returns a Section initialized with the given coefficients
// and zero state.
func NewSection(c Coefficients) *Section {
	return &Section{Coefficients: c}
}

// ProcessSample filters one input sample and returns the output.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.B0*x + s.d0
	s.d0 = s.B1*x - s.A1*y + s.d1
	s.d1 = s.B2*x - s.A2*y

	return y
}

// ProcessBlock filters a block of samples in-place. Zero-alloc.
func (s *Section) ProcessBlock(buf []float64) {
	b0, b1, b2 := s.B0, s.B1, s.B2
	a1, a2 := s.A1, s.A2
	d0, d1 := s.d0, s.d1

	for i, x := range buf {
		y := b0*x + d0
		d0 = b1*x - a1*y + d1
		d1 = b2*x - a2*y
		buf[i] = y
	}

	s.d0, s.d1 = d0, d1
}

// Reset clears the delay line to zero.
func (s *Section) Reset() {
	s.d0 = 0
	s.d1 = 0
}

// PrimeDC seeds the delay line with the steady state for a constant input
// at the given level, so a signal starting near that level produces no
// startup transient.
func (s *Section) PrimeDC(level float64) {
	den := 1 + s.A1 + s.A2
	if den == 0 {
		s.Reset()
		return
	}

	g := (s.B0 + s.B1 + s.B2) / den
	s.d0 = (g - s.B0) * level
	s.d1 = (s.B2 - s.A2*g) * level
}

// DCGain returns the section's response to a constant input.
func (s *Section) DCGain() float64 {
	den := 1 + s.A1 + s.A2
	if den == 0 {
		return 0
	}
	return (s.B0 + s.B1 + s.B2) / den
}
