package design

import (
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-denoise/dsp/filter/biquad"
)

// Coefficients is the opaque result of a design call: either linear-phase FIR
// taps or a cascade of second-order sections, never both. A Coefficients
// value is immutable once designed and safe to reuse across many signals.
type Coefficients struct {
	taps       []float64
	sections   []biquad.Coefficients
	sampleRate float64
}

// IsFIR reports whether the coefficients are an FIR tap set.
func (c Coefficients) IsFIR() bool { return len(c.taps) > 0 }

// Taps returns a copy of the FIR taps, or nil for IIR coefficients.
func (c Coefficients) Taps() []float64 {
	if len(c.taps) == 0 {
		return nil
	}
	out := make([]float64, len(c.taps))
	copy(out, c.taps)
	return out
}

// Sections returns a copy of the second-order sections, or nil for FIR
// coefficients.
func (c Coefficients) Sections() []biquad.Coefficients {
	if len(c.sections) == 0 {
		return nil
	}
	out := make([]biquad.Coefficients, len(c.sections))
	copy(out, c.sections)
	return out
}

// SampleRate returns the sample rate the filter was designed for.
func (c Coefficients) SampleRate() float64 { return c.sampleRate }

// Order returns the effective filter order: len(taps)-1 for FIR, twice the
// section count for an SOS cascade.
func (c Coefficients) Order() int {
	if c.IsFIR() {
		return len(c.taps) - 1
	}
	return 2 * len(c.sections)
}

// Response evaluates the complex frequency response H(e^{jw}) at freqHz.
func (c Coefficients) Response(freqHz float64) complex128 {
	w := 2 * math.Pi * freqHz / c.sampleRate

	if c.IsFIR() {
		var h complex128
		for k, tap := range c.taps {
			h += complex(tap, 0) * cmplx.Exp(complex(0, -w*float64(k)))
		}
		return h
	}

	z1 := cmplx.Exp(complex(0, -w))
	z2 := z1 * z1

	h := complex(1, 0)
	for _, s := range c.sections {
		num := complex(s.B0, 0) + complex(s.B1, 0)*z1 + complex(s.B2, 0)*z2
		den := complex(1, 0) + complex(s.A1, 0)*z1 + complex(s.A2, 0)*z2
		h *= num / den
	}
	return h
}

// MagnitudeDB returns the magnitude response in dB at freqHz.
func (c Coefficients) MagnitudeDB(freqHz float64) float64 {
	return 20 * math.Log10(cmplx.Abs(c.Response(freqHz)))
}
