// Package spectrum converts time-domain signals into one-sided magnitude
// spectra.
//
// The transform covers the whole signal at its native length; there is no
// windowing or segmentation. Bin k of an N-sample signal corresponds to
// k*sampleRate/N Hz, and only the non-negative frequencies (the first
// ceil(N/2) bins) are returned.
package spectrum

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/dsp/fourier"
)

// ErrEmptySignal is returned when a spectrum is requested for an empty signal.
var ErrEmptySignal = errors.New("spectrum: empty signal")

// dbEpsilon guards the log10 conversions against zero magnitudes.
const dbEpsilon = 1e-10

// Spectrum is a one-sided magnitude spectrum. Frequencies are strictly
// increasing and Magnitudes are non-negative; both slices have equal length.
// A Spectrum is produced fresh per call and never mutated in place.
type Spectrum struct {
	Frequencies []float64 // Hz
	Magnitudes  []float64 // 2/N * |X[k]|
	SampleRate  float64   // Hz
	SignalLen   int       // N of the transformed signal
}

// Analyze computes the one-sided magnitude spectrum of samples.
//
// The result has ceil(N/2) bins for N input samples. The transform is
// deterministic and leaves the input untouched.
func Analyze(samples []float64, sampleRate float64) (*Spectrum, error) {
	if len(samples) == 0 {
		return nil, ErrEmptySignal
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("spectrum: sample rate must be > 0: %f", sampleRate)
	}

	n := len(samples)
	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, samples)

	// The real FFT yields floor(N/2)+1 coefficients; for even N the last one
	// is the Nyquist bin, which fftfreq conventions count as negative.
	bins := (n + 1) / 2
	if bins > len(coeffs) {
		bins = len(coeffs)
	}

	re := make([]float64, bins)
	im := make([]float64, bins)
	for i := 0; i < bins; i++ {
		re[i] = real(coeffs[i])
		im[i] = imag(coeffs[i])
	}

	mags := make([]float64, bins)
	vecmath.Magnitude(mags, re, im)

	// Normalize by 2/N so a unit-amplitude sinusoid peaks at magnitude 1
	// regardless of signal length. The dB floor below is fixed, so without
	// this scaling FFT rounding noise would sit well above it and leak into
	// threshold comparisons between spectra.
	scale := 2 / float64(n)
	for i := range mags {
		mags[i] *= scale
	}

	freqs := make([]float64, bins)
	step := sampleRate / float64(n)
	for i := range freqs {
		freqs[i] = float64(i) * step
	}

	return &Spectrum{
		Frequencies: freqs,
		Magnitudes:  mags,
		SampleRate:  sampleRate,
		SignalLen:   n,
	}, nil
}

// Bins returns the number of frequency bins.
func (s *Spectrum) Bins() int { return len(s.Frequencies) }

// Nyquist returns half the sample rate.
func (s *Spectrum) Nyquist() float64 { return s.SampleRate / 2 }

// MagnitudeDB returns the magnitudes on an amplitude-decibel scale,
// 20*log10(m + eps), with a small epsilon guarding zero bins.
func (s *Spectrum) MagnitudeDB() []float64 {
	out := make([]float64, len(s.Magnitudes))
	for i, m := range s.Magnitudes {
		out[i] = 20 * math.Log10(m+dbEpsilon)
	}
	return out
}

// PowerDB returns the magnitudes on a power-decibel scale,
// 10*log10(m^2 + eps).
func (s *Spectrum) PowerDB() []float64 {
	out := make([]float64, len(s.Magnitudes))
	for i, m := range s.Magnitudes {
		out[i] = 10 * math.Log10(m*m+dbEpsilon)
	}
	return out
}

// Compatible reports whether two spectra share identical bin layouts:
// same sample rate, same source signal length, same bin count.
func (s *Spectrum) Compatible(other *Spectrum) bool {
	if s == nil || other == nil {
		return false
	}
	return s.SampleRate == other.SampleRate &&
		s.SignalLen == other.SignalLen &&
		len(s.Frequencies) == len(other.Frequencies)
}
