// Package noise locates frequency bands dominated by additive noise by
// comparing the spectra of a clean reference and its noisy capture.
package noise

import (
	"errors"

	"github.com/cwbudde/algo-denoise/dsp/spectrum"
)

// ErrIncompatibleSpectra is returned when the clean and noisy spectra do not
// share the same bin layout. The detector never interpolates between layouts.
var ErrIncompatibleSpectra = errors.New("noise: incompatible spectra")

// DefaultThresholdDB is the minimum noisy-minus-clean level difference for a
// bin to count as noise.
const DefaultThresholdDB = 20.0

// Band is a closed frequency interval [LowHz, HighHz] with LowHz < HighHz.
type Band struct {
	LowHz  float64
	HighHz float64
}

// Contains reports whether f lies inside the band.
func (b Band) Contains(f float64) bool {
	return f >= b.LowHz && f <= b.HighHz
}

// Option configures detection.
type Option func(*config)

type config struct {
	thresholdDB float64
}

// WithThresholdDB overrides the detection threshold in dB.
func WithThresholdDB(db float64) Option {
	return func(c *config) { c.thresholdDB = db }
}

// Detect compares clean and noisy spectra and returns the contiguous bands
// whose level difference exceeds the threshold.
//
// Both spectra are converted to dB and scanned once in ascending frequency
// order. Consecutive qualifying bins merge into one band running from the
// first qualifying bin's frequency to the first disqualifying bin's
// frequency; a band still open at the last bin closes there. Bands come back
// ascending and non-overlapping by construction.
func Detect(clean, noisy *spectrum.Spectrum, opts ...Option) ([]Band, error) {
	if !clean.Compatible(noisy) {
		return nil, ErrIncompatibleSpectra
	}

	cfg := config{thresholdDB: DefaultThresholdDB}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	cleanDB := clean.MagnitudeDB()
	noisyDB := noisy.MagnitudeDB()
	freqs := clean.Frequencies

	var bands []Band
	inBand := false
	start := 0.0

	for i := range freqs {
		diff := noisyDB[i] - cleanDB[i]
		switch {
		case diff > cfg.thresholdDB && !inBand:
			start = freqs[i]
			inBand = true
		case diff <= cfg.thresholdDB && inBand:
			bands = append(bands, Band{LowHz: start, HighHz: freqs[i]})
			inBand = false
		}
	}

	if inBand {
		bands = append(bands, Band{LowHz: start, HighHz: freqs[len(freqs)-1]})
	}

	return bands, nil
}

// DetectSignals is a convenience wrapper that analyzes both signals and runs
// Detect on the resulting spectra.
func DetectSignals(clean, noisy []float64, sampleRate float64, opts ...Option) ([]Band, error) {
	cs, err := spectrum.Analyze(clean, sampleRate)
	if err != nil {
		return nil, err
	}
	ns, err := spectrum.Analyze(noisy, sampleRate)
	if err != nil {
		return nil, err
	}
	return Detect(cs, ns, opts...)
}
