package design

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-denoise/dsp/window"
)

// designFIR builds a windowed-sinc linear-phase filter. The ideal response
// is assembled as a sum of pass bands in normalized frequency, truncated to
// numtaps coefficients and shaped by the configured window.
func designFIR(s Spec) ([]float64, error) {
	nyquist := s.SampleRate / 2

	bands, err := passBands(s)
	if err != nil {
		return nil, err
	}

	numtaps := s.Order + 1

	// A band touching Nyquist needs a nonzero response there, which an
	// even-length linear-phase filter cannot provide.
	passNyquist := bands[len(bands)-1][1] == 1.0
	if passNyquist && numtaps%2 == 0 {
		numtaps++
	}

	mid := float64(numtaps-1) / 2
	taps := make([]float64, numtaps)
	for m := range taps {
		x := float64(m) - mid
		for _, b := range bands {
			left, right := b[0], b[1]
			taps[m] += right*sinc(right*x) - left*sinc(left*x)
		}
	}

	win := window.Generate(s.Window, numtaps, window.WithBeta(s.KaiserBeta))
	vecmath.MulBlockInPlace(taps, win)

	// Normalize to unity gain at the first band's reference frequency:
	// DC for a band starting at 0, Nyquist for one ending at 1, the band
	// midpoint otherwise.
	first := bands[0]
	var fc float64
	switch {
	case first[0] == 0:
		fc = 0
	case first[1] == 1:
		fc = 1
	default:
		fc = (first[0] + first[1]) / 2
	}

	scale := 0.0
	for m, tap := range taps {
		x := float64(m) - mid
		scale += tap * math.Cos(math.Pi*fc*x)
	}
	if scale == 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, fmt.Errorf("%w: zero response at %g Hz reference", ErrDesignFailure, fc*nyquist)
	}

	for m := range taps {
		taps[m] /= scale
	}

	return taps, nil
}

// passBands converts the spec's cutoffs into [left, right] pass band pairs
// in Nyquist-normalized frequency. Bandstop keeps DC and Nyquist, passing
// everything between the stop bands.
func passBands(s Spec) ([][2]float64, error) {
	nyquist := s.SampleRate / 2

	w := make([]float64, len(s.Cutoffs))
	for i, f := range s.Cutoffs {
		w[i] = f / nyquist
	}

	switch s.Response {
	case Lowpass:
		return [][2]float64{{0, w[0]}}, nil
	case Highpass:
		return [][2]float64{{w[0], 1}}, nil
	case Bandpass:
		return [][2]float64{{w[0], w[1]}}, nil
	case Bandstop:
		bands := make([][2]float64, 0, len(w)/2+1)
		left := 0.0
		for i := 0; i < len(w); i += 2 {
			bands = append(bands, [2]float64{left, w[i]})
			left = w[i+1]
		}
		bands = append(bands, [2]float64{left, 1})
		return bands, nil
	default:
		return nil, fmt.Errorf("%w: response %v", ErrUnsupportedFilter, s.Response)
	}
}

// sinc is the normalized sinc function sin(pi*x) / (pi*x).
func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}
