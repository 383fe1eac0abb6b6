// Package quality computes scalar fidelity metrics between a clean
// reference signal and a processed candidate.
package quality

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-denoise/dsp/spectrum"
)

// ErrShapeMismatch is returned when the two signals differ in length.
var ErrShapeMismatch = errors.New("quality: signal length mismatch")

// epsilon is the residual-power floor below which ratios report +Inf.
const epsilon = 1e-12

// Report holds the fidelity metrics for one (clean, candidate) pair.
// It is a pure value with no identity.
type Report struct {
	MSE                float64
	SNRdB              float64
	PSNRdB             float64
	Correlation        float64
	SpectralDistanceDB float64
}

// Evaluate computes all metrics between clean and candidate. The two
// signals must have identical length; sampleRate feeds the spectral
// distance metric.
func Evaluate(clean, candidate []float64, sampleRate float64) (Report, error) {
	if len(clean) != len(candidate) {
		return Report{}, fmt.Errorf("%w: %d vs %d", ErrShapeMismatch, len(clean), len(candidate))
	}
	if len(clean) == 0 {
		return Report{}, fmt.Errorf("%w: empty signals", ErrShapeMismatch)
	}

	mse := MSE(clean, candidate)

	r := Report{
		MSE:         mse,
		SNRdB:       snrFromMSE(clean, mse),
		PSNRdB:      psnrFromMSE(clean, mse),
		Correlation: stat.Correlation(clean, candidate, nil),
	}

	sd, err := SpectralDistanceDB(clean, candidate, sampleRate)
	if err != nil {
		return Report{}, err
	}
	r.SpectralDistanceDB = sd

	return r, nil
}

// MSE returns the mean squared error between two equal-length signals.
func MSE(clean, candidate []float64) float64 {
	sum := 0.0
	for i := range clean {
		d := clean[i] - candidate[i]
		sum += d * d
	}
	return sum / float64(len(clean))
}

// SNR returns the signal-to-noise ratio in dB, treating clean as the
// signal and clean-candidate as the noise. A residual below the epsilon
// floor reports +Inf.
func SNR(clean, candidate []float64) (float64, error) {
	if len(clean) != len(candidate) || len(clean) == 0 {
		return 0, fmt.Errorf("%w: %d vs %d", ErrShapeMismatch, len(clean), len(candidate))
	}
	return snrFromMSE(clean, MSE(clean, candidate)), nil
}

func snrFromMSE(clean []float64, mse float64) float64 {
	if mse < epsilon {
		return math.Inf(1)
	}

	power := 0.0
	for _, v := range clean {
		power += v * v
	}
	power /= float64(len(clean))

	return 10 * math.Log10(power/mse)
}

func psnrFromMSE(clean []float64, mse float64) float64 {
	if mse < epsilon {
		return math.Inf(1)
	}

	peak := 0.0
	for _, v := range clean {
		if av := math.Abs(v); av > peak {
			peak = av
		}
	}

	return 20 * math.Log10(peak/math.Sqrt(mse))
}

// SpectralDistanceDB returns the log-spectral distance: the RMS of the
// per-bin power-dB difference between the two magnitude spectra. It
// captures average frequency-domain deviation independent of time
// alignment.
func SpectralDistanceDB(clean, candidate []float64, sampleRate float64) (float64, error) {
	if len(clean) != len(candidate) || len(clean) == 0 {
		return 0, fmt.Errorf("%w: %d vs %d", ErrShapeMismatch, len(clean), len(candidate))
	}

	cs, err := spectrum.Analyze(clean, sampleRate)
	if err != nil {
		return 0, err
	}
	ds, err := spectrum.Analyze(candidate, sampleRate)
	if err != nil {
		return 0, err
	}

	cdb := cs.PowerDB()
	ddb := ds.PowerDB()

	sum := 0.0
	for i := range cdb {
		d := cdb[i] - ddb[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(cdb))), nil
}
