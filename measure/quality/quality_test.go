package quality

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-denoise/dsp/core"
	"github.com/cwbudde/algo-denoise/dsp/signal"
)

func TestEvaluateShapeMismatch(t *testing.T) {
	_, err := Evaluate(make([]float64, 10), make([]float64, 11), 8000)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("err = %v, want ErrShapeMismatch", err)
	}

	_, err = Evaluate(nil, nil, 8000)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("empty err = %v, want ErrShapeMismatch", err)
	}
}

func TestIdenticalSignals(t *testing.T) {
	gen := signal.NewGenerator(core.WithSampleRate(8000))
	sig, err := gen.Sine(440, 1.0, 4096)
	if err != nil {
		t.Fatal(err)
	}

	r, err := Evaluate(sig, sig, 8000)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if r.MSE != 0 {
		t.Errorf("MSE = %v, want 0", r.MSE)
	}
	if !math.IsInf(r.SNRdB, 1) {
		t.Errorf("SNRdB = %v, want +Inf", r.SNRdB)
	}
	if !math.IsInf(r.PSNRdB, 1) {
		t.Errorf("PSNRdB = %v, want +Inf", r.PSNRdB)
	}
	if math.Abs(r.Correlation-1) > 1e-12 {
		t.Errorf("Correlation = %v, want 1", r.Correlation)
	}
	if r.SpectralDistanceDB > 1e-9 {
		t.Errorf("SpectralDistanceDB = %v, want 0", r.SpectralDistanceDB)
	}
}

func TestKnownMSEAndSNR(t *testing.T) {
	clean := []float64{1, 1, 1, 1}
	cand := []float64{1.1, 0.9, 1.1, 0.9}

	r, err := Evaluate(clean, cand, 8000)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	// Every sample deviates by 0.1, so MSE = 0.01.
	if math.Abs(r.MSE-0.01) > 1e-12 {
		t.Errorf("MSE = %v, want 0.01", r.MSE)
	}
	// Signal power 1 against noise power 0.01 is exactly 20 dB.
	if math.Abs(r.SNRdB-20) > 1e-9 {
		t.Errorf("SNRdB = %v, want 20", r.SNRdB)
	}
	// Peak 1 against RMS error 0.1 is also 20 dB.
	if math.Abs(r.PSNRdB-20) > 1e-9 {
		t.Errorf("PSNRdB = %v, want 20", r.PSNRdB)
	}
}

func TestCorrelationSign(t *testing.T) {
	gen := signal.NewGenerator(core.WithSampleRate(8000))
	sig, err := gen.Sine(440, 1.0, 4096)
	if err != nil {
		t.Fatal(err)
	}

	inverted := make([]float64, len(sig))
	for i, v := range sig {
		inverted[i] = -v
	}

	r, err := Evaluate(sig, inverted, 8000)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if math.Abs(r.Correlation+1) > 1e-12 {
		t.Errorf("Correlation = %v, want -1", r.Correlation)
	}
}

func TestNoisierSignalScoresWorse(t *testing.T) {
	gen := signal.NewGeneratorWithOptions(
		[]core.ProcessorOption{core.WithSampleRate(8000)},
		signal.WithSeed(11),
	)

	clean, err := gen.Sine(440, 1.0, 4096)
	if err != nil {
		t.Fatal(err)
	}

	small, err := gen.WhiteNoise(0.01, 4096)
	if err != nil {
		t.Fatal(err)
	}
	large, err := gen.WhiteNoise(0.1, 4096)
	if err != nil {
		t.Fatal(err)
	}

	slightlyNoisy, err := signal.Mix(clean, small)
	if err != nil {
		t.Fatal(err)
	}
	veryNoisy, err := signal.Mix(clean, large)
	if err != nil {
		t.Fatal(err)
	}

	a, err := Evaluate(clean, slightlyNoisy, 8000)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Evaluate(clean, veryNoisy, 8000)
	if err != nil {
		t.Fatal(err)
	}

	if a.MSE >= b.MSE {
		t.Errorf("MSE did not grow with noise: %v vs %v", a.MSE, b.MSE)
	}
	if a.SNRdB <= b.SNRdB {
		t.Errorf("SNR did not shrink with noise: %v vs %v", a.SNRdB, b.SNRdB)
	}
	if a.Correlation <= b.Correlation {
		t.Errorf("correlation did not shrink with noise: %v vs %v", a.Correlation, b.Correlation)
	}
	if a.SpectralDistanceDB >= b.SpectralDistanceDB {
		t.Errorf("spectral distance did not grow with noise: %v vs %v",
			a.SpectralDistanceDB, b.SpectralDistanceDB)
	}
}
