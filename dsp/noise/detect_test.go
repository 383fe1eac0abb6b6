package noise

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-denoise/dsp/core"
	"github.com/cwbudde/algo-denoise/dsp/signal"
	"github.com/cwbudde/algo-denoise/dsp/spectrum"
)

func TestDetectIncompatibleSpectra(t *testing.T) {
	a, err := spectrum.Analyze(make([]float64, 100), 8000)
	if err != nil {
		t.Fatal(err)
	}
	b, err := spectrum.Analyze(make([]float64, 200), 8000)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Detect(a, b); !errors.Is(err, ErrIncompatibleSpectra) {
		t.Fatalf("err = %v, want ErrIncompatibleSpectra", err)
	}
}

func TestDetectSingleTone(t *testing.T) {
	const (
		sampleRate = 16000.0
		n          = 16000
	)

	gen := signal.NewGenerator(core.WithSampleRate(sampleRate))

	clean, err := gen.Sine(440, 1.0, n)
	if err != nil {
		t.Fatal(err)
	}
	tone, err := gen.Sine(5000, 0.5, n)
	if err != nil {
		t.Fatal(err)
	}
	noisy, err := signal.Mix(clean, tone)
	if err != nil {
		t.Fatal(err)
	}

	bands, err := DetectSignals(clean, noisy, sampleRate)
	if err != nil {
		t.Fatalf("DetectSignals: %v", err)
	}

	// A single injected tone must yield exactly one band; spurious
	// micro-bands mean the magnitude scale is drifting relative to the
	// dB floor.
	if len(bands) != 1 {
		t.Fatalf("want exactly one band, got %d: %+v", len(bands), bands)
	}
	if !bands[0].Contains(5000) {
		t.Errorf("band [%g, %g] does not contain 5000 Hz", bands[0].LowHz, bands[0].HighHz)
	}
	if bands[0].Contains(440) {
		t.Errorf("band [%g, %g] covers the clean 440 Hz tone", bands[0].LowHz, bands[0].HighHz)
	}
}

func TestDetectIdenticalSignalsYieldNoBands(t *testing.T) {
	gen := signal.NewGenerator(core.WithSampleRate(8000))
	sig, err := gen.Sine(1000, 1.0, 4096)
	if err != nil {
		t.Fatal(err)
	}

	bands, err := DetectSignals(sig, sig, 8000)
	if err != nil {
		t.Fatalf("DetectSignals: %v", err)
	}
	if len(bands) != 0 {
		t.Errorf("identical signals produced bands: %+v", bands)
	}
}

func TestDetectOrderingAndDisjointness(t *testing.T) {
	const (
		sampleRate = 16000.0
		n          = 16000
	)

	gen := signal.NewGenerator(core.WithSampleRate(sampleRate))

	clean, err := gen.Sine(440, 1.0, n)
	if err != nil {
		t.Fatal(err)
	}

	noisy := append([]float64(nil), clean...)
	for _, f := range []float64{3000, 6000} {
		tone, err := gen.Sine(f, 0.5, n)
		if err != nil {
			t.Fatal(err)
		}
		noisy, err = signal.Mix(noisy, tone)
		if err != nil {
			t.Fatal(err)
		}
	}

	bands, err := DetectSignals(clean, noisy, sampleRate)
	if err != nil {
		t.Fatalf("DetectSignals: %v", err)
	}
	if len(bands) != 2 {
		t.Fatalf("expected one band per injected tone, got %+v", bands)
	}

	prev := -1.0
	for _, b := range bands {
		if b.LowHz >= b.HighHz {
			t.Errorf("band [%g, %g] not ascending", b.LowHz, b.HighHz)
		}
		if b.LowHz <= prev {
			t.Errorf("band [%g, %g] overlaps previous ending at %g", b.LowHz, b.HighHz, prev)
		}
		prev = b.HighHz
	}
}

func TestThresholdOverride(t *testing.T) {
	const (
		sampleRate = 16000.0
		n          = 16000
	)

	gen := signal.NewGenerator(core.WithSampleRate(sampleRate))

	clean, err := gen.Sine(440, 1.0, n)
	if err != nil {
		t.Fatal(err)
	}
	tone, err := gen.Sine(5000, 0.5, n)
	if err != nil {
		t.Fatal(err)
	}
	noisy, err := signal.Mix(clean, tone)
	if err != nil {
		t.Fatal(err)
	}

	// An absurdly high threshold must suppress all detections.
	bands, err := DetectSignals(clean, noisy, sampleRate, WithThresholdDB(200))
	if err != nil {
		t.Fatalf("DetectSignals: %v", err)
	}
	if len(bands) != 0 {
		t.Errorf("threshold 200 dB still produced bands: %+v", bands)
	}
}
