package apply

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-denoise/dsp/core"
	"github.com/cwbudde/algo-denoise/dsp/filter/design"
	"github.com/cwbudde/algo-denoise/dsp/signal"
	"github.com/cwbudde/algo-denoise/dsp/window"
)

func sine(t *testing.T, sampleRate, freq float64, n int) []float64 {
	t.Helper()

	gen := signal.NewGenerator(core.WithSampleRate(sampleRate))
	x, err := gen.Sine(freq, 1.0, n)
	if err != nil {
		t.Fatalf("sine: %v", err)
	}
	return x
}

func lowpassFIR(t *testing.T, order int, cutoff, sampleRate float64) design.Coefficients {
	t.Helper()

	c, err := design.Design(design.Spec{
		Family:     design.FamilyFIR,
		Response:   design.Lowpass,
		Order:      order,
		Cutoffs:    []float64{cutoff},
		SampleRate: sampleRate,
		Window:     window.TypeHamming,
	})
	if err != nil {
		t.Fatalf("design FIR: %v", err)
	}
	return c
}

func lowpassButterworth(t *testing.T, order int, cutoff, sampleRate float64) design.Coefficients {
	t.Helper()

	c, err := design.Design(design.Spec{
		Family:     design.FamilyButterworth,
		Response:   design.Lowpass,
		Order:      order,
		Cutoffs:    []float64{cutoff},
		SampleRate: sampleRate,
	})
	if err != nil {
		t.Fatalf("design butterworth: %v", err)
	}
	return c
}

func TestSignalTooShort(t *testing.T) {
	c := lowpassFIR(t, 64, 1000, 8000)

	_, err := Apply(c, make([]float64, 10), Causal)
	if !errors.Is(err, ErrSignalTooShort) {
		t.Fatalf("err = %v, want ErrSignalTooShort", err)
	}
}

func TestCausalFIRDelayCompensation(t *testing.T) {
	const (
		sampleRate = 8000.0
		order      = 50
	)

	c := lowpassFIR(t, order, 1000, sampleRate)

	// An impulse in the middle of the buffer must come out centered at the
	// same index after delay compensation.
	x := make([]float64, 256)
	x[128] = 1

	y, err := Apply(c, x, Causal)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(y) != len(x) {
		t.Fatalf("output length = %d, want %d", len(y), len(x))
	}

	peak := 0
	for i, v := range y {
		if math.Abs(v) > math.Abs(y[peak]) {
			peak = i
		}
	}
	if peak != 128 {
		t.Errorf("impulse response peak at %d, want 128", peak)
	}
}

func TestCausalIIRPassesDC(t *testing.T) {
	c := lowpassButterworth(t, 4, 1000, 8000)

	x := make([]float64, 512)
	for i := range x {
		x[i] = 1
	}

	y, err := Apply(c, x, Causal)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// After the startup transient, a DC input through a lowpass must
	// settle at unity gain.
	for i := 400; i < len(y); i++ {
		if math.Abs(y[i]-1) > 1e-3 {
			t.Fatalf("y[%d] = %v, want ~1", i, y[i])
		}
	}
}

func TestZeroPhaseAlignment(t *testing.T) {
	const sampleRate = 8000.0

	x := sine(t, sampleRate, 100, 4096)
	c := lowpassButterworth(t, 4, 1000, sampleRate)

	y, err := Apply(c, x, ZeroPhase)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// 100 Hz is deep in the passband: zero-phase filtering must return the
	// sine essentially unchanged and exactly aligned.
	maxDiff := 0.0
	for i := 64; i < len(x)-64; i++ {
		if d := math.Abs(y[i] - x[i]); d > maxDiff {
			maxDiff = d
		}
	}
	if maxDiff > 1e-3 {
		t.Errorf("max interior deviation = %v, want < 1e-3", maxDiff)
	}
}

func TestZeroPhaseAttenuatesStopband(t *testing.T) {
	const sampleRate = 8000.0

	x := sine(t, sampleRate, 3000, 4096)
	c := lowpassButterworth(t, 6, 500, sampleRate)

	y, err := Apply(c, x, ZeroPhase)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// Forward-backward application squares the magnitude response, so the
	// stopband tone must be crushed well below its input amplitude.
	maxAbs := 0.0
	for i := 256; i < len(y)-256; i++ {
		if a := math.Abs(y[i]); a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs > 1e-3 {
		t.Errorf("stopband residual = %v, want < 1e-3", maxAbs)
	}
}

func TestParseMode(t *testing.T) {
	for name, want := range map[string]Mode{
		"causal":     Causal,
		"zero-phase": ZeroPhase,
		"zero_phase": ZeroPhase,
	} {
		got, err := ParseMode(name)
		if err != nil {
			t.Errorf("ParseMode(%q): %v", name, err)
			continue
		}
		if got != want {
			t.Errorf("ParseMode(%q) = %v, want %v", name, got, want)
		}
	}

	if _, err := ParseMode("sideways"); err == nil {
		t.Error("ParseMode(sideways) succeeded, want error")
	}
}
