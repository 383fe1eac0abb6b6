package signal

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-denoise/dsp/core"
)

func TestSineFrequency(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(8000))

	out, err := g.Sine(1000, 1.0, 8)
	if err != nil {
		t.Fatalf("Sine: %v", err)
	}

	// One period of 1 kHz at 8 kHz spans exactly 8 samples.
	want := []float64{0, math.Sqrt2 / 2, 1, math.Sqrt2 / 2, 0, -math.Sqrt2 / 2, -1, -math.Sqrt2 / 2}
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-12 {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestSineRejectsBadArgs(t *testing.T) {
	g := NewGenerator()
	if _, err := g.Sine(440, 1.0, 0); err == nil {
		t.Error("Sine with 0 samples succeeded, want error")
	}
}

func TestWhiteNoiseDeterministic(t *testing.T) {
	a := NewGeneratorWithOptions(nil, WithSeed(7))
	b := NewGeneratorWithOptions(nil, WithSeed(7))

	na, err := a.WhiteNoise(0.5, 128)
	if err != nil {
		t.Fatalf("WhiteNoise: %v", err)
	}
	nb, err := b.WhiteNoise(0.5, 128)
	if err != nil {
		t.Fatalf("WhiteNoise: %v", err)
	}

	for i := range na {
		if na[i] != nb[i] {
			t.Fatalf("same seed diverged at %d: %v vs %v", i, na[i], nb[i])
		}
		if math.Abs(na[i]) > 0.5 {
			t.Fatalf("sample %d = %v exceeds amplitude", i, na[i])
		}
	}
}

func TestMix(t *testing.T) {
	out, err := Mix([]float64{1, 2, 3}, []float64{0.5, -2, 1})
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}
	want := []float64{1.5, 0, 4}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}

	if _, err := Mix([]float64{1}, []float64{1, 2}); err == nil {
		t.Error("Mix with mismatched lengths succeeded, want error")
	}
}

func TestNormalize(t *testing.T) {
	out, err := Normalize([]float64{0.1, -0.4, 0.2}, 1.0)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	maxAbs := 0.0
	for _, v := range out {
		if av := math.Abs(v); av > maxAbs {
			maxAbs = av
		}
	}
	if math.Abs(maxAbs-1.0) > 1e-12 {
		t.Errorf("peak = %v, want 1.0", maxAbs)
	}

	// All-zero input stays zero.
	zeros, err := Normalize(make([]float64, 4), 1.0)
	if err != nil {
		t.Fatalf("Normalize zeros: %v", err)
	}
	for i, v := range zeros {
		if v != 0 {
			t.Errorf("zeros[%d] = %v, want 0", i, v)
		}
	}
}
