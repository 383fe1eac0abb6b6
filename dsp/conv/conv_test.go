package conv

import (
	"math"
	"math/rand"
	"testing"
)

func TestDirectKnownResult(t *testing.T) {
	// [1 2 3] * [1 1] = [1 3 5 3]
	got, err := Direct([]float64{1, 2, 3}, []float64{1, 1})
	if err != nil {
		t.Fatalf("Direct: %v", err)
	}

	want := []float64{1, 3, 5, 3}
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDirectIdentityKernel(t *testing.T) {
	sig := []float64{0.5, -1, 2, 0.25}

	got, err := Direct(sig, []float64{1})
	if err != nil {
		t.Fatalf("Direct: %v", err)
	}
	for i := range sig {
		if got[i] != sig[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], sig[i])
		}
	}
}

func TestDirectEmptyInputs(t *testing.T) {
	if _, err := Direct(nil, []float64{1}); err != ErrEmptyInput {
		t.Errorf("Direct(nil, k) err = %v, want ErrEmptyInput", err)
	}
	if _, err := Direct([]float64{1}, nil); err != ErrEmptyKernel {
		t.Errorf("Direct(a, nil) err = %v, want ErrEmptyKernel", err)
	}
}

func TestOverlapAddMatchesDirect(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	signal := make([]float64, 1000)
	for i := range signal {
		signal[i] = rng.NormFloat64()
	}

	kernel := make([]float64, 101)
	for i := range kernel {
		kernel[i] = rng.NormFloat64()
	}

	want, err := Direct(signal, kernel)
	if err != nil {
		t.Fatalf("Direct: %v", err)
	}

	got, err := OverlapAddConvolve(signal, kernel)
	if err != nil {
		t.Fatalf("OverlapAddConvolve: %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestConvolveSelectsByKernelLength(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	signal := make([]float64, 512)
	for i := range signal {
		signal[i] = rng.NormFloat64()
	}

	for _, kernelLen := range []int{8, 63, 64, 65, 200} {
		kernel := make([]float64, kernelLen)
		for i := range kernel {
			kernel[i] = rng.NormFloat64()
		}

		want, err := Direct(signal, kernel)
		if err != nil {
			t.Fatalf("Direct(len=%d): %v", kernelLen, err)
		}

		got, err := Convolve(signal, kernel)
		if err != nil {
			t.Fatalf("Convolve(len=%d): %v", kernelLen, err)
		}

		for i := range want {
			if math.Abs(got[i]-want[i]) > 1e-9 {
				t.Fatalf("kernel len %d: got[%d] = %v, want %v", kernelLen, i, got[i], want[i])
			}
		}
	}
}

func TestConvolveCommutes(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{0.5, -0.5, 1}

	ab, err := Convolve(a, b)
	if err != nil {
		t.Fatalf("Convolve(a, b): %v", err)
	}
	ba, err := Convolve(b, a)
	if err != nil {
		t.Fatalf("Convolve(b, a): %v", err)
	}

	for i := range ab {
		if math.Abs(ab[i]-ba[i]) > 1e-12 {
			t.Errorf("ab[%d] = %v, ba[%d] = %v", i, ab[i], i, ba[i])
		}
	}
}
