package biquad

import (
	"math"
	"testing"
)

// passthrough is the identity section.
var passthrough = Coefficients{B0: 1}

func TestProcessSamplePassthrough(t *testing.T) {
	s := NewSection(passthrough)
	for _, x := range []float64{1, -0.5, 0.25, 0} {
		if y := s.ProcessSample(x); y != x {
			t.Errorf("ProcessSample(%v) = %v, want %v", x, y, x)
		}
	}
}

func TestProcessBlockMatchesPerSample(t *testing.T) {
	c := Coefficients{B0: 0.2, B1: 0.3, B2: 0.1, A1: -0.4, A2: 0.2}

	in := []float64{1, 0.5, -0.25, 0.75, -1, 0.1, 0.9, -0.3}

	ref := NewSection(c)
	want := make([]float64, len(in))
	for i, x := range in {
		want[i] = ref.ProcessSample(x)
	}

	buf := append([]float64(nil), in...)
	blk := NewSection(c)
	blk.ProcessBlock(buf)

	for i := range want {
		if math.Abs(buf[i]-want[i]) > 1e-15 {
			t.Errorf("index %d: block %v, sample %v", i, buf[i], want[i])
		}
	}
}

func TestReset(t *testing.T) {
	c := Coefficients{B0: 0.5, B1: 0.5, A1: -0.9}

	s := NewSection(c)
	first := s.ProcessSample(1)

	s.ProcessSample(0.3)
	s.Reset()

	if got := s.ProcessSample(1); got != first {
		t.Errorf("after Reset: %v, want %v", got, first)
	}
}

func TestIsStable(t *testing.T) {
	cases := []struct {
		c    Coefficients
		want bool
	}{
		{Coefficients{B0: 1}, true},
		{Coefficients{B0: 1, A1: -1.8, A2: 0.81}, true},  // poles inside
		{Coefficients{B0: 1, A1: -2.0, A2: 1.01}, false}, // |A2| >= 1
		{Coefficients{B0: 1, A1: 2.1, A2: 0.9}, false},   // outside triangle
	}
	for _, tc := range cases {
		if got := tc.c.IsStable(); got != tc.want {
			t.Errorf("IsStable(%+v) = %v, want %v", tc.c, got, tc.want)
		}
	}
}

func TestIsFinite(t *testing.T) {
	if !(Coefficients{B0: 1, A1: -0.5}).IsFinite() {
		t.Error("finite coefficients reported non-finite")
	}
	if (Coefficients{B0: math.NaN()}).IsFinite() {
		t.Error("NaN coefficient reported finite")
	}
	if (Coefficients{A2: math.Inf(1)}).IsFinite() {
		t.Error("Inf coefficient reported finite")
	}
}

func TestChainCascadesInOrder(t *testing.T) {
	// Two one-pole smoothers in series equal one two-stage reference.
	c := Coefficients{B0: 0.5, B1: 0.5}

	chain := NewChain([]Coefficients{c, c})

	in := []float64{1, 0, 0, 0}
	want := []float64{0.25, 0.5, 0.25, 0}

	for i, x := range in {
		if y := chain.ProcessSample(x); math.Abs(y-want[i]) > 1e-15 {
			t.Errorf("sample %d: %v, want %v", i, y, want[i])
		}
	}

	if chain.Order() != 4 {
		t.Errorf("Order() = %d, want 4", chain.Order())
	}
	if chain.NumSections() != 2 {
		t.Errorf("NumSections() = %d, want 2", chain.NumSections())
	}
}

func TestPrimeDCRemovesStartupTransient(t *testing.T) {
	c := Coefficients{B0: 0.2, B1: 0.3, B2: 0.1, A1: -0.4, A2: 0.2}
	g := c.B0 + c.B1 + c.B2
	g /= 1 + c.A1 + c.A2

	s := NewSection(c)
	s.PrimeDC(0.7)

	// A constant input at the primed level must produce the DC-gain
	// scaled output from the very first sample.
	for i := range 8 {
		if y := s.ProcessSample(0.7); math.Abs(y-0.7*g) > 1e-14 {
			t.Fatalf("sample %d: %v, want %v", i, y, 0.7*g)
		}
	}
}

func TestChainPrimeDC(t *testing.T) {
	coeffs := []Coefficients{
		{B0: 0.2, B1: 0.3, B2: 0.1, A1: -0.4, A2: 0.2},
		{B0: 1.1, B1: -0.2, B2: 0.05, A1: 0.1, A2: -0.05},
	}

	chain := NewChain(coeffs)
	chain.PrimeDC(1)

	want := 1.0
	for _, c := range coeffs {
		want *= (c.B0 + c.B1 + c.B2) / (1 + c.A1 + c.A2)
	}

	for i := range 8 {
		if y := chain.ProcessSample(1); math.Abs(y-want) > 1e-14 {
			t.Fatalf("sample %d: %v, want %v", i, y, want)
		}
	}
}

func TestChainProcessBlockMatchesPerSample(t *testing.T) {
	coeffs := []Coefficients{
		{B0: 0.2, B1: 0.3, B2: 0.1, A1: -0.4, A2: 0.2},
		{B0: 1.1, B1: -0.2, B2: 0.05, A1: 0.1, A2: -0.05},
	}

	in := []float64{1, -1, 0.5, 0.25, -0.75, 0.9}

	ref := NewChain(coeffs)
	want := make([]float64, len(in))
	for i, x := range in {
		want[i] = ref.ProcessSample(x)
	}

	buf := append([]float64(nil), in...)
	blk := NewChain(coeffs)
	blk.ProcessBlock(buf)

	for i := range want {
		if math.Abs(buf[i]-want[i]) > 1e-15 {
			t.Errorf("index %d: block %v, sample %v", i, buf[i], want[i])
		}
	}
}
