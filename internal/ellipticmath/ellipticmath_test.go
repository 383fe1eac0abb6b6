package ellipticmath

import (
	"math"
	"testing"
)

const tol = 1e-9

func almostEqual(a, b, eps float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= eps
}

func TestEllipKKnownValues(t *testing.T) {
	// K(0) = pi/2 and K'(0) diverges.
	K, Kp := EllipK(0, tol)
	if !almostEqual(K, math.Pi/2, 1e-12) {
		t.Errorf("K(0) = %v, want pi/2", K)
	}
	if !math.IsInf(Kp, 1) {
		t.Errorf("K'(0) = %v, want +Inf", Kp)
	}

	// K(1) diverges.
	K, _ = EllipK(1, tol)
	if !math.IsInf(K, 1) {
		t.Errorf("K(1) = %v, want +Inf", K)
	}

	// Reference value K(0.5) from Abramowitz & Stegun.
	K, _ = EllipK(0.5, tol)
	if !almostEqual(K, 1.6857503548125961, 1e-10) {
		t.Errorf("K(0.5) = %v, want 1.6857503548125961", K)
	}
}

func TestEllipKComplementSymmetry(t *testing.T) {
	// K'(k) computed directly must match K(k') for k' = sqrt(1-k^2).
	for _, k := range []float64{0.1, 0.3, 0.5, 0.7, 0.9} {
		_, Kp := EllipK(k, tol)
		kc := math.Sqrt((1 - k) * (1 + k))
		Kc, _ := EllipK(kc, tol)
		if !almostEqual(Kp, Kc, 1e-9) {
			t.Errorf("k=%v: K'(k)=%v, K(k')=%v", k, Kp, Kc)
		}
	}
}

func TestSNEBoundaryValues(t *testing.T) {
	// sn(0)=0 and sn(K)=1 in the normalized argument convention.
	w := SNE([]float64{0, 1}, 0.5, tol)
	if !almostEqual(w[0], 0, 1e-12) {
		t.Errorf("sn(0) = %v, want 0", w[0])
	}
	if !almostEqual(w[1], 1, 1e-9) {
		t.Errorf("sn(K) = %v, want 1", w[1])
	}
}

func TestSNEReducesToSine(t *testing.T) {
	// At k=0 the elliptic sn degenerates to sin(pi*u/2).
	u := []float64{0.1, 0.25, 0.5, 0.75}
	w := SNE(u, 0, tol)
	for i, x := range u {
		want := math.Sin(x * math.Pi / 2)
		if !almostEqual(w[i], want, 1e-12) {
			t.Errorf("sn(%v; 0) = %v, want %v", x, w[i], want)
		}
	}
}

func TestCDEBoundaryValues(t *testing.T) {
	// cd(0)=1 and cd(K)=0.
	if got := real(CDE(0, 0.5, tol)); !almostEqual(got, 1, 1e-12) {
		t.Errorf("cd(0) = %v, want 1", got)
	}
	if got := real(CDE(1, 0.5, tol)); !almostEqual(got, 0, 1e-9) {
		t.Errorf("cd(K) = %v, want 0", got)
	}
}

func TestLandenConverges(t *testing.T) {
	v := Landen(0.9, tol)
	if len(v) == 0 {
		t.Fatal("empty Landen sequence for k=0.9")
	}
	last := v[len(v)-1]
	if last > tol {
		t.Errorf("sequence did not descend below tolerance: last=%v", last)
	}
	K := LandenK(v)
	if K <= math.Pi/2 {
		t.Errorf("K(0.9) = %v, want > pi/2", K)
	}
}
