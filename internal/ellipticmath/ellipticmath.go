// Package ellipticmath provides the Jacobi elliptic functions and complete
// elliptic integrals needed by elliptic (Cauer) filter design.
//
// All routines use the descending Landen transformation, which converges
// quadratically for moduli away from 1 and avoids the conditioning problems
// of direct series evaluation.
package ellipticmath

import (
	"math"
	"math/cmplx"
)

// Landen computes the descending Landen sequence of moduli for k.
// tol < 1 is a convergence threshold; tol >= 1 is a fixed iteration count.
func Landen(k, tol float64) []float64 {
	if k == 0 || k == 1.0 {
		return []float64{k}
	}

	var v []float64
	if tol < 1 {
		for k > tol {
			t := k / (1.0 + math.Sqrt((1-k)*(1+k)))
			k = t * t
			v = append(v, k)
		}
	} else {
		for range int(tol) {
			t := k / (1.0 + math.Sqrt((1-k)*(1+k)))
			k = t * t
			v = append(v, k)
		}
	}

	return v
}

// LandenK evaluates K(k) = (pi/2) * prod(1 + v[i]) from a Landen sequence.
func LandenK(v []float64) float64 {
	prod := 1.0
	for _, x := range v {
		prod *= 1.0 + x
	}
	return prod * math.Pi * 0.5
}

// EllipK computes the complete elliptic integrals K(k) and K'(k).
// Moduli very close to 0 or 1 switch to logarithmic expansions.
func EllipK(k, tol float64) (float64, float64) {
	const kmin = 1e-6
	kmax := math.Sqrt(1 - kmin*kmin)

	var K, Kp float64

	switch {
	case k == 1.0:
		K = math.Inf(1)
	case k > kmax:
		kp := math.Sqrt((1 - k) * (1 + k))
		L := -math.Log(kp / 4.0)
		K = L + (L-1)*kp*kp/4.0
	default:
		K = LandenK(Landen(k, tol))
	}

	switch {
	case k == 0.0:
		Kp = math.Inf(1)
	case k < kmin:
		L := -math.Log(k / 4.0)
		Kp = L + (L-1.0)*k*k/4.0
	default:
		kp := math.Sqrt((1 - k) * (1 + k))
		Kp = LandenK(Landen(kp, tol))
	}

	return K, Kp
}

// SNE computes the Jacobi sn function for real arguments normalized by K(k).
func SNE(u []float64, k, tol float64) []float64 {
	v := Landen(k, tol)

	w := make([]float64, len(u))
	for i := range u {
		w[i] = math.Sin(u[i] * math.Pi * 0.5)
	}
	for i := len(v) - 1; i >= 0; i-- {
		for j := range w {
			w[j] = ((1 + v[i]) * w[j]) / (1 + v[i]*w[j]*w[j])
		}
	}

	return w
}

// CDE computes the Jacobi cd function for a complex argument normalized
// by K(k).
func CDE(u complex128, k, tol float64) complex128 {
	v := Landen(k, tol)

	w := cmplx.Cos(u * math.Pi * 0.5)
	for i := len(v) - 1; i >= 0; i-- {
		w = (1 + complex(v[i], 0)) * w / (1.0 + complex(v[i], 0)*w*w)
	}

	return w
}
