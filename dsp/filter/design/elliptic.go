package design

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-denoise/internal/ellipticmath"
)

const (
	ellipticTol       = 2.2e-16
	ellipticEpsilon   = 2.220446049250313e-16
	arcJacSNMaxIter   = 10
	arcJacImagCheck   = 1e-7
	ellipticSeriesLen = 7
)

// ellipticPrototype returns the order-n elliptic (Cauer) analog lowpass
// prototype with rippleDB of passband ripple and stopbandDB of minimum
// stopband attenuation. Poles and zeros are placed via Jacobi elliptic
// functions; order 1 degenerates to a single real pole.
func ellipticPrototype(n int, rippleDB, stopbandDB float64) (zpk, error) {
	epsSq := dbToMinusOne(rippleDB)
	stopSq := dbToMinusOne(stopbandDB)
	if epsSq <= 0 || stopSq <= 0 {
		return zpk{}, fmt.Errorf("%w: degenerate elliptic ripple parameters", ErrDesignFailure)
	}

	ck1Sq := epsSq / stopSq
	if !(ck1Sq > 0 && ck1Sq < 1) {
		return zpk{}, fmt.Errorf("%w: elliptic selectivity out of range", ErrDesignFailure)
	}

	if n == 1 {
		p := -math.Sqrt(1.0 / epsSq)
		return zpk{p: []complex128{complex(p, 0)}, k: -p}, nil
	}

	m := ellipdegParam(n, ck1Sq, ellipticTol)
	if !(m > 0 && m < 1) {
		return zpk{}, fmt.Errorf("%w: elliptic degree equation failed", ErrDesignFailure)
	}

	kmod := math.Sqrt(m)
	capk, _ := ellipticmath.EllipK(kmod, ellipticTol)
	ck1 := math.Sqrt(ck1Sq)

	val0, _ := ellipticmath.EllipK(ck1, ellipticTol)
	if capk == 0 || val0 == 0 || !isFiniteFloat(capk) || !isFiniteFloat(val0) {
		return zpk{}, fmt.Errorf("%w: elliptic integral evaluation failed", ErrDesignFailure)
	}

	start := 1 - n%2
	svals := make([]float64, 0, (n+1)/2)
	cvals := make([]float64, 0, (n+1)/2)
	dvals := make([]float64, 0, (n+1)/2)
	zerosBase := make([]complex128, 0, n)

	for j := start; j < n; j += 2 {
		u := float64(j) * capk / float64(n)

		sn, cn, dn, err := jacobiSCD(u, kmod, ellipticTol)
		if err != nil {
			return zpk{}, err
		}

		svals = append(svals, sn)
		cvals = append(cvals, cn)
		dvals = append(dvals, dn)

		if math.Abs(sn) > ellipticEpsilon {
			zerosBase = append(zerosBase, complex(0, 1)/complex(kmod*sn, 0))
		}
	}

	eps := math.Sqrt(epsSq)

	r := arcJacSC1(1.0/eps, ck1Sq, ellipticTol)
	if !(r > 0) || !isFiniteFloat(r) {
		return zpk{}, fmt.Errorf("%w: inverse Jacobi sc evaluation failed", ErrDesignFailure)
	}

	v0 := capk * r / (float64(n) * val0)

	sv, cv, dv, err := jacobiSCD(v0, math.Sqrt(1.0-m), ellipticTol)
	if err != nil {
		return zpk{}, err
	}

	polesBase := make([]complex128, len(svals))
	for i := range svals {
		den := 1.0 - (dvals[i]*sv)*(dvals[i]*sv)
		if math.Abs(den) <= ellipticEpsilon {
			return zpk{}, fmt.Errorf("%w: coincident elliptic poles", ErrDesignFailure)
		}

		num := complex(cvals[i]*dvals[i]*sv*cv, svals[i]*dv)
		polesBase[i] = -num / complex(den, 0)
	}

	poles := make([]complex128, 0, n)
	if n%2 == 1 {
		norm2 := 0.0
		for _, p := range polesBase {
			norm2 += real(p * cmplx.Conj(p))
		}
		thr := ellipticEpsilon * math.Sqrt(norm2)

		poles = append(poles, polesBase...)
		for _, p := range polesBase {
			if math.Abs(imag(p)) > thr {
				poles = append(poles, cmplx.Conj(p))
			}
		}
	} else {
		poles = append(poles, polesBase...)
		for _, p := range polesBase {
			poles = append(poles, cmplx.Conj(p))
		}
	}

	zeros := make([]complex128, 0, len(zerosBase)*2)
	for _, z := range zerosBase {
		zeros = append(zeros, z, cmplx.Conj(z))
	}

	prodZ := complex(1, 0)
	if len(zeros) > 0 {
		prodZ = prodNeg(zeros)
	}
	if prodZ == 0 {
		return zpk{}, fmt.Errorf("%w: degenerate elliptic zero product", ErrDesignFailure)
	}

	gain := real(prodNeg(poles) / prodZ)
	if n%2 == 0 {
		gain /= math.Sqrt(1.0 + epsSq)
	}
	if err := checkGain(gain); err != nil {
		return zpk{}, err
	}

	return zpk{z: zeros, p: poles, k: gain}, nil
}

// jacobiSCD evaluates sn, cn and dn at a real argument in K(k) units.
func jacobiSCD(uAbs, k, tol float64) (float64, float64, float64, error) {
	if !(k >= 0 && k < 1) {
		return 0, 0, 0, fmt.Errorf("%w: jacobi modulus %v outside [0, 1)", ErrDesignFailure, k)
	}

	K, _ := ellipticmath.EllipK(k, tol)
	if K == 0 || !isFiniteFloat(K) {
		return 0, 0, 0, fmt.Errorf("%w: elliptic integral evaluation failed", ErrDesignFailure)
	}

	uNorm := uAbs / K

	sn := ellipticmath.SNE([]float64{uNorm}, k, tol)[0]
	if !isFiniteFloat(sn) {
		return 0, 0, 0, fmt.Errorf("%w: jacobi sn diverged", ErrDesignFailure)
	}

	dn2 := 1.0 - k*k*sn*sn
	if dn2 < -1e-12 {
		return 0, 0, 0, fmt.Errorf("%w: jacobi dn argument negative", ErrDesignFailure)
	}
	if dn2 < 0 {
		dn2 = 0
	}

	dn := math.Sqrt(dn2)
	cd := real(ellipticmath.CDE(complex(uNorm, 0), k, tol))
	cn := cd * dn

	return sn, cn, dn, nil
}

// arcJacSC1 evaluates the real inverse sc function via asn on the
// imaginary axis. A non-negligible real part signals divergence.
func arcJacSC1(w, m, tol float64) float64 {
	z := arcJacSN(complex(0, w), m, tol)
	if math.Abs(real(z)) > arcJacImagCheck*math.Max(1.0, math.Abs(imag(z))) {
		return math.NaN()
	}
	return imag(z)
}

func jacobiComplement(k complex128) complex128 {
	return cmplx.Sqrt((1.0 - k) * (1.0 + k))
}

// arcJacSN computes the inverse Jacobi sn function by iterating the
// ascending Landen recurrence on the argument.
func arcJacSN(w complex128, m, _ float64) complex128 {
	if m < 0 || m > 1 {
		return complex(math.NaN(), math.NaN())
	}

	k := complex(math.Sqrt(m), 0)
	if real(k) == 1 {
		return cmplx.Atanh(w)
	}

	ks := []complex128{k}
	for range arcJacSNMaxIter - 1 {
		kn := ks[len(ks)-1]
		if cmplx.Abs(kn) == 0 {
			break
		}

		kp := jacobiComplement(kn)
		ks = append(ks, (1.0-kp)/(1.0+kp))
	}

	K := 1.0
	for i := 1; i < len(ks); i++ {
		K *= real(1.0 + ks[i])
	}
	K *= math.Pi * 0.5

	wn := w
	for i := range len(ks) - 1 {
		kn := ks[i]
		knext := ks[i+1]

		den := (1.0 + knext) * (1.0 + jacobiComplement(kn*wn))
		if den == 0 {
			return complex(math.NaN(), math.NaN())
		}

		wn = 2.0 * wn / den
	}

	u := (2.0 / math.Pi) * cmplx.Asin(wn)

	return complex(K, 0) * u
}

// ellipdegParam solves the elliptic degree equation for the prototype
// modulus squared via a truncated theta-function nome series.
func ellipdegParam(n int, m1, tol float64) float64 {
	if n <= 0 || !(m1 > 0 && m1 < 1) {
		return math.NaN()
	}

	k1 := math.Sqrt(m1)
	K1, _ := ellipticmath.EllipK(k1, tol)

	K1p, _ := ellipticmath.EllipK(math.Sqrt(1.0-m1), tol)
	if K1 <= 0 || K1p <= 0 || !isFiniteFloat(K1) || !isFiniteFloat(K1p) {
		return math.NaN()
	}

	q1 := math.Exp(-math.Pi * K1p / K1)
	q := math.Pow(q1, 1.0/float64(n))

	num := 0.0
	for mnum := range ellipticSeriesLen {
		num += math.Pow(q, float64(mnum*(mnum+1)))
	}

	den := 1.0
	for mnum := 1; mnum < ellipticSeriesLen; mnum++ {
		den += 2.0 * math.Pow(q, float64(mnum*mnum))
	}

	return 16.0 * q * math.Pow(num/den, 4.0)
}

// dbToMinusOne converts a dB figure to 10^(db/10) - 1 without cancellation.
func dbToMinusOne(db float64) float64 {
	return math.Expm1(math.Ln10 * db / 10.0)
}

func isFiniteFloat(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
