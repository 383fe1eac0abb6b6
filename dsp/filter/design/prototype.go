package design

import (
	"fmt"
	"math"
	"math/cmplx"
)

// butterworthPrototype returns the order-n Butterworth analog lowpass
// prototype: n poles equally spaced on the unit circle's left half, no
// zeros, unity gain.
func butterworthPrototype(n int) zpk {
	p := make([]complex128, n)
	for k := range n {
		theta := math.Pi * float64(2*k+n+1) / float64(2*n)
		p[k] = cmplx.Exp(complex(0, theta))
	}
	return zpk{p: p, k: 1}
}

// chebyshev1Prototype returns the order-n Chebyshev type I analog lowpass
// prototype with rippleDB of passband ripple. Poles lie on an ellipse in
// the left half plane; there are no finite zeros.
func chebyshev1Prototype(n int, rippleDB float64) zpk {
	eps := math.Sqrt(math.Pow(10, rippleDB/10) - 1)
	mu := math.Asinh(1/eps) / float64(n)

	p := make([]complex128, 0, n)
	for m := -n + 1; m < n; m += 2 {
		theta := math.Pi * float64(m) / float64(2*n)
		p = append(p, -cmplx.Sinh(complex(mu, theta)))
	}

	k := real(prodNeg(p))
	if n%2 == 0 {
		k /= math.Sqrt(1 + eps*eps)
	}
	return zpk{p: p, k: k}
}

// chebyshev2Prototype returns the order-n Chebyshev type II (inverse
// Chebyshev) analog lowpass prototype with stopbandDB of minimum stopband
// attenuation. Zeros sit on the imaginary axis at the stopband edge.
func chebyshev2Prototype(n int, stopbandDB float64) zpk {
	de := 1 / math.Sqrt(math.Pow(10, stopbandDB/10)-1)
	mu := math.Asinh(1/de) / float64(n)

	z := make([]complex128, 0, n)
	for m := -n + 1; m < n; m += 2 {
		if n%2 == 1 && m == 0 {
			continue
		}
		theta := math.Pi * float64(m) / float64(2*n)
		z = append(z, -cmplx.Conj(complex(0, 1)/complex(math.Sin(theta), 0)))
	}

	p := make([]complex128, 0, n)
	for m := -n + 1; m < n; m += 2 {
		theta := math.Pi * float64(m) / float64(2*n)
		lp := -cmplx.Exp(complex(0, theta))
		inv := complex(math.Sinh(mu)*real(lp), math.Cosh(mu)*imag(lp))
		p = append(p, 1/inv)
	}

	k := real(prodNeg(p) / prodNeg(z))
	return zpk{z: z, p: p, k: k}
}

// besselPrototype returns the order-n Bessel (Thomson) analog lowpass
// prototype normalized to -3 dB at w = 1. The tabulated poles store one
// pole per conjugate pair, so each complex pole expands to its pair here.
func besselPrototype(n int) (zpk, error) {
	if n < 1 || n > maxBesselOrder {
		return zpk{}, fmt.Errorf("%w: bessel order %d outside [1, %d]", ErrUnsupportedFilter, n, maxBesselOrder)
	}

	scale := besselScaleFactors[n]
	p := make([]complex128, 0, n)
	for _, dp := range besselDelayPoles[n] {
		pole := complex(real(dp)/scale, imag(dp)/scale)
		p = append(p, pole)
		if imag(pole) != 0 {
			p = append(p, cmplx.Conj(pole))
		}
	}

	k := real(prodNeg(p))
	return zpk{p: p, k: k}, nil
}

// besselDelayPoles stores delay-normalized Bessel prototype poles for orders
// 1 to 10, one pole per conjugate pair (positive imaginary part) with the
// real pole of odd orders listed last.
//
// Source: C.R. Bond, "Bessel Filter Constants", crbond.com/papers/bsf.pdf.
var besselDelayPoles = [maxBesselOrder + 1][]complex128{
	// order 0: unused
	{},
	// order 1
	{complex(-1.0, 0)},
	// order 2
	{complex(-1.5, 0.8660254038)},
	// order 3
	{complex(-1.8389073227, 1.7543809598), complex(-2.3221853546, 0)},
	// order 4
	{complex(-2.1037893972, 2.6574180419), complex(-2.8962106028, 0.8672341289)},
	// order 5
	{
		complex(-2.3246743032, 3.5710229203),
		complex(-3.3519563992, 1.7426614162),
		complex(-3.6467385953, 0),
	},
	// order 6
	{
		complex(-2.5159322478, 4.4926729537),
		complex(-3.7357083563, 2.6262723114),
		complex(-4.2483593959, 0.8675096732),
	},
	// order 7
	{
		complex(-2.6856768789, 5.4206941307),
		complex(-4.0701391636, 3.5171740477),
		complex(-4.7582905282, 1.7392860613),
		complex(-4.9717868585, 0),
	},
	// order 8
	{
		complex(-2.8389839177, 6.3539112470),
		complex(-4.3682892668, 4.4144425006),
		complex(-5.2048407906, 2.6161751538),
		complex(-5.5878860022, 0.8676144454),
	},
	// order 9
	{
		complex(-2.9792607983, 7.2914651564),
		complex(-4.6384398714, 5.3172716754),
		complex(-5.6044218195, 3.4981415816),
		complex(-6.1293679040, 1.7378483835),
		complex(-6.2970079817, 0),
	},
	// order 10
	{
		complex(-3.1088931555, 8.2324678728),
		complex(-4.8862195924, 6.2249854825),
		complex(-5.9675283089, 4.3849471924),
		complex(-6.6152909655, 2.6115679208),
		complex(-6.9220449048, 0.8676594792),
	},
}

// besselScaleFactors converts the delay-normalized poles above to the
// -3 dB cutoff normalization.
//
// Source: C.R. Bond, "Bessel Filter Constants", crbond.com/papers/bsf.pdf.
var besselScaleFactors = [maxBesselOrder + 1]float64{
	0, // order 0: unused
	1.0,
	1.36165412871613,
	1.75567236868121,
	2.11391767490422,
	2.42741070215263,
	2.70339506120292,
	2.95172214703872,
	3.17961723751065,
	3.39169313891166,
	3.59098059456916,
}
