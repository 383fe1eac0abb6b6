package design

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/cwbudde/algo-denoise/dsp/filter/biquad"
)

const rootPairTol = 1e-4

// zpk is an analog or digital filter in zero-pole-gain form.
type zpk struct {
	z []complex128
	p []complex128
	k float64
}

func (f zpk) degree() (int, error) {
	d := len(f.p) - len(f.z)
	if d < 0 {
		return 0, fmt.Errorf("%w: more zeros than poles", ErrDesignFailure)
	}
	return d, nil
}

// designIIR runs the shared analog-prototype pipeline for a single-band spec:
// prototype -> frequency transform -> bilinear transform -> sections.
func designIIR(s Spec) ([]biquad.Coefficients, error) {
	proto, err := analogPrototype(s)
	if err != nil {
		return nil, err
	}

	// Pre-warp the cutoffs so the bilinear transform lands them exactly.
	// Normalized frequencies use the fs=2 convention throughout.
	const fs = 2.0
	nyquist := s.SampleRate / 2
	warped := make([]float64, len(s.Cutoffs))
	for i, f := range s.Cutoffs {
		warped[i] = 2 * fs * math.Tan(math.Pi*(f/nyquist)/fs)
	}

	var analog zpk
	switch s.Response {
	case Lowpass:
		analog, err = lp2lp(proto, warped[0])
	case Highpass:
		analog, err = lp2hp(proto, warped[0])
	case Bandpass:
		wo := math.Sqrt(warped[0] * warped[1])
		bw := warped[1] - warped[0]
		analog, err = lp2bp(proto, wo, bw)
	case Bandstop:
		wo := math.Sqrt(warped[0] * warped[1])
		bw := warped[1] - warped[0]
		analog, err = lp2bs(proto, wo, bw)
	default:
		return nil, fmt.Errorf("%w: response %v", ErrUnsupportedFilter, s.Response)
	}
	if err != nil {
		return nil, err
	}

	digital, err := bilinear(analog, fs)
	if err != nil {
		return nil, err
	}

	sections := zpkToSections(digital)
	if len(sections) == 0 {
		return nil, fmt.Errorf("%w: empty section list", ErrDesignFailure)
	}

	for _, sec := range sections {
		if !sec.IsFinite() {
			return nil, fmt.Errorf("%w: non-finite section coefficients", ErrDesignFailure)
		}
		if !sec.IsStable() {
			return nil, fmt.Errorf("%w: unstable pole in section", ErrDesignFailure)
		}
	}

	return sections, nil
}

func analogPrototype(s Spec) (zpk, error) {
	switch s.Family {
	case FamilyButterworth:
		return butterworthPrototype(s.Order), nil
	case FamilyChebyshev1:
		return chebyshev1Prototype(s.Order, s.RippleDB), nil
	case FamilyChebyshev2:
		return chebyshev2Prototype(s.Order, s.StopbandDB), nil
	case FamilyElliptic:
		return ellipticPrototype(s.Order, s.RippleDB, s.StopbandDB)
	case FamilyBessel:
		return besselPrototype(s.Order)
	default:
		return zpk{}, fmt.Errorf("%w: family %v has no analog prototype", ErrUnsupportedFilter, s.Family)
	}
}

// lp2lp scales a normalized lowpass prototype to cutoff wo (rad/s).
func lp2lp(f zpk, wo float64) (zpk, error) {
	degree, err := f.degree()
	if err != nil {
		return zpk{}, err
	}

	out := zpk{
		z: make([]complex128, len(f.z)),
		p: make([]complex128, len(f.p)),
		k: f.k * math.Pow(wo, float64(degree)),
	}
	for i, z := range f.z {
		out.z[i] = z * complex(wo, 0)
	}
	for i, p := range f.p {
		out.p[i] = p * complex(wo, 0)
	}
	return out, nil
}

// lp2hp transforms a lowpass prototype to a highpass response at wo.
func lp2hp(f zpk, wo float64) (zpk, error) {
	degree, err := f.degree()
	if err != nil {
		return zpk{}, err
	}

	out := zpk{
		z: make([]complex128, 0, len(f.z)+degree),
		p: make([]complex128, 0, len(f.p)),
	}
	for _, z := range f.z {
		if z == 0 {
			return zpk{}, fmt.Errorf("%w: zero at origin in lowpass prototype", ErrDesignFailure)
		}
		out.z = append(out.z, complex(wo, 0)/z)
	}
	for range degree {
		out.z = append(out.z, 0)
	}
	for _, p := range f.p {
		if p == 0 {
			return zpk{}, fmt.Errorf("%w: pole at origin in lowpass prototype", ErrDesignFailure)
		}
		out.p = append(out.p, complex(wo, 0)/p)
	}

	num := prodNeg(f.z)
	den := prodNeg(f.p)
	if den == 0 {
		return zpk{}, fmt.Errorf("%w: degenerate pole product", ErrDesignFailure)
	}
	out.k = f.k * real(num/den)
	return out, checkGain(out.k)
}

// lp2bp transforms a lowpass prototype to a bandpass response centered at wo
// with bandwidth bw.
func lp2bp(f zpk, wo, bw float64) (zpk, error) {
	degree, err := f.degree()
	if err != nil {
		return zpk{}, err
	}

	out := zpk{
		z: make([]complex128, 0, 2*len(f.z)+degree),
		p: make([]complex128, 0, 2*len(f.p)),
		k: f.k * math.Pow(bw, float64(degree)),
	}
	half := complex(bw/2, 0)
	wo2 := complex(wo*wo, 0)

	for _, z := range f.z {
		lp := z * half
		d := cmplx.Sqrt(lp*lp - wo2)
		out.z = append(out.z, lp+d, lp-d)
	}
	for range degree {
		out.z = append(out.z, 0)
	}
	for _, p := range f.p {
		lp := p * half
		d := cmplx.Sqrt(lp*lp - wo2)
		out.p = append(out.p, lp+d, lp-d)
	}
	return out, checkGain(out.k)
}

// lp2bs transforms a lowpass prototype to a bandstop response centered at wo
// with bandwidth bw. A degenerate bandwidth surfaces as a design failure.
func lp2bs(f zpk, wo, bw float64) (zpk, error) {
	degree, err := f.degree()
	if err != nil {
		return zpk{}, err
	}

	out := zpk{
		z: make([]complex128, 0, 2*len(f.z)+2*degree),
		p: make([]complex128, 0, 2*len(f.p)),
	}
	half := complex(bw/2, 0)
	wo2 := complex(wo*wo, 0)

	for _, z := range f.z {
		if z == 0 {
			return zpk{}, fmt.Errorf("%w: zero at origin in lowpass prototype", ErrDesignFailure)
		}
		hp := half / z
		d := cmplx.Sqrt(hp*hp - wo2)
		out.z = append(out.z, hp+d, hp-d)
	}
	for range degree {
		out.z = append(out.z, complex(0, wo), complex(0, -wo))
	}
	for _, p := range f.p {
		if p == 0 {
			return zpk{}, fmt.Errorf("%w: pole at origin in lowpass prototype", ErrDesignFailure)
		}
		hp := half / p
		d := cmplx.Sqrt(hp*hp - wo2)
		out.p = append(out.p, hp+d, hp-d)
	}

	num := prodNeg(f.z)
	den := prodNeg(f.p)
	if den == 0 {
		return zpk{}, fmt.Errorf("%w: degenerate pole product", ErrDesignFailure)
	}
	out.k = f.k * real(num/den)
	return out, checkGain(out.k)
}

// bilinear maps an analog zpk to the digital plane via the bilinear
// transform z = (2fs + s) / (2fs - s), placing excess zeros at z = -1.
func bilinear(f zpk, fs float64) (zpk, error) {
	degree, err := f.degree()
	if err != nil {
		return zpk{}, err
	}

	fs2 := complex(2*fs, 0)
	out := zpk{
		z: make([]complex128, 0, len(f.z)+degree),
		p: make([]complex128, 0, len(f.p)),
	}

	for _, z := range f.z {
		den := fs2 - z
		if den == 0 {
			return zpk{}, fmt.Errorf("%w: zero at 2*fs", ErrDesignFailure)
		}
		out.z = append(out.z, (fs2+z)/den)
	}
	for range degree {
		out.z = append(out.z, -1)
	}
	for _, p := range f.p {
		den := fs2 - p
		if den == 0 {
			return zpk{}, fmt.Errorf("%w: pole at 2*fs", ErrDesignFailure)
		}
		out.p = append(out.p, (fs2+p)/den)
	}

	num := complex(1, 0)
	for _, z := range f.z {
		num *= fs2 - z
	}
	den := complex(1, 0)
	for _, p := range f.p {
		den *= fs2 - p
	}
	if den == 0 {
		return zpk{}, fmt.Errorf("%w: degenerate bilinear denominator", ErrDesignFailure)
	}

	out.k = f.k * real(num/den)
	return out, checkGain(out.k)
}

func checkGain(k float64) error {
	if k == 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return fmt.Errorf("%w: degenerate gain %v", ErrDesignFailure, k)
	}
	return nil
}

// zpkToSections groups conjugate root pairs into second-order sections and
// folds the overall gain into the first section's numerator.
func zpkToSections(f zpk) []biquad.Coefficients {
	if len(f.p) == 0 {
		return nil
	}

	pGroups := groupRoots(f.p)
	zGroups := groupRoots(f.z)

	if len(pGroups) == 0 {
		return nil
	}

	sort.Slice(pGroups, func(i, j int) bool {
		if len(pGroups[i]) != len(pGroups[j]) {
			return len(pGroups[i]) > len(pGroups[j])
		}
		return groupImagAbs(pGroups[i]) > groupImagAbs(pGroups[j])
	})

	var zComplex, zSingle [][]complex128
	for _, g := range zGroups {
		if len(g) == 2 {
			zComplex = append(zComplex, g)
		} else {
			zSingle = append(zSingle, g)
		}
	}

	out := make([]biquad.Coefficients, 0, len(pGroups))
	for _, pg := range pGroups {
		var zg []complex128

		if len(pg) == 2 {
			if len(zComplex) > 0 {
				zg = zComplex[0]
				zComplex = zComplex[1:]
			} else if len(zSingle) > 0 {
				zg = zSingle[0]
				zSingle = zSingle[1:]
			}
		} else {
			if len(zSingle) > 0 {
				zg = zSingle[0]
				zSingle = zSingle[1:]
			} else if len(zComplex) > 0 {
				zg = zComplex[0]
				zComplex = zComplex[1:]
			}
		}

		b1, b2 := quadFromRoots(zg)
		a1, a2 := quadFromRoots(pg)
		out = append(out, biquad.Coefficients{
			B0: 1, B1: b1, B2: b2,
			A1: a1, A2: a2,
		})
	}

	if !math.IsNaN(f.k) && !math.IsInf(f.k, 0) && f.k != 0 {
		out[0].B0 *= f.k
		out[0].B1 *= f.k
		out[0].B2 *= f.k
	}

	return out
}

// groupRoots pairs each complex root with its conjugate and couples leftover
// real roots two at a time.
func groupRoots(roots []complex128) [][]complex128 {
	if len(roots) == 0 {
		return nil
	}

	sortedRoots := append([]complex128(nil), roots...)
	sort.Slice(sortedRoots, func(i, j int) bool {
		ii := imag(sortedRoots[i])
		jj := imag(sortedRoots[j])
		if ii != jj {
			return ii > jj
		}
		return real(sortedRoots[i]) < real(sortedRoots[j])
	})

	used := make([]bool, len(sortedRoots))
	groups := make([][]complex128, 0, (len(sortedRoots)+1)/2)
	reals := make([]complex128, 0, len(sortedRoots))

	for i, r := range sortedRoots {
		if used[i] {
			continue
		}

		if math.Abs(imag(r)) <= rootPairTol {
			used[i] = true
			reals = append(reals, complex(real(r), 0))
			continue
		}

		target := cmplx.Conj(r)
		best := -1
		bestDist := math.MaxFloat64

		for j, rr := range sortedRoots {
			if i == j || used[j] {
				continue
			}
			d := cmplx.Abs(rr - target)
			if d < bestDist {
				bestDist = d
				best = j
			}
		}

		used[i] = true
		if best != -1 && bestDist <= rootPairTol {
			used[best] = true
			groups = append(groups, []complex128{r, sortedRoots[best]})
		} else {
			groups = append(groups, []complex128{r})
		}
	}

	sort.Slice(reals, func(i, j int) bool { return real(reals[i]) < real(reals[j]) })

	for i := 0; i+1 < len(reals); i += 2 {
		groups = append(groups, []complex128{reals[i], reals[i+1]})
	}
	if len(reals)%2 == 1 {
		groups = append(groups, []complex128{reals[len(reals)-1]})
	}

	return groups
}

func groupImagAbs(g []complex128) float64 {
	maxImag := 0.0
	for _, r := range g {
		if a := math.Abs(imag(r)); a > maxImag {
			maxImag = a
		}
	}
	return maxImag
}

// quadFromRoots expands a root group into monic quadratic coefficients
// (x^2 + c1*x + c2), returning (c1, c2).
func quadFromRoots(group []complex128) (float64, float64) {
	switch len(group) {
	case 0:
		return 0, 0
	case 1:
		r := group[0]
		return -real(r), 0
	default:
		r1, r2 := group[0], group[1]
		return -real(r1 + r2), real(r1 * r2)
	}
}

func prodNeg(v []complex128) complex128 {
	out := complex(1, 0)
	for _, x := range v {
		out *= -x
	}
	return out
}
