// Package design produces filter coefficients from a declarative Spec.
//
// Two representations come out of a design call: windowed-sinc FIR taps
// (linear phase, constant group delay) and IIR second-order-section cascades
// (Butterworth, Chebyshev I/II, elliptic, Bessel). All IIR families share one
// pipeline: an analog lowpass prototype in zero-pole-gain form, a frequency
// transform to the requested response, the bilinear transform, and
// conjugate-pair grouping into biquad sections.
//
// Multi-band suppression differs between the representations: FIR designs
// fold every stop band into a single linear-phase filter, while IIR designs
// chain one bandstop cascade per band. The chained cascades accumulate each
// band's phase and group-delay contributions, which is why the evaluation
// pipeline applies them in zero-phase mode.
package design

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-denoise/dsp/filter/biquad"
	"github.com/cwbudde/algo-denoise/dsp/window"
)

// Errors returned by filter design.
var (
	ErrInvalidCutoff     = errors.New("design: invalid cutoff")
	ErrUnsupportedFilter = errors.New("design: unsupported filter")
	ErrDesignFailure     = errors.New("design: numerical failure")
)

// Family identifies the filter approximation family.
type Family int

const (
	// FamilyButterworth is first so a zero-valued Spec designs the
	// maximally flat default.
	FamilyButterworth Family = iota
	FamilyFIR
	FamilyChebyshev1
	FamilyChebyshev2
	FamilyElliptic
	FamilyBessel
)

// String returns the lowercase family name.
func (f Family) String() string {
	switch f {
	case FamilyFIR:
		return "fir"
	case FamilyButterworth:
		return "butterworth"
	case FamilyChebyshev1:
		return "cheby1"
	case FamilyChebyshev2:
		return "cheby2"
	case FamilyElliptic:
		return "elliptic"
	case FamilyBessel:
		return "bessel"
	default:
		return fmt.Sprintf("design.Family(%d)", int(f))
	}
}

// ParseFamily maps a family name to its Family value.
func ParseFamily(name string) (Family, error) {
	switch name {
	case "fir":
		return FamilyFIR, nil
	case "butterworth", "butter":
		return FamilyButterworth, nil
	case "cheby1", "chebyshev1":
		return FamilyChebyshev1, nil
	case "cheby2", "chebyshev2":
		return FamilyChebyshev2, nil
	case "elliptic", "ellip", "cauer":
		return FamilyElliptic, nil
	case "bessel":
		return FamilyBessel, nil
	default:
		return 0, fmt.Errorf("%w: unknown family %q", ErrUnsupportedFilter, name)
	}
}

// Response identifies the frequency response type.
type Response int

const (
	Lowpass Response = iota
	Highpass
	Bandpass
	Bandstop
)

// String returns the lowercase response name.
func (r Response) String() string {
	switch r {
	case Lowpass:
		return "lowpass"
	case Highpass:
		return "highpass"
	case Bandpass:
		return "bandpass"
	case Bandstop:
		return "bandstop"
	default:
		return fmt.Sprintf("design.Response(%d)", int(r))
	}
}

// Spec declares a filter to design. Cutoffs are in Hz: one value for
// lowpass/highpass, a [low, high] pair for bandpass, and one or more pairs
// for bandstop (multiple pairs suppress several disjoint bands at once).
type Spec struct {
	Family     Family
	Response   Response
	Order      int
	Cutoffs    []float64
	SampleRate float64

	// RippleDB is the passband ripple for Chebyshev I and elliptic designs.
	RippleDB float64
	// StopbandDB is the minimum stopband attenuation for Chebyshev II and
	// elliptic designs.
	StopbandDB float64

	// Window selects the FIR design window; KaiserBeta applies only to
	// window.TypeKaiser.
	Window     window.Type
	KaiserBeta float64
}

const maxBesselOrder = 10

// Validate checks the spec for structural and numeric consistency.
func (s Spec) Validate() error {
	if s.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be > 0: %f", ErrInvalidCutoff, s.SampleRate)
	}
	if s.Order < 1 {
		return fmt.Errorf("%w: order must be >= 1: %d", ErrUnsupportedFilter, s.Order)
	}

	switch s.Family {
	case FamilyFIR, FamilyButterworth, FamilyChebyshev1, FamilyChebyshev2, FamilyElliptic, FamilyBessel:
	default:
		return fmt.Errorf("%w: family %v", ErrUnsupportedFilter, s.Family)
	}

	switch s.Response {
	case Lowpass, Highpass:
		if len(s.Cutoffs) != 1 {
			return fmt.Errorf("%w: %v needs exactly one cutoff, got %d", ErrInvalidCutoff, s.Response, len(s.Cutoffs))
		}
	case Bandpass:
		if len(s.Cutoffs) != 2 {
			return fmt.Errorf("%w: bandpass needs a [low, high] pair, got %d values", ErrInvalidCutoff, len(s.Cutoffs))
		}
	case Bandstop:
		if len(s.Cutoffs) == 0 || len(s.Cutoffs)%2 != 0 {
			return fmt.Errorf("%w: bandstop needs one or more [low, high] pairs, got %d values", ErrInvalidCutoff, len(s.Cutoffs))
		}
	default:
		return fmt.Errorf("%w: response %v", ErrUnsupportedFilter, s.Response)
	}

	nyquist := s.SampleRate / 2
	for _, f := range s.Cutoffs {
		w := f / nyquist
		if !(w > 0 && w < 1) {
			return fmt.Errorf("%w: %g Hz outside (0, %g)", ErrInvalidCutoff, f, nyquist)
		}
	}

	// Paired cutoffs must ascend, and multi-band pairs must not overlap.
	if s.Response == Bandpass || s.Response == Bandstop {
		prev := 0.0
		for i := 0; i < len(s.Cutoffs); i += 2 {
			lo, hi := s.Cutoffs[i], s.Cutoffs[i+1]
			if lo >= hi {
				return fmt.Errorf("%w: band [%g, %g] Hz has low >= high", ErrInvalidCutoff, lo, hi)
			}
			if lo <= prev {
				return fmt.Errorf("%w: band [%g, %g] Hz overlaps the previous band", ErrInvalidCutoff, lo, hi)
			}
			prev = hi
		}
	}

	switch s.Family {
	case FamilyChebyshev1:
		if s.RippleDB <= 0 {
			return fmt.Errorf("%w: cheby1 needs passband ripple > 0 dB", ErrUnsupportedFilter)
		}
	case FamilyChebyshev2:
		if s.StopbandDB <= 0 {
			return fmt.Errorf("%w: cheby2 needs stopband attenuation > 0 dB", ErrUnsupportedFilter)
		}
	case FamilyElliptic:
		if s.RippleDB <= 0 || s.StopbandDB <= s.RippleDB {
			return fmt.Errorf("%w: elliptic needs 0 < ripple < stopband attenuation", ErrUnsupportedFilter)
		}
	case FamilyBessel:
		if s.Order > maxBesselOrder {
			return fmt.Errorf("%w: bessel prototype poles tabulated up to order %d, got %d", ErrUnsupportedFilter, maxBesselOrder, s.Order)
		}
	}

	return nil
}

// Design validates the spec and produces coefficients for it.
func Design(s Spec) (Coefficients, error) {
	if err := s.Validate(); err != nil {
		return Coefficients{}, err
	}

	if s.Family == FamilyFIR {
		taps, err := designFIR(s)
		if err != nil {
			return Coefficients{}, err
		}
		return Coefficients{taps: taps, sampleRate: s.SampleRate}, nil
	}

	// Multi-band IIR bandstop: one cascade per band, section lists
	// concatenated (serially chained notch filters).
	if s.Response == Bandstop && len(s.Cutoffs) > 2 {
		var sections []biquad.Coefficients
		for i := 0; i < len(s.Cutoffs); i += 2 {
			band := s
			band.Cutoffs = s.Cutoffs[i : i+2]
			part, err := designIIR(band)
			if err != nil {
				return Coefficients{}, err
			}
			sections = append(sections, part...)
		}
		return Coefficients{sections: sections, sampleRate: s.SampleRate}, nil
	}

	sections, err := designIIR(s)
	if err != nil {
		return Coefficients{}, err
	}
	return Coefficients{sections: sections, sampleRate: s.SampleRate}, nil
}
