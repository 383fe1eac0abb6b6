// Package apply runs signals through designed filter coefficients.
//
// Causal mode filters forward only. Zero-phase mode removes all phase
// distortion by filtering forward and backward, which matters whenever the
// output feeds correlation-based metrics: an IIR cascade's nonlinear phase
// would otherwise misalign the filtered signal against its reference.
package apply

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-denoise/dsp/conv"
	"github.com/cwbudde/algo-denoise/dsp/filter/biquad"
	"github.com/cwbudde/algo-denoise/dsp/filter/design"
)

// ErrSignalTooShort is returned when the signal is shorter than the
// filter's effective order and edge effects would dominate the output.
// Callers should treat this as a parameter misconfiguration.
var ErrSignalTooShort = errors.New("apply: signal shorter than filter order")

// Mode selects how coefficients are applied to the signal.
type Mode int

const (
	// Causal filters forward only. FIR group delay is compensated by a
	// circular shift; IIR phase distortion is left in place.
	Causal Mode = iota

	// ZeroPhase filters forward then backward for zero net phase shift,
	// at the cost of non-causality and roughly double the computation.
	ZeroPhase
)

// String returns the lowercase mode name.
func (m Mode) String() string {
	switch m {
	case Causal:
		return "causal"
	case ZeroPhase:
		return "zero-phase"
	default:
		return fmt.Sprintf("apply.Mode(%d)", int(m))
	}
}

// ParseMode maps a mode name to its Mode value.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "causal":
		return Causal, nil
	case "zero-phase", "zerophase", "zero_phase":
		return ZeroPhase, nil
	default:
		return 0, fmt.Errorf("apply: unknown mode %q", name)
	}
}

// Apply filters x with the given coefficients and returns a new slice of
// the same length. x is never modified.
func Apply(c design.Coefficients, x []float64, mode Mode) ([]float64, error) {
	if len(x) < c.Order() {
		return nil, fmt.Errorf("%w: %d samples, order %d", ErrSignalTooShort, len(x), c.Order())
	}

	if c.IsFIR() {
		return applyFIR(c.Taps(), x)
	}

	switch mode {
	case Causal:
		out := make([]float64, len(x))
		copy(out, x)
		biquad.NewChain(c.Sections()).ProcessBlock(out)
		return out, nil
	case ZeroPhase:
		return filtfilt(c.Sections(), x)
	default:
		return nil, fmt.Errorf("apply: unknown mode %v", mode)
	}
}

// applyFIR convolves x with the taps and compensates the constant group
// delay of a linear-phase filter by circularly shifting the output left by
// order/2 samples. The wrap is an approximation: the true delay leaves
// order/2 tail samples unfilled, so a small bounded artifact remains at the
// signal boundary. Linear-phase taps have zero residual phase after this
// shift, which is why FIR needs no separate zero-phase pass.
func applyFIR(taps, x []float64) ([]float64, error) {
	full, err := conv.Convolve(x, taps)
	if err != nil {
		return nil, err
	}

	n := len(x)
	delay := (len(taps) - 1) / 2

	out := make([]float64, n)
	for i := range out {
		out[i] = full[(i+delay)%n]
	}
	return out, nil
}

// filtfilt runs the cascade forward and backward over an odd-reflection
// extension of the signal. The extension gives the filter a ramp-in region,
// and each pass starts from the DC steady state for the extension's first
// sample, so startup transients decay before the real samples begin.
func filtfilt(sections []biquad.Coefficients, x []float64) ([]float64, error) {
	n := len(x)

	padlen := 3 * (2*len(sections) + 1)
	if padlen >= n {
		padlen = n - 1
	}

	ext := make([]float64, n+2*padlen)
	for i := range padlen {
		ext[i] = 2*x[0] - x[padlen-i]
	}
	copy(ext[padlen:], x)
	for i := range padlen {
		ext[padlen+n+i] = 2*x[n-1] - x[n-2-i]
	}

	chain := biquad.NewChain(sections)

	chain.PrimeDC(ext[0])
	chain.ProcessBlock(ext)
	reverse(ext)

	chain.PrimeDC(ext[0])
	chain.ProcessBlock(ext)
	reverse(ext)

	out := make([]float64, n)
	copy(out, ext[padlen:padlen+n])
	return out, nil
}

func reverse(v []float64) {
	for i, j := 0, len(v)-1; i < j; i, j = i+1, j-1 {
		v[i], v[j] = v[j], v[i]
	}
}
