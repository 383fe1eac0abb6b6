package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-denoise/audioio"
	"github.com/cwbudde/algo-denoise/dsp/filter/apply"
	"github.com/cwbudde/algo-denoise/dsp/filter/design"
	"github.com/cwbudde/algo-denoise/dsp/noise"
	"github.com/cwbudde/algo-denoise/measure/quality"
)

// ProcessPair runs the full chain for one pairing: decode both files,
// choose a filter, apply it, score the result and encode the filtered
// output. Every failure is captured in the returned Result instead of
// propagating.
func (r *Runner) ProcessPair(p Pair) Result {
	res := Result{Pair: p}

	clean, err := audioio.Decode(p.CleanPath)
	if err != nil {
		res.Err = err
		return res
	}
	noisy, err := audioio.Decode(p.NoisyPath)
	if err != nil {
		res.Err = err
		return res
	}

	if clean.SampleRate != noisy.SampleRate {
		res.Err = fmt.Errorf("pipeline: sample rate mismatch: clean %d Hz, noisy %d Hz",
			clean.SampleRate, noisy.SampleRate)
		return res
	}

	sr := float64(noisy.SampleRate)

	var filtered []float64
	switch r.cfg.Mode {
	case ModeFixed:
		filtered, err = r.applyFixed(noisy.Samples, sr)
	default:
		filtered, res.Bands, err = r.applyDetected(clean.Samples, noisy.Samples, sr)
	}
	if err != nil {
		res.Err = err
		return res
	}

	report, err := quality.Evaluate(clean.Samples, filtered, sr)
	if err != nil {
		res.Err = err
		return res
	}
	res.Report = report

	outPath := filepath.Join(r.cfg.OutputDir, filteredName(p.Name))
	if err := audioio.Encode(outPath, &audioio.Clip{
		Samples:    filtered,
		SampleRate: noisy.SampleRate,
	}); err != nil {
		res.Err = err
		return res
	}
	res.OutputPath = outPath

	r.log.Debug("pair processed",
		zap.String("file", p.Name),
		zap.Int("bands", len(res.Bands)),
		zap.Float64("snr_db", report.SNRdB),
	)
	return res
}

// applyDetected designs a bandstop over the detected noise bands and
// applies it. With no detected band the noisy signal passes through
// unchanged.
func (r *Runner) applyDetected(clean, noisy []float64, sr float64) ([]float64, []noise.Band, error) {
	bands, err := noise.DetectSignals(clean, noisy, sr,
		noise.WithThresholdDB(r.cfg.ThresholdDB))
	if err != nil {
		return nil, nil, err
	}

	cutoffs := bandCutoffs(bands, sr, r.cfg.BandPaddingHz)
	if len(cutoffs) == 0 {
		out := make([]float64, len(noisy))
		copy(out, noisy)
		return out, bands, nil
	}

	coeffs, err := design.Design(design.Spec{
		Family:     r.cfg.Family,
		Response:   design.Bandstop,
		Order:      r.cfg.Order,
		Cutoffs:    cutoffs,
		SampleRate: sr,
		RippleDB:   r.cfg.RippleDB,
		StopbandDB: r.cfg.StopbandDB,
		Window:     r.cfg.Window,
		KaiserBeta: r.cfg.KaiserBeta,
	})
	if err != nil {
		return nil, nil, err
	}

	out, err := apply.Apply(coeffs, noisy, r.cfg.ApplyMode)
	if err != nil {
		return nil, nil, err
	}
	return out, bands, nil
}

// applyFixed runs the configured highpass then lowpass Butterworth pair.
func (r *Runner) applyFixed(noisy []float64, sr float64) ([]float64, error) {
	hp, err := design.Design(design.Spec{
		Family:     design.FamilyButterworth,
		Response:   design.Highpass,
		Order:      r.cfg.Order,
		Cutoffs:    []float64{r.cfg.HighpassHz},
		SampleRate: sr,
	})
	if err != nil {
		return nil, err
	}

	lp, err := design.Design(design.Spec{
		Family:     design.FamilyButterworth,
		Response:   design.Lowpass,
		Order:      r.cfg.Order,
		Cutoffs:    []float64{r.cfg.LowpassHz},
		SampleRate: sr,
	})
	if err != nil {
		return nil, err
	}

	out, err := apply.Apply(hp, noisy, r.cfg.ApplyMode)
	if err != nil {
		return nil, err
	}
	return apply.Apply(lp, out, r.cfg.ApplyMode)
}

// bandCutoffs flattens detected bands into design cutoffs: each band is
// widened by the padding, bands that now touch are merged, and the edges
// are nudged off DC and Nyquist where the designers cannot place them.
// Degenerate bands collapse to nothing and are dropped.
func bandCutoffs(bands []noise.Band, sr, paddingHz float64) []float64 {
	nyquist := sr / 2
	lowGuard := nyquist * 1e-3
	highGuard := nyquist * (1 - 1e-3)

	var padded []noise.Band
	for _, b := range bands {
		lo := max(b.LowHz-paddingHz, lowGuard)
		hi := min(b.HighHz+paddingHz, highGuard)
		if lo >= hi {
			continue
		}
		if n := len(padded); n > 0 && lo <= padded[n-1].HighHz {
			padded[n-1].HighHz = hi
			continue
		}
		padded = append(padded, noise.Band{LowHz: lo, HighHz: hi})
	}

	cutoffs := make([]float64, 0, 2*len(padded))
	for _, b := range padded {
		cutoffs = append(cutoffs, b.LowHz, b.HighHz)
	}
	return cutoffs
}

func filteredName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "_filtered" + ext
}
