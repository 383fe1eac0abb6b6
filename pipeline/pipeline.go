// Package pipeline orchestrates batch denoising runs: it pairs clean and
// noisy recordings by filename, pushes every pair through detection,
// filter design, application and quality scoring, and aggregates a
// summary. One bad file never aborts the batch; failures are isolated
// into their pair's summary entry.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-denoise/dsp/filter/apply"
	"github.com/cwbudde/algo-denoise/dsp/filter/design"
	"github.com/cwbudde/algo-denoise/dsp/noise"
	"github.com/cwbudde/algo-denoise/dsp/window"
	"github.com/cwbudde/algo-denoise/measure/quality"
)

// Mode selects how the per-pair filter is chosen.
type Mode int

const (
	// ModeDetect designs a bandstop filter over the noise bands detected
	// from the clean/noisy spectra. Pairs with no detected band pass
	// through unfiltered.
	ModeDetect Mode = iota

	// ModeFixed applies a fixed highpass/lowpass Butterworth pair,
	// independent of the signal content.
	ModeFixed
)

// String returns the lowercase mode name.
func (m Mode) String() string {
	switch m {
	case ModeDetect:
		return "detect"
	case ModeFixed:
		return "fixed"
	default:
		return fmt.Sprintf("pipeline.Mode(%d)", int(m))
	}
}

// ParseMode maps a mode name to its Mode value.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "detect":
		return ModeDetect, nil
	case "fixed":
		return ModeFixed, nil
	default:
		return 0, fmt.Errorf("pipeline: unknown mode %q", name)
	}
}

// Config holds one batch run's settings.
type Config struct {
	CleanDir  string
	NoisyDir  string
	OutputDir string

	// SummaryPath defaults to <OutputDir>/summary.txt.
	SummaryPath string

	// ThresholdDB is the noise detection threshold; zero means the
	// detector default.
	ThresholdDB float64

	// Filter design parameters.
	Family     design.Family
	Order      int
	RippleDB   float64
	StopbandDB float64
	Window     window.Type
	KaiserBeta float64

	Mode Mode

	// BandPaddingHz widens each detected band on both sides before the
	// bandstop is designed. Detected bands mark where noise exceeds the
	// threshold; the stopband edges are -3 dB points, so without padding
	// a narrow band would leave its own edges barely attenuated. Zero
	// means the 50 Hz default; negative disables padding.
	BandPaddingHz float64

	// Fixed-mode corner frequencies: the highpass removes rumble below
	// HighpassHz, the lowpass removes hiss above LowpassHz.
	HighpassHz float64
	LowpassHz  float64

	ApplyMode apply.Mode

	// Workers bounds cross-pair parallelism; values below 2 run the
	// batch sequentially. Summary order is discovery order either way.
	Workers int

	Logger *zap.Logger
}

func (c Config) withDefaults() Config {
	if c.SummaryPath == "" {
		c.SummaryPath = filepath.Join(c.OutputDir, "summary.txt")
	}
	if c.ThresholdDB == 0 {
		c.ThresholdDB = noise.DefaultThresholdDB
	}
	if c.Order == 0 {
		c.Order = 4
	}
	if c.BandPaddingHz == 0 {
		c.BandPaddingHz = 50
	} else if c.BandPaddingHz < 0 {
		c.BandPaddingHz = 0
	}
	if c.HighpassHz == 0 {
		c.HighpassHz = 80
	}
	if c.LowpassHz == 0 {
		c.LowpassHz = 6000
	}
	if c.ApplyMode != apply.Causal && c.ApplyMode != apply.ZeroPhase {
		c.ApplyMode = apply.ZeroPhase
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// Pair is one clean/noisy file pairing sharing a basename.
type Pair struct {
	Name      string
	CleanPath string
	NoisyPath string
}

// Result is the outcome of one processed pair. Err is nil on success;
// on failure the remaining fields besides Pair are zero.
type Result struct {
	Pair       Pair
	Bands      []noise.Band
	Report     quality.Report
	OutputPath string
	Err        error
}

// BatchReport is the outcome of a whole run.
type BatchReport struct {
	Results    []Result
	Succeeded  int
	Failed     int
	Aggregates *Aggregates
}

// DiscoverPairs lists the noisy directory and keeps every entry that has a
// same-named file in the clean directory. Iteration order is directory
// listing order and determines summary row order.
func DiscoverPairs(cleanDir, noisyDir string) ([]Pair, error) {
	entries, err := os.ReadDir(noisyDir)
	if err != nil {
		return nil, fmt.Errorf("pipeline: list noisy dir: %w", err)
	}

	var pairs []Pair
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()

		cleanPath := filepath.Join(cleanDir, name)
		if _, err := os.Stat(cleanPath); err != nil {
			continue
		}

		pairs = append(pairs, Pair{
			Name:      name,
			CleanPath: cleanPath,
			NoisyPath: filepath.Join(noisyDir, name),
		})
	}
	return pairs, nil
}

// Runner executes batch runs for one Config.
type Runner struct {
	cfg Config
	log *zap.Logger
}

// New creates a Runner, filling unset Config fields with defaults.
func New(cfg Config) *Runner {
	cfg = cfg.withDefaults()
	return &Runner{cfg: cfg, log: cfg.Logger}
}

// Run discovers pairs, processes each one, writes the summary file and
// returns the batch report. Per-pair failures are recorded, not raised;
// only discovery and summary-write failures abort the run.
func (r *Runner) Run() (*BatchReport, error) {
	pairs, err := DiscoverPairs(r.cfg.CleanDir, r.cfg.NoisyDir)
	if err != nil {
		return nil, err
	}

	r.log.Info("starting batch run",
		zap.Int("pairs", len(pairs)),
		zap.String("mode", r.cfg.Mode.String()),
		zap.Int("workers", r.cfg.Workers),
	)

	results := r.processAll(pairs)

	report := &BatchReport{Results: results}
	for _, res := range results {
		if res.Err != nil {
			report.Failed++
			r.log.Warn("pair failed",
				zap.String("file", res.Pair.Name),
				zap.Error(res.Err),
			)
		} else {
			report.Succeeded++
		}
	}
	report.Aggregates = Aggregate(results)

	// An unwritable summary has no partial-success state: fail the run.
	if err := r.writeSummary(report); err != nil {
		return nil, err
	}

	r.log.Info("batch run finished",
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

// processAll runs every pair, sequentially or on a bounded worker pool.
// Results land at their pair's discovery index, so output order never
// depends on scheduling.
func (r *Runner) processAll(pairs []Pair) []Result {
	results := make([]Result, len(pairs))

	if r.cfg.Workers < 2 {
		for i, p := range pairs {
			results[i] = r.ProcessPair(p)
		}
		return results
	}

	indices := make(chan int)
	var wg sync.WaitGroup

	for range r.cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				results[i] = r.ProcessPair(pairs[i])
			}
		}()
	}

	for i := range pairs {
		indices <- i
	}
	close(indices)
	wg.Wait()

	return results
}

func (r *Runner) writeSummary(report *BatchReport) error {
	if dir := filepath.Dir(r.cfg.SummaryPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("pipeline: create summary dir: %w", err)
		}
	}

	f, err := os.Create(r.cfg.SummaryPath)
	if err != nil {
		return fmt.Errorf("pipeline: create summary: %w", err)
	}
	defer f.Close()

	if err := WriteSummary(f, report.Results); err != nil {
		return fmt.Errorf("pipeline: write summary: %w", err)
	}
	return nil
}
