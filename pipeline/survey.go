package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-denoise/audioio"
	"github.com/cwbudde/algo-denoise/dsp/spectrum"
)

// dominantFraction is the share of the peak mean magnitude a bin must
// reach to count as a dominant frequency.
const dominantFraction = 0.1

// SurveyReport is the averaged spectral picture of a noisy directory.
type SurveyReport struct {
	Frequencies    []float64
	MeanMagnitudes []float64

	// DominantHz lists bin frequencies whose mean magnitude exceeds
	// dominantFraction of the peak, ascending.
	DominantHz []float64

	FilesUsed    int
	FilesSkipped int
}

// Survey averages the magnitude spectra of every WAV file in noisyDir and
// writes a frequency,mean_magnitude CSV to csvPath. Files whose spectrum
// layout differs from the first decodable file are skipped with a log
// entry rather than interpolated.
func Survey(noisyDir, csvPath string, logger *zap.Logger) (*SurveyReport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := os.ReadDir(noisyDir)
	if err != nil {
		return nil, fmt.Errorf("pipeline: list noisy dir: %w", err)
	}

	var (
		reference *spectrum.Spectrum
		sum       []float64
		report    SurveyReport
	)

	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".wav") {
			continue
		}
		path := filepath.Join(noisyDir, e.Name())

		clip, err := audioio.Decode(path)
		if err != nil {
			logger.Warn("survey: skipping undecodable file",
				zap.String("file", e.Name()), zap.Error(err))
			report.FilesSkipped++
			continue
		}

		spec, err := spectrum.Analyze(clip.Samples, float64(clip.SampleRate))
		if err != nil {
			logger.Warn("survey: skipping unanalyzable file",
				zap.String("file", e.Name()), zap.Error(err))
			report.FilesSkipped++
			continue
		}

		if reference == nil {
			reference = spec
			sum = make([]float64, spec.Bins())
		} else if !reference.Compatible(spec) {
			logger.Warn("survey: skipping incompatible spectrum layout",
				zap.String("file", e.Name()),
				zap.Int("bins", spec.Bins()),
				zap.Int("want_bins", reference.Bins()),
			)
			report.FilesSkipped++
			continue
		}

		for i, m := range spec.Magnitudes {
			sum[i] += m
		}
		report.FilesUsed++
	}

	if report.FilesUsed == 0 {
		return nil, fmt.Errorf("pipeline: no usable WAV files in %s", noisyDir)
	}

	report.Frequencies = reference.Frequencies
	report.MeanMagnitudes = make([]float64, len(sum))

	peak := 0.0
	for i, s := range sum {
		m := s / float64(report.FilesUsed)
		report.MeanMagnitudes[i] = m
		if m > peak {
			peak = m
		}
	}

	threshold := peak * dominantFraction
	for i, m := range report.MeanMagnitudes {
		if m > threshold {
			report.DominantHz = append(report.DominantHz, report.Frequencies[i])
		}
	}

	if csvPath != "" {
		if err := writeSurveyCSV(csvPath, &report); err != nil {
			return nil, err
		}
	}

	logger.Info("survey complete",
		zap.Int("files_used", report.FilesUsed),
		zap.Int("files_skipped", report.FilesSkipped),
		zap.Int("dominant_bins", len(report.DominantHz)),
	)
	return &report, nil
}

func writeSurveyCSV(path string, report *SurveyReport) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("pipeline: create survey dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pipeline: create survey csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"frequency", "mean_magnitude"}); err != nil {
		return fmt.Errorf("pipeline: write survey csv: %w", err)
	}
	for i := range report.Frequencies {
		rec := []string{
			strconv.FormatFloat(report.Frequencies[i], 'f', 3, 64),
			strconv.FormatFloat(report.MeanMagnitudes[i], 'g', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("pipeline: write survey csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("pipeline: write survey csv: %w", err)
	}
	return nil
}
