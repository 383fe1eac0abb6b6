package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-denoise/measure/quality"
)

// WriteSummary writes one line per result in order: successes as
// "<filename>: MSE=<mse>, SNR=<snr>, Corr=<corr>" with fixed precision,
// failures as "<filename>: ERROR=<message>". Downstream reporting
// re-parses exactly this shape, so the format is wire-stable.
func WriteSummary(w io.Writer, results []Result) error {
	for _, res := range results {
		var err error
		if res.Err != nil {
			_, err = fmt.Fprintf(w, "%s: ERROR=%s\n", res.Pair.Name, res.Err.Error())
		} else {
			_, err = fmt.Fprintf(w, "%s: MSE=%.4f, SNR=%.2f, Corr=%.3f\n",
				res.Pair.Name, res.Report.MSE, res.Report.SNRdB, res.Report.Correlation)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// SummaryEntry is one re-parsed summary line.
type SummaryEntry struct {
	Filename    string
	MSE         float64
	SNRdB       float64
	Correlation float64

	// Failure holds the error message for failure lines; empty on success.
	Failure string
}

var (
	summarySuccessRe = regexp.MustCompile(`^(.+): MSE=([^,]+), SNR=([^,]+), Corr=(.+)$`)
	summaryFailureRe = regexp.MustCompile(`^(.+): ERROR=(.*)$`)
)

// ParseSummary reads a summary file back into entries. Lines matching
// neither shape are reported as an error with their line number.
func ParseSummary(r io.Reader) ([]SummaryEntry, error) {
	var entries []SummaryEntry

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if line == "" {
			continue
		}

		if m := summarySuccessRe.FindStringSubmatch(line); m != nil {
			mse, err1 := strconv.ParseFloat(m[2], 64)
			snr, err2 := strconv.ParseFloat(m[3], 64)
			corr, err3 := strconv.ParseFloat(m[4], 64)
			if err1 != nil || err2 != nil || err3 != nil {
				return nil, fmt.Errorf("pipeline: summary line %d: malformed number", lineNo)
			}
			entries = append(entries, SummaryEntry{
				Filename:    m[1],
				MSE:         mse,
				SNRdB:       snr,
				Correlation: corr,
			})
			continue
		}

		if m := summaryFailureRe.FindStringSubmatch(line); m != nil {
			entries = append(entries, SummaryEntry{
				Filename: m[1],
				Failure:  m[2],
			})
			continue
		}

		return nil, fmt.Errorf("pipeline: summary line %d: unrecognized format", lineNo)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("pipeline: read summary: %w", err)
	}

	return entries, nil
}

// Aggregates holds mean/median/stddev of the headline metrics across
// successful pairs.
type Aggregates struct {
	Count int

	MeanMSE   float64
	MedianMSE float64
	StdMSE    float64

	MeanSNRdB   float64
	MedianSNRdB float64
	StdSNRdB    float64

	MeanCorrelation   float64
	MedianCorrelation float64
	StdCorrelation    float64
}

// Aggregate computes summary statistics over the successful results.
// Returns nil when nothing succeeded.
func Aggregate(results []Result) *Aggregates {
	var reports []quality.Report
	for _, res := range results {
		if res.Err == nil {
			reports = append(reports, res.Report)
		}
	}
	if len(reports) == 0 {
		return nil
	}

	mse := make([]float64, len(reports))
	snr := make([]float64, len(reports))
	corr := make([]float64, len(reports))
	for i, rep := range reports {
		mse[i] = rep.MSE
		snr[i] = rep.SNRdB
		corr[i] = rep.Correlation
	}

	agg := &Aggregates{Count: len(reports)}
	agg.MeanMSE, agg.MedianMSE, agg.StdMSE = describe(mse)
	agg.MeanSNRdB, agg.MedianSNRdB, agg.StdSNRdB = describe(snr)
	agg.MeanCorrelation, agg.MedianCorrelation, agg.StdCorrelation = describe(corr)
	return agg
}

func describe(v []float64) (mean, median, std float64) {
	mean = stat.Mean(v, nil)
	if len(v) > 1 {
		std = stat.StdDev(v, nil)
	}

	sorted := append([]float64(nil), v...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return mean, median, std
}
