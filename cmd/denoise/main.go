// Command denoise batch-filters noisy recordings against clean references.
//
// The run subcommand pairs clean and noisy WAV files by name, detects or
// assumes the noise bands, filters every noisy file and writes a metrics
// summary. The survey subcommand averages the spectra of a noisy directory
// to show where its energy sits before choosing filter settings.
package main

import (
	"fmt"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-denoise/dsp/filter/apply"
	"github.com/cwbudde/algo-denoise/dsp/filter/design"
	"github.com/cwbudde/algo-denoise/dsp/window"
	"github.com/cwbudde/algo-denoise/pipeline"
)

type runCmd struct {
	Clean  string `arg:"" type:"existingdir" help:"Directory of clean reference WAV files."`
	Noisy  string `arg:"" type:"existingdir" help:"Directory of noisy WAV files, paired by filename."`
	Output string `short:"o" default:"filtered" help:"Directory for filtered files and the summary."`

	Summary   string  `help:"Summary file path (default <output>/summary.txt)."`
	Mode      string  `default:"detect" enum:"detect,fixed" help:"Filter selection: detect noise bands or apply fixed corners."`
	Threshold float64 `default:"20" help:"Noise detection threshold in dB above the clean spectrum."`

	Family     string  `default:"butterworth" enum:"butterworth,fir,cheby1,cheby2,elliptic,bessel" help:"Filter approximation family."`
	Order      int     `default:"4" help:"Filter order."`
	Ripple     float64 `default:"1" help:"Passband ripple in dB (cheby1, elliptic)."`
	Stopband   float64 `default:"40" help:"Stopband attenuation in dB (cheby2, elliptic)."`
	Window     string  `default:"hamming" enum:"rectangular,hann,hamming,blackman,kaiser" help:"FIR window."`
	KaiserBeta float64 `default:"8.6" help:"Kaiser window shape parameter."`

	Apply       string  `default:"zero-phase" enum:"causal,zero-phase" help:"Forward-only or forward-backward filtering."`
	BandPadding float64 `default:"50" help:"Hz added on both sides of each detected band; negative disables."`
	Highpass    float64 `default:"80" help:"Fixed-mode highpass corner in Hz."`
	Lowpass     float64 `default:"6000" help:"Fixed-mode lowpass corner in Hz."`
	Workers     int     `default:"1" help:"Concurrent pairs; below 2 runs sequentially."`
}

func (c *runCmd) Run(logger *zap.Logger) error {
	family, err := design.ParseFamily(c.Family)
	if err != nil {
		return err
	}
	win, err := window.ParseType(c.Window)
	if err != nil {
		return err
	}
	mode, err := pipeline.ParseMode(c.Mode)
	if err != nil {
		return err
	}
	applyMode, err := apply.ParseMode(c.Apply)
	if err != nil {
		return err
	}

	report, err := pipeline.New(pipeline.Config{
		CleanDir:      c.Clean,
		NoisyDir:      c.Noisy,
		OutputDir:     c.Output,
		SummaryPath:   c.Summary,
		ThresholdDB:   c.Threshold,
		Family:        family,
		Order:         c.Order,
		RippleDB:      c.Ripple,
		StopbandDB:    c.Stopband,
		Window:        win,
		KaiserBeta:    c.KaiserBeta,
		Mode:          mode,
		BandPaddingHz: c.BandPadding,
		HighpassHz:    c.Highpass,
		LowpassHz:     c.Lowpass,
		ApplyMode:     applyMode,
		Workers:       c.Workers,
		Logger:        logger,
	}).Run()
	if err != nil {
		return err
	}

	fmt.Printf("processed %d pairs: %d succeeded, %d failed\n",
		len(report.Results), report.Succeeded, report.Failed)
	if agg := report.Aggregates; agg != nil {
		fmt.Printf("mean SNR %.2f dB, median SNR %.2f dB, mean correlation %.3f\n",
			agg.MeanSNRdB, agg.MedianSNRdB, agg.MeanCorrelation)
	}
	return nil
}

type surveyCmd struct {
	Noisy string `arg:"" type:"existingdir" help:"Directory of noisy WAV files to survey."`
	CSV   string `default:"survey.csv" help:"Output CSV path; empty skips the file."`
}

func (c *surveyCmd) Run(logger *zap.Logger) error {
	report, err := pipeline.Survey(c.Noisy, c.CSV, logger)
	if err != nil {
		return err
	}

	fmt.Printf("surveyed %d files (%d skipped)\n", report.FilesUsed, report.FilesSkipped)
	for _, f := range report.DominantHz {
		fmt.Printf("dominant: %.1f Hz\n", f)
	}
	return nil
}

var cli struct {
	Verbose bool `short:"v" help:"Enable debug logging."`

	Run    runCmd    `cmd:"" help:"Filter a noisy directory against its clean references."`
	Survey surveyCmd `cmd:"" help:"Average the spectra of a noisy directory."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("denoise"),
		kong.Description("Paired-audio denoising: detect noise bands, design filters, score the result."),
		kong.UsageOnError(),
	)

	var logger *zap.Logger
	var err error
	if cli.Verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	ctx.FatalIfErrorf(err)
	defer logger.Sync()

	ctx.FatalIfErrorf(ctx.Run(logger))
}
