// Package audioio decodes and encodes WAV files as float64 sample slices.
//
// Decoding converts integer PCM of any bit depth to float64 in [-1, 1] and
// mixes multi-channel material down to mono by channel mean. Encoding always
// writes 16-bit mono PCM and creates missing parent directories.
package audioio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Errors returned by the codec. A missing input file wraps fs.ErrNotExist
// instead, so callers can tell "not found" from "malformed".
var (
	ErrDecode = errors.New("audioio: decode failed")
	ErrEncode = errors.New("audioio: encode failed")
)

// Clip is a mono audio signal with its sample rate.
type Clip struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// DecodeOption configures decoding.
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	peakNormalize bool
}

// WithPeakNormalize rescales the decoded clip to peak amplitude 1.0.
// Silent clips are left untouched.
func WithPeakNormalize() DecodeOption {
	return func(c *decodeConfig) { c.peakNormalize = true }
}

// Decode reads a WAV file into a mono float64 clip.
func Decode(path string, opts ...DecodeOption) (*Clip, error) {
	var cfg decodeConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		// Keeps fs.ErrNotExist visible to errors.Is.
		return nil, fmt.Errorf("audioio: open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: %s is not a valid WAV file", ErrDecode, path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return nil, fmt.Errorf("%w: %s contains no samples", ErrDecode, path)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, fmt.Errorf("%w: %s reports %d channels", ErrDecode, path, channels)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := range frames {
		sum := 0.0
		for ch := range channels {
			sum += float64(buf.Data[i*channels+ch])
		}
		samples[i] = sum / float64(channels) / scale
	}

	if cfg.peakNormalize {
		peak := 0.0
		for _, v := range samples {
			if av := math.Abs(v); av > peak {
				peak = av
			}
		}
		if peak > 0 {
			inv := 1 / peak
			for i := range samples {
				samples[i] *= inv
			}
		}
	}

	return &Clip{
		Samples:    samples,
		SampleRate: buf.Format.SampleRate,
	}, nil
}

// Encode writes a mono clip as 16-bit PCM WAV, creating any missing parent
// directory. Samples are clamped to [-1, 1] before quantization.
func Encode(path string, clip *Clip) error {
	if clip == nil || len(clip.Samples) == 0 {
		return fmt.Errorf("%w: empty clip", ErrEncode)
	}
	if clip.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrEncode, clip.SampleRate)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrEncode, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	defer f.Close()

	const bitDepth = 16

	data := make([]int, len(clip.Samples))
	for i, v := range clip.Samples {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		data[i] = int(math.Round(v * 32767))
	}

	enc := wav.NewEncoder(f, clip.SampleRate, bitDepth, 1, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  clip.SampleRate,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEncode, path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEncode, path, err)
	}

	return nil
}
