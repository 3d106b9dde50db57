// Package audio :: extracts normalized, time-indexed feature series from an
// audio track. The series drive the reaction mapping that animates overlay
// parameters
package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os/exec"
	"time"

	"viz-box/pkg/logger"
)

var log = logger.Build()

// Feature series names produced by the analyzer
const (
	// Per-frame amplitude energy (root mean square)
	FeatureRMS = "rms"
	// Onset strength, the positive spectral flux between frames
	FeatureOnset = "onset"
	// Spectral centroid, the brightness of the signal
	FeatureCentroid = "centroid"
)

// DefaultBands Named frequency bands, each producing a "band:<name>" series
var DefaultBands = []Band{
	{"sub_bass", 20, 60},
	{"bass", 60, 250},
	{"low_mid", 250, 500},
	{"mid", 500, 2000},
	{"high_mid", 2000, 4000},
	{"presence", 4000, 6000},
	{"brilliance", 6000, 20000},
}

// Band A frequency range in Hz
type Band struct {
	Name    string
	Low, Hi float64
}

// Features All extracted series for one audio track. Every series has one
// value per analysis frame, normalized to [0, 1]
type Features struct {
	// Analysis sample rate
	SampleRate int
	// Samples between consecutive frames
	HopLength int
	// Frames per second of every series
	FrameRate float64
	// Duration of the analyzed audio
	Duration time.Duration
	// Feature name -> per-frame values
	Series map[string][]float64
}

// Get A series by name, falling back to rms when the requested feature does
// not exist. A missing feature should soften a reaction, not kill an export
func (f *Features) Get(name string) []float64 {
	if s, ok := f.Series[name]; ok {
		return s
	}
	log.Warnf(`audio feature "%s" not available, falling back to "%s"`, name, FeatureRMS)
	return f.Series[FeatureRMS]
}

// Analyzer Computes feature series from mono PCM. Decoding any input
// container down to PCM is delegated to ffmpeg, the same binary the
// pipeline executes anyway
type Analyzer struct {
	// Analysis sample rate, input is resampled to it
	SampleRate int
	// Samples between frames
	HopLength int
	// FFT window size, must be a power of two
	FFTSize int
	// Path to the ffmpeg binary
	FFmpegPath string
}

// NewAnalyzer An analyzer with the usual defaults (44.1kHz, 512 hop, 2048 FFT)
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		SampleRate: 44100,
		HopLength:  512,
		FFTSize:    2048,
		FFmpegPath: "ffmpeg",
	}
}

// AnalyzeFile Decode the first audio stream of the given media file to mono
// PCM and extract all feature series from it
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*Features, error) {
	// ffmpeg -i input -map 0:a:0 -ac 1 -ar 44100 -f f32le -v error -
	cmd := exec.CommandContext(ctx, a.FFmpegPath,
		"-i", path,
		"-map", "0:a:0",
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", a.SampleRate),
		"-f", "f32le",
		"-v", "error",
		"-")
	raw, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("cannot decode audio from %q : %w", path, err)
	}
	samples := make([]float32, len(raw)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	log.Debugf("decoded %d PCM samples from %q", len(samples), path)
	return a.AnalyzePCM(samples), nil
}

// AnalyzePCM Extract all feature series from mono PCM samples
func (a *Analyzer) AnalyzePCM(samples []float32) *Features {
	frames := frameCount(len(samples), a.HopLength)
	window := hannWindow(a.FFTSize)

	rms := make([]float64, frames)
	onset := make([]float64, frames)
	centroid := make([]float64, frames)
	bands := make([][]float64, len(DefaultBands))
	for i := range bands {
		bands[i] = make([]float64, frames)
	}

	binHz := float64(a.SampleRate) / float64(a.FFTSize)
	var prevMag []float64
	frame := make([]float64, a.FFTSize)

	for i := 0; i < frames; i++ {
		extractFrame(samples, i*a.HopLength, window, frame)
		rms[i] = rootMeanSquare(frame)

		mag := magnitudeSpectrum(frame)
		centroid[i] = spectralCentroid(mag, binHz)
		onset[i] = spectralFlux(mag, prevMag)
		for b, band := range DefaultBands {
			bands[b][i] = bandEnergy(mag, binHz, band)
		}
		prevMag = mag
	}

	series := map[string][]float64{
		FeatureRMS:      normalize(rms),
		FeatureOnset:    normalize(onset),
		FeatureCentroid: normalize(centroid),
	}
	// Bands share one scale, normalizing each by its own peak would make a
	// near-silent band look as loud as the dominant one
	for b, band := range DefaultBands {
		series["band:"+band.Name] = normalizeJointly(bands[b], bands)
	}

	frameRate := float64(a.SampleRate) / float64(a.HopLength)
	return &Features{
		SampleRate: a.SampleRate,
		HopLength:  a.HopLength,
		FrameRate:  frameRate,
		Duration:   time.Duration(float64(len(samples)) / float64(a.SampleRate) * float64(time.Second)),
		Series:     series,
	}
}

func frameCount(samples, hop int) int {
	if samples == 0 {
		return 0
	}
	return 1 + (samples-1)/hop
}

// Copy a windowed frame starting at offset into dst, zero-padding past the
// end of the signal
func extractFrame(samples []float32, offset int, window []float64, dst []float64) {
	for i := range dst {
		if offset+i < len(samples) {
			dst[i] = float64(samples[offset+i]) * window[i]
		} else {
			dst[i] = 0
		}
	}
}
