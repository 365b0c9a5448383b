package config

import (
	"errors"
	"fmt"
	"time"
)

// Output formats.
const (
	FormatMP4 = "mp4"
	FormatPNG = "png"
)

type Config struct {
	Sequence       string  // preset name or YAML table path
	Assets         string  // frame directory or http(s) base URL
	Width          float64 // viewport, CSS pixels
	Height         float64
	DPR            float64
	TrackViewports float64 // scroll track height in viewport heights
	FPS            int
	Duration       float64 // seconds; a script's own length wins when set
	ScrollPath     string  // YAML scroll script; empty generates a tour
	Output         string  // file for mp4, directory for png
	Format         string
	VideoEncoder   string // empty picks the best available
	Quality        int
	WaitForLoad    bool

	PriorityCount    int // 0 uses the preloader default, negative disables the priority phase
	BatchSize        int
	ProgressInterval time.Duration
	ResizeDebounce   time.Duration

	Overlay      bool
	Wordmark     string
	ShowStats    bool
	BenchmarkLog string
	BuildVersion string
	LogLevel     string
}

// EncodeParams describe the stream handed to a frame sink.
type EncodeParams struct {
	Width, Height int
	FPS           int
	Encoder       string
	Quality       int
}

func Default() *Config {
	return &Config{
		Sequence:         "master",
		Assets:           ".",
		Width:            1280,
		Height:           720,
		DPR:              1,
		TrackViewports:   5,
		FPS:              30,
		Duration:         20,
		Output:           "scrollscrub.mp4",
		Format:           FormatMP4,
		Quality:          23,
		PriorityCount:    30,
		BatchSize:        20,
		ProgressInterval: 100 * time.Millisecond,
		ResizeDebounce:   200 * time.Millisecond,
		Overlay:          true,
		Wordmark:         "PORT AUTHORITY",
		LogLevel:         "info",
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("viewport must be positive, got %.0fx%.0f", c.Width, c.Height))
	}
	if c.DPR <= 0 {
		errs = append(errs, fmt.Errorf("device pixel ratio must be positive, got %v", c.DPR))
	}
	if c.TrackViewports <= 1 {
		errs = append(errs, fmt.Errorf("track must be taller than one viewport, got %v", c.TrackViewports))
	}
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %d", c.FPS))
	}
	if c.Duration < 0 {
		errs = append(errs, fmt.Errorf("duration must not be negative, got %v", c.Duration))
	}
	switch c.Format {
	case FormatMP4, FormatPNG:
	default:
		errs = append(errs, fmt.Errorf("unknown output format %q", c.Format))
	}
	if c.Output == "" {
		errs = append(errs, errors.New("output path is empty"))
	}
	if c.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("batch size must be positive, got %d", c.BatchSize))
	}
	return errors.Join(errs...)
}
