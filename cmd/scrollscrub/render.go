package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivlev/scrollscrub/internal/config"
	"github.com/ivlev/scrollscrub/internal/director"
	"github.com/ivlev/scrollscrub/internal/engine"
	"github.com/ivlev/scrollscrub/internal/source"
	"github.com/ivlev/scrollscrub/internal/system"
)

func newRenderCmd() *cobra.Command {
	var latest bool
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Export a scroll-through of a sequence",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), latest)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.Assets, "assets", "a", cfg.Assets, "Frame directory or http(s) base URL")
	f.StringVarP(&cfg.Output, "output", "o", "", "Output file (mp4) or directory (png); generated under output/ when empty")
	f.StringVar(&cfg.Format, "format", cfg.Format, "Output format: mp4, png")
	f.Float64Var(&cfg.Width, "width", cfg.Width, "Viewport width in CSS pixels")
	f.Float64Var(&cfg.Height, "height", cfg.Height, "Viewport height in CSS pixels")
	f.Float64Var(&cfg.DPR, "dpr", cfg.DPR, "Device pixel ratio (capped at 2)")
	f.Float64Var(&cfg.TrackViewports, "track", cfg.TrackViewports, "Scroll track height in viewport heights")
	f.IntVar(&cfg.FPS, "fps", cfg.FPS, "Output frame rate")
	f.Float64VarP(&cfg.Duration, "duration", "d", cfg.Duration, "Length of the generated tour in seconds")
	f.StringVar(&cfg.ScrollPath, "script", "", "YAML scroll script; a tour is generated when empty")
	f.BoolVar(&latest, "latest", false, "Use the newest script in "+director.DefaultScriptDir+"/")
	f.StringVar(&cfg.VideoEncoder, "encoder", "", "ffmpeg video encoder; the best available H.264 encoder when empty")
	f.IntVar(&cfg.Quality, "quality", cfg.Quality, "x264 CRF, or bitrate in 100kbit/s for VideoToolbox")
	f.BoolVar(&cfg.WaitForLoad, "wait", false, "Wait for every frame before recording")
	f.IntVar(&cfg.PriorityCount, "priority", cfg.PriorityCount, "Frames loaded before the bulk phase (negative disables the priority phase)")
	f.IntVar(&cfg.BatchSize, "batch", cfg.BatchSize, "Concurrent loads during the bulk phase")
	f.DurationVar(&cfg.ProgressInterval, "progress-interval", cfg.ProgressInterval, "Minimum gap between load progress updates")
	f.DurationVar(&cfg.ResizeDebounce, "resize-debounce", cfg.ResizeDebounce, "Quiet period before the canvas follows a resize")
	f.BoolVar(&cfg.Overlay, "overlay", cfg.Overlay, "Draw captions, wordmark and load bar")
	f.StringVar(&cfg.Wordmark, "wordmark", cfg.Wordmark, "Wordmark text; empty disables it")
	f.BoolVar(&cfg.ShowStats, "stats", false, "Print the performance report")
	f.StringVar(&cfg.BenchmarkLog, "benchmark-log", "", "Append a one-line report to this file")
	return cmd
}

func runRender(ctx context.Context, latest bool) error {
	logger := newLogger(cfg.LogLevel)
	system.InitResourceLimits(system.DefaultOpenFiles, logger)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	seq, err := loadSequence(cfg.Sequence)
	if err != nil {
		return err
	}
	loader, err := source.New(cfg.Assets)
	if err != nil {
		return err
	}

	if cfg.Output == "" {
		cfg.Output = defaultOutput(cfg.Sequence, cfg.Format)
	}
	if cfg.Format == config.FormatMP4 {
		if err := os.MkdirAll(filepath.Dir(cfg.Output), 0755); err != nil {
			return err
		}
	}

	project := engine.NewExportProject(cfg, seq, loader, logger)

	scriptPath := cfg.ScrollPath
	if scriptPath == "" && latest {
		scriptPath, err = director.FindLatestScript(director.DefaultScriptDir)
		if err != nil {
			return err
		}
	}
	if scriptPath != "" {
		script, err := director.ReadScript(scriptPath)
		if err != nil {
			return err
		}
		logger.Info("using scroll script", "path", scriptPath, "duration", script.Duration())
		project.Script = script
	}

	report, err := project.Run(ctx)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if cfg.ShowStats {
		fmt.Print(report.String())
	}
	if cfg.BenchmarkLog != "" {
		if err := report.AppendBenchmark(cfg.BenchmarkLog); err != nil {
			logger.Warn("cannot write benchmark log", "path", cfg.BenchmarkLog, "error", err)
		}
	}
	if report.Load.Failed > 0 {
		logger.Warn("some frames never loaded", "failed", report.Load.Failed)
	}
	logger.Info("done", "output", cfg.Output)
	return nil
}

// defaultOutput names the result after the sequence and the current time.
func defaultOutput(sequence, format string) string {
	name := strings.TrimSuffix(filepath.Base(sequence), filepath.Ext(sequence))
	name = strings.ReplaceAll(name, " ", "_")
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	out := filepath.Join("output", fmt.Sprintf("%s_%s", name, timestamp))
	if format == config.FormatMP4 {
		out += ".mp4"
	}
	return out
}
