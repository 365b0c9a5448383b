// Package engine plays a scroll script through a scene offline and writes
// every output frame to a sink.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/ivlev/scrollscrub/internal/config"
	"github.com/ivlev/scrollscrub/internal/director"
	"github.com/ivlev/scrollscrub/internal/framemap"
	"github.com/ivlev/scrollscrub/internal/host"
	"github.com/ivlev/scrollscrub/internal/overlay"
	"github.com/ivlev/scrollscrub/internal/preload"
	"github.com/ivlev/scrollscrub/internal/scene"
	"github.com/ivlev/scrollscrub/internal/scroll"
	"github.com/ivlev/scrollscrub/internal/source"
	"github.com/ivlev/scrollscrub/internal/system"
	"github.com/ivlev/scrollscrub/internal/video"
)

// OpenSink creates the frame sink once the surface size is known.
type OpenSink func(ctx context.Context, params config.EncodeParams) (video.FrameSink, error)

// ExportProject renders a scroll-through of one sequence.
type ExportProject struct {
	Config   *config.Config
	Sequence *framemap.Sequence
	Loader   source.Loader
	// Script is the scroll path; nil generates a tour of every section.
	Script *director.Script
	Sink   OpenSink
	Logger *slog.Logger
}

func NewExportProject(cfg *config.Config, seq *framemap.Sequence, loader source.Loader, logger *slog.Logger) *ExportProject {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	p := &ExportProject{
		Config:   cfg,
		Sequence: seq,
		Loader:   loader,
		Logger:   logger,
	}
	p.Sink = func(ctx context.Context, params config.EncodeParams) (video.FrameSink, error) {
		return video.Open(ctx, cfg.Format, cfg.Output, params)
	}
	return p
}

// FrameCount is the number of output frames for a script of duration
// seconds, both ends included.
func FrameCount(duration float64, fps int) int {
	if duration <= 0 || fps <= 0 {
		return 1
	}
	return int(math.Ceil(duration*float64(fps))) + 1
}

// Run plays the script and returns the performance report.
func (p *ExportProject) Run(ctx context.Context) (*Report, error) {
	cfg := p.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	startTime := time.Now()

	script := p.Script
	if script == nil {
		var err error
		script, err = director.NewDirector().GenerateScript(p.Sequence, cfg.Sequence, cfg.Duration)
		if err != nil {
			return nil, fmt.Errorf("failed to generate scroll script: %w", err)
		}
	}
	path, err := script.Resolve(p.Sequence)
	if err != nil {
		return nil, fmt.Errorf("invalid scroll script: %w", err)
	}

	win := host.NewWindow(cfg.Width, cfg.Height, cfg.DPR)
	track := host.NewContainer(win, 0, host.TrackHeight(win, cfg.TrackViewports))

	sc, err := scene.New(p.Sequence, win, track, p.Loader, scene.Options{
		Preload: preload.Options{
			PriorityCount:    cfg.PriorityCount,
			BatchSize:        cfg.BatchSize,
			ProgressInterval: cfg.ProgressInterval,
			SkipRules:        preload.DefaultSkipRules,
		},
		ResizeDebounce: cfg.ResizeDebounce,
	}, p.Logger)
	if err != nil {
		return nil, err
	}
	logger := p.Logger.With("scene", sc.ID())

	player := director.NewPlayer(win)
	scroll.SetScroller(player)
	defer scroll.ClearScroller(player)

	if err := sc.Start(ctx); err != nil {
		return nil, err
	}
	defer sc.Close()

	if cfg.WaitForLoad {
		if err := waitLoaded(ctx, sc); err != nil {
			return nil, err
		}
		logger.Info("frames loaded", "elapsed", time.Since(startTime).Round(time.Millisecond))
	}

	size := sc.Canvas().Size()
	encoder := cfg.VideoEncoder
	if encoder == "" && cfg.Format == config.FormatMP4 {
		encoder = system.BestH264Encoder(ctx)
	}
	params := config.EncodeParams{Width: size.X, Height: size.Y, FPS: cfg.FPS, Encoder: encoder, Quality: cfg.Quality}
	sink, err := p.Sink(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to open output: %w", err)
	}

	var comp *overlay.Compositor
	var mark *overlay.Wordmark
	if cfg.Overlay {
		comp = overlay.New(p.Sequence, nil, overlay.DefaultStyle)
		mark = overlay.NewWordmark(comp, cfg.Wordmark)
	}

	total := FrameCount(script.Duration(), cfg.FPS)
	step := time.Second / time.Duration(cfg.FPS)
	cues := path.Cues()
	next := 0

	logger.Info("export started",
		"frames", total, "fps", cfg.FPS, "size", fmt.Sprintf("%dx%d", size.X, size.Y),
		"encoder", encoder, "format", cfg.Format)

	renderStart := time.Now()
	lastLog := renderStart
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			sink.Close()
			return nil, err
		}
		now := time.Duration(i) * step
		for next < len(cues) && cues[next].At <= now {
			c := cues[next]
			target := track.OffsetTop() + c.Progress*track.Scrollable()
			if err := scroll.ScrollTo(win, target, scroll.ScrollToOptions{Duration: c.Duration, Immediate: c.Immediate}); err != nil {
				sink.Close()
				return nil, err
			}
			next++
		}
		if i > 0 {
			player.Advance(step)
		}

		sc.Tick()
		frame := sc.Canvas().Snapshot()
		if comp != nil {
			comp.Compose(frame, sc.Frame(), sc.LoadProgress())
			mark.Update(sc.Frame(), step)
			mark.Draw(frame)
		}
		err := sink.WriteFrame(frame)
		system.PutSurface(frame)
		if err != nil {
			sink.Close()
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}

		if time.Since(lastLog) >= time.Second {
			lastLog = time.Now()
			logger.Info("export progress", "done", i+1, "total", total, "frame", sc.Frame(), "loaded", sc.LoadProgress())
		}
	}
	renderEnd := time.Now()

	encodeStart := time.Now()
	if err := sink.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish output: %w", err)
	}

	report := &Report{
		Build:       cfg.BuildVersion,
		Sequence:    cfg.Sequence,
		Frames:      total,
		Canvas:      sc.Canvas().Stats(),
		Load:        sc.LoadState(),
		Total:       time.Since(startTime),
		Render:      renderEnd.Sub(renderStart),
		Encode:      time.Since(encodeStart),
		Usage:       system.Sample(),
		OutputFiles: cfg.Output,
	}
	logger.Info("export finished",
		"frames", total, "draws", report.Canvas.Draws, "held", report.Canvas.Held,
		"elapsed", report.Total.Round(time.Millisecond))
	return report, nil
}

func waitLoaded(ctx context.Context, sc *scene.Scene) error {
	done := make(chan struct{})
	sc.OnLoaded(func() { close(done) })
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for frames: %w", ctx.Err())
	}
}
