package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ivlev/scrollscrub/internal/config"
	"github.com/ivlev/scrollscrub/internal/director"
	"github.com/ivlev/scrollscrub/internal/framemap"
	"github.com/ivlev/scrollscrub/internal/video"
)

// indexLoader encodes the frame index into the red and green channels of
// a 16x9 tile so exported frames can be traced back to their source.
type indexLoader struct{ seq *framemap.Sequence }

func (l indexLoader) index(key string) int {
	for i := 0; i < l.seq.TotalFrames; i++ {
		if l.seq.FramePath(i) == key {
			return i
		}
	}
	return -1
}

func (l indexLoader) Load(ctx context.Context, key string) (image.Image, error) {
	i := l.index(key)
	if i < 0 {
		return nil, fmt.Errorf("unknown key %s", key)
	}
	img := image.NewRGBA(image.Rect(0, 0, 16, 9))
	c := color.RGBA{R: uint8(i % 256), G: uint8(i / 256), A: 255}
	for y := 0; y < 9; y++ {
		for x := 0; x < 16; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img, nil
}

func (l indexLoader) Probe(ctx context.Context, key string) (image.Config, error) {
	return image.Config{Width: 16, Height: 9}, nil
}

type memSink struct {
	params config.EncodeParams
	frames int
	last   color.RGBA
	closed bool
}

func (s *memSink) WriteFrame(img *image.RGBA) error {
	if img.Bounds().Dx() != s.params.Width || img.Bounds().Dy() != s.params.Height {
		return fmt.Errorf("frame size %v", img.Bounds())
	}
	s.frames++
	s.last = img.RGBAAt(img.Bounds().Dx()/2, img.Bounds().Dy()/2)
	return nil
}

func (s *memSink) Close() error {
	s.closed = true
	return nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Width, cfg.Height = 800, 450
	cfg.FPS = 10
	cfg.Duration = 3
	cfg.Overlay = false
	cfg.WaitForLoad = true
	cfg.VideoEncoder = "libx264"
	cfg.Output = "memory"
	return cfg
}

func TestFrameCount(t *testing.T) {
	tests := []struct {
		duration float64
		fps      int
		want     int
	}{
		{0, 30, 1},
		{1, 30, 31},
		{7.5, 10, 76},
		{0.05, 30, 3},
		{2, 0, 1},
	}
	for _, tt := range tests {
		if got := FrameCount(tt.duration, tt.fps); got != tt.want {
			t.Errorf("FrameCount(%v, %d) = %d, want %d", tt.duration, tt.fps, got, tt.want)
		}
	}
}

func TestExportTour(t *testing.T) {
	seq := framemap.Master()
	cfg := testConfig()
	sink := &memSink{}

	project := NewExportProject(cfg, seq, indexLoader{seq}, nil)
	project.Sink = func(ctx context.Context, params config.EncodeParams) (video.FrameSink, error) {
		sink.params = params
		return sink, nil
	}

	report, err := project.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	t.Log(report.String())

	if sink.params.Width != 800 || sink.params.Height != 450 || sink.params.FPS != 10 {
		t.Errorf("unexpected stream params %+v", sink.params)
	}
	if !sink.closed {
		t.Error("sink not closed")
	}
	if sink.frames != report.Frames || report.Frames != 76 {
		t.Errorf("wrote %d frames, report says %d", sink.frames, report.Frames)
	}
	if !report.Load.Complete || report.Load.Failed != 0 {
		t.Errorf("preload state %+v", report.Load)
	}

	// The tour ends on the last frame: 299 = 1*256 + 43.
	if r, g := int(sink.last.R), int(sink.last.G); g != 1 || r < 42 || r > 44 {
		t.Errorf("last exported pixel %v, want frame 299", sink.last)
	}
	if report.Canvas.Draws < 5 {
		t.Errorf("only %d draws over the tour", report.Canvas.Draws)
	}
}

func TestExportScriptToPNG(t *testing.T) {
	seq := framemap.Extended()
	cfg := testConfig()
	cfg.Format = config.FormatPNG
	cfg.Output = t.TempDir()
	cfg.Overlay = true

	half := 0.5
	script := &director.Script{
		Version: director.ScriptVersion,
		Keyframes: []director.Keyframe{
			{Time: 0, Focus: "hero"},
			{Time: 0.5, Progress: &half},
		},
	}

	project := NewExportProject(cfg, seq, indexLoader{seq}, nil)
	project.Script = script
	report, err := project.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Frames != 6 {
		t.Errorf("Frames = %d, want 6", report.Frames)
	}

	files, err := filepath.Glob(filepath.Join(cfg.Output, "frame-*.png"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 6 {
		t.Errorf("found %d png files, want 6", len(files))
	}
}

func TestExportRejectsBadInput(t *testing.T) {
	seq := framemap.Master()

	cfg := testConfig()
	cfg.FPS = 0
	if _, err := NewExportProject(cfg, seq, indexLoader{seq}, nil).Run(context.Background()); err == nil {
		t.Error("expected config error")
	}

	project := NewExportProject(testConfig(), seq, indexLoader{seq}, nil)
	project.Script = &director.Script{Keyframes: []director.Keyframe{{Time: 0, Focus: "fleet"}}}
	if _, err := project.Run(context.Background()); !errors.Is(err, director.ErrUnknownSection) {
		t.Errorf("Run = %v, want unknown section", err)
	}
}

func TestExportCancelled(t *testing.T) {
	seq := framemap.Master()
	cfg := testConfig()
	cfg.WaitForLoad = false
	project := NewExportProject(cfg, seq, indexLoader{seq}, nil)
	project.Sink = func(ctx context.Context, params config.EncodeParams) (video.FrameSink, error) {
		return &memSink{params: params}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := project.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

func TestReportOutput(t *testing.T) {
	r := &Report{Build: "test", Sequence: "master", Frames: 60, Total: 2 * time.Second, Render: time.Second}
	if r.FPS() != 30 {
		t.Errorf("FPS() = %v", r.FPS())
	}
	if s := r.String(); !strings.Contains(s, "Effective FPS: 30.00") || !strings.Contains(s, "Build: test") {
		t.Errorf("report missing fields:\n%s", s)
	}

	path := filepath.Join(t.TempDir(), "benchmark.log")
	for i := 0; i < 2; i++ {
		if err := r.AppendBenchmark(path); err != nil {
			t.Fatal(err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(string(data), "\n"); lines != 2 {
		t.Errorf("benchmark log has %d lines", lines)
	}
}
