package scene

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ivlev/scrollscrub/internal/framemap"
	"github.com/ivlev/scrollscrub/internal/host"
	"github.com/ivlev/scrollscrub/internal/source"
)

// memLoader serves a flat grey tile for every key except those in missing.
type memLoader struct {
	missing map[string]bool
	calls   atomic.Int32
}

func (l *memLoader) Load(ctx context.Context, key string) (image.Image, error) {
	l.calls.Add(1)
	if l.missing[key] {
		return nil, fmt.Errorf("%w: %s", source.ErrNotFound, key)
	}
	img := image.NewRGBA(image.Rect(0, 0, 16, 9))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	return img, nil
}

func (l *memLoader) Probe(ctx context.Context, key string) (image.Config, error) {
	return image.Config{ColorModel: color.RGBAModel, Width: 16, Height: 9}, nil
}

func newScene(t *testing.T, loader source.Loader) (*Scene, *host.Window) {
	t.Helper()
	win := host.NewWindow(1280, 720, 1)
	track := host.NewContainer(win, 0, host.TrackHeight(win, 5))
	s, err := New(framemap.Master(), win, track, loader, Options{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, win
}

func waitLoaded(t *testing.T, s *Scene) {
	t.Helper()
	done := make(chan struct{})
	s.OnLoaded(func() { close(done) })
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("scene not loaded: %+v", s.LoadState())
	}
}

func TestSceneScrollDrivesFrame(t *testing.T) {
	s, win := newScene(t, &memLoader{})
	defer s.Close()
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if s.Frame() != 0 || s.Progress() != 0 {
		t.Errorf("initial frame %d progress %v", s.Frame(), s.Progress())
	}
	if key, ok := s.ActiveSection(); !ok || key != "hero" {
		t.Errorf("initial section %q %v", key, ok)
	}

	// 3600px track, 720px viewport: 2880px of scroll range.
	win.ScrollTo(1440)
	if s.Progress() != 0.5 || s.Frame() != 150 {
		t.Errorf("half way: progress %v frame %d", s.Progress(), s.Frame())
	}
	if key, _ := s.ActiveSection(); key != "about" {
		t.Errorf("section at frame 150 = %q", key)
	}
	if s.SectionOpacity("hero") != 0 {
		t.Errorf("hero visible at frame 150")
	}

	win.ScrollTo(1e6)
	if s.Frame() != 299 || s.SectionOpacity("global") != 1 {
		t.Errorf("past the end: frame %d global %v", s.Frame(), s.SectionOpacity("global"))
	}
	if op := s.Opacities(); len(op) != 4 {
		t.Errorf("Opacities() = %v", op)
	}
}

func TestSceneFrameChangeIsDistinct(t *testing.T) {
	s, win := newScene(t, &memLoader{})
	defer s.Close()

	var mu sync.Mutex
	var seen []int
	off := s.OnFrameChange(func(f int) {
		mu.Lock()
		seen = append(seen, f)
		mu.Unlock()
	})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	win.ScrollTo(1440)
	win.ScrollTo(1440)
	win.ScrollTo(1441) // still rounds to frame 150
	win.Resize(1280, 720, 1)
	win.ScrollTo(0)
	off()
	win.ScrollTo(2880)

	mu.Lock()
	defer mu.Unlock()
	want := []int{150, 0}
	if fmt.Sprint(seen) != fmt.Sprint(want) {
		t.Errorf("frame changes %v, want %v", seen, want)
	}
}

func TestSceneLoadedOnce(t *testing.T) {
	loader := &memLoader{missing: map[string]bool{
		framemap.Master().FramePath(42): true,
	}}
	s, _ := newScene(t, loader)
	defer s.Close()

	var count atomic.Int32
	s.OnLoaded(func() { count.Add(1) })
	if s.Loaded() {
		t.Fatal("loaded before start")
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitLoaded(t, s)

	if !s.Loaded() || s.LoadProgress() != 1 {
		t.Errorf("loaded=%v progress=%v", s.Loaded(), s.LoadProgress())
	}
	st := s.LoadState()
	if st.LoadedCount != 300 || st.Failed != 1 {
		t.Errorf("state %+v", st)
	}

	late := false
	s.OnLoaded(func() { late = true })
	if !late {
		t.Error("late OnLoaded listener not called")
	}
	if count.Load() != 1 {
		t.Errorf("OnLoaded fired %d times", count.Load())
	}
	if int(loader.calls.Load()) != 300 {
		t.Errorf("%d loads for 300 frames", loader.calls.Load())
	}
}

func TestSceneTickDrawsLoadedFrames(t *testing.T) {
	s, win := newScene(t, &memLoader{})
	defer s.Close()
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitLoaded(t, s)

	if !s.Tick() {
		t.Error("first tick did not draw")
	}
	if s.Tick() {
		t.Error("unchanged frame redrawn")
	}
	win.ScrollTo(720)
	if !s.Tick() {
		t.Error("new frame not drawn")
	}
	if s.Canvas().LastDrawn() != s.Frame() {
		t.Errorf("canvas shows %d, scene at %d", s.Canvas().LastDrawn(), s.Frame())
	}
}

func TestSceneRenderLoop(t *testing.T) {
	win := host.NewWindow(1280, 720, 1)
	track := host.NewContainer(win, 0, host.TrackHeight(win, 5))
	s, err := New(framemap.Master(), win, track, &memLoader{}, Options{TickInterval: time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitLoaded(t, s)
	win.ScrollTo(2880)

	deadline := time.Now().Add(2 * time.Second)
	for s.Canvas().LastDrawn() != 299 {
		if time.Now().After(deadline) {
			t.Fatalf("render loop stuck at %d", s.Canvas().LastDrawn())
		}
		time.Sleep(2 * time.Millisecond)
	}
	s.Close()
}

func TestSceneCloseReleasesListeners(t *testing.T) {
	win := host.NewWindow(1280, 720, 1)
	track := host.NewContainer(win, 0, 3600)
	scrollBefore := win.Listeners(host.EventScroll)
	resizeBefore := win.Listeners(host.EventResize)

	for i := 0; i < 3; i++ {
		s, err := New(framemap.Extended(), win, track, &memLoader{}, Options{TickInterval: time.Millisecond}, nil)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := s.Start(context.Background()); err != nil {
			t.Fatalf("Start: %v", err)
		}
		if err := s.Start(context.Background()); err != nil {
			t.Fatalf("second Start: %v", err)
		}
		s.Close()
		s.Close()
		if err := s.Start(context.Background()); !errors.Is(err, ErrClosed) {
			t.Errorf("Start after Close = %v", err)
		}
	}

	if got := win.Listeners(host.EventScroll); got != scrollBefore {
		t.Errorf("leaked %d scroll listeners", got-scrollBefore)
	}
	if got := win.Listeners(host.EventResize); got != resizeBefore {
		t.Errorf("leaked %d resize listeners", got-resizeBefore)
	}
}

func TestSceneRejectsInvalidSequence(t *testing.T) {
	win := host.NewWindow(1280, 720, 1)
	seq := framemap.Master()
	seq.Sections[1].Start = seq.Sections[0].End

	_, err := New(seq, win, host.NewContainer(win, 0, 3600), &memLoader{}, Options{}, nil)
	if !errors.Is(err, framemap.ErrRangeOverlap) {
		t.Errorf("New = %v, want overlap error", err)
	}
}

func TestSceneIDsAreUnique(t *testing.T) {
	a, _ := newScene(t, &memLoader{})
	b, _ := newScene(t, &memLoader{})
	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("ids %q %q", a.ID(), b.ID())
	}
}
