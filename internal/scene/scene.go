// Package scene ties a frame sequence to a scroll track: scroll progress
// picks the frame, the canvas draws it, the preloader fills the store and
// section opacities are derived from the same frame index.
package scene

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ivlev/scrollscrub/internal/framemap"
	"github.com/ivlev/scrollscrub/internal/host"
	"github.com/ivlev/scrollscrub/internal/preload"
	"github.com/ivlev/scrollscrub/internal/renderer"
	"github.com/ivlev/scrollscrub/internal/scroll"
	"github.com/ivlev/scrollscrub/internal/source"
)

// ErrClosed is returned by Start on a closed scene.
var ErrClosed = errors.New("scene closed")

// Window is the host viewport the scene samples and renders into.
type Window interface {
	Width() float64
	Height() float64
	DevicePixelRatio() float64
	On(ev host.Event, fn func()) (off func())
}

// Options configure a scene. Zero values fall back to package defaults.
type Options struct {
	Preload        preload.Options
	ResizeDebounce time.Duration
	// TickInterval drives the render loop from Start. Zero leaves ticking
	// to the caller.
	TickInterval time.Duration
}

// Scene is one scroll-scrubbed sequence on a page.
type Scene struct {
	id     string
	seq    *framemap.Sequence
	logger *slog.Logger

	sampler   *scroll.Sampler
	preloader *preload.Preloader
	canvas    *renderer.Canvas

	frame    atomic.Int64
	progress atomic.Uint64 // math.Float64bits of the load progress
	loaded   atomic.Bool

	mu           sync.Mutex
	nextID       int
	frameSubs    map[int]func(int)
	loadedSubs   []func()
	unsubscribe  func()
	cancel       context.CancelFunc
	started      bool
	closed       bool
	renderDone   chan struct{}
	tickInterval time.Duration
}

// New validates seq and assembles the scene. Nothing runs until Start.
func New(seq *framemap.Sequence, win Window, track scroll.Track, loader source.Loader, opts Options, logger *slog.Logger) (*Scene, error) {
	if err := seq.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sequence: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	id := uuid.NewString()
	logger = logger.With("scene", id)

	for _, cf := range seq.Crossfades() {
		logger.Debug("sections crossfade",
			"from", cf.From, "to", cf.To, "first", cf.FirstFrame, "last", cf.LastFrame)
	}

	s := &Scene{
		id:           id,
		seq:          seq,
		logger:       logger,
		sampler:      scroll.NewSampler(track, win, logger),
		preloader:    preload.New(seq, seq.TotalFrames, loader, win.Width(), opts.Preload, logger),
		frameSubs:    make(map[int]func(int)),
		tickInterval: opts.TickInterval,
	}
	s.canvas = renderer.New(win, s.preloader.Store(), opts.ResizeDebounce, logger)

	s.preloader.OnProgress(func(st preload.State) {
		s.progress.Store(math.Float64bits(st.Progress()))
	})
	s.preloader.OnComplete(func(st preload.State) {
		s.progress.Store(math.Float64bits(1))
		s.markLoaded()
	})
	return s, nil
}

// ID returns the session id attached to every log line of this scene.
func (s *Scene) ID() string { return s.id }

func (s *Scene) Sequence() *framemap.Sequence { return s.seq }

// Canvas exposes the renderer, e.g. for snapshots.
func (s *Scene) Canvas() *renderer.Canvas { return s.canvas }

// Preloader exposes the loader state and frame store.
func (s *Scene) Preloader() *preload.Preloader { return s.preloader }

// Start attaches the sampler and the canvas, begins preloading and, when
// a tick interval is configured, starts the render loop. Cancelling ctx
// stops preloading and rendering.
func (s *Scene) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.unsubscribe = s.sampler.Subscribe(s.onProgress)
	done := s.renderDone
	if s.tickInterval > 0 {
		done = make(chan struct{})
		s.renderDone = done
	}
	s.mu.Unlock()

	s.canvas.Attach()
	s.sampler.Attach()
	s.preloader.Start(ctx)

	if done != nil {
		go func() {
			defer close(done)
			_ = s.canvas.Run(ctx, s.tickInterval, s.Frame)
		}()
	}
	s.logger.Info("scene started", "frames", s.seq.TotalFrames, "sections", len(s.seq.Sections))
	return nil
}

func (s *Scene) onProgress(p float64) {
	frame := s.seq.ProgressToFrame(p)
	if int(s.frame.Swap(int64(frame))) == frame {
		return
	}

	s.mu.Lock()
	subs := make([]func(int), 0, len(s.frameSubs))
	for _, fn := range s.frameSubs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(frame)
	}
}

func (s *Scene) markLoaded() {
	if s.loaded.Swap(true) {
		return
	}
	s.mu.Lock()
	subs := s.loadedSubs
	s.loadedSubs = nil
	s.mu.Unlock()

	s.logger.Info("scene loaded")
	for _, fn := range subs {
		fn()
	}
}

// Tick draws the current frame. It reports whether the surface changed.
func (s *Scene) Tick() bool {
	return s.canvas.Tick(s.Frame())
}

// Frame returns the current frame index.
func (s *Scene) Frame() int { return int(s.frame.Load()) }

// Progress returns the last sampled scroll progress.
func (s *Scene) Progress() float64 { return s.sampler.Progress() }

// SectionOpacity returns the overlay opacity of key at the current frame.
func (s *Scene) SectionOpacity(key string) float64 {
	return s.seq.SectionOpacity(key, s.Frame())
}

// Opacities returns every section's opacity at the current frame.
func (s *Scene) Opacities() map[string]float64 {
	return s.seq.Opacities(s.Frame())
}

// ActiveSection returns the section containing the current frame.
func (s *Scene) ActiveSection() (string, bool) {
	return s.seq.ActiveSection(s.Frame())
}

// LoadProgress returns the throttled load fraction in [0,1].
func (s *Scene) LoadProgress() float64 { return math.Float64frombits(s.progress.Load()) }

// LoadState returns the unthrottled preloader state.
func (s *Scene) LoadState() preload.State { return s.preloader.State() }

// Loaded reports whether every planned frame has settled.
func (s *Scene) Loaded() bool { return s.loaded.Load() }

// OnFrameChange registers fn for every distinct frame index. The returned
// function removes it.
func (s *Scene) OnFrameChange(fn func(frame int)) (off func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.frameSubs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.frameSubs, id)
			s.mu.Unlock()
		})
	}
}

// OnLoaded registers fn to run once loading completes. If the scene is
// already loaded fn runs immediately.
func (s *Scene) OnLoaded(fn func()) {
	s.mu.Lock()
	if !s.loaded.Load() {
		s.loadedSubs = append(s.loadedSubs, fn)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	fn()
}

// Close stops preloading and rendering and releases every subscription.
// It waits for the render loop but not for in-flight loads.
func (s *Scene) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancel, unsubscribe, renderDone := s.cancel, s.unsubscribe, s.renderDone
	s.frameSubs = make(map[int]func(int))
	s.loadedSubs = nil
	s.mu.Unlock()

	s.preloader.Stop()
	if cancel != nil {
		cancel()
	}
	s.sampler.Detach()
	if unsubscribe != nil {
		unsubscribe()
	}
	if renderDone != nil {
		<-renderDone
	}
	s.canvas.Close()
	s.logger.Debug("scene closed")
}
