// Package scroll turns host scroll geometry into a normalized progress
// value and keeps the process-wide smooth-scroll instance.
package scroll

import (
	"io"
	"log/slog"
	"sync"

	"github.com/ivlev/scrollscrub/internal/framemap"
	"github.com/ivlev/scrollscrub/internal/host"
)

// Track is the element whose scroll-through is measured.
type Track interface {
	// Top is the track's top edge relative to the viewport.
	Top() float64
	Height() float64
}

// Viewport is the window the track scrolls through.
type Viewport interface {
	Height() float64
	On(ev host.Event, fn func()) (off func())
}

// Progress computes how far the viewport has scrolled through a track:
// 0 with the track's top at the viewport top, 1 with its bottom at the
// viewport bottom. A track no taller than the viewport has nothing to
// scroll through and reports 0.
func Progress(top, trackHeight, viewportHeight float64) float64 {
	scrollable := trackHeight - viewportHeight
	if scrollable <= 0 {
		return 0
	}
	return framemap.Clamp01(-top / scrollable)
}

// Sampler recomputes progress on every scroll and resize notification
// and hands it to its subscribers.
type Sampler struct {
	track  Track
	view   Viewport
	logger *slog.Logger

	mu       sync.Mutex
	progress float64
	nextID   int
	subs     map[int]func(float64)
	offs     []func()
}

// NewSampler creates a detached sampler.
func NewSampler(track Track, view Viewport, logger *slog.Logger) *Sampler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Sampler{
		track:  track,
		view:   view,
		logger: logger,
		subs:   make(map[int]func(float64)),
	}
}

// Attach subscribes to the viewport and samples once immediately.
// Attaching an attached sampler is a no-op.
func (s *Sampler) Attach() {
	s.mu.Lock()
	if s.offs != nil {
		s.mu.Unlock()
		return
	}
	s.offs = []func(){
		s.view.On(host.EventScroll, s.Sample),
		s.view.On(host.EventResize, s.Sample),
	}
	s.mu.Unlock()

	s.logger.Debug("scroll sampler attached")
	s.Sample()
}

// Detach releases the viewport subscriptions. Safe to call repeatedly.
func (s *Sampler) Detach() {
	s.mu.Lock()
	offs := s.offs
	s.offs = nil
	s.mu.Unlock()

	for _, off := range offs {
		off()
	}
	if offs != nil {
		s.logger.Debug("scroll sampler detached")
	}
}

// Sample reads the current geometry and notifies subscribers.
func (s *Sampler) Sample() {
	p := Progress(s.track.Top(), s.track.Height(), s.view.Height())

	s.mu.Lock()
	s.progress = p
	subs := make([]func(float64), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(p)
	}
}

// Progress returns the last sampled value.
func (s *Sampler) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Subscribe registers fn for every sampled value.
func (s *Sampler) Subscribe(fn func(progress float64)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
