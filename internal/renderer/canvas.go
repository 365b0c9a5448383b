// Package renderer draws the current frame of a sequence onto an RGBA
// surface sized for the viewport. A frame that is not loaded yet leaves the
// previous one on screen.
package renderer

import (
	"context"
	"image"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/image/draw"

	"github.com/ivlev/scrollscrub/internal/host"
	"github.com/ivlev/scrollscrub/internal/system"
)

// DefaultResizeDebounce is how long resize events must be quiet before the
// surface is rebuilt.
const DefaultResizeDebounce = 200 * time.Millisecond

// Viewport is the window the canvas fills.
type Viewport interface {
	Width() float64
	Height() float64
	DevicePixelRatio() float64
	On(ev host.Event, fn func()) (off func())
}

// Frames is a sparse image array; preload.Store satisfies it.
type Frames interface {
	Get(index int) (image.Image, bool)
}

// Stats counts what the render loop did on each tick.
type Stats struct {
	Draws   int // frame changed and was drawn
	Idle    int // frame unchanged since last draw
	Held    int // frame changed but not loaded; last frame kept
	Resizes int
}

// Canvas is a cover-fit frame renderer.
type Canvas struct {
	view     Viewport
	frames   Frames
	logger   *slog.Logger
	debounce time.Duration

	mu        sync.Mutex
	surface   *image.RGBA
	dpr       float64
	scaler    draw.Interpolator
	lastDrawn int // frame on the current surface, -1 when blank
	shown     int // last frame drawn on any surface; survives resizes
	stats     Stats
	timer     *time.Timer
	off       func()
	closed    bool
}

// New creates a canvas. A non-positive debounce uses DefaultResizeDebounce.
func New(view Viewport, frames Frames, debounce time.Duration, logger *slog.Logger) *Canvas {
	if debounce <= 0 {
		debounce = DefaultResizeDebounce
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Canvas{
		view:      view,
		frames:    frames,
		logger:    logger,
		debounce:  debounce,
		lastDrawn: -1,
		shown:     -1,
	}
}

// Attach sizes the surface and starts listening for resizes. Calling it on
// an attached canvas is a no-op.
func (c *Canvas) Attach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.off != nil || c.closed {
		return
	}
	c.resizeLocked()
	c.off = c.view.On(host.EventResize, c.scheduleResize)
}

// Close stops the resize timer, unsubscribes and returns the surface to the
// pool. Safe to call more than once.
func (c *Canvas) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.off != nil {
		c.off()
		c.off = nil
	}
	if c.surface != nil {
		system.PutSurface(c.surface)
		c.surface = nil
	}
}

func (c *Canvas) scheduleResize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, c.applyResize)
}

func (c *Canvas) applyResize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.timer = nil
	c.resizeLocked()
}

// resizeLocked rebuilds the surface and forgets the last drawn frame so the
// next tick repaints at the new size.
func (c *Canvas) resizeLocked() {
	w, h, dpr := c.view.Width(), c.view.Height(), c.view.DevicePixelRatio()
	size := SurfaceSize(w, h, dpr)

	if c.surface != nil {
		system.PutSurface(c.surface)
	}
	c.surface = system.GetSurface(size.X, size.Y)
	clear(c.surface.Pix)
	c.dpr = EffectiveDPR(w, dpr)
	c.scaler = Scaler(w)
	c.lastDrawn = -1
	c.stats.Resizes++

	c.logger.Debug("canvas resized", "css_w", w, "css_h", h, "dpr", c.dpr, "px_w", size.X, "px_h", size.Y)
}

// Tick draws frame if it differs from the last drawn frame and is loaded.
// When frame is missing and the surface was just rebuilt, the previously
// shown frame is repainted at the new size. It reports whether the surface
// changed.
func (c *Canvas) Tick(frame int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.surface == nil || c.closed {
		return false
	}
	if frame == c.lastDrawn {
		c.stats.Idle++
		return false
	}
	img, ok := c.frames.Get(frame)
	if !ok {
		c.stats.Held++
		if c.lastDrawn >= 0 || c.shown < 0 {
			return false
		}
		prev, ok := c.frames.Get(c.shown)
		if !ok {
			return false
		}
		c.drawLocked(prev)
		c.lastDrawn = c.shown
		return true
	}

	c.drawLocked(img)
	c.lastDrawn = frame
	c.shown = frame
	c.stats.Draws++
	return true
}

func (c *Canvas) drawLocked(img image.Image) {
	bounds := c.surface.Bounds()
	draw.Draw(c.surface, bounds, image.Transparent, image.Point{}, draw.Src)
	dst := CoverRect(bounds, img.Bounds().Dx(), img.Bounds().Dy())
	c.scaler.Scale(c.surface, dst, img, img.Bounds(), draw.Over, nil)
}

// Run ticks the canvas every interval with the frame returned by current
// until ctx is done.
func (c *Canvas) Run(ctx context.Context, interval time.Duration, current func() int) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Tick(current())
		}
	}
}

// Invalidate forces the next tick to redraw.
func (c *Canvas) Invalidate() {
	c.mu.Lock()
	c.lastDrawn = -1
	c.mu.Unlock()
}

// LastDrawn returns the index on screen, or -1 before the first draw.
func (c *Canvas) LastDrawn() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastDrawn
}

// Size returns the surface size in physical pixels.
func (c *Canvas) Size() image.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.surface == nil {
		return image.Point{}
	}
	return c.surface.Rect.Size()
}

// DPR returns the effective pixel ratio of the current surface.
func (c *Canvas) DPR() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dpr
}

func (c *Canvas) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Snapshot copies the surface into a pooled image. Release it with
// system.PutSurface. Returns nil before Attach.
func (c *Canvas) Snapshot() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.surface == nil {
		return nil
	}
	return system.Clone(c.surface)
}
