// Package host models the environment the engine runs in: a viewport with
// a device pixel ratio and a scroll offset, a tall tracked container, and
// the scroll/resize notifications they raise. The CLI drives it from a
// scroll script; tests drive it by hand.
package host

import (
	"sync"
)

// Event is a host notification kind.
type Event int

const (
	EventScroll Event = iota
	EventResize
)

func (e Event) String() string {
	switch e {
	case EventScroll:
		return "scroll"
	case EventResize:
		return "resize"
	default:
		return "unknown"
	}
}

// MobileBreakpoint is the viewport width, in CSS pixels, below which a
// viewport counts as narrow.
const MobileBreakpoint = 768

type listener struct {
	id uint64
	fn func()
}

// Window is an in-memory viewport. All methods are safe for concurrent use.
// Listeners run synchronously on the goroutine that changed the window.
type Window struct {
	mu        sync.Mutex
	width     float64
	height    float64
	dpr       float64
	scrollY   float64
	nextID    uint64
	listeners map[Event][]listener
}

// NewWindow creates a window of the given CSS size and device pixel ratio.
func NewWindow(width, height, dpr float64) *Window {
	if dpr <= 0 {
		dpr = 1
	}
	return &Window{
		width:     width,
		height:    height,
		dpr:       dpr,
		listeners: make(map[Event][]listener),
	}
}

// Width returns the viewport width in CSS pixels.
func (w *Window) Width() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

// Height returns the viewport height in CSS pixels.
func (w *Window) Height() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.height
}

// DevicePixelRatio returns physical pixels per CSS pixel.
func (w *Window) DevicePixelRatio() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dpr
}

// ScrollY returns the current vertical scroll offset.
func (w *Window) ScrollY() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scrollY
}

// Narrow reports whether the viewport is below MobileBreakpoint.
func (w *Window) Narrow() bool {
	return w.Width() < MobileBreakpoint
}

// ScrollTo moves the viewport and notifies scroll listeners. Negative
// offsets are clamped to 0.
func (w *Window) ScrollTo(y float64) {
	if y < 0 {
		y = 0
	}
	w.mu.Lock()
	w.scrollY = y
	w.mu.Unlock()
	w.emit(EventScroll)
}

// Resize changes the viewport and notifies resize listeners.
func (w *Window) Resize(width, height, dpr float64) {
	w.mu.Lock()
	w.width, w.height = width, height
	if dpr > 0 {
		w.dpr = dpr
	}
	w.mu.Unlock()
	w.emit(EventResize)
}

// On registers fn for ev and returns the function that removes it.
// Calling the returned function more than once is harmless.
func (w *Window) On(ev Event, fn func()) (off func()) {
	w.mu.Lock()
	w.nextID++
	id := w.nextID
	w.listeners[ev] = append(w.listeners[ev], listener{id: id, fn: fn})
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { w.remove(ev, id) })
	}
}

// Listeners returns how many listeners are registered for ev.
func (w *Window) Listeners(ev Event) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.listeners[ev])
}

func (w *Window) remove(ev Event, id uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ls := w.listeners[ev]
	for i, l := range ls {
		if l.id == id {
			w.listeners[ev] = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

func (w *Window) emit(ev Event) {
	w.mu.Lock()
	ls := make([]listener, len(w.listeners[ev]))
	copy(ls, w.listeners[ev])
	w.mu.Unlock()

	for _, l := range ls {
		l.fn()
	}
}
