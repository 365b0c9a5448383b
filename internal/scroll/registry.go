package scroll

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// DefaultScrollDuration is how long an animated scroll-to takes when the
// caller does not say.
const DefaultScrollDuration = 1600 * time.Millisecond

// ErrNegativeDuration is returned for a scroll-to with a negative duration.
var ErrNegativeDuration = errors.New("scroll duration must not be negative")

// ScrollToOptions tunes a single scroll-to call.
type ScrollToOptions struct {
	// Duration of the animated scroll. Zero means DefaultScrollDuration.
	Duration time.Duration
	// Offset is added to the target, in CSS pixels.
	Offset float64
	// Immediate jumps without animating.
	Immediate bool
}

// Normalize validates the options and fills defaults.
func (o ScrollToOptions) Normalize() (ScrollToOptions, error) {
	if o.Duration < 0 {
		return o, fmt.Errorf("%w: %s", ErrNegativeDuration, o.Duration)
	}
	if o.Duration == 0 && !o.Immediate {
		o.Duration = DefaultScrollDuration
	}
	return o, nil
}

// Scroller is a smooth-scroll implementation.
type Scroller interface {
	ScrollTo(target float64, opts ScrollToOptions)
}

// NativeScroller is the fallback used when no smooth scroller is live.
type NativeScroller interface {
	ScrollTo(y float64)
}

type scrollerBox struct{ s Scroller }

var live atomic.Pointer[scrollerBox]

// SetScroller registers the live smooth-scroll instance.
func SetScroller(s Scroller) {
	if s == nil {
		live.Store(nil)
		return
	}
	live.Store(&scrollerBox{s: s})
}

// ClearScroller removes the live instance if it is still s. A stale
// teardown cannot clear a newer registration.
func ClearScroller(s Scroller) {
	box := live.Load()
	if box != nil && box.s == s {
		live.CompareAndSwap(box, nil)
	}
}

// CurrentScroller returns the live instance, or nil before one is set.
func CurrentScroller() Scroller {
	box := live.Load()
	if box == nil {
		return nil
	}
	return box.s
}

// ScrollTo scrolls to target through the live smooth scroller, looked up
// at call time, or falls back to a native jump on win.
func ScrollTo(win NativeScroller, target float64, opts ScrollToOptions) error {
	opts, err := opts.Normalize()
	if err != nil {
		return err
	}
	if s := CurrentScroller(); s != nil {
		s.ScrollTo(target, opts)
		return nil
	}
	win.ScrollTo(target + opts.Offset)
	return nil
}
