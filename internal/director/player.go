package director

import (
	"sync"
	"time"

	"github.com/ivlev/scrollscrub/internal/scroll"
)

// Window is the scrollable viewport the player moves.
type Window interface {
	ScrollY() float64
	ScrollTo(y float64)
}

// Player is a time-stepped smooth scroller. Register it with
// scroll.SetScroller and every scroll.ScrollTo call animates through it;
// Advance moves the animation forward.
type Player struct {
	win Window

	mu       sync.Mutex
	from, to float64
	elapsed  time.Duration
	duration time.Duration
	active   bool
}

var _ scroll.Scroller = (*Player)(nil)

func NewPlayer(win Window) *Player {
	return &Player{win: win}
}

// ScrollTo starts an eased scroll to target, replacing any animation in
// progress. Immediate options jump straight there.
func (p *Player) ScrollTo(target float64, opts scroll.ScrollToOptions) {
	target += opts.Offset
	if target < 0 {
		target = 0
	}

	p.mu.Lock()
	if opts.Immediate || opts.Duration <= 0 {
		p.active = false
		p.mu.Unlock()
		p.win.ScrollTo(target)
		return
	}
	p.from = p.win.ScrollY()
	p.to = target
	p.elapsed = 0
	p.duration = opts.Duration
	p.active = true
	p.mu.Unlock()
}

// Advance moves the animation by dt and scrolls the window. It reports
// whether an animation is still running afterwards.
func (p *Player) Advance(dt time.Duration) bool {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return false
	}
	p.elapsed += dt
	t := float64(p.elapsed) / float64(p.duration)
	if t >= 1 {
		t = 1
		p.active = false
	}
	y := lerp(p.from, p.to, EaseInOutCubic(t))
	active := p.active
	p.mu.Unlock()

	p.win.ScrollTo(y)
	return active
}

// Animating reports whether a scroll is in progress.
func (p *Player) Animating() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}
