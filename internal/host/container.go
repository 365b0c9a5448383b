package host

// Container is the tall scroll track the sequence is pinned inside. Its
// position is derived from the window's scroll offset, the same way a
// bounding rect is.
type Container struct {
	win       *Window
	offsetTop float64
	height    float64
}

// NewContainer places a container of the given height at offsetTop in the
// document.
func NewContainer(win *Window, offsetTop, height float64) *Container {
	return &Container{win: win, offsetTop: offsetTop, height: height}
}

// TrackHeight sizes a container as a multiple of the viewport height, e.g.
// 5 for a 500vh track.
func TrackHeight(win *Window, viewports float64) float64 {
	return win.Height() * viewports
}

// Top is the container's top edge relative to the viewport. It goes
// negative once the page is scrolled past the container's start.
func (c *Container) Top() float64 {
	return c.offsetTop - c.win.ScrollY()
}

// Height returns the container height in CSS pixels.
func (c *Container) Height() float64 {
	return c.height
}

// OffsetTop returns the container's position in the document.
func (c *Container) OffsetTop() float64 {
	return c.offsetTop
}

// Scrollable returns how far the page can scroll while the container is
// pinned: its height minus one viewport.
func (c *Container) Scrollable() float64 {
	return c.height - c.win.Height()
}
