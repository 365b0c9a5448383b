package host

import "testing"

func TestWindowListeners(t *testing.T) {
	win := NewWindow(1280, 720, 2)

	scrolls := 0
	off := win.On(EventScroll, func() { scrolls++ })
	resizes := 0
	offResize := win.On(EventResize, func() { resizes++ })

	win.ScrollTo(100)
	win.ScrollTo(-50)
	win.Resize(375, 667, 3)

	if scrolls != 2 || resizes != 1 {
		t.Errorf("scrolls=%d resizes=%d, want 2 and 1", scrolls, resizes)
	}
	if win.ScrollY() != 0 {
		t.Errorf("negative scroll should clamp to 0, got %v", win.ScrollY())
	}
	if !win.Narrow() || win.DevicePixelRatio() != 3 {
		t.Errorf("resize not applied: narrow=%v dpr=%v", win.Narrow(), win.DevicePixelRatio())
	}

	off()
	off()
	offResize()
	win.ScrollTo(10)
	if scrolls != 2 {
		t.Errorf("listener still called after removal")
	}
	if win.Listeners(EventScroll) != 0 || win.Listeners(EventResize) != 0 {
		t.Errorf("listeners leaked: scroll=%d resize=%d", win.Listeners(EventScroll), win.Listeners(EventResize))
	}
}

func TestContainerGeometry(t *testing.T) {
	win := NewWindow(1280, 1000, 1)
	c := NewContainer(win, 0, TrackHeight(win, 5))

	if c.Height() != 5000 || c.Scrollable() != 4000 {
		t.Fatalf("height=%v scrollable=%v", c.Height(), c.Scrollable())
	}

	win.ScrollTo(2000)
	if c.Top() != -2000 {
		t.Errorf("Top() = %v, want -2000", c.Top())
	}
}
