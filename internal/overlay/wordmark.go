package overlay

import (
	"image"
	"math"
	"time"

	"golang.org/x/image/draw"

	"github.com/ivlev/scrollscrub/internal/motion"
)

// Wordmark is the brand mark that starts large in the middle of the hero
// and shrinks into the header as the first section scrolls away. It follows
// the frame index through a spring so fast scrubbing does not make it jump.
type Wordmark struct {
	Text string
	// HideAfter is the frame past which the mark is not drawn at all.
	HideAfter int

	spring *motion.Spring
	frame  int
	c      *Compositor
}

// NewWordmark creates a wordmark drawn with c's face and text colour.
func NewWordmark(c *Compositor, text string) *Wordmark {
	return &Wordmark{
		Text:      text,
		HideAfter: 80,
		spring:    motion.FrameSpring(0),
		c:         c,
	}
}

// Update moves the spring target to frame and advances it by dt.
func (w *Wordmark) Update(frame int, dt time.Duration) {
	w.frame = frame
	w.spring.Set(float64(frame))
	w.spring.Step(dt)
}

// Smoothed returns the spring-filtered frame value.
func (w *Wordmark) Smoothed() float64 { return w.spring.Value }

// Opacity is 1 until frame 50 and fades out by frame 68.
func (w *Wordmark) Opacity() float64 {
	return motion.Transform(w.spring.Value, [2]float64{50, 68}, [2]float64{1, 0})
}

// Zoom goes from 3.5x at frame 0 to 1x at frame 55.
func (w *Wordmark) Zoom() float64 {
	return motion.Transform(w.spring.Value, [2]float64{0, 55}, [2]float64{3.5, 1})
}

// Draw paints the mark centred horizontally. Its vertical centre moves from
// the middle of dst to the header line.
func (w *Wordmark) Draw(dst *image.RGBA) {
	if w.frame > w.HideAfter || w.Text == "" {
		return
	}
	op := w.Opacity()
	if op <= 0 {
		return
	}
	b := dst.Bounds()
	base := w.c.Scale(b.Dy())
	zoom := w.Zoom()

	mask := w.c.mask(w.Text)
	width := int(math.Round(float64(mask.Rect.Dx()*base) * zoom))
	height := int(math.Round(float64(mask.Rect.Dy()*base) * zoom))
	if width <= 0 || height <= 0 {
		return
	}

	header := float64(22 * base)
	cy := motion.Transform(w.spring.Value, [2]float64{0, 55}, [2]float64{float64(b.Dy()) / 2, header})
	x := b.Min.X + (b.Dx()-width)/2
	y := b.Min.Y + int(math.Round(cy)) - height/2
	at := image.Rect(x, y, x+width, y+height)

	scaled := image.NewAlpha(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), mask, mask.Bounds(), draw.Src, nil)

	src := image.NewUniform(withAlpha(w.c.style.Text, op))
	draw.DrawMask(dst, at, src, image.Point{}, scaled, image.Point{}, draw.Over)
}
