// Package overlay composites section captions and the preload bar onto a
// rendered frame. Caption visibility follows the sequence's section
// opacity at the frame being composited.
package overlay

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/scrollscrub/internal/framemap"
)

// DefaultCaptions are the headline of each known section.
var DefaultCaptions = map[string]string{
	"hero":       "The Sky Is Not a Limit.",
	"about":      "A Standard Above Standard.",
	"fleet":      "Steel. Scale. Sovereignty.",
	"global":     "Colombo to the World.",
	"advantages": "Comprehensive Coverage",
}

// Style controls caption and bar appearance.
type Style struct {
	Text  color.RGBA
	Bar   color.RGBA
	Track color.RGBA
	// Lines is how many caption lines fit the surface height; it sets the
	// glyph scale.
	Lines int
	// Rise is how far, in caption pixels, a fading caption sinks below its
	// resting line.
	Rise float64
}

// DefaultStyle is white text with a gold load bar.
var DefaultStyle = Style{
	Text:  color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	Bar:   color.RGBA{R: 0xc9, G: 0xb9, B: 0x9a, A: 0xff},
	Track: color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff},
	Lines: 24,
	Rise:  28,
}

// Compositor draws overlays for one sequence. It caches rasterized
// captions and is not safe for concurrent use.
type Compositor struct {
	seq      *framemap.Sequence
	captions map[string]string
	style    Style
	face     font.Face
	masks    map[string]*image.Alpha
}

// New creates a compositor. Sections without a caption are skipped; nil
// captions uses DefaultCaptions.
func New(seq *framemap.Sequence, captions map[string]string, style Style) *Compositor {
	if captions == nil {
		captions = DefaultCaptions
	}
	if style.Lines <= 0 {
		style.Lines = DefaultStyle.Lines
	}
	return &Compositor{
		seq:      seq,
		captions: captions,
		style:    style,
		face:     basicfont.Face7x13,
		masks:    make(map[string]*image.Alpha),
	}
}

// Compose draws every visible caption at frame and, while loading is
// incomplete, the progress bar.
func (c *Compositor) Compose(dst *image.RGBA, frame int, loadProgress float64) {
	for _, sec := range c.seq.Sections {
		text, ok := c.captions[sec.Key]
		if !ok || text == "" {
			continue
		}
		if op := c.seq.SectionOpacity(sec.Key, frame); op > 0 {
			c.drawCaption(dst, text, op)
		}
	}
	if loadProgress < 1 {
		c.DrawLoadBar(dst, loadProgress)
	}
}

// Scale returns the integer glyph magnification for a surface height.
func (c *Compositor) Scale(height int) int {
	lineHeight := c.face.Metrics().Height.Ceil()
	s := height / (lineHeight * c.style.Lines)
	if s < 1 {
		return 1
	}
	return s
}

func (c *Compositor) drawCaption(dst *image.RGBA, text string, opacity float64) {
	mask := c.mask(text)
	b := dst.Bounds()
	scale := c.Scale(b.Dy())
	w, h := mask.Rect.Dx()*scale, mask.Rect.Dy()*scale

	margin := 2 * c.face.Metrics().Height.Ceil() * scale
	rise := int(math.Round((1 - opacity) * c.style.Rise * float64(scale)))
	at := image.Rect(0, 0, w, h).Add(image.Pt(b.Min.X+margin, b.Max.Y-margin-h+rise))

	scaled := image.NewAlpha(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), mask, mask.Bounds(), draw.Src, nil)

	src := image.NewUniform(withAlpha(c.style.Text, opacity))
	draw.DrawMask(dst, at, src, image.Point{}, scaled, image.Point{}, draw.Over)
}

// mask rasterizes text once at 1x.
func (c *Compositor) mask(text string) *image.Alpha {
	if m, ok := c.masks[text]; ok {
		return m
	}
	metrics := c.face.Metrics()
	w := font.MeasureString(c.face, text).Ceil()
	m := image.NewAlpha(image.Rect(0, 0, w, metrics.Height.Ceil()))
	d := font.Drawer{
		Dst:  m,
		Src:  image.Opaque,
		Face: c.face,
		Dot:  fixed.P(0, metrics.Ascent.Ceil()),
	}
	d.DrawString(text)
	c.masks[text] = m
	return m
}

// DrawLoadBar paints a thin bar across the top edge filled to progress.
func (c *Compositor) DrawLoadBar(dst *image.RGBA, progress float64) {
	b := dst.Bounds()
	if b.Empty() {
		return
	}
	progress = framemap.Clamp01(progress)
	h := b.Dy() / 180
	if h < 2 {
		h = 2
	}
	fill := int(math.Round(progress * float64(b.Dx())))

	track := image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+h)
	draw.Draw(dst, track, image.NewUniform(c.style.Track), image.Point{}, draw.Src)
	bar := image.Rect(b.Min.X, b.Min.Y, b.Min.X+fill, b.Min.Y+h)
	draw.Draw(dst, bar, image.NewUniform(c.style.Bar), image.Point{}, draw.Src)
}

func withAlpha(c color.RGBA, opacity float64) color.NRGBA {
	a := math.Round(framemap.Clamp01(opacity) * float64(c.A))
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(a)}
}
