package renderer

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/ivlev/scrollscrub/internal/host"
)

// MaxDPR caps the backing store scale on wide viewports; narrow viewports
// render at 1x.
const MaxDPR = 2

// EffectiveDPR returns the device pixel ratio the surface is sized with.
func EffectiveDPR(cssWidth, dpr float64) float64 {
	if dpr <= 0 || math.IsNaN(dpr) {
		dpr = 1
	}
	limit := float64(MaxDPR)
	if cssWidth < host.MobileBreakpoint {
		limit = 1
	}
	return math.Min(dpr, limit)
}

// SurfaceSize converts CSS dimensions to physical pixels.
func SurfaceSize(cssWidth, cssHeight, dpr float64) image.Point {
	scale := EffectiveDPR(cssWidth, dpr)
	w := int(math.Floor(math.Max(cssWidth, 0) * scale))
	h := int(math.Floor(math.Max(cssHeight, 0) * scale))
	return image.Pt(w, h)
}

// CoverRect places an iw×ih image over dst so that it fills dst completely
// while keeping its aspect ratio, centred. Parts outside dst are cropped.
func CoverRect(dst image.Rectangle, iw, ih int) image.Rectangle {
	if iw <= 0 || ih <= 0 || dst.Empty() {
		return image.Rectangle{}
	}
	cw, ch := float64(dst.Dx()), float64(dst.Dy())
	scale := math.Max(cw/float64(iw), ch/float64(ih))
	w := float64(iw) * scale
	h := float64(ih) * scale
	x := (cw - w) / 2
	y := (ch - h) / 2

	r := image.Rect(
		int(math.Round(x)), int(math.Round(y)),
		int(math.Round(x+w)), int(math.Round(y+h)),
	)
	return r.Add(dst.Min)
}

// Scaler picks resampling quality by viewport class: the sharper kernel on
// wide viewports, bilinear on narrow ones.
func Scaler(cssWidth float64) draw.Interpolator {
	if cssWidth < host.MobileBreakpoint {
		return draw.ApproxBiLinear
	}
	return draw.CatmullRom
}
