package system

import (
	"image"
	"sync"
)

// SurfacePool recycles RGBA surfaces of equal size between frames so the
// render loop does not allocate a full canvas per tick.
type SurfacePool struct {
	mu    sync.RWMutex
	pools map[image.Point]*sync.Pool
}

var surfaces = NewSurfacePool()

// NewSurfacePool creates an empty pool.
func NewSurfacePool() *SurfacePool {
	return &SurfacePool{pools: make(map[image.Point]*sync.Pool)}
}

// GetSurface returns a w×h surface from the shared pool. Its contents are
// undefined; callers clear it before drawing.
func GetSurface(w, h int) *image.RGBA {
	return surfaces.Get(w, h)
}

// PutSurface hands a surface back to the shared pool.
func PutSurface(img *image.RGBA) {
	surfaces.Put(img)
}

func (p *SurfacePool) Get(w, h int) *image.RGBA {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	size := image.Pt(w, h)

	p.mu.RLock()
	pool, ok := p.pools[size]
	p.mu.RUnlock()

	if !ok {
		p.mu.Lock()
		pool, ok = p.pools[size]
		if !ok {
			pool = &sync.Pool{
				New: func() any {
					return image.NewRGBA(image.Rectangle{Max: size})
				},
			}
			p.pools[size] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

// Put accepts only surfaces anchored at the origin; anything else is left
// to the garbage collector.
func (p *SurfacePool) Put(img *image.RGBA) {
	if img == nil || img.Rect.Min != (image.Point{}) {
		return
	}
	p.mu.RLock()
	pool, ok := p.pools[img.Rect.Max]
	p.mu.RUnlock()

	if ok {
		pool.Put(img)
	}
}

// Clone copies src into a pooled surface of the same size.
func Clone(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := GetSurface(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		srcRow := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
		dstRow := dst.Pix[dst.PixOffset(0, y):]
		copy(dstRow[:4*b.Dx()], srcRow[:4*b.Dx()])
	}
	return dst
}
