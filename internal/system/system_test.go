package system

import (
	"image"
	"image/color"
	"testing"
)

func TestPickEncoder(t *testing.T) {
	tests := []struct {
		listing string
		want    string
	}{
		{" V....D h264_nvenc           NVIDIA NVENC H.264 encoder", "h264_nvenc"},
		{" V....D h264_videotoolbox    VideoToolbox H.264 Encoder\n V....D h264_nvenc", "h264_videotoolbox"},
		{" V....D libx264              libx264 H.264", "libx264"},
		{"", "libx264"},
	}
	for _, tt := range tests {
		if got := pickEncoder(tt.listing); got != tt.want {
			t.Errorf("pickEncoder(%q) = %s, want %s", tt.listing, got, tt.want)
		}
	}
}

func TestSurfacePoolSizes(t *testing.T) {
	p := NewSurfacePool()
	a := p.Get(64, 32)
	if a.Bounds() != image.Rect(0, 0, 64, 32) {
		t.Fatalf("unexpected bounds %v", a.Bounds())
	}
	p.Put(a)

	b := p.Get(10, 10)
	if b.Bounds().Dx() != 10 || b.Bounds().Dy() != 10 {
		t.Errorf("pool returned wrong size %v", b.Bounds())
	}

	// Sub-images must not be pooled under their parent's size.
	p.Put(a.SubImage(image.Rect(1, 1, 5, 5)).(*image.RGBA))

	if z := p.Get(-3, 0); z.Bounds() != image.Rect(0, 0, 0, 0) {
		t.Errorf("negative size gave %v", z.Bounds())
	}
}

func TestClone(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 3))
	src.Set(2, 1, color.RGBA{R: 200, A: 255})

	dst := Clone(src)
	if dst.RGBAAt(2, 1) != (color.RGBA{R: 200, A: 255}) {
		t.Errorf("pixel not copied: %v", dst.RGBAAt(2, 1))
	}
	src.Set(2, 1, color.RGBA{})
	if dst.RGBAAt(2, 1).R != 200 {
		t.Error("clone shares pixels with source")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[uint64]string{
		512:     "512 B",
		2048:    "2.0 KiB",
		3 << 20: "3.0 MiB",
		5 << 30: "5.0 GiB",
	}
	for n, want := range tests {
		if got := FormatBytes(n); got != want {
			t.Errorf("FormatBytes(%d) = %s, want %s", n, got, want)
		}
	}
}

func TestSample(t *testing.T) {
	u := Sample()
	if u.NumGoroutines <= 0 || u.HeapAlloc == 0 {
		t.Errorf("runtime fields empty: %+v", u)
	}
	t.Logf("usage: %+v", u)
}
