package video

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// PNGSequence writes frame-00001.png, frame-00002.png, ... into a directory.
type PNGSequence struct {
	dir     string
	next    int
	encoder png.Encoder
}

func NewPNGSequence(dir string) (*PNGSequence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &PNGSequence{
		dir:     dir,
		next:    1,
		encoder: png.Encoder{CompressionLevel: png.BestSpeed},
	}, nil
}

// FramePath returns the file the n-th frame (1-based) is written to.
func (s *PNGSequence) FramePath(n int) string {
	return filepath.Join(s.dir, fmt.Sprintf("frame-%05d.png", n))
}

func (s *PNGSequence) WriteFrame(img *image.RGBA) error {
	path := s.FramePath(s.next)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := s.encoder.Encode(w, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	s.next++
	return nil
}

// Written returns how many frames were written.
func (s *PNGSequence) Written() int { return s.next - 1 }

func (s *PNGSequence) Close() error { return nil }
