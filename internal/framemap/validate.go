package framemap

import (
	"errors"
	"fmt"
)

var (
	ErrNoFrames        = errors.New("sequence has no frames")
	ErrNegativeBuffer  = errors.New("fade buffer must not be negative")
	ErrBadEncoding     = errors.New("unsupported frame encoding")
	ErrEmptyKey        = errors.New("section key is empty")
	ErrDuplicateKey    = errors.New("duplicate section key")
	ErrRangeOutOfBound = errors.New("section range out of bounds")
	ErrRangeOverlap    = errors.New("sections overlap or are out of order")
)

// Validate checks the table for authoring mistakes. All problems are
// reported at once, joined. Sections must be declared in ascending order
// and must not share a frame: that is what keeps two sections from ever
// sitting at full opacity on the same frame.
func (s *Sequence) Validate() error {
	var errs []error

	if s.TotalFrames <= 0 {
		errs = append(errs, fmt.Errorf("%w: total_frames=%d", ErrNoFrames, s.TotalFrames))
	}
	if s.FadeBuffer < 0 {
		errs = append(errs, fmt.Errorf("%w: fade_buffer=%d", ErrNegativeBuffer, s.FadeBuffer))
	}
	switch s.Encoding {
	case "", EncodingPNG, EncodingWebP:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrBadEncoding, s.Encoding))
	}

	seen := make(map[string]bool, len(s.Sections))
	for i, sec := range s.Sections {
		if sec.Key == "" {
			errs = append(errs, fmt.Errorf("section %d: %w", i, ErrEmptyKey))
		} else if seen[sec.Key] {
			errs = append(errs, fmt.Errorf("section %q: %w", sec.Key, ErrDuplicateKey))
		}
		seen[sec.Key] = true

		if sec.Start < 0 || sec.Start > sec.End || (s.TotalFrames > 0 && sec.End > s.TotalFrames-1) {
			errs = append(errs, fmt.Errorf("section %q [%d,%d] with %d frames: %w",
				sec.Key, sec.Start, sec.End, s.TotalFrames, ErrRangeOutOfBound))
		}

		if i > 0 {
			prev := s.Sections[i-1]
			if sec.Start < prev.End+1 {
				errs = append(errs, fmt.Errorf("section %q [%d,%d] after %q [%d,%d]: %w",
					sec.Key, sec.Start, sec.End, prev.Key, prev.Start, prev.End, ErrRangeOverlap))
			}
		}
	}

	return errors.Join(errs...)
}

// Crossfade describes two adjacent sections whose fade windows overlap, so
// both overlays are partly visible on the same frames.
type Crossfade struct {
	From, To   string
	FirstFrame int
	LastFrame  int
}

// Crossfades lists adjacent section pairs whose fade windows overlap. This
// is legal, back-to-back sections rely on it, but worth knowing about when
// authoring a table.
func (s *Sequence) Crossfades() []Crossfade {
	var out []Crossfade
	for i := 1; i < len(s.Sections); i++ {
		prev, next := s.Sections[i-1], s.Sections[i]
		first := next.Start - s.FadeBuffer
		last := prev.End + s.FadeBuffer
		if s.FadeBuffer > 0 && first <= last {
			out = append(out, Crossfade{From: prev.Key, To: next.Key, FirstFrame: first, LastFrame: last})
		}
	}
	return out
}
