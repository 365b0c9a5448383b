package framemap

import (
	"fmt"
	"math"
)

// Encoding selects the image format every frame of a sequence is stored in.
type Encoding string

const (
	EncodingPNG  Encoding = "png"
	EncodingWebP Encoding = "webp"
)

// Section is a named narrative range of frames. Start and End are inclusive.
type Section struct {
	Key   string `yaml:"key"`
	Start int    `yaml:"start"`
	End   int    `yaml:"end"`
}

// Contains reports whether frame lies inside [Start, End].
func (s Section) Contains(frame int) bool {
	return frame >= s.Start && frame <= s.End
}

// Sequence is the static frame table: how many frames exist, where they
// live and which narrative sections they belong to.
type Sequence struct {
	TotalFrames int       `yaml:"total_frames"`
	FadeBuffer  int       `yaml:"fade_buffer"`
	Prefix      string    `yaml:"prefix"`
	Encoding    Encoding  `yaml:"encoding"`
	Sections    []Section `yaml:"sections"`
}

// ProgressToFrame quantizes a scroll progress value to a frame index.
// The input is clamped to [0,1] first; NaN is treated as 0.
func (s *Sequence) ProgressToFrame(progress float64) int {
	if s.TotalFrames <= 1 {
		return 0
	}
	progress = Clamp01(progress)
	frame := int(math.Round(progress * float64(s.TotalFrames-1)))
	return s.clampFrame(frame)
}

// FrameToProgress is the inverse of ProgressToFrame: the progress value at
// which frame is exactly reached.
func (s *Sequence) FrameToProgress(frame int) float64 {
	if s.TotalFrames <= 1 {
		return 0
	}
	return float64(s.clampFrame(frame)) / float64(s.TotalFrames-1)
}

// ScrollOffsetForFrame returns the scroll distance into the track, in CSS
// pixels, that lands on frame given the track's scrollable height.
func (s *Sequence) ScrollOffsetForFrame(frame int, scrollable float64) float64 {
	if scrollable <= 0 {
		return 0
	}
	return math.Round(s.FrameToProgress(frame) * scrollable)
}

// FramePath resolves a 0-based frame index to its asset key. Frames are
// numbered from 1 and zero-padded to three digits:
//
//	index 0   -> {prefix}-001.png
//	index 299 -> {prefix}-300.png
func (s *Sequence) FramePath(index int) string {
	return fmt.Sprintf("%s-%03d.%s", s.Prefix, s.clampFrame(index)+1, s.ext())
}

// Section returns the section with the given key.
func (s *Sequence) Section(key string) (Section, bool) {
	for _, sec := range s.Sections {
		if sec.Key == key {
			return sec, true
		}
	}
	return Section{}, false
}

// SectionOpacity returns the overlay opacity of a section at frame. Inside
// [start,end] it is 1, it ramps linearly over FadeBuffer frames on either
// side and is 0 beyond. Unknown keys yield 0; Validate catches those.
func (s *Sequence) SectionOpacity(key string, frame int) float64 {
	sec, ok := s.Section(key)
	if !ok {
		return 0
	}
	return opacity(sec, s.FadeBuffer, frame)
}

func opacity(sec Section, buffer, frame int) float64 {
	if sec.Contains(frame) {
		return 1
	}
	if buffer <= 0 {
		return 0
	}
	fadeStart := sec.Start - buffer
	fadeEnd := sec.End + buffer
	switch {
	case frame < fadeStart || frame > fadeEnd:
		return 0
	case frame < sec.Start:
		return float64(frame-fadeStart) / float64(buffer)
	default:
		return 1 - float64(frame-sec.End)/float64(buffer)
	}
}

// ActiveSection returns the first declared section containing frame.
// Frames in a gap between sections belong to no section.
func (s *Sequence) ActiveSection(frame int) (string, bool) {
	for _, sec := range s.Sections {
		if sec.Contains(frame) {
			return sec.Key, true
		}
	}
	return "", false
}

// Opacities returns the opacity of every section at frame, keyed by section.
func (s *Sequence) Opacities(frame int) map[string]float64 {
	out := make(map[string]float64, len(s.Sections))
	for _, sec := range s.Sections {
		out[sec.Key] = opacity(sec, s.FadeBuffer, frame)
	}
	return out
}

func (s *Sequence) clampFrame(frame int) int {
	if frame < 0 {
		return 0
	}
	if s.TotalFrames > 0 && frame > s.TotalFrames-1 {
		return s.TotalFrames - 1
	}
	return frame
}

func (s *Sequence) ext() string {
	if s.Encoding == "" {
		return string(EncodingPNG)
	}
	return string(s.Encoding)
}

// Clamp01 clamps v to [0,1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
