package director

import (
	"fmt"

	"github.com/ivlev/scrollscrub/internal/framemap"
)

// Director writes a guided tour through a sequence: scroll to each section,
// dwell on it, move on, and finish at the bottom of the track.
type Director struct {
	MinDwell float64 // minimum time parked on a section (seconds)
	MaxDwell float64 // maximum time parked on a section (seconds)
	Intro    float64 // time spent on the first frame before moving
	Outro    float64 // time to travel from the last section to the end
}

// NewDirector creates a director with default timings.
func NewDirector() *Director {
	return &Director{
		MinDwell: 1.0,
		MaxDwell: 3.0,
		Intro:    0.5,
		Outro:    1.0,
	}
}

// GenerateScript builds a tour of seq lasting roughly totalDuration seconds.
// Short durations are stretched so every section gets at least MinDwell.
func (d *Director) GenerateScript(seq *framemap.Sequence, name string, totalDuration float64) (*Script, error) {
	if len(seq.Sections) == 0 {
		return nil, fmt.Errorf("sequence has no sections to visit")
	}

	slot := d.calculateSlot(totalDuration, len(seq.Sections))
	dwell := slot / 2
	if dwell < d.MinDwell {
		dwell = d.MinDwell
	}
	if dwell > d.MaxDwell {
		dwell = d.MaxDwell
	}
	travel := slot - dwell
	if travel < 0.5 {
		travel = 0.5
	}

	start := 0.0
	keyframes := []Keyframe{{Time: 0, Progress: &start}}
	t := d.Intro
	if t > 0 {
		keyframes = append(keyframes, Keyframe{Time: t, Progress: &start})
	}

	for _, sec := range seq.Sections {
		t += travel
		keyframes = append(keyframes, Keyframe{Time: t, Focus: sec.Key})
		t += dwell
		keyframes = append(keyframes, Keyframe{Time: t, Focus: sec.Key})
	}

	end := 1.0
	t += d.Outro
	keyframes = append(keyframes, Keyframe{Time: t, Progress: &end})

	return &Script{
		Version:   ScriptVersion,
		Sequence:  name,
		Keyframes: keyframes,
	}, nil
}

// calculateSlot splits the time left after intro and outro evenly between
// sections.
func (d *Director) calculateSlot(totalDuration float64, sections int) float64 {
	available := totalDuration - d.Intro - d.Outro
	if available <= 0 {
		available = totalDuration
	}
	return available / float64(sections)
}
