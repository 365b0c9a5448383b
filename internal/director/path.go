package director

import (
	"math"
	"time"
)

// Point is a resolved keyframe.
type Point struct {
	Time     float64
	Progress float64
}

// Path is a sorted list of points. Between two points progress follows a
// cubic ease-in-out, so the path never overshoots either end.
type Path []Point

// At returns the scroll progress at time t.
func (p Path) At(t float64) float64 {
	if len(p) == 0 {
		return 0
	}
	if t <= p[0].Time {
		return p[0].Progress
	}
	last := p[len(p)-1]
	if t >= last.Time {
		return last.Progress
	}

	var prev, next Point
	for i := 0; i < len(p)-1; i++ {
		if t >= p[i].Time && t < p[i+1].Time {
			prev, next = p[i], p[i+1]
			break
		}
	}

	span := next.Time - prev.Time
	if span <= 0 {
		return next.Progress
	}
	return lerp(prev.Progress, next.Progress, EaseInOutCubic((t-prev.Time)/span))
}

// Cue is one animated scroll-to issued while playing a path.
type Cue struct {
	At        time.Duration
	Progress  float64
	Duration  time.Duration
	Immediate bool
}

// Cues converts the path into scroll commands: a jump to the first point,
// then one animated scroll per leg, issued when the previous point is
// reached.
func (p Path) Cues() []Cue {
	if len(p) == 0 {
		return nil
	}
	cues := []Cue{{At: seconds(p[0].Time), Progress: p[0].Progress, Immediate: true}}
	for i := 1; i < len(p); i++ {
		leg := seconds(p[i].Time - p[i-1].Time)
		cues = append(cues, Cue{
			At:        seconds(p[i-1].Time),
			Progress:  p[i].Progress,
			Duration:  leg,
			Immediate: leg <= 0,
		})
	}
	return cues
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// EaseInOutCubic accelerates through the first half and decelerates
// through the second.
func EaseInOutCubic(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}
