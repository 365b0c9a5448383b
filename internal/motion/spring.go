// Package motion holds the small numeric helpers the overlays animate with:
// a damped spring that chases a moving target and a clamped range mapping.
package motion

import "time"

// maxStep bounds a single integration step so stiff springs stay stable at
// low tick rates.
const maxStep = 4 * time.Millisecond

// Spring is a damped harmonic oscillator pulling Value toward Target.
type Spring struct {
	Stiffness float64
	Damping   float64
	Mass      float64

	// RestDelta and RestSpeed decide when the spring snaps onto Target.
	RestDelta float64
	RestSpeed float64

	Value    float64
	Velocity float64
	Target   float64
}

// NewSpring creates a spring resting at value.
func NewSpring(stiffness, damping, mass, value float64) *Spring {
	if mass <= 0 {
		mass = 1
	}
	return &Spring{
		Stiffness: stiffness,
		Damping:   damping,
		Mass:      mass,
		RestDelta: 0.01,
		RestSpeed: 0.01,
		Value:     value,
		Target:    value,
	}
}

// FrameSpring is the tuning the hero wordmark follows the frame index with.
func FrameSpring(value float64) *Spring {
	return NewSpring(280, 50, 0.6, value)
}

// Set changes the target; the value follows on subsequent steps.
func (s *Spring) Set(target float64) {
	s.Target = target
}

// Jump moves value and target together and kills velocity.
func (s *Spring) Jump(value float64) {
	s.Value, s.Target, s.Velocity = value, value, 0
}

// AtRest reports whether the spring has settled on its target.
func (s *Spring) AtRest() bool {
	return abs(s.Value-s.Target) <= s.RestDelta && abs(s.Velocity) <= s.RestSpeed
}

// Step advances the spring by dt and returns the new value.
func (s *Spring) Step(dt time.Duration) float64 {
	for dt > 0 && !s.AtRest() {
		h := dt
		if h > maxStep {
			h = maxStep
		}
		dt -= h

		sec := h.Seconds()
		force := -s.Stiffness*(s.Value-s.Target) - s.Damping*s.Velocity
		s.Velocity += force / s.Mass * sec
		s.Value += s.Velocity * sec
	}
	if s.AtRest() {
		s.Value, s.Velocity = s.Target, 0
	}
	return s.Value
}

// Transform maps v from the input range onto the output range linearly,
// clamping outside the input range.
func Transform(v float64, in, out [2]float64) float64 {
	if in[0] == in[1] {
		if v < in[0] {
			return out[0]
		}
		return out[1]
	}
	t := (v - in[0]) / (in[1] - in[0])
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return out[0] + (out[1]-out[0])*t
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
