package director

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/scrollscrub/internal/framemap"
)

// ScriptVersion is written into every generated script.
const ScriptVersion = "1.0"

var (
	ErrNoKeyframes    = errors.New("script has no keyframes")
	ErrUnordered      = errors.New("keyframe times must not decrease")
	ErrNoTarget       = errors.New("keyframe has no target")
	ErrUnknownSection = errors.New("keyframe focuses an unknown section")
)

// Script is a timed scroll path through a sequence.
type Script struct {
	Version   string     `yaml:"version"`
	Sequence  string     `yaml:"sequence,omitempty"` // preset name or table path, informational
	Keyframes []Keyframe `yaml:"keyframes"`
}

// Keyframe pins the scroll position at a moment. Exactly one of Progress,
// Frame or Focus is expected; Progress wins, then Frame, then Focus.
type Keyframe struct {
	Time     float64  `yaml:"time"`               // seconds from start
	Focus    string   `yaml:"focus,omitempty"`    // section key, resolves to its middle frame
	Frame    *int     `yaml:"frame,omitempty"`    // absolute frame index
	Progress *float64 `yaml:"progress,omitempty"` // scroll progress in [0,1]
}

// Duration is the time of the last keyframe.
func (s *Script) Duration() float64 {
	if len(s.Keyframes) == 0 {
		return 0
	}
	return s.Keyframes[len(s.Keyframes)-1].Time
}

// Resolve turns keyframes into progress points against seq.
func (s *Script) Resolve(seq *framemap.Sequence) (Path, error) {
	if len(s.Keyframes) == 0 {
		return nil, ErrNoKeyframes
	}
	path := make(Path, 0, len(s.Keyframes))
	for i, kf := range s.Keyframes {
		if i > 0 && kf.Time < s.Keyframes[i-1].Time {
			return nil, fmt.Errorf("keyframe %d at %.2fs: %w", i, kf.Time, ErrUnordered)
		}
		p, err := kf.progress(seq)
		if err != nil {
			return nil, fmt.Errorf("keyframe %d: %w", i, err)
		}
		path = append(path, Point{Time: kf.Time, Progress: p})
	}
	return path, nil
}

func (kf Keyframe) progress(seq *framemap.Sequence) (float64, error) {
	switch {
	case kf.Progress != nil:
		return framemap.Clamp01(*kf.Progress), nil
	case kf.Frame != nil:
		return seq.FrameToProgress(*kf.Frame), nil
	case kf.Focus != "":
		sec, ok := seq.Section(kf.Focus)
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownSection, kf.Focus)
		}
		return seq.FrameToProgress((sec.Start + sec.End) / 2), nil
	}
	return 0, ErrNoTarget
}

// WriteScript saves a script to a YAML file.
func WriteScript(script *Script, path string) error {
	data, err := yaml.Marshal(script)
	if err != nil {
		return fmt.Errorf("failed to marshal script: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ReadScript loads a script from a YAML file.
func ReadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("failed to unmarshal script: %w", err)
	}
	return &script, nil
}
