package director

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ivlev/scrollscrub/internal/framemap"
	"github.com/ivlev/scrollscrub/internal/scroll"
)

func TestGenerateScript(t *testing.T) {
	seq := framemap.Master()
	d := NewDirector()

	script, err := d.GenerateScript(seq, "master", 20)
	if err != nil {
		t.Fatalf("GenerateScript failed: %v", err)
	}
	if script.Version != ScriptVersion || script.Sequence != "master" {
		t.Errorf("Unexpected header: %+v", script)
	}

	// start, intro, arrive+leave per section, end
	if want := 2 + 2*len(seq.Sections) + 1; len(script.Keyframes) != want {
		t.Errorf("Expected %d keyframes, got %d", want, len(script.Keyframes))
	}

	path, err := script.Resolve(seq)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	for i, p := range path {
		t.Logf("Keyframe %d: time=%.2fs, progress=%.3f, frame=%d", i, p.Time, p.Progress, seq.ProgressToFrame(p.Progress))
	}

	if path[0].Progress != 0 || path[len(path)-1].Progress != 1 {
		t.Errorf("Tour should run from 0 to 1, got %v..%v", path[0].Progress, path[len(path)-1].Progress)
	}
	for i := 1; i < len(path); i++ {
		if path[i].Progress < path[i-1].Progress {
			t.Errorf("Tour goes backwards at keyframe %d", i)
		}
	}
	if d := script.Duration(); d < 19 || d > 21 {
		t.Errorf("Duration = %.2f, want about 20", d)
	}

	// Every section is the active one while the tour dwells on it.
	for i, sec := range seq.Sections {
		arrive := path[2+2*i]
		if key, _ := seq.ActiveSection(seq.ProgressToFrame(arrive.Progress)); key != sec.Key {
			t.Errorf("Dwell %d lands in %q, want %q", i, key, sec.Key)
		}
	}
}

func TestGenerateScriptStretchesShortTours(t *testing.T) {
	d := NewDirector()
	script, err := d.GenerateScript(framemap.Extended(), "extended", 1)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(script.Keyframes); i++ {
		gap := script.Keyframes[i].Time - script.Keyframes[i-1].Time
		if gap <= 0 {
			t.Errorf("Keyframes %d and %d share a time", i-1, i)
		}
	}
	if _, err := d.GenerateScript(&framemap.Sequence{TotalFrames: 10}, "", 5); err == nil {
		t.Error("Expected error for a sequence without sections")
	}
}

func TestPathInterpolation(t *testing.T) {
	path := Path{
		{Time: 0, Progress: 0},
		{Time: 2, Progress: 0.5},
		{Time: 4, Progress: 0.5},
		{Time: 6, Progress: 1},
	}

	tests := []struct {
		time float64
		want float64
	}{
		{-1, 0},
		{0, 0},
		{1, 0.25},
		{2, 0.5},
		{3, 0.5},
		{5, 0.75},
		{6, 1},
		{9, 1},
	}
	for _, tt := range tests {
		if got := path.At(tt.time); abs(got-tt.want) > 1e-9 {
			t.Errorf("At(%.1f) = %.4f, want %.4f", tt.time, got, tt.want)
		}
	}

	prev := -1.0
	for ts := 0.0; ts <= 6; ts += 0.01 {
		got := path.At(ts)
		if got < prev-1e-12 {
			t.Fatalf("Path not monotonic at %.2f: %.6f < %.6f", ts, got, prev)
		}
		prev = got
	}

	if (Path{}).At(3) != 0 {
		t.Error("Empty path should stay at 0")
	}
}

func TestResolveErrors(t *testing.T) {
	seq := framemap.Master()
	frame := 150
	half := 0.5

	tests := []struct {
		name   string
		script Script
		want   error
	}{
		{"empty", Script{}, ErrNoKeyframes},
		{"unordered", Script{Keyframes: []Keyframe{{Time: 2, Progress: &half}, {Time: 1, Progress: &half}}}, ErrUnordered},
		{"no target", Script{Keyframes: []Keyframe{{Time: 0}}}, ErrNoTarget},
		{"unknown section", Script{Keyframes: []Keyframe{{Time: 0, Focus: "fleet"}}}, ErrUnknownSection},
		{"ok", Script{Keyframes: []Keyframe{{Time: 0, Frame: &frame}, {Time: 1, Focus: "global"}}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.script.Resolve(seq)
			if tt.want == nil && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestScriptWriteRead(t *testing.T) {
	half := 0.5
	frame := 42
	script := &Script{
		Version:  ScriptVersion,
		Sequence: "master",
		Keyframes: []Keyframe{
			{Time: 0, Progress: &half},
			{Time: 1.5, Frame: &frame},
			{Time: 3, Focus: "about"},
		},
	}

	tmpFile := filepath.Join(t.TempDir(), "script.yaml")
	if err := WriteScript(script, tmpFile); err != nil {
		t.Fatalf("WriteScript failed: %v", err)
	}

	read, err := ReadScript(tmpFile)
	if err != nil {
		t.Fatalf("ReadScript failed: %v", err)
	}
	if read.Version != script.Version || len(read.Keyframes) != 3 {
		t.Fatalf("Round trip mismatch: %+v", read)
	}
	if read.Keyframes[0].Progress == nil || *read.Keyframes[0].Progress != 0.5 {
		t.Error("Progress keyframe lost")
	}
	if read.Keyframes[1].Frame == nil || *read.Keyframes[1].Frame != 42 {
		t.Error("Frame keyframe lost")
	}
	if read.Keyframes[2].Focus != "about" || read.Keyframes[2].Progress != nil {
		t.Errorf("Focus keyframe mangled: %+v", read.Keyframes[2])
	}
}

type fakeWindow struct{ y float64 }

func (w *fakeWindow) ScrollY() float64   { return w.y }
func (w *fakeWindow) ScrollTo(y float64) { w.y = y }

func TestPlayerFollowsCues(t *testing.T) {
	path := Path{
		{Time: 0, Progress: 0},
		{Time: 1, Progress: 0.5},
		{Time: 1, Progress: 0.6},
		{Time: 2, Progress: 1},
	}
	cues := path.Cues()
	if len(cues) != 4 || !cues[0].Immediate || !cues[2].Immediate || cues[3].Duration != time.Second {
		t.Fatalf("Unexpected cues: %+v", cues)
	}

	win := &fakeWindow{y: 300}
	p := NewPlayer(win)
	scroll.SetScroller(p)
	defer scroll.ClearScroller(p)

	const scrollable = 1000.0
	step := 10 * time.Millisecond
	next := 0
	var prev float64
	for now := time.Duration(0); now <= 2*time.Second+step; now += step {
		for next < len(cues) && cues[next].At <= now {
			c := cues[next]
			err := scroll.ScrollTo(win, c.Progress*scrollable, scroll.ScrollToOptions{
				Duration:  c.Duration,
				Immediate: c.Immediate,
			})
			if err != nil {
				t.Fatal(err)
			}
			next++
		}
		p.Advance(step)

		if want := path.At(now.Seconds()+step.Seconds()) * scrollable; abs(win.y-want) > 1e-6 && now+step < time.Second {
			t.Fatalf("At %s scroll %.3f, path says %.3f", now, win.y, want)
		}
		if win.y < prev {
			t.Fatalf("Scroll went backwards at %s", now)
		}
		prev = win.y
	}

	if p.Animating() || win.y != scrollable {
		t.Errorf("Player ended at %.2f (animating=%v)", win.y, p.Animating())
	}
}

func TestPlayerImmediateAndOffset(t *testing.T) {
	win := &fakeWindow{}
	p := NewPlayer(win)

	p.ScrollTo(500, scroll.ScrollToOptions{Duration: time.Second})
	p.Advance(500 * time.Millisecond)
	if win.y != 250 {
		t.Errorf("Halfway through an eased scroll: %.2f", win.y)
	}

	p.ScrollTo(100, scroll.ScrollToOptions{Immediate: true, Offset: -20})
	if win.y != 80 || p.Animating() {
		t.Errorf("Immediate scroll landed at %.2f (animating=%v)", win.y, p.Animating())
	}
	if p.Advance(time.Second) {
		t.Error("Advance after an immediate scroll reported activity")
	}

	p.ScrollTo(-50, scroll.ScrollToOptions{Immediate: true})
	if win.y != 0 {
		t.Errorf("Negative target not clamped: %.2f", win.y)
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
