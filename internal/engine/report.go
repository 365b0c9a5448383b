package engine

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ivlev/scrollscrub/internal/preload"
	"github.com/ivlev/scrollscrub/internal/renderer"
	"github.com/ivlev/scrollscrub/internal/system"
)

// Report summarizes one export.
type Report struct {
	Build       string
	Sequence    string
	Frames      int
	Canvas      renderer.Stats
	Load        preload.State
	Total       time.Duration
	Render      time.Duration
	Encode      time.Duration
	Usage       system.Usage
	OutputFiles string
}

// FPS is the effective output rate over the whole run.
func (r *Report) FPS() float64 {
	if r.Total <= 0 {
		return 0
	}
	return float64(r.Frames) / r.Total.Seconds()
}

func (r *Report) String() string {
	var b strings.Builder
	b.WriteString("--- [PERFORMANCE REPORT] ---\n")
	fmt.Fprintf(&b, "Build: %s\n", r.Build)
	fmt.Fprintf(&b, "Sequence: %s -> %s\n", r.Sequence, r.OutputFiles)
	fmt.Fprintf(&b, "Total Time: %.2fs\n", r.Total.Seconds())
	fmt.Fprintf(&b, "Rendering (CPU): %.2fs\n", r.Render.Seconds())
	fmt.Fprintf(&b, "Encoding flush: %.2fs\n", r.Encode.Seconds())
	fmt.Fprintf(&b, "Effective FPS: %.2f\n", r.FPS())
	fmt.Fprintf(&b, "Frames: %d (drawn %d, held %d, idle %d)\n", r.Frames, r.Canvas.Draws, r.Canvas.Held, r.Canvas.Idle)
	fmt.Fprintf(&b, "Preload: %d/%d settled, %d failed\n", r.Load.LoadedCount, r.Load.TotalToLoad, r.Load.Failed)
	fmt.Fprintf(&b, "Memory: heap %s, rss %s, host %.1f%% of %s\n",
		system.FormatBytes(r.Usage.HeapAlloc), system.FormatBytes(r.Usage.ProcessRSS),
		r.Usage.HostMemUsed, system.FormatBytes(r.Usage.HostMemTotal))
	fmt.Fprintf(&b, "CPU: %d cores, process %.1f%%\n", r.Usage.CPUs, r.Usage.ProcessCPU)
	b.WriteString("----------------------------\n")
	return b.String()
}

// LogLine is the single-line form appended to the benchmark log.
func (r *Report) LogLine(at time.Time) string {
	return fmt.Sprintf("[%s] Build: %s | Sequence: %s | Frames: %d | Total: %.2fs | Render: %.2fs | Held: %d | FPS: %.2f\n",
		at.Format("2006-01-02 15:04:05"),
		r.Build,
		r.Sequence,
		r.Frames,
		r.Total.Seconds(),
		r.Render.Seconds(),
		r.Canvas.Held,
		r.FPS(),
	)
}

// AppendBenchmark appends the report's log line to path.
func (r *Report) AppendBenchmark(path string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(r.LogLine(time.Now())); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
