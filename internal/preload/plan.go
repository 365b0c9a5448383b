package preload

import (
	"sort"
	"time"
)

// SkipRule loads every Skip-th frame on viewports narrower than MaxWidth.
type SkipRule struct {
	MaxWidth float64 `yaml:"max_width"`
	Skip     int     `yaml:"skip"`
}

// DefaultSkipRules halve the payload below the mobile breakpoint.
var DefaultSkipRules = []SkipRule{{MaxWidth: 768, Skip: 2}}

// Options tune the load schedule.
type Options struct {
	// PriorityCount frames are issued all at once before anything else.
	// Zero uses the default; a negative count disables the priority phase.
	PriorityCount int
	// BatchSize caps in-flight loads during the bulk phase.
	BatchSize int
	// ProgressInterval is the minimum gap between progress notifications.
	ProgressInterval time.Duration
	// SkipRules nil uses DefaultSkipRules; an empty non-nil slice loads
	// every frame on any viewport.
	SkipRules []SkipRule
}

// DefaultOptions returns the production schedule: 30 priority frames,
// bulk batches of 20, progress at most every 100ms.
func DefaultOptions() Options {
	return Options{
		PriorityCount:    30,
		BatchSize:        20,
		ProgressInterval: 100 * time.Millisecond,
		SkipRules:        DefaultSkipRules,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	switch {
	case o.PriorityCount == 0:
		o.PriorityCount = def.PriorityCount
	case o.PriorityCount < 0:
		o.PriorityCount = 0
	}
	if o.BatchSize <= 0 {
		o.BatchSize = def.BatchSize
	}
	if o.ProgressInterval <= 0 {
		o.ProgressInterval = def.ProgressInterval
	}
	if o.SkipRules == nil {
		o.SkipRules = def.SkipRules
	}
	return o
}

// SkipFactor picks the frame stride for a viewport width. The narrowest
// matching rule wins; no match loads every frame.
func SkipFactor(viewportWidth float64, rules []SkipRule) int {
	sorted := append([]SkipRule(nil), rules...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MaxWidth < sorted[j].MaxWidth })

	for _, r := range sorted {
		if viewportWidth < r.MaxWidth && r.Skip > 1 {
			return r.Skip
		}
	}
	return 1
}

// Plan lists the frame indices to load, in order.
func Plan(totalFrames, skip int) []int {
	if skip < 1 {
		skip = 1
	}
	indices := make([]int, 0, (totalFrames+skip-1)/skip)
	for i := 0; i < totalFrames; i += skip {
		indices = append(indices, i)
	}
	return indices
}

// Split separates the first k indices from the rest.
func Split(indices []int, k int) (priority, bulk []int) {
	if k > len(indices) {
		k = len(indices)
	}
	if k < 0 {
		k = 0
	}
	return indices[:k], indices[k:]
}

// Batches chunks indices into groups of at most size.
func Batches(indices []int, size int) [][]int {
	if size <= 0 {
		size = 1
	}
	var out [][]int
	for b := 0; b < len(indices); b += size {
		end := b + size
		if end > len(indices) {
			end = len(indices)
		}
		out = append(out, indices[b:end])
	}
	return out
}
