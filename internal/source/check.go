package source

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Resolver maps a frame index to its asset key.
type Resolver interface {
	FramePath(index int) string
}

// Report is the result of checking a sequence's assets.
type Report struct {
	Checked int
	Missing []int
	// Sizes counts frames per decoded dimension. A healthy sequence has
	// exactly one entry.
	Sizes map[image.Point]int
	Errs  []error
}

// Err joins every problem found, or returns nil for a complete sequence.
func (r *Report) Err() error {
	errs := append([]error(nil), r.Errs...)
	if len(r.Sizes) > 1 {
		errs = append(errs, fmt.Errorf("frames have %d different sizes", len(r.Sizes)))
	}
	return errors.Join(errs...)
}

// Check probes frames [0,total) through loader, at most workers at a time.
// Missing or undecodable frames are collected, not fatal.
func Check(ctx context.Context, loader Loader, frames Resolver, total, workers int) (*Report, error) {
	if workers <= 0 {
		workers = 8
	}

	rep := &Report{Sizes: make(map[image.Point]int)}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < total; i++ {
		i := i
		g.Go(func() error {
			cfg, err := loader.Probe(ctx, frames.FramePath(i))
			if ctx.Err() != nil {
				return ctx.Err()
			}

			mu.Lock()
			defer mu.Unlock()
			rep.Checked++
			if err != nil {
				rep.Missing = append(rep.Missing, i)
				rep.Errs = append(rep.Errs, fmt.Errorf("frame %d: %w", i, err))
				return nil
			}
			rep.Sizes[image.Pt(cfg.Width, cfg.Height)]++
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Ints(rep.Missing)
	return rep, nil
}
