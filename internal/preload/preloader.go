// Package preload fetches a frame sequence in the background: a priority
// burst for the opening frames, then fixed-size batches for the rest.
// Missing frames are skipped, not retried.
package preload

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/scrollscrub/internal/source"
)

// ErrAlreadyStarted is returned when Run is called twice.
var ErrAlreadyStarted = errors.New("preloader already started")

var errNoImage = errors.New("loader returned no image")

// Frames is the part of a sequence the preloader needs.
type Frames interface {
	FramePath(index int) string
}

// State is a snapshot of load progress.
type State struct {
	LoadedCount int
	TotalToLoad int
	Failed      int
	Complete    bool
}

// Progress returns LoadedCount/TotalToLoad, 1 for an empty plan.
func (s State) Progress() float64 {
	if s.TotalToLoad == 0 {
		return 1
	}
	return float64(s.LoadedCount) / float64(s.TotalToLoad)
}

// Preloader loads one sequence into a Store, once.
type Preloader struct {
	frames  Frames
	loader  source.Loader
	opts    Options
	logger  *slog.Logger
	store   *Store
	indices []int
	skip    int

	onProgress []func(State)
	onComplete []func(State)

	started   atomic.Bool
	cancelled atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}

	mu       sync.Mutex
	loaded   int
	failed   int
	complete bool
	lastEmit time.Time
	pending  *time.Timer

	// emitMu serializes notifications; emitted keeps them monotonic.
	emitMu  sync.Mutex
	emitted int
}

// New plans the load of totalFrames frames for a viewport of the given
// width. Nothing is fetched until Run or Start.
func New(frames Frames, totalFrames int, loader source.Loader, viewportWidth float64, opts Options, logger *slog.Logger) *Preloader {
	opts = opts.withDefaults()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	skip := SkipFactor(viewportWidth, opts.SkipRules)
	return &Preloader{
		frames:  frames,
		loader:  loader,
		opts:    opts,
		logger:  logger,
		store:   NewStore(totalFrames),
		indices: Plan(totalFrames, skip),
		skip:    skip,
		cancel:  func() {},
		done:    make(chan struct{}),
	}
}

// OnProgress registers a throttled progress listener. Register before Run.
func (p *Preloader) OnProgress(fn func(State)) {
	p.onProgress = append(p.onProgress, fn)
}

// OnComplete registers a listener called exactly once, when every planned
// frame has settled. Register before Run.
func (p *Preloader) OnComplete(fn func(State)) {
	p.onComplete = append(p.onComplete, fn)
}

// Store returns the frame store the renderer reads from.
func (p *Preloader) Store() *Store { return p.store }

// Indices returns the planned frame indices.
func (p *Preloader) Indices() []int { return append([]int(nil), p.indices...) }

// Skip returns the frame stride chosen for the viewport.
func (p *Preloader) Skip() int { return p.skip }

// State returns the current, unthrottled progress.
func (p *Preloader) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

func (p *Preloader) stateLocked() State {
	return State{
		LoadedCount: p.loaded,
		TotalToLoad: len(p.indices),
		Failed:      p.failed,
		Complete:    p.complete,
	}
}

// Start runs the preloader in the background.
func (p *Preloader) Start(ctx context.Context) {
	go func() {
		if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			p.logger.Warn("preload stopped", "error", err)
		}
	}()
}

// Done is closed when Run returns.
func (p *Preloader) Done() <-chan struct{} { return p.done }

// Stop cancels the preloader. No further batches are issued and no further
// notifications are emitted; loads already in flight finish but are
// discarded. Stop does not wait.
func (p *Preloader) Stop() {
	if p.cancelled.Swap(true) {
		return
	}
	p.mu.Lock()
	if p.pending != nil {
		p.pending.Stop()
		p.pending = nil
	}
	cancel := p.cancel
	p.mu.Unlock()
	cancel()
	p.logger.Debug("preload cancelled")
}

// Run executes the schedule and blocks until every batch has settled or
// the context is cancelled. Per-frame failures never fail Run.
func (p *Preloader) Run(ctx context.Context) error {
	if p.started.Swap(true) {
		return ErrAlreadyStarted
	}
	defer close(p.done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()
	if p.cancelled.Load() {
		return context.Canceled
	}

	// In-flight fetches outlive cancellation; their results are dropped.
	loadCtx := context.WithoutCancel(ctx)
	stop := context.AfterFunc(ctx, p.Stop)
	defer stop()

	start := time.Now()
	priority, bulk := Split(p.indices, p.opts.PriorityCount)
	batches := Batches(bulk, p.opts.BatchSize)
	p.logger.Info("preload started",
		"frames", len(p.indices), "skip", p.skip,
		"priority", len(priority), "batches", len(batches))

	if len(p.indices) == 0 {
		p.settle(-1, nil, nil)
		return nil
	}

	if err := p.runGroup(ctx, loadCtx, priority); err != nil {
		return err
	}
	for _, batch := range batches {
		if err := p.runGroup(ctx, loadCtx, batch); err != nil {
			return err
		}
	}

	st := p.State()
	p.logger.Info("preload finished",
		"loaded", st.LoadedCount-st.Failed, "failed", st.Failed,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// runGroup issues every index at once and waits for all of them to settle.
func (p *Preloader) runGroup(ctx, loadCtx context.Context, indices []int) error {
	if p.cancelled.Load() || ctx.Err() != nil {
		return context.Canceled
	}
	var g errgroup.Group
	for _, idx := range indices {
		idx := idx
		g.Go(func() error {
			img, err := p.loader.Load(loadCtx, p.frames.FramePath(idx))
			p.settle(idx, img, err)
			return nil
		})
	}
	_ = g.Wait()
	if p.cancelled.Load() {
		return context.Canceled
	}
	return nil
}

// settle records one finished load. Failures count towards progress so the
// bar still reaches 100% with gaps in the sequence.
func (p *Preloader) settle(index int, img image.Image, err error) {
	if p.cancelled.Load() {
		return
	}

	if index >= 0 && err == nil && img == nil {
		err = fmt.Errorf("%w: %s", errNoImage, p.frames.FramePath(index))
	}
	if index >= 0 {
		if err != nil {
			p.logger.Debug("frame load failed", "frame", index, "error", err)
		} else {
			p.store.put(index, img)
		}
	}

	p.mu.Lock()
	if index >= 0 {
		p.loaded++
		if err != nil {
			p.failed++
		}
	}
	if p.loaded >= len(p.indices) && !p.complete {
		p.complete = true
		if p.pending != nil {
			p.pending.Stop()
			p.pending = nil
		}
		st := p.stateLocked()
		p.mu.Unlock()
		if p.cancelled.Load() {
			return
		}
		p.emit(st)
		if p.cancelled.Load() {
			return
		}
		for _, fn := range p.onComplete {
			fn(st)
		}
		return
	}

	now := time.Now()
	wait := p.opts.ProgressInterval - now.Sub(p.lastEmit)
	if wait <= 0 {
		p.lastEmit = now
		st := p.stateLocked()
		p.mu.Unlock()
		p.emit(st)
		return
	}
	if p.pending == nil {
		p.pending = time.AfterFunc(wait, p.flush)
	}
	p.mu.Unlock()
}

// flush delivers the coalesced progress once the throttle window closes.
func (p *Preloader) flush() {
	if p.cancelled.Load() {
		return
	}
	p.mu.Lock()
	p.pending = nil
	if p.complete {
		p.mu.Unlock()
		return
	}
	p.lastEmit = time.Now()
	st := p.stateLocked()
	p.mu.Unlock()
	p.emit(st)
}

func (p *Preloader) emit(st State) {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	if p.cancelled.Load() || st.LoadedCount < p.emitted {
		return
	}
	if st.LoadedCount == p.emitted && !st.Complete && p.emitted > 0 {
		return
	}
	p.emitted = st.LoadedCount
	for _, fn := range p.onProgress {
		fn(st)
	}
}
