// internal/rules/engine.go
package rules

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/KaIKuxy/eagle-library-player/internal/types"
)

/*
 * Engine owns the state shared by compile and evaluate calls: the hex color
 * cache, the clock used by "within", and the location used by "on". All
 * three are fixed at construction, so an Engine is safe for concurrent use.
 *
 * Filter is the only blocking entry point. It shards items across a bounded
 * errgroup and checks ctx between items; matchers themselves never see ctx.
 */

// Engine compiles and evaluates smart folders.
type Engine struct {
	colors  *colorCache
	now     func() time.Time
	loc     *time.Location
	workers int

	cacheSize int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used by "within" date rules.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the calendar location used by "on" date rules.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

// WithWorkers bounds Filter's parallelism. Values <= 0 use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithColorCacheSize bounds the number of memoized hex literals.
func WithColorCacheSize(n int64) Option {
	return func(e *Engine) { e.cacheSize = n }
}

// NewEngine creates a rules engine.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		now:       time.Now,
		loc:       time.Local,
		cacheSize: types.DefaultColorCacheSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.loc == nil {
		e.loc = time.Local
	}
	if e.workers <= 0 {
		e.workers = runtime.GOMAXPROCS(0)
	}

	colors, err := newColorCache(e.cacheSize)
	if err != nil {
		return nil, err
	}
	e.colors = colors
	return e, nil
}

// Close releases the color cache.
func (e *Engine) Close() {
	e.colors.close()
}

// Match compiles folder and evaluates item against it.
// A folder that fails to compile never matches.
func (e *Engine) Match(folder *types.SmartFolder, item *types.Item, ctx *types.Context) bool {
	compiled, err := e.Compile(folder)
	if err != nil {
		return false
	}
	return e.Evaluate(compiled, item, ctx)
}

// Filter returns the items matching folder, in input order.
// Returns ctx.Err() if cancelled before every item was evaluated.
func (e *Engine) Filter(ctx context.Context, folder *CompiledFolder, items []types.Item, evalCtx *types.Context) ([]types.Item, error) {
	if len(items) == 0 {
		return nil, ctx.Err()
	}

	matched := make([]bool, len(items))
	shards := e.workers
	if shards > len(items) {
		shards = len(items)
	}
	chunk := (len(items) + shards - 1) / shards

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for start := 0; start < len(items); start += chunk {
		start, end := start, min(start+chunk, len(items))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				// Each shard writes a disjoint index range.
				matched[i] = e.Evaluate(folder, &items[i], evalCtx)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]types.Item, 0, len(items))
	for i, ok := range matched {
		if ok {
			out = append(out, items[i])
		}
	}
	return out, nil
}
