package mapreduce

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/nao1215/topwords/internal/model"
)

// Counter runs the four counting stages with a fixed configuration.
// A Counter holds no per-run state and may be reused.
type Counter struct {
	workers  int
	logger   *slog.Logger
	mapFn    MapFunc
	reduceFn ReduceFunc
}

// Option configures a Counter.
type Option func(*Counter)

// WithWorkers sets the size of the worker pool. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(c *Counter) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLogger sets the logger used for stage progress messages.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Counter) {
		c.logger = logger
	}
}

// WithMapFunc replaces WordMap.
func WithMapFunc(fn MapFunc) Option {
	return func(c *Counter) {
		if fn != nil {
			c.mapFn = fn
		}
	}
}

// WithReduceFunc replaces SumReduce.
func WithReduceFunc(fn ReduceFunc) Option {
	return func(c *Counter) {
		if fn != nil {
			c.reduceFn = fn
		}
	}
}

// NewCounter creates a Counter. By default the pool has one worker per
// available processor and the stages use WordMap and SumReduce.
func NewCounter(opts ...Option) *Counter {
	c := &Counter{
		workers:  runtime.GOMAXPROCS(0),
		mapFn:    WordMap,
		reduceFn: SumReduce,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Workers returns the size of the worker pool.
func (c *Counter) Workers() int {
	return c.workers
}

// Result is the outcome of Counter.Count.
type Result struct {
	// Ranked holds the top-N pairs.
	Ranked model.RankedResult

	// All holds the full reduction in rank order.
	All []model.CountPair

	// TotalTokens is the number of input tokens.
	TotalTokens int

	// DistinctWords is the number of distinct words.
	DistinctWords int

	// Durations maps stage names (model.StageMap etc.) to elapsed time.
	Durations map[string]time.Duration
}

// Count runs map, shuffle, reduce and sort over tokens and keeps the top n.
// An empty token sequence yields an empty result.
func (c *Counter) Count(ctx context.Context, tokens []string, n int) (*Result, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopN, n)
	}

	res := &Result{
		TotalTokens: len(tokens),
		Durations:   make(map[string]time.Duration, 4),
	}
	c.logger.Info("total words in text", "count", len(tokens), "workers", c.workers)

	start := time.Now()
	mapped, err := Map(ctx, tokens, c.mapFn, c.workers)
	if err != nil {
		return nil, fmt.Errorf("map stage: %w", err)
	}
	res.Durations[model.StageMap] = time.Since(start)
	c.logger.Info("map stage completed", "pairs", len(mapped))

	start = time.Now()
	c.logger.Info("grouping results by keys")
	groups := Shuffle(mapped)
	res.Durations[model.StageShuffle] = time.Since(start)
	c.logger.Info("grouping completed", "groups", len(groups))

	start = time.Now()
	reduced, err := Reduce(ctx, groups, c.reduceFn, c.workers)
	if err != nil {
		return nil, fmt.Errorf("reduce stage: %w", err)
	}
	res.Durations[model.StageReduce] = time.Since(start)
	c.logger.Info("reduce stage completed", "words", len(reduced))

	start = time.Now()
	res.All = SortPairs(reduced)
	res.Ranked, err = Truncate(res.All, n)
	if err != nil {
		return nil, err
	}
	res.DistinctWords = len(res.All)
	res.Durations[model.StageSort] = time.Since(start)
	c.logger.Info("sorting completed", "top", len(res.Ranked))

	return res, nil
}

// CountWords counts tokens with a default Counter and returns the top n.
func CountWords(ctx context.Context, tokens []string, n int) (model.RankedResult, error) {
	res, err := NewCounter().Count(ctx, tokens, n)
	if err != nil {
		return nil, err
	}
	return res.Ranked, nil
}
