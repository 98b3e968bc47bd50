package mapreduce

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/topwords/internal/model"
)

// unitsPerWorker is how many ranges each worker gets on average.
// More ranges than workers keeps the pool busy when ranges finish unevenly.
const unitsPerWorker = 4

// Map applies fn to every token on a pool of at most workers goroutines.
// The i-th pair of the result belongs to the i-th token.
func Map(ctx context.Context, tokens []string, fn MapFunc, workers int) ([]KeyValue, error) {
	out := make([]KeyValue, len(tokens))

	err := forEachRange(ctx, len(tokens), workers, func(ctx context.Context, lo, hi int) error {
		for i := lo; i < hi; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			kv, err := fn(tokens[i])
			if err != nil {
				return fmt.Errorf("map token %d: %w", i, err)
			}
			out[i] = kv
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Shuffle groups pairs by exact key equality.
// Groups are returned in order of the first occurrence of their key.
func Shuffle(kvs []KeyValue) []Group {
	index := make(map[string]int)
	groups := make([]Group, 0)

	for _, kv := range kvs {
		i, ok := index[kv.Key]
		if !ok {
			i = len(groups)
			index[kv.Key] = i
			groups = append(groups, Group{Key: kv.Key})
		}
		groups[i].Values = append(groups[i].Values, kv.Value)
	}
	return groups
}

// Reduce applies fn to every group on a pool of at most workers goroutines.
// The i-th pair of the result belongs to the i-th group.
func Reduce(ctx context.Context, groups []Group, fn ReduceFunc, workers int) ([]model.CountPair, error) {
	out := make([]model.CountPair, len(groups))

	err := forEachRange(ctx, len(groups), workers, func(ctx context.Context, lo, hi int) error {
		for i := lo; i < hi; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			pair, err := fn(groups[i])
			if err != nil {
				return fmt.Errorf("reduce %q: %w", groups[i].Key, err)
			}
			out[i] = pair
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SortPairs returns a copy of pairs ordered by count descending.
// Pairs with equal counts are ordered by word ascending.
func SortPairs(pairs []model.CountPair) []model.CountPair {
	sorted := slices.Clone(pairs)
	slices.SortFunc(sorted, comparePairs)
	return sorted
}

func comparePairs(a, b model.CountPair) int {
	if c := cmp.Compare(b.Count, a.Count); c != 0 {
		return c
	}
	return strings.Compare(a.Word, b.Word)
}

// Truncate keeps the first n entries of already sorted pairs.
// Fewer than n pairs are returned as they are.
func Truncate(sorted []model.CountPair, n int) (model.RankedResult, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopN, n)
	}
	n = min(n, len(sorted))
	ranked := make(model.RankedResult, n)
	copy(ranked, sorted[:n])
	return ranked, nil
}

// Rank sorts pairs and keeps the top n. The input is not modified.
func Rank(pairs []model.CountPair, n int) (model.RankedResult, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopN, n)
	}
	return Truncate(SortPairs(pairs), n)
}

// forEachRange splits [0, n) into contiguous ranges and calls fn for each
// range on an errgroup limited to workers goroutines. It returns after every
// started range has finished. The first error cancels the context passed to
// the remaining ranges and is returned.
func forEachRange(ctx context.Context, n, workers int, fn func(ctx context.Context, lo, hi int) error) error {
	if n == 0 {
		return ctx.Err()
	}
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	size := rangeSize(n, workers)
	for lo := 0; lo < n; lo += size {
		hi := min(lo+size, n)
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			return fn(ctx, lo, hi)
		})
	}

	return g.Wait()
}

// rangeSize returns the length of each range for n items and workers goroutines.
func rangeSize(n, workers int) int {
	units := workers * unitsPerWorker
	size := (n + units - 1) / units
	return max(size, 1)
}
