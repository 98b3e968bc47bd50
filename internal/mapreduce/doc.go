// Package mapreduce counts word occurrences with a small map-shuffle-reduce
// pipeline executed on a bounded worker pool.
//
// Counting happens in four stages:
//
//  1. Map turns every token into a (word, 1) pair.
//  2. Shuffle groups the pairs by word.
//  3. Reduce sums each group into one CountPair.
//  4. SortPairs and Truncate rank the pairs and keep the top N.
//
// Map and Reduce split their input into contiguous ranges and run each range
// as one errgroup task. A task only writes to its own region of a
// preallocated output slice, so no locking is needed; errgroup.Wait is the
// barrier between stages. The first failing task cancels the rest of its
// stage and its error is returned to the caller. Partial results of a failed
// stage are discarded.
//
// The worker pool only affects throughput. For a given token sequence the
// result is always the same, including the order of ties.
package mapreduce
