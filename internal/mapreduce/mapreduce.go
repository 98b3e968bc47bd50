package mapreduce

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/nao1215/topwords/internal/model"
)

var (
	// ErrInvalidTopN is returned when the requested number of results is not positive.
	ErrInvalidTopN = errors.New("invalid top-n: must be a positive integer")

	// ErrMalformedToken is returned by WordMap for tokens that cannot be counted.
	ErrMalformedToken = errors.New("malformed token")

	// ErrNegativeCount is returned by SumReduce when a group holds a negative value.
	ErrNegativeCount = errors.New("negative count")
)

// KeyValue is an intermediate pair emitted by the map stage.
type KeyValue struct {
	Key   string
	Value int
}

// Group holds every value emitted for one key.
type Group struct {
	Key    string
	Values []int
}

// MapFunc transforms one token into one key/value pair.
// It must be safe for concurrent use.
type MapFunc func(token string) (KeyValue, error)

// ReduceFunc folds one group into a single count pair.
// It must be safe for concurrent use.
type ReduceFunc func(g Group) (model.CountPair, error)

// WordMap emits (token, 1).
// An empty token or one that still contains whitespace is rejected,
// since the normalizer never produces either.
func WordMap(token string) (KeyValue, error) {
	if token == "" {
		return KeyValue{}, fmt.Errorf("%w: empty token", ErrMalformedToken)
	}
	if strings.ContainsFunc(token, unicode.IsSpace) {
		return KeyValue{}, fmt.Errorf("%w: %q contains whitespace", ErrMalformedToken, token)
	}
	return KeyValue{Key: token, Value: 1}, nil
}

// SumReduce adds up the values of a group.
func SumReduce(g Group) (model.CountPair, error) {
	total := 0
	for _, v := range g.Values {
		if v < 0 {
			return model.CountPair{}, fmt.Errorf("%w: %d for %q", ErrNegativeCount, v, g.Key)
		}
		total += v
	}
	return model.CountPair{Word: g.Key, Count: total}, nil
}
