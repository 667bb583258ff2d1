package markov

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
)

var (
	// ErrUnknownPredecessor is returned when sampling from a word that has no
	// recorded successors. Use errors.As with *UnknownPredecessorError to
	// recover the word.
	ErrUnknownPredecessor = errors.New("unknown predecessor")
	// ErrInvalidCount is returned when a negative number of words is requested.
	ErrInvalidCount = errors.New("invalid word count")
)

// UnknownPredecessorError reports the word that could not be sampled from and
// the zero-based generation step at which it was reached.
type UnknownPredecessorError struct {
	Word string
	Step int
}

func (e *UnknownPredecessorError) Error() string {
	return fmt.Sprintf("unknown predecessor %q at step %d", e.Word, e.Step)
}

// Is makes errors.Is(err, ErrUnknownPredecessor) hold.
func (e *UnknownPredecessorError) Is(target error) bool {
	return target == ErrUnknownPredecessor
}

// maxInitialCapacity bounds the up-front allocation of Generate's result.
const maxInitialCapacity = 1024

// generateOptions Is used by the generate functions to configure default options.
type generateOptions struct {
	rng *rand.Rand
}

// GenerateOption is a function that configures generation parameters. It's used
// as a variadic argument in Next and Generate.
type GenerateOption func(*generateOptions)

// WithRand sets the random source used for sampling. A *rand.Rand is not safe
// for concurrent use, so each goroutine should pass its own. When unset, the
// package-level math/rand/v2 source is used.
func WithRand(r *rand.Rand) GenerateOption {
	return func(o *generateOptions) { o.rng = r }
}

func newGenerateOptions(opts []GenerateOption) *generateOptions {
	options := &generateOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

func (o *generateOptions) float64() float64 {
	if o.rng != nil {
		return o.rng.Float64()
	}
	return rand.Float64()
}

// Next draws one successor of word from its distribution.
func (m *Model) Next(word string, opts ...GenerateOption) (string, error) {
	return m.next(word, 0, newGenerateOptions(opts))
}

func (m *Model) next(word string, step int, options *generateOptions) (string, error) {
	dist, ok := m.transitions[word]
	if !ok {
		return "", &UnknownPredecessorError{Word: word, Step: step}
	}
	return dist[sampleIndex(dist, options.float64())].Word, nil
}

// Generate produces n words starting from seed. Each word is drawn from the
// distribution of the word before it; the seed itself is not part of the
// result. A negative n fails with ErrInvalidCount and n == 0 returns an empty
// slice without sampling. Generation stops with an *UnknownPredecessorError
// at the first word that has no successors, which may be the seed itself.
func (m *Model) Generate(ctx context.Context, seed string, n int, opts ...GenerateOption) ([]string, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}
	if n == 0 {
		return []string{}, nil
	}
	if _, ok := m.transitions[seed]; !ok {
		m.logger.DebugContext(ctx, "Generation stopped at unknown predecessor",
			slog.String("seed", seed),
			slog.String("word", seed),
			slog.Int("step", 0),
			slog.Int("requested", n),
		)
		return nil, &UnknownPredecessorError{Word: seed, Step: 0}
	}

	// n is caller input; the slice grows by append past this.
	words := make([]string, 0, min(n, maxInitialCapacity))
	options := newGenerateOptions(opts)
	current := seed
	for step := 0; step < n; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := m.next(current, step, options)
		if err != nil {
			m.logger.DebugContext(ctx, "Generation stopped at unknown predecessor",
				slog.String("seed", seed),
				slog.String("word", current),
				slog.Int("step", step),
				slog.Int("requested", n),
			)
			return nil, err
		}
		words = append(words, next)
		current = next
	}

	m.logger.DebugContext(ctx, "Generation completed",
		slog.String("seed", seed),
		slog.Int("generated_length", len(words)),
	)

	return words, nil
}

// sampleIndex inverts the cumulative distribution of dist at u, which must lie
// in [0, 1). If rounding leaves u past the final cumulative sum, the last
// entry is chosen.
func sampleIndex(dist []Transition, u float64) int {
	var cumulative float64
	for i, t := range dist {
		cumulative += t.Probability
		if u < cumulative {
			return i
		}
	}
	return len(dist) - 1
}
