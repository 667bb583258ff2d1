package markov

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// TransitionTable holds raw bigram counts: predecessor -> successor -> count.
// A missing key means a count of zero; every stored count is positive.
type TransitionTable map[string]map[string]int

// NewTransitionTable returns an empty table.
func NewTransitionTable() TransitionTable {
	return make(TransitionTable)
}

// Add records one occurrence of next following prev.
func (t TransitionTable) Add(prev, next string) {
	successors, ok := t[prev]
	if !ok {
		successors = make(map[string]int)
		t[prev] = successors
	}
	successors[next]++
}

// Total returns the number of recorded transitions out of prev.
func (t TransitionTable) Total(prev string) int {
	var total int
	for _, count := range t[prev] {
		total += count
	}
	return total
}

// Links returns the number of distinct predecessor -> successor pairs.
func (t TransitionTable) Links() int {
	var links int
	for _, successors := range t {
		links += len(successors)
	}
	return links
}

// Prune removes every link whose count is less than or equal to threshold,
// and any predecessor left without successors. It returns the number of links
// removed. A threshold below 1 removes nothing.
func (t TransitionTable) Prune(threshold int) int {
	var removed int
	for prev, successors := range t {
		for next, count := range successors {
			if count <= threshold {
				delete(successors, next)
				removed++
			}
		}
		if len(successors) == 0 {
			delete(t, prev)
		}
	}
	return removed
}

// BuildTransitionTable counts every adjacent pair of tokens. A sequence with
// fewer than two tokens produces an empty table.
func BuildTransitionTable(tokens []string) TransitionTable {
	table := NewTransitionTable()
	for i := 0; i+1 < len(tokens); i++ {
		table.Add(tokens[i], tokens[i+1])
	}
	return table
}

// CountTransitions performs the same pass as BuildTransitionTable over a token
// stream, without holding the token sequence in memory. It also returns the
// number of tokens read.
func CountTransitions(ctx context.Context, stream StreamTokenizer) (TransitionTable, int, error) {
	table := NewTransitionTable()

	var prev string
	var tokenCount int
	for {
		if err := ctx.Err(); err != nil {
			return nil, tokenCount, err
		}
		token, err := stream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, tokenCount, fmt.Errorf("tokenizer error: %w", err)
		}
		if tokenCount > 0 {
			table.Add(prev, token.Text)
		}
		prev = token.Text
		tokenCount++
	}

	return table, tokenCount, nil
}

// trainOptions Is used by Train to configure default options.
type trainOptions struct {
	minFrequency int
	logger       *slog.Logger
}

// TrainOption is a function that configures training parameters.
type TrainOption func(*trainOptions)

// WithMinFrequency drops every transition observed fewer than n times before
// the counts are normalized. Values of 1 or less keep everything.
func WithMinFrequency(n int) TrainOption {
	return func(o *trainOptions) { o.minFrequency = n }
}

// WithTrainLogger sets the logger used by Train and attached to the
// resulting Model.
func WithTrainLogger(logger *slog.Logger) TrainOption {
	return func(o *trainOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Train reads a corpus from data, tokenizes it, counts its bigrams and returns
// the normalized Model. The token sequence is consumed as a stream and is not
// retained.
func Train(ctx context.Context, tokenizer Tokenizer, data io.Reader, opts ...TrainOption) (*Model, error) {
	options := &trainOptions{
		minFrequency: 0,
		logger:       discardLogger(),
	}
	for _, opt := range opts {
		opt(options)
	}

	table, tokenCount, err := CountTransitions(ctx, tokenizer.NewStream(data))
	if err != nil {
		return nil, fmt.Errorf("could not count transitions: %w", err)
	}

	var pruned int
	if options.minFrequency > 1 {
		pruned = table.Prune(options.minFrequency - 1)
	}

	model := NewModel(table)
	model.SetLogger(options.logger)

	options.logger.InfoContext(ctx, "Training completed",
		slog.Int("tokens_processed", tokenCount),
		slog.Int("predecessors", len(table)),
		slog.Int("links", table.Links()),
		slog.Int("links_pruned", pruned),
	)
	if tokenCount < 2 {
		options.logger.WarnContext(ctx, "Corpus too short to produce any transitions",
			slog.Int("tokens_processed", tokenCount),
		)
	}

	return model, nil
}
