package markov

import (
	"io"
	"log/slog"
	"slices"
	"strings"
)

// Transition is one entry of a predecessor's distribution: a successor word
// and the probability of drawing it.
type Transition struct {
	Word        string
	Probability float64
}

// Model is a trained bigram model. For every predecessor word it holds the
// normalized distribution over successor words, ordered by successor so that
// sampling with a fixed random source is reproducible.
//
// A Model is immutable once built and is safe for concurrent use. SetLogger
// must be called before the model is shared.
type Model struct {
	transitions map[string][]Transition
	vocabulary  int
	links       int
	trained     int
	logger      *slog.Logger
}

// NewModel normalizes a TransitionTable into a Model by dividing each
// successor count by the total count of its predecessor. No probability mass
// is reserved for unseen transitions. The table is not retained.
func NewModel(table TransitionTable) *Model {
	m := &Model{
		transitions: make(map[string][]Transition, len(table)),
		logger:      discardLogger(),
	}

	vocab := make(map[string]struct{})
	for prev, successors := range table {
		total := table.Total(prev)
		if total == 0 {
			continue
		}
		vocab[prev] = struct{}{}

		dist := make([]Transition, 0, len(successors))
		for next, count := range successors {
			vocab[next] = struct{}{}
			dist = append(dist, Transition{
				Word:        next,
				Probability: float64(count) / float64(total),
			})
		}
		slices.SortFunc(dist, func(a, b Transition) int {
			return strings.Compare(a.Word, b.Word)
		})

		m.transitions[prev] = dist
		m.links += len(dist)
		m.trained += total
	}
	m.vocabulary = len(vocab)

	return m
}

// Contains reports whether word has a distribution, i.e. whether it was seen
// in training anywhere but the final position.
func (m *Model) Contains(word string) bool {
	_, ok := m.transitions[word]
	return ok
}

// Distribution returns a copy of the successor distribution for word. The
// boolean is false when the word has no recorded successors.
func (m *Model) Distribution(word string) ([]Transition, bool) {
	dist, ok := m.transitions[word]
	if !ok {
		return nil, false
	}
	return slices.Clone(dist), true
}

// Predecessors returns every word with a distribution, sorted.
func (m *Model) Predecessors() []string {
	words := make([]string, 0, len(m.transitions))
	for word := range m.transitions {
		words = append(words, word)
	}
	slices.Sort(words)
	return words
}

// SetLogger sets the logger for the Model. By default, all logs are discarded.
func (m *Model) SetLogger(logger *slog.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
