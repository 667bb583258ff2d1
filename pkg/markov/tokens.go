package markov

import (
	"io"
	"strings"
)

// Token represents a single tokenized unit of text.
type Token struct {
	Text string
}

// Tokenizer is an interface that defines the contract for splitting input text
// into tokens. This allows the training and generation logic to be independent
// of the specific tokenization strategy.
type Tokenizer interface {
	// NewStream returns a stateful StreamTokenizer for processing an io.Reader.
	NewStream(io.Reader) StreamTokenizer
	// Tokenize splits a complete text into its ordered tokens.
	Tokenize(text string) []string
	// Separator returns the string that should be used to join tokens
	// when building a final generated string, using the previous and current
	// tokens.
	Separator(prev, current string) string
}

// StreamTokenizer is an interface for a stateful tokenizer that processes a
// stream of data, returning one token at a time.
type StreamTokenizer interface {
	// Next returns the next token from the stream. It returns io.EOF as the
	// error when the stream is fully consumed.
	Next() (*Token, error)
}

// Join renders a seed phrase followed by generated words, using the
// tokenizer's separator between every pair. An empty seed phrase yields just
// the generated words.
func Join(tokenizer Tokenizer, seedPhrase string, words []string) string {
	var builder strings.Builder
	builder.WriteString(seedPhrase)
	last := seedPhrase
	for _, word := range words {
		if builder.Len() > 0 {
			builder.WriteString(tokenizer.Separator(last, word))
		}
		builder.WriteString(word)
		last = word
	}
	return builder.String()
}

// SeedWord returns the generation seed for a free-form phrase: its last
// whitespace-delimited field, normalized with the default tokenizer rules.
// The boolean is false when that field contains no letters.
func SeedWord(phrase string) (string, bool) {
	fields := strings.FieldsFunc(phrase, isWordBoundary)
	if len(fields) == 0 {
		return "", false
	}
	tokens := defaultSeedTokenizer.Tokenize(fields[len(fields)-1])
	if len(tokens) == 0 {
		return "", false
	}
	return tokens[len(tokens)-1], true
}

var defaultSeedTokenizer = NewDefaultTokenizer()
