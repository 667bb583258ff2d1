package markov

import (
	"bufio"
	"errors"
	"io"
	"regexp"
	"strings"
	"unicode"
)

// defaultStripPattern matches anything that is neither an ASCII letter nor
// whitespace. \s and \p{Z} miss \v, U+0085 and the \x1c-\x1f separators.
const defaultStripPattern = `[^a-zA-Z\s\p{Z}\v\x{85}\x{1c}-\x{1f}]`

// isWordBoundary reports whether r separates words: any Unicode space plus
// the ASCII file, group, record and unit separators.
func isWordBoundary(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// DefaultTokenizer is a default implementation of the Tokenizer interface.
// It strips every character that is not an ASCII letter or whitespace,
// lowercases what is left, and splits on runs of word boundaries. Because stripping
// leaves only letters and whitespace, the whitespace split is the same as a
// Unicode word-boundary split of the stripped text; contractions and
// hyphenated words collapse into a single token ("don't" becomes "dont").
// Its behavior can be customized with functional options.
type DefaultTokenizer struct {
	separator  string
	stripRegex *regexp.Regexp
}

// Option Is a function that configures a DefaultTokenizer.
type Option func(*DefaultTokenizer)

// WithSeparator Sets the string used for joining tokens during generation.
// Default: " "
func WithSeparator(sep string) Option {
	return func(t *DefaultTokenizer) {
		t.separator = sep
	}
}

// WithStripRegex sets the regex whose matches are removed from the input
// before it is lowercased and split.
// Default: `[^a-zA-Z\s\p{Z}\v\x{85}\x{1c}-\x{1f}]`
func WithStripRegex(stripRegex string) Option {
	return func(t *DefaultTokenizer) {
		t.stripRegex = regexp.MustCompile(stripRegex)
	}
}

// NewDefaultTokenizer creates a new tokenizer with default settings, which can be
// overridden by providing one or more Option functions.
func NewDefaultTokenizer(opts ...Option) *DefaultTokenizer {
	t := &DefaultTokenizer{
		separator:  " ",
		stripRegex: regexp.MustCompile(defaultStripPattern),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Separator Returns the configured separator string.
func (t *DefaultTokenizer) Separator(_, _ string) string {
	return t.separator
}

// Tokenize returns the ordered tokens of text. It never returns empty tokens.
func (t *DefaultTokenizer) Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(t.stripRegex.ReplaceAllString(text, "")), isWordBoundary)
}

// NewStream Returns the stream processor.
func (t *DefaultTokenizer) NewStream(r io.Reader) StreamTokenizer {
	return &DefaultStreamTokenizer{
		reader:    bufio.NewReader(r),
		buffer:    []string{},
		tokenizer: t,
	}
}

// DefaultStreamTokenizer is the default implementation of the StreamTokenizer interface.
// It cuts the stream at word boundaries and tokenizes each raw word with its
// parent DefaultTokenizer, so neither line nor word length is bounded and the
// result matches tokenizing the whole text at once.
type DefaultStreamTokenizer struct {
	reader    *bufio.Reader
	buffer    []string
	tokenizer *DefaultTokenizer
	word      strings.Builder
	done      bool
}

// Next returns the next token from the stream. It returns a Token and a nil error on
// success. When the stream is exhausted, it returns a nil Token and io.EOF.
// Any other error indicates a problem reading from the underlying stream.
func (s *DefaultStreamTokenizer) Next() (*Token, error) {
	for len(s.buffer) == 0 { // Loop until we have tokens
		if s.done {
			return nil, io.EOF
		}
		raw, err := s.readWord()
		if err != nil {
			return nil, err
		}
		s.buffer = s.tokenizer.Tokenize(raw)
	}

	word := s.buffer[0]
	s.buffer = s.buffer[1:]

	return &Token{Text: word}, nil
}

// readWord returns the runes up to the next word boundary. At the end of the
// stream it returns what is left and marks the tokenizer done.
func (s *DefaultStreamTokenizer) readWord() (string, error) {
	s.word.Reset()
	for {
		r, _, err := s.reader.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.done = true
				return s.word.String(), nil
			}
			return "", err
		}
		if isWordBoundary(r) {
			if s.word.Len() > 0 {
				return s.word.String(), nil
			}
			continue
		}
		s.word.WriteRune(r)
	}
}
