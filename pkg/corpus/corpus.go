// Package corpus reads training text from disk. Plain-text files are returned
// as-is; HTML files are reduced to their readable article text first.
package corpus

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-shiori/go-readability"
)

// ErrUnreadable wraps every failure to open, read or parse a corpus file.
var ErrUnreadable = errors.New("corpus unreadable")

// maxHTMLSize caps how much of an HTML file is handed to the article extractor.
const maxHTMLSize = 10 * 1024 * 1024

// IsHTML reports whether path names an HTML document, judged by extension.
func IsHTML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

// Load reads the corpus at path fully into memory.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	if !IsHTML(path) {
		return string(data), nil
	}
	return extractArticle(path, data)
}

// Open returns a reader over the corpus at path. Plain-text files are streamed
// directly; HTML files are extracted in memory first. The caller must close it.
func Open(path string) (io.ReadCloser, error) {
	if IsHTML(path) {
		text, err := Load(path)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(strings.NewReader(text)), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	return f, nil
}

func extractArticle(path string, data []byte) (string, error) {
	if len(data) > maxHTMLSize {
		return "", fmt.Errorf("%w: %s is larger than %d bytes", ErrUnreadable, path, maxHTMLSize)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	pageURL := &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}

	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: failed to extract article from %s: %w", ErrUnreadable, path, err)
	}
	return article.TextContent, nil
}
