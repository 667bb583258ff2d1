package markov

import (
	"context"
	"go/build"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// scenarioCorpus is small enough to check every probability by hand.
const scenarioCorpus = "the cat sat. the dog sat. the cat ran."

// cycleCorpus gives every word, including the last one, at least one successor.
const cycleCorpus = "one two three one three two one two three one"

// trainTestModel trains a Model on corpus with the default tokenizer.
func trainTestModel(t *testing.T, corpus string, opts ...TrainOption) *Model {
	t.Helper()
	m, err := Train(context.Background(), NewDefaultTokenizer(), strings.NewReader(corpus), opts...)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	return m
}

// seededRand returns a reproducible random source.
func seededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// panicSource fails the test run if anything draws from it.
type panicSource struct{}

func (panicSource) Uint64() uint64 {
	panic("random source consulted")
}

var (
	benchmarkCorpus string
	corpusOnce      sync.Once
)

// createBenchmarkCorpus reads Go source files to create a corpus for benchmarking.
func createBenchmarkCorpus() string {
	corpusOnce.Do(func() {
		var sb strings.Builder
		goRoot := build.Default.GOROOT
		filesToRead := []string{
			filepath.Join(goRoot, "src/net/http/server.go"),
			filepath.Join(goRoot, "src/go/parser/parser.go"),
			filepath.Join(goRoot, "src/encoding/json/encode.go"),
		}

		for _, file := range filesToRead {
			content, err := os.ReadFile(file)
			if err != nil {
				benchmarkCorpus = "this is a fallback corpus for benchmarking. it is not very long but will prevent a crash. "
				return
			}
			sb.Write(content)
			sb.WriteString("\n")
		}
		benchmarkCorpus = sb.String()
	})
	return benchmarkCorpus
}
