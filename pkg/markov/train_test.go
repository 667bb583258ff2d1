package markov

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestBuildTransitionTable(t *testing.T) {
	tokens := NewDefaultTokenizer().Tokenize(scenarioCorpus)
	table := BuildTransitionTable(tokens)

	expected := TransitionTable{
		"the": {"cat": 2, "dog": 1},
		"cat": {"sat": 1, "ran": 1},
		"sat": {"the": 2},
		"dog": {"sat": 1},
	}
	if !reflect.DeepEqual(table, expected) {
		t.Errorf("BuildTransitionTable() = %v, want %v", table, expected)
	}
	if _, ok := table["ran"]; ok {
		t.Error("final token 'ran' should have no entry")
	}
	if total := table.Total("the"); total != 3 {
		t.Errorf("Total(the) = %d, want 3", total)
	}
	if links := table.Links(); links != 6 {
		t.Errorf("Links() = %d, want 6", links)
	}
}

func TestBuildTransitionTableShortInput(t *testing.T) {
	for _, tokens := range [][]string{nil, {}, {"alone"}} {
		if table := BuildTransitionTable(tokens); len(table) != 0 {
			t.Errorf("BuildTransitionTable(%q) = %v, want empty table", tokens, table)
		}
	}
}

func TestCountTransitionsMatchesBuild(t *testing.T) {
	tokenizer := NewDefaultTokenizer()
	corpus := "a b c a b d\nc a\n\nb b"

	table, count, err := CountTransitions(context.Background(), tokenizer.NewStream(strings.NewReader(corpus)))
	if err != nil {
		t.Fatalf("CountTransitions() error = %v", err)
	}
	tokens := tokenizer.Tokenize(corpus)
	if count != len(tokens) {
		t.Errorf("token count = %d, want %d", count, len(tokens))
	}
	if expected := BuildTransitionTable(tokens); !reflect.DeepEqual(table, expected) {
		t.Errorf("CountTransitions() = %v, want %v", table, expected)
	}

	// Every token except the last must appear as a predecessor.
	for _, token := range tokens[:len(tokens)-1] {
		if _, ok := table[token]; !ok {
			t.Errorf("token %q has no entry", token)
		}
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestTrainReaderError(t *testing.T) {
	_, err := Train(context.Background(), NewDefaultTokenizer(), failingReader{})
	if err == nil || !strings.Contains(err.Error(), "disk on fire") {
		t.Fatalf("Train() error = %v, want wrapped read error", err)
	}
}

func TestTrainCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Train(ctx, NewDefaultTokenizer(), strings.NewReader(scenarioCorpus))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Train() error = %v, want context.Canceled", err)
	}
}

func TestTrainEmptyCorpus(t *testing.T) {
	for _, corpus := range []string{"", "42 !!!", "lonely"} {
		m := trainTestModel(t, corpus)
		if stats := m.Stats(); stats.Predecessors != 0 || stats.Transitions != 0 {
			t.Errorf("corpus %q: got stats %+v, want empty model", corpus, stats)
		}
	}
}

func TestTrainSingleLineCorpus(t *testing.T) {
	corpus := strings.Repeat("the cat sat ", 100000)
	if len(corpus) <= 1<<20 {
		t.Fatalf("corpus is only %d bytes", len(corpus))
	}

	m, err := Train(context.Background(), NewDefaultTokenizer(), strings.NewReader(corpus))
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if stats := m.Stats(); stats.Predecessors != 3 || stats.Transitions != 299999 {
		t.Errorf("Stats() = %+v, want 3 predecessors and 299999 transitions", stats)
	}
}

func TestPrune(t *testing.T) {
	table := BuildTransitionTable(NewDefaultTokenizer().Tokenize(scenarioCorpus))

	removed := table.Prune(1)
	if removed != 4 {
		t.Errorf("Prune(1) removed %d links, want 4", removed)
	}
	expected := TransitionTable{
		"the": {"cat": 2},
		"sat": {"the": 2},
	}
	if !reflect.DeepEqual(table, expected) {
		t.Errorf("after Prune(1) = %v, want %v", table, expected)
	}

	if removed := table.Prune(0); removed != 0 {
		t.Errorf("Prune(0) removed %d links, want 0", removed)
	}
}

func TestTrainWithMinFrequency(t *testing.T) {
	m := trainTestModel(t, scenarioCorpus, WithMinFrequency(2))

	if got := m.Predecessors(); !reflect.DeepEqual(got, []string{"sat", "the"}) {
		t.Errorf("Predecessors() = %q, want [sat the]", got)
	}
	dist, ok := m.Distribution("the")
	if !ok || len(dist) != 1 || dist[0].Word != "cat" || dist[0].Probability != 1 {
		t.Errorf("Distribution(the) = %+v, want [{cat 1}]", dist)
	}
}

func BenchmarkTrain(b *testing.B) {
	corpus := createBenchmarkCorpus()
	ctx := context.Background()
	tokenizer := NewDefaultTokenizer()

	for _, minFreq := range []int{0, 2} {
		b.Run(fmt.Sprintf("MinFreq%d", minFreq), func(b *testing.B) {
			b.SetBytes(int64(len(corpus)))
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := Train(ctx, tokenizer, strings.NewReader(corpus), WithMinFrequency(minFreq)); err != nil {
					b.Fatalf("Train() failed: %v", err)
				}
			}
		})
	}
}
