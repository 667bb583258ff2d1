package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/CTAG07/bigram/pkg/corpus"
	"github.com/CTAG07/bigram/pkg/history"
	"github.com/CTAG07/bigram/pkg/markov"
	"github.com/natefinch/atomic"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// run is the whole command. It returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bigram", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFlag := fs.String("config", "", "Path to a JSON config file (created with defaults if missing)")
	corpusFlag := fs.String("corpus", "", "Path to the training corpus (.txt, or .html for article extraction)")
	seedFlag := fs.String("seed", "", "Seed phrase; only its last word seeds generation (prompted if omitted)")
	countFlag := fs.String("n", "", "Number of words to generate (prompted if omitted)")
	randSeedFlag := fs.Uint64("rand-seed", 0, "Seed for the random source, for reproducible output")
	minFreqFlag := fs.Int("min-freq", 0, "Drop transitions seen fewer than this many times")
	historyFlag := fs.String("history-db", "", "SQLite database recording generation runs")
	showHistoryFlag := fs.Int("show-history", 0, "Print the last N recorded runs and exit")
	outFlag := fs.String("out", "", "Also write the generated text to this file")
	logLevelFlag := fs.String("log-level", "", "Log level: debug, info, warn or error")
	versionFlag := fs.Bool("version", false, "Print version information and exit")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if *versionFlag {
		_, _ = fmt.Fprintf(stdout, "bigram %s (commit %s, built %s)\n", Version, Commit, BuildDate)
		return exitOK
	}

	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })

	config := DefaultConfig()
	if *configFlag != "" {
		var err error
		config, err = LoadConfig(*configFlag, stderr)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "failed to load configuration: %v\n", err)
			return exitFailure
		}
	}
	if setFlags["corpus"] {
		config.CorpusPath = *corpusFlag
	}
	if setFlags["rand-seed"] {
		seed := *randSeedFlag
		config.RandomSeed = &seed
	}
	if setFlags["min-freq"] {
		config.MinFrequency = *minFreqFlag
	}
	if setFlags["history-db"] {
		config.HistoryDatabasePath = *historyFlag
	}
	if setFlags["out"] {
		config.OutputPath = *outFlag
	}
	if setFlags["log-level"] {
		config.LogLevel = *logLevelFlag
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: parseLogLevel(config.LogLevel)}))

	var recorder *history.Recorder
	if config.HistoryDatabasePath != "" {
		db, r, err := openHistory(config.HistoryDatabasePath, logger)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "%v\n", err)
			return exitFailure
		}
		defer func() {
			r.Close()
			if err := db.Close(); err != nil {
				logger.Error("Failed to close history database", "error", err)
			}
		}()
		recorder = r
	}

	if *showHistoryFlag > 0 {
		if recorder == nil {
			_, _ = fmt.Fprintln(stderr, "-show-history requires -history-db")
			return exitUsage
		}
		if err := printHistory(ctx, stdout, recorder, *showHistoryFlag); err != nil {
			_, _ = fmt.Fprintf(stderr, "failed to read history: %v\n", err)
			return exitFailure
		}
		return exitOK
	}

	if config.CorpusPath == "" {
		_, _ = fmt.Fprintln(stderr, "a corpus is required: pass -corpus or set corpus_path in the config file")
		return exitUsage
	}

	tokenizer := markov.NewDefaultTokenizer(markov.WithSeparator(config.Separator))
	model, err := trainModel(ctx, config, tokenizer, logger)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return exitFailure
	}

	prompt := bufio.NewReader(stdin)
	phrase := *seedFlag
	if !setFlags["seed"] {
		if phrase, err = ask(prompt, stdout, "Enter text: "); err != nil {
			_, _ = fmt.Fprintf(stderr, "failed to read seed phrase: %v\n", err)
			return exitUsage
		}
	}
	countText := *countFlag
	if !setFlags["n"] {
		if countText, err = ask(prompt, stdout, "How many words to generate: "); err != nil {
			_, _ = fmt.Fprintf(stderr, "failed to read word count: %v\n", err)
			return exitUsage
		}
	}
	count, err := parseCount(countText)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return exitUsage
	}

	seedWord, ok := markov.SeedWord(phrase)
	if !ok {
		_, _ = fmt.Fprintf(stderr, "seed phrase %q has no usable word\n", phrase)
		return exitUsage
	}

	var opts []markov.GenerateOption
	if config.RandomSeed != nil {
		opts = append(opts, markov.WithRand(rand.New(rand.NewPCG(*config.RandomSeed, *config.RandomSeed))))
	}

	record := history.Run{
		Corpus:     config.CorpusPath,
		SeedPhrase: phrase,
		SeedWord:   seedWord,
		Requested:  count,
	}

	words, err := model.Generate(ctx, seedWord, count, opts...)
	if err != nil {
		record.Failure = err.Error()
		recordRun(ctx, recorder, record, logger)
		_, _ = fmt.Fprintln(stderr, describeGenerateError(err))
		return exitFailure
	}

	line := markov.Join(tokenizer, phrase, words)
	record.Output = line
	recordRun(ctx, recorder, record, logger)

	_, _ = fmt.Fprintln(stdout, line)

	if config.OutputPath != "" {
		if err = atomic.WriteFile(config.OutputPath, strings.NewReader(line+"\n")); err != nil {
			_, _ = fmt.Fprintf(stderr, "failed to write output file: %v\n", err)
			return exitFailure
		}
	}

	return exitOK
}

// trainModel builds the model from the configured corpus.
func trainModel(ctx context.Context, config *Config, tokenizer markov.Tokenizer, logger *slog.Logger) (*markov.Model, error) {
	rc, err := corpus.Open(config.CorpusPath)
	if err != nil {
		return nil, err
	}
	defer func(rc io.ReadCloser) {
		_ = rc.Close()
	}(rc)

	model, err := markov.Train(ctx, tokenizer, rc,
		markov.WithMinFrequency(config.MinFrequency),
		markov.WithTrainLogger(logger.With("corpus", config.CorpusPath)),
	)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("training interrupted: %w", err)
		}
		return nil, fmt.Errorf("%w: %w", corpus.ErrUnreadable, err)
	}
	return model, nil
}

// ask writes a prompt and reads one line of input without its line ending.
// A final line without a newline is accepted.
func ask(r *bufio.Reader, w io.Writer, prompt string) (string, error) {
	_, _ = fmt.Fprint(w, prompt)
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// parseCount validates the requested number of words.
func parseCount(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", markov.ErrInvalidCount, text)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %d is negative", markov.ErrInvalidCount, n)
	}
	return n, nil
}

// describeGenerateError turns a generation failure into a user-facing line.
func describeGenerateError(err error) string {
	var upErr *markov.UnknownPredecessorError
	if errors.As(err, &upErr) {
		if upErr.Step == 0 {
			return fmt.Sprintf("word %q not in corpus", upErr.Word)
		}
		return fmt.Sprintf("generation stopped after %d words: word %q never has a successor in the corpus", upErr.Step, upErr.Word)
	}
	return fmt.Sprintf("generation failed: %v", err)
}

// recordRun stores run when history is enabled. Failures are logged only.
func recordRun(ctx context.Context, recorder *history.Recorder, run history.Run, logger *slog.Logger) {
	if recorder == nil {
		return
	}
	if _, err := recorder.Record(ctx, run); err != nil {
		logger.Warn("Failed to record generation run", "error", err)
	}
}

// printHistory writes a summary and the most recent runs.
func printHistory(ctx context.Context, w io.Writer, recorder *history.Recorder, limit int) error {
	summary, err := recorder.Summary(ctx)
	if err != nil {
		return err
	}
	runs, err := recorder.Recent(ctx, limit)
	if err != nil {
		return err
	}
	seeds, err := recorder.TopSeeds(ctx, 5)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "runs: %d (failed: %d), unique seeds: %d, words generated: %d\n",
		summary.TotalRuns, summary.FailedRuns, summary.UniqueSeeds, summary.WordsGenerated)
	for _, s := range seeds {
		_, _ = fmt.Fprintf(w, "seed %-16s runs: %d failed: %d\n", s.SeedWord, s.TotalRuns, s.FailedRuns)
	}
	for _, r := range runs {
		result := r.Output
		if r.Failed() {
			result = "error: " + r.Failure
		}
		_, _ = fmt.Fprintf(w, "#%d %s [%s] n=%d %s\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.SeedWord, r.Requested, result)
	}
	return nil
}
