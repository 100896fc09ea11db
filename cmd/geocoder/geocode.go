package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jageocoder/abr-geocoder/app/config"
	"github.com/jageocoder/abr-geocoder/internal/addr"
	"github.com/jageocoder/abr-geocoder/internal/format"
	"github.com/jageocoder/abr-geocoder/internal/pipeline"
	"github.com/jageocoder/abr-geocoder/internal/store"
)

func newGeocodeCmd() *cobra.Command {
	var source string
	var outFormat string
	var fuzzy string

	cmd := &cobra.Command{
		Use:   "geocode",
		Short: "Resolve a batch of addresses against the reference tries",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			defer logger.Sync()

			if fuzzy != "" {
				config.C.Trie.FuzzyChar = fuzzy
			}
			if outFormat != "csv" && outFormat != "json" && outFormat != "ndjson" {
				return fmt.Errorf("geocode: --format must be one of csv|json|ndjson, got %q", outFormat)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			dbPath := config.C.ReferenceDB
			if dbPath == "" {
				dbPath = filepath.Join(config.C.DataDir, "reference.db")
			}
			st, err := store.Open(dbPath, logger)
			if err != nil {
				return fmt.Errorf("geocode: %w", err)
			}
			defer st.Close()

			tries := store.LoadAsync(ctx, st, logger)
			select {
			case <-tries.Ready():
			case <-ctx.Done():
				return ctx.Err()
			}

			in, closeIn, err := openInput(source)
			if err != nil {
				return fmt.Errorf("geocode: %w", err)
			}
			defer closeIn()

			sink, closeSink, err := newSink(outFormat, cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("geocode: %w", err)
			}

			var fuzzyRune rune
			if fc := []rune(config.C.Trie.FuzzyChar); len(fc) == 1 {
				fuzzyRune = fc[0]
			}
			driver := pipeline.NewDriver(logger,
				pipeline.NewIngestStage(),
				pipeline.NewPrefectureStage(tries.Prefectures, tries.Cities),
				pipeline.NewCityStage(tries.Cities).WithFuzzy(fuzzyRune),
				pipeline.NewCityRecoveryStage(tries.CityRows),
				pipeline.NewTownStage(tries.Towns, tries.Tokyo23).WithFuzzy(fuzzyRune).WithVirtualSuffixes(config.C.Trie.SuffixRunes()),
				pipeline.NewPatchStage(nil),
				pipeline.NewBlockStage(tries.RsdtBlks, tries.RsdtDsps, tries.Parcels).WithFuzzy(fuzzyRune),
				pipeline.NewEmitStage(sink),
			)

			queries := make(chan *addr.Query, 64)
			go feedLines(in, queries)

			out, errCh := driver.Run(ctx, queries)

			var processed int
			for {
				select {
				case _, ok := <-out:
					if !ok {
						if err := closeSink(); err != nil {
							return fmt.Errorf("geocode: %w", err)
						}
						logger.Info("geocode finished", zap.Int("records", processed))
						return nil
					}
					processed++
				case err := <-errCh:
					_ = closeSink()
					return fmt.Errorf("geocode: pipeline failed: %w", err)
				case <-ctx.Done():
					_ = closeSink()
					return ctx.Err()
				}
			}
		},
	}

	cmd.Flags().StringVar(&source, "source", "-", "input file of one address per line, or - for stdin")
	cmd.Flags().StringVar(&outFormat, "format", "csv", "output format: csv|json|ndjson")
	cmd.Flags().StringVar(&fuzzy, "fuzzy", "", "single wildcard character for fuzzy trie matching")
	return cmd
}

// openInput resolves --source into a reader; "-" means stdin, which must
// never be closed by the caller.
func openInput(source string) (io.Reader, func() error, error) {
	if source == "" || source == "-" {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// feedLines scans in line by line, drops comment lines (§6), and turns
// everything else into a Query fed to out. Closes out when in is
// exhausted, the terminal signal for the pipeline's first stage.
func feedLines(in io.Reader, out chan<- *addr.Query) {
	defer close(out)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || pipeline.IsComment(line) {
			continue
		}
		out <- addr.NewQuery(line)
	}
}

// newSink builds the Formatter named by --format and a close func that
// flushes any buffered output (only JSONFormatter needs one).
func newSink(outFormat string, w io.Writer) (pipeline.Formatter, func() error, error) {
	switch outFormat {
	case "csv":
		return format.NewCSVFormatter(w, nil, false), func() error { return nil }, nil
	case "json":
		jf := format.NewJSONFormatter(w)
		return jf, jf.Close, nil
	case "ndjson":
		return format.NewNDJSONFormatter(w), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown format %q", outFormat)
	}
}
