// Command nlparse enumerates and ranks command candidates for a single
// natural-language sentence. Ranked results go to stderr as tab-separated
// lines: command, score, length, aligned words, uncovered words, features.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/nlcmd/translator/internal/grammar"
	"github.com/nlcmd/translator/internal/parser"
	"github.com/nlcmd/translator/internal/phrasetable"
	"github.com/nlcmd/translator/pkg/logger"
)

func main() {
	grammarPath := flag.String("grammar", "data/primitive_cmds_grammar.json", "path to grammar syntax file")
	tablePath := flag.String("phrase-table", "data/phrase-table.gz", "path to gzip phrase table")
	maxPipelineDepth := flag.Int("max-pipeline-depth", 3, "maximum pipeline stages in the grammar")
	minLength := flag.Int("min-length", 2, "minimum command length (exclusive)")
	maxLength := flag.Int("max-length", 10, "maximum command length")
	topK := flag.Int("top-k", 50, "number of ranked results")
	redundantPenalty := flag.Float64("redundant-word-penalty", 0.0, "score added per uncovered input word")
	ungroundedPenalty := flag.Float64("ungrounded-token-penalty", -1e-5, "declared penalty for tokens absent from the phrase table")
	logLevel := flag.String("log-level", "warn", "log level (debug, info, warn, error)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: nlparse [flags] <sentence>")
		os.Exit(2)
	}
	sentence := flag.Arg(0)

	logger.Setup(*logLevel, "text")

	g, err := grammar.LoadSyntax(*maxPipelineDepth, *grammarPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load grammar: %v\n", err)
		os.Exit(1)
	}
	table, err := phrasetable.Load(*tablePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load phrase table: %v\n", err)
		os.Exit(1)
	}

	p := parser.New(table, grammar.NewEnumerator(g), parser.Config{
		MinCommandLength:       *minLength,
		MaxCommandLength:       *maxLength,
		RedundantWordPenalty:   *redundantPenalty,
		UngroundedTokenPenalty: *ungroundedPenalty,
		TopK:                   *topK,
	})

	results, err := p.Parse(sentence)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse failed: %v\n", err)
		os.Exit(1)
	}

	stats := p.LastStats()
	fmt.Fprintf(os.Stderr, "total # of parses: %d (%d cells visited, %s)\n",
		stats.ParsesRecorded, stats.CellsVisited, stats.Elapsed)

	for _, r := range results {
		fmt.Fprintf(os.Stderr, "%s\t%g\t%d\t%s\t%s\t%s\n",
			r.Command,
			r.Score,
			r.Length,
			strings.Join(r.AlignedWords, ","),
			strings.Join(r.UncoveredWords, ","),
			formatFeatures(r.Features),
		)
	}
}

func formatFeatures(features map[string]float64) string {
	keys := make([]string, 0, len(features))
	for k := range features {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, features[k])
	}
	return strings.Join(parts, ",")
}
