package benchmark

import (
	"fmt"
	"testing"

	"github.com/nlcmd/translator/internal/grammar"
	"github.com/nlcmd/translator/internal/parser"
	"github.com/nlcmd/translator/internal/tokenizer"
)

type benchScorer map[string]map[string]float64

func (s benchScorer) LocalScore(term string, words []string) map[string]float64 {
	fired := make(map[string]float64)
	for _, w := range words {
		if weight, ok := s[term][w]; ok {
			fired[w] = weight
		}
	}
	return fired
}

func benchGrammar() *grammar.Grammar {
	return grammar.New(2,
		grammar.CommandSpec{Name: "find", Flags: []string{"-name", "-type", "-size", "-mtime"}, MinArgs: 1, MaxArgs: 3},
		grammar.CommandSpec{Name: "grep", Flags: []string{"-i", "-r", "-v", "-l"}, MinArgs: 1, MaxArgs: 2},
		grammar.CommandSpec{Name: "cp", Flags: []string{"-r", "-f", "-p"}, MinArgs: 2, MaxArgs: 3},
		grammar.CommandSpec{Name: "ls", Flags: []string{"-l", "-a", "-h"}, MinArgs: 0, MaxArgs: 1},
		grammar.CommandSpec{Name: "rm", Flags: []string{"-r", "-f"}, MinArgs: 1, MaxArgs: 2},
	)
}

func benchScores() benchScorer {
	return benchScorer{
		"find":       {"find": 0.8, "search": 0.5},
		"grep":       {"search": 0.6, "containing": 0.4},
		"rm":         {"delete": 0.7, "remove": 0.9},
		grammar.Hole: {"files": 0.3, "logs": 0.3},
	}
}

const benchSentence = "find and delete all log files containing errors"

func BenchmarkParse(b *testing.B) {
	for _, maxLen := range []int{3, 4, 5, 6} {
		b.Run(fmt.Sprintf("max_length_%d", maxLen), func(b *testing.B) {
			p := parser.New(benchScores(), grammar.NewEnumerator(benchGrammar()), parser.Config{
				MinCommandLength: 1,
				MaxCommandLength: maxLen,
			})
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				results, err := p.Parse(benchSentence)
				if err != nil {
					b.Fatal(err)
				}
				_ = results
			}
		})
	}
}

func BenchmarkParseRanking(b *testing.B) {
	// A low top-K forces a full sort-then-truncate over every recorded parse.
	p := parser.New(benchScores(), grammar.NewEnumerator(benchGrammar()), parser.Config{
		MinCommandLength:     1,
		MaxCommandLength:     5,
		RedundantWordPenalty: -0.1,
		TopK:                 5,
	})
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		results, err := p.Parse(benchSentence)
		if err != nil {
			b.Fatal(err)
		}
		_ = results
	}
}

func BenchmarkSentenceTokenize(b *testing.B) {
	b.ReportAllocs()
	b.SetBytes(int64(len(benchSentence)))
	for i := 0; i < b.N; i++ {
		words := tokenizer.Words(benchSentence)
		_ = words
	}
}
