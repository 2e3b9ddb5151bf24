// Package parser implements the grammar-constrained depth-first command
// enumerator. Given a natural-language sentence and a phrase-alignment
// scorer, it walks every token sequence the grammar permits up to a length
// bound, scores each against the sentence, and ranks the top K candidates.
package parser

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/nlcmd/translator/internal/grammar"
	"github.com/nlcmd/translator/internal/tokenizer"
	"github.com/nlcmd/translator/pkg/errors"
)

// TokenEnumerator is the grammar-walking capability the search driver
// consumes. Push and Pop must nest exactly with the driver's recursion; the
// enumerator carries the derivation-stack state between calls.
type TokenEnumerator interface {
	LegalNextTokens() []string
	IsTokenLegal(token string) bool
	Push(token string)
	Pop()
	IsTerminationLegal() bool
}

// Scorer computes per-step alignment weights between a candidate token and
// the input words.
type Scorer interface {
	LocalScore(term string, words []string) map[string]float64
}

// Config bounds the traversal and shapes the ranking pass.
type Config struct {
	// MinCommandLength: recorded parses must be strictly longer than this.
	MinCommandLength int
	// MaxCommandLength bounds the traversal depth.
	MaxCommandLength int
	// RedundantWordPenalty is added once per distinct input word the parse
	// leaves uncovered (typically zero or negative).
	RedundantWordPenalty float64
	// UngroundedTokenPenalty is accepted for configuration compatibility
	// but is not part of the scoring path.
	UngroundedTokenPenalty float64
	// TopK caps the number of ranked results (default 50).
	TopK int
}

// DefaultTopK is used when Config.TopK is unset.
const DefaultTopK = 50

// Result is one ranked translation candidate.
type Result struct {
	Command        string             `json:"command"`
	Score          float64            `json:"score"`
	Length         int                `json:"length"`
	AlignedWords   []string           `json:"aligned_words"`
	UncoveredWords []string           `json:"uncovered_words"`
	Features       map[string]float64 `json:"features"`
}

// Stats reports traversal counters from the last Parse call.
type Stats struct {
	CellsVisited   int
	ParsesRecorded int
	Elapsed        time.Duration
}

// Parser drives the depth-first enumeration. It shares the enumerator's
// mutable derivation stack, so a Parser is single-traversal state: not safe
// for concurrent Parse calls.
type Parser struct {
	scorer Scorer
	enum   TokenEnumerator
	cfg    Config
	logger *slog.Logger

	cellsVisited int
	stats        Stats
}

// New creates a Parser over the given scorer and enumerator.
func New(scorer Scorer, enum TokenEnumerator, cfg Config) *Parser {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	return &Parser{
		scorer: scorer,
		enum:   enum,
		cfg:    cfg,
		logger: slog.Default().With("component", "parser"),
	}
}

// Parse tokenizes the sentence, enumerates every grammar-legal command up to
// the configured maximum length, and returns the top-K candidates ranked by
// penalty-adjusted alignment score. A GrammarInconsistency error means the
// enumerator rejected a token it had reported legal; the derivation stack
// can no longer be trusted and the caller must abort the run.
func (p *Parser) Parse(sentence string) ([]Result, error) {
	words := tokenizer.Words(sentence)
	start := NewStartCell()
	var finalCells []*Cell

	p.cellsVisited = 0
	p.logger.Debug("enumerating commands",
		"sentence", sentence,
		"max_command_length", p.cfg.MaxCommandLength,
	)

	startTime := time.Now()
	if err := p.dfs(start, words, &finalCells); err != nil {
		return nil, err
	}
	elapsed := time.Since(startTime)

	p.stats = Stats{
		CellsVisited:   p.cellsVisited,
		ParsesRecorded: len(finalCells),
		Elapsed:        elapsed,
	}
	p.logger.Debug("enumeration finished",
		"parses", len(finalCells),
		"cells_visited", p.cellsVisited,
		"elapsed", elapsed,
	)

	return p.rank(finalCells, words), nil
}

// LastStats returns counters from the most recent Parse call.
func (p *Parser) LastStats() Stats {
	return p.stats
}

// dfs explores every extension of cell. The enumerator's stack is advanced
// on entry for non-start tokens and restored before returning, so push/pop
// calls nest exactly with the recursion.
func (p *Parser) dfs(cell *Cell, words []string, finalCells *[]*Cell) error {
	p.cellsVisited++
	term := cell.Term

	// An end marker never extends or records a branch.
	if term == grammar.EOF {
		return nil
	}

	// Compound commands are unsupported: truncate at the pipe.
	if term == grammar.Pipe {
		return nil
	}

	pushed := false
	if term != grammar.StartSymbol {
		if !p.enum.IsTokenLegal(term) {
			return fmt.Errorf("%w: token %q was offered as legal but rejected on push",
				errors.ErrGrammarInconsistency, term)
		}
		p.enum.Push(term)
		pushed = true
	}
	defer func() {
		if pushed {
			p.enum.Pop()
		}
	}()

	if cell.Length > p.cfg.MinCommandLength && p.enum.IsTerminationLegal() {
		// A recorded parse may still be the prefix of longer parses, so the
		// branch continues below.
		*finalCells = append(*finalCells, cell)
	}

	if cell.Length >= p.cfg.MaxCommandLength {
		return nil
	}

	for _, next := range p.enum.LegalNextTokens() {
		firedFeatures := p.scorer.LocalScore(next, words)
		child := NewCell(next, cell, firedFeatures)
		if err := p.dfs(child, words, finalCells); err != nil {
			return err
		}
	}
	return nil
}

// rank applies the redundant-word penalty, sorts by final score descending,
// and truncates to the configured top K.
func (p *Parser) rank(finalCells []*Cell, words []string) []Result {
	type scored struct {
		cell  *Cell
		score float64
	}
	ranked := make([]scored, len(finalCells))
	for i, cell := range finalCells {
		aligned := cell.AlignedWordsTransitive()
		// The penalty counts distinct uncovered words, not occurrences.
		uncovered := 0
		seen := make(map[string]struct{}, len(words))
		for _, w := range words {
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			if _, ok := aligned[w]; !ok {
				uncovered++
			}
		}
		ranked[i] = scored{
			cell:  cell,
			score: cell.Score + p.cfg.RedundantWordPenalty*float64(uncovered),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > p.cfg.TopK {
		ranked = ranked[:p.cfg.TopK]
	}

	results := make([]Result, len(ranked))
	for i, r := range ranked {
		aligned := r.cell.AlignedWordsTransitive()
		alignedList := make([]string, 0, len(aligned))
		for w := range aligned {
			alignedList = append(alignedList, w)
		}
		sort.Strings(alignedList)
		uncoveredList := make([]string, 0)
		seen := make(map[string]struct{}, len(words))
		for _, w := range words {
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			if _, ok := aligned[w]; !ok {
				uncoveredList = append(uncoveredList, w)
			}
		}
		sort.Strings(uncoveredList)
		results[i] = Result{
			Command:        r.cell.ReconstructCommand(),
			Score:          r.score,
			Length:         r.cell.Length,
			AlignedWords:   alignedList,
			UncoveredWords: uncoveredList,
			Features:       r.cell.FeatureSetTransitive(),
		}
	}
	return results
}
