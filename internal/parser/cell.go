package parser

import (
	"strings"

	"github.com/nlcmd/translator/internal/grammar"
)

// Cell is one node of a partial command derivation: the token consumed at
// this step plus a backpointer to the preceding node. Cells are immutable
// once built; sibling derivations share their common prefix chain instead of
// copying it, so transitive word and feature sets are computed by walking
// backpointers on demand.
type Cell struct {
	Term        string
	Backpointer *Cell
	Length      int
	Score       float64
	// AlignedWords holds the natural-language words whose alignment feature
	// fired at this step only. Use AlignedWordsTransitive for the whole
	// chain.
	AlignedWords map[string]struct{}

	features map[string]float64
}

// NewStartCell creates the synthetic root of a derivation tree.
func NewStartCell() *Cell {
	return &Cell{
		Term:         grammar.StartSymbol,
		AlignedWords: map[string]struct{}{},
		features:     map[string]float64{},
	}
}

// NewCell appends a derivation step consuming term, with firedFeatures
// mapping each aligned input word to its weight. Length and Score are
// computed additively from the backpointer; local features are keyed
// "word->term".
func NewCell(term string, backpointer *Cell, firedFeatures map[string]float64) *Cell {
	c := &Cell{
		Term:         term,
		Backpointer:  backpointer,
		AlignedWords: make(map[string]struct{}, len(firedFeatures)),
		features:     make(map[string]float64, len(firedFeatures)),
	}
	if backpointer != nil {
		c.Length = backpointer.Length + 1
		c.Score = backpointer.Score
	}
	for word, weight := range firedFeatures {
		c.Score += weight
		c.AlignedWords[word] = struct{}{}
		c.features[word+"->"+term] = weight
	}
	return c
}

// AlignedWordsTransitive returns the union of AlignedWords over the chain
// from this cell back to the start. The walk is iterative, so depth is
// limited only by the configured maximum command length, not by Go's stack.
func (c *Cell) AlignedWordsTransitive() map[string]struct{} {
	words := make(map[string]struct{}, len(c.AlignedWords))
	for cur := c; cur != nil; cur = cur.Backpointer {
		for w := range cur.AlignedWords {
			words[w] = struct{}{}
		}
	}
	return words
}

// FeatureSetTransitive returns the union of local feature maps over the
// chain. Keys embed the consumed term, so collisions do not occur in
// practice; if they did, the entry nearest the start of the chain wins.
func (c *Cell) FeatureSetTransitive() map[string]float64 {
	features := make(map[string]float64, len(c.features))
	for cur := c; cur != nil; cur = cur.Backpointer {
		for k, v := range cur.features {
			features[k] = v
		}
	}
	return features
}

// ReconstructCommand rebuilds the space-joined token sequence from the start
// to this cell, rendering hole tokens as "*" and excluding the synthetic
// start token.
func (c *Cell) ReconstructCommand() string {
	tokens := make([]string, 0, c.Length)
	for cur := c; cur != nil; cur = cur.Backpointer {
		if cur.Term == grammar.StartSymbol {
			continue
		}
		if cur.Term == grammar.Hole {
			tokens = append(tokens, "*")
		} else {
			tokens = append(tokens, cur.Term)
		}
	}
	for i, j := 0, len(tokens)-1; i < j; i, j = i+1, j-1 {
		tokens[i], tokens[j] = tokens[j], tokens[i]
	}
	return strings.Join(tokens, " ")
}

// DerivationRules returns the chain as labeled parent=>child edges in
// root-to-leaf order.
func (c *Cell) DerivationRules() []Rule {
	rules := make([]Rule, 0, c.Length)
	for cur := c; cur.Backpointer != nil; cur = cur.Backpointer {
		rules = append(rules, Rule{Parent: cur.Backpointer.Term, Child: cur.Term})
	}
	for i, j := 0, len(rules)-1; i < j; i, j = i+1, j-1 {
		rules[i], rules[j] = rules[j], rules[i]
	}
	return rules
}
