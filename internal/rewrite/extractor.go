package rewrite

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/nlcmd/translator/internal/tokenizer"
)

// Pair is one aligned natural-language/command example from a parallel
// corpus.
type Pair struct {
	NL      string
	Command string
}

// Sink receives mined rewrite pairs. *Store satisfies it.
type Sink interface {
	Exists(ctx context.Context, s1, s2 string) (bool, error)
	Add(ctx context.Context, s1, s2 string) error
}

// Extractor groups command templates that answer the same natural-language
// request and persists every pairwise rewrite among them.
type Extractor struct {
	sink   Sink
	logger *slog.Logger
}

// NewExtractor creates an Extractor writing to sink.
func NewExtractor(sink Sink) *Extractor {
	return &Extractor{
		sink:   sink,
		logger: slog.Default().With("component", "rewrite-extractor"),
	}
}

// CommandTemplate reduces a command string to its template form: command
// names (including names after a pipe), flags, and pipes are kept, free
// arguments become "*".
func CommandTemplate(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		switch {
		case i == 0 || fields[i-1] == "|":
			out[i] = f
		case strings.HasPrefix(f, "-") || f == "|":
			out[i] = f
		default:
			out[i] = "*"
		}
	}
	return strings.Join(out, " ")
}

// nlTemplate normalises a natural-language request into a grouping key.
func nlTemplate(nl string) string {
	return strings.Join(tokenizer.Words(nl), " ")
}

// Extract mines rewrites from the corpus and stores them, returning the
// number of new pairs recorded. Groups keyed by NL template are merged when
// they share at least two command templates; any final group holding two or
// more templates contributes all its ordered template pairs.
func (e *Extractor) Extract(ctx context.Context, corpus []Pair) (int, error) {
	groups := make(map[string]map[string]int)
	var order []string
	for _, p := range corpus {
		nl := strings.TrimSpace(p.NL)
		cmd := strings.TrimSpace(p.Command)
		if nl == "" || cmd == "" || strings.EqualFold(nl, "na") {
			continue
		}
		key := nlTemplate(nl)
		tmpl := CommandTemplate(cmd)
		if tmpl == "" {
			continue
		}
		if groups[key] == nil {
			groups[key] = make(map[string]int)
			order = append(order, key)
		}
		groups[key][tmpl]++
	}

	// Merge NL groups whose command-template sets overlap in at least two
	// templates; overlapping groups describe the same request phrased
	// differently. A group's templates flow into every later overlapping
	// group, and groups that absorbed others keep merging forward, so
	// transitively connected groups coalesce into the last of them.
	merged := make(map[int]bool)
	for i := 0; i < len(order); i++ {
		set := groups[order[i]]
		for j := i + 1; j < len(order); j++ {
			other := groups[order[j]]
			if templateOverlap(set, other) < 2 {
				continue
			}
			for tmpl, count := range set {
				other[tmpl] += count
			}
			merged[i] = true
		}
	}

	recorded := 0
	for i, key := range order {
		if merged[i] {
			continue
		}
		templates := make([]string, 0, len(groups[key]))
		for tmpl := range groups[key] {
			templates = append(templates, tmpl)
		}
		if len(templates) < 2 {
			continue
		}
		sort.Strings(templates)
		for _, t1 := range templates {
			for _, t2 := range templates {
				exists, err := e.sink.Exists(ctx, t1, t2)
				if err != nil {
					return recorded, err
				}
				if exists {
					continue
				}
				if err := e.sink.Add(ctx, t1, t2); err != nil {
					return recorded, err
				}
				recorded++
			}
		}
		e.logger.Debug("paraphrase group stored",
			"nl_template", key,
			"templates", len(templates),
		)
	}

	e.logger.Info("rewrite extraction finished",
		"corpus_pairs", len(corpus),
		"nl_groups", len(order),
		"rewrites_recorded", recorded,
	)
	return recorded, nil
}

func templateOverlap(a, b map[string]int) int {
	n := 0
	for tmpl := range a {
		if _, ok := b[tmpl]; ok {
			n++
		}
	}
	return n
}
