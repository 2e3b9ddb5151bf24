// Package translate orchestrates the end-to-end translation of a
// natural-language sentence into ranked command candidates: tokenization,
// grammar-constrained enumeration, ranking, and optional paraphrase
// expansion from the rewrite store.
package translate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nlcmd/translator/internal/parser"
	"github.com/nlcmd/translator/internal/rewrite"
	"github.com/nlcmd/translator/pkg/metrics"
	"github.com/nlcmd/translator/pkg/resilience"
)

// RewriteLookup is the slice of the rewrite store the translator needs.
type RewriteLookup interface {
	Templates(ctx context.Context, s1 string) ([]string, error)
}

// RankedCommand is one candidate command with its score breakdown and any
// known paraphrase templates.
type RankedCommand struct {
	parser.Result
	Paraphrases []string `json:"paraphrases,omitempty"`
}

// TranslationResult is the JSON shape returned by the service.
type TranslationResult struct {
	Sentence     string          `json:"sentence"`
	Results      []RankedCommand `json:"results"`
	TotalParses  int             `json:"total_parses"`
	CellsVisited int             `json:"cells_visited"`
	LatencyMs    int64           `json:"latency_ms"`
}

// Translator wires the parser to the rewrite store and metrics. The
// underlying parser shares one derivation stack with its enumerator, so
// Translate calls are serialised with a mutex.
type Translator struct {
	mu       sync.Mutex
	parser   *parser.Parser
	rewrites RewriteLookup
	breaker  *resilience.CircuitBreaker
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates a Translator. rewrites and m may be nil; paraphrase expansion
// and metrics are then skipped.
func New(p *parser.Parser, rewrites RewriteLookup, m *metrics.Metrics) *Translator {
	return &Translator{
		parser:   p,
		rewrites: rewrites,
		breaker: resilience.NewCircuitBreaker("rewrite-store", resilience.CircuitBreakerConfig{
			FailureThreshold: 3,
			ResetTimeout:     15 * time.Second,
		}),
		metrics: m,
		logger:  slog.Default().With("component", "translator"),
	}
}

// Translate enumerates and ranks command candidates for the sentence,
// truncated to limit results. A rewrite-store outage degrades to candidates
// without paraphrases; a grammar inconsistency is returned as an error and
// must abort the caller's run.
func (t *Translator) Translate(ctx context.Context, sentence string, limit int) (*TranslationResult, error) {
	start := time.Now()

	t.mu.Lock()
	results, err := t.parser.Parse(sentence)
	stats := t.parser.LastStats()
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if t.metrics != nil {
		t.metrics.CellsEnumerated.Observe(float64(stats.CellsVisited))
		t.metrics.ParsesRecorded.Observe(float64(stats.ParsesRecorded))
	}

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	ranked := make([]RankedCommand, len(results))
	for i, r := range results {
		ranked[i] = RankedCommand{Result: r}
		ranked[i].Paraphrases = t.lookupParaphrases(ctx, r.Command)
	}

	return &TranslationResult{
		Sentence:     sentence,
		Results:      ranked,
		TotalParses:  stats.ParsesRecorded,
		CellsVisited: stats.CellsVisited,
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}

// lookupParaphrases queries the rewrite store through the circuit breaker.
// Any failure degrades to no paraphrases.
func (t *Translator) lookupParaphrases(ctx context.Context, command string) []string {
	if t.rewrites == nil {
		return nil
	}
	template := rewrite.CommandTemplate(command)
	var templates []string
	err := t.breaker.Execute(func() error {
		var lookupErr error
		templates, lookupErr = t.rewrites.Templates(ctx, template)
		return lookupErr
	})
	if t.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			if t.breaker.GetState() == resilience.StateOpen {
				outcome = "open"
			}
		}
		t.metrics.RewriteLookupsTotal.WithLabelValues(outcome).Inc()
		t.metrics.CircuitBreakerState.WithLabelValues("rewrite-store").
			Set(float64(t.breaker.GetState()))
	}
	if err != nil {
		t.logger.Warn("rewrite lookup failed", "template", template, "error", err)
		return nil
	}
	// Templates always includes the query template itself; only report the
	// genuine alternatives.
	paraphrases := make([]string, 0, len(templates))
	for _, tmpl := range templates {
		if tmpl != template {
			paraphrases = append(paraphrases, tmpl)
		}
	}
	if len(paraphrases) == 0 {
		return nil
	}
	return paraphrases
}
