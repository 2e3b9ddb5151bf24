package translate

import (
	"context"
	"errors"
	"testing"

	"github.com/nlcmd/translator/internal/grammar"
	"github.com/nlcmd/translator/internal/parser"
)

type wordScorer map[string]map[string]float64

func (s wordScorer) LocalScore(term string, words []string) map[string]float64 {
	fired := make(map[string]float64)
	for _, w := range words {
		if weight, ok := s[term][w]; ok {
			fired[w] = weight
		}
	}
	return fired
}

type fakeLookup struct {
	templates map[string][]string
	err       error
	calls     int
}

func (f *fakeLookup) Templates(_ context.Context, s1 string) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]string{s1}, f.templates[s1]...), nil
}

func newTestTranslator(lookup RewriteLookup) *Translator {
	g := grammar.New(2,
		grammar.CommandSpec{Name: "cp", Flags: []string{"-r"}, MinArgs: 1, MaxArgs: 2},
		grammar.CommandSpec{Name: "ls", Flags: []string{"-l"}, MinArgs: 0, MaxArgs: 1},
	)
	scorer := wordScorer{
		"cp":         {"copy": 0.9},
		grammar.Hole: {"file": 0.4},
	}
	p := parser.New(scorer, grammar.NewEnumerator(g), parser.Config{
		MinCommandLength: 1,
		MaxCommandLength: 2,
	})
	return New(p, lookup, nil)
}

func TestTranslateRanksAndExpands(t *testing.T) {
	lookup := &fakeLookup{templates: map[string][]string{
		"cp *": {"rsync * *"},
	}}
	tr := newTestTranslator(lookup)

	result, err := tr.Translate(context.Background(), "copy the file", 0)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if result.Sentence != "copy the file" {
		t.Errorf("Sentence = %q", result.Sentence)
	}
	if result.TotalParses == 0 || result.CellsVisited == 0 {
		t.Errorf("stats not populated: %+v", result)
	}
	if len(result.Results) == 0 {
		t.Fatal("expected results")
	}

	top := result.Results[0]
	if top.Command != "cp *" {
		t.Errorf("top command = %q, want %q", top.Command, "cp *")
	}
	if len(top.Paraphrases) != 1 || top.Paraphrases[0] != "rsync * *" {
		t.Errorf("top paraphrases = %v, want [rsync * *]", top.Paraphrases)
	}
}

func TestTranslateAppliesLimit(t *testing.T) {
	tr := newTestTranslator(nil)

	result, err := tr.Translate(context.Background(), "copy the file", 1)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if len(result.Results) != 1 {
		t.Fatalf("len(Results) = %d, want 1", len(result.Results))
	}
	if result.TotalParses <= 1 {
		t.Errorf("TotalParses = %d, want the untruncated count", result.TotalParses)
	}
}

func TestTranslateWithoutRewriteStore(t *testing.T) {
	tr := newTestTranslator(nil)

	result, err := tr.Translate(context.Background(), "list", 0)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	for _, r := range result.Results {
		if r.Paraphrases != nil {
			t.Errorf("command %q has paraphrases %v without a store", r.Command, r.Paraphrases)
		}
	}
}

func TestTranslateDegradesOnLookupFailure(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("connection refused")}
	tr := newTestTranslator(lookup)

	result, err := tr.Translate(context.Background(), "copy the file", 0)
	if err != nil {
		t.Fatalf("Translate must degrade, got error: %v", err)
	}
	if lookup.calls == 0 {
		t.Fatal("lookup never attempted")
	}
	for _, r := range result.Results {
		if r.Paraphrases != nil {
			t.Errorf("command %q has paraphrases %v despite store failure", r.Command, r.Paraphrases)
		}
	}
}

func TestCircuitBreakerStopsLookupsAfterRepeatedFailures(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("connection refused")}
	tr := newTestTranslator(lookup)

	// Each translation of this sentence performs one lookup per result. After
	// the breaker opens, further translations must not reach the store.
	for i := 0; i < 5; i++ {
		if _, err := tr.Translate(context.Background(), "copy the file", 1); err != nil {
			t.Fatalf("Translate: %v", err)
		}
	}
	if lookup.calls >= 5 {
		t.Errorf("lookup called %d times, breaker never opened", lookup.calls)
	}
}
