package tokenizer

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		name     string
		sentence string
		want     []string
	}{
		{"lowercases", "Copy The FILE", []string{"copy", "the", "file"}},
		{"strips punctuation", `find all logs, please!`, []string{"find", "all", "logs", "please"}},
		{"keeps patterns and flags", "delete *.txt with -f", []string{"delete", "*.txt", "with", "-f"}},
		{"collapses whitespace", "  list \t files  ", []string{"list", "files"}},
		{"drops bare punctuation", "remove , it", []string{"remove", "it"}},
		{"empty input", "   ", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Words(tc.sentence)
			if len(tc.want) == 0 && len(got) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Words(%q) = %v, want %v", tc.sentence, got, tc.want)
			}
		})
	}
}

func TestTokenPositionsAreContiguous(t *testing.T) {
	tokens := Tokenize("move , these files")
	if len(tokens) != 3 {
		t.Fatalf("got %d tokens, want 3", len(tokens))
	}
	for i, tok := range tokens {
		if tok.Position != i {
			t.Errorf("token %q has position %d, want %d", tok.Word, tok.Position, i)
		}
	}
}
