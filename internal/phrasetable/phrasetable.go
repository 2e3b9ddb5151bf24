// Package phrasetable loads the bidirectional lexical-alignment table used
// to score candidate command tokens against natural-language words.
//
// The on-disk format is gzip-compressed text, one alignment record per line:
//
//	<phrase> ||| <snippet> ||| <four space-separated floats>
//
// Of the four scores only the third (phrase-given-snippet lexical weight) is
// retained, symmetrically in both directions.
package phrasetable

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nlcmd/translator/pkg/errors"
	"github.com/nlcmd/translator/pkg/logger"
)

const fieldDelimiter = "|||"

// Table holds the two directional alignment mappings. It is built once by
// Load and read-only thereafter.
type Table struct {
	// PhraseToSnippet maps a natural-language phrase to command snippets
	// and their alignment weights.
	PhraseToSnippet map[string]map[string]float64
	// SnippetToPhrase is the reverse direction, used for per-token scoring.
	SnippetToPhrase map[string]map[string]float64
}

// Load reads a gzip-compressed phrase table file. Construction is
// all-or-nothing: a single malformed record aborts the whole load.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening phrase table %s: %w", path, err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decompressing phrase table %s: %w", path, err)
	}
	defer zr.Close()

	t := &Table{
		PhraseToSnippet: make(map[string]map[string]float64),
		SnippetToPhrase: make(map[string]map[string]float64),
	}

	scanner := bufio.NewScanner(zr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := t.addRecord(line, lineNo); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading phrase table %s: %w", path, err)
	}

	logger.WithComponent("phrase-table").Info("phrase table loaded",
		"path", path,
		"phrases", len(t.PhraseToSnippet),
		"snippets", len(t.SnippetToPhrase),
	)
	return t, nil
}

func (t *Table) addRecord(line string, lineNo int) error {
	parts := strings.Split(line, fieldDelimiter)
	if len(parts) != 3 {
		return fmt.Errorf("%w: line %d: expected 3 fields, got %d",
			errors.ErrMalformedRecord, lineNo, len(parts))
	}
	phrase := strings.TrimSpace(parts[0])
	snippet := strings.TrimSpace(parts[1])
	scoreFields := strings.Fields(parts[2])
	if len(scoreFields) != 4 {
		return fmt.Errorf("%w: line %d: expected 4 scores, got %d",
			errors.ErrMalformedRecord, lineNo, len(scoreFields))
	}
	scores := make([]float64, 4)
	for i, s := range scoreFields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%w: line %d: score %q is not a float",
				errors.ErrMalformedRecord, lineNo, s)
		}
		scores[i] = v
	}

	// Only the phrase-given-snippet lexical weight survives, symmetrically.
	lexWeight := scores[2]
	if t.PhraseToSnippet[phrase] == nil {
		t.PhraseToSnippet[phrase] = make(map[string]float64)
	}
	t.PhraseToSnippet[phrase][snippet] = lexWeight
	if t.SnippetToPhrase[snippet] == nil {
		t.SnippetToPhrase[snippet] = make(map[string]float64)
	}
	t.SnippetToPhrase[snippet][phrase] = lexWeight
	return nil
}

// LocalScore returns the alignment weight for every input word that has a
// recorded alignment to term. A term absent from the table yields an empty
// map; ungrounded tokens are expected and are not an error.
func (t *Table) LocalScore(term string, words []string) map[string]float64 {
	phrases, ok := t.SnippetToPhrase[term]
	if !ok {
		return map[string]float64{}
	}
	fired := make(map[string]float64)
	for _, word := range words {
		if weight, ok := phrases[word]; ok {
			fired[word] = weight
		}
	}
	return fired
}

// Snippets returns the number of distinct command snippets in the table.
func (t *Table) Snippets() int {
	return len(t.SnippetToPhrase)
}
