// Package tokenizer normalises natural-language sentences into word tokens
// for phrase-table alignment. Unlike a search tokenizer it performs no
// stemming and no stop-word removal: phrase-table keys are surface forms, so
// altering a word would break alignment lookups.
package tokenizer

import (
	"strings"
)

// Token is a single normalised word and its position in the sentence.
type Token struct {
	Word     string
	Position int
}

// Tokenize lower-cases the sentence, splits it on whitespace, and strips
// surrounding punctuation from each word. File patterns and flag-like words
// ("*.txt", "-name") are kept intact.
func Tokenize(sentence string) []Token {
	fields := strings.Fields(strings.ToLower(sentence))
	tokens := make([]Token, 0, len(fields))
	pos := 0
	for _, field := range fields {
		word := strings.Trim(field, ",.!?;:\"“”")
		if word == "" {
			continue
		}
		tokens = append(tokens, Token{
			Word:     word,
			Position: pos,
		})
		pos++
	}
	return tokens
}

// Words returns just the word strings, in sentence order.
func Words(sentence string) []string {
	tokens := Tokenize(sentence)
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = t.Word
	}
	return words
}
