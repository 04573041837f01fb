// Package tokenizer provides word normalisation for the query engine and the
// index builder. The lowercase normalizer matches the TSE indexer, which only
// case-folds; the stemming normalizer also strips common suffixes and drops
// stop-words when tokenizing documents.
package tokenizer

import (
	"fmt"
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "has": {}, "he": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {},
	"will": {}, "with": {}, "this": {}, "but": {}, "they": {},
	"have": {}, "had": {}, "what": {}, "when": {}, "where": {},
	"who": {}, "which": {}, "their": {}, "if": {}, "each": {},
	"do": {}, "not": {}, "no": {}, "so": {}, "can": {},
}

// Token represents a single normalised term and its position in the
// original text.
type Token struct {
	Term     string
	Position int
}

// Normalizer maps a raw word to the form stored in the index.
type Normalizer struct {
	name          string
	stem          bool
	dropStopWords bool
}

var (
	// Lowercase only case-folds.
	Lowercase = Normalizer{name: "lowercase"}
	// Stemming case-folds, strips suffixes and drops stop-words from documents.
	Stemming = Normalizer{name: "stemming", stem: true, dropStopWords: true}
)

// NormalizerByName returns the normalizer configured under name.
func NormalizerByName(name string) (Normalizer, error) {
	switch name {
	case "", Lowercase.name:
		return Lowercase, nil
	case Stemming.name:
		return Stemming, nil
	default:
		return Normalizer{}, fmt.Errorf("unknown normalizer %q", name)
	}
}

func (n Normalizer) Name() string {
	return n.name
}

// Normalize returns the index form of a single query word.
func (n Normalizer) Normalize(word string) string {
	word = strings.ToLower(word)
	if n.stem {
		return stem(word)
	}
	return word
}

// Tokenize breaks document text into normalised Tokens. Positions count
// emitted tokens only.
func (n Normalizer) Tokenize(text string) []Token {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]Token, 0, len(words))
	pos := 0
	for _, word := range words {
		if n.dropStopWords {
			if len(word) < 2 {
				continue
			}
			if _, isStop := stopWords[word]; isStop {
				continue
			}
		}
		term := n.Normalize(word)
		if term == "" {
			continue
		}
		tokens = append(tokens, Token{
			Term:     term,
			Position: pos,
		})
		pos++
	}
	return tokens
}

// stem applies a simple suffix-stripping stemmer to the given word.
func stem(word string) string {
	suffixes := []struct {
		suffix      string
		replacement string
		minLen      int
	}{
		{"ational", "ate", 2},
		{"tional", "tion", 2},
		{"encies", "ence", 2},
		{"ances", "ance", 2},
		{"ments", "ment", 2},
		{"izing", "ize", 2},
		{"ating", "ate", 2},
		{"iness", "y", 2},
		{"ously", "ous", 2},
		{"ively", "ive", 2},
		{"eness", "ene", 2},
		{"tion", "t", 3},
		{"sion", "s", 3},
		{"ying", "y", 2},
		{"ling", "l", 3},
		{"ies", "y", 2},
		{"ing", "", 3},
		{"ers", "er", 2},
		{"est", "", 3},
		{"ful", "", 3},
		{"ous", "", 3},
		{"ess", "", 3},
		{"ble", "", 3},
		{"ed", "", 3},
		{"er", "", 3},
		{"ly", "", 3},
		{"es", "", 3},
		{"ss", "ss", 2},
		{"s", "", 3},
	}
	for _, rule := range suffixes {
		if strings.HasSuffix(word, rule.suffix) {
			newWord := word[:len(word)-len(rule.suffix)] + rule.replacement
			if len(newWord) >= rule.minLen {
				return newWord
			}
		}
	}
	return word
}
