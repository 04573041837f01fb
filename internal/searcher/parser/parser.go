// Package parser validates boolean query lines and splits them into tokens.
// Operators are the exact, case-sensitive words AND and OR; every other word
// is normalised for index lookup.
package parser

import (
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/query-engine/pkg/errors"
)

const (
	OpAnd = "AND"
	OpOr  = "OR"
)

type TokenKind int

const (
	KindWord TokenKind = iota
	KindAnd
	KindOr
)

func (k TokenKind) String() string {
	switch k {
	case KindAnd:
		return OpAnd
	case KindOr:
		return OpOr
	default:
		return "WORD"
	}
}

// Normalizer maps a query word to its index form.
type Normalizer interface {
	Normalize(word string) string
}

// Token is one element of a query. Term is the normalised word for KindWord
// and the operator itself otherwise.
type Token struct {
	Raw  string
	Term string
	Kind TokenKind
}

func (t Token) IsOperator() bool {
	return t.Kind != KindWord
}

type Query struct {
	Raw    string
	Tokens []Token
}

// Words returns the normalised words of the query in order, duplicates
// included.
func (q *Query) Words() []string {
	words := make([]string, 0, len(q.Tokens))
	for _, t := range q.Tokens {
		if t.Kind == KindWord {
			words = append(words, t.Term)
		}
	}
	return words
}

// IsSingleTerm reports whether the query is exactly one word.
func (q *Query) IsSingleTerm() bool {
	return len(q.Tokens) == 1 && q.Tokens[0].Kind == KindWord
}

// Parse validates line and tokenizes it.
func Parse(line string, normalizer Normalizer) (*Query, error) {
	if err := Validate(line); err != nil {
		return nil, err
	}
	return &Query{
		Raw:    line,
		Tokens: Tokenize(line, normalizer),
	}, nil
}

// Validate rejects empty lines, lines that start or end with an operator and
// lines with two operators in a row.
func Validate(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return &apperrors.QueryError{Reason: "empty query", Position: -1}
	}
	if isOperator(fields[0]) {
		return &apperrors.QueryError{Reason: "query starts with an operator", Position: 0, Token: fields[0]}
	}
	last := len(fields) - 1
	for i := 1; i <= last; i++ {
		if isOperator(fields[i]) && isOperator(fields[i-1]) {
			return &apperrors.QueryError{Reason: "consecutive operators", Position: i, Token: fields[i]}
		}
	}
	if isOperator(fields[last]) {
		return &apperrors.QueryError{Reason: "query ends with an operator", Position: last, Token: fields[last]}
	}
	return nil
}

// Tokenize splits line on whitespace. It does not validate.
func Tokenize(line string, normalizer Normalizer) []Token {
	fields := strings.Fields(line)
	tokens := make([]Token, 0, len(fields))
	for _, f := range fields {
		switch f {
		case OpAnd:
			tokens = append(tokens, Token{Raw: f, Term: f, Kind: KindAnd})
		case OpOr:
			tokens = append(tokens, Token{Raw: f, Term: f, Kind: KindOr})
		default:
			tokens = append(tokens, Token{Raw: f, Term: normalizer.Normalize(f), Kind: KindWord})
		}
	}
	return tokens
}

func isOperator(s string) bool {
	return s == OpAnd || s == OpOr
}
