package parser

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/query-engine/pkg/errors"
)

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		line     string
		position int
	}{
		{"", -1},
		{"   \t ", -1},
		{" AND cat", 0},
		{"OR cat", 0},
		{"cat AND ", 1},
		{"cat OR", 1},
		{"cat AND OR dog", 2},
		{"cat OR OR dog", 2},
		{"cat dog AND AND", 3},
		{"AND", 0},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			err := Validate(tc.line)
			if !errors.Is(err, apperrors.ErrInvalidQuery) {
				t.Fatalf("Validate(%q) = %v, want ErrInvalidQuery", tc.line, err)
			}
			var qe *apperrors.QueryError
			if !errors.As(err, &qe) {
				t.Fatalf("expected *QueryError, got %T", err)
			}
			if qe.Position != tc.position {
				t.Errorf("position = %d, want %d", qe.Position, tc.position)
			}
		})
	}
}

func TestValidateAccepts(t *testing.T) {
	for _, line := range []string{
		"cat",
		"cat dog",
		"  cat   AND dog  ",
		"a AND b OR c",
		"and or",
		"cat AND cat",
	} {
		if err := Validate(line); err != nil {
			t.Errorf("Validate(%q) = %v", line, err)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Cat AND dog  OR Hat and", tokenizer.Lowercase)
	want := []Token{
		{Raw: "Cat", Term: "cat", Kind: KindWord},
		{Raw: "AND", Term: "AND", Kind: KindAnd},
		{Raw: "dog", Term: "dog", Kind: KindWord},
		{Raw: "OR", Term: "OR", Kind: KindOr},
		{Raw: "Hat", Term: "hat", Kind: KindWord},
		{Raw: "and", Term: "and", Kind: KindWord},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize =\n%+v\nwant\n%+v", got, want)
	}
}

func TestParse(t *testing.T) {
	q, err := Parse("Cats OR dogs", tokenizer.Stemming)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if q.Raw != "Cats OR dogs" {
		t.Errorf("Raw = %q", q.Raw)
	}
	if !reflect.DeepEqual(q.Words(), []string{"cat", "dog"}) {
		t.Errorf("Words() = %v", q.Words())
	}
	if q.IsSingleTerm() {
		t.Error("two-word query reported as single term")
	}

	single, err := Parse("  Cat ", tokenizer.Lowercase)
	if err != nil {
		t.Fatal(err)
	}
	if !single.IsSingleTerm() {
		t.Error("single word query not reported as single term")
	}

	if _, err := Parse("cat AND", tokenizer.Lowercase); err == nil {
		t.Error("Parse should validate")
	}
}

func TestTokenKindString(t *testing.T) {
	if KindAnd.String() != "AND" || KindOr.String() != "OR" || KindWord.String() != "WORD" {
		t.Error("unexpected TokenKind names")
	}
}

func BenchmarkParse(b *testing.B) {
	queries := []struct {
		name  string
		query string
	}{
		{"single", "dartmouth"},
		{"and", "computer AND science AND dartmouth"},
		{"or", "computer OR science OR dartmouth"},
		{"mixed", "computer science OR dartmouth AND college OR hanover"},
	}
	for _, q := range queries {
		b.Run(q.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := Parse(q.query, tokenizer.Lowercase); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
