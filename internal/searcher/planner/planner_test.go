package planner

import (
	"reflect"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/searcher/merger"
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/searcher/parser"
)

// recordingIndex wraps an Index and records every lookup.
type recordingIndex struct {
	idx     *index.Index
	lookups []string
}

func (r *recordingIndex) Lookup(word string) (index.WordEntry, bool) {
	r.lookups = append(r.lookups, word)
	return r.idx.Lookup(word)
}

func newIndex(t testing.TB) *recordingIndex {
	t.Helper()
	idx, err := index.Load(strings.NewReader(strings.Join([]string{
		"cat 3 1 2 3 1 5 4",
		"dog 3 3 2 4 1 5 1",
		"hat 2 2 7 5 1",
		"fish 1 8 3",
	}, "\n")))
	if err != nil {
		t.Fatal(err)
	}
	return &recordingIndex{idx: idx}
}

func tokens(line string) []parser.Token {
	return parser.Tokenize(line, tokenizer.Lowercase)
}

func postings(pairs ...int) index.PostingList {
	out := index.PostingList{}
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, index.Posting{DocID: pairs[i], Frequency: pairs[i+1]})
	}
	return out
}

func TestBuildSingleGroup(t *testing.T) {
	idx := newIndex(t)
	plan := Build(idx, tokens("cat AND dog"))
	if len(plan.Groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(plan.Groups))
	}
	want := postings(3, 3, 5, 5)
	if !reflect.DeepEqual(plan.Groups[0].Postings, want) {
		t.Errorf("cat AND dog = %v, want %v", plan.Groups[0].Postings, want)
	}
	if plan.TotalGroups != 1 || plan.Discarded != 0 || plan.Lookups != 2 {
		t.Errorf("plan stats = %+v", plan)
	}
}

func TestBuildImplicitAnd(t *testing.T) {
	idx := newIndex(t)
	explicit := Build(idx, tokens("cat AND dog AND hat"))
	implicit := Build(newIndex(t), tokens("cat dog hat"))
	if !reflect.DeepEqual(explicit.Groups, implicit.Groups) {
		t.Errorf("implicit AND differs: %v vs %v", implicit.Groups, explicit.Groups)
	}
	if !reflect.DeepEqual(implicit.Groups[0].Postings, postings(5, 6)) {
		t.Errorf("cat dog hat = %v", implicit.Groups[0].Postings)
	}
}

func TestBuildMissingWordDiscardsGroup(t *testing.T) {
	idx := newIndex(t)
	plan := Build(idx, tokens("cat AND nonexistentword"))
	if len(plan.Groups) != 0 {
		t.Errorf("groups = %v, want none", plan.Groups)
	}
	if plan.Discarded != 1 || plan.TotalGroups != 1 {
		t.Errorf("plan stats = %+v", plan)
	}
	if !reflect.DeepEqual(plan.Missing, []string{"nonexistentword"}) {
		t.Errorf("missing = %v", plan.Missing)
	}
}

func TestBuildShortCircuitsWithoutLookups(t *testing.T) {
	idx := newIndex(t)
	plan := Build(idx, tokens("ghost AND cat AND dog OR hat"))
	if !reflect.DeepEqual(idx.lookups, []string{"ghost", "hat"}) {
		t.Errorf("lookups = %v, want [ghost hat]", idx.lookups)
	}
	if len(plan.Groups) != 1 || !reflect.DeepEqual(plan.Groups[0].Postings, postings(2, 7, 5, 1)) {
		t.Errorf("groups = %v", plan.Groups)
	}
	if plan.Discarded != 1 || plan.TotalGroups != 2 {
		t.Errorf("plan stats = %+v", plan)
	}
}

func TestBuildMissingMidGroupDropsAccumulator(t *testing.T) {
	idx := newIndex(t)
	plan := Build(idx, tokens("a AND b OR c"))
	if len(plan.Groups) != 0 || plan.Discarded != 2 {
		t.Errorf("plan = %+v", plan)
	}

	idx = newIndex(t)
	plan = Build(idx, tokens("cat AND ghost AND dog OR fish"))
	if !reflect.DeepEqual(idx.lookups, []string{"cat", "ghost", "fish"}) {
		t.Errorf("lookups = %v", idx.lookups)
	}
	if len(plan.Groups) != 1 || !reflect.DeepEqual(plan.Groups[0].Postings, postings(8, 3)) {
		t.Errorf("groups = %v", plan.Groups)
	}
}

func TestBuildDuplicateWordSkipsLookup(t *testing.T) {
	idx := newIndex(t)
	plan := Build(idx, tokens("cat AND Cat AND cat"))
	if !reflect.DeepEqual(idx.lookups, []string{"cat"}) {
		t.Errorf("lookups = %v, want a single cat lookup", idx.lookups)
	}
	if len(plan.Groups) != 1 || !reflect.DeepEqual(plan.Groups[0].Postings, postings(1, 2, 3, 1, 5, 4)) {
		t.Errorf("groups = %v", plan.Groups)
	}
}

func TestBuildSeenSetIsScopedToGroup(t *testing.T) {
	idx := newIndex(t)
	plan := Build(idx, tokens("cat OR cat"))
	if !reflect.DeepEqual(idx.lookups, []string{"cat", "cat"}) {
		t.Errorf("lookups = %v", idx.lookups)
	}
	if len(plan.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(plan.Groups))
	}
	// Repeating a word across OR-groups sums its frequencies; the order is
	// unchanged from the single word.
	want := postings(1, 4, 3, 2, 5, 8)
	if got := merger.FoldOr(plan.Groups); !reflect.DeepEqual(got, want) {
		t.Errorf("cat OR cat = %v, want %v", got, want)
	}
}

func TestBuildGroupsAreOwned(t *testing.T) {
	idx := newIndex(t)
	plan := Build(idx, tokens("cat OR dog AND hat"))
	for i, g := range plan.Groups {
		if g.IsBorrowed() {
			t.Errorf("group %d is a borrowed view", i)
		}
	}
	plan.Groups[0].Postings[0].Frequency = 1000
	cat, _ := idx.idx.Lookup("cat")
	if cat.Postings[0].Frequency != 2 {
		t.Error("mutating a plan group changed the index")
	}
}

func TestBuildAcrossGroupsWithFold(t *testing.T) {
	idx := newIndex(t)
	plan := Build(idx, tokens("cat dog OR hat OR ghost fish"))
	got := merger.FoldOr(plan.Groups)
	want := postings(2, 7, 3, 3, 5, 6)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("fold = %v, want %v", got, want)
	}
	if plan.TotalGroups != 3 || plan.Discarded != 1 {
		t.Errorf("plan stats = %+v", plan)
	}
}

func BenchmarkBuild(b *testing.B) {
	idx := newIndex(b)
	toks := tokens("cat AND dog OR hat AND cat OR fish OR ghost AND cat")
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx.lookups = idx.lookups[:0]
		_ = Build(idx, toks)
	}
}
