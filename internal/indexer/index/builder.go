package index

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/indexer/tokenizer"
)

// Builder accumulates per-document term frequencies and produces an Index
// from raw document text.
type Builder struct {
	normalizer tokenizer.Normalizer
	terms      map[string]map[int]int
	docs       map[int]struct{}
}

func NewBuilder(normalizer tokenizer.Normalizer) *Builder {
	return &Builder{
		normalizer: normalizer,
		terms:      make(map[string]map[int]int),
		docs:       make(map[int]struct{}),
	}
}

// AddDocument tokenizes text and adds its term frequencies under docID.
// Adding the same docID twice accumulates frequencies.
func (b *Builder) AddDocument(docID int, text string) {
	for _, token := range b.normalizer.Tokenize(text) {
		freqs, exists := b.terms[token.Term]
		if !exists {
			freqs = make(map[int]int)
			b.terms[token.Term] = freqs
		}
		freqs[docID]++
	}
	b.docs[docID] = struct{}{}
}

// Add records an explicit frequency, replacing any previous value.
func (b *Builder) Add(term string, docID int, freq int) {
	freqs, exists := b.terms[term]
	if !exists {
		freqs = make(map[int]int)
		b.terms[term] = freqs
	}
	freqs[docID] = freq
	b.docs[docID] = struct{}{}
}

func (b *Builder) DocCount() int {
	return len(b.docs)
}

// Snapshot returns the accumulated dictionary sorted by term with each
// posting list sorted by DocID.
func (b *Builder) Snapshot() []TermEntry {
	entries := make([]TermEntry, 0, len(b.terms))
	for term, freqs := range b.terms {
		postings := make(PostingList, 0, len(freqs))
		for docID, freq := range freqs {
			postings = append(postings, Posting{DocID: docID, Frequency: freq})
		}
		sort.Slice(postings, func(i, j int) bool {
			return postings[i].DocID < postings[j].DocID
		})
		entries = append(entries, TermEntry{
			Term:     term,
			Postings: postings,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}

// Build returns the Index for everything added so far.
func (b *Builder) Build() *Index {
	idx, err := New(b.Snapshot())
	if err != nil {
		// Snapshot sorts and deduplicates by construction.
		panic(err)
	}
	return idx
}
