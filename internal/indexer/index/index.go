package index

import "sort"

// Index is a read-only mapping from normalised word to its posting list.
// It is built once and shared by every query evaluation; nothing in the
// query path mutates it.
type Index struct {
	words    map[string]PostingList
	docCount int
}

// New builds an Index from term entries. Each posting list must already be
// strictly ascending by DocID.
func New(entries []TermEntry) (*Index, error) {
	idx := &Index{words: make(map[string]PostingList, len(entries))}
	docs := make(map[int]struct{})
	for _, entry := range entries {
		if err := entry.Postings.Validate(); err != nil {
			return nil, &TermError{Term: entry.Term, Err: err}
		}
		idx.words[entry.Term] = entry.Postings
		for _, p := range entry.Postings {
			docs[p.DocID] = struct{}{}
		}
	}
	idx.docCount = len(docs)
	return idx, nil
}

// Lookup returns a borrowed view of the word's posting list.
func (x *Index) Lookup(word string) (WordEntry, bool) {
	postings, ok := x.words[word]
	if !ok {
		return WordEntry{}, false
	}
	return WordEntry{Word: word, Postings: postings, borrowed: true}, true
}

// Len returns the number of distinct words.
func (x *Index) Len() int {
	return len(x.words)
}

// DocCount returns the number of distinct documents referenced.
func (x *Index) DocCount() int {
	return x.docCount
}

// Words returns every indexed word in lexical order.
func (x *Index) Words() []string {
	words := make([]string, 0, len(x.words))
	for w := range x.words {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Entries returns a copy of the dictionary in lexical order, suitable for
// writing a segment.
func (x *Index) Entries() []TermEntry {
	words := x.Words()
	entries := make([]TermEntry, 0, len(words))
	for _, w := range words {
		entries = append(entries, TermEntry{Term: w, Postings: x.words[w].Clone()})
	}
	return entries
}

// TermError reports an invalid posting list for a term.
type TermError struct {
	Term string
	Err  error
}

func (e *TermError) Error() string {
	return "term " + e.Term + ": " + e.Err.Error()
}

func (e *TermError) Unwrap() error {
	return e.Err
}
