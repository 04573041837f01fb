package index

import "fmt"

// Posting is one (document, frequency) pair of a posting list.
type Posting struct {
	DocID     int `json:"d"`
	Frequency int `json:"f"`
}

// PostingList is ordered strictly ascending by DocID with no duplicates.
// Every producer in this module preserves that ordering and every merge
// relies on it.
type PostingList []Posting

// Clone returns an owned copy that shares no memory with l.
func (l PostingList) Clone() PostingList {
	if l == nil {
		return PostingList{}
	}
	out := make(PostingList, len(l))
	copy(out, l)
	return out
}

// Validate reports the first position at which l breaks the ordering.
func (l PostingList) Validate() error {
	for i := 1; i < len(l); i++ {
		if l[i].DocID <= l[i-1].DocID {
			return fmt.Errorf("posting list not strictly ascending at %d: doc %d follows doc %d",
				i, l[i].DocID, l[i-1].DocID)
		}
	}
	return nil
}

// CheckSorted panics when l breaks the ordering. Merge operations call it
// when built with the querydebug tag.
func CheckSorted(l PostingList) {
	if err := l.Validate(); err != nil {
		panic(err)
	}
}

// WordEntry is a posting list together with the word it was looked up by.
// Word is empty for lists produced by combining several terms.
//
// Entries returned by Index.Lookup are borrowed views into the index and must
// not be modified; Detach returns an owned copy.
type WordEntry struct {
	Word     string
	Postings PostingList
	borrowed bool
}

// NewEntry returns an owned entry.
func NewEntry(word string, postings PostingList) WordEntry {
	return WordEntry{Word: word, Postings: postings}
}

func (w WordEntry) IsBorrowed() bool {
	return w.borrowed
}

// Detach returns an owned copy of w. Owned entries are returned unchanged.
func (w WordEntry) Detach() WordEntry {
	if !w.borrowed {
		return w
	}
	return WordEntry{Word: w.Word, Postings: w.Postings.Clone()}
}

// TermEntry is one dictionary row used when writing segments.
type TermEntry struct {
	Term     string
	Postings PostingList
}
