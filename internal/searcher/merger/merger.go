// Package merger implements the sorted posting-list algebra used by query
// evaluation: AND-intersection, OR-union and the left fold of union across
// AND-groups. Every function expects strictly ascending inputs and returns a
// newly allocated, strictly ascending list.
package merger

import (
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/indexer/index"
)

// Intersect keeps documents present in both entries, summing frequencies.
// The result is owned and carries no word.
func Intersect(a, b index.WordEntry) index.WordEntry {
	return index.NewEntry("", intersect(a.Postings, b.Postings))
}

func intersect(a, b index.PostingList) index.PostingList {
	if debugChecks {
		index.CheckSorted(a)
		index.CheckSorted(b)
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make(index.PostingList, 0, n)
	var i, j int
	for i < len(a) && j < len(b) {
		switch {
		case a[i].DocID < b[j].DocID:
			i++
		case a[i].DocID > b[j].DocID:
			j++
		default:
			out = append(out, index.Posting{
				DocID:     a[i].DocID,
				Frequency: a[i].Frequency + b[j].Frequency,
			})
			i++
			j++
		}
	}
	return out
}

// Union keeps documents present in either list, summing frequencies of
// documents present in both. Callers must not reuse a or b afterwards.
func Union(a, b index.PostingList) index.PostingList {
	if debugChecks {
		index.CheckSorted(a)
		index.CheckSorted(b)
	}
	out := make(index.PostingList, 0, len(a)+len(b))
	var i, j int
	for i < len(a) || j < len(b) {
		switch {
		case j == len(b) || (i < len(a) && a[i].DocID < b[j].DocID):
			out = append(out, a[i])
			i++
		case i == len(a) || a[i].DocID > b[j].DocID:
			out = append(out, b[j])
			j++
		default:
			out = append(out, index.Posting{
				DocID:     a[i].DocID,
				Frequency: a[i].Frequency + b[j].Frequency,
			})
			i++
			j++
		}
	}
	return out
}

// FoldOr unions the groups' posting lists left to right. No groups yields an
// empty list; a single group yields an owned copy of its list.
func FoldOr(groups []index.WordEntry) index.PostingList {
	if len(groups) == 0 {
		return index.PostingList{}
	}
	acc := groups[0].Detach().Postings
	if acc == nil {
		acc = index.PostingList{}
	}
	for _, g := range groups[1:] {
		acc = Union(acc, g.Postings)
	}
	return acc
}
