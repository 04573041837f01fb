package ranker

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/indexer/index"
)

// Rank orders postings by descending summed frequency. It stable-sorts a copy
// ascending and then reverses it, so entries with equal frequency come out in
// the reverse of their input order. The input is left untouched.
func Rank(postings index.PostingList) []index.Posting {
	ranked := make([]index.Posting, len(postings))
	copy(ranked, postings)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Frequency < ranked[j].Frequency
	})
	for i, j := 0, len(ranked)-1; i < j; i, j = i+1, j-1 {
		ranked[i], ranked[j] = ranked[j], ranked[i]
	}
	return ranked
}

// Limit truncates ranked to at most n entries. Non-positive n keeps all.
func Limit(ranked []index.Posting, n int) []index.Posting {
	if n > 0 && len(ranked) > n {
		return ranked[:n]
	}
	return ranked
}
