// Package planner reduces a token stream to one posting list per satisfiable
// AND-group. Groups are separated by OR; adjacent words and explicit AND
// connect words within a group.
//
// A group in which any word is missing from the index is unsatisfiable: it is
// dropped, and the rest of its words are skipped without lookups. A word
// repeated within the same group is ignored.
package planner

import (
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/searcher/merger"
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/searcher/parser"
)

// Lookuper is the read-only view of the index the planner needs.
type Lookuper interface {
	Lookup(word string) (index.WordEntry, bool)
}

// Plan is the outcome of folding a query's AND-groups.
type Plan struct {
	// Groups holds one owned entry per satisfiable group, in query order.
	Groups []index.WordEntry
	// TotalGroups counts every OR-separated group in the query.
	TotalGroups int
	// Discarded counts groups dropped because a word was not indexed.
	Discarded int
	// Lookups counts index lookups performed.
	Lookups int
	// Missing lists the words that made a group unsatisfiable.
	Missing []string
}

// group is the fold state for one AND-group. A fresh group is started at the
// beginning of the query and after every OR.
type group struct {
	acc     *index.WordEntry
	seen    map[string]struct{}
	dead    bool
	touched bool
}

func newGroup() *group {
	return &group{seen: make(map[string]struct{})}
}

// Build folds tokens into per-group results.
func Build(idx Lookuper, tokens []parser.Token) Plan {
	var plan Plan
	g := newGroup()

	closeGroup := func() {
		if !g.touched {
			return
		}
		plan.TotalGroups++
		switch {
		case g.acc != nil:
			plan.Groups = append(plan.Groups, g.acc.Detach())
		case g.dead:
			plan.Discarded++
		}
	}

	for _, tok := range tokens {
		switch tok.Kind {
		case parser.KindOr:
			closeGroup()
			g = newGroup()
			continue
		case parser.KindAnd:
			continue
		}

		g.touched = true
		if g.dead {
			continue
		}
		if _, dup := g.seen[tok.Term]; dup {
			continue
		}
		g.seen[tok.Term] = struct{}{}

		entry, found := idx.Lookup(tok.Term)
		plan.Lookups++
		if !found {
			g.dead = true
			g.acc = nil
			plan.Missing = append(plan.Missing, tok.Term)
			continue
		}
		if g.acc == nil {
			g.acc = &entry
			continue
		}
		combined := merger.Intersect(*g.acc, entry)
		g.acc = &combined
	}
	closeGroup()
	return plan
}
