// Package resolver turns ranked postings into printable hits by asking the
// metadata store for each document's URL.
package resolver

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/metadata"
	apperrors "github.com/Adithya-Monish-Kumar-K/query-engine/pkg/errors"
)

// NoMatches is printed between blank lines when a query resolves to nothing.
const NoMatches = "No found matches."

type Hit struct {
	DocID     int    `json:"doc_id"`
	Frequency int    `json:"frequency"`
	URL       string `json:"url"`
}

type Resolver struct {
	store metadata.Store
}

func New(store metadata.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve keeps the ranked order. Documents without a URL are skipped; a
// backend failure aborts the whole resolution.
func (r *Resolver) Resolve(ctx context.Context, ranked []index.Posting) ([]Hit, error) {
	hits := make([]Hit, 0, len(ranked))
	for _, p := range ranked {
		url, found, err := r.store.Lookup(ctx, p.DocID)
		if err != nil {
			return nil, fmt.Errorf("%w: doc %d: %v", apperrors.ErrMetadataUnavailable, p.DocID, err)
		}
		if !found {
			continue
		}
		hits = append(hits, Hit{DocID: p.DocID, Frequency: p.Frequency, URL: url})
	}
	return hits, nil
}

// Write prints hits in the querier's line format, framed by blank lines.
func Write(w io.Writer, hits []Hit) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("\n")
	if len(hits) == 0 {
		bw.WriteString(NoMatches + "\n")
	}
	for _, h := range hits {
		fmt.Fprintf(bw, "Document ID:%d URL:%s\n", h.DocID, h.URL)
	}
	bw.WriteString("\n")
	return bw.Flush()
}
