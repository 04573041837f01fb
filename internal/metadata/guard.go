package metadata

import (
	"context"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/query-engine/pkg/resilience"
)

// GuardedStore routes lookups through a circuit breaker so that a backend
// outage fails queries immediately instead of once per ranked document.
// Misses are successes as far as the breaker is concerned.
type GuardedStore struct {
	store Store
	cb    *resilience.CircuitBreaker
}

func Guard(store Store, cb *resilience.CircuitBreaker) *GuardedStore {
	return &GuardedStore{store: store, cb: cb}
}

func (g *GuardedStore) Lookup(ctx context.Context, docID int) (url string, found bool, err error) {
	err = g.cb.Execute(func() error {
		var lookupErr error
		url, found, lookupErr = g.store.Lookup(ctx, docID)
		return lookupErr
	})
	return url, found, err
}

func (g *GuardedStore) Put(ctx context.Context, docID int, url string) error {
	w, ok := g.store.(Writer)
	if !ok {
		return fmt.Errorf("metadata store %T is read-only", g.store)
	}
	return w.Put(ctx, docID, url)
}

func (g *GuardedStore) Ping(ctx context.Context) error {
	if p, ok := g.store.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (g *GuardedStore) Close() error {
	return g.store.Close()
}
