// Package metadata resolves document ids to the URL they were crawled from.
// Backends: a TSE crawler directory (one file per document), Redis keys,
// and a SQL table in PostgreSQL or SQLite.
package metadata

import "context"

// Store looks up the URL recorded for a document. A document without a
// record returns found == false and a nil error; err is reserved for
// backend failures.
type Store interface {
	Lookup(ctx context.Context, docID int) (url string, found bool, err error)
	Close() error
}

// Pinger is implemented by stores backed by a network service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Writer is implemented by stores that can record URLs, used when importing
// a crawler directory into a database backend.
type Writer interface {
	Put(ctx context.Context, docID int, url string) error
}
