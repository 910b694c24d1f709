package facterdb

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

// Compile-time interface compliance checks
var (
	_ Corpus = (*FailingDB)(nil)
	_ Corpus = (*CountingDB)(nil)
)

// FailingDB is a corpus that always returns errors.
// Useful for testing error handling paths.
type FailingDB struct {
	QueryErr    error
	VersionsErr error
}

// NewFailingDB creates a corpus that fails with the given errors.
func NewFailingDB(queryErr, versionsErr error) *FailingDB {
	if queryErr == nil {
		queryErr = errors.New("corpus query failed")
	}
	if versionsErr == nil {
		versionsErr = errors.New("corpus versions failed")
	}
	return &FailingDB{QueryErr: queryErr, VersionsErr: versionsErr}
}

// Query always returns an error.
func (db *FailingDB) Query(ctx context.Context, filter Filter) ([]Facts, error) {
	return nil, db.QueryErr
}

// Versions always returns an error.
func (db *FailingDB) Versions(ctx context.Context, filter Filter) ([]string, error) {
	return nil, db.VersionsErr
}

// CountingDB wraps a corpus and records every call made to it.
type CountingDB struct {
	Corpus

	mu       sync.Mutex
	queries  []Filter
	versions []Filter
}

// NewCountingDB wraps c.
func NewCountingDB(c Corpus) *CountingDB {
	return &CountingDB{Corpus: c}
}

// Query records the filter and delegates.
func (db *CountingDB) Query(ctx context.Context, filter Filter) ([]Facts, error) {
	db.mu.Lock()
	db.queries = append(db.queries, filter)
	db.mu.Unlock()
	return db.Corpus.Query(ctx, filter)
}

// Versions records the filter and delegates.
func (db *CountingDB) Versions(ctx context.Context, filter Filter) ([]string, error) {
	db.mu.Lock()
	db.versions = append(db.versions, filter)
	db.mu.Unlock()
	return db.Corpus.Versions(ctx, filter)
}

// Queries returns the filters passed to Query so far.
func (db *CountingDB) Queries() []Filter {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]Filter(nil), db.queries...)
}

// Calls returns the total number of corpus calls.
func (db *CountingDB) Calls() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.queries) + len(db.versions)
}
