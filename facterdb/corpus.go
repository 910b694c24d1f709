// Package facterdb provides access to a corpus of recorded Facter fact sets.
//
// A corpus is queried with a Filter made of one Pattern per axis (operating
// system, release, hardware model and Facter version). The package ships
// three implementations:
//
//   - MemoryDB: fact sets held in memory, mostly for tests and embedding
//   - LocalDB: a directory tree of *.facts JSON files in the FacterDB layout
//   - MultiDB: the union of several corpora, queried in order
package facterdb

import (
	"context"
	"sync"
)

// Corpus is a queryable set of recorded fact sets.
type Corpus interface {
	// Query returns every fact set matching filter. Implementations must
	// return copies the caller is free to mutate.
	Query(ctx context.Context, filter Filter) ([]Facts, error)

	// Versions returns the distinct Facter versions of the fact sets
	// matching filter, ignoring the filter's own Facter version axis.
	Versions(ctx context.Context, filter Filter) ([]string, error)
}

// Compile-time interface compliance checks
var (
	_ Corpus = (*MemoryDB)(nil)
	_ Corpus = (*LocalDB)(nil)
	_ Corpus = (*MultiDB)(nil)
)

// MemoryDB is a thread-safe in-memory corpus.
type MemoryDB struct {
	mu      sync.RWMutex
	records []Facts
}

// NewMemoryDB creates a corpus holding copies of records.
func NewMemoryDB(records ...Facts) *MemoryDB {
	db := &MemoryDB{}
	db.Add(records...)
	return db
}

// Add stores copies of records. Insertion order is preserved by queries.
func (db *MemoryDB) Add(records ...Facts) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, r := range records {
		db.records = append(db.records, r.Clone())
	}
}

// Len returns the number of stored fact sets.
func (db *MemoryDB) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.records)
}

// Query returns copies of the fact sets matching filter.
func (db *MemoryDB) Query(ctx context.Context, filter Filter) ([]Facts, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	db.mu.RLock()
	defer db.mu.RUnlock()

	var out []Facts
	for _, r := range db.records {
		if filter.Match(r) {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

// Versions returns the distinct Facter versions matching filter, in
// first-seen order.
func (db *MemoryDB) Versions(ctx context.Context, filter Filter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	db.mu.RLock()
	defer db.mu.RUnlock()

	filter = filter.WithoutVersion()
	seen := make(map[string]bool)
	var out []string
	for _, r := range db.records {
		if !filter.Match(r) {
			continue
		}
		v := r.FacterVersion()
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out, nil
}
