package facterdb

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// MultiDB is the union of several corpora. Queries visit the corpora in the
// order they were given and concatenate their results. Resolution keeps the
// last record per identifier, so a corpus listed later overrides the same
// platform recorded by an earlier one.
type MultiDB struct {
	corpora []Corpus
}

// NewMultiDB creates a union over corpora.
func NewMultiDB(corpora ...Corpus) *MultiDB {
	return &MultiDB{corpora: corpora}
}

// OpenSearchPaths opens a LocalDB for every directory in paths and returns
// their union. paths may be a single OS path list string
// ("/a:/b" on Unix), which is how FACTERDB_SEARCH_PATHS is written.
func OpenSearchPaths(ctx context.Context, paths ...string) (*MultiDB, error) {
	var dirs []string
	for _, p := range paths {
		for _, dir := range filepath.SplitList(p) {
			if dir = strings.TrimSpace(dir); dir != "" {
				dirs = append(dirs, dir)
			}
		}
	}
	if len(dirs) == 0 {
		return nil, errors.WithHint(
			errors.Wrap(ErrCorpusNotFound, "no search paths given"),
			"set FACTERDB_SEARCH_PATHS or pass --facterdb")
	}

	corpora := make([]Corpus, 0, len(dirs))
	for _, dir := range dirs {
		db, err := OpenLocal(ctx, dir)
		if err != nil {
			return nil, err
		}
		corpora = append(corpora, db)
	}
	return NewMultiDB(corpora...), nil
}

// Query returns the matching fact sets of every corpus, in corpus order.
func (m *MultiDB) Query(ctx context.Context, filter Filter) ([]Facts, error) {
	var out []Facts
	for _, c := range m.corpora {
		records, err := c.Query(ctx, filter)
		if err != nil {
			return nil, err
		}
		out = append(out, records...)
	}
	return out, nil
}

// Versions returns the distinct Facter versions across every corpus.
func (m *MultiDB) Versions(ctx context.Context, filter Filter) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, c := range m.corpora {
		versions, err := c.Versions(ctx, filter)
		if err != nil {
			return nil, err
		}
		for _, v := range versions {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out, nil
}
