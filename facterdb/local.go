package facterdb

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// FactsExtension is the file extension of recorded fact sets.
const FactsExtension = ".facts"

// ErrCorpusNotFound indicates a corpus directory does not exist.
var ErrCorpusNotFound = errors.New("fact corpus not found")

// LocalDB serves fact sets from a directory following the FacterDB layout:
//
//	{root}/{facterversion}/{os}-{release}-{hardwaremodel}.facts
//
// Every *.facts file below root is loaded; the directory names only matter
// for records lacking a facterversion fact, which inherit the name of their
// parent directory.
type LocalDB struct {
	rootPath string
	mem      *MemoryDB
}

// OpenLocal loads every fact set below rootPath.
func OpenLocal(ctx context.Context, rootPath string) (*LocalDB, error) {
	rootPath = filepath.Clean(rootPath)
	info, err := os.Stat(rootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithHint(
				errors.Wrapf(ErrCorpusNotFound, "open %s", rootPath),
				"point FACTERDB_SEARCH_PATHS or --facterdb at a FacterDB facts directory")
		}
		return nil, errors.Wrapf(err, "cannot access fact corpus %s", rootPath)
	}
	if !info.IsDir() {
		return nil, errors.Newf("fact corpus %s is not a directory", rootPath)
	}

	db := &LocalDB{rootPath: rootPath, mem: NewMemoryDB()}
	err = filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), FactsExtension) {
			return nil
		}
		facts, err := readFactsFile(path)
		if err != nil {
			return err
		}
		db.mem.records = append(db.mem.records, facts)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "load fact corpus %s", rootPath)
	}
	return db, nil
}

// Root returns the directory the corpus was loaded from.
func (db *LocalDB) Root() string {
	return db.rootPath
}

// Len returns the number of loaded fact sets.
func (db *LocalDB) Len() int {
	return db.mem.Len()
}

// Query returns copies of the fact sets matching filter.
func (db *LocalDB) Query(ctx context.Context, filter Filter) ([]Facts, error) {
	return db.mem.Query(ctx, filter)
}

// Versions returns the distinct Facter versions matching filter.
func (db *LocalDB) Versions(ctx context.Context, filter Filter) ([]string, error) {
	return db.mem.Versions(ctx, filter)
}

// readFactsFile decodes one fact set and fills in facterversion from the
// parent directory name when the record lacks it.
func readFactsFile(path string) (Facts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read facts file %s", path)
	}
	var facts Facts
	if err := json.Unmarshal(data, &facts); err != nil {
		return nil, errors.Wrapf(err, "parse facts file %s", path)
	}
	if facts == nil {
		facts = Facts{}
	}
	if facts.FacterVersion() == "" {
		facts["facterversion"] = filepath.Base(filepath.Dir(path))
	}
	return facts, nil
}
