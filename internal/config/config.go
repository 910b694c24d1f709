// Package config reads the environment knobs that shape a resolution:
// the OS filter and strict mode used by test suites, plus the defaults the
// puppet-facts CLI falls back to.
package config

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every variable except FACTERDB_SEARCH_PATHS.
const EnvPrefix = "SPEC_FACTS"

// Settings are the environment-derived defaults.
type Settings struct {
	// OSFilter keeps only identifiers starting with this value
	// (SPEC_FACTS_OS).
	OSFilter string

	// Strict turns Facter version fallbacks into errors
	// (SPEC_FACTS_STRICT=yes).
	Strict bool

	// FacterVersion is the default Facter version to resolve
	// (SPEC_FACTS_FACTER_VERSION).
	FacterVersion string

	// Metadata is the path of metadata.json (SPEC_FACTS_METADATA).
	Metadata string

	// SearchPaths are FacterDB fact directories (FACTERDB_SEARCH_PATHS).
	SearchPaths []string
}

// SetDefaults registers the default of every key so that AutomaticEnv can
// see them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("os", "")
	v.SetDefault("strict", "")
	v.SetDefault("facter_version", "")
	v.SetDefault("metadata", "metadata.json")
	v.SetDefault("search_paths", "")
}

// NewViper returns a viper instance bound to the environment.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("search_paths", "FACTERDB_SEARCH_PATHS")
	SetDefaults(v)
	return v
}

// Load reads Settings from the environment.
func Load() *Settings {
	return FromViper(NewViper())
}

// FromViper reads Settings from v.
func FromViper(v *viper.Viper) *Settings {
	s := &Settings{
		OSFilter:      strings.TrimSpace(v.GetString("os")),
		Strict:        parseBool(v.GetString("strict")),
		FacterVersion: strings.TrimSpace(v.GetString("facter_version")),
		Metadata:      v.GetString("metadata"),
	}
	for _, dir := range filepath.SplitList(v.GetString("search_paths")) {
		if dir = strings.TrimSpace(dir); dir != "" {
			s.SearchPaths = append(s.SearchPaths, dir)
		}
	}
	return s
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are skipped;
// unreadable or malformed ones are reported.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return errors.Wrapf(err, "load %s", path)
		}
	}
	return nil
}

// parseBool accepts the spellings test suites use for SPEC_FACTS_STRICT.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "t", "1", "on":
		return true
	default:
		return false
	}
}
