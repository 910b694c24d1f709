// Package puppetfacts resolves the operating systems a Puppet module
// supports into recorded Facter fact sets, so tests can run once per
// supported platform.
//
// # Overview
//
// The support matrix comes from the operatingsystem_support section of
// metadata.json, or from the caller:
//
//	{"operatingsystem": "Debian", "operatingsystemrelease": ["11", "12"]}
//
// Every operating system, release and hardware model combination is looked
// up in a fact corpus (a FacterDB checkout, see package facterdb) and the
// matching fact sets are returned keyed by identifier:
//
//	debian-11-x86_64
//	debian-12-x86_64
//
// # Quick Start
//
//	db, err := facterdb.OpenSearchPaths(ctx, "/path/to/facterdb/facts")
//	if err != nil {
//	    return err
//	}
//	r, err := puppetfacts.New(db, puppetfacts.OptionsFromEnv()...)
//	if err != nil {
//	    return err
//	}
//	all, err := r.OnSupportedOS(ctx, puppetfacts.Request{FacterVersion: "4.2"})
//
// # Facter Versions
//
// The requested Facter version is matched on major and minor first ("4.2"
// matches 4.2.x). When the corpus has no fact set for a platform at that
// version, the newest older version is used instead and a warning is
// logged. Strict mode turns that fallback into an error.
//
// # Custom Facts
//
// Facts can be added to every fact set, or to a few of them:
//
//	r.AddCustomFact("role", puppetfacts.Value("web"))
//	r.AddCustomFact("selinux", puppetfacts.Value(true), puppetfacts.Confine("redhat-9-x86_64"))
//	r.AddCustomFact("fqdn", puppetfacts.Generator(func(id string, f puppetfacts.Facts) any {
//	    return id + ".example.com"
//	}))
//
// # Thread Safety
//
// A Resolver is safe for concurrent use. Separate resolvers share nothing.
package puppetfacts

import (
	"context"

	"github.com/voxpupuli/rspec-puppet-facts/facterdb"
)

// Resolve resolves req over corpus with a throwaway resolver.
//
// Use New to keep the result cache and custom facts across calls.
func Resolve(ctx context.Context, corpus facterdb.Corpus, req Request, opts ...Option) (map[string]Facts, error) {
	r, err := New(corpus, opts...)
	if err != nil {
		return nil, err
	}
	return r.OnSupportedOS(ctx, req)
}
