package puppetfacts

import (
	"context"
	"os"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxpupuli/rspec-puppet-facts/metadata"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"SPEC_FACTS_OS", "SPEC_FACTS_STRICT", "SPEC_FACTS_FACTER_VERSION", "SPEC_FACTS_METADATA", "FACTERDB_SEARCH_PATHS"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestOptionsFromEnvOSFilter(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPEC_FACTS_OS", "redhat")

	r, _ := newTestResolver(t, testCorpus(), OptionsFromEnv()...)
	got, err := r.OnSupportedOS(context.Background(), Request{SupportedOS: scenarioA(), FacterVersion: "3.14"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"redhat-5-x86_64", "redhat-6-x86_64"}, keys(got))
}

func TestOptionsFromEnvStrict(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPEC_FACTS_STRICT", "yes")

	r, _ := newTestResolver(t, testCorpus(), OptionsFromEnv()...)
	_, err := r.OnSupportedOS(context.Background(), Request{
		SupportedOS:   []SupportDeclaration{{OperatingSystem: "CentOS", Releases: metadata.Releases{"7"}}},
		FacterVersion: "3.5",
	})
	assert.True(t, errors.Is(err, ErrResolutionMiss))
}

func TestOptionsFromEnvFacterVersion(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPEC_FACTS_FACTER_VERSION", "3.13")

	r, _ := newTestResolver(t, testCorpus(), OptionsFromEnv()...)
	got, err := r.OnSupportedOS(context.Background(), Request{
		SupportedOS: []SupportDeclaration{{OperatingSystem: "Debian", Releases: metadata.Releases{"7"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "3.13.0", got["debian-7-x86_64"]["facterversion"])
}

func TestOptionsFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := newResolverConfig(OptionsFromEnv()...)
	require.NoError(t, err)
	assert.Equal(t, "", cfg.osFilter)
	assert.False(t, cfg.strict)
	assert.Equal(t, "", cfg.facterVersion)
	assert.Equal(t, metadata.DefaultPath, cfg.metadataPath)
}
