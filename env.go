package puppetfacts

import (
	"github.com/voxpupuli/rspec-puppet-facts/internal/config"
)

// OptionsFromEnv returns the options set through the environment:
//
//	SPEC_FACTS_OS              keep identifiers starting with this value
//	SPEC_FACTS_STRICT          "yes" makes resolution strict
//	SPEC_FACTS_FACTER_VERSION  default Facter version
//	SPEC_FACTS_METADATA        metadata.json path
//
// Pass them after code-level options to let the environment win.
func OptionsFromEnv() []Option {
	return optionsFromSettings(config.Load())
}

func optionsFromSettings(s *config.Settings) []Option {
	var opts []Option
	if s.OSFilter != "" {
		opts = append(opts, WithOSFilter(s.OSFilter))
	}
	if s.Strict {
		opts = append(opts, WithStrict(true))
	}
	if s.FacterVersion != "" {
		opts = append(opts, WithFacterVersion(s.FacterVersion))
	}
	if s.Metadata != "" {
		opts = append(opts, WithMetadataPath(s.Metadata))
	}
	return opts
}
