package puppetfacts

import (
	"github.com/voxpupuli/rspec-puppet-facts/facterdb"
	"github.com/voxpupuli/rspec-puppet-facts/metadata"
)

// DefaultHardwareModel is resolved when neither the request nor a support
// declaration names hardware models.
const DefaultHardwareModel = "x86_64"

// Facts is one resolved fact set.
type Facts = facterdb.Facts

// SupportDeclaration declares support for one operating system, as found in
// the operatingsystem_support section of metadata.json.
type SupportDeclaration = metadata.OperatingSystemSupport

// Request describes a resolution.
//
// The zero value resolves the support matrix of ./metadata.json for
// x86_64 on the newest Facter version the corpus records.
type Request struct {
	// SupportedOS is the support matrix. When empty it is read from the
	// metadata file (see WithMetadataPath).
	SupportedOS []SupportDeclaration

	// HardwareModels are resolved for every declaration that does not name
	// its own. Defaults to []string{DefaultHardwareModel}.
	HardwareModels []string

	// FacterVersion is the Facter version to resolve, "MAJOR[.MINOR[.PATCH]]".
	// Empty falls back to the resolver default (see WithFacterVersion), or
	// to the newest version in the corpus.
	FacterVersion string

	// Strict turns Facter version fallbacks and misses into errors. It is
	// combined with WithStrict: either one enables strict mode.
	Strict bool
}
