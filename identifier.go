package puppetfacts

import (
	"strings"

	"github.com/voxpupuli/rspec-puppet-facts/facterdb"
)

// identifier derives the stable key of a fact set:
// "<operatingsystem>-<major release>-<hardwaremodel>", e.g.
// "debian-12-x86_64". Only the operating system is lowercased.
func identifier(facts facterdb.Facts) string {
	os := facts.OperatingSystem()
	return strings.ToLower(os) + "-" + majorRelease(os, facts) + "-" + facts.HardwareModel()
}

// majorRelease picks the release segment of an identifier.
func majorRelease(os string, facts facterdb.Facts) string {
	release := facts.Release()
	switch {
	case strings.EqualFold(os, "ubuntu"):
		// Ubuntu releases are only meaningful as YY.MM.
		parts := strings.SplitN(release, ".", 3)
		return strings.Join(parts[:min(len(parts), 2)], ".")
	case strings.EqualFold(os, "openbsd"):
		return release
	case containsFold(os, "windows") && strings.HasPrefix(release, "10.0."):
		return "2016"
	}
	if major, ok := facts.String("os.release.major"); ok && major != "" {
		return major
	}
	major, _, _ := strings.Cut(release, ".")
	return major
}
