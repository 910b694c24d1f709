package puppetfacts

import (
	"regexp"
	"strings"

	"github.com/voxpupuli/rspec-puppet-facts/facterdb"
	"github.com/voxpupuli/rspec-puppet-facts/version"
)

var (
	// aixDottedRelease matches an AIX "MAJOR.MINOR" release. The corpus
	// records AIX releases as technology levels such as "7100-05-03".
	aixDottedRelease = regexp.MustCompile(`^(\d+)\.(\d+)$`)

	// windowsServerPrefix strips the marketing prefix from releases such as
	// "Server 2012 R2".
	windowsServerPrefix = regexp.MustCompile(`(?i)^server `)
)

// buildFilters turns a support matrix into corpus filters, one per
// declaration, release and hardware model. facterVersion is the Facter
// version the filters will be resolved at; it only steers the Windows
// quirks. The Facter version axis of every filter is left open.
func buildFilters(decls []SupportDeclaration, defaultModels []string, facterVersion string) []facterdb.Filter {
	var filters []facterdb.Filter
	for _, decl := range decls {
		models := decl.HardwareModels
		if len(models) == 0 {
			models = defaultModels
		}

		if decl.IsRolling() {
			for _, model := range models {
				filters = append(filters, facterdb.Filter{
					OperatingSystem: facterdb.MatchLiteral(decl.OperatingSystem),
					HardwareModel:   facterdb.MatchLiteral(model),
				})
			}
			continue
		}

		for _, release := range decl.Releases {
			for _, model := range models {
				filters = append(filters, releaseFilter(decl.OperatingSystem, release, model, facterVersion))
			}
		}
	}
	return filters
}

// releaseFilter builds the filter of one release, applying the naming
// quirks of platforms whose facts do not follow the metadata.json spelling.
func releaseFilter(os, release, model, facterVersion string) facterdb.Filter {
	f := facterdb.Filter{
		OperatingSystem: facterdb.MatchLiteral(os),
		Release:         facterdb.MatchPrefix(firstToken(release)),
		HardwareModel:   facterdb.MatchLiteral(model),
	}

	switch {
	case containsFold(os, "bsd"):
		f.HardwareModel = facterdb.MatchLiteral("amd64")

	case containsFold(os, "solaris"):
		f.HardwareModel = facterdb.MatchLiteral("i86pc")

	case containsFold(os, "aix"):
		f.HardwareModel = facterdb.MatchPrefix("IBM,")
		if m := aixDottedRelease.FindStringSubmatch(release); m != nil {
			f.Release = facterdb.MatchPrefix(m[1] + m[2] + "00-")
		} else {
			f.Release = facterdb.MatchPrefix(release + "-")
		}

	case containsFold(os, "windows"):
		f.OperatingSystem = facterdb.MatchLiteral(strings.ToLower(os))
		f.HardwareModel = facterdb.MatchLiteral(windowsHardwareModel(facterVersion))
		release = windowsServerPrefix.ReplaceAllString(release, "")
		// Releases may contain spaces ("2012 R2"), so match them whole.
		f.Release = facterdb.MatchExact(release)
		if release == "2016" && facterVersion != "" && version.Compare(facterVersion, "3.4") < 0 {
			f.Release = facterdb.MatchPrefix("10.0.")
		}

	case containsFold(os, "amazon") && release == "2":
		// A prefix would also match the 2016.09 style releases.
		f.Release = facterdb.MatchExact(release)
	}

	return f
}

// windowsHardwareModel returns the hardware model Facter reports on 64-bit
// Windows. Facter 1 and 2 used "x64".
func windowsHardwareModel(facterVersion string) string {
	switch version.Major(facterVersion) {
	case 1, 2:
		return "x64"
	default:
		return "x86_64"
	}
}

// firstToken returns release up to its first space: "11 SP1" becomes "11".
func firstToken(release string) string {
	if fields := strings.Fields(release); len(fields) > 0 {
		return fields[0]
	}
	return release
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}
