// Package version resolves a requested Facter version against the versions
// recorded in a fact corpus.
//
// A plain dotted version ("3", "3.14", "3.14.2") produces two constraints:
//
//   - strict: same major.minor, any patch ("~3.14"); a bare major means
//     same major, any minor ("~3")
//   - loose: anything below the next minor ("< 3.15"), or below the next
//     major for a bare major ("< 4")
//
// Selection tries strict first and only then loose, always picking the
// highest matching version, so the result never exceeds the request.
// Anything that is not a plain dotted version is treated as a free-form
// range in Masterminds/semver syntax and has no loose form.
package version

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"
)

// dottedPattern matches MAJOR[.MINOR[.PATCH]].
var dottedPattern = regexp.MustCompile(`^(\d+)(?:\.(\d+))?(?:\.(\d+))?$`)

// ErrInvalidVersion indicates a version string is not MAJOR[.MINOR[.PATCH]].
var ErrInvalidVersion = errors.New("invalid facter version")

// Validate checks that s is a plain dotted version.
func Validate(s string) error {
	if dottedPattern.MatchString(s) {
		return nil
	}
	return errors.WithHint(
		errors.Mark(errors.Newf("facter version must be in the format 'n', 'n.n' or 'n.n.n' (n is numeric), not %q", s), ErrInvalidVersion),
		"pass a version such as 4.2 or 3.14.0")
}

// Requirement is a parsed version request.
type Requirement struct {
	raw    string
	strict *semver.Constraints
	loose  *semver.Constraints
}

// Selection is the outcome of matching a Requirement against candidates.
type Selection struct {
	// Version is the selected candidate, as it was given.
	Version string

	// Fallback is true when only the loose constraint matched.
	Fallback bool
}

// NewRequirement parses s as a dotted version or, failing that, as a
// free-form range.
func NewRequirement(s string) (Requirement, error) {
	m := dottedPattern.FindStringSubmatch(s)
	if m == nil {
		c, err := semver.NewConstraint(s)
		if err != nil {
			return Requirement{}, errors.Mark(errors.Wrapf(err, "parse version range %q", s), ErrInvalidVersion)
		}
		return Requirement{raw: s, strict: c}, nil
	}

	major, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return Requirement{}, errors.Mark(errors.Wrapf(err, "parse major version of %q", s), ErrInvalidVersion)
	}

	var strictExpr, looseExpr string
	if m[2] == "" {
		strictExpr = fmt.Sprintf("~%d", major)
		looseExpr = fmt.Sprintf("< %d", major+1)
	} else {
		minor, err := strconv.ParseUint(m[2], 10, 64)
		if err != nil {
			return Requirement{}, errors.Mark(errors.Wrapf(err, "parse minor version of %q", s), ErrInvalidVersion)
		}
		strictExpr = fmt.Sprintf("~%d.%d", major, minor)
		looseExpr = fmt.Sprintf("< %d.%d", major, minor+1)
	}

	strict, err := semver.NewConstraint(strictExpr)
	if err != nil {
		return Requirement{}, errors.Wrapf(err, "build strict constraint for %q", s)
	}
	loose, err := semver.NewConstraint(looseExpr)
	if err != nil {
		return Requirement{}, errors.Wrapf(err, "build loose constraint for %q", s)
	}
	return Requirement{raw: s, strict: strict, loose: loose}, nil
}

// Any returns a requirement matched by every released version. It is used
// when no Facter version was requested, and selects the newest one.
func Any() Requirement {
	c, _ := semver.NewConstraint("*")
	return Requirement{raw: "*", strict: c}
}

// String returns the requirement as it was written.
func (r Requirement) String() string { return r.raw }

// Strict returns the strict constraint.
func (r Requirement) Strict() string {
	if r.strict == nil {
		return ""
	}
	return r.strict.String()
}

// Loose returns the loose constraint, or "" for free-form ranges.
func (r Requirement) Loose() string {
	if r.loose == nil {
		return ""
	}
	return r.loose.String()
}

// HasLoose reports whether the requirement has a loose fallback.
func (r Requirement) HasLoose() bool { return r.loose != nil }

// Select picks the highest candidate matching the strict constraint, then
// the highest matching the loose one. Candidates that do not parse as
// versions are ignored.
func (r Requirement) Select(candidates []string) (Selection, bool) {
	if v, ok := highest(candidates, r.strict); ok {
		return Selection{Version: v}, true
	}
	if r.loose != nil {
		if v, ok := highest(candidates, r.loose); ok {
			return Selection{Version: v, Fallback: true}, true
		}
	}
	return Selection{}, false
}

// Newest returns the highest parseable candidate.
func Newest(candidates []string) (string, bool) {
	return highest(candidates, Any().strict)
}

func highest(candidates []string, c *semver.Constraints) (string, bool) {
	if c == nil {
		return "", false
	}
	var (
		best    *semver.Version
		bestRaw string
	)
	for _, raw := range candidates {
		v, err := semver.NewVersion(raw)
		if err != nil || !c.Check(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best, bestRaw = v, raw
		}
	}
	return bestRaw, best != nil
}

// Compare compares two versions, returning -1, 0 or 1. Unparseable versions
// sort before parseable ones and compare equal to each other.
func Compare(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	switch {
	case errA != nil && errB != nil:
		return 0
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	return va.Compare(vb)
}

// Major returns the major component of v, or -1 if v does not parse.
func Major(v string) int64 {
	parsed, err := semver.NewVersion(v)
	if err != nil {
		return -1
	}
	return int64(parsed.Major())
}
