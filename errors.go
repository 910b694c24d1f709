package puppetfacts

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/voxpupuli/rspec-puppet-facts/facterdb"
)

// Error classes for errors.Is. Corpus read failures and context
// cancellation errors are passed through and match none of them.
var (
	// ErrConfiguration indicates a missing or malformed metadata file, a
	// missing operatingsystem_support section or an invalid option. It is
	// always fatal.
	ErrConfiguration = errors.New("configuration error")

	// ErrValidation indicates a malformed Facter version. It is reported
	// before the corpus is touched.
	ErrValidation = errors.New("validation error")

	// ErrResolutionMiss indicates the corpus has no fact set for a filter at
	// the requested Facter version. It is only returned in strict mode;
	// otherwise it is logged as a warning.
	ErrResolutionMiss = errors.New("no facts found")
)

// ResolutionMissError describes a strict-mode version resolution failure.
type ResolutionMissError struct {
	// Filter is the filter that could not be satisfied, without its Facter
	// version axis.
	Filter facterdb.Filter

	// Requested is the requested Facter version, or "" when any version
	// was acceptable.
	Requested string

	// Used is the version the loose fallback would have used, or "" when
	// the corpus has no fact set for the filter at all.
	Used string
}

func (e *ResolutionMissError) Error() string {
	if e.Used == "" {
		return fmt.Sprintf("no facts were found in the FacterDB for %s on %s", facterLabel(e.Requested), e.Filter)
	}
	return fmt.Sprintf("no facts were found in the FacterDB for %s on %s, would have used v%s instead",
		facterLabel(e.Requested), e.Filter, e.Used)
}

// Is reports whether target is ErrResolutionMiss.
func (e *ResolutionMissError) Is(target error) bool {
	return target == ErrResolutionMiss
}

// configurationError marks err as a configuration error, keeping its own
// sentinel chain intact.
func configurationError(err error) error {
	return errors.Mark(err, ErrConfiguration)
}

// validationError marks err as a validation error.
func validationError(err error) error {
	return errors.Mark(err, ErrValidation)
}

// facterLabel renders a requested Facter version for messages.
func facterLabel(v string) string {
	if v == "" {
		return "any Facter version"
	}
	return "Facter v" + v
}
