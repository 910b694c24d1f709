// Package metadata reads the operating system support matrix a Puppet
// module declares in its metadata.json.
package metadata

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"
)

// DefaultPath is where metadata.json is looked up when no path is given.
const DefaultPath = "metadata.json"

// Sentinel errors for manifest failures. Each one is a distinct, reportable
// configuration problem.
var (
	// ErrMetadataNotFound indicates the metadata file does not exist.
	ErrMetadataNotFound = errors.New("can't find metadata.json")

	// ErrMetadataMalformed indicates the metadata file is not valid JSON or
	// does not have the expected shape.
	ErrMetadataMalformed = errors.New("malformed metadata.json")

	// ErrNoOSSupport indicates operatingsystem_support is absent or empty.
	ErrNoOSSupport = errors.New("unknown operatingsystem support")

	// ErrMissingOperatingSystem indicates a support entry lacks its
	// operatingsystem name.
	ErrMissingOperatingSystem = errors.New("operatingsystem support entry without operatingsystem")
)

// Metadata is the subset of metadata.json this package understands.
type Metadata struct {
	// Name is the module name, e.g. "puppetlabs-stdlib".
	Name string `json:"name"`

	// Version is the module version.
	Version string `json:"version"`

	// OperatingSystemSupport is the declared support matrix.
	OperatingSystemSupport []OperatingSystemSupport `json:"operatingsystem_support"`
}

// OperatingSystemSupport declares support for one operating system.
type OperatingSystemSupport struct {
	// OperatingSystem is the operating system name as Facter reports it
	// ("Debian", "RedHat", "windows"...). Required.
	OperatingSystem string `json:"operatingsystem"`

	// Releases lists the supported releases. A nil value means a rolling
	// release without a release axis.
	Releases Releases `json:"operatingsystemrelease,omitempty"`

	// HardwareModels overrides the hardware models to resolve for this
	// entry. Empty means the caller's default.
	HardwareModels []string `json:"hardwaremodels,omitempty"`
}

// IsRolling reports whether the entry has no release axis.
func (s OperatingSystemSupport) IsRolling() bool {
	return s.Releases == nil
}

// Validate checks the entry is usable.
func (s OperatingSystemSupport) Validate() error {
	if s.OperatingSystem == "" {
		return ErrMissingOperatingSystem
	}
	return nil
}

// Releases is the operatingsystemrelease field. It accepts a list, a single
// value or null. Numeric values are kept as written.
type Releases []string

// UnmarshalJSON implements json.Unmarshaler.
func (r *Releases) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = nil
		return nil
	}

	if len(data) > 0 && data[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		out := make(Releases, 0, len(raw))
		for _, item := range raw {
			s, err := releaseString(item)
			if err != nil {
				return err
			}
			out = append(out, s)
		}
		*r = out
		return nil
	}

	s, err := releaseString(data)
	if err != nil {
		return err
	}
	*r = Releases{s}
	return nil
}

func releaseString(data json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		return n.String(), nil
	}
	return "", errors.Newf("operatingsystemrelease entries must be strings, got %s", string(data))
}

// ReadFile reads and parses metadata.json from path.
func ReadFile(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithHint(
				errors.Wrapf(ErrMetadataNotFound, "read %s", path),
				"run from the module root or pass the support matrix explicitly")
		}
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return Parse(data)
}

// Parse parses metadata.json content.
func Parse(data []byte) (*Metadata, error) {
	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "parse metadata.json"), ErrMetadataMalformed)
	}
	return &md, nil
}

// SupportedOS returns the declared support matrix. It fails when the
// operatingsystem_support section is missing or an entry is invalid.
func (m *Metadata) SupportedOS() ([]OperatingSystemSupport, error) {
	if len(m.OperatingSystemSupport) == 0 {
		return nil, errors.WithHint(ErrNoOSSupport,
			"add an operatingsystem_support section to metadata.json")
	}
	for i, s := range m.OperatingSystemSupport {
		if err := s.Validate(); err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "operatingsystem_support[%d]", i), ErrMetadataMalformed)
		}
	}
	return m.OperatingSystemSupport, nil
}
