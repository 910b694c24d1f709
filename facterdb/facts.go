package facterdb

import (
	"encoding/json"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Fact paths used to read the identifying attributes of a record. Each
// attribute is looked up through its legacy flat fact first and then through
// the structured fact introduced with Facter 3.
var (
	operatingSystemPaths = []string{"operatingsystem", "os.name"}
	releasePaths         = []string{"operatingsystemrelease", "os.release.full"}
	hardwareModelPaths   = []string{"hardwaremodel", "os.hardware"}
	facterVersionPaths   = []string{"facterversion"}
)

// Facts is one recorded fact set: the attributes Facter reported for a
// specific operating system, release, hardware model and Facter version.
//
// Values are whatever the JSON decoder produced (strings, float64, bool,
// nested map[string]any and []any) plus anything a caller stores later.
type Facts map[string]any

// Lookup resolves a dotted path ("os.release.major") through nested maps.
func (f Facts) Lookup(path string) (any, bool) {
	var current any = map[string]any(f)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// String returns the first of paths that resolves to a scalar value,
// rendered as a string.
func (f Facts) String(paths ...string) (string, bool) {
	for _, path := range paths {
		v, ok := f.Lookup(path)
		if !ok {
			continue
		}
		if s, ok := scalarString(v); ok {
			return s, true
		}
	}
	return "", false
}

// OperatingSystem returns the operating system name of the record.
func (f Facts) OperatingSystem() string {
	s, _ := f.String(operatingSystemPaths...)
	return s
}

// Release returns the full operating system release of the record.
func (f Facts) Release() string {
	s, _ := f.String(releasePaths...)
	return s
}

// HardwareModel returns the hardware model of the record.
func (f Facts) HardwareModel() string {
	s, _ := f.String(hardwareModelPaths...)
	return s
}

// FacterVersion returns the Facter version that recorded the facts.
func (f Facts) FacterVersion() string {
	s, _ := f.String(facterVersionPaths...)
	return s
}

// Clone returns a structural deep copy of the fact set. Nested maps and
// slices are copied so that mutating the clone never reaches the original.
func (f Facts) Clone() Facts {
	if f == nil {
		return nil
	}
	out := make(Facts, len(f))
	for k, v := range f {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies the container types a fact value can hold.
// Other values are returned as-is.
func CloneValue(v any) any {
	switch t := v.(type) {
	case Facts:
		return t.Clone()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[k] = CloneValue(x)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = CloneValue(x)
		}
		return out
	case map[string]string:
		return maps.Clone(t)
	case []string:
		return slices.Clone(t)
	default:
		return v
	}
}

// AsMap reports whether v is a fact map and returns it as map[string]any.
// A map[string]string is converted into a new map.
func AsMap(v any) (map[string]any, bool) {
	return asMap(v)
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case Facts:
		return map[string]any(t), true
	case map[string]any:
		return t, true
	case map[string]string:
		m := make(map[string]any, len(t))
		for k, x := range t {
			m[k] = x
		}
		return m, true
	default:
		return nil, false
	}
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}
