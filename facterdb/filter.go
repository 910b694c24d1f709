package facterdb

import (
	"fmt"
	"regexp"
	"strings"
)

// PatternKind selects how a Pattern compares against a fact value.
type PatternKind int

const (
	// KindAny matches every value, including a missing fact.
	KindAny PatternKind = iota

	// KindLiteral matches values equal to the pattern, ignoring case.
	// This is the loose equality FacterDB applies to plain filter values.
	KindLiteral

	// KindExact matches values byte-for-byte equal to the pattern.
	KindExact

	// KindPrefix matches values starting with the pattern (case-sensitive).
	KindPrefix
)

// Pattern is one axis of a Filter.
type Pattern struct {
	Kind  PatternKind
	Value string
}

// MatchAny returns the pattern of an absent filter axis.
func MatchAny() Pattern { return Pattern{} }

// MatchLiteral returns a case-insensitive equality pattern.
func MatchLiteral(s string) Pattern { return Pattern{Kind: KindLiteral, Value: s} }

// MatchExact returns an exact equality pattern.
func MatchExact(s string) Pattern { return Pattern{Kind: KindExact, Value: s} }

// MatchPrefix returns a starts-with pattern.
func MatchPrefix(s string) Pattern { return Pattern{Kind: KindPrefix, Value: s} }

// IsAny reports whether the pattern matches everything.
func (p Pattern) IsAny() bool { return p.Kind == KindAny }

// Match reports whether value satisfies the pattern. present is false when
// the fact is missing from the record; only KindAny matches a missing fact.
func (p Pattern) Match(value string, present bool) bool {
	switch p.Kind {
	case KindAny:
		return true
	case KindLiteral:
		return present && strings.EqualFold(value, p.Value)
	case KindExact:
		return present && value == p.Value
	case KindPrefix:
		return present && strings.HasPrefix(value, p.Value)
	default:
		return false
	}
}

// String renders the pattern the way FacterDB filters are usually written:
// plain values, quoted exact values and anchored regular expressions.
func (p Pattern) String() string {
	switch p.Kind {
	case KindAny:
		return "*"
	case KindExact:
		return fmt.Sprintf("%q", p.Value)
	case KindPrefix:
		return "/^" + regexp.QuoteMeta(p.Value) + "/"
	default:
		return p.Value
	}
}

// Filter selects fact sets from a corpus. Each axis is matched against the
// legacy fact of the same name, falling back to the structured fact.
type Filter struct {
	OperatingSystem Pattern
	Release         Pattern
	HardwareModel   Pattern
	FacterVersion   Pattern
}

// Match reports whether facts satisfy every axis of the filter.
func (f Filter) Match(facts Facts) bool {
	return matchAxis(f.OperatingSystem, facts, operatingSystemPaths) &&
		matchAxis(f.Release, facts, releasePaths) &&
		matchAxis(f.HardwareModel, facts, hardwareModelPaths) &&
		matchAxis(f.FacterVersion, facts, facterVersionPaths)
}

// WithoutVersion returns a copy of the filter with the Facter version axis
// cleared.
func (f Filter) WithoutVersion() Filter {
	f.FacterVersion = MatchAny()
	return f
}

// String renders the non-empty axes of the filter for diagnostics.
func (f Filter) String() string {
	var parts []string
	add := func(name string, p Pattern) {
		if !p.IsAny() {
			parts = append(parts, name+": "+p.String())
		}
	}
	add("operatingsystem", f.OperatingSystem)
	add("operatingsystemrelease", f.Release)
	add("hardwaremodel", f.HardwareModel)
	add("facterversion", f.FacterVersion)
	return "{" + strings.Join(parts, ", ") + "}"
}

func matchAxis(p Pattern, facts Facts, paths []string) bool {
	if p.IsAny() {
		return true
	}
	value, ok := facts.String(paths...)
	return p.Match(value, ok)
}
