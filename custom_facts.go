package puppetfacts

import (
	"slices"

	"github.com/voxpupuli/rspec-puppet-facts/facterdb"
)

// FactValue is the value of a custom fact: a literal (see Value) or a
// function of the fact set it is added to (see Generator).
type FactValue struct {
	literal   any
	generator func(id string, facts Facts) any
}

// Value returns a literal fact value. Maps and slices are copied into
// every fact set, so fact sets never share them.
func Value(v any) FactValue {
	return FactValue{literal: v}
}

// Generator returns a fact value computed per fact set from its identifier
// and its facts as decorated so far. Maps and slices it returns are copied.
func Generator(fn func(id string, facts Facts) any) FactValue {
	return FactValue{generator: fn}
}

func (v FactValue) resolve(id string, facts Facts) any {
	if v.generator != nil {
		return facterdb.CloneValue(v.generator(id, facts))
	}
	return facterdb.CloneValue(v.literal)
}

// CustomFactOption scopes a custom fact.
type CustomFactOption func(*customFact)

// Confine adds the fact only to the listed identifiers.
func Confine(ids ...string) CustomFactOption {
	return func(f *customFact) {
		f.confine = append(f.confine, ids...)
		if f.confine == nil {
			f.confine = []string{}
		}
	}
}

// Exclude adds the fact to every identifier except the listed ones.
func Exclude(ids ...string) CustomFactOption {
	return func(f *customFact) {
		f.exclude = append(f.exclude, ids...)
	}
}

// MergeFacts deep-merges the value into an existing fact of the same name
// instead of replacing it. Nested maps are merged key by key; any other
// value replaces the existing one.
func MergeFacts() CustomFactOption {
	return func(f *customFact) {
		f.merge = true
	}
}

type customFact struct {
	name    string
	value   FactValue
	confine []string
	exclude []string
	merge   bool
}

func (f *customFact) appliesTo(id string) bool {
	if f.confine != nil && !slices.Contains(f.confine, id) {
		return false
	}
	if f.exclude != nil && slices.Contains(f.exclude, id) {
		return false
	}
	return true
}

func (f *customFact) apply(id string, facts Facts) {
	if !f.appliesTo(id) {
		return
	}
	value := f.value.resolve(id, facts)
	if f.merge {
		if current, ok := facts[f.name]; ok {
			value = deepMerge(current, value)
		}
	}
	facts[f.name] = value
}

// deepMerge merges src into dst. When both are maps the result holds the
// keys of both, merged recursively; otherwise src wins. Neither argument is
// modified.
func deepMerge(dst, src any) any {
	dm, ok := facterdb.AsMap(dst)
	if !ok {
		return src
	}
	sm, ok := facterdb.AsMap(src)
	if !ok {
		return src
	}

	out := make(map[string]any, len(dm)+len(sm))
	for k, v := range dm {
		out[k] = facterdb.CloneValue(v)
	}
	for k, v := range sm {
		if existing, ok := out[k]; ok {
			out[k] = deepMerge(existing, v)
		} else {
			out[k] = v
		}
	}
	return out
}
