package puppetfacts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolveScenarioA(t *testing.T, r *Resolver) map[string]Facts {
	t.Helper()
	got, err := r.OnSupportedOS(context.Background(), Request{SupportedOS: scenarioA(), FacterVersion: "3.14"})
	require.NoError(t, err)
	require.Len(t, got, 4)
	return got
}

func TestCustomFactEverywhere(t *testing.T) {
	r, _ := newTestResolver(t, testCorpus())
	r.AddCustomFact("role", Value("web"))

	for id, facts := range resolveScenarioA(t, r) {
		assert.Equal(t, "web", facts["role"], id)
	}
}

func TestCustomFactConfine(t *testing.T) {
	r, _ := newTestResolver(t, testCorpus())
	r.AddCustomFact("selinux", Value(true), Confine("redhat-6-x86_64"))

	for id, facts := range resolveScenarioA(t, r) {
		if id == "redhat-6-x86_64" {
			assert.Equal(t, true, facts["selinux"])
		} else {
			assert.NotContains(t, facts, "selinux", id)
		}
	}
}

func TestCustomFactEmptyConfine(t *testing.T) {
	r, _ := newTestResolver(t, testCorpus())
	r.AddCustomFact("selinux", Value(true), Confine())

	for id, facts := range resolveScenarioA(t, r) {
		assert.NotContains(t, facts, "selinux", id)
	}
}

func TestCustomFactExclude(t *testing.T) {
	r, _ := newTestResolver(t, testCorpus())
	r.AddCustomFact("selinux", Value(true), Exclude("redhat-6-x86_64"))

	for id, facts := range resolveScenarioA(t, r) {
		if id == "redhat-6-x86_64" {
			assert.NotContains(t, facts, "selinux")
		} else {
			assert.Equal(t, true, facts["selinux"], id)
		}
	}
}

func TestCustomFactGenerator(t *testing.T) {
	r, _ := newTestResolver(t, testCorpus())
	r.AddCustomFact("fqdn", Generator(func(id string, facts Facts) any {
		return id + "." + facts.OperatingSystem() + ".example.com"
	}))

	got := resolveScenarioA(t, r)
	assert.Equal(t, "debian-6-x86_64.Debian.example.com", got["debian-6-x86_64"]["fqdn"])
	assert.Equal(t, "redhat-5-x86_64.RedHat.example.com", got["redhat-5-x86_64"]["fqdn"])
}

func TestCustomFactOrder(t *testing.T) {
	r, _ := newTestResolver(t, testCorpus())
	r.AddCustomFact("domain", Value("example.com"))
	r.AddCustomFact("fqdn", Generator(func(id string, facts Facts) any {
		return "host." + facts["domain"].(string)
	}))

	got := resolveScenarioA(t, r)
	assert.Equal(t, "host.example.com", got["debian-7-x86_64"]["fqdn"])

	r.AddCustomFact("domain", Value("example.org"))
	got = resolveScenarioA(t, r)
	assert.Equal(t, "host.example.org", got["debian-7-x86_64"]["fqdn"], "replaced facts keep their position")
}

func TestCustomFactMerge(t *testing.T) {
	selinux := map[string]any{"selinux": map[string]any{"enabled": true}}

	t.Run("merge keeps siblings", func(t *testing.T) {
		r, _ := newTestResolver(t, testCorpus())
		r.AddCustomFact("os", Value(selinux), MergeFacts())

		osFact := resolveScenarioA(t, r)["redhat-6-x86_64"]["os"].(map[string]any)
		assert.Equal(t, "RedHat", osFact["name"])
		assert.Equal(t, "6.10", osFact["release"].(map[string]any)["full"])
		assert.Equal(t, map[string]any{"enabled": true}, osFact["selinux"])
	})

	t.Run("overwrite replaces", func(t *testing.T) {
		r, _ := newTestResolver(t, testCorpus())
		r.AddCustomFact("os", Value(selinux))

		osFact := resolveScenarioA(t, r)["redhat-6-x86_64"]["os"].(map[string]any)
		assert.Equal(t, selinux, osFact)
	})

	t.Run("merge keeps siblings with a string map", func(t *testing.T) {
		r, _ := newTestResolver(t, testCorpus())
		r.AddCustomFact("os", Value(map[string]string{"selinux": "enforcing"}), MergeFacts())

		osFact := resolveScenarioA(t, r)["redhat-6-x86_64"]["os"].(map[string]any)
		assert.Equal(t, "RedHat", osFact["name"])
		assert.Equal(t, "6.10", osFact["release"].(map[string]any)["full"])
		assert.Equal(t, "enforcing", osFact["selinux"])
	})

	t.Run("merge over a missing fact sets it", func(t *testing.T) {
		r, _ := newTestResolver(t, testCorpus())
		r.AddCustomFact("networking", Value(map[string]any{"fqdn": "a.example.com"}), MergeFacts())

		assert.Equal(t, map[string]any{"fqdn": "a.example.com"}, resolveScenarioA(t, r)["debian-6-x86_64"]["networking"])
	})
}

func TestCustomFactLiteralNotShared(t *testing.T) {
	r, _ := newTestResolver(t, testCorpus())
	r.AddCustomFact("tags", Value(map[string]any{"tier": "web"}))

	got := resolveScenarioA(t, r)
	got["debian-6-x86_64"]["tags"].(map[string]any)["tier"] = "db"
	assert.Equal(t, "web", got["debian-7-x86_64"]["tags"].(map[string]any)["tier"])
}

func TestCustomFactGeneratorResultNotShared(t *testing.T) {
	shared := map[string]any{"tier": "web"}
	r, _ := newTestResolver(t, testCorpus())
	r.AddCustomFact("tags", Generator(func(string, Facts) any { return shared }))

	got := resolveScenarioA(t, r)
	got["debian-6-x86_64"]["tags"].(map[string]any)["tier"] = "db"
	assert.Equal(t, "web", got["debian-7-x86_64"]["tags"].(map[string]any)["tier"])
	assert.Equal(t, "web", shared["tier"])
}

func TestCustomFactInvalidatesCache(t *testing.T) {
	r, _ := newTestResolver(t, testCorpus())
	before := resolveScenarioA(t, r)
	assert.NotContains(t, before["debian-6-x86_64"], "role")

	r.AddCustomFact("role", Value("web"))
	assert.Equal(t, "web", resolveScenarioA(t, r)["debian-6-x86_64"]["role"])
}

func TestReset(t *testing.T) {
	r, _ := newTestResolver(t, testCorpus(), WithCommonFacts(CommonFacts{PuppetVersion: "8.4.0"}))
	r.AddCustomFact("role", Value("web"))
	assert.Equal(t, "web", resolveScenarioA(t, r)["debian-6-x86_64"]["role"])

	r.Reset()
	assert.Nil(t, r.customFacts)
	assert.Nil(t, r.common)

	got := resolveScenarioA(t, r)
	assert.NotContains(t, got["debian-6-x86_64"], "role")
	assert.Equal(t, "8.4.0", got["debian-6-x86_64"]["puppetversion"])
}

func TestDeepMerge(t *testing.T) {
	tests := []struct {
		name string
		dst  any
		src  any
		want any
	}{
		{
			name: "nested maps",
			dst:  map[string]any{"a": 1, "b": map[string]any{"c": 2, "d": 3}},
			src:  map[string]any{"b": map[string]any{"d": 4, "e": 5}},
			want: map[string]any{"a": 1, "b": map[string]any{"c": 2, "d": 4, "e": 5}},
		},
		{
			name: "scalar replaces map",
			dst:  map[string]any{"a": 1},
			src:  "x",
			want: "x",
		},
		{
			name: "map replaces scalar",
			dst:  "x",
			src:  map[string]any{"a": 1},
			want: map[string]any{"a": 1},
		},
		{
			name: "lists are replaced",
			dst:  map[string]any{"l": []any{1, 2}},
			src:  map[string]any{"l": []any{3}},
			want: map[string]any{"l": []any{3}},
		},
		{
			name: "facts are maps",
			dst:  Facts{"a": 1},
			src:  map[string]any{"b": 2},
			want: map[string]any{"a": 1, "b": 2},
		},
		{
			name: "string maps are maps",
			dst:  map[string]any{"a": 1, "b": map[string]string{"c": "x"}},
			src:  map[string]any{"b": map[string]string{"d": "y"}},
			want: map[string]any{"a": 1, "b": map[string]any{"c": "x", "d": "y"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deepMerge(tt.dst, tt.src))
		})
	}
}

func TestDeepMergeLeavesInputsAlone(t *testing.T) {
	dst := map[string]any{"b": map[string]any{"c": 2}}
	src := map[string]any{"b": map[string]any{"d": 4}}

	deepMerge(dst, src)
	assert.Equal(t, map[string]any{"b": map[string]any{"c": 2}}, dst)
	assert.Equal(t, map[string]any{"b": map[string]any{"d": 4}}, src)
}
