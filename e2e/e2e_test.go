package e2e

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildCLI compiles the puppet-facts binary into a temporary directory.
func buildCLI(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go toolchain not available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	bin := filepath.Join(t.TempDir(), "puppet-facts")
	cmd := exec.CommandContext(ctx, "go", "build", "-o", bin, "github.com/voxpupuli/rspec-puppet-facts/cmd/puppet-facts")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "build puppet-facts: %s", out)
	return bin
}

// runCLI runs the binary in dir with a clean SPEC_FACTS_* environment.
func runCLI(t *testing.T, bin, dir string, env []string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "SPEC_FACTS_") && !strings.HasPrefix(kv, "FACTERDB_SEARCH_PATHS=") {
			cmd.Env = append(cmd.Env, kv)
		}
	}
	cmd.Env = append(cmd.Env, env...)

	var outBuf, errBuf strings.Builder
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err = cmd.Run()
	return outBuf.String(), errBuf.String(), err
}

// createFacterDB lays out a small FacterDB tree.
func createFacterDB(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "facts")
	files := map[string]map[string]any{
		"3.14/debian-10-x86_64.facts": {
			"facterversion": "3.14.10", "operatingsystem": "Debian", "operatingsystemrelease": "10.13", "hardwaremodel": "x86_64",
			"os": map[string]any{"name": "Debian", "release": map[string]any{"full": "10.13", "major": "10"}},
		},
		"4.2/debian-10-x86_64.facts": {
			"facterversion": "4.2.14", "operatingsystem": "Debian", "operatingsystemrelease": "10.13", "hardwaremodel": "x86_64",
			"os": map[string]any{"name": "Debian", "release": map[string]any{"full": "10.13", "major": "10"}},
		},
		"4.2/ubuntu-22.04-x86_64.facts": {
			"facterversion": "4.2.14", "operatingsystem": "Ubuntu", "operatingsystemrelease": "22.04", "hardwaremodel": "x86_64",
		},
		"4.2/sles-15-x86_64.facts": {
			"facterversion": "4.2.14", "operatingsystem": "SLES", "operatingsystemrelease": "15.5", "hardwaremodel": "x86_64",
		},
		"4.2/windows-2019-x86_64.facts": {
			"facterversion": "4.2.14", "operatingsystem": "windows", "operatingsystemrelease": "2019", "hardwaremodel": "x86_64",
		},
	}
	for name, facts := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		data, err := json.Marshal(facts)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, data, 0o600))
	}
	return root
}

const moduleMetadata = `{
  "name": "example-ntp",
  "version": "1.0.0",
  "operatingsystem_support": [
    {"operatingsystem": "Debian", "operatingsystemrelease": ["10"]},
    {"operatingsystem": "Ubuntu", "operatingsystemrelease": ["22.04"]},
    {"operatingsystem": "SLES", "operatingsystemrelease": ["15 SP5"]},
    {"operatingsystem": "windows", "operatingsystemrelease": ["Server 2019"]}
  ]
}`

func createModule(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.json"), []byte(moduleMetadata), 0o600))
	return dir
}

func resolvedIDs(t *testing.T, stdout string) []string {
	t.Helper()
	var got map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &got), stdout)
	ids := make([]string, 0, len(got))
	for id := range got {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func TestE2E_ResolveModule(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}
	bin := buildCLI(t)
	facts := createFacterDB(t)
	module := createModule(t)

	stdout, stderr, err := runCLI(t, bin, module, []string{"FACTERDB_SEARCH_PATHS=" + facts}, "resolve", "--facter-version", "4.2")
	require.NoError(t, err, stderr)
	assert.Equal(t, []string{
		"debian-10-x86_64",
		"sles-15-x86_64",
		"ubuntu-22.04-x86_64",
		"windows-2019-x86_64",
	}, resolvedIDs(t, stdout))
}

func TestE2E_EnvironmentFilter(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}
	bin := buildCLI(t)
	facts := createFacterDB(t)
	module := createModule(t)

	stdout, stderr, err := runCLI(t, bin, module,
		[]string{"FACTERDB_SEARCH_PATHS=" + facts, "SPEC_FACTS_OS=debian"},
		"resolve", "--facter-version", "3.14")
	require.NoError(t, err, stderr)
	assert.Equal(t, []string{"debian-10-x86_64"}, resolvedIDs(t, stdout))
	assert.Contains(t, stderr, "No facts were found in the FacterDB for Facter v3.14")
}

func TestE2E_StrictFallback(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}
	bin := buildCLI(t)
	facts := createFacterDB(t)
	module := createModule(t)

	_, stderr, err := runCLI(t, bin, module,
		[]string{"FACTERDB_SEARCH_PATHS=" + facts, "SPEC_FACTS_STRICT=yes"},
		"resolve", "--facter-version", "4.3")
	require.Error(t, err)
	assert.Contains(t, stderr, "would have used v4.2.14")
}

// TestE2E_FacterDBCheckout resolves against a real FacterDB checkout when
// one is configured.
func TestE2E_FacterDBCheckout(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}
	paths := os.Getenv("FACTERDB_SEARCH_PATHS")
	if paths == "" {
		t.Skip("FACTERDB_SEARCH_PATHS not set")
	}
	bin := buildCLI(t)
	module := createModule(t)

	stdout, stderr, err := runCLI(t, bin, module, []string{"FACTERDB_SEARCH_PATHS=" + paths}, "resolve")
	require.NoError(t, err, stderr)
	assert.NotEmpty(t, resolvedIDs(t, stdout))
}
