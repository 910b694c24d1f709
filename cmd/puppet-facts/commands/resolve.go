package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	puppetfacts "github.com/voxpupuli/rspec-puppet-facts"
	"github.com/voxpupuli/rspec-puppet-facts/facterdb"
	"github.com/voxpupuli/rspec-puppet-facts/internal/config"
	"github.com/voxpupuli/rspec-puppet-facts/internal/logger"
)

// Output formats of the resolve command.
const (
	OutputJSON  = "json"
	OutputYAML  = "yaml"
	OutputTable = "table"
)

// ResolveCmd resolves the support matrix of a module into fact sets.
var ResolveCmd = newResolveCmd()

type resolveFlags struct {
	envFile            string
	metadata           string
	facterDB           []string
	facterVersion      string
	hardwareModels     []string
	strict             bool
	osFilter           string
	output             string
	withoutLegacyFacts bool
	puppetVersion      string
	logLevel           string
	logJSON            bool
}

func newResolveCmd() *cobra.Command {
	var f resolveFlags
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the supported operating systems into fact sets",
		Long: `Resolve reads the support matrix from metadata.json and prints the FacterDB
fact sets of every supported operating system, release and hardware model.

Flags default to the environment: SPEC_FACTS_OS, SPEC_FACTS_STRICT,
SPEC_FACTS_FACTER_VERSION, SPEC_FACTS_METADATA and FACTERDB_SEARCH_PATHS.
A .env file in the working directory is loaded first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, &f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	flags.StringVarP(&f.metadata, "metadata", "m", "", "path of metadata.json (default $SPEC_FACTS_METADATA or metadata.json)")
	flags.StringSliceVar(&f.facterDB, "facterdb", nil, "FacterDB facts directories (default $FACTERDB_SEARCH_PATHS)")
	flags.StringVar(&f.facterVersion, "facter-version", "", "Facter version to resolve (default $SPEC_FACTS_FACTER_VERSION or the newest)")
	flags.StringSliceVar(&f.hardwareModels, "hardwaremodel", nil, "hardware models to resolve (default x86_64)")
	flags.BoolVar(&f.strict, "strict", false, "fail instead of falling back to an older Facter version")
	flags.StringVar(&f.osFilter, "os", "", "only keep identifiers starting with this value (default $SPEC_FACTS_OS)")
	flags.StringVarP(&f.output, "output", "o", OutputJSON, "output format: json, yaml or table")
	flags.BoolVar(&f.withoutLegacyFacts, "without-legacy-facts", false, "remove legacy facts from every fact set")
	flags.StringVar(&f.puppetVersion, "puppet-version", "", "add a puppetversion fact to every fact set")
	flags.StringVar(&f.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	flags.BoolVar(&f.logJSON, "log-json", false, "write logs as JSON")
	return cmd
}

func runResolve(cmd *cobra.Command, f *resolveFlags) error {
	if !slices.Contains([]string{OutputJSON, OutputYAML, OutputTable}, f.output) {
		return errors.WithHint(errors.Newf("unknown output format %q", f.output), "use json, yaml or table")
	}

	if f.envFile != "" {
		if cmd.Flags().Changed("env-file") {
			if _, err := os.Stat(f.envFile); err != nil {
				return errors.WithHint(errors.Wrap(err, "env file"), "check the --env-file path")
			}
		}
		if err := config.LoadDotEnv(f.envFile); err != nil {
			return err
		}
	}
	settings := config.Load()
	applyFlags(cmd, f, settings)

	z, err := logger.New(f.logLevel, f.logJSON)
	if err != nil {
		return err
	}
	defer func() { _ = z.Sync() }()

	ctx := cmd.Context()
	db, err := facterdb.OpenSearchPaths(ctx, settings.SearchPaths...)
	if err != nil {
		return err
	}

	opts := []puppetfacts.Option{
		puppetfacts.WithLogger(logger.Slog(z)),
		puppetfacts.WithMetadataPath(settings.Metadata),
		puppetfacts.WithOSFilter(settings.OSFilter),
		puppetfacts.WithStrict(settings.Strict),
		puppetfacts.WithFacterVersion(settings.FacterVersion),
		puppetfacts.WithHardwareModels(f.hardwareModels...),
		puppetfacts.WithCommonFacts(puppetfacts.CommonFacts{PuppetVersion: f.puppetVersion}),
	}
	if f.withoutLegacyFacts {
		opts = append(opts, puppetfacts.WithoutLegacyFacts())
	}

	r, err := puppetfacts.New(db, opts...)
	if err != nil {
		return err
	}
	result, err := r.OnSupportedOS(ctx, puppetfacts.Request{})
	if err != nil {
		return err
	}
	return writeResult(cmd.OutOrStdout(), f.output, result)
}

// applyFlags overrides the environment with the flags that were set.
func applyFlags(cmd *cobra.Command, f *resolveFlags, s *config.Settings) {
	flags := cmd.Flags()
	if flags.Changed("metadata") {
		s.Metadata = f.metadata
	}
	if flags.Changed("facterdb") {
		s.SearchPaths = f.facterDB
	}
	if flags.Changed("facter-version") {
		s.FacterVersion = f.facterVersion
	}
	if flags.Changed("strict") {
		s.Strict = f.strict
	}
	if flags.Changed("os") {
		s.OSFilter = f.osFilter
	}
}

func writeResult(w io.Writer, format string, result map[string]puppetfacts.Facts) error {
	switch format {
	case OutputYAML:
		data, err := yaml.Marshal(result)
		if err != nil {
			return errors.Wrap(err, "encode yaml")
		}
		_, err = w.Write(data)
		return err

	case OutputTable:
		table, err := pterm.DefaultTable.WithHasHeader().WithData(tableData(result)).Srender()
		if err != nil {
			return errors.Wrap(err, "render table")
		}
		_, err = fmt.Fprintln(w, table)
		return err

	default:
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encode json")
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
}

// tableData summarizes every fact set on one row, sorted by identifier.
func tableData(result map[string]puppetfacts.Facts) pterm.TableData {
	ids := make([]string, 0, len(result))
	for id := range result {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	data := pterm.TableData{{"IDENTIFIER", "OPERATINGSYSTEM", "RELEASE", "HARDWAREMODEL", "FACTER"}}
	for _, id := range ids {
		facts := result[id]
		data = append(data, []string{
			id,
			facts.OperatingSystem(),
			facts.Release(),
			facts.HardwareModel(),
			facts.FacterVersion(),
		})
	}
	return data
}
