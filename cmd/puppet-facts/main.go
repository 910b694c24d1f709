package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/voxpupuli/rspec-puppet-facts/cmd/puppet-facts/commands"
)

var rootCmd = &cobra.Command{
	Use:   "puppet-facts",
	Short: "Resolve a Puppet module's supported operating systems into FacterDB facts",
	Long: `puppet-facts reads the operatingsystem_support section of metadata.json and
prints the recorded Facter facts of every supported platform.

Available commands:
  resolve - Resolve the support matrix into fact sets
  version - Show version information

Examples:
  puppet-facts resolve --facterdb ~/facterdb/facts --facter-version 4.2
  SPEC_FACTS_OS=redhat puppet-facts resolve --output table`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(commands.ResolveCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
