package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	verbose        bool
	showVersionAlt bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "codemate",
	Short: "Codemate - local code intelligence over git history",
	Long: `Codemate indexes a git repository's history into content-addressed
chunks, a hybrid FTS/vector search index, and a code graph with
git-derived authorship, so you can search and trace code the way you'd
ask a teammate who reads every commit.

Configuration lives in .codemate/config.yml at the repository root.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersionAlt {
			versionCmd.Run(cmd, args)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the root command and returns the process exit code:
// 0 on success, 2 on a usage error (bad flags/args), 1 on any other
// failure. This is called by cmd/codemate's main.go.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	if isUsageError(err) {
		return 2
	}
	return 1
}

// isUsageError distinguishes cobra's own argument/flag-parsing failures
// from errors returned by a command's RunE, since cobra doesn't expose a
// typed distinction between the two.
func isUsageError(err error) bool {
	msg := err.Error()
	for _, marker := range []string{"unknown command", "unknown flag", "unknown shorthand flag", "accepts ", "requires ", "invalid argument"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().BoolVarP(&showVersionAlt, "version", "V", false, "print version information")
}
