package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/langue/internal/language"
)

var checkCmd = &cobra.Command{
	Use:   "check <definition>...",
	Short: "Validate language definition files",
	Long: `Parse and compile each definition file and report any error.

Exits non-zero when any definition fails. Use it before dropping a new
definition into the languages directory.

Example:
  langue check .langue/languages/toml.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, file := range args {
			lang, err := checkDefinition(file)
			if err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "FAIL %s: %v\n", file, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok   %s: %s (%d rules)\n", file, lang.Name, len(lang.Definition))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d definitions failed", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func checkDefinition(file string) (*language.Language, error) {
	data, err := os.ReadFile(file) //nolint:gosec // G304: file is the user's input
	if err != nil {
		return nil, err
	}
	spec, err := language.Parse(file, data)
	if err != nil {
		return nil, err
	}
	return language.Compile(spec)
}
