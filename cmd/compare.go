package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/langue/internal/flags"
	"github.com/zjrosen/langue/internal/highlight"
	"github.com/zjrosen/langue/internal/syntax"
)

var (
	cmpLang    string
	cmpOverlap string
)

var compareCmd = &cobra.Command{
	Use:   "compare [file]",
	Short: "Diff scanner tokens against legacy tokens",
	Long: `Tokenize the input with both strategies and print a token diff.

Lines starting with "-" appear only in the scanner output, lines starting
with "+" only in the legacy output. Use it to check what switching
strategies or turning off strict-overlap changes for a file.

Examples:
  langue compare main.go
  langue compare --overlap containment --lang javascript < app.js`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := "-"
		if len(args) == 1 {
			file = args[0]
		}
		name := cmpLang
		if name == "" {
			name = languageForFile(file)
		}
		if name == "" {
			return fmt.Errorf("cannot tell the language of %s; pass --lang", file)
		}

		overlap := syntax.Containment
		switch cmpOverlap {
		case "":
			if flags.New(cfg.Flags).Enabled(flags.FlagStrictOverlap) {
				overlap = syntax.Strict
			}
		case "strict":
			overlap = syntax.Strict
		case "containment":
		default:
			return fmt.Errorf("unknown overlap %q (want strict or containment)", cmpOverlap)
		}

		text, err := readInput(cmd.InOrStdin(), file)
		if err != nil {
			return err
		}
		lang, err := newRegistry(cfg).Get(cmd.Context(), name)
		if err != nil {
			return err
		}

		diffs := highlight.CompareStrategies(lang, text, overlap)
		if !highlight.Changed(diffs) {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "strategies agree")
			return err
		}
		_, err = io.WriteString(cmd.OutOrStdout(), highlight.FormatDiff(diffs))
		return err
	},
}

func init() {
	compareCmd.Flags().StringVarP(&cmpLang, "lang", "l", "", "language name (default: from file extension)")
	compareCmd.Flags().StringVar(&cmpOverlap, "overlap", "", "legacy overlap policy: strict or containment (default from flags)")
	rootCmd.AddCommand(compareCmd)
}
