package cmd

import (
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zjrosen/langue/internal/language"
	"github.com/zjrosen/langue/internal/paths"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List available language definitions",
	Long: `List the definitions available locally and where each one comes from.

User definitions shadow builtin ones with the same name. Remote definitions
are fetched on demand and are not listed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		origin := map[string]string{}

		builtin, err := language.Builtin().Names()
		if err != nil {
			return err
		}
		for _, name := range builtin {
			origin[name] = "builtin"
		}

		if dir := paths.ResolveLanguagesDir(cfg.LanguagesDir); dir != "" {
			user, err := language.DirSource(dir).Names()
			if err != nil {
				return fmt.Errorf("listing %s: %w", dir, err)
			}
			for _, name := range user {
				origin[name] = dir
			}
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, name := range slices.Sorted(maps.Keys(origin)) {
			fmt.Fprintf(w, "%s\t%s\n", name, origin[name])
		}
		if cfg.Remote.Enabled {
			fmt.Fprintf(w, "*\t%s\n", cfg.Remote.BaseURL)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}
