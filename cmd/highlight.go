package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/langue/internal/log"
)

var (
	hlLang     string
	hlFormat   string
	hlStrategy string
)

// extLanguages maps file extensions whose language name differs from the
// extension itself.
var extLanguages = map[string]string{
	".js":  "javascript",
	".mjs": "javascript",
	".cjs": "javascript",
	".py":  "python",
	".yml": "yaml",
}

var highlightCmd = &cobra.Command{
	Use:   "highlight [file]",
	Short: "Highlight a file or stdin",
	Long: `Highlight source text and write it to stdout.

Reads the file argument, or stdin when it is omitted or "-". The language
comes from --lang, or from the file extension. When the language cannot be
loaded the text is written unhighlighted and a warning goes to stderr.

Examples:
  langue highlight main.go
  cat app.js | langue highlight --lang javascript --format ansi
  langue highlight --lang language-python --format tokens script.py
  langue highlight --strategy legacy main.go`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHighlight,
}

func init() {
	highlightCmd.Flags().StringVarP(&hlLang, "lang", "l", "", "language name (default: from file extension)")
	highlightCmd.Flags().StringVarP(&hlFormat, "format", "f", "", "output format: html, ansi or tokens (default from config)")
	highlightCmd.Flags().StringVarP(&hlStrategy, "strategy", "s", "", "tokenizer: scanner or legacy (default from config)")
	rootCmd.AddCommand(highlightCmd)
}

func runHighlight(cmd *cobra.Command, args []string) error {
	file := "-"
	if len(args) == 1 {
		file = args[0]
	}

	name := hlLang
	if name == "" {
		name = languageForFile(file)
	}
	if name == "" {
		return fmt.Errorf("cannot tell the language of %s; pass --lang", file)
	}

	text, err := readInput(cmd.InOrStdin(), file)
	if err != nil {
		return err
	}

	h, err := newHighlighter(cfg, hlStrategy, hlFormat)
	if err != nil {
		return err
	}

	out, err := h.Highlight(cmd.Context(), name, text)
	if err != nil {
		log.Warn(log.CatCLI, "highlight failed open", "language", name, "error", err)
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; output is not highlighted\n", err)
	}
	_, err = io.WriteString(cmd.OutOrStdout(), out)
	return err
}

// languageForFile guesses a language name from a file extension.
func languageForFile(file string) string {
	ext := strings.ToLower(filepath.Ext(file))
	if ext == "" || file == "-" {
		return ""
	}
	if name, ok := extLanguages[ext]; ok {
		return name
	}
	return strings.TrimPrefix(ext, ".")
}

func readInput(stdin io.Reader, file string) (string, error) {
	if file == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(file) //nolint:gosec // G304: file is the user's input
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", file, err)
	}
	return string(data), nil
}
