package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/langue/internal/highlight"
	"github.com/zjrosen/langue/internal/language"
	"github.com/zjrosen/langue/internal/log"
	"github.com/zjrosen/langue/internal/paths"
	"github.com/zjrosen/langue/internal/pubsub"
	"github.com/zjrosen/langue/internal/watcher"
)

var (
	watchOut      string
	watchLang     string
	watchFormat   string
	watchStrategy string
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-highlight a file whenever it changes",
	Long: `Highlight a file, then highlight it again every time it is saved.

Output replaces the contents of --out on each render, or is written to stdout
when --out is not set. When the language comes from a definition file in the
languages directory, saving that file recompiles it and renders again.
Stop with Ctrl+C.

Example:
  langue watch main.go --out main.html`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runWatch(ctx, cmd, args[0])
	},
}

func init() {
	watchCmd.Flags().StringVarP(&watchOut, "out", "o", "", "file to write rendered output to (default: stdout)")
	watchCmd.Flags().StringVarP(&watchLang, "lang", "l", "", "language name (default: from file extension)")
	watchCmd.Flags().StringVarP(&watchFormat, "format", "f", "", "output format: html, ansi or tokens")
	watchCmd.Flags().StringVarP(&watchStrategy, "strategy", "s", "", "tokenizer: scanner or legacy")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(ctx context.Context, cmd *cobra.Command, file string) error {
	name := watchLang
	if name == "" {
		name = languageForFile(file)
	}
	if name == "" {
		return fmt.Errorf("cannot tell the language of %s; pass --lang", file)
	}

	h, err := newHighlighter(cfg, watchStrategy, watchFormat)
	if err != nil {
		return err
	}

	reg := h.Registry()
	defer reg.Close()
	key := language.Normalize(name)
	events := reg.Subscribe(ctx)

	changes, stopFile, err := startWatcher(file)
	if err != nil {
		return err
	}
	defer stopFile()

	// edits to a user definition recompile it and re-render
	var defChanges <-chan struct{}
	if def, ok := language.DefinitionFile(paths.ResolveLanguagesDir(cfg.LanguagesDir), name); ok {
		c, stopDef, err := startWatcher(def)
		if err != nil {
			return err
		}
		defer stopDef()
		defChanges = c
		log.Info(log.CatCLI, "watching definition", "file", def)
	}

	render := func() {
		if err := renderTo(ctx, cmd, h, name, file); err != nil {
			// keep watching; the file may be mid-save
			log.ErrorErr(log.CatCLI, "render failed", err, "file", file)
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
		}
	}

	if err := renderTo(ctx, cmd, h, name, file); err != nil {
		return err
	}
	log.Info(log.CatCLI, "watching", "file", file, "out", watchOut)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			log.Debug(log.CatCLI, "file changed", "file", file)
			render()
		case <-defChanges:
			if err := reg.Invalidate(ctx, key); err != nil {
				log.ErrorErr(log.CatCLI, "invalidate failed", err, "name", key)
			}
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Type == pubsub.InvalidatedEvent && ev.Payload == key {
				log.Debug(log.CatCLI, "definition changed", "name", key)
				render()
			}
		}
	}
}

func startWatcher(path string) (<-chan struct{}, func(), error) {
	w, err := watcher.New(watcher.Config{Path: path, DebounceDur: cfg.Watch.Debounce})
	if err != nil {
		return nil, nil, err
	}
	changes, err := w.Start()
	if err != nil {
		_ = w.Stop()
		return nil, nil, err
	}
	return changes, func() { _ = w.Stop() }, nil
}

func renderTo(ctx context.Context, cmd *cobra.Command, h *highlight.Highlighter, name, file string) error {
	text, err := readInput(nil, file)
	if err != nil {
		return err
	}
	out, err := h.Highlight(ctx, name, text)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; output is not highlighted\n", err)
	}
	if watchOut == "" {
		_, err = io.WriteString(cmd.OutOrStdout(), out)
		return err
	}
	return writeOutput(watchOut, out)
}

// writeOutput replaces path with content via a rename so readers never see
// a partial render.
func writeOutput(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".langue-out-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := io.WriteString(tmp, content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

