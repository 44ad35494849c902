package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/langue/internal/config"
	"github.com/zjrosen/langue/internal/flags"
	"github.com/zjrosen/langue/internal/highlight"
	"github.com/zjrosen/langue/internal/language"
	"github.com/zjrosen/langue/internal/log"
	"github.com/zjrosen/langue/internal/paths"
	"github.com/zjrosen/langue/internal/syntax"
)

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config

	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "langue",
	Short: "Syntax highlighting from declarative language definitions",
	Long: `Langue tokenizes source text with regular-expression language definitions
and renders it as HTML spans, ANSI-colored terminal output or a token list.

Definitions are looked up in ./.langue/languages (or ~/.config/langue/languages),
then in the builtin set, then remotely when remote.enabled is set.`,
	Version:            version,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/langue/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write debug logs (path from LANGUE_LOG, default debug.log)")
	rootCmd.PersistentFlags().String("languages-dir", "",
		"directory holding user language definitions")

	// Bind flags to viper
	_ = viper.BindPFlag("languages_dir", rootCmd.PersistentFlags().Lookup("languages-dir"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("strategy", defaults.Strategy)
	viper.SetDefault("format", defaults.Format)
	viper.SetDefault("remote.enabled", defaults.Remote.Enabled)
	viper.SetDefault("remote.base_url", defaults.Remote.BaseURL)
	viper.SetDefault("remote.timeout", defaults.Remote.Timeout)
	viper.SetDefault("watch.debounce", defaults.Watch.Debounce)
	viper.SetDefault("flags", defaults.Flags)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .langue/config.yaml (current directory)
		// 2. ~/.config/langue/config.yaml (user config)
		local := filepath.Join(paths.ProjectDir, "config.yaml")
		if _, err := os.Stat(local); err == nil {
			viper.SetConfigFile(local)
		} else {
			viper.AddConfigPath(paths.ConfigDir())
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	// A missing config file just means defaults
	_ = viper.ReadInConfig()

	cfg = config.Config{}
	_ = viper.Unmarshal(&cfg)
}

func setup(cmd *cobra.Command, _ []string) error {
	if os.Getenv("LANGUE_DEBUG") != "" || debugFlag {
		logPath := os.Getenv("LANGUE_LOG")
		if logPath == "" {
			logPath = "debug.log"
		}

		cleanup, err := log.Init(logPath)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		logCleanup = cleanup

		log.Info(log.CatCLI, "langue starting", "command", cmd.Name(), "config", viper.ConfigFileUsed())
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if logCleanup != nil {
		logCleanup()
		logCleanup = nil
	}
	return nil
}

// newRegistry builds the definition lookup chain from cfg.
func newRegistry(cfg config.Config) *language.Registry {
	return language.NewRegistry(sources(cfg))
}

func sources(cfg config.Config) language.Chain {
	var chain language.Chain
	if dir := paths.ResolveLanguagesDir(cfg.LanguagesDir); dir != "" {
		chain = append(chain, language.DirSource(dir))
	}
	chain = append(chain, language.Builtin())
	if cfg.Remote.Enabled {
		chain = append(chain, language.NewHTTPSource(cfg.Remote.BaseURL, cfg.Remote.Timeout))
	}
	return chain
}

// newHighlighter builds a highlighter from cfg. Non-empty strategy and
// format override the configured ones.
func newHighlighter(cfg config.Config, strategy, format string) (*highlight.Highlighter, error) {
	if strategy == "" {
		strategy = cfg.Strategy
	}
	if format == "" {
		format = cfg.Format
	}
	s, err := highlight.ParseStrategy(strategy)
	if err != nil {
		return nil, err
	}
	f, err := highlight.ParseFormat(format)
	if err != nil {
		return nil, err
	}

	overlap := syntax.Containment
	if flags.New(cfg.Flags).Enabled(flags.FlagStrictOverlap) {
		overlap = syntax.Strict
	}

	return highlight.New(newRegistry(cfg),
		highlight.WithStrategy(s),
		highlight.WithFormat(f),
		highlight.WithOverlap(overlap),
	), nil
}

// configPath returns the file config commands write to.
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used, nil
	}
	dir := paths.ConfigDir()
	if dir == "" {
		return "", errors.New("cannot determine config directory; pass --config")
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
