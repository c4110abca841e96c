// Command console is the brand console's campaign editor and catalog tool.
package main

import (
	"fmt"
	"os"

	"brandconsole/internal/config"
	"brandconsole/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "console",
	Short: "Brand console: campaign editor and catalog tools",
	Long: `console edits affiliate campaigns from the terminal.

The editor opens a campaign, lets you pick up to the configured number of
products and categories, and saves it through the configured backend: the
local SQLite store or the remote HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "init" && cmd.Parent() != nil && cmd.Parent().Name() == "config" {
			return nil
		}
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid config %s: %w", configPath, err)
		}
		cfg = loaded
		if err := initLogger(cmd.Name() == "edit"); err != nil {
			return err
		}
		logging.Get(logging.CategoryBoot).Debug("config loaded",
			zap.String("path", configPath),
			zap.String("backend", cfg.Backend.Kind),
			zap.Int("max_items", cfg.Selection.MaxItems))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// initLogger installs the root logger. The editor owns the terminal, so it
// logs to the configured file only; other commands log to stderr.
func initLogger(tui bool) error {
	opts := cfg.Logging.Options()
	if verbose {
		opts.Level = "debug"
	}
	if tui {
		l, err := logging.Init(opts)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	}

	zc, err := stderrConfig(opts)
	if err != nil {
		return err
	}
	l, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logging.Set(l, opts.Categories)
	logger = l
	return nil
}

// stderrConfig builds the zap config for commands that do not own the
// terminal, honoring the configured level and format.
func stderrConfig(opts logging.Options) (zap.Config, error) {
	level, err := logging.ParseLevel(opts.Level)
	if err != nil {
		return zap.Config{}, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	if opts.Format == "console" || opts.Format == "text" {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return zc, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(itemsCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
