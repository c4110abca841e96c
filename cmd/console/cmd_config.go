package main

import (
	"fmt"
	"os"

	"brandconsole/internal/config"

	"github.com/spf13/cobra"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
		}
		if err := config.DefaultConfig().Save(configPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "backend:        %s\n", cfg.Backend.Kind)
		if cfg.Backend.Kind == config.BackendHTTP {
			fmt.Fprintf(cmd.OutOrStdout(), "base_url:       %s\n", cfg.Backend.BaseURL)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "store:          %s\n", cfg.Store.Path)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "max_items:      %d\n", cfg.Selection.MaxItems)
		fmt.Fprintf(cmd.OutOrStdout(), "debounce:       %s\n", cfg.DebounceDuration())
		fmt.Fprintf(cmd.OutOrStdout(), "per_page:       %d\n", cfg.PerPage())
		fmt.Fprintf(cmd.OutOrStdout(), "high_value:     %v%%\n", cfg.Commission.HighValueThreshold)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
