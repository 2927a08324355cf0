package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harun/atrium/internal/config"
)

var configInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the effective configuration after defaults, the config file and
environment overrides are applied. With --init, write the effective
configuration to the config file.`,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "write the effective configuration to the config file")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader(cfgFile)
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cfg.String())

	if issues := config.NewValidator().ValidateConfig(cfg); len(issues) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "\nConfiguration issues:")
		for _, issue := range issues {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %v\n", issue)
		}
	}

	if configInit {
		if err := loader.Save(cfg); err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nConfiguration saved to: %s\n", loader.GetConfigPath())
	}

	return nil
}
