package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var configShow bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View the resolved session gate configuration.

Configuration priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (SESSIONGATE_*)
  3. Project config (.sessiongate/config.yaml)
  4. Home config (~/.sessiongate/config.yaml)
  5. Defaults

Environment variables:
  SESSIONGATE_CONFIG          - Explicit config file path
  SESSIONGATE_OUTPUT          - Default output format (table, json, yaml)
  SESSIONGATE_BASE_DIR        - Data directory path
  SESSIONGATE_MODE            - Enforcement mode (warn, block)
  SESSIONGATE_AUDIT_THRESHOLD - Tool calls between compliance audits
  SESSIONGATE_VERBOSE         - Enable verbose output (true/1)

Examples:
  sg config --show           # Show resolved configuration
  sg config --show -o json   # Output as JSON`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !configShow {
			return cmd.Help()
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		return renderOutput(GetOutput(cfg), cfg, func() error {
			fmt.Println("Config files:")
			home, _ := os.UserHomeDir()
			for _, path := range []string{
				filepath.Join(home, ".sessiongate", "config.yaml"),
				filepath.Join(".sessiongate", "config.yaml"),
			} {
				status := "not found"
				if _, err := os.Stat(path); err == nil {
					status = "loaded"
				}
				fmt.Printf("  %s (%s)\n", path, status)
			}
			fmt.Println()
			fmt.Printf("Output:           %s\n", cfg.Output)
			fmt.Printf("Base dir:         %s\n", cfg.BaseDir)
			fmt.Printf("Mode:             %s\n", cfg.Mode)
			fmt.Printf("Audit threshold:  %d\n", cfg.AuditThreshold)
			fmt.Printf("Verbose:          %t\n", cfg.Verbose)
			if len(cfg.Gates) > 0 {
				fmt.Printf("Gate overrides:   %d\n", len(cfg.Gates))
			}
			return nil
		})
	},
}

func init() {
	configCmd.Flags().BoolVar(&configShow, "show", false, "Show resolved configuration")
	rootCmd.AddCommand(configCmd)
}
