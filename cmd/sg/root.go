package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nicsuzor/sessiongate/internal/audit"
	"github.com/nicsuzor/sessiongate/internal/block"
	"github.com/nicsuzor/sessiongate/internal/config"
	"github.com/nicsuzor/sessiongate/internal/router"
	"github.com/nicsuzor/sessiongate/internal/session"
)

var (
	// Global flags
	dryRun  bool
	verbose bool
	output  string
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sg",
	Short: "Agent session policy gate",
	Long: `sg mediates every action an autonomous agent attempts during a working
session, deciding whether it may proceed, must be blocked, or should proceed
with a warning, based on a state machine of named gates.

Core Commands:
  handle       Process one session event from stdin (the hook entry point)
  verdict      Apply an external compliance review verdict
  status       Show session state (gates, counters, block status)
  blocks       Review and clear durable session blocks
  gates        Show the configured gate catalog
  config       Show resolved configuration

Wire a host's hooks at sg handle: every session-lifecycle and tool event is
piped in as JSON and the decision comes back on stdout.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		syncConfigFlagToEnv()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Show what would happen without executing")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "Output format (json, table, yaml)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.sessiongate/config.yaml)")
}

// GetDryRun returns the dry-run flag value for use by subcommands.
func GetDryRun() bool {
	return dryRun
}

// GetVerbose returns the verbose flag value for use by subcommands.
func GetVerbose() bool {
	return verbose
}

// GetConfigFile returns the config file path for use by subcommands.
func GetConfigFile() string {
	return cfgFile
}

// VerbosePrintf prints to stderr only when verbose mode is enabled.
// Diagnostics go to stderr so stdout stays parseable for hook hosts.
func VerbosePrintf(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

func syncConfigFlagToEnv() {
	path := strings.TrimSpace(GetConfigFile())
	if path == "" {
		return
	}
	_ = os.Setenv("SESSIONGATE_CONFIG", path)
}

// loadConfig resolves configuration with the global flags applied.
func loadConfig() (*config.Config, error) {
	overrides := &config.Config{
		Output:  output,
		Verbose: verbose,
	}
	cfg, err := config.Load(overrides)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// GetOutput returns the effective output format for use by subcommands.
func GetOutput(cfg *config.Config) string {
	if output != "" {
		return output
	}
	return cfg.Output
}

// buildRouter wires the store, registries, and log from configuration.
func buildRouter(cfg *config.Config) (*router.Router, error) {
	registry, err := cfg.BuildRegistry()
	if err != nil {
		return nil, fmt.Errorf("build gate registry: %w", err)
	}
	store := session.NewStore(cfg.BaseDir, registry)
	blocks := block.NewRegistry(cfg.BaseDir)
	auditLog := audit.NewLog(cfg.BaseDir)
	return router.New(store, registry, blocks, auditLog, cfg.EnforcementMode(), cfg.AuditThreshold), nil
}
