package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var gatesCmd = &cobra.Command{
	Use:   "gates",
	Short: "Show the configured gate catalog",
	Long: `Print the gate registry table: each gate's opening event, reset
policy, restricted tool categories, and instruction text. Useful for
auditing a deployment's configuration.

Examples:
  sg gates
  sg gates -o yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		registry, err := cfg.BuildRegistry()
		if err != nil {
			return err
		}

		defs := registry.Definitions()
		return renderOutput(GetOutput(cfg), defs, func() error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			//nolint:errcheck // CLI tabwriter output to stdout
			fmt.Fprintln(w, "GATE\tOPENS ON\tRESETS\tAPPLIES TO\tINSTRUCTION")
			for _, def := range defs {
				resets := "never"
				if def.ResetsOnPrompt {
					resets = "new prompt"
				}
				var cats []string
				for _, c := range def.AppliesTo {
					cats = append(cats, string(c))
				}
				applies := strings.Join(cats, ",")
				if applies == "" {
					applies = "-"
				}
				//nolint:errcheck // CLI tabwriter output to stdout
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					def.Name, def.OpensOn, resets, applies, truncate(def.Instruction, 50))
			}
			return w.Flush()
		})
	},
}

func init() {
	rootCmd.AddCommand(gatesCmd)
}
