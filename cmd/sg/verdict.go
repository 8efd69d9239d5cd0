package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nicsuzor/sessiongate/internal/gate"
	"github.com/nicsuzor/sessiongate/internal/router"
)

var verdictCmd = &cobra.Command{
	Use:   "verdict <session-id>",
	Short: "Apply an external compliance review verdict",
	Long: `Read a review verdict on stdin and apply it under the configured
enforcement mode. The payload may be a bare token (OK, WARN, BLOCK), a JSON
string, or a JSON object with a "verdict" field and optional issue,
principle_reference, correction_text, and raw_context_snapshot fields.

Anything that does not parse to exactly OK, WARN, or BLOCK is treated as
CANNOT_ASSESS: the pending action stays denied and the audit remains due.

Examples:
  echo OK | sg verdict abc-123
  sg verdict abc-123 < review.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read verdict: %w", err)
		}

		if GetDryRun() {
			fmt.Printf("[dry-run] Would apply verdict to session %s\n", args[0])
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		r, err := buildRouter(cfg)
		if err != nil {
			return err
		}

		dec, err := r.Handle(router.Event{
			SessionID: args[0],
			Type:      router.EventAuditVerdict,
			Verdict:   json.RawMessage(raw),
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		if err := enc.Encode(dec); err != nil {
			return fmt.Errorf("encode decision: %w", err)
		}
		if dec.Verdict == gate.VerdictDeny {
			os.Exit(exitDeny)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verdictCmd)
}
