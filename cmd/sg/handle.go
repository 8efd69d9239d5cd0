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

// exitDeny is the exit code for a deny decision, so hook wrappers can branch
// on the exit status without parsing the decision JSON.
const exitDeny = 2

var handleEventType string

var handleCmd = &cobra.Command{
	Use:   "handle",
	Short: "Process one session event from stdin",
	Long: `Read a single event JSON object on stdin, run it through the gate
logic, and write the decision JSON on stdout.

The event shape:
  {"session_id": "...", "event_type": "pre_tool_call",
   "tool_name": "Edit", "category": "mutating"}

Exit codes: 0 for allow, 2 for deny, 1 for errors.

Examples:
  echo '{"session_id":"s1","event_type":"session_start"}' | sg handle
  sg handle --event pre_tool_call < event.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read event: %w", err)
		}

		var ev router.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("parse event: %w", err)
		}
		if handleEventType != "" {
			ev.Type = router.Type(handleEventType)
		}

		if GetDryRun() {
			fmt.Printf("[dry-run] Would handle %s event for session %s\n", ev.Type, ev.SessionID)
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

		dec, err := r.Handle(ev)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		if err := enc.Encode(dec); err != nil {
			return fmt.Errorf("encode decision: %w", err)
		}

		VerbosePrintf("session %s: %s event -> %s\n", ev.SessionID, ev.Type, dec.Verdict)
		if dec.Verdict == gate.VerdictDeny {
			os.Exit(exitDeny)
		}
		return nil
	},
}

func init() {
	handleCmd.Flags().StringVar(&handleEventType, "event", "", "Override the event type from the payload")
	rootCmd.AddCommand(handleCmd)
}
