package main

import (
	"fmt"
	"os"
	"os/user"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nicsuzor/sessiongate/internal/block"
	"github.com/nicsuzor/sessiongate/internal/session"
)

var (
	blocksSession string
	blocksAll     bool
	clearReason   string
	clearOperator string
)

var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "Review and clear durable session blocks",
	Long: `A BLOCK verdict durably stops a session until a human reviews it.
The blocks command is that review surface.

Subcommands:
  list     Show block records
  clear    Clear the active blocks on a session (requires --reason)

sg never clears a block on its own; clearing is always an explicit,
operator-driven action.`,
}

var blocksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List block records",
	Long: `List active block records, oldest first. Use --all to include
cleared records and tombstones.

Examples:
  sg blocks list
  sg blocks list --session abc-123
  sg blocks list --all -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		registry := block.NewRegistry(cfg.BaseDir)

		var records []block.Record
		if blocksAll {
			records, err = registry.List()
		} else {
			records, err = registry.Active(blocksSession)
		}
		if err != nil {
			return err
		}
		return renderOutput(GetOutput(cfg), records, func() error {
			return blocksTable(records)
		})
	},
}

var blocksClearCmd = &cobra.Command{
	Use:   "clear <session-id>",
	Short: "Clear the active blocks on a session",
	Long: `Append clearing tombstones for every active block on the session
and flip the session's blocked flag back off.

This is the explicit human-review step that lets work resume; it always
requires a reason for the audit trail.

Examples:
  sg blocks clear abc-123 --reason "Scope drift resolved with user"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]
		if clearReason == "" {
			return fmt.Errorf("--reason is required to clear a block")
		}

		if GetDryRun() {
			fmt.Printf("[dry-run] Would clear blocks on session %s\n", sessionID)
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		gateRegistry, err := cfg.BuildRegistry()
		if err != nil {
			return err
		}
		store := session.NewStore(cfg.BaseDir, gateRegistry)
		blocks := block.NewRegistry(cfg.BaseDir)

		operator := clearOperator
		if operator == "" {
			operator = currentUser()
		}

		cleared, err := blocks.Clear(sessionID, operator, clearReason, time.Now())
		if err != nil {
			return err
		}
		if _, err := store.Update(sessionID, func(s *session.Session) error {
			s.Blocked = false
			s.BlockReason = ""
			return nil
		}); err != nil {
			return err
		}

		fmt.Printf("Cleared %d block(s) on session %s\n", len(cleared), sessionID)
		return nil
	},
}

func blocksTable(records []block.Record) error {
	if len(records) == 0 {
		fmt.Println("No block records")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	//nolint:errcheck // CLI tabwriter output to stdout
	fmt.Fprintln(w, "ID\tSESSION\tTIME\tISSUE")
	for _, rec := range records {
		issue := rec.Issue
		if rec.IsTombstone() {
			issue = fmt.Sprintf("cleared %s: %s", truncate(rec.Clears, 8), issue)
		}
		//nolint:errcheck // CLI tabwriter output to stdout
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			truncate(rec.ID, 8),
			rec.SessionID,
			rec.Timestamp.Format("2006-01-02 15:04"),
			truncate(issue, 60))
	}
	return w.Flush()
}

// currentUser returns the operator's username for the audit trail.
func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "operator"
}

func init() {
	blocksListCmd.Flags().StringVar(&blocksSession, "session", "", "Filter by session ID")
	blocksListCmd.Flags().BoolVar(&blocksAll, "all", false, "Include cleared records and tombstones")
	blocksClearCmd.Flags().StringVar(&clearReason, "reason", "", "Reason for clearing (required)")
	blocksClearCmd.Flags().StringVar(&clearOperator, "by", "", "Operator name (default: current user)")
	blocksCmd.AddCommand(blocksListCmd)
	blocksCmd.AddCommand(blocksClearCmd)
	rootCmd.AddCommand(blocksCmd)
}
