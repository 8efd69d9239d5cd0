package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nicsuzor/sessiongate/internal/gate"
	"github.com/nicsuzor/sessiongate/internal/session"
)

var statusCmd = &cobra.Command{
	Use:   "status [session-id]",
	Short: "Show session state",
	Long: `Show the gate map, tool-call counters, audit baseline, and block
state for a session. Without an argument, lists all known sessions.

Examples:
  sg status
  sg status abc-123
  sg status abc-123 -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		registry, err := cfg.BuildRegistry()
		if err != nil {
			return err
		}
		store := session.NewStore(cfg.BaseDir, registry)

		if len(args) == 0 {
			return listSessions(store, GetOutput(cfg))
		}
		return showSession(store, registry, args[0], GetOutput(cfg))
	},
}

func listSessions(store *session.Store, format string) error {
	ids, err := store.List()
	if err != nil {
		return err
	}
	return renderOutput(format, ids, func() error {
		if len(ids) == 0 {
			fmt.Println("No sessions")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	})
}

func showSession(store *session.Store, registry *gate.Registry, id, format string) error {
	sess, err := store.Load(id)
	if err != nil {
		return err
	}
	return renderOutput(format, sess, func() error {
		return sessionTable(sess, registry)
	})
}

func sessionTable(sess *session.Session, registry *gate.Registry) error {
	fmt.Printf("Session %s\n", sess.ID)
	fmt.Printf("  Tool calls: %d (baseline %d)\n", sess.ToolCallCount, sess.CountAtLastAudit)
	if sess.LastAuditAt != nil {
		fmt.Printf("  Last audit: %s\n", sess.LastAuditAt.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Println("  Last audit: never")
	}
	if sess.Blocked {
		fmt.Printf("  BLOCKED: %s\n", sess.BlockReason)
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	//nolint:errcheck // CLI tabwriter output to stdout
	fmt.Fprintln(w, "GATE\tSTATUS\tOPENED BY")
	for _, name := range registry.Names() {
		st := sess.Gates[name]
		openedBy := st.OpenedBy
		if openedBy == "" {
			openedBy = "-"
		}
		status := string(st.Status)
		if status == "" {
			status = string(gate.StatusClosed)
		}
		//nolint:errcheck // CLI tabwriter output to stdout
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, status, openedBy)
	}
	return w.Flush()
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
