package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/store"
)

var eventsDB string

var eventsCmd = &cobra.Command{
	Use:   "events <session-id>",
	Short: "List the finger events of a recorded session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEvents(args[0])
	},
}

func init() {
	eventsCmd.Flags().StringVar(&eventsDB, "db", defaultDBPath(), "SQLite file written by --record")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(sessionID string) error {
	st, err := openStore(eventsDB)
	if err != nil {
		return err
	}
	defer st.Close()

	if _, err := st.Sessions().GetByID(sessionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("session %q not found", sessionID)
		}
		return err
	}

	events, err := st.Events().ListBySession(sessionID)
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "FRAME\tHAND\tFINGERS\tRAISED\tFPS\tTIME")
	fmt.Fprintln(w, "-----\t----\t-------\t------\t---\t----")

	for _, e := range events {
		fingers := e.Fingers
		if fingers == "" {
			fingers = "-"
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%d\t%s\n", e.Frame, e.HandIndex, fingers, e.Raised, e.FPS,
			e.RecordedAt.Local().Format("15:04:05.000"))
	}
	return w.Flush()
}
