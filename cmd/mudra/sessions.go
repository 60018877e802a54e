package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var sessionsDB string

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recorded capture sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSessions()
	},
}

func init() {
	sessionsCmd.Flags().StringVar(&sessionsDB, "db", defaultDBPath(), "SQLite file written by --record")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions() error {
	st, err := openStore(sessionsDB)
	if err != nil {
		return err
	}
	defer st.Close()

	sessions, err := st.Sessions().List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tCAMERA\tMAX HANDS\tEVENTS\tSTARTED\tDURATION")
	fmt.Fprintln(w, "--\t------\t---------\t------\t-------\t--------")

	for _, s := range sessions {
		duration := "running"
		if s.EndedAt != nil {
			duration = s.EndedAt.Sub(s.StartedAt).Round(time.Second).String()
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%s\n", s.ID, s.CameraID, s.MaxHands, s.Events,
			s.StartedAt.Local().Format("2006-01-02 15:04"), duration)
	}
	return w.Flush()
}
