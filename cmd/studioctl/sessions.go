package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"studio/internal/studio"
)

var exportOut string

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List, inspect, export and delete sessions.",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, most recent first.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStudio(cmd.Context(), func(st *studio.Studio) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tTURNS\tLAST ACTIVITY")
			for _, s := range st.Store().Sessions() {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.ID, s.Title, s.TurnCount, s.LastActivity.Format(time.RFC3339))
			}
			return tw.Flush()
		})
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the turns of a session.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStudio(cmd.Context(), func(st *studio.Studio) error {
			sess, err := st.Store().Session(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s\n", sess.ID, sess.Title)
			for _, t := range sess.Turns {
				fmt.Fprintf(out, "[%s] %s (%d attachments)\n", t.Role, t.Text, len(t.Attachments))
			}
			return nil
		})
	},
}

var sessionsExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Write the session's images to a zip file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStudio(cmd.Context(), func(st *studio.Studio) error {
			data, err := st.Export(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			path := exportOut
			if path == "" {
				path = "session-" + args[0] + ".zip"
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", path)
			return nil
		})
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a session and its exports.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStudio(cmd.Context(), func(st *studio.Studio) error {
			return st.DeleteSession(cmd.Context(), args[0])
		})
	},
}

func init() {
	sessionsExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output path")
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsExportCmd, sessionsDeleteCmd)
}
