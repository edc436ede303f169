package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edurag/tutorcli/internal/render"
)

func newHistoryCmd() *cobra.Command {
	var (
		dateFilter string
		local      bool
		exportPath string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past question/answer exchanges",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			out := cmd.OutOrStdout()

			if exportPath != "" {
				if err := exportTranscript(a, exportPath); err != nil {
					return err
				}
				fmt.Fprintf(out, "Chat exported to %s\n", exportPath)
				return nil
			}

			if local {
				messages, err := a.history.Recent(0)
				if err != nil {
					return err
				}
				if len(messages) == 0 {
					fmt.Fprintln(out, "No chat history found.")
					return nil
				}
				for _, msg := range messages {
					fmt.Fprintf(out, "[%s] %s\n", msg.CreatedAt.Local().Format("Jan 2 15:04"), msg.Role)
					fmt.Fprint(out, render.Answer(msg))
					fmt.Fprintln(out)
				}
				return nil
			}

			entries, err := a.client.History(cmd.Context(), dateFilter)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No chat history found.")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(out, "[%s] Q: %s\n", e.CreatedAt.Local().Format("Jan 2 15:04"), e.QueryText)
				fmt.Fprint(out, render.Text(render.FormatAnswer(e.ResponseText)))
				if e.Rating > 0 {
					fmt.Fprintf(out, "Rating: %d/5\n", e.Rating)
				}
				if e.ResponseTimeMs > 0 {
					fmt.Fprintf(out, "(%dms)\n", e.ResponseTimeMs)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dateFilter, "date-filter", "all", "Filter: all, today, week or month")
	cmd.Flags().BoolVar(&local, "local", false, "Show the locally persisted transcript instead of server history")
	cmd.Flags().StringVar(&exportPath, "export", "", "Export the local transcript as JSON to the given file")
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show session statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			stats, err := a.client.SessionStats(cmd.Context())
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), *stats)
			return nil
		},
	}
}
