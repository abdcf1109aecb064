package main

import (
	"fmt"
	"io"
	"time"

	"github.com/matheus3301/studybuddy/internal/activity"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show activity counters for a profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openProfile()
			if err != nil {
				return err
			}
			defer h.Close()

			stats, err := activity.Load(h.DB)
			if err != nil {
				return err
			}
			if jsonFlag {
				return outputJSON(cmd.OutOrStdout(), stats)
			}
			return printStats(cmd.OutOrStdout(), h.Name, stats)
		},
	})
}

func printStats(w io.Writer, name string, s activity.Stats) error {
	updated := "never"
	if !s.UpdatedAt.IsZero() {
		updated = s.UpdatedAt.Local().Format(time.DateTime)
	}
	_, err := fmt.Fprintf(w,
		"Profile:   %s\nStarted:   %d\nMatched:   %d\nSent:      %d\nReceived:  %d\nKept:      %d\nDiscarded: %d\nReported:  %d\nResumed:   %d\nUpdated:   %s\n",
		name, s.Started, s.Matched, s.Sent, s.Received, s.Kept, s.Discarded, s.Reported, s.Resumed, updated)
	return err
}
