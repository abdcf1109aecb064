package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/matheus3301/studybuddy/internal/lock"
	"github.com/matheus3301/studybuddy/internal/profile"
	"github.com/spf13/cobra"
)

type profileRow struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
	PID    int    `json:"pid,omitempty"`
}

func init() {
	profilesCmd := &cobra.Command{
		Use:   "profiles",
		Short: "List known profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := profile.List()
			if err != nil {
				return err
			}
			rows := make([]profileRow, 0, len(names))
			for _, n := range names {
				pid, held := lock.Holder(profile.Dir(n))
				rows = append(rows, profileRow{Name: n, Active: held, PID: pid})
			}
			if jsonFlag {
				return outputJSON(cmd.OutOrStdout(), rows)
			}
			return printProfiles(cmd.OutOrStdout(), rows)
		},
	}

	keysCmd := &cobra.Command{
		Use:   "keys [prefix]",
		Short: "List raw store keys of a profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openProfile()
			if err != nil {
				return err
			}
			defer h.Close()

			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}
			keys, err := h.DB.Keys(prefix)
			if err != nil {
				return err
			}
			if jsonFlag {
				return outputJSON(cmd.OutOrStdout(), keys)
			}
			if len(keys) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(keys, "\n"))
			}
			return nil
		},
	}

	rootCmd.AddCommand(profilesCmd, keysCmd)
}

func printProfiles(w io.Writer, rows []profileRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No profiles.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROFILE\tSTATUS")
	for _, r := range rows {
		status := "idle"
		if r.Active {
			status = fmt.Sprintf("open (PID %d)", r.PID)
		}
		fmt.Fprintf(tw, "%s\t%s\n", r.Name, status)
	}
	return tw.Flush()
}
