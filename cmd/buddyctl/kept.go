package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/matheus3301/studybuddy/internal/lock"
	"github.com/matheus3301/studybuddy/internal/match"
	"github.com/matheus3301/studybuddy/internal/profile"
	"github.com/matheus3301/studybuddy/internal/route"
	"github.com/spf13/cobra"
)

func init() {
	keptCmd := &cobra.Command{
		Use:   "kept",
		Short: "Manage kept conversations",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List kept conversations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openProfile()
			if err != nil {
				return err
			}
			defer h.Close()

			kept, err := match.NewArchive(h.DB, nil, h.Logger).List()
			if err != nil {
				return err
			}
			if jsonFlag {
				return outputJSON(cmd.OutOrStdout(), kept)
			}
			return printKeptList(cmd.OutOrStdout(), kept)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a kept conversation and its transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := openProfile()
			if err != nil {
				return err
			}
			defer h.Close()

			archive := match.NewArchive(h.DB, nil, h.Logger)
			rec, err := archive.Get(args[0])
			if err != nil {
				return err
			}
			transcript, err := archive.Transcript(rec.ID)
			if err != nil {
				return err
			}
			if jsonFlag {
				return outputJSON(cmd.OutOrStdout(), struct {
					match.KeptSession
					Transcript []match.Message `json:"transcript"`
				}{rec, transcript})
			}
			return printKept(cmd.OutOrStdout(), rec, transcript)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a kept conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _, err := resolveProfile()
			if err != nil {
				return err
			}
			if pid, held := lock.Holder(profile.Dir(name)); held {
				return fmt.Errorf("profile %q is open in studybuddy (PID %d); close it first", name, pid)
			}
			h, err := openProfile()
			if err != nil {
				return err
			}
			defer h.Close()

			archive := match.NewArchive(h.DB, nil, h.Logger)
			if _, err := archive.Get(args[0]); err != nil {
				return err
			}
			if err := archive.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}

	linkCmd := &cobra.Command{
		Use:   "link <id>",
		Short: "Print the link that resumes a kept conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			withQR, _ := cmd.Flags().GetBool("qr")
			h, err := openProfile()
			if err != nil {
				return err
			}
			defer h.Close()

			rec, err := match.NewArchive(h.DB, nil, h.Logger).Get(args[0])
			if err != nil {
				return err
			}
			return printLink(cmd.OutOrStdout(), route.Match(rec.ID), withQR)
		},
	}
	linkCmd.Flags().Bool("qr", false, "also render the link as a QR code")

	keptCmd.AddCommand(listCmd, showCmd, deleteCmd, linkCmd)
	rootCmd.AddCommand(keptCmd)
}

func printKeptList(w io.Writer, kept []match.KeptSession) error {
	if len(kept) == 0 {
		_, err := fmt.Fprintln(w, "No kept conversations.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBUDDY\tTOPICS\tMESSAGES\tKEPT\tPREVIEW")
	for _, k := range kept {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			k.ID, k.Counterpart, joinTopics(k.Topics), k.MessageCount,
			k.KeptAt.Local().Format(time.DateTime), truncate(k.LastMessagePreview, 40))
	}
	return tw.Flush()
}

func printKept(w io.Writer, k match.KeptSession, transcript []match.Message) error {
	fmt.Fprintf(w, "ID:       %s\n", k.ID)
	fmt.Fprintf(w, "Buddy:    %s\n", k.Counterpart)
	fmt.Fprintf(w, "Topics:   %s\n", joinTopics(k.Topics))
	fmt.Fprintf(w, "Kept:     %s\n", k.KeptAt.Local().Format(time.DateTime))
	fmt.Fprintf(w, "Messages: %d\n", k.MessageCount)
	if len(transcript) == 0 {
		_, err := fmt.Fprintf(w, "\n%s\n", k.LastMessagePreview)
		return err
	}
	fmt.Fprintln(w)
	for _, m := range transcript {
		who := "you"
		if m.Sender == match.Counterpart {
			who = k.Counterpart.Name
		}
		fmt.Fprintf(w, "[%s] %s: %s\n", m.Timestamp.Local().Format(time.TimeOnly), who, m.Text)
	}
	return nil
}

func printLink(w io.Writer, r route.Route, withQR bool) error {
	if _, err := fmt.Fprintln(w, r.Format()); err != nil {
		return err
	}
	if !withQR {
		return nil
	}
	qr, err := route.QR(r.Format(), "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, qr)
	return err
}

func joinTopics(topics []string) string {
	if len(topics) == 0 {
		return "-"
	}
	out := topics[0]
	for _, t := range topics[1:] {
		out += ", " + t
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
