package commands

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear stored history",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent exports of the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sid, err := app.openSession(cmd.Context())
			if err != nil {
				return err
			}
			recs, err := app.exports.History(cmd.Context(), sid, limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, r := range recs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.CreatedAt.Format("2006-01-02 15:04"), r.ExportName, r.Format, r.SavedPath)
			}
			return tw.Flush()
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "maximum entries, 0 for all")

	var yes bool
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Delete all snapshots and export history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to reset without --yes")
			}
			if err := app.maintenance.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("history cleared")
			return nil
		},
	}
	reset.Flags().BoolVar(&yes, "yes", false, "confirm the reset")

	cmd.AddCommand(list, reset)
	return cmd
}
