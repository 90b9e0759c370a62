package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save and restore named parameter sets",
	}

	var sets []string
	save := &cobra.Command{
		Use:   "save <name>",
		Short: "Save the current values, optionally after applying --set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sid, err := app.openSession(ctx)
			if err != nil {
				return err
			}
			if len(sets) > 0 {
				if err := applyAssignments(ctx, app.store, sid, sets); err != nil {
					return err
				}
			}
			snap, err := app.snapshots.Save(ctx, sid, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("saved snapshot %q (%d values)\n", snap.Name, len(snap.Values))
			return nil
		},
	}
	save.Flags().StringArrayVar(&sets, "set", nil, "apply key=value before saving")

	list := &cobra.Command{
		Use:   "list",
		Short: "List snapshots of the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sid, err := app.openSession(cmd.Context())
			if err != nil {
				return err
			}
			snaps, err := app.snapshots.List(cmd.Context(), sid)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, s := range snaps {
				fmt.Fprintf(tw, "%s\t%d values\t%s\n", s.Name, len(s.Values), s.CreatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}

	restore := &cobra.Command{
		Use:   "restore <name>",
		Short: "Apply a snapshot to the model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sid, err := app.openSession(ctx)
			if err != nil {
				return err
			}
			res, err := app.snapshots.Restore(ctx, sid, args[0])
			if err != nil {
				return err
			}
			for _, id := range res.Skipped {
				fmt.Fprintf(os.Stderr, "skipped %s\n", id)
			}
			printParameters(os.Stdout, app.store, sid, false, interactive())
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sid, err := app.openSession(cmd.Context())
			if err != nil {
				return err
			}
			return app.snapshots.Delete(cmd.Context(), sid, args[0])
		},
	}

	cmd.AddCommand(save, list, restore, del)
	return cmd
}
