package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jask/paramdeck/internal/store"
)

func exportCmd() *cobra.Command {
	var overrides []string
	cmd := &cobra.Command{
		Use:   "export <export>",
		Short: "Request an export and save its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sid, err := app.openSession(ctx)
			if err != nil {
				return err
			}
			values, err := parseAssignments(overrides)
			if err != nil {
				return err
			}
			res, err := app.exports.Request(ctx, sid, store.ParseKey(args[0]), values)
			if err != nil {
				return err
			}
			switch {
			case res.SavedPath != "":
				fmt.Printf("saved %s\n", res.SavedPath)
			case res.Msg != "":
				fmt.Println(res.Msg)
			default:
				fmt.Println("export requested")
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&overrides, "set", nil, "parameter override key=value for this export only")
	return cmd
}
