package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func ticketCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Manage stored backend tickets",
	}
	set := &cobra.Command{
		Use:   "set <model> <ticket>",
		Short: "Store the ticket for a model",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.tickets.Put(args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("ticket stored for %s\n", args[0])
			return nil
		},
	}
	del := &cobra.Command{
		Use:   "delete <model>",
		Short: "Forget the ticket of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.tickets.Delete(args[0])
		},
	}
	cmd.AddCommand(set, del)
	return cmd
}
