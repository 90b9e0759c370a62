package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jask/paramdeck/internal/config"
	"github.com/jask/paramdeck/internal/layout"
)

func layoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Manage the panel layout file",
	}
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the generated layout of the model to ui.layout_file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.cfg.UI.LayoutFile
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s exists; use --force to overwrite", path)
			}
			sid, err := app.openSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := layout.Save(path, layout.Default(app.store, sid)); err != nil {
				return err
			}
			fmt.Printf("layout written to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing layout file")
	cmd.AddCommand(initCmd)
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write the configuration file",
	}
	save := &cobra.Command{
		Use:   "save",
		Short: "Write the effective configuration (without tickets) to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(app.cfg); err != nil {
				return err
			}
			fmt.Printf("config written to %s\n", config.Path())
			return nil
		},
	}
	cmd.AddCommand(save)
	return cmd
}
