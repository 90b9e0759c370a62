package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jask/paramdeck/internal/store"
)

func setCmd() *cobra.Command {
	var snapshot string
	cmd := &cobra.Command{
		Use:   "set key=value...",
		Short: "Set parameters and customize the model once",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sid, err := app.openSession(ctx)
			if err != nil {
				return err
			}
			if err := applyAssignments(ctx, app.store, sid, args); err != nil {
				return err
			}
			if snapshot != "" {
				if _, err := app.snapshots.Save(ctx, sid, snapshot); err != nil {
					return err
				}
			}
			printParameters(os.Stdout, app.store, sid, false, interactive())
			return nil
		},
	}
	cmd.Flags().StringVar(&snapshot, "save", "", "save the result as a named snapshot")
	return cmd
}

// parseAssignments splits key=value pairs. Keys accept the id:, name: and
// display: prefixes.
func parseAssignments(args []string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		out[strings.TrimSpace(k)] = v
	}
	return out, nil
}

// applyAssignments sets every value and commits them with one customization.
func applyAssignments(ctx context.Context, st *store.Store, sessionID string, args []string) error {
	values, err := parseAssignments(args)
	if err != nil {
		return err
	}
	for k, v := range values {
		key := store.ParseKey(k)
		p, ok := st.Parameter(sessionID, key)
		if !ok {
			if s, ok := st.Suggest(sessionID, key.Value); ok {
				return fmt.Errorf("unknown parameter %q (did you mean %q?)", k, s)
			}
			return fmt.Errorf("unknown parameter %q", k)
		}
		if _, err := p.IsValid(v, true); err != nil {
			return err
		}
		p.SetUIValue(v)
	}
	return st.Accept(ctx, sessionID)
}
