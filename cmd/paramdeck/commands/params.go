package commands

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jask/paramdeck/internal/ordering"
	"github.com/jask/paramdeck/internal/sdk"
	"github.com/jask/paramdeck/internal/store"
)

var titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)

func paramsCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "params",
		Short: "List parameters and exports of the model",
		RunE: func(cmd *cobra.Command, args []string) error {
			sid, err := app.openSession(cmd.Context())
			if err != nil {
				return err
			}
			printParameters(os.Stdout, app.store, sid, all, interactive())
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include hidden parameters and exports")
	return cmd
}

// printParameters writes grouped, ordered parameters followed by exports.
// Plain output is tab separated: id, name, type, value.
func printParameters(w io.Writer, st *store.Store, sessionID string, includeHidden, pretty bool) {
	params, exports := ordering.SessionRefs(st, sessionID, includeHidden)
	entries := ordering.Parameters(st, params)
	if !pretty {
		for _, e := range entries {
			p := st.MustParameter(sessionID, e.Ref.Key)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Definition.ID, e.Definition.Name, e.Definition.Type, p.State().ExecValue)
		}
		for _, e := range ordering.Exports(st, exports) {
			fmt.Fprintf(w, "%s\t%s\texport:%s\t\n", e.Definition.ID, e.Definition.Name, e.Definition.Type)
		}
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, g := range ordering.Grouped(entries, func(d sdk.ParameterDefinition) string { return d.Group }) {
		name := g.Name
		if name == "" {
			name = "Parameters"
		}
		fmt.Fprintln(tw, titleStyle.Render(name))
		for _, e := range g.Entries {
			p := st.MustParameter(sessionID, e.Ref.Key)
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", e.Definition.Label(), p.Stringify(), e.Definition.Type)
		}
	}
	if ex := ordering.Exports(st, exports); len(ex) > 0 {
		fmt.Fprintln(tw, titleStyle.Render("Exports"))
		for _, e := range ex {
			fmt.Fprintf(tw, "  %s\t%s\n", e.Definition.Label(), e.Definition.Type)
		}
	}
	tw.Flush()
}
