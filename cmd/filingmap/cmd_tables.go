package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/filingmap/internal/core"
)

func (a *app) tablesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List the registered tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if asJSON {
				return printJSON(cmd.OutOrStdout(), map[string][]core.TableInfo{
					"forms": a.svc.Forms().Infos(),
					"xbrl":  a.svc.XBRL().Infos(),
				})
			}
			printTables(cmd.OutOrStdout(), a.svc.Forms())
			fmt.Fprintln(cmd.OutOrStdout())
			printTables(cmd.OutOrStdout(), a.svc.XBRL())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the tables as JSON")
	return cmd
}

// printTables writes the registry as an aligned list.
func printTables(w io.Writer, r *core.Registry) {
	fmt.Fprintf(w, "Available %s tables:\n", r.Name())
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, info := range r.Infos() {
		fmt.Fprintf(tw, "  %d\t%s\t(%s)\n", info.ID, info.Name, info.Strategy)
	}
	_ = tw.Flush()
}
