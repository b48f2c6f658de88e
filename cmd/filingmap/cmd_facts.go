package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/filingmap/internal/export"
	"github.com/JonMunkholm/filingmap/internal/xbrl"
)

func (a *app) factsCmd() *cobra.Command {
	var (
		asCSV    bool
		filtered bool
	)

	cmd := &cobra.Command{
		Use:   "facts <instance.xml>",
		Short: "Print the linked facts of an XBRL instance",
		Long: `Print every fact of an XBRL instance with its resolved context.

With --csv the facts are printed as the flattened fact table; --filtered
keeps only the key financial elements.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			facts, err := a.svc.ExtractFacts(f)
			if err != nil {
				return err
			}

			if !asCSV {
				return printJSON(cmd.OutOrStdout(), facts)
			}
			var keep func(xbrl.Fact) bool
			if filtered {
				keep = export.IsKeyElement
			}
			return export.WriteCSV(cmd.OutOrStdout(), facts, keep)
		},
	}
	cmd.Flags().BoolVar(&asCSV, "csv", false, "print the fact table as CSV")
	cmd.Flags().BoolVar(&filtered, "filtered", false, "with --csv, keep only key elements")
	return cmd
}

func (a *app) xbrlTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "xbrl-tables <instance.xml>",
		Short: "Print every XBRL table of an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return printJSON(cmd.OutOrStdout(), a.svc.BatchXBRLDocument(cmd.Context(), f))
		},
	}
}
