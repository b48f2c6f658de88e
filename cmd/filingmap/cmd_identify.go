package main

import (
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/filingmap/internal/forms"
)

func (a *app) identifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "identify <document>",
		Short: "Print the CIN and financial year of a form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := forms.Load(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), forms.Identify(store))
		},
	}
}
