package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/filingmap/internal/config"
	"github.com/JonMunkholm/filingmap/internal/core"
	"github.com/JonMunkholm/filingmap/internal/core/tables"
	"github.com/JonMunkholm/filingmap/internal/logging"
	"github.com/JonMunkholm/filingmap/internal/pipeline"
)

// app is the state shared by every command, filled in before a command
// runs.
type app struct {
	envFile string
	cfg     *config.Config
	svc     *core.Service
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "filingmap [table-id [document]]",
		Short: "Map AOC-4 filings and XBRL instances onto statement tables",
		Long: `filingmap resolves the AOC-4 statement tables of company filings.

With no arguments every table is resolved for each document in the No_XBRL
directory and written to the form tables directory. With a table number the
table is printed for one document (the configured default document when none
is given).

Configuration comes from the environment and an optional .env file.`,
		Args:              cobra.MaximumNArgs(2),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runRoot,
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")

	root.AddCommand(
		a.tablesCmd(),
		a.factsCmd(),
		a.xbrlTablesCmd(),
		a.identifyCmd(),
		a.pipelineCmd(),
		a.serveCmd(),
	)
	return root
}

// setup loads configuration and builds the service.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	// Overload so the file wins over stale shell variables.
	if err := godotenv.Overload(a.envFile); err != nil {
		slog.Debug("no .env file loaded", "file", a.envFile)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	a.cfg = cfg
	a.svc = core.NewService(tables.Forms, tables.XBRL, cfg)
	if _, err := a.svc.LoadCustomTemplates(cfg.Templates.Dir); err != nil {
		return err
	}
	return nil
}

func (a *app) runRoot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return a.runBatch(cmd.Context(), cmd.OutOrStdout())
	}

	id, err := a.svc.Forms().ParseTableID(args[0])
	if err != nil {
		var unknown *core.UnknownTableError
		if errors.As(err, &unknown) {
			printTables(cmd.ErrOrStderr(), a.svc.Forms())
		}
		return err
	}

	doc := a.cfg.Paths.Resolve(a.cfg.Paths.DefaultDocument)
	if len(args) == 2 {
		doc = args[1]
	}

	res, err := a.svc.ResolveForm(cmd.Context(), id, doc)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}

// runBatch is the form-tables stage of the pipeline.
func (a *app) runBatch(ctx context.Context, out io.Writer) error {
	sum, err := pipeline.New(a.svc, a.cfg, nil).Run(ctx, pipeline.StageFormTables)
	if err != nil {
		return err
	}

	st := sum.Stages[0]
	if st.Skipped {
		return fmt.Errorf("no such file or directory: %s", a.cfg.Paths.Resolve(a.cfg.Paths.NoXBRLDir))
	}
	fmt.Fprintf(out, "%d document(s) processed, %d failed, output in %s\n",
		st.Processed, st.Failed, a.cfg.Paths.Resolve(a.cfg.Paths.FormTablesDir))
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
