package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/filingmap/internal/pipeline"
	"github.com/JonMunkholm/filingmap/internal/store"
)

func (a *app) pipelineCmd() *cobra.Command {
	var stages string

	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Run the staged batch conversion",
		Long: `Run the batch conversion of downloaded filings:

  sort          Input_data/*.zip      -> XBRL/, No_XBRL/
  attachments   XBRL/*.pdf            -> XBRL_XML/
  form-tables   No_XBRL/*             -> No_XBRL_JSON/
  facts         XBRL_XML/*.xml        -> XBRL_XML_JSON/
  fact-tables   XBRL_XML_JSON/*.json  -> XBRL_XML_JSON_TABLE/
  xbrl-tables   XBRL_XML_JSON/*.json  -> XBRL_JSON_TABLES/

Directory names come from the FILINGMAP_* settings. When DATABASE_URL is
set, the run and every artifact are also stored in PostgreSQL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			selected, err := pipeline.ParseStages(stages)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			st, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			var rec pipeline.Recorder
			if st != nil {
				rec = st
			}

			sum, err := pipeline.New(a.svc, a.cfg, rec).Run(ctx, selected...)
			if sum != nil {
				if perr := printJSON(cmd.OutOrStdout(), sum); perr != nil {
					return perr
				}
			}
			return err
		},
	}
	cmd.Flags().StringVar(&stages, "stages", "all", "comma-separated stages to run")
	return cmd
}

// openStore connects to the results database when one is configured. The
// returned store is nil otherwise; the close function is always safe to
// call.
func (a *app) openStore(ctx context.Context) (*store.Store, func(), error) {
	if !a.cfg.Database.Enabled() {
		slog.Info("no database configured, results are written to disk only")
		return nil, func() {}, nil
	}

	pool, err := store.Connect(ctx, a.cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	st := store.New(pool)
	if err := st.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("prepare schema: %w", err)
	}
	return st, pool.Close, nil
}
