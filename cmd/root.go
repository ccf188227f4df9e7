package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sheetmetrics/internal/config"
	"github.com/sells-group/sheetmetrics/internal/dashboard"
	"github.com/sells-group/sheetmetrics/internal/ingest"
	"github.com/sells-group/sheetmetrics/internal/model"
	"github.com/sells-group/sheetmetrics/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "sheetmetrics",
	Short: "Spreadsheet-to-dashboard ingestion for CAPEX budgets and instrument health",
	Long:  "Ingests budget and instrument alarm workbooks, normalizes their rows, and reports filtered KPIs over the CLI or a local JSON API.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initStore opens and migrates the local state database.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

func newIngestor() (*ingest.Ingestor, error) {
	in, err := ingest.New(cfg.IngestOptions())
	if err != nil {
		return nil, eris.Wrap(err, "init ingestor")
	}
	return in, nil
}

func settings() dashboard.Settings {
	return dashboard.Settings{
		Thresholds: cfg.Thresholds,
		Scoring:    cfg.Scoring,
		TopN:       cfg.Report.TopEquipmentTypes,
	}
}

// domainFlag reads and validates the --domain flag.
func domainFlag(cmd *cobra.Command) (model.Domain, error) {
	s, _ := cmd.Flags().GetString("domain")
	return model.ParseDomain(s)
}
