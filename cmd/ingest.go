package main

import (
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/sheetmetrics/internal/dashboard"
	"github.com/sells-group/sheetmetrics/internal/fetcher"
	"github.com/sells-group/sheetmetrics/internal/ingest"
	"github.com/sells-group/sheetmetrics/internal/model"
	"github.com/sells-group/sheetmetrics/internal/store"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Ingest a workbook and record the upload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		domain, err := domainFlag(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		if err := checkFormat(format); err != nil {
			return err
		}

		in, err := newIngestor()
		if err != nil {
			return err
		}
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		return runIngest(ctx, os.Stdout, in, st, domain, args[0], format)
	},
}

func runIngest(ctx context.Context, out io.Writer, in *ingest.Ingestor, st store.Store, domain model.Domain, path, format string) error {
	wb, err := fetcher.ReadFile(path)
	if err != nil {
		return err
	}

	sess := dashboard.NewSession(domain, in, st, dashboard.DefaultSettings())
	res, err := sess.Load(ctx, wb)
	if err != nil {
		return err
	}

	if format == formatJSON {
		if err := writeJSON(out, res); err != nil {
			return err
		}
	} else {
		formatLoadResult(out, res)
	}

	if !res.Accepted {
		return eris.Errorf("upload %s rejected with %d errors", wb.Filename, len(res.Errors))
	}
	return nil
}

func init() {
	ingestCmd.Flags().String("domain", string(model.DomainBudget), "upload domain (budget or instrument)")
	ingestCmd.Flags().String("format", formatTable, "output format (table or json)")
	rootCmd.AddCommand(ingestCmd)
}
