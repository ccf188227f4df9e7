package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/sheetmetrics/internal/fetcher"
	"github.com/sells-group/sheetmetrics/internal/ingest"
	"github.com/sells-group/sheetmetrics/internal/model"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check workbooks for structural problems without recording them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		domain, err := domainFlag(cmd)
		if err != nil {
			return err
		}
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		in, err := newIngestor()
		if err != nil {
			return err
		}

		reports, err := validateFiles(cmd.Context(), in, domain, args, concurrency)
		if err != nil {
			return err
		}
		formatValidation(os.Stdout, reports)

		for _, r := range reports {
			if r.Err != "" || len(r.Errors) > 0 {
				return eris.New("one or more workbooks failed validation")
			}
		}
		return nil
	},
}

// fileReport is the validation outcome of one workbook.
type fileReport struct {
	Path     string
	Rows     int
	Rejected int
	Warnings []string
	Errors   []string
	Err      string
}

// validateFiles ingests every path concurrently. Unreadable files are
// reported per file and do not stop the others.
func validateFiles(ctx context.Context, in *ingest.Ingestor, domain model.Domain, paths []string, concurrency int) ([]fileReport, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	reports := make([]fileReport, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = validateFile(in, domain, path)
			zap.L().Debug("validated workbook",
				zap.String("path", path),
				zap.Int("rows", reports[i].Rows),
				zap.Int("errors", len(reports[i].Errors)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "validate")
	}
	return reports, nil
}

func validateFile(in *ingest.Ingestor, domain model.Domain, path string) fileReport {
	r := fileReport{Path: path}
	wb, err := fetcher.ReadFile(path)
	if err != nil {
		r.Err = err.Error()
		return r
	}
	switch domain {
	case model.DomainInstrument:
		res := in.Instrument(wb)
		r.Rows, r.Rejected, r.Warnings, r.Errors = len(res.Rows), res.Rejected(), res.Warnings, res.Errors
	default:
		res := in.Budget(wb)
		r.Rows, r.Rejected, r.Warnings, r.Errors = len(res.Rows), res.Rejected(), res.Warnings, res.Errors
	}
	return r
}

func formatValidation(out io.Writer, reports []fileReport) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FILE\tRESULT\tROWS\tREJECTED\tWARNINGS\tERRORS")
	for _, r := range reports {
		result := "ok"
		switch {
		case r.Err != "":
			result = "unreadable"
		case len(r.Errors) > 0:
			result = "failed"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\n", r.Path, result, r.Rows, r.Rejected, len(r.Warnings), len(r.Errors))
	}
	_ = w.Flush()

	for _, r := range reports {
		if r.Err == "" && len(r.Errors) == 0 {
			continue
		}
		_, _ = fmt.Fprintf(out, "\n%s:\n", r.Path)
		if r.Err != "" {
			_, _ = fmt.Fprintf(out, "  - %s\n", r.Err)
		}
		for _, e := range r.Errors {
			_, _ = fmt.Fprintf(out, "  - %s\n", e)
		}
	}
}

func init() {
	validateCmd.Flags().String("domain", string(model.DomainBudget), "upload domain (budget or instrument)")
	validateCmd.Flags().Int("concurrency", 4, "workbooks checked in parallel")
	rootCmd.AddCommand(validateCmd)
}
