package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/sheetmetrics/internal/coerce"
	"github.com/sells-group/sheetmetrics/internal/dashboard"
	"github.com/sells-group/sheetmetrics/internal/fetcher"
	"github.com/sells-group/sheetmetrics/internal/filter"
	"github.com/sells-group/sheetmetrics/internal/ingest"
	"github.com/sells-group/sheetmetrics/internal/model"
	"github.com/sells-group/sheetmetrics/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report <file>",
	Short: "Print filtered rows, group metrics and KPIs for a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		domain, err := domainFlag(cmd)
		if err != nil {
			return err
		}
		opts, err := reportOptionsFromFlags(cmd)
		if err != nil {
			return err
		}

		in, err := newIngestor()
		if err != nil {
			return err
		}
		var st store.Store
		if opts.load || opts.save {
			st, err = initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
		}

		return runReport(ctx, os.Stdout, in, st, settings(), domain, args[0], opts)
	},
}

type reportOptions struct {
	filters    map[string][]string
	from, to   string
	search     string
	sort       string
	statuses   []string
	columns    []string
	groupBy    string
	format     string
	rows       bool
	load, save bool
}

func reportOptionsFromFlags(cmd *cobra.Command) (reportOptions, error) {
	var o reportOptions
	f := cmd.Flags()
	raw, _ := f.GetStringArray("filter")
	filters, err := parseFilterFlags(raw)
	if err != nil {
		return o, err
	}
	o.filters = filters
	o.from, _ = f.GetString("from")
	o.to, _ = f.GetString("to")
	o.search, _ = f.GetString("search")
	o.sort, _ = f.GetString("sort")
	o.statuses, _ = f.GetStringSlice("status")
	o.columns, _ = f.GetStringSlice("columns")
	o.groupBy, _ = f.GetString("group-by")
	o.format, _ = f.GetString("format")
	o.rows, _ = f.GetBool("rows")
	o.load, _ = f.GetBool("load-filters")
	o.save, _ = f.GetBool("save-filters")
	return o, checkFormat(o.format)
}

// parseFilterFlags turns repeated dim=a,b flags into category sets. A
// repeated dimension accumulates values.
func parseFilterFlags(raw []string) (map[string][]string, error) {
	out := map[string][]string{}
	for _, r := range raw {
		dim, values, ok := strings.Cut(r, "=")
		dim = strings.TrimSpace(dim)
		if !ok || dim == "" {
			return nil, eris.Errorf("invalid --filter %q (want dim=value[,value])", r)
		}
		for _, v := range strings.Split(values, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out[dim] = append(out[dim], v)
			}
		}
	}
	return out, nil
}

func parseBoundary(s string, endOfDay bool) (*model.DateRange, error) {
	v, ok := coerce.ParseDate(model.StringCell(s), false)
	if !ok {
		return nil, eris.Errorf("invalid date %q", s)
	}
	t := v.Date
	if endOfDay {
		t = filter.EndOfDay(t)
		return &model.DateRange{To: &t}, nil
	}
	return &model.DateRange{From: &t}, nil
}

// applyOptions layers the command-line selection over a base FilterState.
// Only flags that were given replace the base.
func applyOptions(base model.FilterState, o reportOptions) (model.FilterState, error) {
	fs := base.Clone()
	if len(o.filters) > 0 {
		if fs.Categories == nil {
			fs.Categories = map[string][]string{}
		}
		for dim, values := range o.filters {
			fs.Categories[dim] = values
		}
	}
	if o.from != "" {
		dr, err := parseBoundary(o.from, false)
		if err != nil {
			return fs, eris.Wrap(err, "--from")
		}
		fs.DateRange.From = dr.From
	}
	if o.to != "" {
		dr, err := parseBoundary(o.to, true)
		if err != nil {
			return fs, eris.Wrap(err, "--to")
		}
		fs.DateRange.To = dr.To
	}
	if o.search != "" {
		fs.SearchText = o.search
	}
	if o.sort != "" {
		key, err := model.ParseSortKey(o.sort)
		if err != nil {
			return fs, err
		}
		fs.SortBy = key
	}
	if len(o.statuses) > 0 {
		fs.GroupStatuses = nil
		for _, s := range o.statuses {
			fs.GroupStatuses = append(fs.GroupStatuses, model.BudgetStatus(strings.TrimSpace(s)))
		}
	}
	if len(o.columns) > 0 {
		fs.Columns = o.columns
	}
	return fs, nil
}

func runReport(ctx context.Context, out io.Writer, in *ingest.Ingestor, st store.Store, set dashboard.Settings, domain model.Domain, path string, o reportOptions) error {
	wb, err := fetcher.ReadFile(path)
	if err != nil {
		return err
	}

	// Reports never enter the upload history.
	sess := dashboard.NewSession(domain, in, nil, set)
	base := model.DefaultFilterState()
	if o.load && st != nil {
		saved, err := st.LoadFilterState(ctx, domain)
		if err != nil {
			return err
		}
		if saved != nil {
			base = *saved
		}
	}
	fs, err := applyOptions(base, o)
	if err != nil {
		return err
	}
	if err := sess.SetFilters(fs); err != nil {
		return err
	}
	if o.save && st != nil {
		if err := st.SaveFilterState(ctx, domain, sess.Filters()); err != nil {
			return err
		}
	}

	res, err := sess.Load(ctx, wb)
	if err != nil {
		return err
	}
	if !res.Accepted {
		formatDiagnostics(out, res.Warnings, res.Errors)
		return eris.Errorf("upload %s rejected with %d errors", wb.Filename, len(res.Errors))
	}

	v := sess.View(o.groupBy)
	if o.format == formatJSON {
		if !o.rows {
			v.Projects, v.Instruments = nil, nil
		}
		return writeJSON(out, v)
	}
	formatView(out, v, o)
	return nil
}

func formatView(out io.Writer, v dashboard.View, o reportOptions) {
	switch v.Domain {
	case model.DomainBudget:
		_, _ = fmt.Fprintf(out, "%d projects match\n\n", len(v.Projects))
		formatBudgetKPI(out, v.Budget.KPI)
		formatGroups(out, "By discipline", v.Budget.Groups)
		if v.Groups != nil {
			formatGroups(out, "By "+o.groupBy, v.Groups)
		}
		if o.rows {
			_, _ = fmt.Fprintln(out)
			formatRows(out, v.Columns, v.Projects, projectValue)
		}
	case model.DomainInstrument:
		_, _ = fmt.Fprintf(out, "%d instruments match\n\n", len(v.Instruments))
		formatInstrumentView(out, v.Instrument)
		if o.rows {
			_, _ = fmt.Fprintln(out)
			formatRows(out, v.Columns, v.Instruments, instrumentValue)
		}
	}
	formatDiagnostics(out, v.Warnings, v.Errors)
}

func init() {
	f := reportCmd.Flags()
	f.String("domain", string(model.DomainBudget), "upload domain (budget or instrument)")
	f.StringArray("filter", nil, "category filter dim=a,b (repeatable)")
	f.String("from", "", "earliest date, inclusive")
	f.String("to", "", "latest date, inclusive")
	f.String("search", "", "case-insensitive free-text search")
	f.String("sort", "", "row order: date-desc, date-asc, tag-asc or status-severity")
	f.StringSlice("status", nil, "keep only budget groups in these statuses (Healthy,Caution,Overrun)")
	f.StringSlice("columns", nil, "columns to print with --rows")
	f.String("group-by", "", "extra budget rollup dimension (project_status, priority, project_manager, health)")
	f.Bool("rows", false, "print the filtered rows")
	f.Bool("load-filters", false, "start from the saved filter state")
	f.Bool("save-filters", false, "save the resulting filter state")
	f.String("format", formatTable, "output format (table or json)")
	rootCmd.AddCommand(reportCmd)
}
