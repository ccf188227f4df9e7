// Package ingest turns uploaded workbooks into normalized row collections.
// Data problems never surface as Go errors: they are reported as warning
// and error strings on the returned IngestionResult.
package ingest

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/sheetmetrics/internal/aggregate"
	"github.com/sells-group/sheetmetrics/internal/model"
	"github.com/sells-group/sheetmetrics/internal/schema"
)

// Ingestor normalizes workbooks for both domains.
type Ingestor struct {
	opts       Options
	budget     *schema.AliasTable
	instrument *schema.AliasTable
}

// New loads the alias tables (including any override files) and returns an
// Ingestor. Zero-valued options fall back to DefaultOptions.
func New(opts Options) (*Ingestor, error) {
	def := DefaultOptions()
	if opts.Budget.Policy == "" {
		opts.Budget.Policy = def.Budget.Policy
	}
	if opts.Instrument.Policy == "" {
		opts.Instrument.Policy = def.Instrument.Policy
	}
	if len(opts.Instrument.Sections) == 0 {
		opts.Instrument.Sections = def.Instrument.Sections
	}
	if opts.Thresholds == (aggregate.Thresholds{}) {
		opts.Thresholds = def.Thresholds
	}
	if opts.Now == nil {
		opts.Now = def.Now
	}

	budget, err := schema.LoadAliasesWithOverride(model.DomainBudget, opts.Budget.AliasFile)
	if err != nil {
		return nil, err
	}
	instrument, err := schema.LoadAliasesWithOverride(model.DomainInstrument, opts.Instrument.AliasFile)
	if err != nil {
		return nil, err
	}
	return &Ingestor{opts: opts, budget: budget, instrument: instrument}, nil
}

// rowContext carries what a normalizer needs beyond the row itself.
type rowContext struct {
	section  string
	sheet    string
	line     int // 1-based physical row in the source sheet
	seq      int // 0-based position among every row of the upload
	date1904 bool
	cols     *schema.Columns
	// multi is set when the upload reads more than one section.
	multi bool
}

// sheetRow is the row number as the user sees it in the source file.
func (rc rowContext) sheetRow() int {
	return rc.line
}

// normalizer maps one raw row to a typed row. A false return rejects the
// row; any messages are appended to the warnings either way.
type normalizer[T any] func(row []model.Cell, rc rowContext) (T, bool, []string)

type section struct {
	name  string
	sheet *model.Sheet
}

// run applies the section checks in order (absent, blank, missing
// columns, empty) and normalizes every remaining row.
func run[T any](wb *model.Workbook, sections []section, table *schema.AliasTable, opts DomainOptions, norm normalizer[T], log *zap.Logger) model.IngestionResult[T] {
	var res model.IngestionResult[T]
	date1904 := opts.Date1904 || wb.Date1904
	seq := 0

	for _, sec := range sections {
		if sec.sheet == nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Sheet %q not found", sec.name))
			continue
		}
		if len(sec.sheet.Header) == 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Sheet %q is empty", sec.sheet.Name))
			continue
		}
		cols := table.Resolve(sec.sheet.Header)
		if missing := cols.Missing(table.Required()); len(missing) > 0 {
			labels := make([]string, len(missing))
			for i, f := range missing {
				labels[i] = schema.Label(f)
			}
			res.Errors = append(res.Errors, fmt.Sprintf("Sheet %q is missing required columns: %s", sec.sheet.Name, strings.Join(labels, ", ")))
			log.Debug("ingest: section skipped", zap.String("sheet", sec.sheet.Name), zap.Strings("missing", missing))
			continue
		}
		if len(cols.Unmapped()) > 0 {
			log.Debug("ingest: unmapped headers", zap.String("sheet", sec.sheet.Name), zap.Strings("headers", cols.Unmapped()))
		}

		before, rejected, data := len(res.Rows), 0, 0
		for i, raw := range sec.sheet.Rows {
			if model.BlankRow(raw) {
				continue
			}
			data++
			rc := rowContext{
				section:  sec.name,
				sheet:    sec.sheet.Name,
				line:     sec.sheet.RowNumber(i),
				seq:      seq,
				date1904: date1904,
				cols:     cols,
				multi:    len(sections) > 1,
			}
			seq++
			row, ok, msgs := norm(raw, rc)
			res.Warnings = append(res.Warnings, msgs...)
			if !ok {
				rejected++
				continue
			}
			res.Rows = append(res.Rows, row)
		}
		res.TotalRows += data
		res.RejectedRows += rejected
		if data == 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Sheet %q is empty", sec.sheet.Name))
		}
		log.Debug("ingest: section read",
			zap.String("sheet", sec.sheet.Name),
			zap.Int("rows", len(res.Rows)-before),
			zap.Int("rejected", rejected),
		)
	}

	if len(res.Errors) > 0 && opts.Policy == PolicyAbort {
		res.Rows = nil
	}
	return res
}
