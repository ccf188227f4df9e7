package ingest

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/sheetmetrics/internal/aggregate"
	"github.com/sells-group/sheetmetrics/internal/coerce"
	"github.com/sells-group/sheetmetrics/internal/model"
	"github.com/sells-group/sheetmetrics/internal/schema"
)

// Budget normalizes a CAPEX workbook. Without configured sections the first
// sheet is read.
func (in *Ingestor) Budget(wb *model.Workbook) model.IngestionResult[model.Project] {
	log := zap.L().With(zap.String("domain", string(model.DomainBudget)), zap.String("file", wb.Filename))

	var sections []section
	if len(in.opts.Budget.Sections) == 0 {
		first, ok := wb.First()
		if !ok {
			return model.IngestionResult[model.Project]{Errors: []string{"Workbook has no sheets"}}
		}
		sections = []section{{name: first.Name, sheet: first}}
	} else {
		sections = lookupSections(wb, in.opts.Budget.Sections)
	}

	norm := func(row []model.Cell, rc rowContext) (model.Project, bool, []string) {
		return normalizeProject(row, rc, in.opts.Thresholds)
	}
	res := run(wb, sections, in.budget, in.opts.Budget, norm, log)
	log.Info("ingest: budget workbook",
		zap.Int("rows", len(res.Rows)),
		zap.Int("warnings", len(res.Warnings)),
		zap.Int("errors", len(res.Errors)),
	)
	return res
}

func normalizeProject(row []model.Cell, rc rowContext, t aggregate.Thresholds) (model.Project, bool, []string) {
	cell := func(f string) model.Cell { return rc.cols.Cell(row, f) }

	name := coerce.Text(cell(schema.FieldName), "")
	if name == "" {
		msg := fmt.Sprintf("Row %d: Missing required field 'name'", rc.sheetRow())
		if rc.multi {
			msg = fmt.Sprintf("Sheet %q row %d: Missing required field 'name'", rc.sheet, rc.sheetRow())
		}
		return model.Project{}, false, []string{msg}
	}

	p := model.Project{
		ID:                coerce.Text(cell(schema.FieldID), fmt.Sprintf("PROJ-%d", rc.seq+1)),
		Name:              name,
		WBSNumber:         coerce.Text(cell(schema.FieldWBSNumber), ""),
		ProjectManager:    coerce.Text(cell(schema.FieldProjectManager), "Unassigned"),
		Discipline:        coerce.Text(cell(schema.FieldDiscipline), "General"),
		OriginalBudget:    coerce.Currency(cell(schema.FieldOriginalBudget)),
		ContractValue:     coerce.Currency(cell(schema.FieldContractValue)),
		BudgetTransferIn:  coerce.Currency(cell(schema.FieldBudgetTransferIn)),
		BudgetTransferOut: coerce.Currency(cell(schema.FieldBudgetTransferOut)),
		CurrentBudget:     coerce.Currency(cell(schema.FieldCurrentBudget)),
		ActualSpend:       coerce.Currency(cell(schema.FieldActualSpend)),
		PlannedSpend:      coerce.Currency(cell(schema.FieldPlannedSpend)),
		Vendor:            coerce.Text(cell(schema.FieldVendor), ""),
		PaymentTerms:      coerce.Text(cell(schema.FieldPaymentTerms), ""),
		ProjectStatus:     coerce.Status(cell(schema.FieldProjectStatus), coerce.ProjectStatuses),
		Priority:          coerce.Status(cell(schema.FieldPriority), coerce.Priorities),
		Remarks:           coerce.Text(cell(schema.FieldRemarks), ""),
		Section:           rc.sheet,
	}
	if p.CurrentBudget == 0 {
		p.CurrentBudget = p.OriginalBudget
	}

	var warnings []string
	if d, w := optionalDate(cell(schema.FieldStartDate), schema.FieldStartDate, rc); d != nil {
		p.StartDate, p.StartDateDisplay = &d.Date, d.Display
	} else if w != "" {
		warnings = append(warnings, w)
	}
	if d, w := optionalDate(cell(schema.FieldEndDate), schema.FieldEndDate, rc); d != nil {
		p.EndDate, p.EndDateDisplay = &d.Date, d.Display
	} else if w != "" {
		warnings = append(warnings, w)
	}

	p.UtilizationPct = aggregate.Utilization(p.ActualSpend, p.CurrentBudget)
	p.Health = t.Classify(p.UtilizationPct)
	return p, true, warnings
}

// optionalDate parses a date cell; a present but unparseable value yields
// nil plus a warning.
func optionalDate(c model.Cell, field string, rc rowContext) (*coerce.DateValue, string) {
	if c.IsBlank() {
		return nil, ""
	}
	if v, ok := coerce.ParseDate(c, rc.date1904); ok {
		return &v, ""
	}
	return nil, dateWarning(c, field, rc)
}

func dateWarning(c model.Cell, field string, rc rowContext) string {
	return fmt.Sprintf("Sheet %q row %d: unparseable %s %q", rc.sheet, rc.sheetRow(), schema.Label(field), c.String())
}

func lookupSections(wb *model.Workbook, names []string) []section {
	out := make([]section, 0, len(names))
	for _, n := range names {
		s, _ := wb.Sheet(n)
		out = append(out, section{name: n, sheet: s})
	}
	return out
}
