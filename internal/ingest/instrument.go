package ingest

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/sheetmetrics/internal/coerce"
	"github.com/sells-group/sheetmetrics/internal/model"
	"github.com/sells-group/sheetmetrics/internal/schema"
)

// Instrument normalizes an instrument healthiness workbook with one sheet
// per plant area. Each row's area is the configured section name it was
// read from, whatever the sheet's own capitalization.
func (in *Ingestor) Instrument(wb *model.Workbook) model.IngestionResult[model.Instrument] {
	log := zap.L().With(zap.String("domain", string(model.DomainInstrument)), zap.String("file", wb.Filename))
	now := in.opts.Now()

	norm := func(row []model.Cell, rc rowContext) (model.Instrument, bool, []string) {
		return normalizeInstrument(row, rc, now)
	}
	sections := lookupSections(wb, in.opts.Instrument.Sections)
	res := run(wb, sections, in.instrument, in.opts.Instrument, norm, log)
	log.Info("ingest: instrument workbook",
		zap.Int("rows", len(res.Rows)),
		zap.Int("warnings", len(res.Warnings)),
		zap.Int("errors", len(res.Errors)),
	)
	return res
}

func normalizeInstrument(row []model.Cell, rc rowContext, now time.Time) (model.Instrument, bool, []string) {
	cell := func(f string) model.Cell { return rc.cols.Cell(row, f) }

	eqType := coerce.Text(cell(schema.FieldEquipmentType), "")
	tag := coerce.Text(cell(schema.FieldTagNumber), "")
	if eqType == "" && tag == "" {
		return model.Instrument{}, false, []string{
			fmt.Sprintf("Sheet %q row %d: missing equipment type and tag number", rc.sheet, rc.sheetRow()),
		}
	}

	r := model.Instrument{
		Area:                 rc.section,
		EquipmentType:        eqType,
		TagNumber:            tag,
		EquipmentDescription: coerce.Text(cell(schema.FieldEquipmentDescription), ""),
		Status:               coerce.Status(cell(schema.FieldStatus), coerce.HealthStatuses),
		AlarmDescription:     coerce.Text(cell(schema.FieldAlarmDescription), ""),
		Rectification:        coerce.Text(cell(schema.FieldRectification), ""),
	}

	var warnings []string
	dc := cell(schema.FieldNotificationDate)
	d, ok := coerce.ParseDate(dc, rc.date1904)
	if !ok {
		d = coerce.Date(model.Cell{}, rc.date1904, now)
		if !dc.IsBlank() {
			warnings = append(warnings, dateWarning(dc, schema.FieldNotificationDate, rc))
		}
	}
	r.NotificationDate, r.NotificationDateDisplay = d.Date, d.Display
	return r, true, warnings
}
