package coerce

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/sheetmetrics/internal/model"
)

// maxSerial is the spreadsheet serial day for 9999-12-31.
const maxSerial = 2958465

// dayFirstLayouts are tried after dateparse, which reads slashed dates
// month-first and rejects day-first input such as 25/01/2024.
var dayFirstLayouts = []string{"02/01/2006", "2/1/2006", "02-01-2006", "2-1-2006", "02.01.2006"}

// DateValue is a calendar date (midnight UTC) plus its display string.
type DateValue struct {
	Date    time.Time
	Display string
}

func newDateValue(t time.Time) DateValue {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return DateValue{Date: day, Display: day.Format(model.DateLayout)}
}

// ParseDate decodes a spreadsheet serial number (1900 or 1904 epoch), a
// numeric string holding a serial, a free-text date, or a native date.
// Numeric strings outside the serial range (e.g. compact 20240115) are
// read as text. It reports false for blank or unparseable cells.
func ParseDate(c model.Cell, date1904 bool) (DateValue, bool) {
	switch c.Kind {
	case model.CellNumber:
		return fromSerial(c.Number, date1904)
	case model.CellDate:
		if c.Time.IsZero() {
			return DateValue{}, false
		}
		return newDateValue(c.Time), true
	case model.CellString:
		s := strings.TrimSpace(c.Text)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			if v, ok := fromSerial(f, date1904); ok {
				return v, true
			}
		}
		if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
			return newDateValue(t), true
		}
		for _, layout := range dayFirstLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return newDateValue(t), true
			}
		}
	}
	return DateValue{}, false
}

func fromSerial(f float64, date1904 bool) (DateValue, bool) {
	if math.IsNaN(f) || f < 1 || f > maxSerial {
		return DateValue{}, false
	}
	return newDateValue(xlsx.TimeFromExcelTime(f, date1904)), true
}

// Date coerces a cell to a date, substituting now's calendar day when the
// cell is blank or unparseable.
func Date(c model.Cell, date1904 bool, now time.Time) DateValue {
	if v, ok := ParseDate(c, date1904); ok {
		return v
	}
	return newDateValue(now)
}

// OptionalDate coerces a cell to a date, returning nil when the cell is
// blank or unparseable.
func OptionalDate(c model.Cell, date1904 bool) *DateValue {
	if v, ok := ParseDate(c, date1904); ok {
		return &v
	}
	return nil
}
