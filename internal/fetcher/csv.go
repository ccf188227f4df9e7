package fetcher

import (
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sheetmetrics/internal/model"
)

// ParseCSV decodes a CSV upload as a single-sheet workbook named after the
// file stem. Every cell is text; coercion happens during normalization.
func ParseCSV(r io.Reader, filename string) (*model.Workbook, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.LazyQuotes = true

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	sheet := &model.Sheet{Name: name}

	headerSeen := false
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}
		// Blank lines never reach us, so the line comes from the reader.
		line, _ := reader.FieldPos(0)

		cells := make([]model.Cell, len(record))
		for i, field := range record {
			if !headerSeen && i == 0 {
				field = strings.TrimPrefix(field, "\ufeff")
			}
			cells[i] = model.StringCell(field)
		}

		if !headerSeen {
			if model.BlankRow(cells) {
				continue
			}
			sheet.Header = headerStrings(cells)
			headerSeen = true
			continue
		}
		sheet.Rows = append(sheet.Rows, cells)
		sheet.RowNumbers = append(sheet.RowNumbers, line)
	}

	return &model.Workbook{Filename: filename, Sheets: []*model.Sheet{sheet}}, nil
}
