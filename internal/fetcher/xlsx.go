package fetcher

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/sheetmetrics/internal/model"
)

// ParseXLSX decodes an XLSX buffer. Each sheet's first non-blank row is its
// header; following rows are data. Numeric cells stay numeric so serial
// dates can be decoded with the workbook's epoch.
func ParseXLSX(data []byte, filename string) (*model.Workbook, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open")
	}
	return fromFile(f, filename), nil
}

// ReadXLSX opens an XLSX file from disk.
func ReadXLSX(path string) (*model.Workbook, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	return fromFile(f, filepath.Base(path)), nil
}

func fromFile(f *xlsx.File, filename string) *model.Workbook {
	wb := &model.Workbook{Filename: filename, Date1904: f.Date1904}
	for _, sh := range f.Sheets {
		wb.Sheets = append(wb.Sheets, toSheet(sh))
	}
	return wb
}

func toSheet(sh *xlsx.Sheet) *model.Sheet {
	s := &model.Sheet{Name: sh.Name}
	headerSeen := false
	for i, row := range sh.Rows {
		if row == nil {
			if headerSeen {
				s.Rows = append(s.Rows, nil)
				s.RowNumbers = append(s.RowNumbers, i+1)
			}
			continue
		}
		cells := rowToCells(row)
		if !headerSeen {
			if model.BlankRow(cells) {
				continue
			}
			s.Header = headerStrings(cells)
			headerSeen = true
			continue
		}
		s.Rows = append(s.Rows, cells)
		s.RowNumbers = append(s.RowNumbers, i+1)
	}
	return s
}

func rowToCells(row *xlsx.Row) []model.Cell {
	cells := make([]model.Cell, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = toCell(cell)
	}
	return cells
}

func toCell(c *xlsx.Cell) model.Cell {
	if c == nil {
		return model.Cell{}
	}
	switch c.Type() {
	case xlsx.CellTypeNumeric:
		if strings.TrimSpace(c.Value) == "" {
			return model.Cell{}
		}
		if f, err := c.Float(); err == nil {
			return model.NumberCell(f)
		}
	case xlsx.CellTypeBool:
		if c.Bool() {
			return model.StringCell("TRUE")
		}
		return model.StringCell("FALSE")
	}
	return model.StringCell(c.Value)
}

func headerStrings(cells []model.Cell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.String()
	}
	return out
}
