package model

import (
	"strconv"
	"strings"
	"time"
)

// CellKind identifies the shape of a raw spreadsheet value.
type CellKind int

const (
	CellBlank CellKind = iota
	CellString
	CellNumber
	CellDate
)

// Cell is one untyped value from an uploaded sheet. Exactly one of Text,
// Number or Time is meaningful, selected by Kind.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Time   time.Time
}

// StringCell returns a string cell, or a blank cell when s is only whitespace.
func StringCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{}
	}
	return Cell{Kind: CellString, Text: s}
}

// NumberCell returns a numeric cell.
func NumberCell(f float64) Cell {
	return Cell{Kind: CellNumber, Number: f}
}

// DateCell returns a native date cell.
func DateCell(t time.Time) Cell {
	return Cell{Kind: CellDate, Time: t}
}

// IsBlank reports whether the cell carries no value.
func (c Cell) IsBlank() bool {
	return c.Kind == CellBlank
}

// String renders the cell as trimmed text. Numbers use the shortest exact
// representation and dates render as YYYY-MM-DD.
func (c Cell) String() string {
	switch c.Kind {
	case CellString:
		return strings.TrimSpace(c.Text)
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellDate:
		return c.Time.Format(DateLayout)
	default:
		return ""
	}
}

// DateLayout is the display format for every normalized date.
const DateLayout = "2006-01-02"

// Sheet is one section of an uploaded workbook: a header row followed by
// data rows. Rows may be ragged; use CellAt for bounds-safe access.
// A sheet with no non-blank row has a nil Header.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]Cell
	// RowNumbers holds the 1-based physical line of each entry in Rows.
	RowNumbers []int
}

// RowNumber returns the physical line of Rows[i]. Without recorded
// numbers the header is assumed to be line 1 with no gaps after it.
func (s *Sheet) RowNumber(i int) int {
	if i >= 0 && i < len(s.RowNumbers) {
		return s.RowNumbers[i]
	}
	return i + 2
}

// CellAt returns row[idx], or a blank cell when idx is absent or out of range.
func CellAt(row []Cell, idx int) Cell {
	if idx < 0 || idx >= len(row) {
		return Cell{}
	}
	return row[idx]
}

// BlankRow reports whether every cell in the row is blank.
func BlankRow(row []Cell) bool {
	for _, c := range row {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}

// Workbook is a parsed upload. Sheet order follows the source file.
type Workbook struct {
	Filename string
	Sheets   []*Sheet
	Date1904 bool
}

// Sheet looks up a sheet by name. An exact match wins; otherwise the first
// case-insensitive match (ignoring surrounding whitespace) is returned.
func (w *Workbook) Sheet(name string) (*Sheet, bool) {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	want := strings.TrimSpace(name)
	for _, s := range w.Sheets {
		if strings.EqualFold(strings.TrimSpace(s.Name), want) {
			return s, true
		}
	}
	return nil, false
}

// First returns the first sheet, or false for a workbook with no sheets.
func (w *Workbook) First() (*Sheet, bool) {
	if len(w.Sheets) == 0 {
		return nil, false
	}
	return w.Sheets[0], true
}
