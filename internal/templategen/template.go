// Package templategen writes blank upload workbooks: one sheet per section
// carrying the canonical headers and a few sample rows.
package templategen

import (
	_ "embed"
	"io"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/sheetmetrics/internal/model"
	"github.com/sells-group/sheetmetrics/internal/schema"
)

//go:embed samples.yaml
var samplesYAML []byte

// Section is one template sheet.
type Section struct {
	Area    string     `yaml:"area"`
	Headers []string   `yaml:"headers"`
	Rows    [][]string `yaml:"rows"`
}

type samples struct {
	Instrument []Section `yaml:"instrument"`
	Budget     []Section `yaml:"budget"`
}

// DefaultFilename is the conventional name of each domain's template.
func DefaultFilename(d model.Domain) string {
	if d == model.DomainInstrument {
		return "Instrument_Asset_Healthiness_Template.xlsx"
	}
	return "CAPEX_Budget_Template.xlsx"
}

// Sections returns the template sheets of a domain. Sections without
// explicit headers use the domain's required columns.
func Sections(d model.Domain) ([]Section, error) {
	var s samples
	if err := yaml.Unmarshal(samplesYAML, &s); err != nil {
		return nil, eris.Wrap(err, "templategen: parse samples")
	}
	secs := s.Budget
	if d == model.DomainInstrument {
		secs = s.Instrument
	}
	for i := range secs {
		fields := secs[i].Headers
		if len(fields) == 0 {
			fields = schema.ForDomain(d).RequiredFields
		}
		headers := make([]string, len(fields))
		for j, f := range fields {
			headers[j] = schema.Label(f)
		}
		secs[i].Headers = headers
	}
	return secs, nil
}

// Build assembles the template workbook of a domain.
func Build(d model.Domain) (*xlsx.File, error) {
	secs, err := Sections(d)
	if err != nil {
		return nil, err
	}
	f := xlsx.NewFile()
	for _, sec := range secs {
		sheet, err := f.AddSheet(sec.Area)
		if err != nil {
			return nil, eris.Wrapf(err, "templategen: add sheet %s", sec.Area)
		}
		addRow(sheet, sec.Headers)
		for _, r := range sec.Rows {
			addRow(sheet, r)
		}
		for col, w := range columnWidths(sec) {
			sheet.SetColWidth(col, col, w)
		}
	}
	return f, nil
}

// Write streams the template workbook of a domain to w.
func Write(w io.Writer, d model.Domain) error {
	f, err := Build(d)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "templategen: write workbook")
}

// Save writes the template workbook of a domain to path.
func Save(path string, d model.Domain) error {
	f, err := Build(d)
	if err != nil {
		return err
	}
	return eris.Wrapf(f.Save(path), "templategen: save %s", path)
}

func addRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

// columnWidths sizes each column to its longest value, within [10, 40].
func columnWidths(sec Section) []float64 {
	widths := make([]float64, len(sec.Headers))
	measure := func(values []string) {
		for i, v := range values {
			if i >= len(widths) {
				return
			}
			if n := float64(utf8.RuneCountInString(v) + 2); n > widths[i] {
				widths[i] = n
			}
		}
	}
	measure(sec.Headers)
	for _, r := range sec.Rows {
		measure(r)
	}
	for i, w := range widths {
		widths[i] = min(max(w, 10), 40)
	}
	return widths
}
