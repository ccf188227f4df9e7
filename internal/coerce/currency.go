// Package coerce converts raw spreadsheet cells into canonical scalars.
// Coercers never fail: malformed input yields a documented default.
package coerce

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/sheetmetrics/internal/model"
)

// currencyPrefixes are stripped (case-insensitively) from the front of a
// monetary string. Longer codes come first so "RM" does not shadow "MYR".
var currencyPrefixes = []string{"MYR", "USD", "SGD", "RM", "$", "€", "£", "¥"}

var leadingNumberRe = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`)

// Currency parses a monetary cell. Thousands separators, whitespace and a
// currency prefix are removed and the leading number is parsed. Blank,
// unparseable, negative and non-finite values all yield 0.
func Currency(c model.Cell) float64 {
	switch c.Kind {
	case model.CellNumber:
		return nonNegative(c.Number)
	case model.CellString:
		return nonNegative(parseAmount(c.Text))
	default:
		return 0
	}
}

func parseAmount(s string) float64 {
	s = strings.Map(func(r rune) rune {
		if r == ',' || r == ' ' || r == '\t' || r == '\u00a0' {
			return -1
		}
		return r
	}, s)
	upper := strings.ToUpper(s)
	for _, p := range currencyPrefixes {
		if strings.HasPrefix(upper, p) {
			s = s[len(p):]
			break
		}
	}
	m := leadingNumberRe.FindString(s)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return f
}

func nonNegative(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// Text returns the trimmed text of a cell, or def when the cell is blank.
func Text(c model.Cell, def string) string {
	if s := c.String(); s != "" {
		return s
	}
	return def
}
