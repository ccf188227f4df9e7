// Package filter applies a FilterState to a row collection: category sets,
// an inclusive date range, free-text search and a single stable sort.
package filter

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/sells-group/sheetmetrics/internal/model"
)

// Row is what the engine needs from a normalized row.
type Row interface {
	Category(dim string) string
	DateSpan() (start, end *time.Time)
	SearchFields() []string
	Identifier() string
	SeverityRank() int
}

// Apply returns the rows that pass every filter in fs, ordered by fs.SortBy.
// The input slice and fs are never modified.
func Apply[R Row](rows []R, fs model.FilterState) []R {
	out := ByCategories(rows, fs.Categories)
	out = ByDateRange(out, fs.DateRange)
	out = BySearch(out, fs.SearchText)
	Sort(out, fs.SortBy)
	return out
}

// ByCategories keeps rows whose value for every dimension with a non-empty
// selection is one of the selected values.
func ByCategories[R Row](rows []R, sets map[string][]string) []R {
	active := make(map[string]map[string]bool)
	for dim, values := range sets {
		if len(values) == 0 {
			continue
		}
		set := make(map[string]bool, len(values))
		for _, v := range values {
			set[v] = true
		}
		active[dim] = set
	}
	return keep(rows, func(r R) bool {
		for dim, set := range active {
			if !set[r.Category(dim)] {
				return false
			}
		}
		return true
	})
}

// EndOfDay returns the last instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// ByDateRange keeps rows whose span lies within [From, To], inclusive. To
// covers its whole calendar day. A row with no start date passes the From
// bound and one with no end date passes the To bound.
func ByDateRange[R Row](rows []R, dr model.DateRange) []R {
	if dr.From == nil && dr.To == nil {
		return slices.Clone(rows)
	}
	var to time.Time
	if dr.To != nil {
		to = EndOfDay(*dr.To)
	}
	return keep(rows, func(r R) bool {
		start, end := r.DateSpan()
		if dr.From != nil && start != nil && start.Before(*dr.From) {
			return false
		}
		if dr.To != nil && end != nil && end.After(to) {
			return false
		}
		return true
	})
}

// BySearch keeps rows where any search field contains text, ignoring case.
// Empty text matches every row.
func BySearch[R Row](rows []R, text string) []R {
	text = strings.TrimSpace(text)
	if text == "" {
		return slices.Clone(rows)
	}
	fold := cases.Fold()
	needle := fold.String(text)
	return keep(rows, func(r R) bool {
		for _, f := range r.SearchFields() {
			if strings.Contains(fold.String(f), needle) {
				return true
			}
		}
		return false
	})
}

// Sort orders rows in place by key. Equal keys keep their relative order;
// rows without a date sort last in either date direction.
func Sort[R Row](rows []R, key model.SortKey) {
	switch key {
	case model.SortDateAsc:
		slices.SortStableFunc(rows, func(a, b R) int { return compareDates(a, b, false) })
	case model.SortIdentifierAsc:
		col := collate.New(language.English)
		slices.SortStableFunc(rows, func(a, b R) int {
			return col.CompareString(a.Identifier(), b.Identifier())
		})
	case model.SortSeverity:
		slices.SortStableFunc(rows, func(a, b R) int { return a.SeverityRank() - b.SeverityRank() })
	default:
		slices.SortStableFunc(rows, func(a, b R) int { return compareDates(a, b, true) })
	}
}

func compareDates[R Row](a, b R, desc bool) int {
	da, _ := a.DateSpan()
	db, _ := b.DateSpan()
	switch {
	case da == nil && db == nil:
		return 0
	case da == nil:
		return 1
	case db == nil:
		return -1
	}
	c := da.Compare(*db)
	if desc {
		return -c
	}
	return c
}

func keep[R any](rows []R, pred func(R) bool) []R {
	out := make([]R, 0, len(rows))
	for _, r := range rows {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}
