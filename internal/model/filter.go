package model

import (
	"slices"
	"time"

	"github.com/rotisserie/eris"
)

// SortKey selects the single active row ordering.
type SortKey string

const (
	SortDateDesc      SortKey = "date-desc"
	SortDateAsc       SortKey = "date-asc"
	SortIdentifierAsc SortKey = "tag-asc"
	SortSeverity      SortKey = "status-severity"
)

// SortKeys lists the accepted sort keys.
var SortKeys = []SortKey{SortDateDesc, SortDateAsc, SortIdentifierAsc, SortSeverity}

// ParseSortKey validates a sort key. Empty selects SortDateDesc.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortDateDesc, nil
	}
	k := SortKey(s)
	if !slices.Contains(SortKeys, k) {
		return "", eris.Errorf("unknown sort key %q", s)
	}
	return k, nil
}

// DateRange bounds rows by date, inclusive. A nil bound is open.
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// FilterState is the caller-owned selection driving the filter engine.
// An empty or missing category set means no restriction on that dimension.
type FilterState struct {
	Categories    map[string][]string `json:"categories,omitempty"`
	DateRange     DateRange           `json:"date_range"`
	SearchText    string              `json:"search_text"`
	SortBy        SortKey             `json:"sort_by"`
	GroupStatuses []BudgetStatus      `json:"group_statuses,omitempty"`
	Columns       []string            `json:"columns,omitempty"`
}

// DefaultFilterState selects everything, newest first.
func DefaultFilterState() FilterState {
	return FilterState{SortBy: SortDateDesc}
}

// Clone returns a deep copy so callers can hand out state without sharing
// the underlying maps and slices.
func (f FilterState) Clone() FilterState {
	out := f
	if f.Categories != nil {
		out.Categories = make(map[string][]string, len(f.Categories))
		for k, v := range f.Categories {
			out.Categories[k] = slices.Clone(v)
		}
	}
	if f.DateRange.From != nil {
		from := *f.DateRange.From
		out.DateRange.From = &from
	}
	if f.DateRange.To != nil {
		to := *f.DateRange.To
		out.DateRange.To = &to
	}
	out.GroupStatuses = slices.Clone(f.GroupStatuses)
	out.Columns = slices.Clone(f.Columns)
	return out
}

// SelectedColumns returns the chosen column subset, restricted to known
// columns and kept in the order of all. No selection means every column.
func (f FilterState) SelectedColumns(all []string) []string {
	if len(f.Columns) == 0 {
		return slices.Clone(all)
	}
	var out []string
	for _, c := range all {
		if slices.Contains(f.Columns, c) {
			out = append(out, c)
		}
	}
	return out
}
