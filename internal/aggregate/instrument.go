package aggregate

import (
	"math"
	"regexp"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sheetmetrics/internal/model"
)

// OthersKey labels the bucket that collects equipment types beyond the top N.
const OthersKey = "Others"

// Scoring holds the per-status points and the gauge label cutoffs.
type Scoring struct {
	HealthyPoints float64 `yaml:"healthy_points" mapstructure:"healthy_points"`
	CautionPoints float64 `yaml:"caution_points" mapstructure:"caution_points"`
	WarningPoints float64 `yaml:"warning_points" mapstructure:"warning_points"`

	Excellent int `yaml:"excellent" mapstructure:"excellent"`
	Good      int `yaml:"good" mapstructure:"good"`
	Fair      int `yaml:"fair" mapstructure:"fair"`
}

// DefaultScoring is the instrument health gauge.
var DefaultScoring = Scoring{
	HealthyPoints: 100,
	CautionPoints: 60,
	WarningPoints: 20,
	Excellent:     80,
	Good:          60,
	Fair:          40,
}

// Validate checks points fall in [0,100] and gauge cutoffs descend.
func (s Scoring) Validate() error {
	for name, p := range map[string]float64{
		"healthy_points": s.HealthyPoints,
		"caution_points": s.CautionPoints,
		"warning_points": s.WarningPoints,
	} {
		if p < 0 || p > 100 {
			return eris.Errorf("aggregate: %s must be in [0,100], got %v", name, p)
		}
	}
	if s.Excellent <= s.Good || s.Good <= s.Fair || s.Fair < 0 {
		return eris.Errorf("aggregate: gauge cutoffs must descend (excellent=%d good=%d fair=%d)", s.Excellent, s.Good, s.Fair)
	}
	return nil
}

func (s Scoring) points(st model.HealthStatus) (float64, bool) {
	switch st {
	case model.HealthHealthy:
		return s.HealthyPoints, true
	case model.HealthCaution:
		return s.CautionPoints, true
	case model.HealthWarning:
		return s.WarningPoints, true
	default:
		return 0, false
	}
}

// OverallScore averages the per-row points, rounded to an integer. Unknown
// rows count toward neither the sum nor the row count, so an empty or
// all-unknown collection scores 0.
func (s Scoring) OverallScore(rows []model.Instrument) int {
	var sum float64
	var n int
	for _, r := range rows {
		p, ok := s.points(r.Status)
		if !ok {
			continue
		}
		sum += p
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(sum / float64(n)))
}

// Label names the gauge band a score falls into.
func (s Scoring) Label(score int) string {
	switch {
	case score >= s.Excellent:
		return "Excellent"
	case score >= s.Good:
		return "Good"
	case score >= s.Fair:
		return "Fair"
	default:
		return "Poor"
	}
}

// StatusCounts tallies rows per health status.
func StatusCounts(rows []model.Instrument) model.StatusCounts {
	var c model.StatusCounts
	for _, r := range rows {
		switch r.Status {
		case model.HealthHealthy:
			c.Healthy++
		case model.HealthCaution:
			c.Caution++
		case model.HealthWarning:
			c.Warning++
		default:
			c.Unknown++
		}
	}
	return c
}

// InstrumentKPIs computes the headline score and counts.
func InstrumentKPIs(rows []model.Instrument, s Scoring) model.InstrumentKPI {
	score := s.OverallScore(rows)
	return model.InstrumentKPI{
		Score:      score,
		ScoreLabel: s.Label(score),
		Counts:     StatusCounts(rows),
		Total:      len(rows),
	}
}

func shares(c model.StatusCounts) []model.StatusShare {
	total := c.Total()
	out := make([]model.StatusShare, 0, len(model.HealthStatuses))
	for _, st := range model.HealthStatuses {
		n := c.Get(st)
		var pct float64
		if total > 0 {
			pct = float64(n) / float64(total) * 100
		}
		out = append(out, model.StatusShare{Status: st, Count: n, Percentage: pct})
	}
	return out
}

// EquipmentTypeStats breaks each equipment type down by status. Types are
// ordered by row count, largest first, ties by name.
func EquipmentTypeStats(rows []model.Instrument) []model.EquipmentTypeStats {
	groups := GroupBy(rows, func(r model.Instrument) string { return r.EquipmentType })
	out := make([]model.EquipmentTypeStats, 0, len(groups))
	for _, g := range groups {
		c := StatusCounts(g.Rows)
		out = append(out, model.EquipmentTypeStats{
			EquipmentType: g.Key,
			Shares:        shares(c),
			Total:         c.Total(),
		})
	}
	slices.SortStableFunc(out, func(a, b model.EquipmentTypeStats) int {
		return b.Total - a.Total
	})
	return out
}

// TopEquipmentTypes keeps the n largest equipment types and folds the rest
// into a single Others entry. n <= 0 keeps every type.
func TopEquipmentTypes(rows []model.Instrument, n int) []model.EquipmentTypeStats {
	stats := EquipmentTypeStats(rows)
	if n <= 0 || len(stats) <= n {
		return stats
	}
	top := stats[:n:n]
	keep := make(map[string]bool, n)
	for _, s := range top {
		keep[s.EquipmentType] = true
	}
	var rest []model.Instrument
	for _, r := range rows {
		if !keep[r.EquipmentType] {
			rest = append(rest, r)
		}
	}
	c := StatusCounts(rest)
	return append(top, model.EquipmentTypeStats{
		EquipmentType: OthersKey,
		Shares:        shares(c),
		Total:         c.Total(),
	})
}

// Alerts groups Caution and Warning rows by equipment type, sorted by type.
func Alerts(rows []model.Instrument) []model.AlertGroup {
	var flagged []model.Instrument
	for _, r := range rows {
		if r.Status == model.HealthCaution || r.Status == model.HealthWarning {
			flagged = append(flagged, r)
		}
	}
	groups := GroupBy(flagged, func(r model.Instrument) string { return r.EquipmentType })
	out := make([]model.AlertGroup, 0, len(groups))
	for _, g := range groups {
		a := model.AlertGroup{EquipmentType: g.Key, Rows: g.Rows}
		for _, r := range g.Rows {
			if r.Status == model.HealthWarning {
				a.WarningCount++
			} else {
				a.CautionCount++
			}
		}
		out = append(out, a)
	}
	return out
}

var obsolescenceRe = regexp.MustCompile(`(?i)\bALS\b`)

// Obsolescence returns rows whose alarm text flags an obsolete part.
func Obsolescence(rows []model.Instrument) []model.Instrument {
	var out []model.Instrument
	for _, r := range rows {
		if obsolescenceRe.MatchString(r.AlarmDescription) {
			out = append(out, r)
		}
	}
	return out
}

// UniqueEquipmentTypes returns the distinct non-empty equipment types, sorted.
func UniqueEquipmentTypes(rows []model.Instrument) []string {
	var out []string
	for _, r := range rows {
		if r.EquipmentType != "" {
			out = append(out, r.EquipmentType)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// InstrumentView is the complete derived view of the instrument dashboard.
type InstrumentView struct {
	KPI          model.InstrumentKPI        `json:"kpi"`
	TopTypes     []model.EquipmentTypeStats `json:"top_types"`
	Alerts       []model.AlertGroup         `json:"alerts"`
	Obsolescence []model.Instrument         `json:"obsolescence"`
	Types        []string                   `json:"types"`
}

// Instrument computes every derived instrument view from filtered rows.
func Instrument(rows []model.Instrument, s Scoring, topN int) InstrumentView {
	return InstrumentView{
		KPI:          InstrumentKPIs(rows, s),
		TopTypes:     TopEquipmentTypes(rows, topN),
		Alerts:       Alerts(rows),
		Obsolescence: Obsolescence(rows),
		Types:        UniqueEquipmentTypes(rows),
	}
}
