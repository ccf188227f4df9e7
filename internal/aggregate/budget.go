// Package aggregate groups filtered rows, sums their measures and
// classifies groups and collections into the status taxonomies.
package aggregate

import (
	"slices"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sheetmetrics/internal/model"
)

// Thresholds are the ascending utilization cutoffs, in percent. A value at
// or below Healthy is healthy, at or below Caution is caution, and anything
// above is an overrun.
type Thresholds struct {
	Healthy float64 `yaml:"healthy" mapstructure:"healthy"`
	Caution float64 `yaml:"caution" mapstructure:"caution"`
}

// DefaultThresholds are the CAPEX dashboard cutoffs.
var DefaultThresholds = Thresholds{Healthy: 80, Caution: 95}

// Validate checks the cutoffs are positive and ascending.
func (t Thresholds) Validate() error {
	if t.Healthy <= 0 || t.Caution <= 0 {
		return eris.Errorf("aggregate: thresholds must be positive (healthy=%v caution=%v)", t.Healthy, t.Caution)
	}
	if t.Healthy >= t.Caution {
		return eris.Errorf("aggregate: healthy threshold %v must be below caution threshold %v", t.Healthy, t.Caution)
	}
	return nil
}

// Classify maps a utilization percentage onto the budget taxonomy.
func (t Thresholds) Classify(utilization float64) model.BudgetStatus {
	switch {
	case utilization <= t.Healthy:
		return model.BudgetHealthy
	case utilization <= t.Caution:
		return model.BudgetCaution
	default:
		return model.BudgetOverrun
	}
}

// Utilization returns spend as a percentage of budget. It is 0 when the
// budget is not positive and may exceed 100 for an overrun.
func Utilization(spend, budget float64) float64 {
	if budget <= 0 {
		return 0
	}
	return spend / budget * 100
}

// Group is one partition of rows sharing a key, in input order.
type Group[R any] struct {
	Key  string
	Rows []R
}

// GroupBy partitions rows by key. Groups are sorted by key; rows keep
// their relative input order.
func GroupBy[R any](rows []R, key func(R) string) []Group[R] {
	idx := make(map[string]int)
	var groups []Group[R]
	for _, r := range rows {
		k := key(r)
		i, ok := idx[k]
		if !ok {
			i = len(groups)
			idx[k] = i
			groups = append(groups, Group[R]{Key: k})
		}
		groups[i].Rows = append(groups[i].Rows, r)
	}
	slices.SortStableFunc(groups, func(a, b Group[R]) int {
		switch {
		case a.Key < b.Key:
			return -1
		case a.Key > b.Key:
			return 1
		default:
			return 0
		}
	})
	return groups
}

// ProjectGroups rolls projects up by an arbitrary key (discipline,
// project status, project manager).
func ProjectGroups(projects []model.Project, key func(model.Project) string, t Thresholds) []model.GroupMetric {
	groups := GroupBy(projects, key)
	out := make([]model.GroupMetric, 0, len(groups))
	for _, g := range groups {
		m := model.GroupMetric{GroupKey: g.Key, MemberCount: len(g.Rows)}
		for _, p := range g.Rows {
			m.ApprovedBudget += p.CurrentBudget
			m.ActualSpend += p.ActualSpend
			m.PlannedSpend += p.PlannedSpend
			m.Members = append(m.Members, p.ID)
			if p.ProjectStatus == model.ProjectActive {
				m.ActiveCount++
			}
		}
		m.Remaining = m.ApprovedBudget - m.ActualSpend
		m.Variance = m.PlannedSpend - m.ActualSpend
		m.UtilizationPct = Utilization(m.ActualSpend, m.ApprovedBudget)
		m.Status = t.Classify(m.UtilizationPct)
		out = append(out, m)
	}
	return out
}

// Disciplines rolls projects up by discipline.
func Disciplines(projects []model.Project, t Thresholds) []model.GroupMetric {
	return ProjectGroups(projects, func(p model.Project) string { return p.Discipline }, t)
}

// FilterGroups keeps groups whose status is selected. An empty selection
// keeps every group.
func FilterGroups(groups []model.GroupMetric, statuses []model.BudgetStatus) []model.GroupMetric {
	if len(statuses) == 0 {
		return slices.Clone(groups)
	}
	var out []model.GroupMetric
	for _, g := range groups {
		if slices.Contains(statuses, g.Status) {
			out = append(out, g)
		}
	}
	return out
}

// BudgetKPIs sums the given groups. Every figure, project counts
// included, comes from the groups rather than a rescan of rows so the
// headline always agrees with the group table under the same filters.
func BudgetKPIs(groups []model.GroupMetric) model.BudgetKPI {
	var k model.BudgetKPI
	for _, g := range groups {
		k.TotalApproved += g.ApprovedBudget
		k.ActualSpend += g.ActualSpend
		k.TotalProjects += g.MemberCount
		k.ActiveProjects += g.ActiveCount
		switch g.Status {
		case model.BudgetHealthy:
			k.HealthyCount++
		case model.BudgetCaution:
			k.CautionCount++
		case model.BudgetOverrun:
			k.OverrunCount++
		}
	}
	k.Remaining = k.TotalApproved - k.ActualSpend
	k.UtilizationPct = Utilization(k.ActualSpend, k.TotalApproved)
	if k.ActualSpend > k.TotalApproved {
		k.Overrun = k.ActualSpend - k.TotalApproved
	}
	return k
}

// BudgetView is the complete derived view of the budget dashboard.
type BudgetView struct {
	Groups []model.GroupMetric `json:"groups"`
	KPI    model.BudgetKPI     `json:"kpi"`
}

// Budget computes the discipline groups of already-filtered projects,
// drops groups outside the selected statuses, and rolls up the KPIs.
func Budget(projects []model.Project, statuses []model.BudgetStatus, t Thresholds) BudgetView {
	groups := FilterGroups(Disciplines(projects, t), statuses)
	return BudgetView{Groups: groups, KPI: BudgetKPIs(groups)}
}
