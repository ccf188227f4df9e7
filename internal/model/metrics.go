package model

import "time"

// GroupMetric is the budget rollup for one categorical key. It is derived
// from the current rows and FilterState and never persisted.
type GroupMetric struct {
	GroupKey       string       `json:"group_key"`
	ApprovedBudget float64      `json:"approved_budget"`
	ActualSpend    float64      `json:"actual_spend"`
	PlannedSpend   float64      `json:"planned_spend"`
	Remaining      float64      `json:"remaining"`
	UtilizationPct float64      `json:"utilization_pct"`
	Variance       float64      `json:"variance"`
	Status         BudgetStatus `json:"status"`
	MemberCount    int          `json:"member_count"`
	ActiveCount    int          `json:"active_count"`
	Members        []string     `json:"members"`
}

// BudgetKPI is the headline rollup of the surviving discipline groups.
type BudgetKPI struct {
	TotalApproved  float64 `json:"total_approved"`
	ActualSpend    float64 `json:"actual_spend"`
	Remaining      float64 `json:"remaining"`
	UtilizationPct float64 `json:"utilization_pct"`
	Overrun        float64 `json:"overrun"`
	HealthyCount   int     `json:"healthy_count"`
	CautionCount   int     `json:"caution_count"`
	OverrunCount   int     `json:"overrun_count"`
	TotalProjects  int     `json:"total_projects"`
	ActiveProjects int     `json:"active_projects"`
}

// StatusCounts tallies instrument rows per health status.
type StatusCounts struct {
	Healthy int `json:"healthy"`
	Caution int `json:"caution"`
	Warning int `json:"warning"`
	Unknown int `json:"unknown"`
}

// Get returns the tally for one status.
func (c StatusCounts) Get(s HealthStatus) int {
	switch s {
	case HealthHealthy:
		return c.Healthy
	case HealthCaution:
		return c.Caution
	case HealthWarning:
		return c.Warning
	default:
		return c.Unknown
	}
}

// Total returns the number of rows tallied.
func (c StatusCounts) Total() int {
	return c.Healthy + c.Caution + c.Warning + c.Unknown
}

// StatusShare is one slice of an equipment-type breakdown.
type StatusShare struct {
	Status     HealthStatus `json:"status"`
	Count      int          `json:"count"`
	Percentage float64      `json:"percentage"`
}

// EquipmentTypeStats is the status breakdown for one equipment type.
type EquipmentTypeStats struct {
	EquipmentType string        `json:"equipment_type"`
	Shares        []StatusShare `json:"shares"`
	Total         int           `json:"total"`
}

// AlertGroup holds the Caution and Warning rows for one equipment type.
type AlertGroup struct {
	EquipmentType string       `json:"equipment_type"`
	CautionCount  int          `json:"caution_count"`
	WarningCount  int          `json:"warning_count"`
	Rows          []Instrument `json:"rows"`
}

// InstrumentKPI is the headline rollup of the filtered instrument rows.
type InstrumentKPI struct {
	Score      int          `json:"score"`
	ScoreLabel string       `json:"score_label"`
	Counts     StatusCounts `json:"counts"`
	Total      int          `json:"total"`
}

// UploadMetadata describes one accepted upload.
type UploadMetadata struct {
	ID        string    `json:"id"`
	Domain    Domain    `json:"domain"`
	Filename  string    `json:"filename"`
	Timestamp time.Time `json:"timestamp"`
	Rows      int       `json:"rows"`
	Warnings  int       `json:"warnings"`
	Errors    int       `json:"errors"`
}
