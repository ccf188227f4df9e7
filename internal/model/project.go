package model

import "time"

// Budget-domain category dimensions for FilterState.Categories.
const (
	DimDiscipline     = "discipline"
	DimProjectStatus  = "project_status"
	DimPriority       = "priority"
	DimProjectManager = "project_manager"
	DimHealth         = "health"
)

// Project is one normalized CAPEX budget row.
type Project struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	WBSNumber         string        `json:"wbs_number,omitempty"`
	ProjectManager    string        `json:"project_manager"`
	Discipline        string        `json:"discipline"`
	OriginalBudget    float64       `json:"original_budget"`
	ContractValue     float64       `json:"contract_value"`
	BudgetTransferIn  float64       `json:"budget_transfer_in"`
	BudgetTransferOut float64       `json:"budget_transfer_out"`
	CurrentBudget     float64       `json:"current_budget"`
	ActualSpend       float64       `json:"actual_spend"`
	PlannedSpend      float64       `json:"planned_spend"`
	StartDate         *time.Time    `json:"start_date"`
	StartDateDisplay  string        `json:"start_date_display,omitempty"`
	EndDate           *time.Time    `json:"end_date"`
	EndDateDisplay    string        `json:"end_date_display,omitempty"`
	Vendor            string        `json:"vendor,omitempty"`
	PaymentTerms      string        `json:"payment_terms,omitempty"`
	ProjectStatus     ProjectStatus `json:"project_status"`
	Priority          Priority      `json:"priority"`
	Remarks           string        `json:"remarks,omitempty"`
	Section           string        `json:"section"`

	// Derived at ingestion from CurrentBudget and ActualSpend.
	UtilizationPct float64      `json:"utilization_pct"`
	Health         BudgetStatus `json:"health"`
}

// Category returns the project's value for a filter dimension.
func (p Project) Category(dim string) string {
	switch dim {
	case DimDiscipline:
		return p.Discipline
	case DimProjectStatus:
		return string(p.ProjectStatus)
	case DimPriority:
		return string(p.Priority)
	case DimProjectManager:
		return p.ProjectManager
	case DimHealth:
		return string(p.Health)
	default:
		return ""
	}
}

// DateSpan returns the project's start and end dates; either may be nil.
func (p Project) DateSpan() (start, end *time.Time) {
	return p.StartDate, p.EndDate
}

// SearchFields returns the text matched by free-text search.
func (p Project) SearchFields() []string {
	return []string{p.ID, p.Name, p.WBSNumber, p.Remarks}
}

// Identifier is the project name.
func (p Project) Identifier() string {
	return p.Name
}

// SeverityRank orders projects by budget health, overrun first.
func (p Project) SeverityRank() int {
	return p.Health.Severity()
}

// ProjectColumns lists the exportable project columns in display order.
var ProjectColumns = []string{
	"id", "name", "wbs_number", "project_manager", "discipline",
	"current_budget", "actual_spend", "planned_spend", "utilization_pct",
	"health", "start_date", "end_date", "project_status", "priority", "remarks",
}
