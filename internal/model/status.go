package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Domain names an upload schema.
type Domain string

const (
	DomainBudget     Domain = "budget"
	DomainInstrument Domain = "instrument"
)

// Domains lists every supported domain.
var Domains = []Domain{DomainBudget, DomainInstrument}

// ParseDomain validates a domain name (case-insensitive).
func ParseDomain(s string) (Domain, error) {
	d := Domain(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Domains {
		if d == known {
			return d, nil
		}
	}
	return "", eris.Errorf("unknown domain %q (want budget or instrument)", s)
}

// HealthStatus is the instrument health taxonomy.
type HealthStatus string

const (
	HealthHealthy HealthStatus = "Healthy"
	HealthCaution HealthStatus = "Caution"
	HealthWarning HealthStatus = "Warning"
	HealthUnknown HealthStatus = "Unknown"
)

// HealthStatuses lists the instrument statuses in display order.
var HealthStatuses = []HealthStatus{HealthHealthy, HealthCaution, HealthWarning, HealthUnknown}

// Severity ranks the status for sorting: lower is more urgent.
func (s HealthStatus) Severity() int {
	switch s {
	case HealthWarning:
		return 0
	case HealthCaution:
		return 1
	case HealthHealthy:
		return 2
	default:
		return 3
	}
}

// BudgetStatus classifies spend against budget.
type BudgetStatus string

const (
	BudgetHealthy BudgetStatus = "Healthy"
	BudgetCaution BudgetStatus = "Caution"
	BudgetOverrun BudgetStatus = "Overrun"
)

// BudgetStatuses lists the budget statuses from least to most severe.
var BudgetStatuses = []BudgetStatus{BudgetHealthy, BudgetCaution, BudgetOverrun}

// Severity ranks the status for sorting: lower is more urgent.
func (s BudgetStatus) Severity() int {
	switch s {
	case BudgetOverrun:
		return 0
	case BudgetCaution:
		return 1
	default:
		return 2
	}
}

// ProjectStatus is the lifecycle state of a CAPEX project.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "Active"
	ProjectPlanning  ProjectStatus = "Planning"
	ProjectCompleted ProjectStatus = "Completed"
	ProjectOnHold    ProjectStatus = "On Hold"
)

// ProjectStatuses lists the project lifecycle states.
var ProjectStatuses = []ProjectStatus{ProjectActive, ProjectPlanning, ProjectCompleted, ProjectOnHold}

// Priority ranks a CAPEX project.
type Priority string

const (
	PriorityCritical Priority = "Critical"
	PriorityHigh     Priority = "High"
	PriorityMedium   Priority = "Medium"
	PriorityLow      Priority = "Low"
)

// Priorities lists project priorities from most to least urgent.
var Priorities = []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
