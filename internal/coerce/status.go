package coerce

import (
	"strings"

	"github.com/sells-group/sheetmetrics/internal/model"
)

// Enum is a closed set of labels with a neutral fallback. Aliases map
// extra spellings (matched case-insensitively) onto members.
type Enum[T ~string] struct {
	Values   []T
	Aliases  map[string]T
	Fallback T
}

// Status maps a cell onto an enum member by case-insensitive exact match
// against the labels, then the aliases. Anything else, including a blank
// cell, yields the fallback.
func Status[T ~string](c model.Cell, e Enum[T]) T {
	s := c.String()
	if s == "" {
		return e.Fallback
	}
	for _, v := range e.Values {
		if strings.EqualFold(s, string(v)) {
			return v
		}
	}
	for alias, v := range e.Aliases {
		if strings.EqualFold(s, alias) {
			return v
		}
	}
	return e.Fallback
}

// HealthStatuses is the instrument status enum. Only the exact labels are
// recognized; a typo reads as Unknown rather than a guessed status.
var HealthStatuses = Enum[model.HealthStatus]{
	Values:   model.HealthStatuses,
	Fallback: model.HealthUnknown,
}

// ProjectStatuses is the CAPEX lifecycle enum. Unrecognized input reads as
// Active, the state every project starts in.
var ProjectStatuses = Enum[model.ProjectStatus]{
	Values: model.ProjectStatuses,
	Aliases: map[string]model.ProjectStatus{
		"complete":    model.ProjectCompleted,
		"done":        model.ProjectCompleted,
		"closed":      model.ProjectCompleted,
		"hold":        model.ProjectOnHold,
		"on-hold":     model.ProjectOnHold,
		"onhold":      model.ProjectOnHold,
		"in progress": model.ProjectActive,
		"on-going":    model.ProjectActive,
		"ongoing":     model.ProjectActive,
		"planned":     model.ProjectPlanning,
		"new":         model.ProjectPlanning,
	},
	Fallback: model.ProjectActive,
}

// Priorities is the CAPEX priority enum; unrecognized input reads as Medium.
var Priorities = Enum[model.Priority]{
	Values: model.Priorities,
	Aliases: map[string]model.Priority{
		"med":    model.PriorityMedium,
		"normal": model.PriorityMedium,
		"urgent": model.PriorityCritical,
	},
	Fallback: model.PriorityMedium,
}
