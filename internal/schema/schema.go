// Package schema declares the canonical row schema of each upload domain
// and resolves arbitrary header spellings onto it.
package schema

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/sheetmetrics/internal/model"
)

// Canonical field names shared by the alias tables and the normalizers.
const (
	FieldID                = "id"
	FieldName              = "name"
	FieldWBSNumber         = "wbs_number"
	FieldProjectManager    = "project_manager"
	FieldDiscipline        = "discipline"
	FieldOriginalBudget    = "original_budget"
	FieldContractValue     = "contract_value"
	FieldBudgetTransferIn  = "budget_transfer_in"
	FieldBudgetTransferOut = "budget_transfer_out"
	FieldCurrentBudget     = "current_budget"
	FieldActualSpend       = "actual_spend"
	FieldPlannedSpend      = "planned_spend"
	FieldStartDate         = "start_date"
	FieldEndDate           = "end_date"
	FieldVendor            = "vendor"
	FieldPaymentTerms      = "payment_terms"
	FieldProjectStatus     = "project_status"
	FieldPriority          = "priority"
	FieldRemarks           = "remarks"

	FieldEquipmentType        = "equipment_type"
	FieldTagNumber            = "tag_number"
	FieldEquipmentDescription = "equipment_description"
	FieldStatus               = "status"
	FieldAlarmDescription     = "alarm_description"
	FieldRectification        = "rectification"
	FieldNotificationDate     = "notification_date"
)

// Schema enumerates one domain's canonical fields by type.
type Schema struct {
	Domain          model.Domain
	Category        string
	TextFields      []string
	NumericMeasures []string
	DateFields      []string
	StatusFields    []string
	RequiredFields  []string
}

// Fields returns every canonical field in declaration order.
func (s Schema) Fields() []string {
	out := make([]string, 0, len(s.TextFields)+len(s.NumericMeasures)+len(s.DateFields)+len(s.StatusFields))
	out = append(out, s.TextFields...)
	out = append(out, s.NumericMeasures...)
	out = append(out, s.DateFields...)
	out = append(out, s.StatusFields...)
	return out
}

// Budget is the CAPEX project schema. Only the project name is structural;
// every other column may be absent and is defaulted per row.
var Budget = Schema{
	Domain:   model.DomainBudget,
	Category: FieldDiscipline,
	TextFields: []string{
		FieldID, FieldName, FieldWBSNumber, FieldProjectManager, FieldDiscipline,
		FieldVendor, FieldPaymentTerms, FieldRemarks,
	},
	NumericMeasures: []string{
		FieldOriginalBudget, FieldContractValue, FieldBudgetTransferIn, FieldBudgetTransferOut,
		FieldCurrentBudget, FieldActualSpend, FieldPlannedSpend,
	},
	DateFields:     []string{FieldStartDate, FieldEndDate},
	StatusFields:   []string{FieldProjectStatus, FieldPriority},
	RequiredFields: []string{FieldName},
}

// Instrument is the instrument alarm-log schema. The area is not a column:
// it comes from the sheet a row was read from.
var Instrument = Schema{
	Domain:   model.DomainInstrument,
	Category: model.DimArea,
	TextFields: []string{
		FieldEquipmentType, FieldTagNumber, FieldEquipmentDescription,
		FieldAlarmDescription, FieldRectification,
	},
	DateFields:   []string{FieldNotificationDate},
	StatusFields: []string{FieldStatus},
	RequiredFields: []string{
		FieldEquipmentType, FieldTagNumber, FieldEquipmentDescription, FieldStatus,
		FieldAlarmDescription, FieldRectification, FieldNotificationDate,
	},
}

// ForDomain returns the schema of a domain.
func ForDomain(d model.Domain) Schema {
	if d == model.DomainInstrument {
		return Instrument
	}
	return Budget
}

// Label renders a canonical field as a column heading, e.g.
// "tag_number" becomes "Tag Number".
func Label(field string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(field, "_", " "))
}
