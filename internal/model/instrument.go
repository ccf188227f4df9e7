package model

import "time"

// Instrument-domain category dimensions for FilterState.Categories.
const (
	DimArea          = "area"
	DimEquipmentType = "equipment_type"
	DimStatus        = "status"
)

// Instrument is one normalized instrument alarm-log row.
type Instrument struct {
	Area                    string       `json:"area"`
	EquipmentType           string       `json:"equipment_type"`
	TagNumber               string       `json:"tag_number"`
	EquipmentDescription    string       `json:"equipment_description"`
	Status                  HealthStatus `json:"status"`
	AlarmDescription        string       `json:"alarm_description"`
	Rectification           string       `json:"rectification"`
	NotificationDate        time.Time    `json:"notification_date"`
	NotificationDateDisplay string       `json:"notification_date_display"`
}

// Category returns the row's value for a filter dimension.
func (r Instrument) Category(dim string) string {
	switch dim {
	case DimArea:
		return r.Area
	case DimEquipmentType:
		return r.EquipmentType
	case DimStatus:
		return string(r.Status)
	default:
		return ""
	}
}

// DateSpan returns the notification date as both ends of the span.
func (r Instrument) DateSpan() (start, end *time.Time) {
	d := r.NotificationDate
	return &d, &d
}

// SearchFields returns the text matched by free-text search.
func (r Instrument) SearchFields() []string {
	return []string{r.TagNumber, r.EquipmentDescription, r.AlarmDescription}
}

// Identifier is the tag number.
func (r Instrument) Identifier() string {
	return r.TagNumber
}

// SeverityRank orders rows Warning, Caution, Healthy, Unknown.
func (r Instrument) SeverityRank() int {
	return r.Status.Severity()
}

// InstrumentColumns lists the exportable instrument columns in display order.
var InstrumentColumns = []string{
	"area", "equipment_type", "tag_number", "equipment_description",
	"status", "alarm_description", "rectification", "notification_date",
}
