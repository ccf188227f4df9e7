package coerce

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sheetmetrics/internal/model"
)

func TestCurrency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cell model.Cell
		want float64
	}{
		{"ringgit prefix", model.StringCell("RM 1,200.50"), 1200.5},
		{"ringgit lowercase", model.StringCell("rm1,000"), 1000},
		{"dollar", model.StringCell("$ 2,500"), 2500},
		{"myr code", model.StringCell("MYR 3,000,000"), 3000000},
		{"plain number string", model.StringCell("850000"), 850000},
		{"trailing text", model.StringCell("1200.50 approx"), 1200.5},
		{"numeric cell", model.NumberCell(1000000), 1000000},
		{"empty", model.StringCell(""), 0},
		{"blank", model.Cell{}, 0},
		{"garbage", model.StringCell("garbage"), 0},
		{"negative string", model.StringCell("-500"), 0},
		{"negative number", model.NumberCell(-1), 0},
		{"nan", model.NumberCell(math.NaN()), 0},
		{"inf", model.NumberCell(math.Inf(1)), 0},
		{"date cell", model.DateCell(time.Now()), 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, Currency(tt.cell), 1e-9)
		})
	}
}

func TestParseDate_SerialMatchesISO(t *testing.T) {
	t.Parallel()

	serial, ok := ParseDate(model.NumberCell(45306), false)
	require.True(t, ok)
	iso, ok := ParseDate(model.StringCell("2024-01-15"), false)
	require.True(t, ok)

	assert.True(t, serial.Date.Equal(iso.Date))
	assert.Equal(t, iso.Display, serial.Display)
	assert.Equal(t, "2024-01-15", serial.Display)
}

func TestParseDate_Shapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cell model.Cell
		want string
	}{
		{"serial with time fraction", model.NumberCell(45306.75), "2024-01-15"},
		{"serial as string", model.StringCell("45306"), "2024-01-15"},
		{"iso", model.StringCell("2024-02-01"), "2024-02-01"},
		{"iso with time", model.StringCell("2024-02-01T10:30:00Z"), "2024-02-01"},
		{"month name", model.StringCell("January 20, 2024"), "2024-01-20"},
		{"day first", model.StringCell("25/01/2024"), "2024-01-25"},
		{"compact yyyymmdd", model.StringCell("20240115"), "2024-01-15"},
		{"native", model.DateCell(time.Date(2024, 3, 9, 17, 0, 0, 0, time.UTC)), "2024-03-09"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v, ok := ParseDate(tt.cell, false)
			require.True(t, ok)
			assert.Equal(t, tt.want, v.Display)
			assert.Equal(t, time.UTC, v.Date.Location())
			assert.Zero(t, v.Date.Hour())
		})
	}
}

func TestParseDate_1904Epoch(t *testing.T) {
	t.Parallel()

	v1900, ok := ParseDate(model.NumberCell(45306), false)
	require.True(t, ok)
	v1904, ok := ParseDate(model.NumberCell(45306-1462), true)
	require.True(t, ok)
	assert.Equal(t, v1900.Display, v1904.Display)
}

func TestParseDate_Rejects(t *testing.T) {
	t.Parallel()

	for _, c := range []model.Cell{
		{},
		model.StringCell("garbage"),
		model.StringCell("2024-13-45"),
		model.NumberCell(0),
		model.NumberCell(-3),
		model.NumberCell(math.NaN()),
		model.DateCell(time.Time{}),
	} {
		_, ok := ParseDate(c, false)
		assert.False(t, ok, "cell %+v", c)
	}
}

func TestDate_FallsBackToNow(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 30, 23, 15, 0, 0, time.UTC)
	v := Date(model.StringCell("not a date"), false, now)
	assert.Equal(t, "2025-06-30", v.Display)
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), v.Date)

	v = Date(model.Cell{}, false, now)
	assert.Equal(t, "2025-06-30", v.Display)
}

func TestOptionalDate(t *testing.T) {
	t.Parallel()

	assert.Nil(t, OptionalDate(model.Cell{}, false))
	assert.Nil(t, OptionalDate(model.StringCell("tbd"), false))

	v := OptionalDate(model.StringCell("2024-05-01"), false)
	require.NotNil(t, v)
	assert.Equal(t, "2024-05-01", v.Display)
}

func TestStatus_Health(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   model.Cell
		want model.HealthStatus
	}{
		{model.StringCell("Healthy"), model.HealthHealthy},
		{model.StringCell("  caution "), model.HealthCaution},
		{model.StringCell("WARNING"), model.HealthWarning},
		{model.StringCell("unknown"), model.HealthUnknown},
		{model.StringCell("warn"), model.HealthUnknown},
		{model.StringCell("Healthy!"), model.HealthUnknown},
		{model.NumberCell(3), model.HealthUnknown},
		{model.Cell{}, model.HealthUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.in, HealthStatuses), "input %q", tt.in.String())
	}
}

func TestStatus_ProjectAndPriority(t *testing.T) {
	t.Parallel()

	assert.Equal(t, model.ProjectOnHold, Status(model.StringCell("on hold"), ProjectStatuses))
	assert.Equal(t, model.ProjectOnHold, Status(model.StringCell("On-Hold"), ProjectStatuses))
	assert.Equal(t, model.ProjectCompleted, Status(model.StringCell("Complete"), ProjectStatuses))
	assert.Equal(t, model.ProjectPlanning, Status(model.StringCell("planning"), ProjectStatuses))
	assert.Equal(t, model.ProjectActive, Status(model.StringCell("???"), ProjectStatuses))
	assert.Equal(t, model.ProjectActive, Status(model.Cell{}, ProjectStatuses))

	assert.Equal(t, model.PriorityCritical, Status(model.StringCell("critical"), Priorities))
	assert.Equal(t, model.PriorityCritical, Status(model.StringCell("Urgent"), Priorities))
	assert.Equal(t, model.PriorityLow, Status(model.StringCell("LOW"), Priorities))
	assert.Equal(t, model.PriorityMedium, Status(model.StringCell("whenever"), Priorities))
}

func TestText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Mechanical", Text(model.StringCell("  Mechanical "), "General"))
	assert.Equal(t, "General", Text(model.Cell{}, "General"))
	assert.Equal(t, "1001", Text(model.NumberCell(1001), ""))
}
