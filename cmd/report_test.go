package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sheetmetrics/internal/dashboard"
	"github.com/sells-group/sheetmetrics/internal/model"
)

func TestParseFilterFlags(t *testing.T) {
	got, err := parseFilterFlags([]string{"discipline=Civil, Mechanical", "priority=High", "discipline=Electrical"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Civil", "Mechanical", "Electrical"}, got[model.DimDiscipline])
	assert.Equal(t, []string{"High"}, got[model.DimPriority])

	for _, bad := range []string{"discipline", "=Civil"} {
		_, err := parseFilterFlags([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestApplyOptions(t *testing.T) {
	from := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	base := model.FilterState{
		Categories: map[string][]string{model.DimArea: {"Urea"}},
		DateRange:  model.DateRange{From: &from},
		SortBy:     model.SortSeverity,
	}

	fs, err := applyOptions(base, reportOptions{
		filters: map[string][]string{model.DimStatus: {"Warning"}},
		to:      "2024-06-30",
		search:  "pump",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Urea"}, fs.Categories[model.DimArea], "unset flags keep the base")
	assert.Equal(t, []string{"Warning"}, fs.Categories[model.DimStatus])
	assert.Equal(t, model.SortSeverity, fs.SortBy)
	assert.Equal(t, "pump", fs.SearchText)
	require.NotNil(t, fs.DateRange.From)
	assert.True(t, from.Equal(*fs.DateRange.From))
	require.NotNil(t, fs.DateRange.To)
	assert.Equal(t, time.Date(2024, 6, 30, 23, 59, 59, 999999999, time.UTC), *fs.DateRange.To)

	assert.Nil(t, base.Categories[model.DimStatus], "base is not mutated")

	_, err = applyOptions(base, reportOptions{from: "someday"})
	assert.Error(t, err)
	_, err = applyOptions(base, reportOptions{sort: "random"})
	assert.Error(t, err)
}

func TestRunReport_BudgetTable(t *testing.T) {
	path := templateFile(t, model.DomainBudget)

	var buf bytes.Buffer
	err := runReport(context.Background(), &buf, testIngestor(t), nil, dashboard.DefaultSettings(), model.DomainBudget, path,
		reportOptions{format: formatTable, rows: true, columns: []string{"name", "health"}, groupBy: model.DimPriority})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "2 projects match")
	assert.Contains(t, out, "By discipline")
	assert.Contains(t, out, "By priority")
	assert.Contains(t, out, "RM 1,250,000")
	assert.Contains(t, out, "Cooling Tower Refurbishment")
	assert.NotContains(t, out, "WBS-24-001")
}

func TestRunReport_InstrumentJSON(t *testing.T) {
	path := templateFile(t, model.DomainInstrument)

	var buf bytes.Buffer
	err := runReport(context.Background(), &buf, testIngestor(t), nil, dashboard.DefaultSettings(), model.DomainInstrument, path,
		reportOptions{format: formatJSON, filters: map[string][]string{model.DimArea: {"Urea"}}})
	require.NoError(t, err)

	var v dashboard.View
	require.NoError(t, json.Unmarshal(buf.Bytes(), &v))
	require.NotNil(t, v.Instrument)
	assert.Equal(t, 4, v.Instrument.KPI.Total)
	assert.Empty(t, v.Instruments, "rows only with --rows")
	assert.Equal(t, []string{"Urea"}, v.Filters.Categories[model.DimArea])
}

func TestRunReport_SaveThenLoadFilters(t *testing.T) {
	ctx := context.Background()
	st := testStore(t)
	in := testIngestor(t)
	path := templateFile(t, model.DomainInstrument)

	var buf bytes.Buffer
	require.NoError(t, runReport(ctx, &buf, in, st, dashboard.DefaultSettings(), model.DomainInstrument, path,
		reportOptions{format: formatJSON, save: true, filters: map[string][]string{model.DimArea: {"System"}}, sort: "tag-asc"}))

	saved, err := st.LoadFilterState(ctx, model.DomainInstrument)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, model.SortIdentifierAsc, saved.SortBy)

	buf.Reset()
	require.NoError(t, runReport(ctx, &buf, in, st, dashboard.DefaultSettings(), model.DomainInstrument, path,
		reportOptions{format: formatJSON, load: true}))
	var v dashboard.View
	require.NoError(t, json.Unmarshal(buf.Bytes(), &v))
	assert.Equal(t, []string{"System"}, v.Filters.Categories[model.DimArea])
	assert.Equal(t, 4, v.Instrument.KPI.Total)

	uploads, err := st.ListUploads(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, uploads, "reports are not recorded")
}

func TestRunReport_Rejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Ammonia.csv")
	require.NoError(t, os.WriteFile(path, []byte("Tag Number\nPT-1\n"), 0o644))

	var buf bytes.Buffer
	err := runReport(context.Background(), &buf, testIngestor(t), nil, dashboard.DefaultSettings(), model.DomainInstrument, path,
		reportOptions{format: formatTable})
	require.Error(t, err)
	assert.Contains(t, buf.String(), `Sheet "Ammonia" is missing required columns`)
}
