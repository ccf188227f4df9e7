package dashboard

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sheetmetrics/internal/ingest"
	"github.com/sells-group/sheetmetrics/internal/model"
	"github.com/sells-group/sheetmetrics/internal/store"
)

func newStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func newIngestor(t *testing.T) *ingest.Ingestor {
	t.Helper()
	opts := ingest.DefaultOptions()
	opts.Now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	in, err := ingest.New(opts)
	require.NoError(t, err)
	return in
}

func textRow(values ...string) []model.Cell {
	out := make([]model.Cell, len(values))
	for i, v := range values {
		out[i] = model.StringCell(v)
	}
	return out
}

func budgetWorkbook(name string, rows ...[]string) *model.Workbook {
	s := &model.Sheet{Name: "CAPEX", Header: []string{"Name", "Discipline", "Current Budget", "Actual Spend", "Status"}}
	for _, r := range rows {
		s.Rows = append(s.Rows, textRow(r...))
	}
	return &model.Workbook{Filename: name, Sheets: []*model.Sheet{s}}
}

func TestSession_LoadReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	s := NewSession(model.DomainBudget, newIngestor(t), st, DefaultSettings())

	res, err := s.Load(ctx, budgetWorkbook("jan.xlsx",
		[]string{"Pump Upgrade", "Mechanical", "1,000,000", "850,000", "Active"},
		[]string{"HVAC", "Mechanical", "200,000", "250,000", "Planning"},
	))
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, 2, res.Upload.Rows)
	require.Len(t, s.Snapshot().Projects, 2)

	res, err = s.Load(ctx, budgetWorkbook("feb.xlsx",
		[]string{"Flare Stack", "Civil", "RM 500,000", "RM 100,000", "Active"},
	))
	require.NoError(t, err)
	assert.True(t, res.Accepted)

	snap := s.Snapshot()
	require.Len(t, snap.Projects, 1, "new upload replaces, never merges")
	assert.Equal(t, "Flare Stack", snap.Projects[0].Name)
	require.NotNil(t, snap.Upload)
	assert.Equal(t, "feb.xlsx", snap.Upload.Filename)

	uploads, err := st.ListUploads(ctx, model.DomainBudget, 0)
	require.NoError(t, err)
	assert.Len(t, uploads, 2)
}

func TestSession_RejectedBatchKeepsPrevious(t *testing.T) {
	ctx := context.Background()
	s := NewSession(model.DomainInstrument, newIngestor(t), nil, DefaultSettings())

	header := []string{"Equipment Type", "Tag Number", "Equipment Description", "Status", "Alarm Description", "Rectification", "Notification Date"}
	good := &model.Workbook{Filename: "ok.xlsx", Sheets: []*model.Sheet{{
		Name:   "Ammonia",
		Header: header,
		Rows:   [][]model.Cell{textRow("PT", "PT-1", "Feed", "Healthy", "", "", "2024-01-15")},
	}}}
	res, err := s.Load(ctx, good)
	require.NoError(t, err)
	require.True(t, res.Accepted)

	bad := &model.Workbook{Filename: "bad.xlsx", Sheets: []*model.Sheet{{
		Name:   "Ammonia",
		Header: []string{"Tag Number"},
		Rows:   [][]model.Cell{textRow("PT-9")},
	}}}
	res, err = s.Load(ctx, bad)
	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.NotEmpty(t, res.Errors)

	snap := s.Snapshot()
	require.Len(t, snap.Instruments, 1)
	assert.Equal(t, "PT-1", snap.Instruments[0].TagNumber)
}

func TestSession_FiltersPersistAndRestore(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	s := NewSession(model.DomainBudget, newIngestor(t), st, DefaultSettings())
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SetFilters(model.FilterState{
		Categories: map[string][]string{model.DimDiscipline: {"Civil"}},
		DateRange:  model.DateRange{From: &from},
		SortBy:     model.SortIdentifierAsc,
	}))
	require.NoError(t, s.Persist(ctx))

	restored := NewSession(model.DomainBudget, newIngestor(t), st, DefaultSettings())
	require.NoError(t, restored.Restore(ctx))
	fs := restored.Filters()
	assert.Equal(t, []string{"Civil"}, fs.Categories[model.DimDiscipline])
	assert.Equal(t, model.SortIdentifierAsc, fs.SortBy)
	require.NotNil(t, fs.DateRange.From)
	assert.True(t, from.Equal(*fs.DateRange.From))

	fresh := NewSession(model.DomainInstrument, newIngestor(t), st, DefaultSettings())
	require.NoError(t, fresh.Restore(ctx))
	assert.Equal(t, model.DefaultFilterState(), fresh.Filters())
}

func TestSession_SetFiltersValidates(t *testing.T) {
	s := NewSession(model.DomainBudget, newIngestor(t), nil, DefaultSettings())

	assert.Error(t, s.SetFilters(model.FilterState{SortBy: "random"}))
	assert.Error(t, s.SetFilters(model.FilterState{GroupStatuses: []model.BudgetStatus{"Meh"}}))
	require.NoError(t, s.SetFilters(model.FilterState{}))
	assert.Equal(t, model.SortDateDesc, s.Filters().SortBy)
}

func TestSession_FiltersAreCopied(t *testing.T) {
	s := NewSession(model.DomainBudget, newIngestor(t), nil, DefaultSettings())

	cats := map[string][]string{model.DimDiscipline: {"Civil"}}
	require.NoError(t, s.SetFilters(model.FilterState{Categories: cats}))
	cats[model.DimDiscipline][0] = "Mechanical"

	assert.Equal(t, "Civil", s.Filters().Categories[model.DimDiscipline][0])
}

func TestSession_BudgetView(t *testing.T) {
	ctx := context.Background()
	s := NewSession(model.DomainBudget, newIngestor(t), nil, DefaultSettings())
	_, err := s.Load(ctx, budgetWorkbook("capex.xlsx",
		[]string{"Pump Upgrade", "Mechanical", "1000000", "850000", "Active"},
		[]string{"HVAC", "Mechanical", "200000", "250000", "Planning"},
		[]string{"Substation", "Electrical", "500000", "100000", "Active"},
	))
	require.NoError(t, err)

	v := s.View("")
	require.NotNil(t, v.Budget)
	require.Len(t, v.Budget.Groups, 2)
	assert.Equal(t, "Electrical", v.Budget.Groups[0].GroupKey)
	assert.Equal(t, model.BudgetCaution, v.Budget.Groups[1].Status)
	assert.Equal(t, 3, v.Budget.KPI.TotalProjects)
	assert.Equal(t, model.ProjectColumns, v.Columns)
	assert.Nil(t, v.Groups)

	require.NoError(t, s.SetFilters(model.FilterState{
		GroupStatuses: []model.BudgetStatus{model.BudgetCaution},
		Columns:       []string{"name", "health"},
	}))
	v = s.View(model.DimProjectStatus)
	require.Len(t, v.Budget.Groups, 1)
	assert.Equal(t, "Mechanical", v.Budget.Groups[0].GroupKey)
	assert.InDelta(t, 1200000, v.Budget.KPI.TotalApproved, 1e-6)
	assert.Equal(t, []string{"name", "health"}, v.Columns)
	assert.Len(t, v.Projects, 3, "the status filter applies to groups, not rows")
	for _, g := range v.Groups {
		assert.Equal(t, model.BudgetCaution, g.Status)
	}
}

func TestSession_InstrumentView(t *testing.T) {
	ctx := context.Background()
	s := NewSession(model.DomainInstrument, newIngestor(t), nil, DefaultSettings())

	header := []string{"Equipment Type", "Tag Number", "Equipment Description", "Status", "Alarm Description", "Rectification", "Notification Date"}
	wb := &model.Workbook{Filename: "alarms.xlsx", Sheets: []*model.Sheet{
		{Name: "Ammonia", Header: header, Rows: [][]model.Cell{
			textRow("PT", "PT-1", "Feed", "Healthy", "", "", "2024-01-15"),
			textRow("FT", "FT-1", "Syngas", "Warning", "ALS transmitter", "Replace", "2024-01-16"),
		}},
		{Name: "Urea", Header: header, Rows: [][]model.Cell{
			textRow("PT", "PT-2", "Carbamate", "Unknown", "", "", "2024-01-17"),
		}},
	}}
	res, err := s.Load(ctx, wb)
	require.NoError(t, err)
	require.True(t, res.Accepted)

	v := s.View("")
	require.NotNil(t, v.Instrument)
	assert.Equal(t, 60, v.Instrument.KPI.Score)
	assert.Equal(t, []string{"FT", "PT"}, v.Instrument.Types)
	require.Len(t, v.Instrument.Obsolescence, 1)
	assert.Equal(t, "PT-2", v.Instruments[0].TagNumber, "newest first")

	require.NoError(t, s.SetFilters(model.FilterState{
		Categories: map[string][]string{model.DimArea: {"Urea"}},
	}))
	v = s.View("")
	require.Len(t, v.Instruments, 1)
	assert.Equal(t, 0, v.Instrument.KPI.Score, "all-unknown scores zero")
}
