package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sheetmetrics/internal/model"
)

func TestKey(t *testing.T) {
	t.Parallel()

	for _, h := range []string{"Current Budget", "current_budget", "currentBudget", "CURRENT-BUDGET", " current budget "} {
		assert.Equal(t, "currentbudget", Key(h), "header %q", h)
	}
	assert.Equal(t, "", Key(" _-. "))
}

func TestLoadAliases_BuiltIn(t *testing.T) {
	t.Parallel()

	for _, d := range model.Domains {
		tbl, err := LoadAliases(d)
		require.NoError(t, err, "domain %s", d)
		assert.Equal(t, d, tbl.Schema().Domain)
		assert.NotEmpty(t, tbl.Required())
	}
}

func TestLookup_ManyToOne(t *testing.T) {
	t.Parallel()

	tbl, err := LoadAliases(model.DomainBudget)
	require.NoError(t, err)

	for _, h := range []string{"Current Budget", "current_budget", "currentBudget", "Revised Budget"} {
		field, ok := tbl.Lookup(h)
		require.True(t, ok, "header %q", h)
		assert.Equal(t, FieldCurrentBudget, field)
	}

	for h, want := range map[string]string{
		"Name":         FieldName,
		"Project Name": FieldName,
		"project_name": FieldName,
		"PM":           FieldProjectManager,
		"Notes":        FieldRemarks,
		"Status":       FieldProjectStatus,
		"WBS":          FieldWBSNumber,
	} {
		field, ok := tbl.Lookup(h)
		require.True(t, ok, "header %q", h)
		assert.Equal(t, want, field, "header %q", h)
	}

	_, ok := tbl.Lookup("Colour")
	assert.False(t, ok)
}

func TestResolve_FirstMatchWins(t *testing.T) {
	t.Parallel()

	tbl, err := LoadAliases(model.DomainBudget)
	require.NoError(t, err)

	cols := tbl.Resolve([]string{"Project Name", "Discipline", "Name", "Colour", ""})

	idx, ok := cols.Index(FieldName)
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = cols.Index(FieldDiscipline)
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	assert.Equal(t, []string{"Colour"}, cols.Unmapped())
	assert.False(t, cols.Has(FieldVendor))
	assert.Equal(t, []string{FieldVendor, FieldRemarks}, cols.Missing([]string{FieldName, FieldVendor, FieldRemarks}))
}

func TestColumns_Cell(t *testing.T) {
	t.Parallel()

	tbl, err := LoadAliases(model.DomainInstrument)
	require.NoError(t, err)

	cols := tbl.Resolve([]string{"Tag Number", "Status"})
	row := []model.Cell{model.StringCell("FT-1001")}

	assert.Equal(t, "FT-1001", cols.Cell(row, FieldTagNumber).String())
	assert.True(t, cols.Cell(row, FieldStatus).IsBlank(), "ragged row reads blank")
	assert.True(t, cols.Cell(row, FieldRectification).IsBlank(), "absent column reads blank")
}

func TestResolve_InstrumentMissingRequired(t *testing.T) {
	t.Parallel()

	tbl, err := LoadAliases(model.DomainInstrument)
	require.NoError(t, err)

	cols := tbl.Resolve([]string{"Equipment Type", "Tag Number", "Equipment Description", "Alarm Description", "Notification Date"})
	assert.Equal(t, []string{FieldStatus, FieldRectification}, cols.Missing(tbl.Required()))
}

func TestNewAliasTable_Rejects(t *testing.T) {
	t.Parallel()

	_, err := NewAliasTable(Budget, AliasFile{Fields: map[string][]string{
		FieldName:    {"Title"},
		FieldRemarks: {"title"},
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maps to both")

	_, err = NewAliasTable(Budget, AliasFile{Fields: map[string][]string{"colour": {"hue"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field colour")

	_, err = NewAliasTable(Budget, AliasFile{Required: []string{"colour"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required field colour")
}

func TestLoadAliasesWithOverride(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
domain: instrument
fields:
  tag_number: [instrument tag]
`), 0o644))

	tbl, err := LoadAliasesWithOverride(model.DomainInstrument, path)
	require.NoError(t, err)

	field, ok := tbl.Lookup("Instrument Tag")
	require.True(t, ok)
	assert.Equal(t, FieldTagNumber, field)

	field, ok = tbl.Lookup("Tag No")
	require.True(t, ok, "built-in aliases are kept")
	assert.Equal(t, FieldTagNumber, field)
}

func TestLoadAliasesWithOverride_WrongDomain(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("domain: budget\n"), 0o644))

	_, err := LoadAliasesWithOverride(model.DomainInstrument, path)
	require.Error(t, err)
}

func TestLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Tag Number", Label(FieldTagNumber))
	assert.Equal(t, "Notification Date", Label(FieldNotificationDate))
}
