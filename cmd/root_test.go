package main

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
	"github.com/sells-group/sheetmetrics/internal/templategen"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"ingest", "report", "template", "validate", "uploads", "serve"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "sheetmetrics", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestReportCommand_Flags(t *testing.T) {
	for _, name := range []string{"domain", "filter", "from", "to", "search", "sort", "status", "group-by", "save-filters", "load-filters", "format"} {
		assert.NotNil(t, reportCmd.Flags().Lookup(name), "report command should have --%s", name)
	}
}

func TestValidateCommand_Flags(t *testing.T) {
	flag := validateCmd.Flags().Lookup("concurrency")
	require.NotNil(t, flag)
	assert.Equal(t, "4", flag.DefValue)
}

func testIngestor(t *testing.T) *ingest.Ingestor {
	t.Helper()
	opts := ingest.DefaultOptions()
	opts.Now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	in, err := ingest.New(opts)
	require.NoError(t, err)
	return in
}

func testStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

// templateFile writes a domain's upload template into a temp dir.
func templateFile(t *testing.T, d model.Domain) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), templategen.DefaultFilename(d))
	require.NoError(t, templategen.Save(path, d))
	return path
}
