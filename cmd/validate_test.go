package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sheetmetrics/internal/model"
)

func TestValidateFiles(t *testing.T) {
	dir := t.TempDir()
	good := templateFile(t, model.DomainInstrument)
	bad := filepath.Join(dir, "Ammonia.csv")
	require.NoError(t, os.WriteFile(bad, []byte("Tag Number\nPT-1\n"), 0o644))
	missing := filepath.Join(dir, "missing.xlsx")

	reports, err := validateFiles(context.Background(), testIngestor(t), model.DomainInstrument, []string{good, bad, missing}, 2)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	assert.Equal(t, good, reports[0].Path, "reports keep argument order")
	assert.Equal(t, 20, reports[0].Rows)
	assert.Empty(t, reports[0].Errors)

	assert.NotEmpty(t, reports[1].Errors)
	assert.Equal(t, 0, reports[1].Rows)

	assert.NotEmpty(t, reports[2].Err)

	var buf bytes.Buffer
	formatValidation(&buf, reports)
	out := buf.String()
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "unreadable")
	assert.Contains(t, out, `Sheet "Ammonia" is missing required columns`)
}

func TestValidateFiles_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := validateFiles(ctx, testIngestor(t), model.DomainBudget, []string{"a.xlsx"}, 1)
	assert.Error(t, err)
}
