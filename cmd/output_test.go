package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/sheetmetrics/internal/model"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1200, "RM 1,200"},
		{1250000, "RM 1,250,000"},
		{0, "RM 0"},
		{999.6, "RM 1,000"},
		{-50000, "RM -50,000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, currency(tt.in))
	}
}

func TestCheckFormat(t *testing.T) {
	assert.NoError(t, checkFormat("table"))
	assert.NoError(t, checkFormat("json"))
	assert.Error(t, checkFormat("csv"))
}

func TestFormatUploads(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	var buf bytes.Buffer
	formatUploads(&buf, []model.UploadMetadata{{
		ID:        "abc12345-6789-0000-0000-000000000000",
		Domain:    model.DomainBudget,
		Filename:  "capex.xlsx",
		Timestamp: now,
		Rows:      12,
		Warnings:  1,
	}})

	out := buf.String()
	assert.Contains(t, out, "FILE")
	assert.Contains(t, out, "abc12345")
	assert.NotContains(t, out, "abc12345-6789")
	assert.Contains(t, out, "capex.xlsx")
	assert.Contains(t, out, "2025-06-15 10:30")
}

func TestFormatGroups(t *testing.T) {
	var buf bytes.Buffer
	formatGroups(&buf, "By discipline", []model.GroupMetric{{
		GroupKey:       "Mechanical",
		ApprovedBudget: 1200000,
		ActualSpend:    1100000,
		Remaining:      100000,
		UtilizationPct: 91.6667,
		Status:         model.BudgetCaution,
		MemberCount:    2,
	}})

	out := buf.String()
	assert.Contains(t, out, "By discipline")
	assert.Contains(t, out, "RM 1,200,000")
	assert.Contains(t, out, "91.7%")
	assert.Contains(t, out, "Caution")
}

func TestFormatRows_SelectedColumns(t *testing.T) {
	var buf bytes.Buffer
	formatRows(&buf, []string{"tag_number", "status"}, []model.Instrument{
		{TagNumber: "PT-101", Status: model.HealthWarning, Area: "Urea"},
	}, instrumentValue)

	out := buf.String()
	assert.Contains(t, out, "TAG_NUMBER")
	assert.Contains(t, out, "PT-101")
	assert.Contains(t, out, "Warning")
	assert.NotContains(t, out, "Urea")
}
