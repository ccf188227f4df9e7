package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/sheetmetrics/internal/aggregate"
	"github.com/sells-group/sheetmetrics/internal/dashboard"
	"github.com/sells-group/sheetmetrics/internal/model"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

var printer = message.NewPrinter(language.English)

func checkFormat(f string) error {
	if f != formatTable && f != formatJSON {
		return eris.Errorf("unknown format %q (want table or json)", f)
	}
	return nil
}

// currency renders a whole-ringgit amount with thousands separators.
func currency(v float64) string {
	return printer.Sprintf("RM %d", int64(math.Round(v)))
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode json")
}

func formatLoadResult(out io.Writer, res *dashboard.LoadResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "File:\t%s\n", res.Upload.Filename)
	_, _ = fmt.Fprintf(w, "Domain:\t%s\n", res.Upload.Domain)
	_, _ = fmt.Fprintf(w, "Rows:\t%d\n", res.Upload.Rows)
	_, _ = fmt.Fprintf(w, "Accepted:\t%t\n", res.Accepted)
	if res.Accepted && res.Upload.ID != "" {
		_, _ = fmt.Fprintf(w, "Upload:\t%s\n", res.Upload.ID)
	}
	_ = w.Flush()
	formatDiagnostics(out, res.Warnings, res.Errors)
}

func formatDiagnostics(out io.Writer, warnings, errs []string) {
	if len(errs) > 0 {
		_, _ = fmt.Fprintf(out, "\nErrors (%d):\n", len(errs))
		for _, e := range errs {
			_, _ = fmt.Fprintf(out, "  - %s\n", e)
		}
	}
	if len(warnings) > 0 {
		_, _ = fmt.Fprintf(out, "\nWarnings (%d):\n", len(warnings))
		for _, m := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", m)
		}
	}
}

func formatUploads(out io.Writer, uploads []model.UploadMetadata) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tDOMAIN\tFILE\tROWS\tWARNINGS\tERRORS\tUPLOADED")
	_, _ = fmt.Fprintln(w, "--\t------\t----\t----\t--------\t------\t--------")
	for _, u := range uploads {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			truncateID(u.ID),
			u.Domain,
			u.Filename,
			u.Rows,
			u.Warnings,
			u.Errors,
			u.Timestamp.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatGroups(out io.Writer, title string, groups []model.GroupMetric) {
	_, _ = fmt.Fprintf(out, "\n%s\n", title)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	_, _ = fmt.Fprintln(w, "GROUP\tAPPROVED\tSPENT\tREMAINING\tUTIL\tSTATUS\tPROJECTS\t")
	for _, g := range groups {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t\n",
			g.GroupKey,
			currency(g.ApprovedBudget),
			currency(g.ActualSpend),
			currency(g.Remaining),
			percent(g.UtilizationPct),
			g.Status,
			g.MemberCount,
		)
	}
	_ = w.Flush()
}

func formatBudgetKPI(out io.Writer, k model.BudgetKPI) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total approved:\t%s\n", currency(k.TotalApproved))
	_, _ = fmt.Fprintf(w, "Actual spend:\t%s\n", currency(k.ActualSpend))
	_, _ = fmt.Fprintf(w, "Remaining:\t%s\n", currency(k.Remaining))
	_, _ = fmt.Fprintf(w, "Utilization:\t%s\n", percent(k.UtilizationPct))
	if k.Overrun > 0 {
		_, _ = fmt.Fprintf(w, "Overrun:\t%s\n", currency(k.Overrun))
	}
	_, _ = fmt.Fprintf(w, "Groups:\t%d healthy, %d caution, %d overrun\n", k.HealthyCount, k.CautionCount, k.OverrunCount)
	_, _ = fmt.Fprintf(w, "Projects:\t%d (%d active)\n", k.TotalProjects, k.ActiveProjects)
	_ = w.Flush()
}

func formatInstrumentView(out io.Writer, v *aggregate.InstrumentView) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Health score:\t%d (%s)\n", v.KPI.Score, v.KPI.ScoreLabel)
	_, _ = fmt.Fprintf(w, "Instruments:\t%d\n", v.KPI.Total)
	for _, st := range model.HealthStatuses {
		_, _ = fmt.Fprintf(w, "  %s:\t%d\n", st, v.KPI.Counts.Get(st))
	}
	_, _ = fmt.Fprintf(w, "Obsolescence:\t%d\n", len(v.Obsolescence))
	_ = w.Flush()

	if len(v.TopTypes) > 0 {
		_, _ = fmt.Fprintln(out, "\nEquipment types")
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		header := []string{"TYPE", "TOTAL"}
		for _, st := range model.HealthStatuses {
			header = append(header, strings.ToUpper(string(st)))
		}
		_, _ = fmt.Fprintln(tw, strings.Join(header, "\t"))
		for _, t := range v.TopTypes {
			cols := []string{t.EquipmentType, fmt.Sprint(t.Total)}
			for _, s := range t.Shares {
				cols = append(cols, fmt.Sprintf("%d (%s)", s.Count, percent(s.Percentage)))
			}
			_, _ = fmt.Fprintln(tw, strings.Join(cols, "\t"))
		}
		_ = tw.Flush()
	}

	if len(v.Alerts) > 0 {
		_, _ = fmt.Fprintln(out, "\nAlerts")
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "TYPE\tCAUTION\tWARNING")
		for _, a := range v.Alerts {
			_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\n", a.EquipmentType, a.CautionCount, a.WarningCount)
		}
		_ = tw.Flush()
	}
}

// formatRows prints the selected columns of each row.
func formatRows[R any](out io.Writer, columns []string, rows []R, value func(R, string) string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = strings.ToUpper(c)
	}
	_, _ = fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, r := range rows {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = value(r, c)
		}
		_, _ = fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	_ = w.Flush()
}

func projectValue(p model.Project, col string) string {
	switch col {
	case "id":
		return p.ID
	case "name":
		return p.Name
	case "wbs_number":
		return p.WBSNumber
	case "project_manager":
		return p.ProjectManager
	case "discipline":
		return p.Discipline
	case "current_budget":
		return currency(p.CurrentBudget)
	case "actual_spend":
		return currency(p.ActualSpend)
	case "planned_spend":
		return currency(p.PlannedSpend)
	case "utilization_pct":
		return percent(p.UtilizationPct)
	case "health":
		return string(p.Health)
	case "start_date":
		return p.StartDateDisplay
	case "end_date":
		return p.EndDateDisplay
	case "project_status":
		return string(p.ProjectStatus)
	case "priority":
		return string(p.Priority)
	case "remarks":
		return p.Remarks
	default:
		return ""
	}
}

func instrumentValue(r model.Instrument, col string) string {
	switch col {
	case "area":
		return r.Area
	case "equipment_type":
		return r.EquipmentType
	case "tag_number":
		return r.TagNumber
	case "equipment_description":
		return r.EquipmentDescription
	case "status":
		return string(r.Status)
	case "alarm_description":
		return r.AlarmDescription
	case "rectification":
		return r.Rectification
	case "notification_date":
		return r.NotificationDateDisplay
	default:
		return ""
	}
}
