package output

import (
	"io"
	"strings"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/internal/cmd/table"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/internal/deps"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/catalog"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/match"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/preview"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/report"
)

// FormatReport handles the common pattern of formatting a run report.
// Table mode renders the outcome summary; structured modes emit the
// complete report including per-file items.
func FormatReport(w io.Writer, rep *report.Report, format Format) error {
	formatter := NewFormatter(format)

	// Transform to output format
	var outputData any
	switch format {
	case FormatTable, "":
		outputData = SummaryToTableData(rep)
	default:
		outputData = rep
	}

	return formatter.Format(w, outputData)
}

// SummaryToTableData converts a run summary to table format.
func SummaryToTableData(rep *report.Report) Data {
	s := rep.Summary
	rows := [][]string{
		{"Fixed", table.FormatNumber(int64(s.Fixed))},
		{"Copied (no sidecar)", table.FormatNumber(int64(s.Copied))},
		{"Degraded", table.FormatNumber(int64(s.Degraded))},
		{"Ambiguous", table.FormatNumber(int64(s.Ambiguous))},
		{"Up to date", table.FormatNumber(int64(s.UpToDate))},
		{"Duplicates", table.FormatNumber(int64(s.Duplicates))},
		{"Failed", table.FormatNumber(int64(s.Failed))},
		{"Unused sidecars", table.FormatNumber(int64(len(rep.UnusedSidecars)))},
	}

	return Data{
		Headers:         []string{"Outcome", "Files"},
		Rows:            rows,
		ColumnAlignment: []table.Align{table.AlignLeft, table.AlignRight},
	}
}

// ItemsToTableData converts per-file outcomes to table format.
func ItemsToTableData(items []report.Item) Data {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.Path,
			string(item.Outcome),
			table.Dash(item.Strategy),
			table.Dash(item.Sidecar),
			table.Dash(table.Truncate(item.Error, 60)),
		})
	}

	return Data{
		Headers: []string{"Path", "Outcome", "Strategy", "Sidecar", "Error"},
		Rows:    rows,
	}
}

// CatalogStatsToTableData converts catalog statistics to table format.
func CatalogStatsToTableData(stats catalog.Stats) Data {
	rows := [][]string{
		{"Volumes", table.FormatNumber(int64(stats.Volumes))},
		{"Failed volumes", table.FormatNumber(int64(stats.FailedVolumes))},
		{"Entries", table.FormatNumber(int64(stats.Entries))},
		{"Media files", table.FormatNumber(int64(stats.Media))},
		{"Sidecars", table.FormatNumber(int64(stats.Sidecars))},
		{"Album metadata", table.FormatNumber(int64(stats.AlbumMeta))},
		{"Other files", table.FormatNumber(int64(stats.Other))},
		{"Outside media root", table.FormatNumber(int64(stats.OutsideRoot))},
		{"Duplicate paths", table.FormatNumber(int64(stats.DuplicatePaths))},
	}

	return Data{
		Headers:         []string{"Catalog", "Count"},
		Rows:            rows,
		ColumnAlignment: []table.Align{table.AlignLeft, table.AlignRight},
	}
}

// MatchStatsToTableData converts match statistics to table format.
func MatchStatsToTableData(stats match.Stats) Data {
	rows := [][]string{
		{"Media files", table.FormatNumber(int64(stats.Media))},
		{"Matched", table.FormatNumber(int64(stats.Matched))},
		{"Unmatched", table.FormatNumber(int64(stats.Unmatched))},
		{"Ambiguous", table.FormatNumber(int64(stats.Ambiguous))},
		{"Exact matches", table.FormatNumber(int64(stats.Exact))},
		{"Truncated-prefix matches", table.FormatNumber(int64(stats.Truncated))},
		{"Edited fallbacks", table.FormatNumber(int64(stats.EditedFallback))},
		{"Unused sidecars", table.FormatNumber(int64(stats.UnusedSidecars))},
	}

	return Data{
		Headers:         []string{"Matching", "Count"},
		Rows:            rows,
		ColumnAlignment: []table.Align{table.AlignLeft, table.AlignRight},
	}
}

// VolumesToTableData converts per-volume summaries to table format.
func VolumesToTableData(vols []catalog.VolumeSummary) Data {
	rows := make([][]string, 0, len(vols))
	for _, v := range vols {
		status := "ok"
		if v.Error != "" {
			status = table.Truncate(v.Error, 40)
		}
		rows = append(rows, []string{
			v.Name,
			table.FormatNumber(int64(v.Entries)),
			table.FormatNumber(int64(v.Media)),
			table.FormatNumber(int64(v.Sidecars)),
			status,
		})
	}

	return Data{
		Headers: []string{"Volume", "Entries", "Media", "Sidecars", "Status"},
		Rows:    rows,
		ColumnAlignment: []table.Align{
			table.AlignLeft, table.AlignRight, table.AlignRight, table.AlignRight, table.AlignLeft,
		},
	}
}

// ProblemsToTableData converts preview problems to table format. The
// candidates column lists the competing sidecars for ambiguous entries.
func ProblemsToTableData(problems []preview.Problem) Data {
	rows := make([][]string, 0, len(problems))
	for _, p := range problems {
		rows = append(rows, []string{
			p.Path,
			p.Kind,
			table.Dash(strings.Join(p.Candidates, ", ")),
		})
	}

	return Data{
		Headers: []string{"Media", "Kind", "Candidates"},
		Rows:    rows,
	}
}

// ExportsToTableData converts export page summaries to table format.
func ExportsToTableData(exports []preview.Export) Data {
	rows := make([][]string, 0, len(exports))
	for _, e := range exports {
		rows = append(rows, []string{
			e.Volume,
			table.Dash(e.Title),
			table.FormatNumber(int64(e.Links)),
		})
	}

	return Data{
		Headers:         []string{"Volume", "Export Title", "Links"},
		Rows:            rows,
		ColumnAlignment: []table.Align{table.AlignLeft, table.AlignLeft, table.AlignRight},
	}
}

// ToolsToTableData converts external tool probes to table format. A
// dependency that was never probed shows as skipped.
func ToolsToTableData(tools []deps.Tool) Data {
	rows := make([][]string, 0, len(tools))
	for _, t := range tools {
		status := "missing"
		switch {
		case t.Status.Available:
			status = "found"
		case t.Status.CheckError == nil:
			status = "skipped"
		}
		note := t.Note
		if note == "" && t.Status.CheckError != nil {
			note = t.Status.CheckError.Error()
		}
		rows = append(rows, []string{
			t.Dependency.DisplayName,
			status,
			table.Dash(t.Status.Version),
			table.Dash(t.Status.Path),
			table.Dash(table.Truncate(note, 60)),
		})
	}

	return Data{
		Headers: []string{"Tool", "Status", "Version", "Path", "Note"},
		Rows:    rows,
	}
}

// ProbesToTableData converts capture time probes to table format.
func ProbesToTableData(probes []preview.Probe) Data {
	rows := make([][]string, 0, len(probes))
	for _, p := range probes {
		when := "-"
		if p.CaptureTime != nil {
			when = table.FormatTime(*p.CaptureTime)
		}
		rows = append(rows, []string{p.Path, when})
	}

	return Data{
		Headers: []string{"Media", "Embedded Capture Time"},
		Rows:    rows,
	}
}
