package inspect

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/internal/cmd/output"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/internal/deps"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/preview"
)

// ExecuteInspect runs the read only analysis and renders it.
func ExecuteInspect(ctx context.Context, app AppContext, paths []string, flags *Flags) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	if format == "" {
		format = output.DetectFormat("")
	}

	fixer, err := app.Fixer(BuildInspectOptions(paths, flags)...)
	if err != nil {
		return err
	}

	pv, err := fixer.Inspect(ctx)
	if err != nil {
		return err
	}

	if format != output.FormatTable {
		return output.NewFormatter(format).Format(os.Stdout, pv)
	}
	if err := renderPreview(os.Stdout, pv); err != nil {
		return err
	}
	return renderTools(ctx, os.Stdout, app)
}

// renderTools reports on the external tools a fix run would need. The
// probe lives here rather than in the engine: tool availability is a
// property of this machine, not of the export under analysis.
func renderTools(ctx context.Context, w io.Writer, app AppContext) error {
	binary, enabled := app.Exiftool()
	tool := deps.Tool{Dependency: deps.Exiftool(binary)}
	if enabled {
		tool.Status = deps.Check(ctx, tool.Dependency)
		if !tool.Status.Available {
			tool.Note = "fix runs will fail; install it or use --no-exif"
		}
	} else {
		tool.Note = "metadata embedding disabled by configuration"
	}

	fmt.Fprintln(w, "Tools")
	return output.NewFormatter(output.FormatTable).Format(w, output.ToolsToTableData([]deps.Tool{tool}))
}

// renderPreview writes the analysis as titled table sections. Sections
// with nothing to say are skipped.
func renderPreview(w io.Writer, pv *preview.Preview) error {
	formatter := output.NewFormatter(output.FormatTable)

	sections := []struct {
		title string
		data  output.Data
		show  bool
	}{
		{"Volumes", output.VolumesToTableData(pv.Volumes), len(pv.Volumes) > 0},
		{"Catalog", output.CatalogStatsToTableData(pv.Catalog), true},
		{"Matching", output.MatchStatsToTableData(pv.Match), true},
		{"Needs attention", output.ProblemsToTableData(pv.Problems), len(pv.Problems) > 0},
		{"Export pages", output.ExportsToTableData(pv.Exports), len(pv.Exports) > 0},
		{"Capture time probe", output.ProbesToTableData(pv.Probes), len(pv.Probes) > 0},
	}

	for _, section := range sections {
		if !section.show {
			continue
		}
		fmt.Fprintf(w, "%s\n", section.title)
		if err := formatter.Format(w, section.data); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	if n := len(pv.UnusedSidecars); n > 0 {
		fmt.Fprintf(w, "%d sidecar(s) matched no media file; run fix to see them in the report.\n", n)
	}
	return nil
}
