package fix

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	takeoutfixer "github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/cmd/application"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/internal/cmd/output"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/internal/deps"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/errors"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/save"
)

// ExecuteFix orchestrates the complete reconciliation run.
func ExecuteFix(ctx context.Context, app application.Application, paths []string, flags *Flags) error {
	logger := app.Logger()

	// Resolve the output format up front so a bad flag fails before any
	// archive is touched.
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	if format == "" {
		format = output.DetectFormat("")
	}
	var saveFormat save.Format
	if flags.ReportFile != "" {
		if saveFormat, err = save.ParseFormat(flags.ReportFormat); err != nil {
			return err
		}
	}

	opts := BuildFixOptions(paths, flags)

	// Progress on stderr, for interactive runs only.
	var progress *progressLine
	if showProgress(flags) {
		progress = newProgressLine(os.Stderr)
		opts = append(opts, takeoutfixer.WithProgress(progress.update))
	}

	fixer, err := app.Fixer(opts...)
	if err != nil {
		return err
	}

	rep, runErr := fixer.Run(ctx)
	if progress != nil {
		progress.clear()
	}
	if runErr != nil {
		// An injection fault at run level means the tool could not start
		// at all, almost always because exiftool is not installed.
		if errors.IsInjectionFault(runErr) {
			fmt.Fprint(os.Stderr, deps.Instructions(deps.Exiftool(flags.ExiftoolPath)))
		}
		return runErr
	}

	// Render the report to stdout in the requested format.
	if err := output.FormatReport(os.Stdout, rep, format); err != nil {
		return err
	}

	// Persist the full report when asked.
	if flags.ReportFile != "" {
		if err := save.Report(rep, save.WithPath(flags.ReportFile), save.WithFormat(saveFormat)); err != nil {
			return err
		}
		logger.Info().Str("path", flags.ReportFile).Msg("Report saved")
	}

	// In table mode the per-file detail lives only in the report struct,
	// so surface what needs attention on stderr.
	if format == output.FormatTable {
		displayAttention(os.Stderr, rep)
	}

	if rep.HasWarnings() {
		return application.ErrExitWithWarnings
	}
	return nil
}

// showProgress reports whether a progress line should be drawn.
func showProgress(flags *Flags) bool {
	if flags.NoProgress {
		return false
	}
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}
