package fix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	takeoutfixer "github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/cmd/application"
	pkgerrors "github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/errors"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/match"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/preview"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/report"
)

// fakeFixer returns canned results without touching any archive.
type fakeFixer struct {
	plan    *match.Plan
	preview *preview.Preview
	report  *report.Report
	planErr error
	runErr  error
}

func (f *fakeFixer) Plan(_ context.Context) (*match.Plan, error) { return f.plan, f.planErr }

func (f *fakeFixer) Inspect(_ context.Context) (*preview.Preview, error) {
	return f.preview, f.planErr
}

func (f *fakeFixer) Run(_ context.Context) (*report.Report, error) { return f.report, f.runErr }

func TestExecuteFixCleanRun(t *testing.T) {
	var gotOpts int
	mock := &application.Mock{
		OutputFormatFunc: func() string { return "json" },
		FixerFunc: func(opts ...takeoutfixer.Option) (takeoutfixer.Fixer, error) {
			gotOpts = len(opts)
			return &fakeFixer{report: &report.Report{
				RunID:   "run-1",
				Tool:    "takeout-fixer",
				Summary: report.Summary{Fixed: 2},
			}}, nil
		},
	}

	flags := &Flags{NoProgress: true}
	err := ExecuteFix(context.Background(), mock, []string{"takeout-001.zip"}, flags)
	if err != nil {
		t.Fatalf("ExecuteFix() error = %v, want nil", err)
	}

	// Archives only; progress is suppressed, everything else is unset.
	if gotOpts != 1 {
		t.Errorf("fixer received %d options, want 1", gotOpts)
	}
}

func TestExecuteFixWarningsExit(t *testing.T) {
	mock := &application.Mock{
		OutputFormatFunc: func() string { return "json" },
		FixerFunc: func(_ ...takeoutfixer.Option) (takeoutfixer.Fixer, error) {
			return &fakeFixer{report: &report.Report{
				RunID:   "run-2",
				Summary: report.Summary{Fixed: 1, Copied: 1, Warnings: 1},
			}}, nil
		},
	}

	err := ExecuteFix(context.Background(), mock, []string{"a.zip"}, &Flags{NoProgress: true})
	if !errors.Is(err, application.ErrExitWithWarnings) {
		t.Errorf("ExecuteFix() error = %v, want ErrExitWithWarnings", err)
	}
}

func TestExecuteFixRunError(t *testing.T) {
	wantErr := errors.New("volume unreadable")
	mock := &application.Mock{
		OutputFormatFunc: func() string { return "json" },
		FixerFunc: func(_ ...takeoutfixer.Option) (takeoutfixer.Fixer, error) {
			return &fakeFixer{runErr: wantErr}, nil
		},
	}

	err := ExecuteFix(context.Background(), mock, []string{"a.zip"}, &Flags{NoProgress: true})
	if !errors.Is(err, wantErr) {
		t.Errorf("ExecuteFix() error = %v, want %v", err, wantErr)
	}
}

func TestExecuteFixMissingTool(t *testing.T) {
	// A worker that cannot start its injector fails the run with an
	// injection fault; the error must survive the install hint.
	runErr := fmt.Errorf("%w: exiftool not found", pkgerrors.ErrInjectionFault)
	mock := &application.Mock{
		OutputFormatFunc: func() string { return "json" },
		FixerFunc: func(_ ...takeoutfixer.Option) (takeoutfixer.Fixer, error) {
			return &fakeFixer{runErr: runErr}, nil
		},
	}

	err := ExecuteFix(context.Background(), mock, []string{"a.zip"}, &Flags{NoProgress: true})
	if !errors.Is(err, pkgerrors.ErrInjectionFault) {
		t.Errorf("ExecuteFix() error = %v, want the injection fault", err)
	}
}

func TestExecuteFixFixerError(t *testing.T) {
	wantErr := errors.New("no archives")
	mock := &application.Mock{
		OutputFormatFunc: func() string { return "json" },
		FixerFunc: func(_ ...takeoutfixer.Option) (takeoutfixer.Fixer, error) {
			return nil, wantErr
		},
	}

	err := ExecuteFix(context.Background(), mock, []string{"a.zip"}, &Flags{NoProgress: true})
	if !errors.Is(err, wantErr) {
		t.Errorf("ExecuteFix() error = %v, want %v", err, wantErr)
	}
}

func TestExecuteFixInvalidFormat(t *testing.T) {
	fixerCalled := false
	mock := &application.Mock{
		OutputFormatFunc: func() string { return "xml" },
		FixerFunc: func(_ ...takeoutfixer.Option) (takeoutfixer.Fixer, error) {
			fixerCalled = true
			return &fakeFixer{report: &report.Report{}}, nil
		},
	}

	err := ExecuteFix(context.Background(), mock, []string{"a.zip"}, &Flags{NoProgress: true})
	if err == nil {
		t.Fatal("ExecuteFix() error = nil, want format error")
	}
	if fixerCalled {
		t.Error("fixer was constructed despite an invalid output format")
	}
}

func TestExecuteFixInvalidReportFormat(t *testing.T) {
	mock := &application.Mock{
		OutputFormatFunc: func() string { return "json" },
	}

	flags := &Flags{NoProgress: true, ReportFile: "report.out", ReportFormat: "xml"}
	err := ExecuteFix(context.Background(), mock, []string{"a.zip"}, flags)
	if err == nil {
		t.Fatal("ExecuteFix() error = nil, want report format error")
	}
}

func TestExecuteFixSavesReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	mock := &application.Mock{
		OutputFormatFunc: func() string { return "json" },
		FixerFunc: func(_ ...takeoutfixer.Option) (takeoutfixer.Fixer, error) {
			return &fakeFixer{report: &report.Report{
				RunID:   "run-3",
				Tool:    "takeout-fixer",
				Summary: report.Summary{Fixed: 1},
			}}, nil
		},
	}

	flags := &Flags{NoProgress: true, ReportFile: path}
	if err := ExecuteFix(context.Background(), mock, []string{"a.zip"}, flags); err != nil {
		t.Fatalf("ExecuteFix() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved report: %v", err)
	}
	var saved report.Report
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("saved report is not valid JSON: %v", err)
	}
	if saved.RunID != "run-3" {
		t.Errorf("saved RunID = %q, want %q", saved.RunID, "run-3")
	}
}
