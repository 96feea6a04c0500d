package fix

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/internal/cmd/emoji"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/report"
)

func TestStatusMark(t *testing.T) {
	tests := []struct {
		outcome report.Outcome
		want    string
	}{
		{report.OutcomeFixed, emoji.Success},
		{report.OutcomeUpToDate, emoji.Skipped},
		{report.OutcomeDuplicate, emoji.Skipped},
		{report.OutcomeFailed, emoji.Error},
		{report.OutcomeCopied, emoji.Warning},
		{report.OutcomeDegraded, emoji.Warning},
		{report.OutcomeAmbiguous, emoji.Warning},
		{report.Outcome("bogus"), emoji.Unknown},
	}

	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			if got := statusMark(tt.outcome); got != tt.want {
				t.Errorf("statusMark(%q) = %q, want %q", tt.outcome, got, tt.want)
			}
		})
	}
}

func TestProgressLine(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressLine(&buf)

	p.update(1, 10, report.Item{Path: "album/photo-long-name.jpg", Outcome: report.OutcomeFixed})
	first := buf.String()
	if !strings.HasPrefix(first, "\r") {
		t.Error("update should start with a carriage return")
	}
	if !strings.Contains(first, "1/10") {
		t.Errorf("missing counter in %q", first)
	}
	if !strings.Contains(first, "album/photo-long-name.jpg") {
		t.Errorf("missing path in %q", first)
	}

	// A shorter line must be padded so it fully covers the longer one.
	buf.Reset()
	p.update(2, 10, report.Item{Path: "a.jpg", Outcome: report.OutcomeFixed})
	second := strings.TrimPrefix(buf.String(), "\r")
	if len(second) < len(first)-1 {
		t.Errorf("short update not padded: %d < %d", len(second), len(first)-1)
	}
	if !strings.HasSuffix(second, " ") {
		t.Errorf("short update should end in padding, got %q", second)
	}

	// clear erases the current line and resets.
	buf.Reset()
	p.clear()
	cleared := buf.String()
	if !strings.HasPrefix(cleared, "\r") || !strings.HasSuffix(cleared, "\r") {
		t.Errorf("clear should wrap spaces in carriage returns, got %q", cleared)
	}
	visible := len(strings.TrimRight(second, " "))
	if strings.TrimRight(strings.TrimLeft(cleared, "\r"), "\r") != strings.Repeat(" ", visible) {
		t.Errorf("clear did not cover the previous line, got %q", cleared)
	}

	// clear with nothing drawn writes nothing.
	buf.Reset()
	p.clear()
	if buf.Len() != 0 {
		t.Errorf("clear on an empty line wrote %q", buf.String())
	}
}

func TestProgressLineTruncatesLongPaths(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressLine(&buf)

	p.update(1, 1, report.Item{
		Path:    strings.Repeat("x", 200) + ".jpg",
		Outcome: report.OutcomeFixed,
	})
	if strings.Contains(buf.String(), strings.Repeat("x", 100)) {
		t.Error("long path was not truncated")
	}
	if !strings.Contains(buf.String(), "...") {
		t.Error("truncated path should carry an ellipsis")
	}
}

func TestDisplayAttentionCleanRun(t *testing.T) {
	var buf bytes.Buffer
	displayAttention(&buf, &report.Report{
		Summary: report.Summary{Fixed: 3},
	})
	if buf.Len() != 0 {
		t.Errorf("clean run should print nothing, got %q", buf.String())
	}
}

func TestDisplayAttention(t *testing.T) {
	rep := &report.Report{
		Items: []report.Item{
			{Path: "album/a.jpg", Outcome: report.OutcomeFixed},
			{Path: "album/b.jpg", Outcome: report.OutcomeFailed, Error: "disk full"},
			{Path: "album/c.jpg", Outcome: report.OutcomeCopied},
			{Path: "album/d.jpg", Outcome: report.OutcomeAmbiguous},
		},
		UnusedSidecars: []string{"album/e.jpg.json"},
		VolumeFaults:   []string{"takeout-007.zip: bad central directory"},
		Summary:        report.Summary{Fixed: 1, Copied: 1, Ambiguous: 1, Failed: 1, Warnings: 3},
	}

	var buf bytes.Buffer
	displayAttention(&buf, rep)
	out := buf.String()

	for _, want := range []string{
		"Needs attention:",
		"takeout-007.zip: bad central directory",
		"write failed",
		"album/b.jpg (disk full)",
		"ambiguous sidecar claims",
		"no sidecar matched",
		"album/e.jpg.json",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// Healthy entries never show up.
	if strings.Contains(out, "album/a.jpg") {
		t.Errorf("fixed entry listed in attention output:\n%s", out)
	}
}

func TestDisplayAttentionElidesLongLists(t *testing.T) {
	rep := &report.Report{Summary: report.Summary{Warnings: attentionLimit + 5}}
	for i := 0; i < attentionLimit+5; i++ {
		rep.Items = append(rep.Items, report.Item{
			Path:    fmt.Sprintf("album/img-%03d.jpg", i),
			Outcome: report.OutcomeCopied,
		})
	}

	var buf bytes.Buffer
	displayAttention(&buf, rep)
	out := buf.String()

	if !strings.Contains(out, "... and 5 more") {
		t.Errorf("long list not elided:\n%s", out)
	}
	if strings.Contains(out, fmt.Sprintf("img-%03d", attentionLimit+1)) {
		t.Errorf("entries beyond the limit were listed:\n%s", out)
	}
}
