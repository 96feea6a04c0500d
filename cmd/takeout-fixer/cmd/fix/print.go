package fix

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/internal/cmd/emoji"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/internal/cmd/table"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/report"
)

// attentionLimit caps how many entries each attention section lists
// before eliding the rest. The full listing is always in the report.
const attentionLimit = 10

// progressLine renders a single self-overwriting status line. The write
// workers report completions concurrently, so updates are serialized.
type progressLine struct {
	w io.Writer

	mu    sync.Mutex
	width int
}

func newProgressLine(w io.Writer) *progressLine {
	return &progressLine{w: w}
}

// update redraws the line with the latest completed entry.
func (p *progressLine) update(done, total int, item report.Item) {
	p.mu.Lock()
	defer p.mu.Unlock()

	line := fmt.Sprintf("%d/%d %s %s", done, total, statusMark(item.Outcome), table.Truncate(item.Path, 80))

	// Pad with spaces so a shorter line fully covers the previous one.
	padding := ""
	if n := p.width - len(line); n > 0 {
		padding = strings.Repeat(" ", n)
	}
	p.width = len(line)

	fmt.Fprint(p.w, "\r"+line+padding)
}

// clear erases the progress line so regular output starts on a clean row.
func (p *progressLine) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.width == 0 {
		return
	}
	fmt.Fprint(p.w, "\r"+strings.Repeat(" ", p.width)+"\r")
	p.width = 0
}

// statusMark maps an outcome onto the symbol shown beside each entry.
func statusMark(o report.Outcome) string {
	switch o {
	case report.OutcomeFixed:
		return emoji.Success
	case report.OutcomeUpToDate, report.OutcomeDuplicate:
		return emoji.Skipped
	case report.OutcomeFailed:
		return emoji.Error
	case report.OutcomeCopied, report.OutcomeDegraded, report.OutcomeAmbiguous:
		return emoji.Warning
	default:
		return emoji.Unknown
	}
}

// displayAttention prints the entries that need a second look after a run.
// It is only shown alongside the human readable table output; json and
// yaml consumers read the same information from the report itself.
func displayAttention(w io.Writer, rep *report.Report) {
	if !rep.HasWarnings() {
		return
	}

	fmt.Fprintf(w, "\nNeeds attention:\n")

	for _, fault := range rep.VolumeFaults {
		fmt.Fprintf(w, "  %s volume: %s\n", emoji.Error, fault)
	}

	printItems(w, rep.Items, report.OutcomeFailed, "write failed")
	printItems(w, rep.Items, report.OutcomeAmbiguous, "ambiguous sidecar claims")
	printItems(w, rep.Items, report.OutcomeDegraded, "metadata not applied")
	printItems(w, rep.Items, report.OutcomeCopied, "no sidecar matched")

	if n := len(rep.UnusedSidecars); n > 0 {
		fmt.Fprintf(w, "  %s %d sidecar(s) matched no media file\n", emoji.Warning, n)
		for i, sidecar := range rep.UnusedSidecars {
			if i == attentionLimit {
				fmt.Fprintf(w, "      ... and %d more\n", n-attentionLimit)
				break
			}
			fmt.Fprintf(w, "      %s\n", sidecar)
		}
	}

	fmt.Fprintf(w, "\nFull details are in the report (use --report-file, or --format json).\n")
}

// printItems lists the entries with the given outcome, up to attentionLimit.
func printItems(w io.Writer, items []report.Item, outcome report.Outcome, label string) {
	var matched []report.Item
	for _, item := range items {
		if item.Outcome == outcome {
			matched = append(matched, item)
		}
	}
	if len(matched) == 0 {
		return
	}

	fmt.Fprintf(w, "  %s %d %s:\n", statusMark(outcome), len(matched), label)
	for i, item := range matched {
		if i == attentionLimit {
			fmt.Fprintf(w, "      ... and %d more\n", len(matched)-attentionLimit)
			break
		}
		if item.Error != "" {
			fmt.Fprintf(w, "      %s (%s)\n", item.Path, item.Error)
		} else {
			fmt.Fprintf(w, "      %s\n", item.Path)
		}
	}
}
