// Package report accumulates the outcome of a reconciliation run into a
// machine readable document. Workers append items concurrently; the
// finalized report is sorted and summarized so the same run always
// serializes identically.
package report

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/catalog"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/match"
)

// Outcome classifies what happened to one media entry.
type Outcome string

// Entry outcomes.
const (
	// OutcomeFixed means metadata was injected and the entry written.
	OutcomeFixed Outcome = "fixed"

	// OutcomeCopied means the entry was written verbatim because no
	// sidecar matched.
	OutcomeCopied Outcome = "copied"

	// OutcomeDegraded means a sidecar matched but its metadata could not
	// be applied, so the entry was written verbatim.
	OutcomeDegraded Outcome = "degraded"

	// OutcomeAmbiguous means competing sidecar claims could not be
	// settled; the entry was written verbatim rather than guessed at.
	OutcomeAmbiguous Outcome = "ambiguous"

	// OutcomeUpToDate means a previous run already wrote this entry and
	// the destination still verifies.
	OutcomeUpToDate Outcome = "up-to-date"

	// OutcomeDuplicate means another volume already provided this entry.
	OutcomeDuplicate Outcome = "duplicate"

	// OutcomeFailed means reading or writing the entry failed.
	OutcomeFailed Outcome = "failed"
)

// IsWarning reports whether the outcome leaves the reconciliation
// incomplete for its entry.
func (o Outcome) IsWarning() bool {
	switch o {
	case OutcomeCopied, OutcomeDegraded, OutcomeAmbiguous, OutcomeFailed:
		return true
	default:
		return false
	}
}

// Item is the outcome record for one media entry.
type Item struct {
	Path       string   `json:"path" yaml:"path"`
	Volume     string   `json:"volume" yaml:"volume"`
	Album      string   `json:"album,omitempty" yaml:"album,omitempty"`
	Output     string   `json:"output,omitempty" yaml:"output,omitempty"`
	Outcome    Outcome  `json:"outcome" yaml:"outcome"`
	Strategy   string   `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Sidecar    string   `json:"sidecar,omitempty" yaml:"sidecar,omitempty"`
	Candidates []string `json:"candidates,omitempty" yaml:"candidates,omitempty"`
	Error      string   `json:"error,omitempty" yaml:"error,omitempty"`
	Bytes      int64    `json:"bytes,omitempty" yaml:"bytes,omitempty"`
}

// Summary tallies outcomes across a run.
type Summary struct {
	Fixed      int `json:"fixed" yaml:"fixed"`
	Copied     int `json:"copied" yaml:"copied"`
	Degraded   int `json:"degraded" yaml:"degraded"`
	Ambiguous  int `json:"ambiguous" yaml:"ambiguous"`
	UpToDate   int `json:"up_to_date" yaml:"up_to_date"`
	Duplicates int `json:"duplicates" yaml:"duplicates"`
	Failed     int `json:"failed" yaml:"failed"`
	Warnings   int `json:"warnings" yaml:"warnings"`
}

// Report is the full record of one run.
type Report struct {
	RunID        string    `json:"run_id" yaml:"run_id"`
	Tool         string    `json:"tool" yaml:"tool"`
	RulesVersion string    `json:"rules_version" yaml:"rules_version"`
	StartedAt    time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt   time.Time `json:"finished_at" yaml:"finished_at"`
	DryRun       bool      `json:"dry_run" yaml:"dry_run"`

	Catalog catalog.Stats `json:"catalog" yaml:"catalog"`
	Match   match.Stats   `json:"match" yaml:"match"`

	Items          []Item   `json:"items" yaml:"items"`
	UnusedSidecars []string `json:"unused_sidecars,omitempty" yaml:"unused_sidecars,omitempty"`
	VolumeFaults   []string `json:"volume_faults,omitempty" yaml:"volume_faults,omitempty"`

	Summary Summary `json:"summary" yaml:"summary"`
}

// HasWarnings reports whether anything in the run needs a second look.
func (r *Report) HasWarnings() bool {
	return r.Summary.Warnings > 0 || len(r.UnusedSidecars) > 0 || len(r.VolumeFaults) > 0
}

// ExitCode maps the report to the process exit status: 0 for a clean run,
// 1 when the run finished with warnings.
func (r *Report) ExitCode() int {
	if r.HasWarnings() {
		return 1
	}
	return 0
}

// Builder accumulates a report. Append is safe for concurrent use by the
// write stage workers.
type Builder struct {
	mu     sync.Mutex
	report Report
	final  bool
}

// NewBuilder starts a report for a new run.
func NewBuilder(tool string) *Builder {
	return &Builder{
		report: Report{
			RunID:     uuid.NewString(),
			Tool:      tool,
			StartedAt: time.Now().UTC(),
		},
	}
}

// RunID returns the run identifier.
func (b *Builder) RunID() string {
	return b.report.RunID
}

// SetDryRun marks the report as describing a dry run.
func (b *Builder) SetDryRun(dryRun bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.report.DryRun = dryRun
}

// SetRulesVersion records the naming rule table version used.
func (b *Builder) SetRulesVersion(v string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.report.RulesVersion = v
}

// SetStats records the catalog and matching stage summaries.
func (b *Builder) SetStats(cat catalog.Stats, m match.Stats) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.report.Catalog = cat
	b.report.Match = m
}

// Append records one entry outcome.
func (b *Builder) Append(item Item) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.report.Items = append(b.report.Items, item)
}

// AddUnusedSidecar records a sidecar no media claimed.
func (b *Builder) AddUnusedSidecar(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.report.UnusedSidecars = append(b.report.UnusedSidecars, path)
}

// AddVolumeFault records a volume that could not be read.
func (b *Builder) AddVolumeFault(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.report.VolumeFaults = append(b.report.VolumeFaults, err.Error())
}

// Finalize stamps the end time, orders items by path and tallies the
// summary. The builder must not be appended to afterwards.
func (b *Builder) Finalize() *Report {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.final {
		return &b.report
	}
	b.final = true
	b.report.FinishedAt = time.Now().UTC()

	sortItems(b.report.Items)

	s := &b.report.Summary
	for _, item := range b.report.Items {
		switch item.Outcome {
		case OutcomeFixed:
			s.Fixed++
		case OutcomeCopied:
			s.Copied++
		case OutcomeDegraded:
			s.Degraded++
		case OutcomeAmbiguous:
			s.Ambiguous++
		case OutcomeUpToDate:
			s.UpToDate++
		case OutcomeDuplicate:
			s.Duplicates++
		case OutcomeFailed:
			s.Failed++
		}
		if item.Outcome.IsWarning() {
			s.Warnings++
		}
	}
	return &b.report
}
