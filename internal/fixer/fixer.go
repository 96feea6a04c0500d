// Package fixer runs the reconciliation pipeline: discover volumes, build
// the merged catalog, match media to sidecars, then write repaired copies
// into the destination tree. Cataloging and matching are one coherent pass
// over all volumes; only the write stage fans out over a worker pool.
//
// Every fault below the run level is recovered locally and surfaced as a
// report item, never as an aborted run. The run itself fails only when no
// volume could be read at all or the destination is unusable.
package fixer

import (
	"context"
	"io"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/archive"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/catalog"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/constants"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/errors"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/inject"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/logging"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/match"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/naming"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/preview"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/report"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/sidecar"
)

// Observer is called after each media entry reaches its terminal outcome.
// done counts completed entries, total is the number of entries planned.
// Called from worker goroutines; implementations must be safe for
// concurrent use.
type Observer func(done, total int, item report.Item)

// Config configures an Engine. Archives and Destination are required
// unless DryRun is set.
type Config struct {
	// Archives are the input arguments: volume files, directories holding
	// volumes, or glob patterns.
	Archives []string

	// Destination is the root of the output tree.
	Destination string

	// MediaRoot is the media folder name under the Takeout root,
	// constants.DefaultMediaRoot when empty.
	MediaRoot string

	// Workers bounds the parallel write stage, constants.DefaultWorkers
	// when zero.
	Workers int

	// DryRun computes the catalog, matches and report without writing
	// anything.
	DryRun bool

	// Rules is the naming rule table, DefaultRules when nil.
	Rules *naming.Rules

	// Injector creates one metadata injector per write worker. Nil means
	// bytes are copied without injection.
	Injector inject.Factory

	// Observer receives per-entry completion callbacks, nil for none.
	Observer Observer

	// ProbeSample is the number of media entries Inspect probes for an
	// embedded capture time, constants.DefaultProbeSample when zero.
	ProbeSample int
}

// Engine executes reconciliation runs for one fixed configuration.
type Engine struct {
	cfg Config
}

// New validates the configuration and returns an Engine.
func New(cfg Config) (*Engine, error) {
	if len(cfg.Archives) == 0 {
		return nil, errors.NewValidationError("archives", nil, "at least one archive path is required")
	}
	if cfg.Destination == "" && !cfg.DryRun {
		return nil, errors.NewValidationError("destination", "", "destination directory is required")
	}
	if cfg.Workers < 0 || cfg.Workers > constants.MaxWorkers {
		return nil, errors.NewValidationError("workers", cfg.Workers, "worker count out of range")
	}
	if cfg.ProbeSample < 0 {
		return nil, errors.NewValidationError("probeSample", cfg.ProbeSample, "probe sample cannot be negative")
	}
	if cfg.MediaRoot == "" {
		cfg.MediaRoot = constants.DefaultMediaRoot
	}
	if cfg.Workers == 0 {
		cfg.Workers = constants.DefaultWorkers
	}
	if cfg.ProbeSample == 0 {
		cfg.ProbeSample = constants.DefaultProbeSample
	}
	if cfg.Rules == nil {
		cfg.Rules = naming.DefaultRules()
	}
	return &Engine{cfg: cfg}, nil
}

// Plan computes the matching plan without writing anything. The catalog is
// released before returning, so entries in the plan can no longer be
// opened.
func (e *Engine) Plan(ctx context.Context) (*match.Plan, error) {
	cat, err := e.buildCatalog(ctx)
	if err != nil {
		return nil, err
	}
	defer cat.Close()
	return e.buildPlan(cat), nil
}

// Inspect builds the catalog and matching plan and assembles the read
// only preview document. Probing happens while the catalog is still open;
// nothing is written.
func (e *Engine) Inspect(ctx context.Context) (*preview.Preview, error) {
	cat, err := e.buildCatalog(ctx)
	if err != nil {
		return nil, err
	}
	defer cat.Close()
	return preview.Build(ctx, cat, e.buildPlan(cat), preview.Options{
		ProbeSample: e.cfg.ProbeSample,
	}), nil
}

// Run executes the full pipeline and returns the finalized report. A
// canceled context stops the scheduling of new entries; entries already in
// flight finish to their rename boundary, and the context error is
// returned alongside the partial report.
func (e *Engine) Run(ctx context.Context) (*report.Report, error) {
	logger := logging.FromContext(ctx)
	builder := report.NewBuilder(constants.ToolName)
	builder.SetDryRun(e.cfg.DryRun)
	builder.SetRulesVersion(e.cfg.Rules.Version())
	ctx = logging.WithRun(ctx, builder.RunID())

	cat, err := e.buildCatalog(ctx)
	if err != nil {
		return nil, err
	}
	defer cat.Close()
	for _, verr := range cat.VolumeErrors {
		builder.AddVolumeFault(verr)
	}

	plan := e.buildPlan(cat)
	builder.SetStats(cat.Stats, plan.Stats)
	for _, g := range plan.UnusedSidecars {
		builder.AddUnusedSidecar(g.Path)
	}
	logger.Info().
		Int("media", plan.Stats.Media).
		Int("matched", plan.Stats.Matched).
		Int("unmatched", plan.Stats.Unmatched).
		Int("ambiguous", plan.Stats.Ambiguous).
		Msg("Matching complete")

	outputs, err := e.write(ctx, plan, builder)
	if err != nil {
		return nil, err
	}

	rep := builder.Finalize()
	if !e.cfg.DryRun {
		if err := outputs.Manifest(rep.RunID, rep.RulesVersion).Save(e.cfg.Destination); err != nil {
			logger.Warn().Err(err).Msg("Could not save run manifest; the next run will rewrite all outputs")
		}
	}
	return rep, ctx.Err()
}

// buildCatalog discovers the input volumes and merges their entries.
func (e *Engine) buildCatalog(ctx context.Context) (*catalog.Catalog, error) {
	paths, err := archive.Discover(e.cfg.Archives)
	if err != nil {
		return nil, err
	}
	return catalog.Build(ctx, paths, catalog.Options{
		MediaRoot:   e.cfg.MediaRoot,
		Rules:       e.cfg.Rules,
		Concurrency: e.cfg.Workers,
	})
}

// buildPlan matches the catalog. The title probe lets the matcher settle
// truncated prefix collisions by what the sidecar itself claims to
// describe; it reads lazily and only for contested sidecars.
func (e *Engine) buildPlan(cat *catalog.Catalog) *match.Plan {
	return match.Build(cat, match.Options{
		TitleOf: func(item catalog.Item) string {
			rc, err := item.Entry.Open()
			if err != nil {
				return ""
			}
			defer rc.Close()
			data, err := io.ReadAll(io.LimitReader(rc, constants.SidecarPrefetchLimit))
			if err != nil {
				return ""
			}
			doc, _ := sidecar.ParseDocument(data)
			return doc.Title
		},
	})
}

// write runs the parallel write stage. Exactly Workers goroutines consume
// the planned pairs; each owns one injector for its lifetime. Faults
// inside an entry are recovered and reported, so workers only fail when an
// injector cannot be created at all.
func (e *Engine) write(ctx context.Context, plan *match.Plan, builder *report.Builder) (*ManifestEntries, error) {
	st := &runState{
		engine:  e,
		builder: builder,
		next:    NewManifestEntries(),
		total:   len(plan.Pairs),
	}
	if !e.cfg.DryRun {
		prev, err := LoadManifest(e.cfg.Destination)
		if err != nil {
			logging.FromContext(ctx).Warn().Err(err).Msg("Ignoring unreadable run manifest")
			prev = nil
		}
		st.prev = prev
	}

	jobs := make(chan match.Pair)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < e.cfg.Workers; w++ {
		g.Go(func() error {
			inj, err := e.newInjector()
			if err != nil {
				return err
			}
			defer inj.Close()

			// Entries already handed to this worker finish completely,
			// including their rename, even when the run is canceled.
			entryCtx := context.WithoutCancel(ctx)
			for pair := range jobs {
				st.process(entryCtx, inj, pair)
			}
			return nil
		})
	}

feed:
	for _, pair := range plan.Pairs {
		select {
		case <-gctx.Done():
			break feed
		case jobs <- pair:
		}
	}
	close(jobs)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return st.next, nil
}

// newInjector creates this worker's injector. Dry runs and nil factories
// use the passthrough so the pipeline shape stays identical.
func (e *Engine) newInjector() (inject.Injector, error) {
	if e.cfg.DryRun || e.cfg.Injector == nil {
		return inject.NewPassthrough(), nil
	}
	return e.cfg.Injector()
}

// runState is the shared state of one write stage. The builder and
// manifest collector handle their own synchronization; done is the only
// counter workers race on.
type runState struct {
	engine  *Engine
	builder *report.Builder
	prev    *Manifest
	next    *ManifestEntries
	total   int
	done    atomic.Int64
}

// finish appends the item and fires the observer callback.
func (s *runState) finish(item report.Item) {
	s.builder.Append(item)
	done := int(s.done.Add(1))
	if s.engine.cfg.Observer != nil {
		s.engine.cfg.Observer(done, s.total, item)
	}
}
