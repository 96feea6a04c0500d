//go:generate gomarkdoc -e -f github -o README.md . --repository.url https://github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer --repository.default-branch master --repository.path /

// Package takeoutfixer reconciles Google Takeout photo and video exports.
// Takeout splits an export across archive volumes and renames files on the
// way out, so a media file and the JSON sidecar holding its capture time,
// position and description often end up in different volumes under
// different names. This package rebuilds that association and writes a
// repaired copy of every media file, with the sidecar metadata injected,
// into a destination tree that mirrors the album layout.
//
// The pipeline catalogs all volumes as one logical archive, matches media
// to sidecars by exporter naming rules (exact name, truncated prefix,
// edited rendition fallback), and fans the write stage out over a worker
// pool. Matching never guesses: an entry whose sidecar cannot be
// determined safely is copied verbatim and reported, because a wrong
// capture time is worse than a missing one.
//
// Example usage:
//
//	fx, err := takeoutfixer.New(
//	    takeoutfixer.WithArchives("takeout-*.zip"),
//	    takeoutfixer.WithDestination("./photos-fixed"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rep, err := fx.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("fixed %d of %d media files\n", rep.Summary.Fixed, rep.Match.Media)
//	os.Exit(rep.ExitCode())
package takeoutfixer

import (
	"context"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/internal/fixer"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/logging"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/match"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/preview"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/report"
)

// Compile-time interface check to ensure proper implementation.
var _ Fixer = (*client)(nil)

// Fixer plans and runs reconciliation over a fixed set of archive volumes.
type Fixer interface {
	// Plan catalogs the volumes and computes the matching plan without
	// writing anything.
	Plan(ctx context.Context) (*match.Plan, error)

	// Inspect assembles the read only analysis of the volumes: per volume
	// breakdowns, matching statistics, problem entries, export metadata
	// and a sampled capture time probe. Nothing is written.
	Inspect(ctx context.Context) (*preview.Preview, error)

	// Run executes the full pipeline and returns the finalized report.
	// A canceled context stops scheduling new entries; entries already in
	// flight finish completely, and the partial report is returned
	// alongside the context error.
	Run(ctx context.Context) (*report.Report, error)
}

// Progress receives one callback after each media entry reaches its
// terminal outcome. done counts completed entries, total is the number
// planned. Callbacks arrive from worker goroutines; implementations must
// be safe for concurrent use.
type Progress func(done, total int, item report.Item)

// client is the internal implementation of the Fixer interface.
type client struct {
	options *options
	engine  *fixer.Engine
}

// New creates a new Fixer instance with the given options.
func New(opts ...Option) (Fixer, error) {
	options := defaults()
	if err := options.apply(opts...); err != nil {
		return nil, err
	}

	engine, err := fixer.New(options.config())
	if err != nil {
		return nil, err
	}
	return &client{options: options, engine: engine}, nil
}

// Plan catalogs the volumes and computes the matching plan.
func (c *client) Plan(ctx context.Context) (*match.Plan, error) {
	return c.engine.Plan(c.context(ctx))
}

// Inspect assembles the read only preview of the volumes.
func (c *client) Inspect(ctx context.Context) (*preview.Preview, error) {
	return c.engine.Inspect(c.context(ctx))
}

// Run executes the full pipeline.
func (c *client) Run(ctx context.Context) (*report.Report, error) {
	return c.engine.Run(c.context(ctx))
}

// context attaches the configured logger to the caller's context.
func (c *client) context(ctx context.Context) context.Context {
	if c.options.logger != nil {
		return logging.WithLogger(ctx, c.options.logger)
	}
	return ctx
}
