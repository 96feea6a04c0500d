// Package inject embeds reconciled metadata into written media files. The
// production implementation drives an external exiftool process; a
// passthrough implementation stands in when embedding is not wanted.
//
// Injectors are not safe for concurrent use. The write stage creates one
// injector per worker through a Factory.
package inject

import (
	"context"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/sidecar"
)

// Injector embeds a sidecar record into a media file in place.
type Injector interface {
	// Name identifies the injector in logs and reports.
	Name() string

	// Inject applies the record to the file at path. An empty record is a
	// no-op. Implementations honor ctx cancellation between operations.
	Inject(ctx context.Context, path string, rec sidecar.Record) error

	// Close releases the injector.
	Close() error
}

// Factory creates one injector, called once per write worker.
type Factory func() (Injector, error)

// Passthrough is an Injector that accepts every record without touching
// the file. It keeps the pipeline shape intact in tests and when callers
// only want the copy and report stages.
type Passthrough struct{}

// NewPassthrough returns the no-op injector.
func NewPassthrough() *Passthrough {
	return &Passthrough{}
}

// Name identifies the injector.
func (*Passthrough) Name() string { return "passthrough" }

// Inject accepts the record without touching the file.
func (*Passthrough) Inject(ctx context.Context, _ string, _ sidecar.Record) error {
	return ctx.Err()
}

// Close releases nothing.
func (*Passthrough) Close() error { return nil }
