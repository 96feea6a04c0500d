package takeoutfixer

import (
	"github.com/rs/zerolog"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/internal/fixer"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/constants"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/errors"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/inject"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/naming"
)

// Option is a function that configures a Fixer instance.
type Option func(*options) error

// options holds the configured state for a Fixer instance.
type options struct {
	archives    []string
	destination string
	mediaRoot   string
	workers     int
	dryRun      bool
	rules       *naming.Rules
	injector    inject.Factory
	logger      *zerolog.Logger
	progress    Progress
	probeSample int
}

// defaults returns the default options.
func defaults() *options {
	return &options{
		destination: constants.DefaultDestination,
	}
}

// apply runs the given options in order, stopping at the first error.
func (o *options) apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return err
		}
	}
	return nil
}

// config maps the options onto the engine configuration.
func (o *options) config() fixer.Config {
	return fixer.Config{
		Archives:    o.archives,
		Destination: o.destination,
		MediaRoot:   o.mediaRoot,
		Workers:     o.workers,
		DryRun:      o.dryRun,
		Rules:       o.rules,
		Injector:    o.injector,
		Observer:    fixer.Observer(o.progress),
		ProbeSample: o.probeSample,
	}
}

// WithArchives sets the input volumes: archive files, directories holding
// them, or glob patterns. Repeated use appends.
func WithArchives(paths ...string) Option {
	return func(o *options) error {
		if len(paths) == 0 {
			return errors.NewValidationError("archives", paths, "at least one archive path is required")
		}
		o.archives = append(o.archives, paths...)
		return nil
	}
}

// WithDestination sets the root of the output tree.
func WithDestination(dir string) Option {
	return func(o *options) error {
		if dir == "" {
			return errors.NewValidationError("destination", dir, "destination directory cannot be empty")
		}
		o.destination = dir
		return nil
	}
}

// WithMediaRoot overrides the media folder name under the Takeout root.
// Exports from accounts in other languages localize the "Google Photos"
// folder name.
func WithMediaRoot(name string) Option {
	return func(o *options) error {
		if name == "" {
			return errors.NewValidationError("mediaRoot", name, "media root cannot be empty")
		}
		o.mediaRoot = name
		return nil
	}
}

// WithWorkers bounds the parallel write stage.
func WithWorkers(n int) Option {
	return func(o *options) error {
		if n < 1 || n > constants.MaxWorkers {
			return errors.NewValidationError("workers", n, "worker count out of range")
		}
		o.workers = n
		return nil
	}
}

// WithInjector sets the factory creating one metadata injector per write
// worker. Without it entries are copied without metadata injection.
func WithInjector(factory inject.Factory) Option {
	return func(o *options) error {
		if factory == nil {
			return errors.NewValidationError("injector", nil, "injector factory cannot be nil")
		}
		o.injector = factory
		return nil
	}
}

// WithLogger sets the logger attached to run contexts.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.NewValidationError("logger", nil, "logger cannot be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithDryRun computes the catalog, matching and report without writing
// anything.
func WithDryRun(enabled bool) Option {
	return func(o *options) error {
		o.dryRun = enabled
		return nil
	}
}

// WithProgress registers a per-entry completion callback.
func WithProgress(fn Progress) Option {
	return func(o *options) error {
		if fn == nil {
			return errors.NewValidationError("progress", nil, "progress callback cannot be nil")
		}
		o.progress = fn
		return nil
	}
}

// WithProbeSample sets how many media entries Inspect probes for an
// embedded capture time.
func WithProbeSample(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return errors.NewValidationError("probeSample", n, "probe sample must be positive")
		}
		o.probeSample = n
		return nil
	}
}

// WithRules overrides the naming rule table. Intended for tests and for
// pinning a rule table version.
func WithRules(rules *naming.Rules) Option {
	return func(o *options) error {
		if rules == nil {
			return errors.NewValidationError("rules", nil, "rules cannot be nil")
		}
		o.rules = rules
		return nil
	}
}
