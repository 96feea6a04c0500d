// Package app provides the application context and dependency management
// for the takeout-fixer CLI. It follows idiomatic Go patterns for CLI
// applications by centralizing configuration, dependency injection, and
// lifecycle management.
package app

import (
	"context"

	"github.com/rs/zerolog"

	takeoutfixer "github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/errors"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/inject"
)

// App represents the takeout-fixer application with all its dependencies.
// It provides a centralized place for configuration, logging, and client
// construction, following the dependency injection pattern.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger
}

// New creates a new App instance with the given version information.
// The app is initialized with default configuration that can be
// customized using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	// Load configuration
	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapIO("load", "config", err)
	}
	app.config = config

	// Initialize logger
	logger := NewLogger(config)
	app.logger = &logger

	// Apply any custom options
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Exiftool returns the configured exiftool binary (empty means PATH
// lookup) and whether metadata embedding is enabled.
func (a *App) Exiftool() (string, bool) {
	return a.config.ExiftoolPath, !a.config.NoExif
}

// Fixer returns a reconciliation client built from the application
// configuration plus the given options. Clients are not cached: every run
// binds its own archive set, so each call constructs a fresh one. Options
// passed by the caller are applied after the configured ones and win.
func (a *App) Fixer(opts ...takeoutfixer.Option) (takeoutfixer.Fixer, error) {
	return takeoutfixer.New(append(a.fixerOptions(), opts...)...)
}

// fixerOptions constructs client options from the app configuration.
func (a *App) fixerOptions() []takeoutfixer.Option {
	opts := []takeoutfixer.Option{
		takeoutfixer.WithDestination(a.config.Destination),
		takeoutfixer.WithMediaRoot(a.config.MediaRoot),
		takeoutfixer.WithWorkers(a.config.Workers),
		takeoutfixer.WithLogger(a.logger),
	}

	if a.config.DryRun {
		opts = append(opts, takeoutfixer.WithDryRun(true))
	}

	// Wire the exiftool injector unless embedding is disabled. The binary
	// is resolved lazily, once per worker, so a missing exiftool surfaces
	// as a run error only when a run actually needs it.
	if !a.config.NoExif {
		binary := a.config.ExiftoolPath
		opts = append(opts, takeoutfixer.WithInjector(func() (inject.Injector, error) {
			return inject.NewExifTool(binary)
		}))
	}

	return opts
}

// Shutdown performs graceful shutdown of the application.
// It stops any running background tasks and cleans up resources.
func (a *App) Shutdown(_ context.Context) error {
	// Clients release their resources at the end of each run; nothing is
	// held at the app level beyond the logger.
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}
