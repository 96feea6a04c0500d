// Package application provides the application interface for takeout-fixer commands.
//
// The Application interface defines the contract between the application layer and
// command implementations, enabling dependency injection and testability.
//
// Design Principles:
//   - Accept interfaces, return structs (Go proverb)
//   - Define interfaces where they're used, not where they're implemented
//   - Keep interfaces small and focused
//
// Usage in Commands:
//
//	import (
//	    "github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/cmd/application"
//	)
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            fixer, err := app.Fixer(takeoutfixer.WithArchives(args...))
//	            if err != nil {
//	                return err
//	            }
//	            rep, err := fixer.Run(cmd.Context())
//	            if err != nil {
//	                return err
//	            }
//	            // ... render rep
//	            return nil
//	        },
//	    }
//	}
//
// Testing with Mocks:
//
//	mock := &application.Mock{
//	    FixerFunc: func(opts ...takeoutfixer.Option) (takeoutfixer.Fixer, error) {
//	        return testFixer, nil
//	    },
//	    LoggerFunc: func() *zerolog.Logger {
//	        logger := zerolog.Nop()
//	        return &logger
//	    },
//	}
//	cmd := NewCommand(mock)
//	// ... test command behavior
package application

import (
	"github.com/rs/zerolog"

	takeoutfixer "github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer"
)

// Application provides the application interface that commands need.
// The App struct from cmd/takeout-fixer/app automatically implements this
// interface, providing dependency injection for commands while maintaining
// testability.
//
// Commands should accept this interface rather than the concrete App type,
// allowing for easier testing with mock implementations.
type Application interface {
	// Fixer returns a reconciliation client built from the application
	// configuration plus the given options. Options passed here are applied
	// after the configured ones, so flag-derived options win.
	Fixer(opts ...takeoutfixer.Option) (takeoutfixer.Fixer, error)

	// Logger returns the configured logger instance.
	// Commands should use this for all logging operations.
	Logger() *zerolog.Logger

	// Exiftool returns the configured exiftool binary (empty means PATH
	// lookup) and whether metadata embedding is enabled at all.
	Exiftool() (binary string, enabled bool)

	// OutputFormat returns the configured output format (table, json, yaml).
	// Commands that support different output formats should use this.
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
