// Package version provides the version command implementation.
package version

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/cmd/application"
)

// NewCommand creates the version command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("takeout-fixer %s\n", app.Version())

			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				cmd.Printf("  commit:   %s\n", app.Commit())
				cmd.Printf("  built:    %s\n", app.Date())
				cmd.Printf("  built by: %s\n", app.BuiltBy())
				cmd.Printf("  go:       %s\n", runtime.Version())
				cmd.Printf("  platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			}
		},
	}
}
