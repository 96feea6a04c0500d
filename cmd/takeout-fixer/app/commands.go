package app

import (
	"github.com/spf13/cobra"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/cmd/takeout-fixer/cmd/fix"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/cmd/takeout-fixer/cmd/inspect"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/cmd/takeout-fixer/cmd/version"
)

// registerCommands registers all subcommands with the root command.
// This is where we wire up all the command handlers.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(fix.NewCommand(a))
	rootCmd.AddCommand(inspect.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(version.NewCommand(a))
}
