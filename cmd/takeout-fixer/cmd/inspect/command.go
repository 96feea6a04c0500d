package inspect

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	takeoutfixer "github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer"
)

// AppContext defines the interface that the inspect command needs from the
// app. This allows for better testability and decoupling from the full app.
type AppContext interface {
	Fixer(opts ...takeoutfixer.Option) (takeoutfixer.Fixer, error)
	Logger() *zerolog.Logger
	Exiftool() (binary string, enabled bool)
	OutputFormat() string
}

// NewCommand creates the inspect command with app dependencies.
func NewCommand(app AppContext) *cobra.Command {
	var flags *Flags

	cmd := &cobra.Command{
		Use:     "inspect <archive|directory|glob>...",
		GroupID: "core",
		Short:   "Analyze an export without writing anything",
		Args:    cobra.MinimumNArgs(1),
		Long: `Inspect catalogs the given volumes and computes the matching plan a fix
run would follow, without writing a single file.

The analysis shows the entry breakdown of every volume, catalog and
matching statistics, the media files that would be copied verbatim
because no sidecar could be matched safely, export metadata from each
volume's bundled summary page, and a sampled probe of the capture times
the media files already embed. An unmatched file that embeds its own
capture time loses nothing when its sidecar stays lost.`,
		Example: `  takeout-fixer inspect takeout-*.zip            # Analyze a full export
  takeout-fixer inspect ~/Downloads/takeout/     # Directory of volumes
  takeout-fixer inspect takeout-*.zip --probe 50 # Probe more media files
  takeout-fixer inspect export.tgz --format json # Machine readable analysis`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ExecuteInspect(cmd.Context(), app, args, flags)
		},
	}

	flags = addFlags(cmd)

	return cmd
}
