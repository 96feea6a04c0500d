package fix

import (
	"github.com/spf13/cobra"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/cmd/application"
)

// NewCommand creates the fix command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var flags *Flags

	cmd := &cobra.Command{
		Use:     "fix <archive|directory|glob>...",
		GroupID: "core",
		Short:   "Reconcile an export and write the repaired library",
		Args:    cobra.MinimumNArgs(1),
		Long: `Fix runs the full reconciliation pipeline over a Takeout export:

1. Enumerate every archive volume (.zip, .tgz, .tar.gz)
2. Merge all volumes into one catalog of media files and JSON sidecars
3. Match each media file to the sidecar that describes it, undoing the
   export's truncations, counters and "-edited" renames
4. Embed the recovered capture time, GPS position and description into
   each file with exiftool and write it under the destination directory

Files without a usable sidecar are copied verbatim and listed in the
report. When several sidecars qualify equally, the file is copied
untouched rather than guessed at. A rerun over the same destination skips
outputs that are already settled.

The exit status is 0 for a clean run, 1 when some files needed attention
(unmatched, ambiguous or degraded), and 2 when the run itself failed.`,
		Example: `  takeout-fixer fix takeout-001.zip                   # Single volume
  takeout-fixer fix takeout-*.zip                     # All volumes of an export
  takeout-fixer fix ~/Downloads/takeout/              # Directory of volumes
  takeout-fixer fix export.tgz -o ~/Pictures/fixed    # Choose the destination
  takeout-fixer fix takeout-*.zip --dry-run           # Preview without writing
  takeout-fixer fix takeout-*.zip --no-exif           # Copy only, skip injection`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return ExecuteFix(ctx, app, args, flags)
		},
	}

	// Add fix-specific flags
	flags = addFlags(cmd)

	return cmd
}
