// Package inspect provides the inspect command implementation.
package inspect

import (
	"github.com/spf13/cobra"

	takeoutfixer "github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer"
)

// Flags holds the inspect command flags.
type Flags struct {
	MediaRoot string
	Workers   int
	Probe     int
}

// addFlags registers the inspect-specific flags and returns the bound
// struct.
func addFlags(cmd *cobra.Command) *Flags {
	flags := &Flags{}

	cmd.Flags().StringVar(&flags.MediaRoot, "media-root", "",
		"Media folder name inside the export (default \"Google Photos\")")
	cmd.Flags().IntVarP(&flags.Workers, "workers", "w", 0,
		"Parallel volume enumeration (default 4)")
	cmd.Flags().IntVar(&flags.Probe, "probe", 0,
		"Media entries sampled for an embedded capture time (default 10)")

	return flags
}

// BuildInspectOptions creates client options from the archive paths and
// flags. Only changed flags become options, so application configuration
// keeps covering the rest.
func BuildInspectOptions(paths []string, flags *Flags) []takeoutfixer.Option {
	opts := []takeoutfixer.Option{takeoutfixer.WithArchives(paths...)}

	if flags.MediaRoot != "" {
		opts = append(opts, takeoutfixer.WithMediaRoot(flags.MediaRoot))
	}
	if flags.Workers > 0 {
		opts = append(opts, takeoutfixer.WithWorkers(flags.Workers))
	}
	if flags.Probe > 0 {
		opts = append(opts, takeoutfixer.WithProbeSample(flags.Probe))
	}

	return opts
}
