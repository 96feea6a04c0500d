// Package fix provides the fix command implementation.
package fix

import (
	"github.com/spf13/cobra"

	takeoutfixer "github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/inject"
)

// Flags holds the fix command flags.
type Flags struct {
	Output       string
	MediaRoot    string
	Workers      int
	DryRun       bool
	NoExif       bool
	ExiftoolPath string
	NoProgress   bool
	ReportFile   string
	ReportFormat string
}

// addFlags registers the fix-specific flags and returns the bound struct.
func addFlags(cmd *cobra.Command) *Flags {
	flags := &Flags{}

	cmd.Flags().StringVarP(&flags.Output, "output", "o", "",
		"Destination directory for the repaired library (default \"takeout-fixed\")")
	cmd.Flags().StringVar(&flags.MediaRoot, "media-root", "",
		"Media folder name inside the export (default \"Google Photos\")")
	cmd.Flags().IntVarP(&flags.Workers, "workers", "w", 0,
		"Parallel write workers (default 4)")
	cmd.Flags().BoolVarP(&flags.DryRun, "dry-run", "n", false,
		"Show what would be done without writing anything")
	cmd.Flags().BoolVar(&flags.NoExif, "no-exif", false,
		"Skip metadata injection, copy files as-is")
	cmd.Flags().StringVar(&flags.ExiftoolPath, "exiftool-path", "",
		"Path to the exiftool binary (default: found on PATH)")
	cmd.Flags().BoolVar(&flags.NoProgress, "no-progress", false,
		"Disable the progress line")
	cmd.Flags().StringVar(&flags.ReportFile, "report-file", "",
		"Write the full run report to this file")
	cmd.Flags().StringVar(&flags.ReportFormat, "report-format", "",
		"Report file format: json, yaml (default json)")

	return flags
}

// BuildFixOptions creates client options from the archive paths and flags.
// Only changed flags become options, so application configuration keeps
// covering the rest.
func BuildFixOptions(paths []string, flags *Flags) []takeoutfixer.Option {
	opts := []takeoutfixer.Option{takeoutfixer.WithArchives(paths...)}

	if flags.Output != "" {
		opts = append(opts, takeoutfixer.WithDestination(flags.Output))
	}
	if flags.MediaRoot != "" {
		opts = append(opts, takeoutfixer.WithMediaRoot(flags.MediaRoot))
	}
	if flags.Workers > 0 {
		opts = append(opts, takeoutfixer.WithWorkers(flags.Workers))
	}
	if flags.DryRun {
		opts = append(opts, takeoutfixer.WithDryRun(true))
	}
	if flags.ExiftoolPath != "" {
		binary := flags.ExiftoolPath
		opts = append(opts, takeoutfixer.WithInjector(func() (inject.Injector, error) {
			return inject.NewExifTool(binary)
		}))
	}
	// Last so it wins over an exiftool path from flags or configuration.
	if flags.NoExif {
		opts = append(opts, takeoutfixer.WithInjector(func() (inject.Injector, error) {
			return inject.NewPassthrough(), nil
		}))
	}

	return opts
}
