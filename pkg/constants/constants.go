// Package constants provides shared constants used throughout the takeout-fixer
// codebase. This includes file permissions, buffer sizes, worker limits, and the
// default names the Takeout export layout uses.
package constants

import "time"

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for files that should not be world-readable (rw-------)
	SecureFilePermissions = 0600
)

// Limit constants define worker counts, buffer sizes and capacities
const (
	// DefaultWorkers is the default number of parallel output workers
	DefaultWorkers = 4

	// MaxWorkers is the upper bound accepted for the worker count option
	MaxWorkers = 64

	// CopyBufferSize is the buffer size for streaming entry bytes
	CopyBufferSize = 64 * 1024

	// ChannelBufferSize is the default buffer size for channels
	ChannelBufferSize = 100

	// SidecarPrefetchLimit is the largest sidecar body, in bytes, that is read
	// ahead during a sequential archive sweep
	SidecarPrefetchLimit = 1 * 1024 * 1024

	// DefaultProbeSample is the number of media entries inspect samples for
	// an already embedded capture time
	DefaultProbeSample = 10

	// ProbeReadLimit is the largest prefix of a media entry, in bytes, read
	// when probing for embedded metadata
	ProbeReadLimit = 4 * 1024 * 1024
)

// Timeout constants define durations used around external tooling
const (
	// InjectTimeout bounds a single metadata injection call
	InjectTimeout = 2 * time.Minute

	// ShutdownTimeout is how long graceful shutdown may take after a failure
	ShutdownTimeout = 5 * time.Second
)

// Takeout layout constants describe the export's directory structure
const (
	// ToolName is the binary name, used in reports and the manifest
	ToolName = "takeout-fixer"

	// TakeoutRoot is the top-level directory inside every export archive
	TakeoutRoot = "Takeout"

	// DefaultMediaRoot is the media folder name under TakeoutRoot for accounts
	// in English locales; other locales localize it, hence the option
	DefaultMediaRoot = "Google Photos"

	// DefaultDestination is the default output directory name
	DefaultDestination = "takeout-fixed"

	// ManifestName is the run manifest written at the destination root
	ManifestName = "takeout-fixer.manifest.yaml"

	// BrowserPageName is the export summary page Takeout places at the
	// archive root
	BrowserPageName = "archive_browser.html"
)

// Naming constants describe the exporter's lossy renaming behavior
const (
	// TruncatedStemLength is the byte length at which the exporter truncates
	// long sidecar stems
	TruncatedStemLength = 47

	// MinTruncatedPrefix is the shortest truncated sidecar prefix that may
	// claim a media file during prefix matching
	MinTruncatedPrefix = 10
)

// Format constants
const (
	// TimeFormatExif is the timestamp layout EXIF date tags use
	TimeFormatExif = "2006:01:02 15:04:05"

	// TimeFormatISO8601 is the ISO 8601 time format
	TimeFormatISO8601 = time.RFC3339
)
