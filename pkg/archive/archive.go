// Package archive reads Takeout export volumes. A volume is a single
// archive file, zip or gzip compressed tar, holding a slice of the export
// tree. Volumes are enumerated up front into lightweight Entry values;
// entry bytes are read lazily through Entry.Open so a multi hundred
// gigabyte export never has to fit in memory.
//
// Zip volumes support cheap random access through the central directory.
// Tar volumes are stream only: enumeration is one sequential pass, and
// opening an entry later rescans the stream. To keep the common case to a
// single pass, tar enumeration prefetches small JSON bodies into memory
// (see constants.SidecarPrefetchLimit).
package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/errors"
)

// Entry is one file inside a volume. The zero value is not meaningful;
// entries are produced by Source.Entries.
type Entry struct {
	// Path is the slash separated path inside the archive.
	Path string

	// Volume is the display name of the volume the entry came from.
	Volume string

	// VolumeIndex is the position of the volume in the discovered volume
	// list. It is stamped by the catalog when volumes are merged.
	VolumeIndex int

	// Order is the enumeration position of the entry within its volume.
	Order int

	// Size is the uncompressed size in bytes.
	Size int64

	// CRC32 is the IEEE checksum of the entry bytes, 0 when the container
	// does not record one.
	CRC32 uint32

	open func() (io.ReadCloser, error)
}

// Open returns a reader over the entry bytes. The caller owns the reader
// and must close it. Opening a tar entry that was not prefetched rescans
// the volume stream.
func (e Entry) Open() (io.ReadCloser, error) {
	if e.open == nil {
		return nil, errors.NewIOError("open", e.Path, errors.ErrNotFound)
	}
	return e.open()
}

// Ref returns the entry's volume qualified path for logs and reports.
func (e Entry) Ref() string {
	return e.Volume + "!" + e.Path
}

// Source is an open volume.
type Source interface {
	// Name returns the volume display name, the base name of the archive
	// file.
	Name() string

	// Entries enumerates every regular file in the volume in stored order.
	Entries(ctx context.Context) ([]Entry, error)

	// Close releases the volume. Entries obtained earlier must not be
	// opened afterwards.
	Close() error
}

// Open opens a volume file, dispatching on its extension.
func Open(path string) (Source, error) {
	switch {
	case hasSuffixFold(path, ".zip"):
		return openZip(path)
	case hasSuffixFold(path, ".tgz"), hasSuffixFold(path, ".tar.gz"):
		return openTar(path, true)
	case hasSuffixFold(path, ".tar"):
		return openTar(path, false)
	default:
		return nil, fmt.Errorf("%w: unsupported archive format %q", errors.ErrInvalidInput, filepath.Ext(path))
	}
}

// Discover expands the given arguments into a sorted, deduplicated list of
// volume file paths. Each argument may be a volume file, a directory
// holding volume files, or a glob pattern. It returns ErrNoVolumes when
// nothing usable is found.
func Discover(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: no archive paths given", errors.ErrNoVolumes)
	}

	seen := make(map[string]struct{})
	var paths []string
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}

	for _, arg := range args {
		expanded, err := expandArg(arg)
		if err != nil {
			return nil, err
		}
		for _, p := range expanded {
			add(p)
		}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no volume files under %s", errors.ErrNoVolumes, strings.Join(args, ", "))
	}
	sort.Strings(paths)
	return paths, nil
}

// expandArg resolves one input argument into volume file paths.
func expandArg(arg string) ([]string, error) {
	if strings.ContainsAny(arg, "*?[") {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, errors.NewValidationError("archives", arg, "invalid glob pattern")
		}
		var paths []string
		for _, m := range matches {
			if isVolumePath(m) {
				paths = append(paths, m)
			}
		}
		return paths, nil
	}

	info, err := os.Stat(arg)
	if err != nil {
		return nil, errors.WrapIO("stat", arg, err)
	}
	if !info.IsDir() {
		return []string{arg}, nil
	}

	dirEntries, err := os.ReadDir(arg)
	if err != nil {
		return nil, errors.WrapIO("read dir", arg, err)
	}
	var paths []string
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		if p := filepath.Join(arg, de.Name()); isVolumePath(p) {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// isVolumePath reports whether the path carries a recognized volume
// extension.
func isVolumePath(path string) bool {
	return hasSuffixFold(path, ".zip") ||
		hasSuffixFold(path, ".tgz") ||
		hasSuffixFold(path, ".tar.gz") ||
		hasSuffixFold(path, ".tar")
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}
