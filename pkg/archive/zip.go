package archive

import (
	"archive/zip"
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/errors"
)

// zipSource reads a zip volume. The central directory gives cheap
// enumeration and random access, so nothing is prefetched.
type zipSource struct {
	name   string
	reader *zip.ReadCloser
}

func openZip(path string) (*zipSource, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.WrapIO("open zip", path, err)
	}
	return &zipSource{
		name:   filepath.Base(path),
		reader: r,
	}, nil
}

// Name returns the volume display name.
func (s *zipSource) Name() string {
	return s.name
}

// Entries lists every regular file recorded in the central directory.
func (s *zipSource) Entries(ctx context.Context) ([]Entry, error) {
	entries := make([]Entry, 0, len(s.reader.File))
	for i, f := range s.reader.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			continue
		}
		file := f
		entries = append(entries, Entry{
			Path:   f.Name,
			Volume: s.name,
			Order:  i,
			Size:   int64(f.UncompressedSize64),
			CRC32:  f.CRC32,
			open: func() (io.ReadCloser, error) {
				rc, err := file.Open()
				if err != nil {
					return nil, errors.WrapIO("open entry", file.Name, err)
				}
				return rc, nil
			},
		})
	}
	return entries, nil
}

// Close releases the underlying zip reader.
func (s *zipSource) Close() error {
	return s.reader.Close()
}
