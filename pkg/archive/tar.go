package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/constants"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/errors"
)

// tarSource reads a tar volume, optionally gzip compressed. Tar carries no
// index, so enumeration is one sequential sweep. Small JSON bodies are
// cached during that sweep; everything else is reread by rescanning the
// stream from the start when opened.
type tarSource struct {
	name       string
	path       string
	compressed bool
	prefetch   map[string][]byte
}

func openTar(path string, compressed bool) (*tarSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open tar", path, err)
	}
	// Probe only. The stream is reopened per sweep.
	if err := f.Close(); err != nil {
		return nil, errors.WrapIO("close tar", path, err)
	}
	return &tarSource{
		name:       filepath.Base(path),
		path:       path,
		compressed: compressed,
		prefetch:   make(map[string][]byte),
	}, nil
}

// Name returns the volume display name.
func (s *tarSource) Name() string {
	return s.name
}

// Entries sweeps the stream once, recording every regular file and caching
// JSON bodies small enough to prefetch.
func (s *tarSource) Entries(ctx context.Context) ([]Entry, error) {
	stream, err := s.openStream()
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var entries []Entry
	tr := tar.NewReader(stream)
	for order := 0; ; order++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WrapIO("read tar", s.path, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		entry := Entry{
			Path:   hdr.Name,
			Volume: s.name,
			Order:  order,
			Size:   hdr.Size,
		}
		if s.shouldPrefetch(hdr) {
			body, err := io.ReadAll(tr)
			if err != nil {
				return nil, errors.WrapIO("prefetch", hdr.Name, err)
			}
			s.prefetch[hdr.Name] = body
			entry.CRC32 = crc32.ChecksumIEEE(body)
		}
		path := hdr.Name
		entry.open = func() (io.ReadCloser, error) {
			return s.openEntry(path)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Close releases the source. Open streams handed out earlier are owned by
// their callers.
func (s *tarSource) Close() error {
	s.prefetch = nil
	return nil
}

// shouldPrefetch reports whether an entry body is cached during the
// enumeration sweep. Sidecars are small and read for every matched entry,
// so caching them keeps the common run to a single pass over the stream.
func (s *tarSource) shouldPrefetch(hdr *tar.Header) bool {
	return strings.HasSuffix(strings.ToLower(hdr.Name), ".json") &&
		hdr.Size <= constants.SidecarPrefetchLimit
}

// openEntry returns a reader over one entry's bytes, from the prefetch
// cache when possible, otherwise by rescanning the stream.
func (s *tarSource) openEntry(path string) (io.ReadCloser, error) {
	if body, ok := s.prefetch[path]; ok {
		return io.NopCloser(bytes.NewReader(body)), nil
	}

	stream, err := s.openStream()
	if err != nil {
		return nil, err
	}
	tr := tar.NewReader(stream)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			stream.Close()
			return nil, errors.NewIOError("open entry", path, errors.ErrNotFound)
		}
		if err != nil {
			stream.Close()
			return nil, errors.WrapIO("read tar", s.path, err)
		}
		if hdr.Typeflag == tar.TypeReg && hdr.Name == path {
			return &tarEntryReader{reader: tr, stream: stream}, nil
		}
	}
}

// openStream opens the archive file and layers the gzip decoder when the
// volume is compressed.
func (s *tarSource) openStream() (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.WrapIO("open tar", s.path, err)
	}
	if !s.compressed {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, errors.WrapIO("open gzip", s.path, err)
	}
	return &gzipStream{gz: gz, file: f}, nil
}

// tarEntryReader reads one tar entry and closes the underlying stream when
// done.
type tarEntryReader struct {
	reader *tar.Reader
	stream io.ReadCloser
}

func (r *tarEntryReader) Read(p []byte) (int, error) {
	return r.reader.Read(p)
}

func (r *tarEntryReader) Close() error {
	return r.stream.Close()
}

// gzipStream closes the gzip decoder and the file beneath it together.
type gzipStream struct {
	gz   *gzip.Reader
	file *os.File
}

func (s *gzipStream) Read(p []byte) (int, error) {
	return s.gz.Read(p)
}

func (s *gzipStream) Close() error {
	gzErr := s.gz.Close()
	fileErr := s.file.Close()
	if gzErr != nil {
		return gzErr
	}
	return fileErr
}
