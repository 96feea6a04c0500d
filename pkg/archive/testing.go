package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"os"
	"testing"
)

// TestVolumeFile is one entry in a fixture volume. Entries are written in
// slice order so tests can rely on enumeration order.
type TestVolumeFile struct {
	Path string
	Body string
}

// WriteZipVolume writes a zip volume holding the given files.
func WriteZipVolume(t testing.TB, path string, files []TestVolumeFile) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip volume: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, file := range files {
		w, err := zw.Create(file.Path)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", file.Path, err)
		}
		if _, err := w.Write([]byte(file.Body)); err != nil {
			t.Fatalf("write zip entry %s: %v", file.Path, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip volume: %v", err)
	}
}

// WriteTarGzVolume writes a gzip compressed tar volume holding the given
// files.
func WriteTarGzVolume(t testing.TB, path string, files []TestVolumeFile) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create tar volume: %v", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	for _, file := range files {
		hdr := &tar.Header{
			Name: file.Path,
			Mode: 0644,
			Size: int64(len(file.Body)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("write tar header %s: %v", file.Path, err)
		}
		if _, err := tw.Write([]byte(file.Body)); err != nil {
			t.Fatalf("write tar entry %s: %v", file.Path, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar volume: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip stream: %v", err)
	}
}
