package fixer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/constants"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/match"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/report"
)

func TestManifestRoundtrip(t *testing.T) {
	dest := t.TempDir()

	entries := NewManifestEntries()
	entries.Record("Album/photo.jpg", ManifestEntry{Size: 42, CRC32: 0xDEADBEEF, Outcome: report.OutcomeFixed})
	entries.Record("orphan.jpg", ManifestEntry{Size: 7, CRC32: 0x1234, Outcome: report.OutcomeCopied})

	m := entries.Manifest("run-1", "2024.1")
	require.NoError(t, m.Save(dest))

	loaded, err := LoadManifest(dest)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "run-1", loaded.RunID)
	assert.Equal(t, "2024.1", loaded.RulesVersion)
	assert.False(t, loaded.SavedAt.IsZero())
	assert.Len(t, loaded.Outputs, 2)

	entry, ok := loaded.Entry("Album/photo.jpg")
	require.True(t, ok)
	assert.Equal(t, int64(42), entry.Size)
	assert.Equal(t, uint32(0xDEADBEEF), entry.CRC32)
	assert.Equal(t, report.OutcomeFixed, entry.Outcome)
}

func TestLoadManifestMissing(t *testing.T) {
	m, err := LoadManifest(t.TempDir())
	assert.NoError(t, err)
	assert.Nil(t, m)

	// A nil manifest settles nothing.
	_, ok := m.Entry("anything")
	assert.False(t, ok)
}

func TestLoadManifestMalformed(t *testing.T) {
	dest := t.TempDir()
	path := filepath.Join(dest, constants.ManifestName)
	require.NoError(t, os.WriteFile(path, []byte("outputs: [unclosed"), 0644))

	_, err := LoadManifest(dest)
	assert.Error(t, err)
}

func TestSaveCreatesDestination(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "not", "yet", "there")
	m := NewManifestEntries().Manifest("run-2", "2024.1")
	require.NoError(t, m.Save(dest))

	loaded, err := LoadManifest(dest)
	require.NoError(t, err)
	assert.Equal(t, "run-2", loaded.RunID)
}

func TestSaveLeavesNoTemporary(t *testing.T) {
	dest := t.TempDir()
	m := NewManifestEntries().Manifest("run-3", "2024.1")
	require.NoError(t, m.Save(dest))

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, constants.ManifestName, entries[0].Name())
}

func TestVerifyChecksSizeAndChecksum(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg bytes"), 0644))

	crc, err := checksumFile(path)
	require.NoError(t, err)

	good := ManifestEntry{Size: 10, CRC32: crc}
	assert.True(t, good.Verify(path))

	assert.False(t, ManifestEntry{Size: 11, CRC32: crc}.Verify(path), "size mismatch")
	assert.False(t, ManifestEntry{Size: 10, CRC32: crc + 1}.Verify(path), "checksum mismatch")
	assert.False(t, good.Verify(filepath.Join(dir, "missing.jpg")), "missing file")

	// Same size, different bytes: only the checksum catches it.
	require.NoError(t, os.WriteFile(path, []byte("jpeg BYTES"), 0644))
	assert.False(t, good.Verify(path))
}

func TestVerifyWithoutChecksumUsesSizeOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0644))

	entry := ManifestEntry{Size: 10}
	assert.True(t, entry.Verify(path))

	require.NoError(t, os.WriteFile(path, []byte("shorter"), 0644))
	assert.False(t, entry.Verify(path))
}

func TestSettles(t *testing.T) {
	tests := []struct {
		name    string
		outcome report.Outcome
		kind    match.Kind
		want    bool
	}{
		{"fixed stays settled against a match", report.OutcomeFixed, match.KindMatched, true},
		{"fixed stays settled without a match", report.OutcomeFixed, match.KindUnmatched, true},
		{"copy is rewritten once a sidecar appears", report.OutcomeCopied, match.KindMatched, false},
		{"copy stays settled while unmatched", report.OutcomeCopied, match.KindUnmatched, true},
		{"degraded is retried against a match", report.OutcomeDegraded, match.KindMatched, false},
		{"ambiguous stays settled while still ambiguous", report.OutcomeAmbiguous, match.KindAmbiguous, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := ManifestEntry{Outcome: tt.outcome}
			assert.Equal(t, tt.want, entry.Settles(tt.kind))
		})
	}
}
