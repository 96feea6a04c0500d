package fixer

import (
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/constants"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/errors"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/match"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/report"
)

// Manifest records what a run wrote, keyed by output path relative to the
// destination root. A later run over the same destination uses it to skip
// outputs that are already done instead of re-injecting every entry.
type Manifest struct {
	RunID        string                   `yaml:"run_id"`
	RulesVersion string                   `yaml:"rules_version"`
	SavedAt      time.Time                `yaml:"saved_at"`
	Outputs      map[string]ManifestEntry `yaml:"outputs"`
}

// ManifestEntry is the verification record for one written output.
type ManifestEntry struct {
	Size    int64          `yaml:"size"`
	CRC32   uint32         `yaml:"crc32"`
	Outcome report.Outcome `yaml:"outcome"`
}

// LoadManifest reads the manifest at the destination root. A missing file
// yields a nil manifest, which skips nothing.
func LoadManifest(destination string) (*Manifest, error) {
	path := filepath.Join(destination, constants.ManifestName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.NewParseError(path, "", err)
	}
	return &m, nil
}

// Save writes the manifest atomically at the destination root.
func (m *Manifest) Save(destination string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return errors.WrapIO("encode", constants.ManifestName, err)
	}

	if err := os.MkdirAll(destination, constants.DirPermissions); err != nil {
		return errors.WrapWrite(destination, "create", err)
	}
	path := filepath.Join(destination, constants.ManifestName)
	tmp, err := os.CreateTemp(destination, "."+constants.ManifestName+".tmp-*")
	if err != nil {
		return errors.WrapWrite(path, "create", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.WrapWrite(path, "write", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.WrapWrite(path, "sync", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.WrapWrite(path, "close", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errors.WrapWrite(path, "rename", err)
	}
	return nil
}

// Entry returns the verification record for an output path.
func (m *Manifest) Entry(rel string) (ManifestEntry, bool) {
	if m == nil {
		return ManifestEntry{}, false
	}
	entry, ok := m.Outputs[rel]
	return entry, ok
}

// Settles reports whether the recorded outcome still settles the entry
// under the current match result. A previously fixed output is always
// settled. An output written without metadata is settled only while the
// entry still has no usable match; once a sidecar turns up, the entry is
// rewritten.
func (e ManifestEntry) Settles(kind match.Kind) bool {
	if e.Outcome == report.OutcomeFixed {
		return true
	}
	return kind != match.KindMatched
}

// Verify reports whether the file at path still matches the recorded size
// and checksum.
func (e ManifestEntry) Verify(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.Size() != e.Size {
		return false
	}
	if e.CRC32 == 0 {
		return true
	}
	crc, err := checksumFile(path)
	if err != nil {
		return false
	}
	return crc == e.CRC32
}

// checksumFile computes the IEEE CRC32 of a file's contents.
func checksumFile(path string) (uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := crc32.NewIEEE()
	buf := make([]byte, constants.CopyBufferSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return 0, err
	}
	return h.Sum32(), nil
}

// ManifestEntries collects verification records during a write stage.
// Record is safe for concurrent use by the write workers.
type ManifestEntries struct {
	mu      sync.Mutex
	outputs map[string]ManifestEntry
}

// NewManifestEntries returns an empty collector.
func NewManifestEntries() *ManifestEntries {
	return &ManifestEntries{outputs: make(map[string]ManifestEntry)}
}

// Record adds one output's verification record.
func (c *ManifestEntries) Record(rel string, entry ManifestEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outputs[rel] = entry
}

// Manifest assembles the collected records into a manifest for the given
// run.
func (c *ManifestEntries) Manifest(runID, rulesVersion string) *Manifest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &Manifest{
		RunID:        runID,
		RulesVersion: rulesVersion,
		SavedAt:      time.Now().UTC(),
		Outputs:      c.outputs,
	}
}
