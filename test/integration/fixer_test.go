package integration

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	takeoutfixer "github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/archive"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/constants"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/logging"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/report"
)

// exportFixture is one logical export: a matched pair, a media file with
// no sidecar, an edited rendition falling back to its original's sidecar,
// album metadata and the export summary page.
func exportFixture() []archive.TestVolumeFile {
	return []archive.TestVolumeFile{
		{Path: "Takeout/archive_browser.html", Body: "<html><title>Google Takeout</title></html>"},
		{Path: "Takeout/Google Photos/Summer 2019/metadata.json", Body: `{"title":"Summer 2019"}`},
		{Path: "Takeout/Google Photos/Summer 2019/IMG_001.jpg", Body: "jpeg bytes one"},
		{Path: "Takeout/Google Photos/Summer 2019/IMG_001.jpg.json", Body: `{"title":"IMG_001.jpg","photoTakenTime":{"timestamp":"1568377600"}}`},
		{Path: "Takeout/Google Photos/Summer 2019/IMG_002.jpg", Body: "jpeg bytes two"},
		{Path: "Takeout/Google Photos/Summer 2019/IMG_003.jpg", Body: "jpeg bytes three"},
		{Path: "Takeout/Google Photos/Summer 2019/IMG_003-edited.jpg", Body: "jpeg bytes three, edited"},
		{Path: "Takeout/Google Photos/Summer 2019/IMG_003.jpg.json", Body: `{"title":"IMG_003.jpg","photoTakenTime":{"timestamp":"1568377601"}}`},
	}
}

func run(t *testing.T, archivePath, dest string) *report.Report {
	t.Helper()

	fixer, err := takeoutfixer.New(
		takeoutfixer.WithArchives(archivePath),
		takeoutfixer.WithDestination(dest),
		takeoutfixer.WithLogger(logging.NewNopLogger()),
	)
	if err != nil {
		t.Fatalf("Failed to create fixer: %v", err)
	}

	rep, err := fixer.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if rep == nil {
		t.Fatal("Expected report, got nil")
	}
	return rep
}

// treeSnapshot maps every file under root, relative with forward slashes,
// to its content.
func treeSnapshot(t *testing.T, root string) map[string]string {
	t.Helper()

	snapshot := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		snapshot[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to walk %s: %v", root, err)
	}
	return snapshot
}

func TestZipAndTarGzProduceIdenticalOutput(t *testing.T) {
	dir := t.TempDir()
	files := exportFixture()

	zipPath := filepath.Join(dir, "takeout-001.zip")
	archive.WriteZipVolume(t, zipPath, files)
	tgzPath := filepath.Join(dir, "takeout-001.tgz")
	archive.WriteTarGzVolume(t, tgzPath, files)

	zipDest := filepath.Join(dir, "out-zip")
	tgzDest := filepath.Join(dir, "out-tgz")

	zipRep := run(t, zipPath, zipDest)
	tgzRep := run(t, tgzPath, tgzDest)

	if zipRep.Summary.Fixed != 3 || zipRep.Summary.Copied != 1 {
		t.Errorf("zip summary = %+v, want 3 fixed and 1 copied", zipRep.Summary)
	}
	if zipRep.Summary != tgzRep.Summary {
		t.Errorf("summaries differ between containers:\nzip: %+v\ntgz: %+v", zipRep.Summary, tgzRep.Summary)
	}

	zipTree := treeSnapshot(t, zipDest)
	tgzTree := treeSnapshot(t, tgzDest)

	// Both runs write a manifest; its body carries run identity, so only
	// the media payload is compared byte for byte.
	for name, tree := range map[string]map[string]string{"zip": zipTree, "tgz": tgzTree} {
		if _, ok := tree[constants.ManifestName]; !ok {
			t.Errorf("%s output has no manifest", name)
		}
		delete(tree, constants.ManifestName)
	}

	if !reflect.DeepEqual(zipTree, tgzTree) {
		t.Errorf("output trees differ between containers:\nzip: %v\ntgz: %v", keys(zipTree), keys(tgzTree))
	}
}

func TestRerunLeavesOutputUpToDate(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "takeout-001.zip")
	archive.WriteZipVolume(t, zipPath, exportFixture())
	dest := filepath.Join(dir, "out")

	first := run(t, zipPath, dest)
	if first.Summary.UpToDate != 0 {
		t.Errorf("first run reported %d up-to-date entries, want 0", first.Summary.UpToDate)
	}
	before := treeSnapshot(t, dest)

	second := run(t, zipPath, dest)
	if second.Summary.UpToDate != 4 {
		t.Errorf("second run reported %d up-to-date entries, want all 4", second.Summary.UpToDate)
	}
	if second.Summary.Fixed != 0 || second.Summary.Copied != 0 {
		t.Errorf("second run rewrote entries: %+v", second.Summary)
	}

	after := treeSnapshot(t, dest)
	if !reflect.DeepEqual(before, after) {
		t.Error("rerun changed the output tree")
	}
}

func TestDryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "takeout-001.zip")
	archive.WriteZipVolume(t, zipPath, exportFixture())
	dest := filepath.Join(dir, "out")

	fixer, err := takeoutfixer.New(
		takeoutfixer.WithArchives(zipPath),
		takeoutfixer.WithDestination(dest),
		takeoutfixer.WithDryRun(true),
		takeoutfixer.WithLogger(logging.NewNopLogger()),
	)
	if err != nil {
		t.Fatalf("Failed to create fixer: %v", err)
	}

	rep, err := fixer.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if rep.Summary.Fixed != 3 {
		t.Errorf("dry run summary = %+v, want 3 fixed", rep.Summary)
	}

	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		entries, _ := os.ReadDir(dest)
		if len(entries) > 0 {
			t.Errorf("dry run wrote %d entries into %s", len(entries), dest)
		}
	}
}

func TestFixerWithoutArchives(t *testing.T) {
	_, err := takeoutfixer.New()
	if err == nil {
		t.Error("Expected error for fixer without archives")
	}
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
