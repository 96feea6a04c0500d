package fixer

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/archive"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/constants"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/inject"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/logging"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/report"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/sidecar"
)

const mediaRoot = "Takeout/Google Photos/"

func testContext() context.Context {
	return logging.WithLogger(context.Background(), logging.NewNopLogger())
}

// sidecarBody builds a minimal supplemental metadata document.
func sidecarBody(title string, taken time.Time) string {
	return `{"title":"` + title + `","photoTakenTime":{"timestamp":"` +
		strconv.FormatInt(taken.Unix(), 10) + `"}}`
}

// runEngine builds and runs an engine over the given volumes with a
// recording injector.
func runEngine(t *testing.T, dest string, volumes map[string][]archive.TestVolumeFile, mutate func(*Config)) (*report.Report, *inject.Recorder) {
	t.Helper()

	dir := t.TempDir()
	var archives []string
	for name, files := range volumes {
		path := filepath.Join(dir, name)
		archive.WriteZipVolume(t, path, files)
		archives = append(archives, path)
	}

	recorder := inject.NewRecorder()
	cfg := Config{
		Archives:    archives,
		Destination: dest,
		Workers:     2,
		Injector:    func() (inject.Injector, error) { return recorder, nil },
	}
	if mutate != nil {
		mutate(&cfg)
	}

	engine, err := New(cfg)
	require.NoError(t, err, "engine config should validate")
	rep, err := engine.Run(testContext())
	require.NoError(t, err, "run should not fail")
	return rep, recorder
}

func TestRunMatchesAcrossVolumes(t *testing.T) {
	taken := time.Date(2020, 9, 13, 12, 26, 40, 0, time.UTC)
	dest := t.TempDir()

	rep, recorder := runEngine(t, dest, map[string][]archive.TestVolumeFile{
		"takeout-001.zip": {
			{Path: mediaRoot + "photo.jpg", Body: "jpeg bytes"},
		},
		"takeout-002.zip": {
			{Path: mediaRoot + "photo.jpg.json", Body: sidecarBody("photo.jpg", taken)},
		},
	}, nil)

	assert.Equal(t, 1, rep.Summary.Fixed, "the cross-volume pair should be fixed")
	assert.Zero(t, rep.Summary.Copied)
	assert.Zero(t, rep.Summary.Ambiguous)
	assert.Zero(t, rep.Summary.Failed)
	assert.False(t, rep.HasWarnings())
	assert.Equal(t, 0, rep.ExitCode())

	data, err := os.ReadFile(filepath.Join(dest, "photo.jpg"))
	require.NoError(t, err, "output file should exist")
	assert.Equal(t, "jpeg bytes", string(data))

	calls := recorder.Calls()
	require.Len(t, calls, 1, "exactly one injection expected")
	assert.Equal(t, taken, calls[0].Record.Taken)
}

func TestRunUnmatchedIsCopied(t *testing.T) {
	dest := t.TempDir()
	rep, recorder := runEngine(t, dest, map[string][]archive.TestVolumeFile{
		"takeout-001.zip": {
			{Path: mediaRoot + "Album/orphan.jpg", Body: "pixels"},
		},
	}, nil)

	assert.Equal(t, 1, rep.Summary.Copied)
	assert.Equal(t, 1, rep.Summary.Warnings)
	assert.Equal(t, 1, rep.ExitCode())
	assert.Empty(t, recorder.Calls(), "no injection without a match")

	data, err := os.ReadFile(filepath.Join(dest, "Album", "orphan.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))
}

func TestRunPreservesAlbumLayout(t *testing.T) {
	taken := time.Unix(1600000000, 0).UTC()
	dest := t.TempDir()
	rep, _ := runEngine(t, dest, map[string][]archive.TestVolumeFile{
		"takeout-001.zip": {
			{Path: mediaRoot + "Vacation 2020/beach.jpg", Body: "beach"},
			{Path: mediaRoot + "Vacation 2020/beach.jpg.json", Body: sidecarBody("beach.jpg", taken)},
		},
	}, nil)

	assert.Equal(t, 1, rep.Summary.Fixed)
	_, err := os.Stat(filepath.Join(dest, "Vacation 2020", "beach.jpg"))
	assert.NoError(t, err, "album directory should be mirrored")
}

func TestRerunIsIdempotent(t *testing.T) {
	taken := time.Unix(1600000000, 0).UTC()
	dest := t.TempDir()
	volumes := map[string][]archive.TestVolumeFile{
		"takeout-001.zip": {
			{Path: mediaRoot + "photo.jpg", Body: "jpeg bytes"},
			{Path: mediaRoot + "photo.jpg.json", Body: sidecarBody("photo.jpg", taken)},
		},
	}

	first, rec1 := runEngine(t, dest, volumes, nil)
	require.Equal(t, 1, first.Summary.Fixed)
	require.Len(t, rec1.Calls(), 1)

	second, rec2 := runEngine(t, dest, volumes, nil)
	assert.Equal(t, 1, second.Summary.UpToDate, "second run should skip the verified output")
	assert.Zero(t, second.Summary.Fixed)
	assert.Empty(t, rec2.Calls(), "second run must perform no injection work")
}

func TestRerunRewritesWhenSidecarAppears(t *testing.T) {
	taken := time.Unix(1600000000, 0).UTC()
	dest := t.TempDir()

	first, _ := runEngine(t, dest, map[string][]archive.TestVolumeFile{
		"takeout-001.zip": {
			{Path: mediaRoot + "photo.jpg", Body: "jpeg bytes"},
		},
	}, nil)
	require.Equal(t, 1, first.Summary.Copied)

	// The missing volume shows up on the rerun; the copied output is now
	// rewritten with metadata instead of being skipped.
	second, rec := runEngine(t, dest, map[string][]archive.TestVolumeFile{
		"takeout-001.zip": {
			{Path: mediaRoot + "photo.jpg", Body: "jpeg bytes"},
		},
		"takeout-002.zip": {
			{Path: mediaRoot + "photo.jpg.json", Body: sidecarBody("photo.jpg", taken)},
		},
	}, nil)

	assert.Equal(t, 1, second.Summary.Fixed)
	assert.Zero(t, second.Summary.UpToDate)
	assert.Len(t, rec.Calls(), 1)
}

func TestRunTruncatedCollisionIsAmbiguous(t *testing.T) {
	// Two media files share the truncated sidecar's 31 byte prefix and
	// both stems sit at the truncation boundary, so neither may claim it.
	prefix := "longfilenamethatexceedsthetrunc"
	mediaA := prefix + "ationlimit0112233445.jpg"
	mediaB := prefix + "ZZZZZZZZZZZZZZZZZZZZ.jpg"
	dest := t.TempDir()

	rep, recorder := runEngine(t, dest, map[string][]archive.TestVolumeFile{
		"takeout-001.zip": {
			{Path: mediaRoot + mediaA, Body: "aaa"},
			{Path: mediaRoot + mediaB, Body: "bbb"},
			{Path: mediaRoot + prefix + ".json", Body: `{"description":"which one?"}`},
		},
	}, nil)

	assert.Equal(t, 2, rep.Summary.Ambiguous, "both claimants abstain")
	assert.Empty(t, recorder.Calls(), "ambiguous entries skip injection")

	for _, name := range []string{mediaA, mediaB} {
		_, err := os.Stat(filepath.Join(dest, name))
		assert.NoError(t, err, "ambiguous media is still written verbatim")
	}
	for _, item := range rep.Items {
		if item.Outcome == report.OutcomeAmbiguous {
			assert.NotEmpty(t, item.Candidates, "ambiguous items list their candidates")
		}
	}
}

func TestDryRunWritesNothing(t *testing.T) {
	taken := time.Unix(1600000000, 0).UTC()
	dest := filepath.Join(t.TempDir(), "out")

	rep, recorder := runEngine(t, dest, map[string][]archive.TestVolumeFile{
		"takeout-001.zip": {
			{Path: mediaRoot + "photo.jpg", Body: "jpeg bytes"},
			{Path: mediaRoot + "photo.jpg.json", Body: sidecarBody("photo.jpg", taken)},
		},
	}, func(cfg *Config) {
		cfg.DryRun = true
	})

	assert.True(t, rep.DryRun)
	assert.Equal(t, 1, rep.Summary.Fixed, "dry run predicts the outcome")
	assert.Empty(t, recorder.Calls())
	_, err := os.Stat(dest)
	assert.True(t, os.IsNotExist(err), "dry run must not create the destination")
}

func TestInjectionFaultDegradesToVerbatimCopy(t *testing.T) {
	taken := time.Unix(1600000000, 0).UTC()
	dest := t.TempDir()

	rep, _ := runEngine(t, dest, map[string][]archive.TestVolumeFile{
		"takeout-001.zip": {
			{Path: mediaRoot + "photo.jpg", Body: "jpeg bytes"},
			{Path: mediaRoot + "photo.jpg.json", Body: sidecarBody("photo.jpg", taken)},
		},
	}, func(cfg *Config) {
		cfg.Injector = func() (inject.Injector, error) {
			rec := inject.NewRecorder()
			rec.Err = os.ErrPermission
			return rec, nil
		}
	})

	assert.Equal(t, 1, rep.Summary.Degraded)
	assert.Equal(t, 1, rep.ExitCode())

	data, err := os.ReadFile(filepath.Join(dest, "photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data), "degraded output is the verbatim copy")

	var item report.Item
	for _, it := range rep.Items {
		if it.Outcome == report.OutcomeDegraded {
			item = it
		}
	}
	assert.Contains(t, item.Error, "injecting metadata", "fault category should be reported")
}

func TestMalformedSidecarDegrades(t *testing.T) {
	dest := t.TempDir()
	rep, _ := runEngine(t, dest, map[string][]archive.TestVolumeFile{
		"takeout-001.zip": {
			{Path: mediaRoot + "photo.jpg", Body: "jpeg bytes"},
			{Path: mediaRoot + "photo.jpg.json", Body: "not json at all"},
		},
	}, nil)

	assert.Equal(t, 1, rep.Summary.Degraded)
	data, err := os.ReadFile(filepath.Join(dest, "photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))
}

func TestPartialSidecarStillFixes(t *testing.T) {
	dest := t.TempDir()
	// The timestamp decodes before the malformed title field; the
	// surviving fields are still applied.
	body := `{"photoTakenTime":{"timestamp":"1600000000"},"title":123}`

	rep, recorder := runEngine(t, dest, map[string][]archive.TestVolumeFile{
		"takeout-001.zip": {
			{Path: mediaRoot + "photo.jpg", Body: "jpeg bytes"},
			{Path: mediaRoot + "photo.jpg.json", Body: body},
		},
	}, nil)

	assert.Equal(t, 1, rep.Summary.Fixed, "partial metadata is better than none")
	require.Len(t, recorder.Calls(), 1)
	assert.True(t, recorder.Calls()[0].Record.Partial)

	var fixed report.Item
	for _, it := range rep.Items {
		if it.Outcome == report.OutcomeFixed {
			fixed = it
		}
	}
	assert.Contains(t, fixed.Error, "parsing sidecar", "parse fault stays visible on the item")
}

func TestDuplicatePathsAcrossVolumesReported(t *testing.T) {
	taken := time.Unix(1600000000, 0).UTC()
	dest := t.TempDir()

	rep, _ := runEngine(t, dest, map[string][]archive.TestVolumeFile{
		"takeout-001.zip": {
			{Path: mediaRoot + "photo.jpg", Body: "jpeg bytes"},
			{Path: mediaRoot + "photo.jpg.json", Body: sidecarBody("photo.jpg", taken)},
		},
		"takeout-002.zip": {
			{Path: mediaRoot + "photo.jpg", Body: "jpeg bytes"},
		},
	}, nil)

	assert.Equal(t, 1, rep.Summary.Fixed)
	assert.Equal(t, 1, rep.Summary.Duplicates, "the second volume's copy is recorded, not written")
	assert.Equal(t, 1, rep.Catalog.DuplicatePaths)
}

func TestUnusedSidecarsReported(t *testing.T) {
	dest := t.TempDir()
	rep, _ := runEngine(t, dest, map[string][]archive.TestVolumeFile{
		"takeout-001.zip": {
			{Path: mediaRoot + "photo.jpg", Body: "jpeg bytes"},
			{Path: mediaRoot + "photo.jpg.json", Body: `{"title":"photo.jpg"}`},
			{Path: mediaRoot + "stray.jpg.json", Body: `{"title":"stray.jpg"}`},
		},
	}, nil)

	require.Len(t, rep.UnusedSidecars, 1)
	assert.Equal(t, mediaRoot+"stray.jpg.json", rep.UnusedSidecars[0])
	assert.True(t, rep.HasWarnings(), "unused sidecars warrant a second look")
}

// stageAsserter verifies the writer injects into the staged copy, never
// into a file already at its final destination path.
type stageAsserter struct {
	t    *testing.T
	dest string
	mu   sync.Mutex
	seen int
}

func (a *stageAsserter) Name() string { return "stage-asserter" }

func (a *stageAsserter) Inject(_ context.Context, path string, _ sidecar.Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seen++

	base := filepath.Base(path)
	if !strings.HasPrefix(base, ".") || !strings.Contains(base, ".tmp-") {
		a.t.Errorf("injection target %q is not a staged temporary", path)
	}
	final := filepath.Join(a.dest, "photo.jpg")
	if _, err := os.Stat(final); err == nil {
		a.t.Errorf("final path %q exists before rename", final)
	}
	return nil
}

func (a *stageAsserter) Close() error { return nil }

func TestWriteStagesBeforeRename(t *testing.T) {
	taken := time.Unix(1600000000, 0).UTC()
	dest := t.TempDir()
	asserter := &stageAsserter{t: t, dest: dest}

	rep, _ := runEngine(t, dest, map[string][]archive.TestVolumeFile{
		"takeout-001.zip": {
			{Path: mediaRoot + "photo.jpg", Body: "jpeg bytes"},
			{Path: mediaRoot + "photo.jpg.json", Body: sidecarBody("photo.jpg", taken)},
		},
	}, func(cfg *Config) {
		cfg.Injector = func() (inject.Injector, error) { return asserter, nil }
	})

	assert.Equal(t, 1, rep.Summary.Fixed)
	assert.Equal(t, 1, asserter.seen, "injector should have been exercised")
}

func TestCancelHaltsSchedulingButFinishesInFlight(t *testing.T) {
	dest := t.TempDir()
	dir := t.TempDir()

	var files []archive.TestVolumeFile
	for i := 0; i < 16; i++ {
		name := "img_" + strconv.Itoa(i) + ".jpg"
		files = append(files,
			archive.TestVolumeFile{Path: mediaRoot + name, Body: "body of " + name},
			archive.TestVolumeFile{Path: mediaRoot + name + ".json", Body: `{"photoTakenTime":{"timestamp":"1600000000"}}`},
		)
	}
	path := filepath.Join(dir, "takeout-001.zip")
	archive.WriteZipVolume(t, path, files)

	ctx, cancel := context.WithCancel(testContext())
	engine, err := New(Config{
		Archives:    []string{path},
		Destination: dest,
		Workers:     2,
		Observer: func(done, total int, _ report.Item) {
			if done == 2 {
				cancel()
			}
		},
	})
	require.NoError(t, err)

	rep, runErr := engine.Run(ctx)
	require.NotNil(t, rep, "a canceled run still reports what it finished")
	assert.ErrorIs(t, runErr, context.Canceled)
	assert.Less(t, len(rep.Items), 16, "cancellation should stop scheduling new entries")

	// Whatever reached the destination is complete; no temporary or
	// truncated file sits at a final path.
	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	for _, de := range entries {
		name := de.Name()
		if name == constants.ManifestName {
			continue
		}
		assert.False(t, strings.Contains(name, ".tmp-"), "no staging file left at %s", name)
		data, err := os.ReadFile(filepath.Join(dest, name))
		require.NoError(t, err)
		assert.Equal(t, "body of "+name, string(data), "output %s must be complete", name)
	}
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{Destination: "out"})
	assert.Error(t, err, "archives are required")

	_, err = New(Config{Archives: []string{"a.zip"}})
	assert.Error(t, err, "destination is required")

	_, err = New(Config{Archives: []string{"a.zip"}, DryRun: true})
	assert.NoError(t, err, "dry run needs no destination")

	_, err = New(Config{Archives: []string{"a.zip"}, Destination: "out", Workers: 1000})
	assert.Error(t, err, "worker count is bounded")
}

func TestRunFailsWhenNoVolumeReadable(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "broken.zip")
	require.NoError(t, os.WriteFile(bogus, []byte("this is not a zip"), 0644))

	engine, err := New(Config{
		Archives:    []string{bogus},
		Destination: t.TempDir(),
	})
	require.NoError(t, err)

	_, err = engine.Run(testContext())
	assert.Error(t, err, "zero readable volumes is the one fatal case")
}
