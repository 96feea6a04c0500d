package fixer

import (
	"context"
	"hash/crc32"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/archive"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/catalog"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/constants"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/errors"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/inject"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/logging"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/match"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/report"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/sidecar"
)

// process takes one media group to its terminal outcome. Faults become
// the item's outcome; process never fails the run. Duplicate occurrences
// of the same path in other volumes are recorded without being written.
func (s *runState) process(ctx context.Context, inj inject.Injector, pr match.Pair) {
	item := newItem(pr)
	s.run(ctx, inj, pr, &item)

	logger := logging.FromContext(ctx)
	switch item.Outcome {
	case report.OutcomeFailed:
		logger.Error().Str("entry", item.Path).Str("error", item.Error).Msg("Entry failed")
	case report.OutcomeDegraded:
		logger.Warn().Str("entry", item.Path).Str("error", item.Error).Msg("Entry written without metadata")
	default:
		logger.Debug().Str("entry", item.Path).Str("outcome", string(item.Outcome)).
			Str("strategy", item.Strategy).Msg("Entry complete")
	}
	s.finish(item)

	for _, dup := range pr.Media.Duplicates() {
		s.builder.Append(report.Item{
			Path:    dup.Entry.Path,
			Volume:  dup.Entry.Volume,
			Album:   dup.Album,
			Output:  item.Output,
			Outcome: report.OutcomeDuplicate,
			Bytes:   dup.Entry.Size,
		})
	}
}

// newItem seeds the report item for a pair from its match result.
func newItem(pr match.Pair) report.Item {
	primary := pr.Media.Primary()
	item := report.Item{
		Path:   primary.Entry.Path,
		Volume: primary.Entry.Volume,
		Album:  primary.Album,
		Output: outputRel(primary),
		Bytes:  primary.Entry.Size,
	}
	switch pr.Kind {
	case match.KindMatched:
		item.Strategy = pr.Strategy.String()
		item.Sidecar = pr.Sidecar.Path
	case match.KindAmbiguous:
		item.Candidates = pr.Candidates
	}
	return item
}

// run decides and executes the item's terminal outcome.
func (s *runState) run(ctx context.Context, inj inject.Injector, pr match.Pair, item *report.Item) {
	e := s.engine

	// Parse the sidecar in dry runs too, so parse faults show up in the
	// preview report.
	var rec sidecar.Record
	var parseErr error
	if pr.Kind == match.KindMatched {
		rec, parseErr = readRecord(*pr.Sidecar)
		if parseErr != nil {
			item.Error = parseErr.Error()
		}
	}

	if e.cfg.DryRun {
		item.Outcome = plannedOutcome(pr, rec, parseErr)
		return
	}

	destPath := filepath.Join(e.cfg.Destination, filepath.FromSlash(item.Output))

	// Idempotent rerun: a verified output from an earlier run is left
	// untouched unless this run has better metadata for it.
	if prev, ok := s.prev.Entry(item.Output); ok && prev.Settles(pr.Kind) && prev.Verify(destPath) {
		item.Outcome = report.OutcomeUpToDate
		item.Bytes = prev.Size
		s.next.Record(item.Output, prev)
		return
	}

	wantInject := pr.Kind == match.KindMatched && !rec.IsEmpty()
	size, crc, degraded, err := e.writeEntry(ctx, inj, pr.Media.Primary().Entry, rec, wantInject, destPath)
	if err != nil {
		item.Outcome = report.OutcomeFailed
		item.Error = err.Error()
		return
	}
	item.Bytes = size
	item.Outcome = writtenOutcome(pr, rec, parseErr, degraded)
	if degraded != nil {
		item.Error = degraded.Error()
	}
	s.next.Record(item.Output, ManifestEntry{Size: size, CRC32: crc, Outcome: item.Outcome})
}

// plannedOutcome is the outcome a dry run predicts for a pair.
func plannedOutcome(pr match.Pair, rec sidecar.Record, parseErr error) report.Outcome {
	return writtenOutcome(pr, rec, parseErr, nil)
}

// writtenOutcome classifies a successfully written entry. A partial parse
// with surviving fields still counts as fixed; the parse fault stays on
// the item for the report. Only a sidecar that yields nothing usable, or
// an injection failure, degrades the entry to a verbatim copy.
func writtenOutcome(pr match.Pair, rec sidecar.Record, parseErr, degraded error) report.Outcome {
	switch pr.Kind {
	case match.KindAmbiguous:
		return report.OutcomeAmbiguous
	case match.KindUnmatched:
		return report.OutcomeCopied
	}
	if degraded != nil {
		return report.OutcomeDegraded
	}
	if rec.IsEmpty() && parseErr != nil {
		return report.OutcomeDegraded
	}
	return report.OutcomeFixed
}

// readRecord parses the sidecar group's JSON body. Occurrences are tried
// in catalog order: when one volume's copy cannot be read, another
// volume's may still be intact. A malformed body is not retried; its
// partial record is returned with the parse fault.
func readRecord(group catalog.Group) (sidecar.Record, error) {
	var lastErr error
	for _, it := range group.Items {
		rc, err := it.Entry.Open()
		if err != nil {
			lastErr = errors.WrapIO("open sidecar", it.Entry.Ref(), err)
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			lastErr = errors.WrapIO("read sidecar", it.Entry.Ref(), err)
			continue
		}
		rec, perr := sidecar.Parse(data)
		if perr != nil {
			return rec, errors.NewParseError(it.Entry.Path, it.Entry.Volume, perr)
		}
		return rec, nil
	}
	return sidecar.Record{Partial: true}, lastErr
}

// writeEntry stages the entry into a temporary file next to its final
// path, injects metadata into the staged copy when wanted, and renames
// the finished file into place. The final path never holds a partial
// file; any abort leaves at most an orphaned temporary.
func (e *Engine) writeEntry(ctx context.Context, inj inject.Injector, entry archive.Entry, rec sidecar.Record, wantInject bool, destPath string) (size int64, crc uint32, degraded error, err error) {
	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return 0, 0, nil, errors.WrapWrite(dir, "create", err)
	}

	base := filepath.Base(destPath)
	tmpPath, size, crc, err := stageCopy(entry, dir, base)
	if err != nil {
		return 0, 0, nil, err
	}
	defer func() {
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	if wantInject {
		if injErr := inj.Inject(ctx, tmpPath, rec); injErr != nil {
			degraded = errors.NewInjectionError(entry.Path, inj.Name(), injErr)
			// The tool may have half-rewritten the staged copy; rebuild it
			// verbatim so the output is at least a clean copy.
			os.Remove(tmpPath)
			tmpPath, size, crc, err = stageCopy(entry, dir, base)
			if err != nil {
				return 0, 0, degraded, err
			}
		} else {
			size, crc, err = checksumAndSync(tmpPath)
			if err != nil {
				return 0, 0, nil, errors.WrapWrite(tmpPath, "verify", err)
			}
		}
	}

	// CreateTemp defaults to owner-only mode; outputs are regular library
	// files.
	if err = os.Chmod(tmpPath, constants.FilePermissions); err != nil {
		return 0, 0, degraded, errors.WrapWrite(tmpPath, "chmod", err)
	}
	if err = os.Rename(tmpPath, destPath); err != nil {
		return 0, 0, degraded, errors.WrapWrite(destPath, "rename", err)
	}
	syncDir(dir)
	return size, crc, degraded, nil
}

// stageCopy copies the entry bytes into a fresh temporary file in dir,
// fsyncs it, and returns its path, size and checksum.
func stageCopy(entry archive.Entry, dir, base string) (string, int64, uint32, error) {
	src, err := entry.Open()
	if err != nil {
		return "", 0, 0, errors.WrapIO("open entry", entry.Ref(), err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return "", 0, 0, errors.WrapWrite(dir, "create", err)
	}
	h := crc32.NewIEEE()
	buf := make([]byte, constants.CopyBufferSize)
	size, err := io.CopyBuffer(io.MultiWriter(tmp, h), src, buf)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", 0, 0, errors.WrapWrite(tmp.Name(), "write", err)
	}
	return tmp.Name(), size, h.Sum32(), nil
}

// checksumAndSync sizes, checksums and fsyncs a staged file the injector
// rewrote in place.
func checksumAndSync(path string) (int64, uint32, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	h := crc32.NewIEEE()
	buf := make([]byte, constants.CopyBufferSize)
	size, err := io.CopyBuffer(h, f, buf)
	if err != nil {
		return 0, 0, err
	}
	if err := f.Sync(); err != nil {
		return 0, 0, err
	}
	return size, h.Sum32(), nil
}

// syncDir flushes the directory entry after a rename, best effort.
func syncDir(dir string) {
	if d, err := os.Open(dir); err == nil {
		d.Sync()
		d.Close()
	}
}

// outputRel is the destination path for an item relative to the
// destination root, preserving the album layout.
func outputRel(item catalog.Item) string {
	return path.Join(item.Album, item.Key.Name)
}
