package preview

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/catalog"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/constants"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/match"
)

// Probe is the capture time probe result for one sampled media entry.
type Probe struct {
	Path string `json:"path" yaml:"path"`

	// CaptureTime is the timestamp the entry already embeds, nil when
	// none could be read.
	CaptureTime *time.Time `json:"capture_time,omitempty" yaml:"capture_time,omitempty"`
}

// probeSample probes up to limit media entries. Unmatched and ambiguous
// entries come first: for those an embedded capture time is the only
// timestamp the library will ever have.
func probeSample(ctx context.Context, plan *match.Plan, limit int) []Probe {
	if limit <= 0 {
		return nil
	}

	var sample []catalog.Item
	for _, kind := range []match.Kind{match.KindUnmatched, match.KindAmbiguous, match.KindMatched} {
		for _, pair := range plan.Pairs {
			if len(sample) == limit {
				break
			}
			if pair.Kind != kind || !probeable(pair.Media.Path) {
				continue
			}
			sample = append(sample, pair.Media.Primary())
		}
	}

	var probes []Probe
	for _, item := range sample {
		if ctx.Err() != nil {
			break
		}
		probes = append(probes, probeItem(item))
	}
	return probes
}

// probeable reports whether the entry is a format the probe can decode.
func probeable(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".jpg", ".jpeg", ".tif", ".tiff":
		return true
	default:
		return false
	}
}

// probeItem reads the embedded capture time of one entry. Any failure,
// including an entry without EXIF at all, yields a Probe with no time.
func probeItem(item catalog.Item) Probe {
	pr := Probe{Path: item.Entry.Path}

	rc, err := item.Entry.Open()
	if err != nil {
		return pr
	}
	defer rc.Close()

	when, err := CaptureTime(io.LimitReader(rc, constants.ProbeReadLimit))
	if err != nil {
		return pr
	}
	pr.CaptureTime = &when
	return pr
}

// CaptureTime extracts the capture timestamp embedded in a media stream:
// EXIF DateTimeOriginal, or DateTime when the original tag is absent.
func CaptureTime(r io.Reader) (time.Time, error) {
	x, err := exif.Decode(r)
	if err != nil {
		return time.Time{}, err
	}
	return x.DateTime()
}
