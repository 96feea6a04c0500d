package catalog

import (
	"fmt"
	"testing"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/archive"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/constants"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/naming"
)

// TestCatalog builds a catalog from bare archive paths without touching
// disk, one volume per path list. Paths relative to the media root are
// accepted and prefixed automatically.
func TestCatalog(t testing.TB, volumes ...[]string) *Catalog {
	t.Helper()

	cat := newCatalog(naming.DefaultRules())
	cat.Stats.Volumes = len(volumes)
	cat.Volumes = make([]VolumeSummary, len(volumes))
	for vi := range volumes {
		cat.Volumes[vi].Name = volumeName(vi)
	}
	prefix := constants.TakeoutRoot + "/" + constants.DefaultMediaRoot + "/"

	for vi, paths := range volumes {
		for order, p := range paths {
			if len(p) < len(prefix) || p[:len(prefix)] != prefix {
				p = prefix + p
			}
			cat.fold(archive.Entry{
				Path:        p,
				Volume:      volumeName(vi),
				VolumeIndex: vi,
				Order:       order,
			}, prefix)
		}
	}
	return cat
}

func volumeName(i int) string {
	return fmt.Sprintf("takeout-%03d.zip", i+1)
}
