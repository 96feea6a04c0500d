// Package catalog merges the entries of every export volume into one
// ordered collection keyed by archive path. Enumeration runs one goroutine
// per volume; the merge itself is deterministic, ordered by volume
// position then by each entry's position inside its volume.
//
// A volume that cannot be opened or enumerated degrades the run instead of
// failing it. Only zero readable volumes is fatal, because then there is
// nothing to reconcile at all.
package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/archive"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/constants"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/errors"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/logging"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/naming"
)

// Item is one catalog entry: an archive entry joined with its normalized
// naming key and album location.
type Item struct {
	Entry archive.Entry
	Key   naming.Key

	// Album is the directory path relative to the media root, "" for media
	// directly under the root.
	Album string
}

// Group is every occurrence of one archive path across volumes, ordered by
// volume position then enumeration order. Items beyond the first are
// duplicates of the same logical file carried by additional volumes.
type Group struct {
	Path  string
	Items []Item
}

// Primary returns the first occurrence, the one a run processes.
func (g Group) Primary() Item {
	return g.Items[0]
}

// Duplicates returns the shadowed occurrences, if any.
func (g Group) Duplicates() []Item {
	return g.Items[1:]
}

// VolumeSummary is the entry breakdown of one volume, in discovery order.
type VolumeSummary struct {
	Name     string `json:"name" yaml:"name"`
	Entries  int    `json:"entries" yaml:"entries"`
	Media    int    `json:"media" yaml:"media"`
	Sidecars int    `json:"sidecars" yaml:"sidecars"`

	// Error is set when the volume could not be read; its counts are then
	// zero.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Stats summarizes a catalog build.
type Stats struct {
	Volumes        int `json:"volumes" yaml:"volumes"`
	FailedVolumes  int `json:"failed_volumes" yaml:"failed_volumes"`
	Entries        int `json:"entries" yaml:"entries"`
	Media          int `json:"media" yaml:"media"`
	Sidecars       int `json:"sidecars" yaml:"sidecars"`
	AlbumMeta      int `json:"album_meta" yaml:"album_meta"`
	Other          int `json:"other" yaml:"other"`
	OutsideRoot    int `json:"outside_root" yaml:"outside_root"`
	DuplicatePaths int `json:"duplicate_paths" yaml:"duplicate_paths"`
}

// Options configures a catalog build.
type Options struct {
	// MediaRoot is the media directory name under the Takeout root. The
	// export localizes it per account language; default is the English
	// form.
	MediaRoot string

	// Rules is the naming rule table, DefaultRules when nil.
	Rules *naming.Rules

	// Concurrency bounds parallel volume enumeration, DefaultWorkers when
	// zero.
	Concurrency int
}

// Catalog is the merged view of every volume.
type Catalog struct {
	// Rules is the rule table entries were normalized with.
	Rules *naming.Rules

	// Stats summarizes the build.
	Stats Stats

	// VolumeErrors holds one error per volume that could not be read.
	VolumeErrors []error

	// Volumes summarizes every discovered volume, readable or not.
	Volumes []VolumeSummary

	media     []Group
	sidecars  []Group
	albumMeta []Item

	browserPages []archive.Entry

	mediaIdx   map[string]int
	sidecarIdx map[string]int

	sources []archive.Source
}

func newCatalog(rules *naming.Rules) *Catalog {
	return &Catalog{
		Rules:      rules,
		mediaIdx:   make(map[string]int),
		sidecarIdx: make(map[string]int),
	}
}

// fold classifies one entry and files it into the catalog. Entries must be
// folded in volume order for group ordering to hold.
func (c *Catalog) fold(entry archive.Entry, prefix string) {
	c.Stats.Entries++
	vol := &c.Volumes[entry.VolumeIndex]
	vol.Entries++
	if !strings.HasPrefix(entry.Path, prefix) {
		c.Stats.OutsideRoot++
		return
	}
	item := Item{
		Entry: entry,
		Key:   c.Rules.Normalize(entry.Path),
		Album: albumOf(entry.Path, prefix),
	}

	switch item.Key.Class {
	case naming.ClassImage, naming.ClassVideo:
		c.Stats.Media++
		vol.Media++
		addToGroups(&c.media, c.mediaIdx, entry.Path, item, &c.Stats)
	case naming.ClassSidecar:
		c.Stats.Sidecars++
		vol.Sidecars++
		addToGroups(&c.sidecars, c.sidecarIdx, entry.Path, item, &c.Stats)
	case naming.ClassAlbumMeta:
		c.Stats.AlbumMeta++
		c.albumMeta = append(c.albumMeta, item)
	default:
		c.Stats.Other++
	}
}

// Build opens the given volume files and merges their entries. The
// returned catalog keeps the volumes open for entry reads; callers must
// Close it. Build fails only when not a single volume is readable.
func Build(ctx context.Context, paths []string, opts Options) (*Catalog, error) {
	logger := logging.FromContext(ctx)
	if opts.MediaRoot == "" {
		opts.MediaRoot = constants.DefaultMediaRoot
	}
	if opts.Rules == nil {
		opts.Rules = naming.DefaultRules()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = constants.DefaultWorkers
	}

	type result struct {
		source  archive.Source
		entries []archive.Entry
		err     error
	}
	results := make([]result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, path := range paths {
		g.Go(func() error {
			src, err := archive.Open(path)
			if err != nil {
				results[i] = result{err: errors.NewVolumeError(path, i, err)}
				return nil
			}
			entries, err := src.Entries(gctx)
			if err != nil {
				src.Close()
				if gctx.Err() != nil {
					return err
				}
				results[i] = result{err: errors.NewVolumeError(path, i, err)}
				return nil
			}
			results[i] = result{source: src, entries: entries}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, res := range results {
			if res.source != nil {
				res.source.Close()
			}
		}
		return nil, err
	}

	cat := newCatalog(opts.Rules)
	cat.Stats.Volumes = len(paths)
	cat.Volumes = make([]VolumeSummary, len(paths))
	for i, path := range paths {
		cat.Volumes[i].Name = filepath.Base(path)
	}
	prefix := constants.TakeoutRoot + "/" + opts.MediaRoot + "/"

	for i, res := range results {
		if res.err != nil {
			logger.Warn().Err(res.err).Str("volume", paths[i]).Msg("Skipping unreadable volume")
			cat.Stats.FailedVolumes++
			cat.VolumeErrors = append(cat.VolumeErrors, res.err)
			cat.Volumes[i].Error = res.err.Error()
			continue
		}
		cat.sources = append(cat.sources, res.source)

		if page, ok := archive.FindBrowserPage(res.entries); ok {
			page.VolumeIndex = i
			cat.browserPages = append(cat.browserPages, page)
		}

		for _, entry := range res.entries {
			entry.VolumeIndex = i
			cat.fold(entry, prefix)
		}
	}

	if len(cat.sources) == 0 {
		cat.Close()
		return nil, fmt.Errorf("%w: none of the %d volumes could be read: %w",
			errors.ErrNoVolumes, len(paths), errors.Join(cat.VolumeErrors...))
	}

	logger.Debug().
		Int("volumes", cat.Stats.Volumes).
		Int("media", cat.Stats.Media).
		Int("sidecars", cat.Stats.Sidecars).
		Int("duplicates", cat.Stats.DuplicatePaths).
		Msg("Catalog built")
	return cat, nil
}

// addToGroups appends an item to its path group, creating the group on
// first sight. Volumes are folded in order, so group items stay sorted by
// volume position.
func addToGroups(groups *[]Group, idx map[string]int, path string, item Item, stats *Stats) {
	if at, ok := idx[path]; ok {
		(*groups)[at].Items = append((*groups)[at].Items, item)
		if len((*groups)[at].Items) == 2 {
			stats.DuplicatePaths++
		}
		return
	}
	idx[path] = len(*groups)
	*groups = append(*groups, Group{Path: path, Items: []Item{item}})
}

// albumOf extracts the album directory relative to the media root.
func albumOf(path, prefix string) string {
	rel := strings.TrimPrefix(path, prefix)
	slash := strings.LastIndex(rel, "/")
	if slash < 0 {
		return ""
	}
	return rel[:slash]
}

// Media returns the media path groups in catalog order.
func (c *Catalog) Media() []Group {
	return c.media
}

// Sidecars returns the sidecar path groups in catalog order.
func (c *Catalog) Sidecars() []Group {
	return c.sidecars
}

// AlbumMeta returns album level metadata items in catalog order.
func (c *Catalog) AlbumMeta() []Item {
	return c.albumMeta
}

// BrowserPages returns each volume's export summary page entry, for the
// volumes that carry one.
func (c *Catalog) BrowserPages() []archive.Entry {
	return c.browserPages
}

// Close releases every open volume.
func (c *Catalog) Close() error {
	var first error
	for _, src := range c.sources {
		if err := src.Close(); err != nil && first == nil {
			first = err
		}
	}
	c.sources = nil
	return first
}
