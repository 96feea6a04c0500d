// Package preview assembles the read only analysis of an export: per
// volume entry breakdowns, matching statistics, the entries that would
// need attention on a real run, export metadata from the archive's
// summary pages, and a sampled probe of capture times the media already
// embeds. Nothing here writes to disk.
package preview

import (
	"context"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/archive"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/catalog"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/match"
)

// Problem is one media path a run would copy verbatim instead of fixing.
type Problem struct {
	Path       string   `json:"path" yaml:"path"`
	Kind       string   `json:"kind" yaml:"kind"`
	Candidates []string `json:"candidates,omitempty" yaml:"candidates,omitempty"`
}

// Export is what one volume's bundled summary page says about itself.
type Export struct {
	Volume string `json:"volume" yaml:"volume"`
	Title  string `json:"title,omitempty" yaml:"title,omitempty"`
	Links  int    `json:"links" yaml:"links"`
}

// Preview is the full analysis document.
type Preview struct {
	Volumes        []catalog.VolumeSummary `json:"volumes" yaml:"volumes"`
	Catalog        catalog.Stats           `json:"catalog" yaml:"catalog"`
	Match          match.Stats             `json:"match" yaml:"match"`
	Problems       []Problem               `json:"problems,omitempty" yaml:"problems,omitempty"`
	UnusedSidecars []string                `json:"unused_sidecars,omitempty" yaml:"unused_sidecars,omitempty"`
	Exports        []Export                `json:"exports,omitempty" yaml:"exports,omitempty"`
	Probes         []Probe                 `json:"probes,omitempty" yaml:"probes,omitempty"`
}

// Options configures preview assembly.
type Options struct {
	// ProbeSample is the number of media entries probed for an embedded
	// capture time, 0 for none.
	ProbeSample int
}

// Build assembles the preview for a built catalog and its matching plan.
// Probe and summary page reads are best effort: a failure degrades the
// preview instead of failing it. The catalog must still be open.
func Build(ctx context.Context, cat *catalog.Catalog, plan *match.Plan, opts Options) *Preview {
	pv := &Preview{
		Volumes: cat.Volumes,
		Catalog: cat.Stats,
		Match:   plan.Stats,
	}

	for _, pair := range plan.Pairs {
		switch pair.Kind {
		case match.KindUnmatched:
			pv.Problems = append(pv.Problems, Problem{
				Path: pair.Media.Path,
				Kind: pair.Kind.String(),
			})
		case match.KindAmbiguous:
			pv.Problems = append(pv.Problems, Problem{
				Path:       pair.Media.Path,
				Kind:       pair.Kind.String(),
				Candidates: pair.Candidates,
			})
		}
	}
	for _, g := range plan.UnusedSidecars {
		pv.UnusedSidecars = append(pv.UnusedSidecars, g.Path)
	}

	pv.Exports = exports(cat)
	pv.Probes = probeSample(ctx, plan, opts.ProbeSample)
	return pv
}

// exports parses each volume's summary page into an Export.
func exports(cat *catalog.Catalog) []Export {
	var out []Export
	for _, page := range cat.BrowserPages() {
		rc, err := page.Open()
		if err != nil {
			continue
		}
		info, err := archive.ParseBrowserPage(rc)
		rc.Close()
		if err != nil {
			continue
		}
		out = append(out, Export{
			Volume: page.Volume,
			Title:  info.Title,
			Links:  len(info.Links),
		})
	}
	return out
}
