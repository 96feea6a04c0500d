// Package match pairs media entries with the sidecars that describe them.
// Matching runs in precedence stages: exact described name first, then
// longest truncated prefix, then the unedited original's sidecar for
// edited renditions. Within one stage competing sidecar candidates are
// resolved deterministically, lowest volume first, then enumeration order.
//
// The one situation that is never guessed away is a truncated prefix
// claimed by two different media files. Unless the sidecar's recorded
// title names exactly one of them, all claimants are marked ambiguous and
// left untouched, because injecting the wrong capture time or position is
// worse than injecting nothing.
package match

import (
	"sort"
	"strings"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/catalog"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/naming"
)

// Kind is the outcome class of one media group.
type Kind int

// Match outcomes.
const (
	// KindUnmatched means no sidecar candidate qualified.
	KindUnmatched Kind = iota
	// KindMatched means exactly one winning sidecar was selected.
	KindMatched
	// KindAmbiguous means competing media claim the same truncated sidecar
	// and no evidence picks a winner.
	KindAmbiguous
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindMatched:
		return "matched"
	case KindAmbiguous:
		return "ambiguous"
	default:
		return "unmatched"
	}
}

// Strategy identifies which precedence stage produced a match.
type Strategy int

// Match strategies, in precedence order.
const (
	StrategyNone Strategy = iota
	StrategyExact
	StrategyTruncated
	StrategyEditedFallback
)

// String returns the string representation of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyExact:
		return "exact"
	case StrategyTruncated:
		return "truncated-prefix"
	case StrategyEditedFallback:
		return "edited-fallback"
	default:
		return "none"
	}
}

// Pair is the matching outcome for one media path group.
type Pair struct {
	Media    catalog.Group
	Kind     Kind
	Strategy Strategy

	// Sidecar is the winning sidecar group, nil unless Kind is
	// KindMatched.
	Sidecar *catalog.Group

	// Candidates lists the competing sidecar paths when Kind is
	// KindAmbiguous.
	Candidates []string
}

// Stats summarizes a matching plan.
type Stats struct {
	Media          int `json:"media" yaml:"media"`
	Matched        int `json:"matched" yaml:"matched"`
	Unmatched      int `json:"unmatched" yaml:"unmatched"`
	Ambiguous      int `json:"ambiguous" yaml:"ambiguous"`
	Exact          int `json:"exact" yaml:"exact"`
	Truncated      int `json:"truncated" yaml:"truncated"`
	EditedFallback int `json:"edited_fallback" yaml:"edited_fallback"`
	UnusedSidecars int `json:"unused_sidecars" yaml:"unused_sidecars"`
}

// Plan is the complete matching result for a catalog, in catalog order.
type Plan struct {
	Pairs          []Pair
	UnusedSidecars []catalog.Group
	Stats          Stats
}

// Options configures plan building.
type Options struct {
	// TitleOf returns the media filename a sidecar document records as its
	// title, "" when unknown. It is consulted only to settle truncated
	// prefix collisions, so implementations may read lazily.
	TitleOf func(item catalog.Item) string
}

// Build computes the matching plan for a catalog. Matching is sequential
// and deterministic: the same catalog always yields the same plan.
func Build(cat *catalog.Catalog, opts Options) *Plan {
	m := &matcher{
		rules:      cat.Rules,
		media:      cat.Media(),
		sidecars:   cat.Sidecars(),
		dirs:       make(map[string]*dirIndex),
		exactOwned: make(map[int]bool),
		used:       make(map[int]bool),
		titles:     make(map[int]*string),
		titleOf:    opts.TitleOf,
	}
	m.index()

	pairs := make([]Pair, len(m.media))
	for mi, g := range m.media {
		pairs[mi] = Pair{Media: g}
	}

	m.matchExact(pairs)
	m.matchTruncated(pairs)
	m.matchEditedFallback(pairs)

	plan := &Plan{Pairs: pairs}
	plan.Stats.Media = len(pairs)
	for _, p := range pairs {
		switch p.Kind {
		case KindMatched:
			plan.Stats.Matched++
			switch p.Strategy {
			case StrategyExact:
				plan.Stats.Exact++
			case StrategyTruncated:
				plan.Stats.Truncated++
			case StrategyEditedFallback:
				plan.Stats.EditedFallback++
			}
		case KindAmbiguous:
			plan.Stats.Ambiguous++
		default:
			plan.Stats.Unmatched++
		}
	}
	for gi, g := range m.sidecars {
		if !m.used[gi] {
			plan.UnusedSidecars = append(plan.UnusedSidecars, g)
		}
	}
	plan.Stats.UnusedSidecars = len(plan.UnusedSidecars)
	return plan
}

type matcher struct {
	rules    *naming.Rules
	media    []catalog.Group
	sidecars []catalog.Group

	dirs       map[string]*dirIndex
	exactOwned map[int]bool
	used       map[int]bool
	titles     map[int]*string
	titleOf    func(item catalog.Item) string
}

// dirIndex indexes one directory's sidecar groups. Matching never crosses
// directories; the exporter keeps a sidecar next to its media.
type dirIndex struct {
	byName    map[string][]int
	truncated []int
}

// index files every sidecar group under its directory. Full sidecars are
// keyed by the described filename; truncated ones by their surviving
// prefix, which also serves exact lookups for underscore mangled names.
func (m *matcher) index() {
	for gi, g := range m.sidecars {
		k := g.Primary().Key
		d := m.dirs[k.Dir]
		if d == nil {
			d = &dirIndex{byName: make(map[string][]int)}
			m.dirs[k.Dir] = d
		}
		if k.Truncated {
			d.byName[k.Stem] = append(d.byName[k.Stem], gi)
			d.truncated = append(d.truncated, gi)
		} else {
			d.byName[k.Described] = append(d.byName[k.Described], gi)
		}
	}
}

// matchExact runs the first stage: described name equality with strict
// counter equality. Several sidecar groups carrying the same name are
// legitimate, the export writes both old and new style sidecar names, and
// the first group in catalog order wins.
func (m *matcher) matchExact(pairs []Pair) {
	for mi := range pairs {
		k := pairs[mi].Media.Primary().Key
		gi, ok := m.lookup(k.Dir, m.rules.ExactNames(k), k.Counter)
		if !ok {
			continue
		}
		m.assign(&pairs[mi], gi, StrategyExact)
		m.exactOwned[gi] = true
	}
}

// matchTruncated runs the second stage. Every still unmatched media beyond
// the truncation boundary collects its qualifying prefixes, longest first.
// Claims are then settled as a fixpoint: a prefix wanted by two different
// media goes to the one the sidecar title names, or poisons all claimants
// as ambiguous when the title settles nothing.
func (m *matcher) matchTruncated(pairs []Pair) {
	cands := make(map[int][]int)
	pos := make(map[int]int)
	var active []int

	for mi := range pairs {
		if pairs[mi].Kind != KindUnmatched {
			continue
		}
		k := pairs[mi].Media.Primary().Key
		if !m.rules.PrefixEligible(k) {
			continue
		}
		list := m.truncatedCandidates(k.Dir, k.Described, k.Counter, true)
		if len(list) > 0 {
			cands[mi] = list
			active = append(active, mi)
		}
	}

	for {
		claims := make(map[int][]int)
		for _, mi := range active {
			if pairs[mi].Kind != KindUnmatched || pos[mi] >= len(cands[mi]) {
				continue
			}
			gi := cands[mi][pos[mi]]
			claims[gi] = append(claims[gi], mi)
		}

		conflicted := false
		for _, gi := range sortedKeys(claims) {
			claimants := claims[gi]
			if len(claimants) < 2 {
				continue
			}
			conflicted = true

			winner := m.resolveByTitle(gi, claimants, pairs)
			for _, mi := range claimants {
				if mi == winner {
					continue
				}
				if winner >= 0 {
					// The title names someone else; drop this candidate and
					// let the claimant try its next longest prefix.
					pos[mi]++
					continue
				}
				m.markAmbiguous(&pairs[mi], cands[mi][pos[mi]:])
			}
		}
		if !conflicted {
			break
		}
	}

	for _, mi := range active {
		if pairs[mi].Kind != KindUnmatched || pos[mi] >= len(cands[mi]) {
			continue
		}
		m.assign(&pairs[mi], cands[mi][pos[mi]], StrategyTruncated)
	}
}

// matchEditedFallback runs the last stage: an edited rendition without a
// sidecar of its own inherits the unedited original's. The original
// usually keeps its own exact match; sharing here is intended, so no
// ownership or collision checks apply.
func (m *matcher) matchEditedFallback(pairs []Pair) {
	for mi := range pairs {
		if pairs[mi].Kind != KindUnmatched {
			continue
		}
		k := pairs[mi].Media.Primary().Key
		if !k.Edited {
			continue
		}
		if gi, ok := m.lookup(k.Dir, m.rules.FallbackNames(k), k.Counter); ok {
			m.assign(&pairs[mi], gi, StrategyEditedFallback)
			continue
		}
		if len(k.Stem) >= m.rules.TruncationLength() {
			list := m.truncatedCandidates(k.Dir, k.Stem+k.Ext, k.Counter, false)
			if len(list) > 0 {
				m.assign(&pairs[mi], list[0], StrategyEditedFallback)
			}
		}
	}
}

// lookup finds the first sidecar group matching any of the given name
// forms with the given counter. Name forms are tried in order; within a
// form, catalog order decides.
func (m *matcher) lookup(dir string, names []string, counter int) (int, bool) {
	d := m.dirs[dir]
	if d == nil {
		return 0, false
	}
	for _, name := range names {
		for _, gi := range d.byName[name] {
			if m.sidecars[gi].Primary().Key.Counter == counter {
				return gi, true
			}
		}
	}
	return 0, false
}

// truncatedCandidates collects the truncated sidecar groups whose prefix
// fits the given described name, longest prefix first, catalog order
// within a length. Prefixes shorter than the rule table minimum are never
// trusted.
func (m *matcher) truncatedCandidates(dir, described string, counter int, skipOwned bool) []int {
	d := m.dirs[dir]
	if d == nil {
		return nil
	}
	var list []int
	for _, gi := range d.truncated {
		if skipOwned && m.exactOwned[gi] {
			continue
		}
		k := m.sidecars[gi].Primary().Key
		if k.Counter != counter || len(k.Stem) < m.rules.MinPrefixLength() {
			continue
		}
		if !strings.HasPrefix(described, k.Stem) {
			continue
		}
		list = append(list, gi)
	}
	sort.SliceStable(list, func(a, b int) bool {
		sa := m.sidecars[list[a]].Primary().Key.Stem
		sb := m.sidecars[list[b]].Primary().Key.Stem
		if len(sa) != len(sb) {
			return len(sa) > len(sb)
		}
		return list[a] < list[b]
	})
	return list
}

// resolveByTitle settles a contested sidecar group by its recorded title.
// It returns the index of the one claimant whose described name the title
// matches, or -1 when the title is unknown or matches none or several.
func (m *matcher) resolveByTitle(gi int, claimants []int, pairs []Pair) int {
	title := m.title(gi)
	if title == "" {
		return -1
	}
	described := m.rules.Normalize(title).Described
	if described == "" {
		return -1
	}

	winner := -1
	for _, mi := range claimants {
		if strings.EqualFold(pairs[mi].Media.Primary().Key.Described, described) {
			if winner >= 0 {
				return -1
			}
			winner = mi
		}
	}
	return winner
}

// title returns the memoized sidecar title for a group, preferring the
// primary item and falling back to duplicates.
func (m *matcher) title(gi int) string {
	if cached := m.titles[gi]; cached != nil {
		return *cached
	}
	var title string
	if m.titleOf != nil {
		for _, item := range m.sidecars[gi].Items {
			if title = m.titleOf(item); title != "" {
				break
			}
		}
	}
	m.titles[gi] = &title
	return title
}

func (m *matcher) assign(p *Pair, gi int, s Strategy) {
	group := m.sidecars[gi]
	p.Kind = KindMatched
	p.Strategy = s
	p.Sidecar = &group
	m.used[gi] = true
}

// markAmbiguous records the media's remaining candidate paths and marks
// the contested group as consumed so it is not reported unused as well.
func (m *matcher) markAmbiguous(p *Pair, remaining []int) {
	p.Kind = KindAmbiguous
	p.Strategy = StrategyNone
	for _, gi := range remaining {
		p.Candidates = append(p.Candidates, m.sidecars[gi].Path)
	}
	if len(remaining) > 0 {
		m.used[remaining[0]] = true
	}
}

func sortedKeys(m map[int][]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
