package naming

import (
	"strings"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/constants"
)

// RulesVersion identifies the current rule table. Bump it whenever the
// table changes so run reports can record which rules produced a plan.
const RulesVersion = "2024.1"

// supplementalSuffixes is every observed truncation of the sidecar marker
// the exporter appends between the media filename and the ".json"
// extension. The exporter cuts the full marker at an arbitrary byte, so
// all progressive prefixes appear in real archives. Ordered longest first;
// stripping takes the first match.
var supplementalSuffixes = []string{
	".supplemental-metadata",
	".supplemental-metadat",
	".supplemental-metada",
	".supplemental-metad",
	".supplemental-meta",
	".supplemental-met",
	".supplemental-me",
	".supplemental-m",
	".supplemental-",
	".supplemental",
	".supplementa",
	".supplement",
	".supplemen",
	".suppleme",
	".supplem",
	".supple",
	".suppl",
	".supp",
	".sup",
	".su",
	".s",
}

// editedMarkers are the marker tokens the exporter appends to the stem of
// a locally edited rendition. The token is localized per account language.
var editedMarkers = []string{
	"-edited",
	"-bearbeitet",
	"-editado",
	"-redigerad",
	"-modifié",
}

// imageExtensions are the still image containers the fixer processes.
var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
	".heic": {},
	".heif": {},
	".tiff": {},
	".tif":  {},
	".bmp":  {},
	".avif": {},
	".raw":  {},
	".dng":  {},
	".nef":  {},
	".cr2":  {},
}

// videoExtensions are the video containers the fixer processes.
var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".avi":  {},
	".mkv":  {},
	".webm": {},
	".m4v":  {},
	".3gp":  {},
	".mpg":  {},
	".mpeg": {},
	".wmv":  {},
	".mts":  {},
}

// albumMetaNames are JSON basenames that carry album or account level
// metadata rather than describing a single media file. They are excluded
// from sidecar matching entirely.
var albumMetaNames = map[string]struct{}{
	"metadata.json":                     {},
	"print-subscriptions.json":          {},
	"shared_album_comments.json":        {},
	"user-generated-memory-titles.json": {},
}

// Rules is a versioned rule table for path normalization. All knowledge of
// the exporter's naming scheme lives here; matching precedence does not.
// The zero value is not usable, construct with DefaultRules.
type Rules struct {
	version             string
	supplementalSuffix  []string
	editedMarkers       []string
	imageExts           map[string]struct{}
	videoExts           map[string]struct{}
	albumMetaNames      map[string]struct{}
	truncatedStemLength int
	minPrefixLength     int
}

// DefaultRules returns the rule table for the current exporter naming
// scheme.
func DefaultRules() *Rules {
	return &Rules{
		version:             RulesVersion,
		supplementalSuffix:  supplementalSuffixes,
		editedMarkers:       editedMarkers,
		imageExts:           imageExtensions,
		videoExts:           videoExtensions,
		albumMetaNames:      albumMetaNames,
		truncatedStemLength: constants.TruncatedStemLength,
		minPrefixLength:     constants.MinTruncatedPrefix,
	}
}

// Version returns the rule table version string.
func (r *Rules) Version() string {
	return r.version
}

// TruncationLength returns the stem length at which the exporter starts
// cutting sidecar names.
func (r *Rules) TruncationLength() int {
	return r.truncatedStemLength
}

// MinPrefixLength returns the shortest truncated prefix that may claim a
// media file. Shorter prefixes match too many stems to be trustworthy.
func (r *Rules) MinPrefixLength() int {
	return r.minPrefixLength
}

// Normalize canonicalizes a raw archive path into a matching key.
func (r *Rules) Normalize(p string) Key {
	dir, base := splitPath(p)
	if base == "" {
		return Key{Dir: dir}
	}

	lower := strings.ToLower(base)
	if _, ok := r.albumMetaNames[lower]; ok {
		return Key{Dir: dir, Name: base, Class: ClassAlbumMeta}
	}
	if strings.HasSuffix(lower, ".json") {
		return r.normalizeSidecar(dir, base)
	}
	return r.normalizeMedia(dir, base)
}

// normalizeSidecar recovers the described media filename from a sidecar
// name of the form <media>[.<marker>][(N)].json, where the marker may be
// any truncation of the supplemental suffix and the counter may sit either
// after the marker or inside the media stem.
func (r *Rules) normalizeSidecar(dir, base string) Key {
	rest := base[:len(base)-len(".json")]
	rest, counter := extractCounter(rest)
	rest = r.stripSupplementalSuffix(rest)

	ext := lowerExt(rest)
	if !r.isMediaExt(ext) {
		// The described extension did not survive truncation. Keep the raw
		// prefix for longest-prefix matching.
		return Key{
			Dir:       dir,
			Name:      base,
			Stem:      rest,
			Class:     ClassSidecar,
			Counter:   counter,
			Truncated: true,
		}
	}

	stem, inner, marker := r.splitStem(rest[:len(rest)-len(ext)])
	if counter == 0 {
		counter = inner
	}
	return Key{
		Dir:       dir,
		Name:      base,
		Stem:      stem,
		Ext:       ext,
		Class:     ClassSidecar,
		Counter:   counter,
		Edited:    marker != "",
		Described: stem + marker + ext,
	}
}

// normalizeMedia canonicalizes a media or unclassified filename.
func (r *Rules) normalizeMedia(dir, base string) Key {
	ext := lowerExt(base)
	class := r.classifyExt(ext)
	if !class.IsMedia() {
		return Key{Dir: dir, Name: base, Ext: ext, Class: ClassOther}
	}

	stem, counter, marker := r.splitStem(base[:len(base)-len(ext)])
	described := stem + marker + ext
	return Key{
		Dir:       dir,
		Name:      base,
		Stem:      stem,
		Ext:       ext,
		Class:     class,
		Counter:   counter,
		Edited:    marker != "",
		Truncated: len(described)-len(ext) >= r.truncatedStemLength,
		Described: described,
	}
}

// Classify returns the extension class of a basename without full
// normalization.
func (r *Rules) Classify(name string) Class {
	lower := strings.ToLower(name)
	if _, ok := r.albumMetaNames[lower]; ok {
		return ClassAlbumMeta
	}
	if strings.HasSuffix(lower, ".json") {
		return ClassSidecar
	}
	return r.classifyExt(lowerExt(name))
}

func (r *Rules) classifyExt(ext string) Class {
	if _, ok := r.imageExts[ext]; ok {
		return ClassImage
	}
	if _, ok := r.videoExts[ext]; ok {
		return ClassVideo
	}
	return ClassOther
}

func (r *Rules) isMediaExt(ext string) bool {
	return r.classifyExt(ext).IsMedia()
}

// stripSupplementalSuffix removes the sidecar marker, or any truncation of
// it, from the end of s. Comparison is case insensitive.
func (r *Rules) stripSupplementalSuffix(s string) string {
	lower := strings.ToLower(s)
	for _, suffix := range r.supplementalSuffix {
		if strings.HasSuffix(lower, suffix) {
			return s[:len(s)-len(suffix)]
		}
	}
	return s
}

// splitStem takes the duplicate counter and the edited marker off a
// filename stem, whichever order they appear in. The common layout is
// "base-edited(1)"; some exports produce "base(1)-edited", so after
// stripping a marker the counter is extracted once more.
func (r *Rules) splitStem(stem string) (base string, counter int, marker string) {
	base, counter = extractCounter(stem)
	base, marker = r.splitEditedMarker(base)
	if marker != "" && counter == 0 {
		base, counter = extractCounter(base)
	}
	return base, counter, marker
}

// splitEditedMarker takes a trailing edited marker token off the stem and
// returns it so callers can rebuild the counter-free filename. Comparison
// is case insensitive; the returned marker keeps the original casing.
func (r *Rules) splitEditedMarker(stem string) (string, string) {
	lower := strings.ToLower(stem)
	for _, marker := range r.editedMarkers {
		if strings.HasSuffix(lower, marker) && len(stem) > len(marker) {
			return stem[:len(stem)-len(marker)], stem[len(stem)-len(marker):]
		}
	}
	return stem, ""
}

// ExactNames returns the ordered sidecar name forms to try when looking up
// a media key's sidecar by exact identity. The first form is the described
// filename itself. Exports that renamed "name_.ext" media drop the
// trailing underscore from the sidecar, so underscore variants follow.
func (r *Rules) ExactNames(k Key) []string {
	if k.Described == "" {
		return nil
	}
	names := []string{k.Described}
	stem := k.Described[:len(k.Described)-len(k.Ext)]
	if trimmed := strings.TrimRight(stem, "_"); trimmed != stem && trimmed != "" {
		names = append(names, trimmed+k.Ext, trimmed)
	}
	return names
}

// FallbackNames returns the name forms of the unedited original a locally
// edited rendition falls back to when it has no sidecar of its own.
func (r *Rules) FallbackNames(k Key) []string {
	if !k.Edited {
		return nil
	}
	names := []string{k.Stem + k.Ext}
	if trimmed := strings.TrimRight(k.Stem, "_"); trimmed != k.Stem && trimmed != "" {
		names = append(names, trimmed+k.Ext, trimmed)
	}
	return names
}

// PrefixEligible reports whether a media key may be claimed by a truncated
// sidecar prefix. Only stems at or beyond the truncation boundary qualify;
// shorter stems always produce a full sidecar name.
func (r *Rules) PrefixEligible(k Key) bool {
	return k.Class.IsMedia() && k.Truncated
}
