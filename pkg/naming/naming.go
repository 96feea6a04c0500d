// Package naming canonicalizes raw archive paths into matching keys by
// reversing the exporter's lossy renaming: sidecar marker extensions,
// "-edited" marker tokens, parenthesized duplicate counters, and stem
// truncation. Normalization is a pure function of the path string; it never
// consults other entries or any archive state, so every rule is testable
// per path.
//
// The rule table itself lives in Rules and is versioned separately from the
// matching precedence logic, because the exporter's naming scheme is
// empirical and grows new patterns over time.
package naming

import (
	"path"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Class is the extension class of an archive entry.
type Class int

// Extension classes.
const (
	// ClassOther is anything the fixer does not process.
	ClassOther Class = iota
	// ClassImage is a still image container.
	ClassImage
	// ClassVideo is a video container.
	ClassVideo
	// ClassSidecar is a JSON metadata sidecar describing one media file.
	ClassSidecar
	// ClassAlbumMeta is album-level metadata, not tied to a single media file.
	ClassAlbumMeta
)

// String returns the string representation of the class.
func (c Class) String() string {
	switch c {
	case ClassImage:
		return "image"
	case ClassVideo:
		return "video"
	case ClassSidecar:
		return "sidecar"
	case ClassAlbumMeta:
		return "album-meta"
	default:
		return "other"
	}
}

// IsMedia reports whether the class is a media container.
func (c Class) IsMedia() bool {
	return c == ClassImage || c == ClassVideo
}

// Key is the matching identity derived from a raw archive path.
//
// For media entries, Stem is the filename stem with the duplicate counter
// and any edited marker stripped, and Described is the counter-free
// filename (marker kept) the exporter derives sidecar names from.
//
// For sidecar entries, Described is the media filename the sidecar
// describes, recovered by stripping the sidecar extension, the
// supplemental marker and the counter. When the exporter truncated the
// sidecar name so far that the described filename cannot be recovered,
// Truncated is set and Stem holds the surviving prefix instead.
type Key struct {
	Dir       string // directory portion of the path, slash separated, "" at the root
	Name      string // base filename exactly as stored in the archive
	Stem      string // canonical stem, or the comparable prefix when Truncated
	Ext       string // lowercased extension of the described filename, "" when Truncated
	Class     Class
	Counter   int    // parenthesized duplicate counter, 0 when absent
	Edited    bool   // carried an edited marker token
	Truncated bool   // participates in prefix matching (see Rules.PrefixEligible)
	Described string // counter-free media filename, "" when Truncated
}

// IsZero reports whether the key is the zero value.
func (k Key) IsZero() bool {
	return k.Name == "" && k.Stem == "" && k.Class == ClassOther
}

// Path returns the key's directory and name joined back into a relative path.
func (k Key) Path() string {
	if k.Dir == "" {
		return k.Name
	}
	return k.Dir + "/" + k.Name
}

// Normalize canonicalizes a raw archive path using the default rule table.
// It is pure and idempotent: normalizing a key's stem again yields the
// same stem.
func Normalize(p string) Key {
	return DefaultRules().Normalize(p)
}

// counterPattern matches a trailing parenthesized duplicate counter,
// e.g. "IMG_1234(1)".
var counterPattern = regexp.MustCompile(`^(.+)\((\d+)\)$`)

// extractCounter splits a trailing "(N)" counter off s. It returns s
// unchanged with counter 0 when no counter is present.
func extractCounter(s string) (string, int) {
	m := counterPattern.FindStringSubmatch(s)
	if len(m) != 3 {
		return s, 0
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return s, 0
	}
	return m[1], n
}

// splitPath splits a slash-separated archive path into directory and base
// components after NFC normalization. Archive entries always use forward
// slashes regardless of platform.
func splitPath(p string) (dir, base string) {
	p = norm.NFC.String(p)
	p = strings.TrimSuffix(p, "/")
	dir, base = path.Split(p)
	return strings.TrimSuffix(dir, "/"), base
}

// lowerExt returns the lowercased final extension of name including the
// leading dot, or "" when name has none.
func lowerExt(name string) string {
	ext := path.Ext(name)
	if ext == "" || ext == name {
		return ""
	}
	return strings.ToLower(ext)
}
