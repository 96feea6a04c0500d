// Package sidecar parses the supplemental metadata JSON documents the
// export writes next to each media file. Parsing is tolerant: a malformed
// document yields whatever fields did decode plus a degradation error, so
// one bad sidecar downgrades a single entry instead of aborting a run.
package sidecar

import (
	"encoding/json"
	"strconv"
	"time"
)

// Document mirrors the supplemental metadata JSON schema. Unknown fields
// are ignored; the schema grows over time and new fields must not break
// older binaries.
type Document struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	ImageViews     string          `json:"imageViews"`
	CreationTime   *Timestamp      `json:"creationTime"`
	PhotoTakenTime *Timestamp      `json:"photoTakenTime"`
	GeoData        *GeoData        `json:"geoData"`
	GeoDataExif    *GeoData        `json:"geoDataExif"`
	URL            string          `json:"url"`
	People         []Person        `json:"people"`
	Favorited      bool            `json:"favorited"`
	Archived       bool            `json:"archived"`
	Trashed        bool            `json:"trashed"`
	Origin         json.RawMessage `json:"googlePhotosOrigin"`
	AppSource      json.RawMessage `json:"appSource"`
	Enrichments    json.RawMessage `json:"enrichments"`
}

// Timestamp is the export's two part timestamp encoding, a Unix epoch
// string plus a human readable rendering.
type Timestamp struct {
	Timestamp string `json:"timestamp"`
	Formatted string `json:"formatted"`
}

// Time decodes the epoch string in UTC. It returns the zero time when the
// value is absent or unparseable.
func (t *Timestamp) Time() time.Time {
	if t == nil || t.Timestamp == "" {
		return time.Time{}
	}
	secs, err := strconv.ParseInt(t.Timestamp, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

// GeoData is the export's coordinate block.
type GeoData struct {
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Altitude      float64 `json:"altitude"`
	LatitudeSpan  float64 `json:"latitudeSpan"`
	LongitudeSpan float64 `json:"longitudeSpan"`
}

// IsZero reports whether the block carries no position. The export writes
// all zero coordinates for media without location data, so an exact 0,0
// pair means absent rather than the Gulf of Guinea.
func (g *GeoData) IsZero() bool {
	return g == nil || (g.Latitude == 0 && g.Longitude == 0)
}

// Person is one tagged person.
type Person struct {
	Name string `json:"name"`
}

// Record is the injection ready distillation of a sidecar document. Zero
// valued fields mean the sidecar did not carry that datum.
type Record struct {
	// Title is the media filename the document claims to describe.
	Title string

	// Description is the user written caption.
	Description string

	// Taken is when the photo was taken, UTC.
	Taken time.Time

	// Created is when the media entered the library, UTC.
	Created time.Time

	// Latitude, Longitude and Altitude are the recorded position.
	// Meaningful only when HasGeo is set. A zero Altitude is not written
	// to outputs.
	Latitude  float64
	Longitude float64
	Altitude  float64

	// HasGeo reports whether the document carried a real position.
	HasGeo bool

	// Favorited mirrors the library favorite flag.
	Favorited bool

	// People are the tagged person names.
	People []string

	// Partial is set when the document was malformed and only some fields
	// decoded.
	Partial bool
}

// Parse decodes a sidecar document into a Record. It always returns a
// usable Record; when the document is malformed the record carries the
// fields that did decode, Partial is set, and the decode error is
// returned alongside for reporting.
func Parse(data []byte) (Record, error) {
	doc, err := ParseDocument(data)
	rec := doc.Record()
	if err != nil {
		rec.Partial = true
	}
	return rec, err
}

// ParseDocument decodes the raw document. On a field level type error the
// remaining fields still decode and the partially filled document is
// returned with the error.
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	err := json.Unmarshal(data, &doc)
	return doc, err
}

// Record distills the document into its injection ready form.
func (d Document) Record() Record {
	rec := Record{
		Title:       d.Title,
		Description: d.Description,
		Taken:       d.PhotoTakenTime.Time(),
		Created:     d.CreationTime.Time(),
		Favorited:   d.Favorited,
	}

	geo := d.GeoData
	if geo.IsZero() {
		// Some exports carry the position only in the EXIF mirror block.
		geo = d.GeoDataExif
	}
	if !geo.IsZero() {
		rec.HasGeo = true
		rec.Latitude = geo.Latitude
		rec.Longitude = geo.Longitude
		rec.Altitude = geo.Altitude
	}

	for _, p := range d.People {
		if p.Name != "" {
			rec.People = append(rec.People, p.Name)
		}
	}
	return rec
}

// IsEmpty reports whether the record carries nothing injectable.
func (r Record) IsEmpty() bool {
	return r.Description == "" && r.Taken.IsZero() && r.Created.IsZero() &&
		!r.HasGeo && !r.Favorited && len(r.People) == 0
}
