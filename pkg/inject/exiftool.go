package inject

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/barasher/go-exiftool"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/constants"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/errors"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/sidecar"
)

// toolName is the external binary the adapter drives.
const toolName = "exiftool"

// ExifTool injects metadata through a long lived exiftool process in
// stay-open mode, one spawn per worker instead of one per file.
type ExifTool struct {
	tool *exiftool.Exiftool
}

// NewExifTool starts an exiftool process. An empty binary means exiftool
// from PATH. It fails fast when the binary is not installed.
func NewExifTool(binary string) (*ExifTool, error) {
	if binary == "" {
		binary = toolName
	}
	if _, err := exec.LookPath(binary); err != nil {
		return nil, fmt.Errorf("%w: %s not found, install it or run with --no-exif", errors.ErrInjectionFault, binary)
	}

	var opts []func(*exiftool.Exiftool) error
	if binary != toolName {
		opts = append(opts, exiftool.SetExiftoolBinaryPath(binary))
	}
	tool, err := exiftool.NewExiftool(opts...)
	if err != nil {
		return nil, errors.NewInjectionError("", binary, err)
	}
	return &ExifTool{tool: tool}, nil
}

// Name identifies the injector.
func (*ExifTool) Name() string { return toolName }

// Inject writes the record's tags into the file at path. Tags follow the
// exiftool vocabulary, which maps them onto EXIF for images and QuickTime
// atoms for video containers.
func (e *ExifTool) Inject(ctx context.Context, path string, rec sidecar.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fields := Fields(rec)
	if len(fields) == 0 {
		return nil
	}

	fm := exiftool.EmptyFileMetadata()
	fm.File = path
	for tag, value := range fields {
		fm.Fields[tag] = value
	}

	batch := []exiftool.FileMetadata{fm}
	e.tool.WriteMetadata(batch)
	if err := batch[0].Err; err != nil {
		return errors.NewInjectionError(path, toolName, err)
	}
	return nil
}

// Close shuts the exiftool process down.
func (e *ExifTool) Close() error {
	return e.tool.Close()
}

// Fields maps a record onto exiftool tag assignments. Exposed separately
// so the mapping is testable without the binary.
func Fields(rec sidecar.Record) map[string]interface{} {
	fields := make(map[string]interface{})
	if rec.Description != "" {
		fields["ImageDescription"] = rec.Description
	}
	if !rec.Taken.IsZero() {
		fields["DateTimeOriginal"] = rec.Taken.Format(constants.TimeFormatExif)
	}
	if !rec.Created.IsZero() {
		fields["CreateDate"] = rec.Created.Format(constants.TimeFormatExif)
	}
	if rec.HasGeo {
		fields["GPSLatitude"] = abs(rec.Latitude)
		fields["GPSLongitude"] = abs(rec.Longitude)
		fields["GPSLatitudeRef"] = ref(rec.Latitude, "N", "S")
		fields["GPSLongitudeRef"] = ref(rec.Longitude, "E", "W")
		if rec.Altitude != 0 {
			fields["GPSAltitude"] = abs(rec.Altitude)
			fields["GPSAltitudeRef"] = ref(rec.Altitude, "0", "1")
		}
	}
	return fields
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func ref(v float64, pos, neg string) string {
	if v < 0 {
		return neg
	}
	return pos
}
