package inject

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/sidecar"
)

func TestFields(t *testing.T) {
	rec := sidecar.Record{
		Description: "A beautiful sunset",
		Taken:       time.Date(2019, 7, 13, 15, 35, 19, 0, time.UTC),
		Created:     time.Date(2020, 4, 16, 11, 32, 26, 0, time.UTC),
		HasGeo:      true,
		Latitude:    46.7234,
		Longitude:   -17.3456,
		Altitude:    150.5,
	}

	fields := Fields(rec)
	assert.Equal(t, "A beautiful sunset", fields["ImageDescription"])
	assert.Equal(t, "2019:07:13 15:35:19", fields["DateTimeOriginal"])
	assert.Equal(t, "2020:04:16 11:32:26", fields["CreateDate"])
	assert.Equal(t, 46.7234, fields["GPSLatitude"])
	assert.Equal(t, "N", fields["GPSLatitudeRef"])
	assert.Equal(t, 17.3456, fields["GPSLongitude"])
	assert.Equal(t, "W", fields["GPSLongitudeRef"])
	assert.Equal(t, 150.5, fields["GPSAltitude"])
	assert.Equal(t, "0", fields["GPSAltitudeRef"])
}

func TestFieldsEmptyRecord(t *testing.T) {
	assert.Empty(t, Fields(sidecar.Record{Title: "IMG_0001.jpg"}))
}

func TestFieldsSkipsZeroAltitude(t *testing.T) {
	fields := Fields(sidecar.Record{HasGeo: true, Latitude: 1, Longitude: 2})
	assert.Contains(t, fields, "GPSLatitude")
	assert.NotContains(t, fields, "GPSAltitude")
	assert.NotContains(t, fields, "GPSAltitudeRef")
}

func TestFieldsBelowSeaLevel(t *testing.T) {
	fields := Fields(sidecar.Record{HasGeo: true, Latitude: -1, Longitude: 2, Altitude: -30})
	assert.Equal(t, "S", fields["GPSLatitudeRef"])
	assert.Equal(t, 30.0, fields["GPSAltitude"])
	assert.Equal(t, "1", fields["GPSAltitudeRef"])
}

func TestPassthrough(t *testing.T) {
	p := NewPassthrough()
	assert.Equal(t, "passthrough", p.Name())
	assert.NoError(t, p.Inject(context.Background(), "x.jpg", sidecar.Record{}))
	assert.NoError(t, p.Close())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, p.Inject(ctx, "x.jpg", sidecar.Record{}))
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	rec := sidecar.Record{Description: "x"}

	require.NoError(t, r.Inject(context.Background(), "a.jpg", rec))
	require.NoError(t, r.Inject(context.Background(), "b.jpg", rec))
	require.NoError(t, r.Close())

	calls := r.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "a.jpg", calls[0].Path)
	assert.Equal(t, "x", calls[0].Record.Description)
	assert.True(t, r.Closed())
}
