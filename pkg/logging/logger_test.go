package logging_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := zerolog.New(buf).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	logging.SetDefault(logger)

	logging.Debug().Msg("debug message")
	logging.Info().Msg("info message")
	logging.Warn().Msg("warning message")
	logging.Error().Msg("error message")

	output := buf.String()
	if !strings.Contains(output, "info message") {
		t.Errorf("Expected info message in output, got: %s", output)
	}
	if !strings.Contains(output, "debug message") {
		t.Errorf("Expected debug message in output, got: %s", output)
	}
}

func TestContextLogger(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)

	ctx = logging.WithVolume(ctx, "takeout-001.zip")
	ctx = logging.WithEntry(ctx, "Takeout/Google Photos/a.jpg")

	logger := logging.FromContext(ctx)
	logger.Info().Msg("test message")

	testLogger.AssertContains(t, "takeout-001.zip")
	testLogger.AssertContains(t, "Takeout/Google Photos/a.jpg")
	testLogger.AssertContains(t, "test message")
}

func TestFromContextFallback(t *testing.T) {
	// A context without a logger falls back to the default
	logger := logging.FromContext(context.Background())
	if logger == nil {
		t.Fatal("FromContext returned nil for empty context")
	}

	//nolint:staticcheck // Explicitly testing nil context handling
	logger = logging.FromContext(nil)
	if logger == nil {
		t.Fatal("FromContext returned nil for nil context")
	}
}

func TestWithRun(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithRun(ctx, "0193b2c4-run")

	logging.FromContext(ctx).Info().Msg("run started")

	testLogger.AssertContains(t, "run_id")
	testLogger.AssertContains(t, "0193b2c4-run")
}

func TestNewLoggerFromConfig(t *testing.T) {
	tests := []struct {
		name   string
		config *logging.Config
	}{
		{
			name:   "nil config uses defaults",
			config: nil,
		},
		{
			name: "json format",
			config: &logging.Config{
				Level:  "debug",
				Format: "json",
				Output: "discard",
			},
		},
		{
			name: "console format",
			config: &logging.Config{
				Level:  "warn",
				Format: "console",
				Output: "discard",
			},
		},
		{
			name: "default fields",
			config: &logging.Config{
				Level:  "info",
				Format: "json",
				Output: "discard",
				Fields: map[string]any{"component": "engine"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := logging.NewLoggerFromConfig(tt.config)
			// Must produce a usable logger regardless of configuration
			logger.Info().Msg("probe")
		})
	}
}

func TestWithFields(t *testing.T) {
	testLogger := logging.NewTestLogger(t)

	ctx := logging.WithLogger(context.Background(), testLogger.Logger)
	ctx = logging.WithFields(ctx, map[string]any{
		"volume_index": 2,
		"dry_run":      true,
	})

	logging.FromContext(ctx).Info().Msg("fields attached")

	testLogger.AssertContains(t, "volume_index")
	testLogger.AssertContains(t, "dry_run")
}
