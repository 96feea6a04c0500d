package deps

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractVersion(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"bare exiftool output", "13.10\n", "13.10"},
		{"three components", "v12.7.6", "12.7.6"},
		{"labelled output", "ExifTool Version Number : 12.76", "12.76"},
		{"no version", "command not understood", ""},
		{"single number is not a version", "exit 13", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractVersion(tt.output))
		})
	}
}

func TestAtLeast(t *testing.T) {
	tests := []struct {
		detected string
		required string
		want     bool
	}{
		{"13.10", "13.9", true}, // numeric, not lexical
		{"13.9", "13.10", false},
		{"12.76", "13.0", false},
		{"13.0", "13.0", true},
		{"13", "13.1", false},
		{"13", "13.0", true},
		{"2.0.0", "2.0", true},
		{"10.0", "9.9", true},
		{"v1.2.3", "1.2.2", true},
	}

	for _, tt := range tests {
		t.Run(tt.detected+" vs "+tt.required, func(t *testing.T) {
			assert.Equal(t, tt.want, atLeast(tt.detected, tt.required))
		})
	}
}

func TestExiftoolDependency(t *testing.T) {
	dep := Exiftool("")
	assert.Equal(t, []string{"exiftool"}, dep.Commands)
	assert.Equal(t, "-ver", dep.VersionArgs[0], "exiftool's own version flag goes first")
	assert.NotEmpty(t, dep.InstallURL)

	pinned := Exiftool("/opt/tools/exiftool")
	assert.Equal(t, []string{"/opt/tools/exiftool"}, pinned.Commands)
}

func TestCheckMissingBinary(t *testing.T) {
	dep := Dependency{
		Name:        "nonexistent",
		DisplayName: "Nonexistent Tool",
		Commands:    []string{"takeout-fixer-test-no-such-binary"},
	}

	status := Check(context.Background(), dep)
	assert.False(t, status.Available)
	assert.Empty(t, status.Path)
	require.Error(t, status.CheckError)
	assert.Contains(t, status.CheckError.Error(), "not found in PATH")
}

func TestCheckFindsFakeTool(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "faketool")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho 9.87\n"), 0o755))
	t.Setenv("PATH", dir)

	dep := Dependency{
		Name:        "faketool",
		DisplayName: "Fake Tool",
		Commands:    []string{"faketool"},
		VersionArgs: []string{"-ver"},
	}

	status := Check(context.Background(), dep)
	require.True(t, status.Available)
	assert.Equal(t, script, status.Path)
	assert.Equal(t, "9.87", status.Version)
	assert.NoError(t, status.CheckError)

	dep.MinVersion = "10.0"
	status = Check(context.Background(), dep)
	assert.True(t, status.Available, "an old version is still available")
	require.Error(t, status.CheckError)
	assert.Contains(t, status.CheckError.Error(), "10.0 or later")
}

func TestInstructions(t *testing.T) {
	msg := Instructions(Exiftool(""))
	assert.Contains(t, msg, "ExifTool")
	assert.Contains(t, msg, "https://exiftool.org")
}
