// Package deps verifies the external tools the fixer shells out to.
package deps

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// Dependency describes an external tool invoked at runtime.
type Dependency struct {
	// Name is the canonical identifier, e.g. "exiftool".
	Name string
	// DisplayName is the human readable name used in messages.
	DisplayName string
	// Commands lists candidate binary names, tried in order.
	Commands []string
	// VersionArgs lists the flags tried to obtain a version string.
	VersionArgs []string
	// MinVersion is the lowest supported version, empty for any.
	MinVersion string
	// InstallURL points at the tool's installation instructions.
	InstallURL string
	// Purpose says what the fixer uses the tool for.
	Purpose string
}

// Status is the result of probing the system for a dependency.
type Status struct {
	// Available reports whether any of the candidate binaries resolved.
	Available bool
	// Path is the resolved binary, when available.
	Path string
	// Version is the detected version string, best effort.
	Version string
	// CheckError carries what went wrong when the probe was not clean:
	// binary missing, version undetectable, or version below minimum.
	CheckError error
}

// Tool pairs a dependency with its probe result, plus a note for display.
type Tool struct {
	Dependency Dependency
	Status     Status
	// Note carries command-level context, e.g. that embedding is disabled.
	Note string
}

// Exiftool describes the metadata injection backend. A non-empty binary
// pins the probe to that path instead of searching PATH, matching how the
// injector resolves it.
func Exiftool(binary string) Dependency {
	commands := []string{"exiftool"}
	if binary != "" {
		commands = []string{binary}
	}
	return Dependency{
		Name:        "exiftool",
		DisplayName: "ExifTool",
		Commands:    commands,
		// exiftool -ver prints a bare version number.
		VersionArgs: []string{"-ver", "--version"},
		InstallURL:  "https://exiftool.org/install.html",
		Purpose:     "embeds capture time, GPS position and description into media files",
	}
}

// Check probes the system for a dependency. It tries the candidate
// commands in order and reports on the first one that resolves.
func Check(ctx context.Context, dep Dependency) Status {
	status := Status{}

	for _, cmd := range dep.Commands {
		path, err := exec.LookPath(cmd)
		if err != nil {
			continue
		}

		status.Available = true
		status.Path = path

		version, err := probeVersion(ctx, path, dep.VersionArgs)
		if err != nil {
			status.CheckError = fmt.Errorf("found %s but could not detect a version: %w", cmd, err)
			return status
		}
		status.Version = version

		if dep.MinVersion != "" && !atLeast(version, dep.MinVersion) {
			status.CheckError = fmt.Errorf("found %s %s but %s or later is required", cmd, version, dep.MinVersion)
		}
		return status
	}

	if len(dep.Commands) > 0 {
		status.CheckError = fmt.Errorf("%s not found in PATH (tried: %s)", dep.DisplayName, strings.Join(dep.Commands, ", "))
	}
	return status
}

// Instructions returns a short installation message for a missing
// dependency, suitable for stderr after a failed run.
func Instructions(dep Dependency) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s is required: it %s.\n", dep.DisplayName, dep.Purpose)
	if dep.InstallURL != "" {
		fmt.Fprintf(&b, "Install it from %s", dep.InstallURL)
		if dep.Name == "exiftool" {
			b.WriteString(" or via your package manager (apt install libimage-exiftool-perl, brew install exiftool)")
		}
		b.WriteString(".\n")
	}
	return b.String()
}

// probeVersion runs the binary with each version flag until one produces
// output a version number can be pulled from.
func probeVersion(ctx context.Context, path string, args []string) (string, error) {
	for _, arg := range args {
		//nolint:gosec // path comes from exec.LookPath on our own candidate list
		out, err := exec.CommandContext(ctx, path, arg).CombinedOutput()
		if err != nil {
			continue
		}
		if version := extractVersion(string(out)); version != "" {
			return version, nil
		}
	}
	return "", fmt.Errorf("no version flag produced a parseable version")
}

// versionPattern matches "13.10", "v12.7.6" and "version 1.2.3" alike.
// exiftool prints nothing but the bare number.
var versionPattern = regexp.MustCompile(`v?(\d+(?:\.\d+)+)`)

// extractVersion pulls the first dotted version number out of tool output.
func extractVersion(output string) string {
	matches := versionPattern.FindStringSubmatch(output)
	if len(matches) < 2 {
		return ""
	}
	return matches[1]
}

// atLeast reports whether detected is required or newer, comparing dotted
// components numerically so "13.10" outranks "13.9".
func atLeast(detected, required string) bool {
	dp := strings.Split(strings.TrimPrefix(detected, "v"), ".")
	rp := strings.Split(strings.TrimPrefix(required, "v"), ".")

	for i := 0; i < len(rp); i++ {
		if i >= len(dp) {
			// Detected has fewer components; missing ones count as zero.
			r, _ := strconv.Atoi(rp[i])
			if r > 0 {
				return false
			}
			continue
		}
		d, _ := strconv.Atoi(dp[i])
		r, _ := strconv.Atoi(rp[i])
		if d != r {
			return d > r
		}
	}
	return true
}
