// Package save persists run reports outside the destination tree.
//
// Targets and formats follow the functional options pattern: WithPath
// writes a file atomically through a staged temporary, WithWriter streams
// to any io.Writer, and WithFormat selects JSON or YAML.
package save

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/constants"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/errors"
	"github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer/pkg/report"
)

// ParseFormat converts a format name to a Format. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return FormatJSON, errors.NewValidationError("format", s, "must be json or yaml")
	}
}

// Report writes a run report to the configured target. One of WithPath or
// WithWriter is required; a writer takes precedence when both are given.
func Report(rep *report.Report, opts ...Option) error {
	options := Defaults().Apply(opts...)

	data, err := marshal(rep, options.Format())
	if err != nil {
		return errors.WrapIO("encode", "report", err)
	}

	if w := options.Writer(); w != nil {
		_, werr := w.Write(data)
		return errors.WrapIO("write", "report", werr)
	}

	path := options.Path()
	if path == "" {
		return errors.NewValidationError("path", "", "a path or writer is required")
	}
	return writeFileAtomic(path, data)
}

func marshal(rep *report.Report, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(rep)
	default:
		return json.MarshalIndent(rep, "", "  ")
	}
}

// writeFileAtomic stages content next to path and renames it into place,
// creating parent directories as needed.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapWrite(dir, "create", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.WrapWrite(path, "create", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.WrapWrite(path, "write", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.WrapWrite(path, "close", err)
	}
	if err := os.Chmod(tmp.Name(), constants.FilePermissions); err != nil {
		os.Remove(tmp.Name())
		return errors.WrapWrite(path, "chmod", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errors.WrapWrite(path, "rename", err)
	}
	return nil
}
