// Package errors provides custom error types for the takeout-fixer system.
// These errors carry the fault taxonomy of a reconciliation run: every fault
// is scoped to one archive volume or one entry, so callers can recover
// locally and surface the fault in the final report instead of aborting.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Join wraps a list of errors into one.
// It's an alias for the standard library errors.Join for convenience.
var Join = errors.Join

// Common sentinel errors for the takeout-fixer system
var (
	// ErrNoVolumes indicates that no archive volume in the input set could be enumerated
	ErrNoVolumes = errors.New("no readable archive volumes")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrVolumeFault indicates an unreadable or corrupt archive volume
	ErrVolumeFault = errors.New("volume fault")

	// ErrParseFault indicates a malformed metadata sidecar
	ErrParseFault = errors.New("parse fault")

	// ErrAmbiguous indicates multiple equally qualifying sidecar candidates
	ErrAmbiguous = errors.New("ambiguous match")

	// ErrNoMatch indicates that no sidecar candidate qualified
	ErrNoMatch = errors.New("no match")

	// ErrInjectionFault indicates the metadata injection service rejected an entry
	ErrInjectionFault = errors.New("injection fault")

	// ErrWriteFault indicates a destination I/O failure
	ErrWriteFault = errors.New("write fault")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// VolumeError reports an archive volume that could not be opened or
// enumerated. The run continues with the remaining volumes.
type VolumeError struct {
	Volume string // archive file path
	Index  int    // volume index within the input set
	Err    error
}

// Error implements the error interface
func (e *VolumeError) Error() string {
	return fmt.Sprintf("volume %d (%s): %v", e.Index, e.Volume, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *VolumeError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *VolumeError) Is(target error) bool {
	return target == ErrVolumeFault
}

// NewVolumeError creates a new VolumeError
func NewVolumeError(volume string, index int, err error) *VolumeError {
	return &VolumeError{Volume: volume, Index: index, Err: err}
}

// ParseError reports a sidecar whose JSON body could not be fully parsed.
// The match is kept; whatever fields survived are still applied.
type ParseError struct {
	Path   string // sidecar path inside the archive
	Volume string // archive file the sidecar came from
	Err    error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Volume != "" {
		return fmt.Sprintf("parsing sidecar %s (volume %s): %v", e.Path, e.Volume, e.Err)
	}
	return fmt.Sprintf("parsing sidecar %s: %v", e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ParseError) Is(target error) bool {
	return target == ErrParseFault
}

// NewParseError creates a new ParseError
func NewParseError(path, volume string, err error) *ParseError {
	return &ParseError{Path: path, Volume: volume, Err: err}
}

// AmbiguityError reports a media entry with more than one equally qualifying
// sidecar candidate. Candidates are kept sorted so the report is stable.
type AmbiguityError struct {
	Path       string   // media entry path
	Candidates []string // candidate sidecar paths, sorted
}

// Error implements the error interface
func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("ambiguous sidecar for %s: %d candidates (%s)",
		e.Path, len(e.Candidates), strings.Join(e.Candidates, ", "))
}

// Is implements errors.Is support
func (e *AmbiguityError) Is(target error) bool {
	return target == ErrAmbiguous
}

// NewAmbiguityError creates a new AmbiguityError
func NewAmbiguityError(path string, candidates []string) *AmbiguityError {
	return &AmbiguityError{Path: path, Candidates: candidates}
}

// NoMatchError reports a media entry for which no sidecar candidate
// qualified at any matching stage.
type NoMatchError struct {
	Path string // media entry path
}

// Error implements the error interface
func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no sidecar for %s", e.Path)
}

// Is implements errors.Is support
func (e *NoMatchError) Is(target error) bool {
	return target == ErrNoMatch
}

// NewNoMatchError creates a new NoMatchError
func NewNoMatchError(path string) *NoMatchError {
	return &NoMatchError{Path: path}
}

// InjectionError reports a metadata injection service failure for one entry.
// The entry's bytes are passed through unmodified instead.
type InjectionError struct {
	Path string // media entry path
	Tool string // injection backend identifier
	Err  error
}

// Error implements the error interface
func (e *InjectionError) Error() string {
	if e.Tool != "" {
		return fmt.Sprintf("injecting metadata into %s via %s: %v", e.Path, e.Tool, e.Err)
	}
	return fmt.Sprintf("injecting metadata into %s: %v", e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *InjectionError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *InjectionError) Is(target error) bool {
	return target == ErrInjectionFault
}

// NewInjectionError creates a new InjectionError
func NewInjectionError(path, tool string, err error) *InjectionError {
	return &InjectionError{Path: path, Tool: tool, Err: err}
}

// WriteError reports a destination I/O failure for one entry.
type WriteError struct {
	Path string // destination path
	Op   string // "create", "write", "rename", "sync"
	Err  error
}

// Error implements the error interface
func (e *WriteError) Error() string {
	return fmt.Sprintf("write fault during %s of %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *WriteError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *WriteError) Is(target error) bool {
	return target == ErrWriteFault
}

// NewWriteError creates a new WriteError
func NewWriteError(path, op string, err error) *WriteError {
	return &WriteError{Path: path, Op: op, Err: err}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// IOError represents an error during I/O operations outside the destination
// tree, such as reading a manifest or probing input paths.
type IOError struct {
	Operation string // "read", "write", "create", "delete", "open", "close"
	Path      string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("IO error during %s: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

// ProcessError represents an error from an external process such as exiftool
type ProcessError struct {
	Operation string // What operation was being performed
	Command   string // The command that was executed
	Output    string // Stdout/stderr output from the process
	Err       error  // Underlying error
}

// Error implements the error interface
func (e *ProcessError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("process error during %s (command: %s): %v\nOutput: %s", e.Operation, e.Command, e.Err, e.Output)
	}
	return fmt.Sprintf("process error during %s (command: %s): %v", e.Operation, e.Command, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ProcessError) Unwrap() error {
	return e.Err
}

// NewProcessError creates a new ProcessError
func NewProcessError(operation, command, output string, err error) *ProcessError {
	return &ProcessError{Operation: operation, Command: command, Output: output, Err: err}
}

// Helper functions for error checking

// IsVolumeFault checks if an error is a volume fault
func IsVolumeFault(err error) bool {
	return errors.Is(err, ErrVolumeFault)
}

// IsParseFault checks if an error is a sidecar parse fault
func IsParseFault(err error) bool {
	return errors.Is(err, ErrParseFault)
}

// IsAmbiguous checks if an error is an ambiguous match
func IsAmbiguous(err error) bool {
	return errors.Is(err, ErrAmbiguous)
}

// IsNoMatch checks if an error is a missing match
func IsNoMatch(err error) bool {
	return errors.Is(err, ErrNoMatch)
}

// IsInjectionFault checks if an error is an injection fault
func IsInjectionFault(err error) bool {
	return errors.Is(err, ErrInjectionFault)
}

// IsWriteFault checks if an error is a destination write fault
func IsWriteFault(err error) bool {
	return errors.Is(err, ErrWriteFault)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapWrite wraps an error as a WriteError
func WrapWrite(path, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewWriteError(path, op, err)
}
