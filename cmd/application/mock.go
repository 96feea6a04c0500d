package application

import (
	"github.com/rs/zerolog"

	takeoutfixer "github.com/JeppeKlitgaard/GoogleTakeoutPhotoFixer"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
// Example Usage:
//
//	mock := &application.Mock{
//	    FixerFunc: func(opts ...takeoutfixer.Option) (takeoutfixer.Fixer, error) {
//	        return testFixer, nil
//	    },
//	}
//	cmd := fix.NewCommand(mock)
//	// ... test command
type Mock struct {
	FixerFunc        func(opts ...takeoutfixer.Option) (takeoutfixer.Fixer, error)
	LoggerFunc       func() *zerolog.Logger
	ExiftoolFunc     func() (string, bool)
	OutputFormatFunc func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Fixer returns a client using the mock function or nil.
func (m *Mock) Fixer(opts ...takeoutfixer.Option) (takeoutfixer.Fixer, error) {
	if m.FixerFunc != nil {
		return m.FixerFunc(opts...)
	}
	return nil, nil
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// Exiftool returns the binary and enabled state using the mock function,
// or PATH lookup with embedding enabled.
func (m *Mock) Exiftool() (string, bool) {
	if m.ExiftoolFunc != nil {
		return m.ExiftoolFunc()
	}
	return "", true
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Ensure Mock implements Application at compile time.
var _ Application = (*Mock)(nil)
