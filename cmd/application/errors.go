package application

import "errors"

// ErrExitWithWarnings signals that a run completed and was reported, but
// some files need attention. The application exits with status 1 without
// printing anything further, since the report has already been rendered.
//
// Commands return this error after rendering their output; it is mapped to
// the process exit status at the top level.
var ErrExitWithWarnings = errors.New("completed with warnings")
