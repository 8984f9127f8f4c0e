package cli

import "errors"

// Process exit codes. Environment errors are fatal before any cluster action
// and carry distinct codes so callers can tell them apart from apply failures.
const (
	// ExitUsage signals a usage error or a missing kubectl client for apply.
	ExitUsage = 2
	// ExitNoClient signals a missing kubectl client for cleanup.
	ExitNoClient = 3
)

// exitError wraps an error with the process exit code it should produce.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

// withExitCode attaches an exit code to err.
func withExitCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// ExitCode returns the process exit code for err: 0 for nil, the attached
// code for exit errors, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	return 1
}
