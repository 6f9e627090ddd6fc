package executor

import (
	"context"
	"fmt"
)

// Request describes one child process to run
type Request struct {
	// Args is the full command line; Args[0] is the executable
	Args []string
	// Dir is the working directory, empty means the current one
	Dir string
	// Env is added on top of the parent environment
	Env map[string]string
	// Combined captures stdout and stderr into Result.Stdout
	Combined bool
}

// Result holds the exit code and whatever the child wrote
type Result struct {
	ExitCode int
	Stdout   []byte
	// Stderr is empty when stderr was combined or left attached to the parent
	Stderr []byte
}

// LaunchError is returned when the child process could not be started at all
type LaunchError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *LaunchError) Unwrap() error {
	return e.Err
}

// CommandExecutor defines the interface for executing external commands
type CommandExecutor interface {
	// Execute runs the command, blocks until it exits and returns its exit code
	// and captured output. A non-zero exit is not an error; only a process that
	// could not be started returns a *LaunchError.
	Execute(ctx context.Context, req Request) (Result, error)
}
