package executor

import (
	"context"
	"fmt"
	"strings"
)

// MockCommandExecutor is a mock implementation of CommandExecutor for testing
type MockCommandExecutor struct {
	// Commands stores the expected commands and their queued responses. The
	// last response of a queue is repeated once the queue is drained.
	Commands map[string][]MockResponse
	// ExecutedCommands tracks what commands were actually executed
	ExecutedCommands []ExecutedCommand
	// Unexpected lists the keys of commands that had no queued response
	Unexpected []string
}

// MockResponse represents a mocked command response
type MockResponse struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	// Error simulates a launch failure
	Error error
}

// ExecutedCommand represents a command that was executed
type ExecutedCommand struct {
	Name     string
	Args     []string
	Dir      string
	Env      map[string]string
	Combined bool
}

// NewMockCommandExecutor creates a new mock executor
func NewMockCommandExecutor() *MockCommandExecutor {
	return &MockCommandExecutor{
		Commands:         make(map[string][]MockResponse),
		ExecutedCommands: []ExecutedCommand{},
	}
}

// Key returns the lookup key for a command line, e.g. "cm [version]"
func Key(name string, args ...string) string {
	if args == nil {
		args = []string{}
	}
	return fmt.Sprintf("%s %v", name, args)
}

// On queues responses for a command line
func (m *MockCommandExecutor) On(key string, responses ...MockResponse) *MockCommandExecutor {
	m.Commands[key] = append(m.Commands[key], responses...)
	return m
}

// Count returns how many times the command line given by key was executed
func (m *MockCommandExecutor) Count(key string) int {
	n := 0
	for _, c := range m.ExecutedCommands {
		if Key(c.Name, c.Args...) == key {
			n++
		}
	}
	return n
}

// Execute implements CommandExecutor.Execute
func (m *MockCommandExecutor) Execute(ctx context.Context, req Request) (Result, error) {
	if len(req.Args) == 0 {
		return Result{}, &LaunchError{Err: fmt.Errorf("empty command line")}
	}
	name, args := req.Args[0], append([]string{}, req.Args[1:]...)
	m.ExecutedCommands = append(m.ExecutedCommands, ExecutedCommand{
		Name:     name,
		Args:     args,
		Dir:      req.Dir,
		Env:      req.Env,
		Combined: req.Combined,
	})

	key := Key(name, args...)
	queue, ok := m.Commands[key]
	if !ok || len(queue) == 0 {
		// a missing response is a broken test, not a transient failure to retry
		m.Unexpected = append(m.Unexpected, key)
		panic(fmt.Sprintf("unexpected command: %s", key))
	}

	resp := queue[0]
	if len(queue) > 1 {
		m.Commands[key] = queue[1:]
	}
	if resp.Error != nil {
		return Result{}, &LaunchError{Path: name, Err: resp.Error}
	}

	res := Result{ExitCode: resp.ExitCode, Stdout: resp.Stdout, Stderr: resp.Stderr}
	if req.Combined {
		res.Stdout = append(append([]byte{}, resp.Stdout...), resp.Stderr...)
		res.Stderr = nil
	}
	return res, nil
}

// String lists the executed command lines, one per line
func (m *MockCommandExecutor) String() string {
	lines := make([]string, len(m.ExecutedCommands))
	for i, c := range m.ExecutedCommands {
		lines[i] = Key(c.Name, c.Args...)
	}
	return strings.Join(lines, "\n")
}
