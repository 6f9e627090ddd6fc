// Package runner executes cm commands for a single logical operation, such as
// one checkout. The cm tool is validated lazily before the first command and
// every command is retried a fixed number of times.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/syou6162/cmrunner/internal/cmdargs"
	"github.com/syou6162/cmrunner/internal/cmerrors"
	"github.com/syou6162/cmrunner/internal/console"
	"github.com/syou6162/cmrunner/internal/executor"
	"github.com/syou6162/cmrunner/internal/logger"
	"github.com/syou6162/cmrunner/internal/tool"
	"github.com/syou6162/cmrunner/internal/validator"
)

const (
	// MaxRetries is the number of attempts made for every cm command
	MaxRetries = 3
	// TimeBetweenRetries is the fixed backoff between two attempts
	TimeBetweenRetries = time.Second
)

type validationState int

const (
	notValidated validationState = iota
	validated
)

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Options configures a Runner
type Options struct {
	Tool         tool.Tool
	ClientConfig tool.ClientConfig
	// Workspace is the working directory used when a call passes none
	Workspace string
	Executor  executor.CommandExecutor
	Listener  console.Listener
	Logger    *logger.Logger
	// Version is shown in the validation banner
	Version string
	// Sleep replaces the backoff wait, mainly for tests
	Sleep SleepFunc
}

// Runner runs cm commands with bounded retry. A Runner belongs to one
// logical operation and must not be used by several goroutines at once.
type Runner struct {
	tool         tool.Tool
	clientConfig tool.ClientConfig
	workspace    string
	executor     executor.CommandExecutor
	validator    *validator.Validator
	listener     console.Listener
	logger       *logger.Logger
	sleep        SleepFunc
	state        validationState
}

// New creates a Runner
func New(opts Options) *Runner {
	if opts.Tool == nil {
		opts.Tool = tool.Unconfigured{}
	}
	if opts.Executor == nil {
		opts.Executor = executor.NewRealCommandExecutor()
	}
	if opts.Listener == nil {
		opts.Listener = console.Discard
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewFromEnv()
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	return &Runner{
		tool:         opts.Tool,
		clientConfig: opts.ClientConfig,
		workspace:    opts.Workspace,
		executor:     opts.Executor,
		validator:    validator.NewValidator(opts.Executor, opts.Listener, opts.Logger).WithVersion(opts.Version),
		listener:     opts.Listener,
		logger:       opts.Logger,
		sleep:        opts.Sleep,
	}
}

// Run executes args in the default workspace and echoes the output to the console
func (r *Runner) Run(ctx context.Context, args *cmdargs.Builder) (io.Reader, error) {
	return r.Execute(ctx, args, "", true)
}

// Execute runs `cm <args> <client configuration>` in dir (the workspace when
// empty) and returns the captured standard output. The tool is validated
// before the first command; validation errors are returned immediately.
// Failed attempts are retried up to MaxRetries times.
func (r *Runner) Execute(ctx context.Context, args *cmdargs.Builder, dir string, logOutput bool) (io.Reader, error) {
	var handle tool.Handle
	switch t := r.tool.(type) {
	case tool.Configured:
		handle = t.Handle
	case tool.Unconfigured:
		return nil, r.Fatal(cmerrors.NewConfigurationError("You need to specify a Plastic SCM tool"))
	default:
		return nil, fmt.Errorf("unknown tool type %T", t)
	}

	if err := r.ensureValidated(ctx); err != nil {
		return nil, err
	}

	cmdLine := r.commandLine(handle, args)
	cliLine := cmdLine.String()
	if dir == "" {
		dir = r.workspace
	}
	req := executor.Request{
		Args: cmdLine.Args(),
		Dir:  dir,
		Env:  handle.Env(),
	}

	var lastErr error
	for attempt := 1; attempt <= MaxRetries; attempt++ {
		out, err := r.tryExecute(ctx, req, cliLine, attempt)
		if err == nil {
			if logOutput && len(out) > 0 {
				r.listener.Printf("%s", out)
			}
			return bytes.NewReader(out), nil
		}
		lastErr = err

		if attempt == MaxRetries {
			break
		}
		r.logger.Warn("The cm command '%s' failed. Retrying after %d ms... (%d)",
			cliLine, TimeBetweenRetries.Milliseconds(), attempt)
		if err := r.sleep(ctx, TimeBetweenRetries); err != nil {
			return nil, r.Fatal(cmerrors.NewInterruptedError(cliLine, attempt, err))
		}
	}

	return nil, r.Fatal(cmerrors.NewExhaustedRetriesError(cliLine, MaxRetries, lastErr))
}

// Validate checks the tool right away instead of before the first command.
// It is a no-op once the tool has been validated.
func (r *Runner) Validate(ctx context.Context) error {
	if _, ok := r.tool.(tool.Unconfigured); ok {
		return r.Fatal(cmerrors.NewConfigurationError("You need to specify a Plastic SCM tool"))
	}
	return r.ensureValidated(ctx)
}

func (r *Runner) ensureValidated(ctx context.Context) error {
	if r.state == validated {
		return nil
	}
	if _, err := r.validator.Validate(ctx, r.tool, r.workspace); err != nil {
		return err
	}
	r.state = validated
	return nil
}

func (r *Runner) commandLine(h tool.Handle, args *cmdargs.Builder) *cmdargs.Builder {
	b := cmdargs.New(h.Path).Append(args)
	return r.clientConfig.Fill(b)
}

func (r *Runner) tryExecute(ctx context.Context, req executor.Request, cliLine string, attempt int) ([]byte, error) {
	res, err := r.executor.Execute(ctx, req)
	if err != nil {
		r.logger.Warn("Command failed to start: %s: %v", cliLine, err)
		return nil, cmerrors.NewTransientExecutionError(cliLine, attempt, -1, err)
	}
	if res.ExitCode != 0 {
		if len(res.Stdout) > 0 {
			r.logger.Warn("Command failed: %s\nOutput: %s", cliLine, res.Stdout)
		} else {
			r.logger.Warn("Command failed with exit code %d: %s", res.ExitCode, cliLine)
		}
		return nil, cmerrors.NewTransientExecutionError(cliLine, attempt, res.ExitCode, nil)
	}
	r.logger.Debug("Command succeeded: %s", cliLine)
	return res.Stdout, nil
}

// Fatal logs err and reports its message on the console fatal channel.
// It returns err so callers can write `return r.Fatal(...)`.
func (r *Runner) Fatal(err *cmerrors.CmError) error {
	r.logger.Error("%s", err.Error())
	r.listener.FatalError("%s", err.Message)
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRetryExhausted reports whether err means a cm command failed on every attempt
func IsRetryExhausted(err error) bool {
	return errors.Is(err, cmerrors.ErrExhaustedRetries)
}
