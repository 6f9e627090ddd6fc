package validator

import (
	"context"
	"fmt"
	"strings"

	"github.com/syou6162/cmrunner/internal/cmdargs"
	"github.com/syou6162/cmrunner/internal/cmerrors"
	"github.com/syou6162/cmrunner/internal/console"
	"github.com/syou6162/cmrunner/internal/executor"
	"github.com/syou6162/cmrunner/internal/logger"
	"github.com/syou6162/cmrunner/internal/tool"
)

const remediation = "Please check that Plastic SCM is installed and the cm executable path is correct."

// Validator checks that a configured cm executable can actually run.
// It runs the lightweight `cm version` command and fails fast otherwise.
type Validator struct {
	executor executor.CommandExecutor
	listener console.Listener
	logger   *logger.Logger
	version  string
}

// NewValidator creates a new Validator instance with the provided command executor.
func NewValidator(exec executor.CommandExecutor, listener console.Listener, log *logger.Logger) *Validator {
	if listener == nil {
		listener = console.Discard
	}
	if log == nil {
		log = logger.NewFromEnv()
	}
	return &Validator{
		executor: exec,
		listener: listener,
		logger:   log,
		version:  "unknown",
	}
}

// WithVersion sets the program version shown in the validation banner
func (v *Validator) WithVersion(version string) *Validator {
	if version != "" {
		v.version = version
	}
	return v
}

// Validate runs `<cm> version` in dir and returns the reported version.
// An unconfigured tool is not validated; rejecting it is up to the caller.
func (v *Validator) Validate(ctx context.Context, t tool.Tool, dir string) (string, error) {
	switch t := t.(type) {
	case tool.Configured:
		return v.validate(ctx, t.Handle, dir)
	case tool.Unconfigured:
		return "", nil
	default:
		return "", fmt.Errorf("unknown tool type %T", t)
	}
}

func (v *Validator) validate(ctx context.Context, h tool.Handle, dir string) (string, error) {
	v.logger.Info("Validating Plastic SCM cm tool at: %s", h.Path)
	v.listener.Printf("===== cmrunner v%s =====", v.version)
	v.listener.Printf("Validating Plastic SCM cm tool: %s", h.Path)

	args := cmdargs.New(h.Path, "version")
	res, err := v.executor.Execute(ctx, executor.Request{
		Args:     args.Args(),
		Dir:      dir,
		Env:      h.Env(),
		Combined: true,
	})
	if err != nil {
		msg := fmt.Sprintf("Failed to execute Plastic SCM cm tool at '%s'. Error: %v. %s", h.Path, err, remediation)
		return "", v.fail(cmerrors.NewValidationError(msg, h.Path, -1, "", err))
	}

	output := strings.TrimSpace(string(res.Stdout))
	if res.ExitCode != 0 {
		msg := fmt.Sprintf("Failed to validate Plastic SCM cm tool at '%s'. Exit code: %d. Output: %s. %s",
			h.Path, res.ExitCode, output, remediation)
		return "", v.fail(cmerrors.NewValidationError(msg, h.Path, res.ExitCode, output, nil))
	}

	v.logger.Info("Plastic SCM cm tool validated successfully. Version info: %s", output)
	v.listener.Printf("Plastic SCM cm tool validated: %s", output)
	return output, nil
}

func (v *Validator) fail(err *cmerrors.CmError) error {
	v.logger.Error("%s", err.Message)
	v.listener.FatalError("%s", err.Message)
	return err
}
