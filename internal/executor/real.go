package executor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/syou6162/cmrunner/internal/logger"
)

// RealCommandExecutor is the real implementation of CommandExecutor
type RealCommandExecutor struct {
	logger        *logger.Logger
	captureStderr bool
	parentStderr  io.Writer
}

// NewRealCommandExecutor creates a new real executor. Whether stderr is
// captured is decided once here from the running platform.
func NewRealCommandExecutor() *RealCommandExecutor {
	return &RealCommandExecutor{
		logger:        logger.NewFromEnv(),
		captureStderr: captureStderrOnThisPlatform(),
		parentStderr:  os.Stderr,
	}
}

// WithCaptureStderr overrides the platform decision
func (r *RealCommandExecutor) WithCaptureStderr(capture bool) *RealCommandExecutor {
	r.captureStderr = capture
	return r
}

// WithParentStderr sets where uncaptured stderr goes
func (r *RealCommandExecutor) WithParentStderr(w io.Writer) *RealCommandExecutor {
	r.parentStderr = w
	return r
}

// WithLogger replaces the logger
func (r *RealCommandExecutor) WithLogger(l *logger.Logger) *RealCommandExecutor {
	r.logger = l
	return r
}

// CaptureStderr reports whether stderr is captured into Result.Stderr
func (r *RealCommandExecutor) CaptureStderr() bool {
	return r.captureStderr
}

// Execute implements CommandExecutor.Execute
func (r *RealCommandExecutor) Execute(ctx context.Context, req Request) (Result, error) {
	if len(req.Args) == 0 {
		return Result{}, &LaunchError{Err: errors.New("empty command line")}
	}
	name := req.Args[0]

	cmd := exec.CommandContext(ctx, name, req.Args[1:]...)
	if req.Dir != "" {
		cmd.Dir = req.Dir
	}
	if len(req.Env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), req.Env)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	switch {
	case req.Combined:
		cmd.Stderr = &stdout
	case r.captureStderr:
		cmd.Stderr = &stderr
	default:
		cmd.Stderr = r.parentStderr
	}

	r.logger.Debug("Running: %s (dir=%q)", name, req.Dir)
	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		r.logger.Debug("%s exited with code %d", name, res.ExitCode)
		if stderr.Len() > 0 {
			r.logger.Debug("stderr: %s", strings.TrimSpace(stderr.String()))
		}
		return res, nil
	}

	r.logger.Error("Failed to launch %s: %v", name, err)
	return res, &LaunchError{Path: name, Err: err}
}

// mergeEnv overrides or adds the entries of extra to base. Added keys are
// appended in sorted order.
func mergeEnv(base []string, extra map[string]string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(extra))
	for _, kv := range base {
		key := kv
		if i := strings.IndexByte(kv, '='); i >= 0 {
			key = kv[:i]
		}
		if v, ok := extra[key]; ok {
			out = append(out, key+"="+v)
			seen[key] = true
			continue
		}
		out = append(out, kv)
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+extra[k])
	}
	return out
}
