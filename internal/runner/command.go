package runner

import (
	"context"
	"io"

	"github.com/syou6162/cmrunner/internal/cmdargs"
)

// Command is a cm subcommand that knows its own arguments
type Command interface {
	Arguments() *cmdargs.Builder
}

// RunCommand executes cmd in the runner's workspace without echoing its output
func RunCommand(ctx context.Context, r *Runner, cmd Command) (io.Reader, error) {
	return r.Execute(ctx, cmd.Arguments(), "", false)
}
