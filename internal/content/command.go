package content

import (
	"fmt"

	"github.com/syou6162/cmrunner/internal/cmdargs"
)

// ServerPathSpec composes the spec cm uses to address one revision of a
// file on the server.
func ServerPathSpec(serverFile, revSpec string) string {
	return fmt.Sprintf("serverpath:%s#%s", serverFile, revSpec)
}

// GetFileCommand is `cm cat <spec>`. The content is always read from
// standard output; cm's --file option is never passed because its output
// handle is unreliable on Windows.
type GetFileCommand struct {
	Spec string
}

// Arguments implements runner.Command
func (c GetFileCommand) Arguments() *cmdargs.Builder {
	return cmdargs.New("cat", c.Spec)
}
