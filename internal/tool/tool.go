// Package tool describes the cm executable a runner drives and the client
// configuration appended to each of its invocations.
package tool

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
	"github.com/syou6162/cmrunner/internal/cmdargs"
)

// InvariantCultureEnv forces locale-independent formatting in the .NET based cm client
const InvariantCultureEnv = "DOTNET_SYSTEM_GLOBALIZATION_INVARIANT"

// Handle identifies the cm executable
type Handle struct {
	Path                string
	UseInvariantCulture bool
}

// Env returns the environment overrides every cm process must receive
func (h Handle) Env() map[string]string {
	if !h.UseInvariantCulture {
		return nil
	}
	return map[string]string{InvariantCultureEnv: "1"}
}

// Tool is either Configured or Unconfigured
type Tool interface {
	isTool()
}

// Configured is a tool with a usable handle
type Configured struct {
	Handle Handle
}

// Unconfigured means no cm executable was set up
type Unconfigured struct{}

func (Configured) isTool()   {}
func (Unconfigured) isTool() {}

// FromPath returns Unconfigured for a blank path
func FromPath(path string, useInvariantCulture bool) Tool {
	path = strings.TrimSpace(path)
	if path == "" {
		return Unconfigured{}
	}
	return Configured{Handle: Handle{Path: path, UseInvariantCulture: useInvariantCulture}}
}

// ClientConfigOptions are the client-side overrides known to cm
type ClientConfigOptions struct {
	Server      string
	Username    string
	Password    string
	WorkingMode string
	Extra       []string
}

// ClientConfig holds the arguments appended last to every cm invocation
type ClientConfig struct {
	args *cmdargs.Builder
}

// NewClientConfig builds the fixed argument tail. The password is masked.
func NewClientConfig(opts ClientConfigOptions) ClientConfig {
	b := &cmdargs.Builder{}
	if opts.Server != "" {
		b.Add("--server=" + opts.Server)
	}
	if opts.Username != "" {
		b.Add("--username=" + opts.Username)
	}
	if opts.Password != "" {
		b.AddMasked("--password=" + opts.Password)
	}
	if opts.WorkingMode != "" {
		b.Add("--workingmode=" + opts.WorkingMode)
	}
	b.AddAll(opts.Extra...)
	return ClientConfig{args: b}
}

// Fill appends the configuration arguments to b and returns it
func (c ClientConfig) Fill(b *cmdargs.Builder) *cmdargs.Builder {
	return b.Append(c.args)
}

// Len returns the number of configuration arguments
func (c ClientConfig) Len() int {
	if c.args == nil {
		return 0
	}
	return c.args.Len()
}

// ParseExtraArgs splits free-form extra arguments using shell quoting rules
func ParseExtraArgs(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	args, err := shlex.Split(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid extra arguments %q: %w", raw, err)
	}
	return args, nil
}
