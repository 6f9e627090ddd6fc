// Package cmdargs builds command lines whose sensitive tokens are hidden
// whenever the command line is rendered for humans.
package cmdargs

import "strings"

// Mask replaces every sensitive token in the display form of a command line
const Mask = "****"

// Arg is one command-line token
type Arg struct {
	Value  string
	Masked bool
}

// Builder is an ordered list of tokens. The zero value is ready to use.
type Builder struct {
	args []Arg
}

// New creates a builder holding the given plain tokens
func New(tokens ...string) *Builder {
	b := &Builder{}
	return b.AddAll(tokens...)
}

// Add appends a plain token
func (b *Builder) Add(token string) *Builder {
	b.args = append(b.args, Arg{Value: token})
	return b
}

// AddMasked appends a token that must never appear in logs
func (b *Builder) AddMasked(token string) *Builder {
	b.args = append(b.args, Arg{Value: token, Masked: true})
	return b
}

// AddAll appends plain tokens in order
func (b *Builder) AddAll(tokens ...string) *Builder {
	for _, t := range tokens {
		b.Add(t)
	}
	return b
}

// Append appends every token of other, keeping its masking
func (b *Builder) Append(other *Builder) *Builder {
	if other == nil {
		return b
	}
	b.args = append(b.args, other.args...)
	return b
}

// Clone returns an independent copy
func (b *Builder) Clone() *Builder {
	c := &Builder{args: make([]Arg, len(b.args))}
	copy(c.args, b.args)
	return c
}

// Len returns the number of tokens
func (b *Builder) Len() int {
	return len(b.args)
}

// Items returns a copy of the tokens with their masking flags
func (b *Builder) Items() []Arg {
	out := make([]Arg, len(b.args))
	copy(out, b.args)
	return out
}

// Args returns the literal tokens to hand to the process
func (b *Builder) Args() []string {
	out := make([]string, len(b.args))
	for i, a := range b.args {
		out[i] = a.Value
	}
	return out
}

// String renders the command line for logs, with masked tokens replaced by Mask
func (b *Builder) String() string {
	parts := make([]string, len(b.args))
	for i, a := range b.args {
		if a.Masked {
			parts[i] = Mask
		} else {
			parts[i] = a.Value
		}
	}
	return strings.Join(parts, " ")
}
