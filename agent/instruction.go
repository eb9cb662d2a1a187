package agent

import "github.com/hupe1980/tripflow/core"

// Provider supplies dynamic instruction lines at runtime. Implementations can
// derive instructions from the session context, environment, etc.
type Provider interface {
	Instructions(sc *core.SessionContext) ([]string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(sc *core.SessionContext) ([]string, error)

// Instructions implements Provider.
func (f Func) Instructions(sc *core.SessionContext) ([]string, error) { return f(sc) }

// Instruction represents either a static list of instruction lines or a
// dynamic provider. The lines are opaque configuration: the core never
// interprets them, they are forwarded verbatim to the reasoning capability.
type Instruction struct {
	lines    []string
	provider Provider
}

// NewInstruction creates an Instruction from static lines.
func NewInstruction(lines ...string) Instruction { return Instruction{lines: lines} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(sc *core.SessionContext) ([]string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by static lines.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the instruction lines, invoking the provider if needed.
func (i Instruction) Resolve(sc *core.SessionContext) ([]string, error) {
	if i.provider != nil {
		return i.provider.Instructions(sc)
	}
	return i.lines, nil
}
