// Package bridge exposes the transcoder to a host runtime as a table of named
// functions with fixed arity, the way native extensions are registered.
// Arguments arrive untyped and are checked here; a malformed call fails with
// ErrBadArgument before any conversion runs.
package bridge

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrBadArgument reports a call with the wrong arity or argument types, or to
// a function the module does not export.
var ErrBadArgument = errors.New("bad argument")

// Func is one exported function.
type Func struct {
	Name  string
	Arity int
	Call  func(args []any) (any, error)
}

// Module is a named set of exported functions.
type Module struct {
	name  string
	funcs map[string]Func
}

// NewModule builds a module from its function table. Names are keyed by
// name/arity, so one name can be exported at several arities.
func NewModule(name string, funcs ...Func) *Module {
	m := &Module{name: name, funcs: make(map[string]Func, len(funcs))}
	for _, f := range funcs {
		m.funcs[key(f.Name, f.Arity)] = f
	}
	return m
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Exports lists name/arity of every function.
func (m *Module) Exports() []string {
	out := make([]string, 0, len(m.funcs))
	for k := range m.funcs {
		out = append(out, k)
	}
	return out
}

// Call invokes name with args.
func (m *Module) Call(name string, args ...any) (any, error) {
	f, ok := m.funcs[key(name, len(args))]
	if !ok {
		return nil, errors.Wrapf(ErrBadArgument, "%s:%s/%d is not exported", m.name, name, len(args))
	}
	return f.Call(args)
}

func key(name string, arity int) string {
	return fmt.Sprintf("%s/%d", name, arity)
}
