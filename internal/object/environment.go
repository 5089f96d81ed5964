package object

import (
	"log/slog"
	"sort"
	"sync/atomic"
)

var nextID atomic.Uint64

// Environment maps names to values. Lookups walk Outer until the chain
// ends. A child never outlives the call that created it.
type Environment struct {
	ID       uint64
	Bindings map[string]Object
	Outer    *Environment
}

func nextEnvID() uint64 {
	return nextID.Add(1)
}

func NewEnvironment() *Environment {
	return &Environment{
		ID:       nextEnvID(),
		Bindings: make(map[string]Object),
	}
}

// NewEnclosedEnvironment initializes an environment with a parent.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.Outer = outer
	slog.Debug("new env", slog.Uint64("id", env.ID), slog.Uint64("outer", outer.ID))
	return env
}

func (e *Environment) Get(name string) (Object, bool) {
	if val, ok := e.Bindings[name]; ok {
		return val, true
	}
	if e.Outer != nil {
		return e.Outer.Get(name)
	}
	return nil, false
}

// Set binds name in this environment, replacing any earlier binding.
func (e *Environment) Set(name string, val Object) Object {
	e.Bindings[name] = val
	return val
}

// Names lists the local bindings in sorted order.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.Bindings))
	for name := range e.Bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
