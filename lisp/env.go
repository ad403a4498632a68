package lisp

import "sort"

// Environment is a frame of bindings with an optional parent frame.
type Environment struct {
	bindings map[string]Value
	parent   *Environment
}

func NewEnvironment(parent *Environment) *Environment {
	return &Environment{bindings: make(map[string]Value), parent: parent}
}

// Get looks name up in this frame only.
func (e *Environment) Get(name string) (Value, bool) {
	v, ok := e.bindings[name]
	return v, ok
}

// Lookup walks the frame chain.
func (e *Environment) Lookup(name string) (Value, bool) {
	if f := e.find(name); f != nil {
		return f.bindings[name], true
	}
	return nil, false
}

func (e *Environment) find(name string) *Environment {
	for f := e; f != nil; f = f.parent {
		if _, ok := f.bindings[name]; ok {
			return f
		}
	}
	return nil
}

func (e *Environment) Define(name string, v Value) {
	e.bindings[name] = v
}

// Snapshot flattens the chain into a new parentless frame. Inner bindings
// shadow outer ones.
func (e *Environment) Snapshot() *Environment {
	var chain []*Environment
	for f := e; f != nil; f = f.parent {
		chain = append(chain, f)
	}
	snap := NewEnvironment(nil)
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].bindings {
			snap.bindings[k] = v
		}
	}
	return snap
}

// Names returns this frame's names in sorted order.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.bindings))
	for k := range e.bindings {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (e *Environment) Len() int {
	return len(e.bindings)
}
