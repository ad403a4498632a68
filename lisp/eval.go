package lisp

import (
	"fmt"
	"strings"
)

type specialForm func(in *Interpreter, args []Node, env *Environment) (Value, error)

var specialForms = map[string]specialForm{}

func defSpecial(fn specialForm, names ...string) {
	for _, name := range names {
		specialForms[name] = fn
	}
}

// IsSpecialForm reports whether name is handled by the evaluator itself.
func IsSpecialForm(name string) bool {
	_, ok := specialForms[name]
	return ok
}

// eval may return a *recurSignal when node is in tail position. Callers that
// are not in tail position use evalValue instead.
func (in *Interpreter) eval(node Node, env *Environment) (Value, error) {
	in.depth++
	defer func() { in.depth-- }()
	if in.depth > maxDepth {
		return nil, &Error{Kind: ArityOrTypeError, Reason: RecursionLimit, Detail: "maximum recursion depth exceeded"}
	}
	switch n := node.(type) {
	case nil:
		return Nil{}, nil
	case AtomNode:
		return n.Value, nil
	case QuotedNode:
		return quoteValue(n.Form), nil
	case SymbolNode:
		return in.resolve(n.Name, env)
	case ListNode:
		if len(n.Items) == 0 {
			return List{}, nil
		}
		if n.Bracket {
			return in.vector(n.Items, env)
		}
		if name, ok := symbolName(n.Items[0]); ok {
			if form, ok := specialForms[name]; ok {
				return form(in, n.Items[1:], env)
			}
		}
		return in.application(n.Items, env)
	}
	return nil, fmt.Errorf("lisp: unknown node type %T", node)
}

func (in *Interpreter) evalValue(node Node, env *Environment) (Value, error) {
	v, err := in.eval(node, env)
	if err != nil {
		return nil, err
	}
	if _, ok := v.(*recurSignal); ok {
		return nil, recurOutsideTail()
	}
	return v, nil
}

func (in *Interpreter) resolve(name string, env *Environment) (Value, error) {
	if v, ok := env.Lookup(name); ok {
		return v, nil
	}
	if len(name) > 1 && strings.HasPrefix(name, ":") {
		return Keyword(name[1:]), nil
	}
	if _, ok := builtins[name]; ok {
		return Builtin{Name: name}, nil
	}
	return nil, unknownVariable(name)
}

// vector evaluates a [a b c] literal to a list of its evaluated items.
func (in *Interpreter) vector(items []Node, env *Environment) (Value, error) {
	out := make(List, 0, len(items))
	for _, item := range items {
		v, err := in.evalValue(item, env)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (in *Interpreter) application(items []Node, env *Environment) (Value, error) {
	fn, err := in.evalValue(items[0], env)
	if err != nil {
		return nil, err
	}
	args := make([]Value, 0, len(items)-1)
	for _, item := range items[1:] {
		v, err := in.evalValue(item, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return in.apply(fn, args, Source(items[0]))
}

func (in *Interpreter) apply(fn Value, args []Value, label string) (Value, error) {
	switch f := fn.(type) {
	case Builtin:
		return in.callBuiltin(f.Name, args)
	case *Closure:
		return in.callClosure(f, args)
	}
	return nil, notApplicable(label)
}

// callClosure binds missing parameters to nil and ignores extra arguments.
// A recur in the body's tail re-enters the closure with new arguments.
func (in *Interpreter) callClosure(c *Closure, args []Value) (Value, error) {
	for {
		local := NewEnvironment(c.Env)
		if c.Name != "" {
			local.Define(c.Name, c)
		}
		for i, p := range c.Params {
			var v Value = Nil{}
			if i < len(args) {
				v = args[i]
			}
			local.Define(p, v)
		}
		v, err := in.eval(c.Body, local)
		if err != nil {
			return nil, err
		}
		r, ok := v.(*recurSignal)
		if !ok {
			return v, nil
		}
		args = r.args
	}
}

func quoteValue(n Node) Value {
	switch n := n.(type) {
	case AtomNode:
		return n.Value
	case SymbolNode:
		return Symbol(n.Name)
	case QuotedNode:
		return List{Symbol("quote"), quoteValue(n.Form)}
	case ListNode:
		items := make(List, len(n.Items))
		for i, item := range n.Items {
			items[i] = quoteValue(item)
		}
		return items
	}
	return Nil{}
}
