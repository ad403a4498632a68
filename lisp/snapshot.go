package lisp

import (
	"fmt"
	"math"
	"strconv"
)

// Encoded is the JSON form of a value in a Bindings snapshot.
type Encoded struct {
	Type   string    `json:"type"`
	Num    float64   `json:"num,omitempty"`
	Str    string    `json:"str,omitempty"`
	Bool   bool      `json:"bool,omitempty"`
	Items  []Encoded `json:"items,omitempty"`
	Name   string    `json:"name,omitempty"`
	Params []string  `json:"params,omitempty"`
	Body   string    `json:"body,omitempty"`
	Env    Bindings  `json:"env,omitempty"`
}

// Bindings maps global names to encoded values.
type Bindings map[string]Encoded

// Snapshot encodes the global environment. Closures are stored as their
// parameters, body source and captured bindings. A captured binding that is
// still the same as the global one is stored as a reference to it.
func (in *Interpreter) Snapshot() Bindings {
	enc := &encoder{global: in.global, seen: map[*Closure]bool{}}
	return enc.env(in.global, false)
}

type encoder struct {
	global *Environment
	seen   map[*Closure]bool
}

func (enc *encoder) env(env *Environment, captured bool) Bindings {
	out := make(Bindings, env.Len())
	for _, name := range env.Names() {
		v, _ := env.Get(name)
		if captured {
			if gv, ok := enc.global.Get(name); ok && Equal(gv, v) {
				out[name] = Encoded{Type: "ref"}
				continue
			}
		}
		out[name] = enc.value(v)
	}
	return out
}

func (enc *encoder) value(v Value) Encoded {
	switch v := v.(type) {
	case Number:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Encoded{Type: "number", Str: formatNumber(f)}
		}
		return Encoded{Type: "number", Num: f}
	case String:
		return Encoded{Type: "string", Str: string(v)}
	case Boolean:
		return Encoded{Type: "boolean", Bool: bool(v)}
	case Symbol:
		return Encoded{Type: "symbol", Str: string(v)}
	case Keyword:
		return Encoded{Type: "keyword", Str: string(v)}
	case List:
		items := make([]Encoded, len(v))
		for i, item := range v {
			items[i] = enc.value(item)
		}
		return Encoded{Type: "list", Items: items}
	case Builtin:
		return Encoded{Type: "builtin", Name: v.Name}
	case *Closure:
		if enc.seen[v] {
			return Encoded{Type: "nil"}
		}
		enc.seen[v] = true
		defer delete(enc.seen, v)
		return Encoded{
			Type:   "lambda",
			Name:   v.Name,
			Params: v.Params,
			Body:   Source(v.Body),
			Env:    enc.env(v.Env, true),
		}
	}
	return Encoded{Type: "nil"}
}

// Restore replaces the global environment with b. On error the current
// environment is left untouched.
func (in *Interpreter) Restore(b Bindings) error {
	dec := &decoder{}
	env, err := dec.env(b, false)
	if err != nil {
		return err
	}
	for _, f := range dec.refs {
		v, ok := env.Get(f.name)
		if !ok {
			return fmt.Errorf("restore: captured %s refers to a missing global", f.name)
		}
		f.env.Define(f.name, v)
	}
	in.global = env
	return nil
}

type ref struct {
	env  *Environment
	name string
}

type decoder struct {
	refs []ref
}

func (dec *decoder) env(b Bindings, captured bool) (*Environment, error) {
	env := NewEnvironment(nil)
	for name, e := range b {
		if e.Type == "ref" && captured {
			dec.refs = append(dec.refs, ref{env, name})
			continue
		}
		v, err := dec.value(e)
		if err != nil {
			return nil, fmt.Errorf("restore %s: %w", name, err)
		}
		env.Define(name, v)
	}
	return env, nil
}

func (dec *decoder) value(e Encoded) (Value, error) {
	switch e.Type {
	case "number":
		if e.Str != "" {
			f, err := strconv.ParseFloat(e.Str, 64)
			if err != nil {
				return nil, err
			}
			return Number(f), nil
		}
		return Number(e.Num), nil
	case "string":
		return String(e.Str), nil
	case "boolean":
		return Boolean(e.Bool), nil
	case "symbol":
		return Symbol(e.Str), nil
	case "keyword":
		return Keyword(e.Str), nil
	case "nil":
		return Nil{}, nil
	case "list":
		items := make(List, len(e.Items))
		for i, item := range e.Items {
			v, err := dec.value(item)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return items, nil
	case "builtin":
		if _, ok := builtins[e.Name]; !ok {
			return nil, fmt.Errorf("unknown builtin %q", e.Name)
		}
		return Builtin{Name: e.Name}, nil
	case "lambda":
		body, err := Read(e.Body)
		if err != nil {
			return nil, fmt.Errorf("lambda body: %w", err)
		}
		env, err := dec.env(e.Env, true)
		if err != nil {
			return nil, err
		}
		return &Closure{Name: e.Name, Params: e.Params, Body: body, Env: env}, nil
	}
	return nil, fmt.Errorf("unknown value type %q", e.Type)
}
