package lisp

// Value is the result of evaluation.
type Value interface {
	value()
}

type (
	Number  float64
	String  string
	Boolean bool
	Nil     struct{}
	List    []Value
	Symbol  string
	Keyword string
)

type Builtin struct {
	Name string
}

// Closure captures a flattened copy of its defining environment. Name is set
// for defn-style functions and is bound to the closure inside each call.
type Closure struct {
	Name   string
	Params []string
	Body   Node
	Env    *Environment
}

type recurSignal struct {
	args []Value
}

func (Number) value()       {}
func (String) value()       {}
func (Boolean) value()      {}
func (Nil) value()          {}
func (List) value()         {}
func (Symbol) value()       {}
func (Keyword) value()      {}
func (Builtin) value()      {}
func (*Closure) value()     {}
func (*recurSignal) value() {}

// Truthy reports whether v counts as true in a test position. Only false and
// nil are falsy.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case nil, Nil:
		return false
	case Boolean:
		return bool(v)
	}
	return true
}

// Equal is structural equality over values.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case List:
		bl, ok := b.(List)
		if !ok || len(a) != len(bl) {
			return false
		}
		for i := range a {
			if !Equal(a[i], bl[i]) {
				return false
			}
		}
		return true
	case *Closure:
		bc, ok := b.(*Closure)
		return ok && a == bc
	case nil:
		return b == nil
	}
	return a == b
}

func isNil(v Value) bool {
	switch v := v.(type) {
	case nil, Nil:
		return true
	case List:
		return len(v) == 0
	}
	return false
}
