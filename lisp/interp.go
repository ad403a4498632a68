package lisp

import (
	"errors"
	"fmt"
)

const maxDepth = 10000

// Interpreter owns a global environment that persists across Evaluate calls.
type Interpreter struct {
	global  *Environment
	history []Entry
	depth   int
}

// Entry records one Evaluate call.
type Entry struct {
	Input   string
	Display string
	Error   string
	Success bool
}

// Result is the outcome of Evaluate. Error holds the learner-facing message
// and Err the underlying *Error.
type Result struct {
	Success bool
	Value   Value
	Display string
	Error   string
	Err     error
}

func New() *Interpreter {
	return &Interpreter{global: NewEnvironment(nil)}
}

// Evaluate reads the first form of src and evaluates it in the global
// environment. Nothing escapes as a panic, and a failed call leaves earlier
// definitions in place.
func (in *Interpreter) Evaluate(src string) Result {
	res := in.evaluate(src)
	entry := Entry{Input: src, Display: res.Display, Error: res.Error, Success: res.Success}
	in.history = append(in.history, entry)
	return res
}

func (in *Interpreter) evaluate(src string) Result {
	tokens := Tokenize(src)
	if len(tokens) == 0 {
		return Result{Success: true, Value: Nil{}, Display: Format(Nil{})}
	}
	node, _, err := Parse(tokens)
	if err != nil {
		return failed(err)
	}
	v, err := in.Eval(node)
	if err != nil {
		return failed(err)
	}
	return Result{Success: true, Value: v, Display: Format(v)}
}

func failed(err error) Result {
	return Result{Error: Friendly(err), Err: err}
}

// Eval evaluates an already parsed node in the global environment.
func (in *Interpreter) Eval(node Node) (v Value, err error) {
	in.depth = 0
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, &Error{Kind: ArityOrTypeError, Detail: fmt.Sprint(r)}
		}
	}()
	v, err = in.eval(node, in.global)
	if err != nil {
		return nil, err
	}
	if _, ok := v.(*recurSignal); ok {
		return nil, recurOutsideTail()
	}
	return v, nil
}

// Apply calls fn with already evaluated arguments.
func (in *Interpreter) Apply(fn Value, args []Value) (Value, error) {
	v, err := in.apply(fn, args, Format(fn))
	if err != nil {
		return nil, err
	}
	if _, ok := v.(*recurSignal); ok {
		return nil, recurOutsideTail()
	}
	return v, nil
}

func (in *Interpreter) Defined(name string) bool {
	_, ok := in.global.Get(name)
	return ok
}

func (in *Interpreter) Lookup(name string) (Value, bool) {
	return in.global.Get(name)
}

// Globals lists the names defined so far.
func (in *Interpreter) Globals() []string {
	return in.global.Names()
}

func (in *Interpreter) History() []Entry {
	return append([]Entry(nil), in.history...)
}

// Reset clears every definition and the history.
func (in *Interpreter) Reset() {
	in.global = NewEnvironment(nil)
	in.history = nil
	in.depth = 0
}

func recurOutsideTail() *Error {
	return &Error{Kind: ArityOrTypeError, Reason: RecurOutsideTail, Name: "recur", Detail: "recur used outside a loop or function tail"}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var le *Error
	return errors.As(err, &le) && le.Kind == kind
}
