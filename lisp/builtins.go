package lisp

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type builtinFunc func(in *Interpreter, args []Value) (Value, error)

type builtin struct {
	arity string
	fn    builtinFunc
}

var builtins = map[string]builtin{}

// defBuiltin registers fn under every name. arity is "*", ">=N" or a
// "|"-separated list of exact counts.
func defBuiltin(arity string, fn builtinFunc, names ...string) {
	for _, name := range names {
		builtins[name] = builtin{arity: arity, fn: fn}
	}
}

// Builtins lists the names in the builtin table.
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	return names
}

func (in *Interpreter) callBuiltin(name string, args []Value) (v Value, err error) {
	b, ok := builtins[name]
	if !ok {
		return nil, unknownVariable(name)
	}
	if err := checkArity(name, b.arity, len(args)); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, typeError(name, "failed: %v", r)
		}
	}()
	return b.fn(in, args)
}

func checkArity(name, spec string, n int) error {
	if spec == "*" {
		return nil
	}
	if after, ok := strings.CutPrefix(spec, ">="); ok {
		least, _ := strconv.Atoi(after)
		if n < least {
			return typeError(name, "expects at least %s, got %d", plural(least, "argument"), n)
		}
		return nil
	}
	counts := strings.Split(spec, "|")
	for _, c := range counts {
		if want, _ := strconv.Atoi(c); want == n {
			return nil
		}
	}
	if len(counts) == 1 {
		want, _ := strconv.Atoi(counts[0])
		return typeError(name, "expects %s, got %d", plural(want, "argument"), n)
	}
	return typeError(name, "expects %s arguments, got %d", strings.Join(counts, " or "), n)
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func numberArg(name string, args []Value, i int) (float64, error) {
	n, ok := args[i].(Number)
	if !ok {
		return 0, typeError(name, "needs a number, but got %s", Inspect(args[i]))
	}
	return float64(n), nil
}

func numberArgs(name string, args []Value) ([]float64, error) {
	out := make([]float64, len(args))
	for i := range args {
		f, err := numberArg(name, args, i)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func listArg(name string, args []Value, i int) (List, error) {
	switch v := args[i].(type) {
	case List:
		return v, nil
	case Nil:
		return List{}, nil
	}
	return nil, typeError(name, "needs a list, but got %s", Inspect(args[i]))
}

// text is the string form used by str and concat.
func text(v Value) string {
	switch v := v.(type) {
	case String:
		return string(v)
	case Nil:
		return ""
	case Boolean:
		if v {
			return "true"
		}
		return "false"
	}
	return Format(v)
}

func unary(name string, fn func(x float64) float64) builtinFunc {
	return func(in *Interpreter, args []Value) (Value, error) {
		x, err := numberArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		return Number(fn(x)), nil
	}
}

func fold(name string, fn func(acc, x float64) float64) builtinFunc {
	return func(in *Interpreter, args []Value) (Value, error) {
		xs, err := numberArgs(name, args)
		if err != nil {
			return nil, err
		}
		acc := xs[0]
		for _, x := range xs[1:] {
			acc = fn(acc, x)
		}
		return Number(acc), nil
	}
}

func compare(name string, ok func(c int) bool) builtinFunc {
	return func(in *Interpreter, args []Value) (Value, error) {
		switch a := args[0].(type) {
		case Number:
			b, isNum := args[1].(Number)
			if !isNum {
				return nil, typeError(name, "can't compare %s with %s", Inspect(a), Inspect(args[1]))
			}
			switch {
			case a < b:
				return Boolean(ok(-1)), nil
			case a > b:
				return Boolean(ok(1)), nil
			case a == b:
				return Boolean(ok(0)), nil
			}
			return Boolean(false), nil
		case String:
			b, isStr := args[1].(String)
			if !isStr {
				return nil, typeError(name, "can't compare %s with %s", Inspect(a), Inspect(args[1]))
			}
			return Boolean(ok(strings.Compare(string(a), string(b)))), nil
		}
		return nil, typeError(name, "needs numbers or strings, but got %s", Inspect(args[0]))
	}
}

func predicate(fn func(v Value) bool) builtinFunc {
	return func(in *Interpreter, args []Value) (Value, error) {
		return Boolean(fn(args[0])), nil
	}
}

func numberPredicate(name string, fn func(x float64) bool) builtinFunc {
	return func(in *Interpreter, args []Value) (Value, error) {
		x, err := numberArg(name, args, 0)
		if err != nil {
			return nil, err
		}
		return Boolean(fn(x)), nil
	}
}

var rainbow = []string{"red", "orange", "yellow", "green", "blue", "indigo", "violet"}

func init() {
	defBuiltin("*", func(in *Interpreter, args []Value) (Value, error) {
		xs, err := numberArgs("+", args)
		if err != nil {
			return nil, err
		}
		sum := 0.0
		for _, x := range xs {
			sum += x
		}
		return Number(sum), nil
	}, "+")
	defBuiltin(">=1", func(in *Interpreter, args []Value) (Value, error) {
		if len(args) == 1 {
			x, err := numberArg("-", args, 0)
			return Number(-x), err
		}
		return fold("-", func(acc, x float64) float64 { return acc - x })(in, args)
	}, "-")
	defBuiltin("*", func(in *Interpreter, args []Value) (Value, error) {
		xs, err := numberArgs("*", args)
		if err != nil {
			return nil, err
		}
		product := 1.0
		for _, x := range xs {
			product *= x
		}
		return Number(product), nil
	}, "*")
	defBuiltin(">=1", fold("/", func(acc, x float64) float64 { return acc / x }), "/")

	defBuiltin("*", func(in *Interpreter, args []Value) (Value, error) {
		for _, a := range args[min(1, len(args)):] {
			if !Equal(args[0], a) {
				return Boolean(false), nil
			}
		}
		return Boolean(true), nil
	}, "=")
	defBuiltin(">=2", compare("<", func(c int) bool { return c < 0 }), "<")
	defBuiltin(">=2", compare(">", func(c int) bool { return c > 0 }), ">")
	defBuiltin(">=2", compare("<=", func(c int) bool { return c <= 0 }), "<=")
	defBuiltin(">=2", compare(">=", func(c int) bool { return c >= 0 }), ">=")

	defBuiltin("*", func(in *Interpreter, args []Value) (Value, error) {
		return append(List{}, args...), nil
	}, "list")
	defBuiltin("1", func(in *Interpreter, args []Value) (Value, error) {
		l, err := listArg("first", args, 0)
		if err != nil || len(l) == 0 {
			return Nil{}, err
		}
		return l[0], nil
	}, "car", "first")
	defBuiltin("1", func(in *Interpreter, args []Value) (Value, error) {
		l, err := listArg("rest", args, 0)
		if err != nil {
			return nil, err
		}
		if len(l) == 0 {
			return List{}, nil
		}
		return append(List{}, l[1:]...), nil
	}, "cdr", "rest")
	defBuiltin("2", func(in *Interpreter, args []Value) (Value, error) {
		l, err := listArg("cons", args, 1)
		if err != nil {
			return nil, err
		}
		return append(List{args[0]}, l...), nil
	}, "cons")
	defBuiltin("1", func(in *Interpreter, args []Value) (Value, error) {
		if s, ok := args[0].(String); ok {
			return Number(len([]rune(string(s)))), nil
		}
		l, err := listArg("length", args, 0)
		if err != nil {
			return nil, err
		}
		return Number(len(l)), nil
	}, "length", "count")
	defBuiltin("*", func(in *Interpreter, args []Value) (Value, error) {
		out := List{}
		for i := range args {
			l, err := listArg("append", args, i)
			if err != nil {
				return nil, err
			}
			out = append(out, l...)
		}
		return out, nil
	}, "append")
	defBuiltin("1", func(in *Interpreter, args []Value) (Value, error) {
		l, err := listArg("reverse", args, 0)
		if err != nil {
			return nil, err
		}
		out := make(List, len(l))
		for i, v := range l {
			out[len(l)-1-i] = v
		}
		return out, nil
	}, "reverse")
	defBuiltin("1", func(in *Interpreter, args []Value) (Value, error) {
		l, err := listArg("last", args, 0)
		if err != nil || len(l) == 0 {
			return Nil{}, err
		}
		return l[len(l)-1], nil
	}, "last")
	defBuiltin("2|3", func(in *Interpreter, args []Value) (Value, error) {
		l, err := listArg("nth", args, 0)
		if err != nil {
			return nil, err
		}
		i, err := numberArg("nth", args, 1)
		if err != nil {
			return nil, err
		}
		if i < 0 || int(i) >= len(l) || i != math.Trunc(i) {
			if len(args) == 3 {
				return args[2], nil
			}
			return nil, typeError("nth", "index %s is out of range for a list of %d", formatNumber(i), len(l))
		}
		return l[int(i)], nil
	}, "nth")

	defBuiltin("1", predicate(isNil), "null?", "empty?")
	defBuiltin("1", predicate(func(v Value) bool { _, ok := v.(Number); return ok }), "number?")
	defBuiltin("1", predicate(func(v Value) bool { _, ok := v.(String); return ok }), "string?")
	defBuiltin("1", predicate(func(v Value) bool { _, ok := v.(List); return ok }), "list?")
	defBuiltin("1", predicate(func(v Value) bool { _, ok := v.(List); return !ok }), "atom?")
	defBuiltin("1", predicate(func(v Value) bool {
		switch v.(type) {
		case Builtin, *Closure:
			return true
		}
		return false
	}), "fn?", "procedure?")
	defBuiltin("2", func(in *Interpreter, args []Value) (Value, error) {
		return Boolean(Equal(args[0], args[1])), nil
	}, "equal?")
	defBuiltin("1", numberPredicate("zero?", func(x float64) bool { return x == 0 }), "zero?")
	defBuiltin("1", numberPredicate("even?", func(x float64) bool { return math.Mod(x, 2) == 0 }), "even?")
	defBuiltin("1", numberPredicate("odd?", func(x float64) bool { return math.Abs(math.Mod(x, 2)) == 1 }), "odd?")
	defBuiltin("1", numberPredicate("pos?", func(x float64) bool { return x > 0 }), "pos?")
	defBuiltin("1", numberPredicate("neg?", func(x float64) bool { return x < 0 }), "neg?")
	defBuiltin("1", predicate(func(v Value) bool { return !Truthy(v) }), "not")

	defBuiltin("*", func(in *Interpreter, args []Value) (Value, error) {
		var sb strings.Builder
		for _, a := range args {
			sb.WriteString(text(a))
		}
		return String(sb.String()), nil
	}, "concat", "str")
	defBuiltin("1", func(in *Interpreter, args []Value) (Value, error) {
		return String(strings.ToUpper(text(args[0]))), nil
	}, "upcase", "upper-case")
	defBuiltin("1", func(in *Interpreter, args []Value) (Value, error) {
		return String(strings.ToLower(text(args[0]))), nil
	}, "downcase", "lower-case")

	defBuiltin("1", unary("abs", math.Abs), "abs")
	defBuiltin(">=1", fold("max", math.Max), "max")
	defBuiltin(">=1", fold("min", math.Min), "min")
	defBuiltin("2", fold("mod", math.Mod), "mod")
	defBuiltin("1", unary("inc", func(x float64) float64 { return x + 1 }), "inc")
	defBuiltin("1", unary("dec", func(x float64) float64 { return x - 1 }), "dec")

	defBuiltin(">=2", mapBuiltin, "map")
	defBuiltin("2", filterBuiltin, "filter")
	defBuiltin("2|3", reduceBuiltin, "reduce")
	defBuiltin(">=2", applyBuiltin, "apply")

	defBuiltin("1", unary("double", func(x float64) float64 { return x * 2 }), "double")
	defBuiltin("1", unary("square", func(x float64) float64 { return x * x }), "square")
	defBuiltin("1", unary("cube", func(x float64) float64 { return x * x * x }), "cube")
	defBuiltin("1", unary("magic-number", func(x float64) float64 { return x * 7 }), "magic-number")
	defBuiltin("1", unary("sparkle", func(x float64) float64 { return x * 7 }), "sparkle")
	defBuiltin("1", unary("doughnut-power", func(x float64) float64 { return x*10 + 5 }), "doughnut-power")
	defBuiltin("1", unary("double-magic", func(x float64) float64 { return x * 2 }), "double-magic")
	defBuiltin("1", func(in *Interpreter, args []Value) (Value, error) {
		x, err := numberArg("rainbow-color", args, 0)
		if err != nil {
			return nil, err
		}
		i := int(math.Mod(math.Abs(math.Trunc(x)), float64(len(rainbow))))
		return String(rainbow[i]), nil
	}, "rainbow-color")
	defBuiltin("*", func(in *Interpreter, args []Value) (Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = text(a)
		}
		return String("SPELL: " + strings.Join(parts, "-")), nil
	}, "spell")
}

func (in *Interpreter) call(fn Value, args ...Value) (Value, error) {
	return in.Apply(fn, args)
}

func mapBuiltin(in *Interpreter, args []Value) (Value, error) {
	lists := make([]List, 0, len(args)-1)
	n := -1
	for i := 1; i < len(args); i++ {
		l, err := listArg("map", args, i)
		if err != nil {
			return nil, err
		}
		if n < 0 || len(l) < n {
			n = len(l)
		}
		lists = append(lists, l)
	}
	out := make(List, 0, n)
	for i := 0; i < n; i++ {
		callArgs := make([]Value, len(lists))
		for j, l := range lists {
			callArgs[j] = l[i]
		}
		v, err := in.Apply(args[0], callArgs)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func filterBuiltin(in *Interpreter, args []Value) (Value, error) {
	l, err := listArg("filter", args, 1)
	if err != nil {
		return nil, err
	}
	out := List{}
	for _, v := range l {
		keep, err := in.call(args[0], v)
		if err != nil {
			return nil, err
		}
		if Truthy(keep) {
			out = append(out, v)
		}
	}
	return out, nil
}

// reduceBuiltin follows (reduce f coll) and (reduce f init coll).
func reduceBuiltin(in *Interpreter, args []Value) (Value, error) {
	fn := args[0]
	l, err := listArg("reduce", args, len(args)-1)
	if err != nil {
		return nil, err
	}
	var acc Value
	if len(args) == 3 {
		acc = args[1]
	} else {
		if len(l) == 0 {
			return in.call(fn)
		}
		acc, l = l[0], l[1:]
	}
	for _, v := range l {
		if acc, err = in.call(fn, acc, v); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func applyBuiltin(in *Interpreter, args []Value) (Value, error) {
	last, err := listArg("apply", args, len(args)-1)
	if err != nil {
		return nil, err
	}
	callArgs := append(append([]Value{}, args[1:len(args)-1]...), last...)
	return in.Apply(args[0], callArgs)
}
