package lisp

func init() {
	defSpecial(defineForm, "define", "def")
	defSpecial(setForm, "set!")
	defSpecial(ifForm, "if")
	defSpecial(condForm, "cond")
	defSpecial(lambdaForm, "lambda", "fn")
	defSpecial(defnForm, "defn")
	defSpecial(letForm, "let")
	defSpecial(doForm, "begin", "do")
	defSpecial(quoteForm, "quote")
	defSpecial(andForm, "and")
	defSpecial(orForm, "or")
	defSpecial(notForm, "not")
	defSpecial(loopForm, "loop")
	defSpecial(recurForm, "recur")
	defSpecial(threadFirstForm, "->")
	defSpecial(threadLastForm, "->>")
}

func defineForm(in *Interpreter, args []Node, env *Environment) (Value, error) {
	if len(args) >= 2 {
		// (define (name params...) body...)
		if sig, ok := args[0].(ListNode); ok && !sig.Bracket && len(sig.Items) > 0 {
			name, ok := symbolName(sig.Items[0])
			if !ok {
				return nil, typeError("define", "needs a name for the function")
			}
			c, err := makeClosure(name, ListNode{Items: sig.Items[1:]}, args[1:], env)
			if err != nil {
				return nil, err
			}
			in.bind(name, c, env)
			return c, nil
		}
	}
	if len(args) != 2 {
		return nil, typeError("define", "needs a name and a value, like (define x 5)")
	}
	name, ok := symbolName(args[0])
	if !ok {
		return nil, typeError("define", "needs a name, but got %s", Source(args[0]))
	}
	v, err := in.evalValue(args[1], env)
	if err != nil {
		return nil, err
	}
	in.bind(name, v, env)
	return v, nil
}

// bind writes to the global environment and to the active local frame.
func (in *Interpreter) bind(name string, v Value, env *Environment) {
	in.global.Define(name, v)
	if env != in.global {
		env.Define(name, v)
	}
}

func setForm(in *Interpreter, args []Node, env *Environment) (Value, error) {
	if len(args) != 2 {
		return nil, typeError("set!", "needs a name and a value, like (set! x 5)")
	}
	name, ok := symbolName(args[0])
	if !ok {
		return nil, typeError("set!", "needs a name, but got %s", Source(args[0]))
	}
	if _, global := in.global.Get(name); env.find(name) == nil && !global {
		return nil, &Error{Kind: UnknownVariable, Reason: SetUnbound, Name: name, Detail: "cannot set undefined variable " + name}
	}
	v, err := in.evalValue(args[1], env)
	if err != nil {
		return nil, err
	}
	in.bind(name, v, env)
	return v, nil
}

func ifForm(in *Interpreter, args []Node, env *Environment) (Value, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, typeError("if", "needs a test, a then-branch and an optional else-branch")
	}
	test, err := in.evalValue(args[0], env)
	if err != nil {
		return nil, err
	}
	if Truthy(test) {
		return in.eval(args[1], env)
	}
	if len(args) == 3 {
		return in.eval(args[2], env)
	}
	return Nil{}, nil
}

func isElse(n Node) bool {
	name, ok := symbolName(n)
	return ok && (name == "else" || name == ":else")
}

// condForm accepts classic (test result) clauses and flat test/result pairs.
func condForm(in *Interpreter, args []Node, env *Environment) (Value, error) {
	pairs := make([][2]Node, 0, len(args))
	if classicClauses(args) {
		for _, a := range args {
			clause := a.(ListNode)
			pairs = append(pairs, [2]Node{clause.Items[0], clause.Items[1]})
		}
	} else {
		if len(args)%2 != 0 {
			return nil, typeError("cond", "needs pairs of a test and a result")
		}
		for i := 0; i < len(args); i += 2 {
			pairs = append(pairs, [2]Node{args[i], args[i+1]})
		}
	}
	for _, p := range pairs {
		if isElse(p[0]) {
			return in.eval(p[1], env)
		}
		test, err := in.evalValue(p[0], env)
		if err != nil {
			return nil, err
		}
		if Truthy(test) {
			return in.eval(p[1], env)
		}
	}
	return Nil{}, nil
}

// classicClauses reports whether args read as (test result) clauses. Every
// argument must be a two-item list. A clause headed by a plain symbol other
// than else is an application, so flat pairs win unless the count is odd.
func classicClauses(args []Node) bool {
	if len(args) == 0 {
		return false
	}
	applications := false
	for _, a := range args {
		l, ok := a.(ListNode)
		if !ok || l.Bracket || len(l.Items) != 2 {
			return false
		}
		if _, sym := symbolName(l.Items[0]); sym && !isElse(l.Items[0]) {
			applications = true
		}
	}
	return !applications || len(args)%2 != 0
}

func lambdaForm(in *Interpreter, args []Node, env *Environment) (Value, error) {
	name := ""
	if len(args) > 0 {
		if n, ok := symbolName(args[0]); ok {
			name, args = n, args[1:]
		}
	}
	if len(args) == 0 {
		return nil, typeError("lambda", "needs a parameter list, like (lambda (x) (* x 2))")
	}
	return makeClosure(name, args[0], args[1:], env)
}

func defnForm(in *Interpreter, args []Node, env *Environment) (Value, error) {
	if len(args) < 2 {
		return nil, typeError("defn", "needs a name, parameters and a body, like (defn double [x] (* x 2))")
	}
	name, ok := symbolName(args[0])
	if !ok {
		return nil, typeError("defn", "needs a name, but got %s", Source(args[0]))
	}
	rest := args[1:]
	if a, ok := rest[0].(AtomNode); ok && len(rest) > 1 {
		if _, doc := a.Value.(String); doc {
			rest = rest[1:]
		}
	}
	c, err := makeClosure(name, rest[0], rest[1:], env)
	if err != nil {
		return nil, err
	}
	in.bind(name, c, env)
	return c, nil
}

func makeClosure(name string, params Node, body []Node, env *Environment) (*Closure, error) {
	list, ok := params.(ListNode)
	if !ok {
		return nil, typeError("fn", "needs its parameters in a list, but got %s", Source(params))
	}
	names := make([]string, 0, len(list.Items))
	for _, p := range list.Items {
		n, ok := symbolName(p)
		if !ok {
			return nil, typeError("fn", "parameters must be names, but got %s", Source(p))
		}
		names = append(names, n)
	}
	return &Closure{Name: name, Params: names, Body: bodyNode(body), Env: env.Snapshot()}, nil
}

func bodyNode(body []Node) Node {
	if len(body) == 1 {
		return body[0]
	}
	return ListNode{Items: append([]Node{SymbolNode{Name: "do"}}, body...)}
}

type binding struct {
	name string
	expr Node
}

// bindingPairs accepts ((x 1) (y 2)) and [x 1 y 2].
func bindingPairs(form string, n Node) ([]binding, error) {
	list, ok := n.(ListNode)
	if !ok {
		return nil, typeError(form, "needs its bindings in a list, like (%s [x 1] ...)", form)
	}
	var out []binding
	if classicBindings(list) {
		for _, item := range list.Items {
			pair := item.(ListNode)
			name, _ := symbolName(pair.Items[0])
			out = append(out, binding{name, pair.Items[1]})
		}
		return out, nil
	}
	if len(list.Items)%2 != 0 {
		return nil, typeError(form, "needs a value for every name in its bindings")
	}
	for i := 0; i < len(list.Items); i += 2 {
		name, ok := symbolName(list.Items[i])
		if !ok {
			return nil, typeError(form, "can only bind names, but got %s", Source(list.Items[i]))
		}
		out = append(out, binding{name, list.Items[i+1]})
	}
	return out, nil
}

func classicBindings(list ListNode) bool {
	if len(list.Items) == 0 {
		return false
	}
	for _, item := range list.Items {
		pair, ok := item.(ListNode)
		if !ok || len(pair.Items) != 2 {
			return false
		}
		if _, ok := symbolName(pair.Items[0]); !ok {
			return false
		}
	}
	return true
}

func letForm(in *Interpreter, args []Node, env *Environment) (Value, error) {
	if len(args) == 0 {
		return nil, typeError("let", "needs bindings and a body, like (let [x 1] (+ x 1))")
	}
	pairs, err := bindingPairs("let", args[0])
	if err != nil {
		return nil, err
	}
	local := NewEnvironment(env)
	for _, b := range pairs {
		v, err := in.evalValue(b.expr, local)
		if err != nil {
			return nil, err
		}
		local.Define(b.name, v)
	}
	return doForm(in, args[1:], local)
}

func doForm(in *Interpreter, args []Node, env *Environment) (Value, error) {
	if len(args) == 0 {
		return Nil{}, nil
	}
	for _, a := range args[:len(args)-1] {
		if _, err := in.evalValue(a, env); err != nil {
			return nil, err
		}
	}
	return in.eval(args[len(args)-1], env)
}

func quoteForm(in *Interpreter, args []Node, env *Environment) (Value, error) {
	if len(args) != 1 {
		return nil, typeError("quote", "needs exactly one thing to quote")
	}
	return quoteValue(args[0]), nil
}

func andForm(in *Interpreter, args []Node, env *Environment) (Value, error) {
	for _, a := range args {
		v, err := in.evalValue(a, env)
		if err != nil {
			return nil, err
		}
		if !Truthy(v) {
			return Boolean(false), nil
		}
	}
	return Boolean(true), nil
}

func orForm(in *Interpreter, args []Node, env *Environment) (Value, error) {
	for _, a := range args {
		v, err := in.evalValue(a, env)
		if err != nil {
			return nil, err
		}
		if Truthy(v) {
			return v, nil
		}
	}
	return Boolean(false), nil
}

func notForm(in *Interpreter, args []Node, env *Environment) (Value, error) {
	if len(args) != 1 {
		return nil, typeError("not", "expects 1 argument, got %d", len(args))
	}
	v, err := in.evalValue(args[0], env)
	if err != nil {
		return nil, err
	}
	return Boolean(!Truthy(v)), nil
}

func loopForm(in *Interpreter, args []Node, env *Environment) (Value, error) {
	if len(args) == 0 {
		return nil, typeError("loop", "needs bindings and a body, like (loop [n 3] ...)")
	}
	pairs, err := bindingPairs("loop", args[0])
	if err != nil {
		return nil, err
	}
	local := NewEnvironment(env)
	for _, b := range pairs {
		v, err := in.evalValue(b.expr, local)
		if err != nil {
			return nil, err
		}
		local.Define(b.name, v)
	}
	for {
		v, err := doForm(in, args[1:], local)
		if err != nil {
			return nil, err
		}
		r, ok := v.(*recurSignal)
		if !ok {
			return v, nil
		}
		if len(r.args) != len(pairs) {
			return nil, typeError("recur", "expects %d values for this loop, got %d", len(pairs), len(r.args))
		}
		local = NewEnvironment(env)
		for i, b := range pairs {
			local.Define(b.name, r.args[i])
		}
	}
}

func recurForm(in *Interpreter, args []Node, env *Environment) (Value, error) {
	vals := make([]Value, 0, len(args))
	for _, a := range args {
		v, err := in.evalValue(a, env)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return &recurSignal{args: vals}, nil
}

func threadFirstForm(in *Interpreter, args []Node, env *Environment) (Value, error) {
	return thread(in, "->", args, env, false)
}

func threadLastForm(in *Interpreter, args []Node, env *Environment) (Value, error) {
	return thread(in, "->>", args, env, true)
}

// thread rewrites (-> x (f a)) into (f x a), or (f a x) when last is set.
func thread(in *Interpreter, name string, args []Node, env *Environment, last bool) (Value, error) {
	if len(args) == 0 {
		return nil, typeError(name, "needs a starting value")
	}
	acc := args[0]
	for _, step := range args[1:] {
		l, ok := step.(ListNode)
		if !ok {
			acc = ListNode{Items: []Node{step, acc}}
			continue
		}
		if len(l.Items) == 0 {
			return nil, typeError(name, "cannot thread into ()")
		}
		items := make([]Node, 0, len(l.Items)+1)
		if last {
			items = append(append(items, l.Items...), acc)
		} else {
			items = append(append(append(items, l.Items[0]), acc), l.Items[1:]...)
		}
		acc = ListNode{Items: items}
	}
	return in.eval(acc, env)
}
