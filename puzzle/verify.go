package puzzle

import "lispquest/lisp"

// Report is the outcome of one checked submission. Hint is set whenever the
// puzzle is not solved.
type Report struct {
	Success bool
	Solved  bool
	Message string
	Hint    string
	Display string
	Error   string
}

// Check evaluates src and runs p's checker over the result.
func Check(in *lisp.Interpreter, p *Puzzle, src string) Report {
	res := in.Evaluate(src)
	if !res.Success {
		return Report{Message: res.Error, Error: res.Error, Hint: p.Hint}
	}
	v := p.Check(Attempt{Value: res.Value, Display: res.Display, Source: src, Env: in})
	r := Report{Success: true, Solved: v.Solved, Message: v.Message, Display: res.Display}
	if !v.Solved {
		r.Hint = p.Hint
	}
	return r
}
