package puzzle

import "lispquest/lisp"

type State int

const (
	Unattempted State = iota
	Solved
)

func (s State) String() string {
	if s == Solved {
		return "solved"
	}
	return "unattempted"
}

// Session tracks one puzzle at a terminal. Solved is terminal; after it,
// submissions are evaluated without checking.
type Session struct {
	Puzzle   *Puzzle
	State    State
	Attempts int
	hint     int
}

type Outcome struct {
	Report
	Checked bool
	// Transitioned is set on the submission that solved the puzzle.
	Transitioned bool
	NextHint     string
}

func NewSession(p *Puzzle) *Session {
	return &Session{Puzzle: p}
}

func (s *Session) Submit(in *lisp.Interpreter, src string) Outcome {
	if s.State == Solved {
		res := in.Evaluate(src)
		return Outcome{Report: Report{
			Success: res.Success,
			Message: res.Error,
			Display: res.Display,
			Error:   res.Error,
		}}
	}
	s.Attempts++
	o := Outcome{Report: Check(in, s.Puzzle, src), Checked: true}
	if o.Solved {
		s.State = Solved
		o.Transitioned = true
		return o
	}
	o.NextHint = s.NextHint()
	return o
}

// NextHint reveals hints one at a time and then repeats the last one.
func (s *Session) NextHint() string {
	hints := s.Puzzle.Hints
	if len(hints) == 0 {
		return ""
	}
	h := hints[min(s.hint, len(hints)-1)]
	s.hint++
	return h
}

func (s *Session) HintsShown() int {
	return min(s.hint, len(s.Puzzle.Hints))
}
