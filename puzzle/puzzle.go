// Package puzzle decides whether a submission at a magic terminal solves the
// active puzzle.
package puzzle

import (
	"strings"
	"unicode"

	"lispquest/lisp"
)

// DefaultPoints is awarded for every solved puzzle.
const DefaultPoints = 15

// Env is the part of the interpreter a checker may inspect.
type Env interface {
	Defined(name string) bool
}

// Attempt is the evidence a checker sees: the raw value, its display form,
// the submitted source and the interpreter after evaluation.
type Attempt struct {
	Value   lisp.Value
	Display string
	Source  string
	Env     Env
}

type Predicate func(a Attempt) bool

type Verdict struct {
	Solved  bool
	Message string
}

// Reward describes what solving a puzzle does to the game.
type Reward struct {
	Points  int
	Flags   []string
	Message string
	Next    string
	Win     bool
}

type Puzzle struct {
	ID          string
	World       string
	Scene       string
	Number      int
	Title       string
	Description string
	Hint        string
	Hints       []string
	Solution    string
	Teaching    string
	Retry       string
	Checks      []Predicate
	OnSolve     Reward
}

// Check runs every predicate against a. The retry text may contain
// {result}, which is replaced by the display string.
func (p *Puzzle) Check(a Attempt) Verdict {
	if len(p.Checks) == 0 {
		return Verdict{Message: "This terminal has nothing to check yet."}
	}
	for _, check := range p.Checks {
		if !check(a) {
			return Verdict{Message: p.retryMessage(a.Display)}
		}
	}
	return Verdict{Solved: true, Message: p.Teaching}
}

func (p *Puzzle) retryMessage(display string) string {
	if p.Retry == "" {
		return "You got " + display + ", but that's not quite it. " + p.Hint
	}
	return strings.ReplaceAll(p.Retry, "{result}", display)
}

func (p *Puzzle) Points() int {
	if p.OnSolve.Points > 0 {
		return p.OnSolve.Points
	}
	return DefaultPoints
}

// FlagName is the game flag set when the puzzle is solved, e.g.
// "solvedAddSpell" for "add-spell".
func (p *Puzzle) FlagName() string {
	return "solved" + CamelCase(p.ID)
}

func CamelCase(id string) string {
	var sb strings.Builder
	upper := true
	for _, r := range id {
		if r == '-' || r == '_' || unicode.IsSpace(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
