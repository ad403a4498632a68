package game

import (
	"fmt"
	"slices"
	"strings"

	"lispquest/puzzle"
)

type LineKind int

const (
	LineInfo LineKind = iota
	LineInput
	LineResult
	LineError
	LineHint
	LineSuccess
)

func (k LineKind) String() string {
	switch k {
	case LineInput:
		return "input"
	case LineResult:
		return "result"
	case LineError:
		return "error"
	case LineHint:
		return "hint"
	case LineSuccess:
		return "success"
	}
	return "info"
}

// Line is one entry of the console transcript.
type Line struct {
	Kind LineKind
	Text string
}

// Console is the LISP prompt opened at a terminal. With a puzzle attached,
// submissions are checked until the puzzle is solved; afterwards, and
// without a puzzle, they are plain evaluation.
type Console struct {
	g       *Game
	open    bool
	session *puzzle.Session
	Lines   []Line
}

// Open attaches puzzleID ("" for a free-form REPL). keepOutput keeps the
// transcript, which is how a chained puzzle continues in the same console.
func (c *Console) Open(puzzleID string, keepOutput bool) error {
	var p *puzzle.Puzzle
	if puzzleID != "" {
		var ok bool
		if p, ok = c.g.Content.Puzzles.Get(puzzleID); !ok {
			return fmt.Errorf("%w: %s", puzzle.ErrUnknownPuzzle, puzzleID)
		}
	}
	if !keepOutput {
		c.Lines = nil
	}
	c.session = nil
	if p != nil {
		c.session = puzzle.NewSession(p)
		if c.g.State.Solved(p.ID) {
			c.session.State = puzzle.Solved
		}
		c.add(LineInfo, fmt.Sprintf("=== Puzzle %d: %s ===", p.Number, p.Title))
		c.add(LineInfo, p.Description)
		if p.Hint != "" {
			c.add(LineHint, "Hint: "+p.Hint)
		}
	} else {
		c.add(LineInfo, "Free-form LISP REPL. Type expressions to experiment!")
	}
	c.add(LineInfo, "Type HINT for help or EXIT to leave the console.")
	c.open = true
	return nil
}

func (c *Console) Close() {
	c.open = false
	c.session = nil
}

func (c *Console) IsOpen() bool {
	return c.open
}

// Puzzle is the attached puzzle, or nil in free-form mode.
func (c *Console) Puzzle() *puzzle.Puzzle {
	if c.session == nil {
		return nil
	}
	return c.session.Puzzle
}

// Solved reports whether the attached puzzle has been solved.
func (c *Console) Solved() bool {
	return c.session != nil && c.session.State == puzzle.Solved
}

func (c *Console) add(kind LineKind, text string) {
	c.Lines = append(c.Lines, Line{Kind: kind, Text: text})
}

func (c *Console) hint(h string) {
	if h != "" {
		c.add(LineHint, "Hint: "+h)
	}
}

// Submit evaluates src and returns the transcript lines it added.
func (c *Console) Submit(src string) []Line {
	start := len(c.Lines)
	c.add(LineInput, "LISP> "+src)
	if c.session == nil || c.session.State == puzzle.Solved {
		res := c.g.Interp.Evaluate(src)
		if res.Success {
			c.add(LineResult, "=> "+res.Display)
		} else {
			c.add(LineError, "Error: "+res.Error)
		}
		return slices.Clone(c.Lines[start:])
	}

	p := c.session.Puzzle
	out := c.session.Submit(c.g.Interp, src)
	h := out.NextHint
	if h == "" {
		h = p.Hint
	}
	switch {
	case !out.Success:
		c.add(LineError, "Error: "+out.Error)
		c.hint(h)
	case !out.Solved:
		c.add(LineResult, "=> "+out.Display)
		c.add(LineHint, "Not quite! "+out.Message)
		c.hint(h)
	default:
		c.add(LineResult, "=> "+out.Display)
		if out.Message != "" {
			c.add(LineSuccess, out.Message)
		}
		for _, m := range c.g.completePuzzle(p) {
			c.add(LineSuccess, m)
		}
		if next := p.OnSolve.Next; next != "" && !c.g.State.Solved(next) {
			if err := c.Open(next, true); err != nil {
				c.add(LineError, err.Error())
			}
		}
	}
	return slices.Clone(c.Lines[start:])
}

// Handle is console-mode input: EXIT and HINT are commands, anything else
// is LISP.
func (c *Console) Handle(input string) Response {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "":
		return Response{Console: true}
	case "exit", "close", "quit", "back", "leave", "done":
		c.Close()
		return c.g.reply("You step away from the terminal.\n\n" + c.g.Describe())
	case "hint", "help", "?":
		start := len(c.Lines)
		switch {
		case c.session == nil:
			c.add(LineInfo, "No puzzle here. Experiment freely, or EXIT to leave.")
		case c.Solved():
			c.add(LineInfo, "This puzzle is solved. Experiment freely, or EXIT to leave.")
		default:
			h := c.session.NextHint()
			if h == "" {
				h = c.session.Puzzle.Hint
			}
			c.hint(h)
		}
		return Response{Text: render(c.Lines[start:]), Console: true}
	}
	return Response{Text: render(c.Submit(input)), Console: true}
}

func render(lines []Line) string {
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text
	}
	return strings.Join(texts, "\n")
}
