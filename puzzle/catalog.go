package puzzle

import (
	"errors"
	"fmt"

	"lispquest/lisp"
)

var ErrUnknownPuzzle = errors.New("unknown puzzle")

// Catalog keeps puzzles in curriculum order.
type Catalog struct {
	puzzles []*Puzzle
	byID    map[string]*Puzzle
}

func NewCatalog(ps ...*Puzzle) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*Puzzle)}
	for _, p := range ps {
		if err := c.Add(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) Add(p *Puzzle) error {
	if p.ID == "" {
		return errors.New("puzzle without id")
	}
	if _, dup := c.byID[p.ID]; dup {
		return fmt.Errorf("duplicate puzzle %q", p.ID)
	}
	if p.Number == 0 {
		p.Number = len(c.puzzles) + 1
	}
	c.puzzles = append(c.puzzles, p)
	c.byID[p.ID] = p
	return nil
}

func (c *Catalog) Get(id string) (*Puzzle, bool) {
	p, ok := c.byID[id]
	return p, ok
}

func (c *Catalog) All() []*Puzzle {
	return append([]*Puzzle(nil), c.puzzles...)
}

func (c *Catalog) Len() int {
	return len(c.puzzles)
}

func (c *Catalog) ForScene(scene string) []*Puzzle {
	var out []*Puzzle
	for _, p := range c.puzzles {
		if p.Scene == scene {
			out = append(out, p)
		}
	}
	return out
}

func (c *Catalog) ForWorld(world string) []*Puzzle {
	var out []*Puzzle
	for _, p := range c.puzzles {
		if p.World == world {
			out = append(out, p)
		}
	}
	return out
}

// MaxScore is the sum of every puzzle's points.
func (c *Catalog) MaxScore() int {
	total := 0
	for _, p := range c.puzzles {
		total += p.Points()
	}
	return total
}

// Check looks up id and verifies src against it.
func (c *Catalog) Check(in *lisp.Interpreter, id, src string) (Report, error) {
	p, ok := c.Get(id)
	if !ok {
		return Report{Message: "Unknown puzzle."}, fmt.Errorf("%w: %s", ErrUnknownPuzzle, id)
	}
	return Check(in, p, src), nil
}
