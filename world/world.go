// Package world holds the adventure content: worlds, scenes, characters and
// the puzzle catalog, loaded from .lsp content files.
package world

import (
	"fmt"
	"sort"
	"strings"

	"lispquest/puzzle"
)

type World struct {
	ID          string
	Name        string
	Subtitle    string
	Description string
	StartScene  string
	Order       int
}

type Scene struct {
	ID          string
	World       string
	Name        string
	Description string
	Objects     []*Object
	NPCs        []string
	Exits       map[string]*Exit
	ExitOrder   []string
}

// Object is anything in a scene the player can refer to. Terminals are
// objects with puzzles.
type Object struct {
	ID          string
	Name        string
	Description string
	Aliases     []string
	CanTake     bool
	Points      int
	ReadText    string
	EatText     string
	Requires    string
	Puzzles     []string
}

type Exit struct {
	Direction string
	To        string
	Requires  string
	Fail      string
}

type NPC struct {
	ID          string
	Name        string
	Description string
	Aliases     []string
	Dialogue    []Line
	Wants       *Want
}

// Want is an item the NPC accepts through GIVE, and what happens then.
type Want struct {
	Item      string
	Thanks    string
	Sets      string
	Points    int
	Gives     string
	GivesName string
}

// Line is one thing an NPC can say. The first line whose conditions hold
// is spoken.
type Line struct {
	Text   string
	When   []string
	Unless []string
	Sets   string
	Points int
}

type Content struct {
	Worlds     map[string]*World
	Scenes     map[string]*Scene
	NPCs       map[string]*NPC
	Puzzles    *puzzle.Catalog
	SceneOrder []string
}

func (c *Content) Scene(id string) (*Scene, bool) {
	s, ok := c.Scenes[id]
	return s, ok
}

func (c *Content) World(id string) (*World, bool) {
	w, ok := c.Worlds[id]
	return w, ok
}

func (c *Content) NPC(id string) (*NPC, bool) {
	n, ok := c.NPCs[id]
	return n, ok
}

// OrderedWorlds sorts worlds by their order clause.
func (c *Content) OrderedWorlds() []*World {
	out := make([]*World, 0, len(c.Worlds))
	for _, w := range c.Worlds {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Start returns the first world's starting scene.
func (c *Content) Start() (world, scene string) {
	ws := c.OrderedWorlds()
	if len(ws) == 0 {
		return "", ""
	}
	return ws[0].ID, ws[0].StartScene
}

// MaxScore is everything the content can award.
func (c *Content) MaxScore() int {
	total := c.Puzzles.MaxScore()
	for _, s := range c.Scenes {
		for _, o := range s.Objects {
			total += o.Points
		}
	}
	for _, n := range c.NPCs {
		for _, l := range n.Dialogue {
			total += l.Points
		}
		if n.Wants != nil {
			total += n.Wants.Points
		}
	}
	return total
}

// Object finds an object by id in any scene.
func (c *Content) Object(id string) (*Object, bool) {
	for _, sid := range c.SceneOrder {
		for _, o := range c.Scenes[sid].Objects {
			if o.ID == id {
				return o, true
			}
		}
	}
	return nil, false
}

// Object finds a scene object by id, name or alias.
func (s *Scene) Object(target string) (*Object, bool) {
	for _, o := range s.Objects {
		if o.Matches(target) {
			return o, true
		}
	}
	return nil, false
}

func (o *Object) Matches(target string) bool {
	return matches(target, o.ID, o.Name, o.Aliases)
}

func (n *NPC) Matches(target string) bool {
	return matches(target, n.ID, n.Name, n.Aliases)
}

func matches(target, id, name string, aliases []string) bool {
	t := strings.ToLower(strings.TrimSpace(target))
	if t == "" {
		return false
	}
	if t == id || t == strings.ToLower(name) {
		return true
	}
	for _, a := range aliases {
		if t == strings.ToLower(a) {
			return true
		}
	}
	return false
}

// Speak picks the first line whose flag conditions hold.
func (n *NPC) Speak(flag func(string) bool) (Line, bool) {
	for _, l := range n.Dialogue {
		if l.applies(flag) {
			return l, true
		}
	}
	return Line{}, false
}

func (l Line) applies(flag func(string) bool) bool {
	for _, f := range l.When {
		if !flag(f) {
			return false
		}
	}
	for _, f := range l.Unless {
		if flag(f) {
			return false
		}
	}
	return true
}

// Validate checks that every reference in the content resolves.
func (c *Content) Validate() error {
	var problems []string
	bad := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}
	if len(c.Worlds) == 0 {
		bad("no worlds defined")
	}
	for _, w := range c.Worlds {
		if _, ok := c.Scenes[w.StartScene]; !ok {
			bad("world %s: unknown start scene %q", w.ID, w.StartScene)
		}
	}
	for _, id := range c.SceneOrder {
		s := c.Scenes[id]
		if _, ok := c.Worlds[s.World]; !ok {
			bad("scene %s: unknown world %q", s.ID, s.World)
		}
		for _, dir := range s.ExitOrder {
			if _, ok := c.Scenes[s.Exits[dir].To]; !ok {
				bad("scene %s: exit %s leads to unknown scene %q", s.ID, dir, s.Exits[dir].To)
			}
		}
		for _, n := range s.NPCs {
			if _, ok := c.NPCs[n]; !ok {
				bad("scene %s: unknown npc %q", s.ID, n)
			}
		}
		for _, o := range s.Objects {
			for _, p := range o.Puzzles {
				if _, ok := c.Puzzles.Get(p); !ok {
					bad("scene %s: object %s lists unknown puzzle %q", s.ID, o.ID, p)
				}
			}
		}
	}
	for _, p := range c.Puzzles.All() {
		if _, ok := c.Scenes[p.Scene]; !ok {
			bad("puzzle %s: unknown scene %q", p.ID, p.Scene)
		}
		if len(p.Checks) == 0 {
			bad("puzzle %s: no check clauses", p.ID)
		}
		if next := p.OnSolve.Next; next != "" {
			if _, ok := c.Puzzles.Get(next); !ok {
				bad("puzzle %s: next puzzle %q is unknown", p.ID, next)
			}
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return &ContentError{Form: "content", Msg: strings.Join(problems, "; ")}
	}
	return nil
}

// ContentError reports a malformed or inconsistent content form.
type ContentError struct {
	Form string
	ID   string
	Msg  string
}

func (e *ContentError) Error() string {
	if e.ID == "" {
		return e.Form + ": " + e.Msg
	}
	return e.Form + " " + e.ID + ": " + e.Msg
}
