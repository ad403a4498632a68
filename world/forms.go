package world

import (
	"fmt"
	"strings"

	"github.com/steelseries/golisp"

	"lispquest/puzzle"
)

func unknownClause(form, id string, c clause) error {
	return &ContentError{Form: form, ID: id, Msg: "unknown clause " + c.name}
}

func worldImpl(args *golisp.Data, _ *golisp.SymbolTableFrame) (*golisp.Data, error) {
	l, err := active()
	if err != nil {
		return nil, err
	}
	id, cs, err := header("world", args)
	if err != nil {
		return nil, err
	}
	if _, dup := l.content.Worlds[id]; dup {
		return nil, &ContentError{Form: "world", ID: id, Msg: "defined twice"}
	}
	w := &World{ID: id, Name: id, Order: len(l.content.Worlds) + 1}
	for _, c := range cs {
		switch c.name {
		case "name":
			w.Name = c.arg()
		case "subtitle":
			w.Subtitle = c.arg()
		case "description":
			w.Description = c.arg()
		case "start":
			w.StartScene = c.arg()
		case "order":
			n, _ := number(golisp.Car(c.args))
			w.Order = int(n)
		default:
			return nil, unknownClause("world", id, c)
		}
	}
	l.content.Worlds[id] = w
	return golisp.StringWithValue(id), nil
}

func sceneImpl(args *golisp.Data, _ *golisp.SymbolTableFrame) (*golisp.Data, error) {
	l, err := active()
	if err != nil {
		return nil, err
	}
	id, cs, err := header("scene", args)
	if err != nil {
		return nil, err
	}
	if _, dup := l.content.Scenes[id]; dup {
		return nil, &ContentError{Form: "scene", ID: id, Msg: "defined twice"}
	}
	s := &Scene{ID: id, Name: id, Exits: make(map[string]*Exit)}
	for _, c := range cs {
		switch c.name {
		case "world":
			s.World = c.arg()
		case "name":
			s.Name = c.arg()
		case "description":
			s.Description = c.arg()
		case "npcs":
			s.NPCs = append(s.NPCs, texts(c.args)...)
		case "object":
			o, err := parseObject(id, c)
			if err != nil {
				return nil, err
			}
			s.Objects = append(s.Objects, o)
		case "exit":
			e, err := parseExit(id, c)
			if err != nil {
				return nil, err
			}
			if _, dup := s.Exits[e.Direction]; !dup {
				s.ExitOrder = append(s.ExitOrder, e.Direction)
			}
			s.Exits[e.Direction] = e
		default:
			return nil, unknownClause("scene", id, c)
		}
	}
	l.content.Scenes[id] = s
	l.content.SceneOrder = append(l.content.SceneOrder, id)
	return golisp.StringWithValue(id), nil
}

// parseObject reads (object id (name ..) (aliases ..) (take [points]) ...).
func parseObject(scene string, c clause) (*Object, error) {
	id, cs, err := header("object", c.args)
	if err != nil {
		return nil, err
	}
	o := &Object{ID: id, Name: id}
	for _, oc := range cs {
		switch oc.name {
		case "name":
			o.Name = oc.arg()
		case "description":
			o.Description = oc.arg()
		case "aliases":
			o.Aliases = texts(oc.args)
		case "take":
			o.CanTake = true
			if n, ok := number(golisp.Car(oc.args)); ok {
				o.Points = int(n)
			}
		case "read":
			o.ReadText = oc.arg()
		case "eat":
			o.EatText = oc.arg()
		case "requires":
			o.Requires = oc.arg()
		case "puzzles":
			o.Puzzles = texts(oc.args)
		default:
			return nil, unknownClause("object", scene+"/"+id, oc)
		}
	}
	return o, nil
}

// parseExit reads (exit direction target (requires flag) (fail "text")).
func parseExit(scene string, c clause) (*Exit, error) {
	if c.count() < 2 {
		return nil, &ContentError{Form: "scene", ID: scene, Msg: "exit needs a direction and a target"}
	}
	e := &Exit{Direction: strings.ToLower(c.arg()), To: text(golisp.Cadr(c.args))}
	cs, err := clauses("exit", scene+"/"+e.Direction, golisp.Cddr(c.args))
	if err != nil {
		return nil, err
	}
	for _, ec := range cs {
		switch ec.name {
		case "requires":
			e.Requires = ec.arg()
		case "fail":
			e.Fail = ec.arg()
		default:
			return nil, unknownClause("exit", scene+"/"+e.Direction, ec)
		}
	}
	return e, nil
}

func npcImpl(args *golisp.Data, _ *golisp.SymbolTableFrame) (*golisp.Data, error) {
	l, err := active()
	if err != nil {
		return nil, err
	}
	id, cs, err := header("npc", args)
	if err != nil {
		return nil, err
	}
	if _, dup := l.content.NPCs[id]; dup {
		return nil, &ContentError{Form: "npc", ID: id, Msg: "defined twice"}
	}
	n := &NPC{ID: id, Name: id}
	for _, c := range cs {
		switch c.name {
		case "name":
			n.Name = c.arg()
		case "description":
			n.Description = c.arg()
		case "aliases":
			n.Aliases = texts(c.args)
		case "says":
			line, err := parseLine(id, c)
			if err != nil {
				return nil, err
			}
			n.Dialogue = append(n.Dialogue, line)
		case "wants":
			w, err := parseWant(id, c)
			if err != nil {
				return nil, err
			}
			n.Wants = w
		default:
			return nil, unknownClause("npc", id, c)
		}
	}
	l.content.NPCs[id] = n
	return golisp.StringWithValue(id), nil
}

// parseWant reads (wants item "thanks" (sets f) (points n) (gives id "name")).
func parseWant(npc string, c clause) (*Want, error) {
	if c.count() < 2 || !golisp.StringP(golisp.Cadr(c.args)) {
		return nil, &ContentError{Form: "npc", ID: npc, Msg: "wants needs an item and a thank-you line"}
	}
	w := &Want{Item: c.arg(), Thanks: text(golisp.Cadr(c.args))}
	cs, err := clauses("wants", npc, golisp.Cddr(c.args))
	if err != nil {
		return nil, err
	}
	for _, wc := range cs {
		switch wc.name {
		case "sets":
			w.Sets = wc.arg()
		case "points":
			n, _ := number(golisp.Car(wc.args))
			w.Points = int(n)
		case "gives":
			w.Gives = wc.arg()
			w.GivesName = text(golisp.Cadr(wc.args))
			if w.GivesName == "" {
				w.GivesName = w.Gives
			}
		default:
			return nil, unknownClause("wants", npc, wc)
		}
	}
	return w, nil
}

// parseLine reads (says "text" (when f..) (unless f..) (sets f) (points n)).
func parseLine(npc string, c clause) (Line, error) {
	if !golisp.StringP(golisp.Car(c.args)) {
		return Line{}, &ContentError{Form: "npc", ID: npc, Msg: "says needs a string"}
	}
	line := Line{Text: c.arg()}
	cs, err := clauses("says", npc, golisp.Cdr(c.args))
	if err != nil {
		return Line{}, err
	}
	for _, lc := range cs {
		switch lc.name {
		case "when":
			line.When = append(line.When, texts(lc.args)...)
		case "unless":
			line.Unless = append(line.Unless, texts(lc.args)...)
		case "sets":
			line.Sets = lc.arg()
		case "points":
			n, _ := number(golisp.Car(lc.args))
			line.Points = int(n)
		default:
			return Line{}, unknownClause("says", npc, lc)
		}
	}
	return line, nil
}

func puzzleImpl(args *golisp.Data, _ *golisp.SymbolTableFrame) (*golisp.Data, error) {
	l, err := active()
	if err != nil {
		return nil, err
	}
	id, cs, err := header("puzzle", args)
	if err != nil {
		return nil, err
	}
	p := &puzzle.Puzzle{ID: id, Title: id}
	for _, c := range cs {
		switch c.name {
		case "world":
			p.World = c.arg()
		case "scene":
			p.Scene = c.arg()
		case "title":
			p.Title = c.arg()
		case "description":
			p.Description = c.arg()
		case "hint":
			p.Hint = c.arg()
		case "hints":
			p.Hints = texts(c.args)
		case "solution":
			p.Solution = c.arg()
		case "teaching":
			p.Teaching = c.arg()
		case "retry":
			p.Retry = c.arg()
		case "check":
			check, err := parseCheck(id, c)
			if err != nil {
				return nil, err
			}
			p.Checks = append(p.Checks, check)
		case "on-solve":
			if err := parseReward(id, c, &p.OnSolve); err != nil {
				return nil, err
			}
		default:
			return nil, unknownClause("puzzle", id, c)
		}
	}
	l.puzzles = append(l.puzzles, p)
	return golisp.StringWithValue(id), nil
}

// parseCheck maps (check kind args...) onto a checker predicate.
func parseCheck(id string, c clause) (puzzle.Predicate, error) {
	if c.count() == 0 {
		return nil, &ContentError{Form: "puzzle", ID: id, Msg: "empty check"}
	}
	kind := c.arg()
	rest := golisp.Cdr(c.args)
	want := texts(rest)
	need := func(n int) error {
		if len(want) < n {
			return &ContentError{Form: "puzzle", ID: id, Msg: fmt.Sprintf("check %s needs %d argument(s)", kind, n)}
		}
		return nil
	}
	switch kind {
	case "display":
		if err := need(1); err != nil {
			return nil, err
		}
		return puzzle.DisplayEquals(want[0]), nil
	case "value":
		if err := need(1); err != nil {
			return nil, err
		}
		return puzzle.ValueEquals(want[0]), nil
	case "number":
		n, ok := number(golisp.Car(rest))
		if !ok {
			return nil, &ContentError{Form: "puzzle", ID: id, Msg: "check number needs a number"}
		}
		return puzzle.NumberEquals(n), nil
	case "true", "#t":
		return puzzle.IsTrue(), nil
	case "contains":
		if err := need(1); err != nil {
			return nil, err
		}
		return puzzle.DisplayContainsAll(want...), nil
	case "excludes":
		if err := need(1); err != nil {
			return nil, err
		}
		return puzzle.DisplayExcludes(want...), nil
	case "defined":
		if err := need(1); err != nil {
			return nil, err
		}
		return puzzle.Defined(want[0]), nil
	case "source":
		if err := need(1); err != nil {
			return nil, err
		}
		return puzzle.SourceContainsAll(want...), nil
	}
	return nil, &ContentError{Form: "puzzle", ID: id, Msg: "unknown check " + kind}
}

// parseReward reads (on-solve (flag f..) (message "..") (next id) (points n) (win)).
func parseReward(id string, c clause, r *puzzle.Reward) error {
	cs, err := clauses("on-solve", id, c.args)
	if err != nil {
		return err
	}
	for _, rc := range cs {
		switch rc.name {
		case "flag":
			r.Flags = append(r.Flags, texts(rc.args)...)
		case "message":
			r.Message = rc.arg()
		case "next":
			r.Next = rc.arg()
		case "points":
			n, _ := number(golisp.Car(rc.args))
			r.Points = int(n)
		case "win":
			r.Win = true
		default:
			return unknownClause("on-solve", id, rc)
		}
	}
	return nil
}
