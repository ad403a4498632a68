package game

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lispquest/lisp"
	"lispquest/world"
)

func newGame(t *testing.T) *Game {
	t.Helper()
	c, err := world.Default()
	if err != nil {
		t.Fatalf("load content: %v", err)
	}
	return New(c, "")
}

func run(t *testing.T, g *Game, input string) Response {
	t.Helper()
	return g.Handle(input)
}

func expect(t *testing.T, r Response, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(r.Text, p) {
			t.Errorf("response %q does not contain %q", r.Text, p)
		}
	}
}

func TestStartScene(t *testing.T) {
	g := newGame(t)
	if g.State.Scene != "cottage" || g.State.World != "enchanted-grove" {
		t.Fatalf("start = %s/%s", g.State.World, g.State.Scene)
	}
	expect(t, run(t, g, "look"), "Wizard's Cottage", "glowing spellbook", "Wizard Parenthesis is here.", "Exits: east.")
	expect(t, run(t, g, "read book"), "operator comes FIRST")
	expect(t, run(t, g, "look at the cauldron"), "purple goo")
	expect(t, run(t, g, "get cauldron"), "can't take the bubbling cauldron")
	expect(t, run(t, g, "dance"), `I don't understand "dance"`)
}

func TestTalkAwardsPointsOnce(t *testing.T) {
	g := newGame(t)
	expect(t, run(t, g, "talk"), "Wizard Parenthesis:", "Welcome, young coder")
	if g.State.Score != 5 || !g.State.Flag("talkedToWizard") {
		t.Fatalf("score %d flags %v", g.State.Score, g.State.Flags)
	}
	expect(t, run(t, g, "talk to wizard"), "Head east")
	if g.State.Score != 5 {
		t.Errorf("score after second talk = %d", g.State.Score)
	}
}

func TestGatedExit(t *testing.T) {
	g := newGame(t)
	expect(t, run(t, g, "e"), "You head east.", "Cottage Garden")
	r := run(t, g, "north")
	expect(t, r, "thorny vines")
	if g.State.Scene != "garden" {
		t.Fatalf("moved through a locked exit to %s", g.State.Scene)
	}
	expect(t, run(t, g, "go sideways"), "can't go sideways")

	r = run(t, g, "use terminal")
	if !r.Console || !g.Console.IsOpen() {
		t.Fatal("console did not open")
	}
	expect(t, r, "Basic Addition Magic", "Hint: Type: (+ 3 4)")
	r = run(t, g, "(+ 3 4)")
	expect(t, r, "LISP> (+ 3 4)", "=> 7", "PUZZLE COMPLETE! +15 points")
	if !g.State.Flag("solvedAddSpell") || !g.State.Flag("learnedBasicLisp") {
		t.Errorf("flags = %v", g.State.Flags)
	}
	if g.State.Score != 15 || !g.State.Solved("add-spell") {
		t.Errorf("score %d completed %v", g.State.Score, g.State.Completed)
	}
	// free-form after solving
	expect(t, run(t, g, "(* 2 3)"), "=> 6")
	if g.State.Score != 15 {
		t.Errorf("re-solving scored: %d", g.State.Score)
	}
	r = run(t, g, "exit")
	if r.Console || g.Console.IsOpen() {
		t.Fatal("console still open")
	}
	expect(t, run(t, g, "n"), "Unicorn Meadow")
}

func TestConsoleHints(t *testing.T) {
	g := newGame(t)
	if err := g.Console.Open("add-spell", false); err != nil {
		t.Fatal(err)
	}
	lines := g.Console.Submit("(+ 3 3)")
	if len(lines) != 4 {
		t.Fatalf("lines = %+v", lines)
	}
	want := []LineKind{LineInput, LineResult, LineHint, LineHint}
	for i, k := range want {
		if lines[i].Kind != k {
			t.Errorf("line %d kind = %s, want %s", i, lines[i].Kind, k)
		}
	}
	if !strings.HasPrefix(lines[2].Text, "Not quite!") {
		t.Errorf("retry line = %q", lines[2].Text)
	}
	if lines[3].Text != "Hint: LISP puts the operator FIRST, inside parentheses" {
		t.Errorf("first progressive hint = %q", lines[3].Text)
	}

	lines = g.Console.Submit("(+ 3")
	if lines[1].Kind != LineError || !strings.Contains(lines[1].Text, "missing a closing parenthesis") {
		t.Errorf("error line = %+v", lines[1])
	}
	if lines[2].Text != "Hint: Instead of 3 + 4, we write (+ 3 4)" {
		t.Errorf("second hint = %q", lines[2].Text)
	}
	expect(t, g.Handle("hint"), "The + sign comes before the numbers!")
	if g.State.Solved("add-spell") {
		t.Error("failed attempts solved the puzzle")
	}
}

func TestConsoleChainsToNextPuzzle(t *testing.T) {
	g := newGame(t)
	g.State.Scene = "owl-tower"
	r := run(t, g, "use terminal")
	expect(t, r, "Create a Function")
	run(t, g, "(define double-magic (lambda (x) (* x 2)))")
	p := g.Console.Puzzle()
	if p == nil || p.ID != "cast-spell" {
		t.Fatalf("chained puzzle = %v", p)
	}
	if g.Console.Solved() {
		t.Fatal("chained puzzle starts solved")
	}
	found := false
	for _, l := range g.Console.Lines {
		if strings.HasPrefix(l.Text, "LISP> (define double-magic") {
			found = true
		}
	}
	if !found {
		t.Error("chaining dropped the transcript")
	}
	r = run(t, g, "(double-magic 21)")
	expect(t, r, "=> 42", "PUZZLE COMPLETE!")
	if g.State.Score != 30 {
		t.Errorf("score = %d", g.State.Score)
	}
	run(t, g, "exit")
	expect(t, run(t, g, "up"), "Tower Summit")
}

func TestUseSolvedTerminalOpensRepl(t *testing.T) {
	g := newGame(t)
	g.State.Scene = "garden"
	g.State.Complete("add-spell")
	r := run(t, g, "use terminal")
	if !r.Console || g.Console.Puzzle() != nil {
		t.Fatalf("expected a free-form console, got %+v", g.Console.Puzzle())
	}
	expect(t, r, "Free-form LISP REPL")
	expect(t, run(t, g, "(define x 5)"), "=> 5")
	expect(t, run(t, g, "x"), "=> 5")
	expect(t, run(t, g, "(car 5)"), "Error:")
}

func TestLispCommandPicksFirstUnsolved(t *testing.T) {
	g := newGame(t)
	g.State.Scene = "meadow"
	g.State.Complete("rainbow-bridge")
	run(t, g, "lisp")
	if p := g.Console.Puzzle(); p == nil || p.ID != "name-unicorn" {
		t.Fatalf("puzzle = %v", p)
	}
	run(t, g, "exit")
	g.State.Scene = "cottage"
	run(t, g, "code")
	if g.Console.Puzzle() != nil {
		t.Error("cottage has no terminal")
	}
}

func TestDoughnutForUnicorn(t *testing.T) {
	g := newGame(t)
	g.State.Scene = "meadow"
	expect(t, run(t, g, "give doughnut to unicorn"), `You don't have "doughnut"`)
	expect(t, run(t, g, "talk unicorn"), "too hungry")
	run(t, g, "e")
	expect(t, run(t, g, "take doughnut"), "You pick up the magic doughnut. (+5 points)")
	expect(t, run(t, g, "get doughnut"), "You already have the magic doughnut.")
	expect(t, run(t, g, "eat doughnut"), "more magical")
	if !g.State.Has("doughnut") {
		t.Fatal("eating consumed the doughnut")
	}
	expect(t, run(t, g, "give doughnut to baker"), "doesn't want")
	run(t, g, "w")
	expect(t, run(t, g, "give the doughnut to sparkle"), "A DOUGHNUT!", "strand of rainbow mane")
	if g.State.Has("doughnut") || !g.State.Has("rainbow-hair") || !g.State.Flag("fedUnicorn") {
		t.Errorf("inventory %v flags %v", g.State.Inventory, g.State.Flags)
	}
	if g.State.Score != 15 {
		t.Errorf("score = %d", g.State.Score)
	}
	expect(t, run(t, g, "talk unicorn"), "Thanks again")
	run(t, g, "e")
	if strings.Contains(run(t, g, "look").Text, "magic doughnut") {
		t.Error("a given-away doughnut reappeared")
	}
	expect(t, run(t, g, "inventory"), "You are carrying:", "strand of rainbow mane")
}

func TestHiddenObjectAppearsAfterPuzzle(t *testing.T) {
	g := newGame(t)
	g.State.Scene = "deep-forest"
	if strings.Contains(run(t, g, "look").Text, "golden key") {
		t.Fatal("key visible before the chest opens")
	}
	expect(t, run(t, g, "get key"), `You don't see "key" here.`)
	run(t, g, "use stump")
	expect(t, run(t, g, `(list "sugar" "flour" "magic")`), "GOLDEN KEY")
	run(t, g, "exit")
	expect(t, run(t, g, "get key"), "golden key")
	if !g.State.Has("golden-key") {
		t.Error("key not taken")
	}
}

func TestWorldTransition(t *testing.T) {
	g := newGame(t)
	g.State.Scene = "tower-summit"
	g.State.SetFlag("solvedFinalSpell")
	expect(t, run(t, g, "n"), "Welcome to The Dragon Highlands: Master Control Flow!", "The Dragon Gate")
	if g.State.World != "dragon-highlands" {
		t.Errorf("world = %s", g.State.World)
	}
}

func TestWinning(t *testing.T) {
	g := newGame(t)
	g.State.Scene = "final-tower"
	run(t, g, "use master terminal")
	r := run(t, g, "(->> [1 2 3 4 5 6 7 8 9 10] (filter even?) (map (fn [x] (* x x))) (reduce +))")
	expect(t, r, "=> 220", "CONGRATULATIONS")
	if !g.State.Won || !g.State.Flag("curseBroken") {
		t.Error("game not won")
	}
}

func TestResetCommand(t *testing.T) {
	g := newGame(t)
	run(t, g, "talk wizard")
	g.Interp.Evaluate("(define x 1)")
	run(t, g, "e")
	expect(t, run(t, g, "reset"), "starts anew", "Wizard's Cottage")
	if g.State.Score != 0 || g.State.Scene != "cottage" || g.Interp.Defined("x") {
		t.Errorf("reset left state behind: %+v", g.State)
	}
	if len(g.Interp.History()) != 0 {
		t.Error("history survived reset")
	}
}

func TestQuit(t *testing.T) {
	g := newGame(t)
	if r := run(t, g, "quit"); !r.Quit {
		t.Error("quit did not quit")
	}
}

func TestStateInvariants(t *testing.T) {
	s := NewState("w", "s", 20)
	if !s.AddItem(Item{ID: "key", Name: "key"}) || s.AddItem(Item{ID: "key", Name: "key"}) {
		t.Error("duplicate item accepted")
	}
	if len(s.Inventory) != 1 {
		t.Errorf("inventory = %v", s.Inventory)
	}
	s.AddScore(15)
	s.AddScore(15)
	if s.Score != 20 {
		t.Errorf("score = %d, want capped 20", s.Score)
	}
	if !s.Complete("p") || s.Complete("p") || len(s.Completed) != 1 {
		t.Error("duplicate completion")
	}
	if !s.RemoveItem("key") || s.RemoveItem("key") {
		t.Error("RemoveItem")
	}
	for i := 0; i < maxMessages+10; i++ {
		s.Say("m")
	}
	if len(s.Messages) != maxMessages {
		t.Errorf("messages = %d", len(s.Messages))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	g := newGame(t)
	g.SavePath = filepath.Join(t.TempDir(), "save.json")
	run(t, g, "talk wizard")
	run(t, g, "e")
	run(t, g, "get flower")
	run(t, g, "use terminal")
	run(t, g, "(+ 3 4)")
	run(t, g, "(defn triple [x] (* x 3))")
	run(t, g, "exit")
	expect(t, run(t, g, "save"), "Game saved!")

	g2 := New(g.Content, g.SavePath)
	expect(t, run(t, g2, "load"), "Game loaded!", "Cottage Garden")
	if g2.State.Scene != "garden" || g2.State.Score != g.State.Score {
		t.Errorf("loaded %s/%d, saved %s/%d", g2.State.Scene, g2.State.Score, g.State.Scene, g.State.Score)
	}
	if !g2.State.Has("flower") || !g2.State.Solved("add-spell") || !g2.State.Flag("learnedBasicLisp") {
		t.Errorf("loaded state = %+v", g2.State)
	}
	if r := g2.Interp.Evaluate("(triple 5)"); !r.Success || r.Display != "15" {
		t.Errorf("(triple 5) after load = %+v", r)
	}
}

func TestSaveDocumentShape(t *testing.T) {
	g := newGame(t)
	path := filepath.Join(t.TempDir(), "save.json")
	g.SavePath = path
	g.Interp.Evaluate("(define x 42)")
	if err := g.Save(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"version": 1`, `"timestamp"`, `"currentWorld"`, `"currentScene"`, `"inventory"`, `"score"`, `"flags"`, `"completedPuzzles"`, `"lispEnv"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("save is missing %s", key)
		}
	}
}

func TestLoadRejectsOtherVersions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.json")
	if err := os.WriteFile(path, []byte(`{"version": 2, "currentScene": "cottage"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	g := newGame(t)
	g.SavePath = path
	g.State.Scene = "garden"
	if err := g.Load(); !errors.Is(err, ErrSaveVersion) {
		t.Fatalf("err = %v", err)
	}
	if g.State.Scene != "garden" {
		t.Error("failed load changed the state")
	}
}

func TestLoadErrors(t *testing.T) {
	g := newGame(t)
	if err := g.Load(); !errors.Is(err, ErrNoSavePath) {
		t.Errorf("no path: %v", err)
	}
	g.SavePath = filepath.Join(t.TempDir(), "missing.json")
	if err := g.Load(); !errors.Is(err, ErrNoSave) {
		t.Errorf("missing: %v", err)
	}
	d := g.Snapshot()
	d.CurrentScene = "atlantis"
	if err := g.Apply(d); err == nil {
		t.Error("unknown scene accepted")
	}
	d = g.Snapshot()
	d.LispEnv = lisp.Bindings{"f": {Type: "lambda", Body: "(+ 1"}}
	g.Interp.Evaluate("(define keep 1)")
	if err := g.Apply(d); err == nil {
		t.Error("broken lispEnv accepted")
	}
	if !g.Interp.Defined("keep") {
		t.Error("failed restore dropped definitions")
	}
}

func TestAutoSave(t *testing.T) {
	g := newGame(t)
	g.SavePath = filepath.Join(t.TempDir(), "auto.json")
	g.AutoSave = true
	if g.HasSave() {
		t.Fatal("save exists before playing")
	}
	run(t, g, "e")
	if !g.HasSave() {
		t.Fatal("moving did not auto-save")
	}
	d, err := ReadSave(g.SavePath)
	if err != nil {
		t.Fatal(err)
	}
	if d.CurrentScene != "garden" {
		t.Errorf("auto-saved scene = %s", d.CurrentScene)
	}
}

func TestProgress(t *testing.T) {
	g := newGame(t)
	g.State.Complete("add-spell")
	g.State.Complete("if-conditional")
	solved, total := g.Progress()
	if solved != 1 || total != 10 {
		t.Errorf("progress = %d/%d", solved, total)
	}
}

const hintless = `
(world lab (name "Lab") (start bench))
(scene bench
  (world lab)
  (name "Bench")
  (object panel (name "panel") (puzzles triple)))
(puzzle triple
  (world lab)
  (scene bench)
  (title "Triple")
  (hint "Try (* 3 3)")
  (check number 9))
`

func TestConsoleFallsBackToPuzzleHint(t *testing.T) {
	c, err := world.Load(world.Source{Name: "lab.lsp", Text: hintless})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	g := New(c, "")
	run(t, g, "use panel")
	lines := g.Console.Submit("(+ 3 3)")
	if last := lines[len(lines)-1]; last.Kind != LineHint || last.Text != "Hint: Try (* 3 3)" {
		t.Errorf("retry hint = %+v", last)
	}
	lines = g.Console.Submit("(* 3")
	if last := lines[len(lines)-1]; last.Kind != LineHint || last.Text != "Hint: Try (* 3 3)" {
		t.Errorf("error hint = %+v", last)
	}
}
