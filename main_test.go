package main

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"lispquest/game"
	"lispquest/lisp"
	"lispquest/world"
)

func newRuntime(t *testing.T) *runtimeState {
	t.Helper()
	c, err := world.Default()
	if err != nil {
		t.Fatalf("load content: %v", err)
	}
	return &runtimeState{game: game.New(c, ""), warned: make(map[string]bool)}
}

func typeKeys(rt *runtimeState, s string) {
	for _, r := range s {
		rt.handleKey(int(r))
	}
}

func TestParseTTYKeyStream(t *testing.T) {
	for _, tc := range []struct {
		raw  string
		keys []int
		rest string
	}{
		{"abc", []int{'a', 'b', 'c'}, ""},
		{"\x1b[A\x1b[B", []int{keyUp, keyDown}, ""},
		{"\x1bOC\x1bOD", []int{keyRight, keyLeft}, ""},
		{"\x1b[5~\x1b[6~", []int{keyPgUp, keyPgDn}, ""},
		{"\x1b[H\x1b[4~", []int{keyHome, keyEnd}, ""},
		{"\x1b[97;5u", []int{'a'}, ""},
		{"x\x1b", []int{'x'}, "\x1b"},
		{"\x1b[1", nil, "\x1b[1"},
		{"\x1bx", []int{27, 'x'}, ""},
		{"c:259", []int{keyUp}, ""},
		{"\r", []int{13}, ""},
	} {
		keys, rest := parseTTYKeyStream(tc.raw)
		if !slices.Equal(keys, tc.keys) || rest != tc.rest {
			t.Errorf("%q = %v %q, want %v %q", tc.raw, keys, rest, tc.keys, tc.rest)
		}
	}
}

func TestHandleKeyEditing(t *testing.T) {
	rt := newRuntime(t)
	typeKeys(rt, "lok")
	rt.handleKey(keyLeft)
	rt.handleKey('o')
	if got := string(rt.input); got != "look" {
		t.Fatalf("input = %q", got)
	}
	rt.handleKey(keyHome)
	rt.handleKey(keyRight)
	rt.handleKey(127)
	if got := string(rt.input); got != "ook" || rt.point != 0 {
		t.Fatalf("input = %q point %d", got, rt.point)
	}
	rt.handleKey(21)
	if len(rt.input) != 0 {
		t.Fatalf("ctrl-u left %q", string(rt.input))
	}
}

func TestHandleKeySubmitAndHistory(t *testing.T) {
	rt := newRuntime(t)
	typeKeys(rt, "talk")
	if rt.handleKey(13) {
		t.Fatal("talk quit the game")
	}
	if len(rt.input) != 0 {
		t.Fatal("input not cleared")
	}
	found := false
	for _, l := range rt.out {
		if strings.Contains(l.text, "Wizard Parenthesis:") {
			found = true
		}
	}
	if !found {
		t.Errorf("transcript = %+v", rt.out)
	}
	rt.handleKey(keyUp)
	if got := string(rt.input); got != "talk" {
		t.Errorf("history recall = %q", got)
	}
	rt.handleKey(keyDown)
	if len(rt.input) != 0 {
		t.Errorf("down past the end = %q", string(rt.input))
	}
	rt.setInput("quit")
	if !rt.handleKey(13) {
		t.Error("quit did not end the loop")
	}
}

func TestEscapeClosesConsole(t *testing.T) {
	rt := newRuntime(t)
	rt.game.State.Scene = "garden"
	rt.submit("use terminal")
	if !rt.game.Console.IsOpen() || rt.prompt() != "LISP> " {
		t.Fatal("console not open")
	}
	if rt.handleKey(27) {
		t.Fatal("escape quit the game")
	}
	if rt.game.Console.IsOpen() || rt.prompt() != "> " {
		t.Error("escape left the console open")
	}
}

func TestExecKeepsConsoleKinds(t *testing.T) {
	rt := newRuntime(t)
	rt.game.State.Scene = "garden"
	lines, _ := rt.exec("use terminal")
	if lines[0].kind != game.LineInput || lines[0].text != "> use terminal" {
		t.Errorf("echo = %+v", lines[0])
	}
	if lines[1].text != "You activate the Magic Terminal..." {
		t.Errorf("head = %+v", lines[1])
	}
	lines, _ = rt.exec("(+ 3 4)")
	var kinds []game.LineKind
	for _, l := range lines {
		kinds = append(kinds, l.kind)
	}
	if kinds[0] != game.LineInput || kinds[1] != game.LineResult || !slices.Contains(kinds, game.LineSuccess) {
		t.Errorf("kinds = %v", kinds)
	}
	if lines[1].text != "=> 7" {
		t.Errorf("result = %q", lines[1].text)
	}
}

func TestWrap(t *testing.T) {
	for _, tc := range []struct {
		in    string
		width int
		want  []string
	}{
		{"", 10, []string{""}},
		{"short", 10, []string{"short"}},
		{"the quick brown fox", 10, []string{"the quick", "brown fox"}},
		{"abcdefghijkl", 5, []string{"abcde", "fghij", "kl"}},
		{"a b", 0, []string{"a b"}},
	} {
		if got := wrap(tc.in, tc.width); !slices.Equal(got, tc.want) {
			t.Errorf("wrap(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}

func TestIncomplete(t *testing.T) {
	for src, want := range map[string]bool{
		"(+ 1 2)":           false,
		"(define f":         true,
		"(list [1 2":        true,
		`(str "abc`:         true,
		")":                 false,
		"":                  false,
		"(+ 1 2))":          false,
		"(let [x 1]\n  (+ x": true,
	} {
		if got := incomplete(src); got != want {
			t.Errorf("incomplete(%q) = %v", src, got)
		}
	}
}

func TestReplCommands(t *testing.T) {
	rt := &runtimeState{warned: make(map[string]bool)}
	in := lisp.New()
	in.Evaluate("(define x 5)")
	in.Evaluate("(car 5)")

	var buf bytes.Buffer
	for _, cmd := range []string{":env", ":history", ":tokens (+ 1 2)", ":ast (+ 1 2)", ":ast (+ 1"} {
		if replCommand(rt, in, cmd, &buf) {
			t.Fatalf("%s exited", cmd)
		}
	}
	out := buf.String()
	for _, want := range []string{"x = 5", "(define x 5)", "Error:", "missing a closing parenthesis", "SymbolNode"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	buf.Reset()
	replCommand(rt, in, ":reset", &buf)
	if len(in.Globals()) != 0 {
		t.Error(":reset kept definitions")
	}
	if !replCommand(rt, in, ":quit", &buf) {
		t.Error(":quit did not exit")
	}
}

func TestPrintHints(t *testing.T) {
	c, err := world.Default()
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	printHints(&buf, c)
	out := buf.String()
	for _, want := range []string{"The Enchanted Grove", "Basic Addition Magic", "solution: (+ 3 4)"} {
		if !strings.Contains(out, want) {
			t.Errorf("hints missing %q", want)
		}
	}
}

func TestStatusLine(t *testing.T) {
	rt := newRuntime(t)
	s := rt.statusLine()
	if !strings.Contains(s, "Wizard's Cottage") || !strings.Contains(s, "Puzzles 0/10") {
		t.Errorf("status = %q", s)
	}
	rt.canvas = true
	rt.warnf("disk full")
	if got := rt.statusLine(); got != "[lispquest] disk full" {
		t.Errorf("status with warning = %q", got)
	}
}

func TestPumpDrainsKeys(t *testing.T) {
	rt := newRuntime(t)
	keys := make(chan int, 8)
	if quit, dirty := rt.pump(keys); quit || dirty {
		t.Fatalf("idle pump = %v %v", quit, dirty)
	}
	for _, k := range []int{'l', 'o', 'o', 'k', 13} {
		keys <- k
	}
	if quit, dirty := rt.pump(keys); quit || !dirty {
		t.Fatalf("pump = %v %v", quit, dirty)
	}
	if len(keys) != 0 || len(rt.history) != 1 || rt.history[0] != "look" {
		t.Errorf("left %d keys, history %q", len(keys), rt.history)
	}
	keys <- 3
	keys <- 'x'
	if quit, _ := rt.pump(keys); !quit {
		t.Error("ctrl-c did not quit")
	}
	if len(keys) != 1 {
		t.Errorf("keys after quit = %d, want the rest left queued", len(keys))
	}
}
