package game

import "testing"

func TestParseCommand(t *testing.T) {
	for _, tc := range []struct {
		input  string
		verb   string
		object string
		target string
	}{
		{"look", VerbLook, "", ""},
		{"LOOK AT THE Spellbook", VerbLook, "spellbook", ""},
		{"x cauldron", VerbLook, "cauldron", ""},
		{"n", VerbGo, "north", ""},
		{"u", VerbGo, "up", ""},
		{"go north", VerbGo, "north", ""},
		{"walk to the east", VerbGo, "to the east", ""},
		{"take the doughnut", VerbGet, "doughnut", ""},
		{"pick up golden key", VerbGet, "golden key", ""},
		{"talk to wizard", VerbTalk, "wizard", ""},
		{"give the doughnut to the unicorn", VerbGive, "doughnut", "unicorn"},
		{"feed doughnut to sparkle", VerbGive, "doughnut", "sparkle"},
		{"give doughnut", VerbGive, "doughnut", ""},
		{"i", VerbInventory, "", ""},
		{"clj", VerbLisp, "", ""},
		{"cast spell", VerbCast, "spell", ""},
		{"?", VerbHelp, "", ""},
		{"use terminal.", VerbUse, "terminal", ""},
		{"restore", VerbLoad, "", ""},
		{"   eat   mushroom  ", VerbEat, "mushroom", ""},
	} {
		cmd, ok := ParseCommand(tc.input)
		if !ok {
			t.Errorf("%q: not parsed", tc.input)
			continue
		}
		if cmd.Verb != tc.verb || cmd.Object != tc.object || cmd.Target != tc.target {
			t.Errorf("%q = %+v, want %s/%q/%q", tc.input, cmd, tc.verb, tc.object, tc.target)
		}
	}
}

func TestParseCommandRejects(t *testing.T) {
	for _, input := range []string{"", "   ", "dance wildly", "xyzzy"} {
		if cmd, ok := ParseCommand(input); ok {
			t.Errorf("%q parsed as %+v", input, cmd)
		}
	}
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]string{
		"n": "north", "S": "south", "right": "east", "w": "west",
		"d": "down", "inside": "enter", "leave": "exit",
	} {
		if got, ok := ParseDirection(in); !ok || got != want {
			t.Errorf("ParseDirection(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := ParseDirection("sideways"); ok {
		t.Error("sideways is not a direction")
	}
}
