package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"lispquest/game"
	"lispquest/world"
)

const banner = `LISP QUEST: The Magical Coding Adventure
Type HELP for commands. Talk to everyone, and USE the magic terminals!`

// outLine is one line of transcript shown to the player.
type outLine struct {
	text string
	kind game.LineKind
}

type runtimeState struct {
	game     *game.Game
	out      []outLine
	input    []rune
	point    int
	history  []string
	histIdx  int
	scroll   int
	canvas   bool
	messages []string
	warned   map[string]bool
}

func main() {
	savePath := flag.String("save", defaultSavePath(), "save file, empty disables saving")
	plain := flag.Bool("plain", os.Getenv("LISPQUEST_PLAIN") == "1", "use line mode instead of the full-screen terminal")
	replMode := flag.Bool("repl", false, "start a bare LISP REPL")
	hints := flag.Bool("hints", false, "print every puzzle with its hints and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] [content.lsp ...]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	rt := &runtimeState{warned: make(map[string]bool)}
	if *replMode {
		os.Exit(runREPL(rt))
	}

	content, err := loadContent(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "load content: %v\n", err)
		os.Exit(1)
	}
	if *hints {
		printHints(os.Stdout, content)
		return
	}

	rt.game = game.New(content, *savePath)
	rt.game.Warnf = rt.warnf
	resumed := false
	if rt.game.HasSave() {
		if err := rt.game.Load(); err != nil {
			rt.warnf("could not resume %s: %v", *savePath, err)
		} else {
			resumed = true
		}
	}
	rt.intro(resumed)

	if *plain {
		err = runLineLoop(rt)
	} else {
		err = runGameLoop(rt)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "lispquest: %v\n", err)
		os.Exit(1)
	}
}

func loadContent(paths []string) (*world.Content, error) {
	if len(paths) == 0 {
		return world.Default()
	}
	return world.LoadFiles(paths...)
}

// defaultSavePath is $LISPQUEST_SAVE, or save.json in the user config dir.
func defaultSavePath() string {
	if p, ok := os.LookupEnv("LISPQUEST_SAVE"); ok {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "lispquest", "save.json")
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".lispquest_history")
}

func (rt *runtimeState) intro(resumed bool) {
	rt.print(game.LineSuccess, banner)
	if resumed {
		rt.print(game.LineInfo, "Welcome back! Your saved game has been restored.")
	}
	rt.print(game.LineInfo, "")
	rt.print(game.LineInfo, rt.game.Describe())
}

func (rt *runtimeState) print(kind game.LineKind, text string) {
	var lines []outLine
	for _, line := range strings.Split(text, "\n") {
		lines = append(lines, outLine{text: line, kind: kind})
	}
	rt.emit(lines)
}

func (rt *runtimeState) emit(lines []outLine) {
	rt.out = append(rt.out, lines...)
	if n := len(rt.out) - maxScrollback; n > 0 {
		rt.out = append(rt.out[:0:0], rt.out[n:]...)
	}
}

const maxScrollback = 2000

// exec runs one line of player input and returns the transcript it
// produced. Console output keeps its line kinds.
func (rt *runtimeState) exec(input string) ([]outLine, bool) {
	g := rt.game
	wasOpen := g.Console.IsOpen()
	mark := len(g.Console.Lines)
	var lines []outLine
	if !wasOpen {
		lines = append(lines, outLine{text: "> " + input, kind: game.LineInput})
	}
	resp := g.Handle(input)
	switch {
	case resp.Console && wasOpen && mark <= len(g.Console.Lines):
		for _, l := range g.Console.Lines[mark:] {
			lines = append(lines, outLine{text: l.Text, kind: l.Kind})
		}
	case resp.Console:
		head, _, _ := strings.Cut(resp.Text, "\n")
		lines = append(lines, outLine{text: head, kind: game.LineInfo})
		for _, l := range g.Console.Lines {
			lines = append(lines, outLine{text: l.Text, kind: l.Kind})
		}
	case resp.Text != "":
		for _, t := range strings.Split(resp.Text, "\n") {
			lines = append(lines, outLine{text: t, kind: game.LineInfo})
		}
	}
	return lines, resp.Quit
}

func (rt *runtimeState) statusLine() string {
	g := rt.game
	place := g.State.Scene
	if s := g.Scene(); s != nil {
		place = s.Name
	}
	solved, total := g.Progress()
	status := fmt.Sprintf(" %s | Score %d/%d | Puzzles %d/%d", place, g.State.Score, g.State.MaxScore, solved, total)
	if g.State.Won {
		status += " | CURSE BROKEN"
	}
	if len(rt.messages) > 0 {
		status = rt.messages[len(rt.messages)-1]
	}
	return status
}

func (rt *runtimeState) warnf(format string, args ...any) {
	msg := fmt.Sprintf("[lispquest] "+format, args...)
	if rt.canvas {
		rt.messages = append(rt.messages, msg)
		return
	}
	fmt.Fprintln(os.Stderr, msg)
}

func (rt *runtimeState) warnOnce(key, format string, args ...any) {
	if rt.warned[key] {
		return
	}
	rt.warned[key] = true
	rt.warnf(format, args...)
}

func printHints(w io.Writer, c *world.Content) {
	for _, wd := range c.OrderedWorlds() {
		fmt.Fprintf(w, "%s: %s\n", wd.Name, wd.Subtitle)
		for _, p := range c.Puzzles.ForWorld(wd.ID) {
			fmt.Fprintf(w, "  %2d. %s (%s)\n", p.Number, p.Title, p.Scene)
			for i, h := range p.Hints {
				fmt.Fprintf(w, "      %d) %s\n", i+1, h)
			}
			if p.Solution != "" {
				fmt.Fprintf(w, "      solution: %s\n", p.Solution)
			}
		}
		fmt.Fprintln(w)
	}
}
