package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/davecgh/go-spew/spew"
	"github.com/peterh/liner"

	"lispquest/game"
	"lispquest/lisp"
)

const replHelp = `Commands:
  :tokens <expr>   show the token stream
  :ast <expr>      show the parsed form
  :env             list global definitions
  :history         list earlier submissions
  :reset           forget every definition
  :quit            leave
Anything else is evaluated as LISP.
`

func newLiner() (*liner.State, func()) {
	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)
	path := historyPath()
	if f, err := os.Open(path); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	return ln, func() {
		if path != "" {
			if f, err := os.Create(path); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}
		ln.Close()
	}
}

// runLineLoop plays the game on a plain line terminal.
func runLineLoop(rt *runtimeState) error {
	ln, done := newLiner()
	defer done()

	for _, l := range rt.out {
		fmt.Println(l.text)
	}
	rt.out = nil

	for {
		var src string
		var ok bool
		if rt.game.Console.IsOpen() {
			src, ok = readByParseProbe(ln, "LISP> ", "  ... ")
		} else {
			src, ok = readLine(ln, "> ")
		}
		if !ok {
			fmt.Println()
			return nil
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		lines, quit := rt.exec(src)
		for _, l := range lines {
			// the prompt already shows what was typed
			if l.kind == game.LineInput {
				continue
			}
			fmt.Println(l.text)
		}
		if quit {
			return nil
		}
	}
}

func readLine(ln *liner.State, prompt string) (string, bool) {
	line, err := ln.Prompt(prompt)
	if errors.Is(err, io.EOF) {
		return "", false
	}
	if err != nil {
		return "", true
	}
	return line, true
}

// readByParseProbe reads lines until the buffer parses as one complete
// form, or the parser reports an error more input cannot fix.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C drops the pending input.
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		src := b.String()
		if !incomplete(src) {
			return src, true
		}
	}
}

// incomplete reports whether src only fails to parse because it stops
// early: an open list or string.
func incomplete(src string) bool {
	if strings.TrimSpace(src) == "" {
		return false
	}
	_, err := lisp.Read(src)
	var le *lisp.Error
	if !errors.As(err, &le) {
		return false
	}
	return le.Reason == lisp.UnbalancedParens || le.Reason == lisp.UnterminatedString
}

// runREPL is a bare interpreter session with a few inspection commands.
func runREPL(rt *runtimeState) int {
	ln, done := newLiner()
	defer done()

	fmt.Println("LISP Quest REPL. Type :help for commands.")
	in := lisp.New()
	for {
		src, ok := readByParseProbe(ln, "lisp> ", "  ... ")
		if !ok {
			fmt.Println()
			return 0
		}
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if strings.HasPrefix(src, ":") {
			if replCommand(rt, in, src, os.Stdout) {
				return 0
			}
			continue
		}
		printResult(os.Stdout, in.Evaluate(src))
	}
}

func printResult(w io.Writer, res lisp.Result) {
	if res.Success {
		fmt.Fprintln(w, "=> "+res.Display)
		return
	}
	fmt.Fprintln(w, "Error: "+res.Error)
}

// replCommand runs a :command and reports whether the REPL should exit.
func replCommand(rt *runtimeState, in *lisp.Interpreter, line string, w io.Writer) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(cmd) {
	case ":help", ":?":
		fmt.Fprint(w, replHelp)
	case ":quit", ":exit", ":q":
		return true
	case ":tokens":
		fmt.Fprintln(w, repr.String(lisp.Tokenize(arg), repr.Indent("  ")))
	case ":ast":
		node, err := lisp.Read(arg)
		if err != nil {
			fmt.Fprintln(w, "Error: "+lisp.Friendly(err))
			return false
		}
		fmt.Fprint(w, spew.Sdump(node))
	case ":env":
		names := in.Globals()
		if len(names) == 0 {
			fmt.Fprintln(w, "(nothing defined yet)")
		}
		for _, name := range names {
			v, _ := in.Lookup(name)
			fmt.Fprintf(w, "%s = %s\n", name, lisp.Inspect(v))
		}
	case ":history":
		for i, e := range in.History() {
			out := "=> " + e.Display
			if !e.Success {
				out = "Error: " + e.Error
			}
			fmt.Fprintf(w, "%3d  %s  %s\n", i+1, e.Input, out)
		}
	case ":reset":
		in.Reset()
		fmt.Fprintln(w, "interpreter reset.")
	default:
		rt.warnOnce("repl-"+cmd, "unknown command %s, try :help", cmd)
	}
	return false
}
