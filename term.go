package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xyproto/vt"

	"lispquest/game"
)

const (
	keyPgUp  = 251
	keyLeft  = 252
	keyUp    = 253
	keyRight = 254
	keyDown  = 255
	keyPgDn  = 250
	keyHome  = 249
	keyEnd   = 248
)

func runGameLoop(rt *runtimeState) error {
	tty, err := vt.NewTTY()
	if err != nil {
		rt.warnf("TTY unavailable, switching to line mode: %v", err)
		return runLineLoop(rt)
	}
	defer tty.Close()

	vt.Init()
	rt.canvas = true
	defer func() {
		rt.canvas = false
		vt.Close()
		fmt.Print(vt.Stop())
		fmt.Println()
	}()

	c := vt.NewCanvas()
	c.HideCursor()
	tty.SetTimeout(20 * time.Millisecond)

	keyCh := make(chan int, 32)
	stopCh := make(chan struct{})
	defer close(stopCh)
	go func() {
		pending := ""
		for {
			select {
			case <-stopCh:
				return
			default:
			}
			raw := tty.CustomString()
			if raw == "" {
				continue
			}
			keys, rest := parseTTYKeyStream(pending + raw)
			pending = rest
			for _, k := range keys {
				select {
				case keyCh <- k:
				default:
				}
			}
		}
	}()

	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()
	rt.draw(c)
	w, h := c.Size()
	for range ticker.C {
		quit, dirty := rt.pump(keyCh)
		if quit {
			return nil
		}
		if cw, ch := c.Size(); cw != w || ch != h {
			w, h = cw, ch
			dirty = true
		}
		if dirty {
			rt.draw(c)
		}
	}
	return nil
}

// pump handles every key waiting on keys. dirty is set when the screen
// needs a redraw.
func (rt *runtimeState) pump(keys <-chan int) (quit, dirty bool) {
	warnings := len(rt.messages)
	for {
		select {
		case k := <-keys:
			dirty = true
			if rt.handleKey(k) {
				return true, dirty
			}
		default:
			return false, dirty || len(rt.messages) != warnings
		}
	}
}

func parseTTYKeyStream(raw string) ([]int, string) {
	if raw == "" {
		return nil, ""
	}
	if after, ok := strings.CutPrefix(raw, "c:"); ok {
		if n, err := strconv.Atoi(after); err == nil && n > 0 {
			return []int{normalizeVTKeyCode(n)}, ""
		}
	}

	keys := make([]int, 0, len(raw))
	for i := 0; i < len(raw); {
		if raw[i] == 0x1b {
			// Keep a partial sequence for the next read.
			if i+1 >= len(raw) {
				return keys, raw[i:]
			}
			if raw[i+1] == '[' {
				j := i + 2
				for j < len(raw) && (raw[j] >= '0' && raw[j] <= '9' || raw[j] == ';') {
					j++
				}
				if j >= len(raw) {
					return keys, raw[i:]
				}
				param := raw[i+2 : j]
				switch raw[j] {
				case 'A':
					keys = append(keys, keyUp)
				case 'B':
					keys = append(keys, keyDown)
				case 'C':
					keys = append(keys, keyRight)
				case 'D':
					keys = append(keys, keyLeft)
				case 'H':
					keys = append(keys, keyHome)
				case 'F':
					keys = append(keys, keyEnd)
				case '~':
					switch param {
					case "1", "7":
						keys = append(keys, keyHome)
					case "4", "8":
						keys = append(keys, keyEnd)
					case "5":
						keys = append(keys, keyPgUp)
					case "6":
						keys = append(keys, keyPgDn)
					}
				case 'u':
					// CSI u: ESC [ <codepoint> ; <mods> u
					if head, _, ok := strings.Cut(param, ";"); ok {
						param = head
					}
					if cp, err := strconv.Atoi(param); err == nil && cp > 0 {
						keys = append(keys, normalizeVTKeyCode(cp))
					}
				}
				i = j + 1
				continue
			}
			if raw[i+1] == 'O' {
				if i+2 >= len(raw) {
					return keys, raw[i:]
				}
				switch raw[i+2] {
				case 'A':
					keys = append(keys, keyUp)
				case 'B':
					keys = append(keys, keyDown)
				case 'C':
					keys = append(keys, keyRight)
				case 'D':
					keys = append(keys, keyLeft)
				case 'H':
					keys = append(keys, keyHome)
				case 'F':
					keys = append(keys, keyEnd)
				}
				i += 3
				continue
			}
			keys = append(keys, 27)
			i++
			continue
		}

		r, size := utf8.DecodeRuneInString(raw[i:])
		if r == utf8.RuneError && size == 1 {
			i++
			continue
		}
		if r <= 126 {
			keys = append(keys, int(r))
		}
		i += size
	}
	return keys, ""
}

func normalizeVTKeyCode(k int) int {
	switch k {
	case 258:
		return keyDown
	case 259:
		return keyUp
	case 260:
		return keyLeft
	case 261:
		return keyRight
	case 262:
		return keyHome
	case 360:
		return keyEnd
	case 338:
		return keyPgDn
	case 339:
		return keyPgUp
	default:
		return k
	}
}

// handleKey edits the input line or submits it. It reports whether the
// game should end.
func (rt *runtimeState) handleKey(key int) bool {
	switch key {
	case 3, 4:
		return true
	case 27:
		if rt.game.Console.IsOpen() {
			return rt.submit("exit")
		}
		return false
	case 10, 13:
		line := string(rt.input)
		rt.input, rt.point = nil, 0
		if strings.TrimSpace(line) == "" {
			return false
		}
		rt.history = append(rt.history, line)
		rt.histIdx = len(rt.history)
		return rt.submit(line)
	case 127, 8:
		if rt.point > 0 {
			rt.input = append(rt.input[:rt.point-1], rt.input[rt.point:]...)
			rt.point--
		}
	case 1, keyHome:
		rt.point = 0
	case 5, keyEnd:
		rt.point = len(rt.input)
	case 21:
		rt.input, rt.point = nil, 0
	case keyLeft:
		if rt.point > 0 {
			rt.point--
		}
	case keyRight:
		if rt.point < len(rt.input) {
			rt.point++
		}
	case keyUp:
		if rt.histIdx > 0 {
			rt.histIdx--
			rt.setInput(rt.history[rt.histIdx])
		}
	case keyDown:
		if rt.histIdx < len(rt.history)-1 {
			rt.histIdx++
			rt.setInput(rt.history[rt.histIdx])
		} else {
			rt.histIdx = len(rt.history)
			rt.setInput("")
		}
	case keyPgUp:
		rt.scroll += 10
	case keyPgDn:
		rt.scroll = max(rt.scroll-10, 0)
	default:
		if key >= 32 && key <= 126 {
			rt.input = append(rt.input[:rt.point], append([]rune{rune(key)}, rt.input[rt.point:]...)...)
			rt.point++
		}
	}
	return false
}

func (rt *runtimeState) setInput(s string) {
	rt.input = []rune(s)
	rt.point = len(rt.input)
}

func (rt *runtimeState) submit(line string) bool {
	rt.messages = nil
	rt.scroll = 0
	lines, quit := rt.exec(line)
	rt.emit(lines)
	return quit
}

func (rt *runtimeState) prompt() string {
	if rt.game.Console.IsOpen() {
		return "LISP> "
	}
	return "> "
}

func (rt *runtimeState) draw(c *vt.Canvas) {
	c.Clear()
	w, h := c.Size()
	if w == 0 || h < 3 {
		rt.warnOnce("small-terminal", "terminal is %dx%d, need at least 3 rows", w, h)
		c.Draw()
		return
	}
	rt.drawTranscript(c, w, h-2)

	in := rt.prompt() + string(rt.input)
	cursor := len([]rune(rt.prompt())) + rt.point
	if off := cursor - int(w) + 1; off > 0 {
		in = string([]rune(in)[off:])
		cursor -= off
	}
	c.WriteString(0, h-2, vt.White, vt.DefaultBackground, clip(in, w))
	if cursor < int(w) {
		c.WriteRune(uint(cursor), h-2, vt.LightRed, vt.DefaultBackground, cursorRune(rt.input, rt.point))
	}

	c.WriteString(0, h-1, vt.Yellow, vt.DefaultBackground, clip(rt.statusLine(), w))
	c.Draw()
}

func cursorRune(input []rune, point int) rune {
	if point < len(input) {
		return input[point]
	}
	return '_'
}

func (rt *runtimeState) drawTranscript(c *vt.Canvas, w, h uint) {
	var rows []outLine
	for _, l := range rt.out {
		for _, t := range wrap(l.text, int(w)) {
			rows = append(rows, outLine{text: t, kind: l.kind})
		}
	}
	end := len(rows) - rt.scroll
	if end < int(h) {
		end = min(int(h), len(rows))
		rt.scroll = len(rows) - end
	}
	start := max(end-int(h), 0)
	y := uint(0)
	for _, row := range rows[start:end] {
		c.WriteString(0, y, kindColor(row.kind), vt.DefaultBackground, row.text)
		y++
	}
}

func kindColor(k game.LineKind) vt.AttributeColor {
	switch k {
	case game.LineInput:
		return vt.Cyan
	case game.LineResult:
		return vt.LightGreen
	case game.LineError:
		return vt.LightRed
	case game.LineHint:
		return vt.Yellow
	case game.LineSuccess:
		return vt.Green
	}
	return vt.LightGray
}

// wrap breaks s into lines of at most width runes, at spaces where it can.
func wrap(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	var lines []string
	rs := []rune(s)
	for len(rs) > width {
		cut := width
		for i := width; i > 0; i-- {
			if rs[i] == ' ' {
				cut = i
				break
			}
		}
		lines = append(lines, strings.TrimRight(string(rs[:cut]), " "))
		rs = rs[cut:]
		for len(rs) > 0 && rs[0] == ' ' {
			rs = rs[1:]
		}
	}
	return append(lines, string(rs))
}

func clip(s string, w uint) string {
	rs := []rune(s)
	if len(rs) > int(w) {
		return string(rs[:w])
	}
	return s
}
