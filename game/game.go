// Package game runs the adventure: state, the verb parser, command handlers,
// the LISP console and save files.
package game

import (
	"fmt"
	"strings"

	"lispquest/lisp"
	"lispquest/puzzle"
	"lispquest/world"
)

type Game struct {
	Content  *world.Content
	State    *State
	Interp   *lisp.Interpreter
	Console  *Console
	SavePath string
	// AutoSave writes the save file after moves, pickups and solved puzzles.
	AutoSave bool
	Warnf    func(format string, args ...any)
}

// Response is what one line of input produced.
type Response struct {
	Text    string
	Console bool
	Quit    bool
}

func New(content *world.Content, savePath string) *Game {
	g := &Game{
		Content:  content,
		Interp:   lisp.New(),
		SavePath: savePath,
		AutoSave: savePath != "",
		Warnf:    func(string, ...any) {},
	}
	g.State = g.freshState()
	g.Console = &Console{g: g}
	return g
}

func (g *Game) freshState() *State {
	w, s := g.Content.Start()
	return NewState(w, s, g.Content.MaxScore())
}

// Reset starts over: new state, empty interpreter, console closed.
func (g *Game) Reset() {
	g.Console.Close()
	g.Interp.Reset()
	g.State = g.freshState()
}

func (g *Game) Scene() *world.Scene {
	s, _ := g.Content.Scene(g.State.Scene)
	return s
}

func (g *Game) World() *world.World {
	w, _ := g.Content.World(g.State.World)
	return w
}

// Handle routes input to the console while it is open and to Execute
// otherwise.
func (g *Game) Handle(input string) Response {
	if g.Console.IsOpen() {
		return g.Console.Handle(input)
	}
	return g.Execute(input)
}

// Execute runs one adventure command.
func (g *Game) Execute(input string) Response {
	if strings.TrimSpace(input) == "" {
		return Response{}
	}
	cmd, ok := ParseCommand(input)
	if !ok {
		return g.reply(fmt.Sprintf("I don't understand %q. Type HELP for commands.", strings.TrimSpace(input)))
	}
	scene := g.Scene()
	if scene == nil {
		return g.reply("Error: unknown scene.")
	}
	switch cmd.Verb {
	case VerbLook:
		return g.reply(g.look(scene, cmd.Object))
	case VerbGet:
		return g.reply(g.get(scene, cmd.Object))
	case VerbUse:
		return g.use(scene, cmd.Object)
	case VerbTalk:
		return g.reply(g.talk(scene, cmd.Object))
	case VerbGo:
		return g.reply(g.move(scene, cmd.Object))
	case VerbOpen:
		return g.reply(g.open(scene, cmd.Object))
	case VerbRead:
		return g.reply(g.read(scene, cmd.Object))
	case VerbGive:
		return g.reply(g.give(scene, cmd.Object, cmd.Target))
	case VerbEat:
		return g.reply(g.eat(scene, cmd.Object))
	case VerbInventory:
		return g.reply(g.inventory())
	case VerbHelp:
		return g.reply(helpText)
	case VerbLisp, VerbCast:
		return g.lisp(scene)
	case VerbSave:
		if err := g.Save(); err != nil {
			return g.reply("Could not save: " + err.Error())
		}
		return g.reply("Game saved!")
	case VerbLoad:
		if err := g.Load(); err != nil {
			return g.reply("Could not load: " + err.Error())
		}
		return g.reply("Game loaded!\n\n" + g.describe(g.Scene()))
	case VerbReset:
		g.Reset()
		return g.reply("The world shimmers and starts anew.\n\n" + g.describe(g.Scene()))
	case VerbQuit:
		return Response{Text: "Goodbye, young wizard!", Quit: true}
	}
	return g.reply(fmt.Sprintf("I don't know how to %s.", cmd.Verb))
}

func (g *Game) reply(msg string) Response {
	g.State.Say(msg)
	return Response{Text: msg}
}

// visible reports whether o can be seen: its flag requirement holds and it
// has never been picked up.
func (g *Game) visible(o *world.Object) bool {
	if o.Requires != "" && !g.State.Flag(o.Requires) {
		return false
	}
	return !(o.CanTake && g.State.Flag(tookFlag(o.ID)))
}

func tookFlag(id string) string {
	return "took" + puzzle.CamelCase(id)
}

// findObject matches exactly first and then by containment, so "the old
// spellbook" still finds the spellbook.
func (g *Game) findObject(scene *world.Scene, target string) *world.Object {
	if target == "" {
		return nil
	}
	for _, o := range scene.Objects {
		if g.visible(o) && o.Matches(target) {
			return o
		}
	}
	for _, o := range scene.Objects {
		if !g.visible(o) {
			continue
		}
		for _, name := range append([]string{o.ID, strings.ToLower(o.Name)}, o.Aliases...) {
			if strings.Contains(target, strings.ToLower(name)) {
				return o
			}
		}
	}
	return nil
}

func (g *Game) findNPC(scene *world.Scene, target string) *world.NPC {
	for _, id := range scene.NPCs {
		n, ok := g.Content.NPC(id)
		if ok && n.Matches(target) {
			return n
		}
	}
	for _, id := range scene.NPCs {
		n, ok := g.Content.NPC(id)
		if !ok {
			continue
		}
		for _, name := range append([]string{n.ID, strings.ToLower(n.Name)}, n.Aliases...) {
			if strings.Contains(target, strings.ToLower(name)) {
				return n
			}
		}
	}
	return nil
}

func (g *Game) findItem(target string) (Item, bool) {
	for _, it := range g.State.Inventory {
		if matchesLoosely(target, it.ID) || matchesLoosely(target, it.Name) {
			return it, true
		}
	}
	return Item{}, false
}

func matchesLoosely(input, name string) bool {
	a, b := strings.ToLower(input), strings.ToLower(name)
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

func (g *Game) describe(scene *world.Scene) string {
	var sb strings.Builder
	sb.WriteString(scene.Name)
	sb.WriteString("\n")
	sb.WriteString(scene.Description)
	var seen []string
	for _, o := range scene.Objects {
		if g.visible(o) {
			seen = append(seen, o.Name)
		}
	}
	if len(seen) > 0 {
		sb.WriteString("\n\nYou can see: " + strings.Join(seen, ", ") + ".")
	}
	var names []string
	for _, id := range scene.NPCs {
		if n, ok := g.Content.NPC(id); ok {
			names = append(names, n.Name)
		}
	}
	switch len(names) {
	case 0:
	case 1:
		sb.WriteString("\n" + names[0] + " is here.")
	default:
		sb.WriteString("\n" + strings.Join(names, ", ") + " are here.")
	}
	if len(scene.ExitOrder) > 0 {
		sb.WriteString("\nExits: " + strings.Join(scene.ExitOrder, ", ") + ".")
	}
	return sb.String()
}

// Describe is the current scene as LOOK prints it.
func (g *Game) Describe() string {
	if s := g.Scene(); s != nil {
		return g.describe(s)
	}
	return ""
}

func (g *Game) look(scene *world.Scene, target string) string {
	if target == "" || target == "around" || target == "room" {
		return g.describe(scene)
	}
	if o := g.findObject(scene, target); o != nil {
		if len(o.Puzzles) > 0 {
			return o.Description + "\n(Try USE " + strings.ToUpper(firstWord(o)) + " to start coding.)"
		}
		return o.Description
	}
	if n := g.findNPC(scene, target); n != nil {
		return n.Description
	}
	if it, ok := g.findItem(target); ok {
		if o, ok := g.Content.Object(it.ID); ok {
			return o.Description
		}
		return "It's your " + it.Name + "."
	}
	return fmt.Sprintf("You don't see %q here.", target)
}

func firstWord(o *world.Object) string {
	if len(o.Aliases) > 0 {
		return o.Aliases[0]
	}
	return o.ID
}

func (g *Game) get(scene *world.Scene, target string) string {
	if target == "" {
		return "Get what?"
	}
	if it, ok := g.findItem(target); ok {
		return "You already have the " + it.Name + "."
	}
	o := g.findObject(scene, target)
	if o == nil {
		return fmt.Sprintf("You don't see %q here.", target)
	}
	if !o.CanTake {
		return "You can't take the " + o.Name + "."
	}
	g.State.AddItem(Item{ID: o.ID, Name: o.Name})
	g.State.SetFlag(tookFlag(o.ID))
	g.State.AddScore(o.Points)
	g.autoSave()
	if o.Points > 0 {
		return fmt.Sprintf("You pick up the %s. (+%d points)", o.Name, o.Points)
	}
	return "You pick up the " + o.Name + "."
}

func (g *Game) use(scene *world.Scene, target string) Response {
	if target == "" {
		return g.reply("Use what?")
	}
	o := g.findObject(scene, target)
	if o != nil && len(o.Puzzles) > 0 {
		id := g.nextPuzzle(o.Puzzles)
		if err := g.Console.Open(id, false); err != nil {
			return g.reply(err.Error())
		}
		g.State.Say("You activate the " + o.Name + "...")
		return Response{Text: "You activate the " + o.Name + "...\n" + render(g.Console.Lines), Console: true}
	}
	if o != nil {
		return g.reply("You can't figure out how to use the " + o.Name + " here.")
	}
	if it, ok := g.findItem(target); ok {
		return g.reply("You can't figure out how to use the " + it.Name + " here.")
	}
	return g.reply(fmt.Sprintf("You don't see %q to use.", target))
}

// nextPuzzle is the first unsolved puzzle of ids, or "" when all are solved.
func (g *Game) nextPuzzle(ids []string) string {
	for _, id := range ids {
		if _, ok := g.Content.Puzzles.Get(id); ok && !g.State.Solved(id) {
			return id
		}
	}
	return ""
}

func (g *Game) lisp(scene *world.Scene) Response {
	var ids []string
	for _, o := range scene.Objects {
		if g.visible(o) {
			ids = append(ids, o.Puzzles...)
		}
	}
	id := g.nextPuzzle(ids)
	if err := g.Console.Open(id, false); err != nil {
		return g.reply(err.Error())
	}
	msg := "Opening the LISP console..."
	if id == "" {
		msg = "Opening the LISP REPL. Type expressions to experiment!"
	}
	g.State.Say(msg)
	return Response{Text: msg + "\n" + render(g.Console.Lines), Console: true}
}

func (g *Game) talk(scene *world.Scene, target string) string {
	var npc *world.NPC
	if target == "" {
		switch len(scene.NPCs) {
		case 0:
			return "There's nobody here to talk to."
		case 1:
			npc, _ = g.Content.NPC(scene.NPCs[0])
		default:
			var names []string
			for _, id := range scene.NPCs {
				if n, ok := g.Content.NPC(id); ok {
					names = append(names, n.Name)
				}
			}
			return "Talk to whom? " + strings.Join(names, ", ") + "?"
		}
	} else {
		npc = g.findNPC(scene, target)
	}
	if npc == nil {
		return fmt.Sprintf("You don't see %q here to talk to.", target)
	}
	line, ok := npc.Speak(g.State.Flag)
	if !ok {
		return npc.Name + " doesn't have anything new to say."
	}
	if line.Sets != "" && !g.State.Flag(line.Sets) {
		g.State.SetFlag(line.Sets)
		g.State.AddScore(line.Points)
	}
	return fmt.Sprintf("%s: %q", npc.Name, line.Text)
}

func (g *Game) move(scene *world.Scene, arg string) string {
	if arg == "" {
		return "Go where? Try: north, south, east, west."
	}
	dir, ok := ParseDirection(arg)
	if !ok {
		fields := strings.Fields(arg)
		dir, ok = ParseDirection(fields[len(fields)-1])
		if !ok {
			dir = arg
		}
	}
	exit, ok := scene.Exits[dir]
	if !ok {
		return fmt.Sprintf("You can't go %s from here. Exits: %s.", dir, strings.Join(scene.ExitOrder, ", "))
	}
	if exit.Requires != "" && !g.State.Flag(exit.Requires) {
		if exit.Fail != "" {
			return exit.Fail
		}
		return "You can't go that way yet."
	}
	next, ok := g.Content.Scene(exit.To)
	if !ok {
		return "That way leads nowhere."
	}
	var sb strings.Builder
	sb.WriteString("You head " + dir + ".\n\n")
	if next.World != scene.World {
		if w, ok := g.Content.World(next.World); ok {
			sb.WriteString(fmt.Sprintf("* Welcome to %s: %s! *\n\n", w.Name, w.Subtitle))
		}
	}
	g.State.Scene = next.ID
	g.State.World = next.World
	sb.WriteString(g.describe(next))
	g.autoSave()
	return sb.String()
}

func (g *Game) open(scene *world.Scene, target string) string {
	if target == "" {
		return "Open what?"
	}
	o := g.findObject(scene, target)
	if o == nil {
		return fmt.Sprintf("You don't see %q to open.", target)
	}
	if len(o.Puzzles) > 0 {
		return "The " + o.Name + " is sealed by a spell. Try USE " + strings.ToUpper(firstWord(o)) + "."
	}
	return "You can't open the " + o.Name + "."
}

func (g *Game) read(scene *world.Scene, target string) string {
	if target == "" {
		return "Read what?"
	}
	o := g.findObject(scene, target)
	if o == nil {
		return fmt.Sprintf("You don't see %q to read.", target)
	}
	if o.ReadText != "" {
		return o.ReadText
	}
	return "There's nothing to read on the " + o.Name + "."
}

func (g *Game) give(scene *world.Scene, item, target string) string {
	if item == "" {
		return "Give what to whom?"
	}
	if target == "" {
		return "Try: give [item] to [person]"
	}
	it, ok := g.findItem(item)
	if !ok {
		return fmt.Sprintf("You don't have %q.", item)
	}
	npc := g.findNPC(scene, target)
	if npc == nil {
		return fmt.Sprintf("%q isn't here.", target)
	}
	w := npc.Wants
	if w == nil || w.Item != it.ID {
		return npc.Name + " doesn't want the " + it.Name + " right now."
	}
	g.State.RemoveItem(it.ID)
	if w.Sets != "" && !g.State.Flag(w.Sets) {
		g.State.SetFlag(w.Sets)
		g.State.AddScore(w.Points)
	}
	msg := npc.Name + ": " + w.Thanks
	if w.Gives != "" && g.State.AddItem(Item{ID: w.Gives, Name: w.GivesName}) {
		msg += "\n" + npc.Name + " gives you the " + w.GivesName + "."
	}
	g.autoSave()
	return msg
}

func (g *Game) eat(scene *world.Scene, target string) string {
	if target == "" {
		return "Eat what?"
	}
	if it, ok := g.findItem(target); ok {
		if o, ok := g.Content.Object(it.ID); ok && o.EatText != "" {
			return o.EatText
		}
		return "The " + it.Name + " doesn't look edible!"
	}
	if o := g.findObject(scene, target); o != nil {
		if o.EatText != "" {
			return o.EatText
		}
		return "The " + o.Name + " doesn't look edible!"
	}
	return fmt.Sprintf("You don't have %q to eat.", target)
}

func (g *Game) inventory() string {
	if len(g.State.Inventory) == 0 {
		return "Your inventory is empty."
	}
	lines := make([]string, 0, len(g.State.Inventory)+1)
	lines = append(lines, "You are carrying:")
	for _, it := range g.State.Inventory {
		lines = append(lines, "  * "+it.Name)
	}
	return strings.Join(lines, "\n")
}

// completePuzzle applies a solved puzzle's reward once and returns the
// messages to show.
func (g *Game) completePuzzle(p *puzzle.Puzzle) []string {
	if !g.State.Complete(p.ID) {
		return nil
	}
	g.State.AddScore(p.Points())
	g.State.SetFlag(p.FlagName())
	for _, f := range p.OnSolve.Flags {
		g.State.SetFlag(f)
	}
	msgs := []string{fmt.Sprintf("PUZZLE COMPLETE! +%d points", p.Points())}
	if p.OnSolve.Message != "" {
		msgs = append(msgs, p.OnSolve.Message)
	}
	if p.OnSolve.Win {
		g.State.Won = true
		msgs = append(msgs, fmt.Sprintf("*** CONGRATULATIONS! You broke the curse with a score of %d of %d! ***", g.State.Score, g.State.MaxScore))
	}
	for _, m := range msgs {
		g.State.Say(m)
	}
	g.autoSave()
	return msgs
}

// Progress lists the solved and total puzzles of the current world.
func (g *Game) Progress() (solved, total int) {
	for _, p := range g.Content.Puzzles.ForWorld(g.State.World) {
		total++
		if g.State.Solved(p.ID) {
			solved++
		}
	}
	return solved, total
}

func (g *Game) autoSave() {
	if !g.AutoSave || g.SavePath == "" {
		return
	}
	if err := g.Save(); err != nil {
		g.Warnf("auto-save failed: %v", err)
	}
}

const helpText = `COMMANDS:
  LOOK [thing]           Examine your surroundings or an object
  GET [item]             Pick up an item
  USE [thing]            Use a terminal to start a coding puzzle
  TALK [person]          Talk to someone
  GO [direction]         Move (north/south/east/west/up/down or n/s/e/w/u/d)
  READ [thing]           Read text on something
  GIVE [item] TO [who]   Give an item
  EAT [thing]            Have a snack
  INVENTORY              Check your items
  LISP                   Open the LISP console
  SAVE / LOAD            Save or load your game
  RESET                  Start over
  QUIT                   Leave the game

TIPS:
  * Talk to everyone! They teach you LISP.
  * USE terminals to start coding puzzles.
  * In the console, type HINT for a hint and EXIT to leave.
  * Can't go somewhere? You might need to solve a puzzle first!`
