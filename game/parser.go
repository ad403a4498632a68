package game

import (
	"strings"

	"github.com/alecthomas/participle"
	"github.com/alecthomas/participle/lexer"
)

// Verbs understood by Execute.
const (
	VerbLook      = "look"
	VerbGet       = "get"
	VerbUse       = "use"
	VerbTalk      = "talk"
	VerbGo        = "go"
	VerbOpen      = "open"
	VerbRead      = "read"
	VerbGive      = "give"
	VerbHelp      = "help"
	VerbInventory = "inventory"
	VerbLisp      = "lisp"
	VerbCast      = "cast"
	VerbEat       = "eat"
	VerbSave      = "save"
	VerbLoad      = "load"
	VerbReset     = "reset"
	VerbQuit      = "quit"
)

var verbAliases = map[string][]string{
	VerbLook:      {"l", "examine", "ex", "x", "inspect", "view", "see", "check"},
	VerbGet:       {"take", "grab", "pick", "pickup", "acquire", "collect"},
	VerbUse:       {"apply", "put", "insert", "place", "activate"},
	VerbTalk:      {"speak", "chat", "ask", "greet", "hello", "hi"},
	VerbGo:        {"walk", "move", "travel", "head"},
	VerbOpen:      {"unlock"},
	VerbRead:      {"study"},
	VerbGive:      {"offer", "hand", "feed"},
	VerbHelp:      {"commands", "?", "hint"},
	VerbInventory: {"inv", "i", "items", "bag"},
	VerbLisp:      {"clojure", "clj", "repl", "code", "eval", "console", "terminal"},
	VerbCast:      {"spell"},
	VerbEat:       {"consume", "taste", "bite"},
	VerbSave:      nil,
	VerbLoad:      {"restore"},
	VerbReset:     {"restart", "new"},
	VerbQuit:      {"exit-game", "bye", "q"},
}

var directionAliases = map[string][]string{
	"north": {"n", "forward"},
	"south": {"s", "back"},
	"east":  {"e", "right"},
	"west":  {"w", "left"},
	"up":    {"u", "upstairs", "climb"},
	"down":  {"d", "downstairs"},
	"enter": {"in", "inside"},
	"exit":  {"out", "outside", "leave"},
}

var noiseWords = map[string]bool{
	"the": true, "a": true, "an": true, "to": true, "at": true, "with": true,
	"on": true, "in": true, "from": true, "into": true, "onto": true,
}

var (
	verbs      = invert(verbAliases)
	directions = invert(directionAliases)
)

func invert(table map[string][]string) map[string]string {
	out := make(map[string]string)
	for name, aliases := range table {
		out[name] = name
		for _, a := range aliases {
			out[a] = name
		}
	}
	return out
}

var commandLexer = lexer.Must(lexer.Regexp(`(?P<Word>[^\s,.;:!]+)|(?P<Punct>[,.;:!])|(\s+)`))

type commandGrammar struct {
	Verb  string   `parser:"@Word"`
	Words []string `parser:"( @Word | Punct )*"`
}

var commandParser = participle.MustBuild(&commandGrammar{}, participle.Lexer(commandLexer))

// Command is one parsed line of adventure input.
type Command struct {
	Verb string
	// Object is the noise-stripped argument text.
	Object string
	// Target is the recipient in "give X to Y".
	Target string
	Input  string
}

// ParseDirection resolves a direction or one of its abbreviations.
func ParseDirection(word string) (string, bool) {
	dir, ok := directions[strings.ToLower(strings.TrimSpace(word))]
	return dir, ok
}

// ParseCommand splits input into a verb and its arguments. A bare direction
// is a GO command.
func ParseCommand(input string) (Command, bool) {
	text := strings.ToLower(strings.TrimSpace(input))
	if text == "" {
		return Command{}, false
	}
	var g commandGrammar
	if err := commandParser.ParseString(text, &g); err != nil {
		return Command{}, false
	}
	if dir, ok := directions[g.Verb]; ok && len(g.Words) == 0 {
		return Command{Verb: VerbGo, Object: dir, Input: input}, true
	}
	verb, ok := verbs[g.Verb]
	if !ok {
		return Command{}, false
	}
	words := g.Words
	if g.Verb == "pick" && len(words) > 0 && words[0] == "up" {
		words = words[1:]
	}
	cmd := Command{Verb: verb, Input: input}
	if verb == VerbGive {
		for i, w := range words {
			if w == "to" {
				cmd.Object = strip(words[:i])
				cmd.Target = strip(words[i+1:])
				return cmd, true
			}
		}
	}
	if verb == VerbGo {
		cmd.Object = strings.Join(words, " ")
		return cmd, true
	}
	cmd.Object = strip(words)
	return cmd, true
}

func strip(words []string) string {
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if !noiseWords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}
