package world

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/steelseries/golisp"

	"lispquest/puzzle"
)

//go:embed content/*.lsp
var embedded embed.FS

// Source is one content file.
type Source struct {
	Name string
	Text string
}

type loader struct {
	content *Content
	puzzles []*puzzle.Puzzle
}

var (
	loadMu      sync.Mutex
	current     *loader
	installOnce sync.Once
)

func installForms() {
	golisp.MakeSpecialForm("world", ">=1", worldImpl)
	golisp.MakeSpecialForm("scene", ">=1", sceneImpl)
	golisp.MakeSpecialForm("npc", ">=1", npcImpl)
	golisp.MakeSpecialForm("puzzle", ">=1", puzzleImpl)
}

// Default loads the content shipped with the game.
func Default() (*Content, error) {
	names, err := fs.Glob(embedded, "content/*.lsp")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	sources := make([]Source, 0, len(names))
	for _, name := range names {
		data, err := embedded.ReadFile(name)
		if err != nil {
			return nil, err
		}
		sources = append(sources, Source{Name: name, Text: string(data)})
	}
	return Load(sources...)
}

// LoadFiles loads content from files on disk instead of the built-in content.
func LoadFiles(paths ...string) (*Content, error) {
	sources := make([]Source, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, Source{Name: filepath.Base(path), Text: string(data)})
	}
	return Load(sources...)
}

// Load evaluates the sources with golisp. The content forms are registered
// globally in golisp, so loads are serialised.
func Load(sources ...Source) (*Content, error) {
	loadMu.Lock()
	defer loadMu.Unlock()
	installOnce.Do(installForms)

	l := &loader{content: &Content{
		Worlds: make(map[string]*World),
		Scenes: make(map[string]*Scene),
		NPCs:   make(map[string]*NPC),
	}}
	current = l
	defer func() { current = nil }()

	env := golisp.NewSymbolTableFrameBelow(golisp.Global, "lispquest")
	for _, src := range sources {
		if _, err := golisp.ParseAndEvalAllInEnvironment(src.Text, env); err != nil {
			return nil, fmt.Errorf("load %s: %w", src.Name, err)
		}
	}
	catalog, err := puzzle.NewCatalog(l.puzzles...)
	if err != nil {
		return nil, err
	}
	l.content.Puzzles = catalog
	if err := l.content.Validate(); err != nil {
		return nil, err
	}
	return l.content, nil
}

func active() (*loader, error) {
	if current == nil {
		return nil, &ContentError{Form: "content", Msg: "content forms are only available while loading"}
	}
	return current, nil
}
