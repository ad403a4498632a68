package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lispquest/lisp"
)

// SaveVersion is the only save format this build reads.
const SaveVersion = 1

var (
	ErrNoSave      = errors.New("no saved game")
	ErrSaveVersion = errors.New("unsupported save version")
	ErrNoSavePath  = errors.New("saving is disabled")
)

// SaveData is the JSON save document.
type SaveData struct {
	Version          int             `json:"version"`
	Timestamp        int64           `json:"timestamp"`
	CurrentWorld     string          `json:"currentWorld"`
	CurrentScene     string          `json:"currentScene"`
	Inventory        []Item          `json:"inventory"`
	Score            int             `json:"score"`
	Flags            map[string]bool `json:"flags"`
	CompletedPuzzles []string        `json:"completedPuzzles"`
	LispEnv          lisp.Bindings   `json:"lispEnv"`
}

// Snapshot captures the game and the interpreter's definitions.
func (g *Game) Snapshot() *SaveData {
	s := g.State
	return &SaveData{
		Version:          SaveVersion,
		Timestamp:        time.Now().UnixMilli(),
		CurrentWorld:     s.World,
		CurrentScene:     s.Scene,
		Inventory:        append([]Item{}, s.Inventory...),
		Score:            s.Score,
		Flags:            s.Flags,
		CompletedPuzzles: append([]string{}, s.Completed...),
		LispEnv:          g.Interp.Snapshot(),
	}
}

// Apply replaces the current state with d. Nothing changes when d does not
// fit the loaded content.
func (g *Game) Apply(d *SaveData) error {
	if d.Version != SaveVersion {
		return fmt.Errorf("%w: %d", ErrSaveVersion, d.Version)
	}
	scene, ok := g.Content.Scene(d.CurrentScene)
	if !ok {
		return fmt.Errorf("save refers to unknown scene %q", d.CurrentScene)
	}
	if err := g.Interp.Restore(d.LispEnv); err != nil {
		return fmt.Errorf("restore definitions: %w", err)
	}
	s := NewState(scene.World, scene.ID, g.Content.MaxScore())
	for _, it := range d.Inventory {
		s.AddItem(it)
	}
	for f, on := range d.Flags {
		if on {
			s.SetFlag(f)
		}
	}
	for _, id := range d.CompletedPuzzles {
		s.Complete(id)
	}
	s.AddScore(d.Score)
	for _, p := range g.Content.Puzzles.All() {
		if p.OnSolve.Win && s.Solved(p.ID) {
			s.Won = true
		}
	}
	g.Console.Close()
	g.State = s
	return nil
}

// Save writes the save file. The file is replaced atomically.
func (g *Game) Save() error {
	if g.SavePath == "" {
		return ErrNoSavePath
	}
	return WriteSave(g.SavePath, g.Snapshot())
}

func (g *Game) Load() error {
	if g.SavePath == "" {
		return ErrNoSavePath
	}
	d, err := ReadSave(g.SavePath)
	if err != nil {
		return err
	}
	return g.Apply(d)
}

// HasSave reports whether a save file exists.
func (g *Game) HasSave() bool {
	if g.SavePath == "" {
		return false
	}
	_, err := os.Stat(g.SavePath)
	return err == nil
}

func WriteSave(path string, d *SaveData) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".lispquest-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func ReadSave(path string) (*SaveData, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSave
	}
	if err != nil {
		return nil, err
	}
	var d SaveData
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("read save %s: %w", path, err)
	}
	if d.Version != SaveVersion {
		return nil, fmt.Errorf("%w: %d", ErrSaveVersion, d.Version)
	}
	return &d, nil
}
