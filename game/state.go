package game

import "slices"

// maxMessages bounds the message history kept for the status line.
const maxMessages = 200

type Item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// State is everything about a play-through except the interpreter.
type State struct {
	World     string
	Scene     string
	Inventory []Item
	Score     int
	MaxScore  int
	Flags     map[string]bool
	Completed []string
	Messages  []string
	Won       bool
}

func NewState(world, scene string, maxScore int) *State {
	return &State{
		World:    world,
		Scene:    scene,
		MaxScore: maxScore,
		Flags:    make(map[string]bool),
	}
}

func (s *State) Has(id string) bool {
	return slices.ContainsFunc(s.Inventory, func(it Item) bool { return it.ID == id })
}

// AddItem reports false when the item is already carried.
func (s *State) AddItem(it Item) bool {
	if s.Has(it.ID) {
		return false
	}
	s.Inventory = append(s.Inventory, it)
	return true
}

func (s *State) RemoveItem(id string) bool {
	n := len(s.Inventory)
	s.Inventory = slices.DeleteFunc(s.Inventory, func(it Item) bool { return it.ID == id })
	return len(s.Inventory) != n
}

// AddScore never goes past MaxScore.
func (s *State) AddScore(points int) {
	s.Score += points
	if s.MaxScore > 0 && s.Score > s.MaxScore {
		s.Score = s.MaxScore
	}
}

func (s *State) SetFlag(flag string) {
	if flag != "" {
		s.Flags[flag] = true
	}
}

func (s *State) Flag(flag string) bool {
	return s.Flags[flag]
}

// Complete records a solved puzzle once. It reports false for repeats.
func (s *State) Complete(id string) bool {
	if s.Solved(id) {
		return false
	}
	s.Completed = append(s.Completed, id)
	return true
}

func (s *State) Solved(id string) bool {
	return slices.Contains(s.Completed, id)
}

func (s *State) Say(msg string) {
	if msg == "" {
		return
	}
	s.Messages = append(s.Messages, msg)
	if len(s.Messages) > maxMessages {
		s.Messages = slices.Clone(s.Messages[len(s.Messages)-maxMessages:])
	}
}

// LastMessage is what the status line shows.
func (s *State) LastMessage() string {
	if len(s.Messages) == 0 {
		return ""
	}
	return s.Messages[len(s.Messages)-1]
}
