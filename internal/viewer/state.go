package viewer

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/arbor/pkg/tree"
)

// Command is a viewer action bound to a key.
type Command int

const (
	CmdNone Command = iota
	CmdNewSeed
	CmdToggleMode
	CmdToggleWireframe
	CmdToggleFullscreen
	CmdQuit
	CmdSpecies1 // CmdSpecies1+i selects species i
)

var speciesKeys = []sdl.Scancode{
	sdl.SCANCODE_1, sdl.SCANCODE_2, sdl.SCANCODE_3,
	sdl.SCANCODE_4, sdl.SCANCODE_5, sdl.SCANCODE_6,
	sdl.SCANCODE_7, sdl.SCANCODE_8, sdl.SCANCODE_9,
}

// CommandForKey maps a scancode to its command.
func CommandForKey(key sdl.Scancode) Command {
	switch key {
	case sdl.SCANCODE_N:
		return CmdNewSeed
	case sdl.SCANCODE_M:
		return CmdToggleMode
	case sdl.SCANCODE_L:
		return CmdToggleWireframe
	case sdl.SCANCODE_F, sdl.SCANCODE_F11:
		return CmdToggleFullscreen
	case sdl.SCANCODE_ESCAPE, sdl.SCANCODE_Q:
		return CmdQuit
	}
	for i, k := range speciesKeys {
		if k == key {
			return CmdSpecies1 + Command(i)
		}
	}
	return CmdNone
}

// State is what the viewer shows. Changing species, seed or mode needs a
// new tree; the wireframe switch only needs a redraw.
type State struct {
	Species   []string
	Index     int
	Seed      int64
	Mode      tree.Mode
	Wireframe bool
}

// Apply runs cmd and reports whether the tree must be regenerated.
func (s *State) Apply(cmd Command) (regenerate bool) {
	switch cmd {
	case CmdNewSeed:
		s.Seed++
		return true
	case CmdToggleMode:
		if s.Mode == tree.Hybrid {
			s.Mode = tree.Hierarchy
		} else {
			s.Mode = tree.Hybrid
		}
		return true
	case CmdToggleWireframe:
		s.Wireframe = !s.Wireframe
		return false
	}
	if cmd >= CmdSpecies1 {
		i := int(cmd - CmdSpecies1)
		if i < len(s.Species) && i != s.Index {
			s.Index = i
			return true
		}
	}
	return false
}

// SpeciesName returns the selected species.
func (s *State) SpeciesName() string {
	if len(s.Species) == 0 {
		return ""
	}
	return s.Species[s.Index]
}

// Title is the window title for the current state.
func (s *State) Title() string {
	return fmt.Sprintf("treeview - %s (%s, seed %d)", s.SpeciesName(), s.Mode, s.Seed)
}
