// Package ui draws the terrain around the follower in a terminal.
package ui

import "github.com/gdamore/tcell/v2"

// Screen is the terminal the renderer blits frames into. Event polling and
// drawing may happen on different goroutines; tcell serialises them.
type Screen struct {
	term tcell.Screen
}

// NewScreen opens the controlling terminal.
func NewScreen() (*Screen, error) {
	term, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewScreenFrom(term)
}

// NewScreenFrom takes over term, which has not been initialised yet.
// Tests hand in tcell.NewSimulationScreen.
func NewScreenFrom(term tcell.Screen) (*Screen, error) {
	if err := term.Init(); err != nil {
		return nil, err
	}
	term.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	term.HideCursor()
	term.Clear()
	return &Screen{term: term}, nil
}

// Close restores the terminal. PollEvent returns nil afterwards.
func (s *Screen) Close() { s.term.Fini() }

// PollEvent blocks for the next key or resize event.
func (s *Screen) PollEvent() tcell.Event { return s.term.PollEvent() }

// Show pushes the drawn cells to the terminal.
func (s *Screen) Show() { s.term.Show() }

// Sync redraws everything, e.g. after a resize.
func (s *Screen) Sync() { s.term.Sync() }

// SetContent places one rune.
func (s *Screen) SetContent(x, y int, r rune, style tcell.Style) {
	s.term.SetContent(x, y, r, nil, style)
}

// Size returns the terminal size in cells.
func (s *Screen) Size() (width, height int) { return s.term.Size() }
