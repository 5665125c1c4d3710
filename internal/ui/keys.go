package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap binds the display's controls.
type KeyMap struct {
	FreqDown key.Binding
	FreqUp   key.Binding
	GainUp   key.Binding
	GainDown key.Binding
	RefUp    key.Binding
	RefDown  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		FreqDown: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "tune down")),
		FreqUp:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "tune up")),
		GainUp:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "gain up")),
		GainDown: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "gain down")),
		RefUp:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "ref level up")),
		RefDown:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "ref level down")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.FreqUp, k.GainUp, k.RefUp, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.FreqDown, k.FreqUp},
		{k.GainUp, k.GainDown},
		{k.RefUp, k.RefDown},
		{k.Help, k.Quit},
	}
}
