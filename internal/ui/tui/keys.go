package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Start   key.Binding
	Pause   key.Binding
	Hour    key.Binding
	Resume  key.Binding
	Reset   key.Binding
	Debug   key.Binding
	Dismiss key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		Pause:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Hour:    key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "pause 1h")),
		Resume:  key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "resume")),
		Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Debug:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "debug mode")),
		Dismiss: key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("enter/esc", "end break")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (keys keyMap) ShortHelp() []key.Binding {
	return []key.Binding{keys.Start, keys.Pause, keys.Reset, keys.Help, keys.Quit}
}

func (keys keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{keys.Start, keys.Pause, keys.Hour, keys.Resume},
		{keys.Reset, keys.Debug, keys.Dismiss},
		{keys.Help, keys.Quit},
	}
}

// breakKeyMap is shown while the break screen is up.
type breakKeyMap struct {
	keys keyMap
}

func (bk breakKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{bk.keys.Dismiss, bk.keys.Quit}
}

func (bk breakKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{bk.ShortHelp()}
}
