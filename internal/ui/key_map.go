package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	search key.Binding
	enter  key.Binding
	tab    key.Binding
	rename key.Binding
	remove key.Binding
	cancel key.Binding
	next   key.Binding
	prev   key.Binding
	toggle key.Binding
	tracks key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		tab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch view")),
		rename: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		remove: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove")),
		cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		next:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next track")),
		prev:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev track")),
		toggle: key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "play/pause")),
		tracks: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "track list")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.search, k.tab, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.search, k.enter, k.tab},
		{k.rename, k.remove, k.cancel},
		{k.next, k.prev, k.toggle, k.tracks},
		{k.quit},
	}
}
