package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/bloomly/internal/notify"
)

var (
	_ tea.Msg = searchDoneMsg{}
	_ tea.Msg = toastMsg{}
)

// searchDoneMsg reports a finished [garden.SearchView.Submit].
type searchDoneMsg struct {
	err error
}

// favoriteSavedMsg reports a finished save from the search tab.
type favoriteSavedMsg struct {
	err error
}

// gardenLoadedMsg reports a finished garden read.
type gardenLoadedMsg struct {
	err error
}

// gardenChangedMsg reports a finished rename or remove.
type gardenChangedMsg struct {
	err error
}

// tracksLoadedMsg reports the player's one-time track fetch.
type tracksLoadedMsg struct {
	err error
}

// toastMsg carries a notification slot change.
type toastMsg notify.Event
