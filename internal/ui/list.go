package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/bloomly/internal/models"
)

var (
	_ list.Item = plantItem{}
	_ list.Item = favoriteItem{}
)

// plantItem wraps [models.Plant] to implement [list.Item].
type plantItem struct {
	plant models.Plant
}

func (i plantItem) FilterValue() string { return i.plant.DisplayName() }
func (i plantItem) Title() string       { return i.plant.DisplayName() }
func (i plantItem) Description() string {
	if sci := i.plant.ScientificName.String(); sci != "" {
		return sci
	}
	return fmt.Sprintf("#%d", i.plant.ID)
}

// favoriteItem wraps [models.FavoritePlant] to implement [list.Item].
type favoriteItem struct {
	fav models.FavoritePlant
}

func (i favoriteItem) FilterValue() string { return i.fav.DisplayName() }
func (i favoriteItem) Title() string       { return i.fav.DisplayName() }
func (i favoriteItem) Description() string {
	desc := i.fav.ScientificName
	if i.fav.CustomName != "" && i.fav.CustomName != i.fav.CommonName && i.fav.CommonName != "" {
		desc = fmt.Sprintf("%s • %s", i.fav.CommonName, desc)
	}
	return desc
}

func plantItems(plants []models.Plant) []list.Item {
	items := make([]list.Item, len(plants))
	for i, p := range plants {
		items[i] = plantItem{plant: p}
	}
	return items
}

func favoriteItems(favs []models.FavoritePlant) []list.Item {
	items := make([]list.Item, len(favs))
	for i, f := range favs {
		items[i] = favoriteItem{fav: f}
	}
	return items
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	return l
}
