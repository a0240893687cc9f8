package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/bloomly/internal/notify"
)

var styles = NewPalette("#3F7D3A", "#5C9E55", "#B3403A", "#C98A1B", "#3A6EA5", "#8A8A8A")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title  lipgloss.Style
	tab    lipgloss.Style
	active lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	info   lipgloss.Style
	help   lipgloss.Style
	bar    lipgloss.Style
}

func NewPalette(t, s, e, w, i, h string) *Palette {
	return &Palette{
		title:  NewBold(t).MarginBottom(1),
		tab:    NewStyle(h).Padding(0, 1),
		active: NewBold(t).Padding(0, 1).Underline(true),
		ok:     NewBold(s),
		err:    NewBold(e),
		warn:   NewBold(w),
		info:   NewStyle(i),
		help:   NewEm(h),
		bar:    NewStyle(t).Border(lipgloss.NormalBorder(), true, false, false, false).BorderForeground(lipgloss.Color(h)),
	}
}

// Kind returns the toast style for a notification kind.
func (p *Palette) Kind(k notify.Kind) lipgloss.Style {
	switch k {
	case notify.KindSuccess:
		return p.ok
	case notify.KindWarning:
		return p.warn
	case notify.KindError:
		return p.err
	default:
		return p.info
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
