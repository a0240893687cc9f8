// package formatter renders plants, favorites and tracks for the CLI as text tables, JSON, CSV or Markdown
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/bloomly/internal/models"
	"github.com/desertthunder/bloomly/internal/shared"
)

// Format selects how a listing is written.
type Format string

const (
	Text     Format = "text"
	JSON     Format = "json"
	CSV      Format = "csv"
	Markdown Format = "markdown"
)

// Formats lists every supported [Format] in flag help order.
var Formats = []Format{Text, JSON, CSV, Markdown}

// ParseFormat maps a --format value onto a [Format]. "md" is accepted for Markdown.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", Text:
		return Text, nil
	case JSON, CSV, Markdown:
		return f, nil
	case "md":
		return Markdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidInput, s)
	}
}

// listing is the tabular form of a result set plus the raw value used for JSON.
type listing struct {
	title   string
	empty   string
	headers []string
	rows    [][]string
	raw     any
}

// Plants writes catalog search results.
func Plants(w io.Writer, f Format, plants []models.Plant) error {
	l := listing{
		title:   "Plants",
		empty:   "No plants found.",
		headers: []string{"ID", "Name", "Scientific Name", "Image"},
		raw:     plants,
	}
	for _, p := range plants {
		l.rows = append(l.rows, []string{strconv.Itoa(p.ID), p.DisplayName(), p.ScientificName.String(), p.ImageURL()})
	}
	return write(w, f, l)
}

// Favorites writes a garden.
func Favorites(w io.Writer, f Format, favs []models.FavoritePlant) error {
	l := listing{
		title:   "My Garden",
		empty:   "Your garden is empty",
		headers: []string{"ID", "Name", "Common Name", "Scientific Name"},
		raw:     favs,
	}
	for _, fav := range favs {
		l.rows = append(l.rows, []string{strconv.Itoa(fav.ID), fav.DisplayName(), fav.CommonName, fav.ScientificName})
	}
	return write(w, f, l)
}

// Tracks writes the ambient track list.
func Tracks(w io.Writer, f Format, tracks []models.Track) error {
	l := listing{
		title:   "Tracks",
		empty:   "No tracks available.",
		headers: []string{"#", "Title", "Artist", "Audio"},
		raw:     tracks,
	}
	for i, t := range tracks {
		l.rows = append(l.rows, []string{strconv.Itoa(i + 1), t.Title, t.Artist, t.AudioURL})
	}
	return write(w, f, l)
}

func write(w io.Writer, f Format, l listing) error {
	var (
		data []byte
		err  error
	)

	switch f {
	case JSON:
		data, err = toJSON(l)
	case CSV:
		data, err = toCSV(l)
	case Markdown:
		data = toMarkdown(l)
	case Text, "":
		data = toText(l)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidInput, f)
	}
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func toJSON(l listing) ([]byte, error) {
	raw := l.raw
	if len(l.rows) == 0 {
		raw = []struct{}{}
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

func toCSV(l listing) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(l.headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	if err := writer.WriteAll(l.rows); err != nil {
		return nil, fmt.Errorf("failed to write CSV records: %w", err)
	}
	return buf.Bytes(), nil
}

func toMarkdown(l listing) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", l.title))
	if len(l.rows) == 0 {
		buf.WriteString(fmt.Sprintf("_%s_\n", l.empty))
		return buf.Bytes()
	}

	buf.WriteString("| " + strings.Join(escapeCells(l.headers), " | ") + " |\n")
	buf.WriteString("|" + strings.Repeat(" --- |", len(l.headers)) + "\n")
	for _, row := range l.rows {
		buf.WriteString("| " + strings.Join(escapeCells(row), " | ") + " |\n")
	}
	return buf.Bytes()
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return out
}

func toText(l listing) []byte {
	if len(l.rows) == 0 {
		return []byte(l.empty + "\n")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderColumn(false).
		BorderRow(false).
		Headers(l.headers...).
		Rows(l.rows...)
	return []byte(t.String() + "\n")
}
