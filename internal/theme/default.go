package theme

import (
	"git.lost.host/meutraa/fretedit/internal/chart"
	"github.com/charmbracelet/lipgloss"
)

type DefaultTheme struct {
	frets   [chart.LaneCount]lipgloss.Style
	markers map[Marker]lipgloss.Style
	grid    lipgloss.Style
	measure lipgloss.Style
	cursor  lipgloss.Style
	status  lipgloss.Style
	star    lipgloss.Style
}

var (
	fretColors = [chart.LaneCount]lipgloss.Color{
		"#1ec800", // green
		"#ec1e00", // red
		"#ecc300", // yellow
		"#0076ec", // blue
		"#ec8000", // orange
		"#a000ec", // open
	}
	markerColors = map[Marker]lipgloss.Color{
		TempoMarker:     "#adecec",
		SignatureMarker: "#6e9359",
		SectionMarker:   "#ecc300",
		BookmarkMarker:  "#ec006a",
	}
)

const (
	strumSym   = "⬤"
	hopoSym    = "◆"
	tapSym     = "▲"
	openSym    = "═"
	ghostSym   = "○"
	sustainSym = "┃"
	beatSym    = "·"
	measureSym = "─"
	cursorSym  = "▭"
)

func NewDefaultTheme() *DefaultTheme {
	t := &DefaultTheme{
		markers: map[Marker]lipgloss.Style{},
		grid:    lipgloss.NewStyle().Foreground(lipgloss.Color("#444444")),
		measure: lipgloss.NewStyle().Foreground(lipgloss.Color("#6a6a6a")),
		cursor:  lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true),
		status:  lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#303030")),
		star:    lipgloss.NewStyle().Foreground(lipgloss.Color("#adecec")),
	}
	for f, c := range fretColors {
		t.frets[f] = lipgloss.NewStyle().Foreground(c)
	}
	for m, c := range markerColors {
		t.markers[m] = lipgloss.NewStyle().Foreground(c)
	}
	return t
}

func glyph(f chart.Fret, n chart.NoteEvent) string {
	if f == chart.Open {
		return openSym
	}
	switch n.Flag {
	case chart.HOPO:
		return hopoSym
	case chart.Tap:
		return tapSym
	}
	return strumSym
}

func (t *DefaultTheme) fret(f chart.Fret, m Mark) lipgloss.Style {
	s := t.frets[f%chart.LaneCount]
	if m.Has(Starpower) {
		s = t.star
	}
	if m.Has(Selected) {
		s = s.Reverse(true)
	}
	return s
}

func (t *DefaultTheme) RenderNote(f chart.Fret, n chart.NoteEvent, m Mark) string {
	if m.Has(Ghost) {
		return t.fret(f, m).Faint(true).Render(ghostSym)
	}
	return t.fret(f, m).Bold(!n.Default).Render(glyph(f, n))
}

func (t *DefaultTheme) RenderSustain(f chart.Fret, m Mark) string {
	return t.fret(f, m&^Selected).Render(sustainSym)
}

func (t *DefaultTheme) RenderLane(f chart.Fret, l Line) string {
	switch l {
	case MeasureLine:
		return t.measure.Render(measureSym)
	case BeatLine:
		return t.grid.Render(beatSym)
	}
	return " "
}

func (t *DefaultTheme) RenderCursor(f chart.Fret) string {
	return t.cursor.Render(cursorSym)
}

func (t *DefaultTheme) RenderMarker(kind Marker, text string) string {
	return t.markers[kind].Render(text)
}

func (t *DefaultTheme) RenderStatus(text string) string {
	return t.status.Render(text)
}
