// Package theme decides how every cell of the highway looks.
package theme

import "git.lost.host/meutraa/fretedit/internal/chart"

// Mark is the state of a drawn note.
type Mark uint8

const (
	Selected Mark = 1 << iota
	Starpower
	Ghost
)

func (m Mark) Has(o Mark) bool {
	return m&o != 0
}

// Line is what grid line crosses a row.
type Line uint8

const (
	NoLine Line = iota
	BeatLine
	MeasureLine
)

// Marker is a labelled event drawn beside the highway.
type Marker uint8

const (
	TempoMarker Marker = iota
	SignatureMarker
	SectionMarker
	BookmarkMarker
)

type Theme interface {
	RenderNote(f chart.Fret, n chart.NoteEvent, m Mark) string
	RenderSustain(f chart.Fret, m Mark) string
	RenderLane(f chart.Fret, l Line) string
	RenderCursor(f chart.Fret) string
	RenderMarker(kind Marker, text string) string
	RenderStatus(text string) string
}
