// Package render draws the editor into the terminal.
package render

import "time"

// Filler writes a string at a screen cell, counted from 1.
type Filler interface {
	Fill(row, column int, message string)
}

type Renderer interface {
	Filler
	Init() error
	Deinit() error
	AddDecoration(row, column int, content string, frames int)
	RenderLoop(render func(now time.Time, elapsed time.Duration) bool)
	Clear()
}
