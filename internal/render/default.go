package render

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
)

const DefaultFramePeriod = time.Second / 60

type DefaultRenderer struct {
	Out         io.Writer
	Fd          int
	FramePeriod time.Duration

	buffer       strings.Builder
	restoreState *term.State
	decorations  []*decoration
}

type decoration struct {
	Row, Column int
	Content     string
	Frames      int // remaining frames until removed
}

// NewDefaultRenderer draws to stdout.
func NewDefaultRenderer(period time.Duration) *DefaultRenderer {
	if period <= 0 {
		period = DefaultFramePeriod
	}
	return &DefaultRenderer{Out: os.Stdout, Fd: int(os.Stdout.Fd()), FramePeriod: period}
}

func (r *DefaultRenderer) Init() error {
	if term.IsTerminal(r.Fd) {
		state, err := term.MakeRaw(r.Fd)
		if nil != err {
			return fmt.Errorf("unable to make terminal raw: %w", err)
		}
		r.restoreState = state
	}

	_, err := fmt.Fprintf(r.Out, "%s%s%s",
		"\033[?1049h", // Enable alternate buffer
		"\033[?25l",   // Make the cursor invisible
		"\033[2J",     // Clear the screen
	)
	return err
}

func (r *DefaultRenderer) Deinit() error {
	fmt.Fprintf(r.Out, "%s%s",
		"\033[?1049l", // Disable alternate buffer
		"\033[?25h",   // Make the cursor visible
	)
	if r.restoreState == nil {
		return nil
	}
	state := r.restoreState
	r.restoreState = nil
	return term.Restore(r.Fd, state)
}

func (r *DefaultRenderer) AddDecoration(row, column int, content string, frames int) {
	r.decorations = append(r.decorations, &decoration{
		Row:     row,
		Column:  column,
		Content: content,
		Frames:  frames,
	})
	r.Fill(row, column, content)
}

func (r *DefaultRenderer) tickDecorations() {
	nd := make([]*decoration, 0, len(r.decorations))
	for _, d := range r.decorations {
		if d.Frames == 0 {
			r.Fill(d.Row, d.Column, " ")
			continue
		}
		r.Fill(d.Row, d.Column, d.Content)
		nd = append(nd, d)
		d.Frames--
	}
	r.decorations = nd
}

// RenderLoop calls render once per frame period until it returns false.
func (r *DefaultRenderer) RenderLoop(render func(now time.Time, elapsed time.Duration) bool) {
	start := time.Now()
	for cont := true; cont; {
		now := time.Now()
		deadline := now.Add(r.FramePeriod)

		cont = render(now, now.Sub(start))

		r.tickDecorations()
		if err := r.Flush(); nil != err {
			log.Println("unable to draw frame", err)
			return
		}
		time.Sleep(time.Until(deadline))
	}
}

// Clear blanks the whole screen on the next flush.
func (r *DefaultRenderer) Clear() {
	r.buffer.WriteString("\033[2J")
}

func (r *DefaultRenderer) Fill(row, column int, message string) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.Itoa(row))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.Itoa(column))
	r.buffer.WriteString("H")
	r.buffer.WriteString(message)
}

// Flush writes everything filled since the last flush.
func (r *DefaultRenderer) Flush() error {
	defer r.buffer.Reset()
	if r.buffer.Len() == 0 {
		return nil
	}
	_, err := io.WriteString(r.Out, r.buffer.String())
	return err
}
