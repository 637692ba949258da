package store

import (
	"log"
	"time"

	"git.lost.host/meutraa/fretedit/internal/song"
	"github.com/bep/debounce"
)

const DefaultQuiet = 2 * time.Second

// Autosaver saves a song once edits have stopped for a quiet period.
//
// Touch may be called from the edit loop on every change. The debounce timer
// only marks a save as due; Poll performs it on the caller's goroutine, so
// the song is never read while it is being edited.
type Autosaver struct {
	Store  Store
	Source string
	Song   func() *song.Song

	debounced func(func())
	due       chan struct{}
	last      string
}

func NewAutosaver(st Store, source string, current func() *song.Song, quiet time.Duration) *Autosaver {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &Autosaver{
		Store:     st,
		Source:    source,
		Song:      current,
		debounced: debounce.New(quiet),
		due:       make(chan struct{}, 1),
	}
}

func (a *Autosaver) Touch() {
	a.debounced(func() {
		select {
		case a.due <- struct{}{}:
		default:
		}
	})
}

// Poll saves when the quiet period has elapsed since the last Touch. It
// reports whether a save was attempted.
func (a *Autosaver) Poll() bool {
	select {
	case <-a.due:
	default:
		return false
	}
	if _, err := a.Flush(); nil != err {
		log.Println("unable to autosave", err)
	}
	return true
}

// Flush saves immediately and returns the snapshot id.
func (a *Autosaver) Flush() (string, error) {
	id, err := a.Store.Save(a.Source, a.Song())
	if nil != err {
		return "", err
	}
	a.last = id
	return id, nil
}

// Last is the id of the most recent successful save.
func (a *Autosaver) Last() string {
	return a.last
}
