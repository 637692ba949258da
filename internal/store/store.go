package store

import (
	"errors"
	"time"

	"git.lost.host/meutraa/fretedit/internal/song"
)

var ErrNotFound = errors.New("snapshot not found")

// Entry describes one saved snapshot without its contents.
type Entry struct {
	ID     string
	Source string // Identifies the chart the snapshot was edited from
	Sum    string // Hash of the snapshot contents
	Name   string
	Saved  time.Time
}

type Store interface {
	Init(path string) error
	Deinit()
	Save(source string, s *song.Song) (string, error)
	Latest(source string) (*Entry, error)
	List(source string) ([]Entry, error)
	Load(id string) (*song.Song, error)
}
