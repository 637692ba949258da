package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"git.lost.host/meutraa/fretedit/internal/song"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultStore keeps song snapshots as JSON rows in a sqlite file.
type DefaultStore struct {
	Now func() time.Time

	db *sql.DB
}

func (s *DefaultStore) Init(path string) error {
	db, err := sql.Open("sqlite3", path)
	if nil != err {
		return err
	}

	initStatement := `
	create table if not exists snapshots
	  (
		  id text not null primary key,
		  source text not null,
		  sum text not null,
		  name text,
		  saved integer not null,
		  data blob
	  );
	create index if not exists snapshots_source on snapshots(source, saved);
	`
	_, err = db.Exec(initStatement)
	if nil != err {
		db.Close()
		return fmt.Errorf("unable to create snapshot table: %w", err)
	}

	if nil == s.Now {
		s.Now = time.Now
	}
	s.db = db
	return nil
}

func (s *DefaultStore) Deinit() {
	if nil != s.db {
		s.db.Close()
		s.db = nil
	}
}

// Save stores a snapshot of sng under source. Saving contents identical to
// the latest snapshot of source returns the existing id.
func (s *DefaultStore) Save(source string, sng *song.Song) (string, error) {
	data, err := sng.MarshalJSON()
	if nil != err {
		return "", fmt.Errorf("unable to marshal song: %w", err)
	}
	sum := sng.Hash()

	latest, err := s.Latest(source)
	switch {
	case nil == err && latest.Sum == sum:
		return latest.ID, nil
	case nil != err && !errors.Is(err, ErrNotFound):
		return "", err
	}

	id := uuid.NewString()
	_, err = s.db.Exec(
		"insert into snapshots(id, source, sum, name, saved, data) values(?, ?, ?, ?, ?, ?)",
		id, source, sum, sng.Metadata.Name, s.Now().UnixNano(), data,
	)
	if nil != err {
		return "", fmt.Errorf("unable to save snapshot: %w", err)
	}
	return id, nil
}

func scanEntry(scan func(...any) error) (Entry, error) {
	var e Entry
	var name sql.NullString
	var saved int64
	if err := scan(&e.ID, &e.Source, &e.Sum, &name, &saved); nil != err {
		return e, err
	}
	e.Name = name.String
	e.Saved = time.Unix(0, saved)
	return e, nil
}

func (s *DefaultStore) Latest(source string) (*Entry, error) {
	row := s.db.QueryRow(
		"select id, source, sum, name, saved from snapshots where source = ? order by saved desc, rowid desc limit 1",
		source,
	)
	e, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if nil != err {
		return nil, fmt.Errorf("unable to load latest snapshot: %w", err)
	}
	return &e, nil
}

// List returns every snapshot of source, newest first.
func (s *DefaultStore) List(source string) ([]Entry, error) {
	entries := []Entry{}
	rows, err := s.db.Query(
		"select id, source, sum, name, saved from snapshots where source = ? order by saved desc, rowid desc",
		source,
	)
	if nil != err {
		return nil, fmt.Errorf("unable to list snapshots: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if nil != err {
			log.Println("unable to read snapshot row", err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *DefaultStore) Load(id string) (*song.Song, error) {
	var data []byte
	err := s.db.QueryRow("select data from snapshots where id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if nil != err {
		return nil, fmt.Errorf("unable to load snapshot: %w", err)
	}
	return song.Decode(data)
}
