// Package config reads the editor settings from an optional YAML file and
// the command line. Flags win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"
	"gopkg.in/yaml.v3"
)

const Version = "0.3.0"

// File is the layout of config.yaml. Zero values keep the built in defaults.
type File struct {
	Track         string            `yaml:"track"`
	Zoom          int               `yaml:"zoom"`
	Snap          int               `yaml:"snap"`
	Spacing       int               `yaml:"spacing"`
	Rate          float64           `yaml:"rate"`
	Delay         time.Duration     `yaml:"delay"`
	FramePeriod   time.Duration     `yaml:"frame_period"`
	Database      string            `yaml:"database"`
	AutosaveDelay time.Duration     `yaml:"autosave_delay"`
	Debug         bool              `yaml:"debug"`
	Keys          map[string]string `yaml:"keys"`
}

type Config struct {
	Chart         string
	Audio         string
	Track         string
	HopoCutoff    int
	Zoom          int
	Snap          int
	Spacing       int
	Rate          float64
	Delay         time.Duration
	FramePeriod   time.Duration
	Debug         bool
	Database      string
	File          string
	AutosaveDelay time.Duration
	Keys          map[string]string
}

// Defaults holds the values used when neither the file nor a flag sets one.
var Defaults = File{
	Track:         "guitar:expert",
	Zoom:          24,
	Snap:          16,
	Spacing:       2,
	Rate:          1.0,
	Delay:         0,
	FramePeriod:   time.Second / 60,
	AutosaveDelay: 2 * time.Second,
}

// Dir is the directory holding config.yaml, the database and the debug log.
func Dir() string {
	dir, err := os.UserConfigDir()
	if nil != err {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "fretedit")
}

// Load reads a settings file over the defaults. A missing file is not an
// error.
func Load(path string) (File, error) {
	f := Defaults
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if nil != err {
		return f, fmt.Errorf("unable to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); nil != err {
		return f, fmt.Errorf("unable to parse %s: %w", path, err)
	}
	return f, nil
}

// configPath finds --config or -c in args without parsing anything else.
func configPath(args []string) string {
	for i, a := range args {
		switch {
		case a == "--config" || a == "-c":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(a, "--config="):
			return strings.TrimPrefix(a, "--config=")
		}
	}
	return filepath.Join(Dir(), "config.yaml")
}

// Parse reads the settings file named by args, or the default one, and then
// the flags in args.
func Parse(args []string) (*Config, error) {
	path := configPath(args)
	f, err := Load(path)
	if nil != err {
		return nil, err
	}
	if f.Database == "" {
		f.Database = filepath.Join(Dir(), "snapshots.db")
	}

	c := &Config{File: path, Keys: f.Keys}
	app := kingpin.New("fretedit", "Terminal chart editor")
	app.Version(Version)
	app.HelpFlag.Short('h')

	app.Arg("chart", "Chart file (.chart or .mid)").Required().ExistingFileVar(&c.Chart)
	app.Flag("audio", "Audio file, defaults to the chart's music stream").Short('a').StringVar(&c.Audio)
	app.Flag("config", "Settings file").Short('c').Default(path).StringVar(&c.File)
	app.Flag("track", "Track to edit, instrument:difficulty").Short('t').Default(f.Track).StringVar(&c.Track)
	app.Flag("hopo-cutoff", "Widest hammer-on gap in ticks, 0 derives it from the resolution").Default("0").IntVar(&c.HopoCutoff)
	app.Flag("zoom", "Ticks per screen row").Short('z').Default(strconv.Itoa(f.Zoom)).IntVar(&c.Zoom)
	app.Flag("snap", "Note division the cursor snaps to").Default(strconv.Itoa(f.Snap)).IntVar(&c.Snap)
	app.Flag("spacing", "Columns between lanes").Short('S').Default(strconv.Itoa(f.Spacing)).IntVar(&c.Spacing)
	app.Flag("rate", "Playback rate").Short('r').Default(strconv.FormatFloat(f.Rate, 'g', -1, 64)).Float64Var(&c.Rate)
	app.Flag("delay", "Start delay").Short('d').Default(f.Delay.String()).DurationVar(&c.Delay)
	app.Flag("frame-period", "Render frame period").Short('p').Default(f.FramePeriod.String()).DurationVar(&c.FramePeriod)
	app.Flag("debug", "Write a debug log").Default(strconv.FormatBool(f.Debug)).BoolVar(&c.Debug)
	app.Flag("database", "Snapshot database").Default(f.Database).StringVar(&c.Database)
	app.Flag("autosave", "Quiet period before an autosave").Default(f.AutosaveDelay.String()).DurationVar(&c.AutosaveDelay)

	if _, err := app.Parse(args); nil != err {
		return nil, err
	}
	if c.Rate <= 0 {
		return nil, fmt.Errorf("rate must be positive, got %v", c.Rate)
	}
	if c.Zoom <= 0 {
		return nil, fmt.Errorf("zoom must be positive, got %v", c.Zoom)
	}
	return c, nil
}
