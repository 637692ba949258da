package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"git.lost.host/meutraa/fretedit/internal/parser"
	"git.lost.host/meutraa/fretedit/internal/song"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type trackSummary struct {
	Track     string `json:"track" yaml:"track"`
	Notes     int    `json:"notes" yaml:"notes"`
	Chords    int    `json:"chords" yaml:"chords"`
	Sustains  int    `json:"sustains" yaml:"sustains"`
	HOPOs     int    `json:"hopos" yaml:"hopos"`
	Taps      int    `json:"taps" yaml:"taps"`
	Starpower int    `json:"starpower" yaml:"starpower"`
	Solos     int    `json:"solos" yaml:"solos"`
}

type summary struct {
	Name       string         `json:"name" yaml:"name"`
	Artist     string         `json:"artist,omitempty" yaml:"artist,omitempty"`
	Resolution int            `json:"resolution" yaml:"resolution"`
	Seconds    float64        `json:"seconds" yaml:"seconds"`
	Tempos     int            `json:"tempos" yaml:"tempos"`
	Sections   int            `json:"sections" yaml:"sections"`
	Tracks     []trackSummary `json:"tracks" yaml:"tracks"`
}

func summarise(s *song.Song) summary {
	sum := summary{
		Name:       s.Metadata.Name,
		Artist:     s.Metadata.Artist,
		Resolution: int(s.Resolution()),
		Seconds:    s.Seconds(),
		Tempos:     s.Tempo.Tempo.Len(),
		Sections:   s.Sections.Len(),
	}
	for _, k := range s.Keys() {
		t := s.Tracks[k]
		c := t.Counts()
		sum.Tracks = append(sum.Tracks, trackSummary{
			Track:     k.String(),
			Notes:     c.Notes,
			Chords:    c.Chords,
			Sustains:  c.Sustains,
			HOPOs:     c.HOPOs,
			Taps:      c.Taps,
			Starpower: t.Starpower.Len(),
			Solos:     t.Solos.Len(),
		})
	}
	return sum
}

func writeSummary(w io.Writer, sum summary, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(sum); nil != err {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	case "text":
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	fmt.Fprintf(w, "%s", sum.Name)
	if sum.Artist != "" {
		fmt.Fprintf(w, " by %s", sum.Artist)
	}
	fmt.Fprintf(w, "\nresolution %d, %.3fs, %d tempos, %d sections\n\n",
		sum.Resolution, sum.Seconds, sum.Tempos, sum.Sections)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "track\tnotes\tchords\tsustains\thopos\ttaps\tstarpower\tsolos")
	for _, t := range sum.Tracks {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			t.Track, t.Notes, t.Chords, t.Sustains, t.HOPOs, t.Taps, t.Starpower, t.Solos)
	}
	return tw.Flush()
}

func newInspectCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "inspect <chart>",
		Short: "Summarises a chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := parser.Parse(args[0])
			if nil != err {
				return err
			}
			defer s.Close()
			return writeSummary(cmd.OutOrStdout(), summarise(s), format)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "text", "Output format: text, yaml or json")
	return cmd
}
