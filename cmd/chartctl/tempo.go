package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"git.lost.host/meutraa/fretedit/internal/chart"
	"git.lost.host/meutraa/fretedit/internal/events"
	"git.lost.host/meutraa/fretedit/internal/parser"
	"git.lost.host/meutraa/fretedit/internal/tempo"
	"github.com/spf13/cobra"
)

type Tick = events.Tick

type tempoRow struct {
	Tick    Tick    `json:"tick"`
	BPM     float64 `json:"bpm"`
	Seconds float64 `json:"seconds"`
	Anchor  bool    `json:"anchor,omitempty"`
}

type signatureRow struct {
	Tick        Tick `json:"tick"`
	Numerator   int  `json:"numerator"`
	Denominator int  `json:"denominator"`
}

func tempoRows(m *tempo.Map) []tempoRow {
	rows := make([]tempoRow, 0, m.Tempo.Len())
	m.Tempo.Each(func(t Tick, e chart.TempoEvent) bool {
		rows = append(rows, tempoRow{Tick: t, BPM: e.BPM, Seconds: e.Seconds, Anchor: e.Anchor})
		return true
	})
	return rows
}

func signatureRows(m *tempo.Map) []signatureRow {
	rows := make([]signatureRow, 0, m.TimeSignatures.Len())
	m.TimeSignatures.Each(func(t Tick, e chart.TimeSignatureEvent) bool {
		rows = append(rows, signatureRow{Tick: t, Numerator: e.Numerator, Denominator: e.Denominator})
		return true
	})
	return rows
}

func writeTempo(w io.Writer, m *tempo.Map) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "tick\tbpm\tseconds\tanchor")
	for _, r := range tempoRows(m) {
		anchor := ""
		if r.Anchor {
			anchor = "yes"
		}
		fmt.Fprintf(tw, "%d\t%g\t%.3f\t%s\n", r.Tick, r.BPM, r.Seconds, anchor)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "tick\tsignature")
	for _, r := range signatureRows(m) {
		fmt.Fprintf(tw, "%d\t%d/%d\n", r.Tick, r.Numerator, r.Denominator)
	}
	return tw.Flush()
}

func newTempoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tempo <chart>",
		Short: "Prints the tempo map of a chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := parser.Parse(args[0])
			if nil != err {
				return err
			}
			defer s.Close()
			return writeTempo(cmd.OutOrStdout(), s.Tempo)
		},
	}
}
