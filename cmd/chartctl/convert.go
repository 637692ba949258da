package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"git.lost.host/meutraa/fretedit/internal/config"
	"git.lost.host/meutraa/fretedit/internal/parser"
	"git.lost.host/meutraa/fretedit/internal/song"
	"git.lost.host/meutraa/fretedit/internal/store"
	"github.com/spf13/cobra"
)

func defaultDatabase() string {
	return filepath.Join(config.Dir(), "snapshots.db")
}

// source is the key snapshots of the chart at path are stored under.
func source(path string) string {
	abs, err := filepath.Abs(path)
	if nil != err {
		return path
	}
	return abs
}

func openStore(path string) (store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); nil != err {
		return nil, fmt.Errorf("unable to create database directory: %w", err)
	}
	st := &store.DefaultStore{}
	if err := st.Init(path); nil != err {
		return nil, err
	}
	return st, nil
}

func writeChart(path string, s *song.Song) error {
	f, err := os.Create(path)
	if nil != err {
		return fmt.Errorf("unable to create %s: %w", path, err)
	}
	if err := parser.Write(f, s); nil != err {
		f.Close()
		return fmt.Errorf("unable to write %s: %w", path, err)
	}
	return f.Close()
}

func newConvertCmd() *cobra.Command {
	var database, output string
	cmd := &cobra.Command{
		Use:   "convert <chart>",
		Short: "Imports a chart into the snapshot store",
		Long: `Imports a .chart or .mid file and stores it as a snapshot. With --write
the imported chart is also written out in .chart format.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := parser.Parse(args[0])
			if nil != err {
				return err
			}
			defer s.Close()

			st, err := openStore(database)
			if nil != err {
				return err
			}
			defer st.Deinit()
			id, err := st.Save(source(args[0]), s)
			if nil != err {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)

			if output != "" {
				return writeChart(output, s)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&database, "database", defaultDatabase(), "Snapshot database")
	cmd.Flags().StringVarP(&output, "write", "w", "", "Also write the chart to this .chart file")
	return cmd
}

func writeHistory(w io.Writer, entries []store.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "id\tsaved\tname")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ID, e.Saved.Format(time.RFC3339), e.Name)
	}
	return tw.Flush()
}

func newHistoryCmd() *cobra.Command {
	var database, restore, output string
	cmd := &cobra.Command{
		Use:   "history <chart>",
		Short: "Lists or restores the snapshots of a chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(database)
			if nil != err {
				return err
			}
			defer st.Deinit()

			if restore == "" {
				entries, err := st.List(source(args[0]))
				if nil != err {
					return err
				}
				return writeHistory(cmd.OutOrStdout(), entries)
			}

			if output == "" {
				return errors.New("--restore needs --write")
			}
			s, err := st.Load(restore)
			if nil != err {
				return err
			}
			defer s.Close()
			return writeChart(output, s)
		},
	}
	cmd.Flags().StringVar(&database, "database", defaultDatabase(), "Snapshot database")
	cmd.Flags().StringVar(&restore, "restore", "", "Snapshot id to restore")
	cmd.Flags().StringVarP(&output, "write", "w", "", "Chart file the restored snapshot is written to")
	return cmd
}
